package quantile

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
)

// BufferCap is the fixed size of a Sketch's pending-insert buffer. Hitting this cap triggers
// one insertBatch+compress cycle, bounding both memory and worst-case insert latency.
const BufferCap = 500

// Sketch is a CKMS ε-approximate biased-quantile summary of an unbounded numeric stream. It
// answers quantile queries in memory sublinear in the number of observations, with error
// biased toward a caller-chosen set of Targets.
//
// Sketch is not safe for concurrent use; callers needing concurrent access should either
// guard it externally or use a window.WindowedSampler, which serializes access internally.
type Sketch struct {
	targets []Target

	sample      []entry
	buffer      []float64
	bufferCount int
	count       int // observations merged into sample, excluding buffer

	min, max, sum float64
	varAcc        welford

	logger *slog.Logger
}

// NewSketch constructs a Sketch for the given targets, or DefaultTargets() if none are given.
func NewSketch(targets ...Target) (*Sketch, error) {
	b := NewSketchBuilder()
	if len(targets) > 0 {
		b.WithTargets(targets...)
	}
	return b.Build()
}

// Insert absorbs one observation. It updates the running aggregates and appends the value to
// the pending buffer, draining the buffer into the sample (and compressing) once it fills.
// Insert runs in amortized O(1/ε) time; worst case is O((1/ε)²) when a drain fires.
//
// Insert rejects NaN and ±Inf samples, since they would corrupt the sample's sort order.
func (s *Sketch) Insert(x float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return fmt.Errorf("%w: non-finite sample %v", ErrInvalidArgument, x)
	}

	s.updateAggregates(x)

	s.buffer[s.bufferCount] = x
	s.bufferCount++

	if s.bufferCount == BufferCap {
		s.insertBatch()
		s.compress()
		if s.logger != nil && s.logger.Enabled(nil, slog.LevelDebug) {
			s.logger.Debug("sketch buffer drained", "samples", len(s.sample), "count", s.count)
		}
	}
	return nil
}

// Get returns an ε-approximate value at quantile q. Behavior for q outside the Sketch's
// configured targets is best-effort, not guaranteed within ε. Returns 0 on an empty Sketch.
//
// Get first drains the pending buffer and runs one compress pass, so after Get returns, the
// buffer is always empty.
func (s *Sketch) Get(q float64) float64 {
	s.insertBatch()
	s.compress()

	if len(s.sample) == 0 {
		return 0
	}

	desired := int(q * float64(s.count))
	bound := float64(desired) + s.allowableError(desired)/2

	rankMin := 0
	for i := 1; i < len(s.sample); i++ {
		rankMin += s.sample[i-1].g
		a := rankMin + s.sample[i].g + s.sample[i].delta
		if float64(a) > bound {
			return s.sample[i-1].value
		}
	}
	return s.sample[len(s.sample)-1].value
}

// Reset restores the Sketch to the empty state a freshly constructed Sketch would have.
func (s *Sketch) Reset() {
	s.sample = s.sample[:0]
	s.bufferCount = 0
	s.count = 0
	s.min, s.max, s.sum = 0, 0, 0
	s.varAcc = welford{}
}

// Count returns the number of observations absorbed by Insert, merged or still buffered.
func (s *Sketch) Count() int {
	return s.count + s.bufferCount
}

// Min returns the smallest observation inserted, or 0 if the Sketch is empty.
func (s *Sketch) Min() float64 {
	return s.min
}

// Max returns the largest observation inserted, or 0 if the Sketch is empty.
func (s *Sketch) Max() float64 {
	return s.max
}

// Sum returns the sum of all observations inserted.
func (s *Sketch) Sum() float64 {
	return s.sum
}

// Variance returns the sample variance of all observations inserted, or 0 when fewer than 2
// observations have been inserted.
func (s *Sketch) Variance() float64 {
	return s.varAcc.variance(s.Count())
}

// updateAggregates folds x into min/max/sum/variance. Called before x is appended to the
// buffer, so every insert is reflected even if a compress cycle never runs.
func (s *Sketch) updateAggregates(x float64) {
	total := s.count + s.bufferCount
	if total == 0 {
		s.min, s.max = x, x
	} else {
		if x < s.min {
			s.min = x
		}
		if x > s.max {
			s.max = x
		}
	}
	s.sum += x
	s.varAcc.add(x, total+1)
}

// allowableError computes f(rank): the minimum, over all configured targets, of the CKMS
// error bound at the given 1-based rank within the current sample.
func (s *Sketch) allowableError(rank int) float64 {
	size := len(s.sample)
	minError := float64(size + 1)

	for _, t := range s.targets {
		var e float64
		if float64(rank) <= t.quantile*float64(size) {
			if math.IsInf(t.u, 1) {
				// q=1's u is infinite; this branch never constrains its error.
				continue
			}
			e = t.u * float64(size-rank)
		} else {
			e = t.v * float64(rank)
		}
		if e < minError {
			minError = e
		}
	}
	return minError
}

// insertBatch sorts and merges the pending buffer into the sample. Ported directly from the
// CKMS reference implementation, including its left-boundary test (idx-1 == 0, not idx == 0)
// for when a newly inserted entry gets delta 0 — preserved as written rather than "fixed".
func (s *Sketch) insertBatch() {
	if s.bufferCount == 0 {
		return
	}

	buf := s.buffer[:s.bufferCount]
	sort.Float64s(buf)

	start := 0
	if len(s.sample) == 0 {
		s.sample = append(s.sample, entry{value: buf[0], g: 1, delta: 0})
		start = 1
		s.count++
	}

	idx := 0
	item := idx
	idx++

	for i := start; i < s.bufferCount; i++ {
		v := buf[i]
		for idx < len(s.sample) && s.sample[item].value < v {
			item = idx
			idx++
		}
		if s.sample[item].value > v {
			idx--
		}

		var delta int
		if idx-1 == 0 || idx+1 == len(s.sample) {
			delta = 0
		} else {
			delta = int(math.Floor(s.allowableError(idx+1))) + 1
		}

		s.sample = insertEntryAt(s.sample, idx, entry{value: v, g: 1, delta: delta})
		s.count++
		item = idx
		idx++
	}

	s.bufferCount = 0
}

// compress walks adjacent entry pairs left to right, merging prev into next whenever
// prev.g + next.g + next.delta <= allowableError(rank of next). One forward pass; a merge
// does not skip ahead, so cascading merges at the same position are still caught.
func (s *Sketch) compress() {
	i := 1
	for i < len(s.sample) {
		prevG := s.sample[i-1].g
		next := s.sample[i]
		if float64(prevG+next.g+next.delta) <= s.allowableError(i+1) {
			s.sample[i].g += prevG
			s.sample = removeEntryAt(s.sample, i-1)
			continue
		}
		i++
	}
}

// clone drains and compresses the Sketch, then returns a deep, detached copy suitable for a
// Snapshot: later mutation of s never affects the returned Sketch.
func (s *Sketch) clone() *Sketch {
	s.insertBatch()
	s.compress()

	cp := &Sketch{
		targets: s.targets,
		count:   s.count,
		min:     s.min,
		max:     s.max,
		sum:     s.sum,
		varAcc:  s.varAcc,
		buffer:  make([]float64, BufferCap),
	}
	cp.sample = append([]entry(nil), s.sample...)
	return cp
}
