package quantile

import (
	"math"
	"sort"
)

// Snapshot is an immutable, detached view over either a sorted copy of a value vector or an
// owned copy of a Sketch. Once constructed it never changes, even if the Sketch or values it
// was built from are mutated afterward. An optional divisor scales every returned value by
// 1/d (and variance, a squared quantity, by 1/d²) as a unit-conversion convenience.
type Snapshot struct {
	divisor float64
	values  []float64 // sorted ascending; only set when not sketch-backed
	sketch  *Sketch    // only set when sketch-backed
}

// NewSnapshotFromValues builds a Snapshot over a copy of values, scaled by 1/divisor. A
// divisor <= 0 is treated as 1.
func NewSnapshotFromValues(values []float64, divisor float64) Snapshot {
	cp := append([]float64(nil), values...)
	sort.Float64s(cp)
	return Snapshot{values: cp, divisor: normalizeDivisor(divisor)}
}

// NewSnapshotFromSketch builds a Snapshot over a detached copy of s, scaled by 1/divisor.
// Later mutation of s does not affect the returned Snapshot. A divisor <= 0 is treated as 1.
func NewSnapshotFromSketch(s *Sketch, divisor float64) Snapshot {
	return Snapshot{sketch: s.clone(), divisor: normalizeDivisor(divisor)}
}

func normalizeDivisor(d float64) float64 {
	if d <= 0 {
		return 1
	}
	return d
}

// Size returns the number of samples represented.
func (s Snapshot) Size() int {
	if s.sketch != nil {
		return s.sketch.Count()
	}
	return len(s.values)
}

// ValueAt returns the value at quantile q. When vector-backed this is a linear interpolation
// over the sorted values; when Sketch-backed it delegates to Sketch.Get.
func (s Snapshot) ValueAt(q float64) float64 {
	if s.sketch != nil {
		return s.sketch.Get(q) / s.divisor
	}
	return interpolate(s.values, q) / s.divisor
}

func interpolate(sorted []float64, q float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}

	rank := q * float64(n-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo < 0 {
		lo = 0
	}
	if hi >= n {
		hi = n - 1
	}
	frac := rank - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// Min returns the smallest represented value, or 0 when empty.
func (s Snapshot) Min() float64 {
	if s.sketch != nil {
		return s.sketch.Min() / s.divisor
	}
	if len(s.values) == 0 {
		return 0
	}
	return s.values[0] / s.divisor
}

// Max returns the largest represented value, or 0 when empty.
func (s Snapshot) Max() float64 {
	if s.sketch != nil {
		return s.sketch.Max() / s.divisor
	}
	if len(s.values) == 0 {
		return 0
	}
	return s.values[len(s.values)-1] / s.divisor
}

// Sum returns the sum of all represented values.
func (s Snapshot) Sum() float64 {
	if s.sketch != nil {
		return s.sketch.Sum() / s.divisor
	}
	var sum float64
	for _, v := range s.values {
		sum += v
	}
	return sum / s.divisor
}

// Variance returns the sample variance of all represented values, or 0 when fewer than 2.
func (s Snapshot) Variance() float64 {
	d2 := s.divisor * s.divisor
	if s.sketch != nil {
		return s.sketch.Variance() / d2
	}
	n := len(s.values)
	if n < 2 {
		return 0
	}
	var mean float64
	for _, v := range s.values {
		mean += v
	}
	mean /= float64(n)
	var ss float64
	for _, v := range s.values {
		ss += (v - mean) * (v - mean)
	}
	return (ss / float64(n-1)) / d2
}

// Median returns ValueAt(0.5).
func (s Snapshot) Median() float64 { return s.ValueAt(0.5) }

// P75 returns ValueAt(0.75).
func (s Snapshot) P75() float64 { return s.ValueAt(0.75) }

// P95 returns ValueAt(0.95).
func (s Snapshot) P95() float64 { return s.ValueAt(0.95) }

// P98 returns ValueAt(0.98).
func (s Snapshot) P98() float64 { return s.ValueAt(0.98) }

// P99 returns ValueAt(0.99).
func (s Snapshot) P99() float64 { return s.ValueAt(0.99) }

// P999 returns ValueAt(0.999).
func (s Snapshot) P999() float64 { return s.ValueAt(0.999) }

// Values returns a copy of the represented values, scaled by 1/divisor. For a vector-backed
// Snapshot these are exact and sorted; for a Sketch-backed Snapshot they are the Sketch's
// compressed representative samples, not the full original stream.
func (s Snapshot) Values() []float64 {
	if s.sketch != nil {
		out := make([]float64, len(s.sketch.sample))
		for i, e := range s.sketch.sample {
			out[i] = e.value / s.divisor
		}
		return out
	}
	out := make([]float64, len(s.values))
	for i, v := range s.values {
		out[i] = v / s.divisor
	}
	return out
}
