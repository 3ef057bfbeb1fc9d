package window

import (
	"log/slog"
	"sync"
	"time"

	"github.com/ckms-go/quantile/quantile"
)

// DefaultWindowSize is the window width used when a WindowedSampler is built without an
// explicit WithWindowSize.
const DefaultWindowSize = 30 * time.Second

// Sampler is the interface an upstream metrics collaborator (a Histogram, Timer, or similar)
// consumes to record observations and read back quantile/size summaries.
type Sampler interface {
	Clear()
	Size() uint64
	SizeAt(ts time.Time) uint64
	Update(value float64) error
	UpdateAt(value float64, ts time.Time) error
	Snapshot() quantile.Snapshot
	SnapshotAt(ts time.Time) quantile.Snapshot
}

var _ Sampler = (*WindowedSampler)(nil)

// WindowedSampler routes observations into the current of two fixed-width time windows and
// exposes the previous, fully completed window as a Snapshot. This type is concurrency safe:
// every operation acquires a single mutex for its full duration.
type WindowedSampler struct {
	mu         sync.Mutex
	windowSize time.Duration
	targets    []quantile.Target
	clock      Clock
	logger     *slog.Logger

	prev, cur *quantile.Sketch
	curBegin  time.Time
}

// NewWindowedSampler returns a WindowedSampler with the given window size and default targets.
func NewWindowedSampler(windowSize time.Duration) (*WindowedSampler, error) {
	return NewSamplerBuilder().WithWindowSize(windowSize).Build()
}

// Clear resets both the current and previous window to empty.
func (w *WindowedSampler) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.prev.Reset()
	w.cur.Reset()
	w.curBegin = time.Time{}
}

// Size returns the number of samples in the most recently completed window, as of now.
func (w *WindowedSampler) Size() uint64 {
	return w.SizeAt(w.clock.Now())
}

// SizeAt returns the number of samples in the window completed as of ts.
func (w *WindowedSampler) SizeAt(ts time.Time) uint64 {
	return uint64(w.SnapshotAt(ts).Size())
}

// Update absorbs value, timestamped with the Sampler's clock.
func (w *WindowedSampler) Update(value float64) error {
	return w.UpdateAt(value, w.clock.Now())
}

// UpdateAt absorbs value dated ts. Past-dated writes (ts before the current window's start)
// are silently dropped, per the Sampler's ordering contract.
func (w *WindowedSampler) UpdateAt(value float64, ts time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.advanceWindows(ts) {
		return nil
	}
	return w.cur.Insert(value)
}

// Snapshot returns a Snapshot of the most recently completed window, as of now.
func (w *WindowedSampler) Snapshot() quantile.Snapshot {
	return w.SnapshotAt(w.clock.Now())
}

// SnapshotAt returns a Snapshot of the window completed as of ts: the window immediately
// preceding ts's current window. Exposing the previous rather than the current window yields
// stable, non-partial results over a full window and avoids flicker as the current window
// fills. Returns an empty Snapshot if ts predates the sampler's current window.
func (w *WindowedSampler) SnapshotAt(ts time.Time) quantile.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.advanceWindows(ts) {
		empty, _ := quantile.NewSketchBuilder().WithTargets(w.targets...).Build()
		return quantile.NewSnapshotFromSketch(empty, 1)
	}
	return quantile.NewSnapshotFromSketch(w.prev, 1)
}

// advanceWindows rotates or resets the prev/cur pair so cur always covers
// [curBegin, curBegin+windowSize). Returns false when ts predates curBegin, meaning the
// caller's write/read must be treated as empty. Must be called with mu held.
func (w *WindowedSampler) advanceWindows(ts time.Time) bool {
	if ts.Before(w.curBegin) {
		return false
	}

	if ts.Before(w.curBegin.Add(w.windowSize)) {
		// Still inside the current window.
		return true
	}

	if ts.Before(w.curBegin.Add(2 * w.windowSize)) {
		// The current window has just completed; it becomes the previous one.
		w.prev, w.cur = w.cur, w.prev
		w.cur.Reset()
		w.curBegin = w.curBegin.Add(w.windowSize)
		if w.logger != nil && w.logger.Enabled(nil, slog.LevelDebug) {
			w.logger.Debug("window rotated", "window_begin", w.curBegin)
		}
		return true
	}

	// A gap of at least two window widths: both buckets are stale.
	w.prev.Reset()
	w.cur.Reset()
	w.curBegin = alignToWindow(ts, w.windowSize)
	if w.logger != nil && w.logger.Enabled(nil, slog.LevelDebug) {
		w.logger.Debug("window reset after gap", "window_begin", w.curBegin)
	}
	return true
}

// alignToWindow returns the start of the windowSize-wide interval containing ts, aligned to
// the Unix epoch.
func alignToWindow(ts time.Time, windowSize time.Duration) time.Time {
	n := ts.UnixNano()
	width := windowSize.Nanoseconds()
	rem := n % width
	if rem < 0 {
		rem += width
	}
	return time.Unix(0, n-rem).UTC()
}
