package window

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// epoch is an instant already aligned to any windowSize used below (it's a multiple of every
// width we test with), so the first update in a test starts exactly at a window boundary.
var epoch = time.Unix(0, 0).UTC()

// Asserts window retention: after a continuous stream spanning ten full windows, querying
// mid-window returns the immediately preceding, fully populated window. Scenario S4.
func TestWindowedSampler_Retention(t *testing.T) {
	clock := NewManualClock(epoch)
	w, err := NewSamplerBuilder().WithWindowSize(30 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		require.NoError(t, w.Update(100))
		clock.Advance(time.Second)
	}
	// clock now reads epoch+300s; rewind one second to land on t=299, still inside [270,300).
	clock.Set(epoch.Add(299 * time.Second))

	assert.Equal(t, uint64(30), w.Size())
	assert.Equal(t, 100.0, w.Snapshot().Median())
}

// Asserts that a read landing mid-window returns the window immediately before it, even when
// that window's contents differ from the current (partial) one. Scenario S5.
func TestWindowedSampler_MixedBucketBoundary(t *testing.T) {
	clock := NewManualClock(epoch)
	w, err := NewSamplerBuilder().WithWindowSize(30 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	for i := 0; i < 30; i++ {
		require.NoError(t, w.Update(1))
		clock.Advance(time.Second)
	}
	for i := 0; i < 15; i++ {
		require.NoError(t, w.Update(2))
		clock.Advance(time.Second)
	}
	clock.Set(epoch.Add(45 * time.Second))

	snap := w.SnapshotAt(clock.Now())
	assert.Equal(t, 1.0, snap.Median())
	assert.Equal(t, 30, snap.Size())
}

// Asserts that a gap of at least two window widths resets both buckets rather than exposing
// stale data across the gap. Scenario S6.
func TestWindowedSampler_GapResetsBothWindows(t *testing.T) {
	clock := NewManualClock(epoch)
	w, err := NewSamplerBuilder().WithWindowSize(30 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, w.Update(1))
	}

	clock.Set(epoch.Add(100 * time.Second))
	require.NoError(t, w.Update(10))
	require.NoError(t, w.Update(10))

	clock.Set(epoch.Add(130 * time.Second))
	snap := w.Snapshot()
	assert.Equal(t, 2, snap.Size())
	assert.Equal(t, 10.0, snap.Min())
	assert.Equal(t, 10.0, snap.Max())
}

// A read before any update has established a window starts a fresh window at the read's
// timestamp and returns an empty Snapshot rather than panicking.
func TestWindowedSampler_ReadBeforeAnyUpdate(t *testing.T) {
	clock := NewManualClock(epoch)
	w, err := NewSamplerBuilder().WithWindowSize(30 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	snap := w.Snapshot()
	assert.Equal(t, 0, snap.Size())
	assert.Equal(t, 0.0, snap.Median())
}

// A past-dated write (before the sampler's established window) is dropped rather than erroring
// or corrupting the current window.
func TestWindowedSampler_PastDatedWriteIsDropped(t *testing.T) {
	clock := NewManualClock(epoch.Add(100 * time.Second))
	w, err := NewSamplerBuilder().WithWindowSize(30 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	require.NoError(t, w.UpdateAt(1, epoch.Add(100*time.Second)))
	require.NoError(t, w.UpdateAt(999, epoch)) // predates the established window

	clock.Set(epoch.Add(130 * time.Second))
	snap := w.Snapshot()
	assert.Equal(t, 1, snap.Size())
	assert.Equal(t, 1.0, snap.Max())
}

// Clear must return the sampler to a state indistinguishable from freshly built, and it must
// still behave correctly afterward.
func TestWindowedSampler_ClearIsIdempotentAndReusable(t *testing.T) {
	clock := NewManualClock(epoch)
	w, err := NewSamplerBuilder().WithWindowSize(30 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		require.NoError(t, w.Update(42))
		clock.Advance(time.Second)
	}
	w.Clear()
	w.Clear()

	assert.Equal(t, uint64(0), w.Size())

	// The Size() read at t=50s re-established the current window as [30s,60s), so the
	// re-population must move forward from there; earlier timestamps would be dropped.
	clock.Set(epoch.Add(60 * time.Second))
	for i := 0; i < 10; i++ {
		require.NoError(t, w.Update(7))
	}
	clock.Set(epoch.Add(95 * time.Second))
	assert.Equal(t, 10, w.Snapshot().Size())
	assert.Equal(t, 7.0, w.Snapshot().Median())
}

// Building with a non-positive window size must fail.
func TestSamplerBuilder_RejectsNonPositiveWindowSize(t *testing.T) {
	_, err := NewSamplerBuilder().WithWindowSize(-time.Second).Build()
	assert.Error(t, err)
}

// An explicit empty WithTargets() call must fail, not silently fall back to
// quantile.DefaultTargets().
func TestSamplerBuilder_RejectsEmptyTargets(t *testing.T) {
	_, err := NewSamplerBuilder().WithTargets().Build()
	assert.Error(t, err)
}

// Size() at a later time never exceeds the capacity a single window can hold across a steady
// stream — a basic sanity bound rather than an exact value.
func TestWindowedSampler_SizeNeverExceedsStreamRate(t *testing.T) {
	clock := NewManualClock(epoch)
	w, err := NewSamplerBuilder().WithWindowSize(10 * time.Second).WithClock(clock).Build()
	require.NoError(t, err)

	for i := 0; i < 1000; i++ {
		require.NoError(t, w.Update(float64(i)))
		clock.Advance(10 * time.Millisecond)
	}
	clock.Advance(10 * time.Second)
	assert.LessOrEqual(t, w.Size(), uint64(1001))
}
