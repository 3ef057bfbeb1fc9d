// Package window composes a pair of quantile.Sketch values into a rolling, two-bucket time
// window, so that exposed estimates reflect only recent data rather than all-time history.
//
// A WindowedSampler routes incoming timestamped observations into its current window's
// Sketch. A consumer reading a Snapshot always sees the immediately preceding, fully
// completed window, which is stable and never partial.
package window
