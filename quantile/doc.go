// Package quantile implements the CKMS (Cormode, Korst, Muthukrishnan,
// Srivastava) biased-quantile sketch: an ε-approximate summary of a numeric
// stream that answers "what value is at quantile q?" in memory sublinear in
// the number of observations, with error biased toward a caller-chosen set
// of target quantiles.
//
// Sketch is the low-level, unwindowed estimator. Package window composes two
// Sketches into a rolling time window for callers that want estimates to
// track recent behavior rather than all-time history.
package quantile
