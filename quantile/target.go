package quantile

import (
	"fmt"
	"math"
)

// Target is an immutable (quantile, epsilon) pair a Sketch is asked to keep ε-accurate.
// u and v are precomputed per the CKMS paper: u biases error toward entries below the
// target quantile, v toward entries above it.
type Target struct {
	quantile float64
	epsilon  float64
	u, v     float64
}

// NewTarget constructs a Target for the given quantile (0,1] and error bound epsilon (0,1).
// Quantile 1 is permitted and is treated as requesting the exact maximum: u is +Inf so the
// u-branch of allowableError never constrains its error.
func NewTarget(quantile, epsilon float64) (Target, error) {
	if quantile <= 0 || quantile > 1 {
		return Target{}, fmt.Errorf("%w: quantile %v must be in (0,1]", ErrInvalidArgument, quantile)
	}
	if epsilon <= 0 || epsilon >= 1 {
		return Target{}, fmt.Errorf("%w: epsilon %v must be in (0,1)", ErrInvalidArgument, epsilon)
	}

	u := math.Inf(1)
	if quantile < 1 {
		u = 2 * epsilon / (1 - quantile)
	}
	v := 2 * epsilon / quantile

	return Target{quantile: quantile, epsilon: epsilon, u: u, v: v}, nil
}

// Quantile returns the target quantile in (0,1].
func (t Target) Quantile() float64 {
	return t.quantile
}

// Epsilon returns the target's error bound.
func (t Target) Epsilon() float64 {
	return t.epsilon
}

// DefaultTargets returns the default target list used when a Sketch is constructed with no
// explicit targets: p99 and p50, each accurate to within 0.1%.
func DefaultTargets() []Target {
	p99, _ := NewTarget(0.99, 0.001)
	p50, _ := NewTarget(0.5, 0.001)
	return []Target{p99, p50}
}
