package window

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ckms-go/quantile/quantile"
)

// SamplerBuilder configures and constructs a WindowedSampler. The zero value, via
// NewSamplerBuilder, is ready to use and builds a WindowedSampler with DefaultWindowSize,
// quantile.DefaultTargets(), and a SystemClock.
type SamplerBuilder struct {
	windowSize time.Duration
	targets    []quantile.Target
	targetsSet bool
	clock      Clock
	logger     *slog.Logger
}

// NewSamplerBuilder returns a new SamplerBuilder.
func NewSamplerBuilder() *SamplerBuilder {
	return &SamplerBuilder{}
}

// WithWindowSize sets the width of each time bucket. A negative size is rejected by Build; a
// zero size is not rejected and selects DefaultWindowSize, the same as not calling this.
func (b *SamplerBuilder) WithWindowSize(d time.Duration) *SamplerBuilder {
	b.windowSize = d
	return b
}

// WithTargets sets the quantile targets each underlying Sketch will track. An explicit empty
// call is rejected by Build rather than silently falling back to quantile.DefaultTargets().
func (b *SamplerBuilder) WithTargets(targets ...quantile.Target) *SamplerBuilder {
	b.targets = targets
	b.targetsSet = true
	return b
}

// WithClock sets the clock used to timestamp Update/Snapshot calls made without an explicit
// timestamp. Tests typically substitute a ManualClock for determinism.
func (b *SamplerBuilder) WithClock(c Clock) *SamplerBuilder {
	b.clock = c
	return b
}

// WithLogger sets a logger the WindowedSampler uses to emit debug-level traces of window
// rotations and resets. A nil logger (the default) disables this tracing entirely.
func (b *SamplerBuilder) WithLogger(logger *slog.Logger) *SamplerBuilder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns a new WindowedSampler, or an error wrapping
// quantile.ErrInvalidArgument if the window size is negative or the targets are invalid. A zero
// window size is replaced by DefaultWindowSize rather than rejected.
func (b *SamplerBuilder) Build() (*WindowedSampler, error) {
	windowSize := b.windowSize
	if windowSize == 0 {
		windowSize = DefaultWindowSize
	}
	if windowSize <= 0 {
		return nil, fmt.Errorf("%w: window size must be positive", quantile.ErrInvalidArgument)
	}

	targets := b.targets
	if !b.targetsSet {
		targets = quantile.DefaultTargets()
	}

	clock := b.clock
	if clock == nil {
		clock = SystemClock{}
	}

	prev, err := quantile.NewSketchBuilder().WithTargets(targets...).Build()
	if err != nil {
		return nil, err
	}
	cur, err := quantile.NewSketchBuilder().WithTargets(targets...).Build()
	if err != nil {
		return nil, err
	}

	return &WindowedSampler{
		windowSize: windowSize,
		targets:    targets,
		clock:      clock,
		logger:     b.logger,
		prev:       prev,
		cur:        cur,
	}, nil
}
