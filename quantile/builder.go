package quantile

import (
	"fmt"
	"log/slog"
)

// SketchBuilder configures and constructs a Sketch. The zero value, via NewSketchBuilder, is
// ready to use and builds a Sketch with DefaultTargets().
type SketchBuilder struct {
	targets    []Target
	targetsSet bool
	logger     *slog.Logger
}

// NewSketchBuilder returns a new SketchBuilder.
func NewSketchBuilder() *SketchBuilder {
	return &SketchBuilder{}
}

// WithTargets sets the quantile targets the built Sketch will track. Must be non-empty; an
// explicit empty call (WithTargets() with no arguments) is rejected by Build rather than
// silently falling back to DefaultTargets().
func (b *SketchBuilder) WithTargets(targets ...Target) *SketchBuilder {
	b.targets = targets
	b.targetsSet = true
	return b
}

// WithLogger sets a logger the Sketch uses to emit debug-level traces of buffer drains. A nil
// logger (the default) disables this tracing entirely.
func (b *SketchBuilder) WithLogger(logger *slog.Logger) *SketchBuilder {
	b.logger = logger
	return b
}

// Build validates the configuration and returns a new Sketch, or an error wrapping
// ErrInvalidArgument if the target list is empty or any target is out of range.
func (b *SketchBuilder) Build() (*Sketch, error) {
	targets := b.targets
	if !b.targetsSet {
		targets = DefaultTargets()
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("%w: quantile target list must not be empty", ErrInvalidArgument)
	}
	for _, t := range targets {
		if t.quantile <= 0 || t.quantile > 1 {
			return nil, fmt.Errorf("%w: quantile %v must be in (0,1]", ErrInvalidArgument, t.quantile)
		}
		if t.epsilon <= 0 || t.epsilon >= 1 {
			return nil, fmt.Errorf("%w: epsilon %v must be in (0,1)", ErrInvalidArgument, t.epsilon)
		}
	}

	return &Sketch{
		targets: targets,
		buffer:  make([]float64, BufferCap),
		logger:  b.logger,
	}, nil
}
