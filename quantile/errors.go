package quantile

import "errors"

// ErrInvalidArgument is returned when a Sketch or Target is constructed with
// out-of-range configuration, or when Insert is given a non-finite sample.
var ErrInvalidArgument = errors.New("quantile: invalid argument")
