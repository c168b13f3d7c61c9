package rendering

import "errors"

// Rendering-specific errors
var (
	ErrUnknownTemplate    = errors.New("template not registered")
	ErrUnknownStrategy    = errors.New("unknown pop strategy")
	ErrNoDateDimension    = errors.New("no time dimension for period-over-period")
	ErrDynamicUnsupported = errors.New("dynamic period-over-period needs a simple metric on a local measure")
)
