package explore

import "errors"

// Explore-specific errors
var (
	ErrAmbiguousEntity = errors.New("primary entity declared by more than one model")
	ErrModelNotFound   = errors.New("fact model not found")
	ErrUnknownExpose   = errors.New("unknown expose level")
)
