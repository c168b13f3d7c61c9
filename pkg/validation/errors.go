package validation

import (
	"errors"
	"fmt"
)

// Validation-specific errors
var (
	ErrValidationFailed = errors.New("semantic model validation failed")
)

// ValidationError carries the full result of a failed strict validation
type ValidationError struct {
	Result *Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %d error(s), %d warning(s)", ErrValidationFailed, len(e.Result.Errors()), len(e.Result.Warnings()))
}

// Unwrap returns ErrValidationFailed
func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}
