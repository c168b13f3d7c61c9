package models

import (
	"errors"
	"fmt"
)

// Model-specific errors
var (
	ErrStructural        = errors.New("malformed document")
	ErrField             = errors.New("invalid field")
	ErrReference         = errors.New("unresolved reference")
	ErrMissingField      = errors.New("required field missing")
	ErrDuplicateName     = errors.New("duplicate name")
	ErrMultiplePrimary   = errors.New("more than one primary entity")
	ErrPrimaryVariant    = errors.New("primary_variant must name one of the variants")
	ErrMetricCycle       = errors.New("metric references form a cycle")
	ErrNonExistentMetric = errors.New("metric references non-existent metric")
)

// StructuralError reports a document whose shape cannot be interpreted at all,
// e.g. a YAML root that is not a mapping.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrStructural, e.Reason)
	}

	return fmt.Sprintf("%s: %s: %s", ErrStructural, e.Path, e.Reason)
}

// Unwrap returns ErrStructural
func (e *StructuralError) Unwrap() error {
	return ErrStructural
}

// FieldError reports a named element with a missing or unparseable field.
type FieldError struct {
	// Path locates the element, e.g. "semantic_models[orders].dimensions[2]"
	Path  string
	Name  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	subject := e.Path
	if e.Name != "" {
		subject = fmt.Sprintf("%s (%s)", e.Path, e.Name)
	}

	if e.Field != "" {
		return fmt.Sprintf("%s: %s: field %q: %v", ErrField, subject, e.Field, e.Err)
	}

	return fmt.Sprintf("%s: %s: %v", ErrField, subject, e.Err)
}

// Unwrap exposes both ErrField and the underlying cause
func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrField}
	}

	return []error{ErrField, e.Err}
}

// ReferenceError reports a named reference that could not be resolved once all
// documents were ingested.
type ReferenceError struct {
	Kind string
	From string
	To   string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s: %s %q referenced from %q", ErrReference, e.Kind, e.To, e.From)
}

// Unwrap returns ErrReference
func (e *ReferenceError) Unwrap() error {
	return ErrReference
}

// MetricReferenceError reports a derived metric reference that is dangling or
// closes a cycle. Err is ErrNonExistentMetric or ErrMetricCycle.
type MetricReferenceError struct {
	Metric    string
	Reference string
	Err       error
}

func (e *MetricReferenceError) Error() string {
	return fmt.Sprintf("%v: %s references %s", e.Err, e.Metric, e.Reference)
}

// Unwrap returns the underlying sentinel
func (e *MetricReferenceError) Unwrap() error {
	return e.Err
}
