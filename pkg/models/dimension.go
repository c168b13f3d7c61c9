package models

import (
	"fmt"
	"sort"
)

// Dimension is a descriptive attribute or timestamp of a semantic model
type Dimension struct {
	Name        string
	Type        DimensionType
	Expr        string
	Label       string
	Description string
	Granularity Granularity
	Labels      LabelMeta
	Hidden      bool
	// DateSelector marks the dimension as selectable by the calendar view
	DateSelector bool
	// Variants maps variant name to SQL, e.g. utc -> created_at_utc
	Variants       map[string]string
	PrimaryVariant string
	Meta           map[string]any
}

// DimensionVariant is one concrete field generated from a dimension's variants
type DimensionVariant struct {
	Name      string
	FieldName string
	SQL       string
	Primary   bool
}

// SQL returns the dimension expression, defaulting to ${TABLE}.<name>
func (d Dimension) SQL() string {
	if d.Expr == "" {
		return TableRef + "." + d.Name
	}

	return QualifyColumn(d.Expr)
}

// IsTime reports whether the dimension is a timestamp
func (d Dimension) IsTime() bool {
	return d.Type == DimensionTime
}

// HasVariants reports whether the dimension expands into variant fields
func (d Dimension) HasVariants() bool {
	return len(d.Variants) > 0
}

// Validate checks the dimension invariants
func (d Dimension) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}

	if d.IsTime() && d.HasVariants() {
		if _, ok := d.Variants[d.PrimaryVariant]; !ok {
			return fmt.Errorf("%w: got %q", ErrPrimaryVariant, d.PrimaryVariant)
		}
	}

	return nil
}

// Timeframes lists the timeframes a time dimension exposes for its granularity
func (d Dimension) Timeframes() []string {
	switch d.Granularity {
	case GranularityHour:
		return []string{"raw", "time", "hour", "date", "week", "month", "quarter", "year"}
	case GranularityWeek:
		return []string{"raw", "week", "month", "quarter", "year"}
	case GranularityMonth:
		return []string{"raw", "month", "quarter", "year"}
	case GranularityQuarter:
		return []string{"raw", "quarter", "year"}
	case GranularityYear:
		return []string{"raw", "year"}
	default:
		return []string{"raw", "date", "week", "month", "quarter", "year"}
	}
}

// ExpandVariants returns one field per variant, primary first then by name.
// All variants are returned; hiding non-primary ones is up to the renderer.
func (d Dimension) ExpandVariants() []DimensionVariant {
	if !d.HasVariants() {
		return nil
	}

	names := make([]string, 0, len(d.Variants))
	for name := range d.Variants {
		names = append(names, name)
	}

	sort.Slice(names, func(i, j int) bool {
		if (names[i] == d.PrimaryVariant) != (names[j] == d.PrimaryVariant) {
			return names[i] == d.PrimaryVariant
		}

		return names[i] < names[j]
	})

	variants := make([]DimensionVariant, 0, len(names))
	for _, name := range names {
		variants = append(variants, DimensionVariant{
			Name:      name,
			FieldName: fmt.Sprintf("%s_%s", d.Name, name),
			SQL:       QualifyColumn(d.Variants[name]),
			Primary:   name == d.PrimaryVariant,
		})
	}

	return variants
}
