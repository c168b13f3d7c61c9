package models

import (
	"fmt"
)

// DefaultPercentile is used by percentile measures without agg_params
const DefaultPercentile = 50

// Measure is a pure aggregation over a model's rows
type Measure struct {
	Name        string
	Agg         AggregationType
	Expr        string
	Label       string
	Description string
	Format      string
	Labels      LabelMeta
	Hidden      bool
	Filter      *Filter
	Percentile  float64
	Meta        map[string]any
}

// Validate checks the measure invariants
func (m Measure) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}

	// count may aggregate rows without an expression; everything else needs one
	if m.Expr == "" && m.Agg != AggregationCount {
		return fmt.Errorf("%w: expr", ErrMissingField)
	}

	return nil
}

// SQL returns the expression to aggregate, with the measure filter applied
func (m Measure) SQL() string {
	return m.SQLWithFilter(nil)
}

// SQLWithFilter applies both the measure's own filter and an extra one (e.g.
// the filter of a metric built on this measure)
func (m Measure) SQLWithFilter(extra *Filter) string {
	expr := m.Expr
	if expr == "" {
		expr = "1"
	} else {
		expr = QualifyColumn(expr)
	}

	if m.Agg == AggregationSumBoolean {
		expr = fmt.Sprintf("CASE WHEN %s THEN 1 ELSE 0 END", expr)
	}

	return m.Filter.Merge(extra).Wrap(expr)
}

// PercentileValue returns the configured percentile or the default
func (m Measure) PercentileValue() float64 {
	if m.Percentile <= 0 {
		return DefaultPercentile
	}

	return m.Percentile
}
