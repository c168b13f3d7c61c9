package models

import (
	"fmt"
)

// MetricParams is the kind-specific payload of a metric. Exactly one
// implementation exists per MetricType.
type MetricParams interface {
	Kind() MetricType
	isMetricParams()
}

// SimpleParams wraps a single measure
type SimpleParams struct {
	Measure string
}

// RatioParams divides one measure by another
type RatioParams struct {
	Numerator   string
	Denominator string
}

// MetricRef references another metric from a derived expression
type MetricRef struct {
	Name  string
	Alias string
}

// RefName is the identifier the expression uses for this reference
func (r MetricRef) RefName() string {
	if r.Alias != "" {
		return r.Alias
	}

	return r.Name
}

// DerivedParams combines other metrics through an expression
type DerivedParams struct {
	Expr    string
	Metrics []MetricRef
}

// ConversionParams describes a funnel between two event measures. Conversion
// metrics depend on event semantics rather than joinable measures.
type ConversionParams struct {
	Entity            string
	BaseMeasure       string
	ConversionMeasure string
	Window            string
}

func (SimpleParams) Kind() MetricType     { return MetricSimple }
func (RatioParams) Kind() MetricType      { return MetricRatio }
func (DerivedParams) Kind() MetricType    { return MetricDerived }
func (ConversionParams) Kind() MetricType { return MetricConversion }

func (SimpleParams) isMetricParams()     {}
func (RatioParams) isMetricParams()      {}
func (DerivedParams) isMetricParams()    {}
func (ConversionParams) isMetricParams() {}

// PoPConfig lists the period-over-period comparisons and outputs of a metric
type PoPConfig struct {
	Comparisons []Comparison
	Outputs     []Output
	// DateDimension is the time dimension the comparison shifts; empty means
	// the owning model's first time dimension.
	DateDimension string
}

// MetricVariant is one concrete output field of a metric
type MetricVariant struct {
	Name       string
	Comparison Comparison
	Output     Output
}

// IsBase reports whether this is the unmodified metric
func (v MetricVariant) IsBase() bool {
	return v.Comparison == ""
}

// MetricResolver looks up a metric by name
type MetricResolver func(name string) (*Metric, bool)

// Metric is a user-facing calculation built on measures or other metrics
type Metric struct {
	Name        string
	Params      MetricParams
	Label       string
	Description string
	Format      string
	Labels      LabelMeta
	// Entity is the declared primary entity; empty means inferred
	Entity string
	Filter *Filter
	PoP    *PoPConfig
	Meta   map[string]any

	variants []MetricVariant
	expanded bool
}

// Type returns the metric kind
func (m *Metric) Type() MetricType {
	if m.Params == nil {
		return MetricSimple
	}

	return m.Params.Kind()
}

// HasPoP reports whether the metric produces period-over-period variants
func (m *Metric) HasPoP() bool {
	return m.PoP != nil && len(m.PoP.Comparisons) > 0 && len(m.PoP.Outputs) > 0
}

// ExpandVariants populates the variant list: the base variant first, then each
// comparison in configured order with its outputs in configured order.
// Calling it again is a no-op.
func (m *Metric) ExpandVariants() {
	if m.expanded {
		return
	}

	variants := []MetricVariant{{Name: m.Name}}

	if m.HasPoP() {
		for _, comparison := range m.PoP.Comparisons {
			for _, output := range m.PoP.Outputs {
				variants = append(variants, MetricVariant{
					Name:       VariantName(m.Name, comparison, output),
					Comparison: comparison,
					Output:     output,
				})
			}
		}
	}

	m.variants = variants
	m.expanded = true
}

// Variants returns the expanded variants, or nil before ExpandVariants
func (m *Metric) Variants() []MetricVariant {
	if !m.expanded {
		return nil
	}

	out := make([]MetricVariant, len(m.variants))
	copy(out, m.variants)

	return out
}

// IsExpanded reports whether ExpandVariants has run
func (m *Metric) IsExpanded() bool {
	return m.expanded
}

// VariantName computes {metric}_{comparison} for previous values and
// {metric}_{comparison}_{output} for change outputs
func VariantName(metric string, comparison Comparison, output Output) string {
	if suffix := output.Suffix(); suffix != "" {
		return fmt.Sprintf("%s_%s_%s", metric, comparison.Suffix(), suffix)
	}

	return fmt.Sprintf("%s_%s", metric, comparison.Suffix())
}

// ReferencedMetrics lists the metric names a derived metric builds on
func (m *Metric) ReferencedMetrics() []string {
	params, ok := m.Params.(DerivedParams)
	if !ok {
		return nil
	}

	names := make([]string, 0, len(params.Metrics))
	for _, ref := range params.Metrics {
		names = append(names, ref.Name)
	}

	return names
}

// DirectMeasures lists the measures named by the metric itself, without
// following metric references
func (m *Metric) DirectMeasures() []string {
	switch params := m.Params.(type) {
	case SimpleParams:
		return nonEmpty(params.Measure)
	case RatioParams:
		return nonEmpty(params.Numerator, params.Denominator)
	default:
		return nil
	}
}

// RequiredMeasures returns the deduplicated measures the metric needs. Derived
// metrics resolve their references transitively through resolve; unknown or
// cyclic references are skipped.
func (m *Metric) RequiredMeasures(resolve MetricResolver) []string {
	seen := make(map[string]bool)
	visited := map[string]bool{m.Name: true}
	measures := make([]string, 0)

	var collect func(metric *Metric)
	collect = func(metric *Metric) {
		switch params := metric.Params.(type) {
		case SimpleParams, RatioParams:
			for _, measure := range metric.DirectMeasures() {
				if !seen[measure] {
					seen[measure] = true
					measures = append(measures, measure)
				}
			}
		case DerivedParams:
			if resolve == nil {
				return
			}

			for _, ref := range params.Metrics {
				if visited[ref.Name] {
					continue
				}

				visited[ref.Name] = true

				if child, ok := resolve(ref.Name); ok {
					collect(child)
				}
			}
		case ConversionParams:
			// no joinable measure dependency
		}
	}

	collect(m)

	return measures
}

func nonEmpty(values ...string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}

	return out
}
