package models

import "strings"

// AggregationType is the aggregation a measure applies to its expression
type AggregationType string

const (
	AggregationCount         AggregationType = "count"
	AggregationCountDistinct AggregationType = "count_distinct"
	AggregationSum           AggregationType = "sum"
	AggregationAverage       AggregationType = "average"
	AggregationMin           AggregationType = "min"
	AggregationMax           AggregationType = "max"
	AggregationMedian        AggregationType = "median"
	AggregationSumBoolean    AggregationType = "sum_boolean"
	AggregationPercentile    AggregationType = "percentile"
)

// ParseAggregationType maps a raw agg value onto a known aggregation.
// Unknown values fall back to sum.
func ParseAggregationType(raw string) (AggregationType, bool) {
	switch normalize(raw) {
	case "count":
		return AggregationCount, true
	case "count_distinct":
		return AggregationCountDistinct, true
	case "sum":
		return AggregationSum, true
	case "average", "avg", "mean":
		return AggregationAverage, true
	case "min":
		return AggregationMin, true
	case "max":
		return AggregationMax, true
	case "median":
		return AggregationMedian, true
	case "sum_boolean":
		return AggregationSumBoolean, true
	case "percentile":
		return AggregationPercentile, true
	default:
		return AggregationSum, false
	}
}

// DimensionType distinguishes categorical attributes from timestamps
type DimensionType string

const (
	DimensionCategorical DimensionType = "categorical"
	DimensionTime        DimensionType = "time"
)

// ParseDimensionType defaults to categorical
func ParseDimensionType(raw string) (DimensionType, bool) {
	switch normalize(raw) {
	case "time":
		return DimensionTime, true
	case "categorical", "":
		return DimensionCategorical, true
	default:
		return DimensionCategorical, false
	}
}

// Granularity is the finest time grain of a time dimension
type Granularity string

const (
	GranularityHour    Granularity = "hour"
	GranularityDay     Granularity = "day"
	GranularityWeek    Granularity = "week"
	GranularityMonth   Granularity = "month"
	GranularityQuarter Granularity = "quarter"
	GranularityYear    Granularity = "year"
)

// ParseGranularity defaults to day
func ParseGranularity(raw string) (Granularity, bool) {
	switch normalize(raw) {
	case "hour":
		return GranularityHour, true
	case "day", "":
		return GranularityDay, true
	case "week":
		return GranularityWeek, true
	case "month":
		return GranularityMonth, true
	case "quarter":
		return GranularityQuarter, true
	case "year":
		return GranularityYear, true
	default:
		return GranularityDay, false
	}
}

// EntityType is the key role an entity plays on its model
type EntityType string

const (
	EntityPrimary EntityType = "primary"
	EntityForeign EntityType = "foreign"
	EntityUnique  EntityType = "unique"
	EntityNatural EntityType = "natural"
)

// ParseEntityType defaults to foreign
func ParseEntityType(raw string) (EntityType, bool) {
	switch normalize(raw) {
	case "primary":
		return EntityPrimary, true
	case "foreign":
		return EntityForeign, true
	case "unique":
		return EntityUnique, true
	case "natural":
		return EntityNatural, true
	default:
		return EntityForeign, false
	}
}

// MetricType tags which MetricParams variant a metric carries
type MetricType string

const (
	MetricSimple     MetricType = "simple"
	MetricRatio      MetricType = "ratio"
	MetricDerived    MetricType = "derived"
	MetricConversion MetricType = "conversion"
)

// ParseMetricType defaults to simple
func ParseMetricType(raw string) (MetricType, bool) {
	switch normalize(raw) {
	case "simple", "":
		return MetricSimple, true
	case "ratio":
		return MetricRatio, true
	case "derived":
		return MetricDerived, true
	case "conversion":
		return MetricConversion, true
	default:
		return MetricSimple, false
	}
}

// Comparison is a period-over-period comparison window
type Comparison string

const (
	ComparisonPriorYear    Comparison = "prior_year"
	ComparisonPriorQuarter Comparison = "prior_quarter"
	ComparisonPriorMonth   Comparison = "prior_month"
	ComparisonPriorWeek    Comparison = "prior_week"
)

// ParseComparison accepts both long names and their suffixes (py, pm, ...)
func ParseComparison(raw string) (Comparison, bool) {
	switch normalize(raw) {
	case "prior_year", "py", "year":
		return ComparisonPriorYear, true
	case "prior_quarter", "pq", "quarter":
		return ComparisonPriorQuarter, true
	case "prior_month", "pm", "month":
		return ComparisonPriorMonth, true
	case "prior_week", "pw", "week":
		return ComparisonPriorWeek, true
	default:
		return "", false
	}
}

// Suffix is appended to the metric name for this comparison
func (c Comparison) Suffix() string {
	switch c {
	case ComparisonPriorYear:
		return "py"
	case ComparisonPriorQuarter:
		return "pq"
	case ComparisonPriorMonth:
		return "pm"
	case ComparisonPriorWeek:
		return "pw"
	default:
		return string(c)
	}
}

// Period is the time unit shifted by this comparison
func (c Comparison) Period() string {
	return strings.TrimPrefix(string(c), "prior_")
}

// Output is what a PoP variant reports relative to the comparison window
type Output string

const (
	OutputPrevious      Output = "previous"
	OutputChange        Output = "change"
	OutputPercentChange Output = "percent_change"
)

// ParseOutput accepts long names and suffixes
func ParseOutput(raw string) (Output, bool) {
	switch normalize(raw) {
	case "previous", "prior", "value":
		return OutputPrevious, true
	case "change", "difference", "diff":
		return OutputChange, true
	case "percent_change", "pct_change", "relative_change":
		return OutputPercentChange, true
	default:
		return "", false
	}
}

// Suffix is the trailing name segment; previous has none
func (o Output) Suffix() string {
	switch o {
	case OutputChange:
		return "change"
	case OutputPercentChange:
		return "pct_change"
	default:
		return ""
	}
}

func normalize(raw string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "-", "_")
}
