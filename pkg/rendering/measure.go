package rendering

import (
	"fmt"
	"strconv"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
)

// MeasureSuffix is appended to measure names so they never collide with the
// metrics built on them
const MeasureSuffix = "_measure"

// MeasureFieldName returns the rendered field name of a measure
func MeasureFieldName(measure string) string {
	return measure + MeasureSuffix
}

// aggregation returns the LookML measure type and sql for a measure with an
// optional extra filter. An empty sql means the type takes no sql.
func aggregation(measure models.Measure, extra *models.Filter) (string, string) {
	filter := measure.Filter.Merge(extra)

	switch measure.Agg {
	case models.AggregationCount:
		if measure.Expr == "" && filter.IsEmpty() {
			return "count", ""
		}

		expr := "1"
		if measure.Expr != "" {
			expr = fmt.Sprintf("CASE WHEN %s IS NOT NULL THEN 1 ELSE 0 END", models.QualifyColumn(measure.Expr))
		}

		return "sum", filter.Wrap(expr)
	case models.AggregationSumBoolean:
		return "sum", measure.SQLWithFilter(extra)
	case models.AggregationCountDistinct, models.AggregationAverage, models.AggregationMin,
		models.AggregationMax, models.AggregationMedian, models.AggregationPercentile:
		return string(measure.Agg), measure.SQLWithFilter(extra)
	default:
		return "sum", measure.SQLWithFilter(extra)
	}
}

// renderMeasure renders a measure as <name>_measure. Measures used by a
// metric are hidden so only the metric is exposed.
func renderMeasure(measure models.Measure, name string, extra *models.Filter, hidden bool) *lookml.Block {
	measureType, sql := aggregation(measure, extra)

	block := lookml.NewBlock("measure", name).Add(lookml.Bare("type", measureType))

	if measure.Agg == models.AggregationPercentile {
		block.Add(lookml.Bare("percentile", strconv.FormatFloat(measure.PercentileValue(), 'f', -1, 64)))
	}

	if sql != "" {
		block.Add(lookml.SQL("sql", sql))
	}

	block.Add(labelAttrs(measure.Label, measure.Name, measure.Labels)...)
	block.Add(
		lookml.String("description", measure.Description),
		lookml.Bare("value_format_name", measure.Format),
	)

	if hidden || measure.Hidden {
		block.Add(lookml.Yes("hidden"))
	}

	return block
}
