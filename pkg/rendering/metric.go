package rendering

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
	"github.com/sirupsen/logrus"
)

// renderMetric renders the base metric measure plus any helper measures it
// needs. A nil result means the metric could not be rendered and a warning
// was recorded.
func (r *Renderer) renderMetric(model *models.ProcessedModel, view string, metric *models.Metric) []*lookml.Block {
	var (
		blocks []*lookml.Block
		err    error
	)

	switch params := metric.Params.(type) {
	case models.RatioParams:
		blocks, err = r.renderRatio(model, view, metric, params)
	case models.DerivedParams:
		blocks, err = r.renderDerived(view, metric, params)
	case models.ConversionParams:
		blocks, err = r.renderConversion(view, metric, params)
	case models.SimpleParams:
		blocks, err = r.renderSimple(model, view, metric, params)
	default:
		err = errors.New("metric has no parameters")
	}

	if err != nil {
		r.warn(logrus.Fields{"metric": metric.Name, "view": view}, "skipping metric %s: %v", metric.Name, err)

		return nil
	}

	base := blocks[len(blocks)-1]
	base.Add(labelAttrs(metric.Label, metric.Name, metric.Labels)...)
	base.Add(
		lookml.String("description", metric.Description),
		lookml.Bare("value_format_name", metric.Format),
	)

	return blocks
}

func (r *Renderer) renderSimple(model *models.ProcessedModel, view string, metric *models.Metric, params models.SimpleParams) ([]*lookml.Block, error) {
	if _, ok := r.measureViews[params.Measure]; !ok {
		return nil, fmt.Errorf("unknown measure %s", params.Measure)
	}

	block := lookml.NewBlock("measure", metric.Name)

	if metric.Filter.IsEmpty() {
		return []*lookml.Block{block.Add(
			lookml.Bare("type", "number"),
			lookml.SQL("sql", r.measureRef(view, params.Measure)),
		)}, nil
	}

	measure, ok := model.Measure(params.Measure)
	if !ok {
		r.warn(logrus.Fields{"metric": metric.Name, "measure": params.Measure},
			"filter of metric %s ignored: measure %s is on another view", metric.Name, params.Measure)

		return []*lookml.Block{block.Add(
			lookml.Bare("type", "number"),
			lookml.SQL("sql", r.measureRef(view, params.Measure)),
		)}, nil
	}

	return []*lookml.Block{filteredMeasure(block, measure, metric.Filter)}, nil
}

// filteredMeasure aggregates measure natively with an extra filter applied
func filteredMeasure(block *lookml.Block, measure models.Measure, filter *models.Filter) *lookml.Block {
	measureType, sql := aggregation(measure, filter)

	block.Add(lookml.Bare("type", measureType))

	if measure.Agg == models.AggregationPercentile {
		block.Add(lookml.Bare("percentile", strconv.FormatFloat(measure.PercentileValue(), 'f', -1, 64)))
	}

	if sql != "" {
		block.Add(lookml.SQL("sql", sql))
	}

	return block
}

func (r *Renderer) renderRatio(model *models.ProcessedModel, view string, metric *models.Metric, params models.RatioParams) ([]*lookml.Block, error) {
	blocks := make([]*lookml.Block, 0, 3)
	refs := make([]string, 0, 2)

	for _, name := range []string{params.Numerator, params.Denominator} {
		if _, ok := r.measureViews[name]; !ok {
			return nil, fmt.Errorf("unknown measure %s", name)
		}

		if metric.Filter.IsEmpty() {
			refs = append(refs, r.measureRef(view, name))

			continue
		}

		measure, ok := model.Measure(name)
		if !ok {
			r.warn(logrus.Fields{"metric": metric.Name, "measure": name},
				"filter of metric %s ignored for %s: measure is on another view", metric.Name, name)
			refs = append(refs, r.measureRef(view, name))

			continue
		}

		helper := fmt.Sprintf("%s__%s", metric.Name, name)
		block := filteredMeasure(lookml.NewBlock("measure", helper), measure, metric.Filter)
		blocks = append(blocks, block.Add(lookml.Yes("hidden")))
		refs = append(refs, fmt.Sprintf("${%s}", helper))
	}

	return append(blocks, lookml.NewBlock("measure", metric.Name).Add(
		lookml.Bare("type", "number"),
		lookml.SQL("sql", fmt.Sprintf("1.0 * %s / NULLIF(%s, 0)", refs[0], refs[1])),
	)), nil
}

func (r *Renderer) renderDerived(view string, metric *models.Metric, params models.DerivedParams) ([]*lookml.Block, error) {
	if strings.TrimSpace(params.Expr) == "" {
		return nil, errors.New("derived metric has no expr")
	}

	replacements := make(map[string]string, len(params.Metrics))
	names := make([]string, 0, len(params.Metrics))

	for _, ref := range params.Metrics {
		target, ok := r.metricRef(view, ref.Name)
		if !ok {
			return nil, fmt.Errorf("unknown metric %s", ref.Name)
		}

		replacements[ref.RefName()] = target
		names = append(names, regexp.QuoteMeta(ref.RefName()))
	}

	sql := params.Expr

	if len(names) > 0 {
		// longest first so a name never shadows one it prefixes
		sort.Slice(names, func(i, j int) bool {
			if len(names[i]) != len(names[j]) {
				return len(names[i]) > len(names[j])
			}

			return names[i] < names[j]
		})

		pattern := regexp.MustCompile(`\b(` + strings.Join(names, "|") + `)\b`)
		sql = pattern.ReplaceAllStringFunc(sql, func(match string) string {
			return replacements[match]
		})
	}

	return []*lookml.Block{lookml.NewBlock("measure", metric.Name).Add(
		lookml.Bare("type", "number"),
		lookml.SQL("sql", sql),
	)}, nil
}

func (r *Renderer) renderConversion(view string, metric *models.Metric, params models.ConversionParams) ([]*lookml.Block, error) {
	for _, name := range []string{params.BaseMeasure, params.ConversionMeasure} {
		if _, ok := r.measureViews[name]; !ok {
			return nil, fmt.Errorf("unknown measure %s", name)
		}
	}

	block := lookml.NewBlock("measure", metric.Name).Add(
		lookml.Bare("type", "number"),
		lookml.SQL("sql", fmt.Sprintf("1.0 * %s / NULLIF(%s, 0)",
			r.measureRef(view, params.ConversionMeasure), r.measureRef(view, params.BaseMeasure))),
	)

	if metric.Description == "" && params.Window != "" {
		block.Add(lookml.String("description", fmt.Sprintf("Conversions within %s", params.Window)))
	}

	return []*lookml.Block{block}, nil
}
