package rendering

import (
	"fmt"
	"strconv"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
)

// Dynamic strategy view fields
const (
	PoPComparisonParameter = "pop_comparison"
	PoPWindowFilter        = "pop_window"
	// dynamicComparison is the label comparison of every dynamic variant
	dynamicComparison = "prior_period"
)

// PoPStrategy renders the period-over-period variants of a metric. A
// strategy is created per view and may keep state across calls; a nil
// result with no error means the variant was already covered.
type PoPStrategy interface {
	Render(metric *models.Metric, variant models.MetricVariant) ([]*lookml.Block, error)
	// ViewFields returns extra fields the view needs once any variant was
	// rendered
	ViewFields() []*lookml.Block
}

// newPoPStrategy creates the configured strategy for one view
func (r *Renderer) newPoPStrategy(model *models.ProcessedModel, view string) PoPStrategy {
	if r.config.PoPStrategy == PoPDynamic {
		return &DynamicStrategy{
			renderer: r,
			model:    model,
			view:     view,
			rendered: make(map[string]bool),
		}
	}

	return &NativeStrategy{renderer: r, model: model}
}

// dateDimension picks the dimension a metric's comparison shifts
func dateDimension(model *models.ProcessedModel, metric *models.Metric) (models.Dimension, error) {
	if metric.PoP != nil && metric.PoP.DateDimension != "" {
		dim, ok := model.Dimension(metric.PoP.DateDimension)
		if !ok || !dim.IsTime() {
			return models.Dimension{}, fmt.Errorf("%w: %s is not a time dimension of %s", ErrNoDateDimension, metric.PoP.DateDimension, model.Name)
		}

		return dim, nil
	}

	dims := model.TimeDimensions()
	if len(dims) == 0 {
		return models.Dimension{}, fmt.Errorf("%w: model %s", ErrNoDateDimension, model.Name)
	}

	return dims[0], nil
}

func (r *Renderer) popLabel(metric *models.Metric, comparison, output string) (string, error) {
	return r.templates.Execute(templatePoP, PoPLabelData{
		Label:      fieldLabel(metric.Label, metric.Name),
		Metric:     metric.Name,
		Comparison: comparison,
		Output:     output,
	})
}

func popFormat(metric *models.Metric, output models.Output) string {
	if output == models.OutputPercentChange {
		return "percent_1"
	}

	return metric.Format
}

// NativeStrategy renders each variant as a period_over_period measure
type NativeStrategy struct {
	renderer *Renderer
	model    *models.ProcessedModel
}

//nolint:gochecknoglobals // lookup table
var nativeKinds = map[models.Output]string{
	models.OutputPrevious:      "previous",
	models.OutputChange:        "difference",
	models.OutputPercentChange: "relative_change",
}

// Render implements PoPStrategy
func (s *NativeStrategy) Render(metric *models.Metric, variant models.MetricVariant) ([]*lookml.Block, error) {
	if variant.IsBase() {
		return nil, nil
	}

	dim, err := dateDimension(s.model, metric)
	if err != nil {
		return nil, err
	}

	label, err := s.renderer.popLabel(metric, string(variant.Comparison), string(variant.Output))
	if err != nil {
		return nil, err
	}

	block := lookml.NewBlock("measure", variant.Name).Add(
		lookml.Bare("type", "period_over_period"),
		lookml.Bare("based_on", metric.Name),
		lookml.Bare("based_on_time", basedOnTime(dim)),
		lookml.Bare("period", variant.Comparison.Period()),
		lookml.Bare("kind", nativeKinds[variant.Output]),
		lookml.String("label", label),
		lookml.String("view_label", metric.Labels.ViewLabel()),
		lookml.String("group_label", metric.Labels.GroupLabel()),
		lookml.Bare("value_format_name", popFormat(metric, variant.Output)),
	)

	return []*lookml.Block{block}, nil
}

// ViewFields implements PoPStrategy
func (s *NativeStrategy) ViewFields() []*lookml.Block {
	return nil
}

// basedOnTime prefers the date timeframe of the dimension group
func basedOnTime(dim models.Dimension) string {
	timeframes := dim.Timeframes()
	for _, timeframe := range timeframes {
		if timeframe == "date" {
			return dim.Name + "_date"
		}
	}

	for _, timeframe := range timeframes {
		if timeframe != "raw" {
			return dim.Name + "_" + timeframe
		}
	}

	return dim.Name + "_raw"
}

// DynamicStrategy renders one measure per output kind. The comparison period
// is picked at query time through the pop_comparison parameter, so every
// comparison of a metric collapses onto the same fields and only the first
// variant of each (metric, output) pair is rendered.
type DynamicStrategy struct {
	renderer *Renderer
	model    *models.ProcessedModel
	view     string

	rendered    map[string]bool
	comparisons []models.Comparison
}

// dynamicFieldName returns <metric>_pop with the output suffix
func dynamicFieldName(metric string, output models.Output) string {
	if suffix := output.Suffix(); suffix != "" {
		return fmt.Sprintf("%s_pop_%s", metric, suffix)
	}

	return metric + "_pop"
}

// Render implements PoPStrategy
func (s *DynamicStrategy) Render(metric *models.Metric, variant models.MetricVariant) ([]*lookml.Block, error) {
	if variant.IsBase() {
		return nil, nil
	}

	s.addComparison(variant.Comparison)

	key := metric.Name + "/" + string(variant.Output)
	if s.rendered[key] {
		return nil, nil
	}

	params, ok := metric.Params.(models.SimpleParams)
	if !ok {
		return nil, fmt.Errorf("%w: %s is %s", ErrDynamicUnsupported, metric.Name, metric.Type())
	}

	measure, ok := s.model.Measure(params.Measure)
	if !ok {
		return nil, fmt.Errorf("%w: measure %s is not on %s", ErrDynamicUnsupported, params.Measure, s.model.Name)
	}

	dim, err := dateDimension(s.model, metric)
	if err != nil {
		return nil, err
	}

	blocks := make([]*lookml.Block, 0, 2)

	// change outputs reference the previous measure, so it is emitted with
	// whichever output of the metric comes first
	previous := dynamicFieldName(metric.Name, models.OutputPrevious)
	previousKey := metric.Name + "/" + string(models.OutputPrevious)

	if !s.rendered[previousKey] {
		block, err := s.previous(metric, measure, dim, previous, !requestsOutput(metric, models.OutputPrevious))
		if err != nil {
			return nil, err
		}

		s.rendered[previousKey] = true
		blocks = append(blocks, block)
	}

	s.rendered[key] = true

	if variant.Output == models.OutputPrevious {
		return blocks, nil
	}

	current := fmt.Sprintf("${%s}", metric.Name)
	prior := fmt.Sprintf("${%s}", previous)

	sql := fmt.Sprintf("%s - %s", current, prior)
	if variant.Output == models.OutputPercentChange {
		sql = fmt.Sprintf("(%s - %s) / NULLIF(%s, 0)", current, prior, prior)
	}

	label, err := s.renderer.popLabel(metric, dynamicComparison, string(variant.Output))
	if err != nil {
		return nil, err
	}

	block := lookml.NewBlock("measure", dynamicFieldName(metric.Name, variant.Output)).Add(
		lookml.Bare("type", "number"),
		lookml.SQL("sql", sql),
		lookml.String("label", label),
		lookml.String("view_label", metric.Labels.ViewLabel()),
		lookml.String("group_label", metric.Labels.GroupLabel()),
		lookml.Bare("value_format_name", popFormat(metric, variant.Output)),
	)

	return append(blocks, block), nil
}

// previous renders the aggregation restricted to the shifted window
func (s *DynamicStrategy) previous(metric *models.Metric, measure models.Measure, dim models.Dimension, name string, hidden bool) (*lookml.Block, error) {
	measureType, sql := aggregation(measure, metric.Filter)
	if sql == "" {
		measureType, sql = "sum", "1"
	}

	dateSQL := dim.SQL()
	for _, variant := range dim.ExpandVariants() {
		if variant.Primary {
			dateSQL = variant.SQL
		}
	}

	window := fmt.Sprintf(
		"%[1]s >= DATEADD({%% parameter %[2]s %%}, -1, {%% date_start %[3]s %%}) AND %[1]s < DATEADD({%% parameter %[2]s %%}, -1, {%% date_end %[3]s %%})",
		dateSQL, PoPComparisonParameter, PoPWindowFilter,
	)

	label, err := s.renderer.popLabel(metric, dynamicComparison, string(models.OutputPrevious))
	if err != nil {
		return nil, err
	}

	block := lookml.NewBlock("measure", name).Add(lookml.Bare("type", measureType))

	if measure.Agg == models.AggregationPercentile {
		block.Add(lookml.Bare("percentile", strconv.FormatFloat(measure.PercentileValue(), 'f', -1, 64)))
	}

	block.Add(
		lookml.SQL("sql", fmt.Sprintf("CASE WHEN %s THEN %s END", window, sql)),
		lookml.String("label", label),
		lookml.String("view_label", metric.Labels.ViewLabel()),
		lookml.String("group_label", metric.Labels.GroupLabel()),
		lookml.Bare("value_format_name", metric.Format),
	)

	if hidden {
		block.Add(lookml.Yes("hidden"))
	}

	return block, nil
}

func (s *DynamicStrategy) addComparison(comparison models.Comparison) {
	for _, existing := range s.comparisons {
		if existing == comparison {
			return
		}
	}

	s.comparisons = append(s.comparisons, comparison)
}

// ViewFields implements PoPStrategy. The comparison parameter offers every
// comparison seen on the view, defaulting to the first.
func (s *DynamicStrategy) ViewFields() []*lookml.Block {
	if len(s.comparisons) == 0 {
		return nil
	}

	parameter := lookml.NewBlock("parameter", PoPComparisonParameter).Add(
		lookml.Bare("type", "unquoted"),
		lookml.String("label", "Comparison Period"),
	)

	for _, comparison := range s.comparisons {
		parameter.AddChild(lookml.NewBlock("allowed_value", "").Add(
			lookml.String("label", models.Title(string(comparison))),
			lookml.String("value", comparison.Period()),
		))
	}

	parameter.Add(lookml.String("default_value", s.comparisons[0].Period()))

	window := lookml.NewBlock("filter", PoPWindowFilter).Add(
		lookml.Bare("type", "date"),
		lookml.String("label", "Comparison Window"),
	)

	return []*lookml.Block{parameter, window}
}

func requestsOutput(metric *models.Metric, output models.Output) bool {
	if metric.PoP == nil {
		return false
	}

	for _, requested := range metric.PoP.Outputs {
		if requested == output {
			return true
		}
	}

	return false
}
