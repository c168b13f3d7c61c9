package builder

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ethpandaops/semlook/pkg/models"
)

var (
	// ErrInvalidFilter is returned when a filter block cannot be interpreted
	ErrInvalidFilter = errors.New("filter must be a list of conditions or a field/value mapping")
	// ErrInvalidReference is returned when a measure or metric reference is neither a name nor a mapping with a name
	ErrInvalidReference = errors.New("reference must be a name or a mapping with a name")
)

func (b *Builder) parseDataModel(path string, raw map[string]any) (*models.DataModel, error) {
	var spec rawDataModel
	if err := decode(raw, &spec); err != nil {
		return nil, &models.FieldError{Path: path, Err: err}
	}

	if spec.Name == "" {
		return nil, &models.FieldError{Path: path, Field: "name", Err: models.ErrMissingField}
	}

	schema := spec.Schema
	if schema == "" {
		schema = spec.SchemaName
	}

	catalog := spec.Catalog
	if catalog == "" {
		catalog = spec.Database
	}

	table := spec.Table
	if table == "" {
		table = spec.Name
	}

	return &models.DataModel{
		Name:       spec.Name,
		Catalog:    catalog,
		Schema:     schema,
		Table:      table,
		Connection: spec.Connection,
	}, nil
}

func (b *Builder) parseEntity(path string, raw map[string]any) (models.Entity, error) {
	var spec rawEntity
	if err := decode(raw, &spec); err != nil {
		return models.Entity{}, &models.FieldError{Path: path, Err: err}
	}

	if spec.Name == "" {
		return models.Entity{}, &models.FieldError{Path: path, Field: "name", Err: models.ErrMissingField}
	}

	entityType, ok := models.ParseEntityType(spec.Type)
	if !ok {
		b.warnEnum(path, spec.Name, "type", spec.Type, string(entityType))
	}

	return models.Entity{
		Name:     spec.Name,
		Type:     entityType,
		Expr:     spec.Expr,
		Label:    spec.Label,
		Complete: spec.Complete,
	}, nil
}

func (b *Builder) parseDimension(path string, raw map[string]any) (models.Dimension, error) {
	var spec rawDimension
	if err := decode(raw, &spec); err != nil {
		return models.Dimension{}, &models.FieldError{Path: path, Err: err}
	}

	dimType, ok := models.ParseDimensionType(spec.Type)
	if !ok {
		b.warnEnum(path, spec.Name, "type", spec.Type, string(dimType))
	}

	rawGranularity := spec.Granularity
	if rawGranularity == "" {
		rawGranularity = spec.TypeParams.TimeGranularity
	}

	granularity, ok := models.ParseGranularity(rawGranularity)
	if !ok {
		b.warnEnum(path, spec.Name, "granularity", rawGranularity, string(granularity))
	}

	dim := models.Dimension{
		Name:           spec.Name,
		Type:           dimType,
		Expr:           spec.Expr,
		Label:          spec.Label,
		Description:    spec.Description,
		Granularity:    granularity,
		Labels:         parseLabels(spec.Group, spec.Meta),
		Hidden:         spec.Hidden || metaBool(spec.Meta, "hidden"),
		DateSelector:   spec.DateSelector || metaBool(spec.Meta, "date_selector"),
		Variants:       spec.Variants,
		PrimaryVariant: spec.PrimaryVariant,
		Meta:           spec.Meta,
	}

	if err := dim.Validate(); err != nil {
		field := "primary_variant"
		if errors.Is(err, models.ErrMissingField) {
			field = "name"
		}

		return models.Dimension{}, &models.FieldError{Path: path, Name: spec.Name, Field: field, Err: err}
	}

	return dim, nil
}

func (b *Builder) parseMeasure(path string, raw map[string]any) (models.Measure, error) {
	var spec rawMeasure
	if err := decode(raw, &spec); err != nil {
		return models.Measure{}, &models.FieldError{Path: path, Err: err}
	}

	agg, ok := models.ParseAggregationType(spec.Agg)
	if !ok {
		b.warnEnum(path, spec.Name, "agg", spec.Agg, string(agg))
	}

	filter, err := parseFilter(spec.Filter)
	if err != nil {
		return models.Measure{}, &models.FieldError{Path: path, Name: spec.Name, Field: "filter", Err: err}
	}

	measure := models.Measure{
		Name:        spec.Name,
		Agg:         agg,
		Expr:        spec.Expr,
		Label:       spec.Label,
		Description: spec.Description,
		Format:      spec.Format,
		Labels:      parseLabels(spec.Group, spec.Meta),
		Hidden:      spec.Hidden || metaBool(spec.Meta, "hidden"),
		Filter:      filter,
		Percentile:  spec.AggParams.Percentile,
		Meta:        spec.Meta,
	}

	if err := measure.Validate(); err != nil {
		field := "expr"
		if measure.Name == "" {
			field = "name"
		}

		return models.Measure{}, &models.FieldError{Path: path, Name: spec.Name, Field: field, Err: err}
	}

	return measure, nil
}

func (b *Builder) parseMetric(path string, raw map[string]any) (*models.Metric, error) {
	var spec rawMetric
	if err := decode(raw, &spec); err != nil {
		return nil, &models.FieldError{Path: path, Err: err}
	}

	if spec.Name == "" {
		return nil, &models.FieldError{Path: path, Field: "name", Err: models.ErrMissingField}
	}

	params := rawMetricParams{
		Measure:     spec.Measure,
		Numerator:   spec.Numerator,
		Denominator: spec.Denominator,
		Expr:        spec.Expr,
		Metrics:     spec.Metrics,
	}
	if spec.TypeParams != nil {
		params = mergeParams(params, *spec.TypeParams)
	}

	metricType, ok := models.ParseMetricType(spec.Type)
	if !ok {
		b.warnEnum(path, spec.Name, "type", spec.Type, string(metricType))
	}

	metricParams, err := b.parseMetricParams(metricType, params, spec.Conversion)
	if err != nil {
		return nil, &models.FieldError{Path: path, Name: spec.Name, Err: err}
	}

	filter, err := parseFilter(spec.Filter)
	if err != nil {
		return nil, &models.FieldError{Path: path, Name: spec.Name, Field: "filter", Err: err}
	}

	return &models.Metric{
		Name:        spec.Name,
		Params:      metricParams,
		Label:       spec.Label,
		Description: spec.Description,
		Format:      spec.Format,
		Labels:      parseLabels(spec.Group, spec.Meta),
		Entity:      spec.Entity,
		Filter:      filter,
		PoP:         b.parsePoP(path, spec.Name, spec.PoP),
		Meta:        spec.Meta,
	}, nil
}

func (b *Builder) parseMetricParams(metricType models.MetricType, params rawMetricParams, conversion *rawConversion) (models.MetricParams, error) {
	switch metricType {
	case models.MetricRatio:
		numerator, err := refName(params.Numerator)
		if err != nil {
			return nil, fmt.Errorf("numerator: %w", err)
		}

		denominator, err := refName(params.Denominator)
		if err != nil {
			return nil, fmt.Errorf("denominator: %w", err)
		}

		if numerator == "" || denominator == "" {
			return nil, fmt.Errorf("%w: numerator and denominator", models.ErrMissingField)
		}

		return models.RatioParams{Numerator: numerator, Denominator: denominator}, nil
	case models.MetricDerived:
		refs := make([]models.MetricRef, 0, len(params.Metrics))

		for i, item := range params.Metrics {
			ref, err := metricRef(item)
			if err != nil {
				return nil, fmt.Errorf("metrics[%d]: %w", i, err)
			}

			refs = append(refs, ref)
		}

		if params.Expr == "" && len(refs) == 0 {
			return nil, fmt.Errorf("%w: expr", models.ErrMissingField)
		}

		return models.DerivedParams{Expr: params.Expr, Metrics: refs}, nil
	case models.MetricConversion:
		if conversion == nil {
			conversion = &rawConversion{}
		}

		base, err := refName(conversion.BaseMeasure)
		if err != nil {
			return nil, fmt.Errorf("base_measure: %w", err)
		}

		target, err := refName(conversion.ConversionMeasure)
		if err != nil {
			return nil, fmt.Errorf("conversion_measure: %w", err)
		}

		return models.ConversionParams{
			Entity:            conversion.Entity,
			BaseMeasure:       base,
			ConversionMeasure: target,
			Window:            conversion.Window,
		}, nil
	default:
		measure, err := refName(params.Measure)
		if err != nil {
			return nil, fmt.Errorf("measure: %w", err)
		}

		if measure == "" {
			return nil, fmt.Errorf("%w: measure", models.ErrMissingField)
		}

		return models.SimpleParams{Measure: measure}, nil
	}
}

// parsePoP drops unknown comparisons/outputs and duplicates, keeping order
func (b *Builder) parsePoP(path, name string, spec *rawPoP) *models.PoPConfig {
	if spec == nil {
		return nil
	}

	config := &models.PoPConfig{DateDimension: spec.DateDimension}

	seenComparisons := make(map[models.Comparison]bool)
	for _, raw := range spec.Comparisons {
		comparison, ok := models.ParseComparison(raw)
		if !ok {
			b.warnEnum(path, name, "pop.comparisons", raw, "")
			continue
		}

		if !seenComparisons[comparison] {
			seenComparisons[comparison] = true
			config.Comparisons = append(config.Comparisons, comparison)
		}
	}

	seenOutputs := make(map[models.Output]bool)
	for _, raw := range spec.Outputs {
		output, ok := models.ParseOutput(raw)
		if !ok {
			b.warnEnum(path, name, "pop.outputs", raw, "")
			continue
		}

		if !seenOutputs[output] {
			seenOutputs[output] = true
			config.Outputs = append(config.Outputs, output)
		}
	}

	return config
}

func parseDateSelector(raw any) *models.DateSelectorConfig {
	switch value := raw.(type) {
	case nil:
		return nil
	case bool:
		return &models.DateSelectorConfig{Enabled: value}
	case []any:
		return &models.DateSelectorConfig{Enabled: true, Dimensions: stringList(value)}
	case map[string]any:
		config := &models.DateSelectorConfig{Enabled: true}
		if enabled, ok := value["enabled"].(bool); ok {
			config.Enabled = enabled
		}

		if dims, ok := value["dimensions"].([]any); ok {
			config.Dimensions = stringList(dims)
		}

		return config
	default:
		return nil
	}
}

func parseLabels(group string, meta map[string]any) models.LabelMeta {
	labels := models.LabelMeta{
		Group:    group,
		Subject:  metaString(meta, "subject"),
		Category: metaString(meta, "category"),
	}

	if labels.Group == "" {
		labels.Group = metaString(meta, "group")
	}

	if hierarchy, ok := meta["hierarchy"].(map[string]any); ok {
		labels.Hierarchy = &models.Hierarchy{
			Entity:      metaString(hierarchy, "entity"),
			Category:    metaString(hierarchy, "category"),
			Subcategory: metaString(hierarchy, "subcategory"),
		}
	}

	return labels
}

// parseFilter accepts a list of {field, operator, value} conditions, a
// mapping with a "conditions" list, or a field -> value equality mapping
func parseFilter(raw any) (*models.Filter, error) {
	switch value := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		return parseConditions(value)
	case map[string]any:
		if conditions, ok := value["conditions"].([]any); ok {
			return parseConditions(conditions)
		}

		fields := make([]string, 0, len(value))
		for field := range value {
			fields = append(fields, field)
		}

		sort.Strings(fields)

		filter := &models.Filter{}
		for _, field := range fields {
			operator := models.OperatorEqual
			if _, isList := value[field].([]any); isList {
				operator = models.OperatorIn
			}

			filter.Conditions = append(filter.Conditions, models.FilterCondition{
				Field:    field,
				Operator: operator,
				Value:    value[field],
			})
		}

		return filter, nil
	default:
		return nil, ErrInvalidFilter
	}
}

func parseConditions(items []any) (*models.Filter, error) {
	filter := &models.Filter{}

	for i, item := range items {
		var spec rawFilterCondition
		if err := decode(item, &spec); err != nil {
			return nil, fmt.Errorf("condition %d: %w", i, err)
		}

		if spec.Field == "" {
			return nil, fmt.Errorf("condition %d: %w: field", i, models.ErrMissingField)
		}

		operator, ok := models.ParseOperator(spec.Operator)
		if !ok {
			return nil, fmt.Errorf("condition %d: %w: unknown operator %q", i, ErrInvalidFilter, spec.Operator)
		}

		filter.Conditions = append(filter.Conditions, models.FilterCondition{
			Field:    spec.Field,
			Operator: operator,
			Value:    spec.Value,
		})
	}

	return filter, nil
}

func mergeParams(top, nested rawMetricParams) rawMetricParams {
	if top.Measure == nil {
		top.Measure = nested.Measure
	}

	if top.Numerator == nil {
		top.Numerator = nested.Numerator
	}

	if top.Denominator == nil {
		top.Denominator = nested.Denominator
	}

	if top.Expr == "" {
		top.Expr = nested.Expr
	}

	if len(top.Metrics) == 0 {
		top.Metrics = nested.Metrics
	}

	return top
}

func refName(raw any) (string, error) {
	switch value := raw.(type) {
	case nil:
		return "", nil
	case string:
		return value, nil
	case map[string]any:
		name, ok := value["name"].(string)
		if !ok {
			return "", ErrInvalidReference
		}

		return name, nil
	default:
		return "", ErrInvalidReference
	}
}

func metricRef(raw any) (models.MetricRef, error) {
	switch value := raw.(type) {
	case string:
		return models.MetricRef{Name: value}, nil
	case map[string]any:
		name, ok := value["name"].(string)
		if !ok || name == "" {
			return models.MetricRef{}, ErrInvalidReference
		}

		alias, _ := value["alias"].(string)

		return models.MetricRef{Name: name, Alias: alias}, nil
	default:
		return models.MetricRef{}, ErrInvalidReference
	}
}

func metaString(meta map[string]any, key string) string {
	if value, ok := meta[key].(string); ok {
		return value
	}

	return ""
}

func metaBool(meta map[string]any, key string) bool {
	value, ok := meta[key].(bool)

	return ok && value
}

func stringList(items []any) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}

	return out
}
