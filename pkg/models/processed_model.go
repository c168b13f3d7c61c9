package models

// DateSelectorConfig opts a model's time dimensions into the calendar view
type DateSelectorConfig struct {
	Enabled bool
	// Dimensions restricts eligibility; empty means every time dimension
	Dimensions []string
}

// ProcessedModel is a fully resolved semantic model. It is built once and not
// mutated afterwards; overrides produce copies.
type ProcessedModel struct {
	Name         string
	Label        string
	Description  string
	DataModel    *DataModel
	Entities     []Entity
	Dimensions   []Dimension
	Measures     []Measure
	Metrics      []*Metric
	DateSelector *DateSelectorConfig
	Meta         map[string]any
	// Source is the file the model was declared in
	Source string
}

// PrimaryEntity returns the model's primary entity, if any
func (m *ProcessedModel) PrimaryEntity() (Entity, bool) {
	for _, entity := range m.Entities {
		if entity.IsPrimary() {
			return entity, true
		}
	}

	return Entity{}, false
}

// PrimaryEntityName returns the primary entity name or ""
func (m *ProcessedModel) PrimaryEntityName() string {
	entity, _ := m.PrimaryEntity()

	return entity.Name
}

// ForeignEntities returns the foreign entities in declaration order
func (m *ProcessedModel) ForeignEntities() []Entity {
	out := make([]Entity, 0, len(m.Entities))
	for _, entity := range m.Entities {
		if entity.IsForeign() {
			out = append(out, entity)
		}
	}

	return out
}

// ForeignEntity looks up a foreign entity by name
func (m *ProcessedModel) ForeignEntity(name string) (Entity, bool) {
	for _, entity := range m.Entities {
		if entity.IsForeign() && entity.Name == name {
			return entity, true
		}
	}

	return Entity{}, false
}

// TimeDimensions returns the time dimensions in declaration order
func (m *ProcessedModel) TimeDimensions() []Dimension {
	out := make([]Dimension, 0, len(m.Dimensions))
	for _, dim := range m.Dimensions {
		if dim.IsTime() {
			out = append(out, dim)
		}
	}

	return out
}

// DateSelectorDimensions returns the time dimensions eligible for the calendar
// view: flagged on the dimension, listed in the model's date_selector, or every
// time dimension when date_selector is enabled without a list.
func (m *ProcessedModel) DateSelectorDimensions() []Dimension {
	listed := make(map[string]bool)
	all := false

	if m.DateSelector != nil {
		for _, name := range m.DateSelector.Dimensions {
			listed[name] = true
		}

		all = m.DateSelector.Enabled && len(m.DateSelector.Dimensions) == 0
	}

	out := make([]Dimension, 0)
	for _, dim := range m.TimeDimensions() {
		if all || dim.DateSelector || listed[dim.Name] {
			out = append(out, dim)
		}
	}

	return out
}

// Dimension looks up a dimension by name
func (m *ProcessedModel) Dimension(name string) (Dimension, bool) {
	for _, dim := range m.Dimensions {
		if dim.Name == name {
			return dim, true
		}
	}

	return Dimension{}, false
}

// Measure looks up a measure by name
func (m *ProcessedModel) Measure(name string) (Measure, bool) {
	for _, measure := range m.Measures {
		if measure.Name == name {
			return measure, true
		}
	}

	return Measure{}, false
}

// Metric looks up a metric by name
func (m *ProcessedModel) Metric(name string) (*Metric, bool) {
	for _, metric := range m.Metrics {
		if metric.Name == name {
			return metric, true
		}
	}

	return nil, false
}

// Tags returns the string tags listed under meta.tags
func (m *ProcessedModel) Tags() []string {
	raw, ok := m.Meta["tags"]
	if !ok {
		return nil
	}

	switch tags := raw.(type) {
	case []string:
		return tags
	case []any:
		out := make([]string, 0, len(tags))
		for _, tag := range tags {
			if s, ok := tag.(string); ok {
				out = append(out, s)
			}
		}

		return out
	case string:
		return []string{tags}
	default:
		return nil
	}
}

// WithSchema returns a copy whose data model points at another schema
func (m *ProcessedModel) WithSchema(schema string) *ProcessedModel {
	clone := m.clone()
	clone.DataModel = m.DataModel.WithSchema(schema)

	return clone
}

// WithMetrics returns a copy owning the given metrics
func (m *ProcessedModel) WithMetrics(metrics []*Metric) *ProcessedModel {
	clone := m.clone()
	clone.Metrics = append([]*Metric(nil), metrics...)

	return clone
}

func (m *ProcessedModel) clone() *ProcessedModel {
	clone := *m
	clone.Entities = append([]Entity(nil), m.Entities...)
	clone.Dimensions = append([]Dimension(nil), m.Dimensions...)
	clone.Measures = append([]Measure(nil), m.Measures...)
	clone.Metrics = append([]*Metric(nil), m.Metrics...)

	return &clone
}
