package models

// ModelOverride represents configuration overrides for a specific model.
// All fields are optional - nil means keep the value from the semantic model.
type ModelOverride struct {
	Enabled *bool   `yaml:"enabled,omitempty"`
	Schema  *string `yaml:"schema,omitempty"`
	// Expose forces the field exposure when this model is joined into an
	// explore: "all" or "dimensions_only"
	Expose *string `yaml:"expose,omitempty"`
	Label  *string `yaml:"label,omitempty"`
}

// ApplyToModel returns the overridden model. The input is never modified.
func (o *ModelOverride) ApplyToModel(model *ProcessedModel) *ProcessedModel {
	if o == nil {
		return model
	}

	result := model

	if o.Schema != nil && *o.Schema != "" && model.DataModel != nil {
		result = result.WithSchema(*o.Schema)
	}

	if o.Label != nil {
		if result == model {
			result = model.clone()
		}

		result.Label = *o.Label
	}

	return result
}

// IsDisabled returns true if the model is explicitly disabled
func (o *ModelOverride) IsDisabled() bool {
	return o != nil && o.Enabled != nil && !*o.Enabled
}

// ApplyOverrides applies per-model overrides and a global schema, dropping
// disabled models. The input slice and its models are left untouched.
func ApplyOverrides(models []*ProcessedModel, overrides map[string]*ModelOverride, schema string) []*ProcessedModel {
	out := make([]*ProcessedModel, 0, len(models))

	for _, model := range models {
		override := overrides[model.Name]
		if override.IsDisabled() {
			continue
		}

		result := model
		if schema != "" && model.DataModel != nil {
			result = result.WithSchema(schema)
		}

		out = append(out, override.ApplyToModel(result))
	}

	return out
}
