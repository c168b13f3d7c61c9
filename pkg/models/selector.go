package models

import (
	"github.com/sirupsen/logrus"
)

// ModelTags defines tag-based filtering for model selection
type ModelTags struct {
	Include []string `yaml:"include,omitempty"` // Tags to include (OR logic)
	Exclude []string `yaml:"exclude,omitempty"` // Tags to exclude (AND logic)
	Require []string `yaml:"require,omitempty"` // Tags that must ALL be present (AND logic)
}

// IsEmpty reports whether no tag rule is configured
func (t *ModelTags) IsEmpty() bool {
	return t == nil || (len(t.Include) == 0 && len(t.Exclude) == 0 && len(t.Require) == 0)
}

// ModelSelector filters processed models by the tags in their meta block
type ModelSelector struct {
	logger logrus.FieldLogger
}

// NewModelSelector creates a new model selector
func NewModelSelector(logger logrus.FieldLogger) *ModelSelector {
	return &ModelSelector{
		logger: logger.WithField("component", "model-selector"),
	}
}

// Select returns the models matching the tag configuration, preserving order
func (f *ModelSelector) Select(models []*ProcessedModel, tags *ModelTags) []*ProcessedModel {
	if tags.IsEmpty() {
		return models
	}

	selected := make([]*ProcessedModel, 0, len(models))

	for _, model := range models {
		modelTags := model.Tags()
		if f.shouldIncludeModel(modelTags, tags) {
			selected = append(selected, model)
			f.logger.WithField("model", model.Name).
				WithField("tags", modelTags).
				Debug("Model included based on tag filtering")
		} else {
			f.logger.WithField("model", model.Name).
				WithField("tags", modelTags).
				Debug("Model excluded based on tag filtering")
		}
	}

	f.logger.WithField("total_models", len(models)).
		WithField("selected_models", len(selected)).
		Info("Applied tag-based model selection")

	return selected
}

func (f *ModelSelector) shouldIncludeModel(modelTags []string, filter *ModelTags) bool {
	tagSet := make(map[string]bool, len(modelTags))
	for _, tag := range modelTags {
		tagSet[tag] = true
	}

	for _, excludeTag := range filter.Exclude {
		if tagSet[excludeTag] {
			return false
		}
	}

	for _, requireTag := range filter.Require {
		if !tagSet[requireTag] {
			return false
		}
	}

	if len(filter.Include) > 0 {
		for _, includeTag := range filter.Include {
			if tagSet[includeTag] {
				return true
			}
		}

		return false
	}

	return true
}
