package builder

import (
	"errors"

	"github.com/ethpandaops/semlook/pkg/models"
)

// Project is the immutable output of a Builder run
type Project struct {
	// Models in declaration order, each owning its metrics
	Models []*models.ProcessedModel
	// Metrics lists every metric, inline ones first
	Metrics []*models.Metric
	// Unowned holds top-level metrics no model could be resolved for
	Unowned []*models.Metric
	// Errors are the elements skipped in lenient mode
	Errors []error
	// Warnings are recoverable problems such as unbound data models
	Warnings []error
	// Graph indexes metric references; cycles and dangling references are
	// reported in Warnings and left to validation
	Graph *models.MetricGraph
}

// Model looks up a model by name
func (p *Project) Model(name string) (*models.ProcessedModel, bool) {
	for _, model := range p.Models {
		if model.Name == name {
			return model, true
		}
	}

	return nil, false
}

// Metric looks up a metric by name, owned or not
func (p *Project) Metric(name string) (*models.Metric, bool) {
	for _, metric := range p.Metrics {
		if metric.Name == name {
			return metric, true
		}
	}

	return nil, false
}

// Resolver returns a MetricResolver over every metric in the project
func (p *Project) Resolver() models.MetricResolver {
	if p.Graph != nil {
		return p.Graph.Resolver()
	}

	return p.Metric
}

// MetricOwner returns the model owning the metric, if any
func (p *Project) MetricOwner(name string) (*models.ProcessedModel, bool) {
	for _, model := range p.Models {
		if _, ok := model.Metric(name); ok {
			return model, true
		}
	}

	return nil, false
}

// Err joins all collected errors, or returns nil
func (p *Project) Err() error {
	return errors.Join(p.Errors...)
}
