package explore

import (
	"errors"
	"fmt"

	"github.com/ethpandaops/semlook/pkg/models"
)

// Registry indexes models by name and by primary entity
type Registry struct {
	models    map[string]*models.ProcessedModel
	order     []string
	byPrimary map[string]string
}

// NewRegistry indexes modelList. Every primary entity declared by more than
// one model is reported, joined, as ErrAmbiguousEntity.
func NewRegistry(modelList []*models.ProcessedModel) (*Registry, error) {
	r := &Registry{
		models:    make(map[string]*models.ProcessedModel, len(modelList)),
		order:     make([]string, 0, len(modelList)),
		byPrimary: make(map[string]string, len(modelList)),
	}

	var errs []error

	for _, model := range modelList {
		if _, exists := r.models[model.Name]; exists {
			errs = append(errs, fmt.Errorf("%w: model %s", models.ErrDuplicateName, model.Name))
			continue
		}

		r.models[model.Name] = model
		r.order = append(r.order, model.Name)

		primary := model.PrimaryEntityName()
		if primary == "" {
			continue
		}

		if owner, exists := r.byPrimary[primary]; exists {
			errs = append(errs, fmt.Errorf("%w: %s is primary on %s and %s", ErrAmbiguousEntity, primary, owner, model.Name))
			continue
		}

		r.byPrimary[primary] = model.Name
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	return r, nil
}

// Model returns a model by name
func (r *Registry) Model(name string) (*models.ProcessedModel, bool) {
	model, ok := r.models[name]

	return model, ok
}

// ModelForEntity returns the model whose primary entity is entity
func (r *Registry) ModelForEntity(entity string) (*models.ProcessedModel, bool) {
	name, ok := r.byPrimary[entity]
	if !ok {
		return nil, false
	}

	return r.models[name], true
}

// Models returns the registered models in declaration order
func (r *Registry) Models() []*models.ProcessedModel {
	out := make([]*models.ProcessedModel, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.models[name])
	}

	return out
}

// DefaultFacts returns the models an explore is generated for when none are
// named: every model with a primary entity and at least one measure or metric
func (r *Registry) DefaultFacts() []string {
	facts := make([]string, 0, len(r.order))

	for _, name := range r.order {
		model := r.models[name]
		if model.PrimaryEntityName() != "" && (len(model.Measures) > 0 || len(model.Metrics) > 0) {
			facts = append(facts, name)
		}
	}

	return facts
}
