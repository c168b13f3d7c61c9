// Package explore infers explore joins from entity declarations
package explore

import (
	"fmt"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/observability"
)

// Options controls join inference
type Options struct {
	// ReverseJoins also joins models declaring the fact's primary entity as
	// a foreign entity
	ReverseJoins bool
	// Calendar synthesizes a date selector view
	Calendar bool
	// Overrides forces the expose level of joined models by name
	Overrides map[string]ExposeLevel
	// ViewPrefix is prepended to every view name
	ViewPrefix string
	// ExplorePrefix is prepended to the explore name
	ExplorePrefix string
}

// ViewName returns the view name of a model
func (o Options) ViewName(model string) string {
	return o.ViewPrefix + model
}

// Infer builds the explore for fact. Forward joins follow the fact's foreign
// entities in declaration order; reverse joins follow in registry order.
// The fact is never joined to itself and each model is joined at most once.
func Infer(fact string, registry *Registry, opts Options) (*Explore, error) {
	factModel, ok := registry.Model(fact)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, fact)
	}

	explore := &Explore{
		Name:  opts.ExplorePrefix + fact,
		Fact:  factModel,
		View:  opts.ViewName(fact),
		Joins: make([]Join, 0),
	}

	joined := map[string]bool{fact: true}

	for _, entity := range factModel.ForeignEntities() {
		target, ok := registry.ModelForEntity(entity.Name)
		if !ok || joined[target.Name] {
			continue
		}

		primary, _ := target.PrimaryEntity()
		joined[target.Name] = true

		explore.Joins = append(explore.Joins, Join{
			Model:        target.Name,
			View:         opts.ViewName(target.Name),
			Relationship: ManyToOne,
			Type:         JoinTypeLeftOuter,
			FactEntity:   entity.Name,
			TargetEntity: primary.Name,
			FactExpr:     entity.SQL(),
			TargetExpr:   primary.SQL(),
			Expose:       exposeLevel(target.Name, entity, opts),
		})
	}

	if primary, ok := factModel.PrimaryEntity(); ok && opts.ReverseJoins {
		for _, candidate := range registry.Models() {
			if joined[candidate.Name] {
				continue
			}

			entity, ok := candidate.ForeignEntity(primary.Name)
			if !ok {
				continue
			}

			joined[candidate.Name] = true

			explore.Joins = append(explore.Joins, Join{
				Model:        candidate.Name,
				View:         opts.ViewName(candidate.Name),
				Relationship: OneToMany,
				Type:         JoinTypeLeftOuter,
				FactEntity:   primary.Name,
				TargetEntity: entity.Name,
				FactExpr:     primary.SQL(),
				TargetExpr:   entity.SQL(),
				Expose:       exposeLevel(candidate.Name, entity, opts),
				Reverse:      true,
			})
		}
	}

	for _, join := range explore.Joins {
		observability.RecordJoin(string(join.Relationship), string(join.Expose))
	}

	if opts.Calendar {
		explore.Calendar = buildCalendar(explore, registry)
	}

	return explore, nil
}

// exposeLevel applies an explicit override, else the linking entity's
// complete flag
func exposeLevel(model string, entity models.Entity, opts Options) ExposeLevel {
	if level, ok := opts.Overrides[model]; ok && level != "" {
		return level
	}

	if entity.Complete {
		return ExposeAll
	}

	return ExposeDimensionsOnly
}
