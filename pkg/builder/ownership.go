package builder

import (
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/sirupsen/logrus"
)

// assignOwners attaches top-level metrics to a model and returns the ones no
// model could be found for. A metric goes to the model whose primary entity
// matches its declared entity, otherwise to the model defining its first
// required measure.
func (b *Builder) assignOwners(processed []*models.ProcessedModel, metrics []*models.Metric, resolve models.MetricResolver) []*models.Metric {
	byPrimary := make(map[string]*models.ProcessedModel, len(processed))
	ambiguous := make(map[string]bool)
	byMeasure := make(map[string]*models.ProcessedModel)

	for _, model := range processed {
		if primary := model.PrimaryEntityName(); primary != "" {
			if _, exists := byPrimary[primary]; exists {
				ambiguous[primary] = true
			} else {
				byPrimary[primary] = model
			}
		}

		for _, measure := range model.Measures {
			if _, exists := byMeasure[measure.Name]; !exists {
				byMeasure[measure.Name] = model
			}
		}
	}

	unowned := make([]*models.Metric, 0)

	for _, metric := range metrics {
		owner := ownerFor(metric, resolve, byPrimary, ambiguous, byMeasure)
		if owner == nil {
			b.log.WithFields(logrus.Fields{
				"metric": metric.Name,
				"entity": metric.Entity,
			}).Warn("No model owns metric; it will not be rendered on any view")

			unowned = append(unowned, metric)

			continue
		}

		owner.Metrics = append(owner.Metrics, metric)
	}

	return unowned
}

func ownerFor(
	metric *models.Metric,
	resolve models.MetricResolver,
	byPrimary map[string]*models.ProcessedModel,
	ambiguous map[string]bool,
	byMeasure map[string]*models.ProcessedModel,
) *models.ProcessedModel {
	entity := metric.Entity
	if params, ok := metric.Params.(models.ConversionParams); ok && entity == "" {
		entity = params.Entity
	}

	if entity != "" && !ambiguous[entity] {
		if model, ok := byPrimary[entity]; ok {
			return model
		}
	}

	measures := metric.RequiredMeasures(resolve)
	if params, ok := metric.Params.(models.ConversionParams); ok {
		measures = append(measures, params.BaseMeasure, params.ConversionMeasure)
	}

	for _, measure := range measures {
		if model, ok := byMeasure[measure]; ok {
			return model
		}
	}

	return nil
}
