package rendering

import (
	"errors"

	"github.com/ethpandaops/semlook/pkg/explore"
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
	"github.com/sirupsen/logrus"
)

// RenderView renders a model as a view block. Problems local to one metric
// are recorded as warnings and the metric is skipped.
func (r *Renderer) RenderView(model *models.ProcessedModel) (*lookml.Block, error) {
	view := r.config.ViewName(model.Name)

	block := lookml.NewBlock("view", view)

	tableName := model.Name
	if model.DataModel != nil {
		tableName = model.DataModel.TableRef()
	}

	block.Add(
		lookml.SQL("sql_table_name", tableName),
		lookml.String("label", model.Label),
	)

	setFields := make([]string, 0)

	for _, entity := range model.Entities {
		if _, clash := model.Dimension(entity.Name); clash {
			continue
		}

		block.AddChild(renderEntity(entity))
		setFields = append(setFields, entity.Name)
	}

	for _, dim := range model.Dimensions {
		dimBlocks, err := r.renderDimension(dim)
		if err != nil {
			return nil, err
		}

		block.AddChild(dimBlocks...)
		setFields = append(setFields, dimensionFields(dim)...)
	}

	for _, measure := range model.Measures {
		hidden := r.referenced[view+"."+measure.Name]
		block.AddChild(renderMeasure(measure, MeasureFieldName(measure.Name), nil, hidden))
	}

	strategy := r.newPoPStrategy(model, view)

	for _, metric := range model.Metrics {
		metricBlocks := r.renderMetric(model, view, metric)
		if metricBlocks == nil {
			continue
		}

		block.AddChild(metricBlocks...)

		if !metric.HasPoP() {
			continue
		}

		for _, variant := range metric.Variants() {
			popBlocks, err := strategy.Render(metric, variant)
			if err != nil {
				fields := logrus.Fields{"metric": metric.Name, "view": view, "strategy": r.config.PoPStrategy}
				if errors.Is(err, ErrDynamicUnsupported) || errors.Is(err, ErrNoDateDimension) {
					r.warn(fields, "skipping period-over-period of %s: %v", metric.Name, err)

					break
				}

				return nil, err
			}

			block.AddChild(popBlocks...)
		}
	}

	block.AddChild(strategy.ViewFields()...)
	block.AddChild(lookml.NewBlock("set", explore.DimensionsOnlySet).Add(lookml.List("fields", setFields...)))

	return block, nil
}
