package rendering

import (
	"fmt"

	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
)

// renderEntity renders an entity as a hidden key dimension
func renderEntity(entity models.Entity) *lookml.Block {
	block := lookml.NewBlock("dimension", entity.Name)

	if entity.IsPrimary() {
		block.Add(lookml.Yes("primary_key"))
	}

	return block.Add(
		lookml.Yes("hidden"),
		lookml.SQL("sql", entity.SQL()),
		lookml.String("label", fieldLabel(entity.Label, entity.Name)),
	)
}

// renderDimension renders a categorical dimension, or a time dimension as a
// dimension group plus one group per variant
func (r *Renderer) renderDimension(dim models.Dimension) ([]*lookml.Block, error) {
	if !dim.IsTime() {
		block := lookml.NewBlock("dimension", dim.Name).Add(
			lookml.Bare("type", "string"),
			lookml.SQL("sql", dim.SQL()),
		)
		block.Add(labelAttrs(dim.Label, dim.Name, dim.Labels)...)
		block.Add(lookml.String("description", dim.Description))

		if dim.Hidden {
			block.Add(lookml.Yes("hidden"))
		}

		return []*lookml.Block{block}, nil
	}

	variants := dim.ExpandVariants()

	sql := dim.SQL()
	for _, variant := range variants {
		if variant.Primary {
			sql = variant.SQL
		}
	}

	blocks := []*lookml.Block{r.dimensionGroup(dim, dim.Name, sql, fieldLabel(dim.Label, dim.Name), dim.Hidden)}

	for _, variant := range variants {
		label, err := r.templates.Execute(templateVariant, VariantLabelData{
			Label:     fieldLabel(dim.Label, dim.Name),
			Dimension: dim.Name,
			Variant:   variant.Name,
			Primary:   variant.Primary,
		})
		if err != nil {
			return nil, fmt.Errorf("dimension %s variant %s: %w", dim.Name, variant.Name, err)
		}

		hidden := dim.Hidden || (!variant.Primary && r.config.HideNonPrimaryVariants)
		blocks = append(blocks, r.dimensionGroup(dim, variant.FieldName, variant.SQL, label, hidden))
	}

	return blocks, nil
}

func (r *Renderer) dimensionGroup(dim models.Dimension, name, sql, label string, hidden bool) *lookml.Block {
	block := lookml.NewBlock("dimension_group", name).Add(
		lookml.Bare("type", "time"),
		lookml.List("timeframes", dim.Timeframes()...),
		lookml.SQL("sql", sql),
		lookml.String("label", label),
		lookml.String("view_label", dim.Labels.ViewLabel()),
		lookml.String("group_label", dim.Labels.GroupLabel()),
		lookml.String("description", dim.Description),
	)

	if hidden {
		block.Add(lookml.Yes("hidden"))
	}

	return block
}

// dimensionFields lists the selectable field names a dimension produces
func dimensionFields(dim models.Dimension) []string {
	if !dim.IsTime() {
		return []string{dim.Name}
	}

	groups := []string{dim.Name}
	for _, variant := range dim.ExpandVariants() {
		groups = append(groups, variant.FieldName)
	}

	fields := make([]string, 0, len(groups)*len(dim.Timeframes()))
	for _, group := range groups {
		for _, timeframe := range dim.Timeframes() {
			fields = append(fields, group+"_"+timeframe)
		}
	}

	return fields
}
