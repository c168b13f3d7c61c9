package rendering

import (
	"github.com/ethpandaops/semlook/pkg/models"
	"github.com/ethpandaops/semlook/pkg/rendering/lookml"
)

// fieldLabel returns the explicit label or a title-cased name
func fieldLabel(label, name string) string {
	if label != "" {
		return label
	}

	return models.Title(name)
}

// labelAttrs resolves label, view_label and group_label. The group path
// wins over flat subject/category, which win over the hierarchy block.
func labelAttrs(label, name string, meta models.LabelMeta) []lookml.Attr {
	return []lookml.Attr{
		lookml.String("label", fieldLabel(label, name)),
		lookml.String("view_label", meta.ViewLabel()),
		lookml.String("group_label", meta.GroupLabel()),
	}
}
