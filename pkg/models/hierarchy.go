package models

import "strings"

// Hierarchy is the nested three-tier labeling block (meta.hierarchy)
type Hierarchy struct {
	Entity      string
	Category    string
	Subcategory string
}

// LabelMeta carries every labeling source of a field. Resolution order is
// explicit group path, then flat subject/category, then hierarchy. The flat
// pair and the hierarchy are never mixed: once either flat tier is set the
// hierarchy is ignored.
type LabelMeta struct {
	// Group is the dot-delimited group path, e.g. "Orders.Revenue"
	Group     string
	Subject   string
	Category  string
	Hierarchy *Hierarchy
}

// ViewLabel resolves the label of the view section the field is listed under
func (l LabelMeta) ViewLabel() string {
	if parts := l.groupPath(); len(parts) > 1 {
		return parts[0]
	}

	if l.hasFlat() {
		return l.Subject
	}

	if l.Hierarchy != nil {
		return l.Hierarchy.Entity
	}

	return ""
}

// GroupLabel resolves the group the field is nested under
func (l LabelMeta) GroupLabel() string {
	if parts := l.groupPath(); len(parts) > 0 {
		return parts[len(parts)-1]
	}

	if l.hasFlat() {
		return l.Category
	}

	if l.Hierarchy != nil {
		if l.Hierarchy.Subcategory != "" {
			return l.Hierarchy.Subcategory
		}

		return l.Hierarchy.Category
	}

	return ""
}

// IsEmpty reports whether no labeling source is set
func (l LabelMeta) IsEmpty() bool {
	return l.Group == "" && l.Subject == "" && l.Category == "" && l.Hierarchy == nil
}

func (l LabelMeta) hasFlat() bool {
	return l.Subject != "" || l.Category != ""
}

func (l LabelMeta) groupPath() []string {
	if strings.TrimSpace(l.Group) == "" {
		return nil
	}

	raw := strings.Split(l.Group, ".")
	parts := make([]string, 0, len(raw))

	for _, part := range raw {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}

	return parts
}
