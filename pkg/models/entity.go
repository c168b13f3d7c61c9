package models

// Entity is a join key role (primary or foreign) on a semantic model
type Entity struct {
	Name  string
	Type  EntityType
	Expr  string
	Label string
	// Complete declares every row has a match in the referenced model, which
	// makes exposing the joined model's measures safe.
	Complete bool
}

// SQL returns the key expression, defaulting to a column named after the entity
func (e Entity) SQL() string {
	if e.Expr == "" {
		return TableRef + "." + e.Name
	}

	return QualifyColumn(e.Expr)
}

// IsPrimary reports whether this is the model's primary key
func (e Entity) IsPrimary() bool {
	return e.Type == EntityPrimary
}

// IsForeign reports whether this entity points at another model
func (e Entity) IsForeign() bool {
	return e.Type == EntityForeign
}
