package models

import "strings"

// DataModel binds a semantic model to a physical warehouse table
type DataModel struct {
	Name       string
	Catalog    string
	Schema     string
	Table      string
	Connection string
}

// TableRef returns the qualified table name, skipping empty parts
func (d *DataModel) TableRef() string {
	if d == nil {
		return ""
	}

	parts := make([]string, 0, 3)
	for _, part := range []string{d.Catalog, d.Schema, d.Table} {
		if part != "" {
			parts = append(parts, part)
		}
	}

	return strings.Join(parts, ".")
}

// WithSchema returns a copy bound to another schema
func (d *DataModel) WithSchema(schema string) *DataModel {
	if d == nil {
		return nil
	}

	clone := *d
	clone.Schema = schema

	return &clone
}
