// Package schema describes the tables of the content store in a dialect neutral form.
// Dialect packages turn these definitions into DDL.
package schema

import "sort"

// FieldType represents the column types supported by the schema system.
type FieldType string

const (
	FieldTypeString    FieldType = "string"    // Short text
	FieldTypeText      FieldType = "text"      // Large-object text, compared with the dialect's LOB function
	FieldTypeInteger   FieldType = "integer"   // Whole numbers and identifiers
	FieldTypeBoolean   FieldType = "boolean"   // Stored as 0/1
	FieldTypeTimestamp FieldType = "timestamp" // Point in time
)

// IndexType represents index types.
type IndexType string

const (
	IndexTypeNormal  IndexType = "normal"  // General-purpose index
	IndexTypeUnique  IndexType = "unique"  // Unique index
	IndexTypePrimary IndexType = "primary" // Primary key index (implies unique)
)

// FieldDefinition describes a single column.
type FieldDefinition struct {
	Name string    `json:"name"`
	Type FieldType `json:"type"`
	// Required indicates if the column is NOT NULL.
	Required *bool `json:"required,omitempty"`
	// Unique indicates if the column must hold unique values.
	Unique *bool `json:"unique,omitempty"`
	// Default provides a default value for the column.
	Default any `json:"default,omitempty"`
	// Description provides a brief explanation of the column.
	Description *string `json:"description,omitempty"`
}

// IndexDefinition describes an index over one or more columns.
type IndexDefinition struct {
	Fields []string  `json:"fields"`
	Type   IndexType `json:"type"`
	Unique *bool     `json:"unique,omitempty"`
	Order  *string   `json:"order,omitempty"` // "asc" | "desc"
	Name   string    `json:"name"`
}

// SchemaDefinition describes one table.
type SchemaDefinition struct {
	Name        string                      `json:"name"`
	Version     string                      `json:"version"`
	Description *string                     `json:"description,omitempty"`
	Fields      map[string]*FieldDefinition `json:"fields"`
	Indexes     []IndexDefinition           `json:"indexes,omitempty"`
}

// FindField returns the field with the given column name, or nil.
func (s *SchemaDefinition) FindField(name string) *FieldDefinition {
	for _, field := range s.Fields {
		if field.Name == name {
			return field
		}
	}
	return nil
}

// OrderedFields returns the fields sorted by column name, so generated DDL is stable.
func (s *SchemaDefinition) OrderedFields() []*FieldDefinition {
	fields := make([]*FieldDefinition, 0, len(s.Fields))
	for _, field := range s.Fields {
		fields = append(fields, field)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	return fields
}

// PrimaryKey returns the fields of the primary index, if any.
func (s *SchemaDefinition) PrimaryKey() []string {
	for _, index := range s.Indexes {
		if index.Type == IndexTypePrimary && len(index.Fields) > 0 {
			return index.Fields
		}
	}
	return nil
}
