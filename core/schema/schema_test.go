package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContentSchemas(t *testing.T) {
	defs, err := ContentSchemas()
	require.NoError(t, err)

	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
		ok, issues := def.Validate()
		assert.True(t, ok, "schema %s: %v", def.Name, issues)
		assert.NotEmpty(t, def.PrimaryKey(), "schema %s has no primary key", def.Name)
	}
	assert.Equal(t, []string{
		TableItem, TableBundle, TableBitstream, TableItem2Bundle, TableBundle2Bitstream,
		TableMetadataSchema, TableMetadataField, TableMetadataValue, TableWebapp,
	}, names)
}

func TestContentSchemas_NamesAreMetadata(t *testing.T) {
	defs, err := ContentSchemas()
	require.NoError(t, err)

	for _, def := range defs {
		if def.Name == TableBundle || def.Name == TableBitstream {
			assert.Nil(t, def.FindField("name"), "%s names are stored as metadata values", def.Name)
		}
		if def.Name == TableMetadataValue {
			field := def.FindField("text_value")
			require.NotNil(t, field)
			assert.Equal(t, FieldTypeText, field.Type)
		}
	}
}

func TestOrderedFields(t *testing.T) {
	sc := SchemaDefinition{
		Name: "t",
		Fields: map[string]*FieldDefinition{
			"zeta":  {Name: "zeta", Type: FieldTypeString},
			"alpha": {Name: "alpha", Type: FieldTypeInteger},
			"mid":   {Name: "mid", Type: FieldTypeBoolean},
		},
	}

	var names []string
	for _, field := range sc.OrderedFields() {
		names = append(names, field.Name)
	}
	assert.Equal(t, []string{"alpha", "mid", "zeta"}, names)
	assert.Nil(t, sc.PrimaryKey())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		schema SchemaDefinition
		codes  []string
	}{
		{
			name:   "missing name and fields",
			schema: SchemaDefinition{},
			codes:  []string{"MISSING_NAME", "NO_FIELDS"},
		},
		{
			name: "unnamed field",
			schema: SchemaDefinition{Name: "t", Fields: map[string]*FieldDefinition{
				"a": {Type: FieldTypeString},
			}},
			codes: []string{"MISSING_FIELD_NAME"},
		},
		{
			name: "unknown field type",
			schema: SchemaDefinition{Name: "t", Fields: map[string]*FieldDefinition{
				"a": {Name: "a", Type: "decimal"},
			}},
			codes: []string{"UNKNOWN_FIELD_TYPE"},
		},
		{
			name: "bad indexes",
			schema: SchemaDefinition{
				Name:   "t",
				Fields: map[string]*FieldDefinition{"a": {Name: "a", Type: FieldTypeInteger}},
				Indexes: []IndexDefinition{
					{Name: "empty", Type: IndexTypeNormal},
					{Name: "dangling", Fields: []string{"b"}, Type: IndexTypeNormal},
				},
			},
			codes: []string{"EMPTY_INDEX", "UNKNOWN_INDEX_FIELD"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, issues := tt.schema.Validate()
			assert.False(t, ok)

			var codes []string
			for _, issue := range issues {
				codes = append(codes, issue.Code)
			}
			assert.Equal(t, tt.codes, codes)
		})
	}
}

func TestIssue_Error(t *testing.T) {
	assert.Equal(t, "NO_FIELDS: empty", Issue{Code: "NO_FIELDS", Message: "empty"}.Error())
	assert.Equal(t, "EMPTY_INDEX: empty (at t.indexes[0])",
		Issue{Code: "EMPTY_INDEX", Message: "empty", Path: "t.indexes[0]"}.Error())
}
