package schema

import "fmt"

// Issue describes a problem found in a schema definition.
type Issue struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

func (i Issue) Error() string {
	if i.Path == "" {
		return fmt.Sprintf("%s: %s", i.Code, i.Message)
	}
	return fmt.Sprintf("%s: %s (at %s)", i.Code, i.Message, i.Path)
}

// Validate checks that a table definition can be turned into DDL. It returns whether
// the definition is valid and every issue found.
func (s *SchemaDefinition) Validate() (bool, []Issue) {
	var issues []Issue
	if s.Name == "" {
		issues = append(issues, Issue{Code: "MISSING_NAME", Message: "schema must define a table name"})
	}
	if len(s.Fields) == 0 {
		issues = append(issues, Issue{Code: "NO_FIELDS", Message: "schema must define at least one field", Path: s.Name})
	}

	for key, field := range s.Fields {
		path := s.Name + ".fields." + key
		if field == nil || field.Name == "" {
			issues = append(issues, Issue{Code: "MISSING_FIELD_NAME", Message: "field must have a name", Path: path})
			continue
		}
		switch field.Type {
		case FieldTypeString, FieldTypeText, FieldTypeInteger, FieldTypeBoolean, FieldTypeTimestamp:
		default:
			issues = append(issues, Issue{Code: "UNKNOWN_FIELD_TYPE", Message: fmt.Sprintf("unsupported field type %q", field.Type), Path: path})
		}
	}

	for i, index := range s.Indexes {
		path := fmt.Sprintf("%s.indexes[%d]", s.Name, i)
		if len(index.Fields) == 0 {
			issues = append(issues, Issue{Code: "EMPTY_INDEX", Message: "index must cover at least one field", Path: path})
		}
		for _, name := range index.Fields {
			if s.FindField(name) == nil {
				issues = append(issues, Issue{Code: "UNKNOWN_INDEX_FIELD", Message: fmt.Sprintf("index field %q is not defined", name), Path: path})
			}
		}
	}

	return len(issues) == 0, issues
}
