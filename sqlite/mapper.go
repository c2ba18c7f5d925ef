package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/asaidimu/go-bitstream/core/schema"
	"go.uber.org/zap"
)

// Options configures DDL generation.
type Options struct {
	// IfNotExists adds IF NOT EXISTS to CREATE TABLE statements.
	IfNotExists bool

	// DropIfExists drops a table before creating it.
	DropIfExists bool

	// CreateIndexes creates the indexes of a definition along with its table.
	CreateIndexes bool
}

// DefaultOptions returns options that create missing tables and their indexes and
// leave existing tables alone.
func DefaultOptions() *Options {
	return &Options{
		IfNotExists:   true,
		CreateIndexes: true,
	}
}

// quoteIdentifier quotes a table or column name.
func quoteIdentifier(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// CreateSchema creates every content store table. It runs in a transaction unless the
// store is already bound to one.
func (s *Store) CreateSchema(ctx context.Context) error {
	defs, err := schema.ContentSchemas()
	if err != nil {
		return err
	}

	if s.tx != nil {
		return s.createTables(ctx, defs)
	}

	tx, err := s.StartTransaction(ctx)
	if err != nil {
		return err
	}
	if err := tx.createTables(ctx, defs); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			s.logger.Error("Failed to roll back schema creation", zap.Error(rbErr))
		}
		return err
	}
	return tx.Commit(ctx)
}

func (s *Store) createTables(ctx context.Context, defs []schema.SchemaDefinition) error {
	for i := range defs {
		if err := s.CreateTable(ctx, defs[i]); err != nil {
			return err
		}
	}
	return nil
}

// CreateTable executes the DDL for a table and, if configured, its indexes.
func (s *Store) CreateTable(ctx context.Context, sc schema.SchemaDefinition) error {
	if ok, issues := sc.Validate(); !ok {
		return fmt.Errorf("invalid schema %s: %w", sc.Name, issues[0])
	}

	if s.options.DropIfExists {
		if err := s.DropTable(ctx, sc.Name); err != nil {
			return err
		}
	}

	stmt, err := CreateTableSQL(sc, s.options.IfNotExists)
	if err != nil {
		return fmt.Errorf("failed to generate SQL for table %s: %w", sc.Name, err)
	}
	if _, err := s.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to execute SQL statement '%s': %w", stmt, err)
	}

	if !s.options.CreateIndexes {
		return nil
	}
	for _, index := range sc.Indexes {
		sqlIndex := CreateIndexSQL(sc.Name, index)
		if sqlIndex == "" {
			continue
		}
		if _, err := s.ExecContext(ctx, sqlIndex); err != nil {
			return fmt.Errorf("failed to create index %s: %w", index.Name, err)
		}
	}
	return nil
}

// CreateTableSQL generates the CREATE TABLE statement for a definition.
func CreateTableSQL(sc schema.SchemaDefinition, ifNotExists bool) (string, error) {
	var sb strings.Builder
	sb.WriteString("CREATE TABLE ")
	if ifNotExists {
		sb.WriteString("IF NOT EXISTS ")
	}
	sb.WriteString(quoteIdentifier(sc.Name) + " (\n")

	var columns []string
	for _, field := range sc.OrderedFields() {
		columnDef, err := buildColumnDefinition(field)
		if err != nil {
			return "", fmt.Errorf("error on field '%s': %w", field.Name, err)
		}
		columns = append(columns, "    "+columnDef)
	}
	sb.WriteString(strings.Join(columns, ",\n"))

	if primaryKeys := sc.PrimaryKey(); len(primaryKeys) > 0 {
		quotedPKs := make([]string, len(primaryKeys))
		for i, pk := range primaryKeys {
			quotedPKs[i] = quoteIdentifier(pk)
		}
		sb.WriteString(",\n    PRIMARY KEY (" + strings.Join(quotedPKs, ", ") + ")")
	}

	sb.WriteString("\n);")
	return sb.String(), nil
}

// buildColumnDefinition renders a single column with its constraints.
func buildColumnDefinition(field *schema.FieldDefinition) (string, error) {
	parts := []string{quoteIdentifier(field.Name), ColumnType(field.Type)}

	if field.Required != nil && *field.Required {
		parts = append(parts, "NOT NULL")
	}
	if field.Default != nil {
		defVal, err := formatDefaultValue(field.Default, field.Type)
		if err != nil {
			return "", err
		}
		parts = append(parts, "DEFAULT "+defVal)
	}
	if field.Unique != nil && *field.Unique {
		parts = append(parts, "UNIQUE")
	}
	return strings.Join(parts, " "), nil
}

// ColumnType maps a schema.FieldType to its SQLite column type. Timestamps are
// declared TIMESTAMP so the driver hands them back as time.Time.
func ColumnType(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeText:
		return "TEXT"
	case schema.FieldTypeInteger, schema.FieldTypeBoolean:
		return "INTEGER"
	case schema.FieldTypeTimestamp:
		return "TIMESTAMP"
	default:
		return "BLOB"
	}
}

// formatDefaultValue formats a default value for use in a DDL statement.
func formatDefaultValue(value any, fieldType schema.FieldType) (string, error) {
	if value == nil {
		return "NULL", nil
	}
	switch fieldType {
	case schema.FieldTypeString, schema.FieldTypeText:
		return fmt.Sprintf("'%s'", strings.ReplaceAll(fmt.Sprintf("%v", value), "'", "''")), nil
	case schema.FieldTypeInteger:
		return fmt.Sprintf("%v", value), nil
	case schema.FieldTypeBoolean:
		if b, ok := value.(bool); ok && b {
			return "1", nil
		}
		return "0", nil
	default:
		return "", fmt.Errorf("unsupported type for default value: %s", fieldType)
	}
}

// CreateIndexSQL generates the CREATE INDEX statement for an index. Primary indexes are
// part of the table definition and yield an empty string.
func CreateIndexSQL(table string, index schema.IndexDefinition) string {
	if index.Type == schema.IndexTypePrimary {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("CREATE ")
	if (index.Unique != nil && *index.Unique) || index.Type == schema.IndexTypeUnique {
		sb.WriteString("UNIQUE ")
	}
	sb.WriteString("INDEX IF NOT EXISTS ")
	indexName := index.Name
	if indexName == "" {
		indexName = fmt.Sprintf("idx_%s_%s", table, strings.Join(index.Fields, "_"))
	}
	sb.WriteString(quoteIdentifier(indexName))
	sb.WriteString(fmt.Sprintf(" ON %s (", quoteIdentifier(table)))

	fieldParts := make([]string, len(index.Fields))
	for i, field := range index.Fields {
		part := quoteIdentifier(field)
		if index.Order != nil && strings.ToUpper(*index.Order) == "DESC" {
			part += " DESC"
		}
		fieldParts[i] = part
	}
	sb.WriteString(strings.Join(fieldParts, ", ") + ");")
	return sb.String()
}

// DropTable drops a table if it exists.
func (s *Store) DropTable(ctx context.Context, table string) error {
	stmt := fmt.Sprintf("DROP TABLE IF EXISTS %s;", quoteIdentifier(table))
	if _, err := s.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", table, err)
	}
	return nil
}

// TableExists checks if a table exists in the database.
func (s *Store) TableExists(ctx context.Context, table string) (bool, error) {
	var name string
	err := s.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name = ?;", table).Scan(&name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
