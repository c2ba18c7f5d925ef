package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asaidimu/go-bitstream/core/content"
)

// ResolveField looks up the id of the metadata field element[.qualifier] in the given
// schema. A nil qualifier matches only unqualified fields. On any failure the returned
// id is content.UnresolvedField; a missing field is reported as content.ErrFieldNotFound.
func ResolveField(ctx context.Context, runner Runner, dialect Dialect, schemaID int, element string, qualifier *string) (content.FieldID, error) {
	query := fmt.Sprintf(
		"SELECT metadata_field_id FROM metadatafield WHERE metadata_schema_id = %s AND element = %s AND qualifier IS NULL",
		dialect.Placeholder(1), dialect.Placeholder(2))
	args := []any{schemaID, element}
	if qualifier != nil {
		query = fmt.Sprintf(
			"SELECT metadata_field_id FROM metadatafield WHERE metadata_schema_id = %s AND element = %s AND qualifier = %s",
			dialect.Placeholder(1), dialect.Placeholder(2), dialect.Placeholder(3))
		args = append(args, *qualifier)
	}

	var id int64
	if err := runner.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return content.UnresolvedField, content.ErrFieldNotFound
		}
		return content.UnresolvedField, fmt.Errorf("failed to look up metadata field %s: %w", fieldName(element, qualifier), err)
	}
	return content.FieldID(id), nil
}

func fieldName(element string, qualifier *string) string {
	if qualifier == nil {
		return element
	}
	return element + "." + *qualifier
}
