package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asaidimu/go-bitstream/core/content"
)

// SQLFinder loads bitstream rows, together with the name stored in the name field.
// When the field holds several values, the one with the lowest place is the name.
type SQLFinder struct {
	Dialect       Dialect
	NameField     content.FieldID
	BitstreamType content.ResourceType
}

// Ensure SQLFinder implements the BitstreamFinder interface.
var _ BitstreamFinder = (*SQLFinder)(nil)

// FindBitstream returns the bitstream with the given id, or nil if there is none.
func (f *SQLFinder) FindBitstream(ctx context.Context, runner Runner, id int) (*content.Bitstream, error) {
	query := fmt.Sprintf(
		"SELECT bitstream.bitstream_id, bitstream.size_bytes, bitstream.checksum, bitstream.checksum_algorithm,"+
			" bitstream.internal_id, bitstream.store_number, bitstream.deleted, MD.text_value"+
			" FROM bitstream"+
			" LEFT JOIN metadatavalue MD ON (MD.resource_type_id = %d AND MD.resource_id = bitstream.bitstream_id AND MD.metadata_field_id = %d)"+
			" WHERE bitstream.bitstream_id = %s"+
			" ORDER BY MD.place, MD.metadata_value_id",
		int(f.BitstreamType), int(f.NameField), f.Dialect.Placeholder(1))

	var (
		bitstream   = content.Bitstream{ID: id}
		size        sql.NullInt64
		checksum    sql.NullString
		algorithm   sql.NullString
		internalID  sql.NullString
		storeNumber sql.NullInt64
		deleted     sql.NullBool
		name        sql.NullString
	)
	err := runner.QueryRowContext(ctx, query, id).Scan(
		&bitstream.ID, &size, &checksum, &algorithm, &internalID, &storeNumber, &deleted, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load bitstream %d: %w", id, err)
	}

	bitstream.SizeBytes = size.Int64
	bitstream.Checksum = checksum.String
	bitstream.ChecksumAlgorithm = algorithm.String
	bitstream.InternalID = internalID.String
	bitstream.StoreNumber = int(storeNumber.Int64)
	bitstream.Deleted = deleted.Bool
	bitstream.Name = name.String
	return &bitstream, nil
}
