package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asaidimu/go-bitstream/core/content"
)

// DublinCoreNamespace is the namespace of the dc metadata schema.
const DublinCoreNamespace = "http://dublincore.org/documents/dcmi-terms/"

// SeedRegistry registers the dc schema and the unqualified dc.title field, the field
// bundle and bitstream names are stored under. Existing entries are kept.
func (s *Store) SeedRegistry(ctx context.Context) (content.FieldID, error) {
	if err := s.RegisterMetadataSchema(ctx, content.MetadataSchema{
		ID:        content.DCSchemaID,
		ShortID:   "dc",
		Namespace: DublinCoreNamespace,
	}); err != nil {
		return content.UnresolvedField, err
	}
	return s.RegisterMetadataField(ctx, content.MetadataField{
		SchemaID: content.DCSchemaID,
		Element:  content.NameElement,
	})
}

// RegisterMetadataSchema stores a metadata schema under its id. An existing schema
// with that id is kept.
func (s *Store) RegisterMetadataSchema(ctx context.Context, ms content.MetadataSchema) error {
	if _, err := s.ExecContext(ctx,
		"INSERT OR IGNORE INTO metadataschema (metadata_schema_id, short_id, namespace) VALUES (?, ?, ?)",
		ms.ID, ms.ShortID, ms.Namespace); err != nil {
		return fmt.Errorf("failed to register %s schema: %w", ms.ShortID, err)
	}
	return nil
}

// RegisterMetadataField returns the id of schema.element[.qualifier], creating the
// field definition if it does not exist yet. The ID of f is ignored.
func (s *Store) RegisterMetadataField(ctx context.Context, f content.MetadataField) (content.FieldID, error) {
	query := "SELECT metadata_field_id FROM metadatafield WHERE metadata_schema_id = ? AND element = ? AND qualifier IS ?"
	var id int64
	err := s.QueryRowContext(ctx, query, f.SchemaID, f.Element, f.Qualifier).Scan(&id)
	switch {
	case err == nil:
		return content.FieldID(id), nil
	case !errors.Is(err, sql.ErrNoRows):
		return content.UnresolvedField, fmt.Errorf("failed to look up metadata field %s: %w", f.Element, err)
	}

	result, err := s.ExecContext(ctx,
		"INSERT INTO metadatafield (metadata_schema_id, element, qualifier) VALUES (?, ?, ?)",
		f.SchemaID, f.Element, f.Qualifier)
	if err != nil {
		return content.UnresolvedField, fmt.Errorf("failed to register metadata field %s: %w", f.Element, err)
	}
	id, err = result.LastInsertId()
	if err != nil {
		return content.UnresolvedField, err
	}
	return content.FieldID(id), nil
}

// AddItem creates an item and returns its id.
func (s *Store) AddItem(ctx context.Context) (int, error) {
	return s.insert(ctx, "INSERT INTO item DEFAULT VALUES")
}

// AddBundle creates a bundle of the item, named through nameField, and returns its id.
func (s *Store) AddBundle(ctx context.Context, itemID int, name string, nameField content.FieldID) (int, error) {
	bundleID, err := s.insert(ctx, "INSERT INTO bundle DEFAULT VALUES")
	if err != nil {
		return 0, err
	}
	if _, err := s.insert(ctx, "INSERT INTO item2bundle (item_id, bundle_id) VALUES (?, ?)", itemID, bundleID); err != nil {
		return 0, err
	}
	if err := s.AddMetadata(ctx, content.MetadataValue{
		ResourceType: content.ResourceBundle,
		ResourceID:   bundleID,
		FieldID:      nameField,
		TextValue:    name,
	}); err != nil {
		return 0, err
	}
	return bundleID, nil
}

// AddBitstream stores a bitstream in the bundle, named through nameField, and returns
// its id. The ID field of b is ignored.
func (s *Store) AddBitstream(ctx context.Context, bundleID int, b content.Bitstream, nameField content.FieldID) (int, error) {
	bitstreamID, err := s.insert(ctx,
		"INSERT INTO bitstream (size_bytes, checksum, checksum_algorithm, internal_id, store_number, deleted) VALUES (?, ?, ?, ?, ?, ?)",
		b.SizeBytes, b.Checksum, b.ChecksumAlgorithm, b.InternalID, b.StoreNumber, b.Deleted)
	if err != nil {
		return 0, err
	}
	if _, err := s.insert(ctx,
		"INSERT INTO bundle2bitstream (bundle_id, bitstream_id, bitstream_order) VALUES (?, ?, (SELECT COUNT(*) FROM bundle2bitstream WHERE bundle_id = ?))",
		bundleID, bitstreamID, bundleID); err != nil {
		return 0, err
	}
	if err := s.AddMetadata(ctx, content.MetadataValue{
		ResourceType: content.ResourceBitstream,
		ResourceID:   bitstreamID,
		FieldID:      nameField,
		TextValue:    b.Name,
	}); err != nil {
		return 0, err
	}
	return bitstreamID, nil
}

// SetPrimaryBitstream designates the primary bitstream of a bundle. The bitstream must
// belong to the bundle.
func (s *Store) SetPrimaryBitstream(ctx context.Context, bundleID, bitstreamID int) error {
	var linked int
	err := s.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM bundle2bitstream WHERE bundle_id = ? AND bitstream_id = ?", bundleID, bitstreamID).Scan(&linked)
	if err != nil {
		return fmt.Errorf("failed to check bundle membership: %w", err)
	}
	if linked == 0 {
		return fmt.Errorf("bitstream %d does not belong to bundle %d", bitstreamID, bundleID)
	}
	if _, err := s.ExecContext(ctx, "UPDATE bundle SET primary_bitstream_id = ? WHERE bundle_id = ?", bitstreamID, bundleID); err != nil {
		return fmt.Errorf("failed to set primary bitstream: %w", err)
	}
	return nil
}

// Bundles lists the bundles of an item in id order, named through nameField. A bundle
// without a name value has an empty Name.
func (s *Store) Bundles(ctx context.Context, itemID int, nameField content.FieldID) ([]content.Bundle, error) {
	rows, err := s.QueryContext(ctx,
		"SELECT bundle.bundle_id, bundle.primary_bitstream_id, MD.text_value"+
			" FROM item2bundle JOIN bundle ON bundle.bundle_id = item2bundle.bundle_id"+
			" LEFT JOIN metadatavalue MD ON (MD.resource_type_id = ? AND MD.resource_id = bundle.bundle_id AND MD.metadata_field_id = ? AND MD.place = 1)"+
			" WHERE item2bundle.item_id = ? ORDER BY bundle.bundle_id",
		int(content.ResourceBundle), int(nameField), itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bundles of item %d: %w", itemID, err)
	}
	defer rows.Close()

	var bundles []content.Bundle
	for rows.Next() {
		var (
			b       content.Bundle
			primary sql.NullInt64
			name    sql.NullString
		)
		if err := rows.Scan(&b.ID, &primary, &name); err != nil {
			return nil, fmt.Errorf("failed to scan bundle row: %w", err)
		}
		if primary.Valid {
			id := int(primary.Int64)
			b.PrimaryBitstreamID = &id
		}
		b.Name = name.String
		bundles = append(bundles, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error after scanning bundle rows: %w", err)
	}
	return bundles, nil
}

// AddMetadata attaches a metadata value to a resource.
func (s *Store) AddMetadata(ctx context.Context, v content.MetadataValue) error {
	place := v.Place
	if place == 0 {
		place = 1
	}
	_, err := s.insert(ctx,
		"INSERT INTO metadatavalue (resource_type_id, resource_id, metadata_field_id, text_value, place) VALUES (?, ?, ?, ?, ?)",
		int(v.ResourceType), v.ResourceID, int(v.FieldID), v.TextValue, place)
	return err
}

func (s *Store) insert(ctx context.Context, query string, args ...any) (int, error) {
	result, err := s.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to execute INSERT: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return int(id), nil
}
