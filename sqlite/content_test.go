package sqlite

import (
	"context"
	"testing"

	"github.com/asaidimu/go-bitstream/core/content"
	"github.com/asaidimu/go-bitstream/core/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newContentStore(t *testing.T) (*Store, context.Context) {
	t.Helper()
	db := openTestDB(t)
	ctx := context.Background()
	store := NewStore(db, nil, nil, nil)
	require.NoError(t, store.CreateSchema(ctx))
	return store, ctx
}

func TestStore_SeedRegistry(t *testing.T) {
	store, ctx := newContentStore(t)

	field, err := store.SeedRegistry(ctx)
	require.NoError(t, err)
	assert.True(t, field.Resolved())

	again, err := store.SeedRegistry(ctx)
	require.NoError(t, err)
	assert.Equal(t, field, again, "seeding is idempotent")

	resolved, err := resolver.ResolveField(ctx, store, Dialect{}, content.DCSchemaID, content.NameElement, nil)
	require.NoError(t, err)
	assert.Equal(t, field, resolved)
}

func TestStore_RegisterMetadataField_Qualified(t *testing.T) {
	store, ctx := newContentStore(t)
	plain, err := store.SeedRegistry(ctx)
	require.NoError(t, err)

	qualifier := "alternative"
	qualified, err := store.RegisterMetadataField(ctx, content.MetadataField{
		SchemaID:  content.DCSchemaID,
		Element:   content.NameElement,
		Qualifier: &qualifier,
	})
	require.NoError(t, err)
	assert.NotEqual(t, plain, qualified)

	resolved, err := resolver.ResolveField(ctx, store, Dialect{}, content.DCSchemaID, content.NameElement, &qualifier)
	require.NoError(t, err)
	assert.Equal(t, qualified, resolved)

	missing := "translated"
	resolved, err = resolver.ResolveField(ctx, store, Dialect{}, content.DCSchemaID, content.NameElement, &missing)
	assert.ErrorIs(t, err, content.ErrFieldNotFound)
	assert.Equal(t, content.UnresolvedField, resolved)
}

func TestStore_SetPrimaryBitstream(t *testing.T) {
	store, ctx := newContentStore(t)
	field, err := store.SeedRegistry(ctx)
	require.NoError(t, err)

	itemID, err := store.AddItem(ctx)
	require.NoError(t, err)
	original, err := store.AddBundle(ctx, itemID, "ORIGINAL", field)
	require.NoError(t, err)
	license, err := store.AddBundle(ctx, itemID, "LICENSE", field)
	require.NoError(t, err)
	bitstreamID, err := store.AddBitstream(ctx, original, content.Bitstream{Name: "thesis.pdf"}, field)
	require.NoError(t, err)

	assert.Error(t, store.SetPrimaryBitstream(ctx, license, bitstreamID), "bitstream belongs to another bundle")
	require.NoError(t, store.SetPrimaryBitstream(ctx, original, bitstreamID))

	var primary int
	require.NoError(t, store.QueryRowContext(ctx,
		"SELECT primary_bitstream_id FROM bundle WHERE bundle_id = ?", original).Scan(&primary))
	assert.Equal(t, bitstreamID, primary)
}

func TestStore_AddMetadata(t *testing.T) {
	store, ctx := newContentStore(t)
	field, err := store.SeedRegistry(ctx)
	require.NoError(t, err)
	itemID, err := store.AddItem(ctx)
	require.NoError(t, err)

	require.NoError(t, store.AddMetadata(ctx, content.MetadataValue{
		ResourceType: content.ResourceItem,
		ResourceID:   itemID,
		FieldID:      field,
		TextValue:    "A study of bitstreams",
	}))

	var (
		text  string
		place int
	)
	require.NoError(t, store.QueryRowContext(ctx,
		"SELECT text_value, place FROM metadatavalue WHERE resource_type_id = ? AND resource_id = ?",
		int(content.ResourceItem), itemID).Scan(&text, &place))
	assert.Equal(t, "A study of bitstreams", text)
	assert.Equal(t, 1, place)
}

func TestStore_NewResolver(t *testing.T) {
	store, ctx := newContentStore(t)
	field, err := store.SeedRegistry(ctx)
	require.NoError(t, err)

	itemID, err := store.AddItem(ctx)
	require.NoError(t, err)
	bundleID, err := store.AddBundle(ctx, itemID, "ORIGINAL", field)
	require.NoError(t, err)
	bitstreamID, err := store.AddBitstream(ctx, bundleID, content.Bitstream{
		Name:        "thesis.pdf",
		SizeBytes:   2048,
		StoreNumber: 1,
		Deleted:     true,
	}, field)
	require.NoError(t, err)

	r, err := store.NewResolver(ctx, resolver.DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, field, r.NameField())

	b, err := r.NamedBitstream(ctx, itemID, "ORIGINAL", "thesis.pdf")
	require.NoError(t, err)
	require.NotNil(t, b)
	assert.Equal(t, content.Bitstream{
		ID:          bitstreamID,
		Name:        "thesis.pdf",
		SizeBytes:   2048,
		StoreNumber: 1,
		Deleted:     true,
	}, *b)
}

func TestStore_RegisterMetadataSchema(t *testing.T) {
	store, ctx := newContentStore(t)
	qdc := content.MetadataSchema{ID: 2, ShortID: "qdc", Namespace: "http://purl.org/dc/terms/"}

	require.NoError(t, store.RegisterMetadataSchema(ctx, qdc))
	require.NoError(t, store.RegisterMetadataSchema(ctx, qdc))

	var got content.MetadataSchema
	require.NoError(t, store.QueryRowContext(ctx,
		"SELECT metadata_schema_id, short_id, namespace FROM metadataschema WHERE metadata_schema_id = ?", qdc.ID).
		Scan(&got.ID, &got.ShortID, &got.Namespace))
	assert.Equal(t, qdc, got)

	field, err := store.RegisterMetadataField(ctx, content.MetadataField{SchemaID: qdc.ID, Element: "title"})
	require.NoError(t, err)
	dcTitle, err := store.SeedRegistry(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, dcTitle, field, "fields are scoped to their schema")
}

func TestStore_Bundles(t *testing.T) {
	store, ctx := newContentStore(t)
	field, err := store.SeedRegistry(ctx)
	require.NoError(t, err)

	itemID, err := store.AddItem(ctx)
	require.NoError(t, err)
	original, err := store.AddBundle(ctx, itemID, "ORIGINAL", field)
	require.NoError(t, err)
	license, err := store.AddBundle(ctx, itemID, "LICENSE", field)
	require.NoError(t, err)
	bitstreamID, err := store.AddBitstream(ctx, original, content.Bitstream{Name: "thesis.pdf"}, field)
	require.NoError(t, err)
	require.NoError(t, store.SetPrimaryBitstream(ctx, original, bitstreamID))

	other, err := store.AddItem(ctx)
	require.NoError(t, err)
	_, err = store.AddBundle(ctx, other, "THUMBNAIL", field)
	require.NoError(t, err)

	bundles, err := store.Bundles(ctx, itemID, field)
	require.NoError(t, err)
	assert.Equal(t, []content.Bundle{
		{ID: original, Name: "ORIGINAL", PrimaryBitstreamID: &bitstreamID},
		{ID: license, Name: "LICENSE"},
	}, bundles)

	bundles, err = store.Bundles(ctx, itemID, content.UnresolvedField)
	require.NoError(t, err)
	require.Len(t, bundles, 2)
	assert.Empty(t, bundles[0].Name)
	assert.Equal(t, 0, store.db.Stats().InUse)
}
