package resolver

import (
	"strconv"
	"strings"
	"testing"

	"github.com/asaidimu/go-bitstream/core/content"
	"github.com/stretchr/testify/assert"
)

type testDialect struct{}

func (testDialect) Name() string             { return "test" }
func (testDialect) Placeholder(n int) string { return "$" + strconv.Itoa(n) }
func (testDialect) TextEquals(column, placeholder string) string {
	return "lob_eq(" + column + ", " + placeholder + ")"
}

func testParams(field content.FieldID) TemplateParams {
	return TemplateParams{
		NameField:     field,
		BundleType:    content.ResourceBundle,
		BitstreamType: content.ResourceBitstream,
	}
}

func TestBuildTemplates_Primary(t *testing.T) {
	tpl := BuildTemplates(testDialect{}, testParams(64))

	expected := "SELECT bundle.primary_bitstream_id" +
		" FROM item2bundle JOIN bundle ON bundle.bundle_id = item2bundle.bundle_id" +
		" JOIN metadatavalue MD1 ON (MD1.resource_type_id = 1 AND MD1.resource_id = bundle.bundle_id AND MD1.metadata_field_id = 64)" +
		" WHERE item2bundle.item_id = $1 AND lob_eq(MD1.text_value, $2)"
	assert.Equal(t, expected, tpl.Primary)
}

func TestBuildTemplates_First(t *testing.T) {
	tpl := BuildTemplates(testDialect{}, testParams(64))

	assert.True(t, strings.HasPrefix(tpl.First, "SELECT bundle2bitstream.bitstream_id FROM item2bundle"))
	assert.Contains(t, tpl.First, "JOIN bundle2bitstream ON bundle2bitstream.bundle_id = bundle.bundle_id")
	assert.Contains(t, tpl.First, "MD1.resource_type_id = 1 AND MD1.resource_id = bundle.bundle_id AND MD1.metadata_field_id = 64")
	assert.Contains(t, tpl.First, "WHERE item2bundle.item_id = $1 AND lob_eq(MD1.text_value, $2)")
	assert.True(t, strings.HasSuffix(tpl.First, " ORDER BY bundle2bitstream.bitstream_id"))
	assert.NotContains(t, tpl.First, "$3")
}

func TestBuildTemplates_Named(t *testing.T) {
	tpl := BuildTemplates(testDialect{}, testParams(64))

	assert.True(t, strings.HasPrefix(tpl.Named, "SELECT bitstream.bitstream_id FROM item2bundle"))
	assert.Contains(t, tpl.Named, "JOIN bitstream ON bitstream.bitstream_id = bundle2bitstream.bitstream_id")
	assert.Contains(t, tpl.Named, "JOIN metadatavalue MD2 ON (MD2.resource_type_id = 0 AND MD2.resource_id = bitstream.bitstream_id AND MD2.metadata_field_id = 64)")
	assert.True(t, strings.HasSuffix(tpl.Named,
		"WHERE item2bundle.item_id = $1 AND lob_eq(MD1.text_value, $2) AND lob_eq(MD2.text_value, $3)"))
}

func TestBuildTemplates_TextEqualityUsesDialect(t *testing.T) {
	tpl := BuildTemplates(testDialect{}, testParams(64))

	for name, stmt := range map[string]string{"primary": tpl.Primary, "first": tpl.First, "named": tpl.Named} {
		t.Run(name, func(t *testing.T) {
			assert.NotContains(t, stmt, "text_value =", "text values must be compared through the dialect")
			assert.Contains(t, stmt, "lob_eq(MD1.text_value, $2)")
		})
	}
}

func TestBuildTemplates_UnresolvedField(t *testing.T) {
	tpl := BuildTemplates(testDialect{}, testParams(content.UnresolvedField))

	assert.Contains(t, tpl.Primary, "MD1.metadata_field_id = -1")
	assert.Contains(t, tpl.First, "MD1.metadata_field_id = -1")
	assert.Contains(t, tpl.Named, "MD1.metadata_field_id = -1")
	assert.Contains(t, tpl.Named, "MD2.metadata_field_id = -1")
}

func TestBuildTemplates_CustomResourceTypes(t *testing.T) {
	tpl := BuildTemplates(testDialect{}, TemplateParams{NameField: 7, BundleType: 11, BitstreamType: 12})

	assert.Contains(t, tpl.Named, "MD1.resource_type_id = 11")
	assert.Contains(t, tpl.Named, "MD2.resource_type_id = 12")
	assert.Contains(t, tpl.Named, "metadata_field_id = 7")
}

func TestBuildTemplates_Stable(t *testing.T) {
	assert.Equal(t, BuildTemplates(testDialect{}, testParams(3)), BuildTemplates(testDialect{}, testParams(3)))
}
