package resolver

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-bitstream/core/content"
)

// TemplateParams are the construction-time constants embedded into the lookup
// statements as integer literals.
type TemplateParams struct {
	NameField     content.FieldID
	BundleType    content.ResourceType
	BitstreamType content.ResourceType
}

// Templates holds the three lookup statements. Parameters are positional: item id,
// bundle name and, for Named, the file name.
type Templates struct {
	Primary string
	First   string
	Named   string
}

// BuildTemplates renders the lookup statements for a dialect.
func BuildTemplates(dialect Dialect, p TemplateParams) Templates {
	itemID, bundleName, fileName := dialect.Placeholder(1), dialect.Placeholder(2), dialect.Placeholder(3)

	items := []string{
		"item2bundle",
		"JOIN bundle ON bundle.bundle_id = item2bundle.bundle_id",
	}
	link := "JOIN bundle2bitstream ON bundle2bitstream.bundle_id = bundle.bundle_id"
	bitstream := "JOIN bitstream ON bitstream.bitstream_id = bundle2bitstream.bitstream_id"
	bundleMD := metadataJoin("MD1", p.BundleType, "bundle.bundle_id", p.NameField)
	bitstreamMD := metadataJoin("MD2", p.BitstreamType, "bitstream.bitstream_id", p.NameField)

	byItem := "item2bundle.item_id = " + itemID
	byBundle := dialect.TextEquals("MD1.text_value", bundleName)
	byFile := dialect.TextEquals("MD2.text_value", fileName)

	return Templates{
		Primary: selectSQL("bundle.primary_bitstream_id",
			joins(items, bundleMD), []string{byItem, byBundle}, ""),
		First: selectSQL("bundle2bitstream.bitstream_id",
			joins(items, link, bundleMD), []string{byItem, byBundle}, "bundle2bitstream.bitstream_id"),
		Named: selectSQL("bitstream.bitstream_id",
			joins(items, link, bitstream, bundleMD, bitstreamMD), []string{byItem, byBundle, byFile}, ""),
	}
}

func joins(base []string, more ...string) []string {
	out := make([]string, 0, len(base)+len(more))
	out = append(out, base...)
	return append(out, more...)
}

// metadataJoin joins one metadatavalue row of the given field onto a resource. The
// resource type and field id are typed integers, never caller supplied text.
func metadataJoin(alias string, resourceType content.ResourceType, resourceColumn string, field content.FieldID) string {
	return fmt.Sprintf(
		"JOIN metadatavalue %[1]s ON (%[1]s.resource_type_id = %[2]d AND %[1]s.resource_id = %[3]s AND %[1]s.metadata_field_id = %[4]d)",
		alias, int(resourceType), resourceColumn, int(field))
}

func selectSQL(column string, from, where []string, orderBy string) string {
	var sb strings.Builder
	sb.WriteString("SELECT " + column)
	sb.WriteString(" FROM " + strings.Join(from, " "))
	sb.WriteString(" WHERE " + strings.Join(where, " AND "))
	if orderBy != "" {
		sb.WriteString(" ORDER BY " + orderBy)
	}
	return sb.String()
}
