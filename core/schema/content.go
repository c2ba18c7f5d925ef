package schema

import (
	"encoding/json"
	"fmt"
)

// Table names of the content store.
const (
	TableItem             = "item"
	TableBundle           = "bundle"
	TableBitstream        = "bitstream"
	TableItem2Bundle      = "item2bundle"
	TableBundle2Bitstream = "bundle2bitstream"
	TableMetadataSchema   = "metadataschema"
	TableMetadataField    = "metadatafield"
	TableMetadataValue    = "metadatavalue"
	TableWebapp           = "webapp"
)

// contentSchemas holds the tables bitstream resolution reads, plus the webapp
// registry. Bundle and bitstream names are not columns: they are metadata values.
var contentSchemas = []byte(`
[
  {
    "name": "item",
    "version": "1.0.0",
    "description": "Archived items.",
    "fields": {
      "item_id": { "name": "item_id", "type": "integer", "required": true },
      "in_archive": { "name": "in_archive", "type": "boolean", "default": true },
      "withdrawn": { "name": "withdrawn", "type": "boolean", "default": false },
      "last_modified": { "name": "last_modified", "type": "timestamp" }
    },
    "indexes": [ { "name": "item_pkey", "fields": ["item_id"], "type": "primary" } ]
  },
  {
    "name": "bundle",
    "version": "1.0.0",
    "description": "Named groups of bitstreams of an item.",
    "fields": {
      "bundle_id": { "name": "bundle_id", "type": "integer", "required": true },
      "primary_bitstream_id": { "name": "primary_bitstream_id", "type": "integer", "description": "Designated primary bitstream, if any." }
    },
    "indexes": [ { "name": "bundle_pkey", "fields": ["bundle_id"], "type": "primary" } ]
  },
  {
    "name": "bitstream",
    "version": "1.0.0",
    "description": "Stored binary objects.",
    "fields": {
      "bitstream_id": { "name": "bitstream_id", "type": "integer", "required": true },
      "size_bytes": { "name": "size_bytes", "type": "integer" },
      "checksum": { "name": "checksum", "type": "string" },
      "checksum_algorithm": { "name": "checksum_algorithm", "type": "string" },
      "internal_id": { "name": "internal_id", "type": "string" },
      "store_number": { "name": "store_number", "type": "integer", "default": 0 },
      "deleted": { "name": "deleted", "type": "boolean", "default": false }
    },
    "indexes": [ { "name": "bitstream_pkey", "fields": ["bitstream_id"], "type": "primary" } ]
  },
  {
    "name": "item2bundle",
    "version": "1.0.0",
    "fields": {
      "id": { "name": "id", "type": "integer", "required": true },
      "item_id": { "name": "item_id", "type": "integer", "required": true },
      "bundle_id": { "name": "bundle_id", "type": "integer", "required": true }
    },
    "indexes": [
      { "name": "item2bundle_pkey", "fields": ["id"], "type": "primary" },
      { "name": "item2bundle_item_idx", "fields": ["item_id"], "type": "normal" },
      { "name": "item2bundle_bundle_idx", "fields": ["bundle_id"], "type": "normal" }
    ]
  },
  {
    "name": "bundle2bitstream",
    "version": "1.0.0",
    "fields": {
      "id": { "name": "id", "type": "integer", "required": true },
      "bundle_id": { "name": "bundle_id", "type": "integer", "required": true },
      "bitstream_id": { "name": "bitstream_id", "type": "integer", "required": true },
      "bitstream_order": { "name": "bitstream_order", "type": "integer" }
    },
    "indexes": [
      { "name": "bundle2bitstream_pkey", "fields": ["id"], "type": "primary" },
      { "name": "bundle2bitstream_bundle_idx", "fields": ["bundle_id"], "type": "normal" },
      { "name": "bundle2bitstream_bitstream_idx", "fields": ["bitstream_id"], "type": "normal" }
    ]
  },
  {
    "name": "metadataschema",
    "version": "1.0.0",
    "fields": {
      "metadata_schema_id": { "name": "metadata_schema_id", "type": "integer", "required": true },
      "short_id": { "name": "short_id", "type": "string", "unique": true },
      "namespace": { "name": "namespace", "type": "string", "unique": true }
    },
    "indexes": [ { "name": "metadataschema_pkey", "fields": ["metadata_schema_id"], "type": "primary" } ]
  },
  {
    "name": "metadatafield",
    "version": "1.0.0",
    "fields": {
      "metadata_field_id": { "name": "metadata_field_id", "type": "integer", "required": true },
      "metadata_schema_id": { "name": "metadata_schema_id", "type": "integer", "required": true },
      "element": { "name": "element", "type": "string", "required": true },
      "qualifier": { "name": "qualifier", "type": "string" },
      "scope_note": { "name": "scope_note", "type": "text" }
    },
    "indexes": [
      { "name": "metadatafield_pkey", "fields": ["metadata_field_id"], "type": "primary" },
      { "name": "metadatafield_element_idx", "fields": ["metadata_schema_id", "element", "qualifier"], "type": "normal" }
    ]
  },
  {
    "name": "metadatavalue",
    "version": "1.0.0",
    "description": "Generic metadata values attached to any resource.",
    "fields": {
      "metadata_value_id": { "name": "metadata_value_id", "type": "integer", "required": true },
      "resource_type_id": { "name": "resource_type_id", "type": "integer", "required": true },
      "resource_id": { "name": "resource_id", "type": "integer", "required": true },
      "metadata_field_id": { "name": "metadata_field_id", "type": "integer", "required": true },
      "text_value": { "name": "text_value", "type": "text" },
      "text_lang": { "name": "text_lang", "type": "string" },
      "place": { "name": "place", "type": "integer", "default": 1 }
    },
    "indexes": [
      { "name": "metadatavalue_pkey", "fields": ["metadata_value_id"], "type": "primary" },
      { "name": "metadatavalue_resource_idx", "fields": ["resource_id", "resource_type_id"], "type": "normal" },
      { "name": "metadatavalue_field_idx", "fields": ["metadata_field_id"], "type": "normal" }
    ]
  },
  {
    "name": "webapp",
    "version": "1.0.0",
    "description": "Running applications and the URL they answer on.",
    "fields": {
      "webapp_id": { "name": "webapp_id", "type": "string", "required": true },
      "AppName": { "name": "AppName", "type": "string", "required": true },
      "URL": { "name": "URL", "type": "string", "required": true },
      "Started": { "name": "Started", "type": "timestamp" },
      "isUI": { "name": "isUI", "type": "boolean", "default": false }
    },
    "indexes": [ { "name": "webapp_pkey", "fields": ["webapp_id"], "type": "primary" } ]
  }
]`)

// ContentSchemas returns the definitions of every content store table, in creation order.
func ContentSchemas() ([]SchemaDefinition, error) {
	var defs []SchemaDefinition
	if err := json.Unmarshal(contentSchemas, &defs); err != nil {
		return nil, fmt.Errorf("error unmarshaling content schemas: %w", err)
	}
	return defs, nil
}
