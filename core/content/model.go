// Package content defines the repository objects that bitstream resolution works
// over: items, the bundles they own, the bitstreams stored in those bundles, and the
// generic metadata registry that carries their names.
package content

// ResourceType is the integer code a resource kind is stored under in the generic
// metadatavalue table.
type ResourceType int

// Resource type codes used by the surrounding repository system.
const (
	ResourceBitstream  ResourceType = 0
	ResourceBundle     ResourceType = 1
	ResourceItem       ResourceType = 2
	ResourceCollection ResourceType = 3
	ResourceCommunity  ResourceType = 4
)

func (r ResourceType) String() string {
	switch r {
	case ResourceBitstream:
		return "bitstream"
	case ResourceBundle:
		return "bundle"
	case ResourceItem:
		return "item"
	case ResourceCollection:
		return "collection"
	case ResourceCommunity:
		return "community"
	default:
		return "unknown"
	}
}

// FieldID identifies a metadata field definition.
type FieldID int

// UnresolvedField marks a field id that could not be looked up. Queries built with it
// match no metadata rows.
const UnresolvedField FieldID = -1

// Resolved reports whether the id refers to a field that was found.
func (f FieldID) Resolved() bool {
	return f >= 0
}

const (
	// DCSchemaID is the id of the Dublin Core metadata schema.
	DCSchemaID = 1
	// NameElement is the Dublin Core element bundle and bitstream names are stored under.
	NameElement = "title"
)

// Bundle groups bitstreams of an item, e.g. "ORIGINAL" or "THUMBNAIL". Names are
// not unique across items, and an item may hold several bundles of the same name.
type Bundle struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	// PrimaryBitstreamID is nil when no primary bitstream is designated.
	PrimaryBitstreamID *int `json:"primaryBitstreamId,omitempty"`
}

// Bitstream is a stored binary object.
type Bitstream struct {
	ID                int    `json:"id"`
	Name              string `json:"name,omitempty"`
	SizeBytes         int64  `json:"sizeBytes"`
	Checksum          string `json:"checksum,omitempty"`
	ChecksumAlgorithm string `json:"checksumAlgorithm,omitempty"`
	InternalID        string `json:"internalId,omitempty"`
	StoreNumber       int    `json:"storeNumber"`
	Deleted           bool   `json:"deleted"`
}

// MetadataSchema is a namespace of metadata fields, e.g. "dc".
type MetadataSchema struct {
	ID        int    `json:"id"`
	ShortID   string `json:"shortId"`
	Namespace string `json:"namespace"`
}

// MetadataField is a field definition inside a schema.
type MetadataField struct {
	ID        FieldID `json:"id"`
	SchemaID  int     `json:"schemaId"`
	Element   string  `json:"element"`
	Qualifier *string `json:"qualifier,omitempty"`
}

// MetadataValue attaches a text value of a field to a resource.
type MetadataValue struct {
	ID           int          `json:"id"`
	ResourceType ResourceType `json:"resourceType"`
	ResourceID   int          `json:"resourceId"`
	FieldID      FieldID      `json:"fieldId"`
	TextValue    string       `json:"textValue"`
	Place        int          `json:"place"`
}
