package content

import "errors"

var (
	// ErrFieldNotFound is returned when no metadata field matches a schema, element and qualifier.
	ErrFieldNotFound = errors.New("content: metadata field not found")

	// ErrBitstreamNotFound is returned by lookups that report absence as an error.
	ErrBitstreamNotFound = errors.New("content: bitstream not found")
)
