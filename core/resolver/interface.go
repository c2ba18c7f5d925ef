// Package resolver locates bitstreams of an item by bundle name, and optionally by file
// name, through SQL templates that join the structural tables with the generic
// metadatavalue table. The metadata field carrying names is resolved once when a
// resolver is built and embedded into the templates.
package resolver

import (
	"context"
	"database/sql"

	"github.com/asaidimu/go-bitstream/core/content"
	"github.com/spacemonkeygo/monkit/v3"
	"github.com/zeebo/errs"
)

var (
	// Error is the class of data-access failures raised during a lookup.
	Error = errs.Class("bitstream resolver")

	mon = monkit.Package()
)

// Runner abstracts the methods shared by *sql.DB, *sql.Conn and *sql.Tx, so a resolver
// can be bound to whichever connection or transaction scope the caller holds.
type Runner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Dialect renders the vendor specific parts of the lookup statements.
type Dialect interface {
	// Name is the key the dialect is registered under.
	Name() string
	// Placeholder renders the n-th (1-based) positional parameter.
	Placeholder(n int) string
	// TextEquals renders an exact equality test between a large-object text column
	// and a parameter.
	TextEquals(column, placeholder string) string
}

// BitstreamResolver is implemented once per storage dialect. Every method returns
// nil and no error when nothing matches.
type BitstreamResolver interface {
	// PrimaryBitstream returns the designated primary bitstream of the item's bundle.
	PrimaryBitstream(ctx context.Context, itemID int, bundleName string) (*content.Bitstream, error)
	// FirstBitstream returns the bitstream with the lowest id in the item's bundle.
	FirstBitstream(ctx context.Context, itemID int, bundleName string) (*content.Bitstream, error)
	// NamedBitstream returns the bitstream of the item's bundle whose name is fileName.
	NamedBitstream(ctx context.Context, itemID int, bundleName, fileName string) (*content.Bitstream, error)
}

// BitstreamFinder loads a bitstream by id. It returns nil and no error if the id does
// not exist.
type BitstreamFinder interface {
	FindBitstream(ctx context.Context, runner Runner, id int) (*content.Bitstream, error)
}
