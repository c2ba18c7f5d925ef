package sqlite

import (
	"github.com/asaidimu/go-bitstream/core/resolver"
)

// DialectName is the name the SQLite dialect is registered under.
const DialectName = "sqlite"

// Dialect renders lookups for SQLite. Large-object equality goes through the
// lob_compare function installed by the sqlite3_lob driver.
type Dialect struct{}

// Ensure Dialect implements the resolver.Dialect interface.
var _ resolver.Dialect = Dialect{}

func init() {
	resolver.RegisterDialect(Dialect{})
}

func (Dialect) Name() string { return DialectName }

func (Dialect) Placeholder(int) string { return "?" }

func (Dialect) TextEquals(column, placeholder string) string {
	return lobCompareFunc + "(" + column + ", " + placeholder + ") = 0"
}
