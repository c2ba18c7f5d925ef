// Package oracle provides the Oracle dialect of the bitstream resolver. Metadata text
// values are CLOBs there, which cannot be compared with "=", so equality goes through
// dbms_lob.compare.
//
// The package registers no database/sql driver; link one (for example godror) into the
// binary and open the database with it.
package oracle

import (
	"context"
	"strconv"

	"github.com/asaidimu/go-bitstream/core/resolver"
	"go.uber.org/zap"
)

// DialectName is the name the Oracle dialect is registered under.
const DialectName = "oracle"

// Dialect renders lookups for Oracle.
type Dialect struct{}

// Ensure Dialect implements the resolver.Dialect interface.
var _ resolver.Dialect = Dialect{}

func init() {
	resolver.RegisterDialect(Dialect{})
}

func (Dialect) Name() string { return DialectName }

// Placeholder renders Oracle's numbered bind variables.
func (Dialect) Placeholder(n int) string { return ":" + strconv.Itoa(n) }

func (Dialect) TextEquals(column, placeholder string) string {
	return "dbms_lob.compare(" + column + ", " + placeholder + ") = 0"
}

// NewResolver builds an Oracle bitstream resolver running on runner.
func NewResolver(ctx context.Context, runner resolver.Runner, cfg resolver.Config, logger *zap.Logger) (*resolver.Resolver, error) {
	return resolver.New(ctx, runner, Dialect{}, cfg, resolver.WithLogger(logger))
}
