package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/asaidimu/go-bitstream/core/resolver"
	"go.uber.org/zap"
)

// dbRunner abstracts the common methods of *sql.DB and *sql.Tx, allowing the same code
// to be used for both transactional and non-transactional operations.
type dbRunner interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store is the connection scope lookups run in. It either uses the connection pool
// directly or, when returned by StartTransaction, a single transaction.
type Store struct {
	db      *sql.DB
	tx      *sql.Tx
	logger  *zap.Logger
	options *Options
}

// Ensure Store can be handed to a resolver.
var _ resolver.Runner = (*Store)(nil)

// NewStore creates a Store. It operates in transactional mode when tx is non-nil.
func NewStore(db *sql.DB, logger *zap.Logger, options *Options, tx *sql.Tx) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	if options == nil {
		options = DefaultOptions()
	}
	return &Store{
		db:      db,
		tx:      tx,
		logger:  logger,
		options: options,
	}
}

// runner returns the active transaction, or the connection pool outside of one.
func (s *Store) runner() dbRunner {
	if s.tx != nil {
		return s.tx
	}
	return s.db
}

// ExecContext executes a statement that returns no rows.
func (s *Store) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.logger.Debug("Executing SQL statement", zap.String("sql", query), zap.Any("params", args))
	result, err := s.runner().ExecContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to execute SQL statement", zap.Error(err), zap.String("sql", query))
	}
	return result, err
}

// QueryContext executes a query. The caller must close the returned rows.
func (s *Store) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.logger.Debug("Executing SQL query", zap.String("sql", query), zap.Any("params", args))
	rows, err := s.runner().QueryContext(ctx, query, args...)
	if err != nil {
		s.logger.Error("Failed to execute SQL query", zap.Error(err), zap.String("sql", query))
	}
	return rows, err
}

// QueryRowContext executes a query expected to return at most one row.
func (s *Store) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	s.logger.Debug("Executing SQL query", zap.String("sql", query), zap.Any("params", args))
	return s.runner().QueryRowContext(ctx, query, args...)
}

// StartTransaction begins a transaction and returns a Store scoped to it.
func (s *Store) StartTransaction(ctx context.Context) (*Store, error) {
	if s.tx != nil {
		return nil, fmt.Errorf("cannot start a new transaction from an existing transactional store")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	s.logger.Debug("Transaction initiated, returning new transactional store")
	return NewStore(s.db, s.logger, s.options, tx), nil
}

// Commit commits the current transaction.
func (s *Store) Commit(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("commit not applicable: not in a transactional context")
	}
	s.logger.Debug("Committing transaction")
	return s.tx.Commit()
}

// Rollback rolls back the current transaction.
func (s *Store) Rollback(ctx context.Context) error {
	if s.tx == nil {
		return fmt.Errorf("rollback not applicable: not in a transactional context")
	}
	s.logger.Debug("Rolling back transaction")
	return s.tx.Rollback()
}

// NewResolver builds a SQLite bitstream resolver running on this store.
func (s *Store) NewResolver(ctx context.Context, cfg resolver.Config) (*resolver.Resolver, error) {
	return resolver.New(ctx, s, Dialect{}, cfg, resolver.WithLogger(s.logger))
}
