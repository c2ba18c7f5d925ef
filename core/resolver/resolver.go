package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/asaidimu/go-bitstream/core/content"
	"github.com/zeebo/errs"
	"go.uber.org/zap"
)

// Config describes which metadata field holds bundle and bitstream names, and the
// resource type codes those resources are stored under.
type Config struct {
	// SchemaID is the metadata schema of the name field. Default: content.DCSchemaID
	SchemaID int
	// NameElement is the element of the name field. Default: content.NameElement
	NameElement string
	// NameQualifier is the qualifier of the name field; nil for an unqualified field.
	NameQualifier *string

	// BundleType and BitstreamType are the resource type codes names are stored under.
	// Left both at zero they default to content.ResourceBundle and
	// content.ResourceBitstream; otherwise they must differ.
	BundleType    content.ResourceType
	BitstreamType content.ResourceType
}

// DefaultConfig returns the configuration of a stock repository: names live in the
// unqualified dc.title field.
func DefaultConfig() Config {
	return Config{
		SchemaID:      content.DCSchemaID,
		NameElement:   content.NameElement,
		BundleType:    content.ResourceBundle,
		BitstreamType: content.ResourceBitstream,
	}
}

func (c *Config) validate() error {
	if c.SchemaID <= 0 {
		c.SchemaID = content.DCSchemaID
	}
	if c.NameElement == "" {
		c.NameElement = content.NameElement
	}
	if c.BundleType == 0 && c.BitstreamType == 0 {
		c.BundleType = content.ResourceBundle
		c.BitstreamType = content.ResourceBitstream
	}
	if c.BundleType == c.BitstreamType {
		return fmt.Errorf("bundle and bitstream resource types must differ, both are %d", int(c.BundleType))
	}
	return nil
}

// Option customises a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithFinder replaces the lookup used to load a bitstream once its id is known.
func WithFinder(finder BitstreamFinder) Option {
	return func(r *Resolver) {
		r.finder = finder
	}
}

// Resolver is the SQL implementation of BitstreamResolver. Its templates are built
// once and never change, so a Resolver may be shared; each lookup runs on the
// Runner the resolver is bound to.
type Resolver struct {
	runner    Runner
	dialect   Dialect
	nameField content.FieldID
	templates Templates
	finder    BitstreamFinder
	logger    *zap.Logger
}

// Ensure Resolver implements the BitstreamResolver interface.
var _ BitstreamResolver = (*Resolver)(nil)

// New resolves the name field and builds the lookup templates. A name field that
// cannot be resolved does not fail construction: the resolver is built around
// content.UnresolvedField and every lookup finds nothing.
func New(ctx context.Context, runner Runner, dialect Dialect, cfg Config, opts ...Option) (*Resolver, error) {
	if runner == nil {
		return nil, fmt.Errorf("runner cannot be nil")
	}
	if dialect == nil {
		return nil, fmt.Errorf("dialect cannot be nil")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	r := &Resolver{
		runner:  runner,
		dialect: dialect,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	field, err := ResolveField(ctx, runner, dialect, cfg.SchemaID, cfg.NameElement, cfg.NameQualifier)
	switch {
	case errors.Is(err, content.ErrFieldNotFound):
		r.logger.Warn("Name metadata field is not defined, bitstream lookups will match nothing",
			zap.Int("schema_id", cfg.SchemaID), zap.String("element", fieldName(cfg.NameElement, cfg.NameQualifier)))
	case err != nil:
		r.logger.Error("Failed to resolve name metadata field, bitstream lookups will match nothing",
			zap.Int("schema_id", cfg.SchemaID), zap.String("element", fieldName(cfg.NameElement, cfg.NameQualifier)), zap.Error(err))
	}

	r.nameField = field
	r.templates = BuildTemplates(dialect, TemplateParams{
		NameField:     field,
		BundleType:    cfg.BundleType,
		BitstreamType: cfg.BitstreamType,
	})
	if r.finder == nil {
		r.finder = &SQLFinder{Dialect: dialect, NameField: field, BitstreamType: cfg.BitstreamType}
	}

	r.logger.Debug("Bitstream resolver ready", zap.String("dialect", dialect.Name()), zap.Int("name_field", int(field)))
	return r, nil
}

// Within returns a resolver that shares this resolver's templates but runs its
// lookups on runner, typically a transaction.
func (r *Resolver) Within(runner Runner) *Resolver {
	scoped := *r
	scoped.runner = runner
	return &scoped
}

// NameField returns the resolved name field, or content.UnresolvedField.
func (r *Resolver) NameField() content.FieldID {
	return r.nameField
}

// Templates returns the statements the resolver executes.
func (r *Resolver) Templates() Templates {
	return r.templates
}

// PrimaryBitstream returns the primary bitstream of the item's bundle named
// bundleName. When several bundles of the item carry that name, the first row the
// store returns wins.
func (r *Resolver) PrimaryBitstream(ctx context.Context, itemID int, bundleName string) (_ *content.Bitstream, err error) {
	defer mon.Task()(&ctx)(&err)
	id, ok, err := r.queryID(ctx, "primary", r.templates.Primary, itemID, bundleName)
	if err != nil || !ok {
		return nil, err
	}
	return r.find(ctx, id)
}

// FirstBitstream returns the bitstream with the lowest id in the item's bundle named
// bundleName.
func (r *Resolver) FirstBitstream(ctx context.Context, itemID int, bundleName string) (_ *content.Bitstream, err error) {
	defer mon.Task()(&ctx)(&err)
	id, ok, err := r.queryID(ctx, "first", r.templates.First, itemID, bundleName)
	if err != nil || !ok {
		return nil, err
	}
	return r.find(ctx, id)
}

// NamedBitstream returns the bitstream named fileName in the item's bundle named
// bundleName. Names are compared exactly.
func (r *Resolver) NamedBitstream(ctx context.Context, itemID int, bundleName, fileName string) (_ *content.Bitstream, err error) {
	defer mon.Task()(&ctx)(&err)
	id, ok, err := r.queryID(ctx, "named", r.templates.Named, itemID, bundleName, fileName)
	if err != nil || !ok {
		return nil, err
	}
	return r.find(ctx, id)
}

// queryID runs a lookup template and reads the bitstream id from its first row. The
// cursor is closed before returning, whatever the outcome.
func (r *Resolver) queryID(ctx context.Context, lookup, query string, args ...any) (id int, found bool, err error) {
	r.logger.Debug("Executing bitstream lookup", zap.String("lookup", lookup), zap.String("sql", query), zap.Any("params", args))

	rows, err := r.runner.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to execute bitstream lookup", zap.String("lookup", lookup), zap.Error(err))
		return 0, false, Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(rows.Close())) }()

	if !rows.Next() {
		return 0, false, Error.Wrap(rows.Err())
	}

	var bid sql.NullInt64
	if err := rows.Scan(&bid); err != nil {
		r.logger.Error("Failed to read bitstream lookup row", zap.String("lookup", lookup), zap.Error(err))
		return 0, false, Error.Wrap(err)
	}
	if !bid.Valid {
		return 0, false, nil
	}
	return int(bid.Int64), true, nil
}

func (r *Resolver) find(ctx context.Context, id int) (*content.Bitstream, error) {
	bitstream, err := r.finder.FindBitstream(ctx, r.runner, id)
	if err != nil {
		r.logger.Error("Failed to load bitstream", zap.Int("bitstream_id", id), zap.Error(err))
		return nil, Error.Wrap(err)
	}
	return bitstream, nil
}
