package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/asaidimu/go-bitstream/core/resolver"
	"github.com/asaidimu/go-bitstream/registry"
	"github.com/asaidimu/go-bitstream/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	_ "github.com/asaidimu/go-bitstream/oracle" // registers the oracle dialect
)

// Configuration keys. Every key can also be set through the environment with the
// BITSTREAM_ prefix, e.g. BITSTREAM_DATABASE_DSN.
const (
	keyDriver        = "database.driver"
	keyDSN           = "database.dsn"
	keyDialect       = "dialect"
	keySchemaID      = "metadata.schema-id"
	keyNameElement   = "metadata.name-element"
	keyNameQualifier = "metadata.name-qualifier"
	keyWebappKind    = "webapp.kind"
	keyWebappURL     = "webapp.url"
	keyWebappUI      = "webapp.ui"
	keyProbeTimeout  = "webapp.probe-timeout"
	keyListen        = "webapp.listen"
	keyVerbose       = "verbose"
)

// session holds what every subcommand needs once configuration is loaded.
type session struct {
	v       *viper.Viper
	logger  *zap.Logger
	db      *sql.DB
	store   *sqlite.Store
	dialect resolver.Dialect
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetDefault(keyDriver, sqlite.DriverName)
	v.SetDefault(keyDSN, "bitstream.db")
	v.SetDefault(keyDialect, sqlite.DialectName)
	v.SetDefault(keySchemaID, resolver.DefaultConfig().SchemaID)
	v.SetDefault(keyNameElement, resolver.DefaultConfig().NameElement)
	v.SetDefault(keyWebappKind, "CLI")
	v.SetDefault(keyProbeTimeout, registry.DefaultConfig().ProbeTimeout)
	v.SetDefault(keyListen, ":8080")

	v.SetEnvPrefix("BITSTREAM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

// loadConfigFile reads an explicit configuration file, if one was given.
func loadConfigFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopmentConfig().Build()
	}
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"
	return config.Build()
}

// open loads the logger, database and dialect for a command.
func open(cmd *cobra.Command, v *viper.Viper) (*session, error) {
	logger, err := newLogger(v.GetBool(keyVerbose))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	dialect, err := resolver.LookupDialect(v.GetString(keyDialect))
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(v.GetString(keyDriver), v.GetString(keyDSN))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(cmd.Context()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &session{
		v:       v,
		logger:  logger,
		db:      db,
		store:   sqlite.NewStore(db, logger, nil, nil),
		dialect: dialect,
	}, nil
}

func (s *session) close() {
	if err := s.db.Close(); err != nil {
		s.logger.Warn("Failed to close database", zap.Error(err))
	}
	_ = s.logger.Sync()
}

func (s *session) resolverConfig() resolver.Config {
	cfg := resolver.DefaultConfig()
	cfg.SchemaID = s.v.GetInt(keySchemaID)
	cfg.NameElement = s.v.GetString(keyNameElement)
	if q := s.v.GetString(keyNameQualifier); q != "" {
		cfg.NameQualifier = &q
	}
	return cfg
}

func (s *session) newResolver(ctx context.Context) (*resolver.Resolver, error) {
	return resolver.New(ctx, s.store, s.dialect, s.resolverConfig(), resolver.WithLogger(s.logger))
}

func (s *session) newReporter() (*registry.Reporter, error) {
	cfg := registry.DefaultConfig()
	cfg.Kind = s.v.GetString(keyWebappKind)
	cfg.URL = s.v.GetString(keyWebappURL)
	cfg.IsUI = s.v.GetBool(keyWebappUI)
	cfg.ProbeTimeout = s.v.GetDuration(keyProbeTimeout)
	return registry.NewReporter(s.store, s.dialect, cfg, s.logger)
}
