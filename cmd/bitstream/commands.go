package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/asaidimu/go-bitstream/core/content"
	"github.com/asaidimu/go-bitstream/registry"
	"github.com/asaidimu/go-bitstream/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func newRootCommand() *cobra.Command {
	v := newViper()
	var configFile string

	root := &cobra.Command{
		Use:           "bitstream",
		Short:         "Resolve item bitstreams and track running applications",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfigFile(v, configFile)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "configuration file (yaml, json or toml)")
	flags.String("db-driver", v.GetString(keyDriver), "database/sql driver name")
	flags.String("dsn", v.GetString(keyDSN), "data source name")
	flags.String("dialect", v.GetString(keyDialect), "storage dialect (sqlite, oracle)")
	flags.BoolP("verbose", "v", false, "development logging at debug level")
	_ = v.BindPFlag(keyDriver, flags.Lookup("db-driver"))
	_ = v.BindPFlag(keyDSN, flags.Lookup("dsn"))
	_ = v.BindPFlag(keyDialect, flags.Lookup("dialect"))
	_ = v.BindPFlag(keyVerbose, flags.Lookup("verbose"))

	root.AddCommand(newSchemaCommand(v), newResolveCommand(v), newWebappCommand(v))
	return root
}

func newSchemaCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Manage the content store schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create the content tables and register the name metadata field",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			defer s.close()

			if s.dialect.Name() != sqlite.DialectName {
				return fmt.Errorf("schema init supports the %s dialect only, got %s", sqlite.DialectName, s.dialect.Name())
			}
			if err := s.store.CreateSchema(cmd.Context()); err != nil {
				return err
			}
			field, err := s.store.SeedRegistry(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "content schema ready, name field id %d\n", field)
			return nil
		},
	})
	return cmd
}

func newResolveCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Look up a bitstream of an item",
	}
	cmd.PersistentFlags().Int("schema-id", v.GetInt(keySchemaID), "metadata schema of the name field")
	cmd.PersistentFlags().String("name-element", v.GetString(keyNameElement), "element of the name field")
	_ = v.BindPFlag(keySchemaID, cmd.PersistentFlags().Lookup("schema-id"))
	_ = v.BindPFlag(keyNameElement, cmd.PersistentFlags().Lookup("name-element"))

	cmd.AddCommand(
		&cobra.Command{
			Use:   "primary <item-id> <bundle>",
			Short: "Resolve the primary bitstream of a bundle",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runResolve(cmd, v, args, func(s *session, itemID int) (*content.Bitstream, error) {
					r, err := s.newResolver(cmd.Context())
					if err != nil {
						return nil, err
					}
					return r.PrimaryBitstream(cmd.Context(), itemID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "first <item-id> <bundle>",
			Short: "Resolve the first bitstream of a bundle",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runResolve(cmd, v, args, func(s *session, itemID int) (*content.Bitstream, error) {
					r, err := s.newResolver(cmd.Context())
					if err != nil {
						return nil, err
					}
					return r.FirstBitstream(cmd.Context(), itemID, args[1])
				})
			},
		},
		&cobra.Command{
			Use:   "named <item-id> <bundle> <file>",
			Short: "Resolve a bitstream of a bundle by file name",
			Args:  cobra.ExactArgs(3),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runResolve(cmd, v, args, func(s *session, itemID int) (*content.Bitstream, error) {
					r, err := s.newResolver(cmd.Context())
					if err != nil {
						return nil, err
					}
					return r.NamedBitstream(cmd.Context(), itemID, args[1], args[2])
				})
			},
		},
	)
	return cmd
}

func runResolve(cmd *cobra.Command, v *viper.Viper, args []string, lookup func(*session, int) (*content.Bitstream, error)) error {
	itemID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid item id %q: %w", args[0], err)
	}

	s, err := open(cmd, v)
	if err != nil {
		return err
	}
	defer s.close()

	bitstream, err := lookup(s, itemID)
	if err != nil {
		return err
	}
	if bitstream == nil {
		return fmt.Errorf("item %d, bundle %q: %w", itemID, args[1], content.ErrBitstreamNotFound)
	}
	return writeJSON(cmd.OutOrStdout(), bitstream)
}

func newWebappCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webapp",
		Short: "Register this application and list the running ones",
	}
	flags := cmd.PersistentFlags()
	flags.String("kind", v.GetString(keyWebappKind), "application kind")
	flags.String("url", v.GetString(keyWebappURL), "base URL the application answers on")
	flags.Bool("ui", false, "the application is an interactive UI")
	flags.Duration("probe-timeout", v.GetDuration(keyProbeTimeout), "liveness probe timeout")
	_ = v.BindPFlag(keyWebappKind, flags.Lookup("kind"))
	_ = v.BindPFlag(keyWebappURL, flags.Lookup("url"))
	_ = v.BindPFlag(keyWebappUI, flags.Lookup("ui"))
	_ = v.BindPFlag(keyProbeTimeout, flags.Lookup("probe-timeout"))

	withReporter := func(run func(cmd *cobra.Command, s *session, r *registry.Reporter) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			s, err := open(cmd, v)
			if err != nil {
				return err
			}
			defer s.close()
			reporter, err := s.newReporter()
			if err != nil {
				return err
			}
			return run(cmd, s, reporter)
		}
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Register, answer liveness probes and serve the application list until interrupted",
		Args:  cobra.NoArgs,
		RunE: withReporter(func(cmd *cobra.Command, s *session, r *registry.Reporter) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := &http.Server{Addr: s.v.GetString(keyListen), Handler: registry.Handler(r)}
			r.Register(ctx)
			defer r.Deregister(cmd.Context())

			errCh := make(chan error, 1)
			go func() { errCh <- server.ListenAndServe() }()
			s.logger.Info("Serving application registry", zap.String("listen", server.Addr))

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		}),
	}
	serve.Flags().String("listen", v.GetString(keyListen), "address to listen on")
	_ = v.BindPFlag(keyListen, serve.Flags().Lookup("listen"))

	cmd.AddCommand(
		&cobra.Command{
			Use:   "register",
			Short: "Record this application as running",
			Args:  cobra.NoArgs,
			RunE: withReporter(func(cmd *cobra.Command, s *session, r *registry.Reporter) error {
				r.Register(cmd.Context())
				return writeJSON(cmd.OutOrStdout(), r.Self())
			}),
		},
		&cobra.Command{
			Use:   "list",
			Short: "List running applications, pruning those that do not answer",
			Args:  cobra.NoArgs,
			RunE: withReporter(func(cmd *cobra.Command, s *session, r *registry.Reporter) error {
				return writeJSON(cmd.OutOrStdout(), r.ListRunning(cmd.Context()))
			}),
		},
		serve,
	)
	return cmd
}

func writeJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}
