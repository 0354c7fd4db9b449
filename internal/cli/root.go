package cli

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/roach88/kanban/internal/config"
	"github.com/roach88/kanban/internal/session"
	"github.com/roach88/kanban/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string // path to a .cue or .yaml config file
	Driver  string // store driver override
	DB      string // store DSN override
	Key     string // store key override

	logger *log.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the kanban CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "kanban",
		Short: "Kanban - a local task board",
		Long: `A local kanban board: tasks in ordered columns, persisted after every change.

The board lives in a key-value store (SQLite by default) and is changed
through create, edit, delete and move commands, through a stream of
events (apply), or over HTTP (serve).`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			opts.logger = newLogger(cmd, opts.Verbose)
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Config, "config", "c", "", "config file (.cue, .yaml)")
	cmd.PersistentFlags().StringVar(&opts.Driver, "driver", "", "store driver (sqlite|redis|memory), overrides config")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", "", "store DSN: SQLite path or Redis address, overrides config")
	cmd.PersistentFlags().StringVar(&opts.Key, "key", "", "store key the board is kept under, overrides config")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewCreateCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewMoveCommand(opts))
	cmd.AddCommand(NewApplyCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// newLogger returns a logger writing to the command's stderr, at debug
// level when verbose.
func newLogger(cmd *cobra.Command, verbose bool) *log.Logger {
	logger := log.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(log.InfoLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// Logger returns the configured logger, or a warn-level logger when the
// root pre-run did not execute (subcommands built directly in tests).
func (o *RootOptions) Logger() *log.Logger {
	if o.logger == nil {
		o.logger = log.New()
		o.logger.SetLevel(log.WarnLevel)
	}
	return o.logger
}

// Formatter returns an output formatter for cmd.
func (o *RootOptions) Formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// LoadConfig loads the config file, if any, and applies flag overrides.
func (o *RootOptions) LoadConfig() (*config.Config, error) {
	cfg := config.Default()
	if o.Config != "" {
		loaded, err := config.Load(o.Config)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to load config", err)
		}
		cfg = loaded
	}
	if o.Driver != "" {
		cfg.Storage.Driver = o.Driver
	}
	if o.DB != "" {
		cfg.Storage.DSN = o.DB
	}
	if o.Key != "" {
		cfg.Storage.Key = o.Key
	}
	return cfg, nil
}

// OpenSession opens the configured store and rehydrates the board. The
// caller must close the returned store.
func (o *RootOptions) OpenSession(ctx context.Context) (*session.Manager, store.KV, *config.Config, error) {
	cfg, err := o.LoadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	kv, err := store.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to open store", err)
	}

	logger := o.Logger()
	m, err := session.Open(ctx, kv, cfg.Layout(),
		session.WithRules(cfg.Rules()),
		session.WithKey(cfg.Storage.Key),
		session.WithLogger(logger),
	)
	if err != nil {
		kv.Close()
		return nil, nil, nil, WrapExitError(ExitCommandError, "failed to load board", err)
	}

	logger.WithFields(log.Fields{
		"driver":     cfg.Storage.Driver,
		"key":        cfg.Storage.Key,
		"rehydrated": m.Rehydrated(),
	}).Debug("session opened")
	return m, kv, cfg, nil
}
