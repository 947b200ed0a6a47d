package commands

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/auditlog"
	"github.com/boda-dev/boda/internal/buildinfo"
	"github.com/boda-dev/boda/internal/config"
	"github.com/boda-dev/boda/internal/ledger"
	"github.com/boda-dev/boda/internal/model"
)

// Option configures the root command.
type Option func(*env)

// WithClock fixes the time commands treat as now.
func WithClock(now func() time.Time) Option {
	return func(e *env) { e.now = now }
}

// env holds the root flags and builds an app for each command run.
type env struct {
	dataDir    string
	configPath string
	now        func() time.Time
}

// app is what a command needs once configuration is loaded.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	audit  *auditlog.Logger
	store  *ledger.Store
	now    func() time.Time
}

func (a *app) today() time.Time {
	return a.now()
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand(opts ...Option) *cobra.Command {
	e := &env{now: time.Now}
	for _, o := range opts {
		o(e)
	}

	rootCmd := &cobra.Command{
		Use:     "boda",
		Short:   "Personal ledger for ride-hailing and boda boda drivers",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&e.dataDir, "data-dir", ".", "directory holding the ledger and its files")
	rootCmd.PersistentFlags().StringVar(&e.configPath, "config", "", "config file (default <data-dir>/boda.yaml)")

	rootCmd.AddCommand(
		newInitCommand(e),
		newEntryCommand(e, model.KindIncome),
		newEntryCommand(e, model.KindExpense),
		newEntryCommand(e, model.KindSavings),
		newCategoryCommand(e),
		newReportCommand(e),
		newImportCommand(e),
		newSettingsCommand(e),
		newContactsCommand(e),
	)

	return rootCmd
}

// load reads configuration for one command run. The --data-dir flag wins
// over BODA_DATA_DIR when both are given.
func (e *env) load(cmd *cobra.Command) (*app, error) {
	if err := config.LoadEnvFile(".env", filepath.Join(e.dataDir, ".env")); err != nil {
		return nil, err
	}

	path := e.configPath
	if path == "" {
		path = filepath.Join(e.dataDir, config.FileName)
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = e.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := cfg.LogLevel()
	logger := setupLogger(cmd.ErrOrStderr(), level)

	return &app{
		cfg:    cfg,
		logger: logger,
		audit:  auditlog.New(cfg.Resolve(cfg.Audit.Path), logger),
		store:  ledger.NewStore(cfg.Resolve(cfg.Ledger.Path)),
		now:    e.now,
	}, nil
}

// run loads the app and records start and stop around fn.
func (e *env) run(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := e.load(cmd)
	if err != nil {
		return err
	}
	a.audit.Record(auditlog.ActionStart, cmd.CommandPath())
	err = fn(a)
	if err != nil {
		a.logger.Debug("command failed", "command", cmd.CommandPath(), "error", err)
		a.audit.Recordf(auditlog.ActionStop, "%s: %v", cmd.CommandPath(), err)
		return err
	}
	a.audit.Record(auditlog.ActionStop, cmd.CommandPath())
	return nil
}

// setupLogger builds the diagnostic logger. Diagnostics go to stderr so
// they never mix with command output.
func setupLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// update loads the ledger, applies fn and saves the result.
func (a *app) update(fn func(d *ledger.Document) error) error {
	doc, err := a.store.Load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return a.store.Save(doc)
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
