package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/boda-dev/boda/internal/config"
	"github.com/boda-dev/boda/internal/ledger"
)

func newInitCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := e.dataDir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			if err := runInit(absDir); err != nil {
				return err
			}

			initEnv := *e
			initEnv.dataDir, initEnv.configPath = absDir, ""
			return initEnv.run(cmd, func(_ *app) error {
				printf(cmd, "Initialized boda ledger at %s\n", absDir)
				return nil
			})
		},
	}
	return cmd
}

// runInit lays out dir. Existing config, ledger and .gitignore files are
// left alone.
func runInit(dir string) error {
	cfg := config.Default(dir)

	dirs := []string{
		"logs",
		cfg.Import.Dir,
		filepath.Join(cfg.Import.Dir, "processed"),
		filepath.Dir(cfg.Import.QueueFile),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfgPath := filepath.Join(dir, config.FileName)
	if !exists(cfgPath) {
		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}
	}

	ledgerPath := cfg.Resolve(cfg.Ledger.Path)
	if !exists(ledgerPath) {
		if err := ledger.NewStore(ledgerPath).Save(ledger.NewDocument()); err != nil {
			return fmt.Errorf("writing ledger: %w", err)
		}
	}

	gitignorePath := filepath.Join(dir, ".gitignore")
	if !exists(gitignorePath) {
		if err := os.WriteFile(gitignorePath, []byte("logs/\n.env\n"), 0o644); err != nil {
			return fmt.Errorf("writing .gitignore: %w", err)
		}
	}
	return nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}
