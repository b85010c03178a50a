// Package main implements the raindrop-sync command line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/taigrr/raindrop-sync/internal/config"
	"github.com/taigrr/raindrop-sync/internal/filesystem"
	"github.com/taigrr/raindrop-sync/internal/frontmatter"
	"github.com/taigrr/raindrop-sync/internal/metaindex"
	"github.com/taigrr/raindrop-sync/internal/pathfilter"
	"github.com/taigrr/raindrop-sync/internal/raindrop"
	"github.com/taigrr/raindrop-sync/internal/syncer"
)

// app holds what every command needs: the vault, its settings file and
// the logger.
type app struct {
	vaultPath  string
	configPath string
	logLevel   string

	store  *config.Store
	logger *log.Logger
}

func main() {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "raindrop-sync",
		Short: "Sync Raindrop.io bookmarks into an Obsidian vault",
		Long: `raindrop-sync fetches collections, bookmarks and highlights from
Raindrop.io and writes them into an Obsidian vault, either as one
document per collection tree (list view) or as one note per bookmark
with generated index notes (file view).`,
		Example: `raindrop-sync --vault ~/obsidian collections select 123 --cascade
raindrop-sync --vault ~/obsidian sync file --incremental`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.vaultPath, "vault", "", "vault directory (default: current directory)")
	flags.StringVar(&a.configPath, "config", "", "settings file (default: <vault>/"+config.DefaultFileName+")")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	cmd.AddCommand(
		a.syncCmd(),
		a.indexCmd(),
		a.renameCmd(),
		a.collectionsCmd(),
		a.configCmd(),
		a.statusCmd(),
		a.noteCmd(),
		a.serveCmd(),
	)

	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(version),
		fang.WithoutCompletions(),
		fang.WithoutManpage(),
	); err != nil {
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	if a.vaultPath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		a.vaultPath = wd
	}
	abs, err := filepath.Abs(a.vaultPath)
	if err != nil {
		return fmt.Errorf("failed to resolve vault path: %w", err)
	}
	a.vaultPath = abs
	a.store = config.NewStore(a.vaultPath, a.configPath)

	a.logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "raindrop-sync",
	})
	level := a.logLevel
	if level == "" {
		if cfg, err := a.store.Load(); err == nil {
			level = cfg.LogLevel
		}
	}
	if level == "" {
		return nil
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	a.logger.SetLevel(lvl)
	return nil
}

func (a *app) client(cfg *config.Settings) *raindrop.Client {
	return raindrop.New(cfg.APIBaseURL, cfg.APIToken, raindrop.WithLogger(a.logger))
}

// service wires a syncer over the vault. The metadata index is optional;
// when it cannot be opened the operations that need it report so.
func (a *app) service(ctx context.Context, notifier syncer.Notifier) (*syncer.Service, func(), error) {
	cfg, err := a.store.Load()
	if err != nil {
		return nil, nil, err
	}

	pf := pathfilter.New(cfg.PathFilterConfig())
	deps := syncer.Deps{
		Remote:   a.client(cfg),
		Vault:    filesystem.New(a.vaultPath, pf, frontmatter.New()),
		Settings: a.store,
		Notifier: notifier,
		Logger:   a.logger,
	}

	closeFn := func() {}
	idx, err := metaindex.Open(ctx, a.vaultPath, "", pf, a.logger)
	if err != nil {
		a.logger.Warn("metadata index unavailable", "err", err)
	} else {
		deps.Index = idx
		closeFn = func() {
			if err := idx.Close(); err != nil {
				a.logger.Warn("failed to close metadata index", "err", err)
			}
		}
	}
	return syncer.New(deps), closeFn, nil
}
