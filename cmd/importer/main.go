// Command importer loads county exports and scraped listings into the
// reconciled store from the command line.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/stwalsh4118/taxsale/api/internal/config"
	"github.com/stwalsh4118/taxsale/api/internal/database"
	"github.com/stwalsh4118/taxsale/api/internal/logger"
	"github.com/stwalsh4118/taxsale/api/internal/repository"
)

var rootCmd = &cobra.Command{
	Use:   "importer",
	Short: "Tax-sale data importer",
	Long: `Importer reads property exports, auction calendars and scraped listing
text and merges them into the reconciled property store.

Configuration comes from the same environment variables as the API server;
a .env file in the working directory is loaded first when present.`,
	SilenceUsage: true,
}

func main() {
	_ = godotenv.Load()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd.AddCommand(newImportCmd(), newLinkCmd())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// env bundles what every subcommand needs.
type env struct {
	cfg   *config.Config
	log   *logger.Logger
	store repository.Store
	close func()
}

// openEnv loads configuration and opens the store. With dryRun the store is
// in memory, no database connection is made and database settings are not
// required.
func openEnv(ctx context.Context, dryRun bool) (*env, error) {
	load := config.Load
	if dryRun {
		load = config.LoadWithoutStores
	}
	cfg, err := load()
	if err != nil {
		return nil, err
	}
	// Logs go to stderr so stdout carries only the import summaries.
	log := logger.NewWithOutput(cfg.Server.Env, os.Stderr)

	if dryRun {
		return &env{cfg: cfg, log: log, store: repository.NewMemoryStore(), close: func() {}}, nil
	}

	db, err := database.NewPostgresPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return &env{cfg: cfg, log: log, store: repository.NewPostgresStore(db), close: db.Close}, nil
}
