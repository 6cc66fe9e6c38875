// Package cli defines the cobra command tree for votesrv.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/emilythestrangee/comment-votes/internal/config"
	"github.com/emilythestrangee/comment-votes/internal/database"
	"github.com/emilythestrangee/comment-votes/internal/logging"
)

var (
	flagDBDriver string
	flagDBPath   string
)

// NewRootCmd creates the root cobra command with global flags.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "votesrv",
		Short:         "Comment voting backend",
		Long:          "Serves posts, comments and their up/down vote tallies over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flagDBDriver, "db-driver", "", "database driver (postgres|sqlite), overrides VOTES_DB_DRIVER")
	root.PersistentFlags().StringVar(&flagDBPath, "db-path", "", "sqlite database path, overrides VOTES_DB_PATH")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newRecountCmd(),
		newTokenCmd(),
	)

	return root
}

// loadConfig reads the environment and applies global flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDBDriver != "" {
		cfg.DB.Driver = flagDBDriver
	}
	if flagDBPath != "" {
		cfg.DB.Path = flagDBPath
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	return cfg, nil
}

func openDB(cfg *config.Config) (database.Service, error) {
	return database.New(cfg.DB, logging.Logger)
}

// closeDB closes the database, logging any error.
func closeDB(db database.Service) {
	if err := db.Close(); err != nil {
		logging.WithError(err).Warn("closing database")
	}
}
