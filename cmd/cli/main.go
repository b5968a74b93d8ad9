package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/wadjakorntonsri/trimlink/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/trimlink/pkg/config"
	"github.com/wadjakorntonsri/trimlink/pkg/logging"
	"go.uber.org/zap"
)

// env is what every subcommand needs once the root has run.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	e := &env{}
	var databaseURL string

	root := &cobra.Command{
		Use:           "trimlink",
		Short:         "Maintenance commands for the trimlink database",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if databaseURL != "" {
				cfg.DatabaseURL = databaseURL
			}
			logger, err := logging.New(cfg.LogLevel, cfg.AppEnv)
			if err != nil {
				return err
			}
			e.cfg = cfg
			e.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.logger != nil {
				_ = e.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&databaseURL, "db", "", "database URL (overrides DATABASE_URL)")

	root.AddCommand(newExportCmd(e))
	root.AddCommand(newImportCmd(e))
	root.AddCommand(newMigrateCmd(e))
	return root
}

func (e *env) open(cmd *cobra.Command) (*sqlite.SQLiteRepository, error) {
	repo, err := sqlite.NewSQLiteRepository(cmd.Context(), e.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to db: %w", err)
	}
	return repo, nil
}
