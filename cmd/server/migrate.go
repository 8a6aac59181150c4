package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/internal/config"
	pgInfra "github.com/sorayamlj/FocusTache/internal/infrastructure/postgres"
	sqliteInfra "github.com/sorayamlj/FocusTache/internal/infrastructure/sqlite"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations",
	Long: `migrate brings the configured store to the latest schema. With --down it
reverts the last Postgres migration. The SQLite store migrates itself on open.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, zapLogger, err := setup(true)
		if err != nil {
			return err
		}
		defer zapLogger.Sync()

		if cfg.Store.Driver == config.StoreDriverSQLite {
			if migrateDown {
				return fmt.Errorf("--down is not supported for the sqlite store")
			}
			db, err := sqliteInfra.Open(cfg.SQLite.Path, zapLogger)
			if err != nil {
				return err
			}
			zapLogger.Info("sqlite schema up to date", zap.String("path", cfg.SQLite.Path))
			return db.Close()
		}

		direction := pgInfra.MigrateUp
		if migrateDown {
			direction = pgInfra.MigrateDown
		}
		return pgInfra.Migrate(cfg, direction, zapLogger)
	},
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "revert the most recent migration")
	rootCmd.AddCommand(migrateCmd)
}
