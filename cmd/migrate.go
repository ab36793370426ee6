package cmd

import (
	"fmt"

	"github.com/frahmantamala/event-management/pkg/logger"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to run db migration files under db/migrations directory",
	}
	migrateRollback bool
	migrateStatus   bool
	migrateDir      string
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
	migrateCmd.Flags().BoolVarP(&migrateStatus, "status", "s", false, "to print the applied state of every migration")
	migrateCmd.PersistentFlags().StringVarP(&migrateDir, "dir", "d", "db/migrations", "sql migrations directory")
}

func migrationCommand() string {
	switch {
	case migrateStatus:
		return "status"
	case migrateRollback:
		return "down"
	default:
		return "up"
	}
}

func runMigration(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	lg := logger.LoggerWrapper()

	db, err := goose.OpenDBWithDriver("pgx", cfg.Database.GetDSN())
	if err != nil {
		return fmt.Errorf("goose: failed to open DB: %w", err)
	}
	defer db.Close()

	goose.SetTableName("schema_migrations")

	command := migrationCommand()
	if err := goose.RunContext(ctx, command, db, migrateDir); err != nil {
		return fmt.Errorf("goose %s: %w", command, err)
	}

	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("goose version: %w", err)
	}
	lg.Info("migrations applied", "command", command, "dir", migrateDir, "version", version)
	return nil
}
