package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/devcamper-api/internal/config"
	"github.com/phrazzld/devcamper-api/internal/platform/logger"
	"github.com/phrazzld/devcamper-api/internal/platform/postgres"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|status|version|reset]",
	Short:     "Apply or inspect the database schema migrations",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "down", "status", "version", "reset"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		log, err := logger.Setup(cfg.Server)
		if err != nil {
			return fmt.Errorf("failed to set up logger: %w", err)
		}

		db, err := setupAppDatabase(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Error("Error closing database connection", "error", err)
			}
		}()

		return runMigrations(cmd.Context(), db, args[0], log)
	},
}

// runMigrations executes a goose command against the embedded migrations.
func runMigrations(ctx context.Context, db *sql.DB, command string, log *slog.Logger) error {
	goose.SetLogger(&slogGooseLogger{logger: log.With("component", "migrations")})
	goose.SetTableName(postgres.MigrationTable)
	goose.SetBaseFS(postgres.Migrations())
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}

	log.Info("Executing migrations", "command", command)
	if err := goose.RunContext(ctx, command, db, postgres.MigrationsDir); err != nil {
		return fmt.Errorf("migration %s failed: %w", command, err)
	}
	return nil
}

// slogGooseLogger adapts the goose logger interface to slog.
type slogGooseLogger struct {
	logger *slog.Logger
}

func (l *slogGooseLogger) Printf(format string, v ...any) {
	l.logger.Info(fmt.Sprintf(format, v...))
}

// Fatalf logs at error level without exiting; the failure is returned by goose.
func (l *slogGooseLogger) Fatalf(format string, v ...any) {
	l.logger.Error(fmt.Sprintf(format, v...))
}
