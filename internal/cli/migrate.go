package cli

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"
	"prepify-quiz/internal/config"
	"prepify-quiz/internal/infra/postgres"
	"prepify-quiz/internal/infra/sqlite"
)

// NewMigrateCmd applies database migrations.
func NewMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context(), *configPath)
		},
	}
}

func runMigrations(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	switch cfg.Storage.Driver {
	case "postgres":
		dsn := cfg.PostgresDSN()
		if dsn == "" {
			return fmt.Errorf("postgres url not configured")
		}
		return postgres.Migrate(ctx, dsn)
	case "sqlite":
		// the sqlite schema is ensured on open
		db, err := sqlite.Open(ctx, cfg.Storage.DSN)
		if err != nil {
			return err
		}
		log.Printf("sqlite schema ready")
		return db.Close()
	}
	return fmt.Errorf("nothing to migrate for storage driver %q", cfg.Storage.Driver)
}
