// Package migrate implements the migrate command.
package migrate

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mirra/internal/infrastructure/config"
	"mirra/internal/infrastructure/database"
	"mirra/internal/infrastructure/persistence/models"
	"mirra/internal/shared/logger"
)

var env string

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if err := database.Init(&cfg.Database); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	if err := database.Get().AutoMigrate(&models.SyncCursorModel{}); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	logger.Info("migration completed")
	return nil
}
