package cmd

import (
	"github.com/spf13/cobra"

	"github.com/agrisoko/sokobot/core/database"
	"github.com/agrisoko/sokobot/core/logger"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations and exit",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.Init(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}); err != nil {
		return err
	}
	defer func() { _ = logger.Shutdown() }()

	return database.RunMigrations(cfg.Database)
}
