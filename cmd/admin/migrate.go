package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resumeHub/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database tables",
	Run: func(_ *cobra.Command, _ []string) {
		cfg, zlog := setup()
		defer func() { _ = zlog.Sync() }()

		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			zlog.Fatal("init database", zap.Error(err))
		}
		if err := database.Migrate(db); err != nil {
			zlog.Fatal("auto migrate", zap.Error(err))
		}
		zlog.Info("database migrated")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
