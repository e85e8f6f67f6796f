package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resumeHub/internal/config"
	"resumeHub/internal/logger"
)

const app = "resumehub-admin"

var (
	debug   bool
	jsonLog bool

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "Maintenance commands for the resumeHub database and bucket",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			_ = godotenv.Load()
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")
}

// setup loads the configuration and builds the logger shared by the subcommands.
func setup() (*config.Config, *zap.Logger) {
	zlog, err := logger.New(jsonLog, debug)
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("load config", zap.Error(err))
	}
	return cfg, zlog
}
