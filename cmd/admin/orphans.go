package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"resumeHub/internal/database"
	"resumeHub/internal/resume"
	"resumeHub/internal/storage"
)

var (
	orphanDelete bool
	orphanPrefix string
	orphanMinAge time.Duration
)

var orphansCmd = &cobra.Command{
	Use:   "orphans",
	Short: "List stored files that no resume references",
	Long: "Uploads are stored before their database row is written. When the insert fails " +
		"the file stays in the bucket; this command reports such files and removes them with --delete.",
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, zlog := setup()
		defer func() { _ = zlog.Sync() }()
		ctx := context.Background()

		db, err := database.InitDatabase(cfg.Database)
		if err != nil {
			zlog.Fatal("init database", zap.Error(err))
		}
		storageClient, err := storage.NewClient(cfg.MinIO, zlog)
		if err != nil {
			zlog.Fatal("init storage", zap.Error(err))
		}

		janitor := resume.NewJanitor(db, storageClient)
		orphans, err := janitor.FindOrphans(ctx, orphanPrefix, orphanMinAge)
		if err != nil {
			zlog.Fatal("find orphans", zap.Error(err))
		}

		out := cmd.OutOrStdout()
		for _, o := range orphans {
			fmt.Fprintf(out, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.UTC().Format(time.RFC3339))
		}
		zlog.Info("orphan scan finished", zap.Int("orphans", len(orphans)), zap.String("prefix", orphanPrefix))

		if !orphanDelete || len(orphans) == 0 {
			return
		}
		if err := janitor.Sweep(ctx, orphans); err != nil {
			zlog.Fatal("delete orphans", zap.Error(err))
		}
		zlog.Info("orphans deleted", zap.Int("count", len(orphans)))
	},
}

func init() {
	rootCmd.AddCommand(orphansCmd)

	orphansCmd.Flags().BoolVar(&orphanDelete, "delete", false, "delete the orphaned files")
	orphansCmd.Flags().StringVar(&orphanPrefix, "prefix", "", "only inspect keys under this prefix (usually a clerk user id + \"/\")")
	orphansCmd.Flags().DurationVar(&orphanMinAge, "min-age", time.Hour, "ignore files younger than this, their row may still be in flight")
}
