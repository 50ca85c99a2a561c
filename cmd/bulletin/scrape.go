package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
	"github.com/spf13/cobra"
)

func newScrapeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scrape",
		Short: "Download the latest bulletin and rewrite the snapshot once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, closePublisher := newPipeline(cfg, logger, observability.NewMetrics())
			defer closePublisher()

			res, err := p.Run(ctx)
			if err != nil {
				return err
			}
			cmd.Printf("bulletin %s: %d beaches written to %s\n", res.Metadata.Number, len(res.Records), cfg.SnapshotPath)
			return nil
		},
	}
}
