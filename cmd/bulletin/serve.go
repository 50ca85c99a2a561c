package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/cockroachdb/errors"
	httpadapter "github.com/couchcryptid/beach-bulletin-etl/internal/adapter/http"
	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/openmeteo"
	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/snapshot"
	"github.com/couchcryptid/beach-bulletin-etl/internal/coordinates"
	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
	"github.com/couchcryptid/beach-bulletin-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var skipScrape bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Refresh the snapshot and serve the beach API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			metrics := observability.NewMetrics()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, closePublisher := newPipeline(cfg, logger, metrics)
			defer closePublisher()

			if skipScrape {
				logger.Info("startup scrape skipped")
			} else if _, err := p.Run(ctx); err != nil {
				logger.Warn("startup scrape failed, serving existing snapshot", "error", err)
			}

			store := snapshot.NewStore(cfg.SnapshotPath, logger)
			if err := store.Load(); err != nil {
				logger.Error("no snapshot to serve, run `bulletin scrape` first", "error", err)
				return err
			}

			client := openmeteo.NewClient(cfg, metrics, logger)
			forecasts := openmeteo.NewCachedProvider(client, cfg.ForecastCacheSize, metrics)
			api := httpadapter.NewAPI(store, forecasts, coordinates.Default(), logger)
			srv := httpadapter.NewServer(cfg.HTTPAddr, api, store, logger)

			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("http server error", "error", err)
					stop()
				}
			}()

			if cfg.RefreshInterval > 0 {
				scheduler := pipeline.NewScheduler(p, store, cfg.RefreshInterval, nil, logger)
				go scheduler.Start(ctx)
			}

			<-ctx.Done()
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("http server shutdown error", "error", err)
			}
			logger.Info("shutdown complete")
			return nil
		},
	}

	cmd.Flags().BoolVar(&skipScrape, "skip-scrape", false, "serve the existing snapshot without downloading a new bulletin")
	return cmd
}
