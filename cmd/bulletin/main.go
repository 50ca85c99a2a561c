// Command bulletin scrapes the SEMACE Fortaleza beach bathing bulletin into a
// CSV snapshot and serves it, with weather and marine forecasts, over HTTP.
//
// Usage:
//
//	bulletin serve [--skip-scrape]
//	bulletin scrape
//	bulletin inspect data/boletim_fortaleza.pdf
//	bulletin validate [--snapshot data/boletim_fortaleza.csv]
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/kafka"
	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/pdf"
	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/semace"
	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/snapshot"
	"github.com/couchcryptid/beach-bulletin-etl/internal/config"
	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
	"github.com/couchcryptid/beach-bulletin-etl/internal/pipeline"
	"github.com/spf13/cobra"
)

func main() {
	os.Exit(execute(os.Args[1:], os.Stderr))
}

// execute runs the command line and returns the process exit code. Errors are
// printed to stderr since cobra's own reporting is silenced.
func execute(args []string, stderr io.Writer) int {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetErr(stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintf(stderr, "bulletin: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "bulletin",
		Short:         "Fortaleza beach bathing bulletin ETL and API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newScrapeCmd(), newInspectCmd(), newValidateCmd())
	return root
}

// loadConfig reads the environment and installs the process logger.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return nil, nil, err
	}
	return cfg, observability.NewLogger(cfg), nil
}

// newPipeline wires the bulletin pipeline. The returned close func releases
// the Kafka publisher when one is configured.
func newPipeline(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) (*pipeline.Pipeline, func()) {
	locator := semace.NewLocator(cfg.ListingURL, cfg.LinkMarker,
		semace.NewHTTPClient(cfg.FetchTimeout, cfg.SSRFGuard), logger)
	opener := pipeline.OpenerFunc(func(path string) (pipeline.Document, error) {
		doc, err := pdf.Opener{}.Open(path)
		if err != nil {
			return nil, err
		}
		return doc, nil
	})

	var opts []pipeline.Option
	closeFn := func() {}
	if cfg.KafkaEnabled() {
		publisher := kafka.NewPublisher(cfg, logger)
		opts = append(opts, pipeline.WithPublisher(publisher))
		closeFn = func() {
			if err := publisher.Close(); err != nil {
				logger.Error("kafka publisher close error", "error", err)
			}
		}
		logger.Info("snapshot publication enabled", "topic", cfg.KafkaSnapshotTopic, "brokers", cfg.KafkaBrokers)
	}

	p := pipeline.New(locator, opener, snapshot.NewFileWriter(cfg.SnapshotPath),
		cfg.DocumentPath, cfg.RunTimeout, logger, metrics, opts...)
	return p, closeFn
}
