// Package pipeline runs the bulletin ETL: locate and download the latest
// document, extract its header and tables, and write the snapshot.
package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// ErrRunInProgress is returned when Run is called while another run, in this
// process or another one sharing the document path, holds the lock.
var ErrRunInProgress = errors.New("pipeline run already in progress")

// Locator finds the bulletin link and downloads the document.
type Locator interface {
	Locate(ctx context.Context) (string, error)
	Download(ctx context.Context, url, dest string) error
}

// Document is an opened bulletin.
type Document interface {
	FirstPageText() (string, error)
	Tables() ([]domain.RawTable, error)
	Close() error
}

// DocumentOpener opens a downloaded bulletin.
type DocumentOpener interface {
	Open(path string) (Document, error)
}

// OpenerFunc adapts a function to DocumentOpener.
type OpenerFunc func(path string) (Document, error)

func (f OpenerFunc) Open(path string) (Document, error) { return f(path) }

// SnapshotWriter persists a complete snapshot, replacing the previous one.
type SnapshotWriter interface {
	WriteSnapshot(records []domain.BeachRecord) error
}

// Publisher announces a written snapshot. Optional.
type Publisher interface {
	Publish(ctx context.Context, records []domain.BeachRecord) error
}

// Result summarizes a successful run.
type Result struct {
	RunID    string
	URL      string
	Metadata domain.BulletinMetadata
	Records  []domain.BeachRecord
	Report   domain.NormalizeReport
}

// Pipeline orchestrates one locate-download-parse-write run at a time.
type Pipeline struct {
	locator      Locator
	opener       DocumentOpener
	writer       SnapshotWriter
	publisher    Publisher
	documentPath string
	runTimeout   time.Duration
	logger       *slog.Logger
	metrics      *observability.Metrics
	mu           sync.Mutex
	fileLock     *flock.Flock
}

// Option configures optional pipeline collaborators.
type Option func(*Pipeline)

// WithPublisher publishes every written snapshot.
func WithPublisher(p Publisher) Option {
	return func(pl *Pipeline) { pl.publisher = p }
}

// New creates a Pipeline that downloads to documentPath and bounds each run by runTimeout.
func New(l Locator, o DocumentOpener, w SnapshotWriter, documentPath string, runTimeout time.Duration, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) *Pipeline {
	p := &Pipeline{
		locator:      l,
		opener:       o,
		writer:       w,
		documentPath: documentPath,
		runTimeout:   runTimeout,
		logger:       logger,
		metrics:      metrics,
		fileLock:     flock.New(documentPath + ".lock"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one pipeline run. Acquisition failures abort before the
// snapshot is touched; parse anomalies are logged and the run continues.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	unlock, err := p.lock()
	if err != nil {
		if errors.Is(err, ErrRunInProgress) {
			p.metrics.PipelineRuns.WithLabelValues("skipped").Inc()
		} else {
			p.metrics.PipelineRuns.WithLabelValues("error").Inc()
		}
		return Result{}, err
	}
	defer unlock()

	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	if p.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.runTimeout)
		defer cancel()
	}

	runID := uuid.NewString()
	logger := p.logger.With("run_id", runID)
	start := time.Now()
	logger.Info("pipeline run started")

	res, err := p.run(ctx, logger)
	res.RunID = runID
	p.metrics.RunDuration.Observe(time.Since(start).Seconds())
	p.metrics.PipelineRuns.WithLabelValues(outcome(err)).Inc()

	if err != nil {
		logger.Error("pipeline run failed", "error", err, "retryable", domain.IsRetryable(err))
		return res, err
	}
	logger.Info("pipeline run finished",
		"bulletin", res.Metadata.Number,
		"records", len(res.Records),
		"duration", time.Since(start),
	)
	return res, nil
}

// lock takes the in-process mutex and then the lock file beside the
// document, so a scrape and a serving process never overlap on the same paths.
func (p *Pipeline) lock() (func(), error) {
	if !p.mu.TryLock() {
		return nil, ErrRunInProgress
	}
	path := p.fileLock.Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		p.mu.Unlock()
		return nil, errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	locked, err := p.fileLock.TryLock()
	if err != nil {
		p.mu.Unlock()
		return nil, errors.Wrapf(err, "lock %s", path)
	}
	if !locked {
		p.mu.Unlock()
		return nil, ErrRunInProgress
	}
	return func() {
		if err := p.fileLock.Unlock(); err != nil {
			p.logger.Warn("release run lock", "path", path, "error", err)
		}
		p.mu.Unlock()
	}, nil
}

func (p *Pipeline) run(ctx context.Context, logger *slog.Logger) (Result, error) {
	url, err := p.locator.Locate(ctx)
	if err != nil {
		return Result{}, err
	}
	logger.Info("bulletin located", "url", url)

	if err := p.locator.Download(ctx, url, p.documentPath); err != nil {
		return Result{URL: url}, err
	}

	meta, rows, report, err := p.extract(logger)
	if err != nil {
		return Result{URL: url}, err
	}

	records := domain.Assemble(meta, rows)
	if err := p.writer.WriteSnapshot(records); err != nil {
		return Result{URL: url}, errors.Wrap(err, "write snapshot")
	}
	p.metrics.SnapshotRecords.Set(float64(len(records)))

	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, records); err != nil {
			p.metrics.PublishErrors.Inc()
			logger.Warn("snapshot publication failed", "error", err)
		}
	}

	return Result{URL: url, Metadata: meta, Records: records, Report: report}, nil
}

// extract reads the header and tables of the downloaded document.
func (p *Pipeline) extract(logger *slog.Logger) (domain.BulletinMetadata, []domain.BeachRow, domain.NormalizeReport, error) {
	doc, err := p.opener.Open(p.documentPath)
	if err != nil {
		return domain.BulletinMetadata{}, nil, domain.NormalizeReport{}, err
	}
	defer doc.Close()

	meta := p.header(doc, logger)

	tables, err := doc.Tables()
	if err != nil {
		return meta, nil, domain.NormalizeReport{}, errors.Wrap(err, "detect tables")
	}
	rows, report := domain.NormalizeTables(tables)

	if report.Truncated > 0 {
		p.metrics.TruncatedPairs.Add(float64(report.Truncated))
		logger.Warn("name and status counts differ, surplus dropped", "dropped", report.Truncated)
	}
	if report.Exhausted {
		p.metrics.ParseDegradation.WithLabelValues("tables").Inc()
		logger.Warn("no beach rows found, writing empty snapshot",
			"tables", report.Tables, "discarded", report.Discarded, "noise", report.Noise)
	}
	return meta, rows, report, nil
}

func (p *Pipeline) header(doc Document, logger *slog.Logger) domain.BulletinMetadata {
	text, err := doc.FirstPageText()
	if err != nil {
		logger.Warn("first page text unavailable", "error", err)
	}

	meta, err := domain.ParseHeader(text)
	if err != nil {
		p.metrics.ParseDegradation.WithLabelValues("header").Inc()
		logger.Warn("bulletin header degraded", "error", err)
		return meta
	}

	if _, err := domain.ParsePeriod(meta.Period); err != nil {
		p.metrics.ParseDegradation.WithLabelValues("period").Inc()
		logger.Warn("bulletin period malformed, day list will be empty", "period", meta.Period, "error", err)
	}
	return meta
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrBulletinNotFound):
		return "not_found"
	case domain.IsRetryable(err):
		return "fetch_error"
	default:
		return "error"
	}
}
