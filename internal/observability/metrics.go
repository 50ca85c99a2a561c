package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "beach_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// bulletin pipeline and the forecast client.
type Metrics struct {
	PipelineRuns     *prometheus.CounterVec // labels: outcome={success,fetch_error,not_found,error,skipped}
	PipelineRunning  prometheus.Gauge
	RunDuration      prometheus.Histogram
	SnapshotRecords  prometheus.Gauge
	ParseDegradation *prometheus.CounterVec // labels: kind={header,period,tables}
	TruncatedPairs   prometheus.Counter
	PublishErrors    prometheus.Counter

	// Forecast metrics.
	ForecastRequests    *prometheus.CounterVec   // labels: kind={weather,marine}, outcome={success,error,unavailable}
	ForecastCache       *prometheus.CounterVec   // labels: result={hit,miss}
	ForecastAPIDuration *prometheus.HistogramVec // labels: kind={weather,marine}
}

func newMetrics() *Metrics {
	return &Metrics{
		PipelineRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_runs_total",
			Help:      "Bulletin pipeline runs by outcome.",
		}, []string{"outcome"}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 while a pipeline run is in progress.",
		}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pipeline_run_duration_seconds",
			Help:      "Duration of a complete locate-download-parse-write run.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		SnapshotRecords: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "snapshot_records",
			Help:      "Number of beach records in the last written snapshot.",
		}),
		ParseDegradation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_degradations_total",
			Help:      "Non-fatal parse anomalies by kind.",
		}, []string{"kind"}),
		TruncatedPairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncated_pairs_total",
			Help:      "Names or statuses dropped because their counts did not match.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Snapshot publications to Kafka that failed.",
		}),
		ForecastRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_requests_total",
			Help:      "Open-Meteo requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		ForecastCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_cache_total",
			Help:      "Forecast cache lookups by result.",
		}, []string{"result"}),
		ForecastAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "forecast_api_duration_seconds",
			Help:      "Open-Meteo request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"kind"}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.PipelineRuns,
		m.PipelineRunning,
		m.RunDuration,
		m.SnapshotRecords,
		m.ParseDegradation,
		m.TruncatedPairs,
		m.PublishErrors,
		m.ForecastRequests,
		m.ForecastCache,
		m.ForecastAPIDuration,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}
