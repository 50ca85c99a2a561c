package config

import (
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Bulletin acquisition.
	ListingURL   string
	LinkMarker   string
	DocumentPath string
	SnapshotPath string
	FetchTimeout time.Duration
	SSRFGuard    bool
	RunTimeout   time.Duration

	// RefreshInterval reruns the pipeline periodically while serving. Zero disables it.
	RefreshInterval time.Duration

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Open-Meteo forecast configuration.
	ForecastWeatherURL string
	ForecastMarineURL  string
	ForecastTimezone   string
	ForecastTimeout    time.Duration
	ForecastCacheSize  int
	ForecastRateLimit  float64

	// Snapshot publication, enabled when brokers are set.
	KafkaBrokers       []string
	KafkaSnapshotTopic string
}

// KafkaEnabled reports whether snapshots are published to Kafka.
func (c *Config) KafkaEnabled() bool {
	return len(c.KafkaBrokers) > 0
}

// Load reads configuration from environment variables, applying defaults
// where unset. A .env file in the working directory is loaded first if present;
// variables already set in the environment win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fetchTimeout, err := parseDuration("FETCH_TIMEOUT", "30s", false)
	if err != nil {
		return nil, err
	}
	runTimeout, err := parseDuration("RUN_TIMEOUT", "2m", false)
	if err != nil {
		return nil, err
	}
	refreshInterval, err := parseDuration("REFRESH_INTERVAL", "0s", true)
	if err != nil {
		return nil, err
	}
	forecastTimeout, err := parseDuration("FORECAST_TIMEOUT", "5s", false)
	if err != nil {
		return nil, err
	}

	rateLimit, err := strconv.ParseFloat(sharedcfg.EnvOrDefault("FORECAST_RATE_LIMIT", "5"), 64)
	if err != nil || rateLimit <= 0 {
		return nil, errors.New("invalid FORECAST_RATE_LIMIT")
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}

	cfg := &Config{
		ListingURL:      sharedcfg.EnvOrDefault("LISTING_URL", "https://www.semace.ce.gov.br/boletim-de-balneabilidade/"),
		LinkMarker:      sharedcfg.EnvOrDefault("BULLETIN_LINK_MARKER", "Fortaleza"),
		DocumentPath:    sharedcfg.EnvOrDefault("DOCUMENT_PATH", "data/boletim_fortaleza.pdf"),
		SnapshotPath:    sharedcfg.EnvOrDefault("SNAPSHOT_PATH", "data/boletim_fortaleza.csv"),
		FetchTimeout:    fetchTimeout,
		SSRFGuard:       sharedcfg.EnvOrDefault("FETCH_SSRF_GUARD", "true") == "true",
		RunTimeout:      runTimeout,
		RefreshInterval: refreshInterval,

		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ForecastWeatherURL: sharedcfg.EnvOrDefault("FORECAST_WEATHER_URL", "https://api.open-meteo.com/v1/forecast"),
		ForecastMarineURL:  sharedcfg.EnvOrDefault("FORECAST_MARINE_URL", "https://marine-api.open-meteo.com/v1/marine"),
		ForecastTimezone:   sharedcfg.EnvOrDefault("FORECAST_TIMEZONE", "America/Fortaleza"),
		ForecastTimeout:    forecastTimeout,
		ForecastCacheSize:  parseCacheSize(),
		ForecastRateLimit:  rateLimit,

		KafkaBrokers:       brokers,
		KafkaSnapshotTopic: sharedcfg.EnvOrDefault("KAFKA_SNAPSHOT_TOPIC", "beach-bulletin-snapshots"),
	}

	if _, err := url.ParseRequestURI(cfg.ListingURL); err != nil {
		return nil, errors.New("LISTING_URL must be an absolute URL")
	}
	if cfg.LinkMarker == "" {
		return nil, errors.New("BULLETIN_LINK_MARKER is required")
	}
	if cfg.DocumentPath == "" {
		return nil, errors.New("DOCUMENT_PATH is required")
	}
	if cfg.SnapshotPath == "" {
		return nil, errors.New("SNAPSHOT_PATH is required")
	}
	if cfg.KafkaEnabled() && cfg.KafkaSnapshotTopic == "" {
		return nil, errors.New("KAFKA_SNAPSHOT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func parseDuration(key, def string, allowZero bool) (time.Duration, error) {
	d, err := time.ParseDuration(sharedcfg.EnvOrDefault(key, def))
	if err != nil || d < 0 || (d == 0 && !allowZero) {
		return 0, errors.New("invalid " + key)
	}
	return d, nil
}

func parseCacheSize() int {
	if s := os.Getenv("FORECAST_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 500
}
