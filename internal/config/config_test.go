package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const defaultListingURL = "https://www.semace.ce.gov.br/boletim-de-balneabilidade/"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, defaultListingURL, cfg.ListingURL)
	assert.Equal(t, "Fortaleza", cfg.LinkMarker)
	assert.Equal(t, "data/boletim_fortaleza.pdf", cfg.DocumentPath)
	assert.Equal(t, "data/boletim_fortaleza.csv", cfg.SnapshotPath)
	assert.Equal(t, 30*time.Second, cfg.FetchTimeout)
	assert.True(t, cfg.SSRFGuard)
	assert.Equal(t, 2*time.Minute, cfg.RunTimeout)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "https://api.open-meteo.com/v1/forecast", cfg.ForecastWeatherURL)
	assert.Equal(t, "https://marine-api.open-meteo.com/v1/marine", cfg.ForecastMarineURL)
	assert.Equal(t, "America/Fortaleza", cfg.ForecastTimezone)
	assert.Equal(t, 5*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 500, cfg.ForecastCacheSize)
	assert.Equal(t, 5.0, cfg.ForecastRateLimit)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.KafkaEnabled())
	assert.Equal(t, "beach-bulletin-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_CustomEnv(t *testing.T) {
	t.Setenv("LISTING_URL", "http://mirror.local/boletins/")
	t.Setenv("BULLETIN_LINK_MARKER", "Caucaia")
	t.Setenv("DOCUMENT_PATH", "/tmp/b.pdf")
	t.Setenv("SNAPSHOT_PATH", "/tmp/b.csv")
	t.Setenv("FETCH_TIMEOUT", "10s")
	t.Setenv("FETCH_SSRF_GUARD", "false")
	t.Setenv("RUN_TIMEOUT", "5m")
	t.Setenv("REFRESH_INTERVAL", "6h")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SHUTDOWN_TIMEOUT", "30s")
	t.Setenv("FORECAST_TIMEOUT", "2s")
	t.Setenv("FORECAST_CACHE_SIZE", "50")
	t.Setenv("FORECAST_RATE_LIMIT", "0.5")
	t.Setenv("KAFKA_BROKERS", "broker1:9092,broker2:9092")
	t.Setenv("KAFKA_SNAPSHOT_TOPIC", "custom-snapshots")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "http://mirror.local/boletins/", cfg.ListingURL)
	assert.Equal(t, "Caucaia", cfg.LinkMarker)
	assert.Equal(t, "/tmp/b.pdf", cfg.DocumentPath)
	assert.Equal(t, "/tmp/b.csv", cfg.SnapshotPath)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout)
	assert.False(t, cfg.SSRFGuard)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.Equal(t, 6*time.Hour, cfg.RefreshInterval)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 2*time.Second, cfg.ForecastTimeout)
	assert.Equal(t, 50, cfg.ForecastCacheSize)
	assert.Equal(t, 0.5, cfg.ForecastRateLimit)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.KafkaEnabled())
	assert.Equal(t, "custom-snapshots", cfg.KafkaSnapshotTopic)
}

func TestLoad_InvalidShutdownTimeout(t *testing.T) {
	t.Setenv("SHUTDOWN_TIMEOUT", "not-a-duration")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHUTDOWN_TIMEOUT")
}

func TestLoad_InvalidDurations(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"FETCH_TIMEOUT", "bad"},
		{"FETCH_TIMEOUT", "0s"},
		{"RUN_TIMEOUT", "-1m"},
		{"REFRESH_INTERVAL", "weekly"},
		{"FORECAST_TIMEOUT", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("FORECAST_RATE_LIMIT", "0")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FORECAST_RATE_LIMIT")
}

func TestLoad_InvalidListingURL(t *testing.T) {
	t.Setenv("LISTING_URL", "semace.ce.gov.br")
	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LISTING_URL")
}

func TestLoad_InvalidCacheSizeFallsBack(t *testing.T) {
	t.Setenv("FORECAST_CACHE_SIZE", "-3")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.ForecastCacheSize)
}
