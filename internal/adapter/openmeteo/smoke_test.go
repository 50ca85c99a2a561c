//go:build openmeteo

package openmeteo

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// These tests hit the real Open-Meteo APIs.
// Run with: go test -tags=openmeteo ./internal/adapter/openmeteo/ -v -count=1

func smokeClient() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		weatherURL: "https://api.open-meteo.com/v1/forecast",
		marineURL:  "https://marine-api.open-meteo.com/v1/marine",
		timezone:   "America/Fortaleza",
		limiter:    rate.NewLimiter(1, 1),
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSmoke_ForecastTomorrow(t *testing.T) {
	c := smokeClient()
	tomorrow := time.Now().AddDate(0, 0, 1).Format(domain.DateLayout)

	f, err := c.Forecast(context.Background(), domain.ForecastQuery{
		Coordinates: domain.Coordinates{Lat: -3.7227, Lon: -38.4793},
		Date:        tomorrow,
		Hour:        "15:00",
	})
	require.NoError(t, err)

	assert.True(t, f.Available(), "expected data for %s", tomorrow)
	require.NotNil(t, f.TemperatureC)
	assert.InDelta(t, 28, *f.TemperatureC, 12, "Fortaleza afternoon temperature")
	assert.NotNil(t, f.WaveHeightM)
}

func TestSmoke_ForecastFarFuture(t *testing.T) {
	c := smokeClient()
	far := time.Now().AddDate(1, 0, 0).Format(domain.DateLayout)

	f, err := c.Forecast(context.Background(), domain.ForecastQuery{
		Coordinates: domain.Coordinates{Lat: -3.7227, Lon: -38.4793},
		Date:        far,
	})
	require.NoError(t, err)
	assert.False(t, f.Available())
	assert.NotEmpty(t, f.Message)
}
