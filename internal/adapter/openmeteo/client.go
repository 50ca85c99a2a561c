// Package openmeteo fetches hourly weather and marine forecasts from the
// Open-Meteo APIs.
package openmeteo

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/config"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/couchcryptid/beach-bulletin-etl/internal/observability"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

const (
	weatherVariables = "temperature_2m,apparent_temperature,windspeed_10m,winddirection_10m,precipitation,cloudcover"
	marineVariables  = "wave_height,wave_direction,wave_period"
)

// Client implements domain.ForecastProvider using the Open-Meteo forecast
// and marine APIs.
type Client struct {
	httpClient *http.Client
	weatherURL string
	marineURL  string
	timezone   string
	limiter    *rate.Limiter
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates an Open-Meteo client from the forecast settings.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.ForecastTimeout},
		weatherURL: cfg.ForecastWeatherURL,
		marineURL:  cfg.ForecastMarineURL,
		timezone:   cfg.ForecastTimezone,
		limiter:    rate.NewLimiter(rate.Limit(cfg.ForecastRateLimit), max(1, int(cfg.ForecastRateLimit))),
		metrics:    metrics,
		logger:     logger,
	}
}

// Forecast looks up weather and marine conditions concurrently. Both lookups
// finish before a result is produced; if either fails the whole forecast
// fails. An API answering with a non-200 status contributes no values.
func (c *Client) Forecast(ctx context.Context, q domain.ForecastQuery) (domain.Forecast, error) {
	if q.Hour == "" {
		q.Hour = domain.DefaultForecastHour
	}

	var weather, marine hourlyResponse
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.fetch(gctx, "weather", c.requestURL(c.weatherURL, weatherVariables, q), &weather)
	})
	g.Go(func() error {
		return c.fetch(gctx, "marine", c.requestURL(c.marineURL, marineVariables, q), &marine)
	})
	if err := g.Wait(); err != nil {
		return domain.Forecast{}, err
	}

	f := domain.Forecast{Date: q.Date, Hour: q.Hour}
	target := q.Date + "T" + q.Hour

	if i := slices.Index(weather.Hourly.Time, target); i >= 0 {
		h := weather.Hourly
		f.TemperatureC = at(h.Temperature2m, i)
		f.ApparentTemperatureC = at(h.ApparentTemperature, i)
		f.WindSpeedKmh = at(h.Windspeed10m, i)
		f.WindDirectionDeg = at(h.Winddirection10m, i)
		f.PrecipitationMm = at(h.Precipitation, i)
		f.CloudCoverPct = at(h.Cloudcover, i)
	}
	if i := slices.Index(marine.Hourly.Time, target); i >= 0 {
		h := marine.Hourly
		f.WaveHeightM = at(h.WaveHeight, i)
		f.WaveDirectionDeg = at(h.WaveDirection, i)
		f.WavePeriodS = at(h.WavePeriod, i)
	}

	if !f.Available() {
		return domain.UnavailableForecast(q.Date, q.Hour), nil
	}
	return f, nil
}

func (c *Client) requestURL(base, variables string, q domain.ForecastQuery) string {
	params := url.Values{
		"latitude":   {strconv.FormatFloat(q.Lat, 'f', -1, 64)},
		"longitude":  {strconv.FormatFloat(q.Lon, 'f', -1, 64)},
		"hourly":     {variables},
		"start_date": {q.Date},
		"end_date":   {q.Date},
		"timezone":   {c.timezone},
	}
	return base + "?" + params.Encode()
}

// fetch decodes one API response into out. Non-200 answers leave out empty
// and are not errors.
func (c *Client) fetch(ctx context.Context, kind, fullURL string, out *hourlyResponse) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Wrapf(err, "%s forecast rate limit", kind)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.ForecastAPIDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ForecastRequests.WithLabelValues(kind, "error").Inc()
		return errors.Wrapf(err, "%s forecast request", kind)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.metrics.ForecastRequests.WithLabelValues(kind, "unavailable").Inc()
		c.logger.Warn("open-meteo API error", "kind", kind, "status", resp.StatusCode, "body", string(body))
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.metrics.ForecastRequests.WithLabelValues(kind, "error").Inc()
		return errors.Wrapf(err, "decode %s forecast", kind)
	}
	c.metrics.ForecastRequests.WithLabelValues(kind, "success").Inc()
	return nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) || values[i] == nil {
		return nil
	}
	v := *values[i]
	return &v
}

// Open-Meteo API response types. Both APIs share the hourly layout; each
// fills only the variables it was asked for.

type hourlyResponse struct {
	Hourly hourly `json:"hourly"`
}

type hourly struct {
	Time []string `json:"time"`

	Temperature2m       []*float64 `json:"temperature_2m"`
	ApparentTemperature []*float64 `json:"apparent_temperature"`
	Windspeed10m        []*float64 `json:"windspeed_10m"`
	Winddirection10m    []*float64 `json:"winddirection_10m"`
	Precipitation       []*float64 `json:"precipitation"`
	Cloudcover          []*float64 `json:"cloudcover"`

	WaveHeight    []*float64 `json:"wave_height"`
	WaveDirection []*float64 `json:"wave_direction"`
	WavePeriod    []*float64 `json:"wave_period"`
}
