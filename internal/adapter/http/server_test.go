package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	httpadapter "github.com/couchcryptid/beach-bulletin-etl/internal/adapter/http"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, readyErr error) *httpadapter.Server {
	t.Helper()
	api := httpadapter.NewAPI(newBeachStore(), &mockForecasts{}, mockCoordinates{}, discardLogger())
	return httpadapter.NewServer(":0", api, &mockReadiness{err: readyErr}, discardLogger())
}

func serve(t *testing.T, srv http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(t, newTestServer(t, nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(t, newTestServer(t, nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(t, newTestServer(t, errors.New("snapshot not loaded")), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(t, newTestServer(t, nil), "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestUnknownRouteReturnsJSON404(t *testing.T) {
	rec := serve(t, newTestServer(t, nil), "/boletins")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body["code"])
}

type panickingForecasts struct{}

func (panickingForecasts) Forecast(context.Context, domain.ForecastQuery) (domain.Forecast, error) {
	panic("boom")
}

func TestPanicRecoveredAsInternalError(t *testing.T) {
	api := httpadapter.NewAPI(newBeachStore(), panickingForecasts{}, mockCoordinates{}, discardLogger())
	srv := httpadapter.NewServer(":0", api, &mockReadiness{}, discardLogger())

	rec := serve(t, srv, "/praias/1/data?data=2025-09-09")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["code"])
	assert.NotContains(t, rec.Body.String(), "goroutine")
}
