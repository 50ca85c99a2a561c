package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Error codes returned in the {code, message} body.
const (
	codeInvalidID              = "INVALID_ID"
	codeMissingDate            = "MISSING_DATE"
	codeInvalidDate            = "INVALID_DATE"
	codeInvalidHour            = "INVALID_HOUR"
	codeInvalidStatus          = "INVALID_STATUS"
	codeBeachNotFound          = "BEACH_NOT_FOUND"
	codeCoordinatesUnavailable = "COORDINATES_UNAVAILABLE"
	codeNotFound               = "NOT_FOUND"
	codeRequestCanceled        = "REQUEST_CANCELED"
	codeMethodNotAllowed       = "METHOD_NOT_ALLOWED"
	codeInternal               = "INTERNAL_ERROR"
)

const (
	forecastHint          = "Para obter previsão, informe ?data=YYYY-MM-DD."
	coordinatesMissingMsg = "Coordenadas não disponíveis"

	// forecastConcurrency bounds the per-request fan-out over beaches.
	forecastConcurrency = 4
)

// BeachReader serves the loaded snapshot.
type BeachReader interface {
	Records() []domain.BeachRecord
	Get(id int) (domain.BeachRecord, bool)
	ByStatus(status domain.Status) []domain.BeachRecord
	ByZone(label string) []domain.BeachRecord
}

// CoordinateLocator resolves a beach name to its sampling point.
type CoordinateLocator interface {
	Lookup(name string) (domain.Coordinates, error)
}

// API serves beach bulletins and forecasts.
type API struct {
	beaches   BeachReader
	forecasts domain.ForecastProvider
	coords    CoordinateLocator
	logger    *slog.Logger
}

// NewAPI creates the beach API handlers.
func NewAPI(beaches BeachReader, forecasts domain.ForecastProvider, coords CoordinateLocator, logger *slog.Logger) *API {
	return &API{beaches: beaches, forecasts: forecasts, coords: coords, logger: logger}
}

// Routes registers the API on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/", a.home)
	docsRoutes(r)
	r.Route("/praias", func(r chi.Router) {
		r.Get("/", a.listBeaches)
		r.Get("/status/{status}", a.byStatus)
		r.Get("/zona/{zona}", a.byZone)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.getBeach)
			r.Get("/data", a.beachOnDate)
		})
	})
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type beachSummary struct {
	ID   int         `json:"id"`
	Name string      `json:"nome"`
	Zone domain.Zone `json:"zona"`
}

type beachOnDate struct {
	Bulletin any             `json:"boletim"`
	Forecast domain.Forecast `json:"previsao"`
}

type beachEntry struct {
	Beach    domain.BeachRecord `json:"praia"`
	Info     string             `json:"info,omitempty"`
	Forecast *domain.Forecast   `json:"previsao,omitempty"`
}

// dateQuery holds the optional ?data=&hora= parameters.
type dateQuery struct {
	date string
	hour string
}

func (a *API) home(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "API de Balneabilidade e Previsão do Tempo - Fortaleza",
		"info":    "Bem-vindo! Explore os endpoints abaixo ou use a documentação interativa para testar a API.",
		"documentacao_interativa": map[string]string{
			"descricao": "Swagger UI com a documentação completa da API.",
			"url":       docsPath,
		},
		"endpoints_resumo": map[string]any{
			"/praias": map[string]string{
				"descricao": "Lista um resumo de todas as praias (id, nome, zona).",
				"metodo":    http.MethodGet,
			},
			"/praias/{id}": map[string]string{
				"descricao": "Busca informações detalhadas de uma praia pelo seu ID.",
				"metodo":    http.MethodGet,
				"exemplo":   "/praias/5",
			},
			"/praias/{id}/data": map[string]string{
				"descricao":  "Busca o boletim e a previsão do tempo para uma praia em uma data específica.",
				"metodo":     http.MethodGet,
				"parametros": "?data=YYYY-MM-DD (obrigatório) &hora=HH:MM (opcional)",
				"exemplo":    "/praias/5/data?data=2025-09-13&hora=14:00",
			},
			"/praias/status/{status}": map[string]string{
				"descricao":            "Filtra praias pelo status ('propria' ou 'impropria').",
				"metodo":               http.MethodGet,
				"parametros_opcionais": "?data=YYYY-MM-DD&hora=HH:MM",
				"exemplo_com_previsao": "/praias/status/propria?data=2025-09-13&hora=15:00",
			},
			"/praias/zona/{zona}": map[string]string{
				"descricao":            "Filtra praias pela zona ('Leste', 'Centro', 'Oeste').",
				"metodo":               http.MethodGet,
				"parametros_opcionais": "?data=YYYY-MM-DD&hora=HH:MM",
				"exemplo_com_previsao": "/praias/zona/Leste?data=2025-09-13&hora=09:00",
			},
		},
	})
}

func (a *API) listBeaches(w http.ResponseWriter, _ *http.Request) {
	records := a.beaches.Records()
	out := make([]beachSummary, len(records))
	for i, r := range records {
		out[i] = beachSummary{ID: r.ID, Name: r.Name, Zone: r.Zone}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) getBeach(w http.ResponseWriter, r *http.Request) {
	record, ok := a.lookupBeach(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (a *API) beachOnDate(w http.ResponseWriter, r *http.Request) {
	q, ok := parseDateQuery(w, r)
	if !ok {
		return
	}
	if q.date == "" {
		writeError(w, http.StatusBadRequest, codeMissingDate, "É necessário informar a data no formato YYYY-MM-DD")
		return
	}
	record, ok := a.lookupBeach(w, r)
	if !ok {
		return
	}

	coords, err := a.coords.Lookup(record.Name)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeCoordinatesUnavailable, "Coordenadas da praia não disponíveis")
		return
	}

	resp := beachOnDate{Forecast: a.forecast(r.Context(), coords, q)}
	if record.DaysInPeriod.Contains(q.date) {
		resp.Bulletin = record
	} else {
		resp.Bulletin = "Não há boletim da Semace disponível para " + q.date
	}
	writeJSON(w, http.StatusOK, resp)
}

func (a *API) byStatus(w http.ResponseWriter, r *http.Request) {
	q, ok := parseDateQuery(w, r)
	if !ok {
		return
	}
	status, err := statusFromPath(chi.URLParam(r, "status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidStatus, "Status inválido. Use 'propria' ou 'impropria'.")
		return
	}
	a.writeFiltered(w, r, a.beaches.ByStatus(status), q, "Nenhuma praia encontrada com status "+status.Label())
}

func (a *API) byZone(w http.ResponseWriter, r *http.Request) {
	q, ok := parseDateQuery(w, r)
	if !ok {
		return
	}
	label := cases.Title(language.BrazilianPortuguese).String(chi.URLParam(r, "zona"))
	a.writeFiltered(w, r, a.beaches.ByZone(label), q, "Nenhuma praia encontrada na zona "+label)
}

// writeFiltered answers the status and zone filters. Without a date every
// match is listed with a hint and an empty match is a 404; with a date only
// beaches sampled that day are listed, each with its forecast.
func (a *API) writeFiltered(w http.ResponseWriter, r *http.Request, records []domain.BeachRecord, q dateQuery, notFound string) {
	if q.date == "" {
		if len(records) == 0 {
			writeError(w, http.StatusNotFound, codeNotFound, notFound)
			return
		}
		out := make([]beachEntry, len(records))
		for i, rec := range records {
			out[i] = beachEntry{Beach: rec, Info: forecastHint}
		}
		writeJSON(w, http.StatusOK, out)
		return
	}

	var sampled []domain.BeachRecord
	for _, rec := range records {
		if rec.DaysInPeriod.Contains(q.date) {
			sampled = append(sampled, rec)
		}
	}

	out := make([]beachEntry, len(sampled))
	g, ctx := errgroup.WithContext(r.Context())
	g.SetLimit(forecastConcurrency)
	for i, rec := range sampled {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f := domain.Forecast{Message: coordinatesMissingMsg, Date: q.date, Hour: q.hour}
			if coords, err := a.coords.Lookup(rec.Name); err == nil {
				f = a.forecast(ctx, coords, q)
			}
			out[i] = beachEntry{Beach: rec, Forecast: &f}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		a.logger.Warn("forecast lookups abandoned", "error", err, "date", q.date)
		writeError(w, http.StatusServiceUnavailable, codeRequestCanceled, "Requisição cancelada antes de concluir as previsões")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// forecast never fails: a provider error is logged and answered with the
// unavailable message.
func (a *API) forecast(ctx context.Context, coords domain.Coordinates, q dateQuery) domain.Forecast {
	f, err := a.forecasts.Forecast(ctx, domain.ForecastQuery{Coordinates: coords, Date: q.date, Hour: q.hour})
	if err != nil {
		a.logger.Warn("forecast lookup failed", "error", err, "date", q.date, "hour", q.hour)
		return domain.UnavailableForecast(q.date, q.hour)
	}
	return f
}

func (a *API) lookupBeach(w http.ResponseWriter, r *http.Request) (domain.BeachRecord, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidID, "ID inválido: "+raw)
		return domain.BeachRecord{}, false
	}
	record, ok := a.beaches.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, codeBeachNotFound, "Nenhuma praia encontrada com id "+raw)
		return domain.BeachRecord{}, false
	}
	return record, true
}

// parseDateQuery validates ?data= (YYYY-MM-DD, optional here) and ?hora=
// (HH:MM, default 12:00).
func parseDateQuery(w http.ResponseWriter, r *http.Request) (dateQuery, bool) {
	q := dateQuery{
		date: strings.TrimSpace(r.URL.Query().Get("data")),
		hour: strings.TrimSpace(r.URL.Query().Get("hora")),
	}
	if q.hour == "" {
		q.hour = domain.DefaultForecastHour
	}
	if q.date != "" {
		if _, err := time.Parse(domain.DateLayout, q.date); err != nil {
			writeError(w, http.StatusBadRequest, codeInvalidDate, "Data inválida, use o formato YYYY-MM-DD")
			return q, false
		}
	}
	if _, err := time.Parse("15:04", q.hour); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidHour, "Hora inválida, use o formato HH:MM")
		return q, false
	}
	return q, true
}

func statusFromPath(s string) (domain.Status, error) {
	switch strings.ToLower(s) {
	case "propria":
		return domain.StatusProper, nil
	case "impropria":
		return domain.StatusImproper, nil
	}
	return 0, errors.Wrapf(domain.ErrUnknownStatus, "%q", s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client went away
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorBody{Code: code, Message: message})
}
