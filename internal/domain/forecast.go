package domain

import (
	"context"
	"fmt"
)

// DefaultForecastHour is used when a forecast query names no hour.
const DefaultForecastHour = "12:00"

// ForecastQuery asks for conditions at one point, date (YYYY-MM-DD) and hour (HH:MM).
type ForecastQuery struct {
	Coordinates
	Date string
	Hour string
}

// Forecast holds weather and marine conditions for one hour. Fields the
// provider could not supply are nil and omitted from JSON. When nothing is
// available, Message explains it.
type Forecast struct {
	Message string `json:"mensagem,omitempty"`
	Date    string `json:"data"`
	Hour    string `json:"hora_consulta"`

	TemperatureC         *float64 `json:"temperatura_c,omitempty"`
	ApparentTemperatureC *float64 `json:"sensacao_termica_c,omitempty"`
	WindSpeedKmh         *float64 `json:"velocidade_vento_kmh,omitempty"`
	WindDirectionDeg     *float64 `json:"direcao_vento_graus,omitempty"`
	PrecipitationMm      *float64 `json:"chuva_mm,omitempty"`
	CloudCoverPct        *float64 `json:"cobertura_nuvens_pct,omitempty"`

	WaveHeightM      *float64 `json:"altura_ondas_m,omitempty"`
	WaveDirectionDeg *float64 `json:"direcao_ondas_graus,omitempty"`
	WavePeriodS      *float64 `json:"periodo_ondas_s,omitempty"`
}

// Available reports whether at least one value is present.
func (f Forecast) Available() bool {
	for _, v := range []*float64{
		f.TemperatureC, f.ApparentTemperatureC, f.WindSpeedKmh, f.WindDirectionDeg,
		f.PrecipitationMm, f.CloudCoverPct, f.WaveHeightM, f.WaveDirectionDeg, f.WavePeriodS,
	} {
		if v != nil {
			return true
		}
	}
	return false
}

// UnavailableForecast is the explicit "no data" answer for a date and hour.
func UnavailableForecast(date, hour string) Forecast {
	return Forecast{
		Message: fmt.Sprintf("Previsão não disponível para %s às %s", date, hour),
		Date:    date,
		Hour:    hour,
	}
}

// ForecastProvider returns conditions for a query. Missing data is reported
// through an unavailable Forecast, not an error; errors mean the lookup
// itself failed.
type ForecastProvider interface {
	Forecast(ctx context.Context, q ForecastQuery) (Forecast, error)
}
