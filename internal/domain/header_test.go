package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFirstPage = `GOVERNO DO ESTADO DO CEARÁ
SUPERINTENDÊNCIA ESTADUAL DO MEIO AMBIENTE
Boletim nº   33/2025
Período: 11/08/2025 a 17/08/2025
Tipos de Amostragem: Coleta simples em
pontos fixos. Resultados válidos para o período.`

func freezeClock(t *testing.T, at time.Time) {
	t.Helper()
	SetClock(clockwork.NewFakeClockAt(at))
	t.Cleanup(func() { SetClock(nil) })
}

func TestParseHeader(t *testing.T) {
	freezeClock(t, time.Date(2025, 8, 18, 15, 4, 0, 0, time.UTC))

	meta, err := ParseHeader(testFirstPage)
	require.NoError(t, err)

	assert.Equal(t, "33/2025", meta.Number)
	assert.Equal(t, "11/08/2025 a 17/08/2025", meta.Period)
	assert.Equal(t, "Coleta simples em pontos fixos", meta.SampleType)
	assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), meta.ExtractedOn)
}

func TestParseHeader_SampleTypeWithoutTerminator(t *testing.T) {
	meta, err := ParseHeader("Boletim nº 1/2025 Período: 01/01/2025 a 02/01/2025 Tipos de Amostragem: Coleta composta")
	require.NoError(t, err)
	assert.Equal(t, "Coleta composta", meta.SampleType)
}

func TestParseHeader_Degraded(t *testing.T) {
	freezeClock(t, time.Date(2025, 8, 18, 9, 0, 0, 0, time.UTC))

	tests := []struct {
		name string
		text string
	}{
		{"empty page", ""},
		{"missing period label", "Boletim nº 33/2025 Tipos de Amostragem: Coleta simples."},
		{"missing sample label", "Boletim nº 33/2025 Período: 11/08/2025 a 17/08/2025"},
		{"labels out of order", "Período: 11/08/2025 a 17/08/2025 Boletim nº 33/2025 Tipos de Amostragem: Coleta."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := ParseHeader(tt.text)
			require.ErrorIs(t, err, ErrHeaderDegraded)
			assert.Empty(t, meta.Number)
			assert.Empty(t, meta.Period)
			assert.Empty(t, meta.SampleType)
			assert.Equal(t, time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC), meta.ExtractedOn)
		})
	}
}

func TestMarkerScanner(t *testing.T) {
	s := newMarkerScanner([]string{"A:", "B:", "C:"})

	values, ok := s.scan("x A: one B:two C:  three  ")
	require.True(t, ok)
	assert.Equal(t, []string{"one", "two", "three"}, values)

	_, ok = s.scan("A: one C: three B: two")
	assert.False(t, ok)
}

func TestParseHeader_IgnoresCase(t *testing.T) {
	meta, err := ParseHeader("BOLETIM Nº 33/2025 PERÍODO: 11/08/2025 a 17/08/2025 TIPOS DE AMOSTRAGEM: Coleta simples. Fim.")
	require.NoError(t, err)
	assert.Equal(t, "33/2025", meta.Number)
	assert.Equal(t, "11/08/2025 a 17/08/2025", meta.Period)
	assert.Equal(t, "Coleta simples", meta.SampleType)
}

func TestIndexFold(t *testing.T) {
	tests := []struct {
		text, marker string
		start, end   int
	}{
		{"abc Período: x", "período:", 4, 13},
		{"abc PERÍODO: x", "Período:", 4, 13},
		{"xx\u212Aelvin", "kelvin", 2, 10},
		{"Boletim", "Boletim nº", -1, -1},
		{"", "A:", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			start, end := indexFold(tt.text, tt.marker)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}
