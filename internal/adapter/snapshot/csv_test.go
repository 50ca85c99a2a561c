package snapshot

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRecords() []domain.BeachRecord {
	extracted := time.Date(2025, 8, 18, 0, 0, 0, 0, time.UTC)
	days := domain.DayList{"2025-08-11", "2025-08-12"}
	return []domain.BeachRecord{
		{ID: 1, Name: "Praia do Futuro I", Status: domain.StatusProper, Zone: domain.ZoneEast, Period: "11/08/2025 a 12/08/2025", DaysInPeriod: days, BulletinNumber: "33/2025", SampleType: "Coleta simples", ExtractedOn: extracted},
		{ID: 2, Name: "Barra do Ceará, trecho 2", Status: domain.StatusImproper, Zone: domain.ZoneWest, Period: "11/08/2025 a 12/08/2025", DaysInPeriod: days, BulletinNumber: "33/2025", SampleType: "Coleta simples", ExtractedOn: extracted},
		{ID: 3, Name: "Unknown Spot", Status: domain.StatusProper, Zone: domain.ZoneUnknown, DaysInPeriod: domain.DayList{}, ExtractedOn: extracted},
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, testRecords()[:2]))

	want := "id,Nome,Status,Zona,Periodo,Dias_Periodo,Numero_Boletim,Tipos_Amostragem,Data_Extracao\n" +
		"1,Praia do Futuro I,Própria para banho,Leste,11/08/2025 a 12/08/2025,\"2025-08-11, 2025-08-12\",33/2025,Coleta simples,2025-08-18\n" +
		"2,\"Barra do Ceará, trecho 2\",Imprópria para banho,Oeste,11/08/2025 a 12/08/2025,\"2025-08-11, 2025-08-12\",33/2025,Coleta simples,2025-08-18\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "boletim_fortaleza.csv")

	require.NoError(t, Write(path, testRecords()))

	got, err := Read(path)
	require.NoError(t, err)
	if diff := cmp.Diff(testRecords(), got); diff != "" {
		t.Errorf("Read() mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWrite_ReplacesPrevious(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boletim_fortaleza.csv")
	w := NewFileWriter(path)

	require.NoError(t, w.WriteSnapshot(testRecords()))
	require.NoError(t, w.WriteSnapshot(testRecords()[:1]))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestWrite_EmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boletim_fortaleza.csv")
	require.NoError(t, Write(path, nil))

	got, err := Read(path)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		csv  string
	}{
		{"empty", ""},
		{"wrong header", "id,Name,Status,Zona,Periodo,Dias_Periodo,Numero_Boletim,Tipos_Amostragem,Data_Extracao\n"},
		{"short row", strings.Join(Columns, ",") + "\n1,Iracema\n"},
		{"bad id", strings.Join(Columns, ",") + "\nx,Iracema,Própria para banho,Centro,,,,,2025-08-18\n"},
		{"bad status", strings.Join(Columns, ",") + "\n1,Iracema,Boa,Centro,,,,,2025-08-18\n"},
		{"bad date", strings.Join(Columns, ",") + "\n1,Iracema,Própria para banho,Centro,,,,,18/08/2025\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.csv))
			assert.Error(t, err)
		})
	}
}

func TestRead_Missing(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDecode_ZoneLabels(t *testing.T) {
	header := strings.Join(Columns, ",") + "\n"

	got, err := Decode(strings.NewReader(header + "1,Iracema,Própria para banho,Desconhecida,,,,,2025-08-18\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.ZoneUnknown, got[0].Zone)

	_, err = Decode(strings.NewReader(header + "1,Iracema,Própria para banho,Norte,,,,,2025-08-18\n"))
	require.ErrorIs(t, err, domain.ErrUnknownZone)
	assert.Contains(t, err.Error(), "line 2")
}
