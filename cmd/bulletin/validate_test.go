package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCoordinates map[string]bool

func (f fakeCoordinates) Has(name string) bool { return f[name] }

func validRecords() []domain.BeachRecord {
	meta := domain.BulletinMetadata{
		Number:      "37/2025",
		Period:      "08/09/2025 a 09/09/2025",
		SampleType:  "Coleta simples",
		ExtractedOn: time.Date(2025, 9, 12, 0, 0, 0, 0, time.UTC),
	}
	return domain.Assemble(meta, []domain.BeachRow{
		{Name: "05L - Praia do Futuro", StatusCode: "P"},
		{Name: "01C - Iracema", StatusCode: "I"},
	})
}

func allKnown() fakeCoordinates {
	return fakeCoordinates{"05L - Praia do Futuro": true, "01C - Iracema": true}
}

func TestValidateSnapshot_Passes(t *testing.T) {
	phases := validateSnapshot(validRecords(), allKnown())
	require.Len(t, phases, 5)
	for _, p := range phases {
		assert.True(t, p.passed(), "%s: %v", p.name, p.errors)
	}

	var out bytes.Buffer
	assert.True(t, report(&out, "snap.csv", 2, phases))
	assert.Contains(t, out.String(), "All validations passed.")
}

func TestValidateSnapshot_EmptySnapshotPasses(t *testing.T) {
	for _, p := range validateSnapshot(nil, allKnown()) {
		assert.True(t, p.passed(), p.name)
	}
}

func TestValidateSnapshot_Failures(t *testing.T) {
	records := validRecords()
	records[1].ID = 7
	records[1].BulletinNumber = "36/2025"
	records[1].DaysInPeriod = domain.DayList{"2025-09-08"}
	records[1].Zone = domain.ZoneWest

	phases := validateSnapshot(records, fakeCoordinates{"05L - Praia do Futuro": true})
	for _, p := range phases {
		assert.False(t, p.passed(), p.name)
	}
	assert.Contains(t, phases[0].errors[0], "id 7, want 2")
	assert.Contains(t, phases[4].errors[0], `"01C"`)

	var out bytes.Buffer
	assert.False(t, report(&out, "snap.csv", len(records), phases))
	assert.True(t, strings.HasSuffix(out.String(), "Validation FAILED.\n"))
	assert.Contains(t, out.String(), "--- Phase 3: Day List vs Period ---")
}
