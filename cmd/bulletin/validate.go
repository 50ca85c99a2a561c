package main

import (
	"fmt"
	"io"
	"slices"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/adapter/snapshot"
	"github.com/couchcryptid/beach-bulletin-etl/internal/config"
	"github.com/couchcryptid/beach-bulletin-etl/internal/coordinates"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"github.com/spf13/cobra"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the integrity of a snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				cfg, err := config.Load()
				if err != nil {
					return err
				}
				path = cfg.SnapshotPath
			}

			records, err := snapshot.Read(path)
			if err != nil {
				return err
			}
			phases := validateSnapshot(records, coordinates.Default())
			if !report(cmd.OutOrStdout(), path, len(records), phases) {
				return errors.Newf("snapshot %s failed validation", path)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&path, "snapshot", "", "snapshot CSV to check (default SNAPSHOT_PATH)")
	return cmd
}

type coordinateTable interface {
	Has(name string) bool
}

func validateSnapshot(records []domain.BeachRecord, coords coordinateTable) []*phase {
	return []*phase{
		validateIDs(records),
		validateBulletinFields(records),
		validateDays(records),
		validateZones(records),
		validateCoordinates(records, coords),
	}
}

// ── Phase 1: IDs ──
// IDs run 1..n in file order.

func validateIDs(records []domain.BeachRecord) *phase {
	p := &phase{name: "Phase 1: Sequential IDs"}
	for i, r := range records {
		if r.ID != i+1 {
			p.errorf("row %d: id %d, want %d", i+1, r.ID, i+1)
		}
	}
	return p
}

// ── Phase 2: Bulletin fields ──
// Every row of one snapshot comes from the same bulletin.

func validateBulletinFields(records []domain.BeachRecord) *phase {
	p := &phase{name: "Phase 2: Bulletin Fields"}
	if len(records) == 0 {
		return p
	}
	first := records[0]
	for _, r := range records[1:] {
		if r.BulletinNumber != first.BulletinNumber {
			p.errorf("id %d: Numero_Boletim %q differs from %q", r.ID, r.BulletinNumber, first.BulletinNumber)
		}
		if r.Period != first.Period {
			p.errorf("id %d: Periodo %q differs from %q", r.ID, r.Period, first.Period)
		}
		if r.SampleType != first.SampleType {
			p.errorf("id %d: Tipos_Amostragem %q differs from %q", r.ID, r.SampleType, first.SampleType)
		}
		if !r.ExtractedOn.Equal(first.ExtractedOn) {
			p.errorf("id %d: Data_Extracao %s differs from %s", r.ID,
				r.ExtractedOn.Format(domain.DateLayout), first.ExtractedOn.Format(domain.DateLayout))
		}
	}
	return p
}

// ── Phase 3: Day lists ──
// Dias_Periodo is exactly the expansion of Periodo.

func validateDays(records []domain.BeachRecord) *phase {
	p := &phase{name: "Phase 3: Day List vs Period"}
	for _, r := range records {
		want := domain.ExpandPeriod(r.Period)
		if !slices.Equal(want, r.DaysInPeriod) {
			p.errorf("id %d: Dias_Periodo %q, period %q expands to %q", r.ID, r.DaysInPeriod.String(), r.Period, want.String())
		}
	}
	return p
}

// ── Phase 4: Zones ──
// Zona matches the keyword classification of Nome.

func validateZones(records []domain.BeachRecord) *phase {
	p := &phase{name: "Phase 4: Zone Classification"}
	for _, r := range records {
		if want := domain.ClassifyZone(r.Name); r.Zone != want {
			p.errorf("id %d (%s): Zona %s, want %s", r.ID, r.Name, r.Zone.Label(), want.Label())
		}
	}
	return p
}

// ── Phase 5: Coordinates ──
// Every beach can be geolocated for forecasts.

func validateCoordinates(records []domain.BeachRecord, coords coordinateTable) *phase {
	p := &phase{name: "Phase 5: Coordinates"}
	for _, r := range records {
		if !coords.Has(r.Name) {
			p.errorf("id %d (%s): no coordinates for code %q", r.ID, r.Name, coordinates.BeachCode(r.Name))
		}
	}
	return p
}

// report prints the phase table and details. It returns true when every phase passed.
func report(w io.Writer, path string, n int, phases []*phase) bool {
	fmt.Fprintf(w, "=== Snapshot Integrity Validation: %s ===\n\n", path)

	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.name, status)
	}
	fmt.Fprintf(w, "\nRecords: %d\n", n)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
	} else {
		fmt.Fprintln(w, "\nValidation FAILED.")
	}
	return allPassed
}
