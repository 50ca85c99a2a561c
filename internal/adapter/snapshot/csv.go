// Package snapshot persists the assembled bulletin as a flat CSV file and
// serves the loaded copy to readers.
package snapshot

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
)

// Columns is the snapshot header row.
var Columns = []string{
	"id", "Nome", "Status", "Zona", "Periodo", "Dias_Periodo",
	"Numero_Boletim", "Tipos_Amostragem", "Data_Extracao",
}

// FileWriter writes snapshots to a fixed path.
// It implements pipeline.SnapshotWriter.
type FileWriter struct {
	path string
}

// NewFileWriter creates a FileWriter for path.
func NewFileWriter(path string) *FileWriter {
	return &FileWriter{path: path}
}

// WriteSnapshot atomically replaces the snapshot file.
func (w *FileWriter) WriteSnapshot(records []domain.BeachRecord) error {
	return Write(w.path, records)
}

// Write replaces the snapshot at path with records. The file is written to
// a temporary sibling, synced, and renamed over path, so readers see either
// the previous snapshot or the new one.
func Write(path string, records []domain.BeachRecord) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "create %s", dir)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp snapshot")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := Encode(tmp, records); err != nil {
		tmp.Close() //nolint:errcheck // encode error takes precedence
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close() //nolint:errcheck // sync error takes precedence
		return errors.Wrap(err, "sync snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close snapshot")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}

// Encode writes records as CSV with a header row.
func Encode(w io.Writer, records []domain.BeachRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return errors.Wrap(err, "write header")
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.ID),
			r.Name,
			r.Status.Label(),
			r.Zone.Label(),
			r.Period,
			r.DaysInPeriod.String(),
			r.BulletinNumber,
			r.SampleType,
			r.ExtractedOn.Format(domain.DateLayout),
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrapf(err, "write record %d", r.ID)
		}
	}
	cw.Flush()
	return errors.Wrap(cw.Error(), "flush snapshot")
}

// Read loads the snapshot at path.
func Read(path string) ([]domain.BeachRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot %s", path)
	}
	defer f.Close()

	records, err := Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "read snapshot %s", path)
	}
	return records, nil
}

// Decode parses CSV produced by Encode.
func Decode(r io.Reader) ([]domain.BeachRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Columns)

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "read header")
	}
	for i, col := range Columns {
		if header[i] != col {
			return nil, errors.Newf("column %d: expected %q, got %q", i, col, header[i])
		}
	}

	var records []domain.BeachRecord
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "read row")
		}
		rec, err := decodeRow(row)
		if err != nil {
			line, _ := cr.FieldPos(0)
			return nil, errors.Wrapf(err, "line %d", line)
		}
		records = append(records, rec)
	}
}

func decodeRow(row []string) (domain.BeachRecord, error) {
	id, err := strconv.Atoi(row[0])
	if err != nil {
		return domain.BeachRecord{}, errors.Wrap(err, "id")
	}
	status, err := domain.ParseStatusLabel(row[2])
	if err != nil {
		return domain.BeachRecord{}, err
	}
	zone, ok := domain.ParseZoneLabel(row[3])
	if !ok {
		return domain.BeachRecord{}, errors.Wrapf(domain.ErrUnknownZone, "Zona %q", row[3])
	}
	extracted, err := time.Parse(domain.DateLayout, row[8])
	if err != nil {
		return domain.BeachRecord{}, errors.Wrap(err, "Data_Extracao")
	}
	return domain.BeachRecord{
		ID:             id,
		Name:           row[1],
		Status:         status,
		Zone:           zone,
		Period:         row[4],
		DaysInPeriod:   domain.ParseDayList(row[5]),
		BulletinNumber: row[6],
		SampleType:     row[7],
		ExtractedOn:    extracted,
	}, nil
}
