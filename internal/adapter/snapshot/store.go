package snapshot

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
)

// ErrNotLoaded is returned before the first successful Load.
var ErrNotLoaded = errors.New("snapshot not loaded")

// Store serves an immutable in-memory copy of the snapshot file. Refresh
// swaps in a newly read copy; readers holding the old slice are unaffected.
type Store struct {
	path    string
	logger  *slog.Logger
	current atomic.Pointer[[]domain.BeachRecord]
}

// NewStore creates an empty store for the snapshot at path.
func NewStore(path string, logger *slog.Logger) *Store {
	return &Store{path: path, logger: logger}
}

// Load reads the snapshot file and makes it current.
func (s *Store) Load() error {
	records, err := Read(s.path)
	if err != nil {
		return err
	}
	s.current.Store(&records)
	s.logger.Info("snapshot loaded", "path", s.path, "records", len(records))
	return nil
}

// Refresh rereads the snapshot file. On failure the previous copy stays in place.
func (s *Store) Refresh() error {
	if err := s.Load(); err != nil {
		s.logger.Warn("snapshot refresh failed, keeping previous copy", "error", err)
		return err
	}
	return nil
}

// Records returns the loaded records. Callers must not modify the slice.
func (s *Store) Records() []domain.BeachRecord {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return nil
}

// Get returns the record with the given id.
func (s *Store) Get(id int) (domain.BeachRecord, bool) {
	for _, r := range s.Records() {
		if r.ID == id {
			return r, true
		}
	}
	return domain.BeachRecord{}, false
}

// ByStatus returns the records with the given status.
func (s *Store) ByStatus(status domain.Status) []domain.BeachRecord {
	return s.filter(func(r domain.BeachRecord) bool { return r.Status == status })
}

// ByZone returns the records whose zone label matches, ignoring case.
func (s *Store) ByZone(label string) []domain.BeachRecord {
	return s.filter(func(r domain.BeachRecord) bool { return strings.EqualFold(r.Zone.Label(), label) })
}

func (s *Store) filter(keep func(domain.BeachRecord) bool) []domain.BeachRecord {
	var out []domain.BeachRecord
	for _, r := range s.Records() {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// CheckReadiness reports an error until a snapshot has been loaded.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.current.Load() == nil {
		return ErrNotLoaded
	}
	return nil
}
