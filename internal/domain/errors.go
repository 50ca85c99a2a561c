package domain

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	// ErrBulletinNotFound means the listing page has no link to the bulletin.
	ErrBulletinNotFound = errors.New("bulletin link not found on listing page")

	// ErrHeaderDegraded means the header labels were missing or out of order.
	// The bulletin is still processed with empty metadata.
	ErrHeaderDegraded = errors.New("bulletin header labels not found")

	// ErrPeriodMalformed means the period text is not "DD/MM/YYYY a DD/MM/YYYY"
	// or its end precedes its start.
	ErrPeriodMalformed = errors.New("malformed bulletin period")

	// ErrCoordinatesUnavailable means the beach code has no entry in the coordinate table.
	ErrCoordinatesUnavailable = errors.New("coordinates unavailable")
)

// FetchError is a network, HTTP status or timeout failure while acquiring the
// listing page or the document. It is fatal to the current run and retryable
// by a later one.
type FetchError struct {
	Op     string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.Status)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Retryable always reports true; fetch failures are transient by assumption.
func (e *FetchError) Retryable() bool { return true }

// IsRetryable reports whether err carries a retryable FetchError.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable()
}
