package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoInput is returned when a batch is empty or every record is blank.
	ErrNoInput = errors.New("no complaints to analyze")
	// ErrMalformedIngestion is returned when an upload cannot be parsed into records.
	ErrMalformedIngestion = errors.New("malformed ingestion")
	// ErrCollaboratorUnavailable is returned by scoring and summarization
	// collaborators; callers fall back instead of surfacing it.
	ErrCollaboratorUnavailable = errors.New("external collaborator unavailable")
	// ErrNotFound is returned by stores when nothing matches.
	ErrNotFound = errors.New("not found")
)

// MalformedError wraps ErrMalformedIngestion with a reason.
func MalformedError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedIngestion, fmt.Sprintf(format, args...))
}

// PersistenceError reports a storage failure that happened after analysis
// may already have succeeded.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistence reports whether err carries a PersistenceError.
func IsPersistence(err error) bool {
	var pErr *PersistenceError
	return errors.As(err, &pErr)
}
