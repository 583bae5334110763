package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrReadOnly           = errors.New("repository is in read-only mode")
	ErrNotFound           = errors.New("note not found")
	ErrDuplicateKey       = errors.New("duplicate note key")
	ErrDuplicateCurve     = errors.New("duplicate curve id")
	ErrCurveNotFound      = errors.New("forgetting curve not found")
	ErrIntervalOutOfRange = errors.New("interval out of range")
	ErrInvalidInterval    = errors.New("interval cursor must be a positive integer")
	ErrMoveIntoDescendant = errors.New("cannot move a note into its own subtree")
	ErrNoLink             = errors.New("note has no linked document")
	ErrPersistence        = errors.New("persistence failed")
)

// ScheduleError reports a failed markDone. The note is left untouched.
type ScheduleError struct {
	Key     string
	CurveID string
	Cursor  int
	Err     error // ErrCurveNotFound or ErrIntervalOutOfRange
}

func (e *ScheduleError) Error() string {
	if errors.Is(e.Err, ErrCurveNotFound) {
		return fmt.Sprintf("schedule note %s: curve %q: %v", e.Key, e.CurveID, e.Err)
	}
	return fmt.Sprintf("schedule note %s: curve %q cursor %d: %v", e.Key, e.CurveID, e.Cursor, e.Err)
}

func (e *ScheduleError) Unwrap() error { return e.Err }

// PersistenceError reports that a committed change could not be saved.
// The in-memory state still reflects the change.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: save: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() []error { return []error{ErrPersistence, e.Err} }
