package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrTransform is matched by every TransformError via errors.Is.
	ErrTransform = errors.New("transform failed")

	// ErrNotFound is returned when a nearest-station search has no candidates.
	ErrNotFound = errors.New("no stations to search")
)

// TransformError reports a required field that was missing or unparsable.
// Where identifies the offending element, e.g. "period 1 (2024-03-02Z) rep 3".
type TransformError struct {
	Op    string
	Where string
	Field string
	Err   error
}

func (e *TransformError) Error() string {
	msg := e.Op
	if e.Where != "" {
		msg += " " + e.Where
	}
	if e.Field != "" {
		msg += fmt.Sprintf(" field %q", e.Field)
	}
	return msg + ": " + e.Err.Error()
}

func (e *TransformError) Unwrap() error { return e.Err }

func (e *TransformError) Is(target error) bool { return target == ErrTransform }
