package anki

import (
	"errors"
	"fmt"
)

// ConnectionError indicates the store could not be reached at all.
type ConnectionError struct {
	URL string
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("cannot connect to AnkiConnect at %s: make sure Anki is running with AnkiConnect installed, then check your configuration", e.URL)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// ProtocolError indicates the store answered but rejected the request,
// either with a non-2xx status or a non-null error field.
type ProtocolError struct {
	Action  string
	Status  int
	Message string
}

func (e *ProtocolError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("anki %s: HTTP status %d", e.Action, e.Status)
	}
	return fmt.Sprintf("anki %s: %s", e.Action, e.Message)
}

// IsConnectionError reports whether err was caused by an unreachable store.
func IsConnectionError(err error) bool {
	var ce *ConnectionError
	return errors.As(err, &ce)
}
