package core

import (
	"errors"
	"fmt"
)

var (
	// ErrStorageUnavailable marks a missing, corrupt or unwritable
	// watchlist document. Fatal for the operation, never for the process.
	ErrStorageUnavailable = errors.New("watchlist storage unavailable")

	// ErrNotFound is returned when a delete names a symbol that is not
	// being monitored.
	ErrNotFound = errors.New("symbol not monitored")
)

// ValidationError reports malformed user input. The active dialog step
// aborts and the conversation returns to idle; nothing is retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// QuoteFetchError reports a failed quote source request. Fatal for the
// current poll cycle or dialog step only.
type QuoteFetchError struct {
	StatusCode int
	Message    string
}

func (e *QuoteFetchError) Error() string {
	return fmt.Sprintf("Error %d: %s", e.StatusCode, e.Message)
}
