package backend

import (
	"errors"
	"fmt"
)

var (
	// ErrOffline is returned by every operation while the backend simulates
	// a lost connection.
	ErrOffline = errors.New("backend offline")
	// ErrNetwork is an injected transient network failure.
	ErrNetwork = errors.New("network error")
	// ErrTimeout is an injected request timeout.
	ErrTimeout = errors.New("request timed out")
	// ErrNotFound is returned when updating a document that does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidPath is returned for empty paths or paths with empty segments.
	ErrInvalidPath = errors.New("invalid path")
	// ErrInvalidCondition is returned for network conditions outside their
	// allowed ranges.
	ErrInvalidCondition = errors.New("invalid network condition")
)

// OperationError describes a failed store operation.
type OperationError struct {
	Op   string
	Path string
	Err  error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err was injected by the network simulation and
// could succeed on retry.
func IsTransient(err error) bool {
	return errors.Is(err, ErrOffline) || errors.Is(err, ErrNetwork) || errors.Is(err, ErrTimeout)
}
