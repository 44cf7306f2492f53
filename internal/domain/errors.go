package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration signals a backend that is missing required setup (e.g. no index URL).
	ErrConfiguration = errors.New("configuration error")
	// ErrBackendQuery signals a backend that failed to execute a query.
	ErrBackendQuery = errors.New("backend query failed")
	// ErrBackendIndex signals a backend that failed to write a document.
	ErrBackendIndex = errors.New("backend index write failed")
	// ErrQueueFull signals a full asynchronous indexing queue.
	ErrQueueFull = errors.New("indexing queue is full")
	// ErrPermissionDenied signals a caller without the required permission.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidEvent signals a malformed content-change event.
	ErrInvalidEvent = errors.New("invalid event")
)

// BackendError ties a backend failure to the backend that produced it.
type BackendError struct {
	Backend string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s", e.Backend, e.Err.Error())
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewQueryError wraps err as a query failure of the named backend.
func NewQueryError(backend string, err error) error {
	return &BackendError{Backend: backend, Err: fmt.Errorf("%w: %w", ErrBackendQuery, err)}
}

// NewIndexError wraps err as an index write failure of the named backend.
func NewIndexError(backend string, err error) error {
	return &BackendError{Backend: backend, Err: fmt.Errorf("%w: %w", ErrBackendIndex, err)}
}

// PermissionError names the permission a caller was missing.
type PermissionError struct {
	Action string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("%s: %s privileges are required", ErrPermissionDenied.Error(), e.Action)
}

func (e *PermissionError) Unwrap() error { return ErrPermissionDenied }

// Permission names.
const (
	PermSearchView = "SEARCH_VIEW"
	PermIndexWrite = "INDEX_WRITE"
)
