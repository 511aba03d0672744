package orm

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is matched by every [*ConnectionError].
	ErrConnection = errors.New("connection error")

	// ErrInvalidURL is returned for malformed or unsupported connection URLs.
	ErrInvalidURL = errors.New("invalid connection url")

	// ErrSessionClosed is returned when using a session after Close.
	ErrSessionClosed = errors.New("session is closed")

	// ErrTransactionActive is returned by Begin when the session already has an open transaction.
	ErrTransactionActive = errors.New("transaction already active")

	// ErrNoTransaction is returned by Commit and Rollback without an open transaction.
	ErrNoTransaction = errors.New("no active transaction")

	// ErrFactoryClosed is returned when creating sessions from a closed factory.
	ErrFactoryClosed = errors.New("session factory is closed")

	// ErrCacheClosed is returned by a closed [Cache].
	ErrCacheClosed = errors.New("session cache is closed")

	// ErrInvalidHandle is returned when the session capability is invoked on a value without a connection url.
	ErrInvalidHandle = errors.New("invalid database handle")
)

// ConnectionError reports a failure to build a session factory for URL.
type ConnectionError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrConnection].
func (e *ConnectionError) Is(target error) bool {
	return target == ErrConnection
}
