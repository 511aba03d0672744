package delegate

import (
	"errors"
	"fmt"
)

// ErrCallback is matched by every [*CallbackError].
var ErrCallback = errors.New("delegate callback failed")

// CallbackError wraps a failure raised by one delegate's callback.
type CallbackError struct {
	// Registry is the name of the registry delivering the event.
	Registry string

	// Event is the event being delivered.
	Event string

	// DelegateID is the registration id of the failing delegate.
	DelegateID string

	// Err is the returned error, or a description of the panic.
	Err error

	// Panic is the recovered value when the callback panicked.
	Panic any
}

// Error implements the error interface.
func (e *CallbackError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("%s.%s: delegate %s panicked: %v", e.Registry, e.Event, e.DelegateID, e.Panic)
	}
	return fmt.Sprintf("%s.%s: delegate %s: %v", e.Registry, e.Event, e.DelegateID, e.Err)
}

// Unwrap returns the underlying error.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

// Is reports whether target is [ErrCallback].
func (e *CallbackError) Is(target error) bool {
	return target == ErrCallback
}
