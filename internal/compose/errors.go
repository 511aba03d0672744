package compose

import (
	"errors"
	"fmt"
)

var (
	// ErrInjectionConflict is matched by every [*InjectionConflictError].
	ErrInjectionConflict = errors.New("injection conflict")

	// ErrSealed is returned when composing onto a sealed type.
	ErrSealed = errors.New("type is sealed")

	// ErrAlreadyComposed is returned when a composed type name is declared twice on the same base.
	ErrAlreadyComposed = errors.New("type already composed")

	// ErrNoSuchMethod is returned when calling a method missing from an object's type.
	ErrNoSuchMethod = errors.New("no such method")

	// ErrInvalidTrait is returned for unnamed traits or nil methods.
	ErrInvalidTrait = errors.New("invalid trait")
)

// InjectionConflictError reports a method name supplied twice during composition.
type InjectionConflictError struct {
	// Type is the base type receiving the injection.
	Type string

	// Method is the conflicting method name.
	Method string

	// Existing names the current owner of Method: a trait name, or the base type for native methods.
	Existing string

	// Incoming is the trait that tried to supply Method again.
	Incoming string
}

// Error implements the error interface.
func (e *InjectionConflictError) Error() string {
	return fmt.Sprintf("injection conflict on %s.%s: provided by %s, also provided by %s", e.Type, e.Method, e.Existing, e.Incoming)
}

// Is reports whether target is [ErrInjectionConflict].
func (e *InjectionConflictError) Is(target error) bool {
	return target == ErrInjectionConflict
}
