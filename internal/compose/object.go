package compose

import (
	"context"
	"fmt"
)

// Object binds a receiver value to a [Type]. Method lookups happen per call,
// so methods injected after the object was created are visible to it.
type Object struct {
	typ  *Type
	recv any
}

// NewObject creates an object of type t whose methods receive recv.
func NewObject(t *Type, recv any) *Object {
	return &Object{typ: t, recv: recv}
}

// Type returns the object's type.
func (o *Object) Type() *Type {
	return o.typ
}

// Has reports whether the object's type currently has method name.
func (o *Object) Has(name string) bool {
	return o.typ.Has(name)
}

// Call invokes method name with the object's receiver.
func (o *Object) Call(ctx context.Context, name string, args ...any) (any, error) {
	fn, ok := o.typ.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s", ErrNoSuchMethod, o.typ.name, name)
	}
	return fn(ctx, o.recv, args...)
}

// Caller is implemented by values that dispatch named methods, such as [*Object].
type Caller interface {
	Call(ctx context.Context, name string, args ...any) (any, error)
	Has(name string) bool
}
