package compose

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Method is a dynamically dispatched method. recv is the value bound to the calling [Object].
type Method func(ctx context.Context, recv any, args ...any) (any, error)

// Trait is a named method table.
type Trait struct {
	Name    string
	Methods map[string]Method
}

// Type is a named, mutable method table shared by every [Object] bound to it.
type Type struct {
	name string

	mu       sync.RWMutex
	methods  map[string]Method
	origin   map[string]string
	composed map[string]*Type
	parent   *Type
	sealed   bool
}

// NewType creates a type whose native methods come from the given traits.
// Native traits are merged in order; a later trait overrides an earlier one of the same method name.
func NewType(name string, native ...Trait) *Type {
	t := &Type{
		name:     name,
		methods:  make(map[string]Method),
		origin:   make(map[string]string),
		composed: make(map[string]*Type),
	}
	for _, tr := range native {
		for m, fn := range tr.Methods {
			t.methods[m] = fn
			t.origin[m] = name
		}
	}
	return t
}

// Name returns the type name.
func (t *Type) Name() string {
	return t.name
}

// Parent returns the base a composed type was built from, or nil.
func (t *Type) Parent() *Type {
	return t.parent
}

// Seal freezes the type against further compositions.
func (t *Type) Seal() {
	t.mu.Lock()
	t.sealed = true
	t.mu.Unlock()
}

// Sealed reports whether [Type.Seal] was called.
func (t *Type) Sealed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sealed
}

// Has reports whether the type currently has method name.
func (t *Type) Has(name string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.methods[name]
	return ok
}

// Origin returns the trait (or native type) that supplied method name.
func (t *Type) Origin(name string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	o, ok := t.origin[name]
	return o, ok
}

// Methods returns the sorted method names.
func (t *Type) Methods() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.methods))
	for n := range t.methods {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Composed returns the composed type declared as name on this base.
func (t *Type) Composed(name string) (*Type, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	c, ok := t.composed[name]
	return c, ok
}

func (t *Type) lookup(name string) (Method, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.methods[name]
	return fn, ok
}

// Compose declares the composed type name from base and traits, and injects the trait methods onto base.
//
// The returned type carries base's methods plus the traits' methods. On any conflict nothing is injected.
func Compose(name string, base *Type, traits ...Trait) (*Type, error) {
	if base == nil {
		return nil, fmt.Errorf("%w: nil base type", ErrInvalidTrait)
	}

	incoming := make(map[string]Method)
	owner := make(map[string]string)
	for _, tr := range traits {
		if tr.Name == "" {
			return nil, fmt.Errorf("%w: trait without a name", ErrInvalidTrait)
		}
		for m, fn := range tr.Methods {
			if fn == nil {
				return nil, fmt.Errorf("%w: %s.%s is nil", ErrInvalidTrait, tr.Name, m)
			}
			if prev, dup := owner[m]; dup {
				return nil, &InjectionConflictError{Type: base.name, Method: m, Existing: prev, Incoming: tr.Name}
			}
			incoming[m] = fn
			owner[m] = tr.Name
		}
	}

	base.mu.Lock()
	defer base.mu.Unlock()

	if base.sealed {
		return nil, fmt.Errorf("%w: cannot compose %s onto %s", ErrSealed, name, base.name)
	}
	if _, exists := base.composed[name]; exists {
		return nil, fmt.Errorf("%w: %s on %s", ErrAlreadyComposed, name, base.name)
	}

	for _, m := range sortedKeys(incoming) {
		if existing, ok := base.origin[m]; ok {
			return nil, &InjectionConflictError{Type: base.name, Method: m, Existing: existing, Incoming: owner[m]}
		}
	}

	for m, fn := range incoming {
		base.methods[m] = fn
		base.origin[m] = owner[m]
	}

	composed := &Type{
		name:     name,
		methods:  make(map[string]Method, len(base.methods)),
		origin:   make(map[string]string, len(base.origin)),
		composed: make(map[string]*Type),
		parent:   base,
	}
	for m, fn := range base.methods {
		composed.methods[m] = fn
		composed.origin[m] = base.origin[m]
	}
	base.composed[name] = composed

	return composed, nil
}

func sortedKeys(m map[string]Method) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
