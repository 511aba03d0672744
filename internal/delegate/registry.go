package delegate

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/shared"
)

type registration[D any] struct {
	id       string
	delegate D
}

// Registry is an ordered set of delegates. Registration order is notification order.
type Registry[D any] struct {
	name    string
	logger  *log.Logger
	onError func(*CallbackError)

	mu      sync.RWMutex
	entries []registration[D]
}

// Option configures a [Registry].
type Option func(*options)

type options struct {
	logger  *log.Logger
	onError func(*CallbackError)
}

// WithLogger sets the logger callback failures are reported on.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithErrorHandler registers fn to observe every callback failure.
func WithErrorHandler(fn func(*CallbackError)) Option {
	return func(o *options) { o.onError = fn }
}

// New creates an empty registry. name identifies it in logs and errors.
func New[D any](name string, opts ...Option) *Registry[D] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default().WithPrefix(name)
	}
	return &Registry[D]{name: name, logger: o.logger, onError: o.onError}
}

// Name returns the registry name.
func (r *Registry[D]) Name() string {
	return r.name
}

// Register appends d and returns its registration id.
func (r *Registry[D]) Register(d D) string {
	id := shared.GenerateID()

	r.mu.Lock()
	r.entries = append(r.entries, registration[D]{id: id, delegate: d})
	r.mu.Unlock()

	return id
}

// Unregister removes the delegate registered under id.
func (r *Registry[D]) Unregister(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, e := range r.entries {
		if e.id == id {
			// Copy so snapshots taken earlier keep their view.
			next := make([]registration[D], 0, len(r.entries)-1)
			next = append(next, r.entries[:i]...)
			r.entries = append(next, r.entries[i+1:]...)
			return true
		}
	}
	return false
}

// UnregisterAll removes every delegate.
func (r *Registry[D]) UnregisterAll() {
	r.mu.Lock()
	r.entries = nil
	r.mu.Unlock()
}

// Len returns the number of registered delegates.
func (r *Registry[D]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Snapshot returns the registered delegates in registration order.
func (r *Registry[D]) Snapshot() []D {
	entries := r.snapshot()
	out := make([]D, len(entries))
	for i, e := range entries {
		out[i] = e.delegate
	}
	return out
}

func (r *Registry[D]) snapshot() []registration[D] {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if len(r.entries) == 0 {
		return nil
	}
	out := make([]registration[D], len(r.entries))
	copy(out, r.entries)
	return out
}

// Result summarizes one [Notify] call.
type Result struct {
	Invoked  int
	Skipped  int
	Failures []*CallbackError
}

// Notify delivers event to every delegate implementing C, in registration order.
//
// Failures are logged and collected in the result; they never propagate and never stop delivery.
func Notify[D, C any](r *Registry[D], event string, call func(C) error) Result {
	var res Result
	for _, e := range r.snapshot() {
		c, ok := any(e.delegate).(C)
		if !ok {
			res.Skipped++
			continue
		}

		res.Invoked++
		p, err := safeCall(c, call)
		if err == nil {
			continue
		}

		cerr := &CallbackError{Registry: r.name, Event: event, DelegateID: e.id, Err: err, Panic: p}
		r.report(cerr)
		res.Failures = append(res.Failures, cerr)
	}
	return res
}

func safeCall[C any](c C, call func(C) error) (p any, err error) {
	defer func() {
		if r := recover(); r != nil {
			p = r
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return nil, call(c)
}

func (r *Registry[D]) report(cerr *CallbackError) {
	r.logger.Error("delegate callback failed", "event", cerr.Event, "delegate", cerr.DelegateID, "err", cerr.Err)
	if r.onError != nil {
		r.onError(cerr)
	}
}
