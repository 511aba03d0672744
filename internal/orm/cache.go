package orm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultConnectTimeout bounds factory construction when no timeout is configured.
const DefaultConnectTimeout = 5 * time.Second

// Handle is a database connection target. Handles are cache keys and must be comparable; use pointers.
type Handle interface {
	ConnectionURL() string
}

// Opener builds a factory for a connection URL.
type Opener func(ctx context.Context, url string, opts Options) (*Factory, error)

type cacheEntry struct {
	mu       sync.Mutex
	factory  *Factory
	released bool
}

// Cache lazily builds and keeps one [Factory] per [Handle].
type Cache struct {
	opts    Options
	timeout time.Duration
	open    Opener
	logger  *log.Logger

	mu      sync.Mutex
	entries map[Handle]*cacheEntry
	closed  bool
}

// CacheOption configures a [Cache].
type CacheOption func(*Cache)

// WithOptions sets the engine options used for every factory.
func WithOptions(opts Options) CacheOption {
	return func(c *Cache) { c.opts = opts }
}

// WithConnectTimeout bounds each factory construction. Non-positive values use [DefaultConnectTimeout].
func WithConnectTimeout(d time.Duration) CacheOption {
	return func(c *Cache) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithOpener replaces [Open] as the factory constructor.
func WithOpener(fn Opener) CacheOption {
	return func(c *Cache) {
		if fn != nil {
			c.open = fn
		}
	}
}

// WithCacheLogger sets the cache's logger.
func WithCacheLogger(l *log.Logger) CacheOption {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache creates an empty cache.
func NewCache(opts ...CacheOption) *Cache {
	c := &Cache{
		timeout: DefaultConnectTimeout,
		open:    Open,
		entries: make(map[Handle]*cacheEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = log.Default().WithPrefix("orm")
	}
	if c.opts.Logger == nil {
		c.opts.Logger = c.logger
	}
	return c
}

// Session returns a new session on h's factory, building the factory on first use.
func (c *Cache) Session(ctx context.Context, h Handle) (*Session, error) {
	f, err := c.Factory(ctx, h)
	if err != nil {
		return nil, err
	}
	return f.NewSession(ctx)
}

// Factory returns h's factory, building it on first use.
//
// Concurrent first callers for the same handle wait for a single construction. A failed construction is not
// remembered; the next call tries again.
func (c *Cache) Factory(ctx context.Context, h Handle) (*Factory, error) {
	for {
		e, err := c.entry(h)
		if err != nil {
			return nil, err
		}

		e.mu.Lock()
		if e.released {
			e.mu.Unlock()
			continue
		}
		if e.factory != nil {
			f := e.factory
			e.mu.Unlock()
			return f, nil
		}

		f, err := c.construct(ctx, h.ConnectionURL())
		if err != nil {
			e.mu.Unlock()
			c.logger.Warn("failed to build session factory", "url", h.ConnectionURL(), "err", err)
			return nil, err
		}
		e.factory = f
		e.mu.Unlock()

		c.logger.Debug("built session factory", "url", h.ConnectionURL())
		return f, nil
	}
}

func (c *Cache) entry(h Handle) (*cacheEntry, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil handle", ErrInvalidHandle)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrCacheClosed
	}
	e, ok := c.entries[h]
	if !ok {
		e = &cacheEntry{}
		c.entries[h] = e
	}
	return e, nil
}

// construct runs the opener under the connect timeout. A factory finished after the
// deadline is closed instead of leaked.
func (c *Cache) construct(ctx context.Context, url string) (*Factory, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type result struct {
		f   *Factory
		err error
	}
	done := make(chan result, 1)

	go func() {
		f, err := c.open(ctx, url, c.opts)
		done <- result{f, err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			var cerr *ConnectionError
			if errors.As(r.err, &cerr) {
				return nil, r.err
			}
			return nil, &ConnectionError{URL: url, Err: r.err}
		}
		return r.f, nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.f != nil {
				r.f.Close()
			}
		}()
		return nil, &ConnectionError{URL: url, Err: ctx.Err()}
	}
}

// Cached reports whether h currently has a factory.
func (c *Cache) Cached(h Handle) bool {
	c.mu.Lock()
	e, ok := c.entries[h]
	c.mu.Unlock()
	if !ok {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.factory != nil
}

// Len returns the number of live factories.
func (c *Cache) Len() int {
	c.mu.Lock()
	entries := make([]*cacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		entries = append(entries, e)
	}
	c.mu.Unlock()

	n := 0
	for _, e := range entries {
		e.mu.Lock()
		if e.factory != nil {
			n++
		}
		e.mu.Unlock()
	}
	return n
}

// Release closes and forgets h's factory. Releasing an unknown handle is a no-op.
func (c *Cache) Release(h Handle) error {
	c.mu.Lock()
	e, ok := c.entries[h]
	delete(c.entries, h)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	return e.release()
}

// Close releases every factory; the cache rejects further use.
func (c *Cache) Close() error {
	c.mu.Lock()
	entries := c.entries
	c.entries = make(map[Handle]*cacheEntry)
	c.closed = true
	c.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := e.release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *cacheEntry) release() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.released = true
	if e.factory == nil {
		return nil
	}
	f := e.factory
	e.factory = nil
	return f.Close()
}
