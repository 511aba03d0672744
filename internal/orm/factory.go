package orm

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/shared"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

// Options configures engines built by [Open].
type Options struct {
	MaxOpenConns int
	MaxIdleConns int

	// Migrate applies the library schema migrations after connecting.
	Migrate bool

	// Logger receives SQL statement logs; nil uses the process-wide logger.
	Logger *log.Logger
}

// Factory owns the connection pool for one connection URL and creates sessions on it.
// It is safe for concurrent use.
type Factory struct {
	url    string
	target Target
	sqlDB  *sql.DB
	gormDB *gorm.DB

	mu       sync.RWMutex
	closed   bool
	sessions atomic.Uint64
}

// Open connects to rawURL and builds a session factory for it.
// All failures are reported as [*ConnectionError].
func Open(ctx context.Context, rawURL string, opts Options) (*Factory, error) {
	target, err := ParseURL(rawURL)
	if err != nil {
		return nil, &ConnectionError{URL: rawURL, Err: err}
	}

	sqlDB, err := shared.OpenDatabase(ctx, target.Driver, target.DSN)
	if err != nil {
		removeScratch(target.Path)
		return nil, &ConnectionError{URL: rawURL, Err: err}
	}
	shared.ConfigureDatabase(sqlDB, opts.MaxOpenConns, opts.MaxIdleConns)

	f := &Factory{url: rawURL, target: target, sqlDB: sqlDB}

	if opts.Migrate {
		if err := shared.RunMigrations(ctx, sqlDB); err != nil {
			f.Close()
			return nil, &ConnectionError{URL: rawURL, Err: err}
		}
	}

	f.gormDB, err = gorm.Open(sqlite.New(sqlite.Config{DriverName: target.Driver, Conn: sqlDB}), &gorm.Config{
		Logger:                 newEngineLogger(opts.Logger),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		f.Close()
		return nil, &ConnectionError{URL: rawURL, Err: fmt.Errorf("failed to initialize orm: %w", err)}
	}

	return f, nil
}

// URL returns the connection URL the factory was built from.
func (f *Factory) URL() string {
	return f.url
}

// Target returns the parsed connection target.
func (f *Factory) Target() Target {
	return f.target
}

// DB returns the underlying connection pool.
func (f *Factory) DB() *sql.DB {
	return f.sqlDB
}

// Sessions returns the number of sessions created so far.
func (f *Factory) Sessions() uint64 {
	return f.sessions.Load()
}

// NewSession returns a new session bound to ctx.
func (f *Factory) NewSession(ctx context.Context) (*Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return nil, ErrFactoryClosed
	}

	f.sessions.Add(1)
	db := f.gormDB.Session(&gorm.Session{NewDB: true, Context: ctx})
	return newSession(shared.GenerateID(), db), nil
}

// Close releases the pool. Sessions still open fail on their next statement.
func (f *Factory) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}
	f.closed = true

	err := f.sqlDB.Close()
	removeScratch(f.target.Path)
	return err
}

// removeScratch deletes the scratch file of an in-memory store along with its WAL files.
func removeScratch(path string) {
	if path == "" {
		return
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		os.Remove(path + suffix)
	}
}
