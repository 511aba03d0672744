package host

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/compose"
	"github.com/desertthunder/tunehost/internal/logbridge"
	"github.com/desertthunder/tunehost/internal/orm"
	"github.com/desertthunder/tunehost/internal/shared"
)

// ORMDatabaseTypeName names the database type composed with the session capability.
const ORMDatabaseTypeName = "ORMDatabase"

// Application is the handle every plugin is constructed with.
type Application struct {
	Config        *shared.Config
	Database      *Database
	Player        *Player
	UserInterface *UserInterface
	Library       *Library
	Sessions      *orm.Cache
	Plugins       *Manager
	Logger        *log.Logger
}

// Option configures [New].
type Option func(*appOptions)

type appOptions struct {
	logger   *log.Logger
	sessions *orm.Cache
	dbType   *compose.Type
	plugins  *Manager
}

// WithLogger sets the application logger.
func WithLogger(l *log.Logger) Option {
	return func(o *appOptions) { o.logger = l }
}

// WithSessionCache sets the session cache the database's session capability uses.
func WithSessionCache(c *orm.Cache) Option {
	return func(o *appOptions) { o.sessions = c }
}

// WithDatabaseType sets the type the application's database is created with.
func WithDatabaseType(t *compose.Type) Option {
	return func(o *appOptions) { o.dbType = t }
}

// WithPlugins sets the plugin manager.
func WithPlugins(m *Manager) Option {
	return func(o *appOptions) { o.plugins = m }
}

// NewSessionCache creates the session cache configured by cfg.
func NewSessionCache(cfg *shared.Config, logger *log.Logger) *orm.Cache {
	return orm.NewCache(
		orm.WithConnectTimeout(cfg.Database.ConnectTimeout),
		orm.WithCacheLogger(logger),
		orm.WithOptions(orm.Options{
			MaxOpenConns: cfg.Database.MaxOpenConns,
			MaxIdleConns: cfg.Database.MaxIdleConns,
			Migrate:      true,
			Logger:       logger,
		}),
	)
}

// New creates an application from cfg. Without [WithDatabaseType] the database gets a plain
// type with no session capability.
func New(cfg *shared.Config, opts ...Option) (*Application, error) {
	if cfg == nil {
		return nil, shared.ErrMissingConfig
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := appOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.Default().WithPrefix("host")
	}
	if o.sessions == nil {
		o.sessions = NewSessionCache(cfg, log.Default().WithPrefix("orm"))
	}
	if o.dbType == nil {
		o.dbType = NewDatabaseType()
	}
	if o.plugins == nil {
		o.plugins = NewManager(o.logger.WithPrefix("plugins"))
	}

	db := NewDatabase(o.dbType, cfg.Database.URL, o.logger.WithPrefix("database"))
	player := NewPlayer(PlayerOptions{
		Volume:       cfg.Player.Volume,
		PositionRate: cfg.Player.PositionRate,
		Logger:       o.logger.WithPrefix("player"),
	})
	app := &Application{
		Config:        cfg,
		Database:      db,
		Player:        player,
		UserInterface: NewUserInterface(o.logger.WithPrefix("ui")),
		Library:       NewLibrary(db, o.sessions, o.logger.WithPrefix("library")),
		Sessions:      o.sessions,
		Plugins:       o.plugins,
		Logger:        o.logger,
	}
	return app, nil
}

// Close unloads plugins and releases every session factory.
func (a *Application) Close() error {
	return errors.Join(a.Plugins.Close(), a.Sessions.Close())
}

// BootstrapOptions configures [Bootstrap].
type BootstrapOptions struct {
	// Sink receives every log record once the bridge is installed. Nil leaves logging alone.
	Sink logbridge.Sink

	// Fallback receives the bridge's own diagnostics.
	Fallback io.Writer

	// Plugins holds the constructors for cfg.Plugins.Enabled.
	Plugins *Manager
}

// Bootstrap starts the host. It installs the log bridge, composes the session capability onto
// a new database type and seals it, builds the application, and loads the enabled plugins.
func Bootstrap(ctx context.Context, cfg *shared.Config, opts BootstrapOptions) (*Application, error) {
	if cfg == nil {
		return nil, shared.ErrMissingConfig
	}

	if opts.Sink != nil {
		logbridge.Install(opts.Sink,
			logbridge.WithLevel(shared.ParseLogLevel(cfg.LogLevel())),
			logbridge.WithFallback(opts.Fallback),
		)
	}
	logger := logbridge.Named("host")

	sessions := NewSessionCache(cfg, logbridge.Named("orm"))
	dbType := NewDatabaseType()
	if _, err := compose.Compose(ORMDatabaseTypeName, dbType, orm.SessionTrait(sessions)); err != nil {
		return nil, fmt.Errorf("failed to compose database type: %w", err)
	}
	dbType.Seal()

	app, err := New(cfg,
		WithLogger(logger),
		WithSessionCache(sessions),
		WithDatabaseType(dbType),
		WithPlugins(opts.Plugins),
	)
	if err != nil {
		return nil, err
	}

	if err := app.Plugins.Load(ctx, app, cfg.Plugins.Enabled); err != nil {
		app.Close()
		return nil, err
	}

	logger.Info("host started", "plugins", len(app.Plugins.Loaded()), "database", cfg.Database.URL)
	return app, nil
}
