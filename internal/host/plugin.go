package host

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/shared"
)

// Plugin is a loaded plugin instance.
type Plugin interface {
	Name() string
}

// Closer is implemented by plugins that release resources on shutdown.
type Closer interface {
	Close() error
}

// Constructor builds a plugin for app. Plugins register their delegates and menu items here.
type Constructor func(ctx context.Context, app *Application) (Plugin, error)

// Manager keeps the available plugin constructors and the plugins loaded from them.
type Manager struct {
	logger *log.Logger

	mu     sync.Mutex
	ctors  map[string]Constructor
	loaded []Plugin
}

// NewManager creates an empty plugin manager.
func NewManager(logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default().WithPrefix("plugins")
	}
	return &Manager{logger: logger, ctors: make(map[string]Constructor)}
}

// Register makes the plugin ctor available under name.
func (m *Manager) Register(name string, ctor Constructor) error {
	if name == "" || ctor == nil {
		return fmt.Errorf("%w: plugin needs a name and constructor", shared.ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.ctors[name]; ok {
		return fmt.Errorf("%w: %s", shared.ErrDuplicatePlugin, name)
	}
	m.ctors[name] = ctor
	return nil
}

// Available returns the registered plugin names, sorted.
func (m *Manager) Available() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.ctors))
	for n := range m.ctors {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Load constructs the named plugins in order. It stops at the first unknown or failing
// plugin; plugins loaded before it stay loaded.
func (m *Manager) Load(ctx context.Context, app *Application, names []string) error {
	for _, name := range names {
		m.mu.Lock()
		ctor, ok := m.ctors[name]
		m.mu.Unlock()
		if !ok {
			return fmt.Errorf("%w: %s", shared.ErrPluginNotFound, name)
		}

		p, err := ctor(ctx, app)
		if err != nil {
			m.logger.Error("plugin failed to load", "plugin", name, "err", err)
			return fmt.Errorf("%w: %s: %w", shared.ErrPluginLoad, name, err)
		}

		m.mu.Lock()
		m.loaded = append(m.loaded, p)
		m.mu.Unlock()
		m.logger.Info("loaded plugin", "plugin", p.Name())
	}
	return nil
}

// Loaded returns the loaded plugins in load order.
func (m *Manager) Loaded() []Plugin {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.loaded)
}

// Plugin returns the loaded plugin called name.
func (m *Manager) Plugin(name string) (Plugin, bool) {
	for _, p := range m.Loaded() {
		if p.Name() == name {
			return p, true
		}
	}
	return nil, false
}

// Close closes loaded plugins in reverse load order.
func (m *Manager) Close() error {
	m.mu.Lock()
	loaded := m.loaded
	m.loaded = nil
	m.mu.Unlock()

	var first error
	for i := len(loaded) - 1; i >= 0; i-- {
		c, ok := loaded[i].(Closer)
		if !ok {
			continue
		}
		if err := c.Close(); err != nil {
			m.logger.Warn("plugin failed to close", "plugin", loaded[i].Name(), "err", err)
			if first == nil {
				first = err
			}
		}
	}
	return first
}

func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
