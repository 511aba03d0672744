package host

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/shared"
)

// Menu locations plugins can add actions to.
const (
	MenuTools    = "tools"
	MenuLibrary  = "library"
	MenuPlaylist = "playlist"
)

// Action is a menu entry backed by a plugin callback.
type Action struct {
	Text string
	Icon string

	mu       sync.Mutex
	enabled  bool
	location string
	trigger  func(ctx context.Context) error
}

// NewAction creates an enabled action running fn when triggered.
func NewAction(text string, fn func(ctx context.Context) error) *Action {
	return &Action{Text: text, enabled: true, trigger: fn}
}

// Enabled reports whether the action can be triggered.
func (a *Action) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// SetEnabled enables or disables the action.
func (a *Action) SetEnabled(enabled bool) {
	a.mu.Lock()
	a.enabled = enabled
	a.mu.Unlock()
}

// Location returns the menu the action was added to, or "" when detached.
func (a *Action) Location() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.location
}

// Trigger runs the action's callback. Disabled actions do nothing.
func (a *Action) Trigger(ctx context.Context) error {
	a.mu.Lock()
	enabled, fn := a.enabled, a.trigger
	a.mu.Unlock()

	if !enabled || fn == nil {
		return nil
	}
	return fn(ctx)
}

func (a *Action) attach(location string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.location != "" {
		return false
	}
	a.location = location
	return true
}

func (a *Action) detach() {
	a.mu.Lock()
	a.location = ""
	a.mu.Unlock()
}

// UserInterface holds the plugin menu items by location.
type UserInterface struct {
	logger *log.Logger

	mu    sync.RWMutex
	menus map[string][]*Action
}

// NewUserInterface creates a user interface with the given menu locations, or the default
// tools, library, and playlist menus when none are given.
func NewUserInterface(logger *log.Logger, locations ...string) *UserInterface {
	if logger == nil {
		logger = log.Default().WithPrefix("ui")
	}
	if len(locations) == 0 {
		locations = []string{MenuTools, MenuLibrary, MenuPlaylist}
	}

	ui := &UserInterface{logger: logger, menus: make(map[string][]*Action, len(locations))}
	for _, l := range locations {
		ui.menus[l] = nil
	}
	return ui
}

// AddMenuItem adds action to the menu at location. An action can be in one menu at a time.
func (ui *UserInterface) AddMenuItem(location string, action *Action) error {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	if _, ok := ui.menus[location]; !ok {
		ui.logger.Warn("unknown action location", "location", location)
		return fmt.Errorf("%w: %s", shared.ErrUnknownMenuLocation, location)
	}
	if !action.attach(location) {
		ui.logger.Warn("actions can't be added to more than one location", "action", action.Text)
		return fmt.Errorf("%w: %s", shared.ErrActionAttached, action.Text)
	}

	ui.menus[location] = append(ui.menus[location], action)
	return nil
}

// RemoveMenuItem removes action from whichever menu holds it.
func (ui *UserInterface) RemoveMenuItem(action *Action) {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	location := action.Location()
	items := ui.menus[location]
	if i := slices.Index(items, action); i >= 0 {
		ui.menus[location] = slices.Delete(slices.Clone(items), i, i+1)
	}
	action.detach()
}

// RemoveAll clears every menu.
func (ui *UserInterface) RemoveAll() {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	for l, items := range ui.menus {
		for _, a := range items {
			a.detach()
		}
		ui.menus[l] = nil
	}
}

// MenuItems returns the actions at location in the order they were added.
func (ui *UserInterface) MenuItems(location string) []*Action {
	ui.mu.RLock()
	defer ui.mu.RUnlock()
	return slices.Clone(ui.menus[location])
}

// Locations returns the known menu locations, sorted.
func (ui *UserInterface) Locations() []string {
	ui.mu.RLock()
	defer ui.mu.RUnlock()

	out := make([]string, 0, len(ui.menus))
	for l := range ui.menus {
		out = append(out, l)
	}
	slices.Sort(out)
	return out
}

// FindAction returns the first action at location whose text matches.
func (ui *UserInterface) FindAction(location, text string) (*Action, bool) {
	for _, a := range ui.MenuItems(location) {
		if a.Text == text {
			return a, true
		}
	}
	return nil, false
}
