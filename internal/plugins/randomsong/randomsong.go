// Package randomsong adds a menu action that plays a random song from the library.
package randomsong

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/shared"
)

// Name is the plugin name.
const Name = "randomsong"

// ActionText is the menu item label.
const ActionText = "Play a random song"

// Plugin is the loaded randomsong plugin.
type Plugin struct {
	app    *host.Application
	logger *log.Logger
	action *host.Action
}

func (p *Plugin) Name() string { return Name }

// Action returns the menu action.
func (p *Plugin) Action() *host.Action { return p.action }

// Close removes the menu action.
func (p *Plugin) Close() error {
	p.app.UserInterface.RemoveMenuItem(p.action)
	return nil
}

// PlayRandom picks an available song, makes it current, and starts playback.
// An empty library is logged and not treated as an error.
func (p *Plugin) PlayRandom(ctx context.Context) error {
	session, err := p.app.Database.Session(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	song, err := session.RandomSong()
	if errors.Is(err, shared.ErrEmptyLibrary) {
		p.logger.Warn("no songs to pick from")
		return nil
	}
	if err != nil {
		return err
	}

	p.logger.Info("playing random song", "song", song.String())
	p.app.Player.SetSong(song)
	p.app.Player.Play()
	return nil
}

// New adds the random song action to the tools menu.
func New(_ context.Context, app *host.Application) (host.Plugin, error) {
	p := &Plugin{app: app, logger: app.Logger.WithPrefix(Name)}
	p.action = host.NewAction(ActionText, p.PlayRandom)

	if err := app.UserInterface.AddMenuItem(host.MenuTools, p.action); err != nil {
		return nil, err
	}
	return p, nil
}
