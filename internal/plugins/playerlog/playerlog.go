// Package playerlog logs player events.
package playerlog

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/host"
)

// Name is the plugin name.
const Name = "playerlog"

// Delegate logs state, volume, and position changes. Song changes are not handled.
type Delegate struct {
	logger *log.Logger
}

func (d *Delegate) StateChanged(state host.State) error {
	d.logger.Info("State", "state", state.String())
	return nil
}

func (d *Delegate) VolumeChanged(percent int) error {
	d.logger.Info("Volume", "percent", percent)
	return nil
}

func (d *Delegate) PositionChanged(seconds int) error {
	d.logger.Infof("Seeked to %d", seconds)
	return nil
}

// Plugin is the loaded playerlog plugin.
type Plugin struct {
	player     *host.Player
	delegateID string
}

func (p *Plugin) Name() string { return Name }

// Close stops listening to the player.
func (p *Plugin) Close() error {
	p.player.UnregisterDelegate(p.delegateID)
	return nil
}

// New registers the logging delegate with the player.
func New(_ context.Context, app *host.Application) (host.Plugin, error) {
	d := &Delegate{logger: app.Logger.WithPrefix(Name)}
	return &Plugin{player: app.Player, delegateID: app.Player.RegisterDelegate(d)}, nil
}
