// Package plugins registers the bundled plugins with a [host.Manager].
package plugins

import (
	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/plugins/databasetest"
	"github.com/desertthunder/tunehost/internal/plugins/playerlog"
	"github.com/desertthunder/tunehost/internal/plugins/randomsong"
)

// Bundled maps plugin names to constructors, in the order they are documented.
var Bundled = []struct {
	Name        string
	Description string
	New         host.Constructor
}{
	{databasetest.Name, "logs library changes and the first songs in the library", databasetest.New},
	{playerlog.Name, "logs player state, volume, and seeks", playerlog.New},
	{randomsong.Name, "adds a tools menu action that plays a random song", randomsong.New},
}

// RegisterAll registers every bundled plugin with m.
func RegisterAll(m *host.Manager) error {
	for _, b := range Bundled {
		if err := m.Register(b.Name, b.New); err != nil {
			return err
		}
	}
	return nil
}
