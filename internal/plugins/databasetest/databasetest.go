// Package databasetest logs library changes and samples the library through an ORM session.
package databasetest

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/models"
)

// Name is the plugin name.
const Name = "databasetest"

// SampleSize is how many songs are logged at startup.
const SampleSize = 10

// Delegate logs every database event.
type Delegate struct {
	logger *log.Logger
}

func (d *Delegate) DirectoryAdded(path string) error {
	d.logger.Infof("Directory added: %s", path)
	return nil
}

func (d *Delegate) DirectoryRemoved(path string) error {
	d.logger.Infof("Directory removed: %s", path)
	return nil
}

func (d *Delegate) SongsChanged(songs []models.Song) error {
	d.logger.Infof("%d songs changed:", len(songs))
	d.logSongs(songs)
	return nil
}

func (d *Delegate) SongsRemoved(songs []models.Song) error {
	d.logger.Infof("%d songs removed:", len(songs))
	d.logSongs(songs)
	return nil
}

func (d *Delegate) TotalSongCountUpdated(total int) error {
	d.logger.Infof("Total song count is now %d", total)
	return nil
}

func (d *Delegate) logSongs(songs []models.Song) {
	for _, s := range songs {
		d.logger.Info(s.String())
	}
}

// Plugin is the loaded databasetest plugin.
type Plugin struct {
	db         *host.Database
	delegateID string
	sample     []models.Song
}

func (p *Plugin) Name() string { return Name }

// Close stops listening to the database.
func (p *Plugin) Close() error {
	p.db.UnregisterDelegate(p.delegateID)
	return nil
}

// Sample returns the songs logged at startup.
func (p *Plugin) Sample() []models.Song { return p.sample }

// New logs the first songs in the library and registers the logging delegate.
// Nothing stays registered when the library cannot be sampled.
func New(ctx context.Context, app *host.Application) (host.Plugin, error) {
	logger := app.Logger.WithPrefix(Name)
	p := &Plugin{db: app.Database}

	session, err := app.Database.Session(ctx)
	if err != nil {
		return nil, err
	}
	defer session.Close()

	if p.sample, err = session.Songs(SampleSize); err != nil {
		return nil, err
	}

	logger.Infof("First %d songs:", SampleSize)
	for _, s := range p.sample {
		logger.Info(s.String())
	}

	p.delegateID = app.Database.RegisterDelegate(&Delegate{logger: logger})
	return p, nil
}
