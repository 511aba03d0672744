package host

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/compose"
	"github.com/desertthunder/tunehost/internal/delegate"
	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/orm"
)

const (
	// DatabaseTypeName names the host's database type.
	DatabaseTypeName = "Database"

	// ConnectionURLMethod is the native method returning the database's connection url.
	ConnectionURLMethod = "connection_url"
)

// NewDatabaseType returns a fresh base type for [Database] values.
// Capabilities such as [orm.SessionTrait] are composed onto it before it is sealed.
func NewDatabaseType() *compose.Type {
	return compose.NewType(DatabaseTypeName, compose.Trait{
		Name: DatabaseTypeName,
		Methods: map[string]compose.Method{
			ConnectionURLMethod: func(_ context.Context, recv any, _ ...any) (any, error) {
				return recv.(*Database).ConnectionURL(), nil
			},
		},
	})
}

// Database is the plugin view of the music library.
//
// It dispatches named capabilities composed onto its type and fans library events out to
// registered delegates.
type Database struct {
	*compose.Object

	url       string
	logger    *log.Logger
	delegates *delegate.Registry[any]
}

// NewDatabase creates a database of type typ bound to url.
func NewDatabase(typ *compose.Type, url string, logger *log.Logger) *Database {
	if logger == nil {
		logger = log.Default().WithPrefix("database")
	}
	d := &Database{
		url:       url,
		logger:    logger,
		delegates: delegate.New[any]("database", delegate.WithLogger(logger)),
	}
	d.Object = compose.NewObject(typ, d)
	return d
}

// ConnectionURL implements [orm.Handle].
func (d *Database) ConnectionURL() string {
	return d.url
}

// Session opens an ORM session through the session capability.
func (d *Database) Session(ctx context.Context) (*orm.Session, error) {
	return orm.SessionOf(ctx, d)
}

// RegisterDelegate adds d to the end of the notification order and returns its registration id.
func (d *Database) RegisterDelegate(dg any) string {
	if !isDatabaseDelegate(dg) {
		d.logger.Warn("registered delegate handles no database events", "type", typeName(dg))
	}
	return d.delegates.Register(dg)
}

// UnregisterDelegate removes the delegate registered under id.
func (d *Database) UnregisterDelegate(id string) bool {
	return d.delegates.Unregister(id)
}

// UnregisterAllDelegates removes every delegate.
func (d *Database) UnregisterAllDelegates() {
	d.delegates.UnregisterAll()
}

// Delegates returns the number of registered delegates.
func (d *Database) Delegates() int {
	return d.delegates.Len()
}

// DirectoryDiscovered tells delegates a directory was added to the library.
func (d *Database) DirectoryDiscovered(dir models.Directory, _ []models.Subdirectory) delegate.Result {
	return delegate.Notify(d.delegates, "directory_added", func(h DirectoryAddedHandler) error {
		return h.DirectoryAdded(dir.Path)
	})
}

// DirectoryDeleted tells delegates a directory was removed from the library.
func (d *Database) DirectoryDeleted(dir models.Directory) delegate.Result {
	return delegate.Notify(d.delegates, "directory_removed", func(h DirectoryRemovedHandler) error {
		return h.DirectoryRemoved(dir.Path)
	})
}

// SongsDiscovered tells delegates songs were added or changed.
func (d *Database) SongsDiscovered(songs []models.Song) delegate.Result {
	return delegate.Notify(d.delegates, "songs_changed", func(h SongsChangedHandler) error {
		return h.SongsChanged(songs)
	})
}

// SongsDeleted tells delegates songs were removed.
func (d *Database) SongsDeleted(songs []models.Song) delegate.Result {
	return delegate.Notify(d.delegates, "songs_removed", func(h SongsRemovedHandler) error {
		return h.SongsRemoved(songs)
	})
}

// TotalSongCountUpdated tells delegates the number of available songs changed.
func (d *Database) TotalSongCountUpdated(total int) delegate.Result {
	return delegate.Notify(d.delegates, "total_song_count_updated", func(h TotalSongCountUpdatedHandler) error {
		return h.TotalSongCountUpdated(total)
	})
}
