package host

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/orm"
	"github.com/desertthunder/tunehost/internal/repositories"
)

// Library is the host's library backend. It writes scan results to the library tables and
// then tells database delegates what changed.
type Library struct {
	db       *Database
	sessions *orm.Cache
	logger   *log.Logger
	now      func() time.Time
}

// NewLibrary creates a library writing through db's cached connection pool.
func NewLibrary(db *Database, sessions *orm.Cache, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.Default().WithPrefix("library")
	}
	return &Library{db: db, sessions: sessions, logger: logger, now: time.Now}
}

func (l *Library) repo(ctx context.Context) (*repositories.LibraryRepository, error) {
	f, err := l.sessions.Factory(ctx, l.db)
	if err != nil {
		return nil, err
	}
	return repositories.NewLibraryRepository(f.DB()), nil
}

// AddDirectory records a watched directory and its subdirectories.
func (l *Library) AddDirectory(ctx context.Context, path string, subdirs ...string) (models.Directory, error) {
	repo, err := l.repo(ctx)
	if err != nil {
		return models.Directory{}, err
	}

	dir := models.Directory{Path: path, Subdirs: len(subdirs) > 0}
	if err := repo.AddDirectory(ctx, &dir); err != nil {
		return models.Directory{}, err
	}

	mtime := l.now().Unix()
	found := make([]models.Subdirectory, len(subdirs))
	for i, s := range subdirs {
		found[i] = models.Subdirectory{DirectoryID: dir.ID, Path: s, MTime: mtime}
	}
	if len(found) > 0 {
		if err := repo.AddSubdirectories(ctx, found); err != nil {
			return models.Directory{}, err
		}
	}
	dir.Subdirectories = found

	l.logger.Debug("directory discovered", "path", path, "subdirs", len(found))
	l.db.DirectoryDiscovered(dir, found)
	return dir, nil
}

// RemoveDirectory deletes a directory and every song below it.
func (l *Library) RemoveDirectory(ctx context.Context, id int64) error {
	repo, err := l.repo(ctx)
	if err != nil {
		return err
	}

	dir, err := repo.Directory(ctx, id)
	if err != nil {
		return err
	}
	if err := repo.RemoveDirectory(ctx, id); err != nil {
		return err
	}

	l.db.DirectoryDeleted(*dir)
	return l.updateCount(ctx, repo)
}

// AddSongs records discovered songs, setting their IDs.
func (l *Library) AddSongs(ctx context.Context, songs []models.Song) error {
	repo, err := l.repo(ctx)
	if err != nil {
		return err
	}

	now := l.now().Unix()
	for i := range songs {
		if songs[i].CTime == 0 {
			songs[i].CTime = now
		}
		if songs[i].MTime == 0 {
			songs[i].MTime = now
		}
	}
	if err := repo.AddSongs(ctx, songs); err != nil {
		return err
	}

	l.db.SongsDiscovered(songs)
	return l.updateCount(ctx, repo)
}

// RemoveSongs deletes songs by ID. Unknown IDs are ignored.
func (l *Library) RemoveSongs(ctx context.Context, ids ...int64) error {
	repo, err := l.repo(ctx)
	if err != nil {
		return err
	}

	removed, err := repo.RemoveSongs(ctx, ids)
	if err != nil {
		return err
	}
	if len(removed) == 0 {
		return nil
	}

	l.db.SongsDeleted(removed)
	return l.updateCount(ctx, repo)
}

// MarkUnavailable hides songs whose files are gone while keeping their statistics.
func (l *Library) MarkUnavailable(ctx context.Context, ids ...int64) error {
	repo, err := l.repo(ctx)
	if err != nil {
		return err
	}
	if err := repo.MarkUnavailable(ctx, ids); err != nil {
		return err
	}
	return l.updateCount(ctx, repo)
}

// RecordPlay counts a play of song id.
func (l *Library) RecordPlay(ctx context.Context, id int64) error {
	repo, err := l.repo(ctx)
	if err != nil {
		return err
	}
	return repo.RecordPlay(ctx, id, l.now().Unix())
}

func (l *Library) updateCount(ctx context.Context, repo *repositories.LibraryRepository) error {
	n, err := repo.CountSongs(ctx)
	if err != nil {
		return err
	}
	l.db.TotalSongCountUpdated(int(n))
	return nil
}
