package orm

import (
	"errors"
	"fmt"
	"sync"

	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/shared"
	"gorm.io/gorm"
)

// Session is a short-lived unit of work. It is not safe for concurrent use;
// the caller must finish it with Commit, Rollback, or Close.
type Session struct {
	id string

	mu     sync.Mutex
	db     *gorm.DB
	tx     *gorm.DB
	closed bool
}

func newSession(id string, db *gorm.DB) *Session {
	return &Session{id: id, db: db}
}

// ID returns the session id.
func (s *Session) ID() string {
	return s.id
}

// DB returns the gorm handle for queries: the open transaction if any, otherwise the session itself.
func (s *Session) DB() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current()
}

func (s *Session) current() (*gorm.DB, error) {
	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.tx != nil {
		return s.tx, nil
	}
	return s.db, nil
}

// InTransaction reports whether Begin was called without a matching Commit or Rollback.
func (s *Session) InTransaction() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx != nil
}

// Begin opens a transaction on the session.
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.tx != nil {
		return ErrTransactionActive
	}

	tx := s.db.Begin()
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}
	s.tx = tx
	return nil
}

// Commit commits the open transaction.
func (s *Session) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return ErrNoTransaction
	}

	err := s.tx.Commit().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Rollback discards the open transaction.
func (s *Session) Rollback() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if s.tx == nil {
		return ErrNoTransaction
	}

	err := s.tx.Rollback().Error
	s.tx = nil
	if err != nil {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}
	return nil
}

// Close rolls back any open transaction and marks the session unusable. Closing twice is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if s.tx != nil {
		err := s.tx.Rollback().Error
		s.tx = nil
		if err != nil {
			return fmt.Errorf("failed to rollback on close: %w", err)
		}
	}
	return nil
}

// Songs returns up to limit songs in library order. A non-positive limit returns all songs.
func (s *Session) Songs(limit int) ([]models.Song, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	q := db.Order("ROWID")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var songs []models.Song
	if err := q.Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	return songs, nil
}

// SongsByArtist returns the songs of artist ordered by album, disc, and track.
func (s *Session) SongsByArtist(artist string) ([]models.Song, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	var songs []models.Song
	err = db.Where("artist = ?", artist).Order("album").Order("disc").Order("track").Find(&songs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query songs by artist: %w", err)
	}
	return songs, nil
}

// SongsInDirectory returns the songs below a library directory.
func (s *Session) SongsInDirectory(directoryID int64) ([]models.Song, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	var songs []models.Song
	if err := db.Where("directory = ?", directoryID).Order("ROWID").Find(&songs).Error; err != nil {
		return nil, fmt.Errorf("failed to query directory songs: %w", err)
	}
	return songs, nil
}

// SongCount returns the number of available songs.
func (s *Session) SongCount() (int64, error) {
	db, err := s.DB()
	if err != nil {
		return 0, err
	}

	var n int64
	if err := db.Model(&models.Song{}).Where("unavailable = ?", false).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

// RandomSong picks one available song uniformly at random.
func (s *Session) RandomSong() (models.Song, error) {
	db, err := s.DB()
	if err != nil {
		return models.Song{}, err
	}

	var song models.Song
	err = db.Where("unavailable = ?", false).Order("RANDOM()").Take(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Song{}, shared.ErrEmptyLibrary
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to pick a random song: %w", err)
	}
	return song, nil
}

// Song returns the song with the given id.
func (s *Session) Song(id int64) (models.Song, error) {
	db, err := s.DB()
	if err != nil {
		return models.Song{}, err
	}

	var song models.Song
	err = db.Where("ROWID = ?", id).Take(&song).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.Song{}, fmt.Errorf("%w: %d", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return models.Song{}, fmt.Errorf("failed to get song: %w", err)
	}
	return song, nil
}

// Directories returns every library directory with its subdirectories loaded.
func (s *Session) Directories() ([]models.Directory, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	var dirs []models.Directory
	if err := db.Preload("Subdirectories").Order("ROWID").Find(&dirs).Error; err != nil {
		return nil, fmt.Errorf("failed to query directories: %w", err)
	}
	return dirs, nil
}

// AddSong inserts song within the session and sets its ID.
func (s *Session) AddSong(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	db, err := s.DB()
	if err != nil {
		return err
	}

	if err := db.Create(song).Error; err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}
