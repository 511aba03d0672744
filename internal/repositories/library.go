package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/shared"
)

const songColumns = `directory, title, artist, album, albumartist, composer, track, disc, bpm, year, genre,
	comment, compilation, length, bitrate, samplerate, sampler, filename, unavailable, mtime, ctime,
	filesize, filetype, art_automatic, art_manual, playcount, skipcount, lastplayed, score, rating,
	forced_compilation_on, forced_compilation_off, effective_compilation, beginning, cue_path`

// LibraryRepository writes the library tables with plain database/sql.
type LibraryRepository struct {
	db *sql.DB
}

// NewLibraryRepository creates a new LibraryRepository with the given database connection
func NewLibraryRepository(db *sql.DB) *LibraryRepository {
	return &LibraryRepository{db: db}
}

// AddDirectory records a watched library directory and sets its ID.
func (r *LibraryRepository) AddDirectory(ctx context.Context, dir *models.Directory) error {
	if strings.TrimSpace(dir.Path) == "" {
		return fmt.Errorf("%w: directory path is required", shared.ErrInvalidInput)
	}

	result, err := r.db.ExecContext(ctx, `INSERT INTO directories (path, subdirs) VALUES (?, ?)`, dir.Path, dir.Subdirs)
	if err != nil {
		return fmt.Errorf("failed to insert directory: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get directory id: %w", err)
	}
	dir.ID = id
	return nil
}

// Directory retrieves a directory by ID.
func (r *LibraryRepository) Directory(ctx context.Context, id int64) (*models.Directory, error) {
	var dir models.Directory
	err := r.db.QueryRowContext(ctx, `SELECT ROWID, path, subdirs FROM directories WHERE ROWID = ?`, id).
		Scan(&dir.ID, &dir.Path, &dir.Subdirs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", shared.ErrDirectoryNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get directory: %w", err)
	}
	return &dir, nil
}

// Directories lists every directory in insertion order.
func (r *LibraryRepository) Directories(ctx context.Context) ([]models.Directory, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT ROWID, path, subdirs FROM directories ORDER BY ROWID`)
	if err != nil {
		return nil, fmt.Errorf("failed to query directories: %w", err)
	}
	defer rows.Close()

	var dirs []models.Directory
	for rows.Next() {
		var dir models.Directory
		if err := rows.Scan(&dir.ID, &dir.Path, &dir.Subdirs); err != nil {
			return nil, fmt.Errorf("failed to scan directory: %w", err)
		}
		dirs = append(dirs, dir)
	}
	return dirs, rows.Err()
}

// RemoveDirectory deletes a directory along with its subdirectories and songs.
func (r *LibraryRepository) RemoveDirectory(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE directory = ?`, id); err != nil {
			return fmt.Errorf("failed to delete directory songs: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM subdirectories WHERE directory = ?`, id); err != nil {
			return fmt.Errorf("failed to delete subdirectories: %w", err)
		}

		result, err := tx.ExecContext(ctx, `DELETE FROM directories WHERE ROWID = ?`, id)
		if err != nil {
			return fmt.Errorf("failed to delete directory: %w", err)
		}
		return checkAffected(result, fmt.Errorf("%w: %d", shared.ErrDirectoryNotFound, id))
	})
}

// AddSubdirectories records the subdirectories found under their parent directories.
func (r *LibraryRepository) AddSubdirectories(ctx context.Context, subdirs []models.Subdirectory) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO subdirectories (directory, path, mtime) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare subdirectory insert: %w", err)
		}
		defer stmt.Close()

		for i := range subdirs {
			s := &subdirs[i]
			result, err := stmt.ExecContext(ctx, s.DirectoryID, s.Path, s.MTime)
			if err != nil {
				return fmt.Errorf("failed to insert subdirectory %s: %w", s.Path, err)
			}
			if s.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get subdirectory id: %w", err)
			}
		}
		return nil
	})
}

// AddSongs inserts songs in one transaction and sets their IDs.
// Nothing is written when any song fails validation.
func (r *LibraryRepository) AddSongs(ctx context.Context, songs []models.Song) error {
	for _, s := range songs {
		if err := s.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
	}

	query := `INSERT INTO songs (` + songColumns + `) VALUES (` + placeholders(35) + `)`

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare song insert: %w", err)
		}
		defer stmt.Close()

		for i := range songs {
			s := &songs[i]
			result, err := stmt.ExecContext(ctx, songArgs(s)...)
			if err != nil {
				return fmt.Errorf("failed to insert song %s: %w", s.URL, err)
			}
			if s.ID, err = result.LastInsertId(); err != nil {
				return fmt.Errorf("failed to get song id: %w", err)
			}
		}
		return nil
	})
}

// RemoveSongs deletes songs by ID and returns the rows that were removed.
func (r *LibraryRepository) RemoveSongs(ctx context.Context, ids []int64) ([]models.Song, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var removed []models.Song
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			var s models.Song
			var directory sql.NullInt64
			err := tx.QueryRowContext(ctx, `SELECT ROWID, directory, title, artist, album, filename FROM songs WHERE ROWID = ?`, id).
				Scan(&s.ID, &directory, &s.Title, &s.Artist, &s.Album, &s.URL)
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to read song %d: %w", id, err)
			}
			s.DirectoryID = directory.Int64

			if _, err := tx.ExecContext(ctx, `DELETE FROM songs WHERE ROWID = ?`, id); err != nil {
				return fmt.Errorf("failed to delete song %d: %w", id, err)
			}
			removed = append(removed, s)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

// MarkUnavailable flags songs whose files have disappeared without deleting their statistics.
func (r *LibraryRepository) MarkUnavailable(ctx context.Context, ids []int64) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			result, err := tx.ExecContext(ctx, `UPDATE songs SET unavailable = 1 WHERE ROWID = ?`, id)
			if err != nil {
				return fmt.Errorf("failed to update song %d: %w", id, err)
			}
			if err := checkAffected(result, fmt.Errorf("%w: %d", shared.ErrSongNotFound, id)); err != nil {
				return err
			}
		}
		return nil
	})
}

// RecordPlay bumps the play count and last played time of a song.
func (r *LibraryRepository) RecordPlay(ctx context.Context, id, playedAt int64) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE songs SET playcount = playcount + 1, lastplayed = ? WHERE ROWID = ?`, playedAt, id)
	if err != nil {
		return fmt.Errorf("failed to record play: %w", err)
	}
	return checkAffected(result, fmt.Errorf("%w: %d", shared.ErrSongNotFound, id))
}

// CountSongs returns the number of available songs.
func (r *LibraryRepository) CountSongs(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM songs WHERE unavailable = 0`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count songs: %w", err)
	}
	return n, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func songArgs(s *models.Song) []any {
	var directory any
	if s.DirectoryID > 0 {
		directory = s.DirectoryID
	}

	return []any{
		directory, s.Title, s.Artist, s.Album, s.AlbumArtist, s.Composer, s.Track, s.Disc, s.BPM, s.Year, s.Genre,
		s.Comment, s.Compilation, s.Length, s.Bitrate, s.SampleRate, s.Sampler, s.URL, s.Unavailable, s.MTime, s.CTime,
		s.FileSize, s.FileType, s.ArtAutomatic, s.ArtManual, s.PlayCount, s.SkipCount, s.LastPlayed, s.Score, s.Rating,
		s.ForcedCompilationOn, s.ForcedCompilationOff, s.EffectiveCompilation, s.Beginning, s.CuePath,
	}
}
