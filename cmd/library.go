package main

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/shared"
	"github.com/urfave/cli/v3"
)

var demoCatalog = []struct {
	artist string
	album  string
	year   int
}{
	{"Broadcast", "Tender Buttons", 2005},
	{"Stereolab", "Dots and Loops", 1997},
	{"Boards of Canada", "Geogaddi", 2002},
	{"Cocteau Twins", "Heaven or Las Vegas", 1990},
}

// LibraryAdd records a library directory.
func (r *Runner) LibraryAdd(ctx context.Context, cmd *cli.Command) error {
	dirPath := cmd.StringArg("path")
	if dirPath == "" {
		return fmt.Errorf("%w: directory path", shared.ErrMissingArgument)
	}

	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	dir, err := app.Library.AddDirectory(ctx, dirPath, cmd.StringSlice("subdir")...)
	if err != nil {
		return fmt.Errorf("failed to add directory: %w", err)
	}

	r.writePlain("%s\n", r.styles.OK(fmt.Sprintf("✓ Added directory %d: %s", dir.ID, dir.Path)))
	for _, s := range dir.Subdirectories {
		r.writePlain("  %s\n", s.Path)
	}
	return nil
}

// LibraryRemove removes a library directory and its songs.
func (r *Runner) LibraryRemove(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("id")
	if raw == "" {
		return fmt.Errorf("%w: directory id", shared.ErrMissingArgument)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: directory id %q", shared.ErrInvalidArgument, raw)
	}

	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	if err := app.Library.RemoveDirectory(ctx, id); err != nil {
		return fmt.Errorf("failed to remove directory: %w", err)
	}

	r.writePlain("%s\n", r.styles.OK(fmt.Sprintf("✓ Removed directory %d", id)))
	return nil
}

// LibraryScanDemo adds a directory of generated songs, as a scan of a real directory would.
func (r *Runner) LibraryScanDemo(ctx context.Context, cmd *cli.Command) error {
	count := int(cmd.Int("count"))
	if count <= 0 {
		return fmt.Errorf("%w: count must be positive", shared.ErrInvalidArgument)
	}

	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	root := cmd.String("path")
	subdirs := make([]string, len(demoCatalog))
	for i, c := range demoCatalog {
		subdirs[i] = path.Join(root, c.artist)
	}

	dir, err := app.Library.AddDirectory(ctx, root, subdirs...)
	if err != nil {
		return fmt.Errorf("failed to add directory: %w", err)
	}

	songs := demoSongs(dir.ID, root, count)
	if err := app.Library.AddSongs(ctx, songs); err != nil {
		return fmt.Errorf("failed to add songs: %w", err)
	}

	r.writePlain("%s\n", r.styles.OK(fmt.Sprintf("✓ Scanned %s: %d songs", root, len(songs))))
	return nil
}

// LibraryDirectories lists the library directories with their subdirectories.
func (r *Runner) LibraryDirectories(ctx context.Context, cmd *cli.Command) error {
	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	session, err := app.Database.Session(ctx)
	if err != nil {
		return err
	}
	defer session.Close()

	dirs, err := session.Directories()
	if err != nil {
		return err
	}
	if len(dirs) == 0 {
		r.writePlain("%s\n", r.styles.Warn("No library directories."))
		return nil
	}

	for _, d := range dirs {
		r.writePlain("%d\t%s\n", d.ID, d.Path)
		for _, s := range d.Subdirectories {
			r.writePlain("\t  %s\n", s.Path)
		}
	}
	return nil
}

// demoSongs generates count songs spread over [demoCatalog].
func demoSongs(directoryID int64, root string, count int) []models.Song {
	songs := make([]models.Song, count)
	for i := range songs {
		c := demoCatalog[i%len(demoCatalog)]
		track := i/len(demoCatalog) + 1
		title := fmt.Sprintf("Track %02d", track)
		url := "file://" + path.Join(root, c.artist, fmt.Sprintf("%02d %s.flac", track, title))

		s := models.NewSong(title, c.artist, c.album, url)
		s.DirectoryID = directoryID
		s.Track = track
		s.Disc = 1
		s.Year = c.year
		s.Length = int64(3*time.Minute + time.Duration(i%60)*time.Second)
		songs[i] = s
	}
	return songs
}
