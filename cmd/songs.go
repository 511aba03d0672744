package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunehost/internal/formatter"
	"github.com/desertthunder/tunehost/internal/models"
	"github.com/urfave/cli/v3"
)

// SongsList lists songs through a session of the host database.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	limit := int(cmd.Int("limit"))
	artist := cmd.String("artist")
	output := cmd.String("output")

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

	var songs []models.Song
	title := "Songs"
	if artist != "" {
		title = "Songs by " + artist
		songs, err = session.SongsByArtist(artist)
		if err == nil && limit > 0 && len(songs) > limit {
			songs = songs[:limit]
		}
	} else {
		songs, err = session.Songs(limit)
	}
	if err != nil {
		return err
	}

	r.logger.Debugf("listing %d songs as %s", len(songs), format)

	if output != "" {
		if err := formatter.WriteExport(format, title, songs, output); err != nil {
			return err
		}
		r.writePlain("%s\n", r.styles.OK(fmt.Sprintf("✓ Wrote %d songs to %s", len(songs), output)))
		return nil
	}
	return formatter.Render(r.output, format, title, songs)
}

// SongsRandom prints one available song picked at random.
func (r *Runner) SongsRandom(ctx context.Context, cmd *cli.Command) error {
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

	song, err := session.RandomSong()
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", song)
}

// SongsCount prints the number of available songs.
func (r *Runner) SongsCount(ctx context.Context, cmd *cli.Command) error {
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

	n, err := session.SongCount()
	if err != nil {
		return err
	}
	return r.writePlain("%d\n", n)
}
