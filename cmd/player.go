package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/shared"
	"github.com/urfave/cli/v3"
)

// PlayerDemo queues songs from the library and drives the player through each of the
// notifications player delegates can receive.
func (r *Runner) PlayerDemo(ctx context.Context, cmd *cli.Command) error {
	limit := int(cmd.Int("limit"))
	volume := int(cmd.Int("volume"))

	app, err := r.start(ctx, cmd)
	if err != nil {
		return err
	}
	defer r.closeApp(app)

	session, err := app.Database.Session(ctx)
	if err != nil {
		return err
	}
	songs, err := session.Songs(limit)
	session.Close()
	if err != nil {
		return err
	}
	if len(songs) == 0 {
		return fmt.Errorf("%w: run 'tunehost library scan-demo' first", shared.ErrEmptyLibrary)
	}

	p := app.Player
	r.writePlainHeader("Player demo")

	p.SetQueue(songs)
	p.Play()
	r.step(p, "play")

	p.SetVolumePercent(volume)
	r.step(p, "volume")

	p.Advance(10 * time.Second)
	r.step(p, "advance 10s")

	p.SeekToSeconds(60)
	r.step(p, "seek 1:00")

	p.ToggleMute()
	r.step(p, "mute")
	p.ToggleMute()
	r.step(p, "unmute")

	p.Next()
	r.step(p, "next")

	p.Pause()
	r.step(p, "pause")

	p.Stop()
	r.step(p, "stop")
	return nil
}

func (r *Runner) step(p *host.Player, label string) {
	song := "-"
	if s, ok := p.CurrentSong(); ok {
		song = s.String()
	}
	r.writePlain("%-12s %-8s vol %3d%%  pos %4ds  %s\n", label, p.State(), p.VolumePercent(), p.PositionSeconds(), song)
}
