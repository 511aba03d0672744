package randomsong

import (
	"context"
	"testing"

	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/logbridge"
	"github.com/desertthunder/tunehost/internal/models"
	tu "github.com/desertthunder/tunehost/internal/testing"
)

func setup(t *testing.T) (*host.Application, *tu.RecordingSink) {
	t.Helper()
	rec := &tu.RecordingSink{}
	m := host.NewManager(nil)
	if err := m.Register(Name, New); err != nil {
		t.Fatal(err)
	}
	return tu.NewTestApp(t, logbridge.New(rec.Sink).Logger(), m, Name), rec
}

func TestPlugin(t *testing.T) {
	ctx := context.Background()

	t.Run("adds a tools menu action", func(t *testing.T) {
		app, _ := setup(t)
		a, ok := app.UserInterface.FindAction(host.MenuTools, ActionText)
		if !ok {
			t.Fatal("menu action missing")
		}
		if !a.Enabled() {
			t.Error("action should be enabled")
		}
	})

	t.Run("trigger plays a random song", func(t *testing.T) {
		app, rec := setup(t)
		players := &tu.PlayerRecorder{}
		app.Player.RegisterDelegate(players)

		songs := tu.SeedSongs(t, app,
			models.NewSong("Heroes", "David Bowie", "Heroes", "file:///heroes.flac"),
			models.NewSong("Gone", "Nobody", "Nowhere", "file:///gone.flac"),
		)
		if err := app.Library.MarkUnavailable(ctx, songs[1].ID); err != nil {
			t.Fatal(err)
		}

		a, _ := app.UserInterface.FindAction(host.MenuTools, ActionText)
		if err := a.Trigger(ctx); err != nil {
			t.Fatal(err)
		}

		song, ok := app.Player.CurrentSong()
		if !ok || song.Title != "Heroes" {
			t.Errorf("expected Heroes to be current, got %v", song)
		}
		if app.Player.State() != host.Playing {
			t.Errorf("expected playing, got %s", app.Player.State())
		}

		events := players.Events()
		if len(events) != 2 || events[0] != "song_changed 'Heroes' by 'David Bowie'" || events[1] != "state_changed playing" {
			t.Errorf("unexpected player events %v", events)
		}
		if msgs := rec.Messages(Name); len(msgs) != 1 || msgs[0] != `playing random song song="'Heroes' by 'David Bowie'"` {
			t.Errorf("unexpected log %v", msgs)
		}
	})

	t.Run("empty library is not an error", func(t *testing.T) {
		app, rec := setup(t)
		a, _ := app.UserInterface.FindAction(host.MenuTools, ActionText)
		if err := a.Trigger(ctx); err != nil {
			t.Fatal(err)
		}
		if app.Player.State() != host.Stopped {
			t.Error("player should stay stopped")
		}
		if msgs := rec.Messages(Name); len(msgs) != 1 || msgs[0] != "no songs to pick from" {
			t.Errorf("unexpected log %v", msgs)
		}
	})

	t.Run("close removes the action", func(t *testing.T) {
		app, _ := setup(t)
		if err := app.Plugins.Close(); err != nil {
			t.Fatal(err)
		}
		if _, ok := app.UserInterface.FindAction(host.MenuTools, ActionText); ok {
			t.Error("action should be removed")
		}
	})
}
