package host

import (
	"reflect"
	"testing"
	"time"

	"github.com/desertthunder/tunehost/internal/models"
)

type playerJournal struct {
	BasePlayerDelegate
	j *journal
}

func (p *playerJournal) StateChanged(s State) error {
	p.j.add("state %s", s)
	return nil
}

func (p *playerJournal) VolumeChanged(v int) error {
	p.j.add("volume %d", v)
	return nil
}

func (p *playerJournal) PositionChanged(s int) error {
	p.j.add("position %d", s)
	return nil
}

func (p *playerJournal) SongChanged(s models.Song) error {
	p.j.add("song %s", s.Title)
	return nil
}

// positionOnly mirrors a delegate that only cares about seeks.
type positionOnly struct {
	j *journal
}

func (p *positionOnly) PositionChanged(s int) error {
	p.j.add("seeked to %d", s)
	return nil
}

func queue() []models.Song {
	a := models.NewSong("One", "A", "X", "file:///1")
	a.Length = int64(3 * time.Minute)
	b := models.NewSong("Two", "B", "X", "file:///2")
	return []models.Song{a, b}
}

func newTestPlayer(rate float64) (*Player, *journal) {
	j := &journal{}
	p := NewPlayer(PlayerOptions{Volume: 50, PositionRate: rate, Logger: quiet()})
	p.RegisterDelegate(&playerJournal{j: j})
	return p, j
}

func TestPlayer(t *testing.T) {
	t.Run("play without a song stays stopped", func(t *testing.T) {
		p, j := newTestPlayer(0)
		p.Play()
		if p.State() != Stopped || len(j.all()) != 0 {
			t.Errorf("expected no change, got %s and %v", p.State(), j.all())
		}
	})

	t.Run("state transitions", func(t *testing.T) {
		p, j := newTestPlayer(0)
		p.SetQueue(queue())
		p.Play()
		p.Play()
		p.PlayPause()
		p.PlayPause()
		p.Stop()
		p.Pause()

		want := []string{"song One", "state playing", "state paused", "state playing", "state stopped"}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}
	})

	t.Run("SetState maps to controls", func(t *testing.T) {
		p, _ := newTestPlayer(0)
		p.SetQueue(queue())

		for _, s := range []State{Playing, Paused, Stopped} {
			p.SetState(s)
			if p.State() != s {
				t.Errorf("SetState(%s) left player %s", s, p.State())
			}
		}
	})

	t.Run("next and previous", func(t *testing.T) {
		p, j := newTestPlayer(0)
		p.SetQueue(queue())
		p.Play()
		p.Next()

		if song, ok := p.CurrentSong(); !ok || song.Title != "Two" {
			t.Errorf("expected Two, got %v", song)
		}
		p.Previous()
		p.Previous()
		p.Next()
		p.Next()

		want := []string{
			"song One", "state playing",
			"song Two", "position 0",
			"song One", "position 0",
			"song Two", "position 0",
			"state stopped",
		}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}
	})

	t.Run("SetSong inserts after the current song", func(t *testing.T) {
		p, _ := newTestPlayer(0)
		p.SetQueue(queue())
		p.SetSong(models.NewSong("Inserted", "C", "Y", "file:///3"))
		p.Next()

		if song, _ := p.CurrentSong(); song.Title != "Two" {
			t.Errorf("expected the queue to continue with Two, got %s", song.Title)
		}
	})

	t.Run("volume", func(t *testing.T) {
		p, j := newTestPlayer(0)
		p.SetVolumePercent(150)
		p.SetVolumePercent(100)
		p.ToggleMute()
		if p.VolumePercent() != 0 {
			t.Errorf("expected muted volume 0, got %d", p.VolumePercent())
		}
		p.ToggleMute()
		p.SetVolumePercent(-5)

		want := []string{"volume 100", "volume 0", "volume 100", "volume 0"}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}
	})

	t.Run("seek clamps to the song length", func(t *testing.T) {
		p, _ := newTestPlayer(0)
		j := &journal{}
		p.RegisterDelegate(&positionOnly{j: j})
		p.SetQueue(queue())

		p.SeekToSeconds(90)
		p.SeekToSeconds(600)
		p.SeekToNanoseconds(-1)

		want := []string{"seeked to 90", "seeked to 180", "seeked to 0"}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}
		if p.PositionSeconds() != 0 {
			t.Errorf("expected position 0, got %d", p.PositionSeconds())
		}
	})

	t.Run("progress notifications are rate limited", func(t *testing.T) {
		p, _ := newTestPlayer(0.001)
		j := &journal{}
		p.RegisterDelegate(&positionOnly{j: j})
		p.SetQueue(queue())

		if p.Advance(time.Second) {
			t.Error("advance while stopped should not notify")
		}
		p.Play()
		if !p.Advance(time.Second) {
			t.Error("first progress update should notify")
		}
		if p.Advance(time.Second) {
			t.Error("second progress update should be throttled")
		}
		if p.PositionSeconds() != 2 {
			t.Errorf("position should still advance, got %d", p.PositionSeconds())
		}
		if got := j.all(); !reflect.DeepEqual(got, []string{"seeked to 1"}) {
			t.Errorf("events = %v", got)
		}
	})

	t.Run("unregistered delegates hear nothing", func(t *testing.T) {
		p := NewPlayer(PlayerOptions{Logger: quiet()})
		j := &journal{}
		id := p.RegisterDelegate(&playerJournal{j: j})
		p.UnregisterDelegate(id)
		p.RegisterDelegate(&playerJournal{j: j})
		p.UnregisterAllDelegates()

		p.SetVolumePercent(10)
		if len(j.all()) != 0 {
			t.Errorf("expected no events, got %v", j.all())
		}
	})
}

func TestStateString(t *testing.T) {
	tt := []struct {
		state State
		want  string
	}{
		{Stopped, "stopped"},
		{Playing, "playing"},
		{Paused, "paused"},
		{State(42), "stopped"},
	}
	for _, tc := range tt {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %s, want %s", tc.state, got, tc.want)
		}
	}
}
