package host

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/compose"
	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/orm"
	"github.com/desertthunder/tunehost/internal/shared"
)

type journal struct {
	mu     sync.Mutex
	events []string
}

func (j *journal) add(format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, fmt.Sprintf(format, args...))
}

func (j *journal) all() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.events...)
}

// songsOnly handles a single database callback.
type songsOnly struct {
	name string
	j    *journal
}

func (s *songsOnly) SongsChanged(songs []models.Song) error {
	s.j.add("%s songs_changed %d", s.name, len(songs))
	return nil
}

type fullDatabase struct {
	BaseDatabaseDelegate
	j *journal
}

func (f *fullDatabase) DirectoryAdded(path string) error {
	f.j.add("directory_added %s", path)
	return nil
}

func (f *fullDatabase) SongsChanged(songs []models.Song) error {
	f.j.add("songs_changed %d", len(songs))
	return nil
}

func (f *fullDatabase) SongsRemoved(songs []models.Song) error {
	f.j.add("songs_removed %d", len(songs))
	return nil
}

func (f *fullDatabase) TotalSongCountUpdated(total int) error {
	f.j.add("total %d", total)
	return nil
}

type failing struct{}

func (failing) SongsChanged([]models.Song) error { return errors.New("delegate broke") }

type panicking struct{}

func (panicking) SongsChanged([]models.Song) error { panic("delegate exploded") }

func quiet() *log.Logger {
	return log.New(&bytes.Buffer{})
}

func testConfig() *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Database.URL = "sqlite://memory"
	cfg.Player.PositionRate = 0
	cfg.Plugins.Enabled = nil
	return cfg
}

// newComposedApp builds an application whose database has the session capability.
func newComposedApp(t *testing.T) *Application {
	t.Helper()

	cfg := testConfig()
	sessions := NewSessionCache(cfg, quiet())
	dbType := NewDatabaseType()
	if _, err := compose.Compose(ORMDatabaseTypeName, dbType, orm.SessionTrait(sessions)); err != nil {
		t.Fatal(err)
	}
	dbType.Seal()

	app, err := New(cfg, WithLogger(quiet()), WithSessionCache(sessions), WithDatabaseType(dbType))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { app.Close() })
	return app
}

func TestDatabaseDelegates(t *testing.T) {
	songs := []models.Song{models.NewSong("Heroes", "David Bowie", "Heroes", "file:///heroes.flac")}

	t.Run("songs changed reaches implementing delegates once in order", func(t *testing.T) {
		j := &journal{}
		db := NewDatabase(NewDatabaseType(), "sqlite://memory", quiet())
		db.RegisterDelegate(&songsOnly{name: "first", j: j})
		db.RegisterDelegate(&struct{ name string }{name: "nothing"})
		db.RegisterDelegate(&songsOnly{name: "second", j: j})

		res := db.SongsDiscovered(songs)

		want := []string{"first songs_changed 1", "second songs_changed 1"}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}
		if res.Invoked != 2 || res.Skipped != 1 {
			t.Errorf("expected 2 invoked and 1 skipped, got %+v", res)
		}
	})

	t.Run("delegates lacking a callback are skipped", func(t *testing.T) {
		j := &journal{}
		db := NewDatabase(NewDatabaseType(), "sqlite://memory", quiet())
		db.RegisterDelegate(&songsOnly{name: "songs", j: j})

		res := db.DirectoryDiscovered(models.Directory{Path: "/music"}, nil)
		if res.Invoked != 0 || res.Skipped != 1 || len(j.all()) != 0 {
			t.Errorf("expected the delegate to be skipped, got %+v and %v", res, j.all())
		}
	})

	t.Run("failures do not stop delivery", func(t *testing.T) {
		j := &journal{}
		db := NewDatabase(NewDatabaseType(), "sqlite://memory", quiet())
		db.RegisterDelegate(failing{})
		db.RegisterDelegate(panicking{})
		db.RegisterDelegate(&songsOnly{name: "last", j: j})

		res := db.SongsDiscovered(songs)

		if len(res.Failures) != 2 {
			t.Fatalf("expected 2 failures, got %d", len(res.Failures))
		}
		if res.Failures[1].Panic == nil {
			t.Error("expected the panic to be captured")
		}
		if got := j.all(); len(got) != 1 {
			t.Errorf("expected the last delegate to run, got %v", got)
		}
	})

	t.Run("every event maps to its callback", func(t *testing.T) {
		j := &journal{}
		db := NewDatabase(NewDatabaseType(), "sqlite://memory", quiet())
		db.RegisterDelegate(&fullDatabase{j: j})

		db.DirectoryDiscovered(models.Directory{Path: "/music"}, nil)
		db.DirectoryDeleted(models.Directory{Path: "/music"})
		db.SongsDiscovered(songs)
		db.SongsDeleted(songs)
		db.TotalSongCountUpdated(41)

		want := []string{"directory_added /music", "songs_changed 1", "songs_removed 1", "total 41"}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}
	})

	t.Run("unregister", func(t *testing.T) {
		j := &journal{}
		db := NewDatabase(NewDatabaseType(), "sqlite://memory", quiet())
		a := db.RegisterDelegate(&songsOnly{name: "a", j: j})
		db.RegisterDelegate(&songsOnly{name: "b", j: j})

		if !db.UnregisterDelegate(a) {
			t.Fatal("expected a to be unregistered")
		}
		if db.UnregisterDelegate(a) {
			t.Error("second unregister should report false")
		}
		db.SongsDiscovered(songs)
		if got := j.all(); !reflect.DeepEqual(got, []string{"b songs_changed 1"}) {
			t.Errorf("events = %v", got)
		}

		db.UnregisterAllDelegates()
		if db.Delegates() != 0 {
			t.Errorf("expected no delegates, got %d", db.Delegates())
		}
	})
}

func TestDatabaseComposition(t *testing.T) {
	ctx := context.Background()

	t.Run("native connection url method", func(t *testing.T) {
		db := NewDatabase(NewDatabaseType(), "sqlite:///var/lib/library.db", quiet())
		v, err := db.Call(ctx, ConnectionURLMethod)
		if err != nil {
			t.Fatal(err)
		}
		if v != "sqlite:///var/lib/library.db" {
			t.Errorf("unexpected url %v", v)
		}
	})

	t.Run("session capability reaches databases created before composition", func(t *testing.T) {
		cfg := testConfig()
		sessions := NewSessionCache(cfg, quiet())
		t.Cleanup(func() { sessions.Close() })

		dbType := NewDatabaseType()
		early := NewDatabase(dbType, "sqlite://memory", quiet())
		if early.Has(orm.SessionMethod) {
			t.Fatal("session should not exist before composition")
		}
		if _, err := early.Session(ctx); !errors.Is(err, compose.ErrNoSuchMethod) {
			t.Fatalf("expected ErrNoSuchMethod, got %v", err)
		}

		if _, err := compose.Compose(ORMDatabaseTypeName, dbType, orm.SessionTrait(sessions)); err != nil {
			t.Fatal(err)
		}
		late := NewDatabase(dbType, "sqlite://memory", quiet())

		for name, db := range map[string]*Database{"early": early, "late": late} {
			s, err := db.Session(ctx)
			if err != nil {
				t.Fatalf("%s: %v", name, err)
			}
			s.Close()
		}
		if sessions.Len() != 2 {
			t.Errorf("expected one factory per database, got %d", sessions.Len())
		}
	})

	t.Run("conflicting capability is rejected", func(t *testing.T) {
		dbType := NewDatabaseType()
		_, err := compose.Compose("Shadow", dbType, compose.Trait{
			Name: "shadow",
			Methods: map[string]compose.Method{
				ConnectionURLMethod: func(context.Context, any, ...any) (any, error) { return "other", nil },
			},
		})

		var conflict *compose.InjectionConflictError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected InjectionConflictError, got %v", err)
		}
		if conflict.Method != ConnectionURLMethod || conflict.Existing != DatabaseTypeName {
			t.Errorf("unexpected conflict %+v", conflict)
		}
	})
}

func TestLibrary(t *testing.T) {
	ctx := context.Background()

	t.Run("scan results reach delegates and sessions", func(t *testing.T) {
		app := newComposedApp(t)
		j := &journal{}
		app.Database.RegisterDelegate(&fullDatabase{j: j})

		dir, err := app.Library.AddDirectory(ctx, "/music", "/music/bowie")
		if err != nil {
			t.Fatal(err)
		}
		songs := []models.Song{
			models.NewSong("Heroes", "David Bowie", "Heroes", "file:///music/bowie/heroes.flac"),
			models.NewSong("Ashes to Ashes", "David Bowie", "Scary Monsters", "file:///music/bowie/ashes.flac"),
		}
		for i := range songs {
			songs[i].DirectoryID = dir.ID
		}
		if err := app.Library.AddSongs(ctx, songs); err != nil {
			t.Fatal(err)
		}
		if err := app.Library.RemoveSongs(ctx, songs[0].ID); err != nil {
			t.Fatal(err)
		}

		want := []string{"directory_added /music", "songs_changed 2", "total 2", "songs_removed 1", "total 1"}
		if got := j.all(); !reflect.DeepEqual(got, want) {
			t.Errorf("events = %v, want %v", got, want)
		}

		s, err := app.Database.Session(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()

		inDir, err := s.SongsInDirectory(dir.ID)
		if err != nil {
			t.Fatal(err)
		}
		if len(inDir) != 1 || inDir[0].Title != "Ashes to Ashes" {
			t.Errorf("unexpected songs %v", inDir)
		}

		dirs, err := s.Directories()
		if err != nil {
			t.Fatal(err)
		}
		if len(dirs) != 1 || len(dirs[0].Subdirectories) != 1 {
			t.Errorf("expected one directory with one subdirectory, got %+v", dirs)
		}
	})

	t.Run("removing a directory removes its songs", func(t *testing.T) {
		app := newComposedApp(t)
		j := &journal{}
		app.Database.RegisterDelegate(&fullDatabase{j: j})

		dir, err := app.Library.AddDirectory(ctx, "/music")
		if err != nil {
			t.Fatal(err)
		}
		song := models.NewSong("Heroes", "David Bowie", "Heroes", "file:///music/heroes.flac")
		song.DirectoryID = dir.ID
		if err := app.Library.AddSongs(ctx, []models.Song{song}); err != nil {
			t.Fatal(err)
		}
		if err := app.Library.RemoveDirectory(ctx, dir.ID); err != nil {
			t.Fatal(err)
		}

		events := j.all()
		if events[len(events)-1] != "total 0" {
			t.Errorf("expected final total of 0, got %v", events)
		}
		if err := app.Library.RemoveDirectory(ctx, dir.ID); !errors.Is(err, shared.ErrDirectoryNotFound) {
			t.Errorf("expected ErrDirectoryNotFound, got %v", err)
		}
	})

	t.Run("mark unavailable and record play", func(t *testing.T) {
		app := newComposedApp(t)
		j := &journal{}
		app.Database.RegisterDelegate(&fullDatabase{j: j})

		songs := []models.Song{
			models.NewSong("A", "X", "Y", "file:///a"),
			models.NewSong("B", "X", "Y", "file:///b"),
		}
		if err := app.Library.AddSongs(ctx, songs); err != nil {
			t.Fatal(err)
		}
		if err := app.Library.MarkUnavailable(ctx, songs[1].ID); err != nil {
			t.Fatal(err)
		}
		if err := app.Library.RecordPlay(ctx, songs[0].ID); err != nil {
			t.Fatal(err)
		}

		events := j.all()
		if events[len(events)-1] != "total 1" {
			t.Errorf("expected total of 1 after marking unavailable, got %v", events)
		}

		s, err := app.Database.Session(ctx)
		if err != nil {
			t.Fatal(err)
		}
		defer s.Close()
		got, err := s.Song(songs[0].ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.PlayCount != 1 || got.LastPlayed <= 0 {
			t.Errorf("expected a recorded play, got count %d last %d", got.PlayCount, got.LastPlayed)
		}
	})
}
