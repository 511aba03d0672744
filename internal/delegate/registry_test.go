package delegate

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

type songsChangedHandler interface {
	SongsChanged(songs []string) error
}

type totalUpdatedHandler interface {
	TotalSongCountUpdated(total int) error
}

type calls struct {
	mu  sync.Mutex
	got []string
}

func (c *calls) add(s string) {
	c.mu.Lock()
	c.got = append(c.got, s)
	c.mu.Unlock()
}

func (c *calls) list() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.got...)
}

type songsDelegate struct {
	name  string
	calls *calls
	err   error
	boom  bool
}

func (d *songsDelegate) SongsChanged(songs []string) error {
	d.calls.add(fmt.Sprintf("%s:%d", d.name, len(songs)))
	if d.boom {
		panic("delegate exploded")
	}
	return d.err
}

type totalDelegate struct {
	calls *calls
}

func (d *totalDelegate) TotalSongCountUpdated(total int) error {
	d.calls.add(fmt.Sprintf("total:%d", total))
	return nil
}

func songsChanged(songs []string) func(songsChangedHandler) error {
	return func(h songsChangedHandler) error { return h.SongsChanged(songs) }
}

func quietRegistry(opts ...Option) *Registry[any] {
	return New[any]("database", append([]Option{WithLogger(log.New(&bytes.Buffer{}))}, opts...)...)
}

func TestNotify(t *testing.T) {
	t.Run("invokes every implementing delegate in registration order", func(t *testing.T) {
		c := &calls{}
		r := quietRegistry()
		r.Register(&songsDelegate{name: "d1", calls: c})
		r.Register(&songsDelegate{name: "d2", calls: c})
		r.Register(&songsDelegate{name: "d3", calls: c})

		res := Notify(r, "songs_changed", songsChanged([]string{"a", "b"}))

		want := []string{"d1:2", "d2:2", "d3:2"}
		got := c.list()
		if len(got) != len(want) {
			t.Fatalf("got calls %v, want %v", got, want)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("call %d = %s, want %s", i, got[i], want[i])
			}
		}
		if res.Invoked != 3 || res.Skipped != 0 || len(res.Failures) != 0 {
			t.Errorf("unexpected result %+v", res)
		}
	})

	t.Run("skips delegates lacking the callback", func(t *testing.T) {
		c := &calls{}
		r := quietRegistry()
		r.Register(&totalDelegate{calls: c})
		r.Register(&songsDelegate{name: "d1", calls: c})

		res := Notify(r, "songs_changed", songsChanged(nil))
		if res.Invoked != 1 || res.Skipped != 1 {
			t.Errorf("unexpected result %+v", res)
		}

		res = Notify(r, "total_song_count_updated", func(h totalUpdatedHandler) error {
			return h.TotalSongCountUpdated(42)
		})
		if res.Invoked != 1 || res.Skipped != 1 {
			t.Errorf("unexpected result %+v", res)
		}

		got := c.list()
		if len(got) != 2 || got[0] != "d1:0" || got[1] != "total:42" {
			t.Errorf("unexpected calls %v", got)
		}
	})

	t.Run("a failing delegate does not stop delivery", func(t *testing.T) {
		c := &calls{}
		var observed []*CallbackError
		out := &bytes.Buffer{}
		r := New[any]("database",
			WithLogger(log.New(out)),
			WithErrorHandler(func(e *CallbackError) { observed = append(observed, e) }),
		)

		r.Register(&songsDelegate{name: "d1", calls: c, err: errors.New("bad row")})
		badID := r.Register(&songsDelegate{name: "d2", calls: c, boom: true})
		r.Register(&songsDelegate{name: "d3", calls: c})

		res := Notify(r, "songs_changed", songsChanged([]string{"x"}))

		if len(c.list()) != 3 {
			t.Fatalf("every delegate should be called, got %v", c.list())
		}
		if len(res.Failures) != 2 || len(observed) != 2 {
			t.Fatalf("expected 2 failures, got %d (observed %d)", len(res.Failures), len(observed))
		}
		if !errors.Is(res.Failures[0], ErrCallback) {
			t.Error("failure should match ErrCallback")
		}
		if res.Failures[1].DelegateID != badID || res.Failures[1].Panic == nil {
			t.Errorf("expected panic failure for %s, got %+v", badID, res.Failures[1])
		}
		if !bytes.Contains(out.Bytes(), []byte("delegate callback failed")) {
			t.Errorf("expected failure to be logged, got %q", out.String())
		}
	})

	t.Run("empty registry", func(t *testing.T) {
		res := Notify(quietRegistry(), "songs_changed", songsChanged(nil))
		if res.Invoked != 0 || res.Skipped != 0 {
			t.Errorf("unexpected result %+v", res)
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("Unregister", func(t *testing.T) {
		c := &calls{}
		r := quietRegistry()
		id1 := r.Register(&songsDelegate{name: "d1", calls: c})
		r.Register(&songsDelegate{name: "d2", calls: c})

		if !r.Unregister(id1) {
			t.Fatal("expected Unregister to succeed")
		}
		if r.Unregister(id1) {
			t.Error("second Unregister should report false")
		}

		Notify(r, "songs_changed", songsChanged(nil))
		if got := c.list(); len(got) != 1 || got[0] != "d2:0" {
			t.Errorf("unexpected calls %v", got)
		}
	})

	t.Run("UnregisterAll", func(t *testing.T) {
		r := quietRegistry()
		r.Register(&totalDelegate{calls: &calls{}})
		r.Register(&totalDelegate{calls: &calls{}})

		r.UnregisterAll()
		if r.Len() != 0 {
			t.Errorf("expected empty registry, got %d", r.Len())
		}
	})

	t.Run("snapshots are stable", func(t *testing.T) {
		r := quietRegistry()
		id := r.Register(&totalDelegate{calls: &calls{}})
		snap := r.Snapshot()

		r.Unregister(id)
		r.Register(&songsDelegate{calls: &calls{}})

		if len(snap) != 1 {
			t.Fatalf("snapshot changed to %d entries", len(snap))
		}
		if _, ok := snap[0].(*totalDelegate); !ok {
			t.Errorf("snapshot entry changed to %T", snap[0])
		}
	})

	t.Run("register and notify concurrently", func(t *testing.T) {
		c := &calls{}
		r := quietRegistry()

		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(2)
			go func(i int) {
				defer wg.Done()
				r.Register(&songsDelegate{name: fmt.Sprint(i), calls: c})
			}(i)
			go func() {
				defer wg.Done()
				Notify(r, "songs_changed", songsChanged(nil))
			}()
		}
		wg.Wait()

		if r.Len() != 50 {
			t.Errorf("expected 50 delegates, got %d", r.Len())
		}
	})
}
