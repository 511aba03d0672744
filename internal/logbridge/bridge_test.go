package logbridge

import (
	"bytes"
	"errors"
	"runtime"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
)

type recordingSink struct {
	mu      sync.Mutex
	records []Record
	err     error
	panics  bool
}

func (s *recordingSink) sink(level log.Level, name string, line int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, Record{Level: level, Name: name, Line: line, Message: message})
	if s.panics {
		panic("sink exploded")
	}
	return s.err
}

func (s *recordingSink) all() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Record(nil), s.records...)
}

func TestBridge(t *testing.T) {
	t.Run("forwards a warning exactly once", func(t *testing.T) {
		rs := &recordingSink{}
		b := New(rs.sink)
		logger := b.Logger().WithPrefix("storage")

		_, _, line, _ := runtime.Caller(0)
		logger.Warn("disk full")

		records := rs.all()
		if len(records) != 1 {
			t.Fatalf("expected 1 sink invocation, got %d", len(records))
		}

		got := records[0]
		want := Record{Level: log.WarnLevel, Name: "storage", Line: line + 1, Message: "disk full"}
		if got != want {
			t.Errorf("got %+v, want %+v", got, want)
		}
	})

	t.Run("forwards formatted messages", func(t *testing.T) {
		rs := &recordingSink{}
		b := New(rs.sink)

		b.Logger().WithPrefix("databasetest").Infof("%d songs changed", 3)

		records := rs.all()
		if len(records) != 1 || records[0].Message != "3 songs changed" {
			t.Fatalf("unexpected records %+v", records)
		}
		if records[0].Level != log.InfoLevel {
			t.Errorf("expected info level, got %v", records[0].Level)
		}
	})

	t.Run("forwards key/value fields with the message", func(t *testing.T) {
		rs := &recordingSink{}
		logger := New(rs.sink).Logger().WithPrefix("database")

		logger.Error("delegate callback failed", "event", "songs_changed", "err", errors.New("boom"))
		logger.Info("scanned", "dir", "/music/New Albums", "songs", 12, "empty", "")

		records := rs.all()
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if want := "delegate callback failed event=songs_changed err=boom"; records[0].Message != want {
			t.Errorf("got message %q, want %q", records[0].Message, want)
		}
		if want := `scanned dir="/music/New Albums" songs=12 empty=""`; records[1].Message != want {
			t.Errorf("got message %q, want %q", records[1].Message, want)
		}
		if records[0].Name != "database" || records[0].Level != log.ErrorLevel {
			t.Errorf("unexpected record %+v", records[0])
		}
	})

	t.Run("forwards all severities from debug", func(t *testing.T) {
		rs := &recordingSink{}
		logger := New(rs.sink).Logger()

		logger.Debug("d")
		logger.Info("i")
		logger.Warn("w")
		logger.Error("e")

		records := rs.all()
		if len(records) != 4 {
			t.Fatalf("expected 4 records, got %d", len(records))
		}
		levels := []log.Level{log.DebugLevel, log.InfoLevel, log.WarnLevel, log.ErrorLevel}
		for i, ll := range levels {
			if records[i].Level != ll {
				t.Errorf("record %d level = %v, want %v", i, records[i].Level, ll)
			}
		}
	})

	t.Run("respects the minimum level", func(t *testing.T) {
		rs := &recordingSink{}
		logger := New(rs.sink, WithLevel(log.WarnLevel)).Logger()

		logger.Info("ignored")
		logger.Error("kept")

		records := rs.all()
		if len(records) != 1 || records[0].Message != "kept" {
			t.Fatalf("unexpected records %+v", records)
		}
	})

	t.Run("sink errors are reported once and swallowed", func(t *testing.T) {
		rs := &recordingSink{err: errors.New("host gone")}
		fallback := &bytes.Buffer{}
		b := New(rs.sink, WithFallback(fallback))
		logger := b.Logger()

		logger.Error("first")
		logger.Error("second")

		if len(rs.all()) != 2 {
			t.Errorf("sink should still be called for every record")
		}
		if n := strings.Count(fallback.String(), "logbridge:"); n != 1 {
			t.Errorf("expected one fallback diagnostic, got %d: %q", n, fallback.String())
		}
		if b.Failed() != 2 || b.Forwarded() != 0 {
			t.Errorf("unexpected counters failed=%d forwarded=%d", b.Failed(), b.Forwarded())
		}
	})

	t.Run("sink panics do not reach the call site", func(t *testing.T) {
		rs := &recordingSink{panics: true}
		fallback := &bytes.Buffer{}
		b := New(rs.sink, WithFallback(fallback))

		b.Logger().Info("boom")

		if !strings.Contains(fallback.String(), "sink panicked") {
			t.Errorf("expected panic diagnostic, got %q", fallback.String())
		}
	})

	t.Run("Write ignores malformed input", func(t *testing.T) {
		rs := &recordingSink{}
		b := New(rs.sink)

		input := []byte("not json\n{\"level\":\"bogus\",\"msg\":\"x\"}\n")
		n, err := b.Write(input)
		if err != nil || n != len(input) {
			t.Fatalf("Write() = %d, %v", n, err)
		}
		if len(rs.all()) != 0 {
			t.Errorf("expected no forwarded records")
		}
	})

	t.Run("Write splits multiple records", func(t *testing.T) {
		rs := &recordingSink{}
		b := New(rs.sink)

		input := `{"level":"info","prefix":"a","caller":"x/y.go:7","msg":"one"}` + "\n" +
			`{"level":"error","caller":"x/y.go:9","msg":"two"}` + "\n"
		if _, err := b.Write([]byte(input)); err != nil {
			t.Fatal(err)
		}

		records := rs.all()
		if len(records) != 2 {
			t.Fatalf("expected 2 records, got %d", len(records))
		}
		if records[0] != (Record{Level: log.InfoLevel, Name: "a", Line: 7, Message: "one"}) {
			t.Errorf("unexpected first record %+v", records[0])
		}
		if records[1].Name != "" || records[1].Line != 9 {
			t.Errorf("unexpected second record %+v", records[1])
		}
	})
}

func TestCallerLine(t *testing.T) {
	tc := []struct {
		caller string
		want   int
	}{
		{caller: "logbridge/bridge_test.go:42", want: 42},
		{caller: "C:/src/main.go:7", want: 7},
		{caller: "", want: 0},
		{caller: "main.go", want: 0},
		{caller: "main.go:abc", want: 0},
	}

	for _, tt := range tc {
		t.Run(tt.caller, func(t *testing.T) {
			if got := callerLine(tt.caller); got != tt.want {
				t.Errorf("callerLine(%q) = %d, want %d", tt.caller, got, tt.want)
			}
		})
	}
}

func TestMulti(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{err: errors.New("nope")}
	err := Multi(a.sink, b.sink)(log.InfoLevel, "x", 1, "hello")

	if err == nil {
		t.Error("expected the failing sink's error")
	}
	if len(a.all()) != 1 || len(b.all()) != 1 {
		t.Error("every sink should receive the record")
	}
}

func TestInstall(t *testing.T) {
	previous := log.Default()
	t.Cleanup(func() { log.SetDefault(previous) })

	rs := &recordingSink{}
	b := Install(rs.sink)

	if again := Install(func(log.Level, string, int, string) error { return nil }); again != b {
		t.Fatal("second Install should return the first bridge")
	}
	if Installed() != b {
		t.Fatal("Installed should report the bridge")
	}

	Named("plugin").Warn("disk full")

	records := rs.all()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].Name != "plugin" || records[0].Message != "disk full" || records[0].Level != log.WarnLevel {
		t.Errorf("unexpected record %+v", records[0])
	}
}

func TestConsoleSink(t *testing.T) {
	out := &bytes.Buffer{}
	sink := ConsoleSink(log.New(out))

	if err := sink(log.WarnLevel, "player", 12, "volume clipped"); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	if !strings.Contains(got, "player") || !strings.Contains(got, "volume clipped") || !strings.Contains(got, "line=12") {
		t.Errorf("unexpected console output %q", got)
	}
}
