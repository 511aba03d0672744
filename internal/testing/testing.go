// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/compose"
	"github.com/desertthunder/tunehost/internal/host"
	"github.com/desertthunder/tunehost/internal/logbridge"
	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/orm"
	"github.com/desertthunder/tunehost/internal/shared"
)

// RecordingSink collects every record handed to [RecordingSink.Sink].
type RecordingSink struct {
	mu      sync.Mutex
	records []logbridge.Record
}

// Sink implements [logbridge.Sink].
func (s *RecordingSink) Sink(level log.Level, name string, line int, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, logbridge.Record{Level: level, Name: name, Line: line, Message: message})
	return nil
}

// Records returns a copy of the collected records.
func (s *RecordingSink) Records() []logbridge.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]logbridge.Record(nil), s.records...)
}

// Messages returns the messages of records logged under name.
func (s *RecordingSink) Messages(name string) []string {
	var out []string
	for _, r := range s.Records() {
		if r.Name == name {
			out = append(out, r.Message)
		}
	}
	return out
}

// Recorder collects delegate callbacks as readable event strings.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) record(format string, args ...any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
	return nil
}

// Events returns the recorded events in delivery order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// DatabaseRecorder implements [host.DatabaseDelegate] by recording every callback.
type DatabaseRecorder struct {
	Recorder
}

func (d *DatabaseRecorder) DirectoryAdded(path string) error {
	return d.record("directory_added %s", path)
}

func (d *DatabaseRecorder) DirectoryRemoved(path string) error {
	return d.record("directory_removed %s", path)
}

func (d *DatabaseRecorder) SongsChanged(songs []models.Song) error {
	return d.record("songs_changed %d", len(songs))
}

func (d *DatabaseRecorder) SongsRemoved(songs []models.Song) error {
	return d.record("songs_removed %d", len(songs))
}

func (d *DatabaseRecorder) TotalSongCountUpdated(total int) error {
	return d.record("total_song_count_updated %d", total)
}

// PlayerRecorder implements [host.PlayerDelegate] by recording every callback.
type PlayerRecorder struct {
	Recorder
}

func (p *PlayerRecorder) StateChanged(state host.State) error {
	return p.record("state_changed %s", state)
}

func (p *PlayerRecorder) VolumeChanged(percent int) error {
	return p.record("volume_changed %d", percent)
}

func (p *PlayerRecorder) PositionChanged(seconds int) error {
	return p.record("position_changed %d", seconds)
}

func (p *PlayerRecorder) SongChanged(song models.Song) error {
	return p.record("song_changed %s", song)
}

// TestConfig returns the default configuration pointed at a fresh in-memory library.
func TestConfig(plugins ...string) *shared.Config {
	cfg := shared.DefaultConfig()
	cfg.Database.URL = "sqlite://memory"
	cfg.Player.PositionRate = 0
	cfg.Plugins.Enabled = plugins
	return cfg
}

// NewTestApp builds an application on an in-memory library with the session capability
// composed, and loads plugins from m. A nil logger discards output.
func NewTestApp(t *testing.T, logger *log.Logger, m *host.Manager, plugins ...string) *host.Application {
	t.Helper()

	if logger == nil {
		logger = log.New(io.Discard)
	}
	cfg := TestConfig(plugins...)

	sessions := host.NewSessionCache(cfg, logger.WithPrefix("orm"))
	dbType := host.NewDatabaseType()
	if _, err := compose.Compose(host.ORMDatabaseTypeName, dbType, orm.SessionTrait(sessions)); err != nil {
		t.Fatalf("failed to compose database type: %v", err)
	}
	dbType.Seal()

	app, err := host.New(cfg,
		host.WithLogger(logger),
		host.WithSessionCache(sessions),
		host.WithDatabaseType(dbType),
		host.WithPlugins(m),
	)
	if err != nil {
		t.Fatalf("failed to create application: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	if err := app.Plugins.Load(context.Background(), app, plugins); err != nil {
		t.Fatalf("failed to load plugins: %v", err)
	}
	return app
}

// SeedSongs adds songs to app's library.
func SeedSongs(t *testing.T, app *host.Application, songs ...models.Song) []models.Song {
	t.Helper()
	if err := app.Library.AddSongs(context.Background(), songs); err != nil {
		t.Fatalf("failed to seed songs: %v", err)
	}
	return songs
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
