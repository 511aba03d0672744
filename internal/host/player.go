package host

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunehost/internal/delegate"
	"github.com/desertthunder/tunehost/internal/models"
	"golang.org/x/time/rate"
)

// State is the playback state.
type State int

const (
	Stopped State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// PlayerOptions configures a [Player].
type PlayerOptions struct {
	// Volume is the initial volume percentage.
	Volume int

	// PositionRate caps progress notifications per second. Zero means unlimited.
	PositionRate float64

	Logger *log.Logger
}

// Player is the plugin view of playback.
//
// Control methods update the state and then notify delegates outside the lock, so delegates
// may call back into the player.
type Player struct {
	logger    *log.Logger
	delegates *delegate.Registry[any]
	progress  *rate.Limiter

	mu       sync.Mutex
	state    State
	volume   int
	unmuted  int
	muted    bool
	position time.Duration
	queue    []models.Song
	index    int
}

// NewPlayer creates a stopped player with an empty queue.
func NewPlayer(opts PlayerOptions) *Player {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default().WithPrefix("player")
	}

	limit := rate.Inf
	if opts.PositionRate > 0 {
		limit = rate.Limit(opts.PositionRate)
	}

	return &Player{
		logger:    logger,
		delegates: delegate.New[any]("player", delegate.WithLogger(logger)),
		progress:  rate.NewLimiter(limit, 1),
		volume:    clampPercent(opts.Volume),
		index:     -1,
	}
}

// RegisterDelegate adds d to the end of the notification order and returns its registration id.
func (p *Player) RegisterDelegate(d any) string {
	if !isPlayerDelegate(d) {
		p.logger.Warn("registered delegate handles no player events", "type", typeName(d))
	}
	return p.delegates.Register(d)
}

// UnregisterDelegate removes the delegate registered under id.
func (p *Player) UnregisterDelegate(id string) bool {
	return p.delegates.Unregister(id)
}

// UnregisterAllDelegates removes every delegate.
func (p *Player) UnregisterAllDelegates() {
	p.delegates.UnregisterAll()
}

// State returns the playback state.
func (p *Player) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// VolumePercent returns the volume, zero while muted.
func (p *Player) VolumePercent() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.volume
}

// PositionSeconds returns the playback position in whole seconds.
func (p *Player) PositionSeconds() int {
	return int(p.PositionNanoseconds() / int64(time.Second))
}

// PositionNanoseconds returns the playback position.
func (p *Player) PositionNanoseconds() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return int64(p.position)
}

// CurrentSong returns the song at the queue position, if any.
func (p *Player) CurrentSong() (models.Song, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current()
}

func (p *Player) current() (models.Song, bool) {
	if p.index < 0 || p.index >= len(p.queue) {
		return models.Song{}, false
	}
	return p.queue[p.index], true
}

// SetQueue replaces the play queue and rewinds to its first song.
func (p *Player) SetQueue(songs []models.Song) {
	p.mu.Lock()
	p.queue = append([]models.Song(nil), songs...)
	p.index = -1
	p.position = 0
	changed := len(p.queue) > 0
	if changed {
		p.index = 0
	}
	song, _ := p.current()
	p.mu.Unlock()

	if changed {
		p.notifySong(song)
	}
}

// SetSong makes song the current song, inserting it after the current queue position.
func (p *Player) SetSong(song models.Song) {
	p.mu.Lock()
	at := p.index + 1
	p.queue = append(p.queue[:at], append([]models.Song{song}, p.queue[at:]...)...)
	p.index = at
	p.position = 0
	p.mu.Unlock()

	p.notifySong(song)
}

// Play starts playback of the current song. Without a song the player stays stopped.
func (p *Player) Play() {
	p.setState(Playing)
}

// Pause pauses playback. It has no effect unless playing.
func (p *Player) Pause() {
	p.mu.Lock()
	playing := p.state == Playing
	p.mu.Unlock()

	if playing {
		p.setState(Paused)
	}
}

// PlayPause toggles between playing and paused.
func (p *Player) PlayPause() {
	if p.State() == Playing {
		p.Pause()
		return
	}
	p.Play()
}

// Stop stops playback and rewinds the current song.
func (p *Player) Stop() {
	p.setState(Stopped)
}

// SetState moves the player to state.
func (p *Player) SetState(state State) {
	switch state {
	case Playing:
		p.Play()
	case Paused:
		p.Pause()
	default:
		p.Stop()
	}
}

func (p *Player) setState(state State) {
	p.mu.Lock()
	if state == Playing {
		if _, ok := p.current(); !ok {
			p.mu.Unlock()
			p.logger.Debug("nothing to play")
			return
		}
	}
	if state == Stopped {
		p.position = 0
	}
	changed := p.state != state
	p.state = state
	p.mu.Unlock()

	if changed {
		delegate.Notify(p.delegates, "state_changed", func(h StateChangedHandler) error {
			return h.StateChanged(state)
		})
	}
}

// Next advances to the next queued song. Past the end the player stops.
func (p *Player) Next() {
	p.skip(1)
}

// Previous returns to the previous queued song.
func (p *Player) Previous() {
	p.skip(-1)
}

func (p *Player) skip(delta int) {
	p.mu.Lock()
	next := p.index + delta
	if next < 0 || next >= len(p.queue) {
		p.mu.Unlock()
		if delta > 0 {
			p.Stop()
		}
		return
	}
	p.index = next
	p.position = 0
	song := p.queue[next]
	p.mu.Unlock()

	p.notifySong(song)
	p.notifyPosition(0)
}

// SetVolumePercent sets the volume, clamped to 0..100, and unmutes.
func (p *Player) SetVolumePercent(percent int) {
	percent = clampPercent(percent)

	p.mu.Lock()
	changed := p.volume != percent
	p.volume = percent
	p.muted = false
	p.mu.Unlock()

	if changed {
		p.notifyVolume(percent)
	}
}

// ToggleMute mutes, or restores the volume from before muting.
func (p *Player) ToggleMute() {
	p.mu.Lock()
	if p.muted {
		p.volume = p.unmuted
	} else {
		p.unmuted = p.volume
		p.volume = 0
	}
	p.muted = !p.muted
	volume := p.volume
	p.mu.Unlock()

	p.notifyVolume(volume)
}

// SeekToSeconds moves the playback position. Seeks always notify delegates.
func (p *Player) SeekToSeconds(seconds int) {
	p.SeekToNanoseconds(int64(seconds) * int64(time.Second))
}

// SeekToNanoseconds moves the playback position, clamped to the current song's length when known.
func (p *Player) SeekToNanoseconds(ns int64) {
	p.mu.Lock()
	pos := p.clamp(time.Duration(ns))
	p.position = pos
	p.mu.Unlock()

	p.notifyPosition(pos)
}

// Advance moves the position forward by d while playing. Progress notifications are
// rate limited; it reports whether delegates were notified.
func (p *Player) Advance(d time.Duration) bool {
	p.mu.Lock()
	if p.state != Playing {
		p.mu.Unlock()
		return false
	}
	pos := p.clamp(p.position + d)
	p.position = pos
	p.mu.Unlock()

	if !p.progress.Allow() {
		return false
	}
	p.notifyPosition(pos)
	return true
}

func (p *Player) clamp(pos time.Duration) time.Duration {
	if pos < 0 {
		return 0
	}
	if song, ok := p.current(); ok && song.Length > 0 && int64(pos) > song.Length {
		return time.Duration(song.Length)
	}
	return pos
}

func (p *Player) notifySong(song models.Song) {
	delegate.Notify(p.delegates, "song_changed", func(h SongChangedHandler) error {
		return h.SongChanged(song)
	})
}

func (p *Player) notifyVolume(percent int) {
	delegate.Notify(p.delegates, "volume_changed", func(h VolumeChangedHandler) error {
		return h.VolumeChanged(percent)
	})
}

func (p *Player) notifyPosition(pos time.Duration) {
	seconds := int(pos / time.Second)
	delegate.Notify(p.delegates, "position_changed", func(h PositionChangedHandler) error {
		return h.PositionChanged(seconds)
	})
}

func clampPercent(v int) int {
	return max(0, min(100, v))
}
