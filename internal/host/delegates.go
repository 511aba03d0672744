package host

import "github.com/desertthunder/tunehost/internal/models"

// DirectoryAddedHandler is called when a library directory is added.
type DirectoryAddedHandler interface {
	DirectoryAdded(path string) error
}

// DirectoryRemovedHandler is called when a library directory is removed.
type DirectoryRemovedHandler interface {
	DirectoryRemoved(path string) error
}

// SongsChangedHandler is called with songs that were added or updated.
type SongsChangedHandler interface {
	SongsChanged(songs []models.Song) error
}

// SongsRemovedHandler is called with songs removed from the library.
type SongsRemovedHandler interface {
	SongsRemoved(songs []models.Song) error
}

// TotalSongCountUpdatedHandler is called with the new number of available songs.
type TotalSongCountUpdatedHandler interface {
	TotalSongCountUpdated(total int) error
}

// DatabaseDelegate implements every database callback.
type DatabaseDelegate interface {
	DirectoryAddedHandler
	DirectoryRemovedHandler
	SongsChangedHandler
	SongsRemovedHandler
	TotalSongCountUpdatedHandler
}

// StateChangedHandler is called when playback starts, pauses, or stops.
type StateChangedHandler interface {
	StateChanged(state State) error
}

// VolumeChangedHandler is called with the new volume percentage.
type VolumeChangedHandler interface {
	VolumeChanged(percent int) error
}

// PositionChangedHandler is called with the playback position in seconds.
type PositionChangedHandler interface {
	PositionChanged(seconds int) error
}

// SongChangedHandler is called when the current song changes.
type SongChangedHandler interface {
	SongChanged(song models.Song) error
}

// PlayerDelegate implements every player callback.
type PlayerDelegate interface {
	StateChangedHandler
	VolumeChangedHandler
	PositionChangedHandler
	SongChangedHandler
}

// BaseDatabaseDelegate implements [DatabaseDelegate] with no-ops.
type BaseDatabaseDelegate struct{}

func (BaseDatabaseDelegate) DirectoryAdded(string) error      { return nil }
func (BaseDatabaseDelegate) DirectoryRemoved(string) error    { return nil }
func (BaseDatabaseDelegate) SongsChanged([]models.Song) error { return nil }
func (BaseDatabaseDelegate) SongsRemoved([]models.Song) error { return nil }
func (BaseDatabaseDelegate) TotalSongCountUpdated(int) error  { return nil }

// BasePlayerDelegate implements [PlayerDelegate] with no-ops.
type BasePlayerDelegate struct{}

func (BasePlayerDelegate) StateChanged(State) error      { return nil }
func (BasePlayerDelegate) VolumeChanged(int) error       { return nil }
func (BasePlayerDelegate) PositionChanged(int) error     { return nil }
func (BasePlayerDelegate) SongChanged(models.Song) error { return nil }

func isDatabaseDelegate(d any) bool {
	switch d.(type) {
	case DirectoryAddedHandler, DirectoryRemovedHandler, SongsChangedHandler, SongsRemovedHandler,
		TotalSongCountUpdatedHandler:
		return true
	}
	return false
}

func isPlayerDelegate(d any) bool {
	switch d.(type) {
	case StateChangedHandler, VolumeChangedHandler, PositionChangedHandler, SongChangedHandler:
		return true
	}
	return false
}
