// package models defines the library entities exposed to plugins through ORM sessions
package models

import "fmt"

// Directory is a library root watched by the host.
type Directory struct {
	ID      int64  `gorm:"column:ROWID;primaryKey" json:"id"`
	Path    string `gorm:"column:path" json:"path"`
	Subdirs bool   `gorm:"column:subdirs" json:"subdirs"`

	Songs          []Song         `gorm:"foreignKey:DirectoryID;references:ID" json:"-"`
	Subdirectories []Subdirectory `gorm:"foreignKey:DirectoryID;references:ID" json:"-"`
}

// TableName implements gorm's tabler interface.
func (Directory) TableName() string { return "directories" }

// Subdirectory is a directory found below a [Directory] during a scan.
type Subdirectory struct {
	ID          int64  `gorm:"column:ROWID;primaryKey" json:"id"`
	DirectoryID int64  `gorm:"column:directory" json:"directory_id"`
	Path        string `gorm:"column:path" json:"path"`
	MTime       int64  `gorm:"column:mtime" json:"mtime"`
}

// TableName implements gorm's tabler interface.
func (Subdirectory) TableName() string { return "subdirectories" }

// Song is one library entry.
type Song struct {
	ID          int64 `gorm:"column:ROWID;primaryKey" json:"id"`
	DirectoryID int64 `gorm:"column:directory" json:"directory_id"`

	// Metadata read from file tags
	Title       string  `gorm:"column:title" json:"title"`
	Artist      string  `gorm:"column:artist" json:"artist"`
	Album       string  `gorm:"column:album" json:"album"`
	AlbumArtist string  `gorm:"column:albumartist" json:"albumartist,omitempty"`
	Composer    string  `gorm:"column:composer" json:"composer,omitempty"`
	Track       int     `gorm:"column:track" json:"track"`
	Disc        int     `gorm:"column:disc" json:"disc"`
	BPM         float64 `gorm:"column:bpm" json:"bpm"`
	Year        int     `gorm:"column:year" json:"year"`
	Genre       string  `gorm:"column:genre" json:"genre,omitempty"`
	Comment     string  `gorm:"column:comment" json:"comment,omitempty"`
	Compilation bool    `gorm:"column:compilation" json:"compilation"`
	Length      int64   `gorm:"column:length" json:"length"` // nanoseconds
	Bitrate     int     `gorm:"column:bitrate" json:"bitrate"`
	SampleRate  int     `gorm:"column:samplerate" json:"samplerate"`
	Sampler     bool    `gorm:"column:sampler" json:"sampler"`

	// Metadata about the file itself
	URL         string `gorm:"column:filename" json:"url"`
	Unavailable bool   `gorm:"column:unavailable" json:"unavailable"`
	MTime       int64  `gorm:"column:mtime" json:"mtime"`
	CTime       int64  `gorm:"column:ctime" json:"ctime"`
	FileSize    int64  `gorm:"column:filesize" json:"filesize"`
	FileType    int    `gorm:"column:filetype" json:"filetype"`

	// Raw album art information
	ArtAutomatic string `gorm:"column:art_automatic" json:"art_automatic,omitempty"`
	ArtManual    string `gorm:"column:art_manual" json:"art_manual,omitempty"`

	// Statistics
	PlayCount  int   `gorm:"column:playcount" json:"playcount"`
	SkipCount  int   `gorm:"column:skipcount" json:"skipcount"`
	LastPlayed int64 `gorm:"column:lastplayed" json:"lastplayed"`
	Score      int   `gorm:"column:score" json:"score"`
	Rating     int   `gorm:"column:rating" json:"rating"`

	// User preferences
	ForcedCompilationOn  bool `gorm:"column:forced_compilation_on" json:"forced_compilation_on"`
	ForcedCompilationOff bool `gorm:"column:forced_compilation_off" json:"forced_compilation_off"`
	EffectiveCompilation bool `gorm:"column:effective_compilation" json:"effective_compilation"`

	// Cue sheet information
	Beginning int64  `gorm:"column:beginning" json:"beginning"`
	CuePath   string `gorm:"column:cue_path" json:"cue_path,omitempty"`
}

// TableName implements gorm's tabler interface.
func (Song) TableName() string { return "songs" }

// NewSong creates a song with the host's "unknown" sentinels for numeric tags.
func NewSong(title, artist, album, url string) Song {
	return Song{
		Title:      title,
		Artist:     artist,
		Album:      album,
		URL:        url,
		Track:      -1,
		Disc:       -1,
		BPM:        -1,
		Year:       -1,
		Bitrate:    -1,
		SampleRate: -1,
		LastPlayed: -1,
		Rating:     -1,
	}
}

// Validate checks the fields the library requires.
func (s Song) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("song url is required")
	}
	return nil
}

// String renders the song the way plugins log it.
func (s Song) String() string {
	return fmt.Sprintf("'%s' by '%s'", s.Title, s.Artist)
}

// LengthSeconds returns the song length in whole seconds.
func (s Song) LengthSeconds() int {
	return int(s.Length / 1_000_000_000)
}
