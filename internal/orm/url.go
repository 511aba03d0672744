package orm

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/tunehost/internal/shared"
)

const (
	// SchemeSQLite selects the go-sqlite3 driver.
	SchemeSQLite = "sqlite"

	// SchemeModernc selects the modernc.org/sqlite driver.
	SchemeModernc = "sqlite+modernc"

	driverModernc = "sqlite"
)

// Target is a parsed connection URL.
type Target struct {
	Scheme string
	Driver string
	DSN    string
	Memory bool

	// Path is the scratch file backing an in-memory target. The factory removes it on close.
	Path string
}

// ParseURL parses a connection URL into a driver name and DSN.
//
// In-memory URLs are backed by a private scratch file in WAL mode, so readers keep working
// while another session holds an open write transaction. Every parse generates a new file
// name; two targets parsed from "sqlite://memory" never share a store.
func ParseURL(raw string) (Target, error) {
	scheme, rest, ok := strings.Cut(strings.TrimSpace(raw), "://")
	if !ok {
		return Target{}, fmt.Errorf("%w: %q has no scheme", ErrInvalidURL, raw)
	}

	t := Target{Scheme: strings.ToLower(scheme)}
	switch t.Scheme {
	case SchemeSQLite:
		t.Driver = shared.DriverSQLite3
	case SchemeModernc:
		t.Driver = driverModernc
	default:
		return Target{}, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, scheme)
	}

	path, rawQuery, _ := strings.Cut(rest, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	switch path {
	case "", "memory", ":memory:":
		t.Memory = true
		t.Path = filepath.Join(os.TempDir(), "tunehost-"+shared.GenerateID()+".db")
		t.DSN = "file:" + t.Path + "?" + encode(t.Driver, query, true)
		return t, nil
	}

	if strings.ContainsAny(path, "\x00") {
		return Target{}, fmt.Errorf("%w: path contains NUL", ErrInvalidURL)
	}

	t.DSN = path
	if q := encode(t.Driver, query, false); q != "" {
		t.DSN = "file:" + path + "?" + q
	}
	return t, nil
}

// encode adds the driver-specific busy timeout unless the URL sets one, and WAL journaling
// when wal is set.
func encode(driver string, q url.Values, wal bool) string {
	if len(q) == 0 && !wal {
		return ""
	}
	switch driver {
	case shared.DriverSQLite3:
		if q.Get("_busy_timeout") == "" {
			q.Set("_busy_timeout", "5000")
		}
		if wal {
			q.Set("_journal_mode", "WAL")
		}
	case driverModernc:
		if len(q["_pragma"]) == 0 {
			q.Add("_pragma", "busy_timeout(5000)")
		}
		if wal {
			q.Add("_pragma", "journal_mode(WAL)")
		}
	}
	return q.Encode()
}
