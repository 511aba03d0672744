// Package repositories implements the raw SQLite writer for the music library.
//
// The host's library scanner discovers directories and songs on disk and records them
// here before telling database delegates about the change. Plugins read the same tables
// through ORM sessions.
//
// Key Implementations:
//   - [LibraryRepository] : directories, subdirectories, and songs
//
// Every write that touches more than one row runs inside a single transaction so
// sessions never observe a half-written scan.
package repositories
