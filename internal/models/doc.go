// Package models defines the ORM entities mirroring the host's library schema.
//
// The schema belongs to the host; these types only map it for reading:
//   - [Directory] : a watched library root
//   - [Subdirectory] : a scanned directory below a root, with its mtime
//   - [Song] : one library entry with tag, file, art, statistics, and cue sheet metadata
//
// Primary keys are the tables' ROWID columns and song URLs live in the "filename" column.
package models
