// package formatter renders song lists as plain text, Markdown, CSV, or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/tunehost/internal/models"
	"github.com/desertthunder/tunehost/internal/shared"
)

// Format names an output format.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// Formats lists the supported formats.
var Formats = []Format{Text, Markdown, CSV, JSON}

// ParseFormat resolves a format name, accepting "md" and "txt" aliases.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
}

// FormatDuration renders a length in nanoseconds as m:ss, or "-" when unknown.
func FormatDuration(ns int64) string {
	if ns <= 0 {
		return "-"
	}
	secs := ns / 1_000_000_000
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}

// ExportToCSV converts songs to CSV with columns: ID, Title, Artist, Album, Year, Length, URL
func ExportToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Album", "Year", "Length", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, s := range songs {
		year := ""
		if s.Year > 0 {
			year = strconv.Itoa(s.Year)
		}
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.Title,
			s.Artist,
			s.Album,
			year,
			strconv.Itoa(s.LengthSeconds()),
			s.URL,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts songs to a Markdown list under title
func ExportToMarkdown(title string, songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Songs**: %d\n\n", len(songs)))

	for i, s := range songs {
		albumPart := ""
		if s.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", s.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, s.Artist, s.Title, albumPart, FormatDuration(s.Length)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts songs to plain text format
func ExportToText(title string, songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("%s\n", title))
	buf.WriteString(fmt.Sprintf("Songs: %d\n\n", len(songs)))

	for i, s := range songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, s.Artist, s.Title))
	}

	return buf.Bytes(), nil
}

// ExportToJSON converts songs to an indented JSON array
func ExportToJSON(songs []models.Song) ([]byte, error) {
	if songs == nil {
		songs = []models.Song{}
	}
	data, err := json.MarshalIndent(songs, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal songs: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders songs in format f.
func Export(f Format, title string, songs []models.Song) ([]byte, error) {
	switch f {
	case Text:
		return ExportToText(title, songs)
	case Markdown:
		return ExportToMarkdown(title, songs)
	case CSV:
		return ExportToCSV(songs)
	case JSON:
		return ExportToJSON(songs)
	}
	return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, f)
}

// Render writes songs in format f to w.
func Render(w io.Writer, f Format, title string, songs []models.Song) error {
	data, err := Export(f, title, songs)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// WriteExport writes songs in format f to path.
func WriteExport(f Format, title string, songs []models.Song, path string) error {
	data, err := Export(f, title, songs)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
