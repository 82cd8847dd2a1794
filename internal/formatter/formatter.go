// package formatter exports setlists to CSV, Markdown, plain text, and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// Format is an export format.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "md"
	FormatText     Format = "txt"
	FormatJSON     Format = "json"
)

// Formats lists every supported format.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or a common alias ("markdown", "text").
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "txt", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, s)
}

// Section is one set resolved against the catalog.
type Section struct {
	SetID   string
	Label   string
	Songs   []models.SongRecord
	Minutes float64
}

// Sheet is a setlist resolved for printing: its sets in display order, the songs left out, and the total.
type Sheet struct {
	Name         string
	Sets         []Section
	Unassigned   []models.SongRecord
	TotalMinutes float64
}

// BuildSheet resolves the sets of an export against its catalog. Song ids missing from the catalog are skipped.
func BuildSheet(export *models.SetlistExport) Sheet {
	byID := make(map[string]models.SongRecord, len(export.Songs))
	for _, s := range export.Songs {
		byID[s.ID] = s
	}

	sheet := Sheet{Name: export.Setlist.Name}
	assigned := map[string]bool{}
	for i, setID := range export.Assignment.IDs() {
		section := Section{SetID: setID, Label: fmt.Sprintf("Set %d", i+1)}
		ids, _ := export.Assignment.Songs(setID)
		for _, id := range ids {
			song, ok := byID[id]
			if !ok {
				continue
			}
			assigned[id] = true
			section.Songs = append(section.Songs, song)
			section.Minutes += song.DurationMinutes
		}
		sheet.TotalMinutes += section.Minutes
		sheet.Sets = append(sheet.Sets, section)
	}

	for _, s := range export.Songs {
		if !assigned[s.ID] {
			sheet.Unassigned = append(sheet.Unassigned, s)
		}
	}
	return sheet
}

// ExportToCSV writes one row per assigned song with columns: Set, Position, Title, Artist, Key, Duration, Minutes
func ExportToCSV(export *models.SetlistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Set", "Position", "Title", "Artist", "Key", "Duration", "Minutes"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, section := range BuildSheet(export).Sets {
		for i, song := range section.Songs {
			record := []string{
				section.Label,
				strconv.Itoa(i + 1),
				song.Title,
				song.Artist,
				song.Key,
				shared.FormatMinutes(song.DurationMinutes),
				strconv.FormatFloat(song.DurationMinutes, 'f', -1, 64),
			}
			if err := writer.Write(record); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders each set as a numbered list under its own heading.
func ExportToMarkdown(export *models.SetlistExport) ([]byte, error) {
	var buf bytes.Buffer
	sheet := BuildSheet(export)

	fmt.Fprintf(&buf, "# %s\n\n", sheet.Name)
	fmt.Fprintf(&buf, "**Sets**: %d\n", len(sheet.Sets))
	fmt.Fprintf(&buf, "**Total**: %s\n\n", shared.FormatMinutes(sheet.TotalMinutes))

	for _, section := range sheet.Sets {
		fmt.Fprintf(&buf, "## %s (%s)\n\n", section.Label, shared.FormatMinutes(section.Minutes))
		for i, song := range section.Songs {
			fmt.Fprintf(&buf, "%d. %s [%s]\n", i+1, songLine(song), shared.FormatMinutes(song.DurationMinutes))
		}
		buf.WriteString("\n")
	}

	if len(sheet.Unassigned) > 0 {
		buf.WriteString("## Not in a set\n\n")
		for _, song := range sheet.Unassigned {
			fmt.Fprintf(&buf, "- %s\n", songLine(song))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain text sheet for printing.
func ExportToText(export *models.SetlistExport) ([]byte, error) {
	var buf bytes.Buffer
	sheet := BuildSheet(export)

	fmt.Fprintf(&buf, "Setlist: %s\n", sheet.Name)
	fmt.Fprintf(&buf, "Total: %s\n", shared.FormatMinutes(sheet.TotalMinutes))

	for _, section := range sheet.Sets {
		fmt.Fprintf(&buf, "\n%s (%s)\n", section.Label, shared.FormatMinutes(section.Minutes))
		for i, song := range section.Songs {
			fmt.Fprintf(&buf, "  %d. %s\n", i+1, songLine(song))
		}
	}

	return buf.Bytes(), nil
}

// ExportToJSON encodes the export with indentation, keeping set order.
func ExportToJSON(export *models.SetlistExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// Export renders export in the given format.
func Export(export *models.SetlistExport, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidArgument, format)
}

// Render writes export to w in the given format.
func Render(w io.Writer, export *models.SetlistExport, format Format) error {
	data, err := Export(export, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export: %w", err)
	}
	return nil
}

// WriteExport writes export to path, creating parent directories.
//
// Defaults to {slug of the setlist name}.{format} in the working directory.
func WriteExport(export *models.SetlistExport, format Format, path string) (string, error) {
	if path == "" {
		path = Filename(export.Setlist, format)
	}

	data, err := Export(export, format)
	if err != nil {
		return "", fmt.Errorf("failed to generate %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", format, err)
	}

	return path, nil
}

// Filename returns a file name for a setlist export, falling back to the setlist ID when the name has no
// usable characters.
func Filename(setlist models.SetlistRecord, format Format) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(setlist.Name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}

	base := strings.TrimSuffix(b.String(), "-")
	if base == "" {
		base = setlist.ID
	}
	return base + "." + string(format)
}

func songLine(song models.SongRecord) string {
	line := song.Title
	if song.Artist != "" {
		line = fmt.Sprintf("%s - %s", song.Title, song.Artist)
	}
	if song.Key != "" {
		line += fmt.Sprintf(" (%s)", song.Key)
	}
	return line
}
