package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsAdd adds one song to the catalog.
func (r *Runner) SongsAdd(ctx context.Context, cmd *cli.Command) error {
	title := strings.TrimSpace(cmd.StringArg("title"))
	if title == "" {
		return fmt.Errorf("%w: song title", shared.ErrMissingArgument)
	}

	minutes, err := shared.ParseMinutes(cmd.String("duration"))
	if err != nil {
		return err
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	song, err := svc.AddSong(ctx, models.SongRecord{
		Title:           title,
		Artist:          cmd.String("artist"),
		Key:             cmd.String("key"),
		DurationMinutes: minutes,
	})
	if err != nil {
		return fmt.Errorf("failed to add song: %w", err)
	}

	return r.writePlain("Added %s (%s)\n", song.Title, song.ID)
}

// SongsList prints the catalog.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	songs, err := svc.ListSongs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, true)
	}

	if len(songs) == 0 {
		return r.writePlain("No songs in the catalog\n")
	}

	r.writePlainHeader(fmt.Sprintf("Songs (%d)", len(songs)))
	for _, s := range songs {
		line := s.Title
		if s.Artist != "" {
			line += " - " + s.Artist
		}
		if s.Key != "" {
			line += " [" + s.Key + "]"
		}
		if err := r.writePlain("%-36s %-48s %s\n", s.ID, line, shared.FormatMinutes(s.DurationMinutes)); err != nil {
			return err
		}
	}
	return nil
}

// SongsImport adds every row of a CSV file to the catalog.
//
// Columns are title, artist, key, duration; only title is required. A leading header row is skipped and songs
// already in the catalog are counted, not treated as failures.
func (r *Runner) SongsImport(ctx context.Context, cmd *cli.Command) error {
	path := cmd.StringArg("path")
	if path == "" {
		return fmt.Errorf("%w: CSV path", shared.ErrMissingArgument)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := readSongCSV(f)
	if err != nil {
		return err
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	var added, duplicates int
	for _, rec := range records {
		if _, err := svc.AddSong(ctx, rec); err != nil {
			if errors.Is(err, shared.ErrDuplicateSong) {
				r.logger.Debug("skipping duplicate song", "title", rec.Title)
				duplicates++
				continue
			}
			return fmt.Errorf("failed to add %q: %w", rec.Title, err)
		}
		added++
	}

	return r.writePlain("Imported %d songs (%d already in catalog)\n", added, duplicates)
}

func readSongCSV(in io.Reader) ([]models.SongRecord, error) {
	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	if len(rows) > 0 && len(rows[0]) > 0 && strings.EqualFold(strings.TrimSpace(rows[0][0]), "title") {
		rows = rows[1:]
	}

	records := make([]models.SongRecord, 0, len(rows))
	for i, row := range rows {
		field := func(n int) string {
			if n < len(row) {
				return strings.TrimSpace(row[n])
			}
			return ""
		}

		rec := models.SongRecord{Title: field(0), Artist: field(1), Key: field(2)}
		if rec.Title == "" {
			return nil, fmt.Errorf("%w: row %d has no title", shared.ErrInvalidInput, i+1)
		}
		if d := field(3); d != "" {
			minutes, err := shared.ParseMinutes(d)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i+1, err)
			}
			rec.DurationMinutes = minutes
		}
		records = append(records, rec)
	}
	return records, nil
}
