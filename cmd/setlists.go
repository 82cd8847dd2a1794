package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/setlist"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SetlistsCreate creates an empty setlist.
func (r *Runner) SetlistsCreate(ctx context.Context, cmd *cli.Command) error {
	name := strings.TrimSpace(cmd.StringArg("name"))
	if name == "" {
		return fmt.Errorf("%w: setlist name", shared.ErrMissingArgument)
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	rec, err := svc.CreateSetlist(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to create setlist: %w", err)
	}
	return r.writePlain("Created %s (%s)\n", rec.Name, rec.ID)
}

// SetlistsList prints every setlist.
func (r *Runner) SetlistsList(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	setlists, err := svc.ListSetlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list setlists: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(setlists, true)
	}

	if len(setlists) == 0 {
		return r.writePlain("No setlists\n")
	}

	r.writePlainHeader(fmt.Sprintf("Setlists (%d)", len(setlists)))
	for _, sl := range setlists {
		if err := r.writePlain("%-36s %s\n", sl.ID, sl.Name); err != nil {
			return err
		}
	}
	return nil
}

// SetlistsShow renders one setlist to the output.
func (r *Runner) SetlistsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: setlist id", shared.ErrMissingArgument)
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	export, err := svc.Load(ctx, id)
	if err != nil {
		return err
	}
	return formatter.Render(r.output, export, format)
}

// SetlistsExport writes setlists to files.
//
// A single setlist goes to --output (or stdout with "-"); several, or --all, run as a bulk export into a
// directory with a manifest.
func (r *Runner) SetlistsExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	svc, err := r.service()
	if err != nil {
		return err
	}

	ids := cmd.Args().Slice()
	if cmd.Bool("all") {
		setlists, err := svc.ListSetlists(ctx)
		if err != nil {
			return fmt.Errorf("failed to list setlists: %w", err)
		}
		ids = nil
		for _, sl := range setlists {
			ids = append(ids, sl.ID)
		}
	}

	switch {
	case len(ids) == 0 && cmd.Bool("all"):
		return r.writePlain("No setlists to export\n")
	case len(ids) == 0:
		return fmt.Errorf("%w: setlist ids or --all", shared.ErrMissingArgument)
	case len(ids) == 1 && !cmd.Bool("all"):
		return r.exportOne(ctx, ids[0], format, cmd.String("output"))
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	progress := make(chan tasks.ProgressUpdate, 16)
	done := make(chan struct{})
	go r.reportProgress(progress, done)

	result, err := engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: int(cmd.Int("workers")),
		RateLimit:  cmd.Float("rate"),
	})
	close(progress)
	<-done
	if err != nil {
		return err
	}

	r.writePlainln("Exported %d of %d setlists to %s", result.SuccessfulExports, result.TotalSetlists, result.OutputDirectory)
	for _, res := range result.Results {
		if !res.Success {
			r.writePlain("  failed: %s (%v)\n", res.SetlistID, res.Error)
		}
	}
	if result.FailedExports > 0 {
		return fmt.Errorf("%d setlists failed to export", result.FailedExports)
	}
	return nil
}

func (r *Runner) exportOne(ctx context.Context, id string, format formatter.Format, output string) error {
	svc, err := r.service()
	if err != nil {
		return err
	}

	export, err := svc.Load(ctx, id)
	if err != nil {
		return err
	}

	if output == "-" {
		return formatter.Render(r.output, export, format)
	}

	path, err := formatter.WriteExport(export, format, output)
	if err != nil {
		return err
	}
	return r.writePlain("Exported %s to %s\n", export.Setlist.Name, filepath.Clean(path))
}

// SetlistsMove drags a song into a set, the pool, or a new set through the ordering engine and saves.
func (r *Runner) SetlistsMove(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: setlist id", shared.ErrMissingArgument)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	board, export, err := engine.Open(ctx, id, nil)
	if err != nil {
		return err
	}

	songID, err := findSong(export.Songs, cmd.String("song"))
	if err != nil {
		return err
	}
	target, err := findContainer(board, cmd.String("to"))
	if err != nil {
		return err
	}

	index := int(cmd.Int("index"))
	if index < 0 {
		index = len(board.Items(target))
	}
	if !board.MoveTo(songID, target, index) {
		return r.writePlain("No change\n")
	}
	return r.saveBoard(ctx, engine, board, id)
}

// SetlistsMoveSet drags a whole set onto another set's position and saves.
func (r *Runner) SetlistsMoveSet(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: setlist id", shared.ErrMissingArgument)
	}

	engine, err := r.engine()
	if err != nil {
		return err
	}

	board, _, err := engine.Open(ctx, id, nil)
	if err != nil {
		return err
	}

	active, err := findSet(board, cmd.String("set"))
	if err != nil {
		return err
	}
	over, err := findSet(board, cmd.String("to"))
	if err != nil {
		return err
	}

	before := board.Revision()
	board.DragStart(active)
	board.DragEnd(active, over)
	if board.Revision() == before {
		return r.writePlain("No change\n")
	}
	return r.saveBoard(ctx, engine, board, id)
}

func (r *Runner) saveBoard(ctx context.Context, engine *tasks.SetlistEngine, board *setlist.Board, id string) error {
	if !board.Dirty() {
		return r.writePlain("No change\n")
	}

	if _, err := engine.Save(ctx, board, id, nil); err != nil {
		return err
	}

	r.writePlain("Saved\n")
	var total float64
	for _, t := range board.Totals() {
		total += t.Minutes
		r.writePlain("  %-8s %s\n", t.Label, shared.FormatMinutes(t.Minutes))
	}
	return r.writePlain("  %-8s %s\n", "Total", shared.FormatMinutes(total))
}

// findSong matches a song by id, then by case-insensitive title.
func findSong(songs []models.SongRecord, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	for _, s := range songs {
		if s.ID == ref {
			return s.ID, nil
		}
	}

	var match string
	for _, s := range songs {
		if strings.EqualFold(s.Title, ref) {
			if match != "" {
				return "", fmt.Errorf("%w: title %q matches several songs, use the song id", shared.ErrInvalidArgument, ref)
			}
			match = s.ID
		}
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", shared.ErrSongNotFound, ref)
	}
	return match, nil
}

// findContainer resolves "pool", "new", a set number, or a set id to a container id.
func findContainer(board *setlist.Board, ref string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(ref)) {
	case "pool":
		return setlist.PoolID, nil
	case "new":
		return setlist.PlaceholderID, nil
	}
	return findSet(board, ref)
}

// findSet resolves a 1-based set number or a set id.
func findSet(board *setlist.Board, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	sets := board.Sets()

	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(sets) {
			return "", fmt.Errorf("%w: set %d (setlist has %d sets)", shared.ErrUnknownContainer, n, len(sets))
		}
		return sets[n-1], nil
	}
	for _, id := range sets {
		if id == ref {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %s", shared.ErrUnknownContainer, ref)
}
