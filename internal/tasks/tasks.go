package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/setlist"
	"github.com/desertthunder/setlist/internal/shared"
)

// SaveOutcome is the result of submitting one save ticket to the service.
type SaveOutcome struct {
	SetlistID string
	Ticket    setlist.SaveTicket
	Response  *models.Assignment // acknowledged sets, nil on failure
	Err       error
}

// SaveResult describes a settled save.
type SaveResult struct {
	Sets  models.Assignment // sets acknowledged by the service
	Stale bool              // local edits were made while the save was in flight
	Dirty bool              // board still differs from the persisted baseline
}

// SetlistEngine loads setlists into boards and persists board state through a [services.Service].
type SetlistEngine struct {
	svc    services.Service
	logger *log.Logger
}

// NewSetlistEngine creates a SetlistEngine. A nil logger discards output.
func NewSetlistEngine(svc services.Service, logger *log.Logger) *SetlistEngine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SetlistEngine{svc: svc, logger: logger}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *SetlistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// Open loads a setlist and builds the editing board for it.
func (e *SetlistEngine) Open(ctx context.Context, setlistID string, progress chan<- ProgressUpdate) (*setlist.Board, *models.SetlistExport, error) {
	if e.svc == nil {
		return nil, nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, loadSetlistUpdate(1, 2, setlistID))
	export, err := e.svc.Load(ctx, setlistID)
	if err != nil {
		return nil, nil, err
	}

	board := setlist.NewBoard(setlist.CatalogFromSongs(export.Songs), export.Assignment, shared.WithLogger(e.logger, "setlist", setlistID))
	e.sendProgress(progress, loadedSetlistUpdate(2, 2, export))
	return board, export, nil
}

// Persist submits a ticket to the service. It does not touch the board and may run off the event loop.
func (e *SetlistEngine) Persist(ctx context.Context, setlistID string, ticket setlist.SaveTicket) SaveOutcome {
	out := SaveOutcome{SetlistID: setlistID, Ticket: ticket}
	if e.svc == nil {
		out.Err = fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
		return out
	}

	resp, err := e.svc.Save(ctx, setlistID, ticket.Payload)
	if err != nil {
		out.Err = err
		return out
	}
	out.Response = &resp
	return out
}

// Settle applies a save outcome to the board it was issued from.
//
// A stale acknowledgement is not an error for the caller: the result is returned with Stale set.
func (e *SetlistEngine) Settle(board *setlist.Board, out SaveOutcome) (*SaveResult, error) {
	err := board.CompleteSave(out.Ticket, out.Response, out.Err)
	switch {
	case errors.Is(err, shared.ErrStaleResponse):
		e.logger.Info("save acknowledged, newer edits pending", "setlist", out.SetlistID)
		return &SaveResult{Sets: out.Response.Clone(), Stale: true, Dirty: board.Dirty()}, nil
	case err != nil:
		e.logger.Error("save failed", "setlist", out.SetlistID, "error", err)
		return nil, err
	}

	e.logger.Info("sets saved", "setlist", out.SetlistID, "sets", out.Response.Len())
	return &SaveResult{Sets: board.Baseline(), Dirty: board.Dirty()}, nil
}

// Save persists the current board state. Only one save runs per board at a time; a second call while one is
// in flight fails with [shared.ErrSaveInFlight].
func (e *SetlistEngine) Save(ctx context.Context, board *setlist.Board, setlistID string, progress chan<- ProgressUpdate) (*SaveResult, error) {
	ticket, err := board.BeginSave()
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, saveSetsUpdate(1, 2, ticket.Payload.Len()))
	out := e.Persist(ctx, setlistID, ticket)

	result, err := e.Settle(board, out)
	if err != nil {
		return nil, err
	}
	e.sendProgress(progress, savedSetsUpdate(2, 2, result))
	return result, nil
}
