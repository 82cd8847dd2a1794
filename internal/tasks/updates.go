package tasks

import (
	"fmt"

	"github.com/desertthunder/setlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadSetlist Phase = iota
	SaveSets
	ExportSetlist
)

func (p Phase) String() string {
	switch p {
	case LoadSetlist:
		return "load_setlist"
	case SaveSets:
		return "save_sets"
	case ExportSetlist:
		return "export_setlist"
	default:
		return ""
	}
}

func loadSetlistUpdate(step, total int, id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loading setlist %s...", id),
	}
}

func loadedSetlistUpdate(step, total int, export *models.SetlistExport) ProgressUpdate {
	return ProgressUpdate{
		Phase:   LoadSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Loaded %s (%d sets, %d songs)", export.Setlist.Name, export.Assignment.Len(), len(export.Songs)),
		Data:    export,
	}
}

func saveSetsUpdate(step, total, sets int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SaveSets,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Saving %d sets...", sets),
	}
}

func savedSetsUpdate(step, total int, result *SaveResult) ProgressUpdate {
	msg := "Saved"
	if result.Stale {
		msg = "Saved, newer edits not yet saved"
	}
	return ProgressUpdate{
		Phase:   SaveSets,
		Step:    step,
		Total:   total,
		Message: msg,
		Data:    result,
	}
}

func exportingSetlistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name, path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%s)", step, total, name, path),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportSetlist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
