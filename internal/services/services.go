package services

import (
	"context"

	"github.com/desertthunder/setlist/internal/models"
)

// Service loads and persists setlists and the song catalog they draw from.
type Service interface {
	// Name identifies the backend in log output.
	Name() string

	// ListSetlists returns every setlist in creation order.
	ListSetlists(ctx context.Context) ([]models.SetlistRecord, error)

	// CreateSetlist creates an empty setlist.
	CreateSetlist(ctx context.Context, name string) (*models.SetlistRecord, error)

	// Load returns a setlist with the full catalog and its persisted sets.
	Load(ctx context.Context, setlistID string) (*models.SetlistExport, error)

	// Save replaces the sets of a setlist and returns the acknowledged assignment, which carries
	// server-assigned ids for sets the client created.
	Save(ctx context.Context, setlistID string, sets models.Assignment) (models.Assignment, error)

	// ListSongs returns the song catalog.
	ListSongs(ctx context.Context) ([]models.SongRecord, error)

	// AddSong adds a song to the catalog.
	AddSong(ctx context.Context, song models.SongRecord) (*models.SongRecord, error)
}
