package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/repositories"
)

// LocalService implements [Service] on top of the sqlite repositories.
type LocalService struct {
	songs       *repositories.SongRepository
	setlists    *repositories.SetlistRepository
	assignments *repositories.AssignmentRepository
}

var _ Service = (*LocalService)(nil)

// NewLocalService creates a LocalService backed by db.
func NewLocalService(db *sql.DB) *LocalService {
	return &LocalService{
		songs:       repositories.NewSongRepository(db),
		setlists:    repositories.NewSetlistRepository(db),
		assignments: repositories.NewAssignmentRepository(db),
	}
}

// Name returns the service name.
func (s *LocalService) Name() string { return "local" }

// ListSetlists returns every live setlist.
func (s *LocalService) ListSetlists(ctx context.Context) ([]models.SetlistRecord, error) {
	setlists, err := s.setlists.List(nil)
	if err != nil {
		return nil, err
	}
	records := make([]models.SetlistRecord, len(setlists))
	for i, sl := range setlists {
		records[i] = sl.Record()
	}
	return records, nil
}

// CreateSetlist creates an empty setlist.
func (s *LocalService) CreateSetlist(ctx context.Context, name string) (*models.SetlistRecord, error) {
	setlist := models.NewSetlist(0, name)
	if err := s.setlists.Create(setlist); err != nil {
		return nil, err
	}
	rec := setlist.Record()
	return &rec, nil
}

// Load returns the setlist, the whole catalog, and the persisted sets.
func (s *LocalService) Load(ctx context.Context, setlistID string) (*models.SetlistExport, error) {
	setlist, err := s.setlists.Get(setlistID)
	if err != nil {
		return nil, err
	}
	songs, err := s.songs.Catalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	sets, err := s.assignments.Load(setlistID)
	if err != nil {
		return nil, err
	}
	return &models.SetlistExport{Setlist: setlist.Record(), Songs: songs, Assignment: sets}, nil
}

// Save replaces the sets of a setlist.
func (s *LocalService) Save(ctx context.Context, setlistID string, sets models.Assignment) (models.Assignment, error) {
	if err := ctx.Err(); err != nil {
		return models.Assignment{}, err
	}
	return s.assignments.Replace(setlistID, sets)
}

// ListSongs returns the catalog.
func (s *LocalService) ListSongs(ctx context.Context) ([]models.SongRecord, error) {
	return s.songs.Catalog()
}

// AddSong adds a song to the catalog.
func (s *LocalService) AddSong(ctx context.Context, rec models.SongRecord) (*models.SongRecord, error) {
	song := models.NewSong(0, rec)
	if err := s.songs.Create(song); err != nil {
		return nil, err
	}
	out := song.Record()
	return &out, nil
}
