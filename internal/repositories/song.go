package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const songColumns = "id, sequence, title, artist, song_key, duration_minutes, created_at, updated_at, deleted_at"

// SongRepository implements models.Repository[*models.Song].
type SongRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Song] = (*SongRepository)(nil)

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Create inserts a song with a generated ID and sequence.
// A live song with the same normalized title and artist is rejected with [shared.ErrDuplicateSong].
func (r *SongRepository) Create(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	lookup := shared.NormalizeSongKey(song.Title(), song.Artist())
	existing, err := r.GetByLookupKey(lookup)
	switch {
	case err == nil:
		return fmt.Errorf("%w: %q already exists as %s", shared.ErrDuplicateSong, song.Title(), existing.ID())
	case !errors.Is(err, shared.ErrSongNotFound):
		return err
	}

	sequence, err := NextSequence(r.db, "songs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	song.SetID(shared.GenerateID())
	song.SetSequence(sequence)

	query := `
		INSERT INTO songs (id, sequence, title, artist, song_key, lookup_key, duration_minutes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.Exec(query,
		song.ID(),
		sequence,
		song.Title(),
		song.Artist(),
		song.Key(),
		lookup,
		song.DurationMinutes(),
		song.CreatedAt(),
		song.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert song: %w", err)
	}
	return nil
}

// Get retrieves a live song by ID.
func (r *SongRepository) Get(id string) (*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE id = ? AND deleted_at IS NULL"
	return r.scan(r.db.QueryRow(query, id), id)
}

// GetByLookupKey retrieves a live song by its normalized title and artist.
func (r *SongRepository) GetByLookupKey(lookup string) (*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE lookup_key = ? AND deleted_at IS NULL"
	return r.scan(r.db.QueryRow(query, lookup), lookup)
}

// Update saves the editable fields of a song.
func (r *SongRepository) Update(song *models.Song) error {
	if err := song.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	song.SetUpdatedAt(now)

	query := `
		UPDATE songs
		SET title = ?, artist = ?, song_key = ?, lookup_key = ?, duration_minutes = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	result, err := r.db.Exec(query,
		song.Title(),
		song.Artist(),
		song.Key(),
		shared.NormalizeSongKey(song.Title(), song.Artist()),
		song.DurationMinutes(),
		now,
		song.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update song: %w", err)
	}
	return expectRow(result, shared.ErrSongNotFound, song.ID())
}

// Delete soft-deletes a song by ID.
func (r *SongRepository) Delete(id string) error {
	return softDelete(r.db, "songs", id, shared.ErrSongNotFound)
}

// List retrieves live songs in creation order.
//
// Supported criteria: "artist" (exact match) and "search" (substring of title or artist).
func (r *SongRepository) List(criteria map[string]any) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE deleted_at IS NULL"
	args := []any{}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}
	if search, ok := criteria["search"].(string); ok && strings.TrimSpace(search) != "" {
		like := "%" + strings.TrimSpace(search) + "%"
		query += " AND (title LIKE ? OR artist LIKE ?)"
		args = append(args, like, like)
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query songs: %w", err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := r.scan(rows, "")
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return songs, nil
}

// Catalog returns every live song as a record, in creation order.
func (r *SongRepository) Catalog() ([]models.SongRecord, error) {
	songs, err := r.List(nil)
	if err != nil {
		return nil, err
	}
	records := make([]models.SongRecord, len(songs))
	for i, s := range songs {
		records[i] = s.Record()
	}
	return records, nil
}

func (r *SongRepository) scan(row scanner, lookup string) (*models.Song, error) {
	var (
		id        string
		sequence  int
		rec       models.SongRecord
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &rec.Title, &rec.Artist, &rec.Key, &rec.DurationMinutes, &createdAt, &updatedAt, &deletedAt)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, lookup)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan song: %w", err)
	}

	song := models.NewSong(sequence, rec)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	song.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		song.SetDeletedAt(&deletedAt.Time)
	}
	return song, nil
}
