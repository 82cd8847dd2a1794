package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// SetlistRepository implements models.Repository[*models.Setlist].
type SetlistRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.Setlist] = (*SetlistRepository)(nil)

// NewSetlistRepository creates a new SetlistRepository with the given database connection
func NewSetlistRepository(db *sql.DB) *SetlistRepository {
	return &SetlistRepository{db: db}
}

// Create inserts a setlist with a generated ID and sequence.
func (r *SetlistRepository) Create(setlist *models.Setlist) error {
	if err := setlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	sequence, err := NextSequence(r.db, "setlists")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}
	setlist.SetID(shared.GenerateID())
	setlist.SetSequence(sequence)

	_, err = r.db.Exec(
		"INSERT INTO setlists (id, sequence, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		setlist.ID(), sequence, setlist.Name(), setlist.CreatedAt(), setlist.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert setlist: %w", err)
	}
	return nil
}

// Get retrieves a live setlist by ID.
func (r *SetlistRepository) Get(id string) (*models.Setlist, error) {
	row := r.db.QueryRow(`
		SELECT id, sequence, name, created_at, updated_at, deleted_at
		FROM setlists
		WHERE id = ? AND deleted_at IS NULL
	`, id)

	setlist, err := r.scan(row)
	if isNoRows(err) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSetlistNotFound, id)
	}
	return setlist, err
}

// Update renames a setlist.
func (r *SetlistRepository) Update(setlist *models.Setlist) error {
	if err := setlist.Validate(); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	now := time.Now()
	setlist.SetUpdatedAt(now)

	result, err := r.db.Exec(
		"UPDATE setlists SET name = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL",
		setlist.Name(), now, setlist.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update setlist: %w", err)
	}
	return expectRow(result, shared.ErrSetlistNotFound, setlist.ID())
}

// Delete soft-deletes a setlist by ID.
func (r *SetlistRepository) Delete(id string) error {
	return softDelete(r.db, "setlists", id, shared.ErrSetlistNotFound)
}

// List retrieves live setlists in creation order. Supported criteria: "name" (exact match).
func (r *SetlistRepository) List(criteria map[string]any) ([]*models.Setlist, error) {
	query := "SELECT id, sequence, name, created_at, updated_at, deleted_at FROM setlists WHERE deleted_at IS NULL"
	args := []any{}

	if name, ok := criteria["name"].(string); ok && name != "" {
		query += " AND name = ?"
		args = append(args, name)
	}
	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query setlists: %w", err)
	}
	defer rows.Close()

	var setlists []*models.Setlist
	for rows.Next() {
		setlist, err := r.scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan setlist: %w", err)
		}
		setlists = append(setlists, setlist)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return setlists, nil
}

func (r *SetlistRepository) scan(row scanner) (*models.Setlist, error) {
	var (
		id        string
		sequence  int
		name      string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)
	if err := row.Scan(&id, &sequence, &name, &createdAt, &updatedAt, &deletedAt); err != nil {
		return nil, err
	}

	setlist := models.NewSetlist(sequence, name)
	setlist.SetID(id)
	setlist.SetCreatedAt(createdAt)
	setlist.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		setlist.SetDeletedAt(&deletedAt.Time)
	}
	return setlist, nil
}
