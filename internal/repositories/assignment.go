package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/setlist"
	"github.com/desertthunder/setlist/internal/shared"
)

// AssignmentRepository persists the ordered sets of a setlist.
type AssignmentRepository struct {
	db *sql.DB
}

// NewAssignmentRepository creates a new AssignmentRepository with the given database connection
func NewAssignmentRepository(db *sql.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// Load returns the persisted sets of a setlist in display order. Soft-deleted songs are left out.
func (r *AssignmentRepository) Load(setlistID string) (models.Assignment, error) {
	if err := setlistExists(r.db, setlistID); err != nil {
		return models.Assignment{}, err
	}

	rows, err := r.db.Query(`
		SELECT st.id, ss.song_id
		FROM setlist_sets st
		JOIN set_songs ss ON ss.set_id = st.id
		JOIN songs s ON s.id = ss.song_id AND s.deleted_at IS NULL
		WHERE st.setlist_id = ?
		ORDER BY st.position ASC, ss.position ASC
	`, setlistID)
	if err != nil {
		return models.Assignment{}, fmt.Errorf("failed to query sets: %w", err)
	}
	defer rows.Close()

	var order []string
	songs := map[string][]string{}
	for rows.Next() {
		var setID, songID string
		if err := rows.Scan(&setID, &songID); err != nil {
			return models.Assignment{}, fmt.Errorf("failed to scan set song: %w", err)
		}
		if _, ok := songs[setID]; !ok {
			order = append(order, setID)
		}
		songs[setID] = append(songs[setID], songID)
	}
	if err := rows.Err(); err != nil {
		return models.Assignment{}, fmt.Errorf("row iteration error: %w", err)
	}

	a := models.NewAssignment()
	for _, id := range order {
		a.Set(id, songs[id])
	}
	return a, nil
}

// Replace stores a as the complete set assignment of a setlist and returns what was stored.
//
// Set ids not already owned by the setlist (ids allocated by a client) are replaced by generated ids.
// Empty sets are skipped. Reserved ids, unknown songs, and songs assigned twice reject the whole request.
func (r *AssignmentRepository) Replace(setlistID string, a models.Assignment) (models.Assignment, error) {
	tx, err := r.db.Begin()
	if err != nil {
		return models.Assignment{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := setlistExists(tx, setlistID); err != nil {
		return models.Assignment{}, err
	}
	owned, err := ownedSets(tx, setlistID)
	if err != nil {
		return models.Assignment{}, err
	}

	stored := models.NewAssignment()
	seen := map[string]bool{}
	for _, setID := range a.IDs() {
		if setID == "" || setlist.IsReserved(setID) {
			return models.Assignment{}, fmt.Errorf("%w: reserved set id %q", shared.ErrInvalidInput, setID)
		}
		songs, _ := a.Songs(setID)
		if len(songs) == 0 {
			continue
		}
		for _, songID := range songs {
			if seen[songID] {
				return models.Assignment{}, fmt.Errorf("%w: song %s assigned twice", shared.ErrInvalidInput, songID)
			}
			seen[songID] = true
			if err := songExists(tx, songID); err != nil {
				return models.Assignment{}, err
			}
		}

		id := setID
		if !owned[setID] {
			id = shared.GenerateID()
		}
		stored.Set(id, songs)
	}

	if _, err := tx.Exec("DELETE FROM set_songs WHERE setlist_id = ?", setlistID); err != nil {
		return models.Assignment{}, fmt.Errorf("failed to clear set songs: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM setlist_sets WHERE setlist_id = ?", setlistID); err != nil {
		return models.Assignment{}, fmt.Errorf("failed to clear sets: %w", err)
	}

	for position, setID := range stored.IDs() {
		if _, err := tx.Exec("INSERT INTO setlist_sets (id, setlist_id, position) VALUES (?, ?, ?)", setID, setlistID, position); err != nil {
			return models.Assignment{}, fmt.Errorf("failed to insert set: %w", err)
		}
		songs, _ := stored.Songs(setID)
		for i, songID := range songs {
			_, err := tx.Exec(
				"INSERT INTO set_songs (set_id, setlist_id, song_id, position) VALUES (?, ?, ?, ?)",
				setID, setlistID, songID, i,
			)
			if err != nil {
				return models.Assignment{}, fmt.Errorf("failed to insert set song: %w", err)
			}
		}
	}

	if _, err := tx.Exec("UPDATE setlists SET updated_at = ? WHERE id = ?", time.Now(), setlistID); err != nil {
		return models.Assignment{}, fmt.Errorf("failed to touch setlist: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return models.Assignment{}, fmt.Errorf("failed to commit sets: %w", err)
	}
	return stored, nil
}

// queryer is the subset of [sql.DB] and [sql.Tx] used by the lookups below.
type queryer interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func setlistExists(q queryer, id string) error {
	var found int
	err := q.QueryRow("SELECT 1 FROM setlists WHERE id = ? AND deleted_at IS NULL", id).Scan(&found)
	if isNoRows(err) {
		return fmt.Errorf("%w: %s", shared.ErrSetlistNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up setlist: %w", err)
	}
	return nil
}

func songExists(q queryer, id string) error {
	var found int
	err := q.QueryRow("SELECT 1 FROM songs WHERE id = ? AND deleted_at IS NULL", id).Scan(&found)
	if isNoRows(err) {
		return fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("failed to look up song: %w", err)
	}
	return nil
}

func ownedSets(q queryer, setlistID string) (map[string]bool, error) {
	rows, err := q.Query("SELECT id FROM setlist_sets WHERE setlist_id = ?", setlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sets: %w", err)
	}
	defer rows.Close()

	owned := map[string]bool{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan set: %w", err)
		}
		owned[id] = true
	}
	return owned, rows.Err()
}
