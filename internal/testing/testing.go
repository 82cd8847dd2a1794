// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// MemoryService is an in-memory test double satisfying services.Service.
//
// Saved assignments are echoed back with every set id prefixed by "srv-" unless it already is, which mimics a
// server assigning its own ids to client-created sets. SaveErr, when set, is returned by Save.
type MemoryService struct {
	mu       sync.Mutex
	songs    []models.SongRecord
	setlists []models.SetlistRecord
	sets     map[string]models.Assignment

	SaveErr   error
	SaveCalls int
	// SaveHook runs inside Save before the response is built; tests use it to block or observe.
	SaveHook func(setlistID string, sets models.Assignment)
}

// NewMemoryService creates a MemoryService holding one setlist with the given songs and sets.
func NewMemoryService(setlist models.SetlistRecord, songs []models.SongRecord, sets models.Assignment) *MemoryService {
	return &MemoryService{
		songs:    append([]models.SongRecord{}, songs...),
		setlists: []models.SetlistRecord{setlist},
		sets:     map[string]models.Assignment{setlist.ID: sets.Clone()},
	}
}

func (m *MemoryService) Name() string { return "memory" }

func (m *MemoryService) ListSetlists(ctx context.Context) ([]models.SetlistRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SetlistRecord{}, m.setlists...), nil
}

func (m *MemoryService) CreateSetlist(ctx context.Context, name string) (*models.SetlistRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := models.SetlistRecord{ID: fmt.Sprintf("setlist-%d", len(m.setlists)+1), Name: name}
	m.setlists = append(m.setlists, rec)
	if m.sets == nil {
		m.sets = map[string]models.Assignment{}
	}
	m.sets[rec.ID] = models.NewAssignment()
	return &rec, nil
}

func (m *MemoryService) Load(ctx context.Context, setlistID string) (*models.SetlistExport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, sl := range m.setlists {
		if sl.ID == setlistID {
			return &models.SetlistExport{
				Setlist:    sl,
				Songs:      append([]models.SongRecord{}, m.songs...),
				Assignment: m.sets[setlistID].Clone(),
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrSetlistNotFound, setlistID)
}

func (m *MemoryService) Save(ctx context.Context, setlistID string, sets models.Assignment) (models.Assignment, error) {
	if m.SaveHook != nil {
		m.SaveHook(setlistID, sets)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return models.Assignment{}, m.SaveErr
	}

	stored := models.NewAssignment()
	for _, id := range sets.IDs() {
		songs, _ := sets.Songs(id)
		if len(id) < 4 || id[:4] != "srv-" {
			id = "srv-" + id
		}
		stored.Set(id, songs)
	}
	m.sets[setlistID] = stored
	return stored.Clone(), nil
}

// Saved returns the last stored assignment of a setlist.
func (m *MemoryService) Saved(setlistID string) models.Assignment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sets[setlistID].Clone()
}

func (m *MemoryService) ListSongs(ctx context.Context) ([]models.SongRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]models.SongRecord{}, m.songs...), nil
}

func (m *MemoryService) AddSong(ctx context.Context, rec models.SongRecord) (*models.SongRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.ID = fmt.Sprintf("song-%d", len(m.songs)+1)
	m.songs = append(m.songs, rec)
	return &rec, nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
