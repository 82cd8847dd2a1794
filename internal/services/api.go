// HTTP [Service] implementation for a remote setlist server
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"golang.org/x/time/rate"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

const defaultBaseURL string = "http://127.0.0.1:3000"

// ErrorResponse is the JSON body the server sends with non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

// APIService implements [Service] against the setlist HTTP API.
type APIService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ Service = (*APIService)(nil)

// NewAPIService creates an API service from the client configuration.
//
// A nil client gets one with the configured timeout. A non-positive rate limit disables pacing.
func NewAPIService(cfg shared.ClientConfig, client *http.Client) *APIService {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}

	return &APIService{
		baseURL:    baseURL,
		httpClient: client,
		limiter:    rate.NewLimiter(limit, 1),
	}
}

// Name returns the service name.
func (a *APIService) Name() string { return "api" }

// ListSetlists calls GET /api/setlists.
func (a *APIService) ListSetlists(ctx context.Context) ([]models.SetlistRecord, error) {
	var setlists []models.SetlistRecord
	if err := a.doRequest(ctx, http.MethodGet, "/api/setlists", nil, &setlists); err != nil {
		return nil, err
	}
	return setlists, nil
}

// CreateSetlist calls POST /api/setlists.
func (a *APIService) CreateSetlist(ctx context.Context, name string) (*models.SetlistRecord, error) {
	var setlist models.SetlistRecord
	if err := a.doRequest(ctx, http.MethodPost, "/api/setlists", models.SetlistRecord{Name: name}, &setlist); err != nil {
		return nil, err
	}
	return &setlist, nil
}

// Load calls GET /api/setlists/{id}.
func (a *APIService) Load(ctx context.Context, setlistID string) (*models.SetlistExport, error) {
	var export models.SetlistExport
	if err := a.doRequest(ctx, http.MethodGet, "/api/setlists/"+url.PathEscape(setlistID), nil, &export); err != nil {
		return nil, err
	}
	return &export, nil
}

// Save calls PUT /api/setlists/{id}/sets with the assignment as the body.
// The response has the same shape, with server-assigned ids for new sets.
func (a *APIService) Save(ctx context.Context, setlistID string, sets models.Assignment) (models.Assignment, error) {
	var stored *models.Assignment
	path := "/api/setlists/" + url.PathEscape(setlistID) + "/sets"
	if err := a.doRequest(ctx, http.MethodPut, path, sets, &stored); err != nil {
		return models.Assignment{}, err
	}
	if stored == nil {
		return models.Assignment{}, fmt.Errorf("%w: no sets in response", shared.ErrMalformedResponse)
	}
	return *stored, nil
}

// ListSongs calls GET /api/songs.
func (a *APIService) ListSongs(ctx context.Context) ([]models.SongRecord, error) {
	var songs []models.SongRecord
	if err := a.doRequest(ctx, http.MethodGet, "/api/songs", nil, &songs); err != nil {
		return nil, err
	}
	return songs, nil
}

// AddSong calls POST /api/songs.
func (a *APIService) AddSong(ctx context.Context, song models.SongRecord) (*models.SongRecord, error) {
	var created models.SongRecord
	if err := a.doRequest(ctx, http.MethodPost, "/api/songs", song, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *APIService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if result != nil {
		if err := json.Unmarshal(data, result); err != nil {
			return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
		}
	}
	return nil
}

// statusError maps a non-2xx response onto the shared sentinels.
func statusError(status int, body []byte) error {
	var errResp ErrorResponse
	msg := http.StatusText(status)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		msg = errResp.Error
	}

	var sentinel error
	switch {
	case status == http.StatusNotFound:
		sentinel = shared.ErrSetlistNotFound
	case status == http.StatusConflict:
		sentinel = shared.ErrDuplicateSong
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		sentinel = shared.ErrInvalidInput
	case status >= 500:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}
	return fmt.Errorf("%w (status %d): %s", sentinel, status, msg)
}
