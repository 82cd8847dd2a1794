package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

const maxBodyBytes = 1 << 20

// SetlistHandler serves setlists, their sets, and the song catalog.
type SetlistHandler struct {
	svc    services.Service
	logger *log.Logger
}

// NewSetlistHandler creates a handler backed by svc.
func NewSetlistHandler(svc services.Service, logger *log.Logger) *SetlistHandler {
	return &SetlistHandler{svc: svc, logger: logger}
}

// Routes mounts the API endpoints.
func (h *SetlistHandler) Routes(r chi.Router) {
	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/setlists", func(r chi.Router) {
			r.Get("/", h.ListSetlists)
			r.Post("/", h.CreateSetlist)
			r.Get("/{id}", h.GetSetlist)
			r.Put("/{id}/sets", h.ReplaceSets)
		})
		r.Route("/songs", func(r chi.Router) {
			r.Get("/", h.ListSongs)
			r.Post("/", h.AddSong)
		})
	})
}

// NewRouter builds the full API router with request id, logging, and recovery middleware.
func NewRouter(svc services.Service, logger *log.Logger) *BasicRouter {
	r := NewBasicRouter()
	r.Use(RequestID, Logger(logger), Recovery(logger))
	r.Handler(NewSetlistHandler(svc, logger))
	return r
}

// Health handles GET /health
func (h *SetlistHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "backend": h.svc.Name()})
}

// ListSetlists handles GET /api/setlists
func (h *SetlistHandler) ListSetlists(w http.ResponseWriter, r *http.Request) {
	setlists, err := h.svc.ListSetlists(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if setlists == nil {
		setlists = []models.SetlistRecord{}
	}
	writeJSON(w, http.StatusOK, setlists)
}

// CreateSetlist handles POST /api/setlists
func (h *SetlistHandler) CreateSetlist(w http.ResponseWriter, r *http.Request) {
	var req models.SetlistRecord
	if err := decodeBody(w, r, &req); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.svc.CreateSetlist(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// GetSetlist handles GET /api/setlists/{id}
func (h *SetlistHandler) GetSetlist(w http.ResponseWriter, r *http.Request) {
	export, err := h.svc.Load(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if export.Songs == nil {
		export.Songs = []models.SongRecord{}
	}
	writeJSON(w, http.StatusOK, export)
}

// ReplaceSets handles PUT /api/setlists/{id}/sets
//
// The body and the response are both `{ "<setId>": ["<songId>", ...] }` in display order.
func (h *SetlistHandler) ReplaceSets(w http.ResponseWriter, r *http.Request) {
	var sets models.Assignment
	if err := decodeBody(w, r, &sets); err != nil {
		h.fail(w, r, err)
		return
	}

	stored, err := h.svc.Save(r.Context(), chi.URLParam(r, "id"), sets)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stored)
}

// ListSongs handles GET /api/songs
func (h *SetlistHandler) ListSongs(w http.ResponseWriter, r *http.Request) {
	songs, err := h.svc.ListSongs(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if songs == nil {
		songs = []models.SongRecord{}
	}
	writeJSON(w, http.StatusOK, songs)
}

// AddSong handles POST /api/songs
func (h *SetlistHandler) AddSong(w http.ResponseWriter, r *http.Request) {
	var rec models.SongRecord
	if err := decodeBody(w, r, &rec); err != nil {
		h.fail(w, r, err)
		return
	}

	created, err := h.svc.AddSong(r.Context(), rec)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *SetlistHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "path", r.URL.Path, "error", err, "request_id", RequestIDFrom(r.Context()))
	}
	writeError(w, status, err.Error())
}

// errorStatus maps shared sentinels onto HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, shared.ErrSetlistNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrSongNotFound):
		return http.StatusUnprocessableEntity
	case errors.Is(err, shared.ErrDuplicateSong):
		return http.StatusConflict
	case errors.Is(err, shared.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, services.ErrorResponse{Error: msg})
}
