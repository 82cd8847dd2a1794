package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/shared"
)

func newTestServer(t *testing.T) (*httptest.Server, *services.LocalService) {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	svc := services.NewLocalService(db)
	srv := httptest.NewServer(NewRouter(svc, log.New(io.Discard)))
	t.Cleanup(srv.Close)
	return srv, svc
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		if s, ok := body.(string); ok {
			reader = strings.NewReader(s)
		} else {
			data, _ := json.Marshal(body)
			reader = bytes.NewReader(data)
		}
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}

func TestSetlistHandler(t *testing.T) {
	t.Run("Health", func(t *testing.T) {
		srv, _ := newTestServer(t)
		resp, body := doJSON(t, http.MethodGet, srv.URL+"/health", nil)

		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		if !strings.Contains(string(body), `"status":"ok"`) {
			t.Errorf("unexpected body %s", body)
		}
		if resp.Header.Get(RequestIDHeader) == "" {
			t.Error("expected a request id header")
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		srv, _ := newTestServer(t)

		resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/setlists", models.SetlistRecord{Name: "Friday"})
		if resp.StatusCode != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
		}
		var setlist models.SetlistRecord
		json.Unmarshal(body, &setlist)

		var songIDs []string
		for _, title := range []string{"One", "Two", "Three"} {
			resp, body := doJSON(t, http.MethodPost, srv.URL+"/api/songs", models.SongRecord{Title: title, DurationMinutes: 3})
			if resp.StatusCode != http.StatusCreated {
				t.Fatalf("expected 201, got %d: %s", resp.StatusCode, body)
			}
			var song models.SongRecord
			json.Unmarshal(body, &song)
			songIDs = append(songIDs, song.ID)
		}

		payload := `{"set-2": ["` + songIDs[2] + `"], "set-1": ["` + songIDs[1] + `", "` + songIDs[0] + `"]}`
		resp, body = doJSON(t, http.MethodPut, srv.URL+"/api/setlists/"+setlist.ID+"/sets", payload)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
		}
		var stored models.Assignment
		if err := json.Unmarshal(body, &stored); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if stored.Len() != 2 || slices.Contains(stored.IDs(), "set-1") {
			t.Errorf("expected two server-assigned sets, got %v", stored.IDs())
		}

		resp, body = doJSON(t, http.MethodGet, srv.URL+"/api/setlists/"+setlist.ID, nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.StatusCode)
		}
		var export models.SetlistExport
		json.Unmarshal(body, &export)
		if !export.Assignment.Equal(stored) || len(export.Songs) != 3 {
			t.Errorf("unexpected export: %s", body)
		}
	})

	t.Run("Errors", func(t *testing.T) {
		srv, svc := newTestServer(t)
		ctx := context.Background()
		setlist, _ := svc.CreateSetlist(ctx, "Friday")
		song, _ := svc.AddSong(ctx, models.SongRecord{Title: "One"})

		tt := []struct {
			name   string
			method string
			path   string
			body   any
			want   int
		}{
			{"Unknown Setlist", http.MethodGet, "/api/setlists/missing", nil, http.StatusNotFound},
			{"Invalid JSON", http.MethodPut, "/api/setlists/" + setlist.ID + "/sets", `{"set-1": [`, http.StatusBadRequest},
			{"Unknown Song", http.MethodPut, "/api/setlists/" + setlist.ID + "/sets", `{"set-1": ["nope"]}`, http.StatusUnprocessableEntity},
			{"Reserved Set", http.MethodPut, "/api/setlists/" + setlist.ID + "/sets", `{"pool": ["` + song.ID + `"]}`, http.StatusBadRequest},
			{"Save Unknown Setlist", http.MethodPut, "/api/setlists/missing/sets", `{}`, http.StatusNotFound},
			{"Duplicate Song", http.MethodPost, "/api/songs", models.SongRecord{Title: "one"}, http.StatusConflict},
			{"Empty Setlist Name", http.MethodPost, "/api/setlists", models.SetlistRecord{}, http.StatusBadRequest},
			{"Unknown Route", http.MethodGet, "/api/nope", nil, http.StatusNotFound},
			{"Method Not Allowed", http.MethodDelete, "/api/songs", nil, http.StatusMethodNotAllowed},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				resp, body := doJSON(t, tc.method, srv.URL+tc.path, tc.body)
				if resp.StatusCode != tc.want {
					t.Errorf("expected %d, got %d: %s", tc.want, resp.StatusCode, body)
				}

				var errResp services.ErrorResponse
				if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
					t.Errorf("expected JSON error body, got %s", body)
				}
			})
		}
	})

	t.Run("API Client Contract", func(t *testing.T) {
		srv, svc := newTestServer(t)
		ctx := context.Background()
		setlist, _ := svc.CreateSetlist(ctx, "Friday")
		song, _ := svc.AddSong(ctx, models.SongRecord{Title: "One", DurationMinutes: 4})

		client := services.NewAPIService(shared.ClientConfig{BaseURL: srv.URL}, nil)

		in := models.NewAssignment()
		in.Set("set-1", []string{song.ID})
		stored, err := client.Save(ctx, setlist.ID, in)
		if err != nil {
			t.Fatalf("Save() error = %v", err)
		}
		export, err := client.Load(ctx, setlist.ID)
		if err != nil {
			t.Fatalf("Load() error = %v", err)
		}
		if !export.Assignment.Equal(stored) {
			t.Errorf("loaded %v, stored %v", export.Assignment.IDs(), stored.IDs())
		}

		if _, err := client.Load(ctx, "missing"); !errors.Is(err, shared.ErrSetlistNotFound) {
			t.Errorf("expected ErrSetlistNotFound, got %v", err)
		}
		bad := models.NewAssignment()
		bad.Set("set-1", []string{"nope"})
		if _, err := client.Save(ctx, setlist.ID, bad); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestBasicRouter(t *testing.T) {
	t.Run("Middleware Order", func(t *testing.T) {
		var calls []string
		tag := func(name string) Middleware {
			return func(next http.Handler) http.Handler {
				return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					calls = append(calls, name)
					next.ServeHTTP(w, r)
				})
			}
		}

		r := NewBasicRouter()
		r.Use(tag("first"), tag("second"))
		r.Handle(http.MethodGet, "/ping", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "handler")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
		if !slices.Equal(calls, []string{"first", "second", "handler"}) {
			t.Errorf("unexpected call order %v", calls)
		}
	})

	t.Run("Recovery", func(t *testing.T) {
		var buf bytes.Buffer
		r := NewBasicRouter()
		r.Use(Recovery(log.New(&buf)))
		r.Handle(http.MethodGet, "/boom", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			panic("boom")
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if !strings.Contains(buf.String(), "panic recovered") {
			t.Errorf("expected panic to be logged, got %q", buf.String())
		}
	})

	t.Run("Request ID In Context", func(t *testing.T) {
		var seen string
		r := NewBasicRouter()
		r.Use(RequestID)
		r.Handle(http.MethodGet, "/id", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFrom(r.Context())
		}))

		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/id", nil))
		if seen == "" || seen != rec.Header().Get(RequestIDHeader) {
			t.Errorf("context id %q does not match header %q", seen, rec.Header().Get(RequestIDHeader))
		}
	})
}

func TestServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to listen: %v", err)
	}

	srv := New(ln.Addr().String(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "ok")
	}), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
