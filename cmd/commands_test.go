package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/setlist"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
	"github.com/urfave/cli/v3"
)

func newTestService(sets ...[]string) *tu.MemoryService {
	assignment := models.NewAssignment()
	for i, songs := range sets {
		assignment.Set("srv-"+string(rune('a'+i)), songs)
	}

	return tu.NewMemoryService(
		models.SetlistRecord{ID: "gig-1", Name: "Friday"},
		[]models.SongRecord{
			{ID: "s1", Title: "One", DurationMinutes: 3},
			{ID: "s2", Title: "Two", DurationMinutes: 4},
			{ID: "s3", Title: "Three", DurationMinutes: 5},
		},
		assignment,
	)
}

func newLocalRunner(output io.Writer) *Runner {
	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	return NewRunner(RunnerOpts{Config: config, Output: output, Logger: shared.NewLogger(io.Discard)})
}

func run(r *Runner, args ...string) error {
	app := &cli.Command{Name: "setlist", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"setlist"}, args...))
}

func runWith(svc services.Service, args ...string) (string, error) {
	output := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{Service: svc, Output: output, Logger: shared.NewLogger(io.Discard)})
	err := run(r, args...)
	return output.String(), err
}

func TestSetlistsCommands(t *testing.T) {
	t.Run("list", func(t *testing.T) {
		out, err := runWith(newTestService(), "setlists", "list")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "gig-1") || !strings.Contains(out, "Friday") {
			t.Errorf("expected setlist in output, got %q", out)
		}
	})

	t.Run("list as JSON", func(t *testing.T) {
		out, err := runWith(newTestService(), "setlists", "list", "--json")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, `"id": "gig-1"`) {
			t.Errorf("expected JSON output, got %q", out)
		}
	})

	t.Run("create", func(t *testing.T) {
		svc := newTestService()
		out, err := runWith(svc, "setlists", "create", "Saturday")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Created Saturday (setlist-2)") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("create without name", func(t *testing.T) {
		if _, err := runWith(newTestService(), "setlists", "create"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("show", func(t *testing.T) {
		out, err := runWith(newTestService([]string{"s1"}), "setlists", "show", "gig-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		for _, want := range []string{"Setlist: Friday", "Set 1 (3:00)", "1. One"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q in output, got %q", want, out)
			}
		}
	})

	t.Run("show unknown setlist", func(t *testing.T) {
		if _, err := runWith(newTestService(), "setlists", "show", "nope"); !errors.Is(err, shared.ErrSetlistNotFound) {
			t.Errorf("expected ErrSetlistNotFound, got %v", err)
		}
	})

	t.Run("show with invalid format", func(t *testing.T) {
		if _, err := runWith(newTestService(), "setlists", "show", "--format", "pdf", "gig-1"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestMoveCommands(t *testing.T) {
	t.Run("song into a set by title", func(t *testing.T) {
		svc := newTestService([]string{"s1"})
		out, err := runWith(svc, "setlists", "move", "--song", "Two", "--to", "1", "gig-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		songs, _ := svc.Saved("gig-1").Songs("srv-a")
		if strings.Join(songs, ",") != "s1,s2" {
			t.Errorf("expected [s1 s2], got %v", songs)
		}
		if !strings.Contains(out, "Saved") || !strings.Contains(out, "7:00") {
			t.Errorf("expected totals in output, got %q", out)
		}
	})

	t.Run("song to the front of a set", func(t *testing.T) {
		svc := newTestService([]string{"s1", "s2"})
		if _, err := runWith(svc, "setlists", "move", "--song", "s2", "--to", "srv-a", "--index", "0", "gig-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		songs, _ := svc.Saved("gig-1").Songs("srv-a")
		if strings.Join(songs, ",") != "s2,s1" {
			t.Errorf("expected [s2 s1], got %v", songs)
		}
	})

	t.Run("song into a new set", func(t *testing.T) {
		svc := newTestService([]string{"s1"})
		if _, err := runWith(svc, "setlists", "move", "--song", "s3", "--to", "new", "gig-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		saved := svc.Saved("gig-1")
		if saved.Len() != 2 {
			t.Fatalf("expected 2 sets, got %d", saved.Len())
		}
		songs, _ := saved.Songs(saved.IDs()[1])
		if strings.Join(songs, ",") != "s3" {
			t.Errorf("expected new set to hold s3, got %v", songs)
		}
	})

	t.Run("last song back to the pool removes the set", func(t *testing.T) {
		svc := newTestService([]string{"s1"})
		if _, err := runWith(svc, "setlists", "move", "--song", "s1", "--to", "pool", "gig-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if n := svc.Saved("gig-1").Len(); n != 0 {
			t.Errorf("expected no sets, got %d", n)
		}
	})

	t.Run("no change skips the save", func(t *testing.T) {
		svc := newTestService([]string{"s1"})
		out, err := runWith(svc, "setlists", "move", "--song", "s1", "--to", "1", "--index", "0", "gig-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "No change") {
			t.Errorf("expected no change, got %q", out)
		}
		if svc.SaveCalls != 0 {
			t.Errorf("expected no save, got %d", svc.SaveCalls)
		}
	})

	t.Run("errors", func(t *testing.T) {
		tt := []struct {
			name string
			args []string
			want error
		}{
			{"unknown song", []string{"--song", "nope", "--to", "1"}, shared.ErrSongNotFound},
			{"set number out of range", []string{"--song", "s2", "--to", "5"}, shared.ErrUnknownContainer},
			{"unknown set id", []string{"--song", "s2", "--to", "set-9"}, shared.ErrUnknownContainer},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				args := append([]string{"setlists", "move"}, tc.args...)
				args = append(args, "gig-1")
				if _, err := runWith(newTestService([]string{"s1"}), args...); !errors.Is(err, tc.want) {
					t.Errorf("expected %v, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("save failure is reported", func(t *testing.T) {
		svc := newTestService([]string{"s1"})
		svc.SaveErr = shared.ErrAPIRequest

		_, err := runWith(svc, "setlists", "move", "--song", "s2", "--to", "1", "gig-1")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})

	t.Run("move-set", func(t *testing.T) {
		svc := newTestService([]string{"s1"}, []string{"s2"})
		if _, err := runWith(svc, "setlists", "move-set", "--set", "2", "--to", "1", "gig-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		ids := svc.Saved("gig-1").IDs()
		if strings.Join(ids, ",") != "srv-b,srv-a" {
			t.Errorf("expected [srv-b srv-a], got %v", ids)
		}
	})

	t.Run("move-set onto itself", func(t *testing.T) {
		svc := newTestService([]string{"s1"}, []string{"s2"})
		out, err := runWith(svc, "setlists", "move-set", "--set", "srv-a", "--to", "1", "gig-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "No change") || svc.SaveCalls != 0 {
			t.Errorf("expected no change, got %q with %d saves", out, svc.SaveCalls)
		}
	})
}

func TestExportCommand(t *testing.T) {
	t.Run("single setlist to a file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "friday.txt")
		out, err := runWith(newTestService([]string{"s1"}), "setlists", "export", "--format", "txt", "--output", path, "gig-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, path)
		if !strings.Contains(tu.MustReadFile(t, path), "Setlist: Friday") {
			t.Error("expected text export in file")
		}
		if !strings.Contains(out, "Exported Friday") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("single setlist to stdout", func(t *testing.T) {
		out, err := runWith(newTestService([]string{"s1"}), "setlists", "export", "--format", "txt", "--output", "-", "gig-1")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Setlist: Friday") {
			t.Errorf("expected export on stdout, got %q", out)
		}
	})

	t.Run("all setlists", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "out")
		svc := newTestService([]string{"s1"})
		if _, err := svc.CreateSetlist(context.Background(), "Saturday"); err != nil {
			t.Fatalf("failed to create setlist: %v", err)
		}

		out, err := runWith(svc, "setlists", "export", "--all", "--format", "json", "--output", dir, "--rate", "100")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, filepath.Join(dir, "friday.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "saturday.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(out, "Exported 2 of 2 setlists") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("failed setlists are reported", func(t *testing.T) {
		dir := t.TempDir()
		out, err := runWith(newTestService(), "setlists", "export", "--output", dir, "--rate", "100", "gig-1", "missing")
		if err == nil {
			t.Fatal("expected error for failed export")
		}
		if !strings.Contains(out, "failed: missing") {
			t.Errorf("expected failure in output, got %q", out)
		}
	})

	t.Run("no ids", func(t *testing.T) {
		if _, err := runWith(newTestService(), "setlists", "export"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}

func TestSongsCommands(t *testing.T) {
	t.Run("add", func(t *testing.T) {
		svc := newTestService()
		out, err := runWith(svc, "songs", "add", "--artist", "Band", "--duration", "3:30", "New Song")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Added New Song (song-4)") {
			t.Errorf("unexpected output %q", out)
		}

		songs, _ := svc.ListSongs(context.Background())
		if got := songs[3]; got.Artist != "Band" || got.DurationMinutes != 3.5 {
			t.Errorf("unexpected song %+v", got)
		}
	})

	t.Run("add with invalid duration", func(t *testing.T) {
		_, err := runWith(newTestService(), "songs", "add", "--duration", "3:75", "Bad")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("list", func(t *testing.T) {
		out, err := runWith(newTestService(), "songs", "list")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Songs (3)") || !strings.Contains(out, "Three") {
			t.Errorf("unexpected output %q", out)
		}
	})

	t.Run("import", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.csv")
		data := "title,artist,key,duration\nBlue,Band,E,4:15\nGreen,,,3\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("failed to write csv: %v", err)
		}

		svc := newTestService()
		out, err := runWith(svc, "songs", "import", path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(out, "Imported 2 songs (0 already in catalog)") {
			t.Errorf("unexpected output %q", out)
		}

		songs, _ := svc.ListSongs(context.Background())
		if len(songs) != 5 || songs[3].Key != "E" || songs[3].DurationMinutes != 4.25 {
			t.Errorf("unexpected catalog %+v", songs)
		}
	})

	t.Run("import against the local database counts duplicates", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "songs.csv")
		if err := os.WriteFile(path, []byte("Blue,Band\nblue , band\n"), 0644); err != nil {
			t.Fatalf("failed to write csv: %v", err)
		}

		output := &bytes.Buffer{}
		runner := newLocalRunner(output)
		defer runner.Close()

		if err := run(runner, "songs", "import", path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !strings.Contains(output.String(), "Imported 1 songs (1 already in catalog)") {
			t.Errorf("unexpected output %q", output.String())
		}
	})
}

func TestReadSongCSV(t *testing.T) {
	tt := []struct {
		name    string
		data    string
		want    int
		wantErr error
	}{
		{"with header", "Title,Artist\nA,B\n", 1, nil},
		{"without header", "A\nB,,,2.5\n", 2, nil},
		{"empty", "", 0, nil},
		{"missing title", "A\n,B\n", 0, shared.ErrInvalidInput},
		{"bad duration", "A,,,soon\n", 0, shared.ErrInvalidArgument},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			records, err := readSongCSV(strings.NewReader(tc.data))
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("expected %v, got %v", tc.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(records) != tc.want {
				t.Errorf("expected %d records, got %d", tc.want, len(records))
			}
		})
	}
}

func TestFindHelpers(t *testing.T) {
	songs := []models.SongRecord{
		{ID: "s1", Title: "Intro"},
		{ID: "s2", Title: "Reprise"},
		{ID: "s3", Title: "reprise"},
	}

	t.Run("findSong", func(t *testing.T) {
		if id, err := findSong(songs, "s1"); err != nil || id != "s1" {
			t.Errorf("expected s1, got %q (%v)", id, err)
		}
		if id, err := findSong(songs, "intro"); err != nil || id != "s1" {
			t.Errorf("expected title match s1, got %q (%v)", id, err)
		}
		if _, err := findSong(songs, "Reprise"); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ambiguous title error, got %v", err)
		}
		if _, err := findSong(songs, "Outro"); !errors.Is(err, shared.ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("findContainer", func(t *testing.T) {
		persisted := models.NewAssignment()
		persisted.Set("a", []string{"s1"})
		persisted.Set("b", []string{"s2"})
		board := setlist.NewBoard(setlist.CatalogFromSongs(songs), persisted, nil)

		tt := []struct {
			ref  string
			want string
		}{
			{"pool", setlist.PoolID},
			{"NEW", setlist.PlaceholderID},
			{"1", "a"},
			{"2", "b"},
			{"b", "b"},
		}
		for _, tc := range tt {
			got, err := findContainer(board, tc.ref)
			if err != nil || got != tc.want {
				t.Errorf("%q: expected %q, got %q (%v)", tc.ref, tc.want, got, err)
			}
		}

		for _, ref := range []string{"0", "3", "c"} {
			if _, err := findContainer(board, ref); !errors.Is(err, shared.ErrUnknownContainer) {
				t.Errorf("%q: expected ErrUnknownContainer, got %v", ref, err)
			}
		}
	})
}

func TestSetupCommands(t *testing.T) {
	t.Run("database creates config and applies migrations", func(t *testing.T) {
		t.Chdir(t.TempDir())

		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(io.Discard)})
		defer runner.Close()

		if err := run(runner, "setup", "database", "--config", "config.toml"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		tu.AssertFileExists(t, "config.toml")
		tu.AssertFileExists(t, "setlist.db")
		if !strings.Contains(output.String(), "create_catalog") || strings.Contains(output.String(), "pending") {
			t.Errorf("expected every migration applied, got %q", output.String())
		}
	})

	t.Run("status on a fresh database", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := newLocalRunner(output)

		if err := run(runner, "setup", "status"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if strings.Count(output.String(), "pending") != 2 {
			t.Errorf("expected 2 pending migrations, got %q", output.String())
		}
	})

	t.Run("rollback with nothing applied", func(t *testing.T) {
		runner := newLocalRunner(&bytes.Buffer{})
		if err := run(runner, "setup", "rollback"); err == nil {
			t.Error("expected error rolling back an empty database")
		}
	})
}
