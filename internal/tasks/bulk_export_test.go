package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/shared"
	tu "github.com/desertthunder/setlist/internal/testing"
)

func TestBulkExport(t *testing.T) {
	ctx := context.Background()

	t.Run("Exports Every Setlist", func(t *testing.T) {
		tt := []struct {
			format formatter.Format
			ext    string
		}{
			{formatter.FormatMarkdown, ".md"},
			{formatter.FormatCSV, ".csv"},
			{formatter.FormatText, ".txt"},
			{formatter.FormatJSON, ".json"},
		}

		for _, tc := range tt {
			t.Run(string(tc.format), func(t *testing.T) {
				svc := newTestService()
				second, _ := svc.CreateSetlist(ctx, "Saturday")
				engine := NewSetlistEngine(svc, nil)
				dir := t.TempDir()

				result, err := engine.BulkExport(ctx, nil, []string{"gig-1", second.ID}, BulkExportOpts{
					Format:    tc.format,
					OutputDir: dir,
					RateLimit: 100,
				})
				if err != nil {
					t.Fatalf("BulkExport failed: %v", err)
				}
				if result.SuccessfulExports != 2 || result.FailedExports != 0 {
					t.Errorf("expected 2 successes, got %+v", result)
				}
				for _, name := range []string{"friday", "saturday"} {
					tu.AssertFileExists(t, filepath.Join(dir, name+tc.ext))
				}
				tu.AssertFileExists(t, result.ManifestPath)
			})
		}
	})

	t.Run("Records Failures", func(t *testing.T) {
		svc := newTestService()
		engine := NewSetlistEngine(svc, nil)
		dir := t.TempDir()
		progress := make(chan ProgressUpdate, 10)

		result, err := engine.BulkExport(ctx, progress, []string{"gig-1", "missing"}, BulkExportOpts{
			Format:     formatter.FormatText,
			OutputDir:  dir,
			RateLimit:  100,
			NumWorkers: 50,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		if result.SuccessfulExports != 1 || result.FailedExports != 1 {
			t.Errorf("expected one success and one failure, got %+v", result)
		}

		for _, r := range result.Results {
			if r.SetlistID == "missing" && !errors.Is(r.Error, shared.ErrSetlistNotFound) {
				t.Errorf("expected ErrSetlistNotFound, got %v", r.Error)
			}
		}

		var manifest struct {
			Total   int `json:"total"`
			Failed  int `json:"failed"`
			Results []struct {
				ID    string `json:"id"`
				Error string `json:"error"`
			} `json:"results"`
		}
		if err := json.Unmarshal([]byte(tu.MustReadFile(t, result.ManifestPath)), &manifest); err != nil {
			t.Fatalf("invalid manifest: %v", err)
		}
		if manifest.Total != 2 || manifest.Failed != 1 || len(manifest.Results) != 2 {
			t.Errorf("unexpected manifest %+v", manifest)
		}

		close(progress)
		var failed bool
		for u := range progress {
			if u.Phase == ExportSetlist && strings.Contains(u.Message, "✗") {
				failed = true
			}
		}
		if !failed {
			t.Error("expected a failure progress update")
		}
	})

	t.Run("Same Names Do Not Collide", func(t *testing.T) {
		svc := newTestService()
		dup, _ := svc.CreateSetlist(ctx, "Friday")
		engine := NewSetlistEngine(svc, nil)
		dir := t.TempDir()

		result, err := engine.BulkExport(ctx, nil, []string{"gig-1", dup.ID}, BulkExportOpts{
			Format:    formatter.FormatJSON,
			OutputDir: dir,
			RateLimit: 100,
		})
		if err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}

		files := map[string]bool{}
		for _, r := range result.Results {
			files[r.File] = true
		}
		if len(files) != 2 {
			t.Errorf("expected two distinct files, got %v", files)
		}
		tu.AssertFileExists(t, filepath.Join(dir, dup.ID+".json"))
	})

	t.Run("Default Format", func(t *testing.T) {
		engine := NewSetlistEngine(newTestService(), nil)
		dir := t.TempDir()

		if _, err := engine.BulkExport(ctx, nil, []string{"gig-1"}, BulkExportOpts{OutputDir: dir, RateLimit: 100}); err != nil {
			t.Fatalf("BulkExport failed: %v", err)
		}
		tu.AssertFileExists(t, filepath.Join(dir, "friday.md"))
	})

	t.Run("Invalid Format", func(t *testing.T) {
		engine := NewSetlistEngine(newTestService(), nil)
		_, err := engine.BulkExport(ctx, nil, []string{"gig-1"}, BulkExportOpts{Format: "pdf", OutputDir: t.TempDir()})
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("Cancelled", func(t *testing.T) {
		engine := NewSetlistEngine(newTestService(), nil)
		dir := t.TempDir()
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		result, err := engine.BulkExport(cancelled, nil, []string{"gig-1"}, BulkExportOpts{OutputDir: dir})
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.SuccessfulExports != 0 {
			t.Errorf("nothing should be exported, got %+v", result)
		}
		if _, err := os.Stat(filepath.Join(dir, "export_manifest.json")); !os.IsNotExist(err) {
			t.Error("manifest should not be written for a cancelled export")
		}
	})

	t.Run("Nil Service", func(t *testing.T) {
		engine := NewSetlistEngine(nil, nil)
		if _, err := engine.BulkExport(ctx, nil, nil, BulkExportOpts{}); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
