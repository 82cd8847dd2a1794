package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/setlist/internal/formatter"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
	"golang.org/x/time/rate"
)

// BulkExportOpts contains configuration for bulk setlist exports.
type BulkExportOpts struct {
	Format     formatter.Format // Export format (default: markdown)
	OutputDir  string           // Base output directory (default: setlists_{epoch})
	NumWorkers int              // Concurrent writers (default: 4, max: 10)
	RateLimit  float64          // Loads per second (default: 5)
}

// SetlistExportResult is the outcome of exporting one setlist.
type SetlistExportResult struct {
	SetlistID   string `json:"id"`
	SetlistName string `json:"name"`
	File        string `json:"file,omitempty"`
	Success     bool   `json:"success"`
	Error       error  `json:"-"`
}

// BulkExportResult summarizes a bulk export.
type BulkExportResult struct {
	TotalSetlists     int                   `json:"total"`
	SuccessfulExports int                   `json:"successful"`
	FailedExports     int                   `json:"failed"`
	OutputDirectory   string                `json:"output_directory"`
	ManifestPath      string                `json:"-"`
	Results           []SetlistExportResult `json:"results"`
}

type exportJob struct {
	SetlistID string
	Export    *models.SetlistExport
	Path      string
}

type manifestEntry struct {
	SetlistExportResult
	Error string `json:"error,omitempty"`
}

// BulkExport loads and exports several setlists concurrently.
//
// Loads are paced by a rate limiter and files are written by a small worker pool. Failures are recorded per
// setlist and a manifest (export_manifest.json) summarizing the run is written to the output directory.
func (e *SetlistEngine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.svc == nil {
		return nil, fmt.Errorf("%w: service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.Format == "" {
		opts.Format = formatter.FormatMarkdown
	}
	format, err := formatter.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	opts.Format = format
	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("setlists_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 4
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalSetlists:   len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]SetlistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan exportJob, len(ids))
	results := make(chan SetlistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		used := map[string]bool{}
		for i, id := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			export, err := e.svc.Load(ctx, id)
			if err != nil {
				results <- SetlistExportResult{
					SetlistID:   id,
					SetlistName: fmt.Sprintf("Unknown (%s)", id),
					Error:       fmt.Errorf("failed to load setlist: %w", err),
				}
				continue
			}

			e.sendProgress(prog, exportingSetlistUpdate(i+1, len(ids), export.Setlist.Name))
			name := formatter.Filename(export.Setlist, opts.Format)
			if used[name] {
				name = id + "." + string(opts.Format)
			}
			used[name] = true

			jobs <- exportJob{SetlistID: id, Export: export, Path: filepath.Join(opts.OutputDir, name)}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)

		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.SetlistName, res.File))
		} else {
			result.FailedExports++
			e.logger.Warn("export failed", "setlist", res.SetlistID, "error", res.Error)
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.SetlistName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := writeManifest(result, manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

// exportWorker writes setlists from the jobs channel until it is closed.
func (e *SetlistEngine) exportWorker(ctx context.Context, wg *sync.WaitGroup, jobs <-chan exportJob, results chan<- SetlistExportResult, opts BulkExportOpts) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}

		res := SetlistExportResult{SetlistID: job.SetlistID, SetlistName: job.Export.Setlist.Name}
		written, err := formatter.WriteExport(job.Export, opts.Format, job.Path)
		if err != nil {
			res.Error = err
		} else {
			res.File = written
			res.Success = true
		}
		results <- res
	}
}

func writeManifest(result *BulkExportResult, path string) error {
	manifest := struct {
		*BulkExportResult
		ExportedAt time.Time       `json:"exported_at"`
		Results    []manifestEntry `json:"results"`
	}{BulkExportResult: result, ExportedAt: time.Now().UTC()}

	for _, r := range result.Results {
		entry := manifestEntry{SetlistExportResult: r}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		manifest.Results = append(manifest.Results, entry)
	}

	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
