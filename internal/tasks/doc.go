// Package tasks runs setlist operations that talk to a [services.Service], with progress reporting.
//
// # Core Operations
//
// [SetlistEngine] wraps a service and offers:
//
//  1. [SetlistEngine.Open] : load a setlist and build its [setlist.Board]
//
//  2. [SetlistEngine.Save] : persist the board state
//     - reserves the board's single save slot (a second save while one is in flight is refused)
//     - submits the payload and reconciles the acknowledgement with the board
//     - a late acknowledgement for an edited board only moves the baseline
//
//  3. [SetlistEngine.BulkExport] : export several setlists to files
//     - loads are rate limited, files are written by a worker pool
//     - a manifest summarizes successes and failures
//
// Save is split into [SetlistEngine.Persist], which only performs I/O and may run on any goroutine, and
// [SetlistEngine.Settle], which must run on the goroutine that owns the board. Event loops such as the TUI
// call them separately.
//
// # Progress Reporting
//
// Operations accept an optional channel of [ProgressUpdate]. Sends never block; updates are dropped when the
// channel is full.
package tasks
