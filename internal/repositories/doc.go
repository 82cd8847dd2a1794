// Package repositories implements SQLite persistence for the setlist catalog.
//
// Song and setlist repositories implement models.Repository[T] with soft deletes; deleted rows are
// excluded from every query.
//
// Key Implementations:
//   - [SongRepository] : catalog songs, de-duplicated by normalized title and artist
//   - [SetlistRepository] : named setlists
//   - [AssignmentRepository] : the ordered sets of a setlist and the ordered songs in each set
//
// [NextSequence] hands out per-table sequence numbers from dedicated sequence tables.
package repositories
