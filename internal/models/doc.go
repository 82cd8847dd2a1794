// Package models defines domain entities and persistence interfaces for the setlist service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs exchanged over the HTTP API
//   - [SongRecord] : Song metadata with duration used for set totals
//   - [SetlistRecord] : Basic setlist metadata
//   - [Assignment] : Ordered mapping of set ids to ordered song ids (the save payload)
//   - [SetlistExport] : Setlist with its song catalog and current assignment
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Song] : Catalog songs
//   - [Setlist] : Named setlists owning ordered sets
//
// All persistent entities implement the [Model] interface providing ID generation, timestamps, validation, and soft delete support.
// The [Repository] interface defines standard CRUD operations for database access.
package models
