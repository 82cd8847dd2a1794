package models

import (
	"fmt"
	"strings"
)

// SetlistRecord is the wire representation of a setlist.
type SetlistRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Setlist is a persisted, named setlist. Its ordered sets are stored separately as an [Assignment].
type Setlist struct {
	entity
	name string
}

var _ Model = (*Setlist)(nil)

// NewSetlist creates a new [Setlist] with the given name.
func NewSetlist(sequence int, name string) *Setlist {
	return &Setlist{entity: newEntity(sequence), name: strings.TrimSpace(name)}
}

func (s *Setlist) Name() string        { return s.name }
func (s *Setlist) SetName(name string) { s.name = strings.TrimSpace(name) }

// Validate checks required fields.
func (s *Setlist) Validate() error {
	if s.name == "" {
		return fmt.Errorf("setlist name is required")
	}
	return nil
}

// Record converts the setlist to its wire representation.
func (s *Setlist) Record() SetlistRecord {
	return SetlistRecord{ID: s.id, Name: s.name}
}

// SetlistExport is the load payload: a setlist, the full song catalog, and the persisted set assignment.
type SetlistExport struct {
	Setlist    SetlistRecord `json:"setlist"`
	Songs      []SongRecord  `json:"songs"`
	Assignment Assignment    `json:"sets"`
}
