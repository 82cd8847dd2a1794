package models

import (
	"fmt"
	"strings"
)

// SongRecord is the wire representation of a catalog song.
type SongRecord struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Artist          string  `json:"artist,omitempty"`
	Key             string  `json:"key,omitempty"`
	DurationMinutes float64 `json:"durationMinutes"`
}

// Song is a persisted catalog song.
type Song struct {
	entity
	title           string
	artist          string
	key             string
	durationMinutes float64
}

var _ Model = (*Song)(nil)

// NewSong creates a new [Song] from its record. The record ID is ignored; repositories assign IDs.
func NewSong(sequence int, rec SongRecord) *Song {
	return &Song{
		entity:          newEntity(sequence),
		title:           strings.TrimSpace(rec.Title),
		artist:          strings.TrimSpace(rec.Artist),
		key:             strings.TrimSpace(rec.Key),
		durationMinutes: rec.DurationMinutes,
	}
}

func (s *Song) Title() string            { return s.title }
func (s *Song) Artist() string           { return s.artist }
func (s *Song) Key() string              { return s.key }
func (s *Song) DurationMinutes() float64 { return s.durationMinutes }

// SetDetails replaces the editable fields of the song.
func (s *Song) SetDetails(rec SongRecord) {
	s.title = strings.TrimSpace(rec.Title)
	s.artist = strings.TrimSpace(rec.Artist)
	s.key = strings.TrimSpace(rec.Key)
	s.durationMinutes = rec.DurationMinutes
}

// Validate checks required fields.
func (s *Song) Validate() error {
	if s.title == "" {
		return fmt.Errorf("song title is required")
	}
	if s.durationMinutes < 0 {
		return fmt.Errorf("song duration cannot be negative: %v", s.durationMinutes)
	}
	return nil
}

// Record converts the song to its wire representation.
func (s *Song) Record() SongRecord {
	return SongRecord{
		ID:              s.id,
		Title:           s.title,
		Artist:          s.artist,
		Key:             s.key,
		DurationMinutes: s.durationMinutes,
	}
}
