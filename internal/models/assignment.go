package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Assignment maps set ids to ordered song ids, remembering the display order of the sets.
//
// On the wire it is a JSON object `{ "<setId>": ["<songId>", ...] }` whose key order is the set order.
// The zero value is an empty assignment ready to use.
type Assignment struct {
	order []string
	sets  map[string][]string
}

var (
	_ json.Marshaler   = Assignment{}
	_ json.Unmarshaler = (*Assignment)(nil)
)

// NewAssignment creates an empty [Assignment].
func NewAssignment() Assignment {
	return Assignment{sets: map[string][]string{}}
}

// Set stores a copy of songs under id. New ids are appended to the set order.
func (a *Assignment) Set(id string, songs []string) {
	if a.sets == nil {
		a.sets = map[string][]string{}
	}
	if _, ok := a.sets[id]; !ok {
		a.order = append(a.order, id)
	}
	a.sets[id] = append([]string{}, songs...)
}

// Songs returns a copy of the song ids stored under id.
func (a Assignment) Songs(id string) ([]string, bool) {
	songs, ok := a.sets[id]
	if !ok {
		return nil, false
	}
	return slices.Clone(songs), true
}

// IDs returns the set ids in display order.
func (a Assignment) IDs() []string {
	return slices.Clone(a.order)
}

// Len returns the number of sets.
func (a Assignment) Len() int {
	return len(a.order)
}

// SongIDs returns every assigned song id, in set order.
func (a Assignment) SongIDs() []string {
	var ids []string
	for _, id := range a.order {
		ids = append(ids, a.sets[id]...)
	}
	return ids
}

// Clone returns a deep copy.
func (a Assignment) Clone() Assignment {
	c := NewAssignment()
	for _, id := range a.order {
		c.Set(id, a.sets[id])
	}
	return c
}

// Equal reports whether both assignments hold the same sets, in the same order, with the same song order.
func (a Assignment) Equal(b Assignment) bool {
	if !slices.Equal(a.order, b.order) {
		return false
	}
	for _, id := range a.order {
		if !slices.Equal(a.sets[id], b.sets[id]) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the assignment as an object whose keys follow the set order.
func (a Assignment) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range a.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		songs := a.sets[id]
		if songs == nil {
			songs = []string{}
		}
		val, err := json.Marshal(songs)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object of string arrays, keeping key order. A JSON null is a no-op.
func (a *Assignment) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("invalid assignment: expected object, got %v", tok)
	}

	out := NewAssignment()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("invalid assignment: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("invalid assignment key: %v", keyTok)
		}
		if _, dup := out.sets[key]; dup {
			return fmt.Errorf("invalid assignment: duplicate set %q", key)
		}

		var songs []string
		if err := dec.Decode(&songs); err != nil {
			return fmt.Errorf("invalid assignment songs for %q: %w", key, err)
		}
		out.Set(key, songs)
	}

	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("invalid assignment: %w", err)
	}

	*a = out
	return nil
}
