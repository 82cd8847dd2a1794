package setlist

import (
	"slices"
)

// Reserved container ids.
const (
	PoolID        = "pool"
	PlaceholderID = "placeholder"
)

// IsReserved reports whether id names the pool or the placeholder.
func IsReserved(id string) bool {
	return id == PoolID || id == PlaceholderID
}

// Store maps container ids to ordered song ids and tracks the display order of sets.
//
// Order never contains the pool or the placeholder. The placeholder never holds songs.
// Seq is the last number handed out by [AllocateID].
type Store struct {
	Containers map[string][]string
	Order      []string
	Seq        int
}

// NewStore creates a store holding only the empty reserved containers.
func NewStore() *Store {
	return &Store{
		Containers: map[string][]string{
			PoolID:        {},
			PlaceholderID: {},
		},
	}
}

// Clone returns a deep copy of the store.
func (s *Store) Clone() *Store {
	c := &Store{
		Containers: make(map[string][]string, len(s.Containers)),
		Order:      slices.Clone(s.Order),
		Seq:        s.Seq,
	}
	for id, items := range s.Containers {
		c.Containers[id] = append([]string{}, items...)
	}
	return c
}

// Equal reports whether both stores hold the same containers, item order, set order, and sequence.
func (s *Store) Equal(o *Store) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Seq != o.Seq || !slices.Equal(s.Order, o.Order) || len(s.Containers) != len(o.Containers) {
		return false
	}
	for id, items := range s.Containers {
		other, ok := o.Containers[id]
		if !ok || !slices.Equal(items, other) {
			return false
		}
	}
	return true
}

// HasContainer reports whether id names a container.
func (s *Store) HasContainer(id string) bool {
	_, ok := s.Containers[id]
	return ok
}

// IsSet reports whether id names a user-created set.
func (s *Store) IsSet(id string) bool {
	return s.HasContainer(id) && !IsReserved(id)
}

// Knows reports whether id names a container or an item.
func (s *Store) Knows(id string) bool {
	if s.HasContainer(id) {
		return true
	}
	_, _, ok := s.Find(id)
	return ok
}

// Items returns a copy of the song ids in a container.
func (s *Store) Items(id string) []string {
	return slices.Clone(s.Containers[id])
}

// Find returns the container holding itemID and the item's index within it.
func (s *Store) Find(itemID string) (string, int, bool) {
	for id, items := range s.Containers {
		if i := slices.Index(items, itemID); i >= 0 {
			return id, i, true
		}
	}
	return "", -1, false
}

// ContainerOf resolves id to a container: id itself when it names one, otherwise the container holding it.
func (s *Store) ContainerOf(id string) (string, bool) {
	if s.HasContainer(id) {
		return id, true
	}
	c, _, ok := s.Find(id)
	return c, ok
}

// SetIndex returns the position of a set in the display order, or -1.
func (s *Store) SetIndex(id string) int {
	return slices.Index(s.Order, id)
}

// MoveItem removes itemID from its container and inserts it into target at index, clamped to valid bounds.
//
// A set emptied by the move is pruned. Moving into the placeholder is refused.
func (s *Store) MoveItem(itemID, target string, index int) bool {
	if !s.HasContainer(target) || target == PlaceholderID {
		return false
	}
	src, i, ok := s.Find(itemID)
	if !ok {
		return false
	}

	s.Containers[src] = slices.Delete(s.Containers[src], i, i+1)
	dst := s.Containers[target]
	s.Containers[target] = slices.Insert(dst, clamp(index, 0, len(dst)), itemID)

	if src != target {
		s.pruneIfEmpty(src)
	}
	return true
}

// ReorderWithinContainer moves the item at from to position to (clamped) inside one container.
func (s *Store) ReorderWithinContainer(containerID string, from, to int) bool {
	items, ok := s.Containers[containerID]
	if !ok || from < 0 || from >= len(items) {
		return false
	}
	to = clamp(to, 0, len(items)-1)
	if from == to {
		return false
	}
	s.Containers[containerID] = arrayMove(items, from, to)
	return true
}

// ReorderContainers moves the set at from to position to (clamped) in the display order.
func (s *Store) ReorderContainers(from, to int) bool {
	if from < 0 || from >= len(s.Order) {
		return false
	}
	to = clamp(to, 0, len(s.Order)-1)
	if from == to {
		return false
	}
	s.Order = arrayMove(s.Order, from, to)
	return true
}

// CreateContainer adds a set newID holding exactly seedItemID, appended to the display order.
//
// The seed is removed from its previous container, which is pruned if that leaves it an empty set.
func (s *Store) CreateContainer(newID, seedItemID string) bool {
	if newID == "" || IsReserved(newID) || s.HasContainer(newID) {
		return false
	}
	src, i, ok := s.Find(seedItemID)
	if !ok {
		return false
	}

	s.Containers[src] = slices.Delete(s.Containers[src], i, i+1)
	s.Containers[newID] = []string{seedItemID}
	s.Order = append(s.Order, newID)
	s.pruneIfEmpty(src)
	return true
}

// PruneEmptyContainers removes every empty set from the containers and the display order.
// It returns the removed ids in display order.
func (s *Store) PruneEmptyContainers() []string {
	var removed []string
	for _, id := range slices.Clone(s.Order) {
		if s.pruneIfEmpty(id) {
			removed = append(removed, id)
		}
	}
	// Sets missing from Order are still sets.
	for id, items := range s.Containers {
		if !IsReserved(id) && len(items) == 0 {
			delete(s.Containers, id)
			removed = append(removed, id)
		}
	}
	return removed
}

func (s *Store) pruneIfEmpty(id string) bool {
	if IsReserved(id) {
		return false
	}
	if items, ok := s.Containers[id]; !ok || len(items) > 0 {
		return false
	}
	delete(s.Containers, id)
	if i := s.SetIndex(id); i >= 0 {
		s.Order = slices.Delete(s.Order, i, i+1)
	}
	return true
}

// arrayMove returns a new slice with the element at from moved to to.
func arrayMove(in []string, from, to int) []string {
	out := slices.Clone(in)
	v := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, v)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
