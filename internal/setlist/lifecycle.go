package setlist

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/desertthunder/setlist/internal/models"
)

const setIDPrefix = "set-"

// Item is a catalog entry as seen by the engine: an id and the minutes it contributes to a set.
type Item struct {
	ID              string
	DurationMinutes float64
}

// Catalog is the ordered, de-duplicated list of songs a setlist draws from.
type Catalog struct {
	items []Item
	index map[string]int
}

// NewCatalog builds a catalog, keeping the first occurrence of any repeated id.
func NewCatalog(items []Item) *Catalog {
	c := &Catalog{index: make(map[string]int, len(items))}
	for _, it := range items {
		if it.ID == "" || IsReserved(it.ID) {
			continue
		}
		if _, dup := c.index[it.ID]; dup {
			continue
		}
		c.index[it.ID] = len(c.items)
		c.items = append(c.items, it)
	}
	return c
}

// CatalogFromSongs builds a catalog from song records.
func CatalogFromSongs(songs []models.SongRecord) *Catalog {
	items := make([]Item, len(songs))
	for i, s := range songs {
		items[i] = Item{ID: s.ID, DurationMinutes: s.DurationMinutes}
	}
	return NewCatalog(items)
}

// Len returns the number of songs.
func (c *Catalog) Len() int { return len(c.items) }

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// Duration returns the duration of id in minutes, or 0 when unknown.
func (c *Catalog) Duration(id string) float64 {
	if i, ok := c.index[id]; ok {
		return c.items[i].DurationMinutes
	}
	return 0
}

// IDs returns every song id in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.items))
	for i, it := range c.items {
		ids[i] = it.ID
	}
	return ids
}

// AllocateID returns a set id unused in st, advancing st.Seq.
func AllocateID(st *Store) string {
	for {
		st.Seq++
		id := setIDPrefix + strconv.Itoa(st.Seq)
		if !st.HasContainer(id) {
			return id
		}
	}
}

// CreateSet allocates a fresh id and creates a set holding only seedItemID.
func CreateSet(st *Store, seedItemID string) (string, bool) {
	if _, _, ok := st.Find(seedItemID); !ok {
		return "", false
	}
	id := AllocateID(st)
	if !st.CreateContainer(id, seedItemID) {
		return "", false
	}
	return id, true
}

// Aggregate returns the total duration in minutes of the songs in a container.
func Aggregate(st *Store, c *Catalog, containerID string) float64 {
	var total float64
	for _, id := range st.Containers[containerID] {
		total += c.Duration(id)
	}
	return total
}

// SetLabel returns the positional label of a set ("Set 1", "Set 2", ...), or "" for anything else.
func SetLabel(st *Store, id string) string {
	i := st.SetIndex(id)
	if i < 0 {
		return ""
	}
	return fmt.Sprintf("Set %d", i+1)
}

// seqOf extracts N from ids shaped like "set-N".
func seqOf(id string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(id, setIDPrefix))
	if err != nil || !strings.HasPrefix(id, setIDPrefix) {
		return 0
	}
	return n
}

// BuildStore initializes a store from a persisted assignment, computing the pool as the catalog minus
// every assigned song.
//
// Reserved set ids, songs missing from the catalog, repeated songs, and empty sets are dropped;
// the dropped ids are returned.
func BuildStore(c *Catalog, a models.Assignment) (*Store, []string) {
	st := NewStore()
	assigned := map[string]bool{}
	var dropped []string

	for _, setID := range a.IDs() {
		if setID == "" || IsReserved(setID) {
			dropped = append(dropped, setID)
			continue
		}
		songs, _ := a.Songs(setID)
		var items []string
		for _, id := range songs {
			if !c.Has(id) || assigned[id] {
				dropped = append(dropped, id)
				continue
			}
			assigned[id] = true
			items = append(items, id)
		}
		if len(items) == 0 {
			continue
		}
		st.Containers[setID] = items
		st.Order = append(st.Order, setID)
		st.Seq = max(st.Seq, seqOf(setID))
	}

	for _, id := range c.IDs() {
		if !assigned[id] {
			st.Containers[PoolID] = append(st.Containers[PoolID], id)
		}
	}
	return st, dropped
}

// Payload maps every set to its ordered song ids, in display order. Pool and placeholder are excluded.
func Payload(st *Store) models.Assignment {
	a := models.NewAssignment()
	for _, id := range st.Order {
		if st.IsSet(id) {
			a.Set(id, st.Containers[id])
		}
	}
	return a
}
