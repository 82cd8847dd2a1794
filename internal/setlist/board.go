package setlist

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/shared"
)

// SaveTicket identifies one save submission and the store revision its payload was built from.
type SaveTicket struct {
	Revision int
	Payload  models.Assignment
}

// Board is the editing surface for one setlist: the container store, the drag session, and the
// last persisted baseline.
//
// A Board is not safe for concurrent use; every call is expected on the event loop that owns it.
type Board struct {
	catalog  *Catalog
	store    *Store
	session  Session
	baseline models.Assignment
	revision int
	saving   bool
	logger   *log.Logger
}

// NewBoard builds a board from the catalog and the persisted set assignment.
//
// A nil logger discards output.
func NewBoard(catalog *Catalog, persisted models.Assignment, logger *log.Logger) *Board {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	b := &Board{catalog: catalog, logger: logger}
	b.reset(persisted)
	return b
}

func (b *Board) reset(a models.Assignment) {
	st, dropped := BuildStore(b.catalog, a)
	if len(dropped) > 0 {
		b.logger.Warn("dropped invalid entries from persisted sets", "ids", dropped)
	}
	if b.store != nil {
		st.Seq = max(st.Seq, b.store.Seq)
	}
	b.store = st
	b.baseline = Payload(st)
	b.session = carrySession(b.session, st)
	b.revision++
}

// carrySession keeps a drag alive across a reset when its subject survived, re-snapshotting so a cancel
// returns to the new state. Anything else ends the drag.
func carrySession(s Session, st *Store) Session {
	if !s.Dragging() || !st.Knows(s.ActiveID) {
		return Session{}
	}
	carried := Session{ActiveID: s.ActiveID, Snapshot: st.Clone()}
	if st.Knows(s.LastDropTarget) {
		carried.LastDropTarget = s.LastDropTarget
	}
	return carried
}

// apply installs the result of a transition, bumping the revision when the store changed.
func (b *Board) apply(next *Store, s Session) {
	if next != b.store {
		b.store = next
		b.revision++
	}
	b.session = s
}

// Store returns a copy of the current container state.
func (b *Board) Store() *Store { return b.store.Clone() }

// Session returns the current drag session.
func (b *Board) Session() Session { return b.session }

// Catalog returns the catalog the board draws from.
func (b *Board) Catalog() *Catalog { return b.catalog }

// Revision increases every time the store changes.
func (b *Board) Revision() int { return b.revision }

// Sets returns set ids in display order.
func (b *Board) Sets() []string { return append([]string{}, b.store.Order...) }

// Items returns the song ids of a container.
func (b *Board) Items(containerID string) []string { return b.store.Items(containerID) }

// Aggregate returns the total duration in minutes of a container.
func (b *Board) Aggregate(containerID string) float64 {
	return Aggregate(b.store, b.catalog, containerID)
}

// Label returns the positional label of a set.
func (b *Board) Label(setID string) string { return SetLabel(b.store, setID) }

// DragStart begins dragging an item or a set.
func (b *Board) DragStart(activeID string) {
	if !b.store.Knows(activeID) {
		b.logger.Debug("drag start ignored: unknown id", "id", activeID)
		return
	}
	if IsReserved(activeID) {
		b.logger.Debug("drag start ignored: reserved container", "id", activeID)
		return
	}
	b.apply(DragStart(b.store, b.session, activeID))
}

// Resolve computes the drop target for a drag-move frame.
func (b *Board) Resolve(f Frame) string {
	target, s := Resolve(b.store, b.session, f)
	b.session = s
	return target
}

// DragOver applies a hover transition.
func (b *Board) DragOver(ev OverEvent) {
	if !b.store.Knows(ev.ActiveID) {
		b.logger.Debug("drag over ignored: unknown id", "id", ev.ActiveID)
		return
	}
	if ev.OverID != "" && !b.store.Knows(ev.OverID) {
		b.logger.Debug("drag over ignored: unknown target", "id", ev.OverID)
		return
	}
	b.apply(DragOver(b.store, b.session, ev))
}

// DragEnd finishes the drag, dropping activeID onto overID.
func (b *Board) DragEnd(activeID, overID string) {
	if !b.store.Knows(activeID) {
		b.logger.Debug("drag end ignored: unknown id", "id", activeID)
		b.session = Session{}
		return
	}
	b.apply(DragEnd(b.store, b.session, activeID, overID))
}

// DragCancel restores the state captured at drag start.
func (b *Board) DragCancel() {
	b.apply(DragCancel(b.store, b.session))
}

// MoveTo performs a complete drag of itemID to index inside containerID, through the same calls a pointer
// or keyboard drag makes.
func (b *Board) MoveTo(itemID, containerID string, index int) bool {
	if _, _, ok := b.store.Find(itemID); !ok || !b.store.HasContainer(containerID) {
		b.logger.Debug("move ignored", "item", itemID, "container", containerID)
		return false
	}
	before := b.revision

	b.DragStart(itemID)
	if containerID == PlaceholderID {
		b.DragEnd(itemID, PlaceholderID)
		return b.revision != before
	}

	src, _, _ := b.store.Find(itemID)
	if src != containerID {
		over := containerID
		if items := b.store.Containers[containerID]; index >= 0 && index < len(items) {
			over = items[index]
		}
		b.DragOver(OverEvent{ActiveID: itemID, OverID: over})
		b.DragEnd(itemID, itemID)
		return b.revision != before
	}

	items := b.store.Containers[containerID]
	to := clamp(index, 0, len(items)-1)
	b.DragEnd(itemID, items[to])
	return b.revision != before
}

// Dirty reports whether the sets differ from the last persisted baseline.
func (b *Board) Dirty() bool {
	return !Payload(b.store).Equal(b.baseline)
}

// Baseline returns the last persisted assignment.
func (b *Board) Baseline() models.Assignment { return b.baseline.Clone() }

// BuildPayload returns the save payload for the current state.
func (b *Board) BuildPayload() models.Assignment { return Payload(b.store) }

// Saving reports whether a save is in flight.
func (b *Board) Saving() bool { return b.saving }

// BeginSave reserves the single save slot. While a save is in flight further requests are refused with
// [shared.ErrSaveInFlight].
func (b *Board) BeginSave() (SaveTicket, error) {
	if b.saving {
		return SaveTicket{}, shared.ErrSaveInFlight
	}
	b.saving = true
	return SaveTicket{Revision: b.revision, Payload: Payload(b.store)}, nil
}

// CompleteSave settles the in-flight save.
//
// A transport error or malformed response leaves the store and baseline untouched. When the store changed
// after the ticket was issued, the response becomes the baseline but local edits are kept and
// [shared.ErrStaleResponse] is returned.
func (b *Board) CompleteSave(t SaveTicket, resp *models.Assignment, err error) error {
	b.saving = false

	if err != nil {
		b.logger.Error("save failed, keeping local edits", "error", err)
		return fmt.Errorf("save failed: %w", err)
	}
	if resp == nil {
		return fmt.Errorf("%w: empty response", shared.ErrMalformedResponse)
	}
	if err := b.validate(*resp); err != nil {
		b.logger.Error("rejected save response", "error", err)
		return err
	}

	if t.Revision != b.revision {
		st, _ := BuildStore(b.catalog, *resp)
		b.baseline = Payload(st)
		b.logger.Warn("save acknowledged after further edits; keeping local state", "ticket", t.Revision, "revision", b.revision)
		return shared.ErrStaleResponse
	}
	return b.OnPersistSuccess(*resp)
}

// OnPersistSuccess adopts an acknowledged server assignment as both baseline and state, recomputing the pool.
func (b *Board) OnPersistSuccess(resp models.Assignment) error {
	if err := b.validate(resp); err != nil {
		return err
	}
	b.reset(resp)
	return nil
}

// OnRevert discards local edits, restoring the baseline with a recomputed pool.
func (b *Board) OnRevert() {
	b.reset(b.baseline)
}

func (b *Board) validate(a models.Assignment) error {
	seen := map[string]bool{}
	for _, setID := range a.IDs() {
		if setID == "" || IsReserved(setID) {
			return fmt.Errorf("%w: reserved set id %q", shared.ErrMalformedResponse, setID)
		}
		songs, _ := a.Songs(setID)
		for _, id := range songs {
			if !b.catalog.Has(id) {
				return fmt.Errorf("%w: unknown song %q", shared.ErrMalformedResponse, id)
			}
			if seen[id] {
				return fmt.Errorf("%w: song %q assigned twice", shared.ErrMalformedResponse, id)
			}
			seen[id] = true
		}
	}
	return nil
}

// SetTotal is the aggregate duration of one set.
type SetTotal struct {
	ID      string
	Label   string
	Minutes float64
}

// Totals returns the aggregate duration of every set in display order.
func (b *Board) Totals() []SetTotal {
	totals := make([]SetTotal, 0, len(b.store.Order))
	for _, id := range b.store.Order {
		totals = append(totals, SetTotal{ID: id, Label: SetLabel(b.store, id), Minutes: b.Aggregate(id)})
	}
	return totals
}
