package setlist

// Session is the ephemeral state of an in-progress drag.
//
// The zero value is an idle session.
type Session struct {
	ActiveID                      string
	Snapshot                      *Store
	LastDropTarget                string
	RecentlyMovedAcrossContainers bool
}

// Dragging reports whether a drag is in progress.
func (s Session) Dragging() bool {
	return s.ActiveID != ""
}

// OverEvent describes the subject hovering a drop target.
//
// The rects are optional; when both are present they decide whether the subject is past the hovered
// item's vertical midpoint.
type OverEvent struct {
	ActiveID   string
	OverID     string
	ActiveRect Rect
	OverRect   Rect
}

// PastMidpoint reports whether the active rect's center lies below the vertical midpoint of over.
func PastMidpoint(active, over Rect) bool {
	if active.IsZero() || over.IsZero() {
		return false
	}
	return active.Center().Y > over.Center().Y
}

// DragStart snapshots the store and marks activeID as the dragged subject.
func DragStart(st *Store, s Session, activeID string) (*Store, Session) {
	if !st.Knows(activeID) || IsReserved(activeID) {
		return st, s
	}
	return st, Session{ActiveID: activeID, Snapshot: st.Clone()}
}

// DragOver moves a dragged item into the container under it when that container differs from its own.
//
// Hovering a container appends; hovering an item inserts at that item's index, one further when past its
// midpoint. Dragged sets, a missing target, the placeholder, and same-container hovers are no-ops.
func DragOver(st *Store, s Session, ev OverEvent) (*Store, Session) {
	if ev.OverID == "" || st.IsSet(ev.ActiveID) {
		return st, s
	}
	dst, ok := st.ContainerOf(ev.OverID)
	if !ok || dst == PlaceholderID {
		return st, s
	}
	src, _, ok := st.Find(ev.ActiveID)
	if !ok || src == dst {
		return st, s
	}

	index := len(st.Containers[dst])
	if !st.HasContainer(ev.OverID) {
		_, index, _ = st.Find(ev.OverID)
		if PastMidpoint(ev.ActiveRect, ev.OverRect) {
			index++
		}
	}

	next := st.Clone()
	if !next.MoveItem(ev.ActiveID, dst, index) {
		return st, s
	}
	s.RecentlyMovedAcrossContainers = true
	return next, s
}

// DragEnd finishes a drag and returns an idle session.
//
//   - set dropped on a set (or an item in one): the display order is updated
//   - no target: nothing else to do, the item was placed during DragOver
//   - item dropped on the placeholder: a new set is created holding the item
//   - otherwise: the item is reordered inside its container and empty sets are pruned
func DragEnd(st *Store, _ Session, activeID, overID string) (*Store, Session) {
	idle := Session{}

	if st.IsSet(activeID) {
		over, ok := st.ContainerOf(overID)
		if !ok || !st.IsSet(over) {
			return st, idle
		}
		next := st.Clone()
		if !next.ReorderContainers(st.SetIndex(activeID), st.SetIndex(over)) {
			return st, idle
		}
		return next, idle
	}

	if overID == "" {
		return st, idle
	}

	if overID == PlaceholderID {
		next := st.Clone()
		if _, ok := CreateSet(next, activeID); !ok {
			return st, idle
		}
		return next, idle
	}

	next := st.Clone()
	changed := false
	src, from, ok := next.Find(activeID)
	if ok && !next.HasContainer(overID) {
		if dst, to, found := next.Find(overID); found && dst == src {
			changed = next.ReorderWithinContainer(src, from, to)
		}
	}
	if len(next.PruneEmptyContainers()) > 0 {
		changed = true
	}
	if !changed {
		return st, idle
	}
	return next, idle
}

// DragCancel restores the snapshot taken at drag start and returns an idle session.
func DragCancel(st *Store, s Session) (*Store, Session) {
	if s.Snapshot == nil || s.Snapshot.Equal(st) {
		return st, Session{}
	}
	return s.Snapshot.Clone(), Session{}
}
