package setlist

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestDragStart(t *testing.T) {
	st := newStore([]string{"A"}, map[string][]string{"A": {"s1"}, PoolID: {"s2"}})

	t.Run("snapshots the store", func(t *testing.T) {
		next, s := DragStart(st, Session{}, "s2")
		if next != st {
			t.Error("drag start should not change the store")
		}
		if s.ActiveID != "s2" || !s.Dragging() {
			t.Errorf("session = %+v", s)
		}
		if s.Snapshot == nil || s.Snapshot == st || !s.Snapshot.Equal(st) {
			t.Error("expected an independent snapshot equal to the store")
		}
	})

	t.Run("ignores unknown and reserved ids", func(t *testing.T) {
		for _, id := range []string{"", "nope", PoolID, PlaceholderID} {
			_, s := DragStart(st, Session{}, id)
			if s.Dragging() {
				t.Errorf("DragStart(%q) started a drag", id)
			}
		}
	})
}

func TestDragOver(t *testing.T) {
	fixture := func() *Store {
		return newStore([]string{"A", "B"}, map[string][]string{
			"A":    {"s1", "s2"},
			"B":    {"s3"},
			PoolID: {"s4"},
		})
	}

	t.Run("hovering an item inserts at its index", func(t *testing.T) {
		st := fixture()
		next, s := DragOver(st, Session{ActiveID: "s4"}, OverEvent{ActiveID: "s4", OverID: "s2"})

		if got := next.Items("A"); !slices.Equal(got, []string{"s1", "s4", "s2"}) {
			t.Errorf("A = %v", got)
		}
		if !s.RecentlyMovedAcrossContainers {
			t.Error("expected recently moved flag")
		}
		if got := st.Items(PoolID); !slices.Equal(got, []string{"s4"}) {
			t.Errorf("input store mutated: pool = %v", got)
		}
	})

	t.Run("past the midpoint inserts after", func(t *testing.T) {
		ev := OverEvent{
			ActiveID:   "s4",
			OverID:     "s1",
			ActiveRect: Rect{X: 0, Y: 8, Width: 10, Height: 10},
			OverRect:   Rect{X: 0, Y: 0, Width: 10, Height: 10},
		}
		next, _ := DragOver(fixture(), Session{ActiveID: "s4"}, ev)

		if got := next.Items("A"); !slices.Equal(got, []string{"s1", "s4", "s2"}) {
			t.Errorf("A = %v", got)
		}
	})

	t.Run("hovering a container appends", func(t *testing.T) {
		next, _ := DragOver(fixture(), Session{ActiveID: "s4"}, OverEvent{ActiveID: "s4", OverID: "B"})

		if got := next.Items("B"); !slices.Equal(got, []string{"s3", "s4"}) {
			t.Errorf("B = %v", got)
		}
	})

	t.Run("moving the last item prunes its set", func(t *testing.T) {
		next, _ := DragOver(fixture(), Session{ActiveID: "s3"}, OverEvent{ActiveID: "s3", OverID: "A"})

		if next.HasContainer("B") {
			t.Error("expected B pruned")
		}
		if !slices.Equal(next.Order, []string{"A"}) {
			t.Errorf("order = %v", next.Order)
		}
	})

	t.Run("no-ops", func(t *testing.T) {
		tt := []struct {
			name string
			ev   OverEvent
		}{
			{"same container", OverEvent{ActiveID: "s1", OverID: "s2"}},
			{"same container by id", OverEvent{ActiveID: "s1", OverID: "A"}},
			{"no target", OverEvent{ActiveID: "s1"}},
			{"placeholder", OverEvent{ActiveID: "s1", OverID: PlaceholderID}},
			{"unknown target", OverEvent{ActiveID: "s1", OverID: "zzz"}},
			{"dragging a set", OverEvent{ActiveID: "A", OverID: "s3"}},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				st := fixture()
				next, s := DragOver(st, Session{ActiveID: tc.ev.ActiveID}, tc.ev)
				if next != st {
					t.Errorf("expected unchanged store, got %v", next.Containers)
				}
				if s.RecentlyMovedAcrossContainers {
					t.Error("flag should not be set on a no-op")
				}
			})
		}
	})
}

func TestDragEnd(t *testing.T) {
	t.Run("dropping on the placeholder creates a set", func(t *testing.T) {
		st := newStore([]string{"A"}, map[string][]string{"A": {"s1"}, PoolID: {"s4"}})
		_, s := DragStart(st, Session{}, "s4")
		next, s := DragEnd(st, s, "s4", PlaceholderID)

		if s.Dragging() {
			t.Error("session should be idle")
		}
		if got := next.Items("set-1"); !slices.Equal(got, []string{"s4"}) {
			t.Errorf("set-1 = %v", got)
		}
		if !slices.Equal(next.Order, []string{"A", "set-1"}) {
			t.Errorf("order = %v", next.Order)
		}
		if len(next.Items(PoolID)) != 0 {
			t.Errorf("pool = %v", next.Items(PoolID))
		}
	})

	t.Run("new set id skips taken ids", func(t *testing.T) {
		st := newStore([]string{"set-1"}, map[string][]string{"set-1": {"s1"}, PoolID: {"s2"}})
		next, _ := DragEnd(st, Session{ActiveID: "s2"}, "s2", PlaceholderID)

		if !next.IsSet("set-2") {
			t.Errorf("expected set-2, got order %v", next.Order)
		}
	})

	t.Run("reorders within a container", func(t *testing.T) {
		st := newStore([]string{"A"}, map[string][]string{"A": {"s1", "s2", "s3"}})
		next, _ := DragEnd(st, Session{ActiveID: "s1"}, "s1", "s3")

		if got := next.Items("A"); !slices.Equal(got, []string{"s2", "s3", "s1"}) {
			t.Errorf("A = %v", got)
		}
	})

	t.Run("reorders sets", func(t *testing.T) {
		st := newStore([]string{"A", "B", "C"}, map[string][]string{"A": {"s1"}, "B": {"s2"}, "C": {"s3"}})

		next, _ := DragEnd(st, Session{ActiveID: "C"}, "C", "A")
		if !slices.Equal(next.Order, []string{"C", "A", "B"}) {
			t.Errorf("order = %v", next.Order)
		}

		next, _ = DragEnd(st, Session{ActiveID: "A"}, "A", "s3")
		if !slices.Equal(next.Order, []string{"B", "C", "A"}) {
			t.Errorf("dropping a set on an item should target its set, order = %v", next.Order)
		}
	})

	t.Run("set dropped on the pool is a no-op", func(t *testing.T) {
		st := newStore([]string{"A", "B"}, map[string][]string{"A": {"s1"}, "B": {"s2"}, PoolID: {"s3"}})
		next, _ := DragEnd(st, Session{ActiveID: "A"}, "A", PoolID)

		if next != st {
			t.Errorf("expected unchanged store, order = %v", next.Order)
		}
	})

	t.Run("no target returns store unchanged", func(t *testing.T) {
		st := newStore([]string{"A"}, map[string][]string{"A": {"s1"}})
		next, s := DragEnd(st, Session{ActiveID: "s1"}, "s1", "")

		if next != st || s.Dragging() {
			t.Error("expected unchanged store and idle session")
		}
	})

	t.Run("prunes leftover empty sets", func(t *testing.T) {
		st := newStore([]string{"A", "B"}, map[string][]string{"A": {"s1", "s2"}, "B": {}})
		next, _ := DragEnd(st, Session{ActiveID: "s1"}, "s1", "s1")

		if next.HasContainer("B") || !slices.Equal(next.Order, []string{"A"}) {
			t.Errorf("expected B pruned, order = %v", next.Order)
		}
	})
}

func TestDragCancel(t *testing.T) {
	st := newStore([]string{"A", "B"}, map[string][]string{"A": {"s1"}, "B": {"s2", "s3"}, PoolID: {"s4"}})
	_, s := DragStart(st, Session{}, "s4")

	cur := st
	for _, over := range []string{"s1", "B", "s2", "A"} {
		cur, s = DragOver(cur, s, OverEvent{ActiveID: "s4", OverID: over})
	}
	if cur.Equal(st) {
		t.Fatal("expected the hovers to move the item")
	}

	restored, s := DragCancel(cur, s)
	if !restored.Equal(st) {
		t.Errorf("restored = %v, want %v", restored.Containers, st.Containers)
	}
	if s.Dragging() {
		t.Error("session should be idle")
	}

	t.Run("without a drag is a no-op", func(t *testing.T) {
		next, _ := DragCancel(st, Session{})
		if next != st {
			t.Error("expected unchanged store")
		}
	})
}

// TestTransitionsConserveItems drives random drag sequences and checks no song is lost or duplicated.
func TestTransitionsConserveItems(t *testing.T) {
	catalog := []string{"s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	r := rand.New(rand.NewPCG(7, 11))

	st := newStore([]string{"set-1", "set-2"}, map[string][]string{
		"set-1": {"s1", "s2"},
		"set-2": {"s3"},
		PoolID:  {"s4", "s5", "s6", "s7"},
	})
	st.Seq = 2
	var s Session

	ids := func() []string {
		out := []string{PlaceholderID, PoolID, ""}
		out = append(out, st.Order...)
		return append(out, catalog...)
	}

	for step := range 500 {
		known := ids()
		pick := func() string { return known[r.IntN(len(known))] }

		switch r.IntN(4) {
		case 0:
			st, s = DragStart(st, s, pick())
		case 1:
			st, s = DragOver(st, s, OverEvent{ActiveID: s.ActiveID, OverID: pick()})
		case 2:
			if s.Dragging() {
				st, s = DragEnd(st, s, s.ActiveID, pick())
			}
		case 3:
			st, s = DragCancel(st, s)
		}

		assertConserved(t, st, catalog)
		if t.Failed() {
			t.Fatalf("failed at step %d", step)
		}
	}
}
