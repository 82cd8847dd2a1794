package setlist

import (
	"math"
	"slices"
)

// Point is a position in layout coordinates.
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in layout coordinates.
type Rect struct {
	X, Y, Width, Height float64
}

// IsZero reports whether the rect carries no geometry.
func (r Rect) IsZero() bool {
	return r.Width <= 0 || r.Height <= 0
}

// Center returns the center point of the rect.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Contains reports whether p lies inside the rect, edges included.
func (r Rect) Contains(p Point) bool {
	return !r.IsZero() && p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// IntersectionRatio returns the overlap area of r and o divided by the area of their union.
func (r Rect) IntersectionRatio(o Rect) float64 {
	if r.IsZero() || o.IsZero() {
		return 0
	}
	w := math.Min(r.X+r.Width, o.X+o.Width) - math.Max(r.X, o.X)
	h := math.Min(r.Y+r.Height, o.Y+o.Height) - math.Max(r.Y, o.Y)
	if w <= 0 || h <= 0 {
		return 0
	}
	inter := w * h
	return inter / (r.Width*r.Height + o.Width*o.Height - inter)
}

func distance(a, b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Region is a droppable area: either a container or a single item.
type Region struct {
	ID   string
	Rect Rect
}

// Frame is the drag geometry observed for one drag-move event.
type Frame struct {
	ActiveID   string
	ActiveRect Rect   // current (translated) rect of the dragged subject
	Pointer    *Point // nil when the input has no pointer position
	Regions    []Region
}

func (f Frame) origin() Point {
	if !f.ActiveRect.IsZero() {
		return f.ActiveRect.Center()
	}
	if f.Pointer != nil {
		return *f.Pointer
	}
	return Point{}
}

// Resolve returns the drop target for the current frame and the session updated with the cached target.
//
// Containers being dragged only collide with the other set regions, by closest center; never their own.
// Items collide with regions under the pointer, falling back to rect intersection; a hit on a non-empty
// container is refined to its closest item. With no hit at all the result is the active id right after a
// cross-container move, otherwise the last cached target. An empty id means no target.
//
// The recently-moved flag is consumed by this call.
func Resolve(st *Store, s Session, f Frame) (string, Session) {
	recentlyMoved := s.RecentlyMovedAcrossContainers
	s.RecentlyMovedAcrossContainers = false

	var target string
	if st.IsSet(f.ActiveID) {
		other := func(id string) bool { return id != f.ActiveID && st.IsSet(id) }
		target = closestCenter(f.origin(), f.Regions, other)
	} else {
		target = collideItem(st, f)
	}

	if target != "" {
		s.LastDropTarget = target
		return target, s
	}
	if recentlyMoved {
		return f.ActiveID, s
	}
	return s.LastDropTarget, s
}

func collideItem(st *Store, f Frame) string {
	candidates := pointerWithin(f)
	if len(candidates) == 0 {
		candidates = rectIntersection(f)
	}
	if len(candidates) == 0 {
		return ""
	}

	first := candidates[0]
	if st.HasContainer(first) {
		items := st.Containers[first]
		if len(items) > 0 {
			inContainer := func(id string) bool { return id != first && slices.Contains(items, id) }
			if id := closestCenter(f.origin(), f.Regions, inContainer); id != "" {
				return id
			}
		}
	}
	return first
}

// pointerWithin returns regions containing the pointer, nearest center first.
func pointerWithin(f Frame) []string {
	if f.Pointer == nil {
		return nil
	}
	type hit struct {
		id   string
		dist float64
	}
	var hits []hit
	for _, r := range f.Regions {
		if r.Rect.Contains(*f.Pointer) {
			hits = append(hits, hit{r.ID, distance(*f.Pointer, r.Rect.Center())})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		switch {
		case a.dist < b.dist:
			return -1
		case a.dist > b.dist:
			return 1
		}
		return 0
	})

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// rectIntersection returns regions overlapping the active rect, largest overlap ratio first.
func rectIntersection(f Frame) []string {
	type hit struct {
		id    string
		ratio float64
	}
	var hits []hit
	for _, r := range f.Regions {
		if ratio := f.ActiveRect.IntersectionRatio(r.Rect); ratio > 0 {
			hits = append(hits, hit{r.ID, ratio})
		}
	}
	slices.SortStableFunc(hits, func(a, b hit) int {
		switch {
		case a.ratio > b.ratio:
			return -1
		case a.ratio < b.ratio:
			return 1
		}
		return 0
	})

	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// closestCenter returns the id of the accepted region whose center is nearest to origin.
func closestCenter(origin Point, regions []Region, accept func(string) bool) string {
	best, bestDist := "", math.Inf(1)
	for _, r := range regions {
		if r.Rect.IsZero() || !accept(r.ID) {
			continue
		}
		if d := distance(origin, r.Rect.Center()); d < bestDist {
			best, bestDist = r.ID, d
		}
	}
	return best
}
