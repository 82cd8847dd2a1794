package ui

import (
	"slices"

	"github.com/desertthunder/setlist/internal/setlist"
)

// Layout geometry in terminal cells. Row 0 of a column is its header, rows 1..n hold its songs, and one
// trailing row accepts drops at the end.
const (
	ColumnWidth = 28
	ColumnGap   = 2
)

// Column is one container laid out on screen.
type Column struct {
	ID    string
	Items []string
	Rect  setlist.Rect
}

// Rows returns the number of addressable rows, trailing drop row included.
func (c Column) Rows() int { return len(c.Items) + 2 }

// Layout places the pool, each set in display order, and the placeholder side by side.
type Layout struct {
	Columns []Column
}

// BuildLayout computes the layout of the board's current state.
func BuildLayout(b *setlist.Board) Layout {
	ids := append([]string{setlist.PoolID}, b.Sets()...)
	ids = append(ids, setlist.PlaceholderID)

	l := Layout{Columns: make([]Column, len(ids))}
	for i, id := range ids {
		items := b.Items(id)
		l.Columns[i] = Column{
			ID:    id,
			Items: items,
			Rect:  setlist.Rect{X: columnX(i), Y: 0, Width: ColumnWidth, Height: float64(len(items) + 2)},
		}
	}
	return l
}

func columnX(col int) float64 {
	return float64(col * (ColumnWidth + ColumnGap))
}

// Cell returns the rect of one row of a column.
func (l Layout) Cell(col, row int) setlist.Rect {
	return setlist.Rect{X: columnX(col), Y: float64(row), Width: ColumnWidth, Height: 1}
}

// At returns the song under (col, row), or "" for headers, empty rows, and out of range cells.
func (l Layout) At(col, row int) string {
	if col < 0 || col >= len(l.Columns) {
		return ""
	}
	items := l.Columns[col].Items
	if row < 1 || row > len(items) {
		return ""
	}
	return items[row-1]
}

// Locate returns the cell of a song, or the header cell of a container.
func (l Layout) Locate(id string) (col, row int, ok bool) {
	for c, column := range l.Columns {
		if column.ID == id {
			return c, 0, true
		}
		if i := slices.Index(column.Items, id); i >= 0 {
			return c, i + 1, true
		}
	}
	return 0, 0, false
}

// Regions returns every container and song as a droppable region.
func (l Layout) Regions() []setlist.Region {
	var regions []setlist.Region
	for c, column := range l.Columns {
		regions = append(regions, setlist.Region{ID: column.ID, Rect: column.Rect})
		for i, id := range column.Items {
			regions = append(regions, setlist.Region{ID: id, Rect: l.Cell(c, i+1)})
		}
	}
	return regions
}

// SetRegions returns the header of every set. Dragged sets collide with headers only, so tall columns do
// not pull the target away from the column under the pointer.
func (l Layout) SetRegions() []setlist.Region {
	var regions []setlist.Region
	for c, column := range l.Columns {
		if setlist.IsReserved(column.ID) {
			continue
		}
		regions = append(regions, setlist.Region{ID: column.ID, Rect: l.Cell(c, 0)})
	}
	return regions
}

// ItemFrame builds the drag-move frame of a song held at (col, row).
func (l Layout) ItemFrame(activeID string, col, row int) setlist.Frame {
	rect := l.Cell(col, row)
	center := rect.Center()
	return setlist.Frame{ActiveID: activeID, ActiveRect: rect, Pointer: &center, Regions: l.Regions()}
}

// SetFrame builds the drag-move frame of a set held over column col.
func (l Layout) SetFrame(activeID string, col int) setlist.Frame {
	return setlist.Frame{ActiveID: activeID, ActiveRect: l.Cell(col, 0), Regions: l.SetRegions()}
}
