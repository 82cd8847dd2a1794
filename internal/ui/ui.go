package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/services"
	"github.com/desertthunder/setlist/internal/setlist"
	"github.com/desertthunder/setlist/internal/shared"
	"github.com/desertthunder/setlist/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SetlistListView ViewState = iota
	BoardView
)

type dragMode int

const (
	dragNone dragMode = iota
	dragItem
	dragSet
)

// cell addresses a row of a layout column.
type cell struct {
	col, row int
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	svc         services.Service
	engine      *tasks.SetlistEngine
	width       int
	height      int
	setlistList list.Model
	listReady   bool
	setlistID   string
	name        string
	songs       map[string]models.SongRecord
	board       *setlist.Board
	layout      Layout
	cursor      cell
	pointer     cell
	mode        dragMode
	over        string
	saveQueued  bool
	confirmQuit bool
	status      string
	err         error
	help        help.Model
	keys        keyMap
}

// NewModel creates a new TUI model. With a setlistID the board opens directly, otherwise the user picks a
// setlist from a list.
func NewModel(ctx context.Context, svc services.Service, engine *tasks.SetlistEngine, setlistID string) *Model {
	return &Model{
		ctx:       ctx,
		view:      SetlistListView,
		svc:       svc,
		engine:    engine,
		setlistID: setlistID,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init loads the requested setlist, or the list of setlists.
func (m *Model) Init() tea.Cmd {
	if m.setlistID != "" {
		return m.openSetlist(m.setlistID)
	}
	return m.fetchSetlists()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.listReady {
			m.setlistList.SetSize(msg.Width-4, msg.Height-4)
		}
		return m, nil

	case tea.KeyMsg:
		if m.view == BoardView {
			return m.handleBoardKeys(msg)
		}
		return m.handleSetlistListKeys(msg)

	case Msg:
		return m.handleMsg(msg)
	}

	var cmd tea.Cmd
	if m.view == SetlistListView && m.listReady {
		m.setlistList, cmd = m.setlistList.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSetlistsFetched:
		data := msg.data.(setlistsFetched)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.setlistList = list.New(setlistItems(data.setlists), list.NewDefaultDelegate(), 0, 0)
		m.setlistList.Title = "Setlists"
		m.setlistList.SetSize(m.width-4, m.height-4)
		m.listReady = true
		return m, nil

	case MsgSetlistOpened:
		data := msg.data.(setlistOpened)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		m.board = data.board
		m.setlistID = data.export.Setlist.ID
		m.name = data.export.Setlist.Name
		m.songs = make(map[string]models.SongRecord, len(data.export.Songs))
		for _, s := range data.export.Songs {
			m.songs[s.ID] = s
		}
		m.view = BoardView
		m.mode = dragNone
		m.relayout()
		m.cursor = cell{col: 0, row: min(1, len(m.layout.Columns[0].Items))}
		return m, nil

	case MsgSaveDone:
		return m, m.settle(msg.data.(tasks.SaveOutcome))
	}
	return m, nil
}

func (m *Model) handleSetlistListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if !m.listReady {
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.setlistList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.setlistList, cmd = m.setlistList.Update(msg)
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		if item, ok := m.setlistList.SelectedItem().(setlistItem); ok {
			return m, m.openSetlist(item.setlist.ID)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.setlistList, cmd = m.setlistList.Update(msg)
	return m, cmd
}

func (m *Model) handleBoardKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != dragNone {
		m.handleDragKeys(msg)
		return m, nil
	}

	if !key.Matches(msg, m.keys.quit) {
		m.confirmQuit = false
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		if m.board.Dirty() && !m.confirmQuit {
			m.confirmQuit = true
			m.status = "unsaved changes, press q again to quit"
			return m, nil
		}
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.moveCursor(0, -1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(0, 1)
	case key.Matches(msg, m.keys.left):
		m.moveCursor(-1, 0)
	case key.Matches(msg, m.keys.right):
		m.moveCursor(1, 0)
	case key.Matches(msg, m.keys.pick):
		m.pickItem()
	case key.Matches(msg, m.keys.moveSet):
		m.pickSet()
	case key.Matches(msg, m.keys.save):
		return m, m.save()
	case key.Matches(msg, m.keys.revert):
		m.board.OnRevert()
		m.relayout()
		m.clampCursor()
		m.status = "reverted to last save"
	}
	return m, nil
}

func (m *Model) handleDragKeys(msg tea.KeyMsg) {
	switch {
	case key.Matches(msg, m.keys.cancel):
		m.cancelDrag()
	case key.Matches(msg, m.keys.drop), key.Matches(msg, m.keys.pick):
		m.drop()
	case key.Matches(msg, m.keys.up):
		m.movePointer(0, -1)
	case key.Matches(msg, m.keys.down):
		m.movePointer(0, 1)
	case key.Matches(msg, m.keys.left):
		m.movePointer(-1, 0)
	case key.Matches(msg, m.keys.right):
		m.movePointer(1, 0)
	}
}

func (m *Model) relayout() {
	m.layout = BuildLayout(m.board)
}

func (m *Model) moveCursor(dc, dr int) {
	m.cursor.col += dc
	m.cursor.row += dr
	m.clampCursor()
}

func (m *Model) clampCursor() {
	m.cursor.col = clamp(m.cursor.col, 0, len(m.layout.Columns)-1)
	m.cursor.row = clamp(m.cursor.row, 0, len(m.layout.Columns[m.cursor.col].Items))
}

// pickItem starts dragging the song under the cursor.
func (m *Model) pickItem() {
	id := m.layout.At(m.cursor.col, m.cursor.row)
	if id == "" {
		return
	}
	m.board.DragStart(id)
	if !m.board.Session().Dragging() {
		return
	}
	m.mode = dragItem
	m.pointer = m.cursor
	m.over = ""
	m.status = fmt.Sprintf("moving %s", m.title(id))
}

// pickSet starts dragging the set whose header is under the cursor.
func (m *Model) pickSet() {
	if m.cursor.row != 0 {
		return
	}
	id := m.layout.Columns[m.cursor.col].ID
	if setlist.IsReserved(id) {
		return
	}
	m.board.DragStart(id)
	if !m.board.Session().Dragging() {
		return
	}
	m.mode = dragSet
	m.pointer = m.cursor
	m.over = ""
	m.status = fmt.Sprintf("moving %s", m.board.Label(id))
}

// movePointer moves the held subject one cell and runs the collision and hover transitions for the new
// position.
func (m *Model) movePointer(dc, dr int) {
	active := m.board.Session().ActiveID

	if m.mode == dragSet {
		first, last := 1, len(m.layout.Columns)-2
		m.pointer.col = clamp(m.pointer.col+dc, first, last)
		if col, _, ok := m.layout.Locate(active); ok && col == m.pointer.col {
			// back over its own column: dropping here leaves the order unchanged
			m.over = active
			return
		}
		m.over = m.board.Resolve(m.layout.SetFrame(active, m.pointer.col))
		return
	}

	m.pointer.col = clamp(m.pointer.col+dc, 0, len(m.layout.Columns)-1)
	m.pointer.row = clamp(m.pointer.row+dr, 0, m.layout.Columns[m.pointer.col].Rows()-1)

	target := m.board.Resolve(m.layout.ItemFrame(active, m.pointer.col, m.pointer.row))
	if target != "" && target != active {
		before := m.board.Revision()
		m.board.DragOver(setlist.OverEvent{
			ActiveID:   active,
			OverID:     target,
			ActiveRect: m.layout.Cell(m.pointer.col, m.pointer.row),
			OverRect:   m.regionRect(target),
		})
		if m.board.Revision() != before {
			m.relayout()
			m.pointer.row = clamp(m.pointer.row, 0, m.layout.Columns[m.pointer.col].Rows()-1)
			target = m.board.Resolve(m.layout.ItemFrame(active, m.pointer.col, m.pointer.row))
		}
	}
	m.over = target
}

func (m *Model) regionRect(id string) setlist.Rect {
	for _, r := range m.layout.Regions() {
		if r.ID == id {
			return r.Rect
		}
	}
	return setlist.Rect{}
}

func (m *Model) drop() {
	active := m.board.Session().ActiveID
	m.board.DragEnd(active, m.over)
	m.endDrag(active)
	m.status = ""
}

func (m *Model) cancelDrag() {
	active := m.board.Session().ActiveID
	m.board.DragCancel()
	m.endDrag(active)
	m.status = "move cancelled"
}

func (m *Model) endDrag(active string) {
	m.mode = dragNone
	m.over = ""
	m.relayout()
	if col, row, ok := m.layout.Locate(active); ok {
		m.cursor = cell{col, row}
	}
	m.clampCursor()
}

// save submits the board. A request made while a save is in flight is queued and sent once the
// current one settles.
func (m *Model) save() tea.Cmd {
	if m.board.Saving() {
		m.saveQueued = true
		m.status = "save queued"
		return nil
	}
	if !m.board.Dirty() {
		m.status = "nothing to save"
		return nil
	}

	ticket, err := m.board.BeginSave()
	if err != nil {
		m.status = err.Error()
		return nil
	}
	m.status = "saving..."

	ctx, engine, id := m.ctx, m.engine, m.setlistID
	return func() tea.Msg {
		return saveDoneMsg(engine.Persist(ctx, id, ticket))
	}
}

func (m *Model) settle(out tasks.SaveOutcome) tea.Cmd {
	result, err := m.engine.Settle(m.board, out)
	if m.mode != dragNone && !m.board.Session().Dragging() {
		// the acknowledged sets no longer contain what was being dragged
		m.mode = dragNone
		m.over = ""
	}
	m.relayout()
	m.clampCursor()

	switch {
	case err != nil && errors.Is(err, shared.ErrMalformedResponse):
		m.status = "server sent an invalid response, changes kept locally"
	case err != nil:
		m.status = fmt.Sprintf("save failed: %v", err)
	case result.Stale:
		m.status = "saved, newer changes pending"
	default:
		m.status = "saved"
	}

	if m.saveQueued && m.board.Dirty() {
		m.saveQueued = false
		return m.save()
	}
	m.saveQueued = false
	return nil
}

func (m *Model) fetchSetlists() tea.Cmd {
	return func() tea.Msg {
		setlists, err := m.svc.ListSetlists(m.ctx)
		return setlistsFetchedMsg(setlists, err)
	}
}

func (m *Model) openSetlist(id string) tea.Cmd {
	return func() tea.Msg {
		board, export, err := m.engine.Open(m.ctx, id, nil)
		return setlistOpenedMsg(board, export, err)
	}
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case SetlistListView:
		if !m.listReady {
			return "Loading setlists..."
		}
		return fmt.Sprintf("%s\n\n%s", m.setlistList.View(), m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.quit}))
	case BoardView:
		return m.renderBoard()
	default:
		return ""
	}
}

func (m *Model) renderBoard() string {
	title := styles.title.Render(m.name)

	columns := make([]string, len(m.layout.Columns))
	for c := range m.layout.Columns {
		columns[c] = m.renderColumn(c)
	}
	body := lipgloss.JoinHorizontal(lipgloss.Top, columns...)

	state := styles.ok.Render("saved")
	if m.board.Dirty() {
		state = styles.warn.Render("● unsaved changes")
	}
	if m.board.Saving() {
		state = styles.help.Render("saving...")
	}

	var totals []string
	var all float64
	for _, t := range m.board.Totals() {
		totals = append(totals, fmt.Sprintf("%s %s", t.Label, shared.FormatMinutes(t.Minutes)))
		all += t.Minutes
	}
	totals = append(totals, "Total "+shared.FormatMinutes(all))

	bindings := m.keys.ShortHelp()
	if m.mode != dragNone {
		bindings = m.keys.dragHelp()
	}

	return fmt.Sprintf("%s\n%s\n\n%s  %s\n%s\n\n%s",
		title, body, state, styles.help.Render(m.status), strings.Join(totals, " · "), m.help.ShortHelpView(bindings))
}

func (m *Model) renderColumn(c int) string {
	column := m.layout.Columns[c]
	held := m.board.Session().ActiveID

	var header string
	switch column.ID {
	case setlist.PoolID:
		header = fmt.Sprintf("Songs (%d)", len(column.Items))
	case setlist.PlaceholderID:
		header = "+ New set"
	default:
		header = fmt.Sprintf("%s · %s", m.board.Label(column.ID), shared.FormatMinutes(m.board.Aggregate(column.ID)))
	}

	lines := []string{m.decorate(header, column.ID == held, c, 0)}
	for i, id := range column.Items {
		line := fmt.Sprintf("%s %s", m.title(id), shared.FormatMinutes(m.songs[id].DurationMinutes))
		lines = append(lines, m.decorate(line, id == held, c, i+1))
	}
	if len(column.Items) == 0 && column.ID == setlist.PlaceholderID {
		lines = append(lines, styles.help.Render("drop here"))
	}
	return styles.column.Render(strings.Join(lines, "\n"))
}

func (m *Model) decorate(text string, held bool, col, row int) string {
	text = truncate(text, ColumnWidth-2)
	switch {
	case held:
		return styles.held.Render("» " + text)
	case m.mode == dragNone && m.cursor == (cell{col, row}):
		return styles.cursor.Render("> " + text)
	case m.mode == dragItem && m.pointer == (cell{col, row}):
		return "» " + text
	case m.mode == dragSet && row == 0 && m.pointer.col == col:
		return "» " + text
	}
	return "  " + text
}

func (m *Model) title(id string) string {
	if s, ok := m.songs[id]; ok && s.Title != "" {
		return s.Title
	}
	return id
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "…"
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
