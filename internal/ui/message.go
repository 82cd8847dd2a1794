package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/setlist/internal/models"
	"github.com/desertthunder/setlist/internal/setlist"
	"github.com/desertthunder/setlist/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSetlistsFetched MsgKind = iota
	MsgSetlistOpened
	MsgSaveDone
)

type setlistsFetched struct {
	setlists []models.SetlistRecord
	err      error
}

type setlistOpened struct {
	board  *setlist.Board
	export *models.SetlistExport
	err    error
}

// setlistsFetchedMsg is the constructor for [MsgSetlistsFetched]
func setlistsFetchedMsg(setlists []models.SetlistRecord, err error) Msg {
	return Msg{kind: MsgSetlistsFetched, data: setlistsFetched{setlists, err}}
}

// setlistOpenedMsg is the constructor for [MsgSetlistOpened]
func setlistOpenedMsg(board *setlist.Board, export *models.SetlistExport, err error) Msg {
	return Msg{kind: MsgSetlistOpened, data: setlistOpened{board, export, err}}
}

// saveDoneMsg is the constructor for [MsgSaveDone]
func saveDoneMsg(out tasks.SaveOutcome) Msg {
	return Msg{kind: MsgSaveDone, data: out}
}
