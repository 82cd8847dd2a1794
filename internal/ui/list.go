package ui

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/setlist/internal/models"
)

var _ list.Item = setlistItem{}

// setlistItem wraps [models.SetlistRecord] to implement [list.Item].
type setlistItem struct {
	setlist models.SetlistRecord
}

func (i setlistItem) FilterValue() string { return i.setlist.Name }
func (i setlistItem) Title() string       { return i.setlist.Name }
func (i setlistItem) Description() string { return i.setlist.ID }

func setlistItems(setlists []models.SetlistRecord) []list.Item {
	items := make([]list.Item, len(setlists))
	for i, sl := range setlists {
		items[i] = setlistItem{setlist: sl}
	}
	return items
}
