// Package ui implements the terminal setlist editor using bubbletea's Elm architecture.
//
// Two views:
//  1. [SetlistListView] : pick a setlist
//  2. [BoardView] : the song pool, each set, and a "new set" column side by side
//
// Songs and sets are moved with the keyboard. Picking something up starts a drag on the [setlist.Board];
// every arrow key moves a pointer one cell over the computed [Layout], resolves the drop target, and applies
// the hover transition, so a keyboard drag goes through the same engine calls as a pointer drag would.
//
// Saving runs the service call as a tea.Cmd and settles the result on the event loop. A save requested while
// another is in flight is queued and sent afterwards.
package ui
