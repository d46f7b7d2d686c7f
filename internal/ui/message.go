package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/tasks"
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
	MsgTimelineChanged MsgKind = iota
	MsgSearchDone
	MsgProgressUpdate
	MsgGenerateComplete
)

type timelineChange struct {
	items    []models.TrackItem
	selected int
	err      error
}

type searchDone struct {
	query string
	songs []models.Song
	err   error
}

type generateComplete struct {
	result *tasks.GenerateResult
	err    error
}

// timelineChangedMsg is the constructor for [MsgTimelineChanged]; selected is the row to focus, or -1 to keep the cursor.
func timelineChangedMsg(items []models.TrackItem, selected int, err error) Msg {
	return Msg{kind: MsgTimelineChanged, data: timelineChange{items: items, selected: selected, err: err}}
}

// searchDoneMsg is the constructor for [MsgSearchDone]
func searchDoneMsg(query string, songs []models.Song, err error) Msg {
	return Msg{kind: MsgSearchDone, data: searchDone{query: query, songs: songs, err: err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// generateCompleteMsg is the constructor for [MsgGenerateComplete]
func generateCompleteMsg(result *tasks.GenerateResult, err error) Msg {
	return Msg{kind: MsgGenerateComplete, data: generateComplete{result: result, err: err}}
}
