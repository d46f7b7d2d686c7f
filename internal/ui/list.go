package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/club100/internal/formatter"
	"github.com/desertthunder/club100/internal/models"
)

var (
	_ list.Item = timelineEntry{}
	_ list.Item = songResult{}
)

// timelineEntry wraps a [models.TrackItem] and its position to implement [list.Item].
type timelineEntry struct {
	pos  int
	item models.TrackItem
}

func (e timelineEntry) FilterValue() string { return e.item.Label() }
func (e timelineEntry) Title() string       { return fmt.Sprintf("%2d. %s", e.pos+1, e.item.Label()) }
func (e timelineEntry) Description() string {
	switch {
	case e.item.Song != nil:
		desc := e.item.Song.URL
		if e.item.Song.Start != nil {
			desc = fmt.Sprintf("%s • from %s", desc, formatter.FormatOffset(*e.item.Song.Start))
		}
		return desc
	case e.item.Snippet != nil:
		return fmt.Sprintf("snippet • %s", e.item.Snippet.Kind)
	case e.item.Effect != nil:
		return fmt.Sprintf("effect • %s", e.item.Effect.ID)
	}
	return string(e.item.Type)
}

// songResult wraps a search result [models.Song] to implement [list.Item].
type songResult struct {
	song models.Song
}

func (r songResult) FilterValue() string { return r.song.Title }
func (r songResult) Title() string       { return r.song.DisplayTitle() }
func (r songResult) Description() string {
	if r.song.Artist != "" {
		return fmt.Sprintf("%s • %s", r.song.Artist, r.song.URL)
	}
	return r.song.URL
}

func timelineItems(items []models.TrackItem) []list.Item {
	out := make([]list.Item, len(items))
	for i, it := range items {
		out[i] = timelineEntry{pos: i, item: it}
	}
	return out
}

func resultItems(songs []models.Song) []list.Item {
	out := make([]list.Item, len(songs))
	for i, s := range songs {
		out[i] = songResult{song: s}
	}
	return out
}

func newList(title string, items []list.Item, width, height int) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), width, height)
	l.Title = title
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.DisableQuitKeybindings()
	return l
}
