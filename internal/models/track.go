package models

import (
	"encoding/json"
	"fmt"

	"github.com/desertthunder/club100/internal/shared"
)

// ItemType tags the variant held by a [TrackItem].
type ItemType string

const (
	ItemSong    ItemType = "song"
	ItemSnippet ItemType = "snippet"
	ItemEffect  ItemType = "effect"
)

// SnippetKind distinguishes synthesized from uploaded snippets.
type SnippetKind string

const (
	SnippetTTS    SnippetKind = "tts"
	SnippetUpload SnippetKind = "upload"
)

// Song is a playable video reference.
//
// Start is an offset in seconds; nil means play from the beginning.
type Song struct {
	URL       string `json:"url"`
	Title     string `json:"title,omitempty"`
	Artist    string `json:"artist,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Start     *int   `json:"start,omitempty"`
}

// Validate rejects songs without a URL or with a negative start offset.
func (s Song) Validate() error {
	if s.URL == "" {
		return fmt.Errorf("%w: song url is required", shared.ErrInvalidInput)
	}
	if s.Start != nil && *s.Start < 0 {
		return fmt.Errorf("%w: song start must be non-negative, got %d", shared.ErrInvalidInput, *s.Start)
	}
	return nil
}

// DisplayTitle returns the title, falling back to the URL.
func (s Song) DisplayTitle() string {
	if s.Title != "" {
		return s.Title
	}
	return s.URL
}

// Snippet is a spoken interlude between songs.
type Snippet struct {
	Kind     SnippetKind `json:"type"`
	Text     string      `json:"text,omitempty"`
	AudioURL string      `json:"audioUrl,omitempty"`
}

// Validate checks that the snippet carries the payload its kind requires.
func (s Snippet) Validate() error {
	switch s.Kind {
	case SnippetTTS:
		if s.Text == "" {
			return fmt.Errorf("%w: tts snippet requires text", shared.ErrInvalidInput)
		}
	case SnippetUpload:
		if s.AudioURL == "" {
			return fmt.Errorf("%w: upload snippet requires audio url", shared.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown snippet kind %q", shared.ErrInvalidInput, s.Kind)
	}
	return nil
}

// Effect is a short sound clip from the worker's effect catalog.
type Effect struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	AudioURL string `json:"audioUrl,omitempty"`
}

// TrackItem is one entry of a timeline. Exactly one of Song, Snippet or Effect is set, matching Type.
type TrackItem struct {
	Type    ItemType `json:"type"`
	Song    *Song    `json:"song,omitempty"`
	Snippet *Snippet `json:"snippet,omitempty"`
	Effect  *Effect  `json:"effect,omitempty"`
}

// SongItem wraps a song as a timeline item.
func SongItem(s Song) TrackItem {
	return TrackItem{Type: ItemSong, Song: &s}
}

// SnippetItem wraps a snippet as a timeline item.
func SnippetItem(s Snippet) TrackItem {
	return TrackItem{Type: ItemSnippet, Snippet: &s}
}

// EffectItem wraps an effect as a timeline item.
func EffectItem(e Effect) TrackItem {
	return TrackItem{Type: ItemEffect, Effect: &e}
}

// IsSong reports whether the item holds a song.
func (t TrackItem) IsSong() bool {
	return t.Type == ItemSong && t.Song != nil
}

// Validate checks that the payload matches the type tag and is itself valid.
func (t TrackItem) Validate() error {
	switch t.Type {
	case ItemSong:
		if t.Song == nil {
			return fmt.Errorf("%w: song item without song", shared.ErrInvalidInput)
		}
		return t.Song.Validate()
	case ItemSnippet:
		if t.Snippet == nil {
			return fmt.Errorf("%w: snippet item without snippet", shared.ErrInvalidInput)
		}
		return t.Snippet.Validate()
	case ItemEffect:
		if t.Effect == nil || t.Effect.ID == "" {
			return fmt.Errorf("%w: effect item without effect id", shared.ErrInvalidInput)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", shared.ErrUnknownItemType, t.Type)
	}
}

// Label is a one-line human description of the item.
func (t TrackItem) Label() string {
	switch t.Type {
	case ItemSong:
		if t.Song == nil {
			return ""
		}
		if t.Song.Artist != "" && t.Song.Title != "" {
			return t.Song.Artist + " - " + t.Song.Title
		}
		return t.Song.DisplayTitle()
	case ItemSnippet:
		if t.Snippet == nil {
			return ""
		}
		if t.Snippet.Kind == SnippetUpload {
			return "[upload] " + t.Snippet.AudioURL
		}
		return t.Snippet.Text
	case ItemEffect:
		if t.Effect == nil {
			return ""
		}
		if t.Effect.Name != "" {
			return t.Effect.Name
		}
		return t.Effect.ID
	}
	return ""
}

// Clone returns a deep copy so edits to the result never alias the receiver.
func (t TrackItem) Clone() TrackItem {
	out := TrackItem{Type: t.Type}
	if t.Song != nil {
		s := *t.Song
		if s.Start != nil {
			start := *s.Start
			s.Start = &start
		}
		out.Song = &s
	}
	if t.Snippet != nil {
		sn := *t.Snippet
		out.Snippet = &sn
	}
	if t.Effect != nil {
		e := *t.Effect
		out.Effect = &e
	}
	return out
}

// CountSongs returns the number of song items in items.
func CountSongs(items []TrackItem) int {
	n := 0
	for _, it := range items {
		if it.IsSong() {
			n++
		}
	}
	return n
}

// MarshalItems encodes a timeline in the worker's JSON shape.
func MarshalItems(items []TrackItem) ([]byte, error) {
	if items == nil {
		items = []TrackItem{}
	}
	return json.Marshal(items)
}

// UnmarshalItems decodes and validates a timeline.
func UnmarshalItems(data []byte) ([]TrackItem, error) {
	var items []TrackItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("%w: failed to decode timeline: %v", shared.ErrInvalidInput, err)
	}
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return items, nil
}
