// package timeline implements the edit operations over an ordered sequence of track items.
//
// Every operation takes the full current sequence and returns the next one; inputs are never mutated.
package timeline

import (
	"fmt"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
)

func clone(items []models.TrackItem, extra int) []models.TrackItem {
	out := make([]models.TrackItem, len(items), len(items)+extra)
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

func insert(items []models.TrackItem, pos int, item models.TrackItem) []models.TrackItem {
	out := clone(items, 1)
	out = append(out, models.TrackItem{})
	copy(out[pos+1:], out[pos:])
	out[pos] = item.Clone()
	return out
}

// LastSongIndex returns the highest index holding a song, or -1.
func LastSongIndex(items []models.TrackItem) int {
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].IsSong() {
			return i
		}
	}
	return -1
}

// InsertSong places song right after the last song, or at the end when there is none.
func InsertSong(items []models.TrackItem, song models.Song) []models.TrackItem {
	pos := LastSongIndex(items) + 1
	if pos == 0 {
		pos = len(items)
	}
	return insert(items, pos, models.SongItem(song))
}

// InsertAt places item immediately after position idx.
// idx >= len-1 appends; idx < 0 inserts at the front.
func InsertAt(items []models.TrackItem, item models.TrackItem, idx int) []models.TrackItem {
	pos := idx + 1
	if pos > len(items) {
		pos = len(items)
	}
	if pos < 0 {
		pos = 0
	}
	return insert(items, pos, item)
}

// UpdateAt replaces the item at idx. It panics when idx is out of range; callers derive idx from the current length.
func UpdateAt(items []models.TrackItem, idx int, item models.TrackItem) []models.TrackItem {
	if idx < 0 || idx >= len(items) {
		panic(fmt.Sprintf("timeline: UpdateAt index %d out of range [0, %d)", idx, len(items)))
	}
	out := clone(items, 0)
	out[idx] = item.Clone()
	return out
}

// RemoveAt deletes the item at idx, shifting later items down. An out-of-range idx returns an unchanged copy.
func RemoveAt(items []models.TrackItem, idx int) []models.TrackItem {
	if idx < 0 || idx >= len(items) {
		return clone(items, 0)
	}
	out := make([]models.TrackItem, 0, len(items)-1)
	for i, it := range items {
		if i != idx {
			out = append(out, it.Clone())
		}
	}
	return out
}

// MoveTo removes the item at from and reinserts it at to.
// When to (or from) is outside [0, len) the result is an identical copy.
func MoveTo(items []models.TrackItem, from, to int) []models.TrackItem {
	if to < 0 || to >= len(items) || from < 0 || from >= len(items) {
		return clone(items, 0)
	}

	moved := items[from]
	rest := RemoveAt(items, from)
	return insert(rest, to, moved)
}

// CheckIndex validates idx against a sequence of length n.
func CheckIndex(idx, n int) error {
	if idx < 0 || idx >= n {
		return fmt.Errorf("%w: %d not in [0, %d)", shared.ErrIndexOutOfRange, idx, n)
	}
	return nil
}
