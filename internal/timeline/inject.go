package timeline

import "github.com/desertthunder/club100/internal/models"

// InjectAfterEachSong returns a new sequence with effect placed right after every song.
// Consecutive songs each get their own effect. A nil effect returns a copy of items.
func InjectAfterEachSong(items []models.TrackItem, effect *models.Effect) []models.TrackItem {
	if effect == nil {
		return clone(items, 0)
	}

	out := make([]models.TrackItem, 0, len(items)+models.CountSongs(items))
	for _, it := range items {
		out = append(out, it.Clone())
		if it.IsSong() {
			out = append(out, models.EffectItem(*effect))
		}
	}
	return out
}
