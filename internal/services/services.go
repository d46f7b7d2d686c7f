// package services defines interface Provider for song search backends and the audio worker client
//
// YouTube Data API, self-hosted worker
package services

import (
	"context"
	"net/http"
	"time"

	"github.com/desertthunder/club100/internal/models"
)

// Provider defines the interface for song search backends that turn a free-text query into candidate songs.
type Provider interface {
	// Name returns a short identifier used in logs (e.g., "youtube", "worker").
	Name() string

	// Available reports whether the provider is configured and may be called.
	Available() bool

	// Search returns candidate songs in the provider's ranking order.
	// An empty slice with a nil error means the provider answered but found nothing.
	Search(ctx context.Context, query string) ([]models.Song, error)
}

// Decoded is the result of validating one provider result item.
// Invalid items are dropped before they reach callers.
type Decoded struct {
	Song  models.Song
	Valid bool
}

// collect keeps the valid songs from decoded in order.
func collect(decoded []Decoded) []models.Song {
	songs := make([]models.Song, 0, len(decoded))
	for _, d := range decoded {
		if d.Valid {
			songs = append(songs, d.Song)
		}
	}
	return songs
}

// NewHTTPClient returns an [http.Client] with the given timeout; zero means no timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
