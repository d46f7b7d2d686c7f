package timeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
)

// Store persists the controller's sequence.
type Store interface {
	Load(ctx context.Context) ([]models.TrackItem, error)
	Save(ctx context.Context, items []models.TrackItem) error
}

// Controller owns one timeline. Edits are applied one at a time in the order they are issued
// and saved to the store, when one is set, after each edit.
type Controller struct {
	mu     sync.Mutex
	items  []models.TrackItem
	store  Store
	logger *log.Logger
}

// NewController creates an empty in-memory controller.
func NewController(logger *log.Logger) *Controller {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Controller{items: []models.TrackItem{}, logger: logger}
}

// OpenController creates a controller backed by store, loading its current contents.
func OpenController(ctx context.Context, store Store, logger *log.Logger) (*Controller, error) {
	c := NewController(logger)
	c.store = store

	items, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load timeline: %w", err)
	}
	if items != nil {
		c.items = items
	}
	return c, nil
}

// Items returns a copy of the current sequence.
func (c *Controller) Items() []models.TrackItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return clone(c.items, 0)
}

// Len returns the current length.
func (c *Controller) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// apply runs edit against the current sequence under the lock and commits the result.
func (c *Controller) apply(ctx context.Context, op string, edit func([]models.TrackItem) ([]models.TrackItem, error)) ([]models.TrackItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := edit(c.items)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		if err := c.store.Save(ctx, next); err != nil {
			return nil, fmt.Errorf("failed to save timeline: %w", err)
		}
	}

	c.items = next
	c.logger.Debug("timeline edited", "op", op, "len", len(next))
	return clone(next, 0), nil
}

// AddSong inserts song after the last song.
func (c *Controller) AddSong(ctx context.Context, song models.Song) ([]models.TrackItem, error) {
	if err := song.Validate(); err != nil {
		return nil, err
	}
	return c.apply(ctx, "insert-song", func(items []models.TrackItem) ([]models.TrackItem, error) {
		return InsertSong(items, song), nil
	})
}

// InsertAt inserts item after position idx; idx may equal the length.
func (c *Controller) InsertAt(ctx context.Context, item models.TrackItem, idx int) ([]models.TrackItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return c.apply(ctx, "insert-at", func(items []models.TrackItem) ([]models.TrackItem, error) {
		if idx < -1 || idx > len(items) {
			return nil, fmt.Errorf("%w: %d not in [-1, %d]", shared.ErrIndexOutOfRange, idx, len(items))
		}
		return InsertAt(items, item, idx), nil
	})
}

// UpdateAt replaces the item at idx. Unlike the pure function it reports a bad index as an error.
func (c *Controller) UpdateAt(ctx context.Context, idx int, item models.TrackItem) ([]models.TrackItem, error) {
	if err := item.Validate(); err != nil {
		return nil, err
	}
	return c.apply(ctx, "update-at", func(items []models.TrackItem) ([]models.TrackItem, error) {
		if err := CheckIndex(idx, len(items)); err != nil {
			return nil, err
		}
		return UpdateAt(items, idx, item), nil
	})
}

// RemoveAt deletes the item at idx.
func (c *Controller) RemoveAt(ctx context.Context, idx int) ([]models.TrackItem, error) {
	return c.apply(ctx, "remove-at", func(items []models.TrackItem) ([]models.TrackItem, error) {
		if err := CheckIndex(idx, len(items)); err != nil {
			return nil, err
		}
		return RemoveAt(items, idx), nil
	})
}

// MoveTo moves the item at from to position to; an out-of-range to leaves the timeline unchanged.
func (c *Controller) MoveTo(ctx context.Context, from, to int) ([]models.TrackItem, error) {
	return c.apply(ctx, "move-to", func(items []models.TrackItem) ([]models.TrackItem, error) {
		if err := CheckIndex(from, len(items)); err != nil {
			return nil, err
		}
		return MoveTo(items, from, to), nil
	})
}

// Append adds songs as a suffix, in order. Used by batch import.
func (c *Controller) Append(ctx context.Context, songs ...models.Song) ([]models.TrackItem, error) {
	return c.apply(ctx, "append", func(items []models.TrackItem) ([]models.TrackItem, error) {
		out := clone(items, len(songs))
		for _, s := range songs {
			out = append(out, models.SongItem(s))
		}
		return out, nil
	})
}

// Replace swaps the whole sequence, e.g. when the editor saves a reordered copy.
func (c *Controller) Replace(ctx context.Context, items []models.TrackItem) ([]models.TrackItem, error) {
	for i, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return c.apply(ctx, "replace", func([]models.TrackItem) ([]models.TrackItem, error) {
		return clone(items, 0), nil
	})
}

// Reset clears the timeline.
func (c *Controller) Reset(ctx context.Context) error {
	_, err := c.apply(ctx, "reset", func([]models.TrackItem) ([]models.TrackItem, error) {
		return []models.TrackItem{}, nil
	})
	return err
}

// Seed fills an empty timeline with the demo sequence for language. It reports whether seeding happened.
func (c *Controller) Seed(ctx context.Context, language string) (bool, error) {
	seeded := false
	_, err := c.apply(ctx, "seed", func(items []models.TrackItem) ([]models.TrackItem, error) {
		if len(items) > 0 {
			return items, nil
		}
		seeded = true
		return DemoItems(language), nil
	})
	return seeded, err
}
