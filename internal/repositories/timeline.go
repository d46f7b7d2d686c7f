package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
)

const languageKey = "language"

// TimelineRepository persists a single timeline as rows ordered by position.
type TimelineRepository struct {
	db *sql.DB
}

// NewTimelineRepository creates a new TimelineRepository with the given database connection
func NewTimelineRepository(db *sql.DB) *TimelineRepository {
	return &TimelineRepository{db: db}
}

// Load returns the stored timeline in position order.
func (r *TimelineRepository) Load(ctx context.Context) ([]models.TrackItem, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT type, payload FROM timeline_items ORDER BY position ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to query timeline: %w", err)
	}
	defer rows.Close()

	items := []models.TrackItem{}
	for rows.Next() {
		var itemType, payload string
		if err := rows.Scan(&itemType, &payload); err != nil {
			return nil, fmt.Errorf("failed to scan timeline item: %w", err)
		}

		var item models.TrackItem
		if err := json.Unmarshal([]byte(payload), &item); err != nil {
			return nil, fmt.Errorf("failed to decode timeline item: %w", err)
		}
		if string(item.Type) != itemType {
			return nil, fmt.Errorf("%w: stored type %q does not match payload %q", shared.ErrUnknownItemType, itemType, item.Type)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

// Save replaces the stored timeline with items.
func (r *TimelineRepository) Save(ctx context.Context, items []models.TrackItem) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM timeline_items"); err != nil {
			return fmt.Errorf("failed to clear timeline: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, "INSERT INTO timeline_items (id, position, type, payload) VALUES (?, ?, ?, ?)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for i, item := range items {
			payload, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("failed to encode timeline item %d: %w", i, err)
			}
			if _, err := stmt.ExecContext(ctx, shared.GenerateID(), i, string(item.Type), string(payload)); err != nil {
				return fmt.Errorf("failed to insert timeline item %d: %w", i, err)
			}
		}
		return nil
	})
}

// Language returns the stored timeline language, or "" when unset.
func (r *TimelineRepository) Language(ctx context.Context) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM timeline_settings WHERE key = ?", languageKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read language: %w", err)
	}
	return v, nil
}

// SetLanguage stores the timeline language.
func (r *TimelineRepository) SetLanguage(ctx context.Context, language string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO timeline_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, languageKey, language)
	if err != nil {
		return fmt.Errorf("failed to write language: %w", err)
	}
	return nil
}
