package tasks

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
)

type mockRenderClient struct {
	effects    []models.Effect
	effectsErr error
	genErr     error
	submitted  []models.TrackItem
	language   string
}

func (m *mockRenderClient) Effects(context.Context) ([]models.Effect, error) {
	return m.effects, m.effectsErr
}

func (m *mockRenderClient) Generate(_ context.Context, items []models.TrackItem, language string) (*services.GenerateResponse, error) {
	m.submitted = items
	m.language = language
	if m.genErr != nil {
		return nil, m.genErr
	}
	return &services.GenerateResponse{JobID: "job-7", Output: "/tmp/job-7/output.mp3"}, nil
}

func (m *mockRenderClient) DownloadURL(jobID string) string {
	return "http://worker/download/" + jobID
}

type mockJobStore struct {
	created []*models.RenderJob
	updated []*models.RenderJob
}

func (s *mockJobStore) Create(job *models.RenderJob) error {
	job.SetID("local-1")
	s.created = append(s.created, job)
	return nil
}

func (s *mockJobStore) Update(job *models.RenderJob) error {
	s.updated = append(s.updated, job)
	return nil
}

func testItems() []models.TrackItem {
	return []models.TrackItem{
		models.SongItem(models.Song{URL: "https://y/a", Title: "A"}),
		models.SnippetItem(models.Snippet{Kind: models.SnippetTTS, Text: "Skål"}),
		models.SongItem(models.Song{URL: "https://y/b", Title: "B"}),
	}
}

func TestGenerate(t *testing.T) {
	ctx := context.Background()
	logger := shared.NewLogger(&bytes.Buffer{})

	t.Run("injects effect and records job", func(t *testing.T) {
		client := &mockRenderClient{effects: []models.Effect{{ID: "ding", Name: "Ding"}, {ID: "horn", Name: "Horn"}}}
		store := &mockJobStore{}
		items := testItems()

		progress := make(chan ProgressUpdate, 4)
		result, err := NewGenerator(client, store, logger).Generate(ctx, items, "en", "horn", progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(client.submitted) != 5 {
			t.Fatalf("expected 5 submitted items, got %d", len(client.submitted))
		}
		if client.submitted[1].Effect == nil || client.submitted[1].Effect.ID != "horn" || client.submitted[4].Effect.ID != "horn" {
			t.Errorf("expected horn after every song, got %+v", client.submitted)
		}
		if len(items) != 3 {
			t.Error("live timeline should not be modified")
		}
		if client.language != "en" {
			t.Errorf("expected language en, got %s", client.language)
		}

		job := result.Job
		if job.Status() != models.JobCompleted || job.DownloadURL() != "http://worker/download/job-7" || job.ItemCount() != 5 {
			t.Errorf("unexpected job %+v", job)
		}
		if len(store.created) != 1 || len(store.updated) != 1 {
			t.Errorf("expected one create and one update, got %d/%d", len(store.created), len(store.updated))
		}
		if len(progress) != 3 {
			t.Errorf("expected 3 progress updates, got %d", len(progress))
		}
	})

	t.Run("no effect submits timeline as is", func(t *testing.T) {
		client := &mockRenderClient{}
		if _, err := NewGenerator(client, nil, logger).Generate(ctx, testItems(), "", "", nil); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(client.submitted) != 3 {
			t.Errorf("expected 3 items, got %d", len(client.submitted))
		}
		if client.language != "da" {
			t.Errorf("expected default language da, got %s", client.language)
		}
	})

	t.Run("empty timeline", func(t *testing.T) {
		_, err := NewGenerator(&mockRenderClient{}, nil, logger).Generate(ctx, nil, "da", "", nil)
		if !errors.Is(err, shared.ErrEmptyTimeline) {
			t.Errorf("expected ErrEmptyTimeline, got %v", err)
		}
	})

	t.Run("unknown effect", func(t *testing.T) {
		client := &mockRenderClient{effects: []models.Effect{{ID: "ding"}}}
		_, err := NewGenerator(client, nil, logger).Generate(ctx, testItems(), "da", "nope", nil)
		if !errors.Is(err, shared.ErrEffectNotFound) {
			t.Errorf("expected ErrEffectNotFound, got %v", err)
		}
		if client.submitted != nil {
			t.Error("expected nothing submitted")
		}
	})

	t.Run("unsupported language", func(t *testing.T) {
		_, err := NewGenerator(&mockRenderClient{}, nil, logger).Generate(ctx, testItems(), "fr", "", nil)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("submission failure marks job failed", func(t *testing.T) {
		client := &mockRenderClient{genErr: shared.ErrRenderSubmissionFailed}
		store := &mockJobStore{}

		_, err := NewGenerator(client, store, logger).Generate(ctx, testItems(), "da", "", nil)
		if !errors.Is(err, shared.ErrRenderSubmissionFailed) {
			t.Fatalf("expected ErrRenderSubmissionFailed, got %v", err)
		}
		if len(store.updated) != 1 || store.updated[0].Status() != models.JobFailed {
			t.Errorf("expected failed job recorded, got %+v", store.updated)
		}
	})

	t.Run("effect catalog failure", func(t *testing.T) {
		client := &mockRenderClient{effectsErr: shared.ErrServiceUnavailable}
		_, err := NewGenerator(client, nil, logger).Generate(ctx, testItems(), "da", "ding", nil)
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})
}
