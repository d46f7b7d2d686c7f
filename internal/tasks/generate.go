package tasks

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/timeline"
)

// RenderClient is the part of the audio worker used for rendering.
type RenderClient interface {
	Effects(ctx context.Context) ([]models.Effect, error)
	Generate(ctx context.Context, items []models.TrackItem, language string) (*services.GenerateResponse, error)
	DownloadURL(jobID string) string
}

// JobStore records render jobs.
type JobStore interface {
	Create(job *models.RenderJob) error
	Update(job *models.RenderJob) error
}

// GenerateResult describes a finished render submission.
type GenerateResult struct {
	Job      *models.RenderJob
	Timeline []models.TrackItem // What was submitted, effects included
}

// Generator submits timelines to the audio worker.
type Generator struct {
	client RenderClient
	jobs   JobStore
	logger *log.Logger
}

// NewGenerator creates a Generator. jobs may be nil to skip job history.
func NewGenerator(client RenderClient, jobs JobStore, logger *log.Logger) *Generator {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Generator{client: client, jobs: jobs, logger: logger}
}

// FindEffect looks up effectID in the worker's catalog.
func (g *Generator) FindEffect(ctx context.Context, effectID string) (*models.Effect, error) {
	effects, err := g.client.Effects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load effects: %w", err)
	}
	for _, e := range effects {
		if e.ID == effectID {
			return &e, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrEffectNotFound, effectID)
}

// Generate injects the optional auto-effect after every song and submits the result for rendering.
//
// The live timeline is never modified; items is copied before injection.
func (g *Generator) Generate(ctx context.Context, items []models.TrackItem, language, effectID string, progress chan<- ProgressUpdate) (*GenerateResult, error) {
	if len(items) == 0 {
		return nil, shared.ErrEmptyTimeline
	}
	if language == "" {
		language = timeline.DefaultLanguage
	}
	if !timeline.IsSupported(language) {
		return nil, fmt.Errorf("%w: unsupported language %q", shared.ErrInvalidArgument, language)
	}

	var effect *models.Effect
	if effectID != "" {
		sendProgress(progress, loadingEffectsUpdate(effectID))
		e, err := g.FindEffect(ctx, effectID)
		if err != nil {
			return nil, err
		}
		effect = e
	}

	submitted := timeline.InjectAfterEachSong(items, effect)
	job := models.NewRenderJob(language, len(submitted))
	if g.jobs != nil {
		if err := g.jobs.Create(job); err != nil {
			g.logger.Warn("failed to record render job", "error", err)
		}
	}

	sendProgress(progress, submittingRenderUpdate(len(submitted), language))
	resp, err := g.client.Generate(ctx, submitted, language)
	if err != nil {
		job.Fail(err)
		g.record(job)
		g.logger.Error("render submission failed", "language", language, "items", len(submitted), "error", err)
		return nil, err
	}

	job.Complete(resp.JobID, resp.Output, g.client.DownloadURL(resp.JobID))
	g.record(job)
	sendProgress(progress, renderSubmittedUpdate(resp.JobID))
	g.logger.Info("render submitted", "job", resp.JobID, "items", len(submitted))

	return &GenerateResult{Job: job, Timeline: submitted}, nil
}

func (g *Generator) record(job *models.RenderJob) {
	if g.jobs == nil || job.ID() == "" {
		return
	}
	if err := g.jobs.Update(job); err != nil {
		g.logger.Warn("failed to update render job", "id", job.ID(), "error", err)
	}
}
