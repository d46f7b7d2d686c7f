package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/club100/internal/formatter"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/repositories"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
	"github.com/urfave/cli/v3"
)

// EffectsList prints the worker's effect catalog.
func (r *Runner) EffectsList(ctx context.Context, cmd *cli.Command) error {
	effects, err := r.worker.Effects(ctx)
	if err != nil {
		return fmt.Errorf("failed to load effects: %w", err)
	}

	if cmd.Bool("json") {
		if effects == nil {
			effects = []models.Effect{}
		}
		return r.writeJSON(effects, true)
	}

	if len(effects) == 0 {
		r.writePlain("No effects\n")
		return nil
	}
	for _, e := range effects {
		r.writePlain("%-16s %s\n", e.ID, e.Name)
	}
	return nil
}

// Generate submits the timeline, with the optional auto-effect, for rendering.
func (r *Runner) Generate(ctx context.Context, cmd *cli.Command) error {
	language, err := r.language(ctx, cmd.String("language"))
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	gen, err := r.generator()
	if err != nil {
		return err
	}

	asJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			if !asJSON {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := gen.Generate(ctx, ctrl.Items(), language, cmd.String("effect"), progress)
	close(progress)
	<-done
	if err != nil {
		return err
	}

	job := result.Job
	if asJSON {
		return r.writeJSON(map[string]any{
			"jobId":       job.JobID(),
			"output":      job.Output(),
			"downloadUrl": job.DownloadURL(),
			"language":    job.Language(),
			"items":       job.ItemCount(),
		}, true)
	}

	r.writePlainln("✓ Rendered %d items (%s)", job.ItemCount(), job.Language())
	r.writePlain("Job: %s\n", job.JobID())
	r.writePlain("Download: %s\n", job.DownloadURL())

	if cmd.Bool("open") {
		if err := shared.OpenBrowser(job.DownloadURL()); err != nil {
			r.logger.Warn("failed to open browser", "error", err)
		}
	}
	return nil
}

// JobsList prints render jobs from local history or the worker's job table.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	status := strings.ToLower(cmd.String("status"))
	limit := cmd.Int("limit")

	if cmd.Bool("worker") {
		jobs, err := r.worker.Jobs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list worker jobs: %w", err)
		}

		filtered := []services.WorkerJob{}
		for _, j := range jobs {
			if status != "" && strings.ToLower(j.Status) != status {
				continue
			}
			filtered = append(filtered, j)
			if limit > 0 && len(filtered) == limit {
				break
			}
		}

		if cmd.Bool("json") {
			return r.writeJSON(filtered, true)
		}
		return formatter.WriteWorkerJobs(r.output, filtered, r.now())
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	jobs, err := repositories.NewRenderJobRepository(db).List(map[string]any{"status": status, "limit": limit})
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]map[string]any, 0, len(jobs))
		for _, j := range jobs {
			out = append(out, map[string]any{
				"id":          j.ID(),
				"jobId":       j.JobID(),
				"status":      j.Status(),
				"language":    j.Language(),
				"items":       j.ItemCount(),
				"downloadUrl": j.DownloadURL(),
				"error":       j.ErrorMessage(),
				"createdAt":   j.CreatedAt(),
			})
		}
		return r.writeJSON(out, true)
	}
	return formatter.WriteRenderJobs(r.output, jobs, r.now())
}
