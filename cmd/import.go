package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/club100/internal/formatter"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
	"github.com/urfave/cli/v3"
)

// readImportText reads the import source: --file when set, stdin otherwise.
func (r *Runner) readImportText(cmd *cli.Command) (string, error) {
	if path := cmd.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read import file: %w", err)
		}
		return string(data), nil
	}

	data, err := io.ReadAll(r.input)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// Import resolves one song per line and appends the found songs to the timeline.
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	text, err := r.readImportText(cmd)
	if err != nil {
		return err
	}
	if cmd.Int("concurrency") < 0 {
		return fmt.Errorf("%w: --concurrency must not be negative", shared.ErrInvalidFlag)
	}
	lines := tasks.SplitLines(text)
	if len(lines) == 0 {
		return fmt.Errorf("%w: no lines to import", shared.ErrMissingArgument)
	}

	rateLimit := cmd.Float("rate-limit")
	if rateLimit < 0 {
		rateLimit = r.config.Import.RateLimit
	}

	res, err := r.resolver()
	if err != nil {
		return err
	}
	importer := r.importer(res, rateLimit, cmd.Int("concurrency"))

	asJSON := cmd.Bool("json")
	progress := make(chan tasks.ProgressUpdate, len(lines)+1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.logger.Debug("import progress", "phase", update.Phase, "step", update.Step, "total", update.Total)
			if !asJSON {
				r.writePlain("%s\n", update.Message)
			}
		}
	}()

	result, err := importer.Import(ctx, lines, progress)
	close(progress)
	<-done
	if err != nil {
		return fmt.Errorf("import interrupted: %w", err)
	}

	if !cmd.Bool("dry-run") && len(result.Songs) > 0 {
		ctrl, err := r.controller(ctx)
		if err != nil {
			return err
		}
		if _, err := ctrl.Append(ctx, result.Songs...); err != nil {
			return fmt.Errorf("failed to append songs: %w", err)
		}
	}

	r.logger.Info("import complete", "lines", result.Lines, "found", len(result.Found), "not_found", len(result.NotFound))

	if asJSON {
		return r.writeJSON(map[string]any{
			"appendedSongs": result.Songs,
			"found":         result.Found,
			"notFound":      result.NotFound,
		}, true)
	}

	r.writePlain("\n")
	return formatter.WriteImportReport(r.output, result)
}
