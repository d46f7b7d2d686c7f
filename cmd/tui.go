package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive timeline editor.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	language, err := r.language(ctx, cmd.String("language"))
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger(cmd.String("log-file"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	res, err := r.resolver()
	if err != nil {
		return err
	}
	gen, err := r.generator()
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, ui.Options{
		Timeline:  ctrl,
		Searcher:  res,
		Generator: gen,
		Language:  language,
		EffectID:  cmd.String("effect"),
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
