package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/club100/internal/formatter"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search resolves a query and prints the candidate songs.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("%w: query", shared.ErrMissingArgument)
	}

	res, err := r.resolver()
	if err != nil {
		return err
	}

	r.logger.Debug("searching", "query", query)
	songs, err := res.Resolve(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if cmd.Bool("json") {
		return r.writeJSON(songs, cmd.Bool("pretty"))
	}
	return formatter.WriteSongs(r.output, songs)
}
