package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/club100/internal/formatter"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/timeline"
	"github.com/urfave/cli/v3"
)

// position parses the 1-based positional argument at i into a 0-based index.
func position(cmd *cli.Command, i int, name string) (int, error) {
	n, err := intArg(cmd, i, name)
	if err != nil {
		return 0, err
	}
	return n - 1, nil
}

// insertionPoint maps --after to a controller index: -1 prepends, len appends.
func insertionPoint(cmd *cli.Command, length int) int {
	after := cmd.Int("after")
	if after < -1 {
		return length
	}
	return after - 1
}

func (r *Runner) printTimeline(items []models.TrackItem) error {
	data, err := formatter.ExportToText(items)
	if err != nil {
		return err
	}
	_, err = r.output.Write(data)
	return err
}

// TimelineShow prints the persisted timeline.
func (r *Runner) TimelineShow(ctx context.Context, cmd *cli.Command) error {
	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}

	items := ctrl.Items()
	if cmd.Bool("json") {
		return r.writeJSON(items, true)
	}
	return r.printTimeline(items)
}

// TimelineAddSong inserts a song after the last song.
func (r *Runner) TimelineAddSong(ctx context.Context, cmd *cli.Command) error {
	url := strings.TrimSpace(cmd.Args().First())
	if url == "" {
		return fmt.Errorf("%w: url", shared.ErrMissingArgument)
	}

	song := models.Song{URL: url, Title: cmd.String("title"), Artist: cmd.String("artist")}
	if start := cmd.Int("start"); start >= 0 {
		song.Start = &start
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	items, err := ctrl.AddSong(ctx, song)
	if err != nil {
		return err
	}

	r.writePlain("✓ Added %s (%d items)\n", song.DisplayTitle(), len(items))
	return nil
}

// TimelineAddSnippet inserts a spoken or uploaded snippet.
func (r *Runner) TimelineAddSnippet(ctx context.Context, cmd *cli.Command) error {
	text, audioURL := cmd.String("text"), cmd.String("audio-url")

	var snippet models.Snippet
	switch {
	case text != "" && audioURL != "":
		return fmt.Errorf("%w: cannot specify both --text and --audio-url", shared.ErrInvalidArgument)
	case text != "":
		snippet = models.Snippet{Kind: models.SnippetTTS, Text: text}
	case audioURL != "":
		snippet = models.Snippet{Kind: models.SnippetUpload, AudioURL: audioURL}
	default:
		return fmt.Errorf("%w: either --text or --audio-url must be provided", shared.ErrMissingArgument)
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	items, err := ctrl.InsertAt(ctx, models.SnippetItem(snippet), insertionPoint(cmd, ctrl.Len()))
	if err != nil {
		return err
	}

	r.writePlain("✓ Added snippet (%d items)\n", len(items))
	return nil
}

// TimelineAddEffect inserts an effect from the worker catalog.
func (r *Runner) TimelineAddEffect(ctx context.Context, cmd *cli.Command) error {
	id := strings.TrimSpace(cmd.Args().First())
	if id == "" {
		return fmt.Errorf("%w: effect id", shared.ErrMissingArgument)
	}

	gen, err := r.generator()
	if err != nil {
		return err
	}
	effect, err := gen.FindEffect(ctx, id)
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	items, err := ctrl.InsertAt(ctx, models.EffectItem(*effect), insertionPoint(cmd, ctrl.Len()))
	if err != nil {
		return err
	}

	r.writePlain("✓ Added effect %s (%d items)\n", effect.Name, len(items))
	return nil
}

// TimelineUpdate changes fields of an existing item, keeping its type.
func (r *Runner) TimelineUpdate(ctx context.Context, cmd *cli.Command) error {
	idx, err := position(cmd, 0, "position")
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	items := ctrl.Items()
	if err := timeline.CheckIndex(idx, len(items)); err != nil {
		return err
	}

	item := items[idx].Clone()
	switch item.Type {
	case models.ItemSong:
		if cmd.IsSet("title") {
			item.Song.Title = cmd.String("title")
		}
		if cmd.IsSet("artist") {
			item.Song.Artist = cmd.String("artist")
		}
		if cmd.IsSet("start") {
			if start := cmd.Int("start"); start >= 0 {
				item.Song.Start = &start
			} else {
				item.Song.Start = nil
			}
		}
	case models.ItemSnippet:
		if cmd.IsSet("text") {
			item.Snippet = &models.Snippet{Kind: models.SnippetTTS, Text: cmd.String("text")}
		}
		if cmd.IsSet("audio-url") {
			item.Snippet = &models.Snippet{Kind: models.SnippetUpload, AudioURL: cmd.String("audio-url")}
		}
	default:
		return fmt.Errorf("%w: %s items cannot be updated, remove and re-add instead", shared.ErrInvalidArgument, item.Type)
	}

	if _, err := ctrl.UpdateAt(ctx, idx, item); err != nil {
		return err
	}

	r.writePlain("✓ Updated %d. %s\n", idx+1, item.Label())
	return nil
}

// TimelineRemove deletes the item at a position.
func (r *Runner) TimelineRemove(ctx context.Context, cmd *cli.Command) error {
	idx, err := position(cmd, 0, "position")
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	items, err := ctrl.RemoveAt(ctx, idx)
	if err != nil {
		return err
	}

	r.writePlain("✓ Removed item %d (%d items)\n", idx+1, len(items))
	return nil
}

// TimelineMove moves an item between positions.
func (r *Runner) TimelineMove(ctx context.Context, cmd *cli.Command) error {
	from, err := position(cmd, 0, "from")
	if err != nil {
		return err
	}
	to, err := position(cmd, 1, "to")
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	items, err := ctrl.MoveTo(ctx, from, to)
	if err != nil {
		return err
	}
	if to < 0 || to >= len(items) {
		r.logger.Warn("target position out of range, timeline unchanged", "to", to+1)
		return nil
	}

	r.writePlain("✓ Moved item %d to %d\n", from+1, to+1)
	return nil
}

// TimelineReset clears the timeline after confirmation.
func (r *Runner) TimelineReset(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		r.writePlain("Clear the timeline? [y/N] ")
		answer, _ := bufio.NewReader(r.input).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			r.writePlain("Aborted\n")
			return nil
		}
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	if err := ctrl.Reset(ctx); err != nil {
		return err
	}

	r.writePlain("✓ Timeline cleared\n")
	return nil
}

// TimelineSeed fills an empty timeline with the demo sequence.
func (r *Runner) TimelineSeed(ctx context.Context, cmd *cli.Command) error {
	language, err := r.language(ctx, cmd.String("language"))
	if err != nil {
		return err
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	seeded, err := ctrl.Seed(ctx, language)
	if err != nil {
		return err
	}
	if !seeded {
		r.writePlain("Timeline already has %d items, not seeding\n", ctrl.Len())
		return nil
	}

	r.writePlain("✓ Seeded %d items (%s)\n", ctrl.Len(), language)
	return nil
}

// TimelineLanguage prints the timeline language, or stores a new one.
func (r *Runner) TimelineLanguage(ctx context.Context, cmd *cli.Command) error {
	code := strings.TrimSpace(cmd.Args().First())
	if code == "" {
		language, err := r.language(ctx, "")
		if err != nil {
			return err
		}
		r.writePlain("%s\n", language)
		return nil
	}

	if !timeline.IsSupported(code) {
		var codes []string
		for _, l := range timeline.Languages() {
			codes = append(codes, l.Code)
		}
		return fmt.Errorf("%w: unsupported language %q (supported: %s)", shared.ErrInvalidArgument, code, strings.Join(codes, ", "))
	}

	store, err := r.timelineStore()
	if err != nil {
		return err
	}
	if err := store.SetLanguage(ctx, code); err != nil {
		return err
	}

	r.writePlain("✓ Language set to %s\n", code)
	return nil
}

// TimelineExport writes the timeline to a file.
func (r *Runner) TimelineExport(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return fmt.Errorf("%w: --format: %w", shared.ErrInvalidFlag, err)
	}

	ctrl, err := r.controller(ctx)
	if err != nil {
		return err
	}
	language, err := r.language(ctx, "")
	if err != nil {
		return err
	}
	items := ctrl.Items()

	if format == formatter.FormatMarkdown {
		result, err := formatter.WriteMarkdownExport(items, language, cmd.String("output"))
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported to %s\n", result.Directory)
		for _, f := range result.Files {
			r.writePlain("  %s\n", f)
		}
		return nil
	}

	path, err := formatter.WriteTimelineExport(items, format, language, cmd.String("output"))
	if err != nil {
		return err
	}
	r.writePlain("✓ Exported %d items to %s\n", len(items), path)
	return nil
}
