// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// setupCommand handles setup operations for the database and configuration file.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example config.toml",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Path of the config file to create",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// searchCommand resolves a free-text query through the cache and search providers.
func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search for a song (YouTube Data API with worker fallback)",
		ArgsUsage: "<query>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
		},
		Action: r.Search,
	}
}

func itemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "title", Usage: "Song title"},
		&cli.StringFlag{Name: "artist", Usage: "Song artist"},
		&cli.IntFlag{Name: "start", Usage: "Start offset in seconds", Value: -1},
		&cli.StringFlag{Name: "text", Usage: "Text for a spoken snippet"},
		&cli.StringFlag{Name: "audio-url", Usage: "Audio URL for an uploaded snippet"},
	}
}

func afterFlag() cli.Flag {
	return &cli.IntFlag{
		Name:  "after",
		Usage: "Insert after this 1-based position (0 inserts first); defaults to the end",
		Value: -2,
	}
}

// timelineCommand handles timeline editing.
func timelineCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "timeline",
		Aliases: []string{"tl"},
		Usage:   "Show and edit the running order",
		Commands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the timeline",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.TimelineShow,
			},
			{
				Name:      "add-song",
				Usage:     "Add a song after the last song",
				ArgsUsage: "<url>",
				Flags:     itemFlags()[:3],
				Action:    r.TimelineAddSong,
			},
			{
				Name:   "add-snippet",
				Usage:  "Insert a spoken snippet (--text) or uploaded clip (--audio-url)",
				Flags:  append(itemFlags()[3:], afterFlag()),
				Action: r.TimelineAddSnippet,
			},
			{
				Name:      "add-effect",
				Usage:     "Insert an effect from the worker catalog",
				ArgsUsage: "<effect-id>",
				Flags:     []cli.Flag{afterFlag()},
				Action:    r.TimelineAddEffect,
			},
			{
				Name:      "update",
				Usage:     "Change fields of the item at a 1-based position",
				ArgsUsage: "<position>",
				Flags:     itemFlags(),
				Action:    r.TimelineUpdate,
			},
			{
				Name:      "remove",
				Aliases:   []string{"rm"},
				Usage:     "Remove the item at a 1-based position",
				ArgsUsage: "<position>",
				Action:    r.TimelineRemove,
			},
			{
				Name:      "move",
				Aliases:   []string{"mv"},
				Usage:     "Move an item between 1-based positions",
				ArgsUsage: "<from> <to>",
				Action:    r.TimelineMove,
			},
			{
				Name:  "reset",
				Usage: "Clear the timeline",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "Do not ask for confirmation"},
				},
				Action: r.TimelineReset,
			},
			{
				Name:  "seed",
				Usage: "Fill an empty timeline with demo songs and snippets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Snippet language (da, en)"},
				},
				Action: r.TimelineSeed,
			},
			{
				Name:      "language",
				Usage:     "Show or set the timeline language",
				ArgsUsage: "[code]",
				Action:    r.TimelineLanguage,
			},
			{
				Name:  "export",
				Usage: "Export the timeline (json, csv, markdown, txt)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "Export format", Value: "json"},
					&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file (markdown: directory)"},
				},
				Action: r.TimelineExport,
			},
		},
	}
}

// importCommand handles batch import of songs from lines of text.
func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Resolve one song per line and append the found songs to the timeline",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "File with one song per line (reads stdin when omitted)",
			},
			&cli.FloatFlag{
				Name:  "rate-limit",
				Usage: "Resolver calls per second (0 = unlimited, default from config)",
				Value: -1,
			},
			&cli.IntFlag{
				Name:  "concurrency",
				Usage: "Lines resolved at once (0 = all)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve lines without changing the timeline",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Import,
	}
}

// effectsCommand lists the worker's effect catalog.
func effectsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "effects",
		Usage: "Audio worker effect catalog",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List available effects",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.EffectsList,
			},
		},
	}
}

// generateCommand submits the timeline for rendering.
func generateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Render the timeline to a single audio file on the worker",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "effect",
				Aliases: []string{"e"},
				Usage:   "Effect ID to insert after every song",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Snippet language (da, en)",
			},
			&cli.BoolFlag{
				Name:  "open",
				Usage: "Open the download link in the browser",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Generate,
	}
}

// jobsCommand lists render jobs.
func jobsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "jobs",
		Usage: "Render job history",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List render jobs (local history, or the worker's table with --worker)",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "worker", Usage: "Query the worker's job table"},
					&cli.StringFlag{Name: "status", Usage: "Only jobs with this status (submitted, completed, failed)"},
					&cli.IntFlag{Name: "limit", Usage: "Maximum number of jobs", Value: 20},
					&cli.BoolFlag{Name: "json", Usage: "Output raw JSON"},
				},
				Action: r.JobsList,
			},
		},
	}
}

// cacheCommand manages the search cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Search cache maintenance",
		Commands: []*cli.Command{
			{
				Name:  "clear",
				Usage: "Clear the local search cache and the worker's cache",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "local-only", Usage: "Skip clearing the worker's cache"},
				},
				Action: r.CacheClear,
			},
			{
				Name:   "stats",
				Usage:  "Show cached query count and cache version",
				Action: r.CacheStats,
			},
		},
	}
}

// serveCommand runs the HTTP API.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the search, import and timeline HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Usage: "Listen host (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Listen port (default from config)"},
		},
		Action: r.Serve,
	}
}

// tuiCommand returns the top-level TUI command for interactive timeline editing.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive timeline editor",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "effect", Aliases: []string{"e"}, Usage: "Effect ID to insert after every song when generating"},
			&cli.StringFlag{Name: "language", Aliases: []string{"l"}, Usage: "Snippet language (da, en)"},
			&cli.StringFlag{Name: "log-file", Usage: "Log file while the TUI is running", Value: "./tmp/club100-tui.log"},
		},
		Action: r.TUI,
	}
}
