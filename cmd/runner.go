package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/club100/internal/repositories"
	"github.com/desertthunder/club100/internal/resolver"
	"github.com/desertthunder/club100/internal/services"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
	"github.com/desertthunder/club100/internal/timeline"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database and everything built on it are opened lazily so commands that never touch
// storage (setup config, effects list) work without one.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
	db         *sql.DB
	youtube    services.Provider
	worker     *services.WorkerClient
	now        func() time.Time
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
	DB         *sql.DB           // Pre-opened database; opened from config when nil
	YouTube    services.Provider // Primary search provider; built from config when nil
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = services.NewHTTPClient(opts.Config.HTTPTimeout())
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
		db:         opts.DB,
		youtube:    opts.YouTube,
		now:        time.Now,
	}
	r.configure(opts.Config)
	return r
}

// configure (re)builds the config-derived service clients.
func (r *Runner) configure(config *shared.Config) {
	r.config = config
	r.worker = services.NewWorkerClient(config.Worker.URL, r.httpClient)
	if r.youtube == nil && config.HasYouTubeCredentials() {
		r.youtube = services.NewYouTubeProviderFromConfig(config, r.httpClient)
	}
}

// SetLogger swaps the logger, e.g. to a file logger while the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// loadConfig is the root Before hook: it reads the --config file when it exists.
func (r *Runner) loadConfig(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if cmd.Bool("verbose") {
		shared.SetLogLevel(r.logger, log.DebugLevel)
	}

	path := cmd.String("config")
	if path == "" {
		return ctx, nil
	}
	r.configPath = path

	if _, err := os.Stat(path); err != nil {
		r.logger.Debug("config file not found, using defaults", "path", path)
		return ctx, nil
	}

	config, err := shared.LoadConfig(path)
	if err != nil {
		return ctx, err
	}
	r.configure(config)
	return ctx, nil
}

// database returns the shared connection, opening it and running migrations on first use.
func (r *Runner) database() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenDatabase(r.config)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	r.db = db
	return db, nil
}

// Close releases the database connection if one was opened.
func (r *Runner) Close() error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

func (r *Runner) timelineStore() (*repositories.TimelineRepository, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return repositories.NewTimelineRepository(db), nil
}

// controller opens the persisted timeline.
func (r *Runner) controller(ctx context.Context) (*timeline.Controller, error) {
	store, err := r.timelineStore()
	if err != nil {
		return nil, err
	}
	return timeline.OpenController(ctx, store, shared.WithLogger(r.logger, "component", "timeline"))
}

// language resolves the timeline language: explicit flag, then stored choice, then config, then default.
func (r *Runner) language(ctx context.Context, flag string) (string, error) {
	if flag != "" {
		if !timeline.IsSupported(flag) {
			return "", fmt.Errorf("%w: unsupported language %q", shared.ErrInvalidArgument, flag)
		}
		return flag, nil
	}

	store, err := r.timelineStore()
	if err != nil {
		return "", err
	}
	stored, err := store.Language(ctx)
	if err != nil {
		return "", err
	}
	if stored != "" {
		return stored, nil
	}
	if r.config.Timeline.Language != "" {
		return r.config.Timeline.Language, nil
	}
	return timeline.DefaultLanguage, nil
}

// resolver builds the song resolver over the SQLite search cache.
func (r *Runner) resolver() (*resolver.Resolver, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}

	cache := repositories.NewSearchCache(db, r.config.CacheTTL())
	return resolver.New(
		r.youtube,
		services.NewWorkerProvider(r.worker),
		cache,
		shared.WithLogger(r.logger, "component", "resolver"),
	), nil
}

func (r *Runner) importer(res tasks.Resolver, rateLimit float64, concurrency int) *tasks.Importer {
	return tasks.NewImporter(res, tasks.ImportOpts{
		RateLimit:     rateLimit,
		MaxConcurrent: concurrency,
	}, shared.WithLogger(r.logger, "component", "import"))
}

func (r *Runner) generator() (*tasks.Generator, error) {
	db, err := r.database()
	if err != nil {
		return nil, err
	}
	return tasks.NewGenerator(r.worker, repositories.NewRenderJobRepository(db), shared.WithLogger(r.logger, "component", "render")), nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, searchCommand, timelineCommand, importCommand, effectsCommand,
		generateCommand, jobsCommand, cacheCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// intArg parses the positional argument at i as an integer.
func intArg(cmd *cli.Command, i int, name string) (int, error) {
	raw := cmd.Args().Get(i)
	if raw == "" {
		return 0, fmt.Errorf("%w: %s", shared.ErrMissingArgument, name)
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer, got %q", shared.ErrInvalidArgument, name, raw)
	}
	return n, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
