package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
)

const maxBodyBytes = 1 << 20

// Searcher resolves a free-text query to candidate songs.
type Searcher interface {
	Resolve(ctx context.Context, query string) ([]models.Song, error)
}

// Importer resolves a batch of lines.
type Importer interface {
	Import(ctx context.Context, lines []string, progress chan<- tasks.ProgressUpdate) (*tasks.ImportResult, error)
}

// Timeline is the editable running order the API reads and appends to.
type Timeline interface {
	Items() []models.TrackItem
	Append(ctx context.Context, songs ...models.Song) ([]models.TrackItem, error)
}

type searchRequest struct {
	Query string `json:"query"`
}

type importRequest struct {
	Lines []string `json:"lines"`
	Text  string   `json:"text"`
}

// ImportResponse is the body of a successful POST /api/import.
type ImportResponse struct {
	AppendedSongs []models.Song `json:"appendedSongs"`
	Found         []string      `json:"found"`
	NotFound      []string      `json:"notFound"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// API serves search, import and timeline routes.
type API struct {
	searcher Searcher
	importer Importer
	timeline Timeline
	logger   *log.Logger
}

// APIOpts holds the dependencies of an [API].
type APIOpts struct {
	Searcher Searcher
	Importer Importer
	Timeline Timeline
	Logger   *log.Logger
}

// NewAPI creates an API from opts.
func NewAPI(opts APIOpts) *API {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	return &API{
		searcher: opts.Searcher,
		importer: opts.Importer,
		timeline: opts.Timeline,
		logger:   opts.Logger,
	}
}

// Register adds the API routes to r.
func (a *API) Register(r Router) {
	r.Handle(http.MethodPost, "/api/youtube-search", http.HandlerFunc(a.Search))
	r.Handle(http.MethodPost, "/api/import", http.HandlerFunc(a.Import))
	r.Handle(http.MethodGet, "/api/timeline", http.HandlerFunc(a.Timeline))
}

// NewRouter builds a router with logging and recovery middleware, the API routes and /health.
func NewRouter(api *API) *BasicRouter {
	r := NewBasicRouter()
	r.Use(Logging(api.logger), Recovery(api.logger))
	api.Register(r)
	r.Handler(HealthHandler{})
	return r
}

// Search handles POST /api/youtube-search.
//
// Responds 400 without a query and 500 when every search source failed; an empty array is a success.
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeBody(w, r, &req); err != nil || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "Missing query")
		return
	}

	if a.searcher == nil {
		writeError(w, http.StatusInternalServerError, "All search methods failed")
		return
	}

	songs, err := a.searcher.Resolve(r.Context(), req.Query)
	if err != nil {
		if !errors.Is(err, shared.ErrAllSourcesFailed) {
			a.logger.Warn("search failed", "query", req.Query, "error", err)
		}
		writeError(w, http.StatusInternalServerError, "All search methods failed")
		return
	}
	if songs == nil {
		songs = []models.Song{}
	}

	writeJSON(w, http.StatusOK, songs)
}

// Import handles POST /api/import: resolves every line and appends the found songs to the timeline.
func (a *API) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	lines := req.Lines
	if len(lines) == 0 {
		lines = tasks.SplitLines(req.Text)
	}
	if len(lines) == 0 {
		writeError(w, http.StatusBadRequest, "Missing lines")
		return
	}

	if a.importer == nil || a.timeline == nil {
		writeError(w, http.StatusServiceUnavailable, "Import unavailable")
		return
	}

	result, err := a.importer.Import(r.Context(), lines, nil)
	if err != nil {
		a.logger.Warn("import interrupted", "error", err)
		writeError(w, http.StatusInternalServerError, "Import failed")
		return
	}

	if len(result.Songs) > 0 {
		if _, err := a.timeline.Append(r.Context(), result.Songs...); err != nil {
			a.logger.Error("failed to append imported songs", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to update timeline")
			return
		}
	}

	writeJSON(w, http.StatusOK, ImportResponse{
		AppendedSongs: nonNil(result.Songs),
		Found:         nonNil(result.Found),
		NotFound:      nonNil(result.NotFound),
	})
}

// Timeline handles GET /api/timeline.
func (a *API) Timeline(w http.ResponseWriter, r *http.Request) {
	if a.timeline == nil {
		writeJSON(w, http.StatusOK, []models.TrackItem{})
		return
	}
	writeJSON(w, http.StatusOK, nonNil(a.timeline.Items()))
}

// HealthHandler answers liveness probes.
type HealthHandler struct{}

func (HealthHandler) Routes() []string { return []string{"/health"} }

func (HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
