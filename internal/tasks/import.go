package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
	"golang.org/x/time/rate"
)

// lineSeparator splits an import line into tokens: a tab, a comma, or a run of two or more spaces.
var lineSeparator = regexp.MustCompile(`\t|,|\s{2,}`)

// Resolver turns a query into ranked songs.
type Resolver interface {
	Resolve(ctx context.Context, query string) ([]models.Song, error)
}

// ImportOpts configures a [Importer].
type ImportOpts struct {
	RateLimit     float64 // Resolver calls per second; zero means unlimited
	MaxConcurrent int     // Lines resolved at once; zero means all lines at once
}

// LineOutcome is the result of importing one line.
type LineOutcome struct {
	Index int          // Position of the line among non-blank lines
	Line  string       // Trimmed line text
	Song  *models.Song // Resolved song, nil when not found
	Found string       // Text reported for a found line
	Err   error        // Why the line was not found
}

// ImportResult is the order-preserving summary of a batch import.
type ImportResult struct {
	Songs    []models.Song // Songs to append, in input order
	Found    []string      // Found lines, in input order
	NotFound []string      // Lines with no match, in input order
	Lines    int           // Number of non-blank lines processed
	Outcomes []LineOutcome // Per-line detail, in input order
}

// Importer resolves many lines concurrently.
type Importer struct {
	resolver Resolver
	opts     ImportOpts
	logger   *log.Logger
}

// NewImporter creates an Importer using resolver for non-URL lines.
func NewImporter(resolver Resolver, opts ImportOpts, logger *log.Logger) *Importer {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Importer{resolver: resolver, opts: opts, logger: logger}
}

// SplitLines breaks raw text into trimmed non-blank lines.
func SplitLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// ParseURLLine reports whether line starts with a URL token and, if so, the song it describes.
//
// The title is the remaining tokens joined by a space, or the URL itself when there are none.
func ParseURLLine(line string) (models.Song, bool) {
	tokens := lineSeparator.Split(line, -1)
	first := tokens[0]
	if !strings.HasPrefix(first, "http") {
		return models.Song{}, false
	}

	url := strings.TrimSpace(first)
	title := strings.TrimSpace(strings.Join(tokens[1:], " "))
	if title == "" {
		title = url
	}
	return models.Song{URL: url, Title: title}, true
}

// Import resolves every non-blank line and returns the outcomes in input order.
//
// All lines are launched at once (subject to MaxConcurrent). Each completion sends a
// [ProgressUpdate] on progress, in completion order. Line failures are reported in
// NotFound and never fail the import; the returned error is non-nil only when ctx ends.
func (im *Importer) Import(ctx context.Context, lines []string, progress chan<- ProgressUpdate) (*ImportResult, error) {
	var trimmed []string
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			trimmed = append(trimmed, l)
		}
	}

	total := len(trimmed)
	sendProgress(progress, importStartedUpdate(total))

	limiter := rate.NewLimiter(rate.Inf, 1)
	if im.opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(im.opts.RateLimit), 1)
	}

	var sem chan struct{}
	if im.opts.MaxConcurrent > 0 {
		sem = make(chan struct{}, im.opts.MaxConcurrent)
	}

	outcomes := make([]LineOutcome, total)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	for i, line := range trimmed {
		wg.Add(1)
		go func(i int, line string) {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}

			outcomes[i] = im.importLine(ctx, limiter, i, line)

			mu.Lock()
			processed++
			sendProgress(progress, lineResolvedUpdate(processed, total, &outcomes[i]))
			mu.Unlock()
		}(i, line)
	}
	wg.Wait()

	result := &ImportResult{
		Songs:    []models.Song{},
		Found:    []string{},
		NotFound: []string{},
		Lines:    total,
		Outcomes: outcomes,
	}
	for _, o := range outcomes {
		if o.Song != nil {
			result.Songs = append(result.Songs, *o.Song)
			result.Found = append(result.Found, o.Found)
		} else {
			result.NotFound = append(result.NotFound, o.Line)
		}
	}

	im.logger.Info("import finished", "lines", total, "found", len(result.Found), "not_found", len(result.NotFound))

	if err := ctx.Err(); err != nil {
		return result, err
	}
	return result, nil
}

func (im *Importer) importLine(ctx context.Context, limiter *rate.Limiter, i int, line string) LineOutcome {
	out := LineOutcome{Index: i, Line: line}

	if song, ok := ParseURLLine(line); ok {
		out.Song = &song
		out.Found = song.Title
		return out
	}

	if err := limiter.Wait(ctx); err != nil {
		out.Err = err
		return out
	}

	songs, err := im.resolver.Resolve(ctx, line)
	switch {
	case err != nil:
		im.logger.Debug("line resolution failed", "line", line, "error", err)
		out.Err = err
	case len(songs) == 0:
		out.Err = fmt.Errorf("%w: %s", shared.ErrLineNotFound, line)
	default:
		song := songs[0]
		out.Song = &song
		out.Found = line
	}
	return out
}
