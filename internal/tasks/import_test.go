package tasks

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
)

// delayedResolver answers each query after a per-query delay.
type delayedResolver struct {
	mu      sync.Mutex
	results map[string][]models.Song
	errs    map[string]error
	delays  map[string]time.Duration
	calls   []string
}

func (r *delayedResolver) Resolve(ctx context.Context, q string) ([]models.Song, error) {
	r.mu.Lock()
	r.calls = append(r.calls, q)
	d := r.delays[q]
	r.mu.Unlock()

	if d > 0 {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := r.errs[q]; err != nil {
		return nil, err
	}
	return r.results[q], nil
}

func newTestImporter(r Resolver, opts ImportOpts) *Importer {
	return NewImporter(r, opts, shared.NewLogger(&bytes.Buffer{}))
}

func TestParseURLLine(t *testing.T) {
	tests := []struct {
		line      string
		wantOK    bool
		wantURL   string
		wantTitle string
	}{
		{"http://x/1, TitleOne", true, "http://x/1", "TitleOne"},
		{"https://youtu.be/abc\tArtist - Song", true, "https://youtu.be/abc", "Artist - Song"},
		{"https://youtu.be/abc  Some   Title", true, "https://youtu.be/abc", "Some Title"},
		{"https://youtu.be/abc", true, "https://youtu.be/abc", "https://youtu.be/abc"},
		{"https://youtu.be/abc,", true, "https://youtu.be/abc", "https://youtu.be/abc"},
		{"ed sheeran perfect", false, "", ""},
		{"perfect, ed sheeran", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			song, ok := ParseURLLine(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if song.URL != tt.wantURL || song.Title != tt.wantTitle {
				t.Errorf("got (%q, %q), want (%q, %q)", song.URL, song.Title, tt.wantURL, tt.wantTitle)
			}
		})
	}
}

func TestSplitLines(t *testing.T) {
	got := SplitLines("  a \n\n\t\nb\r\n  ")
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("SplitLines() = %q", got)
	}
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("order preserved with found and not found", func(t *testing.T) {
		r := &delayedResolver{errs: map[string]error{"unmatched query": shared.ErrAllSourcesFailed}}
		lines := []string{"http://x/1, TitleOne", "unmatched query", "http://x/2"}

		progress := make(chan ProgressUpdate, len(lines)+1)
		result, err := newTestImporter(r, ImportOpts{}).Import(ctx, lines, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if !reflect.DeepEqual(result.Found, []string{"TitleOne", "http://x/2"}) {
			t.Errorf("Found = %q", result.Found)
		}
		if !reflect.DeepEqual(result.NotFound, []string{"unmatched query"}) {
			t.Errorf("NotFound = %q", result.NotFound)
		}
		if len(result.Songs) != 2 || result.Songs[0].URL != "http://x/1" || result.Songs[1].URL != "http://x/2" {
			t.Errorf("Songs = %+v", result.Songs)
		}
		if len(r.calls) != 1 {
			t.Errorf("expected URL lines to skip the resolver, got calls %q", r.calls)
		}
	})

	t.Run("completion order does not affect result order", func(t *testing.T) {
		r := &delayedResolver{
			results: map[string][]models.Song{
				"slow": {{URL: "https://y/slow"}},
				"fast": {{URL: "https://y/fast"}, {URL: "https://y/other"}},
			},
			delays: map[string]time.Duration{"slow": 50 * time.Millisecond},
		}

		progress := make(chan ProgressUpdate, 3)
		result, err := newTestImporter(r, ImportOpts{}).Import(ctx, []string{"slow", "fast"}, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if len(result.Songs) != 2 || result.Songs[0].URL != "https://y/slow" || result.Songs[1].URL != "https://y/fast" {
			t.Errorf("expected input order, got %+v", result.Songs)
		}
		if !reflect.DeepEqual(result.Found, []string{"slow", "fast"}) {
			t.Errorf("expected found to carry original query lines, got %q", result.Found)
		}

		close(progress)
		var updates []ProgressUpdate
		for u := range progress {
			updates = append(updates, u)
		}
		if len(updates) != 3 {
			t.Fatalf("expected 3 updates, got %d", len(updates))
		}
		if updates[0].Step != 0 || updates[0].Total != 2 {
			t.Errorf("unexpected start update %+v", updates[0])
		}
		if updates[1].Step != 1 || updates[2].Step != 2 {
			t.Errorf("expected steps 1,2 in completion order, got %d,%d", updates[1].Step, updates[2].Step)
		}
		if o, ok := updates[1].Data.(*LineOutcome); !ok || o.Line != "fast" {
			t.Errorf("expected fast line to complete first, got %+v", updates[1].Data)
		}
		for _, u := range updates {
			if u.Phase != ImportLines {
				t.Errorf("unexpected phase %s", u.Phase)
			}
		}
	})

	t.Run("empty result is not found", func(t *testing.T) {
		r := &delayedResolver{results: map[string][]models.Song{"nothing": {}}}
		result, _ := newTestImporter(r, ImportOpts{}).Import(ctx, []string{"nothing"}, nil)

		if len(result.NotFound) != 1 || len(result.Songs) != 0 {
			t.Fatalf("unexpected result %+v", result)
		}
		if !errors.Is(result.Outcomes[0].Err, shared.ErrLineNotFound) {
			t.Errorf("expected ErrLineNotFound, got %v", result.Outcomes[0].Err)
		}
	})

	t.Run("blank lines dropped", func(t *testing.T) {
		r := &delayedResolver{}
		result, err := newTestImporter(r, ImportOpts{}).Import(ctx, []string{"", "   ", "\t"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Lines != 0 || len(result.Songs) != 0 || result.Songs == nil {
			t.Errorf("unexpected result %+v", result)
		}
	})

	t.Run("rate limited import preserves order", func(t *testing.T) {
		r := &delayedResolver{results: map[string][]models.Song{
			"a": {{URL: "https://y/a"}},
			"b": {{URL: "https://y/b"}},
			"c": {{URL: "https://y/c"}},
		}}

		result, err := newTestImporter(r, ImportOpts{RateLimit: 50}).Import(ctx, []string{"a", "b", "c"}, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		var urls []string
		for _, s := range result.Songs {
			urls = append(urls, s.URL)
		}
		if strings.Join(urls, ",") != "https://y/a,https://y/b,https://y/c" {
			t.Errorf("unexpected order %v", urls)
		}
	})

	t.Run("concurrency cap", func(t *testing.T) {
		var (
			mu      sync.Mutex
			active  int
			maxSeen int
		)
		r := resolverFunc(func(ctx context.Context, q string) ([]models.Song, error) {
			mu.Lock()
			active++
			maxSeen = max(maxSeen, active)
			mu.Unlock()

			time.Sleep(5 * time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()
			return []models.Song{{URL: "https://y/" + q}}, nil
		})

		lines := []string{"1", "2", "3", "4", "5", "6"}
		result, _ := newTestImporter(r, ImportOpts{MaxConcurrent: 2}).Import(ctx, lines, nil)
		if len(result.Songs) != len(lines) {
			t.Fatalf("expected %d songs, got %d", len(lines), len(result.Songs))
		}
		if maxSeen > 2 {
			t.Errorf("expected at most 2 concurrent resolutions, saw %d", maxSeen)
		}
	})

	t.Run("unread progress channel never blocks", func(t *testing.T) {
		r := &delayedResolver{}
		progress := make(chan ProgressUpdate)
		done := make(chan struct{})
		go func() {
			newTestImporter(r, ImportOpts{}).Import(ctx, []string{"http://a", "http://b"}, progress)
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("import blocked on progress channel")
		}
	})

	t.Run("cancelled context still completes", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		r := &delayedResolver{delays: map[string]time.Duration{"q": time.Second}}
		result, err := newTestImporter(r, ImportOpts{}).Import(cctx, []string{"http://a", "q"}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if result == nil || len(result.Songs) != 1 || len(result.NotFound) != 1 {
			t.Errorf("expected partial result, got %+v", result)
		}
	})
}

type resolverFunc func(ctx context.Context, q string) ([]models.Song, error)

func (f resolverFunc) Resolve(ctx context.Context, q string) ([]models.Song, error) { return f(ctx, q) }

func TestPhaseString(t *testing.T) {
	for phase, want := range map[Phase]string{ImportLines: "import_lines", LoadEffects: "load_effects", SubmitRender: "submit_render", Phase(99): ""} {
		if got := phase.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", phase, got, want)
		}
	}
}
