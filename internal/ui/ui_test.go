package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/shared"
	"github.com/desertthunder/club100/internal/tasks"
	"github.com/desertthunder/club100/internal/timeline"
)

type searcherFunc func(ctx context.Context, query string) ([]models.Song, error)

func (f searcherFunc) Resolve(ctx context.Context, query string) ([]models.Song, error) {
	return f(ctx, query)
}

type fakeGenerator struct {
	items    []models.TrackItem
	language string
	err      error
}

func (g *fakeGenerator) Generate(ctx context.Context, items []models.TrackItem, language, effectID string, progress chan<- tasks.ProgressUpdate) (*tasks.GenerateResult, error) {
	g.items = items
	g.language = language
	progress <- tasks.ProgressUpdate{Phase: tasks.SubmitRender, Message: "submitting"}
	if g.err != nil {
		return nil, g.err
	}
	job := models.NewRenderJob(language, len(items))
	job.Complete("job-1", "club100.mp3", "http://worker/download/job-1")
	return &tasks.GenerateResult{Job: job, Timeline: items}, nil
}

func newTestModel(t *testing.T, gen Generator, songs ...models.Song) (*Model, *timeline.Controller) {
	t.Helper()
	ctrl := timeline.NewController(shared.NewLogger(&bytes.Buffer{}))
	for _, s := range songs {
		if _, err := ctrl.AddSong(context.Background(), s); err != nil {
			t.Fatal(err)
		}
	}

	search := searcherFunc(func(ctx context.Context, q string) ([]models.Song, error) {
		switch q {
		case "fail":
			return nil, shared.ErrAllSourcesFailed
		case "none":
			return []models.Song{}, nil
		}
		return []models.Song{{URL: "https://y/" + q, Title: q}, {URL: "https://y/other", Title: "other"}}, nil
	})

	m := NewModel(context.Background(), Options{Timeline: ctrl, Searcher: search, Generator: gen})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m, ctrl
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send delivers msg and runs resulting commands until one yields a non-Msg message or nothing.
func send(m *Model, msg tea.Msg) {
	_, cmd := m.Update(msg)
	for cmd != nil {
		next := cmd()
		if _, ok := next.(Msg); !ok {
			return
		}
		_, cmd = m.Update(next)
	}
}

func typeText(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func urls(items []models.TrackItem) []string {
	var out []string
	for _, it := range items {
		if it.Song != nil {
			out = append(out, it.Song.URL)
		} else {
			out = append(out, it.Label())
		}
	}
	return out
}

func TestModel(t *testing.T) {
	t.Run("Starts On Timeline", func(t *testing.T) {
		m, _ := newTestModel(t, nil, models.Song{URL: "u1", Title: "One"})
		send(m, m.Init())

		if m.view != TimelineView {
			t.Errorf("expected timeline view, got %d", m.view)
		}
		if len(m.timelineList.Items()) != 1 {
			t.Errorf("expected 1 item in list, got %d", len(m.timelineList.Items()))
		}
		if !strings.Contains(m.View(), "Club 100") {
			t.Error("expected title in view")
		}
	})

	t.Run("Add Song Via Search", func(t *testing.T) {
		m, ctrl := newTestModel(t, nil, models.Song{URL: "u1"})

		m.Update(runes("a"))
		if m.view != SearchInputView {
			t.Fatalf("expected search input view, got %d", m.view)
		}
		typeText(m, "queen")
		send(m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.view != SearchResultsView {
			t.Fatalf("expected results view, got %d", m.view)
		}
		if len(m.resultList.Items()) != 2 {
			t.Fatalf("expected 2 results, got %d", len(m.resultList.Items()))
		}

		send(m, tea.KeyMsg{Type: tea.KeyEnter})
		if m.view != TimelineView {
			t.Errorf("expected timeline view, got %d", m.view)
		}

		got := urls(ctrl.Items())
		if len(got) != 2 || got[1] != "https://y/queen" {
			t.Errorf("unexpected timeline %v", got)
		}
		if m.timelineList.Index() != 1 {
			t.Errorf("expected new song focused, got index %d", m.timelineList.Index())
		}
	})

	t.Run("Search Without Results", func(t *testing.T) {
		m, ctrl := newTestModel(t, nil)

		m.Update(runes("a"))
		typeText(m, "none")
		send(m, tea.KeyMsg{Type: tea.KeyEnter})

		if m.view != TimelineView {
			t.Errorf("expected timeline view, got %d", m.view)
		}
		if !strings.Contains(m.status, "No results") {
			t.Errorf("unexpected status %q", m.status)
		}
		if ctrl.Len() != 0 {
			t.Error("timeline should be unchanged")
		}
	})

	t.Run("Search Failure Shows Error", func(t *testing.T) {
		m, _ := newTestModel(t, nil)

		m.Update(runes("a"))
		typeText(m, "fail")
		send(m, tea.KeyMsg{Type: tea.KeyEnter})

		if !errors.Is(m.err, shared.ErrAllSourcesFailed) {
			t.Errorf("expected ErrAllSourcesFailed, got %v", m.err)
		}
		if !strings.Contains(m.View(), "Error") {
			t.Error("expected error in view")
		}
	})

	t.Run("Escape Cancels Input", func(t *testing.T) {
		m, _ := newTestModel(t, nil)

		m.Update(runes("s"))
		typeText(m, "q")
		if m.view != SnippetInputView {
			t.Fatalf("typing q should not quit input, view %d", m.view)
		}
		send(m, tea.KeyMsg{Type: tea.KeyEsc})
		if m.view != TimelineView {
			t.Errorf("expected timeline view, got %d", m.view)
		}
	})

	t.Run("Add Snippet After Selection", func(t *testing.T) {
		m, ctrl := newTestModel(t, nil, models.Song{URL: "u1"}, models.Song{URL: "u2"})
		send(m, m.Init())

		m.Update(runes("s"))
		typeText(m, "Skål")
		send(m, tea.KeyMsg{Type: tea.KeyEnter})

		got := urls(ctrl.Items())
		want := []string{"u1", "Skål", "u2"}
		if strings.Join(got, ",") != strings.Join(want, ",") {
			t.Errorf("expected %v, got %v", want, got)
		}
		if m.timelineList.Index() != 1 {
			t.Errorf("expected snippet focused, got %d", m.timelineList.Index())
		}
	})

	t.Run("Move And Remove", func(t *testing.T) {
		m, ctrl := newTestModel(t, nil, models.Song{URL: "u1"}, models.Song{URL: "u2"}, models.Song{URL: "u3"})
		send(m, m.Init())

		send(m, runes("J"))
		if got := urls(ctrl.Items()); strings.Join(got, ",") != "u2,u1,u3" {
			t.Errorf("after move down got %v", got)
		}
		if m.timelineList.Index() != 1 {
			t.Errorf("cursor should follow moved item, got %d", m.timelineList.Index())
		}

		send(m, runes("K"))
		if got := urls(ctrl.Items()); strings.Join(got, ",") != "u1,u2,u3" {
			t.Errorf("after move up got %v", got)
		}

		send(m, runes("K"))
		if got := urls(ctrl.Items()); strings.Join(got, ",") != "u1,u2,u3" {
			t.Errorf("move up at top should be a no-op, got %v", got)
		}

		send(m, runes("x"))
		if got := urls(ctrl.Items()); strings.Join(got, ",") != "u2,u3" {
			t.Errorf("after remove got %v", got)
		}
	})

	t.Run("Generate", func(t *testing.T) {
		gen := &fakeGenerator{}
		m, _ := newTestModel(t, gen, models.Song{URL: "u1"})

		send(m, runes("g"))
		if m.view != ConfirmView {
			t.Fatalf("expected confirm view, got %d", m.view)
		}
		if !strings.Contains(m.View(), "Songs: 1") {
			t.Error("confirm view should show song count")
		}

		send(m, runes("y"))
		if m.view != ResultView {
			t.Fatalf("expected result view, got %d", m.view)
		}
		if gen.language != timeline.DefaultLanguage {
			t.Errorf("expected default language, got %q", gen.language)
		}
		if !strings.Contains(m.View(), "http://worker/download/job-1") {
			t.Errorf("expected download url in view, got:\n%s", m.View())
		}

		send(m, runes("r"))
		if m.view != TimelineView || m.result != nil {
			t.Error("restart should return to a clean timeline view")
		}
	})

	t.Run("Generate Failure", func(t *testing.T) {
		gen := &fakeGenerator{err: shared.ErrRenderSubmissionFailed}
		m, _ := newTestModel(t, gen, models.Song{URL: "u1"})

		send(m, runes("g"))
		send(m, runes("y"))
		if !strings.Contains(m.View(), "Generation failed") {
			t.Errorf("expected failure in view, got:\n%s", m.View())
		}
	})

	t.Run("Generate Requires Songs And Worker", func(t *testing.T) {
		m, _ := newTestModel(t, &fakeGenerator{})
		send(m, runes("g"))
		if m.view != TimelineView {
			t.Error("empty timeline should not open confirm view")
		}

		m, _ = newTestModel(t, nil, models.Song{URL: "u1"})
		send(m, runes("g"))
		if m.view != TimelineView || m.status == "" {
			t.Error("missing generator should report status")
		}
	})

	t.Run("Decline Generate", func(t *testing.T) {
		gen := &fakeGenerator{}
		m, _ := newTestModel(t, gen, models.Song{URL: "u1"})

		send(m, runes("g"))
		send(m, runes("n"))
		if m.view != TimelineView || gen.items != nil {
			t.Error("declining should not generate")
		}
	})

	t.Run("Quit", func(t *testing.T) {
		m, _ := newTestModel(t, nil)
		_, cmd := m.Update(runes("q"))
		if cmd == nil {
			t.Fatal("expected quit command")
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Error("expected tea.QuitMsg")
		}
	})
}

func TestListItems(t *testing.T) {
	start := 65
	e := timelineEntry{pos: 0, item: models.SongItem(models.Song{URL: "u", Title: "T", Artist: "A", Start: &start})}
	if e.Title() != " 1. A - T" {
		t.Errorf("unexpected title %q", e.Title())
	}
	if e.Description() != "u • from 1:05" {
		t.Errorf("unexpected description %q", e.Description())
	}

	fx := timelineEntry{pos: 2, item: models.EffectItem(models.Effect{ID: "horn"})}
	if fx.Description() != "effect • horn" {
		t.Errorf("unexpected description %q", fx.Description())
	}

	r := songResult{song: models.Song{URL: "u"}}
	if r.Title() != "u" || r.Description() != "u" {
		t.Errorf("unexpected result item %q %q", r.Title(), r.Description())
	}
}
