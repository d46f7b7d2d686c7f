package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/club100/internal/models"
	"github.com/desertthunder/club100/internal/tasks"
	"github.com/desertthunder/club100/internal/timeline"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	TimelineView ViewState = iota
	SearchInputView
	SearchResultsView
	SnippetInputView
	ConfirmView
	GenerateView
	ResultView
)

// Timeline is the editable running order.
type Timeline interface {
	Items() []models.TrackItem
	AddSong(ctx context.Context, song models.Song) ([]models.TrackItem, error)
	InsertAt(ctx context.Context, item models.TrackItem, idx int) ([]models.TrackItem, error)
	RemoveAt(ctx context.Context, idx int) ([]models.TrackItem, error)
	MoveTo(ctx context.Context, from, to int) ([]models.TrackItem, error)
}

// Searcher resolves a free-text query to candidate songs.
type Searcher interface {
	Resolve(ctx context.Context, query string) ([]models.Song, error)
}

// Generator submits a timeline for rendering.
type Generator interface {
	Generate(ctx context.Context, items []models.TrackItem, language, effectID string, progress chan<- tasks.ProgressUpdate) (*tasks.GenerateResult, error)
}

// Options holds the dependencies of a [Model].
type Options struct {
	Timeline  Timeline
	Searcher  Searcher
	Generator Generator // nil disables the generate key
	Language  string
	EffectID  string
}

type generateRun struct {
	progress chan tasks.ProgressUpdate
	done     chan Msg
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	opts         Options
	width        int
	height       int
	timelineList list.Model
	resultList   list.Model
	input        textinput.Model
	query        string
	run          *generateRun
	progress     tasks.ProgressUpdate
	result       *tasks.GenerateResult
	status       string
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model showing the current timeline.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Language == "" {
		opts.Language = timeline.DefaultLanguage
	}

	input := textinput.New()
	input.CharLimit = 200

	m := &Model{
		ctx:   ctx,
		view:  TimelineView,
		opts:  opts,
		input: input,
		help:  help.New(),
		keys:  newKeyMap(),
	}
	m.timelineList = newList(m.timelineTitle(0), timelineItems(opts.Timeline.Items()), 0, 0)
	m.resultList = newList("Search results", nil, 0, 0)
	return m
}

// Init reloads the timeline from the controller.
func (m *Model) Init() tea.Cmd {
	return m.edit(-1, func(context.Context) ([]models.TrackItem, error) {
		return m.opts.Timeline.Items(), nil
	})
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.timelineList.SetSize(msg.Width-4, msg.Height-8)
		m.resultList.SetSize(msg.Width-4, msg.Height-8)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case TimelineView:
			return m.handleTimelineKeys(msg)
		case SearchInputView, SnippetInputView:
			return m.handleInputKeys(msg)
		case SearchResultsView:
			return m.handleResultsKeys(msg)
		case ConfirmView:
			return m.handleConfirmKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTimelineChanged:
		data := msg.data.(timelineChange)
		if data.err != nil {
			m.err = data.err
			return m, nil
		}
		m.err = nil
		cmd := m.timelineList.SetItems(timelineItems(data.items))
		m.timelineList.Title = m.timelineTitle(models.CountSongs(data.items))
		if data.selected >= 0 && data.selected < len(data.items) {
			m.timelineList.Select(data.selected)
		}
		return m, cmd

	case MsgSearchDone:
		data := msg.data.(searchDone)
		if data.err != nil {
			m.err = data.err
			m.view = TimelineView
			return m, nil
		}
		if len(data.songs) == 0 {
			m.status = fmt.Sprintf("No results for %q", data.query)
			m.view = TimelineView
			return m, nil
		}
		cmd := m.resultList.SetItems(resultItems(data.songs))
		m.resultList.Title = fmt.Sprintf("Results for %q", data.query)
		m.resultList.Select(0)
		m.view = SearchResultsView
		return m, cmd

	case MsgProgressUpdate:
		m.progress = msg.data.(tasks.ProgressUpdate)
		return m, m.waitForGenerate()

	case MsgGenerateComplete:
		data := msg.data.(generateComplete)
		m.result = data.result
		m.err = data.err
		m.run = nil
		m.view = ResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case TimelineView:
		return m.renderTimeline()
	case SearchInputView:
		return m.renderInput("Add song", "Search for a song or paste a URL")
	case SnippetInputView:
		return m.renderInput("Add snippet", "Text to speak after the selected item")
	case SearchResultsView:
		return m.renderResults()
	case ConfirmView:
		return m.renderConfirm()
	case GenerateView:
		return m.renderGenerate()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleTimelineKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	idx := m.timelineList.Index()
	count := len(m.timelineList.Items())
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	case key.Matches(msg, m.keys.add):
		return m, m.openInput(SearchInputView, "artist - title")
	case key.Matches(msg, m.keys.snippet):
		return m, m.openInput(SnippetInputView, "Skål!")
	case key.Matches(msg, m.keys.remove):
		if count == 0 {
			return m, nil
		}
		next := min(idx, count-2)
		return m, m.edit(next, func(ctx context.Context) ([]models.TrackItem, error) {
			return m.opts.Timeline.RemoveAt(ctx, idx)
		})
	case key.Matches(msg, m.keys.moveUp):
		if idx <= 0 {
			return m, nil
		}
		return m, m.edit(idx-1, func(ctx context.Context) ([]models.TrackItem, error) {
			return m.opts.Timeline.MoveTo(ctx, idx, idx-1)
		})
	case key.Matches(msg, m.keys.moveDown):
		if idx >= count-1 {
			return m, nil
		}
		return m, m.edit(idx+1, func(ctx context.Context) ([]models.TrackItem, error) {
			return m.opts.Timeline.MoveTo(ctx, idx, idx+1)
		})
	case key.Matches(msg, m.keys.generate):
		if m.opts.Generator == nil {
			m.status = "Rendering is not configured"
			return m, nil
		}
		if count == 0 {
			m.status = "Add a song before generating"
			return m, nil
		}
		m.view = ConfirmView
		return m, nil
	}

	var cmd tea.Cmd
	m.timelineList, cmd = m.timelineList.Update(msg)
	return m, cmd
}

func (m *Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.input.Blur()
		m.view = TimelineView
		return m, nil
	case tea.KeyEnter:
		value := strings.TrimSpace(m.input.Value())
		if value == "" {
			return m, nil
		}
		m.input.Blur()
		if m.view == SearchInputView {
			m.query = value
			m.status = fmt.Sprintf("Searching for %q...", value)
			return m, m.search(value)
		}
		m.view = TimelineView
		return m, m.insertSnippet(value)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		m.view = TimelineView
		return m, nil
	case key.Matches(msg, m.keys.enter):
		selected, ok := m.resultList.SelectedItem().(songResult)
		if !ok {
			return m, nil
		}
		m.view = TimelineView
		m.status = fmt.Sprintf("Added %s", selected.song.DisplayTitle())
		return m, m.editFocus(func(ctx context.Context) ([]models.TrackItem, error) {
			return m.opts.Timeline.AddSong(ctx, selected.song)
		}, timeline.LastSongIndex)
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.no), key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.quit):
		m.view = TimelineView
		return m, nil
	case key.Matches(msg, m.keys.yes):
		m.view = GenerateView
		m.progress = tasks.ProgressUpdate{Message: "Starting..."}
		return m, m.startGenerate()
	}
	return m, nil
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.restart), key.Matches(msg, m.keys.back):
		m.view = TimelineView
		m.result = nil
		m.err = nil
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case TimelineView:
		m.timelineList, cmd = m.timelineList.Update(msg)
	case SearchResultsView:
		m.resultList, cmd = m.resultList.Update(msg)
	case SearchInputView, SnippetInputView:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m *Model) openInput(view ViewState, placeholder string) tea.Cmd {
	m.view = view
	m.input.Reset()
	m.input.Placeholder = placeholder
	return m.input.Focus()
}

// edit runs a timeline operation and focuses row selected afterwards.
func (m *Model) edit(selected int, op func(context.Context) ([]models.TrackItem, error)) tea.Cmd {
	return func() tea.Msg {
		items, err := op(m.ctx)
		return timelineChangedMsg(items, selected, err)
	}
}

// editFocus runs a timeline operation and focuses the row chosen by focus from the new items.
func (m *Model) editFocus(op func(context.Context) ([]models.TrackItem, error), focus func([]models.TrackItem) int) tea.Cmd {
	return func() tea.Msg {
		items, err := op(m.ctx)
		return timelineChangedMsg(items, focus(items), err)
	}
}

func (m *Model) insertSnippet(text string) tea.Cmd {
	after := -1
	if len(m.timelineList.Items()) > 0 {
		after = m.timelineList.Index()
	}
	item := models.SnippetItem(models.Snippet{Kind: models.SnippetTTS, Text: text})
	return m.edit(after+1, func(ctx context.Context) ([]models.TrackItem, error) {
		return m.opts.Timeline.InsertAt(ctx, item, after)
	})
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		songs, err := m.opts.Searcher.Resolve(m.ctx, query)
		return searchDoneMsg(query, songs, err)
	}
}

func (m *Model) startGenerate() tea.Cmd {
	run := &generateRun{
		progress: make(chan tasks.ProgressUpdate, 16),
		done:     make(chan Msg, 1),
	}
	m.run = run
	items := m.opts.Timeline.Items()

	go func() {
		result, err := m.opts.Generator.Generate(m.ctx, items, m.opts.Language, m.opts.EffectID, run.progress)
		run.done <- generateCompleteMsg(result, err)
	}()

	return m.waitForGenerate()
}

func (m *Model) waitForGenerate() tea.Cmd {
	run := m.run
	return func() tea.Msg {
		if run == nil {
			return generateCompleteMsg(m.result, m.err)
		}
		select {
		case update := <-run.progress:
			return progressUpdateMsg(update)
		case done := <-run.done:
			return done
		}
	}
}

func (m *Model) timelineTitle(songs int) string {
	return fmt.Sprintf("Club 100 • %s • %d songs", m.opts.Language, songs)
}

func (m *Model) renderTimeline() string {
	var b strings.Builder
	b.WriteString(m.timelineList.View())
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
	case m.status != "":
		b.WriteString(styles.warn.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m *Model) renderInput(title, prompt string) string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.back})
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", styles.title.Render(title), styles.help.Render(prompt), m.input.View(), helpView)
}

func (m *Model) renderResults() string {
	addKey := key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add"))
	helpView := m.help.ShortHelpView([]key.Binding{addKey, m.keys.back, m.keys.quit})
	return fmt.Sprintf("%s\n\n%s", m.resultList.View(), helpView)
}

func (m *Model) renderConfirm() string {
	items := m.opts.Timeline.Items()
	title := styles.title.Render("Generate the Club 100 mix?")

	info := fmt.Sprintf("Songs: %d\nItems: %d\nLanguage: %s", models.CountSongs(items), len(items), m.opts.Language)
	if m.opts.EffectID != "" {
		info += fmt.Sprintf("\nEffect after each song: %s", m.opts.EffectID)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.yes, m.keys.no})
	return fmt.Sprintf("%s\n%s\n\n%s", title, styles.box.Render(info), helpView)
}

func (m *Model) renderGenerate() string {
	title := styles.title.Render("Generating")

	var phase string
	switch m.progress.Phase {
	case tasks.LoadEffects:
		phase = "Loading effects..."
	case tasks.SubmitRender:
		phase = "Submitting timeline to the worker..."
	default:
		phase = "Preparing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, styles.help.Render(m.progress.Message))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.quit})

	if m.err != nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Generation failed: %v", m.err)), helpView)
	}
	if m.result == nil || m.result.Job == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render("No result available"), helpView)
	}

	job := m.result.Job
	title := styles.ok.Render("✓ Render submitted")
	info := fmt.Sprintf("Job: %s\nItems: %d\nOutput: %s\nDownload: %s",
		job.JobID(), job.ItemCount(), job.Output(), job.DownloadURL())

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, styles.box.Render(info), helpView)
}
