package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/tunebot/internal/session"
	"github.com/desertthunder/tunebot/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ResultsView ViewState = iota
	FetchView
	DoneView
)

// localSessionKey scopes the TUI's candidate list in the shared store.
const localSessionKey = session.Key("local:tui")

// Model represents the TUI application state for one search.
type Model struct {
	ctx      context.Context
	view     ViewState
	engine   *tasks.Engine
	query    string
	width    int
	height   int
	results  list.Model
	fetching candidateItem
	outcome  *tasks.SelectResult
	err      error
	help     help.Model
	keys     keyMap
}

type searchDoneMsg struct {
	result *tasks.SearchResult
	err    error
}

type fetchDoneMsg struct {
	result *tasks.SelectResult
}

// NewModel creates a new TUI model that will run query through the engine.
func NewModel(ctx context.Context, engine *tasks.Engine, query string) *Model {
	return &Model{
		ctx:    ctx,
		view:   ResultsView,
		engine: engine,
		query:  query,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Outcome returns the delivery result once the TUI finished, nil otherwise.
// The caller saves the audio after the program exits.
func (m *Model) Outcome() *tasks.SelectResult {
	return m.outcome
}

// Err returns the failure that ended the TUI, if any.
func (m *Model) Err() error {
	return m.err
}

// Init kicks off the search.
func (m *Model) Init() tea.Cmd {
	return m.runSearch()
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// The list only exists once a search completed.
		if len(m.results.Items()) > 0 {
			m.results.SetSize(msg.Width-4, msg.Height-8)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter) && m.view == ResultsView:
			item, ok := m.results.SelectedItem().(candidateItem)
			if !ok {
				return m, nil
			}
			m.fetching = item
			m.view = FetchView
			return m, m.runFetch(item)
		case key.Matches(msg, m.keys.back) && m.view == DoneView:
			m.view = ResultsView
			m.outcome = nil
			return m, nil
		}

	case searchDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		if msg.result == nil || len(msg.result.Items) == 0 {
			m.err = fmt.Errorf("no results for %q", m.query)
			return m, tea.Quit
		}
		items := make([]list.Item, len(msg.result.Items))
		for i, item := range msg.result.Items {
			items[i] = candidateItem{candidate: msg.result.Candidates[i], item: item}
		}
		m.results = list.New(items, list.NewDefaultDelegate(), 0, 0)
		m.results.Title = fmt.Sprintf("Results for %q", m.query)
		m.results.SetSize(m.width-4, m.height-8)
		return m, nil

	case fetchDoneMsg:
		m.outcome = msg.result
		m.view = DoneView
		if msg.result.Status == tasks.StatusDelivered {
			return m, tea.Quit
		}
		return m, nil
	}

	if m.view == ResultsView {
		var cmd tea.Cmd
		m.results, cmd = m.results.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	if m.err != nil {
		return styles.err.Render(fmt.Sprintf("Error: %v\n\nPress q to quit", m.err))
	}

	switch m.view {
	case FetchView:
		return styles.title.Render("Fetching") + "\n" +
			fmt.Sprintf("%s — %s\n\n", m.fetching.candidate.Artist, m.fetching.candidate.Title) +
			styles.help.Render("this can take a minute for full extractions")
	case DoneView:
		return m.renderOutcome()
	default:
		if m.results.Width() == 0 {
			return styles.help.Render("Searching...")
		}
		return m.results.View() + "\n" + m.help.View(m.keys)
	}
}

func (m *Model) renderOutcome() string {
	if m.outcome == nil {
		return ""
	}
	switch m.outcome.Status {
	case tasks.StatusDelivered:
		return styles.ok.Render("Fetched ") + m.outcome.Audio.FileName
	case tasks.StatusLinkOnly:
		return styles.warn.Render(m.outcome.Message) + "\n" + m.help.View(m.keys)
	default:
		return styles.err.Render(m.outcome.Message) + "\n" + m.help.View(m.keys)
	}
}

func (m *Model) runSearch() tea.Cmd {
	return func() tea.Msg {
		result, err := m.engine.Search(m.ctx, localSessionKey, m.query)
		return searchDoneMsg{result: result, err: err}
	}
}

func (m *Model) runFetch(item candidateItem) tea.Cmd {
	return func() tea.Msg {
		return fetchDoneMsg{result: m.engine.Select(m.ctx, localSessionKey, item.item.Token)}
	}
}
