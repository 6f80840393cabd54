package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/flickgrid/internal/domain"
	"github.com/mmcdole/flickgrid/internal/service"
	"github.com/mmcdole/flickgrid/internal/tui/styles"
)

var errNoViewer = errors.New("no viewer configured")

// InputMode is the current owner of keyboard input
type InputMode int

const (
	ModeBrowse InputMode = iota
	ModeSearch
	ModeFilter
)

// Defaults for Options
const (
	DefaultColumns = 2
	DefaultMaxTags = 3
)

// Options configures the model
type Options struct {
	Columns int
	MaxTags int
	Opener  PhotoOpener
}

// Model is the main Bubble Tea model for the application
type Model struct {
	// Services
	session *service.Session
	events  *SessionEvents
	opener  PhotoOpener
	keys    KeyMap

	// Inputs
	search  textinput.Model
	filter  textinput.Model
	spinner spinner.Model
	mode    InputMode

	// Layout
	columns int
	maxTags int
	width   int
	height  int
	ready   bool

	// Grid state
	cursor int
	offset int
	shown  []domain.ResultItem

	// UI state
	status      string
	statusIsErr bool
	showHelp    bool
}

// NewModel creates a new application model over session. events must be
// the listener the session was built with.
func NewModel(session *service.Session, events *SessionEvents, opts Options) Model {
	if opts.Columns <= 0 {
		opts.Columns = DefaultColumns
	}
	if opts.MaxTags <= 0 {
		opts.MaxTags = DefaultMaxTags
	}
	if events == nil {
		events = NewSessionEvents()
	}

	search := textinput.New()
	search.Prompt = "tag: "
	search.PromptStyle = styles.PromptStyle
	search.TextStyle = styles.InputStyle
	search.Placeholder = "search by tag"
	search.SetValue(session.Tag())

	filter := textinput.New()
	filter.Prompt = "/"
	filter.PromptStyle = styles.FilterStyle
	filter.TextStyle = styles.InputStyle
	filter.Placeholder = "filter results"

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	m := Model{
		session: session,
		events:  events,
		opener:  opts.Opener,
		keys:    DefaultKeyMap(),
		search:  search,
		filter:  filter,
		spinner: sp,
		columns: opts.Columns,
		maxTags: opts.MaxTags,
	}
	m.refilter()
	return m
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, SyncCmd())
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if msg.Width != m.width {
			m.session.InvalidateLayout()
		}
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.search.Width = m.width - 8
		m.filter.Width = m.width - 4
		m.ensureVisible()

	case dispatchMsg:
		msg.fn()

	case syncMsg:

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case openedMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("Open failed: %v", msg.Err), true)
		} else {
			m.setStatus("Opened "+msg.Title, false)
		}
		cmds = append(cmds, ClearStatusCmd(3*time.Second))

	case clearStatusMsg:
		m.status = ""
		m.statusIsErr = false

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKeyMsg(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
	}

	if cmd := m.applyEvents(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	m.syncVisible()
	return m, tea.Batch(cmds...)
}

// applyEvents folds recorded session events into the view state
func (m *Model) applyEvents() tea.Cmd {
	ev := m.events.drain()
	if !ev.itemsChanged && ev.failure == nil && ev.imagesLoaded == 0 {
		return nil
	}

	if ev.itemsChanged {
		m.cursor = 0
		m.offset = 0
		m.refilter()
		if ev.failure == nil {
			if tag := m.session.Tag(); tag != "" {
				m.setStatus(fmt.Sprintf("Showing %d results for %q", len(m.session.Items()), tag), false)
			} else {
				m.setStatus("", false)
			}
		}
	}

	if ev.failure != nil {
		m.setStatus(failureText(ev.failedTag, ev.failure), true)
		return ClearStatusCmd(5 * time.Second)
	}
	return nil
}

func failureText(tag string, err error) string {
	switch {
	case domain.IsParseError(err):
		return fmt.Sprintf("Search %q: unreadable response", tag)
	case domain.IsNetworkError(err):
		return fmt.Sprintf("Search %q: network error: %v", tag, err)
	default:
		return fmt.Sprintf("Search %q failed: %v", tag, err)
	}
}

// syncVisible reports the on-screen items so off-screen fetches get cancelled
func (m *Model) syncVisible() {
	if !m.ready {
		return
	}
	m.session.SetVisible(m.visibleItems())
}

// refilter recomputes the shown items from the session and the filter query
func (m *Model) refilter() {
	results := m.session.Filter(m.filter.Value())
	shown := make([]domain.ResultItem, len(results))
	for i, r := range results {
		shown[i] = r.Item
	}
	m.shown = shown
	if m.cursor >= len(m.shown) {
		m.cursor = max(len(m.shown)-1, 0)
	}
	if m.columns > 0 && m.offset*m.columns >= max(len(m.shown), 1) {
		m.offset = 0
	}
	m.ensureVisible()
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusIsErr = isErr
}

// === Keyboard ===

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m, tea.Quit
	}

	switch m.mode {
	case ModeSearch:
		return m.handleSearchKey(msg)
	case ModeFilter:
		return m.handleFilterKey(msg)
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-m.columns)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(m.columns)
	case key.Matches(msg, m.keys.Left):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-m.pageStep())
	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(m.pageStep())
	case key.Matches(msg, m.keys.Home):
		m.moveCursor(-len(m.shown))
	case key.Matches(msg, m.keys.End):
		m.moveCursor(len(m.shown))
	case key.Matches(msg, m.keys.Search):
		m.mode = ModeSearch
		m.search.CursorEnd()
		return m, m.search.Focus()
	case key.Matches(msg, m.keys.Filter):
		m.mode = ModeFilter
		return m, m.filter.Focus()
	case key.Matches(msg, m.keys.Favorite):
		if item, ok := m.selectedItem(); ok {
			m.session.ToggleFavorite(item.ID)
		}
	case key.Matches(msg, m.keys.Open):
		if item, ok := m.selectedItem(); ok {
			return m, OpenPhotoCmd(m.opener, item)
		}
	case key.Matches(msg, m.keys.Purge):
		m.session.HandleMemoryPressure()
		m.setStatus("Caches purged", false)
		return m, ClearStatusCmd(3 * time.Second)
	case key.Matches(msg, m.keys.Escape):
		if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.refilter()
		}
	}
	return m, nil
}

// handleSearchKey edits the tag; every change issues a new search
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.mode = ModeBrowse
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.session.Search(after)
	}
	return m, cmd
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = ModeBrowse
		m.filter.Blur()
		m.filter.SetValue("")
		m.refilter()
		return m, nil
	case tea.KeyEnter:
		m.mode = ModeBrowse
		m.filter.Blur()
		return m, nil
	}

	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != before {
		m.cursor = 0
		m.offset = 0
		m.refilter()
	}
	return m, cmd
}

// pageStep returns the number of items on a screenful of rows
func (m Model) pageStep() int {
	rows := m.lastVisibleRow() - m.offset + 1
	if rows < 1 {
		rows = 1
	}
	return rows * m.columns
}

// === Accessors (tests) ===

// Cursor returns the index of the selected item among the shown items
func (m Model) Cursor() int { return m.cursor }

// Shown returns the items currently passing the filter
func (m Model) Shown() []domain.ResultItem { return m.shown }

// Status returns the footer status line and whether it is an error
func (m Model) Status() (string, bool) { return m.status, m.statusIsErr }

// Mode returns the current input mode
func (m Model) Mode() InputMode { return m.mode }
