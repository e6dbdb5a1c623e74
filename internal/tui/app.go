// Package tui is the Bubble Tea front end: a search box with debounced
// history suggestions, a scrolling result list that pages in more results
// near the bottom, a detail modal, a genre picker, and history/favorites
// panes.
package tui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
	"github.com/mizukaze554/AnimeSearch/internal/lists"
	"github.com/mizukaze554/AnimeSearch/internal/search"
	"github.com/mizukaze554/AnimeSearch/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateSearch ApplicationState = iota
	StateResults
	StateDetail
	StateGenres
	StateImageSearch
	StateHistory
	StateFavorites
	StateHelp
)

// History markers recorded for searches that have no query text to replay.
const (
	historyImageSearch = "[Image Search]"
	historyGenreFilter = "[Genre Filter]"
)

// scrollThreshold is how close to the bottom of the list the cursor gets
// before the next page is requested.
const scrollThreshold = 3

// Model is the main Bubble Tea model for the application
type Model struct {
	State ApplicationState

	SearchSvc *search.Service
	Session   *search.Session
	History   *lists.History
	Favorites *lists.Favorites

	Input       textinput.Model
	ImageInput  textinput.Model
	FilterInput textinput.Model
	Spinner     spinner.Model

	Results []domain.Anime
	Cursor  int

	// Result filter ('/'); visible holds indexes into Results.
	Filtering bool
	visible   []int

	Detail *domain.AnimeDetail

	Suggestions []string
	suggestIdx  int
	suggestSeq  int

	GenreCursor   int
	GenreSelected map[int]bool

	listCursor int // cursor within history/favorites panes

	Width  int
	Height int

	StatusText  string
	StatusIsErr bool
	Loading     bool

	logger *slog.Logger
}

// NewModel creates a new application model
func NewModel(svc *search.Service, history *lists.History, favorites *lists.Favorites, logger *slog.Logger) Model {
	input := textinput.New()
	input.Placeholder = "Search anime..."
	input.Focus()
	input.CharLimit = 120

	imageInput := textinput.New()
	imageInput.Placeholder = "Path to image file..."
	imageInput.CharLimit = 255

	filterInput := textinput.New()
	filterInput.Placeholder = "Filter..."
	filterInput.CharLimit = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	if logger == nil {
		logger = slog.Default()
	}

	return Model{
		State:         StateSearch,
		SearchSvc:     svc,
		Session:       search.NewSession(),
		History:       history,
		Favorites:     favorites,
		Input:         input,
		ImageInput:    imageInput,
		FilterInput:   filterInput,
		Spinner:       sp,
		GenreSelected: make(map[int]bool),
		suggestIdx:    -1,
		logger:        logger,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.Spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd

	case ResultsMsg:
		return m.onResults(msg)

	case DetailLoadedMsg:
		m.Loading = false
		m.Detail = msg.Detail
		m.State = StateDetail
		return m, nil

	case SuggestTickMsg:
		if msg.Seq == m.suggestSeq && m.State == StateSearch {
			m.Suggestions = search.Suggest(m.History.Entries(), m.Input.Value())
			m.suggestIdx = -1
		}
		return m, nil

	case ErrMsg:
		m.Loading = false
		m.StatusText = msg.Error()
		m.StatusIsErr = true
		m.logger.Error("operation failed", "context", msg.Context, "error", msg.Err)
		return m, ClearStatusCmd()

	case StatusMsg:
		m.StatusText = msg.Message
		m.StatusIsErr = msg.IsError
		return m, ClearStatusCmd()

	case ClearStatusMsg:
		m.StatusText = ""
		m.StatusIsErr = false
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, Keys.Quit) {
			return m, tea.Quit
		}
		return m.handleKey(msg)
	}

	return m, nil
}

// onResults applies one loaded page. Pages from a query that is no longer
// the session's active query are dropped so a slow response cannot
// overwrite a newer search.
func (m Model) onResults(msg ResultsMsg) (tea.Model, tea.Cmd) {
	m.Loading = false
	page := msg.Page
	if page == nil || page.Query != m.Session.Query() {
		return m, nil
	}

	if page.Append {
		// An empty appended page just means the result set is exhausted.
		m.Results = append(m.Results, page.Items...)
		m.refreshVisible()
		return m, nil
	}

	m.Results = page.Items
	m.Cursor = 0
	m.Filtering = false
	m.FilterInput.SetValue("")
	m.refreshVisible()
	m.State = StateResults
	if len(page.Items) == 0 {
		m.StatusText = "No results found"
		m.StatusIsErr = false
		return m, ClearStatusCmd()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.State {
	case StateSearch:
		return m.handleSearchKey(msg)
	case StateResults:
		return m.handleResultsKey(msg)
	case StateDetail:
		if key.Matches(msg, Keys.Back) || key.Matches(msg, Keys.Enter) {
			m.State = StateResults
			m.Detail = nil
		}
		return m, nil
	case StateGenres:
		return m.handleGenresKey(msg)
	case StateImageSearch:
		return m.handleImageKey(msg)
	case StateHistory:
		return m.handleHistoryKey(msg)
	case StateFavorites:
		return m.handleFavoritesKey(msg)
	case StateHelp:
		m.State = StateResults
		if len(m.Results) == 0 {
			m.State = StateSearch
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Back):
		if len(m.Suggestions) > 0 {
			m.Suggestions = nil
			m.suggestIdx = -1
			return m, nil
		}
		if len(m.Results) > 0 {
			m.State = StateResults
		}
		return m, nil

	case key.Matches(msg, Keys.Up):
		if len(m.Suggestions) > 0 && m.suggestIdx > 0 {
			m.suggestIdx--
		}
		return m, nil

	case key.Matches(msg, Keys.Down):
		if len(m.Suggestions) > 0 && m.suggestIdx < len(m.Suggestions)-1 {
			m.suggestIdx++
		}
		return m, nil

	case key.Matches(msg, Keys.Tab):
		if m.suggestIdx >= 0 && m.suggestIdx < len(m.Suggestions) {
			m.Input.SetValue(m.Suggestions[m.suggestIdx])
			m.Input.CursorEnd()
			m.Suggestions = nil
			m.suggestIdx = -1
		}
		return m, nil

	case key.Matches(msg, Keys.Enter):
		query := strings.TrimSpace(m.Input.Value())
		if m.suggestIdx >= 0 && m.suggestIdx < len(m.Suggestions) {
			query = m.Suggestions[m.suggestIdx]
			m.Input.SetValue(query)
		}
		m.Suggestions = nil
		m.suggestIdx = -1
		return m.startSearch(query, m.selectedGenreIDs())

	case msg.Type == tea.KeyCtrlG:
		m.State = StateGenres
		return m, nil
	}

	before := m.Input.Value()
	var cmd tea.Cmd
	m.Input, cmd = m.Input.Update(msg)

	if m.Input.Value() != before {
		m.suggestSeq++
		if len(strings.TrimSpace(m.Input.Value())) >= search.MinSuggestLen {
			return m, tea.Batch(cmd, SuggestTickCmd(m.suggestSeq))
		}
		m.Suggestions = nil
		m.suggestIdx = -1
	}
	return m, cmd
}

func (m Model) handleResultsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Filtering && m.FilterInput.Focused() {
		switch {
		case key.Matches(msg, Keys.Back):
			m.Filtering = false
			m.FilterInput.SetValue("")
			m.FilterInput.Blur()
			m.refreshVisible()
			m.Cursor = 0
			return m, nil
		case key.Matches(msg, Keys.Enter):
			m.FilterInput.Blur()
			return m, nil
		}
		var cmd tea.Cmd
		m.FilterInput, cmd = m.FilterInput.Update(msg)
		m.refreshVisible()
		m.Cursor = 0
		return m, cmd
	}

	switch {
	case key.Matches(msg, Keys.Up):
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil

	case key.Matches(msg, Keys.Down):
		if m.Cursor < len(m.visible)-1 {
			m.Cursor++
		}
		return m, m.maybeLoadMore()

	case key.Matches(msg, Keys.Enter):
		if item, ok := m.selectedItem(); ok {
			m.Loading = true
			return m, DetailsCmd(m.SearchSvc, item.ID)
		}
		return m, nil

	case key.Matches(msg, Keys.Favorite):
		if item, ok := m.selectedItem(); ok {
			if m.Favorites.Has(item.ID) {
				return m, func() tea.Msg {
					return StatusMsg{Message: "Already in favorites"}
				}
			}
			if err := m.Favorites.Push(domain.Favorite{ID: item.ID, Title: item.Title}); err != nil {
				return m, func() tea.Msg {
					return ErrMsg{Err: err, Context: "saving favorite"}
				}
			}
			title := item.Title
			return m, func() tea.Msg {
				return StatusMsg{Message: "Added to favorites: " + title}
			}
		}
		return m, nil

	case key.Matches(msg, Keys.Filter):
		m.Filtering = true
		m.FilterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, Keys.Search):
		m.State = StateSearch
		m.Input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, Keys.Genres):
		m.State = StateGenres
		return m, nil

	case key.Matches(msg, Keys.ImageSearch):
		m.State = StateImageSearch
		m.ImageInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, Keys.History):
		m.State = StateHistory
		m.listCursor = 0
		return m, nil

	case key.Matches(msg, Keys.Favorites):
		m.State = StateFavorites
		m.listCursor = 0
		return m, nil

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Back):
		if m.Filtering {
			m.Filtering = false
			m.FilterInput.SetValue("")
			m.refreshVisible()
			m.Cursor = 0
			return m, nil
		}
		m.State = StateSearch
		m.Input.Focus()
		return m, textinput.Blink
	}
	return m, nil
}

func (m Model) handleGenresKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Up):
		if m.GenreCursor > 0 {
			m.GenreCursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.GenreCursor < len(domain.Genres)-1 {
			m.GenreCursor++
		}
	case key.Matches(msg, Keys.Toggle):
		id := domain.Genres[m.GenreCursor].ID
		m.GenreSelected[id] = !m.GenreSelected[id]
	case key.Matches(msg, Keys.Enter):
		return m.startSearch(strings.TrimSpace(m.Input.Value()), m.selectedGenreIDs())
	case key.Matches(msg, Keys.Back):
		m.State = StateSearch
		if len(m.Results) > 0 {
			m.State = StateResults
		}
	}
	return m, nil
}

func (m Model) handleImageKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Back):
		m.State = StateResults
		if len(m.Results) == 0 {
			m.State = StateSearch
		}
		m.ImageInput.Blur()
		return m, nil

	case key.Matches(msg, Keys.Enter):
		path := strings.TrimSpace(m.ImageInput.Value())
		if path == "" {
			return m, nil
		}
		if err := m.History.Push(historyImageSearch); err != nil {
			m.logger.Warn("failed to record history", "error", err)
		}
		m.Loading = true
		m.ImageInput.Blur()
		return m, ImageSearchCmd(m.SearchSvc, m.Session, path)
	}

	var cmd tea.Cmd
	m.ImageInput, cmd = m.ImageInput.Update(msg)
	return m, cmd
}

func (m Model) handleHistoryKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	entries := m.History.Entries()
	switch {
	case key.Matches(msg, Keys.Up):
		if m.listCursor > 0 {
			m.listCursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.listCursor < len(entries)-1 {
			m.listCursor++
		}
	case key.Matches(msg, Keys.Enter):
		if m.listCursor < len(entries) {
			entry := entries[m.listCursor]
			if entry == historyImageSearch || entry == historyGenreFilter {
				return m, func() tea.Msg {
					return StatusMsg{Message: "This entry cannot be replayed"}
				}
			}
			m.Input.SetValue(entry)
			return m.startSearch(entry, nil)
		}
	case key.Matches(msg, Keys.Back):
		m.State = StateResults
		if len(m.Results) == 0 {
			m.State = StateSearch
		}
	}
	return m, nil
}

func (m Model) handleFavoritesKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := m.Favorites.Items()
	switch {
	case key.Matches(msg, Keys.Up):
		if m.listCursor > 0 {
			m.listCursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.listCursor < len(items)-1 {
			m.listCursor++
		}
	case key.Matches(msg, Keys.Enter):
		if m.listCursor < len(items) {
			m.Loading = true
			return m, DetailsCmd(m.SearchSvc, items[m.listCursor].ID)
		}
	case key.Matches(msg, Keys.Back):
		m.State = StateResults
		if len(m.Results) == 0 {
			m.State = StateSearch
		}
	}
	return m, nil
}

// startSearch records the query in history and kicks off a fresh search.
func (m Model) startSearch(query string, genreIDs []int) (tea.Model, tea.Cmd) {
	if query == "" && len(genreIDs) == 0 {
		return m, func() tea.Msg {
			return StatusMsg{Message: "Enter a query or pick a genre", IsError: true}
		}
	}

	entry := query
	if entry == "" {
		entry = historyGenreFilter
	}
	if err := m.History.Push(entry); err != nil {
		m.logger.Warn("failed to record history", "error", err)
	}

	m.Loading = true
	m.Suggestions = nil
	m.suggestIdx = -1
	return m, SearchCmd(m.SearchSvc, m.Session, query, genreIDs)
}

// maybeLoadMore requests the next page once the cursor is near the bottom
// of the unfiltered list. Overlapping requests are suppressed by the
// session's in-flight guard.
func (m Model) maybeLoadMore() tea.Cmd {
	if m.Filtering || !m.Session.Active() || m.Session.Loading() {
		return nil
	}
	if len(m.Results) == 0 || m.Cursor < len(m.Results)-scrollThreshold {
		return nil
	}
	return NextPageCmd(m.SearchSvc, m.Session)
}

func (m *Model) refreshVisible() {
	input := ""
	if m.Filtering {
		input = m.FilterInput.Value()
	}
	m.visible = filterResults(m.Results, input)
}

func (m Model) selectedItem() (domain.Anime, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.visible) {
		return domain.Anime{}, false
	}
	return m.Results[m.visible[m.Cursor]], true
}

func (m Model) selectedGenreIDs() []int {
	var ids []int
	for _, g := range domain.Genres {
		if m.GenreSelected[g.ID] {
			ids = append(ids, g.ID)
		}
	}
	return ids
}
