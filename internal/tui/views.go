package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mizukaze554/AnimeSearch/internal/domain"
	"github.com/mizukaze554/AnimeSearch/internal/tui/styles"
)

func (m Model) View() string {
	var body string
	switch m.State {
	case StateSearch:
		body = m.viewSearch()
	case StateResults:
		body = m.viewResults()
	case StateDetail:
		body = m.viewDetail()
	case StateGenres:
		body = m.viewGenres()
	case StateImageSearch:
		body = m.viewImageSearch()
	case StateHistory:
		body = m.viewHistory()
	case StateFavorites:
		body = m.viewFavorites()
	case StateHelp:
		body = m.viewHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.viewHeader(),
		body,
		m.viewFooter(),
	)
}

func (m Model) viewHeader() string {
	title := styles.TitleStyle.Render("AnimeSearch")
	if m.Loading {
		title += " " + m.Spinner.View()
	}
	return title
}

func (m Model) viewFooter() string {
	if m.StatusText != "" {
		if m.StatusIsErr {
			return styles.ErrorStyle.Render(m.StatusText)
		}
		return styles.SuccessStyle.Render(m.StatusText)
	}

	switch m.State {
	case StateSearch:
		return styles.DimStyle.Render("enter search · tab accept suggestion · C-g genres · C-c quit")
	case StateResults:
		return styles.DimStyle.Render("enter details · f favorite · / filter · g genres · i image · H history · F favorites · ? help")
	default:
		return styles.DimStyle.Render("esc back · C-c quit")
	}
}

func (m Model) viewSearch() string {
	var b strings.Builder

	b.WriteString(styles.ActiveBorder.Render(m.Input.View()))
	b.WriteString("\n")

	if genres := m.selectedGenreNames(); len(genres) > 0 {
		b.WriteString(styles.SubtitleStyle.Render("Genres: " + strings.Join(genres, ", ")))
		b.WriteString("\n")
	}

	for i, s := range m.Suggestions {
		if i == m.suggestIdx {
			b.WriteString(styles.SelectedItemStyle.Render(s))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(s))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewResults() string {
	var b strings.Builder

	if m.Filtering {
		b.WriteString(styles.AccentStyle.Render("/ ") + m.FilterInput.View())
		b.WriteString("\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(styles.DimStyle.Render("Nothing to show"))
		return b.String()
	}

	start, end := m.listWindow(len(m.visible))
	for i := start; i < end; i++ {
		item := m.Results[m.visible[i]]
		line := m.renderResultLine(item, i == m.Cursor)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d/%d", m.Cursor+1, len(m.visible))))
	return b.String()
}

// listWindow returns the slice of the list that fits the terminal, keeping
// the cursor in view.
func (m Model) listWindow(total int) (int, int) {
	rows := m.Height - 6
	if rows < 5 {
		rows = 5
	}
	if total <= rows {
		return 0, total
	}

	start := m.Cursor - rows/2
	if start < 0 {
		start = 0
	}
	if start+rows > total {
		start = total - rows
	}
	return start, start + rows
}

func (m Model) renderResultLine(item domain.Anime, selected bool) string {
	mark := "  "
	if m.Favorites != nil && m.Favorites.Has(item.ID) {
		mark = styles.FavoriteMark + " "
	}

	meta := fmt.Sprintf("★%s · %s eps · %s", item.ScoreText(), item.EpisodesText(), item.StatusText())
	line := fmt.Sprintf("%s%s  %s", mark, item.Title, styles.DimStyle.Render(meta))

	if selected {
		return styles.SelectedItemStyle.Render(line)
	}
	return styles.NormalItemStyle.Render(line)
}

func (m Model) viewDetail() string {
	if m.Detail == nil {
		return styles.DimStyle.Render("Loading...")
	}
	d := m.Detail

	width := m.Width - 8
	if width < 40 {
		width = 40
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render(d.Title))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render(fmt.Sprintf("Score: %s   Episodes: %s   Status: %s", d.ScoreText(), d.EpisodesText(), d.StatusText())))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Genres: " + d.GenresText()))
	b.WriteString("\n")
	b.WriteString(styles.SubtitleStyle.Render("Characters: " + d.CharactersText()))
	b.WriteString("\n")
	if url := d.TrailerURL(); url != "" {
		b.WriteString(styles.AccentStyle.Render("Trailer: " + url))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Width(width - 6).Render(d.SynopsisText()))

	return styles.ModalStyle.Width(width).Render(b.String())
}

func (m Model) viewGenres() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Genres"))
	b.WriteString("\n")

	for i, g := range domain.Genres {
		check := "[ ]"
		if m.GenreSelected[g.ID] {
			check = "[x]"
		}
		line := check + " " + g.Name
		switch {
		case i == m.GenreCursor:
			b.WriteString(styles.SelectedItemStyle.Render(line))
		case m.GenreSelected[g.ID]:
			b.WriteString(styles.GenreOnStyle.Render(line))
		default:
			b.WriteString(styles.GenreOffStyle.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString(styles.DimStyle.Render("space toggle · enter search · esc back"))
	return b.String()
}

func (m Model) viewImageSearch() string {
	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Search by image"))
	b.WriteString("\n")
	b.WriteString(styles.ActiveBorder.Render(m.ImageInput.View()))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render("enter search · esc back"))
	return b.String()
}

func (m Model) viewHistory() string {
	entries := m.History.Entries()

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Search history"))
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(styles.DimStyle.Render("No searches yet"))
		return b.String()
	}

	for i, e := range entries {
		if i == m.listCursor {
			b.WriteString(styles.SelectedItemStyle.Render(e))
		} else if e == historyImageSearch || e == historyGenreFilter {
			b.WriteString(styles.DimStyle.Render("  " + e))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(e))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewFavorites() string {
	items := m.Favorites.Items()

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Favorites"))
	b.WriteString("\n")

	if len(items) == 0 {
		b.WriteString(styles.DimStyle.Render("No favorites yet"))
		return b.String()
	}

	for i, f := range items {
		line := styles.FavoriteMark + " " + f.Title
		if i == m.listCursor {
			b.WriteString(styles.SelectedItemStyle.Render(line))
		} else {
			b.WriteString(styles.NormalItemStyle.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) viewHelp() string {
	rows := [][2]string{
		{"enter", "search / select"},
		{"tab", "accept suggestion"},
		{"j/k or ↑/↓", "move"},
		{"/", "filter loaded results"},
		{"f", "add selection to favorites"},
		{"g", "genre picker"},
		{"i", "search by image"},
		{"H", "search history"},
		{"F", "favorites"},
		{"esc", "back"},
		{"C-c", "quit"},
	}

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Keys"))
	b.WriteString("\n")
	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%s  %s\n", styles.AccentStyle.Render(fmt.Sprintf("%-12s", row[0])), row[1]))
	}
	return b.String()
}

func (m Model) selectedGenreNames() []string {
	var names []string
	for _, g := range domain.Genres {
		if m.GenreSelected[g.ID] {
			names = append(names, g.Name)
		}
	}
	return names
}
