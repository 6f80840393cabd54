package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/flickgrid/internal/domain"
	"github.com/mmcdole/flickgrid/internal/tui/styles"
)

// Layout constants for the grid
const (
	// Border adds 1 char on each side
	BorderWidth = 2

	// Padding(0,1) = 1 left + 1 right
	HorizontalPadding = 2

	// Header line + footer line
	ChromeHeight = 2

	MinCardWidth = 16

	// Terminal rows per image pixel-height bucket
	PixelsPerRow = 60
	MaxImageRows = 4
)

// cardState carries the per-render state of a card. Card height never
// depends on it, so sizes can be measured once per item.
type cardState struct {
	selected bool
	favorite bool
	loading  bool
	image    []byte
	spinner  string
}

// imageRows maps the pixel height hint to placeholder rows
func imageRows(height int) int {
	rows := height / PixelsPerRow
	if rows < 1 {
		return 1
	}
	if rows > MaxImageRows {
		return MaxImageRows
	}
	return rows
}

// renderCard renders one result as a bordered card of the given outer width
func renderCard(item domain.ResultItem, width, maxTags int, st cardState) string {
	inner := width - BorderWidth - HorizontalPadding
	if inner < 1 {
		inner = 1
	}
	wrap := lipgloss.NewStyle().Width(inner)

	lines := make([]string, 0, MaxImageRows+4)

	// Image placeholder
	var status string
	switch {
	case st.image != nil:
		status = styles.ImageStyle.Render("▣ " + formatBytes(len(st.image)))
	case st.loading:
		status = styles.SpinnerStyle.Render(st.spinner) + styles.DimStyle.Render(" loading")
	default:
		status = styles.DimStyle.Render("▢")
	}
	lines = append(lines, status)
	for i := 1; i < imageRows(item.Height); i++ {
		lines = append(lines, "")
	}

	lines = append(lines, wrap.Render(styles.TitleStyle.Render(item.DisplayTitle())))
	if item.HasTags() {
		lines = append(lines, wrap.Render(styles.RenderTags(item.Tags, maxTags)))
	}
	lines = append(lines, styles.RenderFavorite(st.favorite))

	style := styles.CardStyle
	if st.selected {
		style = styles.SelectedCardStyle
	}
	return style.Width(width - BorderWidth).Render(strings.Join(lines, "\n"))
}

// measureCard computes the display size of an item's card
func measureCard(item domain.ResultItem, width, maxTags int) domain.Size {
	card := renderCard(item, width, maxTags, cardState{})
	return domain.Size{Width: lipgloss.Width(card), Height: lipgloss.Height(card)}
}

func formatBytes(n int) string {
	const kb = 1024
	switch {
	case n >= kb*kb:
		return fmt.Sprintf("%.1f MB", float64(n)/float64(kb*kb))
	case n >= kb:
		return fmt.Sprintf("%.1f KB", float64(n)/float64(kb))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// === Grid geometry ===

func (m Model) cardWidth() int {
	if m.columns <= 0 {
		return MinCardWidth
	}
	w := m.width / m.columns
	if w < MinCardWidth {
		w = MinCardWidth
	}
	return w
}

func (m Model) gridHeight() int {
	h := m.height - ChromeHeight
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) rowCount() int {
	if m.columns <= 0 || len(m.shown) == 0 {
		return 0
	}
	return (len(m.shown) + m.columns - 1) / m.columns
}

// rowItems returns the items on a grid row
func (m Model) rowItems(row int) []domain.ResultItem {
	start := row * m.columns
	if start >= len(m.shown) {
		return nil
	}
	end := start + m.columns
	if end > len(m.shown) {
		end = len(m.shown)
	}
	return m.shown[start:end]
}

// cardSize returns the memoized card size for item
func (m Model) cardSize(item domain.ResultItem) domain.Size {
	width, maxTags := m.cardWidth(), m.maxTags
	return m.session.Size(item, func() domain.Size {
		return measureCard(item, width, maxTags)
	})
}

func (m Model) rowHeight(row int) int {
	h := 0
	for _, item := range m.rowItems(row) {
		if s := m.cardSize(item); s.Height > h {
			h = s.Height
		}
	}
	return h
}

// lastVisibleRow returns the last row that starts within the grid area
func (m Model) lastVisibleRow() int {
	rows := m.rowCount()
	if rows == 0 {
		return -1
	}
	used := 0
	last := m.offset
	for row := m.offset; row < rows; row++ {
		if used >= m.gridHeight() {
			break
		}
		used += m.rowHeight(row)
		last = row
	}
	return last
}

// visibleItems returns the items on screen
func (m Model) visibleItems() []domain.ResultItem {
	last := m.lastVisibleRow()
	if last < 0 {
		return nil
	}
	var items []domain.ResultItem
	for row := m.offset; row <= last; row++ {
		items = append(items, m.rowItems(row)...)
	}
	return items
}

// ensureVisible scrolls so the cursor's row is on screen
func (m *Model) ensureVisible() {
	if m.columns <= 0 {
		return
	}
	row := m.cursor / m.columns
	if row < m.offset {
		m.offset = row
	}
	for row > m.lastVisibleRow() && m.offset < row {
		m.offset++
	}
}

// moveCursor moves the cursor by delta, clamped to the shown items
func (m *Model) moveCursor(delta int) {
	if len(m.shown) == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.shown) {
		m.cursor = len(m.shown) - 1
	}
	m.ensureVisible()
}

// selectedItem returns the item under the cursor
func (m Model) selectedItem() (domain.ResultItem, bool) {
	if m.cursor < 0 || m.cursor >= len(m.shown) {
		return domain.ResultItem{}, false
	}
	return m.shown[m.cursor], true
}

// renderGrid renders the visible rows, clipped to the grid area
func (m Model) renderGrid() string {
	if len(m.shown) == 0 {
		return styles.DimStyle.Render("No results")
	}

	width := m.cardWidth()
	var rows []string
	for row := m.offset; row <= m.lastVisibleRow(); row++ {
		var cards []string
		for i, item := range m.rowItems(row) {
			img, _ := m.session.Image(item.ID)
			cards = append(cards, renderCard(item, width, m.maxTags, cardState{
				selected: row*m.columns+i == m.cursor,
				favorite: m.session.Favorite(item.ID),
				loading:  m.session.Loading(item.ID),
				image:    img,
				spinner:  m.spinner.View(),
			}))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	}

	lines := strings.Split(strings.Join(rows, "\n"), "\n")
	if len(lines) > m.gridHeight() {
		lines = lines[:m.gridHeight()]
	}
	return strings.Join(lines, "\n")
}
