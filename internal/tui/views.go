package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/flickgrid/internal/domain"
	"github.com/mmcdole/flickgrid/internal/tui/styles"
)

// View renders the application
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.renderHeader(),
		lipgloss.NewStyle().Height(m.gridHeight()).Render(m.renderGrid()),
		m.renderFooter(),
	)
}

// renderHeader shows the tag input, the filter input or a breadcrumb
func (m Model) renderHeader() string {
	switch m.mode {
	case ModeSearch:
		return m.search.View()
	case ModeFilter:
		return m.filter.View()
	}

	var b strings.Builder
	b.WriteString(styles.AccentStyle.Render("flickgrid"))
	if tag := m.session.Tag(); tag != "" {
		b.WriteString(styles.DimStyle.Render(" › "))
		b.WriteString(styles.TitleStyle.Render("#" + tag))
	}
	if m.session.State() == domain.SessionSearching {
		b.WriteString(" ")
		b.WriteString(m.spinner.View())
	}
	if q := m.filter.Value(); q != "" {
		b.WriteString(styles.FilterStyle.Render(fmt.Sprintf("  /%s (%d)", q, len(m.shown))))
	}
	return styles.Truncate(b.String(), max(m.width, 1))
}

// renderFooter shows status, cache stats and key hints
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.status != "" && m.statusIsErr:
		left = styles.ErrorStyle.Render(m.status)
	case m.status != "":
		left = m.status
	default:
		left = m.renderShortHelp()
	}

	stats := m.session.Stats()
	right := fmt.Sprintf("%d/%d  img %d (%s)  loading %d  ★ %d",
		min(m.cursor+1, len(m.shown)), len(m.shown),
		stats.Images, formatBytes(stats.ImageBytes),
		m.session.InFlight(), stats.Favorites)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + right
	return styles.FooterStyle.Width(max(m.width, 1)).Render(styles.Truncate(line, max(m.width-2, 1)))
}

func (m Model) renderShortHelp() string {
	parts := make([]string, 0, len(m.keys.ShortHelp()))
	for _, b := range m.keys.ShortHelp() {
		parts = append(parts, renderBinding(b))
	}
	return strings.Join(parts, "  ")
}

func renderBinding(b key.Binding) string {
	h := b.Help()
	return styles.HelpKeyStyle.Render(h.Key) + " " + styles.HelpDescStyle.Render(h.Desc)
}

// renderHelp renders the full key reference
func (m Model) renderHelp() string {
	k := m.keys
	sections := []struct {
		title    string
		bindings []key.Binding
	}{
		{"Navigation", []key.Binding{k.Up, k.Down, k.Left, k.Right, k.PageUp, k.PageDown, k.Home, k.End}},
		{"Actions", []key.Binding{k.Search, k.Filter, k.Favorite, k.Open, k.Purge, k.Escape, k.Help, k.Quit}},
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Keys"))
	b.WriteString("\n\n")
	for _, s := range sections {
		b.WriteString(styles.AccentStyle.Render(s.title))
		b.WriteString("\n")
		for _, binding := range s.bindings {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				styles.HelpKeyStyle.Width(8).Render(h.Key),
				styles.HelpDescStyle.Render(h.Desc)))
		}
		b.WriteString("\n")
	}
	b.WriteString(styles.DimStyle.Render("Press any key to close"))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		styles.CardStyle.Render(b.String()))
}
