package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// Color palette
var (
	FlickrPink = lipgloss.Color("#FF0084")
	FlickrBlue = lipgloss.Color("#0063DC")
	Teal       = lipgloss.Color("#5BB2A0") // Alternate tag color
	SlateDark  = lipgloss.Color("#1F2937")
	SlateLight = lipgloss.Color("#374151")
	DimGray    = lipgloss.Color("#6B7280")
	LightGray  = lipgloss.Color("#9CA3AF")
	White      = lipgloss.Color("#F9FAFB")
	Red        = lipgloss.Color("#EF4444")
)

// Card borders
var (
	CardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(DimGray).
			Padding(0, 1)

	SelectedCardStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(FlickrPink).
				Padding(0, 1)
)

// Text styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(White).
			Bold(true)

	DimStyle = lipgloss.NewStyle().
			Foreground(DimGray)

	AccentStyle = lipgloss.NewStyle().
			Foreground(FlickrPink)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Red)

	TagStyle = lipgloss.NewStyle().
			Foreground(LightGray)

	AltTagStyle = lipgloss.NewStyle().
			Foreground(Teal)

	ImageStyle = lipgloss.NewStyle().
			Foreground(FlickrBlue)

	FooterStyle = lipgloss.NewStyle().
			Foreground(LightGray).
			Background(SlateDark).
			Padding(0, 1)
)

// Favorite indicator characters (unstyled)
const (
	FavoriteChar    = "★"
	NotFavoriteChar = "☆"
)

// Spinner style
var (
	SpinnerStyle = lipgloss.NewStyle().
			Foreground(FlickrPink)
)

// Input styles
var (
	PromptStyle = lipgloss.NewStyle().
			Foreground(FlickrPink).
			Bold(true)

	InputStyle = lipgloss.NewStyle().
			Foreground(White)

	FilterStyle = lipgloss.NewStyle().
			Foreground(FlickrPink)
)

// Help styles
var (
	HelpKeyStyle = lipgloss.NewStyle().
			Foreground(FlickrPink)

	HelpDescStyle = lipgloss.NewStyle().
			Foreground(DimGray)
)

// RenderFavorite renders the favorite indicator
func RenderFavorite(favorite bool) string {
	if favorite {
		return AccentStyle.Render(FavoriteChar)
	}
	return DimStyle.Render(NotFavoriteChar)
}

// RenderTags renders "#tag" words, alternating colors
func RenderTags(tags []string, max int) string {
	if max > 0 && len(tags) > max {
		tags = tags[:max]
	}
	parts := make([]string, 0, len(tags))
	for i, tag := range tags {
		style := TagStyle
		if i%2 == 1 {
			style = AltTagStyle
		}
		parts = append(parts, style.Render("#"+tag))
	}
	return strings.Join(parts, " ")
}

// Truncate truncates a styled string to the given display width with ellipsis
func Truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	if width <= 3 {
		return ansi.Truncate(s, width, "")
	}
	return ansi.Truncate(s, width, "...")
}
