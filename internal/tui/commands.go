package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/flickgrid/internal/domain"
)

// PhotoOpener opens a photo URL outside the terminal
type PhotoOpener interface {
	Open(url string) error
}

// OpenPhotoCmd opens the item's image in the viewer
func OpenPhotoCmd(opener PhotoOpener, item domain.ResultItem) tea.Cmd {
	return func() tea.Msg {
		if opener == nil {
			return openedMsg{Title: item.DisplayTitle(), Err: errNoViewer}
		}
		url := ""
		if item.ImageURL != nil {
			url = item.ImageURL.String()
		}
		return openedMsg{Title: item.DisplayTitle(), Err: opener.Open(url)}
	}
}

// ClearStatusCmd clears the status message after a delay
func ClearStatusCmd(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}

// SyncCmd asks the model to refresh visibility against the session
func SyncCmd() tea.Cmd {
	return func() tea.Msg {
		return syncMsg{}
	}
}
