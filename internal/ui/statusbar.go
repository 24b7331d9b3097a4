package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/triviuminteractive/trivium-view/internal/theme"
)

// StatusBar shows page info at the bottom of the screen.
type StatusBar struct {
	title      string
	loading    bool
	failed     bool
	scrollInfo string
	mode       string
	linkCount  int
	width      int
	message    string // cleared on the next navigation
}

// NewStatusBar creates a new status bar.
func NewStatusBar() StatusBar {
	return StatusBar{mode: "NORMAL", scrollInfo: "TOP"}
}

// SetWidth sets the status bar width.
func (s *StatusBar) SetWidth(w int) { s.width = w }

// SetTitle updates the page title.
func (s *StatusBar) SetTitle(title string) { s.title = title }

// SetLoading sets the loading indicator state.
func (s *StatusBar) SetLoading(loading bool) { s.loading = loading }

// SetFailed marks the frame as showing the error banner.
func (s *StatusBar) SetFailed(failed bool) { s.failed = failed }

// SetScrollInfo sets the scroll position string ("42%", "TOP", "BOT").
func (s *StatusBar) SetScrollInfo(info string) { s.scrollInfo = info }

// SetMode sets the mode indicator (NORMAL, FOLLOW, COMMAND).
func (s *StatusBar) SetMode(mode string) { s.mode = mode }

// Mode returns the mode indicator.
func (s *StatusBar) Mode() string { return s.mode }

// SetLinkCount sets the link count displayed.
func (s *StatusBar) SetLinkCount(n int) { s.linkCount = n }

// SetMessage sets a temporary status message.
func (s *StatusBar) SetMessage(msg string) { s.message = msg }

// Message returns the temporary status message.
func (s *StatusBar) Message() string { return s.message }

// View renders the status bar.
func (s *StatusBar) View() string {
	t := theme.Current

	modeBg := t.Primary
	switch s.mode {
	case "FOLLOW":
		modeBg = t.Link
	case "COMMAND":
		modeBg = t.Accent
	}
	mode := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Foreground(t.Background).
		Background(modeBg).
		Render(s.mode)

	cell := lipgloss.NewStyle().
		Background(t.Surface).
		Padding(0, 1)

	var left string
	switch {
	case s.loading:
		left = cell.Foreground(t.Warning).Bold(true).Render("⏳ Loading...")
	case s.message != "":
		left = cell.Foreground(t.Info).Render(s.message)
	case s.failed:
		left = cell.Foreground(t.Error).Bold(true).Render("Page failed to load · r to reload")
	case s.title != "":
		left = cell.Foreground(t.Text).Render(s.title)
	}

	var right string
	if s.linkCount > 0 {
		right += cell.Foreground(t.TextDim).Render(fmt.Sprintf("%d links", s.linkCount))
	}
	right += cell.Foreground(t.Secondary).Bold(true).Render(s.scrollInfo)

	gap := s.width - lipgloss.Width(mode) - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	spacer := lipgloss.NewStyle().Background(t.Surface).Render(fmt.Sprintf("%*s", gap, ""))

	return mode + left + spacer + right
}
