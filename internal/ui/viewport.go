package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/triviuminteractive/trivium-view/internal/theme"
)

// LoadErrorText is the static message shown when the frame fails to load.
const LoadErrorText = "An error occurred while loading the page"

// PageViewport wraps bubbles/viewport and shows the frame contents, a
// splash before the first page, or the load error banner.
type PageViewport struct {
	viewport   viewport.Model
	ready      bool
	contentSet bool
	errorShown bool
	splashURL  string
}

// NewPageViewport creates a viewport; dimensions are set on the first
// WindowSizeMsg.
func NewPageViewport(splashURL string) PageViewport {
	return PageViewport{splashURL: splashURL}
}

// SetSize updates the viewport dimensions.
func (pv *PageViewport) SetSize(width, height int) {
	if !pv.ready {
		pv.viewport = viewport.New(width, height)
		pv.viewport.MouseWheelEnabled = true
		pv.viewport.MouseWheelDelta = 3
		pv.ready = true
		return
	}
	pv.viewport.Width = width
	pv.viewport.Height = height
}

// SetContent replaces the viewport content and scrolls to the top.
func (pv *PageViewport) SetContent(content string) {
	if !pv.ready {
		return
	}
	pv.viewport.SetContent(content)
	pv.contentSet = true
	pv.errorShown = false
	pv.viewport.GotoTop()
}

// ShowError replaces the content with the load error banner.
func (pv *PageViewport) ShowError(url string, err error) {
	if !pv.ready {
		return
	}
	pv.viewport.SetContent(renderError(url, err, pv.viewport.Width))
	pv.contentSet = true
	pv.errorShown = true
	pv.viewport.GotoTop()
}

// ErrorShown reports whether the error banner is on screen.
func (pv *PageViewport) ErrorShown() bool {
	return pv.errorShown
}

// Update forwards messages (mouse wheel) to the viewport.
func (pv *PageViewport) Update(msg tea.Msg) (*PageViewport, tea.Cmd) {
	if !pv.ready {
		return pv, nil
	}
	var cmd tea.Cmd
	pv.viewport, cmd = pv.viewport.Update(msg)
	return pv, cmd
}

// View renders the viewport.
func (pv *PageViewport) View() string {
	if !pv.ready {
		return ""
	}
	if !pv.contentSet {
		return lipgloss.Place(pv.viewport.Width, pv.viewport.Height,
			lipgloss.Center, lipgloss.Center, pv.renderSplash())
	}
	return pv.viewport.View()
}

// ScrollInfo returns "TOP", "BOT" or a percentage.
func (pv *PageViewport) ScrollInfo() string {
	if !pv.ready || pv.viewport.AtTop() {
		return "TOP"
	}
	if pv.viewport.AtBottom() {
		return "BOT"
	}
	return fmt.Sprintf("%d%%", int(pv.viewport.ScrollPercent()*100))
}

// Scroll moves the view n lines; negative n scrolls up.
func (pv *PageViewport) Scroll(n int) {
	switch {
	case !pv.ready:
	case n > 0:
		pv.viewport.LineDown(n)
	case n < 0:
		pv.viewport.LineUp(-n)
	}
}

// ScrollHalf moves half a page, up when dir is negative.
func (pv *PageViewport) ScrollHalf(dir int) {
	if pv.ready {
		pv.Scroll(dir * max(pv.viewport.Height/2, 1))
	}
}

func (pv *PageViewport) GotoTop() {
	if pv.ready {
		pv.viewport.GotoTop()
	}
}

func (pv *PageViewport) GotoBottom() {
	if pv.ready {
		pv.viewport.GotoBottom()
	}
}

func (pv *PageViewport) renderSplash() string {
	t := theme.Current

	title := lipgloss.NewStyle().Bold(true).Foreground(t.Primary).Render("Trivium Interactive")
	sub := lipgloss.NewStyle().Foreground(t.TextDim).Render("Opening " + pv.splashURL + " ...")
	return title + "\n\n" + sub
}

func renderError(url string, err error, width int) string {
	t := theme.Current

	head := lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true).
		Padding(2, 4, 1).
		Render("Error loading page: " + LoadErrorText)

	detailStyle := lipgloss.NewStyle().
		Foreground(t.TextDim).
		Padding(0, 4)
	if width > 8 {
		detailStyle = detailStyle.Width(width)
	}

	var detail strings.Builder
	fmt.Fprintf(&detail, "URL: %s", url)
	if err != nil {
		fmt.Fprintf(&detail, "\nCause: %s", err)
	}

	reload := lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Background).
		Background(t.Primary).
		Padding(0, 1).
		MarginLeft(4).
		MarginTop(1).
		Render("r  Reload")

	return head + "\n" + detailStyle.Render(detail.String()) + "\n\n" + reload
}
