package ui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/triviuminteractive/trivium-view/internal/theme"
)

const (
	backLabel    = "← Back"
	navBarHeight = 3 // rounded border around one line
)

// NavBar is the browser chrome above the frame: a back button and,
// optionally, the current URL.
type NavBar struct {
	url       string
	canGoBack bool
	showURL   bool
	loading   bool
	width     int
}

// NewNavBar creates a nav bar. showURL controls the URL display.
func NewNavBar(showURL bool) NavBar {
	return NavBar{showURL: showURL}
}

// SetWidth updates the nav bar width.
func (n *NavBar) SetWidth(w int) {
	n.width = w
}

// SetURL sets the displayed URL.
func (n *NavBar) SetURL(url string) {
	n.url = url
}

// SetCanGoBack enables or disables the back button.
func (n *NavBar) SetCanGoBack(ok bool) {
	n.canGoBack = ok
}

// SetLoading toggles the loading marker next to the URL.
func (n *NavBar) SetLoading(loading bool) {
	n.loading = loading
}

// CanGoBack reports whether the back button is enabled.
func (n *NavBar) CanGoBack() bool {
	return n.canGoBack
}

// Height returns the rendered height in rows.
func (n *NavBar) Height() int {
	return navBarHeight
}

// BackButtonHit reports whether a click at x, y (screen cells, nav bar
// at the top) lands on the back button.
func (n *NavBar) BackButtonHit(x, y int) bool {
	if y < 0 || y >= navBarHeight {
		return false
	}
	// border + padding, then the padded label
	return x >= 1 && x < 2+lipgloss.Width(backLabel)+2
}

// View renders the nav bar.
func (n *NavBar) View() string {
	t := theme.Current

	buttonStyle := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1)
	if n.canGoBack {
		buttonStyle = buttonStyle.
			Foreground(t.Background).
			Background(t.Primary)
	} else {
		buttonStyle = buttonStyle.
			Foreground(t.Disabled).
			Background(t.Surface)
	}

	content := buttonStyle.Render(backLabel)

	if n.showURL {
		urlStyle := lipgloss.NewStyle().
			Foreground(t.TextDim).
			Background(t.Surface).
			PaddingLeft(2)
		marker := ""
		if n.loading {
			marker = " ⏳"
		}
		// border, padding, button and gap
		room := n.width - 4 - lipgloss.Width(content) - 2 - lipgloss.Width(marker)
		content += urlStyle.Render(truncate(n.url, room) + marker)
	}

	barStyle := lipgloss.NewStyle().
		Background(t.Surface).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)
	if n.width > 2 {
		barStyle = barStyle.Width(n.width - 2)
	}

	return barStyle.Render(content)
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && lipgloss.Width(string(r))+1 > width {
		r = r[:len(r)-1]
	}
	return string(r) + "…"
}
