package theme

import (
	"sort"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// Theme defines the color palette for the shell chrome.
type Theme struct {
	Name string

	// Glamour standard style used for page content ("light" or "dark").
	Glamour string

	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Accent    lipgloss.Color

	Text     lipgloss.Color
	TextDim  lipgloss.Color
	Disabled lipgloss.Color

	Background  lipgloss.Color
	Surface     lipgloss.Color
	Border      lipgloss.Color
	BorderFocus lipgloss.Color

	Link    lipgloss.Color
	Error   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Info    lipgloss.Color
}

var themes = map[string]Theme{
	"trivium":  Trivium,
	"midnight": Midnight,
}

// Trivium is the studio's light palette, matching the window background
// of the desktop build.
var Trivium = Theme{
	Name:        "trivium",
	Glamour:     "light",
	Primary:     lipgloss.Color("#B4461E"),
	Secondary:   lipgloss.Color("#2F6F73"),
	Accent:      lipgloss.Color("#C98A12"),
	Text:        lipgloss.Color("#2B2118"),
	TextDim:     lipgloss.Color("#7A6A58"),
	Disabled:    lipgloss.Color("#C9BFAF"),
	Background:  lipgloss.Color("#FFFBF0"),
	Surface:     lipgloss.Color("#F3EBD8"),
	Border:      lipgloss.Color("#DDD2BC"),
	BorderFocus: lipgloss.Color("#B4461E"),
	Link:        lipgloss.Color("#1F5FA8"),
	Error:       lipgloss.Color("#B3261E"),
	Success:     lipgloss.Color("#3C7D3A"),
	Warning:     lipgloss.Color("#B7791F"),
	Info:        lipgloss.Color("#2F6F73"),
}

var Midnight = Theme{
	Name:        "midnight",
	Glamour:     "dark",
	Primary:     lipgloss.Color("#F08A5D"),
	Secondary:   lipgloss.Color("#5FB3B3"),
	Accent:      lipgloss.Color("#F2C14E"),
	Text:        lipgloss.Color("#E6E1D6"),
	TextDim:     lipgloss.Color("#8C8577"),
	Disabled:    lipgloss.Color("#4A463F"),
	Background:  lipgloss.Color("#16130F"),
	Surface:     lipgloss.Color("#241F19"),
	Border:      lipgloss.Color("#3A332A"),
	BorderFocus: lipgloss.Color("#F08A5D"),
	Link:        lipgloss.Color("#7FB2F0"),
	Error:       lipgloss.Color("#F2685E"),
	Success:     lipgloss.Color("#8FC17A"),
	Warning:     lipgloss.Color("#F2C14E"),
	Info:        lipgloss.Color("#5FB3B3"),
}

// Current is the active theme.
var Current = Trivium

// Set changes the active theme by name.
func Set(name string) bool {
	if t, ok := themes[name]; ok {
		Current = t
		return true
	}
	return false
}

// List returns the available theme names, sorted.
func List() []string {
	names := lo.Keys(themes)
	sort.Strings(names)
	return names
}
