package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/triviuminteractive/trivium-view/internal/theme"
)

// CommandType identifies what the bottom-line prompt is reading.
type CommandType int

const (
	CommandNone   CommandType = iota
	CommandEx                 // ":" commands
	CommandFollow             // "f" link number
)

var prompts = map[CommandType]struct{ prompt, placeholder string }{
	CommandEx:     {":", "back, reload, home, open, theme <name>, quit"},
	CommandFollow: {"f ", "link number"},
}

// CommandResult is what the user entered when the prompt was submitted.
type CommandResult struct {
	Type  CommandType
	Value string
}

// CommandBar reads : commands and link numbers on the bottom line.
type CommandBar struct {
	input textinput.Model
	kind  CommandType
	width int
}

func NewCommandBar() CommandBar {
	in := textinput.New()
	in.CharLimit = 128
	return CommandBar{input: in}
}

func (c *CommandBar) SetWidth(w int) {
	c.width = w
	c.input.Width = max(w-4, 1)
}

// Open shows the prompt for kind and focuses it.
func (c *CommandBar) Open(kind CommandType) tea.Cmd {
	p := prompts[kind]
	c.kind = kind
	c.input.SetValue("")
	c.input.Prompt = p.prompt
	c.input.Placeholder = p.placeholder
	return c.input.Focus()
}

// Close hides the prompt and drops its input.
func (c *CommandBar) Close() {
	c.kind = CommandNone
	c.input.SetValue("")
	c.input.Blur()
}

func (c *CommandBar) IsActive() bool { return c.kind != CommandNone }

// Submit returns the trimmed input and closes the prompt.
func (c *CommandBar) Submit() CommandResult {
	res := CommandResult{Type: c.kind, Value: strings.TrimSpace(c.input.Value())}
	c.Close()
	return res
}

// Update feeds a message to the prompt. Follow mode takes digits only.
func (c *CommandBar) Update(msg tea.Msg) (*CommandBar, tea.Cmd) {
	if !c.IsActive() {
		return c, nil
	}
	if k, ok := msg.(tea.KeyMsg); ok && c.kind == CommandFollow && k.Type == tea.KeyRunes {
		if strings.IndexFunc(string(k.Runes), func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
			return c, nil
		}
	}
	var cmd tea.Cmd
	c.input, cmd = c.input.Update(msg)
	return c, cmd
}

func (c *CommandBar) View() string {
	if !c.IsActive() {
		return ""
	}
	return lipgloss.NewStyle().
		Width(c.width).
		Foreground(theme.Current.Text).
		Background(theme.Current.Surface).
		Render(c.input.View())
}
