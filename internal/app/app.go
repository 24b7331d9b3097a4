package app

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	pkgbrowser "github.com/pkg/browser"
	"github.com/triviuminteractive/trivium-view/internal/browser"
	"github.com/triviuminteractive/trivium-view/internal/frame"
	"github.com/triviuminteractive/trivium-view/internal/theme"
	"github.com/triviuminteractive/trivium-view/internal/ui"
	"go.uber.org/zap"
)

// Mode represents the current input mode.
type Mode int

const (
	ModeNormal  Mode = iota
	ModeCommand      // command bar active
	ModeFollow       // link follow mode
)

// Options wires the model to its collaborators.
type Options struct {
	HomeURL string
	ShowURL bool
	Host    *frame.Host
	Policy  *browser.Policy
	Logger  *zap.Logger

	// OpenExternal hands a URL to the system. Defaults to pkg/browser.
	OpenExternal func(url string) error
}

// Model is the top-level bubbletea model.
type Model struct {
	navBar     ui.NavBar
	viewport   ui.PageViewport
	statusBar  ui.StatusBar
	commandBar ui.CommandBar

	tracker *browser.Tracker
	host    *frame.Host
	policy  *browser.Policy

	keys      KeyMap
	mode      Mode
	width     int
	height    int
	ready     bool
	lastGKey  bool // for "gg" and "gh"
	helpShown bool
	homeURL   string

	openExternal func(string) error
	log          *zap.Logger
}

// New creates the model and queues the first load of the home page.
func New(opts Options) (Model, error) {
	if opts.Host == nil {
		return Model{}, errors.New("app: no frame host")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Policy == nil {
		p, err := browser.NewPolicy(opts.HomeURL, nil)
		if err != nil {
			return Model{}, err
		}
		opts.Policy = p
	}
	if opts.OpenExternal == nil {
		opts.OpenExternal = pkgbrowser.OpenURL
	}

	m := Model{
		navBar:       ui.NewNavBar(opts.ShowURL),
		viewport:     ui.NewPageViewport(opts.HomeURL),
		statusBar:    ui.NewStatusBar(),
		commandBar:   ui.NewCommandBar(),
		tracker:      browser.NewTracker(),
		host:         opts.Host,
		policy:       opts.Policy,
		keys:         DefaultKeyMap(),
		mode:         ModeNormal,
		homeURL:      opts.HomeURL,
		openExternal: opts.OpenExternal,
		log:          opts.Logger,
	}

	if err := m.host.Request(opts.HomeURL, frame.Navigate); err != nil {
		return Model{}, fmt.Errorf("loading home page: %w", err)
	}
	m.navBar.SetURL(opts.HomeURL)
	m.navBar.SetLoading(true)
	m.statusBar.SetLoading(true)
	return m, nil
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return m.host.Take()
}

// Tracker exposes the navigation state, for tests and diagnostics.
func (m Model) Tracker() *browser.Tracker {
	return m.tracker
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		redrawn := m.layout()
		if !m.ready {
			m.ready = true
			m.showFrame()
		} else if redrawn {
			m.redrawPage()
		}
		return m, nil

	case frame.LoadedMsg:
		return m.handleLoaded(msg)

	case frame.FailedMsg:
		return m.handleFailed(msg)

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft &&
			m.navBar.BackButtonHit(msg.X, msg.Y) {
			return m.goBack()
		}

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	vp, cmd := m.viewport.Update(msg)
	m.viewport = *vp
	m.syncChrome()
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "\n  Loading trivium-view..."
	}

	sections := []string{
		m.navBar.View(),
		m.viewport.View(),
		m.statusBar.View(),
	}
	if m.commandBar.IsActive() {
		sections = append(sections, m.commandBar.View())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// layout recalculates dimensions for all components. It reports whether
// the frame drew its page again for the new width.
func (m *Model) layout() bool {
	m.navBar.SetWidth(m.width)
	m.statusBar.SetWidth(m.width)
	m.commandBar.SetWidth(m.width)

	statusBarHeight := 1
	commandBarHeight := 0
	if m.commandBar.IsActive() {
		commandBarHeight = 1
	}
	viewportHeight := m.height - m.navBar.Height() - statusBarHeight - commandBarHeight
	if viewportHeight < 1 {
		viewportHeight = 1
	}
	m.viewport.SetSize(m.width, viewportHeight)
	return m.host.SetSize(m.width, theme.Current.Glamour)
}

// redrawPage swaps in the page the frame drew again, unless the help
// page or error banner is covering it.
func (m *Model) redrawPage() {
	page := m.host.Page()
	if page == nil || m.helpShown || m.viewport.ErrorShown() {
		return
	}
	m.viewport.SetContent(page.Content)
	m.syncChrome()
}

// handleKeyMsg processes key events based on current mode.
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	switch m.mode {
	case ModeCommand, ModeFollow:
		return m.handleCommandMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleNormalMode processes keys while browsing.
func (m Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.lastGKey {
		m.lastGKey = false
		switch msg.String() {
		case "g":
			m.viewport.GotoTop()
			m.syncChrome()
			return m, nil
		case "h":
			return m.navigate(m.homeURL, frame.Navigate)
		}
	}

	switch {
	case msg.String() == "g":
		m.lastGKey = true
		return m, nil

	case msg.String() == "esc":
		if m.helpShown {
			m.showFrame()
		}
		m.statusBar.SetMessage("")
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.Scroll(1)
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.Scroll(-1)
	case key.Matches(msg, m.keys.HalfPageDown):
		m.viewport.ScrollHalf(1)
	case key.Matches(msg, m.keys.HalfPageUp):
		m.viewport.ScrollHalf(-1)
	case key.Matches(msg, m.keys.GotoBottom):
		m.viewport.GotoBottom()

	case key.Matches(msg, m.keys.Back):
		return m.goBack()
	case key.Matches(msg, m.keys.Reload):
		return m.reload()
	case key.Matches(msg, m.keys.OpenExternal):
		return m.openCurrentExternally()

	case key.Matches(msg, m.keys.FollowLink):
		m.mode = ModeFollow
		m.statusBar.SetMode("FOLLOW")
		cmd := m.commandBar.Open(ui.CommandFollow)
		m.layout()
		return m, cmd
	case key.Matches(msg, m.keys.CommandMode):
		m.mode = ModeCommand
		m.statusBar.SetMode("COMMAND")
		cmd := m.commandBar.Open(ui.CommandEx)
		m.layout()
		return m, cmd

	case key.Matches(msg, m.keys.Help):
		if m.helpShown {
			m.showFrame()
		} else {
			m.showHelp()
		}
		return m, nil
	}

	m.syncChrome()
	return m, nil
}

// handleCommandMode processes keys while the command bar is open.
func (m Model) handleCommandMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.commandBar.Close()
		m.enterNormal()
		return m, nil

	case tea.KeyEnter:
		result := m.commandBar.Submit()
		m.enterNormal()
		switch result.Type {
		case ui.CommandEx:
			return m.executeCommand(result.Value)
		case ui.CommandFollow:
			return m.followLink(result.Value)
		}
		return m, nil
	}

	cb, cmd := m.commandBar.Update(msg)
	m.commandBar = *cb
	return m, cmd
}

func (m *Model) enterNormal() {
	m.mode = ModeNormal
	m.statusBar.SetMode("NORMAL")
	m.layout()
}

// executeCommand handles :commands.
func (m Model) executeCommand(cmd string) (tea.Model, tea.Cmd) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return m, nil
	}

	switch parts[0] {
	case "q", "quit":
		return m.quit()
	case "b", "back":
		return m.goBack()
	case "r", "reload":
		return m.reload()
	case "home":
		return m.navigate(m.homeURL, frame.Navigate)
	case "open":
		return m.openCurrentExternally()
	case "help":
		m.showHelp()
	case "theme":
		if len(parts) < 2 {
			m.statusBar.SetMessage(fmt.Sprintf("Theme: %s (available: %s)", theme.Current.Name, strings.Join(theme.List(), ", ")))
			return m, nil
		}
		if !theme.Set(parts[1]) {
			m.statusBar.SetMessage(fmt.Sprintf("Unknown theme: %s (available: %s)", parts[1], strings.Join(theme.List(), ", ")))
			return m, nil
		}
		m.statusBar.SetMessage("Theme: " + parts[1])
		if m.layout() {
			m.redrawPage()
		}
	default:
		m.statusBar.SetMessage("Unknown command: " + parts[0])
	}
	return m, nil
}

// followLink acts on the link numbered input.
func (m Model) followLink(input string) (tea.Model, tea.Cmd) {
	page := m.host.Page()
	if page == nil || m.viewport.ErrorShown() {
		m.statusBar.SetMessage("No page loaded")
		return m, nil
	}

	num, err := strconv.Atoi(strings.TrimSpace(input))
	if err != nil {
		m.statusBar.SetMessage(fmt.Sprintf("Invalid link number: %s", input))
		return m, nil
	}
	link, ok := page.Link(num)
	if !ok {
		m.statusBar.SetMessage(fmt.Sprintf("Link [%d] not found", num))
		return m, nil
	}

	// link numbers belong to the page on display
	switch m.policy.Classify(page.URL, link.URL) {
	case browser.OpenExternal:
		return m.openExternally(link.URL)
	case browser.OpenInPage:
		return m.navigate(link.URL, frame.InPage)
	default:
		return m.navigate(link.URL, frame.Navigate)
	}
}

// navigate asks the frame for url. The tracker is updated once the
// frame reports the load.
func (m Model) navigate(url string, kind frame.Kind) (tea.Model, tea.Cmd) {
	m.statusBar.SetMessage("")
	if err := m.host.Request(url, kind); err != nil {
		m.showLoadError(url, err)
		return m, nil
	}
	m.syncChrome()
	return m, m.host.Take()
}

// goBack steps the tracker back; the tracker points the frame at the
// previous entry itself.
func (m Model) goBack() (tea.Model, tea.Cmd) {
	m.statusBar.SetMessage("")
	moved, err := m.tracker.GoBack(m.host)
	if !moved {
		m.statusBar.SetMessage("No previous page")
		return m, nil
	}
	if err != nil {
		m.showLoadError(m.tracker.Current(), err)
		return m, nil
	}
	m.syncChrome()
	return m, m.host.Take()
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	m.statusBar.SetMessage("")
	if err := m.host.Reload(); err != nil {
		m.statusBar.SetMessage(err.Error())
		return m, nil
	}
	m.syncChrome()
	return m, m.host.Take()
}

func (m Model) openCurrentExternally() (tea.Model, tea.Cmd) {
	current := m.tracker.Current()
	if current == "" {
		current = m.host.Target()
	}
	if current == "" {
		m.statusBar.SetMessage("No page loaded")
		return m, nil
	}
	return m.openExternally(current)
}

func (m Model) openExternally(url string) (tea.Model, tea.Cmd) {
	if err := m.openExternal(url); err != nil {
		m.log.Warn("opening external link failed", zap.String("url", url), zap.Error(err))
		m.statusBar.SetMessage(fmt.Sprintf("Could not open %s: %s", url, err))
		return m, nil
	}
	m.log.Info("opened external link", zap.String("url", url))
	m.statusBar.SetMessage("Opened in system browser: " + url)
	return m, nil
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.host.Stop()
	return m, tea.Quit
}

// handleLoaded applies the frame's load-complete event.
func (m Model) handleLoaded(msg frame.LoadedMsg) (tea.Model, tea.Cmd) {
	if !m.host.Loaded(msg) {
		return m, nil
	}

	switch msg.Kind {
	case frame.Navigate:
		m.tracker.RecordNavigation(msg.URL, false)
	case frame.InPage:
		m.tracker.RecordNavigation(msg.URL, false)
		m.syncChrome()
		return m, nil
	case frame.Back:
		// position moved before the load started
	case frame.Reload:
		if m.tracker.Len() == 0 {
			m.tracker.RecordNavigation(msg.URL, false)
		}
	}

	m.showFrame()
	return m, nil
}

// handleFailed applies the frame's load-error event.
func (m Model) handleFailed(msg frame.FailedMsg) (tea.Model, tea.Cmd) {
	if !m.host.Failed(msg) {
		return m, nil
	}
	m.showFrame()
	return m, nil
}

// showFrame draws the frame state: the error banner after a failed
// load, otherwise the page on display.
func (m *Model) showFrame() {
	m.helpShown = false
	if err := m.host.Err(); err != nil {
		m.viewport.ShowError(m.host.Target(), err)
	} else if page := m.host.Page(); page != nil {
		m.viewport.SetContent(page.Content)
	}
	m.syncChrome()
}

func (m *Model) showLoadError(url string, err error) {
	m.helpShown = false
	m.log.Error("navigation rejected", zap.String("url", url), zap.Error(err))
	m.viewport.ShowError(url, err)
	m.syncChrome()
}

// syncChrome copies navigation and frame state into the nav and status
// bars.
func (m *Model) syncChrome() {
	url := m.tracker.Current()
	if m.host.Loading() || m.viewport.ErrorShown() || url == "" {
		url = m.host.Target()
	}
	m.navBar.SetURL(url)
	m.navBar.SetCanGoBack(m.tracker.CanGoBack())
	m.navBar.SetLoading(m.host.Loading())

	m.statusBar.SetLoading(m.host.Loading())
	m.statusBar.SetFailed(m.viewport.ErrorShown())
	m.statusBar.SetScrollInfo(m.viewport.ScrollInfo())
	if page := m.host.Page(); page != nil && !m.helpShown {
		m.statusBar.SetTitle(page.Title)
		m.statusBar.SetLinkCount(len(page.Links))
	}
}

// showHelp displays the keybinding reference in the viewport.
func (m *Model) showHelp() {
	t := theme.Current

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(t.Primary)
	keyStyle := lipgloss.NewStyle().Foreground(t.Secondary).Width(18)
	descStyle := lipgloss.NewStyle().Foreground(t.Text)

	var sb strings.Builder
	sb.WriteString(titleStyle.Render("trivium-view keys"))
	sb.WriteString("\n\n")

	for _, b := range m.keys.helpRows() {
		h := b.Help()
		sb.WriteString(keyStyle.Render(h.Key))
		sb.WriteString(descStyle.Render(h.Desc))
		sb.WriteString("\n")
	}

	m.viewport.SetContent(sb.String())
	m.helpShown = true
	m.statusBar.SetTitle("Help")
	m.statusBar.SetLinkCount(0)
	m.syncChrome()
}
