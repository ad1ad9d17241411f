package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/diogo/agentchat/internal/api"
	"github.com/diogo/agentchat/internal/chat"
	"github.com/diogo/agentchat/internal/logging"
	"github.com/diogo/agentchat/internal/models"
	"github.com/diogo/agentchat/internal/render"
)

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	healthMsg struct {
		err error
	}
	queryMsg struct {
		result *models.QueryResult
		err    error
	}
	filesMsg struct {
		files []models.FileEntry
		err   error
	}
	// filesRefreshMsg fires once, a delay after a successful query
	filesRefreshMsg struct{}
	downloadMsg     struct {
		filename string
		path     string
		err      error
	}
)

// Options configures the chat TUI
type Options struct {
	// RefreshDelay is the wait between a successful query and the file list refresh
	RefreshDelay time.Duration
	DownloadDir  string

	// Markdown renders assistant text through glamour instead of plain text
	Markdown      bool
	RenderOptions render.Options

	Logger *slog.Logger

	// Clipboard copies text to the system clipboard. Defaults to atotto/clipboard.
	Clipboard func(string) error
}

// Model represents the TUI state
type Model struct {
	client api.AgentClientInterface
	ctrl   *chat.Controller
	opts   Options
	logger *slog.Logger

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	ready          bool
	animationFrame int

	// Files panel focus and selection
	focusFiles bool
	fileCursor int

	// notice is a one-line feedback shown under the input
	notice    string
	noticeErr bool

	width  int
	height int
}

// NewChatModel creates a new chat TUI model
func NewChatModel(client api.AgentClientInterface, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.RenderOptions.Width == 0 {
		opts.RenderOptions = render.DefaultOptions()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask the agent something..."
	ta.CharLimit = 8000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		client:   client,
		ctrl:     chat.NewController(opts.Logger),
		opts:     opts,
		logger:   opts.Logger,
		textarea: ta,
		spinner:  s,
	}
}

// Controller exposes the chat state
func (m Model) Controller() *chat.Controller {
	return m.ctrl
}

// Init checks the backend and loads the file list, as on page load
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.loadFiles(),
		m.checkStatus(),
	)
}

func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*120, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)

	case tea.KeyMsg:
		if model, cmd, handled := m.handleKey(msg); handled {
			return model, cmd
		}

	case healthMsg:
		m.ctrl.ApplyHealth(msg.err)

	case queryMsg:
		if m.ctrl.Complete(msg.result, msg.err) {
			cmds = append(cmds, m.scheduleFileRefresh())
		}
		m.updateViewport()
		m.viewport.GotoBottom()

	case filesRefreshMsg:
		cmds = append(cmds, m.loadFiles())

	case filesMsg:
		m.ctrl.ApplyFiles(msg.files, msg.err)
		m.clampFileCursor()

	case downloadMsg:
		if msg.err != nil {
			m.setNotice(fmt.Sprintf("Download of %s failed: %v", msg.filename, msg.err), true)
			m.logger.Warn("download failed", "filename", msg.filename, "error", msg.err)
		} else {
			m.setNotice("Saved "+msg.path, false)
		}

	case spinner.TickMsg:
		if m.ctrl.Loading() {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.ctrl.Loading() {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.ctrl.Loading() && !m.focusFiles {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// handleKey processes global shortcuts and submission. It reports whether
// the key was consumed.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit, true

	case "esc":
		if m.focusFiles {
			m.focusFiles = false
			return m, nil, true
		}
		return m, tea.Quit, true

	case "ctrl+r":
		return m, m.loadFiles(), true

	case "ctrl+s":
		return m, m.checkStatus(), true

	case "ctrl+y":
		m.copyLastResponse()
		return m, nil, true

	case "tab":
		if !m.focusFiles && len(m.ctrl.Files()) == 0 {
			return m, nil, true
		}
		m.focusFiles = !m.focusFiles
		m.clampFileCursor()
		return m, nil, true
	}

	if m.focusFiles {
		return m.handleFilesKey(msg)
	}

	if msg.String() != "enter" {
		return m, nil, false
	}

	input := strings.TrimSpace(m.textarea.Value())
	if input == "exit" || input == "quit" || input == "/exit" || input == "/quit" {
		return m, tea.Quit, true
	}

	prompt, ok := m.ctrl.Submit(m.textarea.Value())
	if !ok {
		return m, nil, true
	}

	m.textarea.Reset()
	m.notice = ""
	m.animationFrame = 0
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.sendQuery(prompt),
		m.spinner.Tick,
		animationTick(),
	), true
}

func (m Model) handleFilesKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	files := m.ctrl.Files()

	switch msg.String() {
	case "up", "k":
		if len(files) > 0 {
			m.fileCursor--
			if m.fileCursor < 0 {
				m.fileCursor = len(files) - 1
			}
		}
	case "down", "j":
		if len(files) > 0 {
			m.fileCursor++
			if m.fileCursor >= len(files) {
				m.fileCursor = 0
			}
		}
	case "enter", "d":
		if m.fileCursor < len(files) {
			name := files[m.fileCursor].Filename
			m.setNotice("Downloading "+render.PlainText(name)+"...", false)
			return m, m.downloadFile(name), true
		}
	}
	return m, nil, true
}

func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height

	headerHeight := 3
	inputHeight := 4
	footerHeight := 2

	vpHeight := height - headerHeight - inputHeight - footerHeight - 2
	if vpHeight < 5 {
		vpHeight = 5
	}

	vpWidth := m.chatWidth() - 4
	if vpWidth < 10 {
		vpWidth = 10
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.viewport.KeyMap = viewport.KeyMap{
			PageUp:   key.NewBinding(key.WithKeys("pgup")),
			PageDown: key.NewBinding(key.WithKeys("pgdown")),
		}
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}
	m.textarea.SetWidth(width - 8)
	m.updateViewport()
}

// filesWidth is the outer width of the files panel
func (m Model) filesWidth() int {
	w := m.width / 3
	if w < 24 {
		w = 24
	}
	if w > 40 {
		w = 40
	}
	return w
}

// chatWidth is the outer width of the messages panel
func (m Model) chatWidth() int {
	return m.width - m.filesWidth()
}

func (m *Model) clampFileCursor() {
	n := len(m.ctrl.Files())
	if n == 0 {
		m.fileCursor = 0
		m.focusFiles = false
		return
	}
	if m.fileCursor >= n {
		m.fileCursor = n - 1
	}
}

func (m *Model) setNotice(text string, isErr bool) {
	m.notice = text
	m.noticeErr = isErr
}

func (m *Model) copyLastResponse() {
	text, ok := m.ctrl.LastResponse()
	if !ok {
		m.setNotice("Nothing to copy yet", true)
		return
	}
	if err := m.opts.Clipboard(text); err != nil {
		m.logger.Warn("clipboard copy failed", "error", err)
		m.setNotice("Copy failed: "+err.Error(), true)
		return
	}
	m.setNotice("Copied last response to clipboard", false)
}

// checkStatus issues a health request
func (m Model) checkStatus() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		return healthMsg{err: client.Health(context.Background())}
	}
}

// sendQuery issues the query request for an accepted prompt
func (m Model) sendQuery(prompt string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Query(context.Background(), prompt)
		return queryMsg{result: result, err: err}
	}
}

// loadFiles issues a file-listing request
func (m Model) loadFiles() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		files, err := client.ListFiles(context.Background())
		return filesMsg{files: files, err: err}
	}
}

// scheduleFileRefresh triggers one file refresh after the configured delay
func (m Model) scheduleFileRefresh() tea.Cmd {
	return tea.Tick(m.opts.RefreshDelay, func(time.Time) tea.Msg {
		return filesRefreshMsg{}
	})
}

func (m Model) downloadFile(filename string) tea.Cmd {
	client, dir := m.client, m.opts.DownloadDir
	return func() tea.Msg {
		path, err := client.DownloadFile(context.Background(), filename, dir)
		return downloadMsg{filename: filename, path: path, err: err}
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ Agent Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(render.PlainText(m.client.BaseURL())),
		hintStyle.Render("  •  "),
		StatusIndicator(m.ctrl.Status()),
	)
	sections = append(sections, headerStyle.Width(m.width-2).Render(headerContent))

	var messagesContent string
	if len(m.ctrl.Messages()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	messagesPanel := messagesAreaStyle.
		Width(m.chatWidth() - 2).
		Height(m.viewport.Height).
		Render(messagesContent)

	panelStyle := filesPanelStyle
	if m.focusFiles {
		panelStyle = filesPanelFocusedStyle
	}
	filesPanel := panelStyle.
		Width(m.filesWidth() - 2).
		Height(m.viewport.Height).
		Render(m.renderFiles(m.filesWidth() - 4))

	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, messagesPanel, filesPanel))

	var inputContent string
	if m.ctrl.Loading() {
		inputContent = m.renderLoading()
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(m.width-2).Render(inputContent))

	if m.notice != "" {
		style := noticeStyle
		if m.noticeErr {
			style = errorStyle
		}
		sections = append(sections, style.Render("  "+render.PlainText(m.notice)))
	}

	sections = append(sections, m.renderStatusBar(m.width-2))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderWelcome() string {
	width := m.viewport.Width
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		welcomeIconStyle.Width(width).Render("✦"),
		"",
		welcomeTitleStyle.Width(width).Render("Agent Chat"),
		"",
		welcomeStyle.Width(width).Render("Type a prompt below. Generated files appear on the right."),
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

func (m Model) renderLoading() string {
	dots := strings.Repeat("●", m.animationFrame%4) + strings.Repeat("○", 3-m.animationFrame%4)
	return fmt.Sprintf("%s %s %s",
		m.spinner.View(),
		lipgloss.NewStyle().Foreground(colorText).Render("Agent is working"),
		loadingStyle.Render(dots),
	)
}

func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Tab", "Files"},
		{"Ctrl+R", "Refresh files"},
		{"Ctrl+S", "Check status"},
		{"Ctrl+Y", "Copy"},
		{"Esc", "Quit"},
	}
	if m.focusFiles {
		shortcuts = []struct {
			key  string
			desc string
		}{
			{"↑↓", "Select"},
			{"Enter/d", "Download"},
			{"Esc/Tab", "Back"},
		}
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.ctrl.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(m.renderMessage(msg, bubbleWidth))
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// renderMessage renders one log entry. Backend text is always neutralized
// before styling so it is shown literally.
func (m Model) renderMessage(msg models.Message, width int) string {
	switch msg.Role {
	case models.RoleUser:
		return userLabelStyle.Render("● You") + "\n" +
			userBubbleStyle.Width(width).Render(render.PlainText(msg.Content))
	case models.RoleAssistantError:
		return errorLabelStyle.Render("✗ Agent") + "\n" +
			errorBubbleStyle.Width(width).Render(render.PlainText(msg.Content))
	default:
		opts := m.opts.RenderOptions.WithWidth(width - 4)
		body := render.Response(msg.Content, opts, m.opts.Markdown)
		return assistantLabelStyle.Render("✦ Agent") + "\n" +
			assistantBubbleStyle.Width(width).Render(body)
	}
}

// renderFiles renders the file list with a download link per row, or the
// empty-state placeholder
func (m Model) renderFiles(width int) string {
	var sb strings.Builder
	sb.WriteString(filesTitleStyle.Render("Generated files"))
	sb.WriteString("\n")

	files := m.ctrl.Files()
	if len(files) == 0 {
		sb.WriteString(noFilesStyle.Render(chat.NoFilesPlaceholder))
		return sb.String()
	}

	if width < 8 {
		width = 8
	}
	for i, f := range files {
		name := ansi.Truncate(render.PlainText(f.Filename), width-2, "…")
		cursor := "  "
		nameStyle := fileNameStyle
		if m.focusFiles && i == m.fileCursor {
			cursor = fileSelectedStyle.Render("▸ ")
			nameStyle = fileSelectedStyle
		}
		link := render.Hyperlink(fileLinkStyle.Render("⬇ Download"), m.client.FileURL(f.Filename))

		sb.WriteString(cursor + nameStyle.Render(name) + "\n")
		sb.WriteString("  " + link + "\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// RunChat starts the chat TUI
func RunChat(client api.AgentClientInterface, opts Options) error {
	m := NewChatModel(client, opts)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
