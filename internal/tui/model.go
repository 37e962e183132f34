package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/recallchat/internal/api"
	"github.com/diogo/recallchat/internal/config"
	apierrors "github.com/diogo/recallchat/internal/errors"
	"github.com/diogo/recallchat/internal/models"
	"github.com/diogo/recallchat/internal/render"
)

const noticeDuration = 4 * time.Second

// Animation tick message
type animationTickMsg time.Time

// Message types for the TUI
type (
	// exchangeResultMsg carries the outcome of one exchange back to Update.
	exchangeResultMsg struct {
		exchange uint64
		reply    string
		err      error
	}
	noticeClearMsg struct {
		id int
	}
)

// Model is the chat view-model. It owns the transcript and the draft; both
// are changed only from Update, Submit and SetDraft.
type Model struct {
	client api.ChatClientInterface
	cfg    config.Config

	// ctx is cancelled when the user quits, abandoning pending exchanges
	ctx    context.Context
	cancel context.CancelFunc

	transcript   *models.Transcript
	nextExchange uint64
	inFlight     int

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	notice         string
	noticeID       int
	ready          bool
	animationFrame int

	// copyFn writes to the system clipboard; replaced in tests
	copyFn func(string) error

	width  int
	height int
}

// NewChatModel creates a chat view-model with an empty transcript
func NewChatModel(client api.ChatClientInterface, cfg config.Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Type your message here..."
	ta.CharLimit = 4000
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

	ctx, cancel := context.WithCancel(context.Background())

	return Model{
		client:       client,
		cfg:          cfg,
		ctx:          ctx,
		cancel:       cancel,
		transcript:   models.NewTranscript(),
		nextExchange: 1,
		textarea:     ta,
		spinner:      s,
		copyFn:       clipboard.WriteAll,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Entries returns the transcript in insertion order
func (m Model) Entries() []models.Entry {
	return m.transcript.Entries()
}

// Draft returns the text currently in the input
func (m Model) Draft() string {
	return m.textarea.Value()
}

// SetDraft replaces the text in the input
func (m *Model) SetDraft(text string) {
	m.textarea.SetValue(text)
}

// InFlight returns the number of exchanges awaiting a response
func (m Model) InFlight() int {
	return m.inFlight
}

// Notice returns the transient status line, if any
func (m Model) Notice() string {
	return m.notice
}

// Submit appends the draft as a User entry and returns the command that runs
// its exchange. The draft is shown and sent as typed; a blank draft is
// ignored and yields a nil command.
func (m *Model) Submit() tea.Cmd {
	text := m.textarea.Value()
	if strings.TrimSpace(text) == "" {
		return nil
	}

	seq := m.nextExchange
	m.nextExchange++

	m.transcript.Append(models.Entry{Speaker: models.SpeakerUser, Text: text, Exchange: seq})
	m.textarea.Reset()
	m.inFlight++
	m.refresh()

	return m.exchange(seq, text)
}

// exchange runs one request off the UI goroutine
func (m Model) exchange(seq uint64, text string) tea.Cmd {
	client, ctx := m.client, m.ctx
	return func() tea.Msg {
		reply, err := client.Send(ctx, text)
		return exchangeResultMsg{exchange: seq, reply: reply, err: err}
	}
}

// resolve records the outcome of an exchange. At most one entry is appended.
func (m *Model) resolve(msg exchangeResultMsg) tea.Cmd {
	if m.inFlight > 0 {
		m.inFlight--
	}

	switch {
	case msg.err == nil:
		m.transcript.Append(models.Entry{Speaker: models.SpeakerAssistant, Text: msg.reply, Exchange: msg.exchange})
	case errors.Is(msg.err, context.Canceled):
		// quitting
		return nil
	case apierrors.IsUnrecognized(msg.err):
		if !m.cfg.SurfaceUnrecognized {
			return m.setNotice(fmt.Sprintf("Reply to message #%d had neither a reply nor an error", msg.exchange))
		}
		m.transcript.Append(models.Entry{Speaker: models.SpeakerError, Text: msg.err.Error(), Exchange: msg.exchange})
	default:
		m.transcript.Append(models.Entry{Speaker: models.SpeakerError, Text: msg.err.Error(), Exchange: msg.exchange})
	}

	m.refresh()
	return nil
}

func (m *Model) setNotice(text string) tea.Cmd {
	m.noticeID++
	m.notice = text
	id := m.noticeID
	return tea.Tick(noticeDuration, func(time.Time) tea.Msg {
		return noticeClearMsg{id: id}
	})
}

func (m *Model) copyLastReply() tea.Cmd {
	entry, ok := m.transcript.Last(models.SpeakerAssistant)
	if !ok {
		return m.setNotice("Nothing to copy yet")
	}
	if err := m.copyFn(entry.Text); err != nil {
		return m.setNotice("Copy failed: " + err.Error())
	}
	return m.setNotice("Copied last reply to clipboard")
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	m.cancel()
	return m, tea.Quit
}

func isExitWord(input string) bool {
	switch input {
	case "/exit", "/quit":
		return true
	}
	return false
}

// animationTick returns a command that sends animation tick messages
func animationTick() tea.Cmd {
	return tea.Tick(time.Millisecond*80, func(t time.Time) tea.Msg {
		return animationTickMsg(t)
	})
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 2
		padding := 2

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}
		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.refresh()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m.quit()

		case "ctrl+y":
			return m, m.copyLastReply()

		case "enter":
			input := strings.TrimSpace(m.textarea.Value())
			if isExitWord(input) {
				return m.quit()
			}
			if input == "" {
				return m, nil
			}

			startAnimation := m.inFlight == 0
			cmds = append(cmds, m.Submit())
			if startAnimation {
				m.animationFrame = 0
				cmds = append(cmds, m.spinner.Tick, animationTick())
			}
			return m, tea.Batch(cmds...)
		}

	case exchangeResultMsg:
		cmds = append(cmds, m.resolve(msg))

	case noticeClearMsg:
		if msg.id == m.noticeID {
			m.notice = ""
		}

	case spinner.TickMsg:
		if m.inFlight > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case animationTickMsg:
		if m.inFlight > 0 {
			m.animationFrame++
			cmds = append(cmds, animationTick())
		}
	}

	// Only KeyMsg reaches the textarea to prevent escape sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("✦ recallchat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.client.Endpoint()),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	var messagesContent string
	if m.transcript.Len() == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	inputContent := lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render("You"),
		m.textarea.View(),
	)
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusLine(contentWidth))
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when the transcript is empty
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeTitleStyle.Width(width).Render("Welcome to recallchat"),
		"",
		welcomeStyle.Width(width).Render("Type a message below and press Enter"),
		"",
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusLine shows pending exchanges or the current notice
func (m Model) renderStatusLine(width int) string {
	switch {
	case m.notice != "":
		return noticeStyle.Width(width).Render(m.notice)
	case m.inFlight > 0:
		return m.renderLoadingAnimation()
	default:
		return ""
	}
}

// renderLoadingAnimation renders a colorful animated waiting indicator
func (m Model) renderLoadingAnimation() string {
	barChars := []string{"█", "█", "█", "█", "▓", "▒", "░"}
	frame := m.animationFrame

	var bar strings.Builder
	for i := 0; i < 12; i++ {
		colorIdx := (i + frame) % len(gradientColors)
		charIdx := (i + frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	label := "Waiting for a reply"
	if m.inFlight > 1 {
		label = fmt.Sprintf("Waiting for %d replies", m.inFlight)
	}

	return fmt.Sprintf("%s %s %s", m.spinner.View(), bar.String(),
		lipgloss.NewStyle().Foreground(colorText).Render(label))
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Ctrl+Y", "Copy reply"},
		{"Esc", "Quit"},
	}

	items := make([]string, 0, len(shortcuts))
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  │  "))
}

// refresh re-renders the transcript into the viewport and scrolls to the end
func (m *Model) refresh() {
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	opts := render.OptionsFromConfig(m.cfg.Markdown).WithWidth(bubbleWidth - 4)

	var content strings.Builder
	for i, e := range m.transcript.Entries() {
		if i > 0 {
			content.WriteString("\n")
		}

		switch e.Speaker {
		case models.SpeakerUser:
			content.WriteString(userLabelStyle.Render("⬤ " + e.Speaker.String()))
			content.WriteString("\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(e.Text))
		case models.SpeakerAssistant:
			text := e.Text
			if m.cfg.Markdown.Enabled {
				text = render.Reply(text, opts)
			}
			content.WriteString(assistantLabelStyle.Render("✦ " + e.Speaker.String()))
			content.WriteString("\n")
			content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(text))
		default:
			content.WriteString(errorLabelStyle.Render("✗ " + e.Speaker.String()))
			content.WriteString("\n")
			content.WriteString(errorBubbleStyle.Width(bubbleWidth).Render(e.Text))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
	m.viewport.GotoBottom()
}

// RunChat starts the chat TUI
func RunChat(client api.ChatClientInterface, cfg config.Config) error {
	render.UsePalette(cfg.TUITheme)
	UpdateTheme()

	m := NewChatModel(client, cfg)
	defer m.cancel()

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
