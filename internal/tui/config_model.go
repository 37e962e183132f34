package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/recallchat/internal/config"
	"github.com/diogo/recallchat/internal/render"
)

// settingKind distinguishes on/off settings from pick-one lists
type settingKind int

const (
	settingToggle settingKind = iota
	settingChoice
	settingExit
)

// setting is one row of the config menu
type setting struct {
	label string
	kind  settingKind

	// toggle settings
	flag func(*config.Config) *bool

	// choice settings
	choices func() []string
	value   func(*config.Config) *string
}

var settings = []setting{
	{label: "TUI Theme", kind: settingChoice, choices: render.PaletteNames,
		value: func(c *config.Config) *string { return &c.TUITheme }},
	{label: "Markdown Style", kind: settingChoice, choices: config.AvailableMarkdownStyles,
		value: func(c *config.Config) *string { return &c.Markdown.Style }},
	{label: "Render Markdown", kind: settingToggle,
		flag: func(c *config.Config) *bool { return &c.Markdown.Enabled }},
	{label: "Verbose Logging", kind: settingToggle,
		flag: func(c *config.Config) *bool { return &c.Verbose }},
	{label: "Copy to Clipboard", kind: settingToggle,
		flag: func(c *config.Config) *bool { return &c.CopyToClipboard }},
	{label: "Show Unrecognized", kind: settingToggle,
		flag: func(c *config.Config) *bool { return &c.SurfaceUnrecognized }},
	{label: "Exit", kind: settingExit},
}

// feedbackClearMsg is sent to clear feedback messages
type feedbackClearMsg struct{}

// ConfigModel is the interactive settings menu
type ConfigModel struct {
	config     config.Config
	configPath string
	save       func(config.Config) error

	cursor int
	// choosing is the index of the open choice list, or -1
	choosing     int
	choiceCursor int

	feedback        string
	feedbackTimeout time.Duration

	width int
	ready bool
}

// NewConfigModel creates a settings menu for cfg
func NewConfigModel(cfg config.Config, configPath string) ConfigModel {
	render.UsePalette(cfg.TUITheme)
	UpdateTheme()

	return ConfigModel{
		config:          cfg,
		configPath:      configPath,
		save:            config.SaveConfig,
		choosing:        -1,
		feedbackTimeout: 2 * time.Second,
	}
}

// Config returns the settings as currently edited
func (m ConfigModel) Config() config.Config {
	return m.config
}

// Init initializes the model
func (m ConfigModel) Init() tea.Cmd {
	return nil
}

func clearFeedback(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return feedbackClearMsg{}
	})
}

// Update handles messages and updates the model
func (m ConfigModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.ready = true

	case feedbackClearMsg:
		m.feedback = ""

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			if m.choosing >= 0 {
				m.choosing = -1
				return m, nil
			}
			return m, tea.Quit

		case "up", "k":
			m.move(-1)

		case "down", "j":
			m.move(1)

		case "enter", " ":
			return m.handleSelect()
		}
	}

	return m, nil
}

func (m *ConfigModel) move(delta int) {
	if m.choosing >= 0 {
		n := len(settings[m.choosing].choices())
		m.choiceCursor = (m.choiceCursor + delta + n) % n
		return
	}
	n := len(settings)
	m.cursor = (m.cursor + delta + n) % n
}

// handleSelect toggles a flag, opens a choice list, or applies a choice
func (m ConfigModel) handleSelect() (tea.Model, tea.Cmd) {
	if m.choosing >= 0 {
		s := settings[m.choosing]
		picked := s.choices()[m.choiceCursor]
		*s.value(&m.config) = picked
		m.choosing = -1

		if s.label == "TUI Theme" {
			render.UsePalette(picked)
			UpdateTheme()
		}
		return m, m.persist(fmt.Sprintf("%s set to %s", s.label, picked))
	}

	s := settings[m.cursor]
	switch s.kind {
	case settingExit:
		return m, tea.Quit

	case settingChoice:
		m.choosing = m.cursor
		m.choiceCursor = 0
		current := *s.value(&m.config)
		for i, c := range s.choices() {
			if c == current {
				m.choiceCursor = i
				break
			}
		}
		return m, nil

	default:
		flag := s.flag(&m.config)
		*flag = !*flag
		state := "disabled"
		if *flag {
			state = "enabled"
		}
		return m, m.persist(fmt.Sprintf("%s %s", s.label, state))
	}
}

func (m *ConfigModel) persist(success string) tea.Cmd {
	if err := m.save(m.config); err != nil {
		m.feedback = fmt.Sprintf("Error: %v", err)
	} else {
		m.feedback = success
	}
	return clearFeedback(m.feedbackTimeout)
}

// View renders the menu
func (m ConfigModel) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	contentWidth := m.width - 4
	if contentWidth < 40 {
		contentWidth = 40
	}

	sections := []string{
		configTitleStyle.Render("✦ Configuration"),
		configPanelStyle.Width(contentWidth).Render(lipgloss.JoinVertical(lipgloss.Left,
			"Config:   "+configPathStyle.Render(m.configPath),
			"Endpoint: "+configValueStyle.Render(m.config.Endpoint),
		)),
	}

	if m.choosing >= 0 {
		sections = append(sections, configPanelStyle.Width(contentWidth).Render(m.renderChoices()))
	} else {
		sections = append(sections, configPanelStyle.Width(contentWidth).Render(m.renderSettings()))
	}

	if m.feedback != "" {
		sections = append(sections, configFeedbackStyle.Render("✓ "+m.feedback))
	}

	back := "Exit"
	if m.choosing >= 0 {
		back = "Back"
	}
	bar := strings.Join([]string{
		statusKeyStyle.Render("↑↓") + statusDescStyle.Render(" Navigate"),
		statusKeyStyle.Render("Enter") + statusDescStyle.Render(" Select"),
		statusKeyStyle.Render("Esc") + statusDescStyle.Render(" "+back),
	}, "  │  ")
	sections = append(sections, statusBarStyle.Width(contentWidth).Align(lipgloss.Center).Render(bar))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ConfigModel) renderSettings() string {
	cfg := m.config
	lines := make([]string, 0, len(settings))
	for i, s := range settings {
		cursor, style := "  ", configMenuItemStyle
		if i == m.cursor {
			cursor, style = configCursorStyle.Render("▸ "), configMenuSelectedStyle
		}

		var value string
		switch s.kind {
		case settingToggle:
			value = renderBoolValue(*s.flag(&cfg))
		case settingChoice:
			value = configValueStyle.Render(*s.value(&cfg))
		}
		lines = append(lines, fmt.Sprintf("%s%-20s%s", cursor, style.Render(s.label), value))
	}
	return strings.Join(lines, "\n")
}

func (m ConfigModel) renderChoices() string {
	cfg := m.config
	s := settings[m.choosing]
	current := *s.value(&cfg)

	lines := []string{configTitleStyle.Render(s.label), ""}
	for i, c := range s.choices() {
		cursor, style := "  ", configMenuItemStyle
		if i == m.choiceCursor {
			cursor, style = configCursorStyle.Render("▸ "), configMenuSelectedStyle
		}
		line := cursor + style.Render(c)
		if c == current {
			line += configEnabledStyle.Render(" (current)")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func renderBoolValue(value bool) string {
	if value {
		return configEnabledStyle.Render("enabled")
	}
	return configDisabledStyle.Render("disabled")
}

// RunConfig starts the config TUI
func RunConfig() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		cfg = config.DefaultConfig()
	}
	path, _ := config.GetConfigPath()

	p := tea.NewProgram(
		NewConfigModel(cfg, path),
		tea.WithAltScreen(),
	)

	_, err = p.Run()
	return err
}
