package commands

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"golang.org/x/term"

	"github.com/diogo/recallchat/internal/api"
	"github.com/diogo/recallchat/internal/config"
	"github.com/diogo/recallchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(client api.ChatClientInterface, cfg config.Config) error
	RunConfig() error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// NewClient builds the exchange client for an endpoint.
	NewClient func(endpoint string, cfg config.Config, logger *slog.Logger) (api.ChatClientInterface, error)

	// LoadConfig reads the user configuration.
	LoadConfig func() (config.Config, error)

	// TUI is the terminal user interface.
	TUI TUIInterface

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether a prompt is being piped in.
	StdinPiped func() bool
	// StdoutTTY reports whether output goes to a terminal.
	StdoutTTY func() bool
	// TerminalWidth returns the width used for rendering.
	TerminalWidth func() int

	// Copy writes text to the system clipboard.
	Copy func(text string) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(client api.ChatClientInterface, cfg config.Config) error {
	return tui.RunChat(client, cfg)
}

func (d *DefaultTUI) RunConfig() error {
	return tui.RunConfig()
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		NewClient:     newChatClient,
		LoadConfig:    config.LoadConfig,
		TUI:           &DefaultTUI{},
		Stdin:         os.Stdin,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		StdinPiped:    stdinPiped,
		StdoutTTY:     isStdoutTTY,
		TerminalWidth: getTerminalWidth,
		Copy:          clipboard.WriteAll,
	}
}

func newChatClient(endpoint string, cfg config.Config, logger *slog.Logger) (api.ChatClientInterface, error) {
	return api.NewChatClient(endpoint,
		api.WithTimeout(time.Duration(cfg.TimeoutSeconds)*time.Second),
		api.WithLogger(logger),
	)
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
