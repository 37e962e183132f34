package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/diogo/recallchat/internal/config"
	apierrors "github.com/diogo/recallchat/internal/errors"
	"github.com/diogo/recallchat/internal/render"
	"github.com/diogo/recallchat/internal/tui"
)

// Gradient colors for animation
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#ff6b6b"), // Red
	lipgloss.Color("#feca57"), // Yellow
	lipgloss.Color("#48dbfb"), // Cyan
	lipgloss.Color("#ff9ff3"), // Pink
	lipgloss.Color("#54a0ff"), // Blue
	lipgloss.Color("#5f27cd"), // Purple
	lipgloss.Color("#00d2d3"), // Teal
	lipgloss.Color("#1dd1a1"), // Green
}

var (
	colorText    = lipgloss.Color("#c0caf5")
	colorSuccess = lipgloss.Color("#9ece6a")
	colorWarning = lipgloss.Color("#e0af68")
	colorError   = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorSuccess).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorSuccess).
				Foreground(colorText).
				Padding(0, 1).
				MarginBottom(1)
)

// spinner handles the animated waiting indicator
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
	barChars := []string{"█", "█", "█", "▓", "▒", "░"}

	spinnerChar := lipgloss.NewStyle().
		Foreground(gradientColors[s.frame%len(gradientColors)]).
		Bold(true).
		Render(chars[s.frame%len(chars)])

	var bar strings.Builder
	for i := 0; i < 12; i++ {
		colorIdx := (i + s.frame) % len(gradientColors)
		charIdx := (i + s.frame/2) % len(barChars)
		bar.WriteString(lipgloss.NewStyle().Foreground(gradientColors[colorIdx]).Render(barChars[charIdx]))
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
	fmt.Fprintf(s.out, "\r\033[K%s %s %s", spinnerChar, bar.String(), msg)
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// halt stops the animation and waits for the line to be cleared
func (s *spinner) halt() {
	s.stopOnce()
	<-s.done
}

type queryOptions struct {
	endpoint string
	copy     bool
}

// runQuery sends a single message and prints the reply
func runQuery(ctx context.Context, deps *Dependencies, opts queryOptions, prompt string) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return apierrors.ErrEmptyMessage
	}

	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v (using defaults)\n", err)
	}
	endpoint := resolveEndpoint(opts.endpoint, cfg.Endpoint)

	logger := newCLILogger(cfg, deps.Stderr)

	client, err := deps.NewClient(endpoint, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	tty := deps.StdoutTTY()

	var spin *spinner
	if tty && !cfg.Verbose {
		spin = newSpinner(deps.Stderr, "Waiting for a reply")
		spin.start()
	}

	start := time.Now()
	reply, err := client.Send(ctx, prompt)
	if spin != nil {
		spin.halt()
	}
	logger.Debug("exchange finished", "endpoint", client.Endpoint(), "duration", time.Since(start).Round(time.Millisecond))

	if err != nil {
		if apierrors.IsUnrecognized(err) && !cfg.SurfaceUnrecognized {
			warn := lipgloss.NewStyle().Foreground(colorWarning).Render("⚠ The backend answered without a reply or an error")
			fmt.Fprintln(deps.Stderr, warn)
			return nil
		}
		return err
	}

	if tty && cfg.Markdown.Enabled {
		printReply(deps, cfg.Markdown, reply)
	} else {
		fmt.Fprintln(deps.Stdout, reply)
	}

	if opts.copy || cfg.CopyToClipboard {
		if err := deps.Copy(reply); err != nil {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Stderr, lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard"))
		}
	}

	return nil
}

// printReply renders the reply in a bubble like the chat TUI
func printReply(deps *Dependencies, md config.MarkdownConfig, reply string) {
	bubbleWidth := deps.TerminalWidth() - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}

	opts := render.OptionsFromConfig(md).WithWidth(bubbleWidth - 4)

	fmt.Fprintln(deps.Stdout, assistantLabelStyle.Render("✦ Assistant"))
	fmt.Fprintln(deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(render.Reply(reply, opts)))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}
	return tui.FormatError(fmt.Errorf("%s: %w", context, err))
}
