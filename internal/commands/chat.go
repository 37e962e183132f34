package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewChatCmd creates the interactive chat command
func NewChatCmd(deps *Dependencies) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Messages may be sent while earlier replies are still pending; every reply is
added to the log when it arrives. Type '/exit', '/quit', or press Esc to end
the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(deps, endpointFlag(cmd))
		},
	}
}

func runChat(deps *Dependencies, endpoint string) error {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v (using defaults)\n", err)
	}
	cfg.Endpoint = resolveEndpoint(endpoint, cfg.Endpoint)

	logger, closeLog, err := newTUILogger(cfg)
	if err != nil {
		return err
	}
	defer closeLog()

	client, err := deps.NewClient(cfg.Endpoint, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	logger.Info("chat session started", "endpoint", client.Endpoint())
	return deps.TUI.RunChat(client, cfg)
}
