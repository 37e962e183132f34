package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diogo/recallchat/internal/config"
	"github.com/diogo/recallchat/internal/server"
)

// NewServeCmd creates the command that runs the chat backend
func NewServeCmd(deps *Dependencies) *cobra.Command {
	var (
		addr      string
		responder string
		memory    string
		envFile   string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend",
		Long: `Run the chat backend that answers POST /chat.

Configuration is read from the environment, after loading a .env file when
present:
  RECALLCHAT_ADDR       listen address (default :5000)
  RECALLCHAT_RESPONDER  openai or echo (default openai)
  OPENAI_API_KEY        required for the openai responder
  OPENAI_MODEL          completion model (default gpt-3.5-turbo)
  OPENAI_BASE_URL       OpenAI-compatible API base address
  RECALLCHAT_MEMORY     local, redis or none (default local)
  REDIS_URL             required for redis memory
  RECALLCHAT_USER_ID    memory owner (default default_user)
  LOG_LEVEL             debug, info, warn or error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var envFiles []string
			if envFile != "" {
				envFiles = append(envFiles, envFile)
			}
			cfg := config.LoadServerConfig(envFiles...)
			applyServeFlags(&cfg, addr, responder, memory)

			logger := newServerLogger(cfg.LogLevel, deps.Stderr)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, store, err := server.FromConfig(ctx, cfg, logger)
			if err != nil {
				return fmt.Errorf("configuration error: %w", err)
			}
			if store != nil {
				defer store.Close()
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides RECALLCHAT_ADDR)")
	cmd.Flags().StringVar(&responder, "responder", "", "openai or echo (overrides RECALLCHAT_RESPONDER)")
	cmd.Flags().StringVar(&memory, "memory", "", "local, redis or none (overrides RECALLCHAT_MEMORY)")
	cmd.Flags().StringVar(&envFile, "env-file", "", "Load variables from this file instead of .env")

	return cmd
}

func applyServeFlags(cfg *config.ServerConfig, addr, responder, memory string) {
	if addr != "" {
		cfg.Addr = addr
	}
	if responder != "" {
		cfg.Responder = responder
	}
	if memory != "" {
		cfg.Memory = memory
	}
}
