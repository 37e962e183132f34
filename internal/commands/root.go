// Package commands provides CLI commands for recallchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// NewRootCmd builds the command tree around deps
func NewRootCmd(deps *Dependencies) *cobra.Command {
	var (
		fileFlag string
		copyFlag bool
	)

	rootCmd := &cobra.Command{
		Use:   "recallchat [prompt]",
		Short: "Terminal chat client for a memory-backed chat backend",
		Long: `recallchat sends messages to a chat backend over HTTP and shows the
replies. The backend remembers what you said and recalls it in later answers.

Examples:
  recallchat chat                       Start interactive chat
  recallchat serve                      Run the chat backend
  recallchat config                     Configure settings
  recallchat "What did I tell you?"     Send a single message
  recallchat -f prompt.md               Read the message from a file
  cat prompt.md | recallchat            Read the message from stdin`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(deps.Stdout, "recallchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			opts := queryOptions{
				endpoint: endpointFlag(cmd),
				copy:     copyFlag,
			}

			if fileFlag != "" {
				data, err := os.ReadFile(fileFlag)
				if err != nil {
					return fmt.Errorf("failed to read file: %w", err)
				}
				return runQuery(cmd.Context(), deps, opts, string(data))
			}

			if deps.StdinPiped() {
				data, err := io.ReadAll(deps.Stdin)
				if err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
				return runQuery(cmd.Context(), deps, opts, string(data))
			}

			if len(args) > 0 {
				return runQuery(cmd.Context(), deps, opts, args[0])
			}

			return cmd.Help()
		},
	}

	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().String("endpoint", "", "Chat backend base address (default from config)")
	rootCmd.Flags().StringVarP(&fileFlag, "file", "f", "", "Read the message from a file")
	rootCmd.Flags().BoolVar(&copyFlag, "copy", false, "Copy the reply to the clipboard")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(NewChatCmd(deps))
	rootCmd.AddCommand(NewConfigCmd(deps))
	rootCmd.AddCommand(NewServeCmd(deps))

	return rootCmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Error"))
		os.Exit(1)
	}
}

func endpointFlag(cmd *cobra.Command) string {
	v, _ := cmd.Flags().GetString("endpoint")
	return v
}

// resolveEndpoint picks the flag, then RECALLCHAT_ENDPOINT, then the config
func resolveEndpoint(flag string, cfg string) string {
	if flag != "" {
		return flag
	}
	if env := os.Getenv("RECALLCHAT_ENDPOINT"); env != "" {
		return env
	}
	return cfg
}
