// Package config handles configuration for recallchat.
package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/diogo/recallchat/internal/models"
)

// MarkdownConfig configures markdown rendering of assistant replies
type MarkdownConfig struct {
	Enabled          bool   `json:"enabled"`            // Render replies as markdown
	Style            string `json:"style"`              // "dark", "light", "dracula", "notty", "ascii"
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	// Endpoint is the base address of the chat backend. The exchange path
	// is fixed and appended to it.
	Endpoint string `json:"endpoint"`
	// TimeoutSeconds bounds a single exchange. Zero means no timeout.
	TimeoutSeconds int `json:"timeout_seconds"`
	// Verbose enables debug logging to the log file.
	Verbose         bool `json:"verbose"`
	CopyToClipboard bool `json:"copy_to_clipboard"`
	// SurfaceUnrecognized turns a response carrying neither reply nor error
	// into an Error entry instead of dropping it.
	SurfaceUnrecognized bool           `json:"surface_unrecognized"`
	TUITheme            string         `json:"tui_theme,omitempty"`
	Markdown            MarkdownConfig `json:"markdown,omitempty"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Enabled:          true,
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Endpoint:            models.DefaultEndpoint,
		TimeoutSeconds:      0,
		Verbose:             false,
		CopyToClipboard:     false,
		SurfaceUnrecognized: false,
		TUITheme:            "tokyonight",
		Markdown:            DefaultMarkdownConfig(),
	}
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	return filepath.Join(home, ".recallchat"), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "config.json"), nil
}

// GetLogPath returns the path to the debug log file
func GetLogPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "recallchat.log"), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil // Use defaults if config doesn't exist
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	if cfg.Endpoint == "" {
		cfg.Endpoint = models.DefaultEndpoint
	}

	return cfg, nil
}

// SaveConfig saves the configuration to disk
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, "config.json")

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ValidateEndpoint checks that endpoint is an absolute http(s) address
func ValidateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid endpoint %q: missing host", endpoint)
	}
	return nil
}

// ChatURL joins the configured base address with the fixed chat path
func ChatURL(endpoint string) string {
	return strings.TrimRight(endpoint, "/") + models.PathChat
}

// AvailableMarkdownStyles returns the glamour styles offered in the config menu
func AvailableMarkdownStyles() []string {
	return []string{
		"dark",
		"light",
		"dracula",
		"notty",
		"ascii",
	}
}
