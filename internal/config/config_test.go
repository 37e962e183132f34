package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Endpoint != "http://127.0.0.1:5000" {
		t.Errorf("Expected default endpoint 'http://127.0.0.1:5000', got '%s'", cfg.Endpoint)
	}
	if cfg.TimeoutSeconds != 0 {
		t.Errorf("Expected no timeout by default, got %d", cfg.TimeoutSeconds)
	}
	if cfg.SurfaceUnrecognized {
		t.Error("Expected SurfaceUnrecognized to be false")
	}
	if !cfg.Markdown.Enabled {
		t.Error("Expected markdown rendering to be enabled")
	}
	if cfg.TUITheme != "tokyonight" {
		t.Errorf("Expected TUITheme 'tokyonight', got '%s'", cfg.TUITheme)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() returned error: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath() returned relative path: %s", path)
	}
	if filepath.Base(filepath.Dir(path)) != ".recallchat" {
		t.Errorf("config should live under .recallchat, got %s", path)
	}

	logPath, err := GetLogPath()
	if err != nil {
		t.Fatalf("GetLogPath() returned error: %v", err)
	}
	if filepath.Dir(logPath) != filepath.Dir(path) {
		t.Errorf("log and config should share a directory: %s vs %s", logPath, path)
	}
}

func TestLoadConfig_FileNotExists(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("missing file should yield defaults, got %+v", cfg)
	}
}

func TestSaveConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg := DefaultConfig()
	cfg.Endpoint = "http://chat.internal:8080"
	cfg.Verbose = true
	cfg.SurfaceUnrecognized = true

	if err := SaveConfig(cfg); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	configPath := filepath.Join(tmpDir, ".recallchat", "config.json")
	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("Failed to read config file: %v", err)
	}

	var saved Config
	if err := json.Unmarshal(data, &saved); err != nil {
		t.Fatalf("Failed to parse saved config: %v", err)
	}
	if saved != cfg {
		t.Errorf("saved config = %+v, want %+v", saved, cfg)
	}

	info, err := os.Stat(configPath)
	if err != nil {
		t.Fatalf("Failed to stat config file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("File permissions = %o, want 600", perm)
	}
}

func TestLoadConfig_EmptyEndpointFallsBack(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ".recallchat")
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"endpoint":"","verbose":true}`), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if cfg.Endpoint != DefaultConfig().Endpoint {
		t.Errorf("Endpoint = %q, want default", cfg.Endpoint)
	}
	if !cfg.Verbose {
		t.Error("Verbose should be loaded from file")
	}
}

func TestLoadConfig_InvalidJSON(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ".recallchat")
	_ = os.MkdirAll(configDir, 0o700)
	if err := os.WriteFile(filepath.Join(configDir, "config.json"), []byte(`{"invalid": json content`), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadConfig()
	if err == nil {
		t.Error("LoadConfig() with invalid JSON should return error")
	}
	if cfg.Endpoint != DefaultConfig().Endpoint {
		t.Errorf("Endpoint = %s, want default", cfg.Endpoint)
	}
}

func TestValidateEndpoint(t *testing.T) {
	tests := []struct {
		endpoint string
		wantErr  bool
	}{
		{"http://127.0.0.1:5000", false},
		{"https://chat.example.com/api", false},
		{"ftp://example.com", true},
		{"127.0.0.1:5000", true},
		{"http://", true},
		{"://bad", true},
	}

	for _, tt := range tests {
		t.Run(tt.endpoint, func(t *testing.T) {
			err := ValidateEndpoint(tt.endpoint)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEndpoint(%q) error = %v, wantErr %v", tt.endpoint, err, tt.wantErr)
			}
		})
	}
}

func TestChatURL(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"http://127.0.0.1:5000", "http://127.0.0.1:5000/chat"},
		{"http://127.0.0.1:5000/", "http://127.0.0.1:5000/chat"},
		{"https://example.com/api", "https://example.com/api/chat"},
	}

	for _, tt := range tests {
		if got := ChatURL(tt.endpoint); got != tt.want {
			t.Errorf("ChatURL(%q) = %q, want %q", tt.endpoint, got, tt.want)
		}
	}
}
