package commands

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/diogo/recallchat/internal/api"
	"github.com/diogo/recallchat/internal/config"
)

// fakeTUI records what the commands hand to the TUI
type fakeTUI struct {
	mu           sync.Mutex
	chatCalled   bool
	chatEndpoint string
	chatCfg      config.Config
	configCalled bool
	chatErr      error
	configErr    error
}

func (f *fakeTUI) RunChat(client api.ChatClientInterface, cfg config.Config) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chatCalled = true
	f.chatEndpoint = client.Endpoint()
	f.chatCfg = cfg
	return f.chatErr
}

func (f *fakeTUI) RunConfig() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.configCalled = true
	return f.configErr
}

type testEnv struct {
	deps     *Dependencies
	client   *api.MockChatClient
	tui      *fakeTUI
	stdout   *bytes.Buffer
	stderr   *bytes.Buffer
	cfg      config.Config
	copied   []string
	endpoint string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("RECALLCHAT_ENDPOINT", "")

	env := &testEnv{
		client: &api.MockChatClient{Reply: "Hi there"},
		tui:    &fakeTUI{},
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		cfg:    config.DefaultConfig(),
	}
	env.deps = &Dependencies{
		NewClient: func(endpoint string, cfg config.Config, logger *slog.Logger) (api.ChatClientInterface, error) {
			env.endpoint = endpoint
			env.client.EndpointVal = endpoint
			return env.client, nil
		},
		LoadConfig:    func() (config.Config, error) { return env.cfg, nil },
		TUI:           env.tui,
		Stdin:         strings.NewReader(""),
		Stdout:        env.stdout,
		Stderr:        env.stderr,
		StdinPiped:    func() bool { return false },
		StdoutTTY:     func() bool { return false },
		TerminalWidth: func() int { return 80 },
		Copy: func(text string) error {
			env.copied = append(env.copied, text)
			return nil
		},
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.Execute()
}

var errBoom = errors.New("boom")

// safeBuffer is a bytes.Buffer guarded for writes from the spinner goroutine
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
