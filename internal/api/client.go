package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	"github.com/diogo/recallchat/internal/config"
)

// HTTPDoer is the part of the transport the client needs.
// tls_client.HttpClient satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChatClientInterface is the exchange contract used by the TUI and commands
type ChatClientInterface interface {
	Send(ctx context.Context, message string) (string, error)
	Endpoint() string
	Close()
}

// ChatClient performs request/response exchanges against the chat endpoint
type ChatClient struct {
	httpClient HTTPDoer
	endpoint   string
	chatURL    string
	timeout    time.Duration
	logger     *slog.Logger

	exchanges atomic.Uint64
	mu        sync.RWMutex
	closed    bool
}

// Ensure ChatClient implements ChatClientInterface
var _ ChatClientInterface = (*ChatClient)(nil)

// ClientOption is a function that configures the client
type ClientOption func(*ChatClient)

// WithHTTPClient replaces the transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *ChatClient) {
		c.httpClient = doer
	}
}

// WithTimeout bounds each exchange. Zero disables the bound.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *ChatClient) {
		c.timeout = timeout
	}
}

// WithLogger sets the logger used for exchange diagnostics
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *ChatClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewChatClient creates a client bound to the given base address
func NewChatClient(endpoint string, opts ...ClientOption) (*ChatClient, error) {
	if err := config.ValidateEndpoint(endpoint); err != nil {
		return nil, err
	}

	client := &ChatClient{
		endpoint: endpoint,
		chatURL:  config.ChatURL(endpoint),
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout / time.Second)),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Endpoint returns the configured base address
func (c *ChatClient) Endpoint() string {
	return c.endpoint
}

// ChatURL returns the full address of the exchange
func (c *ChatClient) ChatURL() string {
	return c.chatURL
}

// Exchanges returns the number of exchanges issued so far
func (c *ChatClient) Exchanges() uint64 {
	return c.exchanges.Load()
}

// IsClosed returns whether the client is closed
func (c *ChatClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Close releases idle connections. Exchanges issued afterwards fail.
func (c *ChatClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if closer, ok := c.httpClient.(interface{ CloseIdleConnections() }); ok {
		closer.CloseIdleConnections()
	}
}
