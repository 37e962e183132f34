package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	http "github.com/bogdanfinn/fhttp"

	apierrors "github.com/diogo/recallchat/internal/errors"
	"github.com/diogo/recallchat/internal/models"
)

func newTestClient(t *testing.T, mock *mockHTTPClient) *ChatClient {
	t.Helper()
	client, err := NewChatClient("http://127.0.0.1:5000", WithHTTPClient(mock), WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}
	return client
}

func TestSend_RequestShape(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return jsonResponse(200, `{"reply":"hi"}`), nil
		},
	}
	client := newTestClient(t, mock)

	if _, err := client.Send(context.Background(), "  Hello  "); err != nil {
		t.Fatalf("Send failed: %v", err)
	}

	if mock.calls() != 1 {
		t.Fatalf("expected exactly one request, got %d", mock.calls())
	}
	req := mock.requests[0]
	if req.Method != http.MethodPost {
		t.Errorf("Method = %s, want POST", req.Method)
	}
	if req.URL.String() != "http://127.0.0.1:5000/chat" {
		t.Errorf("URL = %s", req.URL.String())
	}
	if ct := req.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if req.Header.Get(models.HeaderRequestID) == "" {
		t.Error("expected a request id header")
	}

	var payload models.ChatRequest
	if err := json.Unmarshal([]byte(mock.bodies[0]), &payload); err != nil {
		t.Fatalf("body is not JSON: %v (%s)", err, mock.bodies[0])
	}
	if payload.Message != "  Hello  " {
		t.Errorf("message = %q, want it posted as typed", payload.Message)
	}
	if client.Exchanges() != 1 {
		t.Errorf("Exchanges() = %d, want 1", client.Exchanges())
	}
}

func TestSend_EmptyMessageIssuesNoRequest(t *testing.T) {
	for _, input := range []string{"", " ", "\t\n  "} {
		mock := &mockHTTPClient{}
		client := newTestClient(t, mock)

		_, err := client.Send(context.Background(), input)
		if !errors.Is(err, apierrors.ErrEmptyMessage) {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", input, err)
		}
		if mock.calls() != 0 {
			t.Errorf("Send(%q) issued %d requests, want 0", input, mock.calls())
		}
	}
}

func TestSend_Classification(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		wantReply string
		check     func(t *testing.T, err error)
	}{
		{
			name:      "reply",
			status:    200,
			body:      `{"reply": "hi"}`,
			wantReply: "hi",
		},
		{
			name:   "empty reply counts as absent",
			status: 200,
			body:   `{"reply": ""}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsUnrecognized(err) {
					t.Errorf("want unrecognized, got %v", err)
				}
			},
		},
		{
			name:   "empty reply yields to error",
			status: 200,
			body:   `{"reply": "", "error": "x"}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsDomainError(err) || err.Error() != "x" {
					t.Errorf("want domain error \"x\", got %v", err)
				}
			},
		},
		{
			name:      "reply wins over error",
			status:    200,
			body:      `{"reply": "ok", "error": "ignored"}`,
			wantReply: "ok",
		},
		{
			name:   "domain error on 200",
			status: 200,
			body:   `{"error": "bad input"}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsDomainError(err) || err.Error() != "bad input" {
					t.Errorf("want domain error \"bad input\", got %v", err)
				}
			},
		},
		{
			name:   "domain error on 400",
			status: 400,
			body:   `{"error": "message is required"}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsDomainError(err) || err.Error() != "message is required" {
					t.Errorf("want domain error, got %v", err)
				}
				if apierrors.GetHTTPStatus(err) != 400 {
					t.Errorf("status = %d, want 400", apierrors.GetHTTPStatus(err))
				}
			},
		},
		{
			name:   "domain error on 500",
			status: 500,
			body:   `{"error": "completion failed: quota"}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsDomainError(err) {
					t.Errorf("want domain error, got %v", err)
				}
			},
		},
		{
			name:   "neither field",
			status: 200,
			body:   `{}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsUnrecognized(err) {
					t.Errorf("want unrecognized, got %v", err)
				}
			},
		},
		{
			name:   "null fields",
			status: 200,
			body:   `{"reply": null, "error": null}`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsUnrecognized(err) {
					t.Errorf("want unrecognized, got %v", err)
				}
			},
		},
		{
			name:   "json array",
			status: 200,
			body:   `["hi"]`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsUnrecognized(err) {
					t.Errorf("want unrecognized, got %v", err)
				}
			},
		},
		{
			name:   "non-json on 200",
			status: 200,
			body:   `<html>oops</html>`,
			check: func(t *testing.T, err error) {
				if !apierrors.IsParseError(err) {
					t.Errorf("want parse error, got %v", err)
				}
			},
		},
		{
			name:   "non-json on 502",
			status: 502,
			body:   `Bad Gateway`,
			check: func(t *testing.T, err error) {
				if apierrors.GetHTTPStatus(err) != 502 {
					t.Errorf("want status 502, got %v", err)
				}
				if apierrors.GetResponseBody(err) != "Bad Gateway" {
					t.Errorf("body = %q", apierrors.GetResponseBody(err))
				}
			},
		},
		{
			name:   "json without fields on 503",
			status: 503,
			body:   `{"detail": "down"}`,
			check: func(t *testing.T, err error) {
				if apierrors.IsUnrecognized(err) {
					t.Error("non-2xx must not be reported as unrecognized")
				}
				if apierrors.GetHTTPStatus(err) != 503 {
					t.Errorf("want status 503, got %v", err)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{
				doFunc: func(req *http.Request) (*http.Response, error) {
					return jsonResponse(tt.status, tt.body), nil
				},
			}
			client := newTestClient(t, mock)

			reply, err := client.Send(context.Background(), "Hello")
			if tt.check == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if reply != tt.wantReply {
					t.Errorf("reply = %q, want %q", reply, tt.wantReply)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected an error, got reply %q", reply)
			}
			if reply != "" {
				t.Errorf("reply must be empty on error, got %q", reply)
			}
			tt.check(t, err)
		})
	}
}

func TestSend_TransportError(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("dial tcp 127.0.0.1:5000: connect: connection refused")
		},
	}
	client := newTestClient(t, mock)

	_, err := client.Send(context.Background(), "Hello")
	if !apierrors.IsNetworkError(err) {
		t.Fatalf("want network error, got %v", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("error should describe the failure, got %q", err.Error())
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("connection reset") }

func TestSend_BodyReadError(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 200, Body: io.NopCloser(failingReader{})}, nil
		},
	}
	client := newTestClient(t, mock)

	_, err := client.Send(context.Background(), "Hello")
	if !apierrors.IsNetworkError(err) {
		t.Errorf("want network error, got %v", err)
	}
}

func TestSend_ConcurrentExchanges(t *testing.T) {
	mock := &mockHTTPClient{}
	// Do records the body before calling doFunc, so look it up by request.
	mock.doFunc = func(req *http.Request) (*http.Response, error) {
		mock.mu.Lock()
		var body string
		for i, r := range mock.requests {
			if r == req {
				body = mock.bodies[i]
			}
		}
		mock.mu.Unlock()
		var payload models.ChatRequest
		_ = json.Unmarshal([]byte(body), &payload)
		return jsonResponse(200, fmt.Sprintf(`{"reply":"echo %s"}`, payload.Message)), nil
	}
	client := newTestClient(t, mock)

	const n = 20
	var wg sync.WaitGroup
	replies := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			replies[i], errs[i] = client.Send(context.Background(), fmt.Sprintf("m%d", i))
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil {
			t.Errorf("exchange %d failed: %v", i, errs[i])
			continue
		}
		if want := fmt.Sprintf("echo m%d", i); replies[i] != want {
			t.Errorf("exchange %d reply = %q, want %q", i, replies[i], want)
		}
	}
	if client.Exchanges() != n {
		t.Errorf("Exchanges() = %d, want %d", client.Exchanges(), n)
	}
}

func TestSend_Timeout(t *testing.T) {
	mock := &mockHTTPClient{
		doFunc: func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			return nil, req.Context().Err()
		},
	}
	client, _ := NewChatClient("http://127.0.0.1:5000",
		WithHTTPClient(mock), WithLogger(discardLogger()), WithTimeout(20*time.Millisecond))

	_, err := client.Send(context.Background(), "Hello")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("want deadline exceeded, got %v", err)
	}
}

func TestSend_RealTransport(t *testing.T) {
	server := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if r.URL.Path != "/chat" || r.Method != nethttp.MethodPost {
			nethttp.NotFound(w, r)
			return
		}
		var req models.ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(nethttp.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(models.ChatResponse{Error: "bad json"})
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.ChatResponse{Reply: "Hi there"})
	}))
	defer server.Close()

	client, err := NewChatClient(server.URL, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}
	defer client.Close()

	reply, err := client.Send(context.Background(), "Hello")
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if reply != "Hi there" {
		t.Errorf("reply = %q, want \"Hi there\"", reply)
	}
}

func TestSend_ConnectionRefused(t *testing.T) {
	server := httptest.NewServer(nethttp.NotFoundHandler())
	addr := server.URL
	server.Close()

	client, err := NewChatClient(addr, WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("NewChatClient failed: %v", err)
	}

	_, err = client.Send(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected a transport failure")
	}
	if !apierrors.IsNetworkError(err) {
		t.Errorf("want network error, got %T: %v", err, err)
	}
	if err.Error() == "" {
		t.Error("failure description must not be empty")
	}
}
