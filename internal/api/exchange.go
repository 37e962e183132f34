package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	http "github.com/bogdanfinn/fhttp"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/recallchat/internal/errors"
	"github.com/diogo/recallchat/internal/models"
)

// Send performs one exchange and returns the assistant's reply. The message
// is posted as typed; surrounding whitespace only decides whether it is blank.
//
// The error is one of:
//   - apierrors.ErrEmptyMessage when message is blank (no request is made)
//   - *apierrors.DomainError when the backend answered with an "error" field
//   - apierrors.ErrUnrecognizedResponse when a 2xx body has neither field
//   - *apierrors.ParseError, *apierrors.APIError or *apierrors.NetworkError otherwise
func (c *ChatClient) Send(ctx context.Context, message string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", apierrors.ErrEmptyMessage
	}

	if c.IsClosed() {
		return "", apierrors.ErrClientClosed
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(models.ChatRequest{Message: message})
	if err != nil {
		return "", fmt.Errorf("failed to build payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.chatURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		req.Header.Set(key, value)
	}
	requestID := uuid.NewString()
	req.Header.Set(models.HeaderRequestID, requestID)

	seq := c.exchanges.Add(1)
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("chat exchange failed", "exchange", seq, "request_id", requestID, "error", err)
		return "", apierrors.NewNetworkError("chat exchange", c.chatURL, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", apierrors.NewNetworkError("read response", c.chatURL, err)
	}

	c.logger.Debug("chat exchange completed",
		"exchange", seq,
		"request_id", requestID,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"bytes", len(body),
	)

	reply, err := classifyResponse(resp.StatusCode, c.chatURL, body)
	if apierrors.IsUnrecognized(err) {
		c.logger.Warn("chat response has neither reply nor error", "exchange", seq, "request_id", requestID)
	}
	return reply, err
}

// classifyResponse maps a raw response onto reply, domain error, or failure.
// A non-empty "reply" wins over "error"; an empty reply counts as absent.
func classifyResponse(status int, endpoint string, body []byte) (string, error) {
	ok := status >= 200 && status < 300

	if !gjson.ValidBytes(body) {
		if ok {
			return "", apierrors.NewParseError("response body is not valid JSON", "")
		}
		return "", apierrors.NewAPIErrorWithBody(status, endpoint, "chat exchange failed", truncate(body))
	}

	parsed := gjson.ParseBytes(body)
	if parsed.IsObject() {
		if reply := parsed.Get(PathReply); reply.Type == gjson.String && reply.String() != "" {
			return reply.String(), nil
		}
		if errField := parsed.Get(PathError); errField.Exists() && errField.Type != gjson.Null {
			return "", apierrors.NewDomainError(status, errField.String())
		}
	}

	if !ok {
		return "", apierrors.NewAPIErrorWithBody(status, endpoint, "chat exchange failed", truncate(body))
	}
	return "", apierrors.ErrUnrecognizedResponse
}

func truncate(body []byte) string {
	if len(body) > maxErrorBodySize {
		body = body[:maxErrorBodySize]
	}
	return string(body)
}
