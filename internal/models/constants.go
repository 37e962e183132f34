// Package models contains the chat transcript types and the wire payloads
// exchanged with the chat endpoint.
package models

// Endpoint defaults for the chat backend
const (
	// DefaultEndpoint is the base address used when none is configured.
	DefaultEndpoint = "http://127.0.0.1:5000"

	// PathChat is the fixed path of the chat exchange, appended to the base address.
	PathChat = "/chat"

	// PathHealth is the liveness path served by the backend.
	PathHealth = "/health"
)

// Header names used on the wire
const (
	HeaderContentType = "Content-Type"
	HeaderRequestID   = "X-Request-Id"
	ContentTypeJSON   = "application/json"
)

// DefaultHeaders returns the headers sent with every chat exchange
func DefaultHeaders() map[string]string {
	return map[string]string{
		HeaderContentType: ContentTypeJSON,
		"Accept":          ContentTypeJSON,
		"User-Agent":      "recallchat/0.1",
	}
}
