package models

// ChatRequest is the body posted to the chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the body returned by the chat endpoint.
// Exactly one of Reply or Error is set by a well-behaved backend.
type ChatResponse struct {
	Reply string `json:"reply,omitempty"`
	Error string `json:"error,omitempty"`
}

// Wire field names, used when classifying a raw body
const (
	FieldMessage = "message"
	FieldReply   = "reply"
	FieldError   = "error"
)
