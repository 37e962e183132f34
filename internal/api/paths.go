// Package api provides the chat exchange client.
package api

// GJSON paths for classifying chat endpoint responses
const (
	PathReply = "reply"
	PathError = "error"
)

// maxBodySize caps how much of a response body is read
const maxBodySize = 4 << 20

// maxErrorBodySize caps the body kept on an APIError for diagnostics
const maxErrorBodySize = 4096
