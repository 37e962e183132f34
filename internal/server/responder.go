package server

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// Roles used in a completion prompt
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// PromptMessage is one message of a completion prompt.
type PromptMessage struct {
	Role    string
	Content string
}

// Responder produces the assistant's reply to a prompt.
type Responder interface {
	Respond(ctx context.Context, prompt []PromptMessage) (string, error)
}

// ResponderFunc adapts a function to Responder.
type ResponderFunc func(ctx context.Context, prompt []PromptMessage) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, prompt []PromptMessage) (string, error) {
	return f(ctx, prompt)
}

// EchoResponder answers without a model. Used for offline development.
type EchoResponder struct{}

func (EchoResponder) Respond(_ context.Context, prompt []PromptMessage) (string, error) {
	var recalled, said string
	for _, m := range prompt {
		switch m.Role {
		case RoleSystem:
			recalled = strings.TrimPrefix(m.Content, recalledPrefix)
		case RoleUser:
			said = m.Content
		}
	}
	if said == "" {
		return "", fmt.Errorf("prompt has no user message")
	}
	if recalled != "" && recalled != said {
		return fmt.Sprintf("You said: %s (I remember: %s)", said, recalled), nil
	}
	return "You said: " + said, nil
}

// OpenAIResponder asks an OpenAI-compatible chat completions API.
type OpenAIResponder struct {
	client openai.Client
	model  string
}

// NewOpenAIResponder creates a responder for model. baseURL may be empty.
func NewOpenAIResponder(apiKey, model, baseURL string, extra ...option.RequestOption) *OpenAIResponder {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	opts = append(opts, extra...)

	return &OpenAIResponder{
		client: openai.NewClient(opts...),
		model:  model,
	}
}

func (r *OpenAIResponder) Respond(ctx context.Context, prompt []PromptMessage) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(prompt))
	for _, m := range prompt {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := r.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(r.model),
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
