package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/diogo/recallchat/internal/config"
	"github.com/diogo/recallchat/internal/memory"
)

// FromConfig builds a Server, its Responder and its memory Store from cfg.
// The returned Store may be nil when memory is disabled; the caller closes it.
func FromConfig(ctx context.Context, cfg config.ServerConfig, logger *slog.Logger) (*Server, memory.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	var responder Responder
	switch cfg.Responder {
	case config.ResponderEcho:
		responder = EchoResponder{}
	default:
		responder = NewOpenAIResponder(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("chat backend configured",
		"responder", cfg.Responder,
		"model", cfg.OpenAIModel,
		"memory", cfg.Memory,
		"user_id", cfg.UserID,
	)

	srv := NewServer(cfg.Addr, responder, store, WithUserID(cfg.UserID), WithLogger(logger))
	return srv, store, nil
}

func openStore(ctx context.Context, cfg config.ServerConfig) (memory.Store, error) {
	switch cfg.Memory {
	case config.MemoryNone:
		return nil, nil
	case config.MemoryRedis:
		store, err := memory.NewRedisStore(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("redis memory unavailable: %w", err)
		}
		return store, nil
	default:
		return memory.NewLocalStore(), nil
	}
}
