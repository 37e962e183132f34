package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Responder kinds for the chat backend
const (
	ResponderOpenAI = "openai"
	ResponderEcho   = "echo"
)

// Memory backends for the chat backend
const (
	MemoryLocal = "local"
	MemoryRedis = "redis"
	MemoryNone  = "none"
)

// ServerConfig configures the chat backend started by "recallchat serve"
type ServerConfig struct {
	Addr      string
	Responder string
	LogLevel  string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	Memory   string
	RedisURL string
	UserID   string
}

// LoadServerConfig reads the backend configuration from the environment.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win.
func LoadServerConfig(envFiles ...string) ServerConfig {
	if len(envFiles) == 0 {
		_ = godotenv.Load()
	} else {
		for _, f := range envFiles {
			if _, err := os.Stat(f); err == nil {
				_ = godotenv.Load(f)
			}
		}
	}

	return ServerConfig{
		Addr:          getEnvOrDefault("RECALLCHAT_ADDR", ":5000"),
		Responder:     strings.ToLower(getEnvOrDefault("RECALLCHAT_RESPONDER", ResponderOpenAI)),
		LogLevel:      getEnvOrDefault("LOG_LEVEL", "info"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnvOrDefault("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		Memory:        strings.ToLower(getEnvOrDefault("RECALLCHAT_MEMORY", MemoryLocal)),
		RedisURL:      os.Getenv("REDIS_URL"),
		UserID:        getEnvOrDefault("RECALLCHAT_USER_ID", "default_user"),
	}
}

// Validate reports configuration that would make the backend unusable
func (c ServerConfig) Validate() error {
	switch c.Responder {
	case ResponderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key missing: set OPENAI_API_KEY")
		}
	case ResponderEcho:
	default:
		return fmt.Errorf("unknown responder %q (expected %s or %s)", c.Responder, ResponderOpenAI, ResponderEcho)
	}

	switch c.Memory {
	case MemoryLocal, MemoryNone:
	case MemoryRedis:
		if c.RedisURL == "" {
			return fmt.Errorf("redis memory configuration incomplete: set REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown memory backend %q (expected %s, %s or %s)", c.Memory, MemoryLocal, MemoryRedis, MemoryNone)
	}

	if c.UserID == "" {
		return fmt.Errorf("user id must not be empty")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
