// Package provider selects and constructs the LLM backend used for response
// generation. The backend is chosen once at startup from configuration, not
// per request by model-name sniffing; per-request model settings only tune
// the already-selected backend.
// Supported backends: Google Gemini, Groq, and a local Ollama instance.
package provider

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"
)

// Backend enumerates the supported LLM inference providers.
type Backend string

const (
	// BackendGemini selects Google Gemini via AI Studio.
	BackendGemini Backend = "gemini"
	// BackendGroq selects Groq's OpenAI-compatible API.
	BackendGroq Backend = "groq"
	// BackendOllama selects a locally running Ollama instance.
	BackendOllama Backend = "ollama"
)

// groqBaseURL is Groq's OpenAI-compatible endpoint.
const groqBaseURL = "https://api.groq.com/openai/v1"

// Config holds provider configuration resolved from environment variables or
// explicit caller-supplied values.
type Config struct {
	// Backend identifies which inference provider to use.
	Backend Backend

	// Model is the default model name (e.g. "gemini-2.5-flash",
	// "llama-3.3-70b-versatile"). Per-request settings may override it.
	Model string

	// APIKey is the authentication credential for the selected provider.
	// Unused by Ollama.
	APIKey string

	// BaseURL overrides the default API endpoint (used by Ollama).
	BaseURL string

	// MaxTokens caps the number of tokens the model may generate per response.
	MaxTokens int

	// Temperature controls response randomness (0.0–1.0).
	Temperature float32
}

// Validate reports configuration errors before any network call is made, so
// a bad deployment fails at startup rather than on the first chat request.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendGemini:
		if c.APIKey == "" {
			return fmt.Errorf("provider: GOOGLE_API_KEY is required for gemini backend")
		}
	case BackendGroq:
		if c.APIKey == "" {
			return fmt.Errorf("provider: GROQ_API_KEY is required for groq backend")
		}
	case BackendOllama:
		// BaseURL has a default; nothing mandatory.
	default:
		return fmt.Errorf("provider: unknown backend %q — valid values: gemini, groq, ollama", c.Backend)
	}
	if c.Model == "" {
		return fmt.Errorf("provider: model name must not be empty")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("provider: temperature %v out of range [0, 2]", c.Temperature)
	}
	return nil
}

// NewFromEnv constructs a ChatModel by reading provider configuration from
// environment variables. MODEL_PROVIDER selects the backend; each provider
// uses its own native credential env vars.
//
// Environment variables:
//
//	MODEL_PROVIDER = gemini | groq | ollama (default: gemini)
//
//	Gemini: GOOGLE_API_KEY, GEMINI_MODEL (default: gemini-2.5-flash)
//	Groq:   GROQ_API_KEY, GROQ_MODEL (default: llama-3.3-70b-versatile)
//	Ollama: OLLAMA_HOST (default: http://localhost:11434), OLLAMA_MODEL (default: llama3)
//
//	Shared: MODEL_MAX_TOKENS (default: 1024), MODEL_TEMPERATURE (default: 0.7)
func NewFromEnv(ctx context.Context) (model.ToolCallingChatModel, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(ctx, cfg)
}

// ConfigFromEnv resolves the provider Config from environment variables
// without constructing the model.
func ConfigFromEnv() (*Config, error) {
	cfg := &Config{
		Backend:     Backend(getEnvOrDefault("MODEL_PROVIDER", string(BackendGemini))),
		MaxTokens:   getEnvInt("MODEL_MAX_TOKENS", 1024),
		Temperature: getEnvFloat32("MODEL_TEMPERATURE", 0.7),
	}

	switch cfg.Backend {
	case BackendGemini:
		cfg.APIKey = os.Getenv("GOOGLE_API_KEY")
		cfg.Model = getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash")
	case BackendGroq:
		cfg.APIKey = os.Getenv("GROQ_API_KEY")
		cfg.Model = getEnvOrDefault("GROQ_MODEL", "llama-3.3-70b-versatile")
	case BackendOllama:
		cfg.BaseURL = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		cfg.Model = getEnvOrDefault("OLLAMA_MODEL", "llama3")
	}

	return cfg, nil
}

// New constructs a ChatModel from an explicit Config, delegating to the
// appropriate backend constructor. It validates the config first so callers
// get a clear error at startup rather than on the first request.
func New(ctx context.Context, cfg *Config) (model.ToolCallingChatModel, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case BackendGemini:
		return newGemini(ctx, cfg)
	case BackendGroq:
		return newGroq(ctx, cfg)
	case BackendOllama:
		return newOllama(ctx, cfg)
	default:
		return nil, fmt.Errorf("provider: unknown backend %q — valid values: gemini, groq, ollama", cfg.Backend)
	}
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

// getEnvFloat32 returns the float32 value of the named environment variable,
// or fallback if the variable is unset, empty, or not parseable.
func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
