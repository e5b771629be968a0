package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/54b3r/shopsense-go/internal/prompt"
)

// DefaultGenerateTimeout bounds a single generation call. The LLM is the
// dominant latency cost of a request; a hung call must fail, not block.
const DefaultGenerateTimeout = 60 * time.Second

// Generator produces one response text for an assembled prompt.
// Implementations must be safe for concurrent use.
type Generator interface {
	// Generate returns the model's response for the prompt. The prompt's
	// settings (model, temperature, max tokens) tune this call only.
	Generate(ctx context.Context, p prompt.Prompt) (string, error)
}

// ChatModelGenerator adapts an eino ChatModel to the Generator contract,
// applying per-call model settings and a hard timeout.
type ChatModelGenerator struct {
	model   model.ToolCallingChatModel
	timeout time.Duration
}

// NewGenerator wraps chatModel. timeout <= 0 selects DefaultGenerateTimeout.
func NewGenerator(chatModel model.ToolCallingChatModel, timeout time.Duration) *ChatModelGenerator {
	if timeout <= 0 {
		timeout = DefaultGenerateTimeout
	}
	return &ChatModelGenerator{model: chatModel, timeout: timeout}
}

// Generate runs one completion with the prompt's settings. Context
// cancellation (client disconnect) abandons the in-flight call.
func (g *ChatModelGenerator) Generate(ctx context.Context, p prompt.Prompt) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	msgs := []*schema.Message{
		schema.SystemMessage(p.System),
		schema.UserMessage(p.User),
	}

	opts := []model.Option{
		model.WithTemperature(p.Settings.Temperature),
	}
	if p.Settings.Model != "" {
		opts = append(opts, model.WithModel(p.Settings.Model))
	}
	if p.Settings.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(p.Settings.MaxTokens))
	}

	out, err := g.model.Generate(ctx, msgs, opts...)
	if err != nil {
		return "", fmt.Errorf("provider: generation failed: %w", err)
	}
	if out == nil || out.Content == "" {
		return "", fmt.Errorf("provider: model returned an empty response")
	}
	return out.Content, nil
}
