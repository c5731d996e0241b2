// Package respond generates conversational replies to meeting speech.
package respond

import (
	"context"
	"fmt"

	"github.com/rbright/usher/internal/config"
)

// Provider turns transcribed speech into one reply.
type Provider interface {
	Name() string
	Respond(ctx context.Context, prompt string) (string, error)
}

// FromConfig builds the configured provider. Provider "none" yields nil,
// which disables conversational responses entirely.
func FromConfig(cfg config.ResponderConfig) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(func(o *OpenAIOptions) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			o.MaxCompletionTokens = int64(cfg.MaxTokens)
			o.SystemPrompt = cfg.SystemPrompt
		}), nil
	case "anthropic":
		return NewAnthropic(func(o *AnthropicOptions) {
			o.Model = cfg.Model
			o.Temperature = cfg.Temperature
			o.MaxTokens = int64(cfg.MaxTokens)
			o.SystemPrompt = cfg.SystemPrompt
		}), nil
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown responder provider %q", cfg.Provider)
	}
}
