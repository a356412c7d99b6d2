package llm

import (
	"context"
	"fmt"

	"github.com/campusforms/docufill-api/internal/config"
	"github.com/campusforms/docufill-api/internal/utils"
)

// Message is one chat turn sent to the model.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions control a single chat call. Temperature 0 is used for
// deterministic extraction; MaxTokens 0 means the provider default.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// Provider is the opaque LLM capability the pipeline depends on. Both calls
// block on a network round-trip and honor context cancellation; callers own
// timeouts via ctx.
type Provider interface {
	Chat(ctx context.Context, messages []Message, opts ChatOptions) (string, error)
	VisionAnalyze(ctx context.Context, imageBase64, prompt string) (string, error)
}

// NewProvider constructs the configured provider. Concrete selection happens
// once at startup; nothing downstream knows which vendor is behind the
// interface.
func NewProvider(cfg *config.Config, logger *utils.Logger) (Provider, error) {
	switch cfg.LLMProvider {
	case "openrouter":
		return NewOpenRouterProvider(cfg, logger), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q (supported: openrouter)", cfg.LLMProvider)
	}
}
