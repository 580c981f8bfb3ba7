// Package llmclient provides a minimal chat-completion client used by the
// planner, re-planner, synthesizer and data_analyst agent: one system prompt, one
// user message, one text reply. No streaming, no tool calling.
package llmclient

import (
	"context"
	"fmt"

	"github.com/opsreasoner/opsreasoner/pkg/config"
)

// Request is a single-turn chat completion request.
type Request struct {
	System      string
	User        string
	Temperature float64
}

// Client generates one completion from a system/user pair.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// New builds a Client for the given provider config. The api key is read
// from the environment variable named by cfg.APIKeyEnv by the caller and
// passed in directly so this package never touches os.Getenv itself.
func New(cfg *config.LLMProviderConfig, apiKey string) (Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("llmclient: provider config is required")
	}
	switch cfg.Type {
	case config.LLMProviderTypeOpenAI, config.LLMProviderTypeAzureOpenAI:
		return newOpenAIClient(cfg, apiKey)
	case config.LLMProviderTypeAnthropic:
		return newAnthropicClient(cfg, apiKey)
	default:
		return nil, fmt.Errorf("llmclient: unsupported provider type %q", cfg.Type)
	}
}
