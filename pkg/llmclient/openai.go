package llmclient

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/opsreasoner/opsreasoner/pkg/config"
)

// openAIClient implements Client via the OpenAI (or Azure OpenAI) Chat
// Completions API.
type openAIClient struct {
	chat        *openai.Client
	deployment  string
	temperature float64
	timeout     time.Duration
}

func newOpenAIClient(cfg *config.LLMProviderConfig, apiKey string) (Client, error) {
	var oaiCfg openai.ClientConfig
	if cfg.Type == config.LLMProviderTypeAzureOpenAI {
		oaiCfg = openai.DefaultAzureConfig(apiKey, cfg.Endpoint)
		if cfg.APIVersion != "" {
			oaiCfg.APIVersion = cfg.APIVersion
		}
	} else {
		oaiCfg = openai.DefaultConfig(apiKey)
		if cfg.Endpoint != "" {
			oaiCfg.BaseURL = cfg.Endpoint
		}
	}

	timeout, err := resolveTimeout(cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &openAIClient{
		chat:        openai.NewClientWithConfig(oaiCfg),
		deployment:  cfg.Deployment,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}, nil
}

func (c *openAIClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}

	model := c.deployment
	if model == "" {
		model = openai.GPT4o
	}

	resp, err := c.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.System},
			{Role: openai.ChatMessageRoleUser, Content: req.User},
		},
		Temperature: float32(temp),
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

func resolveTimeout(raw string) (time.Duration, error) {
	if raw == "" {
		return defaultCompletionTimeout, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("llmclient: invalid timeout %q: %w", raw, err)
	}
	return d, nil
}

const defaultCompletionTimeout = 30 * time.Second
