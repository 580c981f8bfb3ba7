package llmclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/opsreasoner/opsreasoner/pkg/config"
)

const defaultAnthropicMaxTokens = 2048

// anthropicClient implements Client via the Anthropic Messages API.
type anthropicClient struct {
	msg         *sdk.MessageService
	model       string
	temperature float64
	timeout     time.Duration
}

func newAnthropicClient(cfg *config.LLMProviderConfig, apiKey string) (Client, error) {
	if cfg.Deployment == "" {
		return nil, fmt.Errorf("llmclient: anthropic provider requires deployment (model id)")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithBaseURL(cfg.Endpoint))
	}
	client := sdk.NewClient(opts...)

	timeout, err := resolveTimeout(cfg.Timeout)
	if err != nil {
		return nil, err
	}

	return &anthropicClient{
		msg:         &client.Messages,
		model:       cfg.Deployment,
		temperature: cfg.Temperature,
		timeout:     timeout,
	}, nil
}

func (c *anthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	temp := req.Temperature
	if temp == 0 {
		temp = c.temperature
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: defaultAnthropicMaxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.User)),
		},
	}
	if req.System != "" {
		params.System = []sdk.TextBlockParam{{Text: req.System}}
	}
	if temp > 0 {
		params.Temperature = sdk.Float(temp)
	}

	resp, err := c.msg.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages.new: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", errors.New("anthropic messages.new: no text content in response")
}
