package ai

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"where2eat-worker/domain/ports"
)

// OpenAIClient - LLMPort implementation over the OpenAI chat completions
// API. Also covers OpenAI-compatible gateways via a custom base URL.
type OpenAIClient struct {
	client *openai.Client
	logger *slog.Logger
}

func NewOpenAIClient(apiKey, baseURL string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		logger: slog.Default().With("component", "openai"),
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, cfg ports.ModelConfig) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if cfg.MaxTokens > 0 {
		req.MaxTokens = cfg.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from openai")
	}

	c.logger.Debug("openai response",
		"finish_reason", string(resp.Choices[0].FinishReason),
		"completion_tokens", resp.Usage.CompletionTokens,
	)
	return resp.Choices[0].Message.Content, nil
}

var _ ports.LLMPort = (*OpenAIClient)(nil)
