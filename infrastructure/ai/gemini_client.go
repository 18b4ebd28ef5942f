package ai

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"where2eat-worker/domain/ports"
)

func toPtr[T any](v T) *T {
	return &v
}

// hugeNumberRe - Gemini occasionally emits numbers that overflow int64 and
// break JSON parsing downstream; replace them with 0.
var hugeNumberRe = regexp.MustCompile(`:\s*(\d{16,})`)

// GeminiClient - LLMPort implementation backed by the Gemini API.
type GeminiClient struct {
	client *genai.Client
	logger *slog.Logger
}

func NewGeminiClient(ctx context.Context, apiKey string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiClient{
		client: client,
		logger: slog.Default().With("component", "gemini"),
	}, nil
}

func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func (c *GeminiClient) Complete(ctx context.Context, prompt string, cfg ports.ModelConfig) (string, error) {
	model := c.client.GenerativeModel(cfg.Model)
	model.ResponseMIMEType = "application/json"
	model.Temperature = toPtr(cfg.Temperature)
	model.TopP = toPtr(float32(0.95))
	if cfg.MaxTokens > 0 {
		model.MaxOutputTokens = toPtr(int32(cfg.MaxTokens))
	}

	// Invalid UTF-8 in the prompt fails the underlying proto encoding.
	prompt = strings.ToValidUTF8(prompt, "")

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate failed: %w", err)
	}
	return c.extractText(resp)
}

func (c *GeminiClient) extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from gemini")
	}

	candidate := resp.Candidates[0]
	c.logger.Debug("gemini response",
		"finish_reason", candidate.FinishReason,
		"parts_count", len(candidate.Content.Parts),
	)

	part := candidate.Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return "", fmt.Errorf("unexpected response type: %T", part)
	}

	return c.sanitizeNumbers(string(text)), nil
}

func (c *GeminiClient) sanitizeNumbers(raw string) string {
	return hugeNumberRe.ReplaceAllStringFunc(raw, func(match string) string {
		c.logger.Warn("huge number in response, replacing with 0",
			"match_len", len(match),
		)
		return ": 0"
	})
}

var _ ports.LLMPort = (*GeminiClient)(nil)
