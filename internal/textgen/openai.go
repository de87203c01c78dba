package textgen

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIOptions configures an OpenAI-compatible chat completions endpoint
type OpenAIOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int64 `json:"prompt_tokens"`
		CompletionTokens int64 `json:"completion_tokens"`
	} `json:"usage"`
}

// OpenAIGenerator answers prompts through an OpenAI-compatible REST API
type OpenAIGenerator struct {
	http   *resty.Client
	model  string
	logger *zap.Logger
}

func NewOpenAIGenerator(opts OpenAIOptions, logger *zap.Logger) *OpenAIGenerator {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}

	client := resty.New().
		SetBaseURL(baseURL).
		SetAuthToken(opts.APIKey).
		SetHeader("Accept", "application/json")
	if opts.Timeout > 0 {
		client.SetTimeout(opts.Timeout)
	}

	return &OpenAIGenerator{http: client, model: opts.Model, logger: logger}
}

func (o *OpenAIGenerator) Model() string { return o.model }

// Generate posts a single user message and returns the first choice's content
func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	result := &chatResponse{}

	res, err := o.http.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model:          o.model,
			Messages:       []chatMessage{{Role: "user", Content: prompt}},
			ResponseFormat: map[string]string{"type": "json_object"},
		}).
		SetResult(result).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completion request failed: %w", err)
	}
	if res.IsError() {
		return "", fmt.Errorf("chat completion failed: status %d", res.StatusCode())
	}

	if len(result.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	o.logger.Info("Text generation call",
		zap.String("model", o.model),
		zap.Int64("input_tokens", result.Usage.PromptTokens),
		zap.Int64("output_tokens", result.Usage.CompletionTokens),
	)

	return result.Choices[0].Message.Content, nil
}
