package textgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/uchejames/vibeshop/internal/config"

	"go.uber.org/zap"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderNone   = "none"
)

var (
	ErrGeneratorUnavailable = errors.New("text generator unavailable")
	ErrEmptyResponse        = errors.New("empty response from text generator")
)

// Generator produces raw text for a prompt. Implementations are safe for
// concurrent use.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	// Model names the model answering the prompts, for logging and audit records
	Model() string
}

// New builds the generator selected by cfg. A provider without credentials
// yields an UnavailableGenerator so every listing falls back to the
// deterministic template instead of failing startup.
func New(ctx context.Context, cfg config.GeneratorConfig, logger *zap.Logger) (Generator, error) {
	var gen Generator

	switch cfg.Provider {
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logger.Warn("GEMINI_API_KEY not set, listings will use fallback content")
			return UnavailableGenerator{}, nil
		}
		g, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logger)
		if err != nil {
			return nil, err
		}
		gen = g
	case ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			logger.Warn("OPENAI_API_KEY not set, listings will use fallback content")
			return UnavailableGenerator{}, nil
		}
		gen = NewOpenAIGenerator(OpenAIOptions{
			BaseURL: cfg.OpenAIBaseURL,
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			Timeout: cfg.Timeout,
		}, logger)
	case ProviderNone, "":
		return UnavailableGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown generator provider %q", cfg.Provider)
	}

	if cfg.Timeout > 0 {
		gen = WithTimeout(gen, cfg.Timeout)
	}

	return gen, nil
}

// UnavailableGenerator fails every call with ErrGeneratorUnavailable
type UnavailableGenerator struct{}

func (UnavailableGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return "", ErrGeneratorUnavailable
}

func (UnavailableGenerator) Model() string { return ProviderNone }

type timeoutGenerator struct {
	inner   Generator
	timeout time.Duration
}

// WithTimeout bounds every call to inner by timeout
func WithTimeout(inner Generator, timeout time.Duration) Generator {
	return &timeoutGenerator{inner: inner, timeout: timeout}
}

func (t *timeoutGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	text, err := t.inner.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("text generation timed out after %s: %w", t.timeout, err)
		}
		return "", err
	}
	return text, nil
}

func (t *timeoutGenerator) Model() string { return t.inner.Model() }
