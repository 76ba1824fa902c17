// Package llm wraps the hosted generative models behind a single text-in, text-out call.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sqlassist/sqlassist/internal/config"
)

// Model generates a completion for a single prompt. Implementations send exactly one
// request per call; retries are layered on with Retrying.
type Model interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Provider() string
	Name() string
}

var ErrEmptyResponse = errors.New("model returned an empty response")

type Options struct {
	APIKey      string
	Model       string
	BaseURL     string
	Temperature *float64
	MaxTokens   int
	Timeout     time.Duration
}

// New builds the configured provider client. The returned close function releases
// provider resources and is always non-nil.
func New(ctx context.Context, cfg config.AIConfig) (Model, func() error, error) {
	opts := Options{
		APIKey:      cfg.APIKey,
		Model:       cfg.Model,
		BaseURL:     cfg.BaseURL,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		Timeout:     cfg.Timeout,
	}
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, noopClose, fmt.Errorf("%s api key is required", cfg.Provider)
	}

	var (
		model   Model
		closeFn = noopClose
		err     error
	)
	switch cfg.Provider {
	case config.ProviderGemini:
		var gemini *GeminiModel
		gemini, err = NewGemini(ctx, opts)
		if err == nil {
			model, closeFn = gemini, gemini.Close
		}
	case config.ProviderOpenAI:
		model, err = NewOpenAI(opts)
	case config.ProviderAnthropic:
		model, err = NewAnthropic(opts)
	default:
		err = fmt.Errorf("unsupported model provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, noopClose, err
	}

	if cfg.MaxAttempts > 1 {
		model = &Retrying{Model: model, MaxAttempts: cfg.MaxAttempts, BaseDelay: cfg.RetryBaseDelay}
	}
	return model, closeFn, nil
}

func noopClose() error { return nil }

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}
