package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

type AnthropicModel struct {
	messages    messageCreator
	model       string
	temperature *float64
	maxTokens   int64
	timeout     time.Duration
}

func NewAnthropic(opts Options) (*AnthropicModel, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	name := strings.TrimSpace(opts.Model)
	if name == "" {
		name = "claude-3-5-haiku-latest"
	}
	maxTokens := int64(opts.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(strings.TrimSpace(opts.APIKey))}
	if baseURL := strings.TrimSpace(opts.BaseURL); baseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(clientOpts...)

	return &AnthropicModel{
		messages:    &client.Messages,
		model:       name,
		temperature: opts.Temperature,
		maxTokens:   maxTokens,
		timeout:     opts.Timeout,
	}, nil
}

func (a *AnthropicModel) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, a.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.temperature != nil {
		params.Temperature = anthropic.Float(*a.temperature)
	}

	resp, err := a.messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages: %w", err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

func (a *AnthropicModel) Provider() string { return "anthropic" }

func (a *AnthropicModel) Name() string { return a.model }
