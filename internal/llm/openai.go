package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type OpenAIModel struct {
	client      chatCompleter
	model       string
	temperature *float64
	maxTokens   int
	timeout     time.Duration
}

func NewOpenAI(opts Options) (*OpenAIModel, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	name := strings.TrimSpace(opts.Model)
	if name == "" {
		name = "gpt-4o-mini"
	}

	clientConfig := openai.DefaultConfig(strings.TrimSpace(opts.APIKey))
	if baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"); baseURL != "" {
		clientConfig.BaseURL = baseURL
	}

	return &OpenAIModel{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       name,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		timeout:     opts.Timeout,
	}, nil
}

func (o *OpenAIModel) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, o.timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if o.temperature != nil {
		req.Temperature = float32(*o.temperature)
	}
	if o.maxTokens > 0 {
		req.MaxTokens = o.maxTokens
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("openai chat completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return resp.Choices[0].Message.Content, nil
}

func (o *OpenAIModel) Provider() string { return "openai" }

func (o *OpenAIModel) Name() string { return o.model }
