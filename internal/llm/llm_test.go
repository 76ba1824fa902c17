package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/generative-ai-go/genai"
	openai "github.com/sashabaranov/go-openai"

	"github.com/sqlassist/sqlassist/internal/config"
)

type fakeGenerator struct {
	resp   *genai.GenerateContentResponse
	err    error
	prompt string
}

func (f *fakeGenerator) GenerateContent(_ context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	for _, part := range parts {
		if text, ok := part.(genai.Text); ok {
			f.prompt += string(text)
		}
	}
	return f.resp, f.err
}

func TestGeminiGenerateJoinsTextParts(t *testing.T) {
	gen := &fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: nil},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("SELECT COUNT(*) "), genai.Text("FROM employee_details;")}}},
		},
	}}
	model := &GeminiModel{generator: gen, model: "gemini-2.0-flash"}

	got, err := model.Generate(context.Background(), "how many employees?")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "SELECT COUNT(*) FROM employee_details;" {
		t.Fatalf("Generate() = %q", got)
	}
	if gen.prompt != "how many employees?" {
		t.Fatalf("prompt sent = %q", gen.prompt)
	}
	if model.Provider() != "gemini" || model.Name() != "gemini-2.0-flash" {
		t.Fatalf("Provider/Name = %s/%s", model.Provider(), model.Name())
	}
	if err := model.Close(); err != nil {
		t.Fatalf("Close() without client error = %v", err)
	}
}

func TestGeminiGenerateEmptyAndErrors(t *testing.T) {
	empty := &GeminiModel{generator: &fakeGenerator{resp: &genai.GenerateContentResponse{}}}
	if _, err := empty.Generate(context.Background(), "q"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Generate() error = %v, want ErrEmptyResponse", err)
	}

	failing := &GeminiModel{generator: &fakeGenerator{err: errors.New("quota exceeded")}}
	_, err := failing.Generate(context.Background(), "q")
	if err == nil || !strings.Contains(err.Error(), "quota exceeded") {
		t.Fatalf("Generate() error = %v", err)
	}
}

type fakeCompleter struct {
	resp openai.ChatCompletionResponse
	err  error
	req  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = req
	return f.resp, f.err
}

func TestOpenAIGenerateSendsSingleUserMessage(t *testing.T) {
	temperature := 0.2
	completer := &fakeCompleter{resp: openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: "SELECT 1;"}}},
	}}
	model := &OpenAIModel{client: completer, model: "gpt-4o-mini", temperature: &temperature, maxTokens: 256}

	got, err := model.Generate(context.Background(), "prompt text")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "SELECT 1;" {
		t.Fatalf("Generate() = %q", got)
	}
	if len(completer.req.Messages) != 1 || completer.req.Messages[0].Role != openai.ChatMessageRoleUser {
		t.Fatalf("messages = %+v", completer.req.Messages)
	}
	if completer.req.Messages[0].Content != "prompt text" {
		t.Fatalf("content = %q", completer.req.Messages[0].Content)
	}
	if completer.req.Model != "gpt-4o-mini" || completer.req.MaxTokens != 256 {
		t.Fatalf("request = %+v", completer.req)
	}
	if completer.req.Temperature != float32(0.2) {
		t.Fatalf("temperature = %v", completer.req.Temperature)
	}
}

func TestOpenAIGenerateNoChoices(t *testing.T) {
	model := &OpenAIModel{client: &fakeCompleter{}, model: "gpt-4o-mini"}
	if _, err := model.Generate(context.Background(), "q"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("Generate() error = %v, want ErrEmptyResponse", err)
	}
}

type fakeMessages struct {
	resp   *anthropic.Message
	err    error
	params anthropic.MessageNewParams
}

func (f *fakeMessages) New(_ context.Context, body anthropic.MessageNewParams, _ ...option.RequestOption) (*anthropic.Message, error) {
	f.params = body
	return f.resp, f.err
}

func TestAnthropicGenerateConcatenatesTextBlocks(t *testing.T) {
	messages := &fakeMessages{resp: &anthropic.Message{Content: []anthropic.ContentBlockUnion{
		{Type: "text", Text: "Step 1: "},
		{Type: "thinking"},
		{Type: "text", Text: "filter rows."},
	}}}
	model := &AnthropicModel{messages: messages, model: "claude-3-5-haiku-latest", maxTokens: 1024}

	got, err := model.Generate(context.Background(), "explain")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Step 1: filter rows." {
		t.Fatalf("Generate() = %q", got)
	}
	if messages.params.MaxTokens != 1024 || string(messages.params.Model) != "claude-3-5-haiku-latest" {
		t.Fatalf("params = %+v", messages.params)
	}
	if len(messages.params.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(messages.params.Messages))
	}
}

func TestAnthropicGenerateError(t *testing.T) {
	model := &AnthropicModel{messages: &fakeMessages{err: errors.New("overloaded")}, model: "m"}
	if _, err := model.Generate(context.Background(), "q"); err == nil || !strings.Contains(err.Error(), "overloaded") {
		t.Fatalf("Generate() error = %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	_, closeFn, err := New(context.Background(), config.AIConfig{Provider: config.ProviderOpenAI})
	if err == nil {
		t.Fatal("expected error for missing api key")
	}
	if closeFn == nil {
		t.Fatal("close function should never be nil")
	}

	if _, _, err := New(context.Background(), config.AIConfig{Provider: "mystery", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNewWrapsRetryingWhenConfigured(t *testing.T) {
	model, closeFn, err := New(context.Background(), config.AIConfig{
		Provider:       config.ProviderOpenAI,
		APIKey:         "k",
		Model:          "gpt-4o-mini",
		MaxAttempts:    3,
		RetryBaseDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer func() { _ = closeFn() }()

	retrying, ok := model.(*Retrying)
	if !ok {
		t.Fatalf("New() = %T, want *Retrying", model)
	}
	if retrying.MaxAttempts != 3 || retrying.Provider() != "openai" || retrying.Name() != "gpt-4o-mini" {
		t.Fatalf("retrying = %+v", retrying)
	}

	plain, _, err := New(context.Background(), config.AIConfig{Provider: config.ProviderAnthropic, APIKey: "k", MaxAttempts: 1})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, ok := plain.(*AnthropicModel); !ok {
		t.Fatalf("New() = %T, want *AnthropicModel", plain)
	}
}
