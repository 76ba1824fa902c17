package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type GeminiModel struct {
	client    *genai.Client
	generator contentGenerator
	model     string
	timeout   time.Duration
}

func NewGemini(ctx context.Context, opts Options) (*GeminiModel, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	name := strings.TrimSpace(opts.Model)
	if name == "" {
		name = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	generative := client.GenerativeModel(name)
	if opts.Temperature != nil {
		generative.SetTemperature(float32(*opts.Temperature))
	}
	if opts.MaxTokens > 0 {
		generative.SetMaxOutputTokens(int32(opts.MaxTokens))
	}

	return &GeminiModel{client: client, generator: generative, model: name, timeout: opts.Timeout}, nil
}

func (g *GeminiModel) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := withTimeout(ctx, g.timeout)
	defer cancel()

	resp, err := g.generator.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	text := geminiText(resp)
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiModel) Provider() string { return "gemini" }

func (g *GeminiModel) Name() string { return g.model }

func (g *GeminiModel) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// geminiText joins the text parts of the first candidate that has content.
func geminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}
