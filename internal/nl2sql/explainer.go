package nl2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlassist/sqlassist/internal/llm"
)

const explainPrefix = "Explain this SQL query step-by-step in simple terms:\n"

type Explainer struct {
	model llm.Model
}

func NewExplainer(model llm.Model) (*Explainer, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	return &Explainer{model: model}, nil
}

func (e *Explainer) Explain(ctx context.Context, sql string) (string, error) {
	text, err := e.model.Generate(ctx, ExplainPrompt(sql))
	if err != nil {
		return "", fmt.Errorf("explain query: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func ExplainPrompt(sql string) string {
	return explainPrefix + sql
}
