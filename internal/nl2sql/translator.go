// Package nl2sql turns English questions into SQL with a generative model and asks the same
// model to explain statements back in plain language.
package nl2sql

import (
	"context"
	"fmt"
	"strings"

	"github.com/sqlassist/sqlassist/internal/llm"
	"github.com/sqlassist/sqlassist/internal/prompt"
)

type Result struct {
	SQL      string `json:"sql"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Raw      string `json:"-"`
}

type Translator struct {
	model    llm.Model
	template prompt.Template
}

func NewTranslator(model llm.Model, template prompt.Template) (*Translator, error) {
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(template.Text()) == "" {
		return nil, fmt.Errorf("prompt template is required")
	}
	return &Translator{model: model, template: template}, nil
}

// Translate sends the few-shot template followed by the question and extracts the
// statement from the reply.
func (t *Translator) Translate(ctx context.Context, question string) (Result, error) {
	raw, err := t.model.Generate(ctx, t.template.Build(question))
	if err != nil {
		return Result{}, fmt.Errorf("translate question: %w", err)
	}
	return Result{
		SQL:      ExtractSQL(raw),
		Provider: t.model.Provider(),
		Model:    t.model.Name(),
		Raw:      raw,
	}, nil
}

// ExtractSQL returns the first line that begins with "select" (ignoring case and
// surrounding whitespace), trimmed. Without such a line the whole response is returned
// trimmed.
func ExtractSQL(response string) string {
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "select") {
			return trimmed
		}
	}
	return strings.TrimSpace(response)
}
