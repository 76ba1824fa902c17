package llm

import (
	"context"
	"log/slog"
	"time"

	"github.com/sqlassist/sqlassist/internal/observability"
)

// Instrument records metrics and a debug log line for every call made through model.
// operation labels the call site (translate, explain).
func Instrument(model Model, operation string, logger *slog.Logger) Model {
	return &instrumented{Model: model, operation: operation, logger: logger}
}

type instrumented struct {
	Model
	operation string
	logger    *slog.Logger
}

func (i *instrumented) Generate(ctx context.Context, prompt string) (string, error) {
	start := time.Now()
	text, err := i.Model.Generate(ctx, prompt)
	elapsed := time.Since(start)
	observability.ObserveModelCall(i.Provider(), i.operation, err, elapsed)

	if i.logger != nil {
		attrs := []any{
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("provider", i.Provider()),
			slog.String("model", i.Name()),
			slog.String("operation", i.operation),
			slog.Int("prompt_chars", len(prompt)),
			slog.String("duration", elapsed.String()),
		}
		if err != nil {
			i.logger.WarnContext(ctx, "model call failed", append(attrs, slog.Any("error", err))...)
		} else {
			i.logger.DebugContext(ctx, "model call", append(attrs, slog.Int("response_chars", len(text)))...)
		}
	}
	return text, err
}
