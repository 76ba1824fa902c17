// Package assistant runs the question, SQL, result and explanation flow behind the
// form and the ask endpoint.
package assistant

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/sqlassist/sqlassist/internal/nl2sql"
	"github.com/sqlassist/sqlassist/internal/observability"
	"github.com/sqlassist/sqlassist/internal/query"
)

var ErrEmptyQuestion = errors.New("question is required")

type Translator interface {
	Translate(ctx context.Context, question string) (nl2sql.Result, error)
}

type Executor interface {
	Execute(ctx context.Context, sql string) query.Result
}

type Explainer interface {
	Explain(ctx context.Context, sql string) (string, error)
}

type Answer struct {
	Question    string
	SQL         string
	Provider    string
	Model       string
	Result      query.Result
	Explanation string
}

type Service struct {
	Translator Translator
	Executor   Executor
	Explainer  Explainer
	Logger     *slog.Logger
}

// Ask translates the question, runs the statement and, when it ran cleanly, explains
// it. A statement that fails in the database is reported in Answer.Result rather than as
// an error. Errors from the model are returned with whatever was produced so far.
func (s *Service) Ask(ctx context.Context, question string) (Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Answer{}, ErrEmptyQuestion
	}
	answer := Answer{Question: question}

	translated, err := s.Translator.Translate(ctx, question)
	if err != nil {
		return answer, err
	}
	answer.SQL = translated.SQL
	answer.Provider = translated.Provider
	answer.Model = translated.Model

	answer.Result = s.Executor.Execute(ctx, translated.SQL)
	if answer.Result.IsError() {
		s.logger().InfoContext(ctx, "skipping explanation for failed statement",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("sql", answer.SQL),
		)
		return answer, nil
	}

	explanation, err := s.Explainer.Explain(ctx, translated.SQL)
	if err != nil {
		return answer, err
	}
	answer.Explanation = explanation
	return answer, nil
}

func (s *Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
