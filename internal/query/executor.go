// Package query executes statements against the configured database and shapes the rows
// for display.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlassist/sqlassist/internal/database"
	"github.com/sqlassist/sqlassist/internal/observability"
	"github.com/sqlassist/sqlassist/internal/policy"
)

// ErrorLabel is the first cell of the row reported in place of a failed statement.
const ErrorLabel = "SQL Error"

var errorColumns = []string{"Error"}

type Result struct {
	Columns  []string
	Rows     [][]any
	Duration time.Duration
}

// ErrorResult is the single-row table shown when a statement cannot run.
func ErrorResult(message string) Result {
	return Result{
		Columns: append([]string(nil), errorColumns...),
		Rows:    [][]any{{ErrorLabel, message}},
	}
}

func (r Result) IsError() bool {
	return len(r.Columns) == 1 && r.Columns[0] == errorColumns[0] &&
		len(r.Rows) == 1 && len(r.Rows[0]) == 2 && r.Rows[0][0] == ErrorLabel
}

func (r Result) ErrorMessage() string {
	if !r.IsError() {
		return ""
	}
	message, _ := r.Rows[0][1].(string)
	return message
}

type Executor struct {
	open   database.Opener
	policy policy.Policy
	logger *slog.Logger
}

func NewExecutor(open database.Opener, pol policy.Policy, logger *slog.Logger) (*Executor, error) {
	if open == nil {
		return nil, fmt.Errorf("database opener is required")
	}
	if pol == nil {
		pol = policy.FirstSelect{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{open: open, policy: pol, logger: logger}, nil
}

// Execute runs sqlText on a fresh connection that is closed before returning. Failures
// never surface as errors; they come back as ErrorResult.
func (e *Executor) Execute(ctx context.Context, sqlText string) Result {
	start := time.Now()

	statement, err := e.policy.Vet(sqlText)
	if err != nil {
		e.logger.WarnContext(ctx, "statement rejected",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.String("policy", e.policy.Name()),
			slog.Any("error", err),
		)
		observability.ObserveSQLExecution(observability.OutcomeRejected, 0, time.Since(start))
		return withDuration(ErrorResult(err.Error()), start)
	}

	result, err := e.run(ctx, statement)
	if err != nil {
		e.logger.WarnContext(ctx, "statement failed",
			slog.String("trace_id", observability.TraceIDFromContext(ctx)),
			slog.Any("error", err),
		)
		observability.ObserveSQLExecution(observability.OutcomeError, 0, time.Since(start))
		return withDuration(ErrorResult(err.Error()), start)
	}

	observability.ObserveSQLExecution(observability.OutcomeOK, len(result.Rows), time.Since(start))
	return withDuration(result, start)
}

func (e *Executor) run(ctx context.Context, statement string) (result Result, err error) {
	sqlText := stripTrailingSemicolons(statement)
	if sqlText == "" {
		return Result{}, fmt.Errorf("sql is required")
	}

	db, err := e.open(ctx)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = db.Close() }()

	rows, err := db.QueryContext(ctx, sqlText)
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return Result{}, err
	}

	resultRows := make([][]any, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return Result{}, err
		}
		resultRows = append(resultRows, normalizeValues(values))
	}
	if err := rows.Err(); err != nil {
		return Result{}, err
	}

	return Result{Columns: columns, Rows: resultRows}, nil
}

func withDuration(result Result, start time.Time) Result {
	result.Duration = time.Since(start)
	return result
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
