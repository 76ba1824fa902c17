package api

import (
	"net/http"
	"strings"
)

type queryRequest struct {
	SQL string `json:"sql"`
}

type queryResponse struct {
	Columns    []string `json:"columns"`
	Rows       [][]any  `json:"rows"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// handleQuery answers 200 even when the statement fails; the failure travels as the
// error row so clients render it like any other result.
func handleQuery(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Executor == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "QUERY_NOT_CONFIGURED", "query execution is not configured", false, nil)
		return
	}

	var request queryRequest
	if err := decodeJSON(w, r, &request); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid query request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(request.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}

	result := deps.Executor.Execute(r.Context(), request.SQL)
	writeJSON(w, http.StatusOK, queryResponse{
		Columns:    result.Columns,
		Rows:       result.Rows,
		DurationMs: result.Duration.Milliseconds(),
		Error:      result.ErrorMessage(),
	})
}
