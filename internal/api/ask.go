package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sqlassist/sqlassist/internal/assistant"
)

type questionRequest struct {
	Question string `json:"question"`
}

type askResponse struct {
	Question    string   `json:"question"`
	SQL         string   `json:"sql"`
	Provider    string   `json:"provider"`
	Model       string   `json:"model"`
	Columns     []string `json:"columns"`
	Rows        [][]any  `json:"rows"`
	Explanation string   `json:"explanation"`
	Error       string   `json:"error,omitempty"`
	DurationMs  int64    `json:"duration_ms"`
}

func handleAsk(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Assistant == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "ASK_NOT_CONFIGURED", "assistant is not configured", false, nil)
		return
	}

	var req questionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid ask request body", false, map[string]any{"details": err.Error()})
		return
	}

	answer, err := deps.Assistant.Ask(r.Context(), req.Question)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "please enter a question", false, nil)
		return
	case err != nil && answer.SQL == "":
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to translate question", true, map[string]any{"details": err.Error()})
		return
	case err != nil:
		writeError(r.Context(), w, http.StatusBadGateway, "EXPLAIN_FAILED", "failed to explain query", true, map[string]any{
			"details": err.Error(),
			"sql":     answer.SQL,
		})
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Question:    answer.Question,
		SQL:         answer.SQL,
		Provider:    answer.Provider,
		Model:       answer.Model,
		Columns:     answer.Result.Columns,
		Rows:        answer.Result.Rows,
		Explanation: answer.Explanation,
		Error:       answer.Result.ErrorMessage(),
		DurationMs:  answer.Result.Duration.Milliseconds(),
	})
}

func handleTranslate(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Translator == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "TRANSLATE_NOT_CONFIGURED", "query translation is not configured", false, nil)
		return
	}

	var req questionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid translation request body", false, map[string]any{"details": err.Error()})
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "QUESTION_REQUIRED", "please enter a question", false, nil)
		return
	}

	result, err := deps.Translator.Translate(r.Context(), question)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "TRANSLATE_FAILED", "failed to translate question", true, map[string]any{"details": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"sql":      result.SQL,
		"provider": result.Provider,
		"model":    result.Model,
	})
}

type explainRequest struct {
	SQL string `json:"sql"`
}

func handleExplain(deps Dependencies, w http.ResponseWriter, r *http.Request) {
	if deps.Explainer == nil {
		writeError(r.Context(), w, http.StatusNotImplemented, "EXPLAIN_NOT_CONFIGURED", "query explanation is not configured", false, nil)
		return
	}

	var req explainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(r.Context(), w, http.StatusBadRequest, "INVALID_JSON", "invalid explain request body", false, map[string]any{"details": err.Error()})
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		writeError(r.Context(), w, http.StatusBadRequest, "SQL_REQUIRED", "sql is required", false, nil)
		return
	}

	explanation, err := deps.Explainer.Explain(r.Context(), req.SQL)
	if err != nil {
		writeError(r.Context(), w, http.StatusBadGateway, "EXPLAIN_FAILED", "failed to explain query", true, map[string]any{"details": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"explanation": explanation})
}
