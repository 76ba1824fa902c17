package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sqlassist/sqlassist/internal/assistant"
	"github.com/sqlassist/sqlassist/internal/config"
	"github.com/sqlassist/sqlassist/internal/nl2sql"
	"github.com/sqlassist/sqlassist/internal/query"
)

func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("sqlassist-api", mapLookup(map[string]string{}))
	if err != nil {
		t.Fatalf("config load failed: %v", err)
	}
	return cfg
}

func TestHealthEndpoint(t *testing.T) {
	h := NewHandler(testConfig(t), Dependencies{})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("X-Trace-ID") == "" {
		t.Fatal("trace id header missing")
	}
}

func TestReadyEndpointReturns503WhenDependencyFails(t *testing.T) {
	h := NewHandler(testConfig(t), Dependencies{
		Readiness: func(context.Context) error {
			return errors.New("database unreachable")
		},
	})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/ready", nil))

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", rr.Code)
	}
	body := decodeBody(t, rr)
	if body["error_code"] != "NOT_READY" || body["retryable"] != true {
		t.Fatalf("body = %v", body)
	}
}

func TestCombineReadinessChecksStopsOnFirstFailure(t *testing.T) {
	order := make([]int, 0, 3)
	combined := CombineReadinessChecks(
		func(_ context.Context) error {
			order = append(order, 1)
			return nil
		},
		nil,
		func(_ context.Context) error {
			order = append(order, 2)
			return errors.New("boom")
		},
		func(_ context.Context) error {
			order = append(order, 3)
			return nil
		},
	)

	if err := combined(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if len(order) != 2 || order[0] != 1 || order[1] != 2 {
		t.Fatalf("execution order = %#v", order)
	}
}

func TestExamplesEndpoint(t *testing.T) {
	h := NewHandler(testConfig(t), Dependencies{Examples: []string{"Count of Data Analysts.", "Highest salary employee."}})
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/examples", nil))

	body := decodeBody(t, rr)
	examples, ok := body["examples"].([]any)
	if !ok || len(examples) != 2 || examples[0] != "Count of Data Analysts." {
		t.Fatalf("examples = %#v", body["examples"])
	}
}

func TestUIHandlerServesRootOnly(t *testing.T) {
	h := NewHandler(testConfig(t), Dependencies{
		UI: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = io.WriteString(w, "<html>ok</html>")
		}),
	})

	for _, req := range []*http.Request{
		httptest.NewRequest(http.MethodGet, "/", nil),
		httptest.NewRequest(http.MethodPost, "/", strings.NewReader("question=x")),
		httptest.NewRequest(http.MethodGet, "/static/style.css", nil),
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("%s %s status = %d", req.Method, req.URL.Path, rr.Code)
		}
	}

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/console", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("unknown path status = %d", rr.Code)
	}
}

func TestUnconfiguredEndpointsReturn501(t *testing.T) {
	h := NewHandler(testConfig(t), Dependencies{})
	for _, path := range []string{"/v1/ask", "/v1/query", "/v1/query/translate", "/v1/query/explain"} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`)))
		if rr.Code != http.StatusNotImplemented {
			t.Fatalf("%s status = %d", path, rr.Code)
		}
	}
}

type fakeAsker struct {
	answer assistant.Answer
	err    error
	calls  int
}

func (f *fakeAsker) Ask(_ context.Context, question string) (assistant.Answer, error) {
	f.calls++
	if strings.TrimSpace(question) == "" {
		return assistant.Answer{}, assistant.ErrEmptyQuestion
	}
	return f.answer, f.err
}

type fakeTranslator struct {
	result nl2sql.Result
	err    error
}

func (f *fakeTranslator) Translate(context.Context, string) (nl2sql.Result, error) {
	return f.result, f.err
}

type fakeExecutor struct {
	result query.Result
	sql    string
}

func (f *fakeExecutor) Execute(_ context.Context, sql string) query.Result {
	f.sql = sql
	return f.result
}

type fakeExplainer struct {
	text string
	err  error
	sql  string
}

func (f *fakeExplainer) Explain(_ context.Context, sql string) (string, error) {
	f.sql = sql
	return f.text, f.err
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("json decode failed: %v (body=%s)", err, rr.Body.String())
	}
	return body
}

func mapLookup(values map[string]string) config.LookupFunc {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
