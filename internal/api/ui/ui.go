// Package ui serves the server-rendered question form.
package ui

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/sqlassist/sqlassist/internal/assistant"
	"github.com/sqlassist/sqlassist/internal/observability"
)

//go:embed all:assets
var assetsFS embed.FS

const maxFormBytes = 64 << 10

type Asker interface {
	Ask(ctx context.Context, question string) (assistant.Answer, error)
}

type Options struct {
	Title    string
	Examples []string
	Logger   *slog.Logger
}

type page struct {
	Title       string
	Examples    []string
	Question    string
	Submitted   bool
	Warning     string
	Error       string
	SQL         string
	Columns     []string
	Rows        [][]string
	Explanation string
}

type handler struct {
	asker  Asker
	opts   Options
	tmpl   *template.Template
	static http.Handler
	logger *slog.Logger
}

func NewHandler(asker Asker, opts Options) (http.Handler, error) {
	if asker == nil {
		return nil, errors.New("assistant is required")
	}
	tmpl, err := template.ParseFS(assetsFS, "assets/templates/index.html")
	if err != nil {
		return nil, err
	}
	staticFS, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(opts.Title) == "" {
		opts.Title = "SQL Assistant"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &handler{
		asker:  asker,
		opts:   opts,
		tmpl:   tmpl,
		static: http.FileServer(http.FS(staticFS)),
		logger: logger,
	}, nil
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/static/") && r.Method == http.MethodGet:
		h.static.ServeHTTP(w, r)
	case r.URL.Path == "/" && r.Method == http.MethodGet:
		h.render(w, r, http.StatusOK, h.newPage())
	case r.URL.Path == "/" && r.Method == http.MethodPost:
		h.submit(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *handler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	p := h.newPage()
	p.Submitted = true
	if err := r.ParseForm(); err != nil {
		p.Error = "Could not read the submitted form."
		h.render(w, r, http.StatusBadRequest, p)
		return
	}
	p.Question = r.PostFormValue("question")

	answer, err := h.asker.Ask(r.Context(), p.Question)
	switch {
	case errors.Is(err, assistant.ErrEmptyQuestion):
		p.Warning = "Please enter a question"
		h.render(w, r, http.StatusOK, p)
		return
	case err != nil:
		h.logger.ErrorContext(r.Context(), "ask failed",
			slog.String("trace_id", observability.TraceIDFromContext(r.Context())),
			slog.Any("error", err),
		)
		p.SQL = answer.SQL
		p.Error = "Error: " + err.Error()
		h.render(w, r, http.StatusBadGateway, p)
		return
	}

	p.SQL = answer.SQL
	if answer.Result.IsError() {
		p.Error = "Error: " + answer.Result.ErrorMessage()
		h.render(w, r, http.StatusOK, p)
		return
	}
	p.Columns = answer.Result.Columns
	p.Rows = FormatRows(answer.Result.Rows)
	p.Explanation = answer.Explanation
	h.render(w, r, http.StatusOK, p)
}

func (h *handler) newPage() page {
	return page{Title: h.opts.Title, Examples: h.opts.Examples}
}

func (h *handler) render(w http.ResponseWriter, r *http.Request, status int, p page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		h.logger.ErrorContext(r.Context(), "render page failed", slog.Any("error", err))
	}
}
