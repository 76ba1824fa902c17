package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sqlassist/sqlassist/internal/api"
	"github.com/sqlassist/sqlassist/internal/api/ui"
	"github.com/sqlassist/sqlassist/internal/assistant"
	"github.com/sqlassist/sqlassist/internal/config"
	"github.com/sqlassist/sqlassist/internal/database"
	"github.com/sqlassist/sqlassist/internal/llm"
	"github.com/sqlassist/sqlassist/internal/nl2sql"
	"github.com/sqlassist/sqlassist/internal/observability"
	"github.com/sqlassist/sqlassist/internal/policy"
	"github.com/sqlassist/sqlassist/internal/prompt"
	"github.com/sqlassist/sqlassist/internal/query"
)

func main() {
	cfg, err := config.LoadFromEnv("sqlassist-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)

	template := prompt.Default()
	if strings.TrimSpace(cfg.Prompt.File) != "" {
		template, err = prompt.LoadFile(cfg.Prompt.File)
		if err != nil {
			logger.Error("failed to load prompt template", slog.Any("error", err))
			os.Exit(1)
		}
	}

	model, closeModel, err := llm.New(context.Background(), cfg.AI)
	if err != nil {
		logger.Error("failed to initialize model client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = closeModel() }()

	translator, err := nl2sql.NewTranslator(llm.Instrument(model, "translate", logger), template)
	if err != nil {
		logger.Error("failed to initialize query translator", slog.Any("error", err))
		os.Exit(1)
	}
	explainer, err := nl2sql.NewExplainer(llm.Instrument(model, "explain", logger))
	if err != nil {
		logger.Error("failed to initialize query explainer", slog.Any("error", err))
		os.Exit(1)
	}

	sqlPolicy, err := policy.New(cfg.Policy.Mode)
	if err != nil {
		logger.Error("failed to initialize sql policy", slog.Any("error", err))
		os.Exit(1)
	}
	open, err := database.NewOpener(cfg.Database)
	if err != nil {
		logger.Error("failed to configure database", slog.Any("error", err))
		os.Exit(1)
	}
	executor, err := query.NewExecutor(open, sqlPolicy, logger)
	if err != nil {
		logger.Error("failed to initialize query executor", slog.Any("error", err))
		os.Exit(1)
	}

	service := &assistant.Service{
		Translator: translator,
		Executor:   executor,
		Explainer:  explainer,
		Logger:     logger,
	}
	uiHandler, err := ui.NewHandler(service, ui.Options{
		Examples: template.Examples(),
		Logger:   logger,
	})
	if err != nil {
		logger.Error("failed to initialize ui", slog.Any("error", err))
		os.Exit(1)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CheckDatabase(open),
		DependencyTimeout: time.Second,
		Assistant:         service,
		Translator:        translator,
		Executor:          executor,
		Explainer:         explainer,
		Examples:          template.Examples(),
		UI:                uiHandler,
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("provider", model.Provider()),
			slog.String("model", model.Name()),
			slog.String("db_driver", cfg.Database.Driver),
			slog.String("sql_policy", sqlPolicy.Name()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
