package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sqlassist/sqlassist/internal/config"
	"github.com/sqlassist/sqlassist/internal/database"
	"github.com/sqlassist/sqlassist/internal/loader"
	"github.com/sqlassist/sqlassist/internal/observability"
	"github.com/sqlassist/sqlassist/internal/storage"
	"github.com/sqlassist/sqlassist/internal/storage/local"
	s3store "github.com/sqlassist/sqlassist/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("sqlassist-loader")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	dataDir := flag.String("data-dir", cfg.Loader.DataDir, "directory scanned for csv/xlsx/parquet files")
	sourceKind := flag.String("source", cfg.Loader.Source, "file source: local|s3")
	table := flag.String("table", cfg.Database.Table, "target table, replaced by every loaded file")
	batchSize := flag.Int("batch-size", cfg.Loader.BatchSize, "rows per INSERT statement")
	flag.Parse()

	logger := observability.NewLogger(cfg, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, err := openSource(ctx, strings.ToLower(strings.TrimSpace(*sourceKind)), *dataDir, cfg.ObjectStore)
	if err != nil {
		logger.Error("failed to open file source", slog.Any("error", err))
		os.Exit(1)
	}

	open, err := database.NewOpener(cfg.Database)
	if err != nil {
		logger.Error("failed to configure database", slog.Any("error", err))
		os.Exit(1)
	}

	l, err := loader.New(source, open, loader.Options{
		Driver:    cfg.Database.Driver,
		Table:     *table,
		BatchSize: *batchSize,
	}, logger)
	if err != nil {
		logger.Error("failed to initialize loader", slog.Any("error", err))
		os.Exit(1)
	}

	summary, err := l.Run(ctx)
	if err != nil {
		logger.Error("loader run failed",
			slog.String("source", summary.Source),
			slog.Int("loaded_files", len(summary.Loaded)),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
	logger.Info("all files imported",
		slog.String("source", summary.Source),
		slog.String("table", summary.Table),
		slog.Int("loaded_files", len(summary.Loaded)),
		slog.Int("skipped_files", len(summary.Skipped)),
		slog.Duration("duration", summary.Duration),
	)
}

func openSource(ctx context.Context, kind, dataDir string, objectStore config.ObjectStoreConfig) (storage.Source, error) {
	var (
		source storage.Source
		err    error
	)
	switch kind {
	case config.SourceLocal:
		source, err = local.New(dataDir)
	case config.SourceS3:
		source, err = s3store.New(ctx, objectStore)
	default:
		return nil, fmt.Errorf("invalid -source %q: want %s or %s", kind, config.SourceLocal, config.SourceS3)
	}
	if err != nil {
		return nil, err
	}
	return source, nil
}
