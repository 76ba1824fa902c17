// Package loader bulk-loads spreadsheet files into the table the assistant queries.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sqlassist/sqlassist/internal/database"
	"github.com/sqlassist/sqlassist/internal/observability"
	"github.com/sqlassist/sqlassist/internal/storage"
)

type Options struct {
	Driver    string
	Table     string
	BatchSize int
}

type LoadedFile struct {
	Key     string
	Format  Format
	Rows    int
	Columns []string
}

type Summary struct {
	Source   string
	Table    string
	Loaded   []LoadedFile
	Skipped  []string
	Duration time.Duration
}

type Loader struct {
	source storage.Source
	open   database.Opener
	opts   Options
	logger *slog.Logger
}

func New(source storage.Source, open database.Opener, opts Options, logger *slog.Logger) (*Loader, error) {
	if source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if open == nil {
		return nil, fmt.Errorf("database opener is required")
	}
	if strings.TrimSpace(opts.Table) == "" {
		return nil, fmt.Errorf("target table is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{source: source, open: open, opts: opts, logger: logger}, nil
}

// Run replace-writes every recognized file into the target table in key order, so
// the last file wins. The first parse or write error stops the run; tables written
// by earlier files stay committed.
func (l *Loader) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	summary := Summary{Source: l.source.Location(), Table: l.opts.Table}

	objects, err := l.source.List(ctx)
	if err != nil {
		return summary, err
	}

	db, err := l.open(ctx)
	if err != nil {
		return summary, err
	}
	defer func() { _ = db.Close() }()

	w := &writer{
		db:        db,
		dialect:   database.DialectFor(l.opts.Driver),
		table:     l.opts.Table,
		batchSize: l.opts.BatchSize,
	}

	for _, object := range objects {
		if err := ctx.Err(); err != nil {
			return l.finish(summary, start), err
		}

		if object.NotFile {
			l.logger.InfoContext(ctx, "loader skipped unsupported file",
				slog.String("file", object.Key),
				slog.String("reason", "not a regular file"),
			)
			observability.ObserveLoaderFile(Extension(object.Key), observability.OutcomeSkipped, 0)
			summary.Skipped = append(summary.Skipped, object.Key)
			continue
		}

		format, compression, ok := DetectFormat(object.Key)
		if !ok {
			l.logger.InfoContext(ctx, "loader skipped unsupported file",
				slog.String("file", object.Key),
				slog.String("reason", "unsupported extension"),
			)
			observability.ObserveLoaderFile(Extension(object.Key), observability.OutcomeSkipped, 0)
			summary.Skipped = append(summary.Skipped, object.Key)
			continue
		}

		table, err := l.read(ctx, object.Key, compression, format)
		if err == nil {
			err = w.replace(ctx, table)
		}
		if err != nil {
			observability.ObserveLoaderFile(string(format), observability.OutcomeError, 0)
			return l.finish(summary, start), fmt.Errorf("load %s: %w", object.Key, err)
		}

		observability.ObserveLoaderFile(string(format), observability.OutcomeOK, len(table.Records))
		summary.Loaded = append(summary.Loaded, LoadedFile{
			Key:     object.Key,
			Format:  format,
			Rows:    len(table.Records),
			Columns: table.Columns,
		})
		l.logger.InfoContext(ctx, "loader loaded file",
			slog.String("file", object.Key),
			slog.String("format", string(format)),
			slog.String("table", l.opts.Table),
			slog.Int("rows", len(table.Records)),
			slog.Int("columns", len(table.Columns)),
		)
	}

	return l.finish(summary, start), nil
}

func (l *Loader) read(ctx context.Context, key string, compression Compression, format Format) (*Table, error) {
	body, err := l.source.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer func() { _ = body.Close() }()

	reader, closeReader, err := decompress(body, compression)
	if err != nil {
		return nil, err
	}
	defer func() { _ = closeReader() }()

	return parse(reader, format)
}

func (l *Loader) finish(summary Summary, start time.Time) Summary {
	summary.Duration = time.Since(start)
	return summary
}
