// Package database opens connections to the configured SQL engine and describes its
// dialect.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "modernc.org/sqlite"

	"github.com/sqlassist/sqlassist/internal/config"
)

// Opener returns a new handle. Callers own the handle and must close it.
type Opener func(ctx context.Context) (*sql.DB, error)

func NewOpener(cfg config.DatabaseConfig) (Opener, error) {
	name, err := DriverName(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(cfg.DSN) == "" && cfg.Driver != config.DriverDuckDB {
		return nil, fmt.Errorf("database dsn is required")
	}
	dsn := cfg.DSN
	return func(context.Context) (*sql.DB, error) {
		db, err := sql.Open(name, dsn)
		if err != nil {
			return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
		}
		return db, nil
	}, nil
}

func DriverName(driver string) (string, error) {
	switch driver {
	case config.DriverSQLite:
		return "sqlite", nil
	case config.DriverDuckDB:
		return "duckdb", nil
	case config.DriverPostgres:
		return "pgx", nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

// Ping opens a short-lived handle and checks the database answers.
func Ping(ctx context.Context, open Opener) error {
	db, err := open(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

// Dialect holds the per-engine spelling of the statements the loader writes.
type Dialect struct {
	Integer     string
	Real        string
	Text        string
	Placeholder func(position int) string
}

func DialectFor(driver string) Dialect {
	switch driver {
	case config.DriverPostgres:
		return Dialect{
			Integer:     "BIGINT",
			Real:        "DOUBLE PRECISION",
			Text:        "TEXT",
			Placeholder: func(position int) string { return "$" + strconv.Itoa(position) },
		}
	case config.DriverDuckDB:
		return Dialect{Integer: "BIGINT", Real: "DOUBLE", Text: "VARCHAR", Placeholder: questionMark}
	default:
		return Dialect{Integer: "INTEGER", Real: "REAL", Text: "TEXT", Placeholder: questionMark}
	}
}

func questionMark(int) string { return "?" }

// Placeholders returns the comma separated bind markers for count values starting at
// position start (1-based).
func (d Dialect) Placeholders(start, count int) string {
	parts := make([]string, count)
	for i := range parts {
		parts[i] = d.Placeholder(start + i)
	}
	return strings.Join(parts, ", ")
}

func QuoteIdent(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}
