package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/sqlassist/sqlassist/internal/config"
)

func TestDriverName(t *testing.T) {
	tests := map[string]string{
		config.DriverSQLite:   "sqlite",
		config.DriverDuckDB:   "duckdb",
		config.DriverPostgres: "pgx",
	}
	for driver, want := range tests {
		got, err := DriverName(driver)
		if err != nil {
			t.Fatalf("DriverName(%q) error = %v", driver, err)
		}
		if got != want {
			t.Fatalf("DriverName(%q) = %q, want %q", driver, got, want)
		}
	}
	if _, err := DriverName("oracle"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestNewOpenerRequiresDSN(t *testing.T) {
	if _, err := NewOpener(config.DatabaseConfig{Driver: config.DriverSQLite}); err == nil {
		t.Fatal("expected error for empty sqlite dsn")
	}
	if _, err := NewOpener(config.DatabaseConfig{Driver: config.DriverDuckDB}); err != nil {
		t.Fatalf("duckdb in-memory dsn should be accepted: %v", err)
	}
}

func TestPingSQLiteFile(t *testing.T) {
	open, err := NewOpener(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "employee_details.db"),
	})
	if err != nil {
		t.Fatalf("NewOpener() error = %v", err)
	}
	if err := Ping(context.Background(), open); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestDialectPlaceholders(t *testing.T) {
	if got := DialectFor(config.DriverSQLite).Placeholders(1, 3); got != "?, ?, ?" {
		t.Fatalf("sqlite Placeholders() = %q", got)
	}
	if got := DialectFor(config.DriverPostgres).Placeholders(4, 3); got != "$4, $5, $6" {
		t.Fatalf("postgres Placeholders() = %q", got)
	}
	if got := DialectFor(config.DriverDuckDB).Text; got != "VARCHAR" {
		t.Fatalf("duckdb Text = %q", got)
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := QuoteIdent(`first "nick" name`); got != `"first ""nick"" name"` {
		t.Fatalf("QuoteIdent() = %s", got)
	}
}
