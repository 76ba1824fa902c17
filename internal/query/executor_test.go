package query

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sqlassist/sqlassist/internal/config"
	"github.com/sqlassist/sqlassist/internal/database"
	"github.com/sqlassist/sqlassist/internal/policy"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mockOpener(t *testing.T) (database.Opener, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	return func(context.Context) (*sql.DB, error) { return db, nil }, mock
}

func TestExecuteReturnsColumnsAndRows(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery("SELECT name, salary FROM employee_details").
		WillReturnRows(sqlmock.NewRows([]string{"name", "salary"}).
			AddRow([]byte("Asha"), int64(72000)).
			AddRow("Ravi", int64(65000)))
	mock.ExpectClose()

	executor, err := NewExecutor(open, nil, discardLogger())
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	res := executor.Execute(context.Background(), "SELECT name, salary FROM employee_details;")
	if res.IsError() {
		t.Fatalf("Execute() returned error row: %s", res.ErrorMessage())
	}
	if len(res.Columns) != 2 || res.Columns[0] != "name" || res.Columns[1] != "salary" {
		t.Fatalf("Columns = %v", res.Columns)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if res.Rows[0][0] != "Asha" {
		t.Fatalf("[]byte value not normalized: %#v", res.Rows[0][0])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestExecuteDefaultPolicyRunsFirstSelectLineOnly(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery(`^SELECT name$`).
		WillReturnRows(sqlmock.NewRows([]string{"name"}).AddRow("Asha"))
	mock.ExpectClose()

	executor, err := NewExecutor(open, nil, discardLogger())
	if err != nil {
		t.Fatalf("NewExecutor() error = %v", err)
	}
	res := executor.Execute(context.Background(), "SELECT name\nFROM employee_details")
	if res.IsError() {
		t.Fatalf("Execute() returned error row: %s", res.ErrorMessage())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestExecuteDatabaseErrorBecomesErrorRow(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery("SELECT nope").WillReturnError(errors.New("no such column: nope"))
	mock.ExpectClose()

	executor, _ := NewExecutor(open, nil, discardLogger())
	res := executor.Execute(context.Background(), "SELECT nope FROM employee_details")

	if !res.IsError() {
		t.Fatalf("Execute() = %+v, want error row", res)
	}
	if len(res.Columns) != 1 || res.Columns[0] != "Error" {
		t.Fatalf("Columns = %v", res.Columns)
	}
	if res.Rows[0][0] != "SQL Error" || res.ErrorMessage() != "no such column: nope" {
		t.Fatalf("Rows = %v", res.Rows)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("connection not closed after failure: %v", err)
	}
}

func TestExecuteScanErrorBecomesErrorRow(t *testing.T) {
	open, mock := mockOpener(t)
	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"a"}).AddRow(1).RowError(0, errors.New("row broke")))
	mock.ExpectClose()

	executor, _ := NewExecutor(open, nil, discardLogger())
	res := executor.Execute(context.Background(), "SELECT a FROM t")
	if res.ErrorMessage() != "row broke" {
		t.Fatalf("Execute() = %+v", res)
	}
}

func TestExecuteOpenErrorBecomesErrorRow(t *testing.T) {
	open := func(context.Context) (*sql.DB, error) { return nil, errors.New("disk full") }
	executor, _ := NewExecutor(open, nil, discardLogger())

	res := executor.Execute(context.Background(), "SELECT 1")
	if res.ErrorMessage() != "disk full" {
		t.Fatalf("Execute() = %+v", res)
	}
}

func TestExecuteEmptyStatement(t *testing.T) {
	open := func(context.Context) (*sql.DB, error) {
		t.Fatal("opener should not be called for an empty statement")
		return nil, nil
	}
	executor, _ := NewExecutor(open, nil, discardLogger())
	if res := executor.Execute(context.Background(), " ; "); !res.IsError() {
		t.Fatalf("Execute() = %+v, want error row", res)
	}
}

func TestExecutePolicyRejectionBecomesErrorRow(t *testing.T) {
	open := func(context.Context) (*sql.DB, error) {
		t.Fatal("opener should not be called for a rejected statement")
		return nil, nil
	}
	executor, _ := NewExecutor(open, policy.ReadOnly{}, discardLogger())

	res := executor.Execute(context.Background(), "DROP TABLE employee_details")
	if !res.IsError() {
		t.Fatalf("Execute() = %+v, want error row", res)
	}
	if res.ErrorMessage() == "" {
		t.Fatal("rejection message should be carried in the error row")
	}
}

func TestExecuteAgainstSQLite(t *testing.T) {
	open, err := database.NewOpener(config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "employee_details.db"),
	})
	if err != nil {
		t.Fatalf("NewOpener() error = %v", err)
	}
	seed, err := open(context.Background())
	if err != nil {
		t.Fatalf("open() error = %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE employee_details (employee_id INTEGER, name TEXT, role TEXT)`,
		`INSERT INTO employee_details VALUES (1, 'Asha', 'Data Analyst'), (2, 'Ravi', 'Engineer'), (3, 'Mira', 'Data Analyst')`,
	} {
		if _, err := seed.Exec(stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}
	_ = seed.Close()

	executor, _ := NewExecutor(open, nil, discardLogger())
	res := executor.Execute(context.Background(), "SELECT COUNT(*) AS analysts, MAX(name) AS last_name FROM employee_details WHERE role = 'Data Analyst'")
	if res.IsError() {
		t.Fatalf("Execute() error row: %s", res.ErrorMessage())
	}
	if len(res.Columns) != 2 || res.Columns[0] != "analysts" || res.Columns[1] != "last_name" {
		t.Fatalf("Columns = %v", res.Columns)
	}
	if len(res.Rows) != 1 || res.Rows[0][0] != int64(2) || res.Rows[0][1] != "Mira" {
		t.Fatalf("Rows = %#v", res.Rows)
	}

	bad := executor.Execute(context.Background(), "SELEC broken")
	if !bad.IsError() {
		t.Fatalf("invalid SQL should produce the error row, got %+v", bad)
	}
}

func TestIsErrorIgnoresOrdinaryResults(t *testing.T) {
	res := Result{Columns: []string{"Error"}, Rows: [][]any{{"value", "x"}}}
	if res.IsError() {
		t.Fatal("a column named Error alone is not the error row")
	}
	if ErrorResult("boom").ErrorMessage() != "boom" {
		t.Fatal("ErrorResult message lost")
	}
}
