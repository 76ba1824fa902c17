package loader

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/sqlassist/sqlassist/internal/config"
	"github.com/sqlassist/sqlassist/internal/database"
)

func TestReplaceBatchesInsertsInOneTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	table, err := newTable([]string{"employee_id", "name"}, [][]string{{"1", "Asha"}, {"2", "Ravi"}, {"3", ""}})
	if err != nil {
		t.Fatalf("newTable() error = %v", err)
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DROP TABLE IF EXISTS "employee_details"`)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`CREATE TABLE "employee_details" ("employee_id" BIGINT, "name" TEXT)`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "employee_details" ("employee_id", "name") VALUES ($1, $2), ($3, $4)`)).
		WithArgs(int64(1), "Asha", int64(2), "Ravi").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO "employee_details" ("employee_id", "name") VALUES ($1, $2)`)).
		WithArgs(int64(3), nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	w := &writer{db: db, dialect: database.DialectFor(config.DriverPostgres), table: "employee_details", batchSize: 2}
	if err := w.replace(context.Background(), table); err != nil {
		t.Fatalf("replace() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestReplaceRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	defer func() { _ = db.Close() }()

	table, _ := newTable([]string{"id"}, [][]string{{"1"}})

	mock.ExpectBegin()
	mock.ExpectExec("DROP TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO").WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	w := &writer{db: db, dialect: database.DialectFor(config.DriverSQLite), table: "employee_details", batchSize: 10}
	if err := w.replace(context.Background(), table); err == nil {
		t.Fatal("expected insert error")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestRowsPerBatchRespectsBindLimit(t *testing.T) {
	w := &writer{batchSize: 10000}
	if got := w.rowsPerBatch(10); got != maxBindParams/10 {
		t.Fatalf("rowsPerBatch(10) = %d", got)
	}
	w.batchSize = 0
	if got := w.rowsPerBatch(3); got != 500 {
		t.Fatalf("rowsPerBatch default = %d", got)
	}
}
