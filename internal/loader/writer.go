package loader

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sqlassist/sqlassist/internal/database"
)

// maxBindParams keeps a single INSERT under the smallest bind limit of the supported
// engines (sqlite allows 32766).
const maxBindParams = 32000

type writer struct {
	db        *sql.DB
	dialect   database.Dialect
	table     string
	batchSize int
}

// replace drops and recreates the target table from t inside one transaction.
func (w *writer) replace(ctx context.Context, t *Table) (err error) {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	table := database.QuoteIdent(w.table)
	if _, err = tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
		return fmt.Errorf("drop table %s: %w", w.table, err)
	}
	if _, err = tx.ExecContext(ctx, w.createStatement(t)); err != nil {
		return fmt.Errorf("create table %s: %w", w.table, err)
	}

	rowsPerBatch := w.rowsPerBatch(len(t.Columns))
	for start := 0; start < len(t.Records); start += rowsPerBatch {
		end := start + rowsPerBatch
		if end > len(t.Records) {
			end = len(t.Records)
		}
		statement, args, buildErr := w.insertStatement(t, start, end)
		if buildErr != nil {
			err = buildErr
			return err
		}
		if _, err = tx.ExecContext(ctx, statement, args...); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start+1, end, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit table %s: %w", w.table, err)
	}
	return nil
}

func (w *writer) createStatement(t *Table) string {
	defs := make([]string, len(t.Columns))
	for i, name := range t.Columns {
		defs[i] = database.QuoteIdent(name) + " " + w.sqlType(t.Types[i])
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", database.QuoteIdent(w.table), strings.Join(defs, ", "))
}

func (w *writer) insertStatement(t *Table, start, end int) (string, []any, error) {
	columns := make([]string, len(t.Columns))
	for i, name := range t.Columns {
		columns[i] = database.QuoteIdent(name)
	}

	groups := make([]string, 0, end-start)
	args := make([]any, 0, (end-start)*len(t.Columns))
	for row := start; row < end; row++ {
		groups = append(groups, "("+w.dialect.Placeholders(len(args)+1, len(t.Columns))+")")
		for column := range t.Columns {
			value, err := t.value(row, column)
			if err != nil {
				return "", nil, fmt.Errorf("row %d column %s: %w", row+1, t.Columns[column], err)
			}
			args = append(args, value)
		}
	}
	statement := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		database.QuoteIdent(w.table), strings.Join(columns, ", "), strings.Join(groups, ", "))
	return statement, args, nil
}

func (w *writer) rowsPerBatch(columns int) int {
	rows := w.batchSize
	if rows <= 0 {
		rows = 500
	}
	if columns > 0 && rows*columns > maxBindParams {
		rows = maxBindParams / columns
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (w *writer) sqlType(c ColumnType) string {
	switch c {
	case ColumnInteger:
		return w.dialect.Integer
	case ColumnReal:
		return w.dialect.Real
	default:
		return w.dialect.Text
	}
}
