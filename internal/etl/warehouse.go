package etl

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	apperrors "ecomsim/internal/errors"
)

// Warehouse mirrors cleaned tables into a SQLite file. Every column is
// stored as TEXT, exactly as it appears in the CSV.
type Warehouse struct {
	db   *sql.DB
	path string
}

func OpenWarehouse(path string) (*Warehouse, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, apperrors.Output(err, filepath.Dir(path))
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, apperrors.Output(err, path)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.Output(err, path)
	}
	return &Warehouse{db: db, path: path}, nil
}

func (w *Warehouse) Close() error {
	return w.db.Close()
}

// Replace drops and recreates table name with t's contents in a single
// transaction.
func (w *Warehouse) Replace(ctx context.Context, name string, t *Table) error {
	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Output(err, w.path)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(name)); err != nil {
		return apperrors.Output(fmt.Errorf("drop %s: %w", name, err), w.path)
	}

	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(name), strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return apperrors.Output(fmt.Errorf("create %s: %w", name, err), w.path)
	}

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s VALUES (%s)", quoteIdent(name), strings.Join(marks, ", ")))
	if err != nil {
		return apperrors.Output(fmt.Errorf("prepare insert %s: %w", name, err), w.path)
	}
	defer stmt.Close()

	args := make([]any, len(t.Header))
	for _, row := range t.Rows {
		for i := range args {
			args[i] = row[i]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return apperrors.Output(fmt.Errorf("insert %s: %w", name, err), w.path)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Output(fmt.Errorf("commit %s: %w", name, err), w.path)
	}
	return nil
}

// Count returns the number of rows stored in table name.
func (w *Warehouse) Count(ctx context.Context, name string) (int, error) {
	var n int
	err := w.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+quoteIdent(name)).Scan(&n)
	return n, err
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
