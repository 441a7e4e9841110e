// Package etl deduplicates the raw generator tables and joins orders with
// customers and products into the master dataset.
package etl

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"ecomsim/internal/csvio"
	apperrors "ecomsim/internal/errors"
)

// Table is an untyped CSV table. Cells keep their on-disk text so a round
// trip through the merger never reformats values.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string
}

func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// LoadTable reads the CSV file at path. A missing file is INPUT_MISSING;
// an empty file or one that does not parse is MALFORMED_INPUT.
func LoadTable(path string) (*Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Input(err, path)
	}

	r, err := csvio.NewReader(b)
	if err == io.EOF {
		return nil, apperrors.Malformed(err, "empty csv file: "+path)
	}
	if err != nil {
		return nil, apperrors.Malformed(err, "read csv header: "+path)
	}
	header, err := r.Read()
	if err != nil {
		return nil, apperrors.Malformed(err, "read csv header: "+path)
	}

	t := &Table{Name: filepath.Base(path), Header: header}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperrors.Malformed(err, "read csv row: "+path)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

// WriteTable writes t to path, creating parent directories and replacing any
// existing file.
func WriteTable(path string, t *Table) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return apperrors.Output(err, filepath.Dir(path))
	}
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Output(err, path)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Header); err != nil {
		return apperrors.Output(err, path)
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return apperrors.Output(fmt.Errorf("write rows: %w", err), path)
	}
	if err := f.Close(); err != nil {
		return apperrors.Output(err, path)
	}
	return nil
}
