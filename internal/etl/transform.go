package etl

import (
	"fmt"
	"strings"
)

const (
	leftSuffix  = "_x"
	rightSuffix = "_y"
)

// Dedupe returns a copy of t without exact-duplicate rows. The first
// occurrence of each row is kept and row order is preserved.
func Dedupe(t *Table) *Table {
	seen := make(map[string]struct{}, len(t.Rows))
	out := &Table{Name: t.Name, Header: t.Header, Rows: make([][]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		k := strings.Join(row, "\x1f")
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// LeftJoin keeps every row of left in order, appending the columns of each
// matching right row. A left row with several matches is repeated once per
// match; one without matches gets empty right columns. Non-key columns
// present on both sides are renamed with _x (left) and _y (right).
func LeftJoin(left, right *Table, key string) (*Table, error) {
	lk := left.Column(key)
	if lk < 0 {
		return nil, fmt.Errorf("left join: %s has no %q column", left.Name, key)
	}
	rk := right.Column(key)
	if rk < 0 {
		return nil, fmt.Errorf("left join: %s has no %q column", right.Name, key)
	}

	leftCols := make(map[string]struct{}, len(left.Header))
	for i, h := range left.Header {
		if i != lk {
			leftCols[h] = struct{}{}
		}
	}
	rightCols := make(map[string]struct{}, len(right.Header))
	for i, h := range right.Header {
		if i != rk {
			rightCols[h] = struct{}{}
		}
	}

	header := make([]string, 0, len(left.Header)+len(right.Header)-1)
	for i, h := range left.Header {
		if _, clash := rightCols[h]; clash && i != lk {
			h += leftSuffix
		}
		header = append(header, h)
	}
	rightIdx := make([]int, 0, len(right.Header)-1)
	for i, h := range right.Header {
		if i == rk {
			continue
		}
		if _, clash := leftCols[h]; clash {
			h += rightSuffix
		}
		header = append(header, h)
		rightIdx = append(rightIdx, i)
	}

	index := make(map[string][]int, len(right.Rows))
	for i, row := range right.Rows {
		index[row[rk]] = append(index[row[rk]], i)
	}

	out := &Table{Name: left.Name, Header: header, Rows: make([][]string, 0, len(left.Rows))}
	empty := make([]string, len(rightIdx))
	for _, row := range left.Rows {
		matches := index[row[lk]]
		if len(matches) == 0 {
			out.Rows = append(out.Rows, concat(row, empty))
			continue
		}
		for _, m := range matches {
			vals := make([]string, len(rightIdx))
			for j, ci := range rightIdx {
				vals[j] = right.Rows[m][ci]
			}
			out.Rows = append(out.Rows, concat(row, vals))
		}
	}
	return out, nil
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
