// Package csvio opens CSV payloads with a sniffed delimiter.
package csvio

import (
	"bytes"
	"encoding/csv"
	"io"

	"github.com/jfyne/csvd"
)

var bom = []byte{0xEF, 0xBB, 0xBF}

// NewReader strips a UTF-8 BOM from b and returns a reader whose delimiter
// is sniffed from the first rows. Input that is empty or blank yields
// io.EOF, and a first record that does not parse yields the parse error.
// csvd cannot sniff either case.
func NewReader(b []byte) (*csv.Reader, error) {
	b = bytes.TrimPrefix(b, bom)
	if len(bytes.TrimSpace(b)) == 0 {
		return nil, io.EOF
	}
	if _, err := csv.NewReader(bytes.NewReader(b)).Read(); err != nil {
		return nil, err
	}
	return csvd.NewReader(bytes.NewReader(b)), nil
}
