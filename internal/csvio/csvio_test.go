package csvio

import (
	"encoding/csv"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReader_SniffsDelimiter(t *testing.T) {
	tests := map[string]struct {
		in   string
		want []string
	}{
		"comma":     {"id,name\n1,Alex\n", []string{"id", "name"}},
		"semicolon": {"id;name\n1;Alex\n", []string{"id", "name"}},
		"bom":       {"\xEF\xBB\xBFid,name\n1,Alex\n", []string{"id", "name"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			r, err := NewReader([]byte(tt.in))
			require.NoError(t, err)
			header, err := r.Read()
			require.NoError(t, err)
			assert.Equal(t, tt.want, header)
		})
	}
}

func TestNewReader_RejectsUnsniffableInput(t *testing.T) {
	tests := map[string]struct {
		in   string
		want error
	}{
		"empty":              {"", io.EOF},
		"blank lines":        {"\n  \n\t\n", io.EOF},
		"bom only":           {"\xEF\xBB\xBF", io.EOF},
		"unterminated quote": {"customer_id,\"name\n1,a\n", csv.ErrQuote},
		"bare quote":         {"a\"b,c\n1,2\n", csv.ErrBareQuote},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var r *csv.Reader
			var err error
			require.NotPanics(t, func() { r, err = NewReader([]byte(tt.in)) })
			assert.Nil(t, r)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
