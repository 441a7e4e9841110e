package etl

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecomsim/internal/config"
	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/generator"
	"ecomsim/internal/models"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func generateRaw(t *testing.T, dir string) *generator.Dataset {
	t.Helper()
	g := config.Default().Generator
	g.Customers, g.Products, g.Orders, g.Sessions = 50, 20, 300, 200
	cfg, err := generator.ConfigFrom(g)
	require.NoError(t, err)
	ds, err := generator.Generate(cfg)
	require.NoError(t, err)
	require.NoError(t, generator.WriteDataset(context.Background(), dir, ds, discardLogger()))
	return ds
}

func TestDedupe_KeepsFirstOccurrenceInOrder(t *testing.T) {
	in := &Table{
		Header: []string{"id", "v"},
		Rows: [][]string{
			{"1", "a"},
			{"2", "b"},
			{"1", "a"},
			{"3", "c"},
			{"2", "b"},
			{"1", "A"},
		},
	}

	out := Dedupe(in)
	assert.Equal(t, [][]string{{"1", "a"}, {"2", "b"}, {"3", "c"}, {"1", "A"}}, out.Rows)
	assert.Len(t, in.Rows, 6, "input is not modified")

	again := Dedupe(out)
	assert.Equal(t, out.Rows, again.Rows)
}

func TestDedupe_FieldBoundariesMatter(t *testing.T) {
	in := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"x,y", "z"}, {"x", "y,z"}},
	}
	assert.Len(t, Dedupe(in).Rows, 2)
}

func TestLeftJoin(t *testing.T) {
	orders := &Table{
		Name:   "orders",
		Header: []string{"order_id", "customer_id", "signup_date"},
		Rows: [][]string{
			{"1", "10", "2020-01-01"},
			{"2", "99", "2020-01-02"},
			{"3", "20", "2020-01-03"},
		},
	}
	customers := &Table{
		Name:   "customers",
		Header: []string{"customer_id", "full_name", "signup_date"},
		Rows: [][]string{
			{"10", "Alex Lee", "2019-05-05"},
			{"20", "Sam Kim", "2018-01-01"},
			{"20", "Sam Kim (dup id)", "2018-02-02"},
		},
	}

	got, err := LeftJoin(orders, customers, "customer_id")
	require.NoError(t, err)

	assert.Equal(t, []string{"order_id", "customer_id", "signup_date_x", "full_name", "signup_date_y"}, got.Header)
	assert.Equal(t, [][]string{
		{"1", "10", "2020-01-01", "Alex Lee", "2019-05-05"},
		{"2", "99", "2020-01-02", "", ""},
		{"3", "20", "2020-01-03", "Sam Kim", "2018-01-01"},
		{"3", "20", "2020-01-03", "Sam Kim (dup id)", "2018-02-02"},
	}, got.Rows)
}

func TestLeftJoin_MissingKey(t *testing.T) {
	a := &Table{Name: "a", Header: []string{"id"}}
	b := &Table{Name: "b", Header: []string{"other"}}

	_, err := LeftJoin(a, b, "id")
	assert.ErrorContains(t, err, `b has no "id" column`)
	_, err = LeftJoin(b, a, "id")
	assert.ErrorContains(t, err, `b has no "id" column`)
}

func TestLoadTable_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadTable(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInputMissing, apperrors.CodeOf(err))

	malformed := map[string]string{
		"empty":                   "",
		"blank lines":             "\n \n\n",
		"bom only":                "\xEF\xBB\xBF",
		"unterminated quoted row": "customer_id,full_name\n1,\"unterminated\n",
		"unterminated header":     "customer_id,\"name\n1,a\n",
		"bare quote in header":    "a\"b,c\n1,2\n",
		"ragged row":              "customer_id,full_name\n1,Alex,extra\n",
	}
	for name, content := range malformed {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(name, " ", "_")+".csv")
			writeFile(t, path, content)

			var err error
			require.NotPanics(t, func() { _, err = LoadTable(path) })
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeMalformedInput, apperrors.CodeOf(err))
		})
	}
}

func TestLoadTable_SniffsSemicolons(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orders.csv")
	writeFile(t, path, "order_id;total_value\n1;10.50\n")

	tbl, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"order_id", "total_value"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "10.50"}}, tbl.Rows)
}

func TestLoadTable_StripsBOMAndKeepsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "products.csv")
	writeFile(t, path, "\xEF\xBB\xBFproduct_id,price\n1,10.50\n2,3\n")

	tbl, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"product_id", "price"}, tbl.Header)
	assert.Equal(t, [][]string{{"1", "10.50"}, {"2", "3"}}, tbl.Rows)
	assert.Equal(t, "products.csv", tbl.Name)
}

func TestWriteTable_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")
	in := &Table{Header: []string{"name", "note"}, Rows: [][]string{{"Alex Lee", `says "hi", twice`}}}

	require.NoError(t, WriteTable(path, in))
	out, err := LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, in.Header, out.Header)
	assert.Equal(t, in.Rows, out.Rows)
}

func TestRun_EndToEnd(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "data")
	ds := generateRaw(t, raw)

	// Duplicate the first customer row twice.
	custPath := filepath.Join(raw, models.CustomersFile)
	b, err := os.ReadFile(custPath)
	require.NoError(t, err)
	lines := strings.SplitAfter(string(b), "\n")
	require.NoError(t, os.WriteFile(custPath, []byte(string(b)+lines[1]+lines[1]), 0o644))

	cfg := Config{
		RawDir:     raw,
		CleanDir:   filepath.Join(root, "clean_data"),
		MasterPath: filepath.Join(root, "master_dataset.csv"),
		SQLitePath: filepath.Join(root, "warehouse.sqlite"),
	}
	summary, err := Run(context.Background(), cfg, discardLogger())
	require.NoError(t, err)

	require.Len(t, summary.Tables, 5)
	assert.Equal(t, TableStats{Name: models.CustomersFile, Loaded: len(ds.Customers) + 2, Cleaned: len(ds.Customers)}, summary.Tables[0])
	assert.Equal(t, len(ds.Orders), summary.MasterRows, "left join keeps every order exactly once")

	for _, name := range models.RawTables {
		_, err := os.Stat(filepath.Join(cfg.CleanDir, CleanName(name)))
		assert.NoError(t, err, name)
	}

	master, err := LoadTable(cfg.MasterPath)
	require.NoError(t, err)
	assert.Len(t, master.Rows, len(ds.Orders))
	for _, col := range []string{"order_id", "total_value", "full_name", "signup_date_x", "signup_date_y", "category", "price"} {
		assert.GreaterOrEqual(t, master.Column(col), 0, "master column %s", col)
	}
	assert.Equal(t, 1, strings.Count(strings.Join(master.Header, ","), "customer_id"))

	wh, err := OpenWarehouse(cfg.SQLitePath)
	require.NoError(t, err)
	defer wh.Close()
	n, err := wh.Count(context.Background(), "master_dataset")
	require.NoError(t, err)
	assert.Equal(t, len(ds.Orders), n)
	n, err = wh.Count(context.Background(), "customers")
	require.NoError(t, err)
	assert.Equal(t, len(ds.Customers), n)
}

func TestRun_IdempotentOnCleanInput(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "data")
	generateRaw(t, raw)

	first, err := Run(context.Background(), Config{
		RawDir:     raw,
		CleanDir:   filepath.Join(root, "clean1"),
		MasterPath: filepath.Join(root, "master1.csv"),
	}, discardLogger())
	require.NoError(t, err)

	// Feed the cleaned tables back in under their raw names.
	again := filepath.Join(root, "again")
	for _, name := range models.RawTables {
		b, err := os.ReadFile(filepath.Join(root, "clean1", CleanName(name)))
		require.NoError(t, err)
		writeFile(t, filepath.Join(again, name), string(b))
	}

	second, err := Run(context.Background(), Config{
		RawDir:     again,
		CleanDir:   filepath.Join(root, "clean2"),
		MasterPath: filepath.Join(root, "master2.csv"),
	}, discardLogger())
	require.NoError(t, err)

	for i := range first.Tables {
		assert.Equal(t, first.Tables[i].Cleaned, second.Tables[i].Loaded)
		assert.Equal(t, second.Tables[i].Loaded, second.Tables[i].Cleaned, "no rows dropped on %s", second.Tables[i].Name)
	}
	assert.Equal(t, first.MasterRows, second.MasterRows)

	a, err := os.ReadFile(filepath.Join(root, "master1.csv"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(root, "master2.csv"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestRun_MissingInputIsFatal(t *testing.T) {
	root := t.TempDir()
	raw := filepath.Join(root, "data")
	generateRaw(t, raw)
	require.NoError(t, os.Remove(filepath.Join(raw, models.SessionsFile)))

	_, err := Run(context.Background(), Config{
		RawDir:     raw,
		CleanDir:   filepath.Join(root, "clean"),
		MasterPath: filepath.Join(root, "master.csv"),
	}, discardLogger())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInputMissing, apperrors.CodeOf(err))

	_, statErr := os.Stat(filepath.Join(root, "master.csv"))
	assert.True(t, os.IsNotExist(statErr), "nothing is written when loading fails")
}
