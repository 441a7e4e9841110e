package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
)

const masterHeader = "order_id,customer_id,product_id,order_date,quantity,total_value,full_name,signup_date_x,signup_date_y,category,price\n"

// Three customers, five orders. Alex Lee (1) spends 10 + 20.
const scenarioCSV = masterHeader +
	"1,1,7,2023-01-15 10:00:00,1,10.00,Alex Lee,2022-01-01,2022-01-01,Books,10.00\n" +
	"2,1,8,2023-02-03 09:30:00,2,20.00,Alex Lee,2022-01-01,2022-01-01,Toys,10.00\n" +
	"3,2,7,2023-01-20 18:45:10,1,5.50,Sam Kim,2021-06-01,2021-06-01,Books,5.50\n" +
	"4,2,9,2023-03-01 00:00:00,1,14.50,Sam Kim,2021-06-01,2021-06-01,,14.50\n" +
	"5,3,8,2023-02-28 23:59:59,5,50.00,Jordan Diaz,2020-02-02,2020-02-02,Toys,10.00\n"

func createTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), models.MasterFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestNewAnalytics(t *testing.T) {
	a := NewAnalytics()
	if a == nil {
		t.Fatal("NewAnalytics() returned nil")
	}
	if a.snapshot == nil {
		t.Error("snapshot should be initialized")
	}
	if a.logger == nil {
		t.Error("logger should be initialized")
	}
	if a.cacheDir != "" {
		t.Errorf("cache should be disabled by default, got %q", a.cacheDir)
	}

	b := NewAnalytics(WithCacheDir("x"))
	if b.cacheDir != "x" {
		t.Errorf("cacheDir = %q, want x", b.cacheDir)
	}
}

func TestAnalytics_Scenario(t *testing.T) {
	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), createTempCSV(t, scenarioCSV)); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}

	top := a.TopCustomers(10)
	want := []models.CustomerRevenue{
		{CustomerID: "3", FullName: "Jordan Diaz", TotalValue: 50, Orders: 1},
		{CustomerID: "1", FullName: "Alex Lee", TotalValue: 30, Orders: 2},
		{CustomerID: "2", FullName: "Sam Kim", TotalValue: 20, Orders: 2},
	}
	if len(top) != len(want) {
		t.Fatalf("TopCustomers() len = %d, want %d", len(top), len(want))
	}
	for i := range want {
		if top[i] != want[i] {
			t.Errorf("TopCustomers()[%d] = %+v, want %+v", i, top[i], want[i])
		}
	}

	// (10 + 20 + 5.5 + 14.5 + 50) / 5
	if got := a.AverageOrderValue(); got != 20 {
		t.Errorf("AverageOrderValue() = %v, want 20", got)
	}

	cats := a.CategorySales()
	wantCats := []models.CategorySales{
		{Category: "Toys", TotalValue: 70},
		{Category: "Books", TotalValue: 15.5},
		{Category: UnknownCategory, TotalValue: 14.5},
	}
	if len(cats) != len(wantCats) {
		t.Fatalf("CategorySales() = %+v", cats)
	}
	for i := range wantCats {
		if cats[i] != wantCats[i] {
			t.Errorf("CategorySales()[%d] = %+v, want %+v", i, cats[i], wantCats[i])
		}
	}

	months := a.MonthlySales()
	wantMonths := []models.MonthlyData{
		{Month: "2023-01", Volume: 15.5},
		{Month: "2023-02", Volume: 70},
		{Month: "2023-03", Volume: 14.5},
	}
	if len(months) != len(wantMonths) {
		t.Fatalf("MonthlySales() = %+v", months)
	}
	for i := range wantMonths {
		if months[i] != wantMonths[i] {
			t.Errorf("MonthlySales()[%d] = %+v, want %+v", i, months[i], wantMonths[i])
		}
	}

	s := a.Snapshot()
	if s.Orders != 5 || s.RecordCount != 5 {
		t.Errorf("Orders = %d, RecordCount = %d, want 5 and 5", s.Orders, s.RecordCount)
	}
}

func TestAnalytics_AverageOrderValueSumsLinesPerOrder(t *testing.T) {
	a := NewAnalytics()
	a.SetData([]models.MasterRow{
		{OrderID: "1", CustomerID: "1", TotalValue: 10},
		{OrderID: "1", CustomerID: "1", TotalValue: 5},
		{OrderID: "2", CustomerID: "2", TotalValue: 4},
	})

	// Orders are 15 and 4.
	if got := a.AverageOrderValue(); got != 9.5 {
		t.Errorf("AverageOrderValue() = %v, want 9.5", got)
	}
}

func TestAnalytics_TopCustomers(t *testing.T) {
	a := NewAnalytics()
	var rows []models.MasterRow
	for i, id := range []string{"10", "2", "1", "3", "2"} {
		rows = append(rows, models.MasterRow{OrderID: string(rune('a' + i)), CustomerID: id, FullName: "Same Name", TotalValue: 5})
	}
	rows = append(rows, models.MasterRow{OrderID: "z", CustomerID: "99", TotalValue: 1})
	a.SetData(rows)

	top := a.TopCustomers(3)
	if len(top) != 3 {
		t.Fatalf("TopCustomers(3) len = %d", len(top))
	}
	// Customers sharing a name stay separate; ties break on numeric id.
	if top[0].CustomerID != "2" || top[0].TotalValue != 10 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].CustomerID != "1" || top[2].CustomerID != "3" {
		t.Errorf("tie order = %s, %s; want 1, 3", top[1].CustomerID, top[2].CustomerID)
	}

	all := a.TopCustomers(100)
	if len(all) != 5 {
		t.Errorf("TopCustomers(100) len = %d, want 5", len(all))
	}
	if last := all[len(all)-1]; last.FullName != UnknownCustomer {
		t.Errorf("unmatched customer name = %q, want %q", last.FullName, UnknownCustomer)
	}
}

func TestAnalytics_LoadFromCSV_InvalidData(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		code apperrors.ErrorCode
	}{
		{name: "empty file", csv: "", code: apperrors.CodeMalformedInput},
		{name: "blank lines", csv: "\n  \n", code: apperrors.CodeMalformedInput},
		{name: "unterminated quote in header", csv: "order_id,\"customer_id\n1,1\n", code: apperrors.CodeMalformedInput},
		{name: "bare quote in header", csv: "order\"id,customer_id\n1,1\n", code: apperrors.CodeMalformedInput},
		{
			name: "unterminated quote in row",
			csv:  masterHeader + "1,1,7,2023-01-01,1,10.00,\"Alex Lee,,,Books,10\n",
			code: apperrors.CodeMalformedInput,
		},
		{name: "header only", csv: masterHeader, code: apperrors.CodeMalformedInput},
		{
			name: "missing column",
			csv:  "order_id,customer_id,order_date,total_value\n1,1,2023-01-01,10\n",
			code: apperrors.CodeMalformedInput,
		},
		{
			name: "invalid date",
			csv:  masterHeader + "1,1,7,yesterday,1,10.00,Alex Lee,,,Books,10\n",
			code: apperrors.CodeMalformedInput,
		},
		{
			name: "invalid total",
			csv:  masterHeader + "1,1,7,2023-01-01,1,ten,Alex Lee,,,Books,10\n",
			code: apperrors.CodeMalformedInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAnalytics()
			err := a.LoadFromCSV(context.Background(), createTempCSV(t, tt.csv))
			if err == nil {
				t.Fatal("LoadFromCSV() should fail")
			}
			if got := apperrors.CodeOf(err); got != tt.code {
				t.Errorf("CodeOf() = %q, want %q (err: %v)", got, tt.code, err)
			}
		})
	}
}

func TestAnalytics_LoadFromCSV_MissingFile(t *testing.T) {
	err := NewAnalytics().LoadFromCSV(context.Background(), filepath.Join(t.TempDir(), "nope.csv"))
	if got := apperrors.CodeOf(err); got != apperrors.CodeInputMissing {
		t.Errorf("CodeOf() = %q, want %q", got, apperrors.CodeInputMissing)
	}
}

func TestAnalytics_LoadFromCSV_AcceptsDateOnly(t *testing.T) {
	path := createTempCSV(t, masterHeader+"1,1,7,2024-05-09,1,12.34,Alex Lee,,,Books,12.34\n")
	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), path); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}
	if m := a.MonthlySales(); len(m) != 1 || m[0].Month != "2024-05" {
		t.Errorf("MonthlySales() = %+v", m)
	}
}

func TestAnalytics_Cache(t *testing.T) {
	cacheDir := t.TempDir()
	path := createTempCSV(t, scenarioCSV)
	mtime := time.Now().Add(-time.Hour).Truncate(time.Second)
	setMtime := func(at time.Time) {
		t.Helper()
		if err := os.Chtimes(path, at, at); err != nil {
			t.Fatal(err)
		}
	}
	topName := func(a *Analytics) string {
		t.Helper()
		if err := a.LoadFromCSV(context.Background(), path); err != nil {
			t.Fatal(err)
		}
		return a.TopCustomers(1)[0].FullName
	}
	setMtime(mtime)

	first := NewAnalytics(WithCacheDir(cacheDir))
	if got := topName(first); got != "Jordan Diaz" {
		t.Fatalf("top customer = %q, want Jordan Diaz", got)
	}
	if _, err := os.Stat(first.cacheFilename(path)); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}

	// Same size and mtime: the cached snapshot is served.
	renamed := strings.Replace(scenarioCSV, "Jordan Diaz", "Jordan Dias", 1)
	if err := os.WriteFile(path, []byte(renamed), 0o644); err != nil {
		t.Fatal(err)
	}
	setMtime(mtime)
	if got := topName(NewAnalytics(WithCacheDir(cacheDir))); got != "Jordan Diaz" {
		t.Errorf("top customer with unchanged size and mtime = %q, want cached Jordan Diaz", got)
	}

	// An older mtime, as restored by cp -p, still invalidates the cache.
	setMtime(mtime.Add(-24 * time.Hour))
	if got := topName(NewAnalytics(WithCacheDir(cacheDir))); got != "Jordan Dias" {
		t.Errorf("top customer after older mtime = %q, want Jordan Dias", got)
	}

	// A size change with the mtime kept invalidates it too.
	grown := strings.Replace(scenarioCSV, "Jordan Diaz", "Jordan Diazz", 1)
	if err := os.WriteFile(path, []byte(grown), 0o644); err != nil {
		t.Fatal(err)
	}
	setMtime(mtime.Add(-24 * time.Hour))
	if got := topName(NewAnalytics(WithCacheDir(cacheDir))); got != "Jordan Diazz" {
		t.Errorf("top customer after size change = %q, want Jordan Diazz", got)
	}
}

func TestAnalytics_LoadFromCSV_SniffsSemicolons(t *testing.T) {
	semicolons := strings.ReplaceAll(scenarioCSV, ",", ";")
	a := NewAnalytics()
	if err := a.LoadFromCSV(context.Background(), createTempCSV(t, semicolons)); err != nil {
		t.Fatalf("LoadFromCSV() error = %v", err)
	}
	if got := a.AverageOrderValue(); got != 20 {
		t.Errorf("AverageOrderValue() = %v, want 20", got)
	}
}

func TestAnalytics_TopCustomersKeyedByID(t *testing.T) {
	a := NewAnalytics()
	at := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	a.SetData([]models.MasterRow{
		{OrderID: "1", CustomerID: "1", FullName: "Alex Lee", Category: "Books", OrderDate: at, TotalValue: 10},
		{OrderID: "2", CustomerID: "2", FullName: "Alex Lee", Category: "Books", OrderDate: at, TotalValue: 15},
	})

	top := a.TopCustomers(10)
	if len(top) != 2 {
		t.Fatalf("customers sharing a name were merged: %+v", top)
	}
	if top[0].CustomerID != "2" || top[0].TotalValue != 15 || top[1].CustomerID != "1" || top[1].TotalValue != 10 {
		t.Errorf("TopCustomers() = %+v", top)
	}
}

func TestAnalytics_ConcurrentAccess(t *testing.T) {
	a := NewAnalytics()
	a.SetData([]models.MasterRow{{OrderID: "1", CustomerID: "1", Category: "Books", OrderDate: time.Now(), TotalValue: 9.99}})

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- true }()
			_ = a.TopCustomers(10)
			_ = a.CategorySales()
			_ = a.MonthlySales()
			_ = a.AverageOrderValue()
			_ = a.Stats()
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

func TestAnalytics_EmptyData(t *testing.T) {
	a := NewAnalytics()

	if n := len(a.TopCustomers(10)); n != 0 {
		t.Errorf("TopCustomers() should be empty, got %d", n)
	}
	if n := len(a.CategorySales()); n != 0 {
		t.Errorf("CategorySales() should be empty, got %d", n)
	}
	if n := len(a.MonthlySales()); n != 0 {
		t.Errorf("MonthlySales() should be empty, got %d", n)
	}
	if v := a.AverageOrderValue(); v != 0 {
		t.Errorf("AverageOrderValue() = %v, want 0", v)
	}
}

func BenchmarkAnalytics_SetData(b *testing.B) {
	rows := make([]models.MasterRow, 1000)
	for i := range rows {
		rows[i] = models.MasterRow{
			OrderID:    string(rune(i)),
			CustomerID: string(rune(i % 100)),
			Category:   "Books",
			OrderDate:  time.Date(2023, time.Month(i%12+1), 1, 0, 0, 0, 0, time.UTC),
			TotalValue: float64(i) * 1.5,
		}
	}
	a := NewAnalytics()

	for b.Loop() {
		a.SetData(rows)
	}
}
