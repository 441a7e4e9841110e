package services

import (
	"cmp"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"ecomsim/internal/csvio"
	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
)

const (
	batchSize    = 10000
	maxWorkers   = 10
	cacheVersion = "v3"

	UnknownCategory = "Unknown"
	UnknownCustomer = "Unknown"
)

// Columns read from the master dataset. Everything else is ignored.
var masterColumns = []string{"order_id", "customer_id", "full_name", "category", "order_date", "total_value"}

var dateLayouts = []string{models.TimestampLayout, models.DateLayout, time.RFC3339}

// Snapshot holds every aggregate the reporter and the dashboard serve.
type Snapshot struct {
	TopCustomers      []models.CustomerRevenue `json:"top_customers"`
	CategorySales     []models.CategorySales   `json:"category_sales"`
	MonthlySales      []models.MonthlyData     `json:"monthly_sales"`
	AverageOrderValue float64                  `json:"average_order_value"`
	Orders            int64                    `json:"orders"`
	RecordCount       int64                    `json:"record_count"`
	Source            string                   `json:"source"`
	SourceModTime     time.Time                `json:"source_mod_time"`
	SourceSize        int64                    `json:"source_size"`
	LastModified      time.Time                `json:"last_modified"`
}

// describes reports whether s was computed from the file described by info.
func (s *Snapshot) describes(path string, info os.FileInfo) bool {
	return s.Source == path && s.SourceSize == info.Size() && s.SourceModTime.Equal(info.ModTime())
}

type Option func(*Analytics)

// WithCacheDir enables the gob snapshot cache under dir. An empty dir
// disables caching.
func WithCacheDir(dir string) Option {
	return func(a *Analytics) { a.cacheDir = dir }
}

func WithLogger(logger *slog.Logger) Option {
	return func(a *Analytics) { a.logger = logger }
}

type Analytics struct {
	mu               sync.RWMutex
	snapshot         *Snapshot
	cacheDir         string
	recordsProcessed atomic.Int64
	logger           *slog.Logger
}

func NewAnalytics(opts ...Option) *Analytics {
	a := &Analytics{
		snapshot: &Snapshot{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetData replaces the snapshot with aggregates over rows.
func (a *Analytics) SetData(rows []models.MasterRow) {
	agg := newAggregate()
	for _, r := range rows {
		agg.add(r)
	}
	s := agg.snapshot()
	s.LastModified = time.Now()

	a.mu.Lock()
	a.snapshot = s
	a.mu.Unlock()
	a.recordsProcessed.Store(s.RecordCount)
}

// LoadFromCSV aggregates the master dataset at path. A cached snapshot is
// reused while the file keeps the size and modification time it had when
// the snapshot was computed.
func (a *Analytics) LoadFromCSV(ctx context.Context, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return apperrors.Input(err, path)
	}

	if cached, err := a.loadFromCache(path); err == nil {
		if cached.describes(path, info) {
			a.mu.Lock()
			a.snapshot = cached
			a.mu.Unlock()
			a.recordsProcessed.Store(cached.RecordCount)
			a.logger.Info("loaded from cache", "records", cached.RecordCount, "path", path)
			return nil
		}
	}

	start := time.Now()
	a.logger.Info("processing master dataset", "path", path)

	s, err := a.processCSV(ctx, path)
	if err != nil {
		return err
	}
	s.Source = path
	s.SourceModTime = info.ModTime()
	s.SourceSize = info.Size()
	s.LastModified = time.Now()

	a.mu.Lock()
	a.snapshot = s
	a.mu.Unlock()
	a.recordsProcessed.Store(s.RecordCount)

	if err := a.saveToCache(path); err != nil {
		a.logger.Warn("failed to save cache", "error", err)
	}

	duration := time.Since(start)
	a.logger.Info("master dataset processed",
		"records", s.RecordCount,
		"orders", s.Orders,
		"duration", duration,
		"rate", fmt.Sprintf("%.0f records/sec", float64(s.RecordCount)/duration.Seconds()))
	return nil
}

func (a *Analytics) processCSV(ctx context.Context, path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Input(err, path)
	}
	defer f.Close()

	b, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.Input(err, path)
	}
	r, err := csvio.NewReader(b)
	if errors.Is(err, io.EOF) {
		return nil, apperrors.Malformed(err, "empty master dataset: "+path)
	}
	if err != nil {
		return nil, apperrors.Malformed(err, "read header: "+path)
	}
	header, err := r.Read()
	if err != nil {
		return nil, apperrors.Malformed(err, "read header: "+path)
	}
	idx, err := columnIndex(header)
	if err != nil {
		return nil, apperrors.Malformed(err, path)
	}

	agg := newAggregate()
	batch := make([][]string, 0, batchSize)
	line := 1
	first := 2

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, apperrors.Malformed(err, fmt.Sprintf("%s line %d", path, line))
		}
		batch = append(batch, rec)

		if len(batch) >= batchSize {
			if err := processBatch(ctx, batch, first, idx, agg); err != nil {
				return nil, apperrors.Malformed(err, path)
			}
			first += len(batch)
			batch = batch[:0]
		}
	}
	if len(batch) > 0 {
		if err := processBatch(ctx, batch, first, idx, agg); err != nil {
			return nil, apperrors.Malformed(err, path)
		}
	}

	if agg.records == 0 {
		return nil, apperrors.Malformed(errors.New("no rows"), "master dataset has no orders: "+path)
	}
	return agg.snapshot(), nil
}

// processBatch parses records concurrently, then folds them into agg in
// file order. firstLine is the file line number of batch[0].
func processBatch(ctx context.Context, batch [][]string, firstLine int, idx []int, agg *aggregate) error {
	rows := make([]models.MasterRow, len(batch))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, rec := range batch {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			row, err := parseMasterRow(rec, idx)
			if err != nil {
				return fmt.Errorf("line %d: %w", firstLine+i, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, r := range rows {
		agg.add(r)
	}
	return nil
}

func columnIndex(header []string) ([]int, error) {
	idx := make([]int, len(masterColumns))
	for i, name := range masterColumns {
		idx[i] = slices.Index(header, name)
		if idx[i] < 0 {
			return nil, fmt.Errorf("missing column %q", name)
		}
	}
	return idx, nil
}

func parseMasterRow(rec []string, idx []int) (models.MasterRow, error) {
	field := func(i int) string { return strings.TrimSpace(rec[idx[i]]) }

	orderDate, err := parseDate(field(4))
	if err != nil {
		return models.MasterRow{}, err
	}
	total, err := strconv.ParseFloat(field(5), 64)
	if err != nil {
		return models.MasterRow{}, fmt.Errorf("total_value: %w", err)
	}

	return models.MasterRow{
		OrderID:    field(0),
		CustomerID: field(1),
		FullName:   field(2),
		Category:   field(3),
		OrderDate:  orderDate,
		TotalValue: total,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("order_date: unrecognised value %q", s)
}

type aggregate struct {
	customers  map[string]*models.CustomerRevenue
	categories map[string]float64
	months     map[string]float64
	orders     map[string]float64
	records    int64
}

func newAggregate() *aggregate {
	return &aggregate{
		customers:  make(map[string]*models.CustomerRevenue),
		categories: make(map[string]float64),
		months:     make(map[string]float64),
		orders:     make(map[string]float64),
	}
}

// add folds r into the running totals. Customers are keyed by id, so two
// customers sharing a full name stay separate rows.
func (g *aggregate) add(r models.MasterRow) {
	c := g.customers[r.CustomerID]
	if c == nil {
		name := r.FullName
		if name == "" {
			name = UnknownCustomer
		}
		c = &models.CustomerRevenue{CustomerID: r.CustomerID, FullName: name}
		g.customers[r.CustomerID] = c
	}
	c.TotalValue += r.TotalValue
	c.Orders++

	category := r.Category
	if category == "" {
		category = UnknownCategory
	}
	g.categories[category] += r.TotalValue
	g.months[r.OrderDate.Format(models.MonthLayout)] += r.TotalValue
	g.orders[r.OrderID] += r.TotalValue
	g.records++
}

func (g *aggregate) snapshot() *Snapshot {
	return &Snapshot{
		TopCustomers:      sortCustomers(g.customers),
		CategorySales:     sortCategories(g.categories),
		MonthlySales:      sortMonths(g.months),
		AverageOrderValue: averageOrderValue(g.orders),
		Orders:            int64(len(g.orders)),
		RecordCount:       g.records,
	}
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

func averageOrderValue(orders map[string]float64) float64 {
	if len(orders) == 0 {
		return 0
	}
	sum := decimal.Zero
	for _, v := range orders {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(orders)))).Round(2).InexactFloat64()
}

func sortCustomers(groups map[string]*models.CustomerRevenue) []models.CustomerRevenue {
	result := make([]models.CustomerRevenue, 0, len(groups))
	for _, c := range groups {
		cr := *c
		cr.TotalValue = round2(cr.TotalValue)
		result = append(result, cr)
	}
	slices.SortFunc(result, func(a, b models.CustomerRevenue) int {
		if c := cmp.Compare(b.TotalValue, a.TotalValue); c != 0 {
			return c
		}
		return compareIDs(a.CustomerID, b.CustomerID)
	})
	return result
}

func sortCategories(groups map[string]float64) []models.CategorySales {
	result := make([]models.CategorySales, 0, len(groups))
	for name, v := range groups {
		result = append(result, models.CategorySales{Category: name, TotalValue: round2(v)})
	}
	slices.SortFunc(result, func(a, b models.CategorySales) int {
		if c := cmp.Compare(b.TotalValue, a.TotalValue); c != 0 {
			return c
		}
		return strings.Compare(a.Category, b.Category)
	})
	return result
}

func sortMonths(groups map[string]float64) []models.MonthlyData {
	result := make([]models.MonthlyData, 0, len(groups))
	for month, v := range groups {
		result = append(result, models.MonthlyData{Month: month, Volume: round2(v)})
	}
	slices.SortFunc(result, func(a, b models.MonthlyData) int {
		return strings.Compare(a.Month, b.Month)
	})
	return result
}

// compareIDs orders numeric ids numerically and falls back to string order.
func compareIDs(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		return cmp.Compare(ai, bi)
	}
	return strings.Compare(a, b)
}

// Cache management
func (a *Analytics) cacheFilename(path string) string {
	name := strings.NewReplacer("/", "_", "\\", "_", ":", "_").Replace(path)
	return filepath.Join(a.cacheDir, fmt.Sprintf("%s_%s.gob", name, cacheVersion))
}

func (a *Analytics) saveToCache(path string) error {
	if a.cacheDir == "" {
		return nil
	}
	if err := os.MkdirAll(a.cacheDir, 0o755); err != nil {
		return err
	}

	file, err := os.Create(a.cacheFilename(path))
	if err != nil {
		return err
	}
	defer file.Close()

	a.mu.RLock()
	defer a.mu.RUnlock()
	return gob.NewEncoder(file).Encode(a.snapshot)
}

func (a *Analytics) loadFromCache(path string) (*Snapshot, error) {
	if a.cacheDir == "" {
		return nil, os.ErrNotExist
	}
	file, err := os.Open(a.cacheFilename(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var s Snapshot
	if err := gob.NewDecoder(file).Decode(&s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Snapshot returns the current aggregates. The slices are shared and must
// not be modified.
func (a *Analytics) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return *a.snapshot
}

func (a *Analytics) TopCustomers(limit int) []models.CustomerRevenue {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if limit < 0 || len(a.snapshot.TopCustomers) <= limit {
		return a.snapshot.TopCustomers
	}
	return a.snapshot.TopCustomers[:limit]
}

func (a *Analytics) CategorySales() []models.CategorySales {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.CategorySales
}

func (a *Analytics) MonthlySales() []models.MonthlyData {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.MonthlySales
}

func (a *Analytics) AverageOrderValue() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.snapshot.AverageOrderValue
}

// Utility method for monitoring
func (a *Analytics) Stats() map[string]any {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return map[string]any{
		"record_count":        a.snapshot.RecordCount,
		"orders":              a.snapshot.Orders,
		"last_processed":      a.snapshot.LastModified,
		"source":              a.snapshot.Source,
		"customers":           len(a.snapshot.TopCustomers),
		"categories":          len(a.snapshot.CategorySales),
		"months":              len(a.snapshot.MonthlySales),
		"average_order_value": a.snapshot.AverageOrderValue,
		"records_processed":   a.recordsProcessed.Load(),
	}
}
