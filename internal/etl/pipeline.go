package etl

import (
	"context"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"ecomsim/internal/config"
	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
	"ecomsim/internal/observability"
)

const maxLoaders = 5

type Config struct {
	RawDir     string
	CleanDir   string
	MasterPath string
	// SQLitePath enables the warehouse mirror when non-empty.
	SQLitePath string
}

func ConfigFrom(d config.DataConfig) Config {
	return Config{
		RawDir:     d.RawDir,
		CleanDir:   d.CleanDir,
		MasterPath: d.MasterPath,
		SQLitePath: d.SQLitePath,
	}
}

type TableStats struct {
	Name    string `json:"name"`
	Loaded  int    `json:"loaded"`
	Cleaned int    `json:"cleaned"`
}

type Summary struct {
	Tables     []TableStats `json:"tables"`
	MasterRows int          `json:"master_rows"`
	MasterPath string       `json:"master_path"`
}

// CleanName maps a raw file name to its deduplicated counterpart,
// e.g. orders.csv -> orders_clean.csv.
func CleanName(raw string) string {
	return strings.TrimSuffix(raw, ".csv") + "_clean.csv"
}

// Run loads the raw tables, writes deduplicated copies, builds the master
// dataset and, when configured, mirrors everything into SQLite.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Summary, error) {
	ctx, span := observability.StartSpan(ctx, "etl")
	log := observability.StageLogger(ctx, logger, "etl")

	summary, err := run(ctx, cfg, log)
	if err == nil {
		span.SetTag("master_rows", strconv.Itoa(summary.MasterRows))
	}
	span.End(log, err)
	return summary, err
}

func run(ctx context.Context, cfg Config, log *slog.Logger) (Summary, error) {
	raw, err := loadAll(ctx, cfg.RawDir)
	if err != nil {
		return Summary{}, err
	}
	log.Info("raw tables loaded", "dir", cfg.RawDir, "tables", len(raw))

	var summary Summary
	clean := make(map[string]*Table, len(raw))
	for _, name := range models.RawTables {
		t := Dedupe(raw[name])
		clean[name] = t
		summary.Tables = append(summary.Tables, TableStats{Name: name, Loaded: len(raw[name].Rows), Cleaned: len(t.Rows)})

		path := filepath.Join(cfg.CleanDir, CleanName(name))
		if err := WriteTable(path, t); err != nil {
			return Summary{}, err
		}
		log.Debug("clean table written", "path", path, "loaded", len(raw[name].Rows), "kept", len(t.Rows))
	}

	master, err := BuildMaster(clean[models.OrdersFile], clean[models.CustomersFile], clean[models.ProductsFile])
	if err != nil {
		return Summary{}, apperrors.Malformed(err, "build master dataset")
	}
	if err := WriteTable(cfg.MasterPath, master); err != nil {
		return Summary{}, err
	}
	summary.MasterRows = len(master.Rows)
	summary.MasterPath = cfg.MasterPath
	log.Info("master dataset written", "path", cfg.MasterPath, "rows", len(master.Rows), "columns", len(master.Header))

	if cfg.SQLitePath != "" {
		if err := mirror(ctx, cfg.SQLitePath, clean, master); err != nil {
			return Summary{}, err
		}
		log.Info("warehouse updated", "path", cfg.SQLitePath)
	}

	return summary, nil
}

// BuildMaster joins orders with customers on customer_id, then the result
// with products on product_id.
func BuildMaster(orders, customers, products *Table) (*Table, error) {
	withCustomers, err := LeftJoin(orders, customers, "customer_id")
	if err != nil {
		return nil, err
	}
	master, err := LeftJoin(withCustomers, products, "product_id")
	if err != nil {
		return nil, err
	}
	master.Name = models.MasterFile
	return master, nil
}

func loadAll(ctx context.Context, dir string) (map[string]*Table, error) {
	tables := make([]*Table, len(models.RawTables))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxLoaders)
	for i, name := range models.RawTables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t, err := LoadTable(filepath.Join(dir, name))
			if err != nil {
				return err
			}
			tables[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]*Table, len(tables))
	for i, name := range models.RawTables {
		out[name] = tables[i]
	}
	return out, nil
}

func mirror(ctx context.Context, path string, clean map[string]*Table, master *Table) error {
	wh, err := OpenWarehouse(path)
	if err != nil {
		return err
	}
	defer wh.Close()

	for _, name := range models.RawTables {
		if err := wh.Replace(ctx, strings.TrimSuffix(name, ".csv"), clean[name]); err != nil {
			return err
		}
	}
	return wh.Replace(ctx, strings.TrimSuffix(models.MasterFile, ".csv"), master)
}
