package generator

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gocarina/gocsv"

	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
	"ecomsim/internal/observability"
)

type Summary struct {
	Dir       string
	Customers int
	Products  int
	Orders    int
	Sessions  int
	AdSpend   int
}

// Run generates the dataset and writes the five CSV tables into dir.
func Run(ctx context.Context, cfg Config, dir string, logger *slog.Logger) (Summary, error) {
	ctx, span := observability.StartSpan(ctx, "generate")
	log := observability.StageLogger(ctx, logger, "generate")

	log.Info("generating dataset",
		"seed", cfg.Seed,
		"customers", cfg.Customers,
		"products", cfg.Products,
		"orders", cfg.Orders,
		"sessions", cfg.Sessions,
	)

	ds, err := Generate(cfg)
	if err != nil {
		err = apperrors.ValidationWrap(err, "invalid generator configuration")
		span.End(log, err)
		return Summary{}, err
	}

	if err := WriteDataset(ctx, dir, ds, log); err != nil {
		span.End(log, err)
		return Summary{}, err
	}

	summary := Summary{
		Dir:       dir,
		Customers: len(ds.Customers),
		Products:  len(ds.Products),
		Orders:    len(ds.Orders),
		Sessions:  len(ds.Sessions),
		AdSpend:   len(ds.AdSpend),
	}
	span.SetTag("orders", strconv.Itoa(summary.Orders))
	span.End(log, nil)
	return summary, nil
}

// WriteDataset writes every table of ds into dir, creating it when missing
// and overwriting existing files.
func WriteDataset(ctx context.Context, dir string, ds *Dataset, logger *slog.Logger) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return apperrors.Output(err, dir)
	}

	tables := []struct {
		name string
		rows any
		n    int
	}{
		{models.CustomersFile, &ds.Customers, len(ds.Customers)},
		{models.ProductsFile, &ds.Products, len(ds.Products)},
		{models.OrdersFile, &ds.Orders, len(ds.Orders)},
		{models.SessionsFile, &ds.Sessions, len(ds.Sessions)},
		{models.AdSpendFile, &ds.AdSpend, len(ds.AdSpend)},
	}

	for _, t := range tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := filepath.Join(dir, t.name)
		if err := writeCSV(path, t.rows); err != nil {
			return err
		}
		logger.Debug("table written", "path", path, "rows", t.n)
	}
	return nil
}

func writeCSV(path string, rows any) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Output(err, path)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := gocsv.Marshal(rows, w); err != nil {
		return apperrors.Output(err, path)
	}
	if err := w.Flush(); err != nil {
		return apperrors.Output(err, path)
	}
	if err := f.Close(); err != nil {
		return apperrors.Output(err, path)
	}
	return nil
}
