// Package report turns the master dataset aggregates into the analytics
// folder: CSV and text tables, PNG charts and an index page.
package report

import (
	"bufio"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"ecomsim/internal/config"
	apperrors "ecomsim/internal/errors"
	"ecomsim/internal/models"
	"ecomsim/internal/observability"
	"ecomsim/internal/services"
	"ecomsim/internal/ui/templates"
)

const DefaultTopN = 10

type Config struct {
	MasterPath string
	OutputDir  string
	CacheDir   string
	TopN       int
}

func ConfigFrom(cfg *config.Config) Config {
	return Config{
		MasterPath: cfg.Data.MasterPath,
		OutputDir:  cfg.Report.OutputDir,
		CacheDir:   cfg.Report.CacheDir,
		TopN:       cfg.Report.TopN,
	}
}

type Options struct {
	TopN        int
	RunID       string
	GeneratedAt time.Time
}

type Summary struct {
	Dir               string   `json:"dir"`
	Files             []string `json:"files"`
	Orders            int64    `json:"orders"`
	AverageOrderValue float64  `json:"average_order_value"`
}

// Run aggregates the master dataset and writes every report artifact into
// cfg.OutputDir.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (Summary, error) {
	ctx, span := observability.StartSpan(ctx, "report")
	log := observability.StageLogger(ctx, logger, "report")

	analytics := services.NewAnalytics(services.WithCacheDir(cfg.CacheDir), services.WithLogger(log))
	if err := analytics.LoadFromCSV(ctx, cfg.MasterPath); err != nil {
		span.End(log, err)
		return Summary{}, err
	}

	snap := analytics.Snapshot()
	files, err := Write(ctx, cfg.OutputDir, snap, Options{
		TopN:        cfg.TopN,
		RunID:       observability.GetRunID(ctx),
		GeneratedAt: time.Now(),
	})
	if err != nil {
		span.End(log, err)
		return Summary{}, err
	}

	summary := Summary{
		Dir:               cfg.OutputDir,
		Files:             files,
		Orders:            snap.Orders,
		AverageOrderValue: snap.AverageOrderValue,
	}
	span.SetTag("files", strconv.Itoa(len(files)))
	log.Info("report written",
		"dir", cfg.OutputDir,
		"files", len(files),
		"orders", snap.Orders,
		"average_order_value", snap.AverageOrderValue,
	)
	span.End(log, nil)
	return summary, nil
}

// Write renders s into dir and returns the paths it wrote. The tables and
// charts render concurrently; index.html is written last.
func Write(ctx context.Context, dir string, s services.Snapshot, opts Options) ([]string, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, apperrors.Output(err, dir)
	}

	top := s.TopCustomers[:min(opts.TopN, len(s.TopCustomers))]

	artifacts := []struct {
		file   string
		render func(path string) error
	}{
		{models.TopCustomersFile, func(p string) error { return writeCSV(p, customerRows(top)) }},
		{models.CategorySalesFile, func(p string) error { return writeCSV(p, categoryRows(s.CategorySales)) }},
		{models.AverageOrderValueFile, func(p string) error { return writeText(p, FormatAverageOrderValue(s.AverageOrderValue)) }},
		{models.MonthlySalesFile, func(p string) error { return writeCSV(p, monthRows(s.MonthlySales)) }},
		{models.TopCustomersChart, func(p string) error { return writePNG(p, topCustomersChart(top)) }},
		{models.CategorySalesChart, func(p string) error { return writePNG(p, categorySalesChart(s.CategorySales)) }},
		{models.MonthlySalesChart, func(p string) error { return writePNG(p, monthlySalesChart(s.MonthlySales)) }},
	}

	files := make([]string, 0, len(artifacts)+1)
	for _, a := range artifacts {
		files = append(files, filepath.Join(dir, a.file))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i, a := range artifacts {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return a.render(files[i])
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	index := filepath.Join(dir, models.ReportIndexFile)
	if err := writeIndex(ctx, index, s, top, opts); err != nil {
		return nil, err
	}
	return append(files, index), nil
}

func writeIndex(ctx context.Context, path string, s services.Snapshot, top []models.CustomerRevenue, opts Options) error {
	f, err := os.Create(path)
	if err != nil {
		return apperrors.Output(err, path)
	}
	defer f.Close()

	data := templates.ReportIndexData{
		RunID:             opts.RunID,
		GeneratedAt:       opts.GeneratedAt,
		Source:            s.Source,
		Orders:            s.Orders,
		AverageOrderValue: s.AverageOrderValue,
		TopCustomers:      top,
		CategorySales:     s.CategorySales,
		MonthlySales:      s.MonthlySales,
		Charts: []templates.Chart{
			{Title: "Top " + strconv.Itoa(len(top)) + " Customers by Revenue", File: models.TopCustomersChart},
			{Title: "Sales by Product Category", File: models.CategorySalesChart},
			{Title: "Monthly Revenue Trend", File: models.MonthlySalesChart},
		},
		Artifacts: []templates.Artifact{
			{Name: "Top customers", File: models.TopCustomersFile},
			{Name: "Category sales", File: models.CategorySalesFile},
			{Name: "Average order value", File: models.AverageOrderValueFile},
			{Name: "Monthly sales", File: models.MonthlySalesFile},
		},
	}

	w := bufio.NewWriter(f)
	if err := templates.ReportIndex(data).Render(ctx, w); err != nil {
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
