package templates

import (
	"context"
	"io"
	"time"

	"github.com/a-h/templ"

	"ecomsim/internal/models"
)

type Chart struct {
	Title string
	File  string
}

type Artifact struct {
	Name string
	File string
}

// ReportIndexData is everything the static report index shows.
type ReportIndexData struct {
	RunID             string
	GeneratedAt       time.Time
	Source            string
	Orders            int64
	AverageOrderValue float64
	TopCustomers      []models.CustomerRevenue
	CategorySales     []models.CategorySales
	MonthlySales      []models.MonthlyData
	Charts            []Chart
	Artifacts         []Artifact
}

// ReportIndex renders index.html for a report directory. Chart and artifact
// links are relative so the directory can be moved as a whole.
func ReportIndex(d ReportIndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>E-commerce Analytics Report</title>`)
		w.raw(`<style>` + styles + `</style></head><body>`)
		w.raw(`<header><h1>E-commerce Analytics Report</h1><p>Generated `)
		w.text(d.GeneratedAt.UTC().Format(time.RFC3339))
		if d.RunID != "" {
			w.raw(" · run ")
			w.text(d.RunID)
		}
		w.raw(" · source ")
		w.text(d.Source)
		w.raw(`</p></header><main>`)

		w.raw(`<section><h2>Average Order Value</h2>`)
		if err := AverageOrderValueCard(d.AverageOrderValue, d.Orders).Render(ctx, out); err != nil {
			return err
		}
		w.raw(`</section>`)

		w.raw(`<section><h2>Top Customers by Revenue</h2>`)
		if err := TopCustomersTable(d.TopCustomers).Render(ctx, out); err != nil {
			return err
		}
		w.raw(`</section><section><h2>Sales by Product Category</h2>`)
		if err := CategoryTable(d.CategorySales).Render(ctx, out); err != nil {
			return err
		}
		w.raw(`</section><section><h2>Monthly Revenue Trend</h2>`)
		if err := MonthlyTable(d.MonthlySales).Render(ctx, out); err != nil {
			return err
		}
		w.raw(`</section>`)

		for _, c := range d.Charts {
			w.raw("<section><h2>")
			w.text(c.Title)
			w.raw(`</h2><img src="`)
			w.text(c.File)
			w.raw(`" alt="`)
			w.text(c.Title)
			w.raw(`"></section>`)
		}

		w.raw(`<section><h2>Files</h2><ul>`)
		for _, a := range d.Artifacts {
			w.raw(`<li><a href="`)
			w.text(a.File)
			w.raw(`">`)
			w.text(a.Name)
			w.raw(`</a></li>`)
		}
		w.raw(`</ul></section></main></body></html>`)
		return w.err
	})
}
