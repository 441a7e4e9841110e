// Package templates holds the templ components shared by the dashboard and
// the static report index.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"ecomsim/internal/models"
)

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

// writer collects the first write error so components can emit markup
// without checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (w *writer) raw(s string) {
	if w.err == nil {
		_, w.err = io.WriteString(w.w, s)
	}
}

func (w *writer) text(s string) {
	w.raw(templ.EscapeString(s))
}

func (w *writer) printf(format string, args ...any) {
	if w.err == nil {
		_, w.err = fmt.Fprintf(w.w, format, args...)
	}
}

// TopCustomersTable renders customers ranked by revenue inside
// #customers-content.
func TopCustomersTable(rows []models.CustomerRevenue) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div id="customers-content"><table class="modern-table"><thead><tr><th>#</th><th>Customer</th><th>ID</th><th>Revenue</th><th>Orders</th></tr></thead><tbody>`)
		for i, r := range rows {
			w.printf("<tr><td>%d</td><td>", i+1)
			w.text(r.FullName)
			w.raw("</td><td>")
			w.text(r.CustomerID)
			w.raw("</td><td><strong>")
			w.text(money(r.TotalValue))
			w.printf("</strong></td><td>%d</td></tr>", r.Orders)
		}
		w.raw(`</tbody></table></div>`)
		return w.err
	})
}

func CategoryTable(rows []models.CategorySales) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div id="categories-content"><table class="modern-table"><thead><tr><th>Category</th><th>Revenue</th></tr></thead><tbody>`)
		for _, r := range rows {
			w.raw(`<tr><td><span class="category-badge">`)
			w.text(r.Category)
			w.raw("</span></td><td><strong>")
			w.text(money(r.TotalValue))
			w.raw("</strong></td></tr>")
		}
		w.raw(`</tbody></table></div>`)
		return w.err
	})
}

func MonthlyTable(rows []models.MonthlyData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div id="monthly-content"><table class="modern-table"><thead><tr><th>Month</th><th>Revenue</th></tr></thead><tbody>`)
		for _, r := range rows {
			w.raw("<tr><td>")
			w.text(r.Month)
			w.raw("</td><td>")
			w.text(money(r.Volume))
			w.raw("</td></tr>")
		}
		w.raw(`</tbody></table></div>`)
		return w.err
	})
}

// AverageOrderValueCard renders the headline KPI inside #aov-content.
func AverageOrderValueCard(value float64, orders int64) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		w := &writer{w: out}
		w.raw(`<div id="aov-content" class="kpi"><span class="kpi-value">`)
		w.text(money(value))
		w.printf(`</span><span class="kpi-label">across %d orders</span></div>`, orders)
		return w.err
	})
}
