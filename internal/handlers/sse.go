package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"ecomsim/internal/services"
	"ecomsim/internal/ui/templates"
)

const maxTableRows = 50

type SSEHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger) *SSEHandlers {
	return &SSEHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

func renderFragment(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}

func (h *SSEHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	html, err := renderFragment(r.Context(), templates.TopCustomersTable(h.analytics.TopCustomers(defaultTopN)))
	if err != nil {
		h.logger.Error("render top customers", "error", err)
		return
	}
	sse.PatchElements(html)

	flush(w)
}

func (h *SSEHandlers) HandleCategorySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.CategorySales()
	html, err := renderFragment(r.Context(), templates.CategoryTable(data))
	if err != nil {
		h.logger.Error("render category table", "error", err)
		return
	}
	sse.PatchElements(html)

	jsonData, err := json.Marshal(map[string]any{
		"categoryData": data,
	})
	if err != nil {
		h.logger.Error("marshal category data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	flush(w)
}

func (h *SSEHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data := h.analytics.MonthlySales()
	jsonData, err := json.Marshal(map[string]any{
		"monthlyData": data,
	})
	if err != nil {
		h.logger.Error("marshal monthly data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	html, err := renderFragment(r.Context(), templates.MonthlyTable(lastMonths(data, maxTableRows)))
	if err != nil {
		h.logger.Error("render monthly table", "error", err)
		return
	}
	sse.PatchElements(html)

	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	ctx := r.Context()
	s := h.analytics.Snapshot()

	fragments := []templ.Component{
		templates.AverageOrderValueCard(s.AverageOrderValue, s.Orders),
		templates.TopCustomersTable(s.TopCustomers[:min(defaultTopN, len(s.TopCustomers))]),
		templates.CategoryTable(s.CategorySales),
		templates.MonthlyTable(lastMonths(s.MonthlySales, maxTableRows)),
	}
	for _, c := range fragments {
		html, err := renderFragment(ctx, c)
		if err != nil {
			h.logger.Error("render dashboard fragment", "error", err)
			return
		}
		sse.PatchElements(html)
	}

	// Send all signals in one call
	allSignals, err := json.Marshal(map[string]any{
		"categoryData":      s.CategorySales,
		"monthlyData":       s.MonthlySales,
		"averageOrderValue": s.AverageOrderValue,
	})
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)

	flush(w)
}

// lastMonths keeps the most recent n months of a chronological series.
func lastMonths[T any](rows []T, n int) []T {
	if len(rows) <= n {
		return rows
	}
	return rows[len(rows)-n:]
}
