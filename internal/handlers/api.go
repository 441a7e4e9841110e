package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"ecomsim/internal/errors"
	"ecomsim/internal/observability"
	"ecomsim/internal/services"
)

const (
	defaultTopN  = 10
	maxTopN      = 100
	cacheControl = "public, max-age=300"
)

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger) *APIHandlers {
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
	}
}

// topN reads ?limit=, defaulting to defaultTopN and capped at maxTopN.
func topN(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultTopN, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.BadRequest("limit must be a positive integer")
	}
	return min(n, maxTopN), nil
}

func (h *APIHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	n, err := topN(r)
	if err != nil {
		errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
		return
	}

	data := h.analytics.TopCustomers(n)

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleCategorySales(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.CategorySales()

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleMonthlySales(w http.ResponseWriter, r *http.Request) {

	data := h.analytics.MonthlySales()

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleAverageOrderValue(w http.ResponseWriter, r *http.Request) {

	s := h.analytics.Snapshot()
	data := map[string]any{
		"average_order_value": s.AverageOrderValue,
		"orders":              s.Orders,
	}

	headers := map[string]string{
		"Cache-Control": cacheControl,
	}

	errors.WriteSuccessWithHeaders(w, data, headers)
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {

	healthData := map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"version":   "1.0.0",
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {

	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}
