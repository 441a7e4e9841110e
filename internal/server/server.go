package server

import (
	"log/slog"
	"net/http"

	"ecomsim/internal/handlers"
	"ecomsim/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

// Pages are the non-API handlers mounted next to the JSON and SSE routes.
// Report, when set, serves a rendered report directory under /report/.
type Pages struct {
	Dashboard http.HandlerFunc
	Report    http.Handler
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, pages *Pages) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger),
	}
	s.setupRoutes(pages)
	return s
}

func (s *Server) setupRoutes(pages *Pages) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", pages.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if pages.Report != nil {
		s.mux.Handle("GET /report/", http.StripPrefix("/report/", pages.Report))
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/top-customers", s.apiHandlers.HandleTopCustomers)
	s.mux.HandleFunc("GET /api/category-sales", s.apiHandlers.HandleCategorySales)
	s.mux.HandleFunc("GET /api/monthly-sales", s.apiHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /api/average-order-value", s.apiHandlers.HandleAverageOrderValue)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/top-customers", s.sseHandlers.HandleTopCustomers)
	s.mux.HandleFunc("GET /sse/category-sales", s.sseHandlers.HandleCategorySales)
	s.mux.HandleFunc("GET /sse/monthly-sales", s.sseHandlers.HandleMonthlySales)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
