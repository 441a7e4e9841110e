package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"ecomsim/internal/config"
	"ecomsim/internal/middleware"
	"ecomsim/internal/server"
	"ecomsim/internal/services"
	"ecomsim/internal/ui/templates"
)

const (
	renderTimeout  = 10 * time.Second
	csvLoadTimeout = 2 * time.Minute
	cacheMaxAge    = "public, max-age=300"
)

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analytics dashboard for the master dataset",
		Long: `Serve loads the master dataset and exposes the aggregates as JSON under
/api/, as datastar fragments under /sse/ and as a live dashboard at /.
When the report directory exists it is browsable under /report/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd.Context())
		},
	}
	d := config.Default()
	a.masterFlag(cmd)
	a.stringFlag(cmd, "report-dir", d.Report.OutputDir, "report directory served under /report/",
		func(c *config.Config, v string) { c.Report.OutputDir = v })
	a.stringFlag(cmd, "cache-dir", d.Report.CacheDir, "aggregate cache directory, empty to disable",
		func(c *config.Config, v string) { c.Report.CacheDir = v })
	a.stringFlag(cmd, "host", d.Server.Host, "listen host",
		func(c *config.Config, v string) { c.Server.Host = v })
	a.intFlag(cmd, "port", d.Server.Port, "listen port",
		func(c *config.Config, v int) { c.Server.Port = v })
	return cmd
}

func handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", cacheMaxAge)
	if err := templates.Dashboard().Render(ctx, w); err != nil {
		http.Error(w, "render error", http.StatusInternalServerError)
	}
}

// newHandler loads the master dataset and returns the dashboard wrapped in
// the middleware chain.
func newHandler(ctx context.Context, cfg *config.Config, logger *slog.Logger) (http.Handler, error) {
	analytics := services.NewAnalytics(
		services.WithCacheDir(cfg.Report.CacheDir),
		services.WithLogger(logger),
	)

	loadCtx, cancel := context.WithTimeout(ctx, csvLoadTimeout)
	defer cancel()

	start := time.Now()
	if err := analytics.LoadFromCSV(loadCtx, cfg.Data.MasterPath); err != nil {
		return nil, err
	}
	logger.Info("master dataset loaded", "path", cfg.Data.MasterPath, "duration", time.Since(start))

	pages := &server.Pages{Dashboard: handleDashboard}
	if info, err := os.Stat(cfg.Report.OutputDir); err == nil && info.IsDir() {
		pages.Report = http.FileServer(http.Dir(cfg.Report.OutputDir))
	} else {
		logger.Info("report directory not found, /report/ disabled", "dir", cfg.Report.OutputDir)
	}

	srv := server.NewServer(analytics, logger, pages)

	rateLimiter := middleware.NewRateLimiter(cfg.Security)
	chain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.Tracing(),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)
	return chain(srv), nil
}

func (a *app) runServe(ctx context.Context) error {
	handler, err := newHandler(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:         a.cfg.Address(),
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	gs := server.NewGracefulServer(httpServer, a.logger, a.cfg.Server)
	gs.RegisterShutdownHook(func(ctx context.Context) error {
		a.logger.Info("shutting down analytics service")
		return nil
	})

	if err := gs.ListenAndServe(ctx); err != nil {
		return err
	}
	a.logger.Info("server stopped")
	return nil
}
