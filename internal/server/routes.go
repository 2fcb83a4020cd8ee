package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Routes returns the router for the dashboard API.
//
//   - GET  /healthz
//   - GET  /metrics
//   - GET  /api/filters
//   - PUT  /api/filters/date-range
//   - PUT  /api/filters/region
//   - GET  /api/catalog
//   - GET  /api/report
//   - GET  /api/views
//   - GET  /api/views/{name}
//   - POST /api/views/{name}/refresh
//   - GET  /api/views/{name}/history
//   - PUT  /api/views/forecast/controls
func Routes(h *Handler, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Get("/filters", h.GetFilters)
		api.Put("/filters/date-range", h.SetDateRange)
		api.Put("/filters/region", h.SetRegion)
		api.Get("/catalog", h.GetCatalog)
		api.Get("/report", h.Report)

		api.Route("/views", func(vr chi.Router) {
			vr.Get("/", h.ListViews)
			vr.Put("/forecast/controls", h.SetForecastControls)
			vr.Get("/{name}", h.GetView)
			vr.Post("/{name}/refresh", h.RefreshView)
			vr.Get("/{name}/history", h.ViewHistory)
		})
	})
	return r
}

func requestLogger(logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// Server runs the API until its context is cancelled.
type Server struct {
	http   *http.Server
	logger *zap.Logger
}

func New(addr string, handler http.Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Info("http server stopped")
	return nil
}
