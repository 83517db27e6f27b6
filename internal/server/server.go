package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/harshpatel5940/webhookauth/internal/api"
	"github.com/harshpatel5940/webhookauth/internal/config"
	"github.com/harshpatel5940/webhookauth/internal/database"
	"github.com/harshpatel5940/webhookauth/internal/metrics"
	"github.com/harshpatel5940/webhookauth/internal/models"
	"github.com/harshpatel5940/webhookauth/internal/webhook"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type Server struct {
	cfg    *config.Config
	db     *database.DB
	router *chi.Mux
	logger zerolog.Logger
}

// New wires the HTTP routes. db may be nil, in which case deliveries are not
// recorded and the API is not mounted.
func New(cfg *config.Config, db *database.DB, logger zerolog.Logger) *Server {
	s := &Server{
		cfg:    cfg,
		db:     db,
		router: chi.NewRouter(),
		logger: logger,
	}

	metrics.MustRegister()
	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	if s.cfg.TrustProxyHeaders {
		// Only behind a proxy that overwrites X-Forwarded-For / X-Real-IP;
		// otherwise a sender could claim any allowlisted address.
		s.router.Use(middleware.RealIP)
	}
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Timeout(60 * time.Second))
	s.router.Use(s.loggingMiddleware)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		defer func() {
			s.logger.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request completed")
		}()

		next.ServeHTTP(ww, r)
	})
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Handle("/metrics", promhttp.Handler())

	// Webhook endpoint
	var recorder webhook.DeliveryRecorder
	if s.db != nil {
		recorder = models.NewDeliveryStore(s.db.Pool)
	}
	webhookHandler := webhook.NewHandler(s.cfg, recorder, s.logger)
	s.router.Post("/webhook", webhookHandler.ServeHTTP)

	// API v1 endpoints
	if s.db != nil {
		apiHandler := api.NewHandler(models.NewDeliveryStore(s.db.Pool), s.logger)
		s.router.Mount("/api/v1", apiHandler.Router())
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.db != nil {
		if err := s.db.Health(ctx); err != nil {
			s.logger.Error().Err(err).Msg("database health check failed")
			http.Error(w, "database unhealthy", http.StatusServiceUnavailable)
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func (s *Server) Router() *chi.Mux {
	return s.router
}

func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         ":" + s.cfg.Port,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info().Str("port", s.cfg.Port).Msg("starting server")

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
