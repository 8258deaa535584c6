// Package api exposes ledger operations over HTTP.
//
// Routes:
//
//	GET  /health
//	GET  /metrics
//	GET  /api/v1/validate
//	GET  /api/v1/records/{index}/{field}
//	PUT  /api/v1/records/{index}/{field}
//	POST /api/v1/transactions
//
// /api/v1 requires the X-API-Key header when the server is configured with a key.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 5 * time.Second

// Router builds the HTTP handler with all routes configured
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", InstrumentHandler(s.metrics, "GET", "/health", s.handleHealth))

	// Prometheus metrics endpoint (unprotected for scraping)
	r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		if s.config.APIKey != "" {
			r.Use(apiKeyMiddleware(s.config.APIKey))
		}

		r.Get("/validate", InstrumentHandler(s.metrics, "GET", "/api/v1/validate", s.handleValidate))
		r.Get("/records/{index}/{field}", InstrumentHandler(s.metrics, "GET", "/api/v1/records/{index}/{field}", s.handleGetField))
		r.Put("/records/{index}/{field}", InstrumentHandler(s.metrics, "PUT", "/api/v1/records/{index}/{field}", s.handleSetField))
		r.Post("/transactions", InstrumentHandler(s.metrics, "POST", "/api/v1/transactions", s.handleAppendTransaction))
	})

	return r
}

// StartServer serves the API until ctx is cancelled, then shuts down
// gracefully
func StartServer(ctx context.Context, s *Server) error {
	srv := &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting fwledger REST API server", "addr", srv.Addr, "ledger", s.ledger.Path())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down fwledger REST API server")
		return srv.Shutdown(shutdownCtx)
	}
}
