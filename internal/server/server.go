// Package server exposes the profile, route search and assistant over a
// local JSON API for a browser front-end.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/raphaelgruber/globotrack/internal/service"
	"github.com/raphaelgruber/globotrack/internal/session"
	"github.com/rs/cors"
)

// Deps are the components the API serves.
type Deps struct {
	Session *session.Controller
	Search  *service.SearchBoard
	Chat    *service.ChatService
	Metrics *metrics.Collector
	Logger  *slog.Logger
}

// Server wraps the HTTP handler with its dependencies and lifecycle.
type Server struct {
	deps    Deps
	logger  *slog.Logger
	version string
	handler http.Handler
}

// New creates a server and builds its routes.
func New(version string, deps Deps) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{deps: deps, logger: logger, version: version}
	s.handler = s.buildHandler()
	return s
}

// Handler returns the complete handler chain: logging, CORS, security
// headers, router.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) buildHandler() http.Handler {
	router := httprouter.New()
	router.GET("/health", s.health)

	router.GET("/api/profile", s.getProfile)
	router.PUT("/api/profile/bio", s.updateBio)
	router.POST("/api/profile/routes", s.saveRoute)
	router.DELETE("/api/profile/routes/:id", s.deleteRoute)

	router.POST("/api/auth/signin", s.signIn)
	router.POST("/api/auth/signup", s.signUp)
	router.POST("/api/auth/signout", s.signOut)

	router.GET("/api/routes/search", s.searchState)
	router.POST("/api/routes/search", s.searchRoutes)

	router.GET("/api/chat", s.transcript)
	router.POST("/api/chat", s.sendChat)

	router.GET("/api/stats", s.stats)

	router.NotFound = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(securityHeaders(router))

	return LoggingMiddleware(s.logger)(corsHandler)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadHeaderTimeout: 2 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      90 * time.Second, // Long for LLM responses
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("API server listening", "addr", addr, "version", s.version)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
