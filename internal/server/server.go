// Package server assembles the HTTP router and owns the http.Server
// lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/skinside/skinside/internal/auth"
	"github.com/skinside/skinside/internal/config"
	"github.com/skinside/skinside/internal/database"
	"github.com/skinside/skinside/internal/handler"
	"github.com/skinside/skinside/internal/logger"
	"github.com/skinside/skinside/internal/matching"
)

// Server wraps the HTTP server with its router and dependencies.
type Server struct {
	httpServer *http.Server
	log        *slog.Logger
	cfg        config.ServerConfig
}

// New builds the router and the server. All /api routes require a valid
// bearer token; /healthz is open.
func New(
	cfg config.ServerConfig,
	store database.Store,
	matcher *matching.Service,
	tokens *auth.TokenService,
	log *slog.Logger,
) *Server {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(logger.Middleware(log))
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", handler.Health(store))

	matchHandler := handler.NewMatchHandler(matcher, log)
	profileHandler := handler.NewProfileHandler(store, log)
	trialsHandler := handler.NewTrialsHandler(store, log)

	r.Route("/api", func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))

		r.Post("/match", matchHandler.Run)
		r.Get("/match", matchHandler.Stored)

		r.Get("/profile", profileHandler.Get)
		r.Put("/profile", profileHandler.Put)

		r.Get("/trials", trialsHandler.List)
		r.Get("/trials/{number}", trialsHandler.Get)
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      r,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
		},
		log: log.With("component", "server"),
		cfg: cfg,
	}
}

// Handler exposes the assembled router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Run serves until ctx is cancelled, then shuts down gracefully within
// the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.log.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown failed: %w", err)
	}
	return nil
}
