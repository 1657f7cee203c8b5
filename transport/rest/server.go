package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	logger *slog.Logger
	srv    *http.Server
}

func New(logger *slog.Logger, port string, sessions sessionService, events eventSource) *Server {
	return &Server{
		logger: logger.With("component", "http"),
		srv: &http.Server{
			Addr:              ":" + port,
			Handler:           NewRouter(logger, sessions, events),
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
	}
}

// NewRouter - routes of the game API.
func NewRouter(logger *slog.Logger, sessions sessionService, events eventSource) http.Handler {
	h := &handlers{
		logger:   logger.With("component", "http-handlers"),
		sessions: sessions,
		events:   events,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/ping", pingHandler)

	r.Post("/sessions", h.start)
	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Get("/", h.get)
		r.Delete("/", h.end)
		r.Post("/cells/{cell}", h.activateCell)
		r.Post("/restart", h.restart)
		r.Get("/events", h.stream)
	})

	return r
}

// Start serves until ctx is done, then shuts down gracefully.
func (that *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		that.logger.Info("Starting HTTP server", "addr", that.srv.Addr)
		errCh <- that.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := that.srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}

	that.logger.Info("HTTP server stopped")

	return nil
}
