package webhook

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

type Server struct {
	logger  *slog.Logger
	handler *Handler
	port    string
}

func NewServer(logger *slog.Logger, handler *Handler, port string) *Server {
	return &Server{
		logger:  logger,
		handler: handler,
		port:    port,
	}
}

// Start launches the HTTP listener and returns a cleanup func that shuts it
// down gracefully.
func (s *Server) Start(ctx context.Context) (func() error, error) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handler.Health)
	mux.HandleFunc("/webhook", s.handler.Webhook)

	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: mux,
	}

	go func() {
		s.logger.Info("Webhook server listening", "port", s.port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("Webhook server failed", "error", err)
		}
	}()

	cleanup := func() error {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil
	}

	return cleanup, nil
}
