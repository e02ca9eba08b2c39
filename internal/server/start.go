package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Start boots the modules, runs the HTTP server, and handles graceful
// shutdown on SIGINT/SIGTERM.
func (s *Server) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.RegisterModules(ctx); err != nil {
		slog.Error("failed to start modules", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := s.E.Start(s.Cfg.GetAddr()); err != nil && err != http.ErrServerClosed {
			slog.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	cancel() // stop module subscribers
	for _, m := range s.modules {
		if err := m.Shutdown(shutdownCtx); err != nil {
			slog.Error("module shutdown failed", "module", m.Name(), "error", err)
		}
	}

	if err := s.bridge.Close(); err != nil {
		slog.Error("failed to close message bus", "error", err)
	}
	s.tracingCleanup()
	s.DB.Close(shutdownCtx)

	if err := s.E.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}
}

// waitForShutdown blocks until an interrupt or terminate signal arrives.
func waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
}
