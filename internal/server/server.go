// Package server exposes the transcription pipeline over HTTP: job
// submission, a line-delimited JSON event stream, cancellation, and format
// downloads.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/scribed-io/scribed/internal/bus"
	"github.com/scribed-io/scribed/internal/config"
	"github.com/scribed-io/scribed/internal/job"
	"github.com/scribed-io/scribed/internal/pipeline"
)

type Server struct {
	cfg  config.ServerConfig
	ctrl *pipeline.Controller
	jobs job.Store
	bus  *bus.Bus
	http *http.Server
}

func New(cfg config.ServerConfig, ctrl *pipeline.Controller, jobs job.Store, b *bus.Bus) *Server {
	s := &Server{
		cfg:  cfg,
		ctrl: ctrl,
		jobs: jobs,
		bus:  b,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/transcribe/start", s.handleStart)
	mux.HandleFunc("GET /api/transcribe/stream/{id}", s.handleStream)
	mux.HandleFunc("POST /api/transcribe/cancel/{id}", s.handleCancel)
	mux.HandleFunc("GET /api/transcribe/status/{id}", s.handleStatus)
	mux.HandleFunc("POST /api/transcribe/download", s.handleDownload)

	s.http = &http.Server{
		Addr:    cfg.Addr,
		Handler: mux,
	}
	return s
}

// Handler exposes the route table, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is cancelled or a termination signal
// arrives, then shuts down gracefully and waits for running jobs.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("server: received signal %v, shutting down", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server: listening on %s", s.cfg.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}

	s.ctrl.Shutdown()
	log.Printf("server: stopped")
	return nil
}
