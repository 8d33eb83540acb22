// Package api exposes the conversation engine over a small JSON API.
// The messaging gateway in front of this service posts user messages to
// /process_text and relays the processed text back to the user.
package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sandevgo/edabot/internal/config"
	"github.com/sandevgo/edabot/internal/service/chat"
	"github.com/sandevgo/edabot/pkg/log"
)

type Server struct {
	srv *http.Server
}

func NewServer(cfg *config.ServerConfig, orchestrator *chat.Orchestrator) *Server {
	h := NewHandler(orchestrator)

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	r.Get("/healthz", h.Health)
	r.Post("/process_text", h.ProcessText)

	return &Server{
		srv: &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.srv.Addr).Msg("starting http server")

	// Handlers inherit the base context, and with it the logger.
	s.srv.BaseContext = func(net.Listener) context.Context {
		return ctx
	}

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
