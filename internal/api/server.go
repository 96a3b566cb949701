package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/pgold-labs/staking-ledger/internal/config"
	"github.com/pgold-labs/staking-ledger/internal/services"
)

// Server exposes the ledger over HTTP. Every mutating endpoint takes the
// caller address in the request body; there is no session state.
type Server struct {
	cfg        *config.ApiConfig
	service    *services.Service
	httpServer *http.Server
}

func New(cfg *config.ApiConfig, service *services.Service) *Server {
	srv := &Server{
		cfg:     cfg,
		service: service,
	}

	r := chi.NewRouter()
	r.Use(srv.tracingMiddleware)
	r.Use(srv.requestDurationMiddleware)

	r.Get("/healthcheck", srv.handleHealthcheck)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/register", srv.handleRegister)
		r.Post("/stake", srv.handleStake)
		r.Post("/unstake", srv.handleUnstake)

		r.Get("/user/{address}", srv.handleGetUser)
		r.Get("/stake/{address}/{id}", srv.handleGetStake)
		r.Get("/stake/{address}/{id}/rewards", srv.handleGetStakeRewards)
		r.Get("/stakes/{address}", srv.handleListStakes)
		r.Get("/events/{address}", srv.handleGetEvents)
		r.Get("/stats", srv.handleGetStats)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/pause", srv.handlePause)
			r.Post("/unpause", srv.handleUnpause)
			r.Post("/pool-address", srv.handleSetPoolAddress)
			r.Post("/transfer-ownership", srv.handleTransferOwnership)
			r.Post("/renounce-ownership", srv.handleRenounceOwnership)
		})
	})

	srv.httpServer = &http.Server{
		Addr:         cfg.Address(),
		Handler:      r,
		WriteTimeout: cfg.WriteTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return srv
}

// Start serves until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	log.Info().Msgf("Starting ledger API server on %s", s.cfg.Address())
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("api server exited: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler returns the route tree, used by tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
