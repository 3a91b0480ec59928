package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/edvin/configurator/internal/api/handler"
	mw "github.com/edvin/configurator/internal/api/middleware"
	"github.com/edvin/configurator/internal/config"
	"github.com/edvin/configurator/internal/core"
	"github.com/edvin/configurator/internal/pricing"
)

// Pinger reports whether the persistence backend is reachable.
// Every store.BlobStore satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	services *core.Services
	engine   *pricing.Engine
	backend  Pinger
	cfg      *config.Config
}

func NewServer(logger zerolog.Logger, services *core.Services, engine *pricing.Engine, backend Pinger, cfg *config.Config) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		services: services,
		engine:   engine,
		backend:  backend,
		cfg:      cfg,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics)
	if len(s.cfg.CORSOrigins) > 0 {
		s.router.Use(mw.CORS(s.cfg.CORSOrigins))
	}
}

func (s *Server) setupRoutes() {
	// Served here unless a dedicated metrics listener is configured.
	if s.cfg.MetricsListenAddr == "" {
		s.router.Handle("/metrics", promhttp.Handler())
	}

	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		cat := handler.NewCatalog(s.engine.Catalog())
		r.Get("/catalog", cat.Get)

		quotes := handler.NewPricing(s.engine)
		r.Post("/pricing", quotes.Quote)

		provisioning := handler.NewProvisioning(s.services.Provision)
		r.Post("/validate", provisioning.Validate)
		r.Post("/provisioning/names", provisioning.Names)

		configuration := handler.NewConfiguration(s.services.Provision)
		r.Get("/configurations", configuration.List)
		r.Post("/configurations", configuration.Create)
		r.Get("/configurations/{id}", configuration.Get)
		r.Put("/configurations/{id}", configuration.Update)

		wallet := handler.NewWallet(s.services.Wallet)
		r.Get("/wallet", wallet.Get)
		r.Post("/wallet/top-up", wallet.TopUp)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.backend.Ping(ctx); err != nil {
		checks["store"] = err.Error()
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
