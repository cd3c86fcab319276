// Package api provides the HTTP API server for the ads console.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/campaignlabs/ads-console/internal/accounts"
	"github.com/campaignlabs/ads-console/internal/api/handlers"
	"github.com/campaignlabs/ads-console/internal/api/health"
	"github.com/campaignlabs/ads-console/internal/api/middleware"
	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/internal/campaigns"
	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/secrets"
	"github.com/campaignlabs/ads-console/internal/store"
	"github.com/campaignlabs/ads-console/pkg/config"
	"github.com/campaignlabs/ads-console/pkg/logger"
)

// Version is the current version of the API server.
// This should be set at build time using ldflags.
var Version = "dev"

// Deps carries the services the server exposes over HTTP.
type Deps struct {
	Store     store.Store
	Auth      *auth.Service
	Google    *auth.Google
	Vault     *secrets.Vault
	Accounts  *accounts.Service
	Campaigns *campaigns.Service
	Diag      *diag.Buffer
}

// Server represents the HTTP API server.
type Server struct {
	router        chi.Router
	httpServer    *http.Server
	deps          Deps
	config        *config.Config
	logger        *logger.Logger
	healthChecker *health.Checker
}

// NewServer creates a new API server with the given dependencies.
func NewServer(cfg *config.Config, deps Deps, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}

	s := &Server{
		deps:   deps,
		config: cfg,
		logger: log,
	}
	s.healthChecker = health.NewChecker(deps.Store, Version)
	s.setupRouter()
	return s
}

// setupRouter configures the router with middleware and routes.
func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(s.logger))
	r.Use(middleware.Recovery(s.logger.Logger))
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", s.healthChecker.Handler())

	authHandler := handlers.NewAuthHandler(
		s.deps.Store, s.deps.Auth, s.deps.Google, s.deps.Vault,
		s.config.SessionCookie, s.config.FrontendURL, s.logger.Logger,
	)
	r.Route("/auth", func(r chi.Router) {
		r.Get("/setup", authHandler.SetupCheck)
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/logout", authHandler.Logout)
		r.Get("/google", authHandler.GoogleLogin)
		r.Get("/google/callback", authHandler.GoogleCallback)
	})

	r.Route("/v1", func(r chi.Router) {
		authMiddleware := middleware.NewAuthMiddleware(s.deps.Auth, s.config.SessionCookie, s.logger.Logger)
		r.Use(authMiddleware.Authenticate)

		r.Get("/auth/me", authHandler.Me)
		r.Delete("/auth/google", authHandler.UnlinkGoogle)

		accountsHandler := handlers.NewAccountsHandler(s.deps.Accounts, s.logger.Logger)
		r.Route("/accounts", func(r chi.Router) {
			r.Get("/managers", accountsHandler.ListManagers)
			r.Get("/{mccID}/hierarchy", accountsHandler.Hierarchy)
			r.Delete("/{mccID}/hierarchy", accountsHandler.Invalidate)
			r.Delete("/cache", accountsHandler.FlushCache)
		})

		campaignsHandler := handlers.NewCampaignsHandler(s.deps.Campaigns, s.logger.Logger)
		r.Route("/campaigns", func(r chi.Router) {
			r.Post("/", campaignsHandler.Create)
			r.Post("/validate", campaignsHandler.Validate)
			r.Get("/", campaignsHandler.List)
			r.Get("/{id}", campaignsHandler.Get)
		})

		diagHandler := handlers.NewDiagnosticsHandler(s.deps.Diag, s.logger.Logger)
		r.Route("/diagnostics", func(r chi.Router) {
			r.Get("/logs", diagHandler.Logs)
			r.Get("/reports", diagHandler.Reports)
			r.Get("/stream", diagHandler.Stream)
			r.Get("/feed", diagHandler.Feed)
		})

		settingsHandler := handlers.NewSettingsHandler(s.deps.Store, s.logger.Logger)
		r.Get("/settings", settingsHandler.Get)
		r.Put("/settings", settingsHandler.Set)
	})

	s.router = r
}

// Router returns the configured router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// newHTTPServer builds the listener configuration. No Read/WriteTimeout:
// either one would cut off the diagnostics SSE and WebSocket routes, which
// hold their connections open indefinitely.
func (s *Server) newHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.APIHost, s.config.APIPort)
	s.httpServer = s.newHTTPServer(addr)

	s.logger.Info("api server listening", "addr", addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}
