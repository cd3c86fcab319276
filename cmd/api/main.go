// Package main provides the entry point for the ads console API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/campaignlabs/ads-console/internal/accounts"
	"github.com/campaignlabs/ads-console/internal/ads"
	"github.com/campaignlabs/ads-console/internal/ads/hierarchy"
	"github.com/campaignlabs/ads-console/internal/api"
	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/internal/cache"
	"github.com/campaignlabs/ads-console/internal/campaigns"
	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/secrets"
	"github.com/campaignlabs/ads-console/internal/shutdown"
	pgstore "github.com/campaignlabs/ads-console/internal/store/postgres"
	"github.com/campaignlabs/ads-console/pkg/config"
	"github.com/campaignlabs/ads-console/pkg/logger"
)

func main() {
	// Local development reads .env; missing file is fine.
	_ = godotenv.Load()

	log := logger.New(slog.LevelInfo, true)

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Error("failed to load configuration")
		os.Exit(1)
	}

	store, err := pgstore.NewPostgresStore(pgstore.DefaultConfig(cfg.DatabaseDSN), log.WithComponent("store").Logger)
	if err != nil {
		log.WithError(err).Error("failed to connect to database")
		os.Exit(1)
	}
	defer store.Close()

	migrateCtx, cancelMigrate := context.WithTimeout(context.Background(), 30*time.Second)
	if err := store.Migrate(migrateCtx); err != nil {
		cancelMigrate()
		log.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	cancelMigrate()

	vault, err := secrets.NewVault(&secrets.Config{
		AgePublicKey:  cfg.TokenVault.AgePublicKey,
		AgePrivateKey: cfg.TokenVault.AgePrivateKey,
	}, log.Logger)
	if err != nil {
		log.Error("failed to initialize token vault", "error", err)
		os.Exit(1)
	}

	authService := auth.NewService(&auth.Config{
		JWTSecret:   []byte(cfg.JWTSecret),
		TokenExpiry: cfg.JWTExpiry,
	}, log.Logger)

	google := auth.NewGoogle(auth.GoogleConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.OAuthRedirectURL,
	})

	adsClient := ads.NewClient(cfg.Ads.Endpoint, cfg.Ads.DeveloperToken, log.WithComponent("ads").Logger,
		ads.WithTimeout(cfg.Ads.RequestTimeout))

	fallback, err := hierarchy.LoadFallbackList(cfg.Ads.FallbackAccountsFile)
	if err != nil {
		log.Error("failed to load fallback accounts", "path", cfg.Ads.FallbackAccountsFile, "error", err)
		os.Exit(1)
	}

	diagBuffer := diag.NewBuffer(cfg.DiagLogCapacity, cfg.DiagReportCapacity)

	resolver := hierarchy.NewResolver(adsClient, fallback, hierarchy.Config{
		MaxRetries: cfg.Ads.MaxRetries,
		Backoff:    cfg.Ads.RetryBackoff,
	}, log.WithComponent("resolver").Logger)

	hierarchyCache := cache.New(cfg.CacheTTL)

	accountsService := accounts.NewService(
		store, vault, google, resolver, hierarchyCache, diagBuffer,
		cfg.Ads.LoginCustomerID, log.WithComponent("accounts"),
	)
	campaignsService := campaigns.NewService(store, accountsService, adsClient, diagBuffer, log.WithComponent("campaigns").Logger)

	server := api.NewServer(cfg, api.Deps{
		Store:     store,
		Auth:      authService,
		Google:    google,
		Vault:     vault,
		Accounts:  accountsService,
		Campaigns: campaignsService,
		Diag:      diagBuffer,
	}, log)

	coordinator := shutdown.NewCoordinator(
		shutdown.WithTimeout(cfg.ShutdownTimeout),
		shutdown.WithLogger(log.Logger),
	)
	coordinator.Register(shutdown.NewCloserComponent("database", store))
	coordinator.Register(shutdown.NewFuncComponent("http-server", server.Shutdown))

	go coordinator.WaitForSignal()

	log.Info("starting api server", "host", cfg.APIHost, "port", cfg.APIPort)
	if err := server.Start(); err != nil {
		log.Error("server error", "error", err)
		os.Exit(1)
	}

	coordinator.Wait()
	log.Info("server stopped")
	os.Exit(coordinator.ExitCode())
}
