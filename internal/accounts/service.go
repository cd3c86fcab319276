// Package accounts provides the account hierarchy service: per-user Ads
// credentials, cached resolution, and diagnostics recording.
package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/campaignlabs/ads-console/internal/ads"
	"github.com/campaignlabs/ads-console/internal/ads/hierarchy"
	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/internal/cache"
	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/models"
	"github.com/campaignlabs/ads-console/internal/secrets"
	"github.com/campaignlabs/ads-console/internal/store"
	"github.com/campaignlabs/ads-console/pkg/logger"
)

// ErrGoogleNotLinked is returned when the user has no linked Google account.
var ErrGoogleNotLinked = errors.New("google account not linked")

// Service resolves account hierarchies for console users.
type Service struct {
	store    store.Store
	vault    *secrets.Vault
	google   *auth.Google
	resolver *hierarchy.Resolver
	cache    *cache.HierarchyCache
	diag     *diag.Buffer
	logger   *logger.Logger

	// defaultLoginCustomerID is applied when the operator pins a manager
	// account for all sub-account queries.
	defaultLoginCustomerID string
}

// NewService creates the accounts service.
func NewService(
	st store.Store,
	vault *secrets.Vault,
	google *auth.Google,
	resolver *hierarchy.Resolver,
	hc *cache.HierarchyCache,
	buffer *diag.Buffer,
	defaultLoginCustomerID string,
	log *logger.Logger,
) *Service {
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		store:                  st,
		vault:                  vault,
		google:                 google,
		resolver:               resolver,
		cache:                  hc,
		diag:                   buffer,
		logger:                 log,
		defaultLoginCustomerID: defaultLoginCustomerID,
	}
}

// CredentialsFor builds Ads credentials for a console user from their linked
// Google account's sealed refresh token.
func (s *Service) CredentialsFor(ctx context.Context, userID string) (ads.Credentials, string, error) {
	account, err := s.store.GoogleAccounts().GetByUserID(ctx, userID)
	if err != nil {
		return ads.Credentials{}, "", ErrGoogleNotLinked
	}

	refreshToken, err := s.vault.Open(account.SealedRefreshToken)
	if err != nil {
		return ads.Credentials{}, "", fmt.Errorf("opening stored refresh token: %w", err)
	}

	creds := ads.Credentials{
		TokenSource:     s.google.TokenSource(ctx, refreshToken),
		LoginCustomerID: s.defaultLoginCustomerID,
	}
	return creds, account.Email, nil
}

// ListManagers returns the manager accounts the user can pick as an MCC.
func (s *Service) ListManagers(ctx context.Context, userID string) ([]models.CustomerAccount, error) {
	creds, email, err := s.CredentialsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	accounts, report, err := s.resolver.ListManagers(ctx, creds, email)
	if report != nil {
		s.diag.AddReport(report)
	}
	if err != nil {
		return nil, err
	}

	// Prefer managers; fall back to everything accessible when describe
	// calls could not distinguish them.
	var managers []models.CustomerAccount
	for _, a := range accounts {
		if a.IsMCC {
			managers = append(managers, a)
		}
	}
	if len(managers) == 0 {
		return accounts, nil
	}
	return managers, nil
}

// Hierarchy returns the account tree under an MCC, served from the TTL cache
// when fresh. When every live strategy fails, an expired cache entry is
// served stale rather than failing the request.
func (s *Service) Hierarchy(ctx context.Context, userID, mccID string, forceRefresh bool) (*models.Hierarchy, error) {
	ctx = logger.ContextWithMCCID(ctx, mccID)

	creds, email, err := s.CredentialsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !forceRefresh {
		if cached, ok := s.cache.Get(email, mccID); ok {
			s.recordCacheHit(ctx, email, mccID, false)
			out := *cached
			out.FromCache = true
			return &out, nil
		}
	}

	resolved, report, err := s.resolver.Resolve(ctx, creds, email, mccID)
	if err == nil {
		s.cache.Put(email, mccID, resolved)
		s.diag.AddReport(report)
		return resolved, nil
	}

	// Every strategy failed; an expired entry beats an error page.
	if stale, ok := s.cache.GetStale(email, mccID); ok {
		report.CacheHit = true
		report.Stale = true
		s.diag.AddReport(report)
		s.recordCacheHit(ctx, email, mccID, true)

		out := *stale
		out.FromCache = true
		out.Stale = true
		return &out, nil
	}

	s.diag.AddReport(report)
	s.logger.WithContext(ctx).Warn("hierarchy resolution failed with no cache to fall back on",
		"user_email", email, "error", err)
	return nil, err
}

// InvalidateHierarchy drops the cached hierarchy for the user's email and
// the given MCC.
func (s *Service) InvalidateHierarchy(ctx context.Context, userID, mccID string) error {
	_, email, err := s.CredentialsFor(ctx, userID)
	if err != nil {
		return err
	}
	s.cache.Invalidate(email, mccID)
	return nil
}

// FlushCache drops every cached hierarchy.
func (s *Service) FlushCache() {
	s.cache.Flush()
	s.diag.Add("info", "cache", "hierarchy cache flushed", nil)
}

func (s *Service) recordCacheHit(ctx context.Context, email, mccID string, stale bool) {
	fields := map[string]string{"mcc_id": mccID}
	message := "hierarchy served from cache"
	if stale {
		message = "stale hierarchy served after resolution failure"
	}
	s.diag.Add("info", "cache", message, fields)
	s.logger.WithContext(ctx).Debug(message, "user_email", email, "stale", stale)
}
