// Package hierarchy resolves Google Ads account hierarchies. Resolution is a
// sequence of fallback strategies tried in order until one yields accounts;
// every attempt is traced into a diagnostic report.
package hierarchy

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campaignlabs/ads-console/internal/ads"
	"github.com/campaignlabs/ads-console/internal/models"
)

// Strategy names, in resolution order.
const (
	StrategyCustomerClient = "gaql_customer_client"
	StrategyLoginCustomer  = "gaql_login_customer"
	StrategyAccessible     = "rest_accessible_customers"
	StrategyStaticFallback = "static_fallback"
)

// ErrAllStrategiesFailed is returned when no strategy produced accounts.
var ErrAllStrategiesFailed = errors.New("all resolution strategies failed")

// adsAPI is the Ads client surface the resolver needs.
type adsAPI interface {
	ListAccessibleCustomers(ctx context.Context, creds ads.Credentials) ([]string, error)
	ListClientAccounts(ctx context.Context, creds ads.Credentials, managerID string) ([]models.CustomerAccount, error)
	DescribeCustomer(ctx context.Context, creds ads.Credentials, customerID string) (*models.CustomerAccount, error)
}

// Config holds resolver retry behavior.
type Config struct {
	// MaxRetries is the number of extra tries per strategy on retryable
	// failures.
	MaxRetries int
	// Backoff is the base wait between retries, doubled each attempt.
	Backoff time.Duration
}

// Resolver runs the strategy sequence.
type Resolver struct {
	client   adsAPI
	fallback *FallbackList
	cfg      Config
	logger   *slog.Logger

	// sleep is replaceable in tests.
	sleep func(ctx context.Context, d time.Duration)
}

// NewResolver creates a resolver over the given Ads client.
func NewResolver(client adsAPI, fallback *FallbackList, cfg Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	if fallback == nil {
		fallback = &FallbackList{}
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 2 * time.Second
	}

	return &Resolver{
		client:   client,
		fallback: fallback,
		cfg:      cfg,
		logger:   logger,
		sleep:    sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// strategyFunc attempts one resolution strategy.
type strategyFunc func(ctx context.Context) ([]models.CustomerAccount, error)

// namedStrategy pairs a strategy with its name for tracing.
type namedStrategy struct {
	name string
	run  strategyFunc
}

// Resolve returns the account hierarchy under a manager account, trying each
// strategy in order. The returned report traces every attempt regardless of
// outcome.
func (r *Resolver) Resolve(ctx context.Context, creds ads.Credentials, userEmail, mccID string) (*models.Hierarchy, *models.DiagnosticReport, error) {
	strategies := []namedStrategy{
		{StrategyCustomerClient, func(ctx context.Context) ([]models.CustomerAccount, error) {
			return r.client.ListClientAccounts(ctx, creds, mccID)
		}},
		{StrategyLoginCustomer, func(ctx context.Context) ([]models.CustomerAccount, error) {
			loginCreds := creds
			loginCreds.LoginCustomerID = mccID
			return r.client.ListClientAccounts(ctx, loginCreds, mccID)
		}},
		{StrategyAccessible, func(ctx context.Context) ([]models.CustomerAccount, error) {
			return r.accessibleAsChildren(ctx, creds, mccID)
		}},
		{StrategyStaticFallback, func(ctx context.Context) ([]models.CustomerAccount, error) {
			return r.staticFallback(mccID)
		}},
	}

	report := r.newReport(userEmail, mccID)
	accounts, strategy, err := r.runStrategies(ctx, strategies, report)
	if err != nil {
		return nil, report, err
	}

	return &models.Hierarchy{
		MCCID:      mccID,
		Accounts:   accounts,
		ResolvedAt: time.Now(),
		Strategy:   strategy,
	}, report, nil
}

// ListManagers returns the manager accounts the user can select as an MCC.
func (r *Resolver) ListManagers(ctx context.Context, creds ads.Credentials, userEmail string) ([]models.CustomerAccount, *models.DiagnosticReport, error) {
	strategies := []namedStrategy{
		{StrategyAccessible, func(ctx context.Context) ([]models.CustomerAccount, error) {
			return r.describeAccessible(ctx, creds)
		}},
		{StrategyStaticFallback, func(ctx context.Context) ([]models.CustomerAccount, error) {
			managers := r.fallback.Managers()
			if len(managers) == 0 {
				return nil, ErrAllStrategiesFailed
			}
			return managers, nil
		}},
	}

	report := r.newReport(userEmail, "")
	accounts, _, err := r.runStrategies(ctx, strategies, report)
	if err != nil {
		return nil, report, err
	}
	return accounts, report, nil
}

// runStrategies tries each strategy in order, retrying retryable failures
// with exponential backoff within a strategy before moving on.
func (r *Resolver) runStrategies(ctx context.Context, strategies []namedStrategy, report *models.DiagnosticReport) ([]models.CustomerAccount, string, error) {
	start := time.Now()
	defer func() {
		report.Total = time.Since(start)
	}()

	var lastErr error
	for _, s := range strategies {
		accounts, err := r.runWithRetry(ctx, s, report)
		if err == nil && len(accounts) > 0 {
			report.Strategy = s.name
			r.logger.Info("hierarchy resolved",
				"strategy", s.name,
				"accounts", len(accounts),
				"mcc_id", report.MCCID,
			)
			return accounts, s.name, nil
		}
		if err == nil {
			err = errors.New("strategy returned no accounts")
		}
		lastErr = err

		r.logger.Warn("resolution strategy failed",
			"strategy", s.name,
			"error", err,
			"mcc_id", report.MCCID,
		)

		if ctx.Err() != nil {
			return nil, "", ctx.Err()
		}
	}

	if lastErr == nil {
		lastErr = ErrAllStrategiesFailed
	}
	return nil, "", errors.Join(ErrAllStrategiesFailed, lastErr)
}

// runWithRetry runs one strategy, retrying retryable failures, and records
// every attempt in the report.
func (r *Resolver) runWithRetry(ctx context.Context, s namedStrategy, report *models.DiagnosticReport) ([]models.CustomerAccount, error) {
	backoff := r.cfg.Backoff

	var lastErr error
	for attempt := 1; attempt <= r.cfg.MaxRetries+1; attempt++ {
		started := time.Now()
		accounts, err := s.run(ctx)

		rec := models.ResolutionAttempt{
			Strategy:  s.name,
			Attempt:   attempt,
			StartedAt: started,
			Duration:  time.Since(started),
			Success:   err == nil,
		}
		if err != nil {
			rec.Error = err.Error()
		} else {
			rec.AccountsLen = len(accounts)
		}
		report.Attempts = append(report.Attempts, rec)

		if err == nil {
			return accounts, nil
		}
		lastErr = err

		if !ads.IsRetryable(err) || ctx.Err() != nil {
			break
		}
		if attempt <= r.cfg.MaxRetries {
			r.sleep(ctx, backoff)
			backoff *= 2
		}
	}

	return nil, lastErr
}

// accessibleAsChildren lists directly accessible customers and shapes them as
// children of the requested manager. The parent link is assumed, not
// verified; this strategy only runs when the GAQL paths failed.
func (r *Resolver) accessibleAsChildren(ctx context.Context, creds ads.Credentials, mccID string) ([]models.CustomerAccount, error) {
	resourceNames, err := r.client.ListAccessibleCustomers(ctx, creds)
	if err != nil {
		return nil, err
	}

	var accounts []models.CustomerAccount
	for _, rn := range resourceNames {
		id := ads.CustomerIDFromResourceName(rn)
		if id == "" || id == mccID {
			continue
		}
		accounts = append(accounts, models.CustomerAccount{
			ID:           id,
			ResourceName: rn,
			ParentID:     mccID,
		})
	}
	return accounts, nil
}

// describeAccessible lists directly accessible customers and describes each
// to find managers. Describe failures degrade to an undescribed entry rather
// than failing the whole strategy.
func (r *Resolver) describeAccessible(ctx context.Context, creds ads.Credentials) ([]models.CustomerAccount, error) {
	resourceNames, err := r.client.ListAccessibleCustomers(ctx, creds)
	if err != nil {
		return nil, err
	}

	var accounts []models.CustomerAccount
	for _, rn := range resourceNames {
		id := ads.CustomerIDFromResourceName(rn)
		if id == "" {
			continue
		}

		desc, err := r.client.DescribeCustomer(ctx, creds, id)
		if err != nil {
			r.logger.Debug("describe customer failed", "customer_id", id, "error", err)
			accounts = append(accounts, models.CustomerAccount{
				ID:           id,
				ResourceName: rn,
			})
			continue
		}
		accounts = append(accounts, *desc)
	}
	return accounts, nil
}

// staticFallback serves the operator-maintained list.
func (r *Resolver) staticFallback(mccID string) ([]models.CustomerAccount, error) {
	if r.fallback.Empty() {
		return nil, errors.New("no static fallback accounts configured")
	}
	return r.fallback.Under(mccID), nil
}

func (r *Resolver) newReport(userEmail, mccID string) *models.DiagnosticReport {
	return &models.DiagnosticReport{
		ID:        uuid.New().String(),
		UserEmail: userEmail,
		MCCID:     mccID,
		CreatedAt: time.Now(),
	}
}
