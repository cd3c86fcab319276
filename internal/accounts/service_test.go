package accounts

import (
	"context"
	"errors"
	"testing"
	"time"

	"filippo.io/age"

	"github.com/campaignlabs/ads-console/internal/ads"
	"github.com/campaignlabs/ads-console/internal/ads/hierarchy"
	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/internal/cache"
	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/models"
	"github.com/campaignlabs/ads-console/internal/secrets"
	"github.com/campaignlabs/ads-console/internal/store"
)

// mockStore implements store.Store with only the pieces these tests touch.
type mockStore struct {
	googleAccounts *mockGoogleAccountStore
}

func (m *mockStore) Users() store.UserStore                   { return nil }
func (m *mockStore) GoogleAccounts() store.GoogleAccountStore { return m.googleAccounts }
func (m *mockStore) Campaigns() store.CampaignStore           { return nil }
func (m *mockStore) Settings() store.SettingsStore            { return nil }
func (m *mockStore) Ping(ctx context.Context) error           { return nil }
func (m *mockStore) Close() error                             { return nil }

type mockGoogleAccountStore struct {
	account *models.GoogleAccount
}

func (m *mockGoogleAccountStore) Upsert(ctx context.Context, account *models.GoogleAccount) error {
	m.account = account
	return nil
}

func (m *mockGoogleAccountStore) Get(ctx context.Context, id string) (*models.GoogleAccount, error) {
	if m.account == nil || m.account.ID != id {
		return nil, errors.New("not found")
	}
	return m.account, nil
}

func (m *mockGoogleAccountStore) GetByUserID(ctx context.Context, userID string) (*models.GoogleAccount, error) {
	if m.account == nil || m.account.UserID != userID {
		return nil, errors.New("not found")
	}
	return m.account, nil
}

func (m *mockGoogleAccountStore) Delete(ctx context.Context, id string) error {
	m.account = nil
	return nil
}

// flakyAdsAPI serves accounts until failing is set.
type flakyAdsAPI struct {
	failing bool
}

func (f *flakyAdsAPI) ListClientAccounts(ctx context.Context, creds ads.Credentials, managerID string) ([]models.CustomerAccount, error) {
	if f.failing {
		return nil, errors.New("upstream down")
	}
	return []models.CustomerAccount{{ID: "1111111111", ParentID: managerID}}, nil
}

func (f *flakyAdsAPI) ListAccessibleCustomers(ctx context.Context, creds ads.Credentials) ([]string, error) {
	if f.failing {
		return nil, errors.New("upstream down")
	}
	return []string{"customers/9999999999"}, nil
}

func (f *flakyAdsAPI) DescribeCustomer(ctx context.Context, creds ads.Credentials, customerID string) (*models.CustomerAccount, error) {
	if f.failing {
		return nil, errors.New("upstream down")
	}
	return &models.CustomerAccount{ID: customerID, DisplayName: "Agency", IsMCC: true}, nil
}

func newTestService(t *testing.T, api *flakyAdsAPI, ttl time.Duration) (*Service, *diag.Buffer) {
	t.Helper()

	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatal(err)
	}
	vault, err := secrets.NewVault(&secrets.Config{AgePrivateKey: identity.String()}, nil)
	if err != nil {
		t.Fatal(err)
	}

	sealed, err := vault.Seal("refresh-token")
	if err != nil {
		t.Fatal(err)
	}

	st := &mockStore{googleAccounts: &mockGoogleAccountStore{
		account: &models.GoogleAccount{
			ID:                 "google-1",
			UserID:             "user-1",
			Email:              "user@example.com",
			SealedRefreshToken: sealed,
		},
	}}

	google := auth.NewGoogle(auth.GoogleConfig{ClientID: "id", ClientSecret: "secret"})
	resolver := hierarchy.NewResolver(api, nil, hierarchy.Config{Backoff: time.Millisecond}, nil)
	buffer := diag.NewBuffer(100, 100)

	svc := NewService(st, vault, google, resolver, cache.New(ttl), buffer, "", nil)
	return svc, buffer
}

func TestHierarchyCachesResolution(t *testing.T) {
	api := &flakyAdsAPI{}
	svc, buffer := newTestService(t, api, time.Hour)

	first, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false)
	if err != nil {
		t.Fatalf("Hierarchy: %v", err)
	}
	if first.FromCache {
		t.Error("first resolution should be live")
	}

	// The upstream goes away; the cached copy must still serve.
	api.failing = true
	second, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false)
	if err != nil {
		t.Fatalf("Hierarchy from cache: %v", err)
	}
	if !second.FromCache || second.Stale {
		t.Errorf("second = fromCache %v stale %v, want fresh cache hit", second.FromCache, second.Stale)
	}

	if len(buffer.Reports(0)) == 0 {
		t.Error("resolution should record a diagnostic report")
	}
}

func TestHierarchyServesStaleOnFailure(t *testing.T) {
	api := &flakyAdsAPI{}
	// Nanosecond TTL: every entry is expired by the next read.
	svc, _ := newTestService(t, api, time.Nanosecond)

	if _, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false); err != nil {
		t.Fatalf("Hierarchy: %v", err)
	}

	api.failing = true
	h, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false)
	if err != nil {
		t.Fatalf("expected stale fallback, got %v", err)
	}
	if !h.Stale || !h.FromCache {
		t.Errorf("stale %v fromCache %v, want both true", h.Stale, h.FromCache)
	}
}

func TestHierarchyFailsWithoutCache(t *testing.T) {
	api := &flakyAdsAPI{failing: true}
	svc, _ := newTestService(t, api, time.Hour)

	if _, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false); err == nil {
		t.Fatal("expected failure with no cache to fall back on")
	}
}

func TestHierarchyForceRefreshBypassesCache(t *testing.T) {
	api := &flakyAdsAPI{}
	svc, _ := newTestService(t, api, time.Hour)

	if _, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false); err != nil {
		t.Fatal(err)
	}

	h, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", true)
	if err != nil {
		t.Fatal(err)
	}
	if h.FromCache {
		t.Error("force refresh must not serve from cache")
	}
}

func TestHierarchyInvalidate(t *testing.T) {
	api := &flakyAdsAPI{}
	svc, _ := newTestService(t, api, time.Hour)

	if _, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false); err != nil {
		t.Fatal(err)
	}
	if err := svc.InvalidateHierarchy(context.Background(), "user-1", "9999999999"); err != nil {
		t.Fatal(err)
	}

	api.failing = true
	if _, err := svc.Hierarchy(context.Background(), "user-1", "9999999999", false); err == nil {
		t.Error("invalidated entry must not serve, stale or otherwise")
	}
}

func TestCredentialsForUnlinkedUser(t *testing.T) {
	api := &flakyAdsAPI{}
	svc, _ := newTestService(t, api, time.Hour)

	if _, _, err := svc.CredentialsFor(context.Background(), "stranger"); !errors.Is(err, ErrGoogleNotLinked) {
		t.Errorf("err = %v, want ErrGoogleNotLinked", err)
	}
}

func TestListManagersPrefersManagers(t *testing.T) {
	api := &flakyAdsAPI{}
	svc, _ := newTestService(t, api, time.Hour)

	managers, err := svc.ListManagers(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("ListManagers: %v", err)
	}
	if len(managers) != 1 || !managers[0].IsMCC {
		t.Errorf("managers = %+v", managers)
	}
}
