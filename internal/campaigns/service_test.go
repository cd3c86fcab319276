package campaigns

import (
	"context"
	"errors"
	"testing"

	"golang.org/x/oauth2"

	"github.com/campaignlabs/ads-console/internal/ads"
	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/models"
	"github.com/campaignlabs/ads-console/internal/store"
)

type mockCampaignStore struct {
	records map[string]*models.CampaignRecord
}

func newMockCampaignStore() *mockCampaignStore {
	return &mockCampaignStore{records: make(map[string]*models.CampaignRecord)}
}

func (m *mockCampaignStore) Create(ctx context.Context, record *models.CampaignRecord) error {
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *mockCampaignStore) Update(ctx context.Context, record *models.CampaignRecord) error {
	cp := *record
	m.records[record.ID] = &cp
	return nil
}

func (m *mockCampaignStore) Get(ctx context.Context, id string) (*models.CampaignRecord, error) {
	r, ok := m.records[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return r, nil
}

func (m *mockCampaignStore) List(ctx context.Context, userID string, limit int) ([]*models.CampaignRecord, error) {
	var out []*models.CampaignRecord
	for _, r := range m.records {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *mockCampaignStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.CampaignRecord, error) {
	var out []*models.CampaignRecord
	for _, r := range m.records {
		if r.CustomerID == customerID {
			out = append(out, r)
		}
	}
	return out, nil
}

type campaignMockStore struct {
	campaigns *mockCampaignStore
}

func (m *campaignMockStore) Users() store.UserStore                   { return nil }
func (m *campaignMockStore) GoogleAccounts() store.GoogleAccountStore { return nil }
func (m *campaignMockStore) Campaigns() store.CampaignStore           { return m.campaigns }
func (m *campaignMockStore) Settings() store.SettingsStore            { return nil }
func (m *campaignMockStore) Ping(ctx context.Context) error           { return nil }
func (m *campaignMockStore) Close() error                             { return nil }

type staticCreds struct{}

func (staticCreds) CredentialsFor(ctx context.Context, userID string) (ads.Credentials, string, error) {
	return ads.Credentials{
		TokenSource: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "token"}),
	}, "user@example.com", nil
}

type deniedCreds struct{ err error }

func (d deniedCreds) CredentialsFor(ctx context.Context, userID string) (ads.Credentials, string, error) {
	return ads.Credentials{}, "", d.err
}

type mockCreator struct {
	result *models.CampaignResult
	err    error
	calls  int
}

func (m *mockCreator) CreateSearchCampaign(ctx context.Context, creds ads.Credentials, form *models.CampaignForm) (*models.CampaignResult, error) {
	m.calls++
	return m.result, m.err
}

func validForm() *models.CampaignForm {
	return &models.CampaignForm{
		CustomerID:        "1234567890",
		Name:              "Spring Sale",
		DailyBudgetMicros: 10_000_000,
		MaxCPCMicros:      1_000_000,
		Headlines:         []string{"Big Savings", "Shop Today", "Free Shipping"},
		Descriptions:      []string{"Everything must go.", "Limited time only."},
		FinalURL:          "https://example.com/sale",
		Keywords:          []string{"spring sale"},
	}
}

func newTestCampaignService(creator *mockCreator) (*Service, *mockCampaignStore) {
	campaigns := newMockCampaignStore()
	st := &campaignMockStore{campaigns: campaigns}
	svc := NewService(st, staticCreds{}, creator, diag.NewBuffer(100, 100), nil)
	return svc, campaigns
}

func TestCreateRecordsSuccess(t *testing.T) {
	creator := &mockCreator{result: &models.CampaignResult{
		CampaignResourceName: "customers/1234567890/campaigns/42",
	}}
	svc, campaigns := newTestCampaignService(creator)

	record, err := svc.Create(context.Background(), "user-1", validForm())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if record.Status != models.CampaignStatusCreated {
		t.Errorf("status = %q", record.Status)
	}
	if record.ResourceName != "customers/1234567890/campaigns/42" {
		t.Errorf("resource name = %q", record.ResourceName)
	}

	stored, err := campaigns.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.CampaignStatusCreated {
		t.Errorf("persisted status = %q", stored.Status)
	}
}

func TestCreateRejectsInvalidForm(t *testing.T) {
	creator := &mockCreator{}
	svc, campaigns := newTestCampaignService(creator)

	form := validForm()
	form.Name = ""
	form.Headlines = form.Headlines[:1]

	_, err := svc.Create(context.Background(), "user-1", form)
	var failure *ValidationFailure
	if !errors.As(err, &failure) {
		t.Fatalf("err = %v, want ValidationFailure", err)
	}
	if len(failure.Errors) < 2 {
		t.Errorf("got %d field errors, want at least 2", len(failure.Errors))
	}
	if creator.calls != 0 {
		t.Error("invalid form must not reach the Ads API")
	}
	if len(campaigns.records) != 0 {
		t.Error("invalid form must not be recorded")
	}
}

func TestCreateRecordsStepFailure(t *testing.T) {
	stepErr := &ads.StepError{Step: ads.StepAdGroup, Err: errors.New("quota exceeded")}
	creator := &mockCreator{
		result: &models.CampaignResult{
			BudgetResourceName:   "customers/1234567890/campaignBudgets/1",
			CampaignResourceName: "customers/1234567890/campaigns/42",
		},
		err: stepErr,
	}
	svc, campaigns := newTestCampaignService(creator)

	record, err := svc.Create(context.Background(), "user-1", validForm())
	if err == nil {
		t.Fatal("expected error from failed step")
	}
	if record == nil {
		t.Fatal("failed creation must still return the record")
	}
	if record.Status != models.CampaignStatusFailed {
		t.Errorf("status = %q", record.Status)
	}
	if record.FailedStep != ads.StepAdGroup {
		t.Errorf("failed step = %q", record.FailedStep)
	}
	// The campaign itself was created before the ad group step failed.
	if record.ResourceName != "customers/1234567890/campaigns/42" {
		t.Errorf("resource name = %q", record.ResourceName)
	}

	stored, err := campaigns.Get(context.Background(), record.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Status != models.CampaignStatusFailed {
		t.Errorf("persisted status = %q", stored.Status)
	}
}

func TestCreateWithoutLinkedGoogle(t *testing.T) {
	sentinel := errors.New("google account not linked")
	campaigns := newMockCampaignStore()
	svc := NewService(&campaignMockStore{campaigns: campaigns}, deniedCreds{err: sentinel}, &mockCreator{}, diag.NewBuffer(10, 10), nil)

	_, err := svc.Create(context.Background(), "user-1", validForm())
	if !errors.Is(err, sentinel) {
		t.Errorf("err = %v, want credential error passed through", err)
	}
	if len(campaigns.records) != 0 {
		t.Error("credential failure must not leave a record")
	}
}

func TestValidateCollectsErrors(t *testing.T) {
	svc, _ := newTestCampaignService(&mockCreator{})

	form := validForm()
	form.CustomerID = "12"
	form.FinalURL = "ftp://example.com"

	errs := svc.Validate(form)
	if len(errs) != 2 {
		t.Fatalf("got %d errors, want 2: %+v", len(errs), errs)
	}
}
