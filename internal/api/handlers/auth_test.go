package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/internal/store"
	"github.com/campaignlabs/ads-console/internal/store/postgres"
)

type fakeUserStore struct {
	byEmail    map[string]*store.User
	emailErr   error
	created    []string
	nextUserID string
}

func (f *fakeUserStore) Create(ctx context.Context, email, password string, role store.Role) (*store.User, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeUserStore) CreateFromGoogle(ctx context.Context, email, name, avatarURL string) (*store.User, error) {
	f.created = append(f.created, email)
	return &store.User{ID: f.nextUserID, Email: email, Name: name, Role: store.RoleMember}, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	if f.emailErr != nil {
		return nil, f.emailErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, postgres.ErrNotFound
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*store.User, error) {
	return nil, postgres.ErrNotFound
}

func (f *fakeUserStore) Authenticate(ctx context.Context, email, password string) (*store.User, error) {
	return nil, postgres.ErrInvalidCredentials
}

func (f *fakeUserStore) Update(ctx context.Context, user *store.User) error { return nil }
func (f *fakeUserStore) List(ctx context.Context) ([]*store.User, error)    { return nil, nil }
func (f *fakeUserStore) Delete(ctx context.Context, id string) error        { return nil }
func (f *fakeUserStore) CountByRole(ctx context.Context, role store.Role) (int, error) {
	return 0, nil
}

type fakeStore struct {
	users store.UserStore
}

func (f *fakeStore) Users() store.UserStore                   { return f.users }
func (f *fakeStore) GoogleAccounts() store.GoogleAccountStore { return nil }
func (f *fakeStore) Campaigns() store.CampaignStore           { return nil }
func (f *fakeStore) Settings() store.SettingsStore            { return nil }
func (f *fakeStore) Ping(ctx context.Context) error           { return nil }
func (f *fakeStore) Close() error                             { return nil }

func newTestAuthHandler(users *fakeUserStore) *AuthHandler {
	svc := auth.NewService(&auth.Config{
		JWTSecret:   []byte("test-secret"),
		TokenExpiry: time.Hour,
	}, slog.Default())
	return NewAuthHandler(&fakeStore{users: users}, svc, nil, nil, "", "", slog.Default())
}

func TestResolveUserExistingEmail(t *testing.T) {
	users := &fakeUserStore{
		byEmail: map[string]*store.User{
			"known@example.com": {ID: "u-1", Email: "known@example.com"},
		},
	}
	h := newTestAuthHandler(users)

	r := httptest.NewRequest(http.MethodGet, "/v1/auth/google/callback", nil)
	user, err := h.resolveUser(context.Background(), r, &auth.GoogleUserInfo{Email: "known@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)
	assert.Empty(t, users.created)
}

func TestResolveUserCreatesMissingUser(t *testing.T) {
	users := &fakeUserStore{nextUserID: "u-new"}
	h := newTestAuthHandler(users)

	r := httptest.NewRequest(http.MethodGet, "/v1/auth/google/callback", nil)
	user, err := h.resolveUser(context.Background(), r, &auth.GoogleUserInfo{
		Email: "fresh@example.com",
		Name:  "Fresh User",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-new", user.ID)
	assert.Equal(t, []string{"fresh@example.com"}, users.created)
}

func TestResolveUserPropagatesStoreError(t *testing.T) {
	users := &fakeUserStore{emailErr: errors.New("connection reset")}
	h := newTestAuthHandler(users)

	r := httptest.NewRequest(http.MethodGet, "/v1/auth/google/callback", nil)
	_, err := h.resolveUser(context.Background(), r, &auth.GoogleUserInfo{Email: "any@example.com"})
	assert.Error(t, err)
	assert.Empty(t, users.created)
}
