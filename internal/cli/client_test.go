package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campaignlabs/ads-console/internal/models"
)

func TestClientLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/auth/login", r.URL.Path)

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user@example.com", body["email"])

		json.NewEncoder(w).Encode(map[string]string{"token": "session-token"})
	}))
	defer server.Close()

	token, err := NewClient(server.URL).Login(context.Background(), "user@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "session-token", token)
}

func TestClientSendsBearerToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{"accounts": []models.CustomerAccount{}})
	}))
	defer server.Close()

	_, err := NewClient(server.URL).WithToken("session-token").ListManagers(context.Background())
	require.NoError(t, err)
}

func TestClientListManagers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/accounts/managers", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{"accounts": []models.CustomerAccount{
			{ID: "1234567890", DisplayName: "Agency", IsMCC: true},
		}})
	}))
	defer server.Close()

	accounts, err := NewClient(server.URL).ListManagers(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "1234567890", accounts[0].ID)
	assert.True(t, accounts[0].IsMCC)
}

func TestClientHierarchyRefresh(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/accounts/1234567890/hierarchy", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("refresh"))
		json.NewEncoder(w).Encode(models.Hierarchy{MCCID: "1234567890"})
	}))
	defer server.Close()

	h, err := NewClient(server.URL).Hierarchy(context.Background(), "1234567890", true)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", h.MCCID)
}

func TestClientParsesErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{
			"code":    "google_not_linked",
			"message": "no linked Google account",
		}})
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListManagers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no linked Google account")
	assert.Contains(t, err.Error(), "google_not_linked")
}

func TestClientNonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := NewClient(server.URL).ListManagers(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api returned 502")
}

func TestClientValidateCampaign(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/campaigns/validate", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"valid": false,
			"errors": []models.ValidationError{
				{Field: "name", Message: "campaign name is required"},
			},
		})
	}))
	defer server.Close()

	errs, err := NewClient(server.URL).ValidateCampaign(context.Background(), &models.CampaignForm{})
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
}
