// Package cli implements the adsctl command line client.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/campaignlabs/ads-console/internal/models"
)

// Client is an API client for the ads console.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
}

// NewClient creates a new API client.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// WithToken returns a new client with the specified auth token.
func (c *Client) WithToken(token string) *Client {
	return &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		token:      token,
	}
}

type apiErrorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 16*1024))
		var envelope apiErrorBody
		if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
			return fmt.Errorf("%s (%s)", envelope.Error.Message, envelope.Error.Code)
		}
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, data)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// Login authenticates with email and password and returns a session token.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.do(ctx, http.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.Token, nil
}

// ListManagers returns the selectable manager accounts.
func (c *Client) ListManagers(ctx context.Context) ([]models.CustomerAccount, error) {
	var out struct {
		Accounts []models.CustomerAccount `json:"accounts"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/accounts/managers", nil, &out); err != nil {
		return nil, err
	}
	return out.Accounts, nil
}

// Hierarchy returns the account tree under an MCC.
func (c *Client) Hierarchy(ctx context.Context, mccID string, refresh bool) (*models.Hierarchy, error) {
	path := "/v1/accounts/" + mccID + "/hierarchy"
	if refresh {
		path += "?refresh=1"
	}
	var out models.Hierarchy
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCampaign submits a campaign form.
func (c *Client) CreateCampaign(ctx context.Context, form *models.CampaignForm) (*models.CampaignRecord, error) {
	var out models.CampaignRecord
	if err := c.do(ctx, http.MethodPost, "/v1/campaigns/", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateCampaign checks a campaign form without submitting it.
func (c *Client) ValidateCampaign(ctx context.Context, form *models.CampaignForm) ([]models.ValidationError, error) {
	var out struct {
		Valid  bool                     `json:"valid"`
		Errors []models.ValidationError `json:"errors"`
	}
	if err := c.do(ctx, http.MethodPost, "/v1/campaigns/validate", form, &out); err != nil {
		return nil, err
	}
	return out.Errors, nil
}

// ListCampaigns returns recent campaign records.
func (c *Client) ListCampaigns(ctx context.Context, limit int) ([]models.CampaignRecord, error) {
	path := "/v1/campaigns/"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out struct {
		Campaigns []models.CampaignRecord `json:"campaigns"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Campaigns, nil
}

// DiagLogs returns recent diagnostics log entries.
func (c *Client) DiagLogs(ctx context.Context, limit int) ([]models.LogEntry, error) {
	path := "/v1/diagnostics/logs"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out struct {
		Logs []models.LogEntry `json:"logs"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Logs, nil
}

// DiagReports returns recent resolution reports.
func (c *Client) DiagReports(ctx context.Context, limit int) ([]models.DiagnosticReport, error) {
	path := "/v1/diagnostics/reports"
	if limit > 0 {
		path += fmt.Sprintf("?limit=%d", limit)
	}
	var out struct {
		Reports []models.DiagnosticReport `json:"reports"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.Reports, nil
}
