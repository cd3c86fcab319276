// Package ads provides a REST client for the Google Ads API. It covers the
// small surface the console needs: listing accessible customers, GAQL search,
// and the mutate calls behind search campaign creation. The heavy SDK is a
// non-goal; plain HTTP with an oauth2 token source is enough here.
package ads

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// maxErrorBody caps how much of an error response is read into memory.
const maxErrorBody = 16 << 10

// Client calls the Google Ads REST API.
type Client struct {
	endpoint       string
	developerToken string
	timeout        time.Duration
	logger         *slog.Logger

	// base is the transport under the oauth2 client, replaceable in tests.
	base *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient sets the base HTTP client used under the oauth2 transport.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.base = hc }
}

// NewClient creates a new Ads API client.
func NewClient(endpoint, developerToken string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		endpoint:       strings.TrimRight(endpoint, "/"),
		developerToken: developerToken,
		timeout:        30 * time.Second,
		logger:         logger,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Credentials carries what a single API call needs: a token source minted
// from the user's refresh token, and optionally the manager account to act
// through.
type Credentials struct {
	TokenSource oauth2.TokenSource
	// LoginCustomerID is sent as the login-customer-id header when set.
	// Required when querying a sub-account through its manager.
	LoginCustomerID string
}

// do performs an authenticated call and decodes the JSON response into out.
func (c *Client) do(ctx context.Context, creds Credentials, method, path string, body, out any) error {
	if c.developerToken == "" {
		return ErrNoDeveloperToken
	}
	if creds.TokenSource == nil {
		return ErrNoCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, reqBody)
	if err != nil {
		return err
	}

	req.Header.Set("developer-token", c.developerToken)
	if creds.LoginCustomerID != "" {
		req.Header.Set("login-customer-id", creds.LoginCustomerID)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.authClient(ctx, creds.TokenSource)

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.logger.Debug("ads api call failed", "method", method, "path", path, "error", err)
		return fmt.Errorf("calling ads api: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Debug("ads api call",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// authClient wraps the base transport with the oauth2 token source.
func (c *Client) authClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	if c.base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, c.base)
	}
	return oauth2.NewClient(ctx, ts)
}

// listAccessibleCustomersResponse mirrors the REST response shape.
type listAccessibleCustomersResponse struct {
	ResourceNames []string `json:"resourceNames"`
}

// ListAccessibleCustomers returns the resource names of every customer the
// authenticated user can access directly ("customers/1234567890").
func (c *Client) ListAccessibleCustomers(ctx context.Context, creds Credentials) ([]string, error) {
	var resp listAccessibleCustomersResponse
	if err := c.do(ctx, creds, http.MethodGet, "/customers:listAccessibleCustomers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.ResourceNames, nil
}

// searchRequest is the body for googleAds:search.
type searchRequest struct {
	Query     string `json:"query"`
	PageToken string `json:"pageToken,omitempty"`
	PageSize  int    `json:"pageSize,omitempty"`
}

// searchResponse is a single page of GAQL results.
type searchResponse struct {
	Results       []json.RawMessage `json:"results"`
	NextPageToken string            `json:"nextPageToken,omitempty"`
}

// Search runs a GAQL query against a customer and returns the raw result
// rows across all pages.
func (c *Client) Search(ctx context.Context, creds Credentials, customerID, query string) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/customers/%s/googleAds:search", customerID)

	var rows []json.RawMessage
	pageToken := ""
	for {
		var resp searchResponse
		req := searchRequest{Query: query, PageToken: pageToken}
		if err := c.do(ctx, creds, http.MethodPost, path, req, &resp); err != nil {
			return nil, err
		}

		rows = append(rows, resp.Results...)
		if resp.NextPageToken == "" {
			return rows, nil
		}
		pageToken = resp.NextPageToken
	}
}

// mutateResponse is the shared shape of mutate call responses.
type mutateResponse struct {
	Results []struct {
		ResourceName string `json:"resourceName"`
	} `json:"results"`
}

// mutate performs a mutate call against a customer sub-resource and returns
// the created resource names.
func (c *Client) mutate(ctx context.Context, creds Credentials, customerID, resource string, operations any) ([]string, error) {
	path := fmt.Sprintf("/customers/%s/%s:mutate", customerID, resource)

	body := map[string]any{"operations": operations}
	var resp mutateResponse
	if err := c.do(ctx, creds, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, &APIError{StatusCode: http.StatusOK, Message: "mutate returned no results for " + resource}
	}

	names := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		names = append(names, r.ResourceName)
	}
	return names, nil
}
