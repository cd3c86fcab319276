package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// AdWordsScope grants access to the Google Ads API.
const AdWordsScope = "https://www.googleapis.com/auth/adwords"

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrNoRefreshToken is returned when Google did not issue a refresh token.
// Users must re-consent with prompt=consent for offline access.
var ErrNoRefreshToken = errors.New("no refresh token in token response")

// GoogleUserInfo is the profile returned by the Google userinfo endpoint.
type GoogleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleConfig holds the OAuth client settings for Google sign-in.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Google wraps the OAuth2 flow against Google: consent redirect, code
// exchange, userinfo fetch, and token sources for Ads API calls.
type Google struct {
	oauth *oauth2.Config
}

// NewGoogle creates a Google OAuth helper.
func NewGoogle(cfg GoogleConfig) *Google {
	return &Google{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
				AdWordsScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

// Configured reports whether a Google OAuth client is set up.
func (g *Google) Configured() bool {
	return g.oauth.ClientID != "" && g.oauth.ClientSecret != ""
}

// AuthCodeURL returns the consent page URL. Offline access and forced
// approval are requested so Google issues a refresh token.
func (g *Google) AuthCodeURL(state string) string {
	return g.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for tokens.
func (g *Google) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, ErrNoRefreshToken
	}
	return token, nil
}

// FetchUserInfo retrieves the Google profile for an access token.
func (g *Google) FetchUserInfo(ctx context.Context, token *oauth2.Token) (*GoogleUserInfo, error) {
	client := g.oauth.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, userinfoEndpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("userinfo returned %d: %s", resp.StatusCode, body)
	}

	var info GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}

	return &info, nil
}

// TokenSource returns a self-refreshing token source backed by a stored
// refresh token. Ads API clients use this for authenticated calls.
func (g *Google) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return g.oauth.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
	})
}
