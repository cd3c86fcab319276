// Package handlers provides HTTP handlers for the API.
package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apierrors "github.com/campaignlabs/ads-console/internal/api/errors"
	"github.com/campaignlabs/ads-console/internal/api/middleware"
	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/internal/models"
	"github.com/campaignlabs/ads-console/internal/secrets"
	"github.com/campaignlabs/ads-console/internal/store"
	"github.com/campaignlabs/ads-console/internal/store/postgres"
)

const oauthStateCookie = "ads_console_oauth_state"

// AuthHandler handles authentication endpoints: local credentials plus the
// Google OAuth flow that links an Ads-capable account.
type AuthHandler struct {
	store       store.Store
	authService *auth.Service
	google      *auth.Google
	vault       *secrets.Vault
	cookieName  string
	frontendURL string
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(st store.Store, authSvc *auth.Service, google *auth.Google, vault *secrets.Vault, cookieName, frontendURL string, logger *slog.Logger) *AuthHandler {
	if cookieName == "" {
		cookieName = "ads_console_session"
	}
	return &AuthHandler{
		store:       st,
		authService: authSvc,
		google:      google,
		vault:       vault,
		cookieName:  cookieName,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

// SetupCheck returns whether initial setup is complete.
func (h *AuthHandler) SetupCheck(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Users().CountByRole(r.Context(), store.RoleOwner)
	if err != nil {
		h.logger.Error("failed to check setup state", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"setup_complete": count > 0,
	})
}

// Register handles user registration. The first user becomes the owner;
// after that, registration stays open for members.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid request")
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteBadRequest(w, "email and password required")
		return
	}
	if len(req.Password) < 8 {
		WriteBadRequest(w, "password must be at least 8 characters")
		return
	}

	ctx := r.Context()
	role := store.RoleMember
	owners, err := h.store.Users().CountByRole(ctx, store.RoleOwner)
	if err != nil {
		h.logger.Error("failed to count owners", "error", err)
		WriteInternalError(w, "internal error")
		return
	}
	if owners == 0 {
		role = store.RoleOwner
	}

	user, err := h.store.Users().Create(ctx, req.Email, req.Password, role)
	if err != nil {
		if errors.Is(err, postgres.ErrDuplicateEmail) {
			WriteConflict(w, "email already registered")
			return
		}
		h.logger.Error("failed to create user", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	h.issueSession(w, r, user)
}

// Login authenticates with email and password.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteBadRequest(w, "invalid request")
		return
	}

	user, err := h.store.Users().Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		WriteUnauthorized(w, "invalid email or password")
		return
	}

	h.issueSession(w, r, user)
}

// Logout clears the session cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// Me returns the authenticated user's profile.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	user, err := h.store.Users().GetByID(r.Context(), userID)
	if err != nil {
		WriteNotFound(w, "user not found")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

// GoogleLogin redirects to the Google consent page with a random state
// nonce stored in a short-lived cookie.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.google.Configured() {
		WriteError(w, apierrors.CodeServiceUnavailable, "google sign-in is not configured")
		return
	}

	state, err := randomState()
	if err != nil {
		h.logger.Error("failed to generate oauth state", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback completes the OAuth flow: verifies the state, exchanges
// the code, seals the refresh token, and signs the user in. An existing
// session links the Google account to that user instead of creating one.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stateCookie, err := r.Cookie(oauthStateCookie)
	if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
		WriteBadRequest(w, "oauth state mismatch")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: oauthStateCookie, Value: "", Path: "/", MaxAge: -1})

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.redirectFrontend(w, r, "error="+url.QueryEscape(errParam))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		WriteBadRequest(w, "missing authorization code")
		return
	}

	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		if errors.Is(err, auth.ErrNoRefreshToken) {
			h.redirectFrontend(w, r, "error=no_refresh_token")
			return
		}
		h.logger.Error("oauth code exchange failed", "error", err)
		WriteError(w, apierrors.CodeUpstreamFailed, "google token exchange failed")
		return
	}

	info, err := h.google.FetchUserInfo(ctx, token)
	if err != nil {
		h.logger.Error("userinfo fetch failed", "error", err)
		WriteError(w, apierrors.CodeUpstreamFailed, "failed to fetch google profile")
		return
	}

	user, err := h.resolveUser(ctx, r, info)
	if err != nil {
		h.logger.Error("failed to resolve user for google sign-in", "email", info.Email, "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	sealed, err := h.vault.Seal(token.RefreshToken)
	if err != nil {
		h.logger.Error("failed to seal refresh token", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	account := &models.GoogleAccount{
		ID:                 info.ID,
		UserID:             user.ID,
		Email:              info.Email,
		Name:               info.Name,
		Picture:            info.Picture,
		SealedRefreshToken: sealed,
	}
	if err := h.store.GoogleAccounts().Upsert(ctx, account); err != nil {
		if errors.Is(err, postgres.ErrAccountLinked) {
			WriteError(w, apierrors.CodeConflict, "google account already linked to another user")
			return
		}
		h.logger.Error("failed to store google account", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	sessionToken, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err)
		WriteInternalError(w, "internal error")
		return
	}
	h.setSessionCookie(w, sessionToken)
	h.redirectFrontend(w, r, "linked=google")
}

// UnlinkGoogle removes the linked Google account and its stored token.
func (h *AuthHandler) UnlinkGoogle(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	account, err := h.store.GoogleAccounts().GetByUserID(r.Context(), userID)
	if err != nil {
		WriteNotFound(w, "no google account linked")
		return
	}
	if err := h.store.GoogleAccounts().Delete(r.Context(), account.ID); err != nil {
		h.logger.Error("failed to unlink google account", "error", err)
		WriteInternalError(w, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

// resolveUser maps a Google profile onto a console user. A valid session
// wins; otherwise the profile email is matched or a new user created.
func (h *AuthHandler) resolveUser(ctx context.Context, r *http.Request, info *auth.GoogleUserInfo) (*store.User, error) {
	if cookie, err := r.Cookie(h.cookieName); err == nil {
		if claims, err := h.authService.ValidateToken(cookie.Value); err == nil {
			if user, err := h.store.Users().GetByID(ctx, claims.UserID); err == nil {
				return user, nil
			}
		}
	}

	user, err := h.store.Users().GetByEmail(ctx, info.Email)
	if errors.Is(err, postgres.ErrNotFound) {
		return h.store.Users().CreateFromGoogle(ctx, info.Email, info.Name, info.Picture)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (h *AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, user *store.User) {
	token, err := h.authService.GenerateToken(user.ID, user.Email)
	if err != nil {
		h.logger.Error("failed to generate session token", "error", err)
		WriteInternalError(w, "internal error")
		return
	}
	h.setSessionCookie(w, token)

	WriteJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) redirectFrontend(w http.ResponseWriter, r *http.Request, query string) {
	target := h.frontendURL
	if target == "" {
		target = "/"
	}
	if query != "" {
		target += "?" + query
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
