package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	apierrors "github.com/campaignlabs/ads-console/internal/api/errors"
	"github.com/campaignlabs/ads-console/internal/auth"
	"github.com/campaignlabs/ads-console/pkg/logger"
)

// Context keys for user information.
type contextKey string

const (
	// UserIDKey is the context key for the authenticated user ID.
	UserIDKey contextKey = "user_id"
	// UserEmailKey is the context key for the authenticated user email.
	UserEmailKey contextKey = "user_email"
)

// GetUserID extracts the user ID from the request context.
func GetUserID(ctx context.Context) string {
	if v := ctx.Value(UserIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetUserEmail extracts the user email from the request context.
func GetUserEmail(ctx context.Context) string {
	if v := ctx.Value(UserEmailKey); v != nil {
		return v.(string)
	}
	return ""
}

// AuthMiddleware validates the session for API requests.
type AuthMiddleware struct {
	authService *auth.Service
	cookieName  string
	logger      *slog.Logger
}

// NewAuthMiddleware creates the authentication middleware. Tokens are
// accepted from the Authorization header or the session cookie.
func NewAuthMiddleware(authService *auth.Service, cookieName string, logger *slog.Logger) *AuthMiddleware {
	if cookieName == "" {
		cookieName = "ads_console_session"
	}
	return &AuthMiddleware{
		authService: authService,
		cookieName:  cookieName,
		logger:      logger,
	}
}

// Authenticate validates the JWT and stores the user identity in the
// request context.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := auth.ExtractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			if cookie, err := r.Cookie(m.cookieName); err == nil {
				token = cookie.Value
			}
		}
		if token == "" {
			writeUnauthorized(w, "missing authentication")
			return
		}

		claims, err := m.authService.ValidateToken(token)
		if err != nil {
			m.logger.Debug("token validation failed", "error", err)
			if errors.Is(err, auth.ErrExpiredToken) {
				writeUnauthorized(w, "session has expired")
				return
			}
			writeUnauthorized(w, "invalid session")
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, UserEmailKey, claims.Email)
		ctx = logger.ContextWithUserID(ctx, claims.UserID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	apierrors.Write(w, apierrors.New(apierrors.CodeUnauthorized, message))
}
