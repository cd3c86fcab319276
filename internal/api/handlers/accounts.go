package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campaignlabs/ads-console/internal/accounts"
	apierrors "github.com/campaignlabs/ads-console/internal/api/errors"
	"github.com/campaignlabs/ads-console/internal/api/middleware"
	"github.com/campaignlabs/ads-console/internal/validation"
)

// AccountsHandler serves the MCC picker and the account hierarchy.
type AccountsHandler struct {
	accounts *accounts.Service
	logger   *slog.Logger
}

// NewAccountsHandler creates a new accounts handler.
func NewAccountsHandler(svc *accounts.Service, logger *slog.Logger) *AccountsHandler {
	return &AccountsHandler{accounts: svc, logger: logger}
}

// ListManagers returns the manager accounts the user can select as MCC.
func (h *AccountsHandler) ListManagers(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	managers, err := h.accounts.ListManagers(r.Context(), userID)
	if err != nil {
		h.writeResolutionError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"accounts": managers,
	})
}

// Hierarchy returns the account tree under the given MCC. Results come from
// the TTL cache when fresh; ?refresh=1 forces live resolution.
func (h *AccountsHandler) Hierarchy(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	mccID := validation.NormalizeCustomerID(chi.URLParam(r, "mccID"))
	if verr := validation.ValidateCustomerID(mccID); verr != nil {
		WriteErrorWithDetails(w, apierrors.CodeValidation, "invalid mcc id", []any{verr})
		return
	}

	forceRefresh := r.URL.Query().Get("refresh") == "1"

	hierarchy, err := h.accounts.Hierarchy(r.Context(), userID, mccID, forceRefresh)
	if err != nil {
		h.writeResolutionError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, hierarchy)
}

// Invalidate drops the cached hierarchy for one MCC.
func (h *AccountsHandler) Invalidate(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	mccID := validation.NormalizeCustomerID(chi.URLParam(r, "mccID"))
	if verr := validation.ValidateCustomerID(mccID); verr != nil {
		WriteErrorWithDetails(w, apierrors.CodeValidation, "invalid mcc id", []any{verr})
		return
	}

	if err := h.accounts.InvalidateHierarchy(r.Context(), userID, mccID); err != nil {
		h.writeResolutionError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

// FlushCache drops every cached hierarchy.
func (h *AccountsHandler) FlushCache(w http.ResponseWriter, r *http.Request) {
	h.accounts.FlushCache()
	WriteJSON(w, http.StatusOK, map[string]string{"status": "flushed"})
}

func (h *AccountsHandler) writeResolutionError(w http.ResponseWriter, err error) {
	if errors.Is(err, accounts.ErrGoogleNotLinked) {
		WriteError(w, apierrors.CodeGoogleNotLinked, "link a google account before browsing accounts")
		return
	}
	h.logger.Error("account resolution failed", "error", err)
	WriteError(w, apierrors.CodeUpstreamFailed, "could not resolve accounts from the ads api")
}
