package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/campaignlabs/ads-console/internal/api/middleware"
	"github.com/campaignlabs/ads-console/internal/store"
)

// SettingsHandler serves console-wide settings such as the default MCC.
type SettingsHandler struct {
	store  store.Store
	logger *slog.Logger
}

// NewSettingsHandler creates a new settings handler.
func NewSettingsHandler(st store.Store, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{store: st, logger: logger}
}

// Get returns all console settings.
func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.store.Settings().GetAll(r.Context())
	if err != nil {
		h.logger.Error("failed to load settings", "error", err)
		WriteInternalError(w, "internal error")
		return
	}
	WriteJSON(w, http.StatusOK, settings)
}

// Set updates settings. Only the owner may change them.
func (h *SettingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.Users().GetByID(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil || user.Role != store.RoleOwner {
		WriteForbidden(w, "owner role required")
		return
	}

	var updates map[string]string
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		WriteBadRequest(w, "invalid request body")
		return
	}

	for key, value := range updates {
		if err := h.store.Settings().Set(r.Context(), key, value); err != nil {
			h.logger.Error("failed to save setting", "key", key, "error", err)
			WriteInternalError(w, "internal error")
			return
		}
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}
