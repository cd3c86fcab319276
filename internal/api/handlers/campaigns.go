package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campaignlabs/ads-console/internal/accounts"
	apierrors "github.com/campaignlabs/ads-console/internal/api/errors"
	"github.com/campaignlabs/ads-console/internal/api/middleware"
	"github.com/campaignlabs/ads-console/internal/campaigns"
	"github.com/campaignlabs/ads-console/internal/models"
	"github.com/campaignlabs/ads-console/internal/store/postgres"
	"github.com/campaignlabs/ads-console/internal/validation"
)

// CampaignsHandler serves campaign form validation, creation, and records.
type CampaignsHandler struct {
	campaigns *campaigns.Service
	logger    *slog.Logger
}

// NewCampaignsHandler creates a new campaigns handler.
func NewCampaignsHandler(svc *campaigns.Service, logger *slog.Logger) *CampaignsHandler {
	return &CampaignsHandler{campaigns: svc, logger: logger}
}

// Validate checks a campaign form and returns field errors without calling
// the Ads API.
func (h *CampaignsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	errs := h.campaigns.Validate(form)
	WriteJSON(w, http.StatusOK, map[string]any{
		"valid":  len(errs) == 0,
		"errors": errs,
	})
}

// Create validates and submits a campaign. A partial failure returns the
// record with its failed step so the caller can see what was created.
func (h *CampaignsHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	form, ok := h.decodeForm(w, r)
	if !ok {
		return
	}

	record, err := h.campaigns.Create(r.Context(), userID, form)
	if err != nil {
		var vf *campaigns.ValidationFailure
		if errors.As(err, &vf) {
			WriteErrorWithDetails(w, apierrors.CodeValidation, "campaign form is invalid", vf.Errors)
			return
		}
		if errors.Is(err, accounts.ErrGoogleNotLinked) {
			WriteError(w, apierrors.CodeGoogleNotLinked, "link a google account before creating campaigns")
			return
		}
		if record != nil {
			// The submission ran but a step failed; return the record
			// alongside the error so partial resources are visible.
			WriteJSON(w, http.StatusBadGateway, map[string]any{
				"error":  apierrors.New(apierrors.CodeUpstreamFailed, "campaign creation failed at step "+record.FailedStep),
				"record": record,
			})
			return
		}
		h.logger.Error("campaign creation failed", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	WriteJSON(w, http.StatusCreated, record)
}

// Get returns one campaign record.
func (h *CampaignsHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.campaigns.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, postgres.ErrNotFound) {
			WriteNotFound(w, "campaign record not found")
			return
		}
		h.logger.Error("failed to load campaign record", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	if record.UserID != middleware.GetUserID(r.Context()) {
		WriteForbidden(w, "not your campaign")
		return
	}
	WriteJSON(w, http.StatusOK, record)
}

// List returns the user's campaign records, optionally filtered by customer.
func (h *CampaignsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	var (
		records []*models.CampaignRecord
		err     error
	)
	if customerID := r.URL.Query().Get("customer_id"); customerID != "" {
		customerID = validation.NormalizeCustomerID(customerID)
		if verr := validation.ValidateCustomerID(customerID); verr != nil {
			WriteErrorWithDetails(w, apierrors.CodeValidation, "invalid customer id", []any{verr})
			return
		}
		records, err = h.campaigns.ListByCustomer(r.Context(), customerID, limit)
	} else {
		records, err = h.campaigns.List(r.Context(), userID, limit)
	}
	if err != nil {
		h.logger.Error("failed to list campaign records", "error", err)
		WriteInternalError(w, "internal error")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"campaigns": records,
	})
}

func (h *CampaignsHandler) decodeForm(w http.ResponseWriter, r *http.Request) (*models.CampaignForm, bool) {
	var form models.CampaignForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		WriteBadRequest(w, "invalid request body")
		return nil, false
	}
	form.CustomerID = validation.NormalizeCustomerID(form.CustomerID)
	return &form, true
}
