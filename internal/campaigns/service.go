// Package campaigns validates campaign forms and drives the multi-step
// creation sequence against the Ads API, recording each submission.
package campaigns

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/campaignlabs/ads-console/internal/ads"
	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/models"
	"github.com/campaignlabs/ads-console/internal/store"
	"github.com/campaignlabs/ads-console/internal/validation"
)

// credentialSource yields per-user Ads credentials. Satisfied by the
// accounts service.
type credentialSource interface {
	CredentialsFor(ctx context.Context, userID string) (ads.Credentials, string, error)
}

// creator runs the campaign creation sequence. Satisfied by *ads.Client.
type creator interface {
	CreateSearchCampaign(ctx context.Context, creds ads.Credentials, form *models.CampaignForm) (*models.CampaignResult, error)
}

// Service creates search campaigns and tracks their records.
type Service struct {
	store  store.Store
	creds  credentialSource
	ads    creator
	diag   *diag.Buffer
	logger *slog.Logger
}

// NewService creates the campaigns service.
func NewService(st store.Store, creds credentialSource, client creator, buffer *diag.Buffer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, creds: creds, ads: client, diag: buffer, logger: logger}
}

// Validate checks a campaign form without touching the Ads API.
func (s *Service) Validate(form *models.CampaignForm) []models.ValidationError {
	return validation.ValidateCampaignForm(form)
}

// Create validates the form, records a pending submission, then runs the
// budget, campaign, ad group, ad, and keyword steps in order. The record is
// updated with the outcome either way; a failed step leaves earlier
// resources in place and is reported on the record.
func (s *Service) Create(ctx context.Context, userID string, form *models.CampaignForm) (*models.CampaignRecord, error) {
	if errs := validation.ValidateCampaignForm(form); len(errs) > 0 {
		return nil, &ValidationFailure{Errors: errs}
	}

	creds, _, err := s.creds.CredentialsFor(ctx, userID)
	if err != nil {
		return nil, err
	}

	record := &models.CampaignRecord{
		ID:         uuid.New().String(),
		UserID:     userID,
		CustomerID: form.CustomerID,
		Name:       form.Name,
		Form:       *form,
		Status:     models.CampaignStatusPending,
	}
	if err := s.store.Campaigns().Create(ctx, record); err != nil {
		return nil, fmt.Errorf("recording campaign submission: %w", err)
	}

	s.diag.Add("info", "campaigns", "campaign creation started", map[string]string{
		"record_id":   record.ID,
		"customer_id": form.CustomerID,
		"name":        form.Name,
	})

	result, createErr := s.ads.CreateSearchCampaign(ctx, creds, form)
	if createErr != nil {
		record.Status = models.CampaignStatusFailed
		record.Error = createErr.Error()
		if result != nil {
			// The campaign resource may exist even when a later step failed.
			record.ResourceName = result.CampaignResourceName
		}

		var stepErr *ads.StepError
		if errors.As(createErr, &stepErr) {
			record.FailedStep = stepErr.Step
		}

		if updateErr := s.store.Campaigns().Update(ctx, record); updateErr != nil {
			s.logger.Error("failed to persist campaign failure", "record_id", record.ID, "error", updateErr)
		}
		s.diag.Add("error", "campaigns", "campaign creation failed", map[string]string{
			"record_id": record.ID,
			"step":      record.FailedStep,
			"error":     createErr.Error(),
		})
		return record, createErr
	}

	record.Status = models.CampaignStatusCreated
	record.ResourceName = result.CampaignResourceName
	if err := s.store.Campaigns().Update(ctx, record); err != nil {
		s.logger.Error("failed to persist campaign result", "record_id", record.ID, "error", err)
	}

	s.diag.Add("info", "campaigns", "campaign created", map[string]string{
		"record_id":     record.ID,
		"resource_name": result.CampaignResourceName,
	})
	return record, nil
}

// Get returns one campaign record.
func (s *Service) Get(ctx context.Context, id string) (*models.CampaignRecord, error) {
	return s.store.Campaigns().Get(ctx, id)
}

// List returns the user's campaign records, most recent first.
func (s *Service) List(ctx context.Context, userID string, limit int) ([]*models.CampaignRecord, error) {
	return s.store.Campaigns().List(ctx, userID, limit)
}

// ListByCustomer returns the records for one customer account.
func (s *Service) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.CampaignRecord, error) {
	return s.store.Campaigns().ListByCustomer(ctx, customerID, limit)
}

// ValidationFailure carries the field errors from a rejected form.
type ValidationFailure struct {
	Errors []models.ValidationError
}

func (v *ValidationFailure) Error() string {
	if len(v.Errors) == 1 {
		return fmt.Sprintf("invalid campaign form: %s: %s", v.Errors[0].Field, v.Errors[0].Message)
	}
	return fmt.Sprintf("invalid campaign form: %d field errors", len(v.Errors))
}
