package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/campaignlabs/ads-console/internal/models"
)

// ValidateCampaignForm validates a campaign form against the responsive
// search ad rules before anything is sent to the Ads API. All field errors
// are collected so the form can show them at once.
func ValidateCampaignForm(form *models.CampaignForm) []models.ValidationError {
	if form == nil {
		return []models.ValidationError{{Field: "form", Message: "form is required"}}
	}

	var errs []models.ValidationError

	if verr := ValidateCustomerID(form.CustomerID); verr != nil {
		errs = append(errs, *verr)
	}

	name := strings.TrimSpace(form.Name)
	switch {
	case name == "":
		errs = append(errs, models.ValidationError{
			Field:   "name",
			Message: "campaign name is required",
		})
	case utf8.RuneCountInString(name) > models.MaxCampaignName:
		errs = append(errs, models.ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("campaign name must be %d characters or less", models.MaxCampaignName),
		})
	}

	if form.DailyBudgetMicros <= 0 {
		errs = append(errs, models.ValidationError{
			Field:   "daily_budget_micros",
			Message: "daily budget must be positive",
		})
	}

	if form.MaxCPCMicros <= 0 {
		errs = append(errs, models.ValidationError{
			Field:   "max_cpc_micros",
			Message: "max CPC must be positive",
		})
	} else if form.DailyBudgetMicros > 0 && form.MaxCPCMicros > form.DailyBudgetMicros {
		errs = append(errs, models.ValidationError{
			Field:   "max_cpc_micros",
			Message: "max CPC cannot exceed the daily budget",
		})
	}

	errs = append(errs, validateAssets("headlines", form.Headlines,
		models.MinHeadlines, models.MaxHeadlines, models.MaxHeadlineLen)...)
	errs = append(errs, validateAssets("descriptions", form.Descriptions,
		models.MinDescriptions, models.MaxDescriptions, models.MaxDescriptionLen)...)

	if verr := validateFinalURL(form.FinalURL); verr != nil {
		errs = append(errs, *verr)
	}

	for i, kw := range form.Keywords {
		if strings.TrimSpace(kw) == "" {
			errs = append(errs, models.ValidationError{
				Field:   fmt.Sprintf("keywords[%d]", i),
				Message: "keyword cannot be blank",
			})
		}
	}

	return errs
}

// validateAssets checks count and per-entry length limits for ad text assets.
func validateAssets(field string, values []string, min, max, maxLen int) []models.ValidationError {
	var errs []models.ValidationError

	if len(values) < min {
		errs = append(errs, models.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("at least %d %s required", min, field),
		})
	}
	if len(values) > max {
		errs = append(errs, models.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("at most %d %s allowed", max, field),
		})
	}

	seen := make(map[string]struct{}, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			errs = append(errs, models.ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "entry cannot be blank",
			})
			continue
		}
		if utf8.RuneCountInString(v) > maxLen {
			errs = append(errs, models.ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: fmt.Sprintf("entry must be %d characters or less", maxLen),
			})
		}
		if _, dup := seen[v]; dup {
			errs = append(errs, models.ValidationError{
				Field:   fmt.Sprintf("%s[%d]", field, i),
				Message: "duplicate entry",
			})
		}
		seen[v] = struct{}{}
	}

	return errs
}

func validateFinalURL(raw string) *models.ValidationError {
	if raw == "" {
		return &models.ValidationError{
			Field:   "final_url",
			Message: "final URL is required",
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return &models.ValidationError{
			Field:   "final_url",
			Message: "final URL must be a valid http or https URL",
		}
	}

	return nil
}
