package ads

import (
	"context"
	"fmt"
	"time"

	"github.com/campaignlabs/ads-console/internal/models"
)

// Creation step names, reported on failure so the UI can say how far the
// sequence got.
const (
	StepBudget   = "campaign_budget"
	StepCampaign = "campaign"
	StepAdGroup  = "ad_group"
	StepAd       = "ad"
	StepKeywords = "keywords"
)

// StepError wraps a failure from one step of the creation sequence.
type StepError struct {
	Step string
	Err  error
}

// Error implements the error interface.
func (e *StepError) Error() string {
	return fmt.Sprintf("step %s: %v", e.Step, e.Err)
}

// Unwrap returns the underlying error.
func (e *StepError) Unwrap() error {
	return e.Err
}

// CreateSearchCampaign runs the full creation sequence: budget, paused
// campaign, ad group, responsive search ad, then keywords. The first failure
// aborts the sequence; whatever was created before it is left in place,
// paused, for the user to finish or remove in the Ads UI.
func (c *Client) CreateSearchCampaign(ctx context.Context, creds Credentials, form *models.CampaignForm) (*models.CampaignResult, error) {
	result := &models.CampaignResult{}
	stamp := time.Now().UnixNano()

	budgetName, err := c.createBudget(ctx, creds, form, stamp)
	if err != nil {
		return result, &StepError{Step: StepBudget, Err: err}
	}
	result.BudgetResourceName = budgetName

	campaignName, err := c.createCampaign(ctx, creds, form, budgetName)
	if err != nil {
		return result, &StepError{Step: StepCampaign, Err: err}
	}
	result.CampaignResourceName = campaignName

	adGroupName, err := c.createAdGroup(ctx, creds, form, campaignName)
	if err != nil {
		return result, &StepError{Step: StepAdGroup, Err: err}
	}
	result.AdGroupResourceName = adGroupName

	adName, err := c.createResponsiveSearchAd(ctx, creds, form, adGroupName)
	if err != nil {
		return result, &StepError{Step: StepAd, Err: err}
	}
	result.AdResourceName = adName

	if len(form.Keywords) > 0 {
		keywordNames, err := c.createKeywords(ctx, creds, form, adGroupName)
		if err != nil {
			return result, &StepError{Step: StepKeywords, Err: err}
		}
		result.KeywordResourceNames = keywordNames
	}

	c.logger.Info("search campaign created",
		"customer_id", form.CustomerID,
		"campaign", result.CampaignResourceName,
	)
	return result, nil
}

func (c *Client) createBudget(ctx context.Context, creds Credentials, form *models.CampaignForm, stamp int64) (string, error) {
	ops := []map[string]any{{
		"create": map[string]any{
			// Budget names must be unique per account.
			"name":             fmt.Sprintf("%s budget %d", form.Name, stamp),
			"amountMicros":     fmt.Sprintf("%d", form.DailyBudgetMicros),
			"deliveryMethod":   "STANDARD",
			"explicitlyShared": false,
		},
	}}

	names, err := c.mutate(ctx, creds, form.CustomerID, "campaignBudgets", ops)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

func (c *Client) createCampaign(ctx context.Context, creds Credentials, form *models.CampaignForm, budgetResourceName string) (string, error) {
	ops := []map[string]any{{
		"create": map[string]any{
			"name": form.Name,
			// New campaigns start paused so nothing spends before review.
			"status":                 "PAUSED",
			"advertisingChannelType": "SEARCH",
			"campaignBudget":         budgetResourceName,
			"manualCpc": map[string]any{
				"enhancedCpcEnabled": false,
			},
			"networkSettings": map[string]any{
				"targetGoogleSearch":  true,
				"targetSearchNetwork": true,
			},
		},
	}}

	names, err := c.mutate(ctx, creds, form.CustomerID, "campaigns", ops)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

func (c *Client) createAdGroup(ctx context.Context, creds Credentials, form *models.CampaignForm, campaignResourceName string) (string, error) {
	ops := []map[string]any{{
		"create": map[string]any{
			"name":         form.Name + " ad group",
			"status":       "ENABLED",
			"campaign":     campaignResourceName,
			"type":         "SEARCH_STANDARD",
			"cpcBidMicros": fmt.Sprintf("%d", form.MaxCPCMicros),
		},
	}}

	names, err := c.mutate(ctx, creds, form.CustomerID, "adGroups", ops)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

func (c *Client) createResponsiveSearchAd(ctx context.Context, creds Credentials, form *models.CampaignForm, adGroupResourceName string) (string, error) {
	headlines := make([]map[string]any, 0, len(form.Headlines))
	for _, h := range form.Headlines {
		headlines = append(headlines, map[string]any{"text": h})
	}
	descriptions := make([]map[string]any, 0, len(form.Descriptions))
	for _, d := range form.Descriptions {
		descriptions = append(descriptions, map[string]any{"text": d})
	}

	ops := []map[string]any{{
		"create": map[string]any{
			"adGroup": adGroupResourceName,
			"status":  "ENABLED",
			"ad": map[string]any{
				"finalUrls": []string{form.FinalURL},
				"responsiveSearchAd": map[string]any{
					"headlines":    headlines,
					"descriptions": descriptions,
				},
			},
		},
	}}

	names, err := c.mutate(ctx, creds, form.CustomerID, "adGroupAds", ops)
	if err != nil {
		return "", err
	}
	return names[0], nil
}

func (c *Client) createKeywords(ctx context.Context, creds Credentials, form *models.CampaignForm, adGroupResourceName string) ([]string, error) {
	ops := make([]map[string]any, 0, len(form.Keywords))
	for _, kw := range form.Keywords {
		ops = append(ops, map[string]any{
			"create": map[string]any{
				"adGroup": adGroupResourceName,
				"status":  "ENABLED",
				"keyword": map[string]any{
					"text":      kw,
					"matchType": "BROAD",
				},
			},
		})
	}

	return c.mutate(ctx, creds, form.CustomerID, "adGroupCriteria", ops)
}
