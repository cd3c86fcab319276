package models

import "time"

// Responsive search ad limits enforced by Google Ads.
const (
	MinHeadlines      = 3
	MaxHeadlines      = 10
	MinDescriptions   = 2
	MaxDescriptions   = 4
	MaxHeadlineLen    = 30
	MaxDescriptionLen = 90
	MaxCampaignName   = 255
)

// CampaignForm is the validated payload submitted to create a search campaign.
type CampaignForm struct {
	// CustomerID is the target sub-account, digits only.
	CustomerID string `json:"customer_id" yaml:"customer_id"`
	// Name is the campaign name.
	Name string `json:"name" yaml:"name"`
	// DailyBudgetMicros is the daily budget in micros of the account currency.
	DailyBudgetMicros int64 `json:"daily_budget_micros" yaml:"daily_budget_micros"`
	// MaxCPCMicros is the manual CPC ceiling in micros.
	MaxCPCMicros int64 `json:"max_cpc_micros" yaml:"max_cpc_micros"`
	// Headlines for the responsive search ad, 3 to 10 entries, 30 chars each.
	Headlines []string `json:"headlines" yaml:"headlines"`
	// Descriptions for the responsive search ad, 2 to 4 entries, 90 chars each.
	Descriptions []string `json:"descriptions" yaml:"descriptions"`
	// FinalURL is the ad landing page.
	FinalURL string `json:"final_url" yaml:"final_url"`
	// Keywords are optional broad-match keywords for the ad group.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`
}

// CampaignStatus tracks the outcome of a submitted campaign.
type CampaignStatus string

const (
	CampaignStatusPending CampaignStatus = "pending"
	CampaignStatusCreated CampaignStatus = "created"
	CampaignStatusFailed  CampaignStatus = "failed"
)

// CampaignRecord is the persisted audit record of a campaign submission.
type CampaignRecord struct {
	ID         string         `json:"id"`
	UserID     string         `json:"user_id"`
	CustomerID string         `json:"customer_id"`
	Name       string         `json:"name"`
	Form       CampaignForm   `json:"form"`
	Status     CampaignStatus `json:"status"`
	// ResourceName is the created campaign's resource name, when created.
	ResourceName string `json:"resource_name,omitempty"`
	// FailedStep names the creation step that failed, when failed.
	FailedStep string    `json:"failed_step,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// CampaignResult is the outcome of a creation sequence against the Ads API.
type CampaignResult struct {
	CampaignResourceName string   `json:"campaign_resource_name"`
	BudgetResourceName   string   `json:"budget_resource_name"`
	AdGroupResourceName  string   `json:"ad_group_resource_name"`
	AdResourceName       string   `json:"ad_resource_name"`
	KeywordResourceNames []string `json:"keyword_resource_names,omitempty"`
}
