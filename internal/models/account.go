package models

import "time"

// CustomerAccount represents a single Google Ads account node.
// Accounts are never persisted; they are fetched live or served from the
// in-memory hierarchy cache.
type CustomerAccount struct {
	// ID is the bare customer ID, digits only (e.g. "1234567890").
	ID string `json:"id"`
	// ResourceName is the API resource name (e.g. "customers/1234567890").
	ResourceName string `json:"resource_name"`
	// DisplayName is the descriptive name, when the API returns one.
	DisplayName string `json:"display_name,omitempty"`
	// IsMCC marks manager accounts that aggregate sub-accounts.
	IsMCC bool `json:"is_mcc,omitempty"`
	// ParentID links a sub-account to its manager. Empty for roots.
	ParentID string `json:"parent_id,omitempty"`
}

// Hierarchy is the resolved account tree under a manager account.
type Hierarchy struct {
	MCCID      string            `json:"mcc_id"`
	Accounts   []CustomerAccount `json:"accounts"`
	ResolvedAt time.Time         `json:"resolved_at"`
	// Strategy records which resolution strategy produced the accounts.
	Strategy string `json:"strategy"`
	// FromCache is set when the response was served from the TTL cache.
	FromCache bool `json:"from_cache"`
	// Stale is set when an expired cache entry was served because every
	// live strategy failed.
	Stale bool `json:"stale,omitempty"`
}

// SubAccounts returns the accounts whose parent is the given manager ID.
func (h *Hierarchy) SubAccounts(parentID string) []CustomerAccount {
	var out []CustomerAccount
	for _, a := range h.Accounts {
		if a.ParentID == parentID {
			out = append(out, a)
		}
	}
	return out
}

// ValidationError represents a field-level validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
