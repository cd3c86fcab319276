package validation

import (
	"regexp"
	"strings"

	"github.com/campaignlabs/ads-console/internal/models"
)

// customerIDRegex validates a bare Google Ads customer ID: exactly ten digits.
var customerIDRegex = regexp.MustCompile(`^[0-9]{10}$`)

// NormalizeCustomerID strips the dashes users paste from the Ads UI
// ("123-456-7890" -> "1234567890").
func NormalizeCustomerID(id string) string {
	return strings.ReplaceAll(strings.TrimSpace(id), "-", "")
}

// ValidateCustomerID validates a normalized customer ID.
func ValidateCustomerID(id string) *models.ValidationError {
	if id == "" {
		return &models.ValidationError{
			Field:   "customer_id",
			Message: "customer ID is required",
		}
	}

	if !customerIDRegex.MatchString(id) {
		return &models.ValidationError{
			Field:   "customer_id",
			Message: "customer ID must be exactly 10 digits",
		}
	}

	return nil
}
