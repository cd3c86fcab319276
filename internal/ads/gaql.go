package ads

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campaignlabs/ads-console/internal/models"
)

// GAQL queries used by hierarchy resolution.
const (
	// customerClientQuery lists every client under a manager, including
	// nested managers. Level 0 is the manager itself.
	customerClientQuery = `
		SELECT
			customer_client.id,
			customer_client.descriptive_name,
			customer_client.manager,
			customer_client.level,
			customer_client.status
		FROM customer_client
		WHERE customer_client.status = 'ENABLED'`

	// customerSelfQuery describes a single customer.
	customerSelfQuery = `
		SELECT
			customer.id,
			customer.descriptive_name,
			customer.manager
		FROM customer`
)

// customerClientRow mirrors the GAQL customer_client result shape.
type customerClientRow struct {
	CustomerClient struct {
		ID              json.Number `json:"id"`
		DescriptiveName string      `json:"descriptiveName"`
		Manager         bool        `json:"manager"`
		Level           int         `json:"level"`
	} `json:"customerClient"`
}

// customerRow mirrors the GAQL customer result shape.
type customerRow struct {
	Customer struct {
		ID              json.Number `json:"id"`
		DescriptiveName string      `json:"descriptiveName"`
		Manager         bool        `json:"manager"`
	} `json:"customer"`
}

// ListClientAccounts resolves the accounts under a manager via the
// customer_client GAQL resource. The manager itself comes back at level 0
// and becomes the parent of the level-1 accounts.
func (c *Client) ListClientAccounts(ctx context.Context, creds Credentials, managerID string) ([]models.CustomerAccount, error) {
	rows, err := c.Search(ctx, creds, managerID, customerClientQuery)
	if err != nil {
		return nil, err
	}

	accounts := make([]models.CustomerAccount, 0, len(rows))
	for _, raw := range rows {
		var row customerClientRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decoding customer_client row: %w", err)
		}

		id := row.CustomerClient.ID.String()
		if id == "" {
			continue
		}

		acc := models.CustomerAccount{
			ID:           id,
			ResourceName: "customers/" + id,
			DisplayName:  row.CustomerClient.DescriptiveName,
			IsMCC:        row.CustomerClient.Manager,
		}
		// Level 0 is the manager itself; direct children hang off it.
		// Deeper levels keep the manager as ancestor, which is enough
		// for the console's flat tree view.
		if row.CustomerClient.Level > 0 {
			acc.ParentID = managerID
		}
		accounts = append(accounts, acc)
	}

	return accounts, nil
}

// DescribeCustomer fetches a single customer's display name and manager flag.
func (c *Client) DescribeCustomer(ctx context.Context, creds Credentials, customerID string) (*models.CustomerAccount, error) {
	rows, err := c.Search(ctx, creds, customerID, customerSelfQuery)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &APIError{StatusCode: 404, Message: "customer not found: " + customerID}
	}

	var row customerRow
	if err := json.Unmarshal(rows[0], &row); err != nil {
		return nil, fmt.Errorf("decoding customer row: %w", err)
	}

	id := row.Customer.ID.String()
	return &models.CustomerAccount{
		ID:           id,
		ResourceName: "customers/" + id,
		DisplayName:  row.Customer.DescriptiveName,
		IsMCC:        row.Customer.Manager,
	}, nil
}

// CustomerIDFromResourceName extracts the bare ID from "customers/123".
func CustomerIDFromResourceName(resourceName string) string {
	return strings.TrimPrefix(resourceName, "customers/")
}
