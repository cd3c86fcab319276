package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/lib/pq"

	"github.com/campaignlabs/ads-console/internal/models"
)

// CampaignStore implements store.CampaignStore using PostgreSQL.
type CampaignStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *CampaignStore) conn() queryable {
	return s.db
}

// Create creates a new campaign record.
func (s *CampaignStore) Create(ctx context.Context, rec *models.CampaignRecord) error {
	now := time.Now()

	query := `
		INSERT INTO campaigns (id, user_id, customer_id, name, daily_budget_micros,
			max_cpc_micros, headlines, descriptions, final_url, keywords,
			status, resource_name, failed_step, error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $15)
	`

	_, err := s.conn().ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.CustomerID, rec.Name,
		rec.Form.DailyBudgetMicros, rec.Form.MaxCPCMicros,
		pq.Array(rec.Form.Headlines), pq.Array(rec.Form.Descriptions),
		rec.Form.FinalURL, pq.Array(rec.Form.Keywords),
		string(rec.Status), nullString(rec.ResourceName),
		nullString(rec.FailedStep), nullString(rec.Error), now,
	)
	if err != nil {
		return err
	}

	rec.CreatedAt = now
	rec.UpdatedAt = now
	return nil
}

const campaignColumns = `id, user_id, customer_id, name, daily_budget_micros,
	max_cpc_micros, headlines, descriptions, final_url, keywords,
	status, resource_name, failed_step, error, created_at, updated_at`

func scanCampaign(row interface{ Scan(...any) error }) (*models.CampaignRecord, error) {
	var rec models.CampaignRecord
	var status string
	var resourceName, failedStep, errMsg sql.NullString
	var keywords pq.StringArray

	err := row.Scan(&rec.ID, &rec.UserID, &rec.CustomerID, &rec.Name,
		&rec.Form.DailyBudgetMicros, &rec.Form.MaxCPCMicros,
		pq.Array(&rec.Form.Headlines), pq.Array(&rec.Form.Descriptions),
		&rec.Form.FinalURL, &keywords,
		&status, &resourceName, &failedStep, &errMsg,
		&rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}

	rec.Form.CustomerID = rec.CustomerID
	rec.Form.Name = rec.Name
	rec.Form.Keywords = keywords
	rec.Status = models.CampaignStatus(status)
	rec.ResourceName = resourceName.String
	rec.FailedStep = failedStep.String
	rec.Error = errMsg.String
	return &rec, nil
}

// Get retrieves a campaign record by ID.
func (s *CampaignStore) Get(ctx context.Context, id string) (*models.CampaignRecord, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns WHERE id = $1`

	rec, err := scanCampaign(s.conn().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// List retrieves campaign records for a user, newest first.
func (s *CampaignStore) List(ctx context.Context, userID string, limit int) ([]*models.CampaignRecord, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`

	return s.list(ctx, query, userID, limit)
}

// ListByCustomer retrieves campaign records for a customer account.
func (s *CampaignStore) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.CampaignRecord, error) {
	query := `SELECT ` + campaignColumns + ` FROM campaigns
		WHERE customer_id = $1 ORDER BY created_at DESC LIMIT $2`

	return s.list(ctx, query, customerID, limit)
}

func (s *CampaignStore) list(ctx context.Context, query string, key string, limit int) ([]*models.CampaignRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.conn().QueryContext(ctx, query, key, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*models.CampaignRecord
	for rows.Next() {
		rec, err := scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Update updates an existing campaign record.
func (s *CampaignStore) Update(ctx context.Context, rec *models.CampaignRecord) error {
	query := `
		UPDATE campaigns SET status = $2, resource_name = $3, failed_step = $4,
			error = $5, updated_at = $6
		WHERE id = $1
	`

	now := time.Now()
	res, err := s.conn().ExecContext(ctx, query, rec.ID, string(rec.Status),
		nullString(rec.ResourceName), nullString(rec.FailedStep),
		nullString(rec.Error), now)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	rec.UpdatedAt = now
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
