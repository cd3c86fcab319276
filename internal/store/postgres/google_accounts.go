package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/campaignlabs/ads-console/internal/models"
)

// GoogleAccountStore implements store.GoogleAccountStore using PostgreSQL.
type GoogleAccountStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *GoogleAccountStore) conn() queryable {
	return s.db
}

// Upsert saves a Google account, replacing the sealed refresh token if the
// account is already linked. A user holds at most one linked account, so a
// prior link under a different Google ID is dropped first.
func (s *GoogleAccountStore) Upsert(ctx context.Context, account *models.GoogleAccount) error {
	now := time.Now()

	_, err := s.conn().ExecContext(ctx,
		`DELETE FROM google_accounts WHERE user_id = $1 AND id <> $2`,
		account.UserID, account.ID,
	)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO google_accounts (id, user_id, email, name, picture, sealed_refresh_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			picture = EXCLUDED.picture,
			sealed_refresh_token = EXCLUDED.sealed_refresh_token,
			updated_at = EXCLUDED.updated_at
	`

	_, err = s.conn().ExecContext(ctx, query,
		account.ID, account.UserID, account.Email, account.Name,
		account.Picture, account.SealedRefreshToken, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrAccountLinked
		}
		return err
	}

	account.UpdatedAt = now
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	return nil
}

const googleAccountColumns = `id, user_id, email, name, picture, sealed_refresh_token, created_at, updated_at`

func scanGoogleAccount(row interface{ Scan(...any) error }) (*models.GoogleAccount, error) {
	var acc models.GoogleAccount
	var name, picture sql.NullString
	err := row.Scan(&acc.ID, &acc.UserID, &acc.Email, &name, &picture,
		&acc.SealedRefreshToken, &acc.CreatedAt, &acc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	acc.Name = name.String
	acc.Picture = picture.String
	return &acc, nil
}

// Get retrieves a Google account by its Google ID.
func (s *GoogleAccountStore) Get(ctx context.Context, id string) (*models.GoogleAccount, error) {
	query := `SELECT ` + googleAccountColumns + ` FROM google_accounts WHERE id = $1`

	acc, err := scanGoogleAccount(s.conn().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return acc, err
}

// GetByUserID retrieves the Google account linked to a console user.
func (s *GoogleAccountStore) GetByUserID(ctx context.Context, userID string) (*models.GoogleAccount, error) {
	query := `SELECT ` + googleAccountColumns + ` FROM google_accounts WHERE user_id = $1`

	acc, err := scanGoogleAccount(s.conn().QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return acc, err
}

// Delete unlinks a Google account.
func (s *GoogleAccountStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn().ExecContext(ctx, `DELETE FROM google_accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
