// Package store provides database access interfaces and implementations.
package store

import (
	"context"

	"github.com/campaignlabs/ads-console/internal/models"
)

// Role represents a user's role in the system.
type Role string

const (
	// RoleOwner has full access and manages the console.
	RoleOwner Role = "owner"
	// RoleMember has standard access without admin functions.
	RoleMember Role = "member"
)

// User represents a console user.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	Role      Role   `json:"role"`
	// GoogleLinked is set when a Google account with a refresh token is
	// attached to this user.
	GoogleLinked bool  `json:"google_linked"`
	CreatedAt    int64 `json:"created_at"`
}

// UserStore defines operations for user management.
type UserStore interface {
	// Create creates a new user with hashed password.
	Create(ctx context.Context, email, password string, role Role) (*User, error)
	// CreateFromGoogle creates a passwordless user from a Google sign-in.
	CreateFromGoogle(ctx context.Context, email, name, avatarURL string) (*User, error)
	// GetByEmail retrieves a user by email. A missing user is reported
	// as an error the implementation marks as not-found.
	GetByEmail(ctx context.Context, email string) (*User, error)
	// GetByID retrieves a user by ID, with the same not-found contract
	// as GetByEmail.
	GetByID(ctx context.Context, id string) (*User, error)
	// Authenticate verifies credentials and returns the user.
	Authenticate(ctx context.Context, email, password string) (*User, error)
	// Update updates an existing user's information.
	Update(ctx context.Context, user *User) error
	// List retrieves all users.
	List(ctx context.Context) ([]*User, error)
	// Delete removes a user by ID.
	Delete(ctx context.Context, id string) error
	// CountByRole returns the number of users with a specific role.
	CountByRole(ctx context.Context, role Role) (int, error)
}

// GoogleAccountStore defines operations for linked Google accounts.
type GoogleAccountStore interface {
	// Upsert saves a Google account, replacing the sealed refresh token if
	// the account is already linked.
	Upsert(ctx context.Context, account *models.GoogleAccount) error
	// Get retrieves a Google account by its Google ID.
	Get(ctx context.Context, id string) (*models.GoogleAccount, error)
	// GetByUserID retrieves the Google account linked to a console user.
	GetByUserID(ctx context.Context, userID string) (*models.GoogleAccount, error)
	// Delete unlinks a Google account.
	Delete(ctx context.Context, id string) error
}

// CampaignStore defines operations for campaign submission records.
type CampaignStore interface {
	// Create creates a new campaign record.
	Create(ctx context.Context, rec *models.CampaignRecord) error
	// Get retrieves a campaign record by ID.
	Get(ctx context.Context, id string) (*models.CampaignRecord, error)
	// List retrieves campaign records for a user, newest first.
	List(ctx context.Context, userID string, limit int) ([]*models.CampaignRecord, error)
	// ListByCustomer retrieves campaign records for a customer account.
	ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.CampaignRecord, error)
	// Update updates an existing campaign record.
	Update(ctx context.Context, rec *models.CampaignRecord) error
}

// SettingsStore defines operations for global key-value settings.
type SettingsStore interface {
	// Get retrieves a setting by key.
	Get(ctx context.Context, key string) (string, error)
	// Set sets a setting key-value pair.
	Set(ctx context.Context, key, value string) error
	// GetAll retrieves all global settings.
	GetAll(ctx context.Context) (map[string]string, error)
}

// Store is the main interface for database operations.
type Store interface {
	// Users returns the UserStore for user operations.
	Users() UserStore
	// GoogleAccounts returns the GoogleAccountStore for linked accounts.
	GoogleAccounts() GoogleAccountStore
	// Campaigns returns the CampaignStore for submission records.
	Campaigns() CampaignStore
	// Settings returns the SettingsStore for global configuration.
	Settings() SettingsStore

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
