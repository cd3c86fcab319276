package postgres

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/campaignlabs/ads-console/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db     *sql.DB
	logger *slog.Logger
}

func (s *UserStore) conn() queryable {
	return s.db
}

// Create creates a new user with hashed password.
func (s *UserStore) Create(ctx context.Context, email, password string, role store.Role) (*store.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	now := time.Now().Unix()

	query := `
		INSERT INTO users (id, email, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err = s.conn().ExecContext(ctx, query, id, email, string(hashedPassword), string(role), now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &store.User{
		ID:        id,
		Email:     email,
		Role:      role,
		CreatedAt: now,
	}, nil
}

// CreateFromGoogle creates a passwordless user from a Google sign-in.
func (s *UserStore) CreateFromGoogle(ctx context.Context, email, name, avatarURL string) (*store.User, error) {
	id := uuid.New().String()
	now := time.Now().Unix()

	query := `
		INSERT INTO users (id, email, name, avatar_url, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.conn().ExecContext(ctx, query, id, email, name, avatarURL, string(store.RoleMember), now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	return &store.User{
		ID:        id,
		Email:     email,
		Name:      name,
		AvatarURL: avatarURL,
		Role:      store.RoleMember,
		CreatedAt: now,
	}, nil
}

const userColumns = `u.id, u.email, u.name, u.avatar_url, u.role, u.created_at,
	EXISTS (SELECT 1 FROM google_accounts g WHERE g.user_id = u.id)`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var user store.User
	var name, avatarURL sql.NullString
	var role string
	err := row.Scan(&user.ID, &user.Email, &name, &avatarURL, &role, &user.CreatedAt, &user.GoogleLinked)
	if err != nil {
		return nil, err
	}
	user.Name = name.String
	user.AvatarURL = avatarURL.String
	user.Role = store.Role(role)
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.email = $1`

	user, err := scanUser(s.conn().QueryRowContext(ctx, query, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

// GetByID retrieves a user by ID.
func (s *UserStore) GetByID(ctx context.Context, id string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u WHERE u.id = $1`

	user, err := scanUser(s.conn().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return user, err
}

// Authenticate verifies credentials and returns the user.
func (s *UserStore) Authenticate(ctx context.Context, email, password string) (*store.User, error) {
	query := `SELECT password_hash FROM users WHERE email = $1`

	var hash sql.NullString
	err := s.conn().QueryRowContext(ctx, query, email).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	// Google-only users have no password hash.
	if !hash.Valid || hash.String == "" {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash.String), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.GetByEmail(ctx, email)
}

// Update updates an existing user's information.
func (s *UserStore) Update(ctx context.Context, user *store.User) error {
	query := `UPDATE users SET name = $2, avatar_url = $3, role = $4 WHERE id = $1`

	res, err := s.conn().ExecContext(ctx, query, user.ID, user.Name, user.AvatarURL, string(user.Role))
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List retrieves all users.
func (s *UserStore) List(ctx context.Context) ([]*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users u ORDER BY u.created_at`

	rows, err := s.conn().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*store.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// Delete removes a user by ID.
func (s *UserStore) Delete(ctx context.Context, id string) error {
	res, err := s.conn().ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByRole returns the number of users with a specific role.
func (s *UserStore) CountByRole(ctx context.Context, role store.Role) (int, error) {
	var count int
	err := s.conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE role = $1`, string(role)).Scan(&count)
	return count, err
}
