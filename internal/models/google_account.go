package models

import "time"

// GoogleAccount links a console user to a Google identity and carries the
// sealed OAuth refresh token used for Ads API calls.
type GoogleAccount struct {
	// ID is the Google account ID (the "id" field from userinfo).
	ID string `json:"id"`
	// UserID is the console user this account belongs to.
	UserID  string `json:"user_id"`
	Email   string `json:"email"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	// SealedRefreshToken is the age-encrypted refresh token. Never exposed
	// over the API.
	SealedRefreshToken []byte    `json:"-"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
