// Package secrets provides age-based encryption for OAuth refresh tokens at rest.
package secrets

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"filippo.io/age"
)

var (
	// ErrNoPublicKey is returned when no public key is configured for encryption.
	ErrNoPublicKey = errors.New("no public key configured for encryption")
	// ErrNoPrivateKey is returned when no private key is configured for decryption.
	ErrNoPrivateKey = errors.New("no private key configured for decryption")
	// ErrDecryptionFailed is returned when decryption fails.
	ErrDecryptionFailed = errors.New("decryption failed")
	// ErrEncryptionFailed is returned when encryption fails.
	ErrEncryptionFailed = errors.New("encryption failed")
	// ErrInvalidKey is returned when a key is invalid.
	ErrInvalidKey = errors.New("invalid key format")
)

// Vault encrypts and decrypts refresh tokens with age X25519 keys. The API
// server holds both keys: the public key seals tokens before they reach the
// database, the private key opens them when an Ads API call needs credentials.
type Vault struct {
	recipient *age.X25519Recipient
	identity  *age.X25519Identity
	logger    *slog.Logger
}

// Config holds the vault key pair.
type Config struct {
	// AgePublicKey seals tokens. Format: age1... (Bech32 encoded)
	AgePublicKey string
	// AgePrivateKey opens tokens. Format: AGE-SECRET-KEY-1... (Bech32 encoded)
	AgePrivateKey string
}

// NewVault creates a vault from the given key pair. At least one key must be
// provided; a vault with only the public key can seal but not open.
func NewVault(cfg *Config, logger *slog.Logger) (*Vault, error) {
	if logger == nil {
		logger = slog.Default()
	}

	v := &Vault{logger: logger}

	if cfg.AgePublicKey != "" {
		recipient, err := age.ParseX25519Recipient(cfg.AgePublicKey)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid public key: %v", ErrInvalidKey, err)
		}
		v.recipient = recipient
	}

	if cfg.AgePrivateKey != "" {
		identity, err := age.ParseX25519Identity(cfg.AgePrivateKey)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid private key: %v", ErrInvalidKey, err)
		}
		v.identity = identity
		if v.recipient == nil {
			v.recipient = identity.Recipient()
		}
	}

	if v.recipient == nil && v.identity == nil {
		return nil, fmt.Errorf("%w: at least one key required", ErrInvalidKey)
	}

	return v, nil
}

// Seal encrypts a refresh token for storage.
func (v *Vault) Seal(token string) ([]byte, error) {
	if v.recipient == nil {
		return nil, ErrNoPublicKey
	}

	var buf bytes.Buffer
	w, err := age.Encrypt(&buf, v.recipient)
	if err != nil {
		v.logger.Error("failed to create age encryptor", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	if _, err := io.WriteString(w, token); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	return buf.Bytes(), nil
}

// Open decrypts a stored refresh token.
func (v *Vault) Open(sealed []byte) (string, error) {
	if v.identity == nil {
		return "", ErrNoPrivateKey
	}

	r, err := age.Decrypt(bytes.NewReader(sealed), v.identity)
	if err != nil {
		v.logger.Error("failed to create age decryptor", "error", err)
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	token, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryptionFailed, err)
	}

	return string(token), nil
}

// CanSeal returns true if the vault is configured for encryption.
func (v *Vault) CanSeal() bool {
	return v.recipient != nil
}

// CanOpen returns true if the vault is configured for decryption.
func (v *Vault) CanOpen() bool {
	return v.identity != nil
}
