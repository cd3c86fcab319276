// Package config provides environment-based configuration for the ads console.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the API server and tooling.
type Config struct {
	// Database configuration
	DatabaseDSN string

	// Session authentication
	JWTSecret     string
	JWTExpiry     time.Duration
	SessionCookie string

	// Google OAuth client
	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string

	// Google Ads API access
	Ads AdsConfig

	// Hierarchy cache
	CacheTTL time.Duration

	// Diagnostics ring buffer sizes
	DiagLogCapacity    int
	DiagReportCapacity int

	// Server configuration
	APIPort int
	APIHost string

	// Frontend origin for OAuth redirects and CORS
	FrontendURL string

	// Graceful shutdown timeout
	ShutdownTimeout time.Duration

	// Token encryption at rest
	TokenVault TokenVaultConfig
}

// AdsConfig holds Google Ads API configuration.
type AdsConfig struct {
	// Endpoint is the Ads REST endpoint, overridable for tests.
	Endpoint string
	// DeveloperToken is sent as the developer-token header on every call.
	DeveloperToken string
	// LoginCustomerID is the manager account used for login-customer-id
	// when querying sub-accounts. Optional; the resolver also derives it
	// from the selected MCC.
	LoginCustomerID string
	// FallbackAccountsFile is a YAML file listing accounts to serve when
	// every live resolution strategy fails. Optional.
	FallbackAccountsFile string
	// RequestTimeout bounds a single Ads API call.
	RequestTimeout time.Duration
	// MaxRetries is the per-strategy retry count for retryable failures.
	MaxRetries int
	// RetryBackoff is the base wait between retries.
	RetryBackoff time.Duration
}

// TokenVaultConfig holds age encryption keys for refresh tokens at rest.
type TokenVaultConfig struct {
	// AgePublicKey encrypts refresh tokens before storage. Format: age1...
	AgePublicKey string
	// AgePrivateKey decrypts stored refresh tokens. Format: AGE-SECRET-KEY-1...
	AgePrivateKey string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := loadFromEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters")
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("HIERARCHY_CACHE_TTL must be positive")
	}
	if c.DiagLogCapacity <= 0 || c.DiagReportCapacity <= 0 {
		return fmt.Errorf("diagnostics capacities must be positive")
	}
	return nil
}

// LoadWithDefaults loads configuration with defaults for development.
// It does not validate required fields, useful for testing.
func LoadWithDefaults() *Config {
	cfg := loadFromEnv()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-secret-key-min-32-chars"
	}
	return cfg
}

func loadFromEnv() *Config {
	return &Config{
		DatabaseDSN:        getEnv("DATABASE_URL", "postgres://localhost:5432/adsconsole?sslmode=disable"),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		JWTExpiry:          getDurationEnv("JWT_EXPIRY", 24*time.Hour),
		SessionCookie:      getEnv("SESSION_COOKIE", "ads_console_session"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		OAuthRedirectURL:   getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		Ads: AdsConfig{
			Endpoint:             getEnv("ADS_API_ENDPOINT", "https://googleads.googleapis.com/v16"),
			DeveloperToken:       getEnv("ADS_DEVELOPER_TOKEN", ""),
			LoginCustomerID:      getEnv("ADS_LOGIN_CUSTOMER_ID", ""),
			FallbackAccountsFile: getEnv("ADS_FALLBACK_ACCOUNTS_FILE", ""),
			RequestTimeout:       getDurationEnv("ADS_REQUEST_TIMEOUT", 30*time.Second),
			MaxRetries:           getIntEnv("ADS_MAX_RETRIES", 2),
			RetryBackoff:         getDurationEnv("ADS_RETRY_BACKOFF", 2*time.Second),
		},
		CacheTTL:           getDurationEnv("HIERARCHY_CACHE_TTL", time.Hour),
		DiagLogCapacity:    getIntEnv("DIAG_LOG_CAPACITY", 500),
		DiagReportCapacity: getIntEnv("DIAG_REPORT_CAPACITY", 100),
		APIPort:            getIntEnv("API_PORT", 8080),
		APIHost:            getEnv("API_HOST", "0.0.0.0"),
		FrontendURL:        getEnv("FRONTEND_URL", "http://localhost:3000"),
		ShutdownTimeout:    getDurationEnv("SHUTDOWN_TIMEOUT", 30*time.Second),
		TokenVault: TokenVaultConfig{
			AgePublicKey:  getEnv("TOKEN_AGE_PUBLIC_KEY", ""),
			AgePrivateKey: getEnv("TOKEN_AGE_PRIVATE_KEY", ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
