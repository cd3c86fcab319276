package models

import "time"

// LogEntry is a single in-memory diagnostic log line.
type LogEntry struct {
	ID        string `json:"id"`
	Level     string `json:"level"`
	Component string `json:"component"`
	Message   string `json:"message"`
	// Fields carries structured attributes (strategy, customer ID, etc.).
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// ResolutionAttempt records one strategy attempt during hierarchy resolution.
type ResolutionAttempt struct {
	Strategy    string        `json:"strategy"`
	Attempt     int           `json:"attempt"`
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Success     bool          `json:"success"`
	AccountsLen int           `json:"accounts,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// DiagnosticReport is the per-request trace of a hierarchy resolution.
// Reports live only in a capped in-memory ring; no durability guarantees.
type DiagnosticReport struct {
	ID        string              `json:"id"`
	UserEmail string              `json:"user_email"`
	MCCID     string              `json:"mcc_id"`
	CacheHit  bool                `json:"cache_hit"`
	Stale     bool                `json:"stale,omitempty"`
	Attempts  []ResolutionAttempt `json:"attempts,omitempty"`
	// Strategy is the strategy that finally produced accounts, if any.
	Strategy  string        `json:"strategy,omitempty"`
	Total     time.Duration `json:"total"`
	CreatedAt time.Time     `json:"created_at"`
}
