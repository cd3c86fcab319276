package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFormFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCampaignFormJSON(t *testing.T) {
	path := writeFormFile(t, "form.json", `{
		"customer_id": "1234567890",
		"name": "Spring Sale",
		"daily_budget_micros": 10000000,
		"max_cpc_micros": 1000000,
		"headlines": ["One", "Two", "Three"],
		"descriptions": ["First.", "Second."],
		"final_url": "https://example.com"
	}`)

	form, err := loadCampaignForm(path)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", form.CustomerID)
	assert.Equal(t, "Spring Sale", form.Name)
	assert.Equal(t, int64(10_000_000), form.DailyBudgetMicros)
	assert.Equal(t, int64(1_000_000), form.MaxCPCMicros)
	assert.Len(t, form.Headlines, 3)
	assert.Len(t, form.Descriptions, 2)
	assert.Equal(t, "https://example.com", form.FinalURL)
}

func TestLoadCampaignFormYAML(t *testing.T) {
	path := writeFormFile(t, "form.yaml", `customer_id: "1234567890"
name: Spring Sale
daily_budget_micros: 10000000
max_cpc_micros: 1000000
headlines:
  - One
  - Two
  - Three
descriptions:
  - First.
  - Second.
final_url: https://example.com
keywords:
  - spring sale
`)

	form, err := loadCampaignForm(path)
	require.NoError(t, err)
	assert.Equal(t, "1234567890", form.CustomerID)
	assert.Equal(t, int64(10_000_000), form.DailyBudgetMicros)
	assert.Equal(t, []string{"spring sale"}, form.Keywords)
}

func TestLoadCampaignFormRejectsUnknownKeys(t *testing.T) {
	path := writeFormFile(t, "form.yaml", `customer_id: "1234567890"
daily_budget: 10000000
`)

	_, err := loadCampaignForm(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse campaign file")
}

func TestLoadCampaignFormEmptyFile(t *testing.T) {
	path := writeFormFile(t, "form.yaml", "")

	_, err := loadCampaignForm(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")
}

func TestLoadCampaignFormMissingFile(t *testing.T) {
	_, err := loadCampaignForm(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
