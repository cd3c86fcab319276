package hierarchy

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/campaignlabs/ads-console/internal/models"
)

// fallbackEntry is one account in the static fallback file.
type fallbackEntry struct {
	ID          string `yaml:"id"`
	DisplayName string `yaml:"display_name"`
	IsMCC       bool   `yaml:"is_mcc"`
	ParentID    string `yaml:"parent_id"`
}

// fallbackFile is the on-disk shape of the static fallback list.
type fallbackFile struct {
	Accounts []fallbackEntry `yaml:"accounts"`
}

// FallbackList is the operator-maintained account list served when every
// live resolution strategy fails. The file is read once at startup.
type FallbackList struct {
	accounts []models.CustomerAccount
}

// LoadFallbackList reads the YAML fallback file. An empty path yields an
// empty list, which disables the fallback strategy.
func LoadFallbackList(path string) (*FallbackList, error) {
	if path == "" {
		return &FallbackList{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading fallback accounts file: %w", err)
	}

	var file fallbackFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing fallback accounts file: %w", err)
	}

	list := &FallbackList{}
	for _, e := range file.Accounts {
		if e.ID == "" {
			continue
		}
		list.accounts = append(list.accounts, models.CustomerAccount{
			ID:           e.ID,
			ResourceName: "customers/" + e.ID,
			DisplayName:  e.DisplayName,
			IsMCC:        e.IsMCC,
			ParentID:     e.ParentID,
		})
	}

	return list, nil
}

// Empty reports whether the list has no accounts.
func (f *FallbackList) Empty() bool {
	return len(f.accounts) == 0
}

// Under returns the accounts listed under the given manager ID.
func (f *FallbackList) Under(mccID string) []models.CustomerAccount {
	var out []models.CustomerAccount
	for _, a := range f.accounts {
		if a.ParentID == mccID || a.ID == mccID {
			out = append(out, a)
		}
	}
	return out
}

// Managers returns the manager accounts in the list.
func (f *FallbackList) Managers() []models.CustomerAccount {
	var out []models.CustomerAccount
	for _, a := range f.accounts {
		if a.IsMCC {
			out = append(out, a)
		}
	}
	return out
}
