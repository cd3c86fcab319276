package cache

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/campaignlabs/ads-console/internal/models"
)

func testHierarchy(mccID string) *models.Hierarchy {
	return &models.Hierarchy{
		MCCID:    mccID,
		Accounts: []models.CustomerAccount{{ID: "1111111111", ParentID: mccID}},
		Strategy: "gaql_customer_client",
	}
}

func TestCacheFreshHit(t *testing.T) {
	c := New(time.Hour)
	c.Put("user@example.com", "9999999999", testHierarchy("9999999999"))

	got, ok := c.Get("user@example.com", "9999999999")
	if !ok {
		t.Fatal("expected fresh hit")
	}
	if got.MCCID != "9999999999" {
		t.Errorf("MCCID = %q", got.MCCID)
	}
}

func TestCacheExpiry(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("user@example.com", "9999999999", testHierarchy("9999999999"))

	c.now = func() time.Time { return base.Add(59 * time.Minute) }
	if _, ok := c.Get("user@example.com", "9999999999"); !ok {
		t.Error("entry should still be fresh before the TTL")
	}

	c.now = func() time.Time { return base.Add(61 * time.Minute) }
	if _, ok := c.Get("user@example.com", "9999999999"); ok {
		t.Error("entry should be expired after the TTL")
	}

	// Expired entries stay reachable for stale fallback.
	if _, ok := c.GetStale("user@example.com", "9999999999"); !ok {
		t.Error("expired entry should still be served stale")
	}
}

func TestCacheKeyIsolation(t *testing.T) {
	c := New(time.Hour)
	c.Put("alice@example.com", "9999999999", testHierarchy("9999999999"))

	if _, ok := c.Get("bob@example.com", "9999999999"); ok {
		t.Error("entry leaked across users")
	}
	if _, ok := c.Get("alice@example.com", "8888888888"); ok {
		t.Error("entry leaked across MCCs")
	}
}

func TestCacheInvalidate(t *testing.T) {
	c := New(time.Hour)
	c.Put("user@example.com", "9999999999", testHierarchy("9999999999"))
	c.Put("user@example.com", "8888888888", testHierarchy("8888888888"))

	c.Invalidate("user@example.com", "9999999999")

	if _, ok := c.GetStale("user@example.com", "9999999999"); ok {
		t.Error("invalidated entry still present")
	}
	if _, ok := c.Get("user@example.com", "8888888888"); !ok {
		t.Error("unrelated entry was dropped")
	}
}

func TestCacheFlush(t *testing.T) {
	c := New(time.Hour)
	c.Put("a@example.com", "1111111111", testHierarchy("1111111111"))
	c.Put("b@example.com", "2222222222", testHierarchy("2222222222"))

	c.Flush()
	if c.Len() != 0 {
		t.Errorf("Len = %d after flush", c.Len())
	}
}

func TestCachePutReplaces(t *testing.T) {
	c := New(time.Hour)
	base := time.Now()
	c.now = func() time.Time { return base }

	c.Put("user@example.com", "9999999999", testHierarchy("9999999999"))

	// Re-resolving resets the entry's clock.
	c.now = func() time.Time { return base.Add(50 * time.Minute) }
	c.Put("user@example.com", "9999999999", testHierarchy("9999999999"))

	c.now = func() time.Time { return base.Add(90 * time.Minute) }
	if _, ok := c.Get("user@example.com", "9999999999"); !ok {
		t.Error("replaced entry should be fresh for a full TTL from the new put")
	}
}

func TestCacheRoundTripProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	genCustomerID := gen.RegexMatch(`[0-9]{10}`)
	genEmail := gen.Identifier().Map(func(s string) string { return s + "@example.com" })

	properties.Property("a fresh put is always readable under the same key", prop.ForAll(
		func(email, mccID string) bool {
			c := New(time.Hour)
			c.Put(email, mccID, testHierarchy(mccID))
			got, ok := c.Get(email, mccID)
			return ok && got.MCCID == mccID
		},
		genEmail,
		genCustomerID,
	))

	properties.Property("a put under one key is invisible under any other", prop.ForAll(
		func(email, otherEmail, mccID string) bool {
			if email == otherEmail {
				return true
			}
			c := New(time.Hour)
			c.Put(email, mccID, testHierarchy(mccID))
			_, ok := c.Get(otherEmail, mccID)
			return !ok
		},
		genEmail,
		genEmail,
		genCustomerID,
	))

	properties.TestingRun(t)
}
