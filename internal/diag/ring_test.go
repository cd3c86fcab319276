package diag

import (
	"fmt"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/campaignlabs/ads-console/internal/models"
)

func TestBufferRetainsMostRecent(t *testing.T) {
	b := NewBuffer(3, 3)

	for i := 0; i < 5; i++ {
		b.Add("info", "test", fmt.Sprintf("entry %d", i), nil)
	}

	logs := b.Logs(0)
	if len(logs) != 3 {
		t.Fatalf("len = %d, want capacity 3", len(logs))
	}
	// Oldest first, entries 0 and 1 evicted.
	for i, entry := range logs {
		want := fmt.Sprintf("entry %d", i+2)
		if entry.Message != want {
			t.Errorf("logs[%d] = %q, want %q", i, entry.Message, want)
		}
	}
}

func TestBufferLogsLimit(t *testing.T) {
	b := NewBuffer(10, 10)
	for i := 0; i < 6; i++ {
		b.Add("info", "test", fmt.Sprintf("entry %d", i), nil)
	}

	logs := b.Logs(2)
	if len(logs) != 2 {
		t.Fatalf("len = %d, want 2", len(logs))
	}
	if logs[0].Message != "entry 4" || logs[1].Message != "entry 5" {
		t.Errorf("limit should keep the most recent entries: %v", logs)
	}
}

func TestBufferReportMirrorsLog(t *testing.T) {
	b := NewBuffer(10, 10)
	b.AddReport(&models.DiagnosticReport{
		ID:       "r1",
		MCCID:    "9999999999",
		Strategy: "gaql_customer_client",
	})

	reports := b.Reports(0)
	if len(reports) != 1 || reports[0].ID != "r1" {
		t.Fatalf("reports = %+v", reports)
	}

	logs := b.Logs(0)
	if len(logs) != 1 {
		t.Fatalf("expected a mirrored log line, got %d", len(logs))
	}
	if logs[0].Level != "info" || logs[0].Fields["report_id"] != "r1" {
		t.Errorf("mirrored line = %+v", logs[0])
	}
}

func TestBufferFailedReportLogsError(t *testing.T) {
	b := NewBuffer(10, 10)
	b.AddReport(&models.DiagnosticReport{ID: "r2", MCCID: "9999999999"})

	logs := b.Logs(0)
	if len(logs) != 1 || logs[0].Level != "error" {
		t.Errorf("a report without a strategy should log at error level: %+v", logs)
	}
}

func TestBufferSubscribe(t *testing.T) {
	b := NewBuffer(10, 10)

	ch, cancel := b.Subscribe()
	defer cancel()

	entry := b.Add("warn", "test", "hello", nil)

	select {
	case got := <-ch:
		if got.ID != entry.ID {
			t.Errorf("got %+v, want %+v", got, entry)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for published entry")
	}
}

func TestBufferSlowSubscriberDoesNotBlock(t *testing.T) {
	b := NewBuffer(500, 10)

	_, cancel := b.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		// More entries than the subscriber channel buffers.
		for i := 0; i < 200; i++ {
			b.Add("info", "test", "flood", nil)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("writer blocked on a slow subscriber")
	}
}

func TestBufferCancelIdempotent(t *testing.T) {
	b := NewBuffer(10, 10)
	_, cancel := b.Subscribe()
	cancel()
	cancel()

	// Publishing after cancel must not panic on the closed channel.
	b.Add("info", "test", "after cancel", nil)
}

func TestBufferCapacityProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("retained count never exceeds capacity", prop.ForAll(
		func(capacity, writes int) bool {
			b := NewBuffer(capacity, 10)
			for i := 0; i < writes; i++ {
				b.Add("info", "test", fmt.Sprintf("m%d", i), nil)
			}
			got := len(b.Logs(0))
			want := writes
			if want > capacity {
				want = capacity
			}
			return got == want
		},
		gen.IntRange(1, 50),
		gen.IntRange(0, 200),
	))

	properties.TestingRun(t)
}
