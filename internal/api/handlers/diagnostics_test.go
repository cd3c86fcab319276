package handlers

import (
	"bufio"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/campaignlabs/ads-console/internal/diag"
	"github.com/campaignlabs/ads-console/internal/models"
)

func newDiagHandler() (*DiagnosticsHandler, *diag.Buffer) {
	buffer := diag.NewBuffer(50, 50)
	return NewDiagnosticsHandler(buffer, slog.Default()), buffer
}

func TestDiagnosticsLogs(t *testing.T) {
	h, buffer := newDiagHandler()
	buffer.Add("info", "resolver", "first", nil)
	buffer.Add("error", "ads", "second", map[string]string{"status": "429"})

	rec := httptest.NewRecorder()
	h.Logs(rec, httptest.NewRequest(http.MethodGet, "/v1/diagnostics/logs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var body struct {
		Logs []models.LogEntry `json:"logs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Logs) != 2 {
		t.Fatalf("got %d logs, want 2", len(body.Logs))
	}
	if body.Logs[0].Message != "first" || body.Logs[1].Message != "second" {
		t.Errorf("logs out of order: %+v", body.Logs)
	}
}

func TestDiagnosticsLogsLimit(t *testing.T) {
	h, buffer := newDiagHandler()
	for i := 0; i < 10; i++ {
		buffer.Add("info", "test", "entry", nil)
	}

	rec := httptest.NewRecorder()
	h.Logs(rec, httptest.NewRequest(http.MethodGet, "/v1/diagnostics/logs?limit=3", nil))

	var body struct {
		Logs []models.LogEntry `json:"logs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Logs) != 3 {
		t.Errorf("got %d logs, want 3", len(body.Logs))
	}
}

func TestDiagnosticsReports(t *testing.T) {
	h, buffer := newDiagHandler()
	buffer.AddReport(&models.DiagnosticReport{MCCID: "1234567890", Strategy: "gaql_customer_client"})

	rec := httptest.NewRecorder()
	h.Reports(rec, httptest.NewRequest(http.MethodGet, "/v1/diagnostics/reports", nil))

	var body struct {
		Reports []models.DiagnosticReport `json:"reports"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if len(body.Reports) != 1 || body.Reports[0].MCCID != "1234567890" {
		t.Errorf("reports = %+v", body.Reports)
	}
}

func TestDiagnosticsStream(t *testing.T) {
	h, buffer := newDiagHandler()

	server := httptest.NewServer(http.HandlerFunc(h.Stream))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("Content-Type = %q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	line, err := reader.ReadString('\n')
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(line, "event: connected") {
		t.Fatalf("first event = %q, want connected", line)
	}

	buffer.Add("info", "resolver", "live entry", nil)

	// Skip the connected payload and blank separator, then expect the log
	// event.
	var sawLog bool
	for i := 0; i < 8; i++ {
		line, err = reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.HasPrefix(line, "event: log") {
			sawLog = true
			break
		}
	}
	if !sawLog {
		t.Error("never received the published log event")
	}
}
