package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"github.com/campaignlabs/ads-console/internal/diag"
)

// DiagnosticsHandler serves the in-memory diagnostics panel: recent log
// entries, resolution reports, and live feeds over SSE and WebSocket.
type DiagnosticsHandler struct {
	diag   *diag.Buffer
	logger *slog.Logger
}

// NewDiagnosticsHandler creates a new diagnostics handler.
func NewDiagnosticsHandler(buffer *diag.Buffer, logger *slog.Logger) *DiagnosticsHandler {
	return &DiagnosticsHandler{diag: buffer, logger: logger}
}

// Logs returns the retained log entries, oldest first.
func (h *DiagnosticsHandler) Logs(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	WriteJSON(w, http.StatusOK, map[string]any{
		"logs": h.diag.Logs(limit),
	})
}

// Reports returns the retained resolution reports, oldest first.
func (h *DiagnosticsHandler) Reports(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	WriteJSON(w, http.StatusOK, map[string]any{
		"reports": h.diag.Reports(limit),
	})
}

// Stream sends new log entries in real time via Server-Sent Events.
func (h *DiagnosticsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteInternalError(w, "streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	entries, cancel := h.diag.Subscribe()
	defer cancel()

	h.sendEvent(w, "connected", map[string]int64{"time": time.Now().Unix()})
	flusher.Flush()

	pingTicker := time.NewTicker(15 * time.Second)
	defer pingTicker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-pingTicker.C:
			h.sendEvent(w, "ping", map[string]int64{"time": time.Now().Unix()})
			flusher.Flush()
		case entry, open := <-entries:
			if !open {
				return
			}
			h.sendEvent(w, "log", entry)
			flusher.Flush()
		}
	}
}

// Feed sends new log entries over a WebSocket connection.
func (h *DiagnosticsHandler) Feed(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("failed to upgrade websocket", "error", err)
		return
	}
	defer conn.Close()

	entries, cancel := h.diag.Subscribe()
	defer cancel()

	// Drain client frames so close handshakes are noticed.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-done:
			return
		case entry, open := <-entries:
			if !open {
				return
			}
			if err := conn.WriteJSON(entry); err != nil {
				return
			}
		}
	}
}

func (h *DiagnosticsHandler) sendEvent(w http.ResponseWriter, event string, data any) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
}
