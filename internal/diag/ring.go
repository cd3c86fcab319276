// Package diag provides the in-memory diagnostics buffers: a capped ring of
// recent log entries and a capped ring of resolution reports. Nothing here is
// durable; only the most recent N entries are retained.
package diag

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campaignlabs/ads-console/internal/models"
)

// Default ring capacities.
const (
	DefaultLogCapacity    = 500
	DefaultReportCapacity = 100
)

// ring is a fixed-capacity FIFO over any element type.
type ring[T any] struct {
	buf   []T
	start int
	count int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

// push appends an element, evicting the oldest when full.
func (r *ring[T]) push(v T) {
	if r.count < len(r.buf) {
		r.buf[(r.start+r.count)%len(r.buf)] = v
		r.count++
		return
	}
	r.buf[r.start] = v
	r.start = (r.start + 1) % len(r.buf)
}

// snapshot returns the retained elements, oldest first.
func (r *ring[T]) snapshot() []T {
	out := make([]T, 0, r.count)
	for i := 0; i < r.count; i++ {
		out = append(out, r.buf[(r.start+i)%len(r.buf)])
	}
	return out
}

// Buffer holds the diagnostics rings and fans new log entries out to
// subscribers.
type Buffer struct {
	mu      sync.RWMutex
	logs    *ring[models.LogEntry]
	reports *ring[models.DiagnosticReport]

	subMu  sync.Mutex
	subs   map[int]chan models.LogEntry
	nextID int
}

// NewBuffer creates a diagnostics buffer with the given ring capacities.
func NewBuffer(logCapacity, reportCapacity int) *Buffer {
	if logCapacity <= 0 {
		logCapacity = DefaultLogCapacity
	}
	if reportCapacity <= 0 {
		reportCapacity = DefaultReportCapacity
	}
	return &Buffer{
		logs:    newRing[models.LogEntry](logCapacity),
		reports: newRing[models.DiagnosticReport](reportCapacity),
		subs:    make(map[int]chan models.LogEntry),
	}
}

// Add records a log entry and notifies subscribers.
func (b *Buffer) Add(level, component, message string, fields map[string]string) models.LogEntry {
	entry := models.LogEntry{
		ID:        uuid.New().String(),
		Level:     level,
		Component: component,
		Message:   message,
		Fields:    fields,
		Timestamp: time.Now(),
	}

	b.mu.Lock()
	b.logs.push(entry)
	b.mu.Unlock()

	b.publish(entry)
	return entry
}

// AddReport records a diagnostic report and mirrors a summary line into the
// log ring.
func (b *Buffer) AddReport(report *models.DiagnosticReport) {
	b.mu.Lock()
	b.reports.push(*report)
	b.mu.Unlock()

	fields := map[string]string{
		"report_id": report.ID,
		"mcc_id":    report.MCCID,
		"strategy":  report.Strategy,
	}
	level := "info"
	message := "hierarchy resolved"
	if report.Strategy == "" && !report.CacheHit {
		level = "error"
		message = "hierarchy resolution failed"
	}
	b.Add(level, "hierarchy", message, fields)
}

// Logs returns up to limit of the most recent log entries, oldest first.
// A non-positive limit returns everything retained.
func (b *Buffer) Logs(limit int) []models.LogEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()

	all := b.logs.snapshot()
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// Reports returns up to limit of the most recent reports, oldest first.
func (b *Buffer) Reports(limit int) []models.DiagnosticReport {
	b.mu.RLock()
	defer b.mu.RUnlock()

	all := b.reports.snapshot()
	if limit > 0 && len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all
}

// Subscribe registers a listener for new log entries. The returned cancel
// function must be called to release the subscription. Slow subscribers
// drop entries rather than block writers.
func (b *Buffer) Subscribe() (<-chan models.LogEntry, func()) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	id := b.nextID
	b.nextID++
	ch := make(chan models.LogEntry, 64)
	b.subs[id] = ch

	cancel := func() {
		b.subMu.Lock()
		defer b.subMu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (b *Buffer) publish(entry models.LogEntry) {
	b.subMu.Lock()
	defer b.subMu.Unlock()

	for _, ch := range b.subs {
		select {
		case ch <- entry:
		default:
		}
	}
}
