// Package capture keeps the console and network activity of a browser
// session and serves it as pull-based snapshots.
package capture

import (
	"encoding/json"
	"io"
	"strings"
	"sync"
	"time"

	"bug-reproducer/internal/domain/entity"
)

const (
	// DefaultSnapshotLimit is how many recent network entries a snapshot
	// returns.
	DefaultSnapshotLimit = 100
	consoleErrorLevel    = "error"
)

type Recorder struct {
	mu      sync.Mutex
	network []entity.NetworkEntry
	console []entity.ConsoleEntry
	backend []string
	events  []TraceEvent
	now     func() time.Time
}

// TraceEvent is one line of the session timeline written on Finalize.
type TraceEvent struct {
	TimestampMs int64  `json:"timestamp"`
	Kind        string `json:"kind"`
	Detail      string `json:"detail"`
}

func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

func (r *Recorder) RequestSent(url, method string, headers map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := r.now().UnixMilli()
	r.network = append(r.network, entity.NetworkEntry{
		URL:            url,
		Method:         method,
		TimestampMs:    ts,
		RequestHeaders: headers,
	})
	r.events = append(r.events, TraceEvent{TimestampMs: ts, Kind: "request", Detail: method + " " + url})
}

// ResponseReceived completes the oldest pending entry for url. It reports
// false when no pending request matches.
func (r *Recorder) ResponseReceived(url string, status int, headers map[string]string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, TraceEvent{TimestampMs: r.now().UnixMilli(), Kind: "response", Detail: url})
	for i := range r.network {
		if r.network[i].URL == url && r.network[i].Status == nil {
			s := status
			r.network[i].Status = &s
			r.network[i].ResponseHeaders = headers
			return true
		}
	}
	return false
}

func (r *Recorder) Console(level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ts := r.now().UnixMilli()
	level = strings.ToLower(level)
	r.console = append(r.console, entity.ConsoleEntry{Level: level, Text: text, TimestampMs: ts})
	r.events = append(r.events, TraceEvent{TimestampMs: ts, Kind: "console." + level, Detail: text})
}

func (r *Recorder) AddBackendLog(line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend = append(r.backend, line)
	r.events = append(r.events, TraceEvent{TimestampMs: r.now().UnixMilli(), Kind: "backend", Detail: line})
}

func (r *Recorder) ConsoleErrors() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []string{}
	for _, e := range r.console {
		if e.Level == consoleErrorLevel {
			out = append(out, e.Text)
		}
	}
	return out
}

func (r *Recorder) ConsoleEntries() []entity.ConsoleEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.ConsoleEntry(nil), r.console...)
}

func (r *Recorder) BackendLogs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.backend...)
}

// Network returns deep copies of the last limit entries; a non-positive
// limit returns all of them. Entries are never dropped from the buffer.
func (r *Recorder) Network(limit int) []entity.NetworkEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.network
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out := make([]entity.NetworkEntry, len(entries))
	for i, e := range entries {
		out[i] = e.Clone()
	}
	return out
}

func (r *Recorder) WriteTrace(w io.Writer) error {
	r.mu.Lock()
	events := append([]TraceEvent(nil), r.events...)
	r.mu.Unlock()

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		Events []TraceEvent `json:"events"`
	}{Events: events})
}
