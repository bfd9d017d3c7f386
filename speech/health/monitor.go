// Package health tracks reachability of the remote speech service. The
// monitor is passive: it probes only when asked and otherwise serves a
// cached snapshot, so reads never touch the network.
package health

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Status is a point-in-time view of the remote service. Callers always
// receive a copy, never the monitor's live record.
type Status struct {
	Available   bool
	LastChecked time.Time
	URL         string
}

// Monitor owns the reachability state of one speech service endpoint.
// A zero timeout is replaced by DefaultTimeout.
type Monitor struct {
	mu      sync.Mutex
	client  *http.Client
	url     string
	timeout time.Duration
	status  Status
}

// DefaultTimeout bounds a probe when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// healthPath is the ping route exposed by the speech server.
const healthPath = "/health"

// New creates a monitor probing serverURL with the given hard timeout.
func New(serverURL string, timeout time.Duration) *Monitor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Monitor{
		client:  &http.Client{},
		url:     serverURL,
		timeout: timeout,
		status:  Status{URL: serverURL},
	}
}

// SetTarget atomically replaces the probe endpoint and timeout. The cached
// availability is reset until the next probe.
func (m *Monitor) SetTarget(serverURL string, timeout time.Duration) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.url = serverURL
	m.timeout = timeout
	m.status = Status{URL: serverURL, LastChecked: m.status.LastChecked}
}

// Check performs a single bounded probe against the server's health route.
// Any network error, timeout, or non-2xx response counts as unavailable.
// It never returns an error; the outcome is folded into the cached status.
func (m *Monitor) Check(ctx context.Context) bool {
	m.mu.Lock()
	url := m.url
	timeout := m.timeout
	client := m.client
	m.mu.Unlock()

	available := m.probe(ctx, client, url, timeout)

	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if now.Before(m.status.LastChecked) {
		// Keep LastChecked monotonically non-decreasing even if the wall
		// clock steps backwards between probes.
		now = m.status.LastChecked
	}
	m.status = Status{Available: available, LastChecked: now, URL: url}
	return available
}

func (m *Monitor) probe(ctx context.Context, client *http.Client, url string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(url, "/")+healthPath, nil)
	if err != nil {
		log.Debug("health probe rejected", "url", url, "error", err)
		return false
	}

	resp, err := client.Do(req)
	if err != nil {
		log.Debug("health probe failed", "url", url, "error", err)
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ServerStatus returns the cached status without network I/O. It is safe to
// call arbitrarily often; freshness is the caller's responsibility via Check.
func (m *Monitor) ServerStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}
