// Package health tracks the health of the daemon's subsystems and exposes
// an aggregated status over HTTP.
package health

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status is the health state of one subsystem.
type Status struct {
	Component string    `json:"component"`
	Healthy   bool      `json:"healthy"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Report is the aggregated daemon health.
type Report struct {
	Healthy    bool     `json:"healthy"`
	Components []Status `json:"components"`
}

// Monitor tracks subsystem health. Safe for concurrent use.
type Monitor struct {
	mu       sync.RWMutex
	order    []string
	statuses map[string]Status
}

// NewMonitor creates an empty monitor.
func NewMonitor() *Monitor {
	return &Monitor{statuses: make(map[string]Status)}
}

// Update records the health status for a named subsystem.
func (m *Monitor) Update(name string, healthy bool, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.statuses[name]; !exists {
		m.order = append(m.order, name)
	}
	m.statuses[name] = Status{
		Component: name,
		Healthy:   healthy,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Report returns the aggregated status. The daemon is healthy only when
// every tracked subsystem is.
func (m *Monitor) Report() Report {
	m.mu.RLock()
	defer m.mu.RUnlock()

	report := Report{Healthy: true}
	for _, name := range m.order {
		status := m.statuses[name]
		report.Components = append(report.Components, status)
		if !status.Healthy {
			report.Healthy = false
		}
	}
	return report
}

// Handler serves the aggregated report as JSON. Unhealthy reports carry a
// 503 so load balancers can act on the status code alone.
func (m *Monitor) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		report := m.Report()

		w.Header().Set("Content-Type", "application/json")
		if !report.Healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(report)
	})
}
