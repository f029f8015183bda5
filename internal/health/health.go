// Package health reports whether the client can currently reach the backend.
package health

import (
	"context"

	"github.com/vietddude/fitlink/internal/client"
	"github.com/vietddude/fitlink/internal/infra/backend/transport"
)

// SystemStatus represents the overall health state.
type SystemStatus string

const (
	StatusHealthy  SystemStatus = "healthy"
	StatusDegraded SystemStatus = "degraded"
	StatusCritical SystemStatus = "critical"
)

// ClientSource exposes the client report.
type ClientSource interface {
	Status() client.Report
}

// TransportSource exposes transport statistics.
type TransportSource interface {
	Stats() transport.MonitorStats
	BreakerState() string
}

// BackendHealth summarizes the transport's view of the backend.
type BackendHealth struct {
	Status           string  `json:"status"`
	Breaker          string  `json:"breaker"`
	AverageLatencyMs int64   `json:"average_latency_ms"`
	Requests         int     `json:"requests"`
	ErrorRate        float64 `json:"error_rate"`
}

// Report contains the full health report.
type Report struct {
	SystemStatus SystemStatus  `json:"system_status"`
	Reasons      []string      `json:"reasons,omitempty"`
	Backend      BackendHealth `json:"backend"`
	Client       client.Report `json:"client"`
}

// Monitor evaluates health from the client and transport.
type Monitor struct {
	client    ClientSource
	transport TransportSource
}

// NewMonitor creates a health monitor.
func NewMonitor(c ClientSource, t TransportSource) *Monitor {
	return &Monitor{client: c, transport: t}
}

// CheckHealth builds a report. The worst finding decides the system status.
func (m *Monitor) CheckHealth(ctx context.Context) Report {
	cr := m.client.Status()
	stats := m.transport.Stats()
	breaker := m.transport.BreakerState()

	backend := BackendHealth{
		Status:           stats.Status.String(),
		Breaker:          breaker,
		AverageLatencyMs: stats.AverageLatency.Milliseconds(),
		Requests:         stats.Requests,
	}
	if stats.Requests > 0 {
		backend.ErrorRate = float64(stats.Failures) / float64(stats.Requests)
	}

	report := Report{SystemStatus: StatusHealthy, Backend: backend, Client: cr}
	degrade := func(reason string) {
		if report.SystemStatus == StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
		report.Reasons = append(report.Reasons, reason)
	}
	critical := func(reason string) {
		report.SystemStatus = StatusCritical
		report.Reasons = append(report.Reasons, reason)
	}

	if !cr.Initialized {
		critical("no backend discovered")
	}
	if stats.Status == transport.StatusRejecting {
		critical("backend rejects credentials")
	}
	if breaker == "open" {
		critical("circuit breaker open")
	}

	if !cr.Connected {
		degrade("offline")
	}
	if cr.QueueDepth > 0 {
		degrade("requests waiting in offline queue")
	}
	switch stats.Status {
	case transport.StatusDegraded:
		degrade("backend slow or erroring")
	case transport.StatusThrottled:
		degrade("backend rate limiting")
	}
	if breaker == "half-open" {
		degrade("circuit breaker half-open")
	}

	return report
}
