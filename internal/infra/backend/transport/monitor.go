package transport

import (
	"sync"
	"time"
)

// Status represents the observed health of the backend.
type Status int

const (
	StatusHealthy   Status = iota // Backend is answering normally
	StatusDegraded                // Backend is slow or erroring intermittently
	StatusThrottled               // Backend is rate limiting
	StatusRejecting               // Backend refuses our credentials
)

func (s Status) String() string {
	switch s {
	case StatusDegraded:
		return "degraded"
	case StatusThrottled:
		return "throttled"
	case StatusRejecting:
		return "rejecting"
	default:
		return "healthy"
	}
}

// MonitorStats holds monitoring statistics for the backend.
type MonitorStats struct {
	Status         Status
	AverageLatency time.Duration
	Requests       int
	Failures       int
	AuthFailures   int
	Throttled      int
	ServerErrors   int
	LastSuccessAt  time.Time
	LastFailureAt  time.Time
}

// Monitor tracks backend latency and error classes.
type Monitor struct {
	mu sync.RWMutex

	recentLatencies  []time.Duration
	maxLatencyWindow int

	requests      int
	failures      int
	authFailures  int
	throttled     int
	serverErrors  int
	lastSuccessAt time.Time
	lastFailureAt time.Time
	lastThrottle  time.Time
	lastAuthFail  time.Time

	slowResponseThreshold time.Duration
	degradedThreshold     float64
	cooldown              time.Duration
}

// NewMonitor creates a new monitor with default settings.
func NewMonitor() *Monitor {
	return &Monitor{
		recentLatencies:       make([]time.Duration, 0, 100),
		maxLatencyWindow:      100,
		slowResponseThreshold: 3 * time.Second,
		degradedThreshold:     0.3, // 30% error rate
		cooldown:              time.Minute,
	}
}

// RecordSuccess records a 2xx response with its latency.
func (m *Monitor) RecordSuccess(latency time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests++
	m.lastSuccessAt = time.Now()
	m.recentLatencies = append(m.recentLatencies, latency)
	if len(m.recentLatencies) > m.maxLatencyWindow {
		m.recentLatencies = m.recentLatencies[1:]
	}
}

// RecordFailure records a failed request. status is 0 for transport errors.
func (m *Monitor) RecordFailure(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	m.requests++
	m.failures++
	m.lastFailureAt = now

	switch {
	case status == 401 || status == 403:
		m.authFailures++
		m.lastAuthFail = now
	case status == 429:
		m.throttled++
		m.lastThrottle = now
	case status >= 500:
		m.serverErrors++
	}
}

// CheckStatus returns the current status of the backend.
func (m *Monitor) CheckStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.statusLocked()
}

func (m *Monitor) statusLocked() Status {
	if m.authFailures > 0 && time.Since(m.lastAuthFail) < m.cooldown && m.lastAuthFail.After(m.lastSuccessAt) {
		return StatusRejecting
	}

	if m.throttled > 0 && time.Since(m.lastThrottle) < m.cooldown {
		return StatusThrottled
	}

	if avg := m.averageLatencyLocked(); len(m.recentLatencies) > 10 && avg > m.slowResponseThreshold {
		return StatusDegraded
	}

	if m.requests >= 10 && float64(m.failures)/float64(m.requests) > m.degradedThreshold {
		return StatusDegraded
	}

	return StatusHealthy
}

func (m *Monitor) averageLatencyLocked() time.Duration {
	if len(m.recentLatencies) == 0 {
		return 0
	}
	var total time.Duration
	for _, lat := range m.recentLatencies {
		total += lat
	}
	return total / time.Duration(len(m.recentLatencies))
}

// GetStats returns a snapshot of the monitor.
func (m *Monitor) GetStats() MonitorStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MonitorStats{
		Status:         m.statusLocked(),
		AverageLatency: m.averageLatencyLocked(),
		Requests:       m.requests,
		Failures:       m.failures,
		AuthFailures:   m.authFailures,
		Throttled:      m.throttled,
		ServerErrors:   m.serverErrors,
		LastSuccessAt:  m.lastSuccessAt,
		LastFailureAt:  m.lastFailureAt,
	}
}
