// Package connectivity tracks network reachability and signals recovery.
package connectivity

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/metrics"
)

// RecoveryHandler is called once per disconnected→connected transition.
// Handlers run on the goroutine delivering the event and must not block.
type RecoveryHandler func()

// Monitor holds the current NetworkStatus.
type Monitor struct {
	mu       sync.RWMutex
	status   domain.NetworkStatus
	handlers []RecoveryHandler
	changes  int

	log *slog.Logger
}

// NewMonitor creates a monitor that assumes connectivity until told otherwise.
func NewMonitor(log *slog.Logger) *Monitor {
	if log == nil {
		log = slog.Default()
	}
	metrics.Connected.Set(1)
	return &Monitor{
		status: domain.Online(),
		log:    log.With("component", "connectivity"),
	}
}

// OnRecovered registers a handler for the "became reachable" edge.
func (m *Monitor) OnRecovered(h RecoveryHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
}

// OnChange replaces the current status.
func (m *Monitor) OnChange(status domain.NetworkStatus) {
	m.mu.Lock()
	was := m.status.Reachable()
	m.status = status
	now := status.Reachable()
	if was != now {
		m.changes++
	}
	var handlers []RecoveryHandler
	if !was && now {
		handlers = make([]RecoveryHandler, len(m.handlers))
		copy(handlers, m.handlers)
	}
	m.mu.Unlock()

	if was == now {
		return
	}

	if now {
		metrics.Connected.Set(1)
		m.log.Info("Connectivity restored", "transport", status.Transport)
	} else {
		metrics.Connected.Set(0)
		m.log.Warn("Connectivity lost", "transport", status.Transport)
	}

	for _, h := range handlers {
		h()
	}
}

// IsConnected reports whether requests may be dispatched.
func (m *Monitor) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Reachable()
}

// Status returns the last reported status.
func (m *Monitor) Status() domain.NetworkStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

// Transitions returns how many reachability flips have been observed.
func (m *Monitor) Transitions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.changes
}

// Run applies events until ctx is done or the stream closes.
func (m *Monitor) Run(ctx context.Context, events <-chan domain.NetworkStatus) {
	for {
		select {
		case <-ctx.Done():
			return
		case status, ok := <-events:
			if !ok {
				return
			}
			m.OnChange(status)
		}
	}
}
