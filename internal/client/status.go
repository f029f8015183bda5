package client

import (
	"time"

	"github.com/vietddude/fitlink/internal/infra/cache"
)

// QueuedEntry describes one deferred request without its payload.
type QueuedEntry struct {
	ID           string    `json:"id"`
	Kind         string    `json:"kind"`
	EnqueuedAt   time.Time `json:"enqueued_at"`
	AttemptCount int       `json:"attempt_count"`
}

// Report is a point-in-time view of the client.
type Report struct {
	Initialized bool          `json:"initialized"`
	BaseURL     string        `json:"base_url,omitempty"`
	Connected   bool          `json:"connected"`
	QueueDepth  int           `json:"queue_depth"`
	Queued      []QueuedEntry `json:"queued,omitempty"`
	DrainPasses int           `json:"drain_passes"`
	ConfigCache cache.Stats   `json:"config_cache"`
	MaxRetries  int           `json:"max_retries"`
}

// Status reports the client's current state.
func (c *Client) Status() Report {
	baseURL := c.backend.BaseURL()
	snap := c.queue.Snapshot()

	queued := make([]QueuedEntry, len(snap))
	for i, req := range snap {
		queued[i] = QueuedEntry{
			ID:           req.ID,
			Kind:         string(req.Kind),
			EnqueuedAt:   req.EnqueuedAt,
			AttemptCount: req.AttemptCount,
		}
	}

	return Report{
		Initialized: baseURL != "",
		BaseURL:     baseURL,
		Connected:   c.conn.IsConnected(),
		QueueDepth:  len(snap),
		Queued:      queued,
		DrainPasses: c.queue.Passes(),
		ConfigCache: c.configs.Stats(),
		MaxRetries:  c.retry.Policy().MaxRetries,
	}
}
