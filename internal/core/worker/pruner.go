package worker

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes expired entries and reports how many went.
type Sweeper interface {
	EvictExpired() int
}

// Pruner periodically sweeps expired cache entries so that stale configs
// do not linger between lookups.
type Pruner struct {
	target   Sweeper
	interval time.Duration
	log      *slog.Logger
}

// NewPruner creates a new Pruner worker.
func NewPruner(target Sweeper, interval time.Duration, log *slog.Logger) *Pruner {
	if log == nil {
		log = slog.Default()
	}
	return &Pruner{
		target:   target,
		interval: interval,
		log:      log.With("component", "pruner"),
	}
}

// Start runs the pruner loop until ctx is done.
func (p *Pruner) Start(ctx context.Context) {
	if p.interval <= 0 {
		return // Sweeping disabled
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune()
		}
	}
}

func (p *Pruner) prune() {
	if n := p.target.EvictExpired(); n > 0 {
		p.log.Debug("Pruned expired cache entries", "count", n)
	}
}
