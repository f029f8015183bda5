package connectivity

import (
	"context"
	"log/slog"
	"time"

	"github.com/vietddude/fitlink/internal/core/domain"
)

// CheckFunc reports whether the backend answered a health check.
type CheckFunc func(ctx context.Context) error

// Prober stands in for platform connectivity events on hosts that have none:
// it runs a health check on an interval and emits the resulting status.
type Prober struct {
	check    CheckFunc
	interval time.Duration
	log      *slog.Logger
}

// NewProber creates a prober.
func NewProber(check CheckFunc, interval time.Duration, log *slog.Logger) *Prober {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}
	return &Prober{
		check:    check,
		interval: interval,
		log:      log.With("component", "prober"),
	}
}

// Events starts probing and returns the status stream. The channel is closed
// once ctx is done.
func (p *Prober) Events(ctx context.Context) <-chan domain.NetworkStatus {
	out := make(chan domain.NetworkStatus, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			status := p.probe(ctx)
			select {
			case out <- status:
			case <-ctx.Done():
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}

func (p *Prober) probe(ctx context.Context) domain.NetworkStatus {
	if err := p.check(ctx); err != nil {
		p.log.Debug("Health probe failed", "error", err)
		reachable := false
		// The link may be up while the backend is not; either way nothing can be sent.
		return domain.NetworkStatus{Connected: true, InternetReachable: &reachable}
	}
	reachable := true
	return domain.NetworkStatus{Connected: true, InternetReachable: &reachable}
}
