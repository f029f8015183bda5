// Package discovery resolves a reachable backend base URL from a candidate list.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/vietddude/fitlink/internal/core/domain"
)

// Discoverer returns one reachable base URL.
type Discoverer interface {
	Discover(ctx context.Context) (string, error)
}

// Pinger health-checks a base URL.
type Pinger interface {
	Ping(ctx context.Context, baseURL string) error
}

// Static always returns the same URL without probing.
type Static string

func (s Static) Discover(context.Context) (string, error) {
	if s == "" {
		return "", domain.ErrNotInitialized
	}
	return string(s), nil
}

// ProbeDiscoverer health-checks every candidate concurrently and picks the
// first healthy one in list order.
type ProbeDiscoverer struct {
	candidates []string
	pinger     Pinger
	limit      int
	log        *slog.Logger
}

// NewProbeDiscoverer creates a discoverer over candidates, in priority order.
func NewProbeDiscoverer(candidates []string, pinger Pinger, log *slog.Logger) *ProbeDiscoverer {
	if log == nil {
		log = slog.Default()
	}
	cleaned := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if c = strings.TrimRight(strings.TrimSpace(c), "/"); c != "" {
			cleaned = append(cleaned, c)
		}
	}
	return &ProbeDiscoverer{
		candidates: cleaned,
		pinger:     pinger,
		limit:      4,
		log:        log.With("component", "discovery"),
	}
}

// Discover probes the candidates. It fails with domain.ErrNotInitialized when none answer.
func (d *ProbeDiscoverer) Discover(ctx context.Context) (string, error) {
	if len(d.candidates) == 0 {
		return "", fmt.Errorf("%w: no candidate urls configured", domain.ErrNotInitialized)
	}

	results := make([]error, len(d.candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.limit)

	for i, url := range d.candidates {
		g.Go(func() error {
			results[i] = d.pinger.Ping(gctx, url)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}

	for i, err := range results {
		if err == nil {
			d.log.Info("Backend discovered", "url", d.candidates[i])
			return d.candidates[i], nil
		}
		d.log.Debug("Candidate unreachable", "url", d.candidates[i], "error", err)
	}

	return "", fmt.Errorf("%w: %d candidates unreachable: %w", domain.ErrNotInitialized, len(d.candidates), errors.Join(results...))
}
