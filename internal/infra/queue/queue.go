// Package queue buffers requests made while offline and replays them in order
// once connectivity returns.
package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/vietddude/fitlink/internal/core/clock"
	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/metrics"
)

// ErrUnrecoverable marks a replay failure that no later pass can fix; the
// request is dropped at once instead of waiting out the retry ceiling.
var ErrUnrecoverable = errors.New("queue: request cannot be replayed")

// Replayer re-issues one deferred request through its normal operation path.
type Replayer func(ctx context.Context, req domain.QueuedRequest) error

// DropHandler is told about requests abandoned after too many failed replays.
type DropHandler func(req domain.QueuedRequest, err error)

// Config controls replay behavior.
type Config struct {
	// MaxRetries is the number of failed replays tolerated before a request is dropped
	MaxRetries int

	// RetryDelay is the wait before another pass when a pass leaves entries behind
	RetryDelay time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{MaxRetries: 3, RetryDelay: 5 * time.Second}
}

// DrainResult summarizes one pass.
type DrainResult struct {
	Replayed int
	Requeued int
	Dropped  int
	Stalled  bool // connectivity went away mid-pass
	Skipped  bool // another pass was already running
}

// Queue is a FIFO of deferred requests.
type Queue struct {
	cfg    Config
	replay Replayer
	clock  clock.Clock
	log    *slog.Logger

	mu        sync.Mutex
	items     []domain.QueuedRequest
	dropped   []DropHandler
	timer     clock.Timer
	closed    bool
	passes    int

	draining atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a queue that replays through replay.
func New(replay Replayer, cfg Config, clk clock.Clock, log *slog.Logger) *Queue {
	if clk == nil {
		clk = clock.Real()
	}
	if log == nil {
		log = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Queue{
		cfg:    cfg,
		replay: replay,
		clock:  clk,
		log:    log.With("component", "queue"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// OnDropped registers a drop notification handler.
func (q *Queue) OnDropped(h DropHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.dropped = append(q.dropped, h)
}

// Enqueue appends a request and returns its id. It never blocks on I/O.
func (q *Queue) Enqueue(kind domain.RequestKind, payload any) string {
	req := domain.QueuedRequest{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: q.clock.Now(),
	}

	q.mu.Lock()
	q.items = append(q.items, req)
	depth := len(q.items)
	q.mu.Unlock()

	metrics.QueueDepth.Set(float64(depth))
	q.log.Debug("Request deferred", "id", req.ID, "kind", kind, "depth", depth)
	return req.ID
}

// Len returns the number of waiting requests.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the waiting requests in replay order.
func (q *Queue) Snapshot() []domain.QueuedRequest {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]domain.QueuedRequest, len(q.items))
	copy(out, q.items)
	return out
}

// Passes returns how many drain passes have run to completion or stalled.
func (q *Queue) Passes() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.passes
}

// Drain replays every waiting request once, in order. A call made while
// another pass is running returns immediately with Skipped set.
func (q *Queue) Drain(ctx context.Context) DrainResult {
	if !q.draining.CompareAndSwap(false, true) {
		return DrainResult{Skipped: true}
	}
	defer q.draining.Store(false)

	q.mu.Lock()
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	batch := q.items
	q.items = nil
	q.mu.Unlock()

	var res DrainResult
	if len(batch) > 0 {
		q.log.Info("Draining offline queue", "entries", len(batch))
	}

	for i, req := range batch {
		err := q.replay(ctx, req)
		if err == nil {
			res.Replayed++
			continue
		}

		if errors.Is(err, domain.ErrNetworkUnavailable) || ctx.Err() != nil {
			// Offline again: put this entry and the untried rest back in front, as they were.
			q.mu.Lock()
			restored := make([]domain.QueuedRequest, 0, len(batch)-i+len(q.items))
			restored = append(restored, batch[i:]...)
			q.items = append(restored, q.items...)
			q.mu.Unlock()

			res.Stalled = true
			q.log.Warn("Queue drain stalled", "remaining", len(batch)-i, "error", err)
			break
		}

		req.AttemptCount++
		if req.AttemptCount > q.cfg.MaxRetries || errors.Is(err, ErrUnrecoverable) {
			res.Dropped++
			q.drop(req, err)
			continue
		}

		q.mu.Lock()
		q.items = append(q.items, req)
		q.mu.Unlock()
		res.Requeued++
		q.log.Debug("Replay failed, requeued", "id", req.ID, "kind", req.Kind, "attempt", req.AttemptCount, "error", err)
	}

	q.mu.Lock()
	q.passes++
	depth := len(q.items)
	q.mu.Unlock()
	metrics.QueueDepth.Set(float64(depth))

	if depth > 0 && !res.Stalled {
		q.scheduleDrain()
	}
	return res
}

func (q *Queue) drop(req domain.QueuedRequest, err error) {
	metrics.QueueDroppedTotal.WithLabelValues(string(req.Kind)).Inc()
	q.log.Warn("Dropping deferred request", "id", req.ID, "kind", req.Kind, "attempts", req.AttemptCount, "error", err)

	q.mu.Lock()
	handlers := make([]DropHandler, len(q.dropped))
	copy(handlers, q.dropped)
	q.mu.Unlock()

	for _, h := range handlers {
		h(req, err)
	}
}

func (q *Queue) scheduleDrain() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed || q.timer != nil {
		return
	}
	q.timer = q.clock.AfterFunc(q.cfg.RetryDelay, func() {
		q.mu.Lock()
		q.timer = nil
		q.mu.Unlock()
		q.Drain(q.ctx)
	})
}

// Scheduled reports whether a delayed pass is pending.
func (q *Queue) Scheduled() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.timer != nil
}

// Close cancels any pending or running pass. Waiting entries are kept.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	q.mu.Unlock()
	q.cancel()
}
