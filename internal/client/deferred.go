package client

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/infra/queue"
)

// ErrUnknownRequest is returned by Await for ids the client never issued or already reported.
var ErrUnknownRequest = errors.New("client: unknown deferred request")

type waiter struct {
	done      chan struct{}
	value     any
	err       error
	settledAt time.Time // guarded by Client.mu; zero while pending
}

func newWaiter() *waiter {
	return &waiter{done: make(chan struct{})}
}

func (w *waiter) settle(value any, err error) {
	select {
	case <-w.done:
		return
	default:
	}
	w.value, w.err = value, err
	close(w.done)
}

// deferRequest queues a call made while offline and returns the deferral signal.
func (c *Client) deferRequest(op string, kind domain.RequestKind, payload any) error {
	w := newWaiter()

	c.mu.Lock()
	c.pruneOutcomesLocked(c.clock.Now())
	id := c.queue.Enqueue(kind, payload)
	c.waiters[id] = w
	c.mu.Unlock()

	c.record(op, domain.StateQueued, nil)
	return &domain.DeferredError{RequestID: id, Kind: kind}
}

// Await blocks until the deferred request id has been replayed or dropped and
// returns its outcome: *domain.AnalysisResult, *domain.ExerciseConfig,
// *domain.SessionSummary or *domain.PoseData depending on the request kind.
// Each outcome can be collected once, and is kept for Config.OutcomeTTL after
// settling; uncollected outcomes are forgotten after that.
func (c *Client) Await(ctx context.Context, id string) (any, error) {
	c.mu.Lock()
	w, ok := c.waiters[id]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}

	select {
	case <-w.done:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	c.mu.Lock()
	delete(c.waiters, id)
	c.mu.Unlock()
	return w.value, w.err
}

// AwaitAs is Await with the outcome asserted to T.
func AwaitAs[T any](ctx context.Context, c *Client, id string) (T, error) {
	var zero T
	v, err := c.Await(ctx, id)
	if err != nil {
		return zero, err
	}
	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("client: request %s produced %T", id, v)
	}
	return out, nil
}

func (c *Client) settle(id string, value any, err error) {
	c.mu.Lock()
	w, ok := c.waiters[id]
	if ok && w.settledAt.IsZero() {
		w.settledAt = c.clock.Now()
	}
	c.mu.Unlock()
	if ok {
		w.settle(value, err)
	}
}

// pruneOutcomesLocked forgets settled outcomes older than the retention window.
func (c *Client) pruneOutcomesLocked(now time.Time) int {
	n := 0
	for id, w := range c.waiters {
		if !w.settledAt.IsZero() && now.Sub(w.settledAt) >= c.cfg.OutcomeTTL {
			delete(c.waiters, id)
			n++
		}
	}
	return n
}

func (c *Client) settleDropped(req domain.QueuedRequest, err error) {
	c.record(operationFor(req.Kind), domain.StateFailed, err)
	c.settle(req.ID, nil, err)
}

// replay re-issues a deferred request through its normal path. Returning
// domain.ErrNetworkUnavailable stalls the queue until the next recovery.
func (c *Client) replay(ctx context.Context, req domain.QueuedRequest) error {
	if c.backend.BaseURL() == "" && !c.Initialize(ctx) {
		return domain.ErrNetworkUnavailable
	}

	var (
		value any
		err   error
	)

	switch req.Kind {
	case domain.KindVideo:
		p := req.Payload.(domain.VideoUpload)
		if _, statErr := os.Stat(p.Path); statErr != nil {
			return fmt.Errorf("%w: upload video: %w", queue.ErrUnrecoverable, statErr)
		}
		value, err = c.uploadVideo(ctx, p, nil)
		c.recordReplay(opUploadVideo, err)

	case domain.KindFrame:
		p := req.Payload.(domain.FrameRequest)
		value, err = c.AnalyzeFrame(ctx, p.FrameData, p.ExerciseType)

	case domain.KindConfig:
		name := req.Payload.(string)
		if cfg, ok := c.configs.Get(name); ok {
			value = &cfg
			break
		}
		var state domain.OperationState
		value, state, err = c.loadConfig(ctx, name)
		if err == nil {
			c.record(opExerciseConfig, state, nil)
		}

	case domain.KindSummary:
		p := req.Payload.(domain.SessionSummaryRequest)
		value, err = c.submitSummary(ctx, p)
		c.recordReplay(opSessionSummary, err)

	default:
		err = fmt.Errorf("client: cannot replay request kind %q", req.Kind)
	}

	if err != nil {
		return err
	}
	c.settle(req.ID, value, nil)
	return nil
}

func (c *Client) recordReplay(op string, err error) {
	if err != nil {
		// The queue decides whether this is final; only count success here.
		c.log.Debug("Replay attempt failed", "operation", op, "error", err)
		return
	}
	c.record(op, domain.StateSucceeded, nil)
}

func operationFor(kind domain.RequestKind) string {
	switch kind {
	case domain.KindVideo:
		return opUploadVideo
	case domain.KindFrame:
		return opAnalyzeFrame
	case domain.KindConfig:
		return opExerciseConfig
	case domain.KindSummary:
		return opSessionSummary
	}
	return string(kind)
}
