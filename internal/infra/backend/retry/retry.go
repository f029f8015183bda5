// Package retry wraps single backend calls with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"sync"
	"time"

	goretry "github.com/sethvargo/go-retry"

	"github.com/vietddude/fitlink/internal/core/clock"
	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/metrics"
)

// jitterRatio is the upper bound of the random delay added on top of the backoff.
const jitterRatio = 0.1

// Policy defines retry behavior.
type Policy struct {
	MaxRetries    int
	BaseDelay     time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// DefaultPolicy provides sensible defaults.
var DefaultPolicy = Policy{
	MaxRetries:    3,
	BaseDelay:     1 * time.Second,
	MaxDelay:      10 * time.Second,
	BackoffFactor: 2.0,
}

// ErrorAction determines how to handle an error.
type ErrorAction int

const (
	ActionRetry ErrorAction = iota
	ActionFatal
)

func (a ErrorAction) String() string {
	if a == ActionFatal {
		return "fatal"
	}
	return "retry"
}

// Classify determines the action for a given error.
func Classify(err error) ErrorAction {
	if err == nil {
		return ActionRetry
	}

	if errors.Is(err, domain.ErrNetworkUnavailable) ||
		errors.Is(err, domain.ErrNotInitialized) ||
		errors.Is(err, context.Canceled) {
		return ActionFatal
	}

	// Local file problems (upload source gone or unreadable) do not heal on retry.
	if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
		return ActionFatal
	}

	if status, ok := domain.StatusCode(err); ok && domain.IsNonRetryableStatus(status) {
		return ActionFatal
	}

	// Timeouts, transport failures, 5xx and everything else
	return ActionRetry
}

// ConnectivityChecker reports whether the network is currently usable.
type ConnectivityChecker interface {
	IsConnected() bool
}

// Operation is one fully configured backend call.
type Operation func(ctx context.Context) error

// Executor runs operations with retry.
type Executor struct {
	mu     sync.RWMutex
	policy Policy

	conn ConnectivityChecker
	rand clock.Rand
	log  *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithRand pins the jitter source.
func WithRand(r clock.Rand) Option {
	return func(e *Executor) { e.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) { e.log = l }
}

// NewExecutor creates an executor bound to a connectivity source.
func NewExecutor(conn ConnectivityChecker, policy Policy, opts ...Option) *Executor {
	e := &Executor{
		policy: policy,
		conn:   conn,
		rand:   clock.NewRand(),
		log:    slog.Default().With("component", "retry"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Policy returns the current policy.
func (e *Executor) Policy() Policy {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.policy
}

// SetPolicy replaces the policy; in-flight calls keep the one they started with.
func (e *Executor) SetPolicy(p Policy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = p
}

// Delay returns the wait before retry number attempt (0-based), jitter included.
func (e *Executor) Delay(attempt int) time.Duration {
	return backoff(e.Policy(), attempt, e.rand.Float64())
}

func backoff(p Policy, attempt int, r float64) time.Duration {
	raw := float64(p.BaseDelay) * math.Pow(p.BackoffFactor, float64(attempt))
	delay := raw * (1 + jitterRatio*r)
	if p.MaxDelay > 0 && delay > float64(p.MaxDelay) {
		delay = float64(p.MaxDelay)
	}
	return time.Duration(delay)
}

type callOptions struct {
	maxRetries int
}

// CallOption overrides policy values for a single call.
type CallOption func(*callOptions)

// MaxRetries caps the retries for one call.
func MaxRetries(n int) CallOption {
	return func(o *callOptions) { o.maxRetries = n }
}

// Execute runs op, retrying retryable failures with exponential backoff.
// Connectivity is checked before every attempt; when offline the call fails
// with domain.ErrNetworkUnavailable without using a retry slot.
func (e *Executor) Execute(ctx context.Context, label string, op Operation, opts ...CallOption) error {
	policy := e.Policy()
	co := callOptions{maxRetries: policy.MaxRetries}
	for _, opt := range opts {
		opt(&co)
	}

	retries := 0
	b := goretry.BackoffFunc(func() (time.Duration, bool) {
		if retries >= co.maxRetries {
			return 0, true
		}
		d := backoff(policy, retries, e.rand.Float64())
		retries++
		metrics.RetriesTotal.WithLabelValues(label).Inc()
		return d, false
	})

	attempt := 0
	err := goretry.Do(ctx, b, func(ctx context.Context) error {
		if !e.conn.IsConnected() {
			return domain.ErrNetworkUnavailable
		}

		attempt++
		err := op(ctx)
		if err == nil {
			return nil
		}

		if Classify(err) == ActionFatal {
			e.log.Debug("Non-retryable failure", "operation", label, "attempt", attempt, "error", err)
			return err
		}

		e.log.Debug("Retryable failure", "operation", label, "attempt", attempt, "error", err)
		return goretry.RetryableError(err)
	})
	if err != nil && attempt > 1 {
		e.log.Warn("Operation failed after retries", "operation", label, "attempts", attempt, "error", err)
	}
	return err
}
