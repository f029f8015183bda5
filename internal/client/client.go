// Package client is the resilient entry point to the analysis backend.
//
// Every call checks connectivity first. Mutating calls made while offline are
// deferred to the offline queue and replayed, in order, when connectivity
// returns. Frame analysis and config fetches degrade to synthetic data rather
// than fail; uploads and session summaries never do.
package client

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/vietddude/fitlink/internal/core/clock"
	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/infra/backend/retry"
	"github.com/vietddude/fitlink/internal/infra/backend/transport"
	"github.com/vietddude/fitlink/internal/infra/cache"
	"github.com/vietddude/fitlink/internal/infra/connectivity"
	"github.com/vietddude/fitlink/internal/infra/discovery"
	"github.com/vietddude/fitlink/internal/infra/fallback"
	"github.com/vietddude/fitlink/internal/infra/queue"
	"github.com/vietddude/fitlink/internal/metrics"
)

// Backend sends requests to the discovered base URL.
type Backend interface {
	SetBaseURL(u string)
	BaseURL() string
	SetToken(token string)
	Do(ctx context.Context, op transport.Operation) ([]byte, error)
	Upload(ctx context.Context, op transport.UploadOperation, onProgress func(domain.UploadProgress)) ([]byte, error)
}

// Connectivity reports reachability and announces recovery.
type Connectivity interface {
	IsConnected() bool
	OnRecovered(h connectivity.RecoveryHandler)
}

// Config holds client behavior settings.
type Config struct {
	Retry          retry.Policy
	Queue          queue.Config
	ConfigTTL      time.Duration
	FrameFallback  bool
	ConfigFallback bool
	AuthToken      string

	// OutcomeTTL is how long a replayed or dropped request's outcome waits for Await.
	OutcomeTTL time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Retry:          retry.DefaultPolicy,
		Queue:          queue.DefaultConfig(),
		ConfigTTL:      5 * time.Minute,
		FrameFallback:  true,
		ConfigFallback: true,
		OutcomeTTL:     10 * time.Minute,
	}
}

// Option configures a Client.
type Option func(*Client)

// WithClock replaces the system clock.
func WithClock(clk clock.Clock) Option {
	return func(c *Client) { c.clock = clk }
}

// WithRand pins the retry jitter source.
func WithRand(r clock.Rand) Option {
	return func(c *Client) { c.rand = r }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// Client composes retry, connectivity, cache, validation, fallback and the
// offline queue behind four operations.
type Client struct {
	cfg     Config
	backend Backend
	disc    discovery.Discoverer
	conn    Connectivity

	retry   *retry.Executor
	configs *cache.Cache[domain.ExerciseConfig]
	synth   *fallback.Synthesizer
	queue   *queue.Queue
	group   singleflight.Group

	clock clock.Clock
	rand  clock.Rand
	log   *slog.Logger

	initMu sync.Mutex

	mu      sync.Mutex
	waiters map[string]*waiter

	ctx    context.Context
	cancel context.CancelFunc
}

// New wires a client. It does not contact the backend; call Initialize.
func New(cfg Config, backend Backend, disc discovery.Discoverer, conn Connectivity, opts ...Option) *Client {
	c := &Client{
		cfg:     cfg,
		backend: backend,
		disc:    disc,
		conn:    conn,
		clock:   clock.Real(),
		rand:    clock.NewRand(),
		log:     slog.Default(),
		waiters: make(map[string]*waiter),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.OutcomeTTL <= 0 {
		c.cfg.OutcomeTTL = DefaultConfig().OutcomeTTL
	}
	base := c.log
	c.log = base.With("component", "client")
	c.ctx, c.cancel = context.WithCancel(context.Background())

	c.retry = retry.NewExecutor(onlineCheck(c.online), cfg.Retry,
		retry.WithRand(c.rand),
		retry.WithLogger(base.With("component", "retry")),
	)
	c.configs = cache.New[domain.ExerciseConfig](c.clock)
	c.synth = fallback.New(c.clock.Now())
	c.queue = queue.New(c.replay, cfg.Queue, c.clock, base)
	c.queue.OnDropped(c.settleDropped)

	if cfg.AuthToken != "" {
		backend.SetToken(cfg.AuthToken)
	}

	conn.OnRecovered(func() {
		go c.queue.Drain(c.ctx)
	})
	return c
}

type onlineCheck func() bool

func (f onlineCheck) IsConnected() bool { return f() }

// online is true when a base URL is known and the network is reachable.
func (c *Client) online() bool {
	return c.backend.BaseURL() != "" && c.conn.IsConnected()
}

// Initialize resolves the backend base URL. It returns true once a URL is known;
// later calls return true without probing again. The first success drains any
// requests deferred in the meantime.
func (c *Client) Initialize(ctx context.Context) bool {
	c.initMu.Lock()
	defer c.initMu.Unlock()

	if c.backend.BaseURL() != "" {
		return true
	}

	url, err := c.disc.Discover(ctx)
	if err != nil {
		c.log.Warn("Backend discovery failed, running in offline mode", "error", err)
		return false
	}

	c.backend.SetBaseURL(url)
	c.log.Info("Client initialized", "base_url", url)

	// Requests deferred while no backend was known need no recovery signal.
	if c.queue.Len() > 0 {
		go c.queue.Drain(c.ctx)
	}
	return true
}

// SetAuthToken attaches a bearer token to subsequent requests. Empty clears it.
func (c *Client) SetAuthToken(token string) {
	c.backend.SetToken(token)
}

// SetRetryPolicy replaces the retry policy for calls started afterwards.
func (c *Client) SetRetryPolicy(p retry.Policy) {
	c.retry.SetPolicy(p)
}

// OnDropped registers a handler for deferred requests abandoned after repeated failures.
func (c *Client) OnDropped(h queue.DropHandler) {
	c.queue.OnDropped(h)
}

// Drain replays the offline queue now. Recovery signals do this automatically.
func (c *Client) Drain(ctx context.Context) queue.DrainResult {
	return c.queue.Drain(ctx)
}

// EvictExpired drops expired cached configs and uncollected deferred outcomes
// and returns how many were removed.
func (c *Client) EvictExpired() int {
	n := c.configs.EvictExpired()

	c.mu.Lock()
	n += c.pruneOutcomesLocked(c.clock.Now())
	c.mu.Unlock()
	return n
}

// Close stops pending replays. Requests still waiting are reported as failed to Await callers.
func (c *Client) Close() error {
	c.cancel()
	c.queue.Close()

	c.mu.Lock()
	pending := c.waiters
	c.waiters = make(map[string]*waiter)
	c.mu.Unlock()

	for _, w := range pending {
		w.settle(nil, context.Canceled)
	}
	return nil
}

func (c *Client) record(op string, state domain.OperationState, err error) {
	metrics.OperationsTotal.WithLabelValues(op, string(state)).Inc()
	if state == domain.StateDegraded {
		metrics.FallbacksTotal.WithLabelValues(op).Inc()
	}

	switch state {
	case domain.StateFailed:
		c.log.Warn("Operation failed", "operation", op, "error", err)
	case domain.StateDegraded:
		c.log.Info("Operation degraded to synthetic result", "operation", op, "error", err)
	default:
		c.log.Debug("Operation finished", "operation", op, "state", state)
	}
}

// canDegrade reports whether a failed call may be answered with synthetic data.
// Going offline and caller cancellation are never papered over.
func canDegrade(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	return !errors.Is(err, domain.ErrNetworkUnavailable) &&
		!errors.Is(err, domain.ErrNotInitialized) &&
		!errors.Is(err, context.Canceled)
}
