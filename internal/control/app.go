// Package control wires the client, its connectivity source and the health
// server into a runnable application.
package control

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vietddude/fitlink/internal/client"
	"github.com/vietddude/fitlink/internal/core/config"
	"github.com/vietddude/fitlink/internal/core/worker"
	"github.com/vietddude/fitlink/internal/health"
	"github.com/vietddude/fitlink/internal/infra/backend/retry"
	"github.com/vietddude/fitlink/internal/infra/backend/transport"
	"github.com/vietddude/fitlink/internal/infra/connectivity"
	"github.com/vietddude/fitlink/internal/infra/discovery"
	"github.com/vietddude/fitlink/internal/infra/queue"
)

// App is the main application struct that manages the client lifecycle.
type App struct {
	cfg          *config.AppConfig
	transport    *transport.Transport
	monitor      *connectivity.Monitor
	prober       *connectivity.Prober
	client       *client.Client
	pruner       *worker.Pruner
	healthMon    *health.Monitor
	healthServer *health.Server
	log          *slog.Logger

	cancel context.CancelFunc
	done   chan struct{}
}

// NewApp creates a new App with all dependencies initialized.
func NewApp(cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	log := slog.Default()

	// 1. Transport
	tr := transport.New(TransportConfig(cfg.Backend), log)

	// 2. Connectivity
	mon := connectivity.NewMonitor(log)

	// 3. Discovery
	disc := discovery.NewProbeDiscoverer(cfg.Backend.Candidates, tr, log)

	// 4. Client
	c := client.New(ClientConfig(cfg), tr, disc, mon, client.WithLogger(log))

	app := &App{
		cfg:       cfg,
		transport: tr,
		monitor:   mon,
		client:    c,
		log:       log.With("component", "app"),
	}

	// 5. Prober: re-runs discovery until a backend is found, then pings it.
	app.prober = connectivity.NewProber(app.probe, cfg.Connectivity.ProbeInterval, log)

	// 6. Cache pruner
	app.pruner = worker.NewPruner(c, cfg.Cache.SweepInterval, log)

	// 7. Health server
	app.healthMon = health.NewMonitor(c, tr)
	app.healthServer = health.NewServer(app.healthMon, cfg.Server.Port)

	return app, nil
}

// TransportConfig maps the backend section onto transport settings.
func TransportConfig(b config.BackendConfig) transport.Config {
	return transport.Config{
		RequestTimeout:      b.RequestTimeout,
		UploadTimeout:       b.UploadTimeout,
		ProbeTimeout:        b.ProbeTimeout,
		RateLimit:           b.RateLimit,
		RateBurst:           b.RateBurst,
		BreakerMinRequests:  b.Breaker.MinRequests,
		BreakerFailureRatio: b.Breaker.FailureRatio,
		BreakerInterval:     b.Breaker.Interval,
		BreakerOpenTimeout:  b.Breaker.OpenTimeout,
	}
}

// ClientConfig maps retry, queue, cache and fallback sections onto client settings.
func ClientConfig(cfg *config.AppConfig) client.Config {
	return client.Config{
		Retry: retry.Policy{
			MaxRetries:    cfg.Retry.MaxRetries,
			BaseDelay:     cfg.Retry.BaseDelay,
			MaxDelay:      cfg.Retry.MaxDelay,
			BackoffFactor: cfg.Retry.BackoffFactor,
		},
		Queue: queue.Config{
			MaxRetries: cfg.Queue.MaxRetries,
			RetryDelay: cfg.Queue.RetryDelay,
		},
		ConfigTTL:      cfg.Cache.ConfigTTL,
		FrameFallback:  cfg.FrameFallbackEnabled(),
		ConfigFallback: cfg.ConfigFallbackEnabled(),
		AuthToken:      cfg.Backend.AuthToken,
		OutcomeTTL:     cfg.Queue.OutcomeTTL,
	}
}

func (a *App) probe(ctx context.Context) error {
	if !a.client.Initialize(ctx) {
		return fmt.Errorf("no backend candidate answered")
	}
	return a.transport.Ping(ctx, a.transport.BaseURL())
}

// Client returns the backend client.
func (a *App) Client() *client.Client {
	return a.client
}

// Connectivity returns the connectivity monitor.
func (a *App) Connectivity() *connectivity.Monitor {
	return a.monitor
}

// Health returns the current health report.
func (a *App) Health(ctx context.Context) health.Report {
	return a.healthMon.CheckHealth(ctx)
}

// Ping checks a single backend candidate.
func (a *App) Ping(ctx context.Context, baseURL string) error {
	return a.transport.Ping(ctx, baseURL)
}

// WatchConnectivity feeds probe results into the connectivity monitor until ctx is done.
// Recovery transitions drain the offline queue.
func (a *App) WatchConnectivity(ctx context.Context) {
	a.monitor.Run(ctx, a.prober.Events(ctx))
}

// Start initializes the client and starts the connectivity prober and the health server.
// A failed initialization is not fatal: the prober keeps retrying discovery.
func (a *App) Start(ctx context.Context) error {
	a.log.Info("Starting fitlink", "candidates", a.cfg.Backend.Candidates, "port", a.cfg.Server.Port)

	if !a.client.Initialize(ctx) {
		a.log.Warn("No backend reachable yet, requests will be queued")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	a.done = make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.WatchConnectivity(runCtx)
	}()
	go func() {
		defer wg.Done()
		a.pruner.Start(runCtx)
	}()
	go func() {
		wg.Wait()
		close(a.done)
	}()

	go func() {
		if err := a.healthServer.Start(); err != nil {
			a.log.Error("Health server failed", "error", err)
		}
	}()

	return nil
}

// Stop gracefully stops the application.
func (a *App) Stop(ctx context.Context) error {
	a.log.Info("Stopping fitlink")

	if a.cancel != nil {
		a.cancel()
		select {
		case <-a.done:
		case <-ctx.Done():
		}
	}

	if err := a.client.Close(); err != nil {
		a.log.Error("Failed to close client", "error", err)
	}
	if err := a.transport.Close(); err != nil {
		a.log.Error("Failed to close transport", "error", err)
	}

	if a.healthServer != nil {
		if err := a.healthServer.Stop(ctx); err != nil {
			a.log.Error("Failed to stop health server", "error", err)
			return err
		}
	}

	return nil
}
