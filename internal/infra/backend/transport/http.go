// Package transport sends requests to the analysis backend over HTTP.
//
// This package contains:
//   - Transport: JSON and multipart requests with timeouts, bearer auth, a
//     client-side rate limiter and a circuit breaker
//   - Monitor: latency and error-class tracking for status reporting
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/vietddude/fitlink/internal/core/domain"
	"github.com/vietddude/fitlink/internal/metrics"
)

const maxResponseBytes = 10 << 20

// Config holds transport settings.
type Config struct {
	RequestTimeout time.Duration
	UploadTimeout  time.Duration
	ProbeTimeout   time.Duration
	RateLimit      float64 // requests per second, 0 = unlimited
	RateBurst      int

	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerInterval     time.Duration
	BreakerOpenTimeout  time.Duration
}

// DefaultConfig returns sensible transport defaults.
func DefaultConfig() Config {
	return Config{
		RequestTimeout:      30 * time.Second,
		UploadTimeout:       5 * time.Minute,
		ProbeTimeout:        5 * time.Second,
		RateBurst:           10,
		BreakerMinRequests:  10,
		BreakerFailureRatio: 0.6,
		BreakerInterval:     time.Minute,
		BreakerOpenTimeout:  30 * time.Second,
	}
}

// Transport executes backend operations against the discovered base URL.
type Transport struct {
	cfg        Config
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	log        *slog.Logger

	mu      sync.RWMutex
	baseURL string
	token   string

	Monitor *Monitor
}

// New creates a transport. The base URL is set later, once discovery succeeds.
func New(cfg Config, log *slog.Logger) *Transport {
	if log == nil {
		log = slog.Default()
	}
	log = log.With("component", "transport")

	limit := rate.Inf
	if cfg.RateLimit > 0 {
		limit = rate.Limit(cfg.RateLimit)
	}
	burst := cfg.RateBurst
	if burst <= 0 {
		burst = 1
	}

	t := &Transport{
		cfg: cfg,
		httpClient: &http.Client{
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		limiter: rate.NewLimiter(limit, burst),
		log:     log,
		Monitor: NewMonitor(),
	}
	t.breaker = t.newBreaker("backend")
	metrics.BreakerState.WithLabelValues("backend").Set(0)
	return t
}

func (t *Transport) newBreaker(name string) *gobreaker.CircuitBreaker[[]byte] {
	return gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    t.cfg.BreakerInterval,
		Timeout:     t.cfg.BreakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < t.cfg.BreakerMinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= t.cfg.BreakerFailureRatio
		},
		// 4xx answers prove the backend is alive; only transport failures and 5xx trip.
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var httpErr *domain.HTTPError
			return errors.As(err, &httpErr) && httpErr.ClientError()
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			t.log.Info("Circuit breaker state change", "from", from.String(), "to", to.String())
			metrics.BreakerState.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})
}

func breakerStateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}

// SetBaseURL points the transport at a backend.
func (t *Transport) SetBaseURL(u string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.baseURL = strings.TrimRight(u, "/")
}

// BaseURL returns the current backend URL, empty when unknown.
func (t *Transport) BaseURL() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.baseURL
}

// SetToken sets the bearer token attached to every request. Empty clears it.
func (t *Transport) SetToken(token string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.token = token
}

func (t *Transport) endpoint(path string) (string, string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.baseURL == "" {
		return "", "", domain.ErrNotInitialized
	}
	return t.baseURL + path, t.token, nil
}

// Do executes a JSON operation and returns the raw response body.
func (t *Transport) Do(ctx context.Context, op Operation) ([]byte, error) {
	url, token, err := t.endpoint(op.Path)
	if err != nil {
		return nil, err
	}

	var payload []byte
	if op.Body != nil {
		payload, err = json.Marshal(op.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal %s request: %w", op.Name, err)
		}
	}

	timeout := op.Timeout
	if timeout == 0 {
		timeout = t.cfg.RequestTimeout
	}

	return t.execute(ctx, op.Name, timeout, func(ctx context.Context) (*http.Request, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, op.Method, url, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	})
}

// Upload streams a file as multipart/form-data, reporting file bytes sent to onProgress.
func (t *Transport) Upload(
	ctx context.Context,
	op UploadOperation,
	onProgress func(domain.UploadProgress),
) ([]byte, error) {
	url, token, err := t.endpoint(op.Path)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(op.FilePath)
	if err != nil {
		return nil, fmt.Errorf("stat upload file: %w", err)
	}

	timeout := op.Timeout
	if timeout == 0 {
		timeout = t.cfg.UploadTimeout
	}

	return t.execute(ctx, op.Name, timeout, func(ctx context.Context) (*http.Request, error) {
		file, err := os.Open(op.FilePath)
		if err != nil {
			return nil, fmt.Errorf("open upload file: %w", err)
		}

		pr, pw := io.Pipe()
		mw := multipart.NewWriter(pw)

		go func() {
			defer file.Close()
			err := writeMultipart(mw, op, file, &progressReader{
				r:          file,
				total:      info.Size(),
				onProgress: onProgress,
			})
			pw.CloseWithError(err)
		}()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, pr)
		if err != nil {
			pr.CloseWithError(err)
			return nil, err
		}
		// Content-Type carries the multipart boundary; no JSON header here.
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Accept", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return req, nil
	})
}

func writeMultipart(mw *multipart.Writer, op UploadOperation, file *os.File, body io.Reader) error {
	for k, v := range op.Fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile(op.FileField, filepath.Base(file.Name()))
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, body); err != nil {
		return err
	}
	return mw.Close()
}

type progressReader struct {
	r          io.Reader
	sent       int64
	total      int64
	onProgress func(domain.UploadProgress)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		if p.onProgress != nil {
			p.onProgress(domain.UploadProgress{Sent: p.sent, Total: p.total})
		}
	}
	return n, err
}

// execute runs one HTTP exchange through the limiter and the breaker, bounded by timeout.
func (t *Transport) execute(
	ctx context.Context,
	name string,
	timeout time.Duration,
	build func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%s: rate limiter: %w", name, err)
	}

	body, err := t.breaker.Execute(func() ([]byte, error) {
		return t.roundTrip(ctx, name, timeout, build)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s: %w: %v", name, domain.ErrUnreachable, err)
	}
	return body, err
}

func (t *Transport) roundTrip(
	ctx context.Context,
	name string,
	timeout time.Duration,
	build func(ctx context.Context) (*http.Request, error),
) ([]byte, error) {
	start := time.Now()

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := build(reqCtx)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", name, err)
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		t.Monitor.RecordFailure(0)
		metrics.RequestsTotal.WithLabelValues(name, "error").Inc()
		return nil, t.transportError(ctx, reqCtx, name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	latency := time.Since(start)
	metrics.RequestLatency.WithLabelValues(name).Observe(latency.Seconds())
	metrics.RequestsTotal.WithLabelValues(name, strconv.Itoa(resp.StatusCode)).Inc()
	if err != nil {
		t.Monitor.RecordFailure(0)
		return nil, t.transportError(ctx, reqCtx, name, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		t.Monitor.RecordFailure(resp.StatusCode)
		t.log.Debug("Backend returned error status", "operation", name, "status", resp.StatusCode)
		return nil, &domain.HTTPError{Operation: name, Status: resp.StatusCode, Body: string(body)}
	}

	t.Monitor.RecordSuccess(latency)
	return body, nil
}

func (t *Transport) transportError(parent, reqCtx context.Context, name string, err error) error {
	if parent.Err() != nil {
		return parent.Err()
	}
	if errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %v", name, domain.ErrTimeout, err)
	}
	return fmt.Errorf("%s: %w: %v", name, domain.ErrUnreachable, err)
}

// Ping issues the health check (GET /) against baseURL, bypassing the breaker.
func (t *Transport) Ping(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, t.cfg.ProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(baseURL, "/")+"/", nil)
	if err != nil {
		return fmt.Errorf("create health request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("health %s: %w", baseURL, domain.ErrTimeout)
		}
		return fmt.Errorf("health %s: %w: %v", baseURL, domain.ErrUnreachable, err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.HTTPError{Operation: "health", Status: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return fmt.Errorf("health %s: %w: body is not JSON", baseURL, domain.ErrUnreachable)
	}
	return nil
}

// BreakerState returns the circuit breaker state name.
func (t *Transport) BreakerState() string {
	return t.breaker.State().String()
}

// Close releases idle connections.
func (t *Transport) Close() error {
	t.httpClient.CloseIdleConnections()
	return nil
}

// Stats returns the request monitor snapshot.
func (t *Transport) Stats() MonitorStats {
	return t.Monitor.GetStats()
}
