package retry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"testing"
	"time"

	"github.com/vietddude/fitlink/internal/core/clock"
	"github.com/vietddude/fitlink/internal/core/domain"
)

type staticConn struct{ connected bool }

func (s *staticConn) IsConnected() bool { return s.connected }

var fastPolicy = Policy{
	MaxRetries:    3,
	BaseDelay:     time.Millisecond,
	MaxDelay:      5 * time.Millisecond,
	BackoffFactor: 2,
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err    error
		expect ErrorAction
	}{
		{&domain.HTTPError{Status: http.StatusUnauthorized}, ActionFatal},
		{&domain.HTTPError{Status: http.StatusBadRequest}, ActionFatal},
		{&domain.HTTPError{Status: http.StatusNotFound}, ActionFatal},
		{&domain.HTTPError{Status: http.StatusRequestEntityTooLarge}, ActionFatal},
		{fmt.Errorf("wrapped: %w", &domain.HTTPError{Status: http.StatusUnauthorized}), ActionFatal},
		{domain.ErrNetworkUnavailable, ActionFatal},
		{context.Canceled, ActionFatal},
		{fmt.Errorf("stat upload file: %w", fs.ErrNotExist), ActionFatal},
		{&fs.PathError{Op: "open", Path: "/tmp/v.mp4", Err: fs.ErrPermission}, ActionFatal},
		{&domain.HTTPError{Status: http.StatusInternalServerError}, ActionRetry},
		{&domain.HTTPError{Status: http.StatusTooManyRequests}, ActionRetry},
		{domain.ErrTimeout, ActionRetry},
		{errors.New("connection reset by peer"), ActionRetry},
	}

	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.expect {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.expect)
		}
	}
}

func TestExecute_RetriesThenSucceeds(t *testing.T) {
	e := NewExecutor(&staticConn{connected: true}, fastPolicy)

	calls := 0
	err := e.Execute(context.Background(), "test", func(ctx context.Context) error {
		calls++
		if calls <= 2 {
			return &domain.HTTPError{Status: http.StatusServiceUnavailable}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Errorf("expected 3 calls, got %d", calls)
	}
}

func TestExecute_NonRetryableStopsImmediately(t *testing.T) {
	e := NewExecutor(&staticConn{connected: true}, fastPolicy)

	for _, status := range []int{401, 400, 404, 413} {
		calls := 0
		err := e.Execute(context.Background(), "test", func(ctx context.Context) error {
			calls++
			return &domain.HTTPError{Status: status}
		})

		if got, _ := domain.StatusCode(err); got != status {
			t.Errorf("status %d: expected the original error, got %v", status, err)
		}
		if calls != 1 {
			t.Errorf("status %d: expected 1 call, got %d", status, calls)
		}
	}
}

func TestExecute_ExhaustionReturnsLastError(t *testing.T) {
	e := NewExecutor(&staticConn{connected: true}, fastPolicy)

	calls := 0
	err := e.Execute(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return fmt.Errorf("attempt %d: %w", calls, domain.ErrTimeout)
	})

	if calls != fastPolicy.MaxRetries+1 {
		t.Fatalf("expected %d calls, got %d", fastPolicy.MaxRetries+1, calls)
	}
	if !errors.Is(err, domain.ErrTimeout) {
		t.Fatalf("expected timeout, got %v", err)
	}
	if want := fmt.Sprintf("attempt %d", calls); err.Error()[:len(want)] != want {
		t.Errorf("expected last error, got %v", err)
	}
}

func TestExecute_MaxRetriesOverride(t *testing.T) {
	e := NewExecutor(&staticConn{connected: true}, fastPolicy)

	calls := 0
	_ = e.Execute(context.Background(), "frame", func(ctx context.Context) error {
		calls++
		return domain.ErrUnreachable
	}, MaxRetries(1))

	if calls != 2 {
		t.Errorf("expected 2 calls with one retry, got %d", calls)
	}
}

func TestExecute_OfflineFailsWithoutCalling(t *testing.T) {
	e := NewExecutor(&staticConn{connected: false}, fastPolicy)

	calls := 0
	err := e.Execute(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return nil
	})

	if !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
	if calls != 0 {
		t.Errorf("expected no calls while offline, got %d", calls)
	}
}

func TestExecute_ConnectivityLostBetweenAttempts(t *testing.T) {
	conn := &staticConn{connected: true}
	e := NewExecutor(conn, fastPolicy)

	calls := 0
	err := e.Execute(context.Background(), "test", func(ctx context.Context) error {
		calls++
		conn.connected = false
		return domain.ErrUnreachable
	})

	if !errors.Is(err, domain.ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}
}

func TestExecute_ContextCancelledDuringBackoff(t *testing.T) {
	e := NewExecutor(&staticConn{connected: true}, Policy{
		MaxRetries:    5,
		BaseDelay:     time.Hour,
		MaxDelay:      time.Hour,
		BackoffFactor: 2,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := e.Execute(ctx, "test", func(ctx context.Context) error {
		return domain.ErrUnreachable
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestDelay_Bounds(t *testing.T) {
	p := Policy{MaxRetries: 10, BaseDelay: 100 * time.Millisecond, MaxDelay: 5 * time.Second, BackoffFactor: 2}

	for _, r := range []float64{0, 0.5, 0.999} {
		e := NewExecutor(&staticConn{connected: true}, p, WithRand(clock.Fixed(r)))
		for k := 0; k < 8; k++ {
			raw := time.Duration(float64(p.BaseDelay) * float64(int(1)<<k))
			lower := min(raw, p.MaxDelay)
			upper := min(time.Duration(float64(raw)*1.1), p.MaxDelay)

			d := e.Delay(k)
			if d < lower || d > upper {
				t.Errorf("r=%v k=%d: delay %v outside [%v, %v]", r, k, d, lower, upper)
			}
		}
	}
}

func TestDelay_ClampedAtMax(t *testing.T) {
	p := Policy{BaseDelay: time.Second, MaxDelay: 3 * time.Second, BackoffFactor: 10}
	e := NewExecutor(&staticConn{connected: true}, p, WithRand(clock.Fixed(0.9)))

	if d := e.Delay(4); d != 3*time.Second {
		t.Errorf("expected clamp to 3s, got %v", d)
	}
}

func TestSetPolicy_HotUpdate(t *testing.T) {
	e := NewExecutor(&staticConn{connected: true}, fastPolicy)
	e.SetPolicy(Policy{MaxRetries: 0, BaseDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1})

	calls := 0
	_ = e.Execute(context.Background(), "test", func(ctx context.Context) error {
		calls++
		return domain.ErrUnreachable
	})
	if calls != 1 {
		t.Errorf("expected a single attempt after policy update, got %d", calls)
	}
}
