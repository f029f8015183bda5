package connectivity

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/vietddude/fitlink/internal/core/domain"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMonitor_OptimisticallyConnected(t *testing.T) {
	m := NewMonitor(nil)
	if !m.IsConnected() {
		t.Fatal("expected monitor to start connected")
	}
}

func TestMonitor_RecoveryFiresOncePerTransition(t *testing.T) {
	m := NewMonitor(nil)

	var recovered int
	m.OnRecovered(func() { recovered++ })

	// connected -> connected: no edge
	m.OnChange(domain.Online())
	if recovered != 0 {
		t.Fatalf("expected no recovery while already connected, got %d", recovered)
	}

	m.OnChange(domain.Offline())
	if m.IsConnected() {
		t.Fatal("expected disconnected")
	}
	m.OnChange(domain.Offline())

	m.OnChange(domain.NetworkStatus{Connected: true, Transport: domain.TransportWiFi})
	if recovered != 1 {
		t.Fatalf("expected 1 recovery, got %d", recovered)
	}

	// Repeated connected events do not re-fire
	m.OnChange(domain.NetworkStatus{Connected: true, Transport: domain.TransportCellular})
	if recovered != 1 {
		t.Fatalf("expected still 1 recovery, got %d", recovered)
	}

	m.OnChange(domain.Offline())
	m.OnChange(domain.Online())
	if recovered != 2 {
		t.Fatalf("expected 2 recoveries, got %d", recovered)
	}
	if got := m.Transitions(); got != 4 {
		t.Errorf("expected 4 transitions, got %d", got)
	}
}

func TestMonitor_InternetUnreachableCountsAsOffline(t *testing.T) {
	m := NewMonitor(nil)

	unreachable := false
	m.OnChange(domain.NetworkStatus{Connected: true, Transport: domain.TransportWiFi, InternetReachable: &unreachable})
	if m.IsConnected() {
		t.Fatal("expected captive network to count as offline")
	}

	if got := m.Status().Transport; got != domain.TransportWiFi {
		t.Errorf("expected status replaced wholesale, transport %q", got)
	}
}

func TestMonitor_RunConsumesEvents(t *testing.T) {
	m := NewMonitor(nil)

	var recovered atomic.Int32
	m.OnRecovered(func() { recovered.Add(1) })

	events := make(chan domain.NetworkStatus)
	done := make(chan struct{})
	go func() {
		m.Run(context.Background(), events)
		close(done)
	}()

	events <- domain.Offline()
	events <- domain.Online()
	close(events)
	<-done

	if got := recovered.Load(); got != 1 {
		t.Errorf("expected 1 recovery, got %d", got)
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	m := NewMonitor(nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx, make(chan domain.NetworkStatus))
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestProber_EmitsProbeResults(t *testing.T) {
	var fail atomic.Bool
	check := func(ctx context.Context) error {
		if fail.Load() {
			return errors.New("unreachable")
		}
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := NewProber(check, 10*time.Millisecond, nil)
	events := p.Events(ctx)

	first := <-events
	if !first.Reachable() {
		t.Fatalf("expected reachable status, got %+v", first)
	}

	fail.Store(true)
	deadline := time.After(time.Second)
	for {
		select {
		case s := <-events:
			if !s.Reachable() {
				cancel()
				for range events {
				}
				return
			}
		case <-deadline:
			t.Fatal("expected an unreachable status after failures began")
		}
	}
}

func TestProber_ClosesStreamOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewProber(func(context.Context) error { return nil }, time.Hour, nil)
	events := p.Events(ctx)

	<-events
	cancel()

	select {
	case _, ok := <-events:
		if ok {
			t.Fatal("expected closed stream")
		}
	case <-time.After(time.Second):
		t.Fatal("stream not closed after cancel")
	}
}
