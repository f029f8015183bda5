package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (s *countingSweeper) EvictExpired() int {
	s.calls.Add(1)
	return 1
}

func TestPruner_SweepsOnInterval(t *testing.T) {
	s := &countingSweeper{}
	p := NewPruner(s, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Start(ctx)
		close(done)
	}()

	deadline := time.Now().Add(time.Second)
	for s.calls.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()
	<-done

	if s.calls.Load() < 3 {
		t.Errorf("expected at least 3 sweeps, got %d", s.calls.Load())
	}
}

func TestPruner_DisabledReturnsImmediately(t *testing.T) {
	s := &countingSweeper{}
	p := NewPruner(s, 0, nil)

	done := make(chan struct{})
	go func() {
		p.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled pruner did not return")
	}
	if s.calls.Load() != 0 {
		t.Errorf("expected no sweeps, got %d", s.calls.Load())
	}
}
