package infra

import (
	"context"
	"testing"
	"time"

	"lead-gateway/intake/domain"
)

var _ domain.SlotPool = (*ChanPool)(nil)
var _ domain.SlotUsage = (*ChanPool)(nil)

func TestChanPool_BlocksWhenFullUntilRelease(t *testing.T) {
	p := NewChanPool(1)

	release, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected first acquire to succeed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, ok := p.Acquire(ctx); ok {
		t.Fatalf("expected acquire on full pool to fail after timeout")
	}

	release()
	release2, ok := p.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected acquire after release to succeed")
	}
	release2()
}

func TestChanPool_ReportsUsage(t *testing.T) {
	p := NewChanPool(3)
	if p.Capacity() != 3 || p.InFlight() != 0 {
		t.Fatalf("expected 0/3, got %d/%d", p.InFlight(), p.Capacity())
	}

	r1, _ := p.Acquire(context.Background())
	r2, _ := p.Acquire(context.Background())
	if p.InFlight() != 2 {
		t.Fatalf("expected 2 in flight, got %d", p.InFlight())
	}

	r1()
	r2()
	if p.InFlight() != 0 {
		t.Fatalf("expected 0 in flight after release, got %d", p.InFlight())
	}
}

func TestChanPool_ReleaseIsIdempotent(t *testing.T) {
	p := NewChanPool(2)

	r1, _ := p.Acquire(context.Background())
	_, _ = p.Acquire(context.Background())

	r1()
	r1()
	if p.InFlight() != 1 {
		t.Fatalf("double release freed another delivery's slot: in flight %d", p.InFlight())
	}
}

func TestNewChanPool_ClampsCapacity(t *testing.T) {
	if got := NewChanPool(0).Capacity(); got != 1 {
		t.Fatalf("expected capacity 1, got %d", got)
	}
}
