package application

import (
	"context"
	"testing"
	"time"

	"lead-gateway/intake/domain"
)

type blockingPool struct {
}

func (p *blockingPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case <-ctx.Done():
		return nil, false
	case <-time.After(5 * time.Second):
		// não deve chegar aqui nos testes
		return nil, false
	}
}

type immediatePool struct {
	acquired int
	released int
}

func (p *immediatePool) Acquire(ctx context.Context) (func(), bool) {
	p.acquired++
	return func() { p.released++ }, true
}

type countingNotifier struct {
	calls int
	res   domain.DeliveryResult
}

func (n *countingNotifier) Send(context.Context, domain.Message) domain.DeliveryResult {
	n.calls++
	return n.res
}

func TestDeliveryGate_Acquire_AllowsWhenNoPool(t *testing.T) {
	gate := DeliveryGate{}
	release, ok := gate.Acquire(context.Background())
	if !ok {
		t.Fatalf("expected ok")
	}
	release()
}

func TestDeliveryGate_Acquire_UsesTimeout(t *testing.T) {
	gate := DeliveryGate{Pool: &blockingPool{}, AcquireTimeout: 10 * time.Millisecond}
	if _, ok := gate.Acquire(context.Background()); ok {
		t.Fatalf("expected timeout and ok=false")
	}
}

func TestDeliveryGate_Send_ReleasesSlot(t *testing.T) {
	pool := &immediatePool{}
	n := &countingNotifier{res: domain.DeliveryResult{OK: true}}
	gate := DeliveryGate{Pool: pool}

	res, acquired := gate.Send(context.Background(), n, domain.Message{})
	if !acquired || !res.OK {
		t.Fatalf("expected acquired and ok, got %v / %+v", acquired, res)
	}
	if pool.acquired != 1 || pool.released != 1 || n.calls != 1 {
		t.Fatalf("expected one acquire, one release, one send; got %d/%d/%d", pool.acquired, pool.released, n.calls)
	}
}

func TestDeliveryGate_Send_SkipsNotifierWithoutSlot(t *testing.T) {
	n := &countingNotifier{}
	gate := DeliveryGate{Pool: &blockingPool{}, AcquireTimeout: 5 * time.Millisecond}

	if _, acquired := gate.Send(context.Background(), n, domain.Message{}); acquired {
		t.Fatalf("expected no slot")
	}
	if n.calls != 0 {
		t.Fatalf("expected notifier not to be called, got %d", n.calls)
	}
}
