package application

import (
	"context"
	"time"

	"lead-gateway/intake/domain"
)

// DeliveryGate limita quantas entregas ao provedor ficam em voo ao mesmo tempo,
// somando todas as requisições. Sem Pool, não limita nada.
type DeliveryGate struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
// - Se `AcquireTimeout <= 0`, espera indefinidamente (até ctx cancelar).
// - Se `AcquireTimeout > 0`, espera até o timeout.
// Retorna (release, ok). Se ok=false, nenhuma vaga foi adquirida.
func (g DeliveryGate) Acquire(ctx context.Context) (func(), bool) {
	if g.Pool == nil {
		return func() {}, true
	}
	if g.AcquireTimeout <= 0 {
		return g.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, g.AcquireTimeout)
	defer cancel()
	return g.Pool.Acquire(acqCtx)
}

// Send entrega msg respeitando o limite. ok=false em acquired indica que não houve vaga.
func (g DeliveryGate) Send(ctx context.Context, n domain.Notifier, msg domain.Message) (res domain.DeliveryResult, acquired bool) {
	release, ok := g.Acquire(ctx)
	if !ok {
		return domain.DeliveryResult{}, false
	}
	defer release()
	return n.Send(ctx, msg), true
}
