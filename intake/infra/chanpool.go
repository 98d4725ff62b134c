package infra

import (
	"context"
	"sync"
)

// ChanPool limita quantas entregas ao provedor de mensagens ficam em voo ao
// mesmo tempo. A ocupação aparece em /api/health.
type ChanPool struct {
	sem chan struct{}
}

// NewChanPool cria um pool baseado em channel com capacidade `max`.
func NewChanPool(max int) *ChanPool {
	if max <= 0 {
		max = 1
	}
	return &ChanPool{sem: make(chan struct{}, max)}
}

// Acquire devolve um release idempotente: um defer duplicado não libera
// a vaga de outra entrega.
func (p *ChanPool) Acquire(ctx context.Context) (func(), bool) {
	select {
	case p.sem <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-p.sem }) }, true
	case <-ctx.Done():
		return nil, false
	}
}

func (p *ChanPool) InFlight() int { return len(p.sem) }
func (p *ChanPool) Capacity() int { return cap(p.sem) }
