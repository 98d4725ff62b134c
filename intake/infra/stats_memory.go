package infra

import (
	"context"
	"sync"

	"lead-gateway/intake/domain"
)

// MemoryStatsStore mantém os contadores de processo do pipeline.
//
// Não faz expiração: os valores só voltam a zero no restart.
type MemoryStatsStore struct {
	mu       sync.Mutex
	total    domain.Metrics
	byReason map[string]int64
}

func NewMemoryStatsStore() *MemoryStatsStore {
	return &MemoryStatsStore{byReason: make(map[string]int64)}
}

// Record incrementa Total e exatamente um contador de desfecho.
func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.total.Total++
	switch domain.Counter(ev.Kind) {
	case "sent":
		s.total.Sent++
	case "quarantine":
		s.total.Quarantine++
	case "dedup":
		s.total.Dedup++
	case "skipped":
		s.total.Skipped++
	case "failed":
		s.total.Failed++
	default:
		s.total.Blocked++
	}
	if ev.Reason != "" {
		s.byReason[ev.Reason]++
	}
	return nil
}

// Snapshot implementa domain.MetricsReader.
func (s *MemoryStatsStore) Snapshot() domain.Metrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// ByReason implementa domain.ReasonReader.
func (s *MemoryStatsStore) ByReason() map[string]int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int64, len(s.byReason))
	for k, v := range s.byReason {
		out[k] = v
	}
	return out
}

// TeeStats grava o mesmo evento em vários stores; o primeiro erro é devolvido,
// mas todos os stores recebem o evento.
type TeeStats []domain.StatsStore

func (t TeeStats) Record(ctx context.Context, ev domain.StatsEvent) error {
	var first error
	for _, s := range t {
		if s == nil {
			continue
		}
		if err := s.Record(ctx, ev); err != nil && first == nil {
			first = err
		}
	}
	return first
}
