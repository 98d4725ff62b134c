package domain

import (
	"context"
	"time"
)

// Metrics são contadores de processo, monotônicos, zerados só no restart.
type Metrics struct {
	Total      int64 `json:"total"`
	Sent       int64 `json:"sent"`
	Quarantine int64 `json:"quarantine"`
	Blocked    int64 `json:"blocked"`
	Dedup      int64 `json:"dedup"`
	Skipped    int64 `json:"skipped"`
	Failed     int64 `json:"failed"`
}

// Counter devolve o nome do contador incrementado por um tipo de desfecho.
func Counter(kind OutcomeKind) string {
	switch kind {
	case OutcomeSent:
		return "sent"
	case OutcomeQuarantined:
		return "quarantine"
	case OutcomeDuplicate:
		return "dedup"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "blocked"
	}
}

// StatsEvent representa o desfecho de uma submissão.
//
// Observação: Reason tem cardinalidade baixa e fixa (códigos de ramo), nunca PII.
type StatsEvent struct {
	Kind   OutcomeKind
	Reason string
	At     time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de intake.
//
// Implementações podem armazenar em Redis, memória, etc.
// Quem chama deve tratar erro como best-effort (não derrubar request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

// MetricsReader expõe um snapshot consistente dos contadores.
type MetricsReader interface {
	Snapshot() Metrics
}

// ReasonReader expõe contadores por código de ramo (honeypot, ip_rate_limit...).
type ReasonReader interface {
	ByReason() map[string]int64
}
