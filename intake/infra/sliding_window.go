package infra

import (
	"sort"
	"sync"
	"time"

	"lead-gateway/intake/domain"
)

// SlidingWindow é um rate limiter por chave com várias janelas deslizantes
// compartilhando o mesmo histórico de eventos.
//
// Memória limitada: histórico além da maior janela é descartado e o número de
// chaves é limitado a maxKeys (as chaves com atividade mais antiga saem primeiro).
type SlidingWindow struct {
	mu         sync.Mutex
	hits       map[string][]time.Time
	rules      []domain.RateLimitRule
	maxWindow  time.Duration
	maxKeys    int
	sweepEvery time.Duration
	lastSweep  time.Time
}

type SlidingWindowOption func(*SlidingWindow)

func WithMaxKeys(n int) SlidingWindowOption {
	return func(l *SlidingWindow) { l.maxKeys = n }
}

func WithSweepEvery(d time.Duration) SlidingWindowOption {
	return func(l *SlidingWindow) { l.sweepEvery = d }
}

func NewSlidingWindow(rules []domain.RateLimitRule, opts ...SlidingWindowOption) *SlidingWindow {
	l := &SlidingWindow{
		hits:       make(map[string][]time.Time),
		rules:      append([]domain.RateLimitRule(nil), rules...),
		maxKeys:    10_000,
		sweepEvery: 10 * time.Second,
	}
	for _, r := range l.rules {
		if r.Window > l.maxWindow {
			l.maxWindow = r.Window
		}
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *SlidingWindow) Rules() []domain.RateLimitRule {
	return append([]domain.RateLimitRule(nil), l.rules...)
}

// Check registra um evento para key em now e avalia as regras na ordem configurada.
// Eventos negados também contam.
func (l *SlidingWindow) Check(key string, now time.Time) domain.CheckResult {
	if key == "" || len(l.rules) == 0 {
		return domain.CheckResult{Allowed: true}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.sweepEvery {
		l.sweep(now)
		l.lastSweep = now
	}

	history := prune(l.hits[key], now.Add(-l.maxWindow))
	history = append(history, now)
	l.hits[key] = history

	res := domain.CheckResult{Allowed: true}
	for _, rule := range l.rules {
		if countSince(history, now.Add(-rule.Window)) > rule.Max {
			res = domain.CheckResult{Allowed: false, Rule: rule}
			break
		}
	}

	if l.maxKeys > 0 && len(l.hits) > l.maxKeys {
		l.evict()
	}
	return res
}

// Len devolve o número de chaves rastreadas.
func (l *SlidingWindow) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.hits)
}

func (l *SlidingWindow) sweep(now time.Time) {
	cutoff := now.Add(-l.maxWindow)
	for k, history := range l.hits {
		kept := prune(history, cutoff)
		if len(kept) == 0 {
			delete(l.hits, k)
			continue
		}
		l.hits[k] = kept
	}
}

func (l *SlidingWindow) evict() {
	type keyLast struct {
		key  string
		last time.Time
	}
	keys := make([]keyLast, 0, len(l.hits))
	for k, history := range l.hits {
		var last time.Time
		if n := len(history); n > 0 {
			last = history[n-1]
		}
		keys = append(keys, keyLast{key: k, last: last})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].last.Before(keys[j].last) })

	for _, k := range keys {
		if len(l.hits) <= l.maxKeys {
			return
		}
		delete(l.hits, k.key)
	}
}

// prune mantém apenas eventos estritamente depois de cutoff, reaproveitando o slice.
func prune(history []time.Time, cutoff time.Time) []time.Time {
	kept := history[:0]
	for _, t := range history {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	return kept
}

func countSince(history []time.Time, since time.Time) int {
	n := 0
	for _, t := range history {
		if t.After(since) {
			n++
		}
	}
	return n
}
