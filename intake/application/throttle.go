package application

import (
	"context"
	"time"

	"lead-gateway/intake/domain"

	"github.com/rs/zerolog"
)

// Throttle concentra a regra do limite HTTP por cliente (token bucket).
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna uma decisão
// e registra a negação com o hash da chave, nunca o IP em claro.
type Throttle struct {
	Store      domain.LimiterStore
	RetryAfter time.Duration
	Hasher     Hasher
	Logger     zerolog.Logger
}

// retryHinter é implementado por stores que sabem quanto falta para o
// próximo token (infra.Store).
type retryHinter interface {
	RetryAfter() time.Duration
}

func (s Throttle) Decide(ctx context.Context, key domain.Key, route string) domain.Decision {
	if s.Store == nil {
		return domain.Decision{Allowed: true}
	}

	lim := s.Store.Get(key)
	if lim == nil || lim.Allow() {
		return domain.Decision{Allowed: true}
	}

	dec := domain.Decision{Allowed: false, RetryAfter: s.retryAfter()}
	logger := loggerFrom(ctx, s.Logger)
	logger.Warn().
		Str("event", "http_rate_limited").
		Str("ip_hash", s.Hasher.Hash(string(key))).
		Str("path", route).
		Dur("retry_after", dec.RetryAfter).
		Msg("http rate limited")
	return dec
}

func (s Throttle) retryAfter() time.Duration {
	if s.RetryAfter > 0 {
		return s.RetryAfter
	}
	if h, ok := s.Store.(retryHinter); ok {
		if d := h.RetryAfter(); d > 0 {
			return d
		}
	}
	return 1 * time.Second
}
