package domain

// Camada de domínio do rate limit.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidRule = errors.New("invalid rate limit rule")

type Key string

// Limiter representa algo que pode decidir se uma ação é permitida agora.
// Usado pelo throttle HTTP por IP (token bucket).
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP).
type LimiterStore interface {
	Get(Key) Limiter
}

type Decision struct {
	Allowed bool
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}

// RateLimitRule limita a Max eventos dentro de uma janela deslizante.
type RateLimitRule struct {
	Window time.Duration
	Max    int
}

func (r RateLimitRule) String() string {
	return fmt.Sprintf("%d/%s", r.Max, r.Window)
}

// CheckResult é o resultado de WindowLimiter.Check.
// Rule só é preenchida quando Allowed=false.
type CheckResult struct {
	Allowed bool
	Rule    RateLimitRule
}

// WindowLimiter conta eventos por chave em uma ou mais janelas deslizantes.
// A ordem das regras é significativa: a primeira violada é a reportada.
type WindowLimiter interface {
	Check(key string, now time.Time) CheckResult
}

// DuplicateChecker suprime submissões repetidas dentro de uma janela curta.
type DuplicateChecker interface {
	IsDuplicate(fingerprint string, now time.Time) bool
}

// ParseRules lê regras no formato "1m:3,1h:10,24h:30" (janela:max), preservando a ordem.
func ParseRules(raw string) ([]RateLimitRule, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	var rules []RateLimitRule
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		window, max, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("%w: %q must follow WINDOW:MAX", ErrInvalidRule, item)
		}
		d, err := time.ParseDuration(strings.TrimSpace(window))
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: bad window in %q", ErrInvalidRule, item)
		}
		n, err := strconv.Atoi(strings.TrimSpace(max))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: bad max in %q", ErrInvalidRule, item)
		}
		rules = append(rules, RateLimitRule{Window: d, Max: n})
	}
	return rules, nil
}
