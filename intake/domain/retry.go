package domain

import (
	"strconv"
	"strings"
	"time"
)

// formato IMF-fixdate, o mesmo de http.TimeFormat
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// RetryPolicy define tentativas, timeout por tentativa e backoff de entrega.
type RetryPolicy struct {
	MaxAttempts int
	Timeout     time.Duration
	BaseBackoff time.Duration
	// MaxDelay limita tanto o backoff exponencial quanto o Retry-After do servidor.
	// Se 0, não há limite.
	MaxDelay time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Timeout:     8 * time.Second,
		BaseBackoff: 500 * time.Millisecond,
		MaxDelay:    30 * time.Second,
	}
}

// Retryable informa se um status HTTP justifica nova tentativa.
func Retryable(status int) bool {
	return status == StatusTooManyRequests || status >= 500
}

// Delay calcula a espera antes da próxima tentativa, depois de `attempt` (1-based) falhar.
//
// Em 429 com Retry-After válido (segundos ou HTTP-date) usa o valor do servidor;
// caso contrário usa BaseBackoff * 2^(attempt-1).
func (p RetryPolicy) Delay(attempt, status int, retryAfter string, now time.Time) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	if status == StatusTooManyRequests {
		if d, ok := parseRetryAfter(retryAfter, now); ok {
			return p.clamp(d)
		}
	}

	d := p.BaseBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	return p.clamp(d)
}

func (p RetryPolicy) clamp(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

func parseRetryAfter(v string, now time.Time) (time.Duration, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(v); err == nil {
		if secs < 0 {
			return 0, false
		}
		return time.Duration(secs) * time.Second, true
	}
	at, err := time.Parse(httpDateLayout, v)
	if err != nil {
		return 0, false
	}
	return at.Sub(now), true
}
