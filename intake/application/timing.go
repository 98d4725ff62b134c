package application

import (
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	TimingInvalidType      = "invalid_timestamp_type"
	TimingInvalidValue     = "invalid_timestamp_value"
	TimingOpenedInFuture   = "opened_at_in_future"
	TimingSubmitInFuture   = "submitted_at_in_future"
	TimingSubmitBeforeOpen = "submitted_before_opened"
)

// TimingValidator valida openedAt/submittedAt (ms epoch enviados pelo cliente)
// contra o relógio do servidor. É validação estrutural, não sinal de suspeita.
type TimingValidator struct {
	FutureSkew time.Duration
}

type TimingResult struct {
	Valid       bool
	Reason      string
	SubmitDelta time.Duration
}

// Validate aplica as guardas em ordem; a primeira falha vence.
func (v TimingValidator) Validate(openedAt, submittedAt any, now time.Time) TimingResult {
	opened, ok1 := parseMillis(openedAt)
	submitted, ok2 := parseMillis(submittedAt)
	if !ok1 || !ok2 {
		return TimingResult{Reason: TimingInvalidType}
	}
	if opened <= 0 || submitted <= 0 {
		return TimingResult{Reason: TimingInvalidValue}
	}

	limit := float64(now.UnixMilli()) + float64(v.FutureSkew.Milliseconds())
	if opened > limit {
		return TimingResult{Reason: TimingOpenedInFuture}
	}
	if submitted > limit {
		return TimingResult{Reason: TimingSubmitInFuture}
	}

	delta := submitted - opened
	if delta < 0 {
		return TimingResult{Reason: TimingSubmitBeforeOpen}
	}
	return TimingResult{
		Valid:       true,
		SubmitDelta: time.Duration(delta * float64(time.Millisecond)),
	}
}

type floatNumber interface {
	Float64() (float64, error)
}

func parseMillis(v any) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case floatNumber:
		x, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = x
	case string:
		x, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		f = x
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
