package application

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTimingValidator_Guards(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	nowMs := float64(now.UnixMilli())
	v := TimingValidator{FutureSkew: 2 * time.Minute}

	cases := []struct {
		name      string
		opened    any
		submitted any
		reason    string
	}{
		{"missing", nil, nowMs, TimingInvalidType},
		{"bool", true, nowMs, TimingInvalidType},
		{"not a number", "soon", nowMs, TimingInvalidType},
		{"nan", math.NaN(), nowMs, TimingInvalidType},
		{"inf", nowMs, math.Inf(1), TimingInvalidType},
		{"zero", 0.0, nowMs, TimingInvalidValue},
		{"negative", nowMs, -5.0, TimingInvalidValue},
		{"opened in future", nowMs + 3*60_000, nowMs + 4*60_000, TimingOpenedInFuture},
		{"submitted in future", nowMs, nowMs + 3*60_000, TimingSubmitInFuture},
		{"submitted before opened", nowMs - 1000, nowMs - 2000, TimingSubmitBeforeOpen},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := v.Validate(tc.opened, tc.submitted, now)
			assert.False(t, res.Valid)
			assert.Equal(t, tc.reason, res.Reason)
		})
	}
}

func TestTimingValidator_AcceptsValid(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	nowMs := float64(now.UnixMilli())
	v := TimingValidator{FutureSkew: 2 * time.Minute}

	res := v.Validate(nowMs-12_000, nowMs, now)
	assert.True(t, res.Valid)
	assert.Equal(t, 12*time.Second, res.SubmitDelta)

	// delta 0 é estruturalmente válido
	res = v.Validate(nowMs, nowMs, now)
	assert.True(t, res.Valid)
	assert.Equal(t, time.Duration(0), res.SubmitDelta)

	// skew permitido
	res = v.Validate(nowMs+60_000, nowMs+61_000, now)
	assert.True(t, res.Valid)

	// strings numéricas e inteiros
	res = v.Validate("1699999990000", int64(1_700_000_000_000), now)
	assert.True(t, res.Valid)
	assert.Equal(t, 10*time.Second, res.SubmitDelta)
}
