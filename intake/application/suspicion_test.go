package application

import (
	"testing"
	"time"

	"lead-gateway/intake/domain"

	"github.com/stretchr/testify/assert"
)

func TestSuspicionPolicy_Evaluate(t *testing.T) {
	p := SuspicionPolicy{FastSubmit: 4 * time.Second, MaxOpenWindow: 2 * time.Hour}
	allow := func() bool { return true }

	assert.Empty(t, p.Evaluate(10*time.Second, false, "", allow))
	assert.Equal(t, domain.Verdict{domain.ReasonFastSubmit}, p.Evaluate(time.Second, false, "", allow))
	assert.Equal(t, domain.Verdict{domain.ReasonStaleForm}, p.Evaluate(3*time.Hour, false, "", allow))
	assert.Equal(t, domain.Verdict{"client_suspected"}, p.Evaluate(10*time.Second, true, "", allow))
	assert.Equal(t,
		domain.Verdict{domain.ReasonFastSubmit, "client_suspected:fast_submit"},
		p.Evaluate(time.Second, true, "fast_submit", allow))
	assert.Equal(t, domain.Verdict{"client_suspected:pastescript"}, p.Evaluate(10*time.Second, true, " Paste!<script>", allow))
}

func TestSuspicionPolicy_GlobalLimitOnlyWhenClean(t *testing.T) {
	p := SuspicionPolicy{FastSubmit: 4 * time.Second, MaxOpenWindow: 2 * time.Hour}

	calls := 0
	deny := func() bool { calls++; return false }

	assert.Equal(t, domain.Verdict{domain.ReasonGlobalLimit}, p.Evaluate(10*time.Second, false, "", deny))
	assert.Equal(t, 1, calls)

	assert.Equal(t, domain.Verdict{domain.ReasonFastSubmit}, p.Evaluate(time.Second, false, "", deny))
	assert.Equal(t, 1, calls, "global limiter must not be consulted when already suspicious")
}
