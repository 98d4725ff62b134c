package infra

import (
	"fmt"
	"testing"
	"time"

	"lead-gateway/intake/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func TestSlidingWindow_EmptyKeyAlwaysAllowed(t *testing.T) {
	l := NewSlidingWindow([]domain.RateLimitRule{{Window: time.Minute, Max: 1}})
	for i := 0; i < 5; i++ {
		assert.True(t, l.Check("", t0).Allowed)
	}
	assert.Equal(t, 0, l.Len())
}

func TestSlidingWindow_DeniesWhenCountExceedsMax(t *testing.T) {
	rule := domain.RateLimitRule{Window: time.Minute, Max: 2}
	l := NewSlidingWindow([]domain.RateLimitRule{rule})

	assert.True(t, l.Check("k", t0).Allowed)
	assert.True(t, l.Check("k", t0.Add(time.Second)).Allowed)

	res := l.Check("k", t0.Add(2*time.Second))
	require.False(t, res.Allowed)
	assert.Equal(t, rule, res.Rule)

	// outra chave tem histórico próprio
	assert.True(t, l.Check("other", t0.Add(2*time.Second)).Allowed)
}

func TestSlidingWindow_WindowSlides(t *testing.T) {
	l := NewSlidingWindow([]domain.RateLimitRule{{Window: time.Minute, Max: 1}})

	assert.True(t, l.Check("k", t0).Allowed)
	assert.False(t, l.Check("k", t0.Add(30*time.Second)).Allowed)
	// t0 saiu da janela; t0+30s (negado, mas registrado) ainda está dentro
	assert.False(t, l.Check("k", t0.Add(61*time.Second)).Allowed)
	assert.True(t, l.Check("k", t0.Add(200*time.Second)).Allowed)
}

func TestSlidingWindow_FirstViolatedRuleInConfiguredOrder(t *testing.T) {
	burst := domain.RateLimitRule{Window: time.Minute, Max: 1}
	daily := domain.RateLimitRule{Window: 24 * time.Hour, Max: 1}

	l := NewSlidingWindow([]domain.RateLimitRule{burst, daily})
	l.Check("k", t0)
	res := l.Check("k", t0.Add(time.Second))
	require.False(t, res.Allowed)
	assert.Equal(t, burst, res.Rule)

	reversed := NewSlidingWindow([]domain.RateLimitRule{daily, burst})
	reversed.Check("k", t0)
	res = reversed.Check("k", t0.Add(time.Second))
	require.False(t, res.Allowed)
	assert.Equal(t, daily, res.Rule)
}

func TestSlidingWindow_MatchesBruteForceCount(t *testing.T) {
	rules := []domain.RateLimitRule{{Window: 10 * time.Second, Max: 3}, {Window: time.Minute, Max: 6}}
	l := NewSlidingWindow(rules, WithSweepEvery(time.Second))

	var events []time.Time
	now := t0
	for i := 0; i < 200; i++ {
		now = now.Add(time.Duration(i%7) * time.Second)
		events = append(events, now)

		want := true
		for _, r := range rules {
			n := 0
			for _, e := range events {
				if now.Sub(e) < r.Window {
					n++
				}
			}
			if n > r.Max {
				want = false
				break
			}
		}
		assert.Equal(t, want, l.Check("k", now).Allowed, "event %d", i)
	}
}

func TestSlidingWindow_EvictsOldestActivityOverCap(t *testing.T) {
	l := NewSlidingWindow([]domain.RateLimitRule{{Window: time.Hour, Max: 10}}, WithMaxKeys(3))

	for i := 0; i < 10; i++ {
		l.Check(fmt.Sprintf("k%d", i), t0.Add(time.Duration(i)*time.Second))
		assert.LessOrEqual(t, l.Len(), 3)
	}

	// as três chaves mais recentes sobrevivem com histórico
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range []string{"k7", "k8", "k9"} {
		_, ok := l.hits[k]
		assert.True(t, ok, "expected %s to survive eviction", k)
	}
}

func TestSlidingWindow_SweepDropsIdleKeys(t *testing.T) {
	l := NewSlidingWindow([]domain.RateLimitRule{{Window: time.Minute, Max: 10}}, WithSweepEvery(10*time.Second))

	l.Check("idle", t0)
	l.Check("busy", t0.Add(5*time.Minute))

	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.hits["idle"]
	assert.False(t, ok, "expected idle key to be swept")
}

func TestSlidingWindow_RulesReturnsCopy(t *testing.T) {
	l := NewSlidingWindow([]domain.RateLimitRule{{Window: time.Minute, Max: 3}, {Window: time.Hour, Max: 10}})

	got := l.Rules()
	require.Len(t, got, 2)
	assert.Equal(t, "3/1m0s", got[0].String())

	got[0].Max = 99
	assert.Equal(t, 3, l.Rules()[0].Max)
}
