package infra

import (
	"context"
	"errors"
	"testing"

	"lead-gateway/intake/domain"

	"github.com/stretchr/testify/assert"
)

func TestMemoryStatsStore_CountsTotalAndOneOutcome(t *testing.T) {
	s := NewMemoryStatsStore()
	ctx := context.Background()

	for _, kind := range []domain.OutcomeKind{
		domain.OutcomeSent, domain.OutcomeQuarantined, domain.OutcomeDuplicate,
		domain.OutcomeHoneypot, domain.OutcomeBlocked, domain.OutcomeSkipped, domain.OutcomeFailed,
	} {
		assert.NoError(t, s.Record(ctx, domain.StatsEvent{Kind: kind, Reason: string(kind)}))
	}

	assert.Equal(t, domain.Metrics{
		Total: 7, Sent: 1, Quarantine: 1, Dedup: 1, Blocked: 2, Skipped: 1, Failed: 1,
	}, s.Snapshot())
	assert.Equal(t, int64(1), s.ByReason()["honeypot"])
}

type failingStats struct{ calls int }

func (f *failingStats) Record(context.Context, domain.StatsEvent) error {
	f.calls++
	return errors.New("boom")
}

func TestTeeStats_RecordsEverywhereAndReturnsFirstError(t *testing.T) {
	mem := NewMemoryStatsStore()
	bad := &failingStats{}
	tee := TeeStats{bad, nil, mem}

	err := tee.Record(context.Background(), domain.StatsEvent{Kind: domain.OutcomeSent})
	assert.Error(t, err)
	assert.Equal(t, 1, bad.calls)
	assert.Equal(t, int64(1), mem.Snapshot().Sent)
}
