package infra

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDedupStore_FalseThenTrueWithinWindow(t *testing.T) {
	s := NewDedupStore(30*time.Minute, 100)

	assert.False(t, s.IsDuplicate("fp", t0))
	assert.True(t, s.IsDuplicate("fp", t0.Add(time.Minute)))
	assert.False(t, s.IsDuplicate("other", t0.Add(time.Minute)))
}

func TestDedupStore_RepeatsDoNotExtendWindow(t *testing.T) {
	s := NewDedupStore(30*time.Minute, 100)

	assert.False(t, s.IsDuplicate("fp", t0))
	assert.True(t, s.IsDuplicate("fp", t0.Add(29*time.Minute)))
	// a janela conta a partir de t0, não da repetição
	assert.False(t, s.IsDuplicate("fp", t0.Add(31*time.Minute)))
}

func TestDedupStore_ExpiredEntriesArePurged(t *testing.T) {
	s := NewDedupStore(time.Minute, 100)
	for i := 0; i < 10; i++ {
		s.IsDuplicate(fmt.Sprintf("fp%d", i), t0)
	}
	assert.Equal(t, 10, s.Len())

	s.IsDuplicate("late", t0.Add(2*time.Minute))
	assert.Equal(t, 1, s.Len())
}

func TestDedupStore_NeverExceedsCap(t *testing.T) {
	s := NewDedupStore(time.Hour, 10)
	for i := 0; i < 100; i++ {
		assert.False(t, s.IsDuplicate(fmt.Sprintf("fp%d", i), t0.Add(time.Duration(i)*time.Second)))
		assert.LessOrEqual(t, s.Len(), 10)
	}
	// o mais recente continua lembrado
	assert.True(t, s.IsDuplicate("fp99", t0.Add(100*time.Second)))
}

func TestDedupStore_EvictsOldestToNinetyPercent(t *testing.T) {
	s := NewDedupStore(time.Hour, 10)
	for i := 0; i < 10; i++ {
		s.IsDuplicate(fmt.Sprintf("fp%d", i), t0.Add(time.Duration(i)*time.Second))
	}
	s.IsDuplicate("new", t0.Add(time.Minute))

	// 10 -> 9 por despejo, +1 novo
	assert.Equal(t, 10, s.Len())
	assert.False(t, s.IsDuplicate("fp0", t0.Add(time.Minute)), "expected oldest entry to be evicted")
}
