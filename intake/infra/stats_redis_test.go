package infra

import (
	"context"
	"strings"
	"testing"
	"time"

	"lead-gateway/intake/domain"

	"github.com/redis/go-redis/v9"
)

func TestRedisStatsStore_NilIsNoop(t *testing.T) {
	var s *RedisStatsStore
	if err := s.Record(context.Background(), domain.StatsEvent{Kind: domain.OutcomeSent}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}

	if err := NewRedisStatsStore(nil).Record(context.Background(), domain.StatsEvent{Kind: domain.OutcomeSent}); err != nil {
		t.Fatalf("expected nil error without client, got %v", err)
	}
}

func TestRedisStatsStore_WrapsClientErrors(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = rdb.Close() }()

	s := NewRedisStatsStore(rdb, WithStatsPrefix("test:stats:"))
	if s.prefix != "test:stats" {
		t.Fatalf("expected trimmed prefix, got %q", s.prefix)
	}

	err := s.Record(context.Background(), domain.StatsEvent{Kind: domain.OutcomeBlocked, Reason: "honeypot", At: t0})
	if err == nil {
		t.Fatalf("expected error from unreachable redis")
	}
	if !strings.HasPrefix(err.Error(), "redis stats record: ") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRedisStatsStore_BucketOption(t *testing.T) {
	if got := NewRedisStatsStore(nil).bucket; got != "minute" {
		t.Fatalf("expected minute buckets by default, got %q", got)
	}
	if got := NewRedisStatsStore(nil, WithStatsBucket(" None ")).bucket; got != "none" {
		t.Fatalf("expected normalized bucket, got %q", got)
	}
}
