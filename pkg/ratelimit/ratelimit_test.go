package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	if got := Key("reconcile", "10.0.0.7"); got != "theoprice:ratelimit:reconcile:10.0.0.7" {
		t.Errorf("Key = %q", got)
	}
}

func TestDecision_RetryAfterSeconds(t *testing.T) {
	cases := []struct {
		wait time.Duration
		want int64
	}{
		{0, 0},
		{-time.Second, 0},
		{time.Millisecond, 1},
		{300 * time.Millisecond, 1},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{2 * time.Second, 2},
	}
	for _, tc := range cases {
		d := &Decision{RetryAfter: tc.wait}
		if got := d.RetryAfterSeconds(); got != tc.want {
			t.Errorf("RetryAfterSeconds(%v) = %d, want %d", tc.wait, got, tc.want)
		}
	}
}

func TestRedisLimiter_UnknownScopeAllowed(t *testing.T) {
	// 未配置规则时不访问 Redis
	l := &RedisLimiter{rules: map[string]Rule{"reconcile": {QPS: 0, Burst: 1}}}
	for _, scope := range []string{"price", "reconcile"} {
		d, err := l.Allow(context.Background(), scope, "10.0.0.7")
		if err != nil || !d.Allowed {
			t.Errorf("%s: decision = %+v, err = %v", scope, d, err)
		}
	}
}
