// Package ratelimit 基于 Redis 的 GCRA 限流，按 scope + 客户端计数
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix Redis 中限流计数的 key 前缀
const KeyPrefix = "theoprice:ratelimit:"

// Limiter 限流接口
type Limiter interface {
	// Allow 判断 client 在 scope 下是否放行
	Allow(ctx context.Context, scope, client string) (*Decision, error)
}

// Rule 每秒 QPS 次，允许突发 Burst 次
type Rule struct {
	QPS   int
	Burst int
}

// Decision 单次判断结果
type Decision struct {
	Allowed    bool
	Remaining  int
	Burst      int
	RetryAfter time.Duration
}

// RetryAfterSeconds Retry-After 头的秒数，不足一秒按一秒
func (d *Decision) RetryAfterSeconds() int64 {
	if d.RetryAfter <= 0 {
		return 0
	}
	return int64((d.RetryAfter + time.Second - 1) / time.Second)
}

// RedisLimiter 用 redis_rate 实现 Limiter，不同 scope 可以配置不同规则
type RedisLimiter struct {
	limiter *redis_rate.Limiter
	rules   map[string]Rule
}

// NewRedisLimiter 创建限流器，rules 以 scope 为 key
func NewRedisLimiter(rdb redis.UniversalClient, rules map[string]Rule) *RedisLimiter {
	return &RedisLimiter{limiter: redis_rate.NewLimiter(rdb), rules: rules}
}

// Key 计数 key
func Key(scope, client string) string {
	return KeyPrefix + scope + ":" + client
}

// Allow 未配置规则的 scope 直接放行
func (r *RedisLimiter) Allow(ctx context.Context, scope, client string) (*Decision, error) {
	rule, ok := r.rules[scope]
	if !ok || rule.QPS <= 0 {
		return &Decision{Allowed: true}, nil
	}
	burst := max(rule.Burst, 1)
	res, err := r.limiter.Allow(ctx, Key(scope, client), redis_rate.Limit{
		Rate:   rule.QPS,
		Period: time.Second,
		Burst:  burst,
	})
	if err != nil {
		return nil, fmt.Errorf("rate limit check failed for %s: %w", scope, err)
	}
	return &Decision{
		Allowed:    res.Allowed > 0,
		Remaining:  res.Remaining,
		Burst:      burst,
		RetryAfter: res.RetryAfter,
	}, nil
}
