package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/allegro/bigcache/v3"
)

// LocalCache 进程内缓存，未配置 Redis 时使用；过期时间在创建时统一指定
type LocalCache struct {
	cache *bigcache.BigCache
}

// NewLocal 创建进程内缓存
func NewLocal(ctx context.Context, ttl time.Duration) (*LocalCache, error) {
	cfg := bigcache.DefaultConfig(ttl)
	cfg.Verbose = false
	c, err := bigcache.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create local cache: %w", err)
	}
	return &LocalCache{cache: c}, nil
}

// GetJSON 读取 JSON 缓存，命中返回 true
func (lc *LocalCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	val, err := lc.cache.Get(key)
	if errors.Is(err, bigcache.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, fmt.Errorf("failed to decode cached value %s: %w", key, err)
	}
	return true, nil
}

// SetJSON 写入 JSON 缓存，expiration 被忽略
func (lc *LocalCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return lc.cache.Set(key, data)
}

// Close 关闭缓存
func (lc *LocalCache) Close() error {
	return lc.cache.Close()
}
