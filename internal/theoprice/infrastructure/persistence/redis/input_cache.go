package redis

import (
	"context"
	"time"

	"cloud.google.com/go/civil"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/pkg/logger"
)

// JSONCache pkg/cache 中 RedisCache 与 LocalCache 的公共能力
type JSONCache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, expiration time.Duration) error
}

// EmptyDayTTL 没有输入行的交易日只缓存这么久，ETL 晚到的数据在此之后可见
const EmptyDayTTL = time.Minute

// CachedInputRepository 按交易日缓存输入行的读穿透仓储
// 区间内任一天未命中即整体回源，再按天回写
type CachedInputRepository struct {
	next     domain.InputRepository
	cache    JSONCache
	prefix   string
	ttl      time.Duration
	emptyTTL time.Duration
	now      func() time.Time
}

// NewCachedInputRepository 包装底层仓储
func NewCachedInputRepository(next domain.InputRepository, cache JSONCache, ttl time.Duration) *CachedInputRepository {
	emptyTTL := EmptyDayTTL
	if ttl < emptyTTL {
		emptyTTL = ttl
	}
	return &CachedInputRepository{
		next:     next,
		cache:    cache,
		prefix:   "theoprice:inputs:v2:",
		ttl:      ttl,
		emptyTTL: emptyTTL,
		now:      time.Now,
	}
}

func (r *CachedInputRepository) key(d civil.Date) string {
	return r.prefix + d.String()
}

func (r *CachedInputRepository) ListByDateRange(ctx context.Context, from, to civil.Date) ([]*domain.InputRow, error) {
	if rows, ok := r.fromCache(ctx, from, to); ok {
		logger.Debug(ctx, "theo price inputs served from cache", "from", from.String(), "to", to.String())
		return rows, nil
	}

	rows, err := r.next.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}

	byDate := make(map[civil.Date][]*domain.InputRow)
	for _, row := range rows {
		byDate[row.Date] = append(byDate[row.Date], row)
	}
	cachedAt := r.now()
	for d := from; !d.After(to); d = d.AddDays(1) {
		// 空交易日可能是休市，也可能是 ETL 尚未装载，只短暂缓存
		day := cachedDay{CachedAt: cachedAt, Rows: make([]cachedRow, 0, len(byDate[d]))}
		for _, row := range byDate[d] {
			day.Rows = append(day.Rows, toCachedRow(row))
		}
		ttl := r.ttl
		if len(day.Rows) == 0 {
			ttl = r.emptyTTL
		}
		if err := r.cache.SetJSON(ctx, r.key(d), day, ttl); err != nil {
			logger.Warn(ctx, "failed to cache theo price inputs", "date", d.String(), "error", err)
		}
	}
	return rows, nil
}

func (r *CachedInputRepository) fromCache(ctx context.Context, from, to civil.Date) ([]*domain.InputRow, bool) {
	var rows []*domain.InputRow
	for d := from; !d.After(to); d = d.AddDays(1) {
		var day cachedDay
		hit, err := r.cache.GetJSON(ctx, r.key(d), &day)
		if err != nil {
			logger.Warn(ctx, "theo price input cache unavailable", "date", d.String(), "error", err)
			return nil, false
		}
		if !hit {
			return nil, false
		}
		// 进程内缓存不支持单 key 过期，空交易日在读取时判断
		if len(day.Rows) == 0 && r.now().Sub(day.CachedAt) >= r.emptyTTL {
			return nil, false
		}
		for i := range day.Rows {
			row, err := day.Rows[i].inputRow()
			if err != nil {
				logger.Warn(ctx, "discarding malformed cached inputs", "date", d.String(), "error", err)
				return nil, false
			}
			rows = append(rows, row)
		}
	}
	return rows, true
}
