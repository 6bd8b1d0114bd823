package redis

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
)

type mapCache struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newMapCache() *mapCache {
	return &mapCache{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (c *mapCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	b, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dest)
}

func (c *mapCache) SetJSON(_ context.Context, key string, value any, expiration time.Duration) error {
	if c.err != nil {
		return c.err
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = b
	c.ttls[key] = expiration
	return nil
}

type countingRepo struct {
	rows  []*domain.InputRow
	calls int
	err   error
}

func (r *countingRepo) ListByDateRange(context.Context, civil.Date, civil.Date) ([]*domain.InputRow, error) {
	r.calls++
	return r.rows, r.err
}

var (
	day1 = civil.Date{Year: 2024, Month: time.March, Day: 18}
	day3 = civil.Date{Year: 2024, Month: time.March, Day: 20}
)

func sampleRows() []*domain.InputRow {
	ref := decimal.RequireFromString("1337.43")
	return []*domain.InputRow{
		{
			Date:      day1,
			IssueCode: "KR4101V30001",
			Taxonomy:  domain.Taxonomy{UnderlyingID: "K2I", MarketSegment: "SPI", UnderlyingType: "IDX", RightType: domain.RightFuture},
			Record: domain.MarketDataRecord{
				UnderlyingPrice: 1337.2,
				RemainingDays:   2,
				DomesticRate:    0.032367,
				RFR:             domain.RFRFields{AccrualEnd: day3},
			},
			DividendFV:     1.25,
			ReferencePrice: &ref,
		},
		{Date: day3, IssueCode: "KR4101V30001"},
	}
}

func TestCachedInputRepository_ReadThrough(t *testing.T) {
	next := &countingRepo{rows: sampleRows()}
	cache := newMapCache()
	repo := NewCachedInputRepository(next, cache, time.Minute)
	ctx := context.Background()

	first, err := repo.ListByDateRange(ctx, day1, day3)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != 2 || next.calls != 1 {
		t.Fatalf("first load: %d rows, %d calls", len(first), next.calls)
	}
	if len(cache.data) != 3 {
		t.Errorf("cached %d days, want 3 including the empty day", len(cache.data))
	}
	if ttl := cache.ttls[repo.key(day1)]; ttl != time.Minute {
		t.Errorf("loaded day ttl = %v", ttl)
	}
	if ttl := cache.ttls[repo.key(civil.Date{Year: 2024, Month: time.March, Day: 19})]; ttl != EmptyDayTTL {
		t.Errorf("empty day ttl = %v, want %v", ttl, EmptyDayTTL)
	}

	second, err := repo.ListByDateRange(ctx, day1, day3)
	if err != nil {
		t.Fatal(err)
	}
	if next.calls != 1 {
		t.Errorf("second load hit the store: %d calls", next.calls)
	}
	if len(second) != 2 {
		t.Fatalf("cached rows = %d", len(second))
	}
	got := second[0]
	if got.Date != day1 || got.Record.RFR.AccrualEnd != day3 || got.DividendFV != 1.25 {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if got.ReferencePrice == nil || !got.ReferencePrice.Equal(decimal.RequireFromString("1337.43")) {
		t.Errorf("reference = %v", got.ReferencePrice)
	}
	if domain.Classify(got.Taxonomy) != domain.ScheduleCarryCostIndex {
		t.Errorf("taxonomy = %+v", got.Taxonomy)
	}

	// 扩大区间，新的一天未命中则整体回源
	if _, err := repo.ListByDateRange(ctx, day1, civil.Date{Year: 2024, Month: time.March, Day: 21}); err != nil {
		t.Fatal(err)
	}
	if next.calls != 2 {
		t.Errorf("calls = %d, want 2", next.calls)
	}
}

func TestCachedInputRepository_CacheDown(t *testing.T) {
	next := &countingRepo{rows: sampleRows()}
	cache := newMapCache()
	cache.err = errors.New("connection refused")
	repo := NewCachedInputRepository(next, cache, time.Minute)

	rows, err := repo.ListByDateRange(context.Background(), day1, day3)
	if err != nil || len(rows) != 2 {
		t.Fatalf("rows = %d, err = %v", len(rows), err)
	}
}

func TestCachedInputRepository_StoreError(t *testing.T) {
	storeErr := errors.New("timeout")
	repo := NewCachedInputRepository(&countingRepo{err: storeErr}, newMapCache(), time.Minute)
	if _, err := repo.ListByDateRange(context.Background(), day1, day1); !errors.Is(err, storeErr) {
		t.Errorf("err = %v", err)
	}
}

func TestCachedInputRepository_EmptyDayExpires(t *testing.T) {
	next := &countingRepo{}
	cache := newMapCache()
	repo := NewCachedInputRepository(next, cache, time.Hour)
	clock := time.Date(2024, 3, 18, 7, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return clock }
	ctx := context.Background()

	// ETL 装载前比对一次，当天为空
	if rows, err := repo.ListByDateRange(ctx, day1, day1); err != nil || len(rows) != 0 {
		t.Fatalf("rows = %d, err = %v", len(rows), err)
	}
	if ttl := cache.ttls[repo.key(day1)]; ttl != EmptyDayTTL {
		t.Errorf("empty day ttl = %v", ttl)
	}

	// 过期前仍由缓存应答
	clock = clock.Add(EmptyDayTTL / 2)
	if _, err := repo.ListByDateRange(ctx, day1, day1); err != nil {
		t.Fatal(err)
	}
	if next.calls != 1 {
		t.Errorf("calls = %d, want 1 within the empty-day window", next.calls)
	}

	// ETL 装载后，空日过期即回源
	next.rows = sampleRows()[:1]
	clock = clock.Add(EmptyDayTTL)
	rows, err := repo.ListByDateRange(ctx, day1, day1)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || next.calls != 2 {
		t.Errorf("after load: rows = %d, calls = %d", len(rows), next.calls)
	}

	// 有数据的交易日按完整 TTL 缓存，不受空日窗口影响
	clock = clock.Add(10 * EmptyDayTTL)
	if rows, _ := repo.ListByDateRange(ctx, day1, day1); len(rows) != 1 || next.calls != 2 {
		t.Errorf("loaded day: rows = %d, calls = %d", len(rows), next.calls)
	}
}

func TestCachedInputRepository_ShortTTLBoundsEmptyDays(t *testing.T) {
	cache := newMapCache()
	repo := NewCachedInputRepository(&countingRepo{}, cache, 10*time.Second)
	if _, err := repo.ListByDateRange(context.Background(), day1, day1); err != nil {
		t.Fatal(err)
	}
	if ttl := cache.ttls[repo.key(day1)]; ttl != 10*time.Second {
		t.Errorf("empty day ttl = %v, want the shorter configured ttl", ttl)
	}
}
