package application

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/pkg/metrics"
)

type fakeInputRepository struct {
	rows     []*domain.InputRow
	err      error
	from, to civil.Date
}

func (r *fakeInputRepository) ListByDateRange(_ context.Context, from, to civil.Date) ([]*domain.InputRow, error) {
	r.from, r.to = from, to
	return r.rows, r.err
}

type publishedEvent struct {
	eventType string
	key       string
	event     any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
	err    error
}

func (p *fakePublisher) Publish(_ context.Context, eventType, key string, event any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{eventType, key, event})
	return p.err
}

func (p *fakePublisher) ofType(eventType string) []publishedEvent {
	var out []publishedEvent
	for _, e := range p.events {
		if e.eventType == eventType {
			out = append(out, e)
		}
	}
	return out
}

func refPrice(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

var tradeDate = civil.Date{Year: 2024, Month: time.March, Day: 18}

func futuresRow(issue string, tax domain.Taxonomy, ref *decimal.Decimal) *domain.InputRow {
	return &domain.InputRow{
		Date:      tradeDate,
		IssueCode: issue,
		Taxonomy:  tax,
		Record: domain.MarketDataRecord{
			UnderlyingPrice: 1337.2,
			RemainingDays:   2,
			DomesticRate:    0.032367,
		},
		DividendPV:     5, // 持有成本模型不读取现值
		ReferencePrice: ref,
	}
}

func reconcileRows() []*domain.InputRow {
	index := domain.Taxonomy{UnderlyingID: "K2I", MarketSegment: "SPI", UnderlyingType: "IDX", RightType: domain.RightFuture}
	equity := domain.Taxonomy{UnderlyingID: "005930", MarketSegment: "EQU", UnderlyingType: "EQU", RightType: domain.RightFuture}

	within := futuresRow("KR4101V30001", index, refPrice("1337.43"))
	broken := futuresRow("KR4111V30002", equity, refPrice("1300"))

	spread := futuresRow("KR4401V30003", index, refPrice("0"))
	spread.Taxonomy.SpreadCode = "S1"

	invalid := futuresRow("KR4101V60004", index, refPrice("1337.43"))
	invalid.Record.RemainingDays = -1

	vkospi := futuresRow("KR4104V30005", index, nil)
	vkospi.Taxonomy.UnderlyingID = "VKI"

	noRef := futuresRow("KR4101V90006", index, nil)
	noRef.DividendFV = 1.5

	return []*domain.InputRow{within, broken, spread, invalid, vkospi, noRef}
}

func TestReconciliationService_Run(t *testing.T) {
	repo := &fakeInputRepository{rows: reconcileRows()}
	pub := &fakePublisher{}
	m := metrics.New("test")
	svc := NewReconciliationService(repo, pub, domain.NewTheoPriceDispatcher(), m, decimal.RequireFromString("0.01"), 4)

	report, err := svc.Run(context.Background(), tradeDate, tradeDate)
	if err != nil {
		t.Fatal(err)
	}
	if repo.from != tradeDate || repo.to != tradeDate {
		t.Errorf("repository queried with %s..%s", repo.from, repo.to)
	}

	if report.Total != 6 || report.Priced != 3 || report.Skipped != 2 || report.Invalid != 1 || report.Breaks != 1 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if len(report.Lines) != 4 {
		t.Fatalf("got %d lines, want 4", len(report.Lines))
	}

	first := report.Lines[0]
	if first.Break || !first.Diff.Equal(decimal.RequireFromString("0.007157")) {
		t.Errorf("first line: %+v", first)
	}
	if second := report.Lines[1]; !second.Break || second.ScheduleCode != "carry-cost-equity" {
		t.Errorf("second line: %+v", second)
	}
	if third := report.Lines[2]; third.Error == "" || third.IssueCode != "KR4101V60004" {
		t.Errorf("third line should be invalid: %+v", third)
	}
	last := report.Lines[3]
	if last.Reference != nil || last.Break {
		t.Errorf("line without reference: %+v", last)
	}
	if got := last.Computed.InexactFloat64(); math.Abs(got-(carryPrice-1.5)) > 1e-9 {
		t.Errorf("future-value dividend not applied: %v, want %v", got, carryPrice-1.5)
	}

	breaks := pub.ofType(domain.ReconciliationBreakEventType)
	if len(breaks) != 1 || breaks[0].key != "2024-03-18:KR4111V30002" {
		t.Fatalf("break events: %+v", breaks)
	}
	ev := breaks[0].event.(domain.ReconciliationBreakEvent)
	if !ev.Diff.IsNegative() || ev.Schedule != domain.ScheduleCarryCostEquity {
		t.Errorf("break event: %+v", ev)
	}
	if done := pub.ofType(domain.ReconciliationCompletedEventType); len(done) != 1 {
		t.Errorf("completed events: %d", len(done))
	}

	if got := testutil.ToFloat64(m.ReconciliationBreaks); got != 1 {
		t.Errorf("break counter = %v", got)
	}
}

func TestReconciliationService_PublishFailureDoesNotFailRun(t *testing.T) {
	repo := &fakeInputRepository{rows: reconcileRows()}
	pub := &fakePublisher{err: errors.New("broker down")}
	svc := NewReconciliationService(repo, pub, domain.NewTheoPriceDispatcher(), nil, decimal.RequireFromString("0.01"), 1)

	report, err := svc.Run(context.Background(), tradeDate, tradeDate)
	if err != nil {
		t.Fatal(err)
	}
	if report.Breaks != 1 {
		t.Errorf("breaks = %d", report.Breaks)
	}
}

func TestReconciliationService_WithoutPublisher(t *testing.T) {
	repo := &fakeInputRepository{rows: reconcileRows()}
	svc := NewReconciliationService(repo, nil, domain.NewTheoPriceDispatcher(), nil, decimal.RequireFromString("0.01"), 2)
	if _, err := svc.Run(context.Background(), tradeDate, tradeDate); err != nil {
		t.Fatal(err)
	}
}

func TestReconciliationService_Errors(t *testing.T) {
	loadErr := errors.New("connection refused")
	svc := NewReconciliationService(&fakeInputRepository{err: loadErr}, nil, domain.NewTheoPriceDispatcher(), nil, decimal.Zero, 1)

	if _, err := svc.Run(context.Background(), tradeDate, tradeDate); !errors.Is(err, loadErr) {
		t.Errorf("err = %v, want wrapped load error", err)
	}

	before := civil.Date{Year: 2024, Month: time.March, Day: 17}
	if _, err := svc.Run(context.Background(), tradeDate, before); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput for reversed range", err)
	}
}

func TestReconciliationService_RangeLimit(t *testing.T) {
	repo := &fakeInputRepository{}
	svc := NewReconciliationService(repo, nil, domain.NewTheoPriceDispatcher(), nil, decimal.RequireFromString("0.01"), 1)
	ctx := context.Background()

	// 31 个日历日（含两端）仍允许
	last := tradeDate.AddDays(MaxReconcileDays - 1)
	report, err := svc.Run(ctx, tradeDate, last)
	if err != nil {
		t.Fatal(err)
	}
	if report.From != "20240318" || report.To != "20240417" {
		t.Errorf("report range = %s..%s", report.From, report.To)
	}

	repo.from, repo.to = civil.Date{}, civil.Date{}
	if _, err := svc.Run(ctx, tradeDate, last.AddDays(1)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput for a 32 day range", err)
	}
	far := civil.Date{Year: 2900, Month: time.December, Day: 31}
	if _, err := svc.Run(ctx, civil.Date{Year: 1900, Month: time.January, Day: 1}, far); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput for a multi-century range", err)
	}
	if repo.from != (civil.Date{}) {
		t.Errorf("oversized range reached the repository: %s..%s", repo.from, repo.to)
	}
}
