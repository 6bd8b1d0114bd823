package application

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// MaxReconcileDays 单次比对允许的最大日历日数（含两端）
const MaxReconcileDays = 31

// ReconciliationService 以外部 ETL 汇总的输入重算理论价，并与交易所公布值比对
type ReconciliationService struct {
	repo       domain.InputRepository
	publisher  domain.EventPublisher // 可为 nil
	dispatcher *domain.TheoPriceDispatcher
	metrics    *metrics.Metrics
	tolerance  decimal.Decimal
	workers    int
}

// NewReconciliationService 创建比对服务
func NewReconciliationService(
	repo domain.InputRepository,
	publisher domain.EventPublisher,
	dispatcher *domain.TheoPriceDispatcher,
	m *metrics.Metrics,
	tolerance decimal.Decimal,
	workers int,
) *ReconciliationService {
	if workers <= 0 {
		workers = 1
	}
	return &ReconciliationService{
		repo:       repo,
		publisher:  publisher,
		dispatcher: dispatcher,
		metrics:    m,
		tolerance:  tolerance.Abs(),
		workers:    workers,
	}
}

type rowOutcome struct {
	code  domain.ScheduleCode
	price float64
	err   error
}

// Run 比对 [from, to] 区间（含两端）内的全部输入行
func (s *ReconciliationService) Run(ctx context.Context, from, to civil.Date) (*ReconcileReportDTO, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: reconcile range %s..%s is empty", domain.ErrInvalidInput, from, to)
	}
	if days := to.DaysSince(from) + 1; days > MaxReconcileDays {
		return nil, fmt.Errorf("%w: reconcile range %s..%s spans %d days, at most %d allowed",
			domain.ErrInvalidInput, from, to, days, MaxReconcileDays)
	}
	defer logger.LogDuration(ctx, "reconciliation finished", "from", from.String(), "to", to.String())()

	rows, err := s.repo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to load theoretical price inputs: %w", err)
	}
	logger.Info(ctx, "reconciliation inputs loaded", "rows", len(rows))

	start := time.Now()
	outcomes := make([]rowOutcome, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, row := range rows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = s.priceRow(row)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	s.metrics.ObserveBatch(time.Since(start).Seconds())

	report := &ReconcileReportDTO{
		From:      FormatDate(from),
		To:        FormatDate(to),
		Total:     len(rows),
		Tolerance: s.tolerance,
		Lines:     make([]*ReconcileLineDTO, 0, len(rows)),
	}
	for i, row := range rows {
		out := outcomes[i]
		if !out.code.Computable() {
			report.Skipped++
			continue
		}
		line := &ReconcileLineDTO{
			Date:         FormatDate(row.Date),
			IssueCode:    row.IssueCode,
			ScheduleCode: out.code.String(),
		}
		report.Lines = append(report.Lines, line)

		if out.err != nil {
			report.Invalid++
			line.Error = out.err.Error()
			s.metrics.RecordInvalid(out.code.String())
			logger.Warn(ctx, "invalid theoretical price input",
				"date", line.Date,
				"issue_code", row.IssueCode,
				"schedule_code", line.ScheduleCode,
				"error", out.err,
			)
			continue
		}

		report.Priced++
		s.metrics.RecordPriced(out.code.String())

		rec := domain.Reconcile(out.price, row.ReferencePrice, s.tolerance)
		line.Computed = rec.Computed
		line.Diff = rec.Diff
		if rec.HasReference {
			ref := rec.Reference
			line.Reference = &ref
		}
		if rec.Break {
			line.Break = true
			report.Breaks++
			s.metrics.RecordBreak()
			s.publishBreak(ctx, row, out.code, rec)
		}
	}

	s.publish(ctx, domain.ReconciliationCompletedEventType, from.String()+".."+to.String(), domain.ReconciliationCompletedEvent{
		From:       from.String(),
		To:         to.String(),
		Total:      report.Total,
		Priced:     report.Priced,
		Invalid:    report.Invalid,
		Breaks:     report.Breaks,
		OccurredOn: time.Now(),
	})
	logger.Info(ctx, "reconciliation summary",
		"total", report.Total,
		"priced", report.Priced,
		"skipped", report.Skipped,
		"invalid", report.Invalid,
		"breaks", report.Breaks,
	)
	return report, nil
}

// priceRow 先按分类确定附表与股息，再交给 dispatcher
func (s *ReconciliationService) priceRow(row *domain.InputRow) rowOutcome {
	code := domain.Classify(row.Taxonomy)
	if !code.Computable() {
		return rowOutcome{code: code}
	}
	r := row.Record
	r.Schedule = code
	r.RightType = row.Taxonomy.RightType
	r.Dividend = domain.SelectDividend(code, row.DividendPV, row.DividendFV)

	price, err := s.dispatcher.PriceRecord(r)
	return rowOutcome{code: code, price: price, err: err}
}

func (s *ReconciliationService) publishBreak(ctx context.Context, row *domain.InputRow, code domain.ScheduleCode, rec domain.Reconciliation) {
	logger.Warn(ctx, "reconciliation break",
		"date", row.Date.String(),
		"issue_code", row.IssueCode,
		"schedule_code", code.String(),
		"computed", rec.Computed.String(),
		"reference", rec.Reference.String(),
		"diff", rec.Diff.String(),
	)
	s.publish(ctx, domain.ReconciliationBreakEventType, row.Date.String()+":"+row.IssueCode, domain.ReconciliationBreakEvent{
		Date:       row.Date.String(),
		IssueCode:  row.IssueCode,
		Schedule:   code,
		Computed:   rec.Computed,
		Reference:  rec.Reference,
		Diff:       rec.Diff,
		Tolerance:  s.tolerance,
		OccurredOn: time.Now(),
	})
}

// publish 发布失败只记日志，不影响比对结果
func (s *ReconciliationService) publish(ctx context.Context, eventType, key string, event any) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, eventType, key, event); err != nil {
		logger.Error(ctx, "failed to publish reconciliation event", "event_type", eventType, "key", key, "error", err)
	}
}
