package application

import (
	"context"
	"errors"
	"time"

	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"github.com/wyfcoding/theoprice/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

// TheoPriceService 理论价计算应用服务
type TheoPriceService struct {
	dispatcher *domain.TheoPriceDispatcher
	metrics    *metrics.Metrics // 可为 nil
	workers    int
}

// NewTheoPriceService 创建应用服务，workers 为批量计算的并发上限
func NewTheoPriceService(dispatcher *domain.TheoPriceDispatcher, m *metrics.Metrics, workers int) *TheoPriceService {
	if workers <= 0 {
		workers = 1
	}
	return &TheoPriceService{dispatcher: dispatcher, metrics: m, workers: workers}
}

// Price 计算单条理论价，数值无效时返回包装 domain.ErrInvalidInput 的错误
func (s *TheoPriceService) Price(ctx context.Context, cmd PriceCommand) (*PriceResultDTO, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := cmd.Record()
	result := &PriceResultDTO{
		IssueCode:    cmd.IssueCode,
		ScheduleCode: r.Schedule.String(),
		Computable:   r.Schedule.Computable(),
	}

	price, err := s.priceRecord(ctx, cmd.IssueCode, r)
	if err != nil {
		return nil, err
	}
	result.Price = price
	return result, nil
}

func (s *TheoPriceService) priceRecord(ctx context.Context, issueCode string, r domain.MarketDataRecord) (float64, error) {
	price, err := s.dispatcher.PriceRecord(r)
	if err != nil {
		s.metrics.RecordInvalid(r.Schedule.String())
		logger.Warn(ctx, "invalid theoretical price input",
			"issue_code", issueCode,
			"schedule_code", r.Schedule.String(),
			"error", err,
		)
		return 0, err
	}
	if r.Schedule.Computable() {
		s.metrics.RecordPriced(r.Schedule.String())
	}
	return price, nil
}

// PriceBatch 并发计算，结果顺序与输入一致；单条无效只记录在该条结果中
func (s *TheoPriceService) PriceBatch(ctx context.Context, cmds []PriceCommand) ([]*PriceResultDTO, error) {
	start := time.Now()
	defer func() { s.metrics.ObserveBatch(time.Since(start).Seconds()) }()

	results := make([]*PriceResultDTO, len(cmds))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i := range cmds {
		cmd := cmds[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r := cmd.Record()
			res := &PriceResultDTO{
				IssueCode:    cmd.IssueCode,
				ScheduleCode: r.Schedule.String(),
				Computable:   r.Schedule.Computable(),
			}
			price, err := s.priceRecord(gctx, cmd.IssueCode, r)
			if err != nil {
				if !errors.Is(err, domain.ErrInvalidInput) {
					return err
				}
				res.Error = err.Error()
			}
			res.Price = price
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	logger.Debug(ctx, "batch priced", "count", len(cmds), "duration", time.Since(start))
	return results, nil
}

// Classify 由商品分类决定附表
func (s *TheoPriceService) Classify(ctx context.Context, cmd ClassifyCommand) *ClassifyResultDTO {
	code := domain.Classify(domain.Taxonomy{
		UnderlyingID:   cmd.UnderlyingID,
		MarketSegment:  cmd.MarketSegment,
		UnderlyingType: cmd.UnderlyingType,
		RightType:      domain.ParseRightType(cmd.RightType),
		SpreadCode:     cmd.SpreadCode,
	})
	logger.Debug(ctx, "classified", "underlying_id", cmd.UnderlyingID, "schedule_code", code.String())
	return &ClassifyResultDTO{ScheduleCode: code.String(), Computable: code.Computable()}
}

// ImpliedDomesticRate 由外汇掉期点推算国内利率
func (s *TheoPriceService) ImpliedDomesticRate(_ context.Context, cmd ImpliedRateCommand) (*RateDTO, error) {
	rate, err := domain.ImpliedDomesticRate(cmd.SwapPoint, cmd.Spot, cmd.RemainingDays, cmd.ForeignRate)
	if err != nil {
		return nil, err
	}
	return &RateDTO{Rate: rate}, nil
}

// InterpolateRate 期限结构线性插值
func (s *TheoPriceService) InterpolateRate(_ context.Context, cmd InterpolateCommand) (*RateDTO, error) {
	rate, err := domain.InterpolateRate(cmd.Tenors, cmd.Rates, cmd.Tenor)
	if err != nil {
		return nil, err
	}
	return &RateDTO{Rate: rate}, nil
}
