package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cenkalti/backoff/v5"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	"github.com/wyfcoding/theoprice/pkg/logger"
	"gorm.io/gorm"
)

type inputRepository struct {
	db       *gorm.DB
	maxTries uint
}

// NewInputRepository 创建只读输入仓储，查询失败按指数退避重试 maxTries 次
func NewInputRepository(db *gorm.DB, maxTries uint) domain.InputRepository {
	if maxTries == 0 {
		maxTries = 1
	}
	return &inputRepository{db: db, maxTries: maxTries}
}

func (r *inputRepository) query(ctx context.Context, from, to civil.Date) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&TheoPriceInputModel{}).
		Where("dd BETWEEN ? AND ?", formatDate(from), formatDate(to)).
		Order("dd, isu_cd")
}

func (r *inputRepository) ListByDateRange(ctx context.Context, from, to civil.Date) ([]*domain.InputRow, error) {
	models, err := backoff.Retry(ctx, func() ([]*TheoPriceInputModel, error) {
		var models []*TheoPriceInputModel
		err := r.query(ctx, from, to).Find(&models).Error
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, backoff.Permanent(err)
		}
		if err != nil {
			logger.Warn(ctx, "theo price input query failed", "from", from.String(), "to", to.String(), "error", err)
		}
		return models, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(r.maxTries),
		backoff.WithMaxElapsedTime(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("list theo price inputs %s..%s: %w", from, to, err)
	}

	rows := make([]*domain.InputRow, 0, len(models))
	for _, m := range models {
		row, err := toInputRow(m)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
