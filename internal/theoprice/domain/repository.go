package domain

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// InputRow 外部 ETL 汇总好的一行理论价输入（종목 × 일자）
type InputRow struct {
	Date           civil.Date
	IssueCode      string
	Taxonomy       Taxonomy
	Record         MarketDataRecord // Schedule 与 Dividend 由应用层根据 Taxonomy 决定
	DividendPV     float64
	DividendFV     float64
	ReferencePrice *decimal.Decimal // 交易所已计算的理论价，可能为空
}

// InputRepository 理论价输入数据源（只读）
type InputRepository interface {
	ListByDateRange(ctx context.Context, from, to civil.Date) ([]*InputRow, error)
}

// EventPublisher 领域事件发布
type EventPublisher interface {
	Publish(ctx context.Context, eventType string, key string, event any) error
}
