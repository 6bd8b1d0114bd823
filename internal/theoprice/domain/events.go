package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ReconciliationBreakEventType     = "ReconciliationBreak"
	ReconciliationCompletedEventType = "ReconciliationCompleted"
)

// ReconciliationBreakEvent 计算价与参考价差额超限
type ReconciliationBreakEvent struct {
	Date       string          `json:"date"`
	IssueCode  string          `json:"issue_code"`
	Schedule   ScheduleCode    `json:"schedule_code"`
	Computed   decimal.Decimal `json:"computed"`
	Reference  decimal.Decimal `json:"reference"`
	Diff       decimal.Decimal `json:"diff"`
	Tolerance  decimal.Decimal `json:"tolerance"`
	OccurredOn time.Time       `json:"occurred_on"`
}

// ReconciliationCompletedEvent 一次比对运行结束
type ReconciliationCompletedEvent struct {
	From       string    `json:"from"`
	To         string    `json:"to"`
	Total      int       `json:"total"`
	Priced     int       `json:"priced"`
	Invalid    int       `json:"invalid"`
	Breaks     int       `json:"breaks"`
	OccurredOn time.Time `json:"occurred_on"`
}
