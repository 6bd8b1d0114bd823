package domain

import "github.com/shopspring/decimal"

const diffScale = 8

// Reconciliation 计算价与交易所公布理论价的比对结果
type Reconciliation struct {
	Computed     decimal.Decimal `json:"computed"`
	Reference    decimal.Decimal `json:"reference"`
	HasReference bool            `json:"has_reference"`
	Diff         decimal.Decimal `json:"diff"` // computed - reference
	Break        bool            `json:"break"`
}

// Reconcile 差额超过容差即为 break；没有参考价的记录只报告不标记
func Reconcile(computed float64, reference *decimal.Decimal, tolerance decimal.Decimal) Reconciliation {
	rec := Reconciliation{Computed: decimal.NewFromFloat(computed)}
	if reference == nil {
		return rec
	}
	rec.Reference = *reference
	rec.HasReference = true
	rec.Diff = rec.Computed.Sub(*reference).Round(diffScale)
	rec.Break = rec.Diff.Abs().GreaterThan(tolerance.Abs())
	return rec
}
