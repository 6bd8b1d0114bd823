package application

import (
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
)

// PriceCommand 单条计算请求
type PriceCommand struct {
	IssueCode       string  `json:"issue_code"`
	ScheduleCode    string  `json:"schedule_code"` // 附表代码或别표标签
	RightType       string  `json:"right_type"`
	UnderlyingPrice float64 `json:"underlying_price"`
	StrikePrice     float64 `json:"strike_price"`
	RemainingDays   float64 `json:"remaining_days"`
	DomesticRate    float64 `json:"domestic_rate"`
	ForeignRate     float64 `json:"foreign_rate"`
	Dividend        float64 `json:"dividend"`
	Volatility      float64 `json:"volatility"`
	BondTenorYears  float64 `json:"bond_tenor_years"`
	BondYield       float64 `json:"bond_yield"`
	StorageCost     float64 `json:"storage_cost"`
	RFR             *RFRDTO `json:"rfr,omitempty"`
}

// RFRDTO RFR 期货输入，日期格式 YYYYMMDD
type RFRDTO struct {
	CalcDate        Date    `json:"calc_date"`
	LastTradeDate   Date    `json:"last_trade_date"`
	AccrualStart    Date    `json:"accrual_start"`
	AccrualEnd      Date    `json:"accrual_end"`
	Final           bool    `json:"final"`
	FinalInterest   float64 `json:"final_interest"`
	StripRate       float64 `json:"strip_rate"`
	ForwardInterest float64 `json:"forward_interest"`
	InterestSpread  float64 `json:"interest_spread"`
}

// Record 转为领域记录
func (c PriceCommand) Record() domain.MarketDataRecord {
	r := domain.MarketDataRecord{
		UnderlyingPrice: c.UnderlyingPrice,
		StrikePrice:     c.StrikePrice,
		RemainingDays:   c.RemainingDays,
		DomesticRate:    c.DomesticRate,
		ForeignRate:     c.ForeignRate,
		Dividend:        c.Dividend,
		Volatility:      c.Volatility,
		RightType:       domain.ParseRightType(c.RightType),
		Schedule:        domain.ParseScheduleCode(c.ScheduleCode),
		BondTenorYears:  c.BondTenorYears,
		BondYield:       c.BondYield,
		StorageCost:     c.StorageCost,
	}
	if c.RFR != nil {
		r.RFR = domain.RFRFields{
			CalcDate:        c.RFR.CalcDate.Date,
			LastTradeDate:   c.RFR.LastTradeDate.Date,
			AccrualStart:    c.RFR.AccrualStart.Date,
			AccrualEnd:      c.RFR.AccrualEnd.Date,
			Final:           c.RFR.Final,
			FinalInterest:   c.RFR.FinalInterest,
			StripRate:       c.RFR.StripRate,
			ForwardInterest: c.RFR.ForwardInterest,
			InterestSpread:  c.RFR.InterestSpread,
		}
	}
	return r
}

// PriceResultDTO 单条计算结果
type PriceResultDTO struct {
	IssueCode    string  `json:"issue_code,omitempty"`
	Price        float64 `json:"price"`
	ScheduleCode string  `json:"schedule_code"`
	Computable   bool    `json:"computable"`
	Error        string  `json:"error,omitempty"`
}

// ClassifyCommand 商品分类
type ClassifyCommand struct {
	UnderlyingID   string `json:"underlying_id"`
	MarketSegment  string `json:"market_segment"`
	UnderlyingType string `json:"underlying_type"`
	RightType      string `json:"right_type"`
	SpreadCode     string `json:"spread_code"`
}

// ClassifyResultDTO 分类结果
type ClassifyResultDTO struct {
	ScheduleCode string `json:"schedule_code"`
	Computable   bool   `json:"computable"`
}

// ImpliedRateCommand 由掉期点推算国内利率
type ImpliedRateCommand struct {
	SwapPoint     float64 `json:"swap_point"`
	Spot          float64 `json:"spot"`
	RemainingDays float64 `json:"remaining_days"`
	ForeignRate   float64 `json:"foreign_rate"`
}

// InterpolateCommand 期限结构插值
type InterpolateCommand struct {
	Tenors []float64 `json:"tenors"`
	Rates  []float64 `json:"rates"`
	Tenor  float64   `json:"tenor"`
}

// RateDTO 利率结果
type RateDTO struct {
	Rate float64 `json:"rate"`
}

// ReconcileLineDTO 单条比对明细，日期为 YYYYMMDD
type ReconcileLineDTO struct {
	Date         string           `json:"date"`
	IssueCode    string           `json:"issue_code"`
	ScheduleCode string           `json:"schedule_code"`
	Computed     decimal.Decimal  `json:"computed"`
	Reference    *decimal.Decimal `json:"reference,omitempty"`
	Diff         decimal.Decimal  `json:"diff"`
	Break        bool             `json:"break"`
	Error        string           `json:"error,omitempty"`
}

// ReconcileReportDTO 比对报告，From/To 为 YYYYMMDD
type ReconcileReportDTO struct {
	From      string              `json:"from"`
	To        string              `json:"to"`
	Total     int                 `json:"total"`
	Priced    int                 `json:"priced"`
	Skipped   int                 `json:"skipped"` // 价差与不适用
	Invalid   int                 `json:"invalid"`
	Breaks    int                 `json:"breaks"`
	Tolerance decimal.Decimal     `json:"tolerance"`
	Lines     []*ReconcileLineDTO `json:"lines"`
}
