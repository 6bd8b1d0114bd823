package redis

import (
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
)

// cachedDay 单个交易日的缓存值，CachedAt 用于判断空交易日是否过期
type cachedDay struct {
	CachedAt time.Time   `json:"cached_at"`
	Rows     []cachedRow `json:"rows"`
}

// cachedRow 缓存格式；日期存为字符串，零值日期存空串（civil.Date 零值无法反解析）
type cachedRow struct {
	Date           string           `json:"date"`
	IssueCode      string           `json:"issue_code"`
	UnderlyingID   string           `json:"underlying_id"`
	MarketSegment  string           `json:"market_segment"`
	UnderlyingType string           `json:"underlying_type"`
	RightType      string           `json:"right_type"`
	SpreadCode     string           `json:"spread_code"`
	DividendPV     float64          `json:"dividend_pv"`
	DividendFV     float64          `json:"dividend_fv"`
	ReferencePrice *decimal.Decimal `json:"reference_price,omitempty"`

	UnderlyingPrice float64 `json:"underlying_price"`
	StrikePrice     float64 `json:"strike_price"`
	RemainingDays   float64 `json:"remaining_days"`
	DomesticRate    float64 `json:"domestic_rate"`
	ForeignRate     float64 `json:"foreign_rate"`
	Volatility      float64 `json:"volatility"`
	BondTenorYears  float64 `json:"bond_tenor_years"`
	BondYield       float64 `json:"bond_yield"`
	StorageCost     float64 `json:"storage_cost"`

	CalcDate        string  `json:"calc_date,omitempty"`
	LastTradeDate   string  `json:"last_trade_date,omitempty"`
	AccrualStart    string  `json:"accrual_start,omitempty"`
	AccrualEnd      string  `json:"accrual_end,omitempty"`
	Final           bool    `json:"final,omitempty"`
	FinalInterest   float64 `json:"final_interest,omitempty"`
	StripRate       float64 `json:"strip_rate,omitempty"`
	ForwardInterest float64 `json:"forward_interest,omitempty"`
	InterestSpread  float64 `json:"interest_spread,omitempty"`
}

func dateString(d civil.Date) string {
	if d == (civil.Date{}) {
		return ""
	}
	return d.String()
}

func parseDateString(field, s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, nil
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func toCachedRow(row *domain.InputRow) cachedRow {
	r := row.Record
	return cachedRow{
		Date:            dateString(row.Date),
		IssueCode:       row.IssueCode,
		UnderlyingID:    row.Taxonomy.UnderlyingID,
		MarketSegment:   row.Taxonomy.MarketSegment,
		UnderlyingType:  row.Taxonomy.UnderlyingType,
		RightType:       string(row.Taxonomy.RightType),
		SpreadCode:      row.Taxonomy.SpreadCode,
		DividendPV:      row.DividendPV,
		DividendFV:      row.DividendFV,
		ReferencePrice:  row.ReferencePrice,
		UnderlyingPrice: r.UnderlyingPrice,
		StrikePrice:     r.StrikePrice,
		RemainingDays:   r.RemainingDays,
		DomesticRate:    r.DomesticRate,
		ForeignRate:     r.ForeignRate,
		Volatility:      r.Volatility,
		BondTenorYears:  r.BondTenorYears,
		BondYield:       r.BondYield,
		StorageCost:     r.StorageCost,
		CalcDate:        dateString(r.RFR.CalcDate),
		LastTradeDate:   dateString(r.RFR.LastTradeDate),
		AccrualStart:    dateString(r.RFR.AccrualStart),
		AccrualEnd:      dateString(r.RFR.AccrualEnd),
		Final:           r.RFR.Final,
		FinalInterest:   r.RFR.FinalInterest,
		StripRate:       r.RFR.StripRate,
		ForwardInterest: r.RFR.ForwardInterest,
		InterestSpread:  r.RFR.InterestSpread,
	}
}

func (c cachedRow) inputRow() (*domain.InputRow, error) {
	row := &domain.InputRow{
		IssueCode: c.IssueCode,
		Taxonomy: domain.Taxonomy{
			UnderlyingID:   c.UnderlyingID,
			MarketSegment:  c.MarketSegment,
			UnderlyingType: c.UnderlyingType,
			RightType:      domain.RightType(c.RightType),
			SpreadCode:     c.SpreadCode,
		},
		Record: domain.MarketDataRecord{
			UnderlyingPrice: c.UnderlyingPrice,
			StrikePrice:     c.StrikePrice,
			RemainingDays:   c.RemainingDays,
			DomesticRate:    c.DomesticRate,
			ForeignRate:     c.ForeignRate,
			Volatility:      c.Volatility,
			BondTenorYears:  c.BondTenorYears,
			BondYield:       c.BondYield,
			StorageCost:     c.StorageCost,
			RFR: domain.RFRFields{
				Final:           c.Final,
				FinalInterest:   c.FinalInterest,
				StripRate:       c.StripRate,
				ForwardInterest: c.ForwardInterest,
				InterestSpread:  c.InterestSpread,
			},
		},
		DividendPV:     c.DividendPV,
		DividendFV:     c.DividendFV,
		ReferencePrice: c.ReferencePrice,
	}

	var err error
	for _, f := range []struct {
		name string
		src  string
		dst  *civil.Date
	}{
		{"date", c.Date, &row.Date},
		{"calc_date", c.CalcDate, &row.Record.RFR.CalcDate},
		{"last_trade_date", c.LastTradeDate, &row.Record.RFR.LastTradeDate},
		{"accrual_start", c.AccrualStart, &row.Record.RFR.AccrualStart},
		{"accrual_end", c.AccrualEnd, &row.Record.RFR.AccrualEnd},
	} {
		if *f.dst, err = parseDateString(f.name, f.src); err != nil {
			return nil, err
		}
	}
	return row, nil
}
