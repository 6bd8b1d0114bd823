package mysql

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
)

// dateLayout 库中日期列为 YYYYMMDD 字符串
const dateLayout = "20060102"

// TheoPriceInputModel 理论价输入视图映射，由外部 ETL 按 종목×일자 汇总
// 左连接得到的列可能为 NULL，用指针承接
type TheoPriceInputModel struct {
	DD          string `gorm:"column:dd;type:char(8);primaryKey"`
	IsuCd       string `gorm:"column:isu_cd;type:varchar(12);primaryKey"`
	ForprcUlyID string `gorm:"column:forprc_uly_id;type:varchar(10)"`
	MktDtlID    string `gorm:"column:mkt_dtl_id;type:varchar(3)"`
	UlyTpCd     string `gorm:"column:uly_tp_cd;type:varchar(3)"`
	RghtTpCd    string `gorm:"column:rght_tp_cd;type:char(1)"`
	SpdCompstCd string `gorm:"column:spd_compst_cd;type:varchar(2)"`

	UlyPrc         *float64 `gorm:"column:uly_prc"`
	ExerPrc        *float64 `gorm:"column:exer_prc"`
	RemainDys      *float64 `gorm:"column:remain_dys"`
	DomRiskfreInt  *float64 `gorm:"column:dom_riskfre_int"`
	FornRiskfreInt *float64 `gorm:"column:forn_riskfre_int"`
	DivPrsntVal    *float64 `gorm:"column:fsetlprc_div_prsnt_val"`
	DivFutVal      *float64 `gorm:"column:fsetlprc_div_fut_val"`
	FinalVolt      *float64 `gorm:"column:final_volt"`
	StdgoodBndExp  *float64 `gorm:"column:stdgood_bnd_exp"`
	BndYd          *float64 `gorm:"column:bnd_yd"`
	StorgCost      *float64 `gorm:"column:storg_cost"`

	// RFR 期货 (별표9의2)
	LsttrdDD          *string  `gorm:"column:lsttrd_dd"`
	ApplStrtDD        *string  `gorm:"column:appl_strt_dd"`
	ApplEndDD         *string  `gorm:"column:appl_end_dd"`
	FinalYn           *string  `gorm:"column:final_yn"`
	FinalInt          *float64 `gorm:"column:final_int"`
	Mm3GovbndStripInt *float64 `gorm:"column:mm3_govbnd_strip_int"`
	FwdInt            *float64 `gorm:"column:fwd_int"`
	IntSpd            *float64 `gorm:"column:int_spd"`

	// 交易所已计算的理论价
	TheoPrcDB decimal.NullDecimal `gorm:"column:theo_prc_db;type:decimal(20,8)"`
}

func (TheoPriceInputModel) TableName() string { return "theo_price_inputs" }

func formatDate(d civil.Date) string {
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

func parseDate(s string) (civil.Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

func parseOptionalDate(field string, s *string) (civil.Date, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return civil.Date{}, nil
	}
	d, err := parseDate(*s)
	if err != nil {
		return civil.Date{}, fmt.Errorf("%s: %w", field, err)
	}
	return d, nil
}

func val(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// toInputRow 行映射；Schedule 与 Dividend 留给应用层决定
func toInputRow(m *TheoPriceInputModel) (*domain.InputRow, error) {
	dd, err := parseDate(m.DD)
	if err != nil {
		return nil, fmt.Errorf("row %s/%s: dd: %w", m.DD, m.IsuCd, err)
	}

	rfr := domain.RFRFields{
		CalcDate:        dd,
		Final:           m.FinalYn != nil && strings.EqualFold(strings.TrimSpace(*m.FinalYn), "Y"),
		FinalInterest:   val(m.FinalInt),
		StripRate:       val(m.Mm3GovbndStripInt),
		ForwardInterest: val(m.FwdInt),
		InterestSpread:  val(m.IntSpd),
	}
	for _, f := range []struct {
		name string
		src  *string
		dst  *civil.Date
	}{
		{"lsttrd_dd", m.LsttrdDD, &rfr.LastTradeDate},
		{"appl_strt_dd", m.ApplStrtDD, &rfr.AccrualStart},
		{"appl_end_dd", m.ApplEndDD, &rfr.AccrualEnd},
	} {
		if *f.dst, err = parseOptionalDate(f.name, f.src); err != nil {
			return nil, fmt.Errorf("row %s/%s: %w", m.DD, m.IsuCd, err)
		}
	}

	row := &domain.InputRow{
		Date:      dd,
		IssueCode: strings.TrimSpace(m.IsuCd),
		Taxonomy: domain.Taxonomy{
			UnderlyingID:   m.ForprcUlyID,
			MarketSegment:  m.MktDtlID,
			UnderlyingType: m.UlyTpCd,
			RightType:      domain.ParseRightType(m.RghtTpCd),
			SpreadCode:     m.SpdCompstCd,
		},
		Record: domain.MarketDataRecord{
			UnderlyingPrice: val(m.UlyPrc),
			StrikePrice:     val(m.ExerPrc),
			RemainingDays:   val(m.RemainDys),
			DomesticRate:    val(m.DomRiskfreInt),
			ForeignRate:     val(m.FornRiskfreInt),
			Volatility:      val(m.FinalVolt),
			BondTenorYears:  val(m.StdgoodBndExp),
			BondYield:       val(m.BndYd),
			StorageCost:     val(m.StorgCost),
			RFR:             rfr,
		},
		DividendPV: val(m.DivPrsntVal),
		DividendFV: val(m.DivFutVal),
	}
	if m.TheoPrcDB.Valid {
		ref := m.TheoPrcDB.Decimal
		row.ReferencePrice = &ref
	}
	return row, nil
}
