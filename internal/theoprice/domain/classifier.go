package domain

import "strings"

// Taxonomy 决定附表所需的商品分类属性
type Taxonomy struct {
	UnderlyingID   string    // 价格用基础资产ID (FORPRC_ULY_ID)
	MarketSegment  string    // 市场细分ID (SPI, EQU ...)
	UnderlyingType string    // 基础资产类型 (IDX, EQU, BON, IRT, CUR, COM)
	RightType      RightType // F/C/P
	SpreadCode     string    // 价差构成代码，空白表示单一合约
}

// 不计算理论价的基础资产：高股息50、股息成长50、VKOSPI 期货及欧洲斯托克50
var ineligibleUnderlyings = map[string]struct{}{
	"VKI": {},
	"XA4": {},
	"XA5": {},
	"EST": {},
}

// Classify 按商品分类决定附表，自上而下第一条匹配生效，价差检查优先于一切
func Classify(t Taxonomy) ScheduleCode {
	uly := strings.TrimSpace(t.UnderlyingID)
	seg := strings.TrimSpace(t.MarketSegment)
	typ := strings.TrimSpace(t.UnderlyingType)
	future := t.RightType == RightFuture
	option := t.RightType == RightCall || t.RightType == RightPut

	if strings.TrimSpace(t.SpreadCode) != "" {
		return ScheduleSpread
	}
	if _, ok := ineligibleUnderlyings[uly]; ok {
		return ScheduleNotApplicable
	}

	switch {
	case seg == "SPI" && typ == "IDX" && future:
		return ScheduleCarryCostIndex
	case seg == "EQU" && typ == "EQU" && future:
		return ScheduleCarryCostEquity
	case typ == "BON" && future:
		return ScheduleBondFutures
	case typ == "IRT" && future:
		return ScheduleRFRFutures
	case typ == "CUR" && future:
		return ScheduleCurrencyParity
	case typ == "COM" && uly == "KGD" && future:
		return ScheduleCommodityStorage
	case seg == "SPI" && typ == "IDX" && option:
		return ScheduleBinomialIndex
	case seg == "EQU" && typ == "EQU" && option:
		return ScheduleBinomialEquity
	case typ == "CUR" && uly == "USD" && option:
		return ScheduleClosedFormCurrency
	}
	return ScheduleNotApplicable
}

// SelectDividend 持有成本模型读取股息终值，二叉树读取股息现值，其余为 0
func SelectDividend(code ScheduleCode, presentValue, futureValue float64) float64 {
	switch {
	case code.IsCarryCost():
		return futureValue
	case code.IsBinomial():
		return presentValue
	}
	return 0
}
