// 包 理论价格计算的领域模型
package domain

import "strings"

// ScheduleCode 衍生品市场业务规定实施细则中的附表编号，决定使用哪条理论价格公式
type ScheduleCode string

const (
	ScheduleNotApplicable      ScheduleCode = "not-applicable"
	ScheduleSpread             ScheduleCode = "spread"
	ScheduleCarryCostIndex     ScheduleCode = "carry-cost-index"         // 附表7 股指期货
	ScheduleCarryCostEquity    ScheduleCode = "carry-cost-equity"        // 附表8 个股期货
	ScheduleCarryCostSector    ScheduleCode = "carry-cost-equity-sector" // 附表8之2
	ScheduleBondFutures        ScheduleCode = "bond-futures"             // 附表9
	ScheduleRFRFutures         ScheduleCode = "rfr-futures"              // 附表9之2
	ScheduleCurrencyParity     ScheduleCode = "currency-parity"          // 附表12
	ScheduleCommodityStorage   ScheduleCode = "commodity-storage"        // 附表13
	ScheduleBinomialIndex      ScheduleCode = "binomial-call-put-index"  // 附表15
	ScheduleBinomialEquity     ScheduleCode = "binomial-call-put-equity" // 附表16
	ScheduleClosedFormCurrency ScheduleCode = "closed-form-currency-option"
)

// annexLabels 交易所内部使用的附表名称
var annexLabels = map[string]ScheduleCode{
	"별표7":    ScheduleCarryCostIndex,
	"별표8":    ScheduleCarryCostEquity,
	"별표8의2":  ScheduleCarryCostSector,
	"별표9":    ScheduleBondFutures,
	"별표9의2":  ScheduleRFRFutures,
	"별표12":   ScheduleCurrencyParity,
	"별표13":   ScheduleCommodityStorage,
	"별표15":   ScheduleBinomialIndex,
	"별표16":   ScheduleBinomialEquity,
	"별표17":   ScheduleClosedFormCurrency,
	"스프레드":   ScheduleSpread,
	"이론가 산출대상 상품 아님": ScheduleNotApplicable,
}

var knownCodes = map[ScheduleCode]struct{}{
	ScheduleNotApplicable:      {},
	ScheduleSpread:             {},
	ScheduleCarryCostIndex:     {},
	ScheduleCarryCostEquity:    {},
	ScheduleCarryCostSector:    {},
	ScheduleBondFutures:        {},
	ScheduleRFRFutures:         {},
	ScheduleCurrencyParity:     {},
	ScheduleCommodityStorage:   {},
	ScheduleBinomialIndex:      {},
	ScheduleBinomialEquity:     {},
	ScheduleClosedFormCurrency: {},
}

// ParseScheduleCode 解析附表编号，无法识别的一律视为 not-applicable
func ParseScheduleCode(s string) ScheduleCode {
	s = strings.TrimSpace(s)
	if code, ok := annexLabels[s]; ok {
		return code
	}
	code := ScheduleCode(strings.ToLower(s))
	if _, ok := knownCodes[code]; ok {
		return code
	}
	return ScheduleNotApplicable
}

// Computable 该附表是否对应一条理论价格公式
// 价格为 0 时调用方需通过此方法区分“无公式”和“理论价为 0”
func (c ScheduleCode) Computable() bool {
	switch c {
	case ScheduleNotApplicable, ScheduleSpread:
		return false
	}
	_, ok := knownCodes[c]
	return ok
}

// IsCarryCost 持有成本模型
func (c ScheduleCode) IsCarryCost() bool {
	return c == ScheduleCarryCostIndex || c == ScheduleCarryCostEquity || c == ScheduleCarryCostSector
}

// IsBinomial 二叉树模型
func (c ScheduleCode) IsBinomial() bool {
	return c == ScheduleBinomialIndex || c == ScheduleBinomialEquity
}

func (c ScheduleCode) String() string { return string(c) }

// RightType 期货/期权区分代码
type RightType string

const (
	RightFuture RightType = "F"
	RightCall   RightType = "C"
	RightPut    RightType = "P"
)

// ParseRightType 接受 F/C/P 及 FUTURE/CALL/PUT，其余原样返回，由分派器按“不适用”处理
func ParseRightType(s string) RightType {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "F", "FUTURE":
		return RightFuture
	case "C", "CALL":
		return RightCall
	case "P", "PUT":
		return RightPut
	}
	return RightType(s)
}
