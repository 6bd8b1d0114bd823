package domain

import "math"

const (
	bondCoupon    = 2.5 // 标准国债半年票息（年 5%）
	bondPrincipal = 100.0
)

// FuturesPricer 期货理论价
type FuturesPricer struct {
	days DayCountEngine
}

func NewFuturesPricer(conv Conventions) FuturesPricer {
	return FuturesPricer{days: NewDayCountEngine(conv)}
}

// Price 按附表计算期货理论价，没有对应公式的附表返回 0
func (f FuturesPricer) Price(r MarketDataRecord) (float64, error) {
	code := r.Schedule
	switch {
	case code.IsCarryCost():
		if err := checkFutureInputs(code, r.RemainingDays, map[string]float64{
			"underlying_price": r.UnderlyingPrice,
			"domestic_rate":    r.DomesticRate,
			"dividend":         r.Dividend,
		}); err != nil {
			return 0, err
		}
		t := f.days.Annualize(r.RemainingDays)
		return checkResult(code, r.UnderlyingPrice*(1+r.DomesticRate*t)-r.Dividend)

	case code == ScheduleBondFutures:
		if err := checkFinite(code, map[string]float64{
			"bond_tenor_years": r.BondTenorYears,
			"bond_yield":       r.BondYield,
		}); err != nil {
			return 0, err
		}
		return checkResult(code, bondFuturesPrice(r.BondTenorYears, r.BondYield))

	case code == ScheduleCurrencyParity:
		if err := checkFutureInputs(code, r.RemainingDays, map[string]float64{
			"underlying_price": r.UnderlyingPrice,
			"domestic_rate":    r.DomesticRate,
			"foreign_rate":     r.ForeignRate,
		}); err != nil {
			return 0, err
		}
		t := f.days.Annualize(r.RemainingDays)
		denom := 1 + r.ForeignRate*t
		if denom == 0 {
			return 0, invalid(code, "foreign_rate", r.ForeignRate, "foreign growth factor is zero")
		}
		return checkResult(code, r.UnderlyingPrice*(1+r.DomesticRate*t)/denom)

	case code == ScheduleCommodityStorage:
		if err := checkFutureInputs(code, r.RemainingDays, map[string]float64{
			"underlying_price": r.UnderlyingPrice,
			"domestic_rate":    r.DomesticRate,
			"storage_cost":     r.StorageCost,
		}); err != nil {
			return 0, err
		}
		t := f.days.Annualize(r.RemainingDays)
		return checkResult(code, r.UnderlyingPrice*(1+r.DomesticRate*t)+r.StorageCost)
	}
	return 0, nil
}

// bondFuturesPrice 以债券收益率贴现假想标准国债（半年付息）
// 期限先截断为整数年再决定循环上界
func bondFuturesPrice(tenorYears, yield float64) float64 {
	periods := 2 * int(tenorYears)
	base := 1 + yield/2
	var price float64
	for i := 1; i <= periods; i++ {
		price += bondCoupon / math.Pow(base, float64(i))
	}
	price += bondPrincipal / math.Pow(base, float64(periods))
	return price
}

func checkFutureInputs(code ScheduleCode, remainingDays float64, fields map[string]float64) error {
	if err := checkRemainingDays(code, remainingDays); err != nil {
		return err
	}
	return checkFinite(code, fields)
}

func checkRemainingDays(code ScheduleCode, remainingDays float64) error {
	if math.IsNaN(remainingDays) || math.IsInf(remainingDays, 0) {
		return invalid(code, "remaining_days", remainingDays, "not a finite number")
	}
	if remainingDays < 0 {
		return invalid(code, "remaining_days", remainingDays, "must not be negative")
	}
	return nil
}
