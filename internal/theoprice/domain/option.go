package domain

// OptionPricer 期权理论价，按附表选择二叉树或解析解
type OptionPricer struct {
	days  DayCountEngine
	steps int
}

func NewOptionPricer(conv Conventions) OptionPricer {
	return OptionPricer{days: NewDayCountEngine(conv), steps: conv.LatticeSteps}
}

// Price 没有对应公式的附表返回 0
func (o OptionPricer) Price(r MarketDataRecord) (float64, error) {
	code := r.Schedule
	if !code.IsBinomial() && code != ScheduleClosedFormCurrency {
		return 0, nil
	}
	if err := checkRemainingDays(code, r.RemainingDays); err != nil {
		return 0, err
	}
	fields := map[string]float64{
		"underlying_price": r.UnderlyingPrice,
		"strike_price":     r.StrikePrice,
		"domestic_rate":    r.DomesticRate,
		"volatility":       r.Volatility,
	}
	if code.IsBinomial() {
		fields["dividend"] = r.Dividend
	} else {
		fields["foreign_rate"] = r.ForeignRate
	}
	if err := checkFinite(code, fields); err != nil {
		return 0, err
	}

	t := o.days.Annualize(r.RemainingDays)
	if code.IsBinomial() {
		return binomialPrice(code, o.steps, r, t)
	}
	return closedFormPrice(code, r, t)
}
