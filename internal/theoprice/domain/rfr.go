package domain

// RFRFuturesPricer 参考利率期货理论价，以 100 减理论利率报价
type RFRFuturesPricer struct {
	days DayCountEngine
	conv Conventions
}

func NewRFRFuturesPricer(conv Conventions) RFRFuturesPricer {
	return RFRFuturesPricer{days: NewDayCountEngine(conv), conv: conv}
}

// Price 最终结算前用远期利率减利差；进入最终结算后用已确定利率与剩余期间的本息分离利率
func (p RFRFuturesPricer) Price(f RFRFields) (float64, error) {
	code := ScheduleRFRFutures
	var theoInterest float64
	if f.Final {
		if err := checkFinite(code, map[string]float64{
			"final_interest": f.FinalInterest,
			"strip_rate":     f.StripRate,
		}); err != nil {
			return 0, err
		}
		x := p.days.CountDates(f.CalcDate, f.AccrualStart, InclusiveLeft)
		n := p.days.CountDates(f.AccrualStart, f.AccrualEnd, InclusiveBoth)
		if n == 0 {
			return 0, invalid(code, "accrual_days", 0, "accrual end precedes accrual start")
		}
		strip := 1 + f.StripRate/100*float64(n-x)/p.conv.YearDays
		theoInterest = p.conv.YearDays / float64(n) * (f.FinalInterest*strip - 1) * 100
	} else {
		if err := checkFinite(code, map[string]float64{
			"forward_interest": f.ForwardInterest,
			"interest_spread":  f.InterestSpread,
		}); err != nil {
			return 0, err
		}
		theoInterest = f.ForwardInterest - f.InterestSpread
	}
	return checkResult(code, 100-theoInterest)
}
