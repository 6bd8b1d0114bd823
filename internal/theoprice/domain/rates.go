package domain

import (
	"fmt"
	"sort"
)

// ImpliedDomesticRate 由外汇掉期点反推国内(원화)利率
//
//	r = swapPoint*(1+rf*T)/spot*(1/T) + rf
func ImpliedDomesticRate(swapPoint, spot, remainingDays, foreignRate float64) (float64, error) {
	code := ScheduleCurrencyParity
	if err := checkRemainingDays(code, remainingDays); err != nil {
		return 0, err
	}
	if err := checkFinite(code, map[string]float64{
		"swap_point":       swapPoint,
		"underlying_price": spot,
		"foreign_rate":     foreignRate,
	}); err != nil {
		return 0, err
	}
	t := NewDayCountEngine(DefaultConventions()).Annualize(remainingDays)
	if t == 0 {
		return 0, invalid(code, "remaining_days", remainingDays, "time to expiry must be positive")
	}
	if spot == 0 {
		return 0, invalid(code, "underlying_price", spot, "must not be zero")
	}
	return checkResult(code, swapPoint*(1+foreignRate*t)/spot*(1/t)+foreignRate)
}

// InterpolateRate 期限结构线性插值，超出两端按端点斜率线性外推
func InterpolateRate(tenors, rates []float64, x float64) (float64, error) {
	if len(tenors) != len(rates) {
		return 0, fmt.Errorf("%w: %d tenors vs %d rates", ErrInvalidInput, len(tenors), len(rates))
	}
	if len(tenors) < 2 {
		return 0, fmt.Errorf("%w: need at least 2 curve points", ErrInvalidInput)
	}
	for i := 1; i < len(tenors); i++ {
		if tenors[i] <= tenors[i-1] {
			return 0, fmt.Errorf("%w: tenors must be strictly increasing at index %d", ErrInvalidInput, i)
		}
	}

	// 第一个 tenors[i] >= x 的位置
	i := sort.SearchFloat64s(tenors, x)
	switch {
	case i <= 0:
		i = 1
	case i >= len(tenors):
		i = len(tenors) - 1
	}
	x0, x1 := tenors[i-1], tenors[i]
	y0, y1 := rates[i-1], rates[i]
	return y0 + (y1-y0)*(x-x0)/(x1-x0), nil
}
