package domain

import "math"

// BinomialLattice 单次期权定价使用的二叉树，计算结束即丢弃
type BinomialLattice struct {
	Steps    int
	Up       float64
	Down     float64
	ProbUp   float64
	Terminal []float64 // 到期时第 k 个状态的基础资产价格
	Payoff   []float64
}

// newBinomialLattice 构建风险中性二叉树
// 除息调整只在到期价格上做一次，不逐期复利
func newBinomialLattice(code ScheduleCode, steps int, spot, dividend, strike, rate, vol, t float64, right RightType) (*BinomialLattice, error) {
	if t <= 0 {
		return nil, invalid(code, "remaining_days", t, "time to expiry must be positive")
	}
	if vol <= 0 {
		return nil, invalid(code, "volatility", vol, "must be positive")
	}
	dt := t / float64(steps)
	u := math.Exp(vol * math.Sqrt(dt))
	d := math.Exp(-1 * vol * math.Sqrt(dt))
	p := (math.Exp(rate*dt) - d) / (u - d)
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, invalid(code, "risk_neutral_probability", p, "outside [0, 1]")
	}

	l := &BinomialLattice{
		Steps:    steps,
		Up:       u,
		Down:     d,
		ProbUp:   p,
		Terminal: make([]float64, steps+1),
		Payoff:   make([]float64, steps+1),
	}
	exDiv := spot - dividend
	for k := 0; k <= steps; k++ {
		st := exDiv * math.Pow(u, float64(k)) * math.Pow(d, float64(steps-k))
		l.Terminal[k] = st
		if right == RightCall {
			l.Payoff[k] = math.Max(st-strike, 0)
		} else {
			l.Payoff[k] = math.Max(strike-st, 0)
		}
	}
	return l, nil
}

// Expectation 到期收益在风险中性终端分布下的期望（未贴现）
// 直接按二项分布系数求和，k 从 0 递增以保持与参考实现逐位一致
func (l *BinomialLattice) Expectation() float64 {
	n := l.Steps
	p := l.ProbUp
	q := 1 - p
	coef := 1.0 // C(n, 0)
	var sum float64
	for k := 0; k <= n; k++ {
		if k > 0 {
			// C(n,k) = C(n,k-1)*(n-k+1)/k，n=49 时在 float64 中精确
			coef = coef * float64(n-k+1) / float64(k)
		}
		sum += coef * math.Pow(p, float64(k)) * math.Pow(q, float64(n-k)) * l.Payoff[k]
	}
	return sum
}

// binomialPrice 二叉树期权理论价（现值）
func binomialPrice(code ScheduleCode, steps int, r MarketDataRecord, t float64) (float64, error) {
	lattice, err := newBinomialLattice(code, steps, r.UnderlyingPrice, r.Dividend, r.StrikePrice,
		r.DomesticRate, r.Volatility, t, r.RightType)
	if err != nil {
		return 0, err
	}
	return checkResult(code, math.Exp(-1*r.DomesticRate*t)*lattice.Expectation())
}
