package domain

// TheoPriceDispatcher 理论价入口，按期货/期权区分代码路由
// 无共享可变状态，可并发调用
type TheoPriceDispatcher struct {
	futures FuturesPricer
	options OptionPricer
	rfr     RFRFuturesPricer
}

// NewTheoPriceDispatcher 使用监管常量(365, 49)
func NewTheoPriceDispatcher() *TheoPriceDispatcher {
	return NewTheoPriceDispatcherWith(DefaultConventions())
}

func NewTheoPriceDispatcherWith(conv Conventions) *TheoPriceDispatcher {
	return &TheoPriceDispatcher{
		futures: NewFuturesPricer(conv),
		options: NewOptionPricer(conv),
		rfr:     NewRFRFuturesPricer(conv),
	}
}

// Price F → 期货，C/P → 期权，其他 → 0
func (d *TheoPriceDispatcher) Price(r MarketDataRecord) (float64, error) {
	switch r.RightType {
	case RightFuture:
		return d.futures.Price(r)
	case RightCall, RightPut:
		return d.options.Price(r)
	}
	return 0, nil
}

// PriceRecord 记录级入口：价差合约为 0，RFR 期货走单独公式，其余交给 Price
func (d *TheoPriceDispatcher) PriceRecord(r MarketDataRecord) (float64, error) {
	switch r.Schedule {
	case ScheduleSpread:
		return 0, nil
	case ScheduleRFRFutures:
		return d.rfr.Price(r.RFR)
	}
	return d.Price(r)
}
