package domain

import "cloud.google.com/go/civil"

// MarketDataRecord 单个(종목, 일자)的理论价计算输入
// 附表决定读取哪些字段，其余字段忽略
type MarketDataRecord struct {
	UnderlyingPrice float64      // 基础资产价格
	StrikePrice     float64      // 行权价（期权）
	RemainingDays   float64      // 剩余天数
	DomesticRate    float64      // 国内无风险利率
	ForeignRate     float64      // 国外无风险利率
	Dividend        float64      // 股息（按附表为现值或终值）
	Volatility      float64      // 年化波动率
	RightType       RightType    // F/C/P
	Schedule        ScheduleCode // 附表

	BondTenorYears float64 // 标准国债期限（年）
	BondYield      float64
	StorageCost    float64 // 黄金期货每克保管费

	RFR RFRFields
}

// RFRFields 无风险参考利率(RFR)期货专用字段
type RFRFields struct {
	LastTradeDate   civil.Date
	AccrualStart    civil.Date
	AccrualEnd      civil.Date
	Final           bool    // 是否已进入最终结算
	FinalInterest   float64 // 最终结算利率（复利因子）
	StripRate       float64 // 3个月国债本息分离利率，百分比
	ForwardInterest float64
	InterestSpread  float64
	CalcDate        civil.Date
}
