package domain

import (
	"cloud.google.com/go/civil"
)

const (
	// YearDays 年化分母，固定 365 天
	YearDays = 365
	// LatticeSteps 二叉树期数
	LatticeSteps = 49
)

// Conventions 注入各定价器的不可变常量
type Conventions struct {
	YearDays     float64
	LatticeSteps int
}

// DefaultConventions 监管规定使用的常量
func DefaultConventions() Conventions {
	return Conventions{YearDays: YearDays, LatticeSteps: LatticeSteps}
}

// Inclusion 区间端点的包含方式
type Inclusion string

const (
	InclusiveBoth    Inclusion = "both"
	InclusiveLeft    Inclusion = "left"
	InclusiveRight   Inclusion = "right"
	InclusiveNeither Inclusion = "neither"
)

// DayCountEngine 剩余期限年化与日历日计数
type DayCountEngine struct {
	conv Conventions
}

func NewDayCountEngine(conv Conventions) DayCountEngine {
	return DayCountEngine{conv: conv}
}

// Annualize T = remainingDays / 365
func (e DayCountEngine) Annualize(remainingDays float64) float64 {
	return remainingDays / e.conv.YearDays
}

// CountDates 统计 [start, end] 内按包含方式保留的日历日数
// end 早于 start 时区间为空；单日区间只有 both 计 1
func (e DayCountEngine) CountDates(start, end civil.Date, mode Inclusion) int {
	span := end.DaysSince(start)
	if span < 0 {
		return 0
	}
	n := span + 1
	switch mode {
	case InclusiveBoth:
		return n
	case InclusiveLeft, InclusiveRight:
		if span == 0 {
			return 0
		}
		return n - 1
	case InclusiveNeither:
		if span == 0 {
			return 0
		}
		return n - 2
	}
	return 0
}
