package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidInput 输入在数值上无法计算理论价（除零、对数域外、NaN 等）
var ErrInvalidInput = errors.New("theoprice: invalid input")

// ValidityError 单条记录的数值有效性错误，批量计算时只标记该条记录
type ValidityError struct {
	Schedule ScheduleCode
	Field    string
	Value    float64
	Reason   string
}

func (e *ValidityError) Error() string {
	return fmt.Sprintf("theoprice: %s: %s=%v: %s", e.Schedule, e.Field, e.Value, e.Reason)
}

func (e *ValidityError) Unwrap() error { return ErrInvalidInput }

func invalid(code ScheduleCode, field string, value float64, reason string) error {
	return &ValidityError{Schedule: code, Field: field, Value: value, Reason: reason}
}

// checkFinite 校验公式实际读取的字段
func checkFinite(code ScheduleCode, fields map[string]float64) error {
	for name, v := range fields {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return invalid(code, name, v, "not a finite number")
		}
	}
	return nil
}

func checkResult(code ScheduleCode, price float64) (float64, error) {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, invalid(code, "price", price, "result is not a finite number")
	}
	return price, nil
}
