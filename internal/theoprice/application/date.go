package application

import (
	"bytes"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
)

// DateLayout HTTP 与命令行统一使用的日期格式
const DateLayout = "20060102"

// ParseDate 解析 YYYYMMDD
func ParseDate(s string) (civil.Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return civil.Date{}, err
	}
	return civil.DateOf(t), nil
}

// FormatDate 格式化为 YYYYMMDD，零值为空串
func FormatDate(d civil.Date) string {
	if d == (civil.Date{}) {
		return ""
	}
	return fmt.Sprintf("%04d%02d%02d", d.Year, int(d.Month), d.Day)
}

// Date 以 YYYYMMDD 收发的日期，空串与 null 表示未提供
type Date struct {
	civil.Date
}

// MarshalJSON 输出 YYYYMMDD
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + FormatDate(d.Date) + `"`), nil
}

// UnmarshalJSON 读取 YYYYMMDD
func (d *Date) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) || bytes.Equal(b, []byte(`""`)) {
		d.Date = civil.Date{}
		return nil
	}
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("date must be a YYYYMMDD string, got %s", b)
	}
	parsed, err := ParseDate(string(b[1 : len(b)-1]))
	if err != nil {
		return fmt.Errorf("date must be YYYYMMDD: %w", err)
	}
	d.Date = parsed
	return nil
}
