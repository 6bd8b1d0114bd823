package application

import (
	"encoding/json"
	"testing"
	"time"

	"cloud.google.com/go/civil"
)

func TestDate_JSON(t *testing.T) {
	var in RFRDTO
	body := `{"calc_date":"20240318","accrual_start":"20240301","accrual_end":"","last_trade_date":null}`
	if err := json.Unmarshal([]byte(body), &in); err != nil {
		t.Fatal(err)
	}
	if in.CalcDate.Date != (civil.Date{Year: 2024, Month: time.March, Day: 18}) {
		t.Errorf("calc_date = %v", in.CalcDate)
	}
	if in.AccrualStart.Date != (civil.Date{Year: 2024, Month: time.March, Day: 1}) {
		t.Errorf("accrual_start = %v", in.AccrualStart)
	}
	if in.AccrualEnd.Date != (civil.Date{}) || in.LastTradeDate.Date != (civil.Date{}) {
		t.Errorf("blank dates should stay zero: %+v", in)
	}

	out, err := json.Marshal(in.CalcDate)
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `"20240318"` {
		t.Errorf("marshal = %s", out)
	}
	if out, _ := json.Marshal(in.AccrualEnd); string(out) != `""` {
		t.Errorf("zero marshal = %s", out)
	}
}

func TestDate_RejectsOtherLayouts(t *testing.T) {
	for _, body := range []string{`"2024-03-18"`, `"20240230"`, `20240318`} {
		var d Date
		if err := json.Unmarshal([]byte(body), &d); err == nil {
			t.Errorf("%s accepted as %v", body, d)
		}
	}
}
