package mysql

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/theoprice/internal/theoprice/domain"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(gormmysql.New(gormmysql.Config{
		DSN:                       "reader:secret@tcp(127.0.0.1:3306)/theo?parseTime=true",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	if err != nil {
		t.Fatal(err)
	}
	return db
}

func TestInputRepository_Query(t *testing.T) {
	repo := &inputRepository{db: dryRunDB(t), maxTries: 1}
	from := civil.Date{Year: 2024, Month: time.March, Day: 18}
	to := civil.Date{Year: 2024, Month: time.March, Day: 20}

	var models []*TheoPriceInputModel
	stmt := repo.query(context.Background(), from, to).Find(&models).Statement
	sql := stmt.SQL.String()
	for _, want := range []string{"`theo_price_inputs`", "dd BETWEEN ? AND ?", "ORDER BY dd, isu_cd"} {
		if !strings.Contains(sql, want) {
			t.Errorf("sql %q does not contain %q", sql, want)
		}
	}
	if len(stmt.Vars) != 2 || stmt.Vars[0] != "20240318" || stmt.Vars[1] != "20240320" {
		t.Errorf("vars = %v", stmt.Vars)
	}

	rows, err := repo.ListByDateRange(context.Background(), from, to)
	if err != nil || len(rows) != 0 {
		t.Errorf("dry run rows = %v, err = %v", rows, err)
	}
}

func TestToInputRow(t *testing.T) {
	m := &TheoPriceInputModel{
		DD:            "20240318",
		IsuCd:         "KR4101V30001 ",
		ForprcUlyID:   "K2I",
		MktDtlID:      "SPI",
		UlyTpCd:       "IDX",
		RghtTpCd:      "F",
		SpdCompstCd:   " ",
		UlyPrc:        ptr(1337.2),
		RemainDys:     ptr(2.0),
		DomRiskfreInt: ptr(0.032367),
		DivPrsntVal:   ptr(1.2),
		DivFutVal:     ptr(1.25),
		TheoPrcDB:     decimal.NewNullDecimal(decimal.RequireFromString("1337.43")),
	}
	row, err := toInputRow(m)
	if err != nil {
		t.Fatal(err)
	}
	if row.Date != (civil.Date{Year: 2024, Month: time.March, Day: 18}) || row.IssueCode != "KR4101V30001" {
		t.Errorf("key fields: %+v", row)
	}
	if domain.Classify(row.Taxonomy) != domain.ScheduleCarryCostIndex {
		t.Errorf("taxonomy %+v does not classify as index carry", row.Taxonomy)
	}
	if row.Record.UnderlyingPrice != 1337.2 || row.Record.RemainingDays != 2 || row.Record.StrikePrice != 0 {
		t.Errorf("record: %+v", row.Record)
	}
	if row.DividendPV != 1.2 || row.DividendFV != 1.25 || row.Record.Dividend != 0 {
		t.Errorf("dividends: pv=%v fv=%v record=%v", row.DividendPV, row.DividendFV, row.Record.Dividend)
	}
	if row.ReferencePrice == nil || !row.ReferencePrice.Equal(decimal.RequireFromString("1337.43")) {
		t.Errorf("reference = %v", row.ReferencePrice)
	}
}

func TestToInputRow_RFR(t *testing.T) {
	m := &TheoPriceInputModel{
		DD:                "20240318",
		IsuCd:             "KR4A01V60001",
		UlyTpCd:           "IRT",
		RghtTpCd:          "F",
		LsttrdDD:          ptr("20240618"),
		ApplStrtDD:        ptr("20240320"),
		ApplEndDD:         ptr("20240619"),
		FinalYn:           ptr("y"),
		FinalInt:          ptr(1.0002),
		Mm3GovbndStripInt: ptr(3.5),
	}
	row, err := toInputRow(m)
	if err != nil {
		t.Fatal(err)
	}
	if row.ReferencePrice != nil {
		t.Errorf("null reference mapped to %v", row.ReferencePrice)
	}
	f := row.Record.RFR
	if !f.Final || f.CalcDate != row.Date || f.AccrualEnd != (civil.Date{Year: 2024, Month: time.June, Day: 19}) {
		t.Errorf("rfr fields: %+v", f)
	}

	price, err := domain.NewRFRFuturesPricer(domain.DefaultConventions()).Price(f)
	if err != nil {
		t.Fatal(err)
	}
	if price < 96.496 || price > 96.497 {
		t.Errorf("price = %v", price)
	}
}

func TestToInputRow_BadDate(t *testing.T) {
	if _, err := toInputRow(&TheoPriceInputModel{DD: "2024-03-18", IsuCd: "X"}); err == nil {
		t.Error("expected error for malformed dd")
	}
	if _, err := toInputRow(&TheoPriceInputModel{DD: "20240318", IsuCd: "X", ApplEndDD: ptr("0619")}); err == nil {
		t.Error("expected error for malformed appl_end_dd")
	}
	row, err := toInputRow(&TheoPriceInputModel{DD: "20240318", IsuCd: "X", ApplEndDD: ptr("  ")})
	if err != nil || row.Record.RFR.AccrualEnd != (civil.Date{}) {
		t.Errorf("blank optional date: %v, %v", row, err)
	}
}

func TestFormatDate(t *testing.T) {
	if got := formatDate(civil.Date{Year: 2024, Month: time.January, Day: 5}); got != "20240105" {
		t.Errorf("formatDate = %s", got)
	}
}
