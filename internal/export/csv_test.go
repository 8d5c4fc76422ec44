package export

import (
	"bytes"
	"encoding/csv"
	"reflect"
	"testing"

	"github.com/gyeh/ccmcalc/internal/funnel"
	"github.com/gyeh/ccmcalc/internal/model"
)

func projected(t *testing.T, benes int64, allowed float64, profitMode bool) model.ProjectedRecord {
	t.Helper()
	return funnel.Project(model.PhysicianRecord{
		NPI:                "1234567890",
		Name:               "Jane Smith",
		State:              "NY",
		TotalBeneficiaries: benes,
		MedicareAllowed:    allowed,
	}, model.DefaultAssumptions(), profitMode)
}

func parseCSV(t *testing.T, buf *bytes.Buffer) [][]string {
	t.Helper()
	rows, err := csv.NewReader(buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	return rows
}

func TestWriteCSV(t *testing.T) {
	rec := projected(t, 100, 10000, false)
	records := []model.ProjectedRecord{rec}
	totals := funnel.Aggregate(records)

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, totals, false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows := parseCSV(t, &buf)

	if len(rows) != 3 {
		t.Fatalf("got %d rows, want header + record + totals", len(rows))
	}

	wantHeader := []string{
		"Name", "NPI", "State",
		"Traditional Patients", "Estimated Patients", "Enrolled Patients",
		"CCM Revenue", "Current Medicare Allowed", "Projected Total",
		"Change", "Percent Increase",
	}
	if !reflect.DeepEqual(rows[0], wantHeader) {
		t.Errorf("header: got %v", rows[0])
	}

	wantRecord := []string{
		"Jane Smith", "1234567890", "NY",
		"100", "133", "43",
		"21500.00", "10000.00", "31500.00",
		"21500.00", "215.0",
	}
	if !reflect.DeepEqual(rows[1], wantRecord) {
		t.Errorf("record row: got %v, want %v", rows[1], wantRecord)
	}

	if rows[2][0] != "Totals" || rows[2][1] != "" || rows[2][2] != "" {
		t.Errorf("totals row identity columns: got %v", rows[2][:3])
	}
	if rows[2][8] != "31500.00" {
		t.Errorf("totals projected: got %q", rows[2][8])
	}
	if rows[2][10] != "" {
		t.Errorf("totals percent column must be blank, got %q", rows[2][10])
	}
}

func TestWriteCSV_ProfitColumn(t *testing.T) {
	t.Run("present_in_profit_mode", func(t *testing.T) {
		records := []model.ProjectedRecord{projected(t, 100, 10000, true)}
		totals := funnel.Aggregate(records)

		var buf bytes.Buffer
		if err := WriteCSV(&buf, records, totals, true); err != nil {
			t.Fatalf("WriteCSV: %v", err)
		}
		rows := parseCSV(t, &buf)

		if rows[0][len(rows[0])-1] != "Profit" {
			t.Errorf("last header column: got %q, want Profit", rows[0][len(rows[0])-1])
		}
		if rows[1][len(rows[1])-1] != "14175.00" {
			t.Errorf("profit cell: got %q, want 14175.00", rows[1][len(rows[1])-1])
		}
		if rows[2][len(rows[2])-1] != "14175.00" {
			t.Errorf("profit total: got %q, want 14175.00", rows[2][len(rows[2])-1])
		}
	})

	t.Run("absent_otherwise", func(t *testing.T) {
		records := []model.ProjectedRecord{projected(t, 100, 10000, false)}
		var buf bytes.Buffer
		if err := WriteCSV(&buf, records, funnel.Aggregate(records), false); err != nil {
			t.Fatalf("WriteCSV: %v", err)
		}
		rows := parseCSV(t, &buf)
		if len(rows[0]) != 11 {
			t.Errorf("header width: got %d, want 11", len(rows[0]))
		}
	})
}

func TestWriteCSV_BlankPercentAtZeroCurrent(t *testing.T) {
	records := []model.ProjectedRecord{projected(t, 100, 0, false)}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, funnel.Aggregate(records), false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows := parseCSV(t, &buf)
	if rows[1][10] != "" {
		t.Errorf("percent for zero current revenue: got %q, want blank", rows[1][10])
	}
}

func TestWriteCSV_RowOrderFollowsInput(t *testing.T) {
	records := []model.ProjectedRecord{}
	for _, name := range []string{"C Doc", "A Doc", "B Doc"} {
		p := funnel.Project(model.PhysicianRecord{NPI: name, Name: name, TotalBeneficiaries: 10},
			model.DefaultAssumptions(), false)
		records = append(records, p)
	}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, funnel.Aggregate(records), false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows := parseCSV(t, &buf)
	for i, want := range []string{"C Doc", "A Doc", "B Doc"} {
		if rows[i+1][0] != want {
			t.Errorf("row %d: got %q, want %q", i+1, rows[i+1][0], want)
		}
	}
}
