// Package export serializes a projected model to CSV and Parquet.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/gyeh/ccmcalc/internal/funnel"
	"github.com/gyeh/ccmcalc/internal/model"
)

// WriteCSV writes one header row, one row per record in model order, and a
// trailing Totals row. The Profit column appears only in profit mode.
func WriteCSV(w io.Writer, records []model.ProjectedRecord, totals model.Totals, profitMode bool) error {
	cw := csv.NewWriter(w)

	header := []string{
		"Name", "NPI", "State",
		"Traditional Patients", "Estimated Patients", "Enrolled Patients",
		"CCM Revenue", "Current Medicare Allowed", "Projected Total",
		"Change", "Percent Increase",
	}
	if profitMode {
		header = append(header, "Profit")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for i := range records {
		r := &records[i]
		row := []string{
			r.Name, r.NPI, r.State,
			formatCount(r.TraditionalPatients),
			formatCount(r.EstimatedPatients),
			formatCount(r.EnrolledPatients),
			formatMoney(r.CCMRevenue),
			formatMoney(r.CurrentAllowed),
			formatMoney(r.ProjectedTotal),
			formatMoney(r.Change),
			funnel.FormatPercent(r.PercentIncrease),
		}
		if profitMode {
			row = append(row, formatOptMoney(r.Profit))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	// Totals row: identifier and percent columns stay blank.
	totalRow := []string{
		"Totals", "", "",
		formatCount(totals.TraditionalPatients),
		formatCount(totals.EstimatedPatients),
		formatCount(totals.EnrolledPatients),
		formatMoney(totals.CCMRevenue),
		formatMoney(totals.CurrentAllowed),
		formatMoney(totals.ProjectedTotal),
		formatMoney(totals.Change),
		"",
	}
	if profitMode {
		totalRow = append(totalRow, formatMoney(totals.Profit))
	}
	if err := cw.Write(totalRow); err != nil {
		return err
	}

	cw.Flush()
	return cw.Error()
}

func formatCount(v int64) string {
	return strconv.FormatInt(v, 10)
}

func formatMoney(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatOptMoney(v *float64) string {
	if v == nil {
		return ""
	}
	return formatMoney(*v)
}
