package export

import (
	"fmt"
	"io"

	goparquet "github.com/parquet-go/parquet-go"

	"github.com/gyeh/ccmcalc/internal/model"
)

// projectionRow mirrors the Parquet schema for one exported model record.
type projectionRow struct {
	Name                string   `parquet:"name"`
	NPI                 string   `parquet:"npi"`
	State               string   `parquet:"state"`
	TraditionalPatients int64    `parquet:"traditional_patients"`
	EstimatedPatients   int64    `parquet:"estimated_patients"`
	EnrolledPatients    int64    `parquet:"enrolled_patients"`
	CCMRevenue          float64  `parquet:"ccm_revenue"`
	CurrentAllowed      float64  `parquet:"current_allowed"`
	ProjectedTotal      float64  `parquet:"projected_total"`
	Change              float64  `parquet:"change"`
	PercentIncrease     *float64 `parquet:"percent_increase,optional"`
	Profit              *float64 `parquet:"profit,optional"`
}

// WriteParquet writes the projected records in model order. Totals are not
// included; they are cheap to recompute from the rows.
func WriteParquet(w io.Writer, records []model.ProjectedRecord) error {
	rows := make([]projectionRow, len(records))
	for i := range records {
		r := &records[i]
		rows[i] = projectionRow{
			Name:                r.Name,
			NPI:                 r.NPI,
			State:               r.State,
			TraditionalPatients: r.TraditionalPatients,
			EstimatedPatients:   r.EstimatedPatients,
			EnrolledPatients:    r.EnrolledPatients,
			CCMRevenue:          r.CCMRevenue,
			CurrentAllowed:      r.CurrentAllowed,
			ProjectedTotal:      r.ProjectedTotal,
			Change:              r.Change,
			PercentIncrease:     r.PercentIncrease,
			Profit:              r.Profit,
		}
	}

	writer := goparquet.NewGenericWriter[projectionRow](w)
	if _, err := writer.Write(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
