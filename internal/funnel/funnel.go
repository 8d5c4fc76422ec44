// Package funnel implements the CCM revenue projection: the patient funnel
// from total Medicare beneficiaries down to enrolled CCM patients, and the
// revenue and profit figures derived from it. Everything here is pure and
// deterministic.
package funnel

import (
	"fmt"
	"math"

	"github.com/gyeh/ccmcalc/internal/model"
)

// estimateMultiplier scales traditional-Medicare beneficiary counts up to an
// estimated traditional+Advantage total. It is a fixed empirical constant,
// not derived from the traditional/advantage share assumptions.
const estimateMultiplier = 1.33

// Project computes the full funnel for one physician under the given
// assumptions. Patient counts round half-away-from-zero at each stage
// (math.Round); currency values are never rounded here.
func Project(rec model.PhysicianRecord, a model.AssumptionSet, profitMode bool) model.ProjectedRecord {
	traditional := rec.TotalBeneficiaries
	estimated := int64(math.Round(float64(traditional) * estimateMultiplier))
	enrolled := int64(math.Round(float64(estimated) * (a.EligiblePercent / 100) * (a.EnrolledPercent / 100)))

	ccm := float64(enrolled) * a.EventsPerYear * a.RevenuePerEvent
	current := rec.MedicareAllowed
	projected := current + ccm

	p := model.ProjectedRecord{
		PhysicianRecord:     rec,
		TraditionalPatients: traditional,
		EstimatedPatients:   estimated,
		EnrolledPatients:    enrolled,
		CCMRevenue:          ccm,
		CurrentAllowed:      current,
		ProjectedTotal:      projected,
		Change:              projected - current,
	}

	// Division by zero: the ratio is undefined when there is no current
	// revenue, so the field stays nil instead of carrying a non-finite float.
	if current != 0 {
		pct := p.Change / current * 100
		p.PercentIncrease = &pct
	}

	if profitMode {
		profit := projected * (a.ProfitPercent / 100)
		p.Profit = &profit
	}

	return p
}

// Aggregate reduces projected records to field-wise totals. Empty input
// yields the zero value. Summation is order-dependent only up to
// floating-point associativity.
func Aggregate(records []model.ProjectedRecord) model.Totals {
	var t model.Totals
	for _, r := range records {
		t.TraditionalPatients += r.TraditionalPatients
		t.EstimatedPatients += r.EstimatedPatients
		t.EnrolledPatients += r.EnrolledPatients
		t.CCMRevenue += r.CCMRevenue
		t.CurrentAllowed += r.CurrentAllowed
		t.ProjectedTotal += r.ProjectedTotal
		t.Change += r.Change
		if r.Profit != nil {
			t.Profit += *r.Profit
		}
	}
	return t
}

// FormatPercent renders a percent-increase value with one decimal place.
// Nil (undefined) values render as an empty string.
func FormatPercent(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}
