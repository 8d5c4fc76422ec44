package model

// PhysicianRecord is a single provider row from the CMS Medicare Physician &
// Other Practitioners dataset. Raw fields are kept verbatim so projections can
// always be recomputed from the original inputs.
type PhysicianRecord struct {
	NPI                string  `json:"npi"`
	Name               string  `json:"name"`
	State              string  `json:"state"`
	TotalBeneficiaries int64   `json:"total_beneficiaries"`
	MedicareAllowed    float64 `json:"medicare_allowed"`
}

// ProjectedRecord extends a PhysicianRecord with the CCM funnel output.
// Patient counts are rounded at each stage; currency fields are never rounded
// internally (formatting happens at the display/export layer).
type ProjectedRecord struct {
	PhysicianRecord

	TraditionalPatients int64   `json:"traditional_patients"`
	EstimatedPatients   int64   `json:"estimated_patients"`
	EnrolledPatients    int64   `json:"enrolled_patients"`
	CCMRevenue          float64 `json:"ccm_revenue"`
	CurrentAllowed      float64 `json:"current_allowed"`
	ProjectedTotal      float64 `json:"projected_total"`
	Change              float64 `json:"change"`

	// PercentIncrease is nil when CurrentAllowed is zero, where the ratio is
	// undefined.
	PercentIncrease *float64 `json:"percent_increase,omitempty"`

	// Profit is nil unless profit mode was enabled at projection time. Zero is
	// a valid computed profit, so absence is explicit rather than zero-valued.
	Profit *float64 `json:"profit,omitempty"`
}

// Totals holds field-wise sums over a set of projected records. Percent
// increase is not additive and is deliberately absent. Nil profits count as
// zero, so Profit is always a plain number.
type Totals struct {
	TraditionalPatients int64   `json:"traditional_patients"`
	EstimatedPatients   int64   `json:"estimated_patients"`
	EnrolledPatients    int64   `json:"enrolled_patients"`
	CCMRevenue          float64 `json:"ccm_revenue"`
	CurrentAllowed      float64 `json:"current_allowed"`
	ProjectedTotal      float64 `json:"projected_total"`
	Change              float64 `json:"change"`
	Profit              float64 `json:"profit"`
}
