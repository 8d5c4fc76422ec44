package model

// AssumptionSet holds the user-adjustable rates driving the CCM funnel.
// Percentages are stored as values in [0,100] and divided by 100 at use.
// The calculator performs no range enforcement: out-of-range or negative
// values flow through the arithmetic unchanged.
type AssumptionSet struct {
	TraditionalPercent float64 `json:"traditional_percent" yaml:"traditional_percent"`
	AdvantagePercent   float64 `json:"advantage_percent" yaml:"advantage_percent"`
	EligiblePercent    float64 `json:"eligible_percent" yaml:"eligible_percent"`
	EnrolledPercent    float64 `json:"enrolled_percent" yaml:"enrolled_percent"`
	EventsPerYear      float64 `json:"events_per_year" yaml:"events_per_year"`
	RevenuePerEvent    float64 `json:"revenue_per_event" yaml:"revenue_per_event"`
	ProfitPercent      float64 `json:"profit_percent" yaml:"profit_percent"`
}

// DefaultAssumptions returns the standard CCM program assumptions.
func DefaultAssumptions() AssumptionSet {
	return AssumptionSet{
		TraditionalPercent: 70,
		AdvantagePercent:   30,
		EligiblePercent:    80,
		EnrolledPercent:    40,
		EventsPerYear:      10,
		RevenuePerEvent:    50,
		ProfitPercent:      45,
	}
}

// AssumptionField describes one editable assumption for flag and form
// rendering. The schema is closed, so the list is enumerated explicitly
// rather than derived by reflection.
type AssumptionField struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Unit  string  `json:"unit"`
}

// AssumptionFields returns display metadata for every assumption, in form
// order. Min/Max are advisory display bounds only.
func AssumptionFields() []AssumptionField {
	return []AssumptionField{
		{Name: "traditional_percent", Label: "Traditional Medicare share", Min: 0, Max: 100, Unit: "%"},
		{Name: "advantage_percent", Label: "Medicare Advantage share", Min: 0, Max: 100, Unit: "%"},
		{Name: "eligible_percent", Label: "CCM-eligible patients", Min: 0, Max: 100, Unit: "%"},
		{Name: "enrolled_percent", Label: "Expected enrollment", Min: 0, Max: 100, Unit: "%"},
		{Name: "events_per_year", Label: "Billable events per year", Min: 0, Max: 12, Unit: "events"},
		{Name: "revenue_per_event", Label: "Revenue per event", Min: 0, Max: 1000, Unit: "USD"},
		{Name: "profit_percent", Label: "Profit margin", Min: 0, Max: 100, Unit: "%"},
	}
}
