package model

// ProjectType selects the unit-economics branch used by the simulation.
type ProjectType string

const (
	ProjectSolar   ProjectType = "solar"
	ProjectWind    ProjectType = "wind"
	ProjectStorage ProjectType = "storage"
)

// ProjectStatus is the lifecycle state of a project.
type ProjectStatus string

const (
	StatusOperational    ProjectStatus = "operational"
	StatusConstruction   ProjectStatus = "construction"
	StatusDecommissioned ProjectStatus = "decommissioned"
)

// Project is one renewable-energy asset held by the fund.
// Economics fields are optional; nil means the engine default applies.
type Project struct {
	ID         string        `json:"id"`
	Name       string        `json:"name,omitempty"`
	Type       ProjectType   `json:"type"`
	Status     ProjectStatus `json:"status"`
	Location   string        `json:"location,omitempty"`
	Offtaker   string        `json:"offtaker,omitempty"`
	CapacityMW float64       `json:"capacity_mw,omitempty"`

	DCFValuation      int64 `json:"dcf_valuation"`
	CashFlowThisMonth int64 `json:"cash_flow_this_month"`

	// solar / wind
	AnnualProductionKWh *float64 `json:"annual_production_kwh,omitempty"`
	PPAPricePerKWh      *float64 `json:"ppa_price_per_kwh,omitempty"`

	// storage
	CapacityMWh    *float64 `json:"capacity_mwh,omitempty"`
	AnnualCycles   *float64 `json:"annual_cycles,omitempty"`
	PPAPricePerMWh *float64 `json:"ppa_price_per_mwh,omitempty"`

	DegradationRate         *float64 `json:"degradation_rate,omitempty"`
	TaxRate                 *float64 `json:"tax_rate,omitempty"`
	OperatingExpensesAnnual *float64 `json:"operating_expenses_annual,omitempty"`
	InsuranceAnnual         *float64 `json:"insurance_annual,omitempty"`

	// Written by the monthly simulation.
	CurrentYearProductionKWh *int64 `json:"current_year_production_kwh,omitempty"`
	AnnualRevenueMWh         *int64 `json:"annual_revenue_mwh,omitempty"`
}

// IsOperational reports whether the project counts toward NAV and yield.
func (p *Project) IsOperational() bool {
	return p.Status == StatusOperational
}

// Float returns *v, or def when v is nil.
func Float(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
