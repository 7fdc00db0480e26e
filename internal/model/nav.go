package model

// NavBreakdown lists every input and intermediate of the NAV formula.
type NavBreakdown struct {
	SumProjectValuations int64   `json:"sum_project_valuations"`
	CashOnHand           int64   `json:"cash_on_hand"`
	TotalDebt            int64   `json:"total_debt"`
	PendingCapex         int64   `json:"pending_capex"`
	NetAssetValue        int64   `json:"net_asset_value"`
	TokenSupply          int64   `json:"token_supply"`
	NavPerTokenUSD       float64 `json:"nav_per_token_usd"`
	NavInCents           int64   `json:"nav_in_cents"`
	OperationalProjects  int     `json:"operational_projects"`
	TotalProjects        int     `json:"total_projects"`
}

// ProjectSimulation is the per-project outcome of one simulated month.
type ProjectSimulation struct {
	ID              string      `json:"id"`
	Type            ProjectType `json:"type"`
	OldCashFlow     int64       `json:"old_cash_flow"`
	NewCashFlow     int64       `json:"new_cash_flow"`
	WeatherVariance float64     `json:"weather_variance"`
	DegradationRate float64     `json:"degradation_rate"`
	MonthlyRevenue  int64       `json:"monthly_revenue"`
	MonthlyOpex     int64       `json:"monthly_opex"`
}

// SimulationSummary describes one call of the monthly simulation.
type SimulationSummary struct {
	RunID             string              `json:"run_id"`
	Timestamp         int64               `json:"timestamp"`
	ProjectsSimulated int                 `json:"projects_simulated"`
	TotalMonthlyYield int64               `json:"total_monthly_yield"`
	Results           []ProjectSimulation `json:"results"`
}
