package nav

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"RenewraOracle/internal/model"
)

const (
	varianceLow  = 0.95
	varianceHigh = 1.05
)

// SimulateMonthlyYield advances every operational project by one month and
// publishes the resulting snapshot.
//
// For each project:
//
//	adjusted   = annual_output * weather_variance * (1 - degradation_rate)
//	revenue    = adjusted * ppa_price / 12
//	opex       = (operating_expenses_annual + insurance_annual) / 12
//	cash_flow  = max(0, (revenue - opex) * (1 - tax_rate))
//
// The annual inputs are read from the static project data on every call, so
// degradation is applied once per month rather than compounded.
func (e *Engine) SimulateMonthlyYield() *model.SimulationSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.simulateLocked()
}

// SimulateMonths runs the monthly step n times in sequence.
func (e *Engine) SimulateMonths(n int) []*model.SimulationSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*model.SimulationSummary, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, e.simulateLocked())
	}
	return out
}

func (e *Engine) simulateLocked() *model.SimulationSummary {
	next := e.store.Snapshot().Clone()
	results := make([]model.ProjectSimulation, 0, len(next.Projects))

	for i := range next.Projects {
		pr := &next.Projects[i]
		if !pr.IsOperational() {
			continue
		}
		// Drawn before the type check so unknown types still consume a value.
		variance := varianceLow + e.rng.Float64()*(varianceHigh-varianceLow)

		res, ok := e.simulateProject(pr, variance)
		if !ok {
			continue
		}
		results = append(results, res)
	}

	e.store.Replace(next)

	return &model.SimulationSummary{
		RunID:             uuid.NewString(),
		Timestamp:         e.now().Unix(),
		ProjectsSimulated: len(results),
		TotalMonthlyYield: totalYield(next),
		Results:           results,
	}
}

// simulateProject updates pr in place. It reports false for unknown types,
// leaving pr untouched.
func (e *Engine) simulateProject(pr *model.Project, variance float64) (model.ProjectSimulation, bool) {
	d := e.defaults
	degradation := model.Float(pr.DegradationRate, d.DegradationRate)
	taxRate := model.Float(pr.TaxRate, d.TaxRate)

	var monthlyRevenue float64
	switch pr.Type {
	case model.ProjectSolar, model.ProjectWind:
		annual := model.Float(pr.AnnualProductionKWh, 0)
		price := model.Float(pr.PPAPricePerKWh, d.PPAPricePerKWh)

		adjusted := annual * variance * (1 - degradation)
		produced := int64(adjusted)
		pr.CurrentYearProductionKWh = &produced

		monthlyRevenue = adjusted / 12 * price

	case model.ProjectStorage:
		capacity := model.Float(pr.CapacityMWh, 0)
		cycles := model.Float(pr.AnnualCycles, d.AnnualCycles)
		price := model.Float(pr.PPAPricePerMWh, d.PPAPricePerMWh)

		adjustedCycles := cycles * variance * (1 - degradation)
		annualMWh := capacity * adjustedCycles
		delivered := int64(annualMWh)
		pr.AnnualRevenueMWh = &delivered

		monthlyRevenue = annualMWh * price / 12

	default:
		return model.ProjectSimulation{}, false
	}

	monthlyOpex := (model.Float(pr.OperatingExpensesAnnual, 0) + model.Float(pr.InsuranceAnnual, 0)) / 12

	net := int64((monthlyRevenue - monthlyOpex) * (1 - taxRate))
	if net < 0 {
		net = 0
	}

	old := pr.CashFlowThisMonth
	pr.CashFlowThisMonth = net

	return model.ProjectSimulation{
		ID:              pr.ID,
		Type:            pr.Type,
		OldCashFlow:     old,
		NewCashFlow:     net,
		WeatherVariance: decimal.NewFromFloat(variance).RoundBank(4).InexactFloat64(),
		DegradationRate: degradation,
		MonthlyRevenue:  int64(monthlyRevenue),
		MonthlyOpex:     int64(monthlyOpex),
	}, true
}

// Describe renders a one-line summary for logs.
func Describe(s *model.SimulationSummary) string {
	return fmt.Sprintf("run %s: %d projects simulated, total monthly yield %d", s.RunID, s.ProjectsSimulated, s.TotalMonthlyYield)
}
