// Package metrics exposes oracle state as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"RenewraOracle/internal/model"
)

var NavCents = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "renewra",
	Subsystem: "nav",
	Name:      "cents_per_token",
	Help:      "Last successfully computed NAV per token, in cents.",
})

var NetAssetValue = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "renewra",
	Subsystem: "nav",
	Name:      "net_asset_value_usd",
	Help:      "Fund net asset value in USD from the last breakdown.",
})

var NavComputations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "renewra",
	Subsystem: "nav",
	Name:      "computations_total",
	Help:      "NAV computations by result (ok, division_error, invalid_result).",
}, []string{"result"})

var MonthlyYield = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "renewra",
	Subsystem: "portfolio",
	Name:      "monthly_yield_usd",
	Help:      "Sum of this month's cash flow over operational projects.",
})

var OperationalProjects = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "renewra",
	Subsystem: "portfolio",
	Name:      "operational_projects",
	Help:      "Number of operational projects in the active snapshot.",
})

var Simulations = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "renewra",
	Subsystem: "simulation",
	Name:      "runs_total",
	Help:      "Monthly simulation steps executed.",
})

var Reloads = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "renewra",
	Subsystem: "portfolio",
	Name:      "reloads_total",
	Help:      "Portfolio reloads by result (ok, error).",
}, []string{"result"})

// ObserveNav records the outcome of a NAV computation.
func ObserveNav(navCents int64, b model.NavBreakdown, result string) {
	NavComputations.WithLabelValues(result).Inc()
	if result == "ok" {
		NavCents.Set(float64(navCents))
	}
	NetAssetValue.Set(float64(b.NetAssetValue))
	OperationalProjects.Set(float64(b.OperationalProjects))
}

// ObserveSimulation records one simulation step.
func ObserveSimulation(s *model.SimulationSummary) {
	Simulations.Inc()
	MonthlyYield.Set(float64(s.TotalMonthlyYield))
}

// ObserveReload records a reload attempt.
func ObserveReload(err error) {
	if err != nil {
		Reloads.WithLabelValues("error").Inc()
		return
	}
	Reloads.WithLabelValues("ok").Inc()
}
