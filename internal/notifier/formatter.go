package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/Rhymond/go-money"

	"RenewraOracle/internal/model"
)

// USD renders whole dollars, e.g. $1,250,000.00.
func USD(dollars int64) string {
	return money.New(dollars*100, money.USD).Display()
}

// Cents renders a cent amount, e.g. $50.27.
func Cents(cents int64) string {
	return money.New(cents, money.USD).Display()
}

// FormatNavReport formats a NAV publication for Telegram.
func FormatNavReport(navCents, timestamp int64, b model.NavBreakdown, monthlyYield int64) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("📊 <b>Renewra NAV</b> | %s\n\n", time.Unix(timestamp, 0).UTC().Format("2006-01-02 15:04 MST")))
	sb.WriteString(fmt.Sprintf("NAV per token: <b>%s</b> (%d cents)\n", Cents(navCents), navCents))
	sb.WriteString(fmt.Sprintf("Monthly yield: %s\n\n", USD(monthlyYield)))
	sb.WriteString(FormatBreakdown(b))
	return sb.String()
}

// FormatNavFailure reports a rejected NAV computation alongside the inputs.
func FormatNavFailure(err error, b model.NavBreakdown) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("❌ <b>NAV rejected</b>: %v\n\n", err))
	sb.WriteString(FormatBreakdown(b))
	return sb.String()
}

// FormatBreakdown lists every input of the NAV formula.
func FormatBreakdown(b model.NavBreakdown) string {
	var sb strings.Builder
	sb.WriteString("📦 <b>NAV breakdown</b>\n")
	sb.WriteString(fmt.Sprintf("Project valuations: %s\n", USD(b.SumProjectValuations)))
	sb.WriteString(fmt.Sprintf("Cash on hand: %s\n", USD(b.CashOnHand)))
	sb.WriteString(fmt.Sprintf("Total debt: %s\n", USD(b.TotalDebt)))
	sb.WriteString(fmt.Sprintf("Pending capex: %s\n", USD(b.PendingCapex)))
	sb.WriteString(fmt.Sprintf("Net asset value: %s\n", USD(b.NetAssetValue)))
	sb.WriteString(fmt.Sprintf("Token supply: %d\n", b.TokenSupply))
	sb.WriteString(fmt.Sprintf("Operational projects: %d/%d\n", b.OperationalProjects, b.TotalProjects))
	return sb.String()
}

// FormatSimulationSummary formats one simulated month.
func FormatSimulationSummary(s *model.SimulationSummary) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("🌦 <b>Monthly simulation</b> | %s\n\n", time.Unix(s.Timestamp, 0).UTC().Format("2006-01")))
	for _, r := range s.Results {
		sb.WriteString(fmt.Sprintf("  %s (%s): %s → %s (weather %.2f%%)\n",
			r.ID, r.Type, USD(r.OldCashFlow), USD(r.NewCashFlow), r.WeatherVariance*100))
	}
	sb.WriteString("  ─────────────────\n")
	sb.WriteString(fmt.Sprintf("  %d projects, total yield %s\n", s.ProjectsSimulated, USD(s.TotalMonthlyYield)))
	return sb.String()
}
