// Package nav computes the fund's net asset value per token and simulates
// monthly project cash flows.
package nav

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"RenewraOracle/internal/model"
	"RenewraOracle/internal/portfolio"
)

var (
	ErrDivision      = errors.New("token supply must be positive")
	ErrInvalidResult = errors.New("calculated NAV is non-positive")
)

// Engine evaluates NAV and yield against the store's active snapshot.
// Reads are lock-free; simulation and reload are serialized by mu.
type Engine struct {
	store    *portfolio.Store
	defaults Defaults

	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

// NewEngine creates an engine. A nil rng is replaced by a time-seeded one.
func NewEngine(store *portfolio.Store, defaults Defaults, rng *rand.Rand) *Engine {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Engine{store: store, defaults: defaults, rng: rng, now: time.Now}
}

// Store returns the backing portfolio store.
func (e *Engine) Store() *portfolio.Store { return e.store }

// Defaults returns the economics defaults in use.
func (e *Engine) Defaults() Defaults { return e.defaults }

// Reload rereads the portfolio document. It waits for a running simulation.
func (e *Engine) Reload() (*model.Portfolio, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Reload()
}

type totals struct {
	sumValuations int64
	netAssetValue int64
	operational   int
}

func computeTotals(p *model.Portfolio) totals {
	var t totals
	for i := range p.Projects {
		if p.Projects[i].IsOperational() {
			t.sumValuations += p.Projects[i].DCFValuation
			t.operational++
		}
	}
	f := p.FundMetadata
	t.netAssetValue = t.sumValuations + f.TotalCashOnHand - f.TotalDebt - f.PendingCapex
	return t
}

// toCents converts a per-token dollar value to cents, rounding half to even.
func toCents(perToken float64) int64 {
	return decimal.NewFromFloat(perToken * 100).RoundBank(0).IntPart()
}

// ComputeNav returns the NAV per token in cents and the Unix time it was taken.
//
//	NAV = (Σ operational dcf_valuation + cash - debt - capex) / token_supply
func (e *Engine) ComputeNav() (navCents, timestamp int64, err error) {
	navCents, err = computeNav(e.store.Snapshot())
	if err != nil {
		return 0, 0, err
	}
	return navCents, e.now().Unix(), nil
}

func computeNav(p *model.Portfolio) (int64, error) {
	t := computeTotals(p)

	supply := p.FundMetadata.TokenSupply
	if supply <= 0 {
		return 0, fmt.Errorf("%w: supply=%d", ErrDivision, supply)
	}

	navCents := toCents(float64(t.netAssetValue) / float64(supply))
	if navCents <= 0 {
		return 0, fmt.Errorf("%w: %d cents", ErrInvalidResult, navCents)
	}
	return navCents, nil
}

// Breakdown returns every component of the NAV formula. It never fails;
// a non-positive supply yields a zero per-token value.
func (e *Engine) Breakdown() model.NavBreakdown {
	return breakdown(e.store.Snapshot())
}

func breakdown(p *model.Portfolio) model.NavBreakdown {
	t := computeTotals(p)
	f := p.FundMetadata

	var navPerToken float64
	if f.TokenSupply > 0 {
		navPerToken = float64(t.netAssetValue) / float64(f.TokenSupply)
	}
	cents := toCents(navPerToken)

	return model.NavBreakdown{
		SumProjectValuations: t.sumValuations,
		CashOnHand:           f.TotalCashOnHand,
		TotalDebt:            f.TotalDebt,
		PendingCapex:         f.PendingCapex,
		NetAssetValue:        t.netAssetValue,
		TokenSupply:          f.TokenSupply,
		NavPerTokenUSD:       decimal.New(cents, -2).InexactFloat64(),
		NavInCents:           cents,
		OperationalProjects:  t.operational,
		TotalProjects:        len(p.Projects),
	}
}

// Report is a NAV computation, its breakdown and the monthly yield, all
// taken from the same snapshot.
type Report struct {
	NavCents     int64
	Timestamp    int64
	Err          error
	Breakdown    model.NavBreakdown
	MonthlyYield int64
}

// Evaluate computes NAV, breakdown and yield against one snapshot, so a
// concurrent simulation cannot mix months within the result.
func (e *Engine) Evaluate() Report {
	r := evaluate(e.store.Snapshot())
	if r.Err == nil {
		r.Timestamp = e.now().Unix()
	}
	return r
}

func evaluate(p *model.Portfolio) Report {
	navCents, err := computeNav(p)
	return Report{
		NavCents:     navCents,
		Err:          err,
		Breakdown:    breakdown(p),
		MonthlyYield: totalYield(p),
	}
}

// TotalMonthlyYield sums this month's cash flow over operational projects.
func (e *Engine) TotalMonthlyYield() int64 {
	return totalYield(e.store.Snapshot())
}

func totalYield(p *model.Portfolio) int64 {
	var sum int64
	for i := range p.Projects {
		if p.Projects[i].IsOperational() {
			sum += p.Projects[i].CashFlowThisMonth
		}
	}
	return sum
}

// ResultLabel classifies a ComputeNav error for metrics and the run journal.
func ResultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrDivision):
		return "division_error"
	case errors.Is(err, ErrInvalidResult):
		return "invalid_result"
	default:
		return "error"
	}
}
