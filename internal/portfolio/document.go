package portfolio

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"RenewraOracle/internal/model"
)

var (
	ErrNotFound   = errors.New("portfolio source not found")
	ErrParse      = errors.New("malformed portfolio document")
	ErrValidation = errors.New("invalid portfolio document")
)

// rawDocument mirrors the on-disk layout. Money fields are decoded as
// floats so that documents written with decimals still load.
type rawDocument struct {
	Projects     []rawProject `json:"projects"`
	FundMetadata rawFund      `json:"fund_metadata"`
}

type rawProject struct {
	model.Project
	DCFValuation      *float64 `json:"dcf_valuation"`
	CashFlowThisMonth *float64 `json:"cash_flow_this_month"`
}

type rawFund struct {
	TotalCashOnHand     *float64 `json:"total_cash_on_hand"`
	TotalCashOnHandUSDC *float64 `json:"total_cash_on_hand_usdc"`
	TotalDebt           *float64 `json:"total_debt"`
	PendingCapex        *float64 `json:"pending_capex"`
	TokenSupply         *float64 `json:"token_supply"`
}

// Parse decodes and validates a portfolio document.
func Parse(data []byte) (*model.Portfolio, error) {
	var doc rawDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	p := &model.Portfolio{Projects: make([]model.Project, 0, len(doc.Projects))}
	for i, rp := range doc.Projects {
		pr := rp.Project
		switch {
		case pr.ID == "":
			return nil, fmt.Errorf("%w: project %d has no id", ErrValidation, i)
		case pr.Status == "":
			return nil, fmt.Errorf("%w: project %s has no status", ErrValidation, pr.ID)
		case rp.DCFValuation == nil:
			return nil, fmt.Errorf("%w: project %s has no dcf_valuation", ErrValidation, pr.ID)
		case rp.CashFlowThisMonth == nil:
			return nil, fmt.Errorf("%w: project %s has no cash_flow_this_month", ErrValidation, pr.ID)
		}
		if pr.Type == "" {
			pr.Type = model.ProjectSolar
		}
		var err error
		if pr.DCFValuation, err = toInt64(*rp.DCFValuation, pr.ID+".dcf_valuation"); err != nil {
			return nil, err
		}
		if pr.CashFlowThisMonth, err = toInt64(*rp.CashFlowThisMonth, pr.ID+".cash_flow_this_month"); err != nil {
			return nil, err
		}
		p.Projects = append(p.Projects, pr)
	}

	f := doc.FundMetadata
	cash := f.TotalCashOnHand
	if cash == nil {
		cash = f.TotalCashOnHandUSDC
	}
	fields := []struct {
		name string
		src  *float64
		dst  *int64
	}{
		{"total_cash_on_hand", cash, &p.FundMetadata.TotalCashOnHand},
		{"total_debt", f.TotalDebt, &p.FundMetadata.TotalDebt},
		{"pending_capex", f.PendingCapex, &p.FundMetadata.PendingCapex},
		{"token_supply", f.TokenSupply, &p.FundMetadata.TokenSupply},
	}
	for _, fd := range fields {
		v, err := toInt64(model.Float(fd.src, 0), "fund_metadata."+fd.name)
		if err != nil {
			return nil, err
		}
		*fd.dst = v
	}
	if p.FundMetadata.TokenSupply == 0 {
		p.FundMetadata.TokenSupply = 1
	}
	return p, nil
}

// toInt64 truncates a decoded money or count field toward zero. Values
// outside the int64 range have no defined conversion and are rejected.
func toInt64(v float64, field string) (int64, error) {
	if math.IsNaN(v) || v >= 1<<63 || v < -(1<<63) {
		return 0, fmt.Errorf("%w: %s out of range (%g)", ErrValidation, field, v)
	}
	return int64(v), nil
}

// Load fetches and parses the document behind src.
func Load(src Source) (*model.Portfolio, error) {
	data, err := src.Fetch()
	if err != nil {
		return nil, err
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", src.Name(), err)
	}
	p.Source = src.Name()
	p.LoadedAt = time.Now()
	return p, nil
}
