package model

import "time"

// FundMetadata is the fund-level balance sheet.
type FundMetadata struct {
	TotalCashOnHand int64 `json:"total_cash_on_hand"`
	TotalDebt       int64 `json:"total_debt"`
	PendingCapex    int64 `json:"pending_capex"`
	TokenSupply     int64 `json:"token_supply"`
}

// Portfolio is an immutable snapshot of the fund. Writers build a new
// Portfolio with Clone and swap it in; nothing mutates a published one.
type Portfolio struct {
	Projects     []Project    `json:"projects"`
	FundMetadata FundMetadata `json:"fund_metadata"`
	Source       string       `json:"-"`
	LoadedAt     time.Time    `json:"-"`
}

// Clone returns a copy whose project slice can be modified freely.
// Optional fields are shared pointers and must be replaced, not written through.
func (p *Portfolio) Clone() *Portfolio {
	c := *p
	c.Projects = make([]Project, len(p.Projects))
	copy(c.Projects, p.Projects)
	return &c
}

// OperationalCount returns the number of operational projects.
func (p *Portfolio) OperationalCount() int {
	n := 0
	for i := range p.Projects {
		if p.Projects[i].IsOperational() {
			n++
		}
	}
	return n
}

// FindProject returns the project with the given id.
func (p *Portfolio) FindProject(id string) (Project, bool) {
	for _, pr := range p.Projects {
		if pr.ID == id {
			return pr, true
		}
	}
	return Project{}, false
}
