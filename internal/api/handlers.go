package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Rhymond/go-money"
	"github.com/go-chi/chi/v5"

	"RenewraOracle/internal/metrics"
	"RenewraOracle/internal/model"
	"RenewraOracle/internal/nav"
	"RenewraOracle/internal/portfolio"
)

const maxSimulateMonths = 120

// projectView is a project with display fields derived for clients.
type projectView struct {
	model.Project
	AnnualRevenue *int64 `json:"annual_revenue,omitempty"`
	PriceDisplay  string `json:"price_display,omitempty"`
}

// priceDisplay formats the PPA price the way clients show it. Missing prices
// display as zero.
func priceDisplay(p *model.Project) string {
	switch p.Type {
	case model.ProjectSolar, model.ProjectWind:
		return fmt.Sprintf("$%.3f/kWh", model.Float(p.PPAPricePerKWh, 0))
	case model.ProjectStorage:
		return fmt.Sprintf("$%.0f/MWh", model.Float(p.PPAPricePerMWh, 0))
	}
	return ""
}

func newProjectView(p model.Project) projectView {
	v := projectView{Project: p, PriceDisplay: priceDisplay(&p)}
	var revenue int64
	switch p.Type {
	case model.ProjectSolar, model.ProjectWind:
		revenue = int64(model.Float(p.AnnualProductionKWh, 0) * model.Float(p.PPAPricePerKWh, 0))
	case model.ProjectStorage:
		var mwh float64
		if p.AnnualRevenueMWh != nil {
			mwh = float64(*p.AnnualRevenueMWh)
		}
		revenue = int64(mwh * model.Float(p.PPAPricePerMWh, 0))
	default:
		return v
	}
	v.AnnualRevenue = &revenue
	return v
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "renewra-oracle-api",
	})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	p := s.engine.Store().Snapshot()
	views := make([]projectView, 0, len(p.Projects))
	for _, pr := range p.Projects {
		views = append(views, newProjectView(pr))
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"projects": views,
		"count":    len(views),
	})
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	pr, ok := s.engine.Store().Project(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Project not found")
		return
	}
	writeJSON(w, http.StatusOK, newProjectView(pr))
}

type navResponse struct {
	NavCents        int64              `json:"nav_cents"`
	NavUSD          float64            `json:"nav_usd"`
	NavDisplay      string             `json:"nav_display"`
	Timestamp       int64              `json:"timestamp"`
	MonthlyYieldUSD int64              `json:"monthly_yield_usd"`
	Breakdown       model.NavBreakdown `json:"breakdown"`
}

func (s *Server) handleNav(w http.ResponseWriter, _ *http.Request) {
	r := s.engine.Evaluate()
	metrics.ObserveNav(r.NavCents, r.Breakdown, nav.ResultLabel(r.Err))
	if r.Err != nil {
		writeError(w, http.StatusInternalServerError, r.Err.Error())
		return
	}
	writeJSON(w, http.StatusOK, navResponse{
		NavCents:        r.NavCents,
		NavUSD:          float64(r.NavCents) / 100,
		NavDisplay:      money.New(r.NavCents, money.USD).Display(),
		Timestamp:       r.Timestamp,
		MonthlyYieldUSD: r.MonthlyYield,
		Breakdown:       r.Breakdown,
	})
}

type fundResponse struct {
	model.FundMetadata
	TotalCapacityMW     float64 `json:"total_capacity_mw"`
	TotalValuation      int64   `json:"total_valuation"`
	OperationalProjects int     `json:"operational_projects"`
	TotalProjects       int     `json:"total_projects"`
}

func (s *Server) handleFund(w http.ResponseWriter, r *http.Request) {
	p := s.engine.Store().Snapshot()
	resp := fundResponse{FundMetadata: p.FundMetadata, TotalProjects: len(p.Projects)}
	for _, pr := range p.Projects {
		resp.TotalCapacityMW += pr.CapacityMW
		if pr.IsOperational() {
			resp.TotalValuation += pr.DCFValuation
			resp.OperationalProjects++
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

type priceInfo struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Type         model.ProjectType `json:"type"`
	Location     string            `json:"location"`
	PricePerKWh  *float64          `json:"price_per_kwh,omitempty"`
	PricePerMWh  *float64          `json:"price_per_mwh,omitempty"`
	PriceDisplay string            `json:"price_display,omitempty"`
}

func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	p := s.engine.Store().Snapshot()
	prices := make([]priceInfo, 0, len(p.Projects))
	for i := range p.Projects {
		pr := &p.Projects[i]
		if !pr.IsOperational() {
			continue
		}
		info := priceInfo{ID: pr.ID, Name: pr.Name, Type: pr.Type, Location: pr.Location, PriceDisplay: priceDisplay(pr)}
		switch pr.Type {
		case model.ProjectSolar, model.ProjectWind:
			v := model.Float(pr.PPAPricePerKWh, 0)
			info.PricePerKWh = &v
		case model.ProjectStorage:
			v := model.Float(pr.PPAPricePerMWh, 0)
			info.PricePerMWh = &v
		}
		prices = append(prices, info)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"prices": prices,
		"count":  len(prices),
	})
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	months := 1
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSimulateMonths {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("months must be an integer between 1 and %d", maxSimulateMonths))
			return
		}
		months = n
	}

	summaries := s.ops.Simulate(TriggerAPI, months)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"months":              months,
		"summaries":           summaries,
		"total_monthly_yield": s.engine.TotalMonthlyYield(),
	})
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	p, err := s.ops.Reload(TriggerAPI)
	if err != nil {
		writeError(w, reloadStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":               "reloaded",
		"source":               s.engine.Store().SourceName(),
		"total_projects":       len(p.Projects),
		"operational_projects": p.OperationalCount(),
	})
}

func reloadStatus(err error) int {
	switch {
	case errors.Is(err, portfolio.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, portfolio.ErrParse), errors.Is(err, portfolio.ErrValidation):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
