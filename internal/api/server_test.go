package api

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"RenewraOracle/internal/model"
	"RenewraOracle/internal/nav"
	"RenewraOracle/internal/portfolio"
	"RenewraOracle/internal/scheduler"
)

const testDoc = `{
  "projects": [
    {"id": "solar_001", "name": "Sun Ridge", "type": "solar", "status": "operational", "location": "Arizona",
     "capacity_mw": 10, "dcf_valuation": 600000, "cash_flow_this_month": 3000,
     "annual_production_kwh": 1200000, "ppa_price_per_kwh": 0.05},
    {"id": "storage_001", "name": "Peak Store", "type": "storage", "status": "operational", "location": "Texas",
     "capacity_mw": 25, "dcf_valuation": 400000, "cash_flow_this_month": 2000,
     "capacity_mwh": 100, "ppa_price_per_mwh": 85, "annual_revenue_mwh": 36000},
    {"id": "wind_001", "name": "Gale Point", "type": "wind", "status": "construction",
     "capacity_mw": 50, "dcf_valuation": 900000, "cash_flow_this_month": 0}
  ],
  "fund_metadata": {"total_cash_on_hand": 50000, "total_debt": 200000, "pending_capex": 10000, "token_supply": 1000}
}`

type fixture struct {
	path    string
	handler http.Handler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	require.NoError(t, os.WriteFile(path, []byte(testDoc), 0644))

	store, err := portfolio.Open(portfolio.FileSource{Path: path})
	require.NoError(t, err)
	return newFixtureFromStore(t, store, path)
}

func newFixtureFromStore(t *testing.T, store *portfolio.Store, path string) *fixture {
	t.Helper()
	engine := nav.NewEngine(store, nav.StandardDefaults(), rand.New(rand.NewSource(7)))
	sched := scheduler.NewScheduler(t.Context(), engine, nil, nil)
	srv := NewServer(engine, sched)
	srv.EnableMetrics()
	return &fixture{path: path, handler: srv.Handler()}
}

func (f *fixture) do(t *testing.T, method, target string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var body map[string]interface{}
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/api/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "renewra-oracle-api", body["service"])
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestProjects(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/api/projects")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["count"])

	projects := body["projects"].([]interface{})
	solar := projects[0].(map[string]interface{})
	assert.Equal(t, "solar_001", solar["id"])
	assert.EqualValues(t, 60000, solar["annual_revenue"])
	assert.Equal(t, "$0.050/kWh", solar["price_display"])

	storage := projects[1].(map[string]interface{})
	assert.EqualValues(t, 3060000, storage["annual_revenue"])
	assert.Equal(t, "$85/MWh", storage["price_display"])

	wind := projects[2].(map[string]interface{})
	assert.EqualValues(t, 0, wind["annual_revenue"])
	assert.Equal(t, "$0.000/kWh", wind["price_display"])
}

func TestProject(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodGet, "/api/projects/storage_001")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Peak Store", body["name"])

	rec, body = f.do(t, http.MethodGet, "/api/projects/nope")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Project not found", body["error"])
}

func TestNav(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/api/nav")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 84000, body["nav_cents"])
	assert.EqualValues(t, 840, body["nav_usd"])
	assert.Equal(t, "$840.00", body["nav_display"])
	assert.EqualValues(t, 5000, body["monthly_yield_usd"])

	b := body["breakdown"].(map[string]interface{})
	assert.EqualValues(t, 1000000, b["sum_project_valuations"])
	assert.EqualValues(t, 840000, b["net_asset_value"])
	assert.EqualValues(t, 2, b["operational_projects"])
}

func TestNav_Error(t *testing.T) {
	store := portfolio.NewStore(&model.Portfolio{FundMetadata: model.FundMetadata{TokenSupply: 0}})
	f := newFixtureFromStore(t, store, "")

	rec, body := f.do(t, http.MethodGet, "/api/nav")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, body["error"], "token supply must be positive")
}

func TestFund(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/api/fund")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 50000, body["total_cash_on_hand"])
	assert.EqualValues(t, 1000, body["token_supply"])
	assert.EqualValues(t, 85, body["total_capacity_mw"])
	assert.EqualValues(t, 1000000, body["total_valuation"])
	assert.EqualValues(t, 2, body["operational_projects"])
	assert.EqualValues(t, 3, body["total_projects"])
}

func TestPrices(t *testing.T) {
	f := newFixture(t)
	rec, body := f.do(t, http.MethodGet, "/api/prices")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["count"])

	prices := body["prices"].([]interface{})
	solar := prices[0].(map[string]interface{})
	assert.Equal(t, "Arizona", solar["location"])
	assert.EqualValues(t, 0.05, solar["price_per_kwh"])
	assert.NotContains(t, solar, "price_per_mwh")

	storage := prices[1].(map[string]interface{})
	assert.EqualValues(t, 85, storage["price_per_mwh"])
}

func TestSimulate(t *testing.T) {
	f := newFixture(t)

	for _, q := range []string{"0", "121", "abc"} {
		rec, _ := f.do(t, http.MethodPost, "/api/simulate?months="+q)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "months=%s", q)
	}

	rec, body := f.do(t, http.MethodPost, "/api/simulate?months=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 2, body["months"])
	assert.Len(t, body["summaries"], 2)

	rec, body = f.do(t, http.MethodPost, "/api/simulate")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, body["months"])
}

func TestReload(t *testing.T) {
	f := newFixture(t)

	rec, body := f.do(t, http.MethodPost, "/api/reload")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 3, body["total_projects"])
	assert.EqualValues(t, 2, body["operational_projects"])

	require.NoError(t, os.WriteFile(f.path, []byte(`{"projects": [`), 0644))
	rec, _ = f.do(t, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, os.WriteFile(f.path, []byte(`{"projects": [{"id": "x"}]}`), 0644))
	rec, _ = f.do(t, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	require.NoError(t, os.Remove(f.path))
	rec, _ = f.do(t, http.MethodPost, "/api/reload")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// failed reloads keep serving the last good snapshot
	rec, body = f.do(t, http.MethodGet, "/api/nav")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 84000, body["nav_cents"])
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodOptions, "/api/nav")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodGet, "/api/nav")

	rec, _ := f.do(t, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "renewra_nav_cents_per_token 84000")
}
