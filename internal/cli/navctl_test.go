package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"RenewraOracle/internal/nav"
	"RenewraOracle/internal/portfolio"
)

const doc = `{
  "projects": [
    {"id": "solar_001", "type": "solar", "status": "operational", "dcf_valuation": 600000, "cash_flow_this_month": 3000,
     "annual_production_kwh": 1200000, "ppa_price_per_kwh": 0.05},
    {"id": "wind_001", "type": "wind", "status": "operational", "dcf_valuation": 400000, "cash_flow_this_month": 2000},
    {"id": "storage_001", "type": "storage", "status": "construction", "dcf_valuation": 900000, "cash_flow_this_month": 0}
  ],
  "fund_metadata": {"total_cash_on_hand": 50000, "total_debt": 200000, "pending_capex": 10000, "token_supply": 1000}
}`

func writeProjects(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "projects.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestNavctl_Basic(t *testing.T) {
	out, err := execute(t, "--projects", writeProjects(t, doc))
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{"NAV: $840.00 (84000 cents)", "Timestamp: ", "Total Monthly Yield: $5,000.00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "NAV Breakdown") {
		t.Error("breakdown printed without --verbose")
	}
}

func TestNavctl_VerboseSimulation(t *testing.T) {
	out, err := execute(t, "--projects", writeProjects(t, doc), "-s", "2", "--seed", "7", "-v")
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	for _, want := range []string{
		"Using random seed: 7",
		"--- Running 2 Month Simulation ---",
		"Month 1: Total yield = ",
		"Month 2: Total yield = ",
		"  solar_001: ",
		"--- NAV Breakdown ---",
		"Net Asset Value: $840,000.00",
		"Operational Projects: 2/3",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNavctl_SeedIsReproducible(t *testing.T) {
	path := writeProjects(t, doc)
	first, err := execute(t, "--projects", path, "-s", "3", "--seed", "99")
	if err != nil {
		t.Fatal(err)
	}
	second, err := execute(t, "--projects", path, "-s", "3", "--seed", "99")
	if err != nil {
		t.Fatal(err)
	}
	strip := func(s string) string {
		var keep []string
		for _, line := range strings.Split(s, "\n") {
			if !strings.HasPrefix(line, "Timestamp:") {
				keep = append(keep, line)
			}
		}
		return strings.Join(keep, "\n")
	}
	if strip(first) != strip(second) {
		t.Errorf("seeded runs differ:\n%s\n---\n%s", first, second)
	}
}

func TestNavctl_Errors(t *testing.T) {
	_, err := execute(t, "--projects", filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, portfolio.ErrNotFound) {
		t.Errorf("missing file err = %v, want ErrNotFound", err)
	}

	zeroNav := strings.Replace(doc, `"total_debt": 200000`, `"total_debt": 2000000`, 1)
	_, err = execute(t, "--projects", writeProjects(t, zeroNav))
	if !errors.Is(err, nav.ErrInvalidResult) {
		t.Errorf("negative NAV err = %v, want ErrInvalidResult", err)
	}

	if _, err := execute(t, "--projects", writeProjects(t, doc), "--simulate=-1"); err == nil {
		t.Error("expected error for negative --simulate")
	}
}
