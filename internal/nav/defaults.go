package nav

// Defaults are the economics applied when a project omits a field.
type Defaults struct {
	DegradationRate float64
	TaxRate         float64
	PPAPricePerKWh  float64
	PPAPricePerMWh  float64
	AnnualCycles    float64
}

// StandardDefaults returns the values the fund has always used.
func StandardDefaults() Defaults {
	return Defaults{
		DegradationRate: 0.005,
		TaxRate:         0.21,
		PPAPricePerKWh:  0.06,
		PPAPricePerMWh:  85,
		AnnualCycles:    365,
	}
}
