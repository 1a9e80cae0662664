package decline

// Thresholds holds the tunable fitting bands. Deployments tune these per
// asset through configuration rather than recompiling.
type Thresholds struct {
	// MinSamples is the minimum count of positive monthly samples required
	// before a fit is attempted.
	MinSamples int `yaml:"min_samples" json:"min_samples"`
	// PoorFitR2 flags fits whose R² falls below it.
	PoorFitR2 float64 `yaml:"poor_fit_r2" json:"poor_fit_r2"`
	// AmberDeclinePctYr and RedDeclinePctYr band the effective annual
	// decline rate, in percent per year.
	AmberDeclinePctYr float64 `yaml:"amber_decline_pct_yr" json:"amber_decline_pct_yr"`
	RedDeclinePctYr   float64 `yaml:"red_decline_pct_yr" json:"red_decline_pct_yr"`
	// BFactorAnomaly flags hyperbolic fits with a b-factor above it.
	BFactorAnomaly float64 `yaml:"b_factor_anomaly" json:"b_factor_anomaly"`
}

// DefaultThresholds returns the reference fitting bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinSamples:        6,
		PoorFitR2:         0.70,
		AmberDeclinePctYr: 30,
		RedDeclinePctYr:   50,
		BFactorAnomaly:    0.80,
	}
}
