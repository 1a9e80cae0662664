package classify

// Thresholds holds the classification bands. Variance bands are fractions of
// the forecast rate; trend bands use each signal's native unit.
type Thresholds struct {
	// Forecast variance bands.
	OutperformVariancePct   float64 `yaml:"outperform_variance_pct" json:"outperform_variance_pct"`
	UnderperformVariancePct float64 `yaml:"underperform_variance_pct" json:"underperform_variance_pct"`
	CriticalVariancePct     float64 `yaml:"critical_variance_pct" json:"critical_variance_pct"`

	// Secondary escalation bands, each with an amber and a red tier.
	GORAmberPct       float64 `yaml:"gor_amber_pct" json:"gor_amber_pct"`
	GORRedPct         float64 `yaml:"gor_red_pct" json:"gor_red_pct"`
	WCAmberPpts       float64 `yaml:"wc_amber_ppts" json:"wc_amber_ppts"`
	WCRedPpts         float64 `yaml:"wc_red_ppts" json:"wc_red_ppts"`
	AmberDeclinePctYr float64 `yaml:"amber_decline_pct_yr" json:"amber_decline_pct_yr"`
	RedDeclinePctYr   float64 `yaml:"red_decline_pct_yr" json:"red_decline_pct_yr"`
	UptimeAmberPct    float64 `yaml:"uptime_amber_pct" json:"uptime_amber_pct"`
	UptimeRedPct      float64 `yaml:"uptime_red_pct" json:"uptime_red_pct"`

	// PoorFitR2 is advisory only; it never changes severity.
	PoorFitR2 float64 `yaml:"poor_fit_r2" json:"poor_fit_r2"`
}

// DefaultThresholds returns the reference classification bands.
func DefaultThresholds() Thresholds {
	return Thresholds{
		OutperformVariancePct:   10,
		UnderperformVariancePct: -10,
		CriticalVariancePct:     -25,
		GORAmberPct:             20,
		GORRedPct:               40,
		WCAmberPpts:             8,
		WCRedPpts:               15,
		AmberDeclinePctYr:       30,
		RedDeclinePctYr:         50,
		UptimeAmberPct:          85,
		UptimeRedPct:            70,
		PoorFitR2:               0.70,
	}
}
