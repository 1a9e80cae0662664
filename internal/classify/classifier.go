package classify

import (
	"fmt"
	"strings"

	"github.com/jmkvaal/declinewatch/internal/types"
)

// Input carries one well's classification signals. Every optional signal is
// a pointer; nil means the signal is unavailable and a defined default
// behavior applies instead of an error.
type Input struct {
	CurrentRate       float64
	ForecastRate      *float64
	GORTrendPct       *float64
	WaterCutTrendPpts *float64
	AnnualDeclinePct  *float64
	FitR2             *float64
	UptimePct         *float64
	OperationalStatus *string
}

// Classifier assigns a four-level severity from a primary forecast-variance
// signal, secondary trend signals, and operational status.
type Classifier struct {
	th Thresholds
}

// NewClassifier creates a classifier with the given thresholds.
func NewClassifier(th Thresholds) *Classifier {
	return &Classifier{th: th}
}

// candidate is one secondary signal's proposed severity with its evidence.
type candidate struct {
	severity types.Severity
	flag     string
}

// Classify runs the deterministic decision procedure. Step order matters:
// terminal status override, then primary variance banding, then secondary
// escalation (raise-only), then advisory flags, then override notes.
// Classify never fails; missing inputs fall through to defined defaults.
func (c *Classifier) Classify(in Input, patterns []types.OverridePattern) types.ClassificationResult {
	flags := []string{}

	// 1. Terminal override: an inactive or non-producing well is BLACK
	// regardless of every other signal.
	if in.OperationalStatus != nil && isInactiveStatus(*in.OperationalStatus) {
		return types.ClassificationResult{
			Severity:         types.SeverityBlack,
			Label:            "Inactive",
			Flags:            []string{fmt.Sprintf("well inactive: status %q", *in.OperationalStatus)},
			AppliedOverrides: ApplyOverrides(patterns),
		}
	}
	if in.CurrentRate <= 0 {
		return types.ClassificationResult{
			Severity:         types.SeverityBlack,
			Label:            "Not producing",
			Flags:            []string{fmt.Sprintf("no current production: rate %.1f boe/d", in.CurrentRate)},
			AppliedOverrides: ApplyOverrides(patterns),
		}
	}

	// 2. Primary severity from forecast variance.
	severity, label, variancePct, primaryFlags := c.primary(in)
	flags = append(flags, primaryFlags...)

	// 3. Secondary escalation: each candidate proposes independently and the
	// result is the max across all of them. Raise-only, never lower.
	for _, cand := range c.secondaryCandidates(in) {
		severity = types.MaxSeverity(severity, cand.severity)
		flags = append(flags, cand.flag)
	}

	// 4. Advisory only: poor fit quality never changes severity.
	if in.FitR2 != nil && *in.FitR2 < c.th.PoorFitR2 {
		flags = append(flags, fmt.Sprintf("low fit confidence: R²=%.2f below %.2f (advisory)", *in.FitR2, c.th.PoorFitR2))
	}

	return types.ClassificationResult{
		Severity:         severity,
		Label:            label,
		VariancePct:      variancePct,
		Flags:            flags,
		AppliedOverrides: ApplyOverrides(patterns),
	}
}

// primary bands the forecast variance when a usable forecast exists.
func (c *Classifier) primary(in Input) (types.Severity, string, *float64, []string) {
	if in.ForecastRate == nil || *in.ForecastRate <= 0 {
		return types.SeverityGreen, "On-track",
			nil,
			[]string{"no forecast baseline available for variance comparison"}
	}

	forecast := *in.ForecastRate
	v := (in.CurrentRate - forecast) / forecast * 100
	switch {
	case v >= c.th.OutperformVariancePct:
		return types.SeverityGreen, "Outperformer", &v, nil
	case v >= c.th.UnderperformVariancePct:
		return types.SeverityGreen, "On-track", &v, nil
	case v >= c.th.CriticalVariancePct:
		return types.SeverityAmber, "Underperformer", &v, []string{
			fmt.Sprintf("producing %.0f boe/d vs %.0f boe/d forecast (%.1f%%)", in.CurrentRate, forecast, v),
		}
	default:
		return types.SeverityRed, "Significantly below forecast", &v, []string{
			fmt.Sprintf("%s: producing %.0f boe/d vs %.0f boe/d forecast (%.1f%%)",
				types.CriticalMarker, in.CurrentRate, forecast, v),
		}
	}
}

// secondaryCandidates evaluates each secondary signal against its own
// two-tier thresholds.
func (c *Classifier) secondaryCandidates(in Input) []candidate {
	var cands []candidate

	if in.GORTrendPct != nil {
		switch gor := *in.GORTrendPct; {
		case gor >= c.th.GORRedPct:
			cands = append(cands, candidate{types.SeverityRed,
				fmt.Sprintf("GOR up %.1f%% over 12 months (red threshold %.0f%%)", gor, c.th.GORRedPct)})
		case gor >= c.th.GORAmberPct:
			cands = append(cands, candidate{types.SeverityAmber,
				fmt.Sprintf("GOR up %.1f%% over 12 months (amber threshold %.0f%%)", gor, c.th.GORAmberPct)})
		}
	}

	if in.WaterCutTrendPpts != nil {
		switch wc := *in.WaterCutTrendPpts; {
		case wc >= c.th.WCRedPpts:
			cands = append(cands, candidate{types.SeverityRed,
				fmt.Sprintf("water cut up %.1f ppts over 12 months (red threshold %.0f)", wc, c.th.WCRedPpts)})
		case wc >= c.th.WCAmberPpts:
			cands = append(cands, candidate{types.SeverityAmber,
				fmt.Sprintf("water cut up %.1f ppts over 12 months (amber threshold %.0f)", wc, c.th.WCAmberPpts)})
		}
	}

	if in.AnnualDeclinePct != nil {
		switch d := *in.AnnualDeclinePct; {
		case d >= c.th.RedDeclinePctYr:
			cands = append(cands, candidate{types.SeverityRed,
				fmt.Sprintf("annual decline %.1f%%/yr at or above %.0f%%/yr", d, c.th.RedDeclinePctYr)})
		case d >= c.th.AmberDeclinePctYr:
			cands = append(cands, candidate{types.SeverityAmber,
				fmt.Sprintf("annual decline %.1f%%/yr at or above %.0f%%/yr", d, c.th.AmberDeclinePctYr)})
		}
	}

	if in.UptimePct != nil {
		switch u := *in.UptimePct; {
		case u < c.th.UptimeRedPct:
			cands = append(cands, candidate{types.SeverityRed,
				fmt.Sprintf("uptime %.1f%% below %.0f%%", u, c.th.UptimeRedPct)})
		case u < c.th.UptimeAmberPct:
			cands = append(cands, candidate{types.SeverityAmber,
				fmt.Sprintf("uptime %.1f%% below %.0f%%", u, c.th.UptimeAmberPct)})
		}
	}

	return cands
}

var inactiveStatuses = map[string]bool{
	"shut-in":               true,
	"shut in":               true,
	"shutin":                true,
	"suspended":             true,
	"abandoned":             true,
	"plugged":               true,
	"plugged and abandoned": true,
	"p&a":                   true,
}

func isInactiveStatus(status string) bool {
	s := strings.ToLower(strings.TrimSpace(status))
	return inactiveStatuses[s] || strings.Contains(s, "shut")
}
