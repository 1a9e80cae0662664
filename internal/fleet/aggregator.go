package fleet

import (
	"strings"

	"github.com/jmkvaal/declinewatch/internal/types"
)

// WellResult pairs one well's records for the fleet reduction. Pointer
// fields are nil when the corresponding value is unavailable; missing values
// are excluded from sums and averages, never treated as zero.
type WellResult struct {
	WellID         string
	CurrentRate    *float64
	Fit            *types.DeclineFit
	Classification *types.ClassificationResult
}

// Summarize reduces per-well results into fleet-level statistics. Empty
// input yields all-zero counts, not an error.
func Summarize(results []WellResult) types.FleetSummary {
	counts := make(map[types.Severity]int, 4)
	for _, s := range types.AllSeverities() {
		counts[s] = 0
	}

	var totalRate, totalEUR float64
	criticalFlags := 0
	declineSum := 0.0
	declineN := 0

	for _, r := range results {
		if r.Classification != nil {
			counts[r.Classification.Severity]++
			criticalFlags += countCritical(r.Classification.Flags)
		}
		if r.CurrentRate != nil {
			totalRate += *r.CurrentRate
		}
		if r.Fit != nil {
			criticalFlags += countCritical(r.Fit.Flags)
			if r.Fit.Fitted() {
				totalEUR += r.Fit.EURMMboe
				declineSum += r.Fit.DiAnnualPct
				declineN++
			}
		}
	}

	var meanDecline *float64
	if declineN > 0 {
		v := declineSum / float64(declineN)
		meanDecline = &v
	}

	return types.FleetSummary{
		Counts:             counts,
		TotalRateBOEPD:     totalRate,
		TotalEURMMboe:      totalEUR,
		CriticalFlagCount:  criticalFlags,
		WeightedDeclinePct: meanDecline,
	}
}

func countCritical(flags []string) int {
	n := 0
	for _, f := range flags {
		if strings.Contains(f, types.CriticalMarker) {
			n++
		}
	}
	return n
}
