package classify

import (
	"fmt"
	"strings"

	"github.com/jmkvaal/declinewatch/internal/types"
)

// knownOverrideTags is the fixed set of classification keys an override
// pattern can attach to.
var knownOverrideTags = map[string]bool{
	"variance":        true,
	"gor_trend":       true,
	"water_cut_trend": true,
	"decline_rate":    true,
	"uptime":          true,
	"fit_quality":     true,
}

// ApplyOverrides records matched, non-stale patterns as advisory notes for
// downstream visibility. Patterns never mutate the active thresholds; rule
// text is carried verbatim.
func ApplyOverrides(patterns []types.OverridePattern) []string {
	notes := []string{}
	for _, p := range patterns {
		if p.Weight == types.WeightStale {
			continue
		}
		if !knownOverrideTags[strings.ToLower(strings.TrimSpace(p.Tag))] {
			continue
		}
		notes = append(notes, fmt.Sprintf("%s [%s]: %s", p.Tag, p.Weight, p.RuleText))
	}
	return notes
}
