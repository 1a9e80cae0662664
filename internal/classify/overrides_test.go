package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jmkvaal/declinewatch/internal/types"
)

func TestApplyOverrides(t *testing.T) {
	tests := []struct {
		name     string
		patterns []types.OverridePattern
		want     []string
	}{
		{
			name:     "no patterns",
			patterns: nil,
			want:     []string{},
		},
		{
			name: "matched pattern recorded verbatim",
			patterns: []types.OverridePattern{
				{Tag: "gor_trend", RuleText: "treat GOR rises on gas-lift wells as expected", Weight: types.WeightHigh},
			},
			want: []string{"gor_trend [HIGH]: treat GOR rises on gas-lift wells as expected"},
		},
		{
			name: "stale pattern is inert",
			patterns: []types.OverridePattern{
				{Tag: "variance", RuleText: "old rule", Weight: types.WeightStale},
			},
			want: []string{},
		},
		{
			name: "unknown tag ignored",
			patterns: []types.OverridePattern{
				{Tag: "moon_phase", RuleText: "irrelevant", Weight: types.WeightHigh},
			},
			want: []string{},
		},
		{
			name: "mixed patterns keep order",
			patterns: []types.OverridePattern{
				{Tag: "uptime", RuleText: "planned turnaround in Q3", Weight: types.WeightMedium},
				{Tag: "decline_rate", RuleText: "stale note", Weight: types.WeightStale},
				{Tag: "fit_quality", RuleText: "sparse allocation data for this pad", Weight: types.WeightLow},
			},
			want: []string{
				"uptime [MEDIUM]: planned turnaround in Q3",
				"fit_quality [LOW]: sparse allocation data for this pad",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplyOverrides(tt.patterns))
		})
	}
}

func TestClassifyRecordsOverrides(t *testing.T) {
	c := NewClassifier(DefaultThresholds())

	patterns := []types.OverridePattern{
		{Tag: "variance", RuleText: "allocation lag inflates variance for this field", Weight: types.WeightHigh},
	}

	// Overrides are advisory: they attach to the result without touching
	// the thresholds, so the severity banding is unchanged.
	result := c.Classify(Input{CurrentRate: 850, ForecastRate: fptr(1000)}, patterns)
	assert.Equal(t, types.SeverityAmber, result.Severity)
	assert.Equal(t, []string{"variance [HIGH]: allocation lag inflates variance for this field"}, result.AppliedOverrides)
}
