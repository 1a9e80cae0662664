package decline

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmkvaal/declinewatch/internal/types"
	"github.com/jmkvaal/declinewatch/internal/valerr"
)

func hyperbolicSeries(months int, qi, di, b float64) []types.RateSample {
	samples := make([]types.RateSample, months)
	for i := 0; i < months; i++ {
		samples[i] = types.RateSample{TimeIndex: i, Rate: Hyperbolic(float64(i), qi, di, b)}
	}
	return samples
}

func exponentialSeries(months int, qi, monthlyFactor float64) []types.RateSample {
	samples := make([]types.RateSample, months)
	for i := 0; i < months; i++ {
		samples[i] = types.RateSample{TimeIndex: i, Rate: qi * math.Pow(monthlyFactor, float64(i))}
	}
	return samples
}

func TestFitValidation(t *testing.T) {
	fitter := NewFitter(DefaultThresholds())

	tests := []struct {
		name      string
		samples   []types.RateSample
		econLimit float64
	}{
		{
			name:      "negative rate",
			samples:   []types.RateSample{{TimeIndex: 0, Rate: -5}},
			econLimit: 25,
		},
		{
			name:      "NaN rate",
			samples:   []types.RateSample{{TimeIndex: 0, Rate: math.NaN()}},
			econLimit: 25,
		},
		{
			name: "non-monotonic time index",
			samples: []types.RateSample{
				{TimeIndex: 0, Rate: 100},
				{TimeIndex: 2, Rate: 90},
				{TimeIndex: 1, Rate: 80},
			},
			econLimit: 25,
		},
		{
			name:      "negative time index",
			samples:   []types.RateSample{{TimeIndex: -1, Rate: 100}},
			econLimit: 25,
		},
		{
			name:      "negative economic limit",
			samples:   hyperbolicSeries(12, 1000, 0.05, 0.5),
			econLimit: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fitter.Fit(tt.samples, tt.econLimit, 240)
			require.Error(t, err)
			assert.True(t, valerr.IsValidation(err))
		})
	}
}

func TestFitInsufficientHistory(t *testing.T) {
	fitter := NewFitter(DefaultThresholds())

	tests := []struct {
		name    string
		samples []types.RateSample
	}{
		{name: "empty series", samples: nil},
		{name: "short series", samples: hyperbolicSeries(4, 1000, 0.05, 0.5)},
		{
			name: "all shut-in months",
			samples: []types.RateSample{
				{TimeIndex: 0}, {TimeIndex: 1}, {TimeIndex: 2},
				{TimeIndex: 3}, {TimeIndex: 4}, {TimeIndex: 5},
				{TimeIndex: 6}, {TimeIndex: 7},
			},
		},
		{
			name: "long series with too few producing months",
			samples: append(hyperbolicSeries(4, 1000, 0.05, 0.5),
				types.RateSample{TimeIndex: 4}, types.RateSample{TimeIndex: 5},
				types.RateSample{TimeIndex: 6}, types.RateSample{TimeIndex: 7}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit, err := fitter.Fit(tt.samples, 25, 240)
			require.NoError(t, err)
			assert.Equal(t, types.CurveInsufficientData, fit.CurveType)
			assert.True(t, fit.InsufficientData)
			assert.Equal(t, len(tt.samples), fit.MonthsOfData)
			require.NotEmpty(t, fit.Flags)
			assert.Contains(t, fit.Flags[0], "6 required")
		})
	}
}

func TestFitRecoversHyperbolicParameters(t *testing.T) {
	fitter := NewFitter(DefaultThresholds())
	samples := hyperbolicSeries(36, 1200, 0.04, 0.6)

	fit, err := fitter.Fit(samples, 25, 240)
	require.NoError(t, err)

	assert.Equal(t, types.CurveHyperbolic, fit.CurveType)
	assert.False(t, fit.InsufficientData)
	assert.InEpsilon(t, 1200, fit.Qi, 0.05)
	assert.InEpsilon(t, 0.04*12*100, fit.DiAnnualPct, 0.10)
	assert.InDelta(t, 0.6, fit.BFactor, 0.15)
	assert.Greater(t, fit.FitR2, 0.99)
	assert.Equal(t, 36, fit.MonthsOfData)
	assert.Greater(t, fit.EURMMboe, 0.0)
}

func TestFitFlatSeriesPerfectR2(t *testing.T) {
	fitter := NewFitter(DefaultThresholds())

	samples := make([]types.RateSample, 12)
	for i := range samples {
		samples[i] = types.RateSample{TimeIndex: i, Rate: 500}
	}

	fit, err := fitter.Fit(samples, 25, 240)
	require.NoError(t, err)
	require.True(t, fit.Fitted())
	assert.Equal(t, 1.0, fit.FitR2)
}

func TestFitQualityFlags(t *testing.T) {
	fitter := NewFitter(DefaultThresholds())

	t.Run("steep decline flagged", func(t *testing.T) {
		// 0.93 monthly ≈ 58%/yr nominal decline, above the red band.
		fit, err := fitter.Fit(exponentialSeries(24, 1000, 0.93), 25, 240)
		require.NoError(t, err)
		require.True(t, fit.Fitted())
		assert.Greater(t, fit.DiAnnualPct, 50.0)
		assertAnyFlagContains(t, fit.Flags, "steep decline")
	})

	t.Run("elevated decline flagged", func(t *testing.T) {
		// 0.97 monthly ≈ 36%/yr, inside the amber band.
		fit, err := fitter.Fit(exponentialSeries(24, 1000, 0.97), 25, 240)
		require.NoError(t, err)
		require.True(t, fit.Fitted())
		assert.Greater(t, fit.DiAnnualPct, 30.0)
		assert.Less(t, fit.DiAnnualPct, 50.0)
		assertAnyFlagContains(t, fit.Flags, "elevated decline")
	})

	t.Run("anomalous b factor flagged", func(t *testing.T) {
		fit, err := fitter.Fit(hyperbolicSeries(48, 1500, 0.08, 0.95), 25, 240)
		require.NoError(t, err)
		require.Equal(t, types.CurveHyperbolic, fit.CurveType)
		if fit.BFactor > 0.80 {
			assertAnyFlagContains(t, fit.Flags, "anomalous b-factor")
		}
	})

	t.Run("poor fit flagged", func(t *testing.T) {
		// Alternating rates carry no decline signal; any curve fits badly.
		samples := make([]types.RateSample, 12)
		for i := range samples {
			rate := 100.0
			if i%2 == 0 {
				rate = 900
			}
			samples[i] = types.RateSample{TimeIndex: i, Rate: rate}
		}
		fit, err := fitter.Fit(samples, 25, 240)
		require.NoError(t, err)
		if fit.Fitted() {
			assert.Less(t, fit.FitR2, 0.70)
			assertAnyFlagContains(t, fit.Flags, "poor fit quality")
		}
	})
}

func TestFitEndToEndScenario(t *testing.T) {
	// 24 months at rate[i] = 800 · 0.98^i boe/d, economic limit 25 boe/d,
	// 20-year horizon.
	fitter := NewFitter(DefaultThresholds())
	samples := exponentialSeries(24, 800, 0.98)

	fit, err := fitter.Fit(samples, 25, 240)
	require.NoError(t, err)
	require.True(t, fit.Fitted())

	assert.Greater(t, fit.FitR2, 0.85)
	assert.Greater(t, fit.EURMMboe, 0.01)
	assert.Less(t, fit.EURMMboe, 20.0)
}

func TestFitExponentialTier(t *testing.T) {
	samples := exponentialSeries(24, 800, 0.98)
	ts := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		ts[i] = float64(s.TimeIndex)
		ys[i] = s.Rate
	}

	out, err := fitExponential(ts, ys, 800)
	require.NoError(t, err)
	assert.Equal(t, types.CurveExponential, out.curve)
	assert.InEpsilon(t, 800, out.qi, 0.02)
	assert.InDelta(t, -math.Log(0.98), out.di, 0.002)
	assert.Greater(t, out.r2, 0.99)
}

func TestLogLinearInit(t *testing.T) {
	ts := []float64{0, 1, 2, 3, 4, 5}
	ys := make([]float64, len(ts))
	for i, tm := range ts {
		ys[i] = 1000 * math.Exp(-0.03*tm)
	}

	qi, di := logLinearInit(ts, ys, 1000)
	assert.InEpsilon(t, 1000, qi, 0.01)
	assert.InDelta(t, 0.03, di, 0.001)
}

func assertAnyFlagContains(t *testing.T, flags []string, substr string) {
	t.Helper()
	for _, f := range flags {
		if strings.Contains(f, substr) {
			return
		}
	}
	assert.Fail(t, fmt.Sprintf("no flag containing %q in %v", substr, flags))
}

func BenchmarkFitHyperbolic(b *testing.B) {
	fitter := NewFitter(DefaultThresholds())
	samples := hyperbolicSeries(60, 1500, 0.05, 0.5)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := fitter.Fit(samples, 25, 240); err != nil {
			b.Fatal(err)
		}
	}
}
