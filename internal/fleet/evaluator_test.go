package fleet

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmkvaal/declinewatch/internal/classify"
	"github.com/jmkvaal/declinewatch/internal/decline"
	"github.com/jmkvaal/declinewatch/internal/types"
)

func newTestEvaluator(workers int) *Evaluator {
	return NewEvaluator(
		decline.NewFitter(decline.DefaultThresholds()),
		classify.NewClassifier(classify.DefaultThresholds()),
		workers,
	)
}

func decliningWell(id string, months int, qi, monthlyFactor float64) types.WellAnalysisRequest {
	samples := make([]types.RateSample, months)
	for i := 0; i < months; i++ {
		samples[i] = types.RateSample{TimeIndex: i, Rate: qi * math.Pow(monthlyFactor, float64(i))}
	}
	return types.WellAnalysisRequest{
		WellID:            id,
		Samples:           samples,
		EconomicLimitRate: 25,
		ProjectionMonths:  240,
	}
}

func TestEvaluateWell(t *testing.T) {
	e := newTestEvaluator(1)

	req := decliningWell("W-01", 24, 800, 0.98)
	forecast := 1000.0
	req.ForecastRate = &forecast

	resp, err := e.EvaluateWell(req)
	require.NoError(t, err)

	assert.Equal(t, "W-01", resp.WellID)
	assert.True(t, resp.Fit.Fitted())
	assert.Greater(t, resp.Fit.FitR2, 0.85)
	// Latest rate 800·0.98^23 ≈ 502 against a 1000 forecast is far below.
	assert.Equal(t, types.SeverityRed, resp.Classification.Severity)
}

func TestEvaluateWellForecastFromMonthMap(t *testing.T) {
	e := newTestEvaluator(1)

	req := decliningWell("W-02", 24, 800, 0.98)
	req.ForecastByMonth = map[int]float64{23: 500}

	resp, err := e.EvaluateWell(req)
	require.NoError(t, err)

	require.NotNil(t, resp.Classification.VariancePct)
	// Latest rate ≈ 502.5 vs the month-23 forecast of 500: on track.
	assert.Equal(t, types.SeverityGreen, resp.Classification.Severity)
}

func TestEvaluateWellContractViolation(t *testing.T) {
	e := newTestEvaluator(1)

	req := types.WellAnalysisRequest{
		WellID:            "W-BAD",
		Samples:           []types.RateSample{{TimeIndex: 0, Rate: -1}},
		EconomicLimitRate: 25,
		ProjectionMonths:  240,
	}

	_, err := e.EvaluateWell(req)
	assert.Error(t, err)
}

func TestEvaluateWellEchoesReserves(t *testing.T) {
	e := newTestEvaluator(1)

	req := decliningWell("W-03", 24, 800, 0.98)
	req.Reserves = &types.CPRReserves{EUR1PMMboe: 0.9, EUR2PMMboe: 1.4, EUR3PMMboe: 2.1}

	resp, err := e.EvaluateWell(req)
	require.NoError(t, err)
	require.NotNil(t, resp.Reserves)
	assert.Equal(t, 1.4, resp.Reserves.EUR2PMMboe)
}

func TestEvaluateFleetIsolatesFailures(t *testing.T) {
	e := newTestEvaluator(4)

	wells := []types.WellAnalysisRequest{
		decliningWell("W-01", 24, 800, 0.98),
		{
			WellID:            "W-BAD",
			Samples:           []types.RateSample{{TimeIndex: 0, Rate: math.NaN()}},
			EconomicLimitRate: 25,
			ProjectionMonths:  240,
		},
		decliningWell("W-03", 36, 1500, 0.97),
	}

	results, summary := e.EvaluateFleet(context.Background(), wells)
	require.Len(t, results, 3)

	// Healthy wells are unaffected by the malformed one.
	assert.True(t, results[0].Fit.Fitted())
	assert.True(t, results[2].Fit.Fitted())

	// The malformed well degrades to failed/BLACK instead of propagating.
	assert.Equal(t, types.CurveFailed, results[1].Fit.CurveType)
	assert.Equal(t, types.SeverityBlack, results[1].Classification.Severity)

	total := 0
	for _, n := range summary.Counts {
		total += n
	}
	assert.Equal(t, 3, total)
	assert.Equal(t, 1, summary.Counts[types.SeverityBlack])
}

func TestEvaluateFleetEmpty(t *testing.T) {
	e := newTestEvaluator(2)

	results, summary := e.EvaluateFleet(context.Background(), nil)
	assert.Empty(t, results)
	for _, s := range types.AllSeverities() {
		assert.Equal(t, 0, summary.Counts[s])
	}
}

func TestEvaluateFleetCanceledContext(t *testing.T) {
	e := newTestEvaluator(2)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wells := []types.WellAnalysisRequest{decliningWell("W-01", 24, 800, 0.98)}
	results, _ := e.EvaluateFleet(ctx, wells)

	require.Len(t, results, 1)
	assert.Equal(t, types.CurveFailed, results[0].Fit.CurveType)
	assert.Equal(t, types.SeverityBlack, results[0].Classification.Severity)
}

func TestEvaluateFleetManyWells(t *testing.T) {
	e := newTestEvaluator(0) // pool sized to available cores

	wells := make([]types.WellAnalysisRequest, 50)
	for i := range wells {
		wells[i] = decliningWell("W", 24, 500+float64(i)*10, 0.98)
	}

	results, summary := e.EvaluateFleet(context.Background(), wells)
	require.Len(t, results, 50)

	total := 0
	for _, n := range summary.Counts {
		total += n
	}
	assert.Equal(t, 50, total)
	assert.Greater(t, summary.TotalEURMMboe, 0.0)
	require.NotNil(t, summary.WeightedDeclinePct)
}
