package decline

import (
	"fmt"
	"math"

	"github.com/jmkvaal/declinewatch/internal/types"
	"github.com/jmkvaal/declinewatch/internal/valerr"
)

const (
	initialDi     = 0.05
	initialB      = 0.5
	monthsPerYear = 12
)

// Parameter bounds per model tier: (qi, Di, b) for hyperbolic, (qi, Di) for
// the exponential fallback. Di is a monthly fraction.
var (
	hyperbolicBounds  = []bound{{0, math.Inf(1)}, {0.001, 0.5}, {0.05, 1.0}}
	exponentialBounds = []bound{{0, math.Inf(1)}, {0.0001, 0.5}}
)

// fitOutcome is one tier's successful parameter set.
type fitOutcome struct {
	curve types.CurveType
	qi    float64
	di    float64 // monthly fraction
	b     float64
	r2    float64
}

// Fitter fits decline models to well rate histories.
type Fitter struct {
	th Thresholds
}

// NewFitter creates a fitter with the given thresholds.
func NewFitter(th Thresholds) *Fitter {
	return &Fitter{th: th}
}

// Fit fits a decline model to a well's monthly rate series and embeds the
// EUR projection. Malformed input returns a validation error; data-quality
// problems never do: they degrade through the ordered attempt list
// (hyperbolic, then exponential, then failed) and surface as terminal
// states or flags on the returned record.
func (f *Fitter) Fit(samples []types.RateSample, economicLimitRate float64, projectionMonths int) (types.DeclineFit, error) {
	if err := validateSamples(samples, economicLimitRate, projectionMonths); err != nil {
		return types.DeclineFit{}, err
	}

	months := len(samples)

	// Shut-in months carry no decline information.
	positive := make([]types.RateSample, 0, len(samples))
	for _, s := range samples {
		if s.Rate > 0 {
			positive = append(positive, s)
		}
	}

	if len(positive) < f.th.MinSamples {
		return types.DeclineFit{
			CurveType:        types.CurveInsufficientData,
			MonthsOfData:     months,
			InsufficientData: true,
			Flags: []string{fmt.Sprintf("insufficient history: %d positive samples, %d required",
				len(positive), f.th.MinSamples)},
		}, nil
	}

	ts := make([]float64, len(positive))
	ys := make([]float64, len(positive))
	for i, s := range positive {
		ts[i] = float64(s.TimeIndex)
		ys[i] = s.Rate
	}
	qi0 := positive[0].Rate

	// Ordered attempt list; each tier's failure condition is independent.
	attempts := []struct {
		run          func() (fitOutcome, error)
		fallbackFlag string
	}{
		{run: func() (fitOutcome, error) { return fitHyperbolic(ts, ys, qi0) }},
		{
			run:          func() (fitOutcome, error) { return fitExponential(ts, ys, qi0) },
			fallbackFlag: "hyperbolic fit did not converge; fell back to exponential decline",
		},
	}

	var flags []string
	var lastErr error
	for _, at := range attempts {
		if at.fallbackFlag != "" {
			flags = append(flags, at.fallbackFlag)
		}
		out, err := at.run()
		if err != nil {
			lastErr = err
			continue
		}
		return f.finish(out, months, flags, economicLimitRate, projectionMonths), nil
	}

	return types.DeclineFit{
		CurveType:    types.CurveFailed,
		MonthsOfData: months,
		Flags:        append(flags, fmt.Sprintf("curve fit failed: %v", lastErr)),
	}, nil
}

// finish derives quality flags and the EUR projection for a successful tier.
func (f *Fitter) finish(out fitOutcome, months int, flags []string, economicLimitRate float64, projectionMonths int) types.DeclineFit {
	annualPct := out.di * monthsPerYear * 100

	if out.r2 < f.th.PoorFitR2 {
		flags = append(flags, fmt.Sprintf("poor fit quality: R²=%.2f below %.2f", out.r2, f.th.PoorFitR2))
	}
	switch {
	case annualPct > f.th.RedDeclinePctYr:
		flags = append(flags, fmt.Sprintf("steep decline: %.1f%%/yr exceeds %.0f%%/yr", annualPct, f.th.RedDeclinePctYr))
	case annualPct > f.th.AmberDeclinePctYr:
		flags = append(flags, fmt.Sprintf("elevated decline: %.1f%%/yr exceeds %.0f%%/yr", annualPct, f.th.AmberDeclinePctYr))
	}
	if out.curve == types.CurveHyperbolic && out.b > f.th.BFactorAnomaly {
		flags = append(flags, fmt.Sprintf("anomalous b-factor: %.2f above %.2f", out.b, f.th.BFactorAnomaly))
	}
	if flags == nil {
		flags = []string{}
	}

	eurBOE := IntegrateEUR(out.qi, out.di, out.b, economicLimitRate, projectionMonths)

	return types.DeclineFit{
		CurveType:    out.curve,
		Qi:           out.qi,
		DiAnnualPct:  annualPct,
		BFactor:      out.b,
		EURMMboe:     eurBOE / 1e6,
		FitR2:        out.r2,
		MonthsOfData: months,
		Flags:        flags,
	}
}

func fitHyperbolic(ts, ys []float64, qi0 float64) (fitOutcome, error) {
	model := func(t float64, p []float64) float64 {
		return Hyperbolic(t, p[0], p[1], p[2])
	}
	p, err := fitLeastSquares(ts, ys, []float64{qi0, initialDi, initialB}, hyperbolicBounds, model)
	if err != nil {
		return fitOutcome{}, err
	}
	return fitOutcome{
		curve: types.CurveHyperbolic,
		qi:    p[0],
		di:    p[1],
		b:     p[2],
		r2:    rSquared(ts, ys, p, model),
	}, nil
}

func fitExponential(ts, ys []float64, qi0 float64) (fitOutcome, error) {
	model := func(t float64, p []float64) float64 {
		return Exponential(t, p[0], p[1])
	}
	qiInit, diInit := logLinearInit(ts, ys, qi0)
	p, err := fitLeastSquares(ts, ys, []float64{qiInit, diInit}, exponentialBounds, model)
	if err != nil {
		return fitOutcome{}, err
	}
	return fitOutcome{
		curve: types.CurveExponential,
		qi:    p[0],
		di:    p[1],
		r2:    rSquared(ts, ys, p, model),
	}, nil
}

// logLinearInit seeds the exponential tier from the closed-form regression
// of ln(q) on t, clamped into the tier's bounds.
func logLinearInit(ts, ys []float64, qi0 float64) (float64, float64) {
	var sumT, sumL, sumTT, sumTL float64
	n := 0.0
	for i := range ts {
		if ys[i] <= 0 {
			continue
		}
		l := math.Log(ys[i])
		sumT += ts[i]
		sumL += l
		sumTT += ts[i] * ts[i]
		sumTL += ts[i] * l
		n++
	}
	if n < 2 {
		return qi0, initialDi
	}
	den := n*sumTT - sumT*sumT
	if den == 0 {
		return qi0, initialDi
	}
	slope := (n*sumTL - sumT*sumL) / den
	intercept := (sumL - slope*sumT) / n

	qi := math.Exp(intercept)
	di := -slope
	qi = exponentialBounds[0].clamp(qi)
	di = exponentialBounds[1].clamp(di)
	return qi, di
}

// rSquared computes 1 − SSres/SStot clamped to [0,1]. A flat series
// (SStot ≈ 0) fits perfectly by definition.
func rSquared(ts, ys, p []float64, model modelFunc) float64 {
	mean := 0.0
	for _, y := range ys {
		mean += y
	}
	mean /= float64(len(ys))

	var ssRes, ssTot float64
	for i := range ts {
		r := ys[i] - model(ts[i], p)
		ssRes += r * r
		d := ys[i] - mean
		ssTot += d * d
	}
	if ssTot < 1e-12 {
		return 1
	}
	r2 := 1 - ssRes/ssTot
	if r2 < 0 {
		return 0
	}
	if r2 > 1 {
		return 1
	}
	return r2
}

// validateSamples rejects contract violations before any fitting happens.
func validateSamples(samples []types.RateSample, economicLimitRate float64, projectionMonths int) error {
	if math.IsNaN(economicLimitRate) || economicLimitRate < 0 {
		return valerr.Validation("economic limit rate must be a non-negative number, got %v", economicLimitRate)
	}
	if projectionMonths < 0 {
		return valerr.Validation("projection months must be non-negative, got %d", projectionMonths)
	}
	prev := -1
	for i, s := range samples {
		if math.IsNaN(s.Rate) || math.IsInf(s.Rate, 0) || s.Rate < 0 {
			return valerr.Validation("sample %d: rate must be a non-negative number, got %v", i, s.Rate)
		}
		if s.TimeIndex < 0 {
			return valerr.Validation("sample %d: time index must be non-negative, got %d", i, s.TimeIndex)
		}
		if s.TimeIndex <= prev {
			return valerr.Validation("sample %d: time index %d not strictly increasing (previous %d)", i, s.TimeIndex, prev)
		}
		prev = s.TimeIndex
	}
	return nil
}
