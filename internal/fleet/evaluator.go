package fleet

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jmkvaal/declinewatch/internal/classify"
	"github.com/jmkvaal/declinewatch/internal/decline"
	"github.com/jmkvaal/declinewatch/internal/types"
)

// Evaluator runs the fit + classification pipeline per well. Per-well
// evaluation is a pure function of its inputs, so fleets fan out across a
// bounded worker pool and join before the single reduction step.
type Evaluator struct {
	fitter     *decline.Fitter
	classifier *classify.Classifier
	workers    int
}

// NewEvaluator creates an evaluator. workers <= 0 sizes the pool to the
// available cores.
func NewEvaluator(fitter *decline.Fitter, classifier *classify.Classifier, workers int) *Evaluator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Evaluator{
		fitter:     fitter,
		classifier: classifier,
		workers:    workers,
	}
}

// EvaluateWell fits and classifies a single well. Contract violations in
// the request return an error; data-quality problems surface as terminal
// states and flags on the records.
func (e *Evaluator) EvaluateWell(req types.WellAnalysisRequest) (types.WellAnalysisResponse, error) {
	fit, err := e.fitter.Fit(req.Samples, req.EconomicLimitRate, req.ProjectionMonths)
	if err != nil {
		return types.WellAnalysisResponse{}, err
	}

	cls := e.classifier.Classify(buildClassifyInput(req, fit), req.Overrides)

	return types.WellAnalysisResponse{
		WellID:         req.WellID,
		Fit:            fit,
		Classification: cls,
		Reserves:       req.Reserves,
	}, nil
}

// EvaluateFleet fans the wells out across the pool, waits for every result,
// then reduces them into a fleet summary. A failure in one well degrades
// that well to failed/BLACK and never blocks the others.
func (e *Evaluator) EvaluateFleet(ctx context.Context, wells []types.WellAnalysisRequest) ([]types.WellAnalysisResponse, types.FleetSummary) {
	responses := make([]types.WellAnalysisResponse, len(wells))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i := range wells {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				responses[i] = degradedResponse(wells[i], "evaluation canceled")
				return
			}
			responses[i] = e.safeEvaluate(wells[i])
		}(i)
	}
	wg.Wait()

	results := make([]WellResult, len(responses))
	for i := range responses {
		results[i] = WellResult{
			WellID:         responses[i].WellID,
			CurrentRate:    latestRate(wells[i].Samples),
			Fit:            &responses[i].Fit,
			Classification: &responses[i].Classification,
		}
	}

	return responses, Summarize(results)
}

// safeEvaluate isolates one well's failure from the rest of the fleet.
func (e *Evaluator) safeEvaluate(req types.WellAnalysisRequest) (resp types.WellAnalysisResponse) {
	defer func() {
		if r := recover(); r != nil {
			resp = degradedResponse(req, fmt.Sprintf("evaluation panicked: %v", r))
		}
	}()

	resp, err := e.EvaluateWell(req)
	if err != nil {
		return degradedResponse(req, err.Error())
	}
	return resp
}

// degradedResponse is the terminal failed/BLACK state for a well whose
// evaluation could not complete.
func degradedResponse(req types.WellAnalysisRequest, reason string) types.WellAnalysisResponse {
	return types.WellAnalysisResponse{
		WellID: req.WellID,
		Fit: types.DeclineFit{
			CurveType:    types.CurveFailed,
			MonthsOfData: len(req.Samples),
			Flags:        []string{reason},
		},
		Classification: types.ClassificationResult{
			Severity:         types.SeverityBlack,
			Label:            "Evaluation failed",
			Flags:            []string{reason},
			AppliedOverrides: []string{},
		},
		Reserves: req.Reserves,
	}
}

func buildClassifyInput(req types.WellAnalysisRequest, fit types.DeclineFit) classify.Input {
	in := classify.Input{
		GORTrendPct:       req.GORTrendPct,
		WaterCutTrendPpts: req.WaterCutTrendPpts,
		UptimePct:         req.UptimePct,
		OperationalStatus: req.OperationalStatus,
	}

	if r := latestRate(req.Samples); r != nil {
		in.CurrentRate = *r
	}

	in.ForecastRate = req.ForecastRate
	if in.ForecastRate == nil && len(req.Samples) > 0 {
		if v, ok := req.ForecastByMonth[req.Samples[len(req.Samples)-1].TimeIndex]; ok {
			in.ForecastRate = &v
		}
	}

	if fit.Fitted() {
		d := fit.DiAnnualPct
		r2 := fit.FitR2
		in.AnnualDeclinePct = &d
		in.FitR2 = &r2
	}

	return in
}

func latestRate(samples []types.RateSample) *float64 {
	if len(samples) == 0 {
		return nil
	}
	r := samples[len(samples)-1].Rate
	return &r
}
