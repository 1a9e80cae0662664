package decline

import (
	"errors"
	"fmt"
	"math"
)

// Solver tuning. The iteration cap bounds the CPU spent on a pathological
// series; hitting it is a fallback trigger, not a hard failure.
const (
	maxIterations  = 200
	maxDampRetries = 25
	lambdaInit     = 1e-3
	lambdaGrow     = 10.0
	lambdaShrink   = 0.1
	convergenceTol = 1e-9
	sseFloor       = 1e-12
)

var errNoImprovement = errors.New("solver could not improve on the initial guess")

// bound is a closed parameter interval for the box-constrained solver.
type bound struct {
	lo, hi float64
}

func (b bound) clamp(x float64) float64 {
	if x < b.lo {
		return b.lo
	}
	if x > b.hi {
		return b.hi
	}
	return x
}

// modelFunc evaluates the predicted rate at month t for parameter vector p.
type modelFunc func(t float64, p []float64) float64

func clampParams(p []float64, bounds []bound) []float64 {
	for i := range p {
		p[i] = bounds[i].clamp(p[i])
	}
	return p
}

func sumSquaredError(ts, ys, p []float64, model modelFunc) float64 {
	sse := 0.0
	for i := range ts {
		r := ys[i] - model(ts[i], p)
		sse += r * r
	}
	return sse
}

// fitLeastSquares minimizes the sum of squared residuals over p with a
// damped Gauss-Newton (Levenberg-Marquardt) iteration, projecting each step
// back into bounds. The Jacobian is a forward-difference approximation.
func fitLeastSquares(ts, ys, p0 []float64, bounds []bound, model modelFunc) ([]float64, error) {
	n := len(p0)
	p := clampParams(append([]float64(nil), p0...), bounds)

	sse := sumSquaredError(ts, ys, p, model)
	if math.IsNaN(sse) || math.IsInf(sse, 0) {
		return nil, errors.New("initial guess produced a non-finite residual")
	}

	lambda := lambdaInit
	improvedOnce := false

	for iter := 0; iter < maxIterations; iter++ {
		if sse <= sseFloor {
			return p, nil
		}

		jtj, jtr := normalEquations(ts, ys, p, model)

		accepted := false
		for try := 0; try < maxDampRetries; try++ {
			step, ok := solveDamped(jtj, jtr, lambda)
			if !ok {
				lambda *= lambdaGrow
				continue
			}

			cand := make([]float64, n)
			for j := range cand {
				cand[j] = p[j] + step[j]
			}
			cand = clampParams(cand, bounds)

			candSSE := sumSquaredError(ts, ys, cand, model)
			if !math.IsNaN(candSSE) && candSSE < sse {
				rel := (sse - candSSE) / math.Max(sse, sseFloor)
				p = cand
				sse = candSSE
				lambda = math.Max(lambda*lambdaShrink, 1e-12)
				improvedOnce = true
				accepted = true
				if rel < convergenceTol {
					return p, nil
				}
				break
			}

			lambda *= lambdaGrow
			if lambda > 1e12 {
				break
			}
		}

		if !accepted {
			// No damping level improves the objective: we are at a local
			// minimum (possibly on a bound) or the surface is degenerate.
			if improvedOnce {
				return p, nil
			}
			return nil, errNoImprovement
		}
	}

	return nil, fmt.Errorf("did not converge within %d iterations", maxIterations)
}

// normalEquations accumulates JᵀJ and Jᵀr for the current parameters using
// forward-difference partial derivatives.
func normalEquations(ts, ys, p []float64, model modelFunc) ([][]float64, []float64) {
	n := len(p)
	jtj := make([][]float64, n)
	for i := range jtj {
		jtj[i] = make([]float64, n)
	}
	jtr := make([]float64, n)

	row := make([]float64, n)
	pj := make([]float64, n)
	for i := range ts {
		pred := model(ts[i], p)
		res := ys[i] - pred
		for j := 0; j < n; j++ {
			h := 1e-6 * math.Max(math.Abs(p[j]), 1e-6)
			copy(pj, p)
			pj[j] += h
			row[j] = (model(ts[i], pj) - pred) / h
		}
		for j := 0; j < n; j++ {
			jtr[j] += row[j] * res
			for k := 0; k < n; k++ {
				jtj[j][k] += row[j] * row[k]
			}
		}
	}
	return jtj, jtr
}

// solveDamped solves (JᵀJ + λ·diag(JᵀJ))·x = Jᵀr by Gaussian elimination
// with partial pivoting.
func solveDamped(jtj [][]float64, jtr []float64, lambda float64) ([]float64, bool) {
	n := len(jtr)
	a := make([][]float64, n)
	for i := range a {
		a[i] = append([]float64(nil), jtj[i]...)
		damp := lambda * jtj[i][i]
		if damp == 0 {
			damp = lambda
		}
		a[i][i] += damp
	}
	x := append([]float64(nil), jtr...)

	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-300 {
			return nil, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		x[col], x[pivot] = x[pivot], x[col]

		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c < n; c++ {
				a[r][c] -= f * a[col][c]
			}
			x[r] -= f * x[col]
		}
	}

	for r := n - 1; r >= 0; r-- {
		for c := r + 1; c < n; c++ {
			x[r] -= a[r][c] * x[c]
		}
		x[r] /= a[r][r]
		if math.IsNaN(x[r]) || math.IsInf(x[r], 0) {
			return nil, false
		}
	}
	return x, true
}
