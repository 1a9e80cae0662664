package decline

import "math"

// DaysPerMonth converts a monthly rate sample into volume.
const DaysPerMonth = 30.44

// Hyperbolic evaluates the Arps hyperbolic rate q(t) = qi / (1 + b·Di·t)^(1/b),
// with t in months and Di a monthly decline fraction. Evaluated through Log1p
// so the curve stays stable for small b and converges to the exponential form.
func Hyperbolic(t, qi, di, b float64) float64 {
	if b <= 0 {
		return Exponential(t, qi, di)
	}
	x := b * di * t
	if x <= -1 {
		// Outside the model domain (only reachable for negative t or Di).
		return 0
	}
	return qi * math.Exp(-math.Log1p(x)/b)
}

// Exponential evaluates the Arps exponential rate q(t) = qi · exp(−Di·t).
func Exponential(t, qi, di float64) float64 {
	return qi * math.Exp(-di*t)
}
