package decline

// minHyperbolicB is the point below which a b-factor is treated as zero and
// the exponential form is used for projection.
const minHyperbolicB = 1e-6

// IntegrateEUR projects the fitted curve forward and integrates it to an
// estimated ultimate recovery in boe. The monthly curve is truncated at the
// first month the rate falls below the economic limit (abandonment); if it
// never does, the full projection horizon is used. Integration is the
// trapezoid rule over rate × days-per-month.
func IntegrateEUR(qi, diMonthly, b, economicLimitRate float64, projectionMonths int) float64 {
	if qi <= 0 || diMonthly <= 0 || projectionMonths <= 0 {
		return 0
	}

	rates := make([]float64, 0, projectionMonths+1)
	for t := 0; t <= projectionMonths; t++ {
		var q float64
		if b >= minHyperbolicB {
			q = Hyperbolic(float64(t), qi, diMonthly, b)
		} else {
			q = Exponential(float64(t), qi, diMonthly)
		}
		if q < economicLimitRate {
			break
		}
		rates = append(rates, q)
	}

	if len(rates) < 2 {
		return 0
	}

	volume := 0.0
	for i := 1; i < len(rates); i++ {
		volume += 0.5 * (rates[i-1] + rates[i]) * DaysPerMonth
	}
	return volume
}
