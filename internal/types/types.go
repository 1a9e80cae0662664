package types

// CriticalMarker tags flags that should be surfaced as critical in fleet
// rollups and downstream reports.
const CriticalMarker = "CRITICAL"

// RateSample is one month of normalized production throughput for a well.
// Samples are ordered by TimeIndex, strictly increasing, no duplicates.
type RateSample struct {
	TimeIndex int     `json:"time_index"`
	Rate      float64 `json:"rate"` // boe/d, uptime-corrected upstream
}

// CurveType identifies which decline model produced a fit, or why none did.
type CurveType string

const (
	CurveHyperbolic       CurveType = "hyperbolic"
	CurveExponential      CurveType = "exponential"
	CurveInsufficientData CurveType = "insufficient_data"
	CurveFailed           CurveType = "failed"
)

// DeclineFit is the result of fitting a decline model to a well's rate
// history. Immutable once produced; one per well per evaluation.
type DeclineFit struct {
	CurveType        CurveType `json:"curve_type"`
	Qi               float64   `json:"qi"`            // boe/d at t=0
	DiAnnualPct      float64   `json:"di_annual_pct"` // effective annual decline, percent
	BFactor          float64   `json:"b_factor"`
	EURMMboe         float64   `json:"eur_mmboe"`
	FitR2            float64   `json:"fit_r2"`
	MonthsOfData     int       `json:"months_of_data"`
	Flags            []string  `json:"flags"`
	InsufficientData bool      `json:"insufficient_data"`
}

// Fitted reports whether the fit produced usable curve parameters.
func (f DeclineFit) Fitted() bool {
	return f.CurveType == CurveHyperbolic || f.CurveType == CurveExponential
}

// Severity is the four-level ordered risk classification. BLACK denotes an
// inactive or non-producing well.
type Severity string

const (
	SeverityGreen Severity = "GREEN"
	SeverityAmber Severity = "AMBER"
	SeverityRed   Severity = "RED"
	SeverityBlack Severity = "BLACK"
)

var severityRank = map[Severity]int{
	SeverityGreen: 0,
	SeverityAmber: 1,
	SeverityRed:   2,
	SeverityBlack: 3,
}

// Rank returns the position of s in the fixed order GREEN < AMBER < RED < BLACK.
func (s Severity) Rank() int {
	return severityRank[s]
}

// MaxSeverity returns the more severe of a and b. Escalation paths use this
// so a secondary signal can raise severity but never lower it.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// AllSeverities lists the severities in ascending order.
func AllSeverities() []Severity {
	return []Severity{SeverityGreen, SeverityAmber, SeverityRed, SeverityBlack}
}

// ClassificationResult is the explainable outcome of the multi-signal risk
// classification for a single well.
type ClassificationResult struct {
	Severity         Severity `json:"severity"`
	Label            string   `json:"label"`
	VariancePct      *float64 `json:"variance_pct,omitempty"`
	Flags            []string `json:"flags"`
	AppliedOverrides []string `json:"applied_overrides"`
}

// OverrideWeight grades an externally supplied override pattern. STALE
// patterns are inert.
type OverrideWeight string

const (
	WeightLow    OverrideWeight = "LOW"
	WeightMedium OverrideWeight = "MEDIUM"
	WeightHigh   OverrideWeight = "HIGH"
	WeightStale  OverrideWeight = "STALE"
)

// OverridePattern is an advisory rule supplied by the learning collaborator.
type OverridePattern struct {
	Tag      string         `json:"tag"`
	RuleText string         `json:"rule_text"`
	Weight   OverrideWeight `json:"weight"`
}

// CPRReserves carries independent reserve estimates from a competent
// person's report. Echoed on output for enrichment only; never consumed by
// the fitter.
type CPRReserves struct {
	EUR1PMMboe float64 `json:"eur_1p_mmboe"`
	EUR2PMMboe float64 `json:"eur_2p_mmboe"`
	EUR3PMMboe float64 `json:"eur_3p_mmboe"`
}

// FleetSummary is the fleet-level reduction over per-well results.
type FleetSummary struct {
	Counts            map[Severity]int `json:"counts"`
	TotalRateBOEPD    float64          `json:"total_rate_boepd"`
	TotalEURMMboe     float64          `json:"total_eur_mmboe"`
	CriticalFlagCount int              `json:"critical_flag_count"`
	// Mean annual decline across wells with a fitted decline; nil if none.
	WeightedDeclinePct *float64 `json:"weighted_decline_pct"`
}

// WellAnalysisRequest is the API payload for a single well evaluation.
// Samples arrive already uptime-corrected and unit-normalized.
type WellAnalysisRequest struct {
	WellID  string       `json:"well_id"`
	Samples []RateSample `json:"samples"`

	EconomicLimitRate float64 `json:"economic_limit_rate"` // boe/d
	ProjectionMonths  int     `json:"projection_months"`

	// Reference forecast: either a direct rate or a month-indexed map from
	// which the latest sample's month is looked up.
	ForecastRate    *float64        `json:"forecast_rate,omitempty"`
	ForecastByMonth map[int]float64 `json:"forecast_by_month,omitempty"`

	GORTrendPct       *float64 `json:"gor_trend_pct,omitempty"`
	WaterCutTrendPpts *float64 `json:"water_cut_trend_ppts,omitempty"`
	UptimePct         *float64 `json:"uptime_pct,omitempty"`
	OperationalStatus *string  `json:"operational_status,omitempty"`

	Overrides []OverridePattern `json:"overrides,omitempty"`
	Reserves  *CPRReserves      `json:"reserves,omitempty"`
}

// WellAnalysisResponse pairs the fit and classification records for one well.
type WellAnalysisResponse struct {
	RequestID      string               `json:"request_id,omitempty"`
	WellID         string               `json:"well_id"`
	Fit            DeclineFit           `json:"fit"`
	Classification ClassificationResult `json:"classification"`
	Reserves       *CPRReserves         `json:"reserves,omitempty"`
}

// FleetAnalysisRequest is the API payload for a whole-fleet evaluation.
type FleetAnalysisRequest struct {
	Wells []WellAnalysisRequest `json:"wells"`
}

// FleetAnalysisResponse carries per-well results plus the fleet reduction.
type FleetAnalysisResponse struct {
	RequestID string                 `json:"request_id,omitempty"`
	Results   []WellAnalysisResponse `json:"results"`
	Summary   FleetSummary           `json:"summary"`
}
