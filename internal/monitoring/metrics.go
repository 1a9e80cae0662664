package monitoring

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/jmkvaal/declinewatch/internal/types"
)

// Metrics holds application counters. Severity and fallback tallies give
// operators a fleet-health pulse without querying downstream systems.
type Metrics struct {
	RequestCount int64
	ErrorCount   int64
	CacheHits    int64
	CacheMisses  int64

	EvaluationCount       int64
	FallbackCount         int64
	FailedFitCount        int64
	InsufficientDataCount int64
	RateLimitBlocks       int64

	StartTime time.Time

	severityCounts map[types.Severity]int64
	severityMutex  sync.RWMutex
}

// NewMetrics creates a metrics registry.
func NewMetrics() *Metrics {
	return &Metrics{
		StartTime:      time.Now(),
		severityCounts: make(map[types.Severity]int64),
	}
}

func (m *Metrics) IncrementRequest() { atomic.AddInt64(&m.RequestCount, 1) }
func (m *Metrics) IncrementError()   { atomic.AddInt64(&m.ErrorCount, 1) }
func (m *Metrics) IncrementCacheHit() {
	atomic.AddInt64(&m.CacheHits, 1)
}
func (m *Metrics) IncrementCacheMiss() {
	atomic.AddInt64(&m.CacheMisses, 1)
}
func (m *Metrics) IncrementRateLimitBlock() {
	atomic.AddInt64(&m.RateLimitBlocks, 1)
}

// RecordEvaluation tallies one well evaluation outcome.
func (m *Metrics) RecordEvaluation(fit types.DeclineFit, cls types.ClassificationResult) {
	atomic.AddInt64(&m.EvaluationCount, 1)
	switch fit.CurveType {
	case types.CurveExponential:
		atomic.AddInt64(&m.FallbackCount, 1)
	case types.CurveFailed:
		atomic.AddInt64(&m.FailedFitCount, 1)
	case types.CurveInsufficientData:
		atomic.AddInt64(&m.InsufficientDataCount, 1)
	}

	m.severityMutex.Lock()
	m.severityCounts[cls.Severity]++
	m.severityMutex.Unlock()
}

// GetStats returns a snapshot for the metrics endpoint.
func (m *Metrics) GetStats() map[string]interface{} {
	severities := make(map[string]int64, 4)
	m.severityMutex.RLock()
	for s, n := range m.severityCounts {
		severities[string(s)] = n
	}
	m.severityMutex.RUnlock()

	return map[string]interface{}{
		"uptime_seconds":          time.Since(m.StartTime).Seconds(),
		"request_count":           atomic.LoadInt64(&m.RequestCount),
		"error_count":             atomic.LoadInt64(&m.ErrorCount),
		"cache_hits":              atomic.LoadInt64(&m.CacheHits),
		"cache_misses":            atomic.LoadInt64(&m.CacheMisses),
		"evaluation_count":        atomic.LoadInt64(&m.EvaluationCount),
		"fallback_count":          atomic.LoadInt64(&m.FallbackCount),
		"failed_fit_count":        atomic.LoadInt64(&m.FailedFitCount),
		"insufficient_data_count": atomic.LoadInt64(&m.InsufficientDataCount),
		"rate_limit_blocks":       atomic.LoadInt64(&m.RateLimitBlocks),
		"severity_counts":         severities,
	}
}
