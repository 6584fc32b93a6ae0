package models

import "time"

// Default statistical thresholds for declaring a metric significant
const (
	DefaultRSquaredThreshold = 0.10
	DefaultPValueThreshold   = 0.05
)

// RegressionAnalysisResult holds the fit of one metric's efficiency
// differential against real point differentials.
type RegressionAnalysisResult struct {
	Metric             Metric     `json:"metric"`
	Coefficient        float64    `json:"coefficient"`
	Intercept          float64    `json:"intercept"`
	RSquared           float64    `json:"r_squared"`
	PValue             float64    `json:"p_value"`
	StandardError      float64    `json:"standard_error"`
	ConfidenceInterval [2]float64 `json:"confidence_interval"`
	SampleSize         int        `json:"sample_size"`
	Weight             float64    `json:"weight"`
	RSquaredThreshold  float64    `json:"r_squared_threshold"`
	PValueThreshold    float64    `json:"p_value_threshold"`
	AnalyzedAt         time.Time  `json:"analyzed_at"`
}

// IsStatisticallySignificant is recomputed from the stored thresholds every
// time; the flag is deliberately not a stored field so it can never drift.
func (r *RegressionAnalysisResult) IsStatisticallySignificant() bool {
	return r.RSquared >= r.RSquaredThreshold && r.PValue <= r.PValueThreshold
}

// ContainsCoefficient reports whether the confidence interval brackets the
// estimated coefficient (an internal-consistency invariant).
func (r *RegressionAnalysisResult) ContainsCoefficient() bool {
	return r.ConfidenceInterval[0] <= r.Coefficient && r.Coefficient <= r.ConfidenceInterval[1]
}

// ContainsZero reports whether zero lies inside the confidence interval
func (r *RegressionAnalysisResult) ContainsZero() bool {
	return r.ConfidenceInterval[0] <= 0 && 0 <= r.ConfidenceInterval[1]
}

// MetricCorrelationAnalysis summarizes how strongly one metric tracks outcomes
type MetricCorrelationAnalysis struct {
	Metric      Metric    `json:"metric"`
	Correlation float64   `json:"correlation"`
	RSquared    float64   `json:"r_squared"`
	SampleSize  int       `json:"sample_size"`
	MeanX       float64   `json:"mean_x"`
	MeanY       float64   `json:"mean_y"`
	AnalyzedAt  time.Time `json:"analyzed_at"`
}

// RegressionModelSummary aggregates the per-metric results of one calibration
// run together with an overall confidence grade.
type RegressionModelSummary struct {
	Season          int                         `json:"season"`
	Results         []*RegressionAnalysisResult `json:"results"`
	TotalSamples    int                         `json:"total_samples"`
	ConfidenceLevel float64                     `json:"confidence_level"`
	AnalyzedAt      time.Time                   `json:"analyzed_at"`
}

// AnalysisConfidence maps total sample size onto an overall confidence grade
func AnalysisConfidence(totalSamples int) float64 {
	switch {
	case totalSamples >= 150:
		return 0.95
	case totalSamples >= 75:
		return 0.90
	case totalSamples >= 30:
		return 0.80
	case totalSamples >= 15:
		return 0.70
	default:
		return 0.60
	}
}
