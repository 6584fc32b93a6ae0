package audit

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/gridiron-edge/internal/calibration"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// Diagnostic thresholds. These are the conventional textbook cutoffs, not
// tunables; an auditor moving them would be hiding problems, not fixing them.
const (
	vifThreshold           = 10.0
	heteroVarianceRatio    = 4.0
	normalitySkewLimit     = 2.0
	normalityKurtosisLimit = 7.0
)

// Issue is one internal-consistency or diagnostic finding
type Issue struct {
	Metric   models.Metric `json:"metric,omitempty"`
	Code     string        `json:"code"`
	Severity string        `json:"severity"`
	Detail   string        `json:"detail"`
}

// AuditRegression checks a calibration summary for internal inconsistencies
// and runs standard regression diagnostics over the raw samples.
func (a *Auditor) AuditRegression(summary *models.RegressionModelSummary, samples []calibration.CalibrationSample) []Issue {
	var issues []Issue

	for _, r := range summary.Results {
		issues = append(issues, a.auditResult(r)...)
	}
	if len(samples) > 0 {
		issues = append(issues, a.auditDiagnostics(summary, samples)...)
	}
	return issues
}

// auditResult asserts the invariants every stored result must satisfy
func (a *Auditor) auditResult(r *models.RegressionAnalysisResult) []Issue {
	var issues []Issue

	if !r.ContainsCoefficient() {
		issues = append(issues, Issue{
			Metric: r.Metric, Code: "ci_excludes_coefficient", Severity: "error",
			Detail: fmt.Sprintf("interval [%f, %f] does not bracket coefficient %f",
				r.ConfidenceInterval[0], r.ConfidenceInterval[1], r.Coefficient),
		})
	}
	if r.PValue < 0 || r.PValue > 1 {
		issues = append(issues, Issue{
			Metric: r.Metric, Code: "p_value_out_of_range", Severity: "error",
			Detail: fmt.Sprintf("p-value %f outside [0,1]", r.PValue),
		})
	}
	if r.RSquared < 0 || r.RSquared > 1 {
		issues = append(issues, Issue{
			Metric: r.Metric, Code: "r_squared_out_of_range", Severity: "error",
			Detail: fmt.Sprintf("R^2 %f outside [0,1]", r.RSquared),
		})
	}
	if r.IsStatisticallySignificant() && r.ContainsZero() {
		issues = append(issues, Issue{
			Metric: r.Metric, Code: "significant_but_interval_spans_zero", Severity: "warning",
			Detail: "metric passes the significance thresholds while its interval includes zero",
		})
	}
	if r.SampleSize < a.cfg.MinSamplesPerPredictor {
		issues = append(issues, Issue{
			Metric: r.Metric, Code: "thin_sample", Severity: "warning",
			Detail: fmt.Sprintf("%d samples for 1 predictor, want at least %d",
				r.SampleSize, a.cfg.MinSamplesPerPredictor),
		})
	}
	return issues
}

// auditDiagnostics approximates the classical regression assumption checks:
// multicollinearity, homoscedasticity, and residual normality.
func (a *Auditor) auditDiagnostics(summary *models.RegressionModelSummary, samples []calibration.CalibrationSample) []Issue {
	var issues []Issue

	issues = append(issues, a.checkCollinearity(summary, samples)...)
	for _, r := range summary.Results {
		residuals := residualsFor(r, samples)
		if len(residuals) < 4 {
			continue
		}
		issues = append(issues, a.checkHomoscedasticity(r.Metric, residuals)...)
		issues = append(issues, a.checkNormality(r.Metric, residuals)...)
	}
	return issues
}

// checkCollinearity flags metric pairs whose differentials move together so
// tightly that their fitted coefficients are not separately trustworthy.
// VIF for a pair reduces to 1/(1-r^2).
func (a *Auditor) checkCollinearity(summary *models.RegressionModelSummary, samples []calibration.CalibrationSample) []Issue {
	var issues []Issue

	for i := 0; i < len(summary.Results); i++ {
		for j := i + 1; j < len(summary.Results); j++ {
			mi, mj := summary.Results[i].Metric, summary.Results[j].Metric
			xi := columnFor(mi, samples)
			xj := columnFor(mj, samples)
			if stat.Variance(xi, nil) == 0 || stat.Variance(xj, nil) == 0 {
				continue
			}
			r := stat.Correlation(xi, xj, nil)
			if rr := r * r; rr < 1 {
				if vif := 1 / (1 - rr); vif > vifThreshold {
					issues = append(issues, Issue{
						Metric: mi, Code: "multicollinearity", Severity: "warning",
						Detail: fmt.Sprintf("%s and %s move together (VIF %.1f)", mi, mj, vif),
					})
				}
			}
		}
	}
	return issues
}

// checkHomoscedasticity compares residual variance between the low and high
// halves of the predictor range.
func (a *Auditor) checkHomoscedasticity(metric models.Metric, residuals []residual) []Issue {
	half := len(residuals) / 2
	low := make([]float64, 0, half)
	high := make([]float64, 0, half)
	for i, r := range residuals {
		if i < half {
			low = append(low, r.e)
		} else {
			high = append(high, r.e)
		}
	}
	vLow, vHigh := stat.Variance(low, nil), stat.Variance(high, nil)
	if vLow == 0 || vHigh == 0 {
		return nil
	}
	ratio := vHigh / vLow
	if ratio < 1 {
		ratio = 1 / ratio
	}
	if ratio > heteroVarianceRatio {
		return []Issue{{
			Metric: metric, Code: "heteroscedastic_residuals", Severity: "warning",
			Detail: fmt.Sprintf("residual variance ratio %.1f across predictor halves", ratio),
		}}
	}
	return nil
}

// checkNormality flags residual distributions too skewed or heavy-tailed for
// the t-based inference to be trusted.
func (a *Auditor) checkNormality(metric models.Metric, residuals []residual) []Issue {
	es := make([]float64, len(residuals))
	for i, r := range residuals {
		es[i] = r.e
	}
	if stat.Variance(es, nil) == 0 {
		return nil
	}
	skew := stat.Skew(es, nil)
	kurt := stat.ExKurtosis(es, nil)

	var issues []Issue
	if math.Abs(skew) > normalitySkewLimit {
		issues = append(issues, Issue{
			Metric: metric, Code: "skewed_residuals", Severity: "warning",
			Detail: fmt.Sprintf("residual skew %.2f", skew),
		})
	}
	if kurt > normalityKurtosisLimit {
		issues = append(issues, Issue{
			Metric: metric, Code: "heavy_tailed_residuals", Severity: "warning",
			Detail: fmt.Sprintf("residual excess kurtosis %.2f", kurt),
		})
	}
	return issues
}

type residual struct {
	x float64
	e float64
}

// residualsFor rebuilds a result's residuals, sorted by predictor so variance
// halves split the predictor range.
func residualsFor(r *models.RegressionAnalysisResult, samples []calibration.CalibrationSample) []residual {
	out := make([]residual, 0, len(samples))
	for _, s := range samples {
		x := s.Differentials.Get(r.Metric)
		out = append(out, residual{x: x, e: s.PointDifferential - (r.Intercept + r.Coefficient*x)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].x < out[j].x })
	return out
}

func columnFor(m models.Metric, samples []calibration.CalibrationSample) []float64 {
	xs := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Differentials.Get(m)
	}
	return xs
}
