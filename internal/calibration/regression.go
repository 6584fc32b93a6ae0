// Package calibration fits efficiency differentials against real game outcomes
// and derives the metric weights used when composing predictions.
package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// CalibrationSample is one completed game expressed as home-minus-away
// efficiency differentials plus the realized point differential.
type CalibrationSample struct {
	GameID            uuid.UUID               `json:"game_id"`
	Season            int                     `json:"season"`
	Week              int                     `json:"week"`
	Differentials     models.EfficiencyVector `json:"differentials"`
	PointDifferential float64                 `json:"point_differential"`
	HomeGame          bool                    `json:"home_game"`
}

// Calibrator runs per-metric ordinary least squares against point differentials
type Calibrator struct {
	cfg   config.CalibrationConfig
	log   *logrus.Logger
	audit *logger.AuditLogger
}

// NewCalibrator creates a calibrator with the given thresholds
func NewCalibrator(cfg config.CalibrationConfig, log *logrus.Logger) *Calibrator {
	return &Calibrator{
		cfg:   cfg,
		log:   log,
		audit: logger.NewAuditLogger(log),
	}
}

// BuildSamples converts a season's completed games and rated profiles into
// calibration samples. Games involving an unrated team are skipped.
func BuildSamples(
	dataset *models.SeasonDataset,
	profiles map[uuid.UUID]*models.TeamEfficiencyProfile,
) []CalibrationSample {
	games := dataset.CompletedGames()
	samples := make([]CalibrationSample, 0, len(games))
	for _, g := range games {
		home, away := profiles[g.HomeTeamID], profiles[g.AwayTeamID]
		if home == nil || away == nil {
			continue
		}
		var diff models.EfficiencyVector
		for _, m := range models.AllMetrics {
			diff.Set(m, home.Efficiency.Get(m)-away.Efficiency.Get(m))
		}
		samples = append(samples, CalibrationSample{
			GameID:            g.ID,
			Season:            g.Season,
			Week:              g.Week,
			Differentials:     diff,
			PointDifferential: g.PointDifferential(),
			HomeGame:          !g.NeutralSite,
		})
	}
	return samples
}

// AnalyzeMetricImpact regresses one metric's differentials against point
// differentials. Returns ErrInsufficientData below the configured minimum and
// ErrNoVariance when the predictor is constant.
func (c *Calibrator) AnalyzeMetricImpact(metric models.Metric, samples []CalibrationSample) (*models.RegressionAnalysisResult, error) {
	n := len(samples)
	if n < c.cfg.MinDataPoints {
		return nil, fmt.Errorf("%w: metric %s has %d samples, need %d",
			models.ErrInsufficientData, metric, n, c.cfg.MinDataPoints)
	}

	xs := make([]float64, n)
	ys := make([]float64, n)
	for i, s := range samples {
		xs[i] = s.Differentials.Get(metric)
		ys[i] = s.PointDifferential
	}

	if stat.Variance(xs, nil) == 0 {
		return nil, fmt.Errorf("%w: metric %s", models.ErrNoVariance, metric)
	}

	alpha, beta := stat.LinearRegression(xs, ys, nil, false)
	rsq := stat.RSquared(xs, ys, nil, alpha, beta)

	// Slope standard error from the residual variance.
	meanX := stat.Mean(xs, nil)
	var sse, sxx float64
	for i := range xs {
		resid := ys[i] - (alpha + beta*xs[i])
		sse += resid * resid
		dx := xs[i] - meanX
		sxx += dx * dx
	}
	dof := float64(n - 2)
	stdErr := math.Sqrt(sse/dof) / math.Sqrt(sxx)

	pValue := slopePValue(rsq, n)
	tCrit := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: dof}.Quantile(0.975)
	ci := [2]float64{beta - tCrit*stdErr, beta + tCrit*stdErr}

	result := &models.RegressionAnalysisResult{
		Metric:             metric,
		Coefficient:        beta,
		Intercept:          alpha,
		RSquared:           rsq,
		PValue:             pValue,
		StandardError:      stdErr,
		ConfidenceInterval: ci,
		SampleSize:         n,
		RSquaredThreshold:  c.cfg.RSquaredThreshold,
		PValueThreshold:    c.cfg.PValueThreshold,
		AnalyzedAt:         time.Now(),
	}

	c.log.WithFields(logrus.Fields{
		"metric":      metric,
		"coefficient": beta,
		"r_squared":   rsq,
		"p_value":     pValue,
		"samples":     n,
		"significant": result.IsStatisticallySignificant(),
	}).Debug("Metric regression complete")

	return result, nil
}

// slopePValue derives the two-sided p-value for a simple regression slope from
// its F statistic (equivalent to the squared t statistic with 1 numerator dof).
func slopePValue(rsq float64, n int) float64 {
	dof := float64(n - 2)
	if rsq >= 1 {
		return 0
	}
	f := (rsq / (1 - rsq)) * dof
	dist := distuv.F{D1: 1, D2: dof}
	p := 1 - dist.CDF(f)
	if p < 0 {
		return 0
	}
	return p
}

// AnalyzeMetricCorrelation computes the plain Pearson correlation for one
// metric, used by audits as a cross-check on the regression fit.
func (c *Calibrator) AnalyzeMetricCorrelation(metric models.Metric, samples []CalibrationSample) *models.MetricCorrelationAnalysis {
	xs := make([]float64, len(samples))
	ys := make([]float64, len(samples))
	for i, s := range samples {
		xs[i] = s.Differentials.Get(metric)
		ys[i] = s.PointDifferential
	}
	corr := stat.Correlation(xs, ys, nil)
	return &models.MetricCorrelationAnalysis{
		Metric:      metric,
		Correlation: corr,
		RSquared:    corr * corr,
		SampleSize:  len(samples),
		MeanX:       stat.Mean(xs, nil),
		MeanY:       stat.Mean(ys, nil),
		AnalyzedAt:  time.Now(),
	}
}

// PerformRegressionAnalysis runs every metric's regression and assembles the
// season summary. Metrics that fail individually (no variance) are skipped
// with a warning; too little data overall fails the run.
func (c *Calibrator) PerformRegressionAnalysis(season int, samples []CalibrationSample) (*models.RegressionModelSummary, error) {
	if len(samples) < c.cfg.MinDataPoints {
		return nil, fmt.Errorf("%w: season %d has %d samples, need %d",
			models.ErrInsufficientData, season, len(samples), c.cfg.MinDataPoints)
	}

	summary := &models.RegressionModelSummary{
		Season:          season,
		TotalSamples:    len(samples),
		ConfidenceLevel: models.AnalysisConfidence(len(samples)),
		AnalyzedAt:      time.Now(),
	}

	for _, m := range models.AllMetrics {
		result, err := c.AnalyzeMetricImpact(m, samples)
		if err != nil {
			c.log.WithError(err).WithField("metric", m).Warn("Skipping metric in calibration run")
			continue
		}
		summary.Results = append(summary.Results, result)
	}

	if len(summary.Results) == 0 {
		return nil, fmt.Errorf("%w: no metric produced a usable regression", models.ErrInsufficientData)
	}

	c.log.WithFields(logrus.Fields{
		"season":     season,
		"samples":    len(samples),
		"metrics":    len(summary.Results),
		"confidence": summary.ConfidenceLevel,
	}).Info("Regression analysis complete")

	return summary, nil
}
