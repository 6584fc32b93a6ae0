package calibration

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func testCalibrationConfig() config.CalibrationConfig {
	return config.CalibrationConfig{
		MinDataPoints:     30,
		RSquaredThreshold: 0.10,
		PValueThreshold:   0.05,
		MaxWeight:         0.5,
		FloorWeight:       0.05,
	}
}

func newTestCalibrator() *Calibrator {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewCalibrator(testCalibrationConfig(), log)
}

// linearSamples builds n samples where the point differential is
// slope*x plus a small deterministic wobble on one metric.
func linearSamples(n int, metric models.Metric, slope float64) []CalibrationSample {
	samples := make([]CalibrationSample, n)
	for i := 0; i < n; i++ {
		x := float64(i) - float64(n)/2
		noise := 0.5
		if i%2 == 0 {
			noise = -0.5
		}
		var diff models.EfficiencyVector
		diff.Set(metric, x)
		samples[i] = CalibrationSample{
			GameID:            uuid.New(),
			Season:            2024,
			Week:              i/8 + 1,
			Differentials:     diff,
			PointDifferential: slope*x + noise,
		}
	}
	return samples
}

func TestAnalyzeMetricImpactRecoversKnownSlope(t *testing.T) {
	c := newTestCalibrator()
	samples := linearSamples(40, models.MetricOffenseScoring, 2.0)

	result, err := c.AnalyzeMetricImpact(models.MetricOffenseScoring, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(result.Coefficient-2.0) > 0.1 {
		t.Fatalf("expected slope near 2.0, got %f", result.Coefficient)
	}
	if result.RSquared < 0.9 {
		t.Fatalf("expected near-perfect fit, got R^2 %f", result.RSquared)
	}
	if !result.IsStatisticallySignificant() {
		t.Fatalf("strong linear relationship must be significant (p=%f)", result.PValue)
	}
	if !result.ContainsCoefficient() {
		t.Fatalf("confidence interval %v must bracket coefficient %f", result.ConfidenceInterval, result.Coefficient)
	}
	if result.ContainsZero() {
		t.Fatalf("interval %v should exclude zero for a strong effect", result.ConfidenceInterval)
	}
	if result.SampleSize != 40 {
		t.Fatalf("expected sample size 40, got %d", result.SampleSize)
	}
}

func TestAnalyzeMetricImpactInsufficientData(t *testing.T) {
	c := newTestCalibrator()
	samples := linearSamples(10, models.MetricOffenseScoring, 2.0)

	_, err := c.AnalyzeMetricImpact(models.MetricOffenseScoring, samples)
	if !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestAnalyzeMetricImpactNoVariance(t *testing.T) {
	c := newTestCalibrator()
	samples := linearSamples(40, models.MetricOffenseScoring, 2.0)

	// The rushing differential is identically zero in these samples.
	_, err := c.AnalyzeMetricImpact(models.MetricOffenseRushing, samples)
	if !errors.Is(err, models.ErrNoVariance) {
		t.Fatalf("expected ErrNoVariance, got %v", err)
	}
}

func TestPerformRegressionAnalysisSkipsDeadMetrics(t *testing.T) {
	c := newTestCalibrator()
	samples := linearSamples(40, models.MetricOffenseScoring, 2.0)

	summary, err := c.PerformRegressionAnalysis(2024, samples)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Only the one metric varies; the rest are skipped, not fatal.
	if len(summary.Results) != 1 {
		t.Fatalf("expected 1 usable metric, got %d", len(summary.Results))
	}
	if summary.TotalSamples != 40 {
		t.Fatalf("expected 40 samples recorded, got %d", summary.TotalSamples)
	}
	if summary.ConfidenceLevel != models.AnalysisConfidence(40) {
		t.Fatalf("confidence level must follow the sample-size grade")
	}
}

func TestCalculateOptimalWeightsNormalizes(t *testing.T) {
	c := newTestCalibrator()
	now := time.Now()
	summary := &models.RegressionModelSummary{
		Season: 2024,
		Results: []*models.RegressionAnalysisResult{
			{Metric: models.MetricOffenseScoring, RSquared: 0.8, PValue: 0.001, RSquaredThreshold: 0.10, PValueThreshold: 0.05, AnalyzedAt: now},
			{Metric: models.MetricDefenseScoring, RSquared: 0.4, PValue: 0.01, RSquaredThreshold: 0.10, PValueThreshold: 0.05, AnalyzedAt: now},
			{Metric: models.MetricFieldGoal, RSquared: 0.02, PValue: 0.6, RSquaredThreshold: 0.10, PValueThreshold: 0.05, AnalyzedAt: now},
		},
	}

	weights := c.CalculateOptimalWeights(summary)

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-1.0) > 1e-6 {
		t.Fatalf("weights must normalize to 1.0, got %f", sum)
	}
	// 0.8 is capped to 0.5 pre-normalization, so scoring and defense tie at
	// 0.5 and 0.4 shares before scaling.
	if weights[models.MetricOffenseScoring] <= weights[models.MetricDefenseScoring] {
		t.Fatalf("stronger metric must earn more weight: %f vs %f",
			weights[models.MetricOffenseScoring], weights[models.MetricDefenseScoring])
	}
	if weights[models.MetricFieldGoal] <= 0 {
		t.Fatalf("insignificant metric keeps a floor share, got %f", weights[models.MetricFieldGoal])
	}
}

func TestCalculateOptimalWeightsEmptySummaryFallsBack(t *testing.T) {
	c := newTestCalibrator()
	weights := c.CalculateOptimalWeights(nil)

	defaults := models.DefaultWeights()
	if len(weights) != len(defaults) {
		t.Fatalf("expected default weights, got %d entries", len(weights))
	}
	if weights[models.MetricOffenseScoring] != defaults[models.MetricOffenseScoring] {
		t.Fatalf("expected default scoring weight")
	}
}

func TestApplyCalibratedWeightsRecordsHistory(t *testing.T) {
	c := newTestCalibrator()
	ws := models.NewWeightSet(2024)
	now := time.Now()
	summary := &models.RegressionModelSummary{
		Season: 2024,
		Results: []*models.RegressionAnalysisResult{
			{Metric: models.MetricOffenseScoring, RSquared: 0.5, PValue: 0.001, RSquaredThreshold: 0.10, PValueThreshold: 0.05, AnalyzedAt: now},
			{Metric: models.MetricDefenseScoring, RSquared: 0.3, PValue: 0.01, RSquaredThreshold: 0.10, PValueThreshold: 0.05, AnalyzedAt: now},
		},
	}

	if err := c.ApplyCalibratedWeights(ws, summary, "calibration-run"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ws.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(ws.History))
	}
	if math.Abs(ws.Sum()-1.0) > 1e-6 {
		t.Fatalf("updated weights must sum to 1.0, got %f", ws.Sum())
	}
}

func TestBuildSamplesSkipsUnratedTeams(t *testing.T) {
	dataset := &models.SeasonDataset{
		Season:    2024,
		Complete:  true,
		BoxScores: make(map[uuid.UUID]map[uuid.UUID]*models.BoxScoreStats),
		Teams:     make(map[uuid.UUID]*models.Team),
	}
	rated, unrated := uuid.New(), uuid.New()
	g := &models.GameRecord{
		ID: uuid.New(), Season: 2024, Week: 1,
		HomeTeamID: rated, AwayTeamID: unrated,
		HomeScore: 28, AwayScore: 14, Completed: true,
	}
	dataset.Games = append(dataset.Games, g)
	dataset.BoxScores[g.ID] = map[uuid.UUID]*models.BoxScoreStats{
		rated:   {GameID: g.ID, TeamID: rated, Points: 28},
		unrated: {GameID: g.ID, TeamID: unrated, Points: 14},
	}

	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{
		rated: models.NewNeutralProfile(rated, 2024),
	}

	if samples := BuildSamples(dataset, profiles); len(samples) != 0 {
		t.Fatalf("games against unrated teams must be excluded, got %d samples", len(samples))
	}
}
