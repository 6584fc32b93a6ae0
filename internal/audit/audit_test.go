package audit

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func testAuditConfig() config.AuditConfig {
	return config.AuditConfig{
		SampleSize:             100,
		CalibrationBins:        10,
		MinBiasSamples:         10,
		MinSamplesPerPredictor: 15,
	}
}

func newTestAuditor() *Auditor {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewAuditor(testAuditConfig(), log)
}

// perfectOutcomes builds n outcomes where confident predictions are always
// right: p alternates 0.9 (home wins) and 0.1 (home loses).
func perfectOutcomes(n int) []PredictionOutcome {
	out := make([]PredictionOutcome, n)
	for i := range out {
		homeWin := i%2 == 0
		p := 0.9
		margin := 10.0
		if !homeWin {
			p = 0.1
			margin = -10.0
		}
		out[i] = PredictionOutcome{
			GameID:             uuid.New(),
			Season:             2024,
			HomeWinProbability: p,
			PredictedMargin:    margin,
			ActualMargin:       margin,
			HomeWon:            homeWin,
			ConfidenceLevel:    models.ConfidenceHigh,
		}
	}
	return out
}

func TestRunStateMachine(t *testing.T) {
	run := NewRun(2024)
	if run.State != RunNotStarted {
		t.Fatalf("fresh run must be not_started, got %s", run.State)
	}
	if err := run.Complete(&Report{}); err == nil {
		t.Fatalf("completing an unstarted run must fail")
	}
	if err := run.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := run.Start(); err == nil {
		t.Fatalf("double start must fail")
	}
	if err := run.Complete(&Report{Season: 2024}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.State != RunCompleted {
		t.Fatalf("expected completed, got %s", run.State)
	}
	if err := run.Fail(errors.New("late")); err == nil {
		t.Fatalf("failing a completed run must be rejected")
	}
}

func TestRunFailPath(t *testing.T) {
	run := NewRun(2024)
	if err := run.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := run.Fail(errors.New("upstream data missing")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.State != RunFailed || run.Error == "" {
		t.Fatalf("failed run must carry its error, got state=%s error=%q", run.State, run.Error)
	}
}

func TestEvaluateAccuracyPerfectPredictions(t *testing.T) {
	a := newTestAuditor()
	report, err := a.EvaluateAccuracy(perfectOutcomes(60))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.Accuracy != 1.0 {
		t.Fatalf("expected perfect accuracy, got %f", report.Accuracy)
	}
	if report.Precision != 1.0 || report.Recall != 1.0 || report.F1 != 1.0 {
		t.Fatalf("expected perfect precision/recall/F1, got %f/%f/%f", report.Precision, report.Recall, report.F1)
	}
	if report.ROCAUC != 1.0 {
		t.Fatalf("perfectly separated scores must give AUC 1.0, got %f", report.ROCAUC)
	}
	// Brier for always-right 0.9/0.1 predictions is 0.01.
	if math.Abs(report.BrierScore-0.01) > 1e-9 {
		t.Fatalf("expected Brier 0.01, got %f", report.BrierScore)
	}
	if report.MarginMAE != 0 || report.MarginRMSE != 0 {
		t.Fatalf("margins matched exactly, got MAE %f RMSE %f", report.MarginMAE, report.MarginRMSE)
	}
}

func TestEvaluateAccuracyEmptyOutcomes(t *testing.T) {
	a := newTestAuditor()
	if _, err := a.EvaluateAccuracy(nil); !errors.Is(err, models.ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestCalibrationBinsWellCalibrated(t *testing.T) {
	a := newTestAuditor()

	// 100 games at p=0.75 with exactly 75 home wins: the 0.7-0.8 bin should
	// show near-zero calibration gap.
	outcomes := make([]PredictionOutcome, 100)
	for i := range outcomes {
		outcomes[i] = PredictionOutcome{
			HomeWinProbability: 0.75,
			HomeWon:            i < 75,
			ConfidenceLevel:    models.ConfidenceHigh,
		}
	}

	bins, ece, mce := a.calibrationBins(outcomes)
	if len(bins) != 10 {
		t.Fatalf("expected 10 bins, got %d", len(bins))
	}
	if bins[7].Count != 100 {
		t.Fatalf("all outcomes belong in the 0.7-0.8 bin, got %d", bins[7].Count)
	}
	if ece > 1e-9 || mce > 1e-9 {
		t.Fatalf("well-calibrated set must have ~0 ECE/MCE, got %f/%f", ece, mce)
	}
}

func TestStratifiedSampleKeepsGameShapes(t *testing.T) {
	a := newTestAuditor()

	outcomes := make([]PredictionOutcome, 0, 400)
	// Dominant shape: moderate-margin, high-scoring home wins.
	for i := 0; i < 300; i++ {
		outcomes = append(outcomes, PredictionOutcome{ActualMargin: 10, ActualTotal: 62, HomeWon: true})
	}
	// Minority shapes an unstratified draw could squeeze out.
	for i := 0; i < 80; i++ {
		outcomes = append(outcomes, PredictionOutcome{ActualMargin: 28, ActualTotal: 73, HomeWon: true})
	}
	for i := 0; i < 20; i++ {
		outcomes = append(outcomes, PredictionOutcome{ActualMargin: -3, ActualTotal: 30, HomeWon: false})
	}

	sample := a.stratifiedSample(outcomes)
	if len(sample) > a.cfg.SampleSize+3 {
		t.Fatalf("sample size %d exceeds configured budget %d", len(sample), a.cfg.SampleSize)
	}

	counts := make(map[string]int)
	for _, o := range sample {
		counts[sampleStratum(o)]++
	}
	if counts["blowout/high_scoring/home_win"] == 0 {
		t.Fatalf("blowouts squeezed out of the sample")
	}
	if counts["close/low_scoring/away_win"] == 0 {
		t.Fatalf("close low-scoring away wins squeezed out of the sample")
	}
	share := float64(counts["moderate/high_scoring/home_win"]) / float64(len(sample))
	if math.Abs(share-0.75) > 0.05 {
		t.Fatalf("dominant shape share drifted: want ~0.75, got %f", share)
	}
}

func TestDetectBiasFlagsOverconfidentHomePricing(t *testing.T) {
	a := newTestAuditor()

	// Model says 0.8 at home but homes only win half the time.
	outcomes := make([]PredictionOutcome, 40)
	for i := range outcomes {
		outcomes[i] = PredictionOutcome{
			HomeWinProbability: 0.8,
			PredictedMargin:    7,
			ActualMargin:       0,
			HomeWon:            i%2 == 0,
			ConfidenceLevel:    models.ConfidenceHigh,
		}
	}

	report := a.DetectBias(outcomes)
	if !report.Biased() {
		t.Fatalf("expected a bias flag")
	}

	var home *BiasFinding
	for i := range report.Findings {
		if report.Findings[i].Name == "home_team" {
			home = &report.Findings[i]
		}
	}
	if home == nil || !home.Biased {
		t.Fatalf("home detector must flag a 0.3 probability gap")
	}
	if math.Abs(home.Magnitude-0.3) > 1e-9 {
		t.Fatalf("expected gap 0.3, got %f", home.Magnitude)
	}
}

func TestDetectBiasFlagsHighScoringTotals(t *testing.T) {
	a := newTestAuditor()

	// Totals under-called by 10 in shootouts, near-perfect in low-scoring
	// games; win pricing and margins are clean so only totals can flag.
	outcomes := make([]PredictionOutcome, 40)
	for i := range outcomes {
		homeWin := i%2 == 0
		margin := 10.0
		if !homeWin {
			margin = -10.0
		}
		o := PredictionOutcome{
			HomeWinProbability: 0.5,
			PredictedMargin:    margin,
			ActualMargin:       margin,
			HomeWon:            homeWin,
		}
		if i < 20 {
			o.ActualTotal = 70
			o.PredictedTotal = 60
		} else {
			o.ActualTotal = 30
			o.PredictedTotal = 31
		}
		outcomes[i] = o
	}

	report := a.DetectBias(outcomes)
	findings := make(map[string]BiasFinding)
	for _, f := range report.Findings {
		findings[f.Name] = f
	}

	high := findings["total_high_scoring"]
	if !high.Biased || math.Abs(high.Magnitude+10) > 1e-9 {
		t.Fatalf("expected high-scoring totals flagged at -10, got %+v", high)
	}
	if findings["total_low_scoring"].Biased {
		t.Fatalf("a 1-point lean in low-scoring games must not flag")
	}
}

func TestDetectBiasRespectsMinimumSamples(t *testing.T) {
	a := newTestAuditor()

	// Same lean but only 4 games: report, never flag.
	outcomes := make([]PredictionOutcome, 4)
	for i := range outcomes {
		outcomes[i] = PredictionOutcome{HomeWinProbability: 0.9, HomeWon: false}
	}

	report := a.DetectBias(outcomes)
	if report.Biased() {
		t.Fatalf("thin samples must not trigger bias flags")
	}
}

func TestAuditRegressionCatchesInconsistentResult(t *testing.T) {
	a := newTestAuditor()
	now := time.Now()
	summary := &models.RegressionModelSummary{
		Season: 2024,
		Results: []*models.RegressionAnalysisResult{
			{
				// Interval excludes its own coefficient and the sample is thin.
				Metric: models.MetricOffenseScoring, Coefficient: 2.0,
				ConfidenceInterval: [2]float64{3.0, 4.0},
				RSquared:           0.5, PValue: 0.01,
				RSquaredThreshold: 0.10, PValueThreshold: 0.05,
				SampleSize: 5, AnalyzedAt: now,
			},
		},
	}

	issues := a.AuditRegression(summary, nil)

	codes := make(map[string]bool)
	for _, i := range issues {
		codes[i.Code] = true
	}
	if !codes["ci_excludes_coefficient"] {
		t.Fatalf("expected ci_excludes_coefficient, got %v", issues)
	}
	if !codes["thin_sample"] {
		t.Fatalf("expected thin_sample, got %v", issues)
	}
}

func TestExecuteDrivesStateMachine(t *testing.T) {
	a := newTestAuditor()
	run := NewRun(2024)

	err := a.Execute(context.Background(), run, AuditInput{
		Season:   2024,
		Outcomes: perfectOutcomes(30),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if run.State != RunCompleted {
		t.Fatalf("expected completed run, got %s", run.State)
	}
	if run.Report == nil || run.Report.Accuracy == nil {
		t.Fatalf("completed run must carry an accuracy report")
	}
	if run.Report.Bias == nil {
		t.Fatalf("completed run must carry a bias report")
	}
}

func TestExecuteCancelledContextFailsRun(t *testing.T) {
	a := newTestAuditor()
	run := NewRun(2024)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Execute(ctx, run, AuditInput{Season: 2024}); err == nil {
		t.Fatalf("expected context error")
	}
	if run.State != RunFailed {
		t.Fatalf("expected failed run, got %s", run.State)
	}
}

func TestBaselineBrier(t *testing.T) {
	outcomes := perfectOutcomes(40) // half home wins
	if got := BaselineBrier(outcomes); math.Abs(got-0.25) > 1e-9 {
		t.Fatalf("50%% base rate baseline is 0.25, got %f", got)
	}
}
