package prediction

import (
	"math"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/efficiency"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func testPredictionConfig() config.PredictionConfig {
	return config.PredictionConfig{
		ScoringBlend:       0.95,
		TurnoverBlend:      0.03,
		FieldGoalBlend:     0.02,
		HomeFieldAdvantage: 2.5,
		MarginSigma:        13.5,
		ScoringCap:         35.0,
		YardageCap:         200.0,
	}
}

func newTestComposer() *Composer {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewComposer(testPredictionConfig(), log)
}

func ratedProfile(season, games int, offScoring, defScoring float64) *models.TeamEfficiencyProfile {
	p := models.NewNeutralProfile(uuid.New(), season)
	p.GamesPlayed = games
	p.ConfidenceLevel = models.ConfidenceFromGames(games)
	p.ConvergenceScore = 0.95
	p.Efficiency.OffenseScoring = offScoring
	p.Efficiency.DefenseScoring = defScoring
	return p
}

func typicalBaseline() efficiency.OpponentBaseline {
	return efficiency.OpponentBaseline{
		Allowed: models.StatLine{
			TotalYards:      380,
			PassingYards:    240,
			RushingYards:    140,
			Points:          24,
			TurnoverMargin:  0,
			FieldGoalPoints: 4.5,
		},
		Games: 10,
	}
}

func TestCategoryFormulaAgainstOpponentBaseline(t *testing.T) {
	c := newTestComposer()

	// Home offense +7 scoring, away defense +3 scoring: against a defense
	// that typically allows 24, the home side projects 24 + 7 - 3 = 28.
	home := ratedProfile(2024, 10, 7, 0)
	away := ratedProfile(2024, 10, 0, 3)

	result, err := c.CalculateMatchupAnalysis(MatchupInput{
		Season: 2024, NeutralSite: true,
		HomeProfile: home, AwayProfile: away,
		HomeBaseline: typicalBaseline(), AwayBaseline: typicalBaseline(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var scoring *models.CategoryPrediction
	for i := range result.Home.Categories {
		if result.Home.Categories[i].Metric == models.MetricOffenseScoring {
			scoring = &result.Home.Categories[i]
		}
	}
	if scoring == nil {
		t.Fatalf("scoring category missing")
	}
	if math.Abs(scoring.PredictedValue-28) > 1e-9 {
		t.Fatalf("expected 24 + 7 - 3 = 28, got %f", scoring.PredictedValue)
	}
	if !scoring.IsValid {
		t.Fatalf("in-bounds prediction must be valid")
	}
}

func TestHomeFieldAdvantageOnlyOffNeutralSite(t *testing.T) {
	c := newTestComposer()
	home := ratedProfile(2024, 10, 0, 0)
	away := ratedProfile(2024, 10, 0, 0)

	in := MatchupInput{
		Season:      2024,
		HomeProfile: home, AwayProfile: away,
		HomeBaseline: typicalBaseline(), AwayBaseline: typicalBaseline(),
	}

	hosted, err := c.CalculateMatchupAnalysis(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.NeutralSite = true
	neutral, err := c.CalculateMatchupAnalysis(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if math.Abs(hosted.PredictedMargin-2.5) > 1e-9 {
		t.Fatalf("identical teams at home should project +2.5, got %f", hosted.PredictedMargin)
	}
	if math.Abs(neutral.PredictedMargin) > 1e-9 {
		t.Fatalf("identical teams on a neutral field should project 0, got %f", neutral.PredictedMargin)
	}
	if hosted.HomeWinProbability <= 0.5 {
		t.Fatalf("home edge must lift win probability above 0.5, got %f", hosted.HomeWinProbability)
	}
	if math.Abs(neutral.HomeWinProbability-0.5) > 1e-9 {
		t.Fatalf("even neutral matchup must sit at 0.5, got %f", neutral.HomeWinProbability)
	}
}

func TestWinProbabilityMonotoneInMargin(t *testing.T) {
	c := newTestComposer()
	away := ratedProfile(2024, 10, 0, 0)

	var last float64
	for i, edge := range []float64{0, 7, 14, 21} {
		home := ratedProfile(2024, 10, edge, 0)
		result, err := c.CalculateMatchupAnalysis(MatchupInput{
			Season: 2024, NeutralSite: true,
			HomeProfile: home, AwayProfile: away,
			HomeBaseline: typicalBaseline(), AwayBaseline: typicalBaseline(),
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if i > 0 && result.HomeWinProbability <= last {
			t.Fatalf("win probability must grow with the margin: %f then %f", last, result.HomeWinProbability)
		}
		if result.HomeWinProbability <= 0 || result.HomeWinProbability >= 1 {
			t.Fatalf("win probability out of range: %f", result.HomeWinProbability)
		}
		last = result.HomeWinProbability
	}
}

func TestMarginIntervalBracketsMargin(t *testing.T) {
	c := newTestComposer()
	home := ratedProfile(2024, 10, 10, 0)
	away := ratedProfile(2024, 10, 0, 0)

	result, err := c.CalculateMatchupAnalysis(MatchupInput{
		Season: 2024, NeutralSite: true,
		HomeProfile: home, AwayProfile: away,
		HomeBaseline: typicalBaseline(), AwayBaseline: typicalBaseline(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	lo, hi := result.MarginInterval[0], result.MarginInterval[1]
	if !(lo < result.PredictedMargin && result.PredictedMargin < hi) {
		t.Fatalf("interval [%f, %f] must bracket margin %f", lo, hi, result.PredictedMargin)
	}
}

func TestConfidenceTakesWeakerTeam(t *testing.T) {
	c := newTestComposer()
	strong := ratedProfile(2024, 10, 0, 0)
	weak := ratedProfile(2024, 2, 0, 0)
	weak.ConvergenceScore = 0.3

	result, err := c.CalculateMatchupAnalysis(MatchupInput{
		Season: 2024, NeutralSite: true,
		HomeProfile: strong, AwayProfile: weak,
		HomeBaseline: typicalBaseline(), AwayBaseline: typicalBaseline(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ConfidenceLevel != models.ConfidenceLow {
		t.Fatalf("a 2-game opponent must drag confidence to low, got %s", result.ConfidenceLevel)
	}
	if result.ConfidenceScore >= 0.6 {
		t.Fatalf("confidence score should be below the medium bucket, got %f", result.ConfidenceScore)
	}
}

func TestMissingProfileReturnsError(t *testing.T) {
	c := newTestComposer()
	home := ratedProfile(2024, 10, 0, 0)

	_, err := c.CalculateMatchupAnalysis(MatchupInput{
		Season: 2024, HomeProfile: home, AwayProfile: nil,
	})
	if err == nil {
		t.Fatalf("expected error for unrated team")
	}
}

func TestWeightedEdgeSurfacedInBreakdown(t *testing.T) {
	c := newTestComposer()
	home := ratedProfile(2024, 10, 10, 0)
	away := ratedProfile(2024, 10, 0, 0)
	ws := models.NewWeightSet(2024)

	result, err := c.CalculateMatchupAnalysis(MatchupInput{
		Season: 2024, NeutralSite: true,
		HomeProfile: home, AwayProfile: away,
		HomeBaseline: typicalBaseline(), AwayBaseline: typicalBaseline(),
		Weights: ws,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	edge := result.CalculationBreakdown["weighted_edge"]
	want := ws.Get(models.MetricOffenseScoring) * 10
	if math.Abs(edge-want) > 1e-9 {
		t.Fatalf("expected weighted edge %f, got %f", want, edge)
	}
}

func TestBoundsClampExtremeYardage(t *testing.T) {
	c := newTestComposer()

	// 800 yards of offensive efficiency against a 400-yard baseline is not a
	// football score; the prediction clamps to baseline + 200.
	home := ratedProfile(2024, 10, 0, 0)
	home.Efficiency.OffenseTotal = 800
	away := ratedProfile(2024, 10, 0, 0)
	base := typicalBaseline()
	base.Allowed.TotalYards = 400

	result, err := c.CalculateMatchupAnalysis(MatchupInput{
		Season: 2024, NeutralSite: true,
		HomeProfile: home, AwayProfile: away,
		HomeBaseline: typicalBaseline(), AwayBaseline: base,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var total *models.CategoryPrediction
	for i := range result.Home.Categories {
		if result.Home.Categories[i].Metric == models.MetricOffenseTotal {
			total = &result.Home.Categories[i]
		}
	}
	if total == nil {
		t.Fatalf("total yards category missing")
	}
	if total.PredictedValue != 600 {
		t.Fatalf("expected clamp to 600, got %f", total.PredictedValue)
	}
	if total.IsValid {
		t.Fatalf("clamped prediction must be flagged invalid")
	}
	if !strings.Contains(total.AdjustmentReason, "exceeded reasonable bounds") {
		t.Fatalf("reason must explain the clamp, got %q", total.AdjustmentReason)
	}
	if !result.HasAdjustments() {
		t.Fatalf("result must report adjustments")
	}
}

func TestValidateCategoryIdempotent(t *testing.T) {
	c := newTestComposer()
	cp := models.CategoryPrediction{
		Metric:           models.MetricOffenseScoring,
		OpponentBaseline: 24,
		PredictedValue:   90,
		IsValid:          true,
	}

	once := c.validateCategory(cp)
	twice := c.validateCategory(once)
	if once.PredictedValue != twice.PredictedValue {
		t.Fatalf("second validation moved the value: %f vs %f", once.PredictedValue, twice.PredictedValue)
	}
	if once.PredictedValue != 24+35 {
		t.Fatalf("expected clamp to 59, got %f", once.PredictedValue)
	}
}

func TestValidateCategoryFloorsNegativeScoring(t *testing.T) {
	c := newTestComposer()
	cp := models.CategoryPrediction{
		Metric:           models.MetricOffenseScoring,
		OpponentBaseline: 10,
		PredictedValue:   -6,
		IsValid:          true,
	}

	out := c.validateCategory(cp)
	if out.PredictedValue != 0 {
		t.Fatalf("negative points must floor at zero, got %f", out.PredictedValue)
	}
	if out.IsValid {
		t.Fatalf("floored prediction must be flagged")
	}
}
