// Package prediction composes opponent-relative matchup predictions from
// efficiency profiles, opponent baselines, and calibrated metric weights.
package prediction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/efficiency"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// Approximate point value of one turnover, used when folding the predicted
// turnover margin into the expected score.
const pointsPerTurnover = 4.0

// predictedCategories are the offensive-side categories composed per team
var predictedCategories = []models.Metric{
	models.MetricOffenseTotal,
	models.MetricOffensePassing,
	models.MetricOffenseRushing,
	models.MetricOffenseScoring,
	models.MetricTurnoverMargin,
	models.MetricFieldGoal,
}

// MatchupInput carries everything the composer needs for one game
type MatchupInput struct {
	GameID       uuid.UUID
	Season       int
	NeutralSite  bool
	HomeProfile  *models.TeamEfficiencyProfile
	AwayProfile  *models.TeamEfficiencyProfile
	HomeBaseline efficiency.OpponentBaseline
	AwayBaseline efficiency.OpponentBaseline
	Weights      *models.WeightSet
}

// Composer builds matchup predictions
type Composer struct {
	cfg config.PredictionConfig
	log *logrus.Logger
}

// NewComposer creates a prediction composer
func NewComposer(cfg config.PredictionConfig, log *logrus.Logger) *Composer {
	return &Composer{cfg: cfg, log: log}
}

// counterpart maps an offensive category onto the opposing efficiency that
// resists it. Turnovers and field goals oppose themselves.
func counterpart(m models.Metric) models.Metric {
	switch m {
	case models.MetricOffenseTotal:
		return models.MetricDefenseTotal
	case models.MetricOffensePassing:
		return models.MetricDefensePassing
	case models.MetricOffenseRushing:
		return models.MetricDefenseRushing
	case models.MetricOffenseScoring:
		return models.MetricDefenseScoring
	}
	return m
}

// baselineValue picks the metric's column out of an opponent's allowed line
func baselineValue(line models.StatLine, m models.Metric) float64 {
	switch m {
	case models.MetricOffenseTotal:
		return line.TotalYards
	case models.MetricOffensePassing:
		return line.PassingYards
	case models.MetricOffenseRushing:
		return line.RushingYards
	case models.MetricOffenseScoring:
		return line.Points
	case models.MetricTurnoverMargin:
		return line.TurnoverMargin
	case models.MetricFieldGoal:
		return line.FieldGoalPoints
	}
	return 0
}

// CalculateMatchupAnalysis composes the full prediction for one matchup.
// Every category prediction is what the team is expected to do against THIS
// opponent: the opponent's typical allowance shifted by both efficiencies.
func (c *Composer) CalculateMatchupAnalysis(in MatchupInput) (*models.PredictionResult, error) {
	if in.HomeProfile == nil || in.AwayProfile == nil {
		return nil, fmt.Errorf("%w: both teams need efficiency profiles", models.ErrTeamNotRated)
	}

	home := c.composeSide(in.HomeProfile, in.AwayProfile, in.AwayBaseline)
	away := c.composeSide(in.AwayProfile, in.HomeProfile, in.HomeBaseline)

	homeScore := c.expectedScore(home)
	awayScore := c.expectedScore(away)
	if !in.NeutralSite {
		homeScore += c.cfg.HomeFieldAdvantage
	}
	home.ExpectedScore = homeScore
	away.ExpectedScore = awayScore

	margin := homeScore - awayScore
	dist := distuv.Normal{Mu: margin, Sigma: c.cfg.MarginSigma}
	winProb := 1 - dist.CDF(0)

	confScore, confLevel := c.confidence(in.HomeProfile, in.AwayProfile)

	result := &models.PredictionResult{
		GameID:             in.GameID,
		Season:             in.Season,
		Home:               home,
		Away:               away,
		HomeWinProbability: winProb,
		PredictedMargin:    margin,
		MarginInterval:     [2]float64{dist.Quantile(0.1), dist.Quantile(0.9)},
		ConfidenceLevel:    confLevel,
		ConfidenceScore:    confScore,
		CalculationBreakdown: map[string]float64{
			"home_expected_score":  homeScore,
			"away_expected_score":  awayScore,
			"home_field_advantage": c.homeFieldApplied(in.NeutralSite),
			"margin_sigma":         c.cfg.MarginSigma,
			"weighted_edge":        weightedEdge(in.Weights, in.HomeProfile, in.AwayProfile),
		},
		PredictedAt: time.Now(),
	}

	c.log.WithFields(logrus.Fields{
		"game_id":          in.GameID,
		"season":           in.Season,
		"predicted_margin": margin,
		"home_win_prob":    winProb,
		"confidence":       confLevel,
		"adjusted":         result.HasAdjustments(),
	}).Debug("Matchup prediction composed")

	return result, nil
}

// composeSide predicts one team's categories against its opponent
func (c *Composer) composeSide(
	team, opp *models.TeamEfficiencyProfile,
	oppBaseline efficiency.OpponentBaseline,
) models.TeamPrediction {
	categories := make([]models.CategoryPrediction, 0, len(predictedCategories))
	for _, m := range predictedCategories {
		base := baselineValue(oppBaseline.Allowed, m)
		teamEff := team.Efficiency.Get(m)
		oppEff := opp.Efficiency.Get(counterpart(m))

		cp := models.CategoryPrediction{
			Metric:           m,
			OpponentBaseline: base,
			PredictedValue:   base + teamEff - oppEff,
			TeamEfficiency:   teamEff,
			OppEfficiency:    oppEff,
			IsValid:          true,
		}
		categories = append(categories, c.validateCategory(cp))
	}
	return models.TeamPrediction{
		TeamID:         team.TeamID,
		Categories:     categories,
		ConfidenceUsed: team.ConfidenceLevel,
	}
}

// expectedScore blends the scoring prediction with turnover and field-goal
// signal at the configured ratios.
func (c *Composer) expectedScore(side models.TeamPrediction) float64 {
	var scoring, turnover, fieldGoal float64
	for _, cp := range side.Categories {
		switch cp.Metric {
		case models.MetricOffenseScoring:
			scoring = cp.PredictedValue
		case models.MetricTurnoverMargin:
			turnover = cp.PredictedValue * pointsPerTurnover
		case models.MetricFieldGoal:
			fieldGoal = cp.PredictedValue
		}
	}
	score := c.cfg.ScoringBlend*scoring + c.cfg.TurnoverBlend*(scoring+turnover) + c.cfg.FieldGoalBlend*(scoring+fieldGoal)
	if score < 0 {
		return 0
	}
	return score
}

// confidence folds both teams' profile confidence and convergence quality into
// one score. A prediction is only as trustworthy as its weaker input.
func (c *Composer) confidence(home, away *models.TeamEfficiencyProfile) (float64, models.ConfidenceLevel) {
	teamScore := home.ConfidenceLevel.Score()
	if s := away.ConfidenceLevel.Score(); s < teamScore {
		teamScore = s
	}
	convScore := home.ConvergenceScore
	if away.ConvergenceScore < convScore {
		convScore = away.ConvergenceScore
	}
	score := (teamScore + convScore) / 2

	switch {
	case score >= 0.8:
		return score, models.ConfidenceHigh
	case score >= 0.6:
		return score, models.ConfidenceMedium
	default:
		return score, models.ConfidenceLow
	}
}

func (c *Composer) homeFieldApplied(neutral bool) float64 {
	if neutral {
		return 0
	}
	return c.cfg.HomeFieldAdvantage
}

// weightedEdge is the calibrated-weight composite of the efficiency
// differentials, surfaced for audits as a second opinion on the margin.
func weightedEdge(ws *models.WeightSet, home, away *models.TeamEfficiencyProfile) float64 {
	if ws == nil {
		return 0
	}
	edge := 0.0
	for _, m := range models.AllMetrics {
		edge += ws.Get(m) * (home.Efficiency.Get(m) - away.Efficiency.Get(m))
	}
	return edge
}
