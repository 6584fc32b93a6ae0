package models

import (
	"time"

	"github.com/google/uuid"
)

// Metric identifies one efficiency category tracked per team
type Metric string

// Efficiency metrics. Offensive values are points/yards produced above what the
// opponent typically allows; defensive values are points/yards prevented below
// what the opponent typically produces. Positive is always good.
const (
	MetricOffenseTotal   Metric = "offense_total_yards"
	MetricOffensePassing Metric = "offense_passing_yards"
	MetricOffenseRushing Metric = "offense_rushing_yards"
	MetricOffenseScoring Metric = "offense_scoring"
	MetricDefenseTotal   Metric = "defense_total_yards"
	MetricDefensePassing Metric = "defense_passing_yards"
	MetricDefenseRushing Metric = "defense_rushing_yards"
	MetricDefenseScoring Metric = "defense_scoring"
	MetricTurnoverMargin Metric = "turnover_margin"
	MetricFieldGoal      Metric = "field_goal"
)

// AllMetrics lists every tracked metric in canonical order
var AllMetrics = []Metric{
	MetricOffenseTotal,
	MetricOffensePassing,
	MetricOffenseRushing,
	MetricOffenseScoring,
	MetricDefenseTotal,
	MetricDefensePassing,
	MetricDefenseRushing,
	MetricDefenseScoring,
	MetricTurnoverMargin,
	MetricFieldGoal,
}

// PrimaryOffensiveMetrics are the four metrics the engine's convergence check
// tracks between iterations.
var PrimaryOffensiveMetrics = []Metric{
	MetricOffenseTotal,
	MetricOffensePassing,
	MetricOffenseRushing,
	MetricOffenseScoring,
}

// IsYardage reports whether the metric is measured in yards rather than points
func (m Metric) IsYardage() bool {
	switch m {
	case MetricOffenseTotal, MetricOffensePassing, MetricOffenseRushing,
		MetricDefenseTotal, MetricDefensePassing, MetricDefenseRushing:
		return true
	}
	return false
}

// EfficiencyVector holds one delta per metric
type EfficiencyVector struct {
	OffenseTotal   float64 `json:"offense_total_yards"`
	OffensePassing float64 `json:"offense_passing_yards"`
	OffenseRushing float64 `json:"offense_rushing_yards"`
	OffenseScoring float64 `json:"offense_scoring"`
	DefenseTotal   float64 `json:"defense_total_yards"`
	DefensePassing float64 `json:"defense_passing_yards"`
	DefenseRushing float64 `json:"defense_rushing_yards"`
	DefenseScoring float64 `json:"defense_scoring"`
	TurnoverMargin float64 `json:"turnover_margin"`
	FieldGoal      float64 `json:"field_goal"`
}

// Get returns the value for a metric; unknown metrics read as 0
func (v EfficiencyVector) Get(m Metric) float64 {
	switch m {
	case MetricOffenseTotal:
		return v.OffenseTotal
	case MetricOffensePassing:
		return v.OffensePassing
	case MetricOffenseRushing:
		return v.OffenseRushing
	case MetricOffenseScoring:
		return v.OffenseScoring
	case MetricDefenseTotal:
		return v.DefenseTotal
	case MetricDefensePassing:
		return v.DefensePassing
	case MetricDefenseRushing:
		return v.DefenseRushing
	case MetricDefenseScoring:
		return v.DefenseScoring
	case MetricTurnoverMargin:
		return v.TurnoverMargin
	case MetricFieldGoal:
		return v.FieldGoal
	}
	return 0
}

// Set assigns the value for a metric; unknown metrics are ignored
func (v *EfficiencyVector) Set(m Metric, val float64) {
	switch m {
	case MetricOffenseTotal:
		v.OffenseTotal = val
	case MetricOffensePassing:
		v.OffensePassing = val
	case MetricOffenseRushing:
		v.OffenseRushing = val
	case MetricOffenseScoring:
		v.OffenseScoring = val
	case MetricDefenseTotal:
		v.DefenseTotal = val
	case MetricDefensePassing:
		v.DefensePassing = val
	case MetricDefenseRushing:
		v.DefenseRushing = val
	case MetricDefenseScoring:
		v.DefenseScoring = val
	case MetricTurnoverMargin:
		v.TurnoverMargin = val
	case MetricFieldGoal:
		v.FieldGoal = val
	}
}

// ConfidenceLevel buckets how much weight an efficiency profile deserves
type ConfidenceLevel string

// Confidence levels
const (
	ConfidenceHigh   ConfidenceLevel = "high"
	ConfidenceMedium ConfidenceLevel = "medium"
	ConfidenceLow    ConfidenceLevel = "low"
)

// ConfidenceFromGames derives the confidence level from sample size.
// The mapping is deliberately the only source of truth for this field.
func ConfidenceFromGames(gamesPlayed int) ConfidenceLevel {
	switch {
	case gamesPlayed >= 8:
		return ConfidenceHigh
	case gamesPlayed >= 5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Score maps a confidence level onto [0,1] for blending with convergence scores
func (c ConfidenceLevel) Score() float64 {
	switch c {
	case ConfidenceHigh:
		return 1.0
	case ConfidenceMedium:
		return 0.7
	default:
		return 0.4
	}
}

// Cap returns the lower of the receiver and the given ceiling
func (c ConfidenceLevel) Cap(ceiling ConfidenceLevel) ConfidenceLevel {
	if c.Score() > ceiling.Score() {
		return ceiling
	}
	return c
}

// TeamEfficiencyProfile is the per-(team, season) output of the efficiency
// engine, later adjusted by blending and shrinkage.
type TeamEfficiencyProfile struct {
	TeamID           uuid.UUID        `db:"team_id" json:"team_id"`
	Season           int              `db:"season" json:"season"`
	GamesPlayed      int              `db:"games_played" json:"games_played"`
	Efficiency       EfficiencyVector `db:"-" json:"efficiency"`
	ConvergenceScore float64          `db:"convergence_score" json:"convergence_score"`
	ConfidenceLevel  ConfidenceLevel  `db:"confidence_level" json:"confidence_level"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// NewNeutralProfile returns the all-zero starting profile for one team
func NewNeutralProfile(teamID uuid.UUID, season int) *TeamEfficiencyProfile {
	return &TeamEfficiencyProfile{
		TeamID:          teamID,
		Season:          season,
		ConfidenceLevel: ConfidenceLow,
		UpdatedAt:       time.Now(),
	}
}

// Clone returns a deep copy; iteration snapshots must never share state
func (p *TeamEfficiencyProfile) Clone() *TeamEfficiencyProfile {
	cp := *p
	return &cp
}
