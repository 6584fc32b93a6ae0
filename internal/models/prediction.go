package models

import (
	"time"

	"github.com/google/uuid"
)

// CategoryPrediction is one category's opponent-relative prediction together
// with its bounds-validation outcome.
type CategoryPrediction struct {
	Metric           Metric  `json:"metric"`
	OpponentBaseline float64 `json:"opponent_baseline"`
	PredictedValue   float64 `json:"predicted_value"`
	TeamEfficiency   float64 `json:"team_efficiency"`
	OppEfficiency    float64 `json:"opp_efficiency"`
	IsValid          bool    `json:"is_valid"`
	AdjustmentReason string  `json:"adjustment_reason,omitempty"`
}

// TeamPrediction is one side of a matchup prediction
type TeamPrediction struct {
	TeamID         uuid.UUID            `json:"team_id"`
	ExpectedScore  float64              `json:"expected_score"`
	Categories     []CategoryPrediction `json:"categories"`
	ConfidenceUsed ConfidenceLevel      `json:"confidence_used"`
}

// PredictionResult is the final composed prediction for one matchup.
// It is derived on demand from current profiles and weights, never stored
// as a source of truth.
type PredictionResult struct {
	GameID               uuid.UUID          `json:"game_id,omitempty"`
	Season               int                `json:"season"`
	Home                 TeamPrediction     `json:"home"`
	Away                 TeamPrediction     `json:"away"`
	HomeWinProbability   float64            `json:"home_win_probability"`
	PredictedMargin      float64            `json:"predicted_margin"`
	MarginInterval       [2]float64         `json:"margin_interval"`
	ConfidenceLevel      ConfidenceLevel    `json:"confidence_level"`
	ConfidenceScore      float64            `json:"confidence_score"`
	CalculationBreakdown map[string]float64 `json:"calculation_breakdown"`
	PredictedAt          time.Time          `json:"predicted_at"`
}

// HasAdjustments reports whether any category prediction was clamped
func (p *PredictionResult) HasAdjustments() bool {
	for _, side := range [][]CategoryPrediction{p.Home.Categories, p.Away.Categories} {
		for _, c := range side {
			if !c.IsValid {
				return true
			}
		}
	}
	return false
}
