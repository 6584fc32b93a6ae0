package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// Sane ceiling for a single weight component. Values above it are suspicious
// but not fatal; updates warn and proceed.
const WeightSaneCeiling = 2.0

// WeightSet maps metrics to the non-negative weights used when composing
// predictions. Every accepted update is recorded in the audit trail.
type WeightSet struct {
	ID        uuid.UUID          `db:"id" json:"id"`
	Season    int                `db:"season" json:"season"`
	Weights   map[Metric]float64 `db:"-" json:"weights"`
	UpdatedAt time.Time          `db:"updated_at" json:"updated_at"`
	History   []WeightChange     `db:"-" json:"history,omitempty"`
}

// WeightChange records one accepted update to a weight set
type WeightChange struct {
	ID              uuid.UUID          `db:"id" json:"id"`
	WeightSetID     uuid.UUID          `db:"weight_set_id" json:"weight_set_id"`
	PreviousWeights map[Metric]float64 `db:"-" json:"previous_weights"`
	Reason          string             `db:"reason" json:"reason" validate:"required"`
	ChangedBy       string             `db:"changed_by" json:"changed_by" validate:"required"`
	ChangedAt       time.Time          `db:"changed_at" json:"changed_at"`
}

// DefaultWeights is the known baseline applied before any calibration has run.
// Scoring dominates; the remainder splits across yardage and situational signal.
func DefaultWeights() map[Metric]float64 {
	return map[Metric]float64{
		MetricOffenseScoring: 0.25,
		MetricDefenseScoring: 0.25,
		MetricOffenseTotal:   0.10,
		MetricDefenseTotal:   0.10,
		MetricOffensePassing: 0.05,
		MetricDefensePassing: 0.05,
		MetricOffenseRushing: 0.05,
		MetricDefenseRushing: 0.05,
		MetricTurnoverMargin: 0.06,
		MetricFieldGoal:      0.04,
	}
}

// NewWeightSet creates a weight set seeded with the default baseline
func NewWeightSet(season int) *WeightSet {
	return &WeightSet{
		ID:        uuid.New(),
		Season:    season,
		Weights:   DefaultWeights(),
		UpdatedAt: time.Now(),
	}
}

// Get returns the weight for a metric, 0 if absent
func (w *WeightSet) Get(m Metric) float64 {
	return w.Weights[m]
}

// Sum returns the total of all weight components
func (w *WeightSet) Sum() float64 {
	total := 0.0
	for _, v := range w.Weights {
		total += v
	}
	return total
}

// Update replaces the weights after validation. Negative components are
// rejected outright. Components above the sane ceiling are accepted but the
// returned warnings must be surfaced by the caller.
func (w *WeightSet) Update(next map[Metric]float64, reason, changedBy string) ([]string, error) {
	if len(next) == 0 {
		return nil, NewValidationError("empty_weights", "weight update contains no components")
	}
	var warnings []string
	for m, v := range next {
		if v < 0 {
			return nil, fmt.Errorf("%w: %s = %.4f", ErrNegativeWeight, m, v)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, NewValidationError("invalid_weight", fmt.Sprintf("weight for %s is not finite", m))
		}
		if v > WeightSaneCeiling {
			warnings = append(warnings, fmt.Sprintf("weight for %s (%.4f) exceeds sane ceiling %.1f", m, v, WeightSaneCeiling))
		}
	}

	prev := make(map[Metric]float64, len(w.Weights))
	for m, v := range w.Weights {
		prev[m] = v
	}

	w.History = append(w.History, WeightChange{
		ID:              uuid.New(),
		WeightSetID:     w.ID,
		PreviousWeights: prev,
		Reason:          reason,
		ChangedBy:       changedBy,
		ChangedAt:       time.Now(),
	})

	updated := make(map[Metric]float64, len(next))
	for m, v := range next {
		updated[m] = v
	}
	w.Weights = updated
	w.UpdatedAt = time.Now()
	return warnings, nil
}
