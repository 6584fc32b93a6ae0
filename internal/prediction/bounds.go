package prediction

import (
	"fmt"
	"math"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// validateCategory clamps a category prediction that drifted an implausible
// distance from the opponent's baseline, and floors counting stats at zero.
// Clamping is idempotent: a value already inside the bounds passes untouched.
func (c *Composer) validateCategory(cp models.CategoryPrediction) models.CategoryPrediction {
	limit := c.deviationCap(cp.Metric)
	if limit > 0 {
		if dev := cp.PredictedValue - cp.OpponentBaseline; math.Abs(dev) > limit {
			clamped := cp.OpponentBaseline + math.Copysign(limit, dev)
			cp.AdjustmentReason = fmt.Sprintf(
				"%s prediction %.1f exceeded reasonable bounds (baseline %.1f +/- %.1f); clamped to %.1f",
				cp.Metric, cp.PredictedValue, cp.OpponentBaseline, limit, clamped)
			cp.PredictedValue = clamped
			cp.IsValid = false
		}
	}

	// Turnover margin is the one legitimately negative category.
	if cp.Metric != models.MetricTurnoverMargin && cp.PredictedValue < 0 {
		cp.AdjustmentReason = fmt.Sprintf("%s prediction %.1f floored at zero", cp.Metric, cp.PredictedValue)
		cp.PredictedValue = 0
		cp.IsValid = false
	}

	return cp
}

// deviationCap returns how far a prediction may sit from the opponent's
// baseline before it stops being believable.
func (c *Composer) deviationCap(m models.Metric) float64 {
	switch {
	case m == models.MetricOffenseScoring:
		return c.cfg.ScoringCap
	case m.IsYardage():
		return c.cfg.YardageCap
	case m == models.MetricFieldGoal:
		return c.cfg.ScoringCap / 2
	case m == models.MetricTurnoverMargin:
		return 5.0
	}
	return 0
}
