package calibration

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// CalculateOptimalWeights derives metric weights from a regression summary.
// Significant metrics earn weight proportional to explained variance, capped at
// the configured maximum; insignificant metrics keep the floor so no signal is
// zeroed out entirely. The result is normalized to sum to 1.0.
func (c *Calibrator) CalculateOptimalWeights(summary *models.RegressionModelSummary) map[models.Metric]float64 {
	if summary == nil || len(summary.Results) == 0 {
		return models.DefaultWeights()
	}

	raw := make(map[models.Metric]float64, len(summary.Results))
	total := 0.0
	for _, r := range summary.Results {
		w := c.cfg.FloorWeight
		if r.IsStatisticallySignificant() {
			w = r.RSquared
			if w > c.cfg.MaxWeight {
				w = c.cfg.MaxWeight
			}
			if w < c.cfg.FloorWeight {
				w = c.cfg.FloorWeight
			}
		}
		raw[r.Metric] = w
		total += w
	}
	if total <= 0 {
		return models.DefaultWeights()
	}

	weights := make(map[models.Metric]float64, len(raw))
	for m, w := range raw {
		weights[m] = w / total
	}

	c.log.WithFields(logrus.Fields{
		"season":  summary.Season,
		"metrics": len(weights),
	}).Info("Optimal weights calculated")

	return weights
}

// ApplyCalibratedWeights updates a weight set from a regression summary,
// recording the change in the audit trail. Warnings from the update are
// surfaced through the audit logger rather than swallowed.
func (c *Calibrator) ApplyCalibratedWeights(ws *models.WeightSet, summary *models.RegressionModelSummary, changedBy string) error {
	next := c.CalculateOptimalWeights(summary)
	previous := make(map[string]float64, len(ws.Weights))
	for m, v := range ws.Weights {
		previous[string(m)] = v
	}

	warnings, err := ws.Update(next, "regression calibration", changedBy)
	if err != nil {
		return err
	}
	for _, w := range warnings {
		c.log.Warn(w)
	}

	updated := make(map[string]float64, len(next))
	for m, v := range next {
		updated[string(m)] = v
	}
	c.audit.LogWeightChange(ws.ID.String(), ws.Season, previous, updated, "regression calibration", changedBy, time.Now())
	return nil
}
