// Package logger provides rating-pipeline logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// RatingLogger provides dedicated logging for efficiency engine runs.
type RatingLogger struct {
	*logrus.Entry
}

// NewRatingLogger creates a new rating logger.
func NewRatingLogger(baseLogger *logrus.Logger) *RatingLogger {
	return &RatingLogger{
		Entry: baseLogger.WithField("component", "rating"),
	}
}

// LogIteration logs one completed engine iteration.
func (rl *RatingLogger) LogIteration(season, iteration int, maxChange float64, teamsConverged, totalTeams int) {
	rl.WithFields(logrus.Fields{
		"season":          season,
		"iteration":       iteration,
		"max_change":      maxChange,
		"teams_converged": teamsConverged,
		"total_teams":     totalTeams,
	}).Debug("Engine iteration completed")
}

// LogSeasonRun logs the outcome of a full season computation.
func (rl *RatingLogger) LogSeasonRun(season, iterations, teamsRated int, converged bool, durationMs float64) {
	rl.WithFields(logrus.Fields{
		"season":      season,
		"iterations":  iterations,
		"teams_rated": teamsRated,
		"converged":   converged,
		"duration_ms": durationMs,
	}).Info("Season efficiency computation completed")
}

// LogCalibration logs the outcome of a weight calibration run.
func (rl *RatingLogger) LogCalibration(season, metricsAnalyzed, significantMetrics, totalSamples int, confidence float64) {
	rl.WithFields(logrus.Fields{
		"season":              season,
		"metrics_analyzed":    metricsAnalyzed,
		"significant_metrics": significantMetrics,
		"total_samples":       totalSamples,
		"confidence":          confidence,
	}).Info("Weight calibration completed")
}
