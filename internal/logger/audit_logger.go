// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging for rating and
// calibration events that operators may need to reconstruct later.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogWeightChange logs an accepted weight set update.
func (al *AuditLogger) LogWeightChange(weightSetID string, season int, previous, next map[string]float64, reason, changedBy string, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"weight_set_id":    weightSetID,
		"season":           season,
		"previous_weights": previous,
		"new_weights":      next,
		"reason":           reason,
		"changed_by":       changedBy,
		"timestamp":        timestamp.Unix(),
	}).Info("Weight set updated")
}

// LogShrinkageAdjustment logs one team's shrinkage pull toward the national average.
func (al *AuditLogger) LogShrinkageAdjustment(teamID string, season, gamesPlayed int, metric string, before, after, nationalAvg float64) {
	al.WithFields(logrus.Fields{
		"team_id":      teamID,
		"season":       season,
		"games_played": gamesPlayed,
		"metric":       metric,
		"before":       before,
		"after":        after,
		"national_avg": nationalAvg,
	}).Info("Shrinkage adjustment applied")
}

// LogEfficiencyAnomaly logs an efficiency magnitude outside the expected range.
// Anomalies are never clamped by the engine; the blender owns bounds.
func (al *AuditLogger) LogEfficiencyAnomaly(teamID string, season int, metric string, value, limit float64) {
	al.WithFields(logrus.Fields{
		"team_id": teamID,
		"season":  season,
		"metric":  metric,
		"value":   value,
		"limit":   limit,
	}).Warn("Efficiency magnitude outside expected range")
}

// LogNonConvergence logs an engine run that exhausted its iteration budget.
func (al *AuditLogger) LogNonConvergence(season, iterations int, maxChange float64, teamsConverged, totalTeams int) {
	al.WithFields(logrus.Fields{
		"season":          season,
		"iterations":      iterations,
		"max_change":      maxChange,
		"teams_converged": teamsConverged,
		"total_teams":     totalTeams,
	}).Warn("Efficiency engine did not converge; returning last iteration")
}

// LogTeamDropped logs a team excluded from the season's rating set.
func (al *AuditLogger) LogTeamDropped(teamID string, season, gamesPlayed, minimumGames int) {
	al.WithFields(logrus.Fields{
		"team_id":       teamID,
		"season":        season,
		"games_played":  gamesPlayed,
		"minimum_games": minimumGames,
	}).Info("Team dropped from rating set")
}
