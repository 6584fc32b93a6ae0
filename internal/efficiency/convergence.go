package efficiency

import (
	"math"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// convergenceScoreNormalizer converts a raw max change (points/yards) into the
// [0,1] convergence score carried on each profile.
const convergenceScoreNormalizer = 10.0

// ConvergenceStatus summarizes one iteration's convergence check
type ConvergenceStatus struct {
	Converged      bool
	MaxChange      float64
	TeamsConverged int
	TotalTeams     int
}

// teamMaxChange returns the largest absolute change across the four primary
// offensive efficiencies between two profile snapshots.
func teamMaxChange(prev, curr *models.TeamEfficiencyProfile) float64 {
	maxChange := 0.0
	for _, m := range models.PrimaryOffensiveMetrics {
		change := math.Abs(curr.Efficiency.Get(m) - prev.Efficiency.Get(m))
		if change > maxChange {
			maxChange = change
		}
	}
	return maxChange
}

// DetermineConvergence compares successive iteration snapshots. The iteration
// has converged when the global max change is under the threshold and enough
// individual teams have settled, or when the global max change is an order of
// magnitude under the threshold regardless of the quorum. Two empty snapshots
// are vacuously converged.
func DetermineConvergence(
	prev, curr map[uuid.UUID]*models.TeamEfficiencyProfile,
	threshold, quorum float64,
) ConvergenceStatus {
	status := ConvergenceStatus{TotalTeams: len(curr)}

	if len(curr) == 0 {
		status.Converged = true
		return status
	}

	for id, currProfile := range curr {
		prevProfile, ok := prev[id]
		if !ok {
			prevProfile = models.NewNeutralProfile(id, currProfile.Season)
		}
		change := teamMaxChange(prevProfile, currProfile)
		if change < threshold {
			status.TeamsConverged++
		}
		if change > status.MaxChange {
			status.MaxChange = change
		}
	}

	quorumMet := float64(status.TeamsConverged) >= quorum*float64(status.TotalTeams)
	status.Converged = (status.MaxChange < threshold && quorumMet) ||
		status.MaxChange < threshold/10

	return status
}

// convergenceScore maps a team's max change onto [0,1]; 1 means fully settled
func convergenceScore(maxChange float64) float64 {
	score := 1.0 - maxChange/convergenceScoreNormalizer
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
