// Package efficiency implements the opponent-adjusted efficiency engine: an
// iterative fixed-point solver that rates every team's per-category
// performance relative to what its opponents typically allow.
package efficiency

import (
	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// PerformanceExtractor transforms raw box scores into normalized
// GamePerformanceRecords carrying the current iteration's opponent baselines.
// Records are rebuilt every iteration; they are never persisted.
type PerformanceExtractor struct{}

// NewPerformanceExtractor creates a new performance extractor
func NewPerformanceExtractor() *PerformanceExtractor {
	return &PerformanceExtractor{}
}

// ExtractTeamRecords builds one record per completed game for the given team,
// pairing the team's normalized stat lines with the opponent's adjusted
// baselines for this iteration.
func (x *PerformanceExtractor) ExtractTeamRecords(
	dataset *models.SeasonDataset,
	teamID uuid.UUID,
	baselines map[uuid.UUID]OpponentBaseline,
) []*models.GamePerformanceRecord {
	games := dataset.GamesFor(teamID)
	records := make([]*models.GamePerformanceRecord, 0, len(games))

	for _, g := range games {
		opponentID := g.Opponent(teamID)
		own := dataset.BoxScore(g.ID, teamID)
		opp := dataset.BoxScore(g.ID, opponentID)
		if own == nil || opp == nil {
			continue
		}

		// Every opponent with a completed, box-scored game has a baseline
		// entry, so the lookup cannot miss.
		baseline := baselines[opponentID]

		records = append(records, &models.GamePerformanceRecord{
			GameID:           g.ID,
			TeamID:           teamID,
			OpponentID:       opponentID,
			Week:             g.Week,
			HomeGame:         g.HomeTeamID == teamID && !g.NeutralSite,
			Produced:         models.LineFromBoxScore(own),
			Allowed:          models.LineFromBoxScore(opp),
			OpponentAllowed:  baseline.Allowed,
			OpponentProduced: baseline.Produced,
		})
	}

	return records
}
