package blend

import (
	"math"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// Pseudo-observation counts for each shrinkage tier. A team's posterior is
// (n*value + k*nationalAvg) / (n + k), so k is how many league-average games
// the prior is worth.
const (
	lightShrinkageK     = 1.0
	moderateShrinkageK  = 2.5
	heavyShrinkageK     = 5.0
	veryHeavyShrinkageK = 8.0

	// Teams with at least reliableGamesFactor * minimum games anchor the
	// national averages; thin samples must not drag the prior around.
	reliableGamesFactor = 1.5

	// FCS opponents and near-zero samples get an extra multiplicative pull
	// toward zero on top of the Bayesian adjustment.
	fcsPullFactor = 0.25
)

// metricBound is the post-shrinkage clamp per category. Values beyond these
// are not believable for a single season of college football.
func metricBound(m models.Metric) float64 {
	switch m {
	case models.MetricOffenseScoring, models.MetricDefenseScoring:
		return 30.0
	case models.MetricOffenseTotal, models.MetricDefenseTotal:
		return 150.0
	case models.MetricOffensePassing, models.MetricDefensePassing,
		models.MetricOffenseRushing, models.MetricDefenseRushing:
		return 120.0
	case models.MetricTurnoverMargin:
		return 3.0
	case models.MetricFieldGoal:
		return 9.0
	}
	return 0
}

// ShrinkageAdjustment records one team's pull toward the national averages
type ShrinkageAdjustment struct {
	TeamID      uuid.UUID               `json:"team_id"`
	GamesPlayed int                     `json:"games_played"`
	PseudoGames float64                 `json:"pseudo_games"`
	Before      models.EfficiencyVector `json:"before"`
	After       models.EfficiencyVector `json:"after"`
	ForcedLow   bool                    `json:"forced_low"`
}

// ShrinkageReport summarizes one season's shrinkage pass for audit
type ShrinkageReport struct {
	Season           int                     `json:"season"`
	NationalAverages models.EfficiencyVector `json:"national_averages"`
	ReliableTeams    int                     `json:"reliable_teams"`
	Adjustments      []ShrinkageAdjustment   `json:"adjustments"`
	Dropped          []uuid.UUID             `json:"dropped"`
}

// pseudoGames returns the prior weight k for a team's sample size. Zero means
// the sample speaks for itself.
func (b *Blender) pseudoGames(gamesPlayed, minimumGames int) float64 {
	switch {
	case gamesPlayed >= b.cfg.NoShrinkageGames:
		return 0
	case gamesPlayed >= b.cfg.LightShrinkageGames:
		return lightShrinkageK
	case gamesPlayed >= minimumGames:
		return moderateShrinkageK
	case gamesPlayed >= minimumGames-2:
		return heavyShrinkageK
	default:
		return veryHeavyShrinkageK
	}
}

// nationalAverages computes per-metric means over teams with enough games to
// trust. Falls back to all rated teams when no team qualifies (early season).
func nationalAverages(
	profiles map[uuid.UUID]*models.TeamEfficiencyProfile,
	minimumGames int,
) (models.EfficiencyVector, int) {
	reliableFloor := int(math.Ceil(float64(minimumGames) * reliableGamesFactor))

	var avg models.EfficiencyVector
	count := 0
	for _, p := range profiles {
		if p.GamesPlayed < reliableFloor {
			continue
		}
		for _, m := range models.AllMetrics {
			avg.Set(m, avg.Get(m)+p.Efficiency.Get(m))
		}
		count++
	}
	if count == 0 {
		for _, p := range profiles {
			if p.GamesPlayed == 0 {
				continue
			}
			for _, m := range models.AllMetrics {
				avg.Set(m, avg.Get(m)+p.Efficiency.Get(m))
			}
			count++
		}
	}
	if count > 0 {
		for _, m := range models.AllMetrics {
			avg.Set(m, avg.Get(m)/float64(count))
		}
	}
	return avg, count
}

// ApplyShrinkage pulls thin-sample profiles toward the national averages,
// clamps every metric to its per-category bound, and drops teams below the
// absolute minimum game count. Input profiles are not mutated.
func (b *Blender) ApplyShrinkage(
	profiles map[uuid.UUID]*models.TeamEfficiencyProfile,
	dataset *models.SeasonDataset,
) (map[uuid.UUID]*models.TeamEfficiencyProfile, *ShrinkageReport) {
	minGames := b.cfg.MinimumGames(dataset.Complete)
	avg, reliable := nationalAverages(profiles, minGames)

	report := &ShrinkageReport{
		Season:           dataset.Season,
		NationalAverages: avg,
		ReliableTeams:    reliable,
	}
	out := make(map[uuid.UUID]*models.TeamEfficiencyProfile, len(profiles))

	for id, p := range profiles {
		if p.GamesPlayed < b.cfg.AbsoluteMinimumGames {
			report.Dropped = append(report.Dropped, id)
			b.audit.LogTeamDropped(id.String(), dataset.Season, p.GamesPlayed, b.cfg.AbsoluteMinimumGames)
			continue
		}

		adjusted := p.Clone()
		k := b.pseudoGames(p.GamesPlayed, minGames)
		forcedLow := dataset.IsFCS(id) || p.GamesPlayed <= 1

		if k > 0 || forcedLow {
			n := float64(p.GamesPlayed)
			for _, m := range models.AllMetrics {
				v := (n*p.Efficiency.Get(m) + k*avg.Get(m)) / (n + k)
				if forcedLow {
					v *= fcsPullFactor
				}
				adjusted.Efficiency.Set(m, clamp(v, metricBound(m)))
			}
			adjusted.ConfidenceLevel = models.ConfidenceFromGames(p.GamesPlayed)
			if forcedLow {
				adjusted.ConfidenceLevel = models.ConfidenceLow
			}

			report.Adjustments = append(report.Adjustments, ShrinkageAdjustment{
				TeamID:      id,
				GamesPlayed: p.GamesPlayed,
				PseudoGames: k,
				Before:      p.Efficiency,
				After:       adjusted.Efficiency,
				ForcedLow:   forcedLow,
			})
			b.audit.LogShrinkageAdjustment(
				id.String(), dataset.Season, p.GamesPlayed,
				string(models.MetricOffenseScoring),
				p.Efficiency.OffenseScoring, adjusted.Efficiency.OffenseScoring,
				avg.OffenseScoring,
			)
		} else {
			for _, m := range models.AllMetrics {
				adjusted.Efficiency.Set(m, clamp(p.Efficiency.Get(m), metricBound(m)))
			}
		}

		out[id] = adjusted
	}

	b.log.WithFields(logrus.Fields{
		"season":         dataset.Season,
		"teams":          len(profiles),
		"reliable_teams": reliable,
		"adjusted":       len(report.Adjustments),
		"dropped":        len(report.Dropped),
	}).Info("Shrinkage pass complete")

	return out, report
}

func clamp(v, bound float64) float64 {
	if bound <= 0 {
		return v
	}
	if v > bound {
		return bound
	}
	if v < -bound {
		return -bound
	}
	return v
}
