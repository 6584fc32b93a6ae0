package efficiency

import (
	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// OpponentBaseline is one team's adjusted typical stat lines for the current
// iteration: Allowed is what an average offense would be expected to post
// against this team, Produced what this team would be expected to post.
type OpponentBaseline struct {
	Allowed  models.StatLine
	Produced models.StatLine
	Games    int
}

// SeasonBaselines returns the adjusted opponent baselines implied by an
// already rated season. The prediction composer anchors every category
// prediction on these.
func SeasonBaselines(
	dataset *models.SeasonDataset,
	profiles map[uuid.UUID]*models.TeamEfficiencyProfile,
	qualityFactor float64,
) map[uuid.UUID]OpponentBaseline {
	return adjustBaselines(rawAverages(dataset), profiles, qualityFactor)
}

// rawAverages accumulates each team's unadjusted produced/allowed means
// across all of its completed games in the dataset.
func rawAverages(dataset *models.SeasonDataset) map[uuid.UUID]OpponentBaseline {
	sums := make(map[uuid.UUID]OpponentBaseline)

	for _, g := range dataset.CompletedGames() {
		home := dataset.BoxScore(g.ID, g.HomeTeamID)
		away := dataset.BoxScore(g.ID, g.AwayTeamID)
		homeLine := models.LineFromBoxScore(home)
		awayLine := models.LineFromBoxScore(away)

		hb := sums[g.HomeTeamID]
		hb.Produced = hb.Produced.Add(homeLine)
		hb.Allowed = hb.Allowed.Add(awayLine)
		hb.Games++
		sums[g.HomeTeamID] = hb

		ab := sums[g.AwayTeamID]
		ab.Produced = ab.Produced.Add(awayLine)
		ab.Allowed = ab.Allowed.Add(homeLine)
		ab.Games++
		sums[g.AwayTeamID] = ab
	}

	for id, b := range sums {
		if b.Games > 0 {
			inv := 1.0 / float64(b.Games)
			b.Produced = b.Produced.Scale(inv)
			b.Allowed = b.Allowed.Scale(inv)
			sums[id] = b
		}
	}

	return sums
}

// adjustBaselines applies the opponent-quality correction that makes the
// solver recursive: each team's baseline shifts in proportion to its
// current-iteration efficiency. A genuinely good defense is expected to allow
// even less than its raw mean suggests, and a good offense to produce more.
func adjustBaselines(
	raw map[uuid.UUID]OpponentBaseline,
	profiles map[uuid.UUID]*models.TeamEfficiencyProfile,
	qualityFactor float64,
) map[uuid.UUID]OpponentBaseline {
	adjusted := make(map[uuid.UUID]OpponentBaseline, len(raw))

	for id, b := range raw {
		eff := models.EfficiencyVector{}
		if p, ok := profiles[id]; ok {
			eff = p.Efficiency
		}

		b.Allowed = models.StatLine{
			TotalYards:      b.Allowed.TotalYards - qualityFactor*eff.DefenseTotal,
			PassingYards:    b.Allowed.PassingYards - qualityFactor*eff.DefensePassing,
			RushingYards:    b.Allowed.RushingYards - qualityFactor*eff.DefenseRushing,
			Points:          b.Allowed.Points - qualityFactor*eff.DefenseScoring,
			TurnoverMargin:  b.Allowed.TurnoverMargin - qualityFactor*eff.TurnoverMargin,
			FieldGoalPoints: b.Allowed.FieldGoalPoints - qualityFactor*eff.FieldGoal,
		}
		b.Produced = models.StatLine{
			TotalYards:      b.Produced.TotalYards + qualityFactor*eff.OffenseTotal,
			PassingYards:    b.Produced.PassingYards + qualityFactor*eff.OffensePassing,
			RushingYards:    b.Produced.RushingYards + qualityFactor*eff.OffenseRushing,
			Points:          b.Produced.Points + qualityFactor*eff.OffenseScoring,
			TurnoverMargin:  b.Produced.TurnoverMargin + qualityFactor*eff.TurnoverMargin,
			FieldGoalPoints: b.Produced.FieldGoalPoints + qualityFactor*eff.FieldGoal,
		}

		adjusted[id] = b
	}

	return adjusted
}
