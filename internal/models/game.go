package models

import (
	"time"

	"github.com/google/uuid"
)

// GameRecord represents a single scheduled or completed game
type GameRecord struct {
	ID          uuid.UUID `db:"id" json:"id" validate:"required,uuid4"`
	Season      int       `db:"season" json:"season" validate:"required,gte=1900"`
	Week        int       `db:"week" json:"week" validate:"gte=0,lte=20"`
	HomeTeamID  uuid.UUID `db:"home_team_id" json:"home_team_id" validate:"required,uuid4"`
	AwayTeamID  uuid.UUID `db:"away_team_id" json:"away_team_id" validate:"required,uuid4"`
	HomeScore   int       `db:"home_score" json:"home_score"`
	AwayScore   int       `db:"away_score" json:"away_score"`
	NeutralSite bool      `db:"neutral_site" json:"neutral_site"`
	Completed   bool      `db:"completed" json:"completed"`
	KickoffAt   time.Time `db:"kickoff_at" json:"kickoff_at"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Winner returns the winning team's ID, or uuid.Nil for an uncompleted or tied game
func (g *GameRecord) Winner() uuid.UUID {
	if !g.Completed {
		return uuid.Nil
	}
	switch {
	case g.HomeScore > g.AwayScore:
		return g.HomeTeamID
	case g.AwayScore > g.HomeScore:
		return g.AwayTeamID
	default:
		return uuid.Nil
	}
}

// PointDifferential returns home score minus away score
func (g *GameRecord) PointDifferential() float64 {
	return float64(g.HomeScore - g.AwayScore)
}

// TotalPoints returns the combined final score
func (g *GameRecord) TotalPoints() int {
	return g.HomeScore + g.AwayScore
}

// Involves reports whether the given team played in this game
func (g *GameRecord) Involves(teamID uuid.UUID) bool {
	return g.HomeTeamID == teamID || g.AwayTeamID == teamID
}

// Opponent returns the other team's ID, or uuid.Nil if teamID did not play
func (g *GameRecord) Opponent(teamID uuid.UUID) uuid.UUID {
	switch teamID {
	case g.HomeTeamID:
		return g.AwayTeamID
	case g.AwayTeamID:
		return g.HomeTeamID
	default:
		return uuid.Nil
	}
}

// TeamClassification identifies the competitive division of a team
type TeamClassification string

// Team classifications
const (
	ClassificationFBS TeamClassification = "fbs"
	ClassificationFCS TeamClassification = "fcs"
)

// Team represents a team known to the rating system
type Team struct {
	ID             uuid.UUID          `db:"id" json:"id" validate:"required,uuid4"`
	Name           string             `db:"name" json:"name" validate:"required"`
	Abbreviation   string             `db:"abbreviation" json:"abbreviation"`
	Conference     string             `db:"conference" json:"conference"`
	Classification TeamClassification `db:"classification" json:"classification" validate:"oneof=fbs fcs"`
	CreatedAt      time.Time          `db:"created_at" json:"created_at"`
}

// SeasonDataset bundles the already-fetched inputs for one season's computation.
// The statistical core never reaches back to storage; the caller assembles this
// once per run and the engine treats it as immutable.
type SeasonDataset struct {
	Season    int
	Complete  bool // true once the season's schedule has fully played out
	Games     []*GameRecord
	BoxScores map[uuid.UUID]map[uuid.UUID]*BoxScoreStats // gameID -> teamID -> stats
	Teams     map[uuid.UUID]*Team
}

// CompletedGames returns only games with a final score and both box scores present
func (d *SeasonDataset) CompletedGames() []*GameRecord {
	out := make([]*GameRecord, 0, len(d.Games))
	for _, g := range d.Games {
		if !g.Completed {
			continue
		}
		byTeam, ok := d.BoxScores[g.ID]
		if !ok {
			continue
		}
		if byTeam[g.HomeTeamID] == nil || byTeam[g.AwayTeamID] == nil {
			continue
		}
		out = append(out, g)
	}
	return out
}

// GamesFor returns the completed games involving the given team
func (d *SeasonDataset) GamesFor(teamID uuid.UUID) []*GameRecord {
	out := make([]*GameRecord, 0, 14)
	for _, g := range d.CompletedGames() {
		if g.Involves(teamID) {
			out = append(out, g)
		}
	}
	return out
}

// BoxScore returns the stats one team posted in one game, or nil
func (d *SeasonDataset) BoxScore(gameID, teamID uuid.UUID) *BoxScoreStats {
	if byTeam, ok := d.BoxScores[gameID]; ok {
		return byTeam[teamID]
	}
	return nil
}

// TeamIDs returns every team that appears in the dataset's games
func (d *SeasonDataset) TeamIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(d.Teams))
	ids := make([]uuid.UUID, 0, len(d.Teams))
	for _, g := range d.Games {
		for _, id := range []uuid.UUID{g.HomeTeamID, g.AwayTeamID} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				ids = append(ids, id)
			}
		}
	}
	return ids
}

// IsFCS reports whether a team carries the FCS classification
func (d *SeasonDataset) IsFCS(teamID uuid.UUID) bool {
	if t, ok := d.Teams[teamID]; ok {
		return t.Classification == ClassificationFCS
	}
	return false
}
