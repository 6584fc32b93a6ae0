package efficiency

import (
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func testRatingConfig() config.RatingConfig {
	return config.RatingConfig{
		MaxIterations:         50,
		ConvergenceThreshold:  0.001,
		TeamConvergenceQuorum: 0.98,
		OpponentQualityFactor: 0.1,
		AnomalyThreshold:      35.0,
		Workers:               4,
	}
}

func newTestDataset(season int) *models.SeasonDataset {
	return &models.SeasonDataset{
		Season:    season,
		Complete:  true,
		BoxScores: make(map[uuid.UUID]map[uuid.UUID]*models.BoxScoreStats),
		Teams:     make(map[uuid.UUID]*models.Team),
	}
}

type teamStats struct {
	points       int
	totalYards   int
	passingYards int
	rushingYards int
	turnovers    int
	takeaways    int
	fgMade       int
}

func addGame(d *models.SeasonDataset, week int, home, away uuid.UUID, homeStats, awayStats teamStats) *models.GameRecord {
	g := &models.GameRecord{
		ID:         uuid.New(),
		Season:     d.Season,
		Week:       week,
		HomeTeamID: home,
		AwayTeamID: away,
		HomeScore:  homeStats.points,
		AwayScore:  awayStats.points,
		Completed:  true,
		KickoffAt:  time.Date(d.Season, 9, 1+week*7, 19, 0, 0, 0, time.UTC),
	}
	d.Games = append(d.Games, g)
	d.BoxScores[g.ID] = map[uuid.UUID]*models.BoxScoreStats{
		home: boxScore(g.ID, home, homeStats),
		away: boxScore(g.ID, away, awayStats),
	}
	return g
}

func boxScore(gameID, teamID uuid.UUID, s teamStats) *models.BoxScoreStats {
	return &models.BoxScoreStats{
		GameID:              gameID,
		TeamID:              teamID,
		Points:              s.points,
		TotalYards:          s.totalYards,
		PassingYards:        s.passingYards,
		RushingYards:        s.rushingYards,
		Turnovers:           s.turnovers,
		Takeaways:           s.takeaways,
		FieldGoalsMade:      s.fgMade,
		FieldGoalsAttempted: s.fgMade,
	}
}

// fourTeamRoundRobin builds a double round robin where team strengths are
// strictly ordered: teams[0] is the strongest, teams[3] the weakest.
func fourTeamRoundRobin(season int) (*models.SeasonDataset, []uuid.UUID) {
	d := newTestDataset(season)
	teams := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}

	// Base output scales with strength; defenses concede inversely.
	strength := []int{35, 28, 21, 14}
	week := 1
	for round := 0; round < 2; round++ {
		for i := 0; i < len(teams); i++ {
			for j := i + 1; j < len(teams); j++ {
				home, away := teams[i], teams[j]
				if round == 1 {
					home, away = away, home
				}
				hs, as := strength[i], strength[j]
				if round == 1 {
					hs, as = as, hs
				}
				addGame(d, week, home, away,
					teamStats{points: hs, totalYards: hs * 12, passingYards: hs * 7, rushingYards: hs * 5, takeaways: 1, turnovers: 1, fgMade: 1},
					teamStats{points: as, totalYards: as * 12, passingYards: as * 7, rushingYards: as * 5, takeaways: 1, turnovers: 1, fgMade: 1})
				week++
			}
		}
	}
	return d, teams
}
