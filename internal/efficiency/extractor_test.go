package efficiency

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

func TestExtractTeamRecords(t *testing.T) {
	dataset := newTestDataset(2024)
	home, away := uuid.New(), uuid.New()
	addGame(dataset, 1, home, away,
		teamStats{points: 31, totalYards: 420, passingYards: 280, rushingYards: 140, takeaways: 2, turnovers: 0, fgMade: 1},
		teamStats{points: 17, totalYards: 300, passingYards: 180, rushingYards: 120, takeaways: 0, turnovers: 2, fgMade: 1})

	baselines := map[uuid.UUID]OpponentBaseline{
		away: {
			Allowed:  models.StatLine{Points: 24, TotalYards: 360},
			Produced: models.StatLine{Points: 21, TotalYards: 330},
			Games:    1,
		},
	}

	x := NewPerformanceExtractor()
	records := x.ExtractTeamRecords(dataset, home, baselines)

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	r := records[0]
	if !r.HomeGame {
		t.Fatalf("expected home game flag")
	}
	if r.OpponentID != away {
		t.Fatalf("wrong opponent id")
	}
	if r.Produced.Points != 31 {
		t.Fatalf("expected 31 produced points, got %f", r.Produced.Points)
	}
	if r.Allowed.Points != 17 {
		t.Fatalf("expected 17 allowed points, got %f", r.Allowed.Points)
	}
	if r.Produced.TurnoverMargin != 2 {
		t.Fatalf("expected +2 turnover margin, got %f", r.Produced.TurnoverMargin)
	}
	if r.OpponentAllowed.Points != 24 {
		t.Fatalf("expected opponent baseline carried onto record, got %f", r.OpponentAllowed.Points)
	}
}

func TestExtractTeamRecordsSkipsUncompleted(t *testing.T) {
	dataset := newTestDataset(2024)
	home, away := uuid.New(), uuid.New()
	g := addGame(dataset, 1, home, away, teamStats{points: 21}, teamStats{points: 14})
	g.Completed = false

	x := NewPerformanceExtractor()
	if records := x.ExtractTeamRecords(dataset, home, nil); len(records) != 0 {
		t.Fatalf("expected no records for uncompleted games, got %d", len(records))
	}
}

func TestRawAveragesMeansAcrossGames(t *testing.T) {
	dataset := newTestDataset(2024)
	a, b := uuid.New(), uuid.New()
	addGame(dataset, 1, a, b, teamStats{points: 30, totalYards: 400}, teamStats{points: 10, totalYards: 250})
	addGame(dataset, 2, b, a, teamStats{points: 20, totalYards: 350}, teamStats{points: 40, totalYards: 500})

	raw := rawAverages(dataset)

	if got := raw[a].Produced.Points; got != 35 {
		t.Fatalf("expected team a mean 35 points produced, got %f", got)
	}
	if got := raw[a].Allowed.Points; got != 15 {
		t.Fatalf("expected team a mean 15 points allowed, got %f", got)
	}
	if raw[a].Games != 2 {
		t.Fatalf("expected 2 games, got %d", raw[a].Games)
	}
}

func TestRawAveragesCoverEveryBoxScoredOpponent(t *testing.T) {
	dataset := newTestDataset(2024)
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	addGame(dataset, 1, a, b, teamStats{points: 28, totalYards: 390}, teamStats{points: 20, totalYards: 310})
	addGame(dataset, 2, a, c, teamStats{points: 17, totalYards: 280}, teamStats{points: 24, totalYards: 350})

	raw := rawAverages(dataset)
	for _, g := range dataset.CompletedGames() {
		for _, id := range []uuid.UUID{g.HomeTeamID, g.AwayTeamID} {
			if _, ok := raw[id]; !ok {
				t.Fatalf("no baseline for team %s despite a completed box-scored game", id)
			}
		}
	}
}

func TestAdjustBaselinesShiftsWithEfficiency(t *testing.T) {
	id := uuid.New()
	raw := map[uuid.UUID]OpponentBaseline{
		id: {Allowed: models.StatLine{Points: 24}, Produced: models.StatLine{Points: 21}, Games: 5},
	}
	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{id: models.NewNeutralProfile(id, 2024)}
	profiles[id].Efficiency.DefenseScoring = 10
	profiles[id].Efficiency.OffenseScoring = 5

	adjusted := adjustBaselines(raw, profiles, 0.1)

	// Good defense: expected production against it drops below raw mean.
	if got := adjusted[id].Allowed.Points; got != 23 {
		t.Fatalf("expected adjusted allowed 23, got %f", got)
	}
	// Good offense: expected production rises above raw mean.
	if got := adjusted[id].Produced.Points; got != 21.5 {
		t.Fatalf("expected adjusted produced 21.5, got %f", got)
	}
}
