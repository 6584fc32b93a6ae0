package efficiency

import (
	"context"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/models"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func TestEngineConvergesOnRoundRobin(t *testing.T) {
	dataset, teams := fourTeamRoundRobin(2024)
	engine := NewEngine(testRatingConfig(), testLogger())

	result, err := engine.CalculateSeasonEfficiencies(context.Background(), dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Converged {
		t.Fatalf("expected convergence, max change %f after %d iterations", result.MaxChange, result.Iterations)
	}
	if len(result.Profiles) != 4 {
		t.Fatalf("expected 4 profiles, got %d", len(result.Profiles))
	}

	// Strongest team must out-rate the weakest on offensive scoring.
	best := result.Profiles[teams[0]].Efficiency.OffenseScoring
	worst := result.Profiles[teams[3]].Efficiency.OffenseScoring
	if best <= worst {
		t.Fatalf("expected strongest team offense efficiency %f > weakest %f", best, worst)
	}
}

func TestEngineDeterminism(t *testing.T) {
	dataset, _ := fourTeamRoundRobin(2024)
	engine := NewEngine(testRatingConfig(), testLogger())

	first, err := engine.CalculateSeasonEfficiencies(context.Background(), dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.CalculateSeasonEfficiencies(context.Background(), dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.Iterations != second.Iterations {
		t.Fatalf("iteration counts differ: %d vs %d", first.Iterations, second.Iterations)
	}
	for id, p1 := range first.Profiles {
		p2 := second.Profiles[id]
		if p2 == nil {
			t.Fatalf("team %s missing from second run", id)
		}
		for _, m := range models.AllMetrics {
			if p1.Efficiency.Get(m) != p2.Efficiency.Get(m) {
				t.Fatalf("metric %s differs between runs: %v vs %v", m, p1.Efficiency.Get(m), p2.Efficiency.Get(m))
			}
		}
	}
}

func TestEngineZeroGameTeamStaysNeutral(t *testing.T) {
	dataset, teams := fourTeamRoundRobin(2024)

	// A fifth team appears only in a game that never kicked off.
	idle := addGame(dataset, 12, teams[0], uuid.New(), teamStats{}, teamStats{})
	idle.Completed = false
	idleTeam := idle.AwayTeamID

	engine := NewEngine(testRatingConfig(), testLogger())
	result, err := engine.CalculateSeasonEfficiencies(context.Background(), dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p := result.Profiles[idleTeam]
	if p == nil {
		t.Fatalf("idle team should still receive a profile")
	}
	if p.GamesPlayed != 0 {
		t.Fatalf("idle team should have 0 games played, got %d", p.GamesPlayed)
	}
	if p.ConfidenceLevel != models.ConfidenceLow {
		t.Fatalf("zero-game team should have low confidence, got %s", p.ConfidenceLevel)
	}
	for _, m := range models.AllMetrics {
		if p.Efficiency.Get(m) != 0 {
			t.Fatalf("zero-game team should stay neutral, %s = %f", m, p.Efficiency.Get(m))
		}
	}
}

func TestEngineEmptyDatasetVacuouslyConverges(t *testing.T) {
	dataset := newTestDataset(2024)
	engine := NewEngine(testRatingConfig(), testLogger())

	result, err := engine.CalculateSeasonEfficiencies(context.Background(), dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Converged {
		t.Fatalf("expected empty season to converge vacuously")
	}
	if len(result.Profiles) != 0 {
		t.Fatalf("expected no profiles, got %d", len(result.Profiles))
	}
}

func TestEngineRespectsContextCancellation(t *testing.T) {
	dataset, _ := fourTeamRoundRobin(2024)
	engine := NewEngine(testRatingConfig(), testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.CalculateSeasonEfficiencies(ctx, dataset)
	if err == nil {
		t.Fatalf("expected context error")
	}
}

func TestEngineEfficiencySymmetry(t *testing.T) {
	// Two identical teams trading identical results must rate identically.
	dataset := newTestDataset(2024)
	home, away := uuid.New(), uuid.New()
	even := teamStats{points: 24, totalYards: 380, passingYards: 240, rushingYards: 140, takeaways: 1, turnovers: 1, fgMade: 1}
	addGame(dataset, 1, home, away, even, even)
	addGame(dataset, 2, away, home, even, even)

	engine := NewEngine(testRatingConfig(), testLogger())
	result, err := engine.CalculateSeasonEfficiencies(context.Background(), dataset)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ph, pa := result.Profiles[home], result.Profiles[away]
	for _, m := range models.AllMetrics {
		if diff := math.Abs(ph.Efficiency.Get(m) - pa.Efficiency.Get(m)); diff > 1e-9 {
			t.Fatalf("mirrored teams diverge on %s by %f", m, diff)
		}
	}
}
