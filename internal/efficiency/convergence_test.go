package efficiency

import (
	"testing"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

func TestDetermineConvergenceEmptyMapsVacuouslyTrue(t *testing.T) {
	prev := map[uuid.UUID]*models.TeamEfficiencyProfile{}
	curr := map[uuid.UUID]*models.TeamEfficiencyProfile{}

	status := DetermineConvergence(prev, curr, 0.001, 0.98)
	if !status.Converged {
		t.Fatalf("expected empty snapshots to be vacuously converged")
	}
	if status.MaxChange != 0 {
		t.Fatalf("expected zero max change, got %f", status.MaxChange)
	}
}

func TestDetermineConvergenceUnderThreshold(t *testing.T) {
	id := uuid.New()
	prev := map[uuid.UUID]*models.TeamEfficiencyProfile{id: models.NewNeutralProfile(id, 2024)}
	curr := map[uuid.UUID]*models.TeamEfficiencyProfile{id: models.NewNeutralProfile(id, 2024)}
	curr[id].Efficiency.OffenseScoring = 0.0005

	status := DetermineConvergence(prev, curr, 0.001, 0.98)
	if !status.Converged {
		t.Fatalf("expected convergence for change below threshold")
	}
	if status.TeamsConverged != 1 {
		t.Fatalf("expected 1 team converged, got %d", status.TeamsConverged)
	}
}

func TestDetermineConvergenceQuorumNotMet(t *testing.T) {
	prev := map[uuid.UUID]*models.TeamEfficiencyProfile{}
	curr := map[uuid.UUID]*models.TeamEfficiencyProfile{}

	// 1 of 2 teams converged: quorum of 0.98 not met, global change above
	// threshold/10, so the iteration has not converged.
	for i, change := range []float64{0.0, 0.0005} {
		id := uuid.New()
		prev[id] = models.NewNeutralProfile(id, 2024)
		curr[id] = models.NewNeutralProfile(id, 2024)
		curr[id].Efficiency.OffenseTotal = change + float64(i)*0.01
	}

	status := DetermineConvergence(prev, curr, 0.001, 0.98)
	if status.Converged {
		t.Fatalf("expected non-convergence when quorum not met")
	}
}

func TestDetermineConvergenceTightGlobalChangeOverridesQuorum(t *testing.T) {
	prev := map[uuid.UUID]*models.TeamEfficiencyProfile{}
	curr := map[uuid.UUID]*models.TeamEfficiencyProfile{}

	// Every team moves, but by less than threshold/10.
	for i := 0; i < 10; i++ {
		id := uuid.New()
		prev[id] = models.NewNeutralProfile(id, 2024)
		curr[id] = models.NewNeutralProfile(id, 2024)
		curr[id].Efficiency.OffenseScoring = 0.00005
	}

	status := DetermineConvergence(prev, curr, 0.001, 0.98)
	if !status.Converged {
		t.Fatalf("expected convergence when max change is an order of magnitude under threshold")
	}
}

func TestConvergenceScoreBounds(t *testing.T) {
	if s := convergenceScore(0); s != 1.0 {
		t.Fatalf("expected score 1.0 for no change, got %f", s)
	}
	if s := convergenceScore(100); s != 0.0 {
		t.Fatalf("expected score 0.0 for huge change, got %f", s)
	}
	if s := convergenceScore(5); s <= 0 || s >= 1 {
		t.Fatalf("expected interior score for moderate change, got %f", s)
	}
}
