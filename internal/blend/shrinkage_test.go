package blend

import (
	"math"
	"testing"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

func completedDataset(season int) *models.SeasonDataset {
	return &models.SeasonDataset{
		Season:   season,
		Complete: true,
		Teams:    make(map[uuid.UUID]*models.Team),
	}
}

// anchorProfiles seeds enough reliable teams that the national averages are
// dominated by full-sample data.
func anchorProfiles(season int, profiles map[uuid.UUID]*models.TeamEfficiencyProfile) {
	for _, scoring := range []float64{5, -5, 3, -3} {
		id := uuid.New()
		profiles[id] = profileWith(id, season, 10, scoring)
	}
}

func TestShrinkagePullsThinSamplesHarder(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	dataset := completedDataset(2024)

	oneGame, tenGames := uuid.New(), uuid.New()
	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{
		oneGame:  profileWith(oneGame, 2024, 1, 20),
		tenGames: profileWith(tenGames, 2024, 10, 20),
	}
	anchorProfiles(2024, profiles)

	out, report := b.ApplyShrinkage(profiles, dataset)

	thin, full := out[oneGame], out[tenGames]
	if thin == nil || full == nil {
		t.Fatalf("both teams should survive shrinkage")
	}

	thinPull := math.Abs(20 - thin.Efficiency.OffenseScoring)
	fullPull := math.Abs(20 - full.Efficiency.OffenseScoring)
	if thinPull <= fullPull {
		t.Fatalf("1-game team pulled %f, 10-game team pulled %f; thin sample must move more", thinPull, fullPull)
	}
	if thin.ConfidenceLevel != models.ConfidenceLow {
		t.Fatalf("1-game team must be low confidence, got %s", thin.ConfidenceLevel)
	}
	if full.ConfidenceLevel != models.ConfidenceHigh {
		t.Fatalf("10-game team keeps high confidence, got %s", full.ConfidenceLevel)
	}
	if report.ReliableTeams < 4 {
		t.Fatalf("expected anchor teams counted as reliable, got %d", report.ReliableTeams)
	}
	// Original profiles untouched.
	if profiles[oneGame].Efficiency.OffenseScoring != 20 {
		t.Fatalf("input profile mutated")
	}
}

func TestShrinkageDropsBelowAbsoluteMinimum(t *testing.T) {
	cfg := testBlendingConfig()
	cfg.AbsoluteMinimumGames = 2
	b := newTestBlender(cfg)
	dataset := completedDataset(2024)

	dropped := uuid.New()
	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{
		dropped: profileWith(dropped, 2024, 1, 20),
	}
	anchorProfiles(2024, profiles)

	out, report := b.ApplyShrinkage(profiles, dataset)

	if _, ok := out[dropped]; ok {
		t.Fatalf("1-game team must be dropped at absolute minimum 2")
	}
	if len(report.Dropped) != 1 || report.Dropped[0] != dropped {
		t.Fatalf("dropped team must be reported, got %v", report.Dropped)
	}
}

func TestShrinkageClampsScoringBound(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	dataset := completedDataset(2024)

	extreme := uuid.New()
	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{
		extreme: profileWith(extreme, 2024, 12, 50),
	}
	anchorProfiles(2024, profiles)

	out, _ := b.ApplyShrinkage(profiles, dataset)

	if got := out[extreme].Efficiency.OffenseScoring; got != 30 {
		t.Fatalf("scoring efficiency must clamp at 30, got %f", got)
	}
}

func TestShrinkageFCSForcedLow(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	dataset := completedDataset(2024)

	fcs := uuid.New()
	dataset.Teams[fcs] = &models.Team{ID: fcs, Name: "Walk-on State", Classification: models.ClassificationFCS}

	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{
		fcs: profileWith(fcs, 2024, 10, 20),
	}
	anchorProfiles(2024, profiles)

	out, _ := b.ApplyShrinkage(profiles, dataset)

	p := out[fcs]
	if p.ConfidenceLevel != models.ConfidenceLow {
		t.Fatalf("FCS team must be forced to low confidence, got %s", p.ConfidenceLevel)
	}
	if p.Efficiency.OffenseScoring >= 20*fcsPullFactor+1 {
		t.Fatalf("FCS team must be pulled hard toward zero, got %f", p.Efficiency.OffenseScoring)
	}
}

func TestPseudoGamesTiers(t *testing.T) {
	b := newTestBlender(testBlendingConfig())

	cases := []struct {
		games int
		want  float64
	}{
		{12, 0},
		{8, lightShrinkageK},
		{5, moderateShrinkageK},
		{3, heavyShrinkageK},
		{1, veryHeavyShrinkageK},
	}
	for _, tc := range cases {
		if got := b.pseudoGames(tc.games, 5); got != tc.want {
			t.Fatalf("games %d: expected k=%f, got %f", tc.games, tc.want, got)
		}
	}
}

func TestNationalAveragesFallBackWhenNoReliableTeams(t *testing.T) {
	profiles := map[uuid.UUID]*models.TeamEfficiencyProfile{}
	for _, scoring := range []float64{10, 20} {
		id := uuid.New()
		profiles[id] = profileWith(id, 2024, 2, scoring)
	}

	avg, count := nationalAverages(profiles, 5)
	if count != 2 {
		t.Fatalf("expected fallback over all rated teams, got %d", count)
	}
	if math.Abs(avg.OffenseScoring-15) > 1e-9 {
		t.Fatalf("expected fallback average 15, got %f", avg.OffenseScoring)
	}
}
