package service

import (
	"io"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/datasource"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func validGame() *models.GameRecord {
	return &models.GameRecord{
		ID:         uuid.New(),
		Season:     2024,
		Week:       5,
		HomeTeamID: uuid.New(),
		AwayTeamID: uuid.New(),
		HomeScore:  28,
		AwayScore:  17,
		Completed:  true,
		KickoffAt:  time.Now().Add(-48 * time.Hour),
	}
}

func TestValidateGameAcceptsValidGame(t *testing.T) {
	v := NewDataValidator(discardLogger())
	if errs := v.ValidateGame(validGame()); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}
}

func TestValidateGameRejectsSelfPlay(t *testing.T) {
	v := NewDataValidator(discardLogger())
	g := validGame()
	g.AwayTeamID = g.HomeTeamID
	if errs := v.ValidateGame(g); len(errs) == 0 {
		t.Fatal("expected self-play to be rejected")
	}
}

func TestValidateGameRejectsAbsurdScore(t *testing.T) {
	v := NewDataValidator(discardLogger())
	g := validGame()
	g.HomeScore = 200
	if errs := v.ValidateGame(g); len(errs) == 0 {
		t.Fatal("expected out-of-range score to be rejected")
	}
}

func TestValidateBoxScoreRejectsImpossibleLines(t *testing.T) {
	v := NewDataValidator(discardLogger())
	stats := &models.BoxScoreStats{
		GameID:              uuid.New(),
		TeamID:              uuid.New(),
		Points:              21,
		TotalYards:          380,
		FieldGoalsMade:      4,
		FieldGoalsAttempted: 2,
	}
	errs := v.ValidateBoxScore(stats)
	if len(errs) != 1 {
		t.Fatalf("expected exactly the field goal error, got %v", errs)
	}
}

func TestValidateBoxScoreInGameChecksFinalScore(t *testing.T) {
	v := NewDataValidator(discardLogger())
	g := validGame()
	stats := &models.BoxScoreStats{GameID: g.ID, TeamID: g.HomeTeamID, Points: 14}
	if errs := v.ValidateBoxScoreInGame(stats, g); len(errs) == 0 {
		t.Fatal("expected disagreement with final score to be flagged")
	}
	stats.Points = g.HomeScore
	if errs := v.ValidateBoxScoreInGame(stats, g); len(errs) != 0 {
		t.Fatalf("expected agreement to pass, got %v", errs)
	}
}

func TestNormalizeTeamNameCanonicalizes(t *testing.T) {
	n := NewDataNormalizer(discardLogger())

	cases := map[string]string{
		"OHIO ST":   "Ohio State",
		"ole miss":  "Mississippi",
		"Pitt":      "Pittsburgh",
		"  Georgia ": "Georgia",
	}
	for in, want := range cases {
		if got := n.NormalizeTeamName(in); got != want {
			t.Errorf("NormalizeTeamName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeTeamDefaultsUnknownClassificationToFCS(t *testing.T) {
	n := NewDataNormalizer(discardLogger())
	team, err := n.NormalizeTeam(&datasource.TeamData{Name: "Carson-Newman", Classification: "ii"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if team.Classification != models.ClassificationFCS {
		t.Fatalf("expected fcs, got %s", team.Classification)
	}
}

func TestNormalizeGameUnflagsCompletedWithoutScores(t *testing.T) {
	n := NewDataNormalizer(discardLogger())
	src := &datasource.GameData{
		SourceID:    "g1",
		Season:      2024,
		Week:        3,
		HomeTeam:    "Georgia",
		AwayTeam:    "Clemson",
		Completed:   true,
		KickoffTime: time.Now(),
	}
	game, err := n.NormalizeGame(src, uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if game.Completed {
		t.Fatal("completed flag must drop when scores are missing")
	}
}

func TestCurrentSeasonSpansJanuary(t *testing.T) {
	jan := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)
	if got := currentSeason(jan); got != 2024 {
		t.Fatalf("January games belong to the prior season, got %d", got)
	}
	sep := time.Date(2025, time.September, 6, 0, 0, 0, 0, time.UTC)
	if got := currentSeason(sep); got != 2025 {
		t.Fatalf("expected 2025, got %d", got)
	}
}

func TestIngestionMetricsSuccessRate(t *testing.T) {
	m := NewIngestionMetrics()
	m.TotalGames = 4
	m.RecordGame()
	m.RecordGame()
	m.RecordDuplicate()
	m.RecordValidationError()

	s := m.String()
	if s == "" {
		t.Fatal("expected a formatted summary")
	}
	if m.SuccessfulGames != 2 || m.Duplicates != 1 || m.ValidationErrors != 1 {
		t.Fatalf("counters off: %+v", m)
	}
}
