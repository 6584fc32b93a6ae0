package blend

import (
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
)

func testBlendingConfig() config.BlendingConfig {
	return config.BlendingConfig{
		BlendGameThreshold:   4,
		CurrentSeasonWeight:  0.85,
		PriorSeasonWeight:    0.15,
		MinGamesCompleted:    5,
		MinGamesInProgress:   4,
		AbsoluteMinimumGames: 1,
		NoShrinkageGames:     12,
		LightShrinkageGames:  8,
	}
}

func newTestBlender(cfg config.BlendingConfig) *Blender {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return NewBlender(cfg, log)
}

func profileWith(id uuid.UUID, season, games int, scoring float64) *models.TeamEfficiencyProfile {
	p := models.NewNeutralProfile(id, season)
	p.GamesPlayed = games
	p.ConfidenceLevel = models.ConfidenceFromGames(games)
	p.Efficiency.OffenseScoring = scoring
	return p
}

func TestBlendUsesPriorUnderThreshold(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	id := uuid.New()

	current := profileWith(id, 2024, 2, 10)
	prior := profileWith(id, 2023, 12, 20)

	out := b.Blend(current, prior)

	want := 0.85*10 + 0.15*20
	if math.Abs(out.Efficiency.OffenseScoring-want) > 1e-9 {
		t.Fatalf("expected blended scoring %f, got %f", want, out.Efficiency.OffenseScoring)
	}
	if out.ConfidenceLevel.Score() > models.ConfidenceMedium.Score() {
		t.Fatalf("blended profile confidence must be capped at medium, got %s", out.ConfidenceLevel)
	}
	if current.Efficiency.OffenseScoring != 10 {
		t.Fatalf("input profile must not be mutated")
	}
}

func TestBlendPassThroughAtThreshold(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	id := uuid.New()

	current := profileWith(id, 2024, 4, 10)
	prior := profileWith(id, 2023, 12, 20)

	out := b.Blend(current, prior)
	if out.Efficiency.OffenseScoring != 10 {
		t.Fatalf("at threshold the current season stands alone, got %f", out.Efficiency.OffenseScoring)
	}
}

func TestBlendWithoutPriorPassesThrough(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	id := uuid.New()

	current := profileWith(id, 2024, 1, 10)
	out := b.Blend(current, nil)
	if out.Efficiency.OffenseScoring != 10 {
		t.Fatalf("no prior means nothing to blend, got %f", out.Efficiency.OffenseScoring)
	}
}

func TestBlendSeasonLooksUpPriors(t *testing.T) {
	b := newTestBlender(testBlendingConfig())
	thin, full := uuid.New(), uuid.New()

	current := map[uuid.UUID]*models.TeamEfficiencyProfile{
		thin: profileWith(thin, 2024, 2, 10),
		full: profileWith(full, 2024, 9, 10),
	}
	priors := map[uuid.UUID]*models.TeamEfficiencyProfile{
		thin: profileWith(thin, 2023, 12, 20),
		full: profileWith(full, 2023, 12, 20),
	}

	out := b.BlendSeason(current, priors)
	if out[thin].Efficiency.OffenseScoring == 10 {
		t.Fatalf("thin profile should have been blended")
	}
	if out[full].Efficiency.OffenseScoring != 10 {
		t.Fatalf("full profile should pass through, got %f", out[full].Efficiency.OffenseScoring)
	}
}
