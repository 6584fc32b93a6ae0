// Package blend merges sparse current-season efficiency profiles with
// prior-season priors and applies Bayesian shrinkage toward national averages.
package blend

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// Blender adjusts raw engine output for small sample sizes
type Blender struct {
	cfg   config.BlendingConfig
	log   *logrus.Logger
	audit *logger.AuditLogger
}

// NewBlender creates a new profile blender
func NewBlender(cfg config.BlendingConfig, log *logrus.Logger) *Blender {
	return &Blender{
		cfg:   cfg,
		log:   log,
		audit: logger.NewAuditLogger(log),
	}
}

// Blend merges a thin current-season profile with the team's prior-season
// profile at the configured weights. Teams at or above the game threshold, or
// without a prior, pass through untouched. A blended profile's confidence is
// capped at medium: part of it is last year's team.
func (b *Blender) Blend(current, prior *models.TeamEfficiencyProfile) *models.TeamEfficiencyProfile {
	if current == nil {
		return nil
	}
	if prior == nil || current.GamesPlayed >= b.cfg.BlendGameThreshold {
		return current.Clone()
	}

	out := current.Clone()
	for _, m := range models.AllMetrics {
		blended := b.cfg.CurrentSeasonWeight*current.Efficiency.Get(m) +
			b.cfg.PriorSeasonWeight*prior.Efficiency.Get(m)
		out.Efficiency.Set(m, blended)
	}
	out.ConfidenceLevel = out.ConfidenceLevel.Cap(models.ConfidenceMedium)

	b.log.WithFields(logrus.Fields{
		"team_id":      current.TeamID,
		"season":       current.Season,
		"games_played": current.GamesPlayed,
		"prior_season": prior.Season,
	}).Debug("Blended profile with prior season")

	return out
}

// BlendSeason applies Blend across a full season's profiles, looking up each
// team's prior-season profile by team ID. Teams without a prior pass through.
func (b *Blender) BlendSeason(
	current map[uuid.UUID]*models.TeamEfficiencyProfile,
	priors map[uuid.UUID]*models.TeamEfficiencyProfile,
) map[uuid.UUID]*models.TeamEfficiencyProfile {
	out := make(map[uuid.UUID]*models.TeamEfficiencyProfile, len(current))
	for id, p := range current {
		out[id] = b.Blend(p, priors[id])
	}
	return out
}
