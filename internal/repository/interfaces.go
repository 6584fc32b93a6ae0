package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gridiron-edge/internal/audit"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// TeamRepository defines operations for team data
type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetAll(ctx context.Context) ([]*models.Team, error)
	Upsert(ctx context.Context, team *models.Team) error
}

// GameRepository defines operations for games and their box scores
type GameRepository interface {
	Create(ctx context.Context, game *models.GameRecord) error
	CreateWithTx(ctx context.Context, tx pgx.Tx, game *models.GameRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.GameRecord, error)
	GetBySeason(ctx context.Context, season int) ([]*models.GameRecord, error)
	Update(ctx context.Context, game *models.GameRecord) error
	UpsertBoxScore(ctx context.Context, stats *models.BoxScoreStats) error
	GetBoxScores(ctx context.Context, gameID uuid.UUID) ([]*models.BoxScoreStats, error)
	LoadSeasonDataset(ctx context.Context, season int, complete bool) (*models.SeasonDataset, error)
}

// RatingRepository defines operations for team efficiency profiles
type RatingRepository interface {
	SaveProfile(ctx context.Context, profile *models.TeamEfficiencyProfile) error
	SaveSeason(ctx context.Context, season int, profiles map[uuid.UUID]*models.TeamEfficiencyProfile) error
	GetProfile(ctx context.Context, teamID uuid.UUID, season int) (*models.TeamEfficiencyProfile, error)
	GetSeason(ctx context.Context, season int) (map[uuid.UUID]*models.TeamEfficiencyProfile, error)
}

// WeightRepository defines operations for calibrated weight sets
type WeightRepository interface {
	Save(ctx context.Context, ws *models.WeightSet) error
	GetBySeason(ctx context.Context, season int) (*models.WeightSet, error)
	GetHistory(ctx context.Context, weightSetID uuid.UUID) ([]*models.WeightChange, error)
}

// OutcomeRepository defines operations for audited prediction outcomes
type OutcomeRepository interface {
	Save(ctx context.Context, outcome *audit.PredictionOutcome) error
	GetBySeason(ctx context.Context, season int) ([]audit.PredictionOutcome, error)
}
