package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/yourusername/gridiron-edge/internal/audit"
	"github.com/yourusername/gridiron-edge/internal/database"
)

// PostgresOutcomeRepository implements OutcomeRepository for PostgreSQL
type PostgresOutcomeRepository struct {
	db *database.DB
}

// NewPostgresOutcomeRepository creates a new outcome repository
func NewPostgresOutcomeRepository(db *database.DB) OutcomeRepository {
	return &PostgresOutcomeRepository{db: db}
}

// Save records one prediction's realized outcome for later audits
func (r *PostgresOutcomeRepository) Save(ctx context.Context, outcome *audit.PredictionOutcome) error {
	query := `
		INSERT INTO prediction_outcomes (game_id, season, home_win_probability,
			predicted_margin, predicted_total, actual_margin, actual_total,
			home_won, neutral_site, confidence_level)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (game_id) DO UPDATE SET
			home_win_probability = EXCLUDED.home_win_probability,
			predicted_margin = EXCLUDED.predicted_margin,
			predicted_total = EXCLUDED.predicted_total,
			actual_margin = EXCLUDED.actual_margin,
			actual_total = EXCLUDED.actual_total,
			home_won = EXCLUDED.home_won,
			neutral_site = EXCLUDED.neutral_site,
			confidence_level = EXCLUDED.confidence_level
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		outcome.GameID, outcome.Season,
		dec(outcome.HomeWinProbability), dec(outcome.PredictedMargin),
		dec(outcome.PredictedTotal), dec(outcome.ActualMargin), dec(outcome.ActualTotal),
		outcome.HomeWon, outcome.NeutralSite, outcome.ConfidenceLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to save prediction outcome: %w", err)
	}

	return nil
}

// GetBySeason retrieves every recorded outcome for a season
func (r *PostgresOutcomeRepository) GetBySeason(ctx context.Context, season int) ([]audit.PredictionOutcome, error) {
	query := `
		SELECT game_id, season, home_win_probability, predicted_margin,
		       predicted_total, actual_margin, actual_total, home_won,
		       neutral_site, confidence_level
		FROM prediction_outcomes
		WHERE season = $1
		ORDER BY game_id ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query prediction outcomes: %w", err)
	}
	defer rows.Close()

	var outcomes []audit.PredictionOutcome
	for rows.Next() {
		var o audit.PredictionOutcome
		var prob, pMargin, pTotal, aMargin, aTotal decimal.Decimal
		err := rows.Scan(
			&o.GameID, &o.Season, &prob, &pMargin, &pTotal, &aMargin, &aTotal,
			&o.HomeWon, &o.NeutralSite, &o.ConfidenceLevel,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prediction outcome: %w", err)
		}
		o.HomeWinProbability = prob.InexactFloat64()
		o.PredictedMargin = pMargin.InexactFloat64()
		o.PredictedTotal = pTotal.InexactFloat64()
		o.ActualMargin = aMargin.InexactFloat64()
		o.ActualTotal = aTotal.InexactFloat64()
		outcomes = append(outcomes, o)
	}

	return outcomes, rows.Err()
}
