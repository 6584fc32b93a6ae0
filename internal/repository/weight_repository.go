package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// PostgresWeightRepository implements WeightRepository for PostgreSQL.
// Weight maps are stored as JSONB; the change history is its own table so the
// audit trail survives weight-set rewrites.
type PostgresWeightRepository struct {
	db *database.DB
}

// NewPostgresWeightRepository creates a new weight repository
func NewPostgresWeightRepository(db *database.DB) WeightRepository {
	return &PostgresWeightRepository{db: db}
}

// Save writes the weight set and any unpersisted history entries atomically
func (r *PostgresWeightRepository) Save(ctx context.Context, ws *models.WeightSet) error {
	weightsJSON, err := json.Marshal(ws.Weights)
	if err != nil {
		return fmt.Errorf("failed to marshal weights: %w", err)
	}

	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO weight_sets (id, season, weights, updated_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (season) DO UPDATE SET
				weights = EXCLUDED.weights,
				updated_at = NOW()
		`
		if _, err := tx.Exec(ctx, query, ws.ID, ws.Season, weightsJSON); err != nil {
			return fmt.Errorf("failed to save weight set: %w", err)
		}

		for _, change := range ws.History {
			prevJSON, err := json.Marshal(change.PreviousWeights)
			if err != nil {
				return fmt.Errorf("failed to marshal previous weights: %w", err)
			}
			changeQuery := `
				INSERT INTO weight_changes (id, weight_set_id, previous_weights, reason, changed_by, changed_at)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (id) DO NOTHING
			`
			_, err = tx.Exec(ctx, changeQuery,
				change.ID, change.WeightSetID, prevJSON, change.Reason,
				change.ChangedBy, change.ChangedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to record weight change: %w", err)
			}
		}
		return nil
	})
}

// GetBySeason retrieves the weight set for a season, without its history
func (r *PostgresWeightRepository) GetBySeason(ctx context.Context, season int) (*models.WeightSet, error) {
	query := `
		SELECT id, season, weights, updated_at
		FROM weight_sets WHERE season = $1
	`

	ws := &models.WeightSet{}
	var weightsJSON []byte
	err := r.db.GetPool().QueryRow(ctx, query, season).Scan(
		&ws.ID, &ws.Season, &weightsJSON, &ws.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weight set: %w", err)
	}

	if err := json.Unmarshal(weightsJSON, &ws.Weights); err != nil {
		return nil, fmt.Errorf("failed to unmarshal weights: %w", err)
	}

	return ws, nil
}

// GetHistory retrieves a weight set's change trail, newest first
func (r *PostgresWeightRepository) GetHistory(ctx context.Context, weightSetID uuid.UUID) ([]*models.WeightChange, error) {
	query := `
		SELECT id, weight_set_id, previous_weights, reason, changed_by, changed_at
		FROM weight_changes
		WHERE weight_set_id = $1
		ORDER BY changed_at DESC
	`

	rows, err := r.db.GetPool().Query(ctx, query, weightSetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query weight history: %w", err)
	}
	defer rows.Close()

	var changes []*models.WeightChange
	for rows.Next() {
		change := &models.WeightChange{}
		var prevJSON []byte
		err := rows.Scan(
			&change.ID, &change.WeightSetID, &prevJSON, &change.Reason,
			&change.ChangedBy, &change.ChangedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan weight change: %w", err)
		}
		if err := json.Unmarshal(prevJSON, &change.PreviousWeights); err != nil {
			return nil, fmt.Errorf("failed to unmarshal previous weights: %w", err)
		}
		changes = append(changes, change)
	}

	return changes, rows.Err()
}
