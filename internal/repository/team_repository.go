package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/models"
)

const errScanTeam = "failed to scan team: %w"

// PostgresTeamRepository implements TeamRepository for PostgreSQL
type PostgresTeamRepository struct {
	db *database.DB
}

// NewPostgresTeamRepository creates a new team repository
func NewPostgresTeamRepository(db *database.DB) TeamRepository {
	return &PostgresTeamRepository{db: db}
}

// Create inserts a new team
func (r *PostgresTeamRepository) Create(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, abbreviation, conference, classification)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.Name, team.Abbreviation, team.Conference, team.Classification,
	)
	if err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}

	return nil
}

// GetByID retrieves a team by ID
func (r *PostgresTeamRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	query := `
		SELECT id, name, abbreviation, conference, classification, created_at
		FROM teams WHERE id = $1
	`

	team := &models.Team{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Abbreviation, &team.Conference,
		&team.Classification, &team.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}

	return team, nil
}

// GetAll retrieves every known team ordered by name
func (r *PostgresTeamRepository) GetAll(ctx context.Context) ([]*models.Team, error) {
	query := `
		SELECT id, name, abbreviation, conference, classification, created_at
		FROM teams
		ORDER BY name ASC
	`

	rows, err := r.db.GetPool().Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var teams []*models.Team
	for rows.Next() {
		team := &models.Team{}
		err := rows.Scan(
			&team.ID, &team.Name, &team.Abbreviation, &team.Conference,
			&team.Classification, &team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		teams = append(teams, team)
	}

	return teams, rows.Err()
}

// Upsert inserts or refreshes a team by ID, used during ingestion
func (r *PostgresTeamRepository) Upsert(ctx context.Context, team *models.Team) error {
	query := `
		INSERT INTO teams (id, name, abbreviation, conference, classification)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			abbreviation = EXCLUDED.abbreviation,
			conference = EXCLUDED.conference,
			classification = EXCLUDED.classification
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		team.ID, team.Name, team.Abbreviation, team.Conference, team.Classification,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert team: %w", err)
	}

	return nil
}
