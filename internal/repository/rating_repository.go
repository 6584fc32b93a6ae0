package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/models"
)

const ratingColumns = `team_id, season, games_played,
	       offense_total_yards, offense_passing_yards, offense_rushing_yards, offense_scoring,
	       defense_total_yards, defense_passing_yards, defense_rushing_yards, defense_scoring,
	       turnover_margin, field_goal,
	       convergence_score, confidence_level, updated_at`

// PostgresRatingRepository implements RatingRepository for PostgreSQL.
// Efficiency values are NUMERIC in the schema and round-trip through decimals
// here so storage precision is explicit; the core math never sees them.
type PostgresRatingRepository struct {
	db *database.DB
}

// NewPostgresRatingRepository creates a new rating repository
func NewPostgresRatingRepository(db *database.DB) RatingRepository {
	return &PostgresRatingRepository{db: db}
}

// queryExecer abstracts the pool and a transaction for writes
type queryExecer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// SaveProfile inserts or refreshes one team's season profile
func (r *PostgresRatingRepository) SaveProfile(ctx context.Context, profile *models.TeamEfficiencyProfile) error {
	return r.saveProfile(ctx, r.db.GetPool(), profile)
}

func (r *PostgresRatingRepository) saveProfile(ctx context.Context, q queryExecer, profile *models.TeamEfficiencyProfile) error {
	query := `
		INSERT INTO team_efficiency_profiles (team_id, season, games_played,
			offense_total_yards, offense_passing_yards, offense_rushing_yards, offense_scoring,
			defense_total_yards, defense_passing_yards, defense_rushing_yards, defense_scoring,
			turnover_margin, field_goal, convergence_score, confidence_level, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW())
		ON CONFLICT (team_id, season) DO UPDATE SET
			games_played = EXCLUDED.games_played,
			offense_total_yards = EXCLUDED.offense_total_yards,
			offense_passing_yards = EXCLUDED.offense_passing_yards,
			offense_rushing_yards = EXCLUDED.offense_rushing_yards,
			offense_scoring = EXCLUDED.offense_scoring,
			defense_total_yards = EXCLUDED.defense_total_yards,
			defense_passing_yards = EXCLUDED.defense_passing_yards,
			defense_rushing_yards = EXCLUDED.defense_rushing_yards,
			defense_scoring = EXCLUDED.defense_scoring,
			turnover_margin = EXCLUDED.turnover_margin,
			field_goal = EXCLUDED.field_goal,
			convergence_score = EXCLUDED.convergence_score,
			confidence_level = EXCLUDED.confidence_level,
			updated_at = NOW()
	`

	v := profile.Efficiency
	_, err := q.Exec(ctx, query,
		profile.TeamID, profile.Season, profile.GamesPlayed,
		dec(v.OffenseTotal), dec(v.OffensePassing), dec(v.OffenseRushing), dec(v.OffenseScoring),
		dec(v.DefenseTotal), dec(v.DefensePassing), dec(v.DefenseRushing), dec(v.DefenseScoring),
		dec(v.TurnoverMargin), dec(v.FieldGoal),
		dec(profile.ConvergenceScore), profile.ConfidenceLevel,
	)
	if err != nil {
		return fmt.Errorf("failed to save efficiency profile: %w", err)
	}

	return nil
}

// SaveSeason writes a full season's profiles inside one transaction, so a
// partially-written rating run can never be observed.
func (r *PostgresRatingRepository) SaveSeason(ctx context.Context, season int, profiles map[uuid.UUID]*models.TeamEfficiencyProfile) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, profile := range profiles {
			if profile.Season != season {
				return fmt.Errorf("profile for team %s belongs to season %d, not %d",
					profile.TeamID, profile.Season, season)
			}
			if err := r.saveProfile(ctx, tx, profile); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetProfile retrieves one team's season profile
func (r *PostgresRatingRepository) GetProfile(ctx context.Context, teamID uuid.UUID, season int) (*models.TeamEfficiencyProfile, error) {
	query := "SELECT " + ratingColumns + ` FROM team_efficiency_profiles
		WHERE team_id = $1 AND season = $2`

	profile, err := scanProfile(r.db.GetPool().QueryRow(ctx, query, teamID, season))
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get efficiency profile: %w", err)
	}
	return profile, nil
}

// GetSeason retrieves every rated team's profile for one season
func (r *PostgresRatingRepository) GetSeason(ctx context.Context, season int) (map[uuid.UUID]*models.TeamEfficiencyProfile, error) {
	query := "SELECT " + ratingColumns + ` FROM team_efficiency_profiles
		WHERE season = $1`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query season profiles: %w", err)
	}
	defer rows.Close()

	profiles := make(map[uuid.UUID]*models.TeamEfficiencyProfile)
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan efficiency profile: %w", err)
		}
		profiles[profile.TeamID] = profile
	}

	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*models.TeamEfficiencyProfile, error) {
	profile := &models.TeamEfficiencyProfile{}
	var (
		offTotal, offPass, offRush, offScore decimal.Decimal
		defTotal, defPass, defRush, defScore decimal.Decimal
		turnover, fieldGoal, convergence     decimal.Decimal
	)

	err := row.Scan(
		&profile.TeamID, &profile.Season, &profile.GamesPlayed,
		&offTotal, &offPass, &offRush, &offScore,
		&defTotal, &defPass, &defRush, &defScore,
		&turnover, &fieldGoal,
		&convergence, &profile.ConfidenceLevel, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	profile.Efficiency = models.EfficiencyVector{
		OffenseTotal:   offTotal.InexactFloat64(),
		OffensePassing: offPass.InexactFloat64(),
		OffenseRushing: offRush.InexactFloat64(),
		OffenseScoring: offScore.InexactFloat64(),
		DefenseTotal:   defTotal.InexactFloat64(),
		DefensePassing: defPass.InexactFloat64(),
		DefenseRushing: defRush.InexactFloat64(),
		DefenseScoring: defScore.InexactFloat64(),
		TurnoverMargin: turnover.InexactFloat64(),
		FieldGoal:      fieldGoal.InexactFloat64(),
	}
	profile.ConvergenceScore = convergence.InexactFloat64()
	return profile, nil
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}
