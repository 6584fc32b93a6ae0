package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/models"
)

const (
	errScanGame     = "failed to scan game: %w"
	errScanBoxScore = "failed to scan box score: %w"

	gameColumns = `id, season, week, home_team_id, away_team_id, home_score, away_score,
	       neutral_site, completed, kickoff_at, created_at`
)

// PostgresGameRepository implements GameRepository for PostgreSQL
type PostgresGameRepository struct {
	db *database.DB
}

// NewPostgresGameRepository creates a new game repository
func NewPostgresGameRepository(db *database.DB) GameRepository {
	return &PostgresGameRepository{db: db}
}

// Create inserts a new game
func (r *PostgresGameRepository) Create(ctx context.Context, game *models.GameRecord) error {
	query := `
		INSERT INTO games (id, season, week, home_team_id, away_team_id, home_score,
		                   away_score, neutral_site, completed, kickoff_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.Season, game.Week, game.HomeTeamID, game.AwayTeamID,
		game.HomeScore, game.AwayScore, game.NeutralSite, game.Completed, game.KickoffAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game: %w", err)
	}

	return nil
}

// CreateWithTx inserts a new game using a provided transaction
func (r *PostgresGameRepository) CreateWithTx(ctx context.Context, tx pgx.Tx, game *models.GameRecord) error {
	query := `
		INSERT INTO games (id, season, week, home_team_id, away_team_id, home_score,
		                   away_score, neutral_site, completed, kickoff_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := tx.Exec(ctx, query,
		game.ID, game.Season, game.Week, game.HomeTeamID, game.AwayTeamID,
		game.HomeScore, game.AwayScore, game.NeutralSite, game.Completed, game.KickoffAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create game within transaction: %w", err)
	}

	return nil
}

// GetByID retrieves a game by ID
func (r *PostgresGameRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.GameRecord, error) {
	query := "SELECT " + gameColumns + " FROM games WHERE id = $1"

	game := &models.GameRecord{}
	err := r.db.GetPool().QueryRow(ctx, query, id).Scan(
		&game.ID, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
		&game.HomeScore, &game.AwayScore, &game.NeutralSite, &game.Completed,
		&game.KickoffAt, &game.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}

	return game, nil
}

// GetBySeason retrieves all of a season's games in kickoff order
func (r *PostgresGameRepository) GetBySeason(ctx context.Context, season int) ([]*models.GameRecord, error) {
	query := "SELECT " + gameColumns + ` FROM games
		WHERE season = $1
		ORDER BY kickoff_at ASC, id ASC`

	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query season games: %w", err)
	}
	defer rows.Close()

	var games []*models.GameRecord
	for rows.Next() {
		game := &models.GameRecord{}
		err := rows.Scan(
			&game.ID, &game.Season, &game.Week, &game.HomeTeamID, &game.AwayTeamID,
			&game.HomeScore, &game.AwayScore, &game.NeutralSite, &game.Completed,
			&game.KickoffAt, &game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanGame, err)
		}
		games = append(games, game)
	}

	return games, rows.Err()
}

// Update updates a game's score and completion state
func (r *PostgresGameRepository) Update(ctx context.Context, game *models.GameRecord) error {
	query := `
		UPDATE games SET
			home_score = $2, away_score = $3, completed = $4
		WHERE id = $1
	`

	commandTag, err := r.db.GetPool().Exec(ctx, query,
		game.ID, game.HomeScore, game.AwayScore, game.Completed,
	)
	if err != nil {
		return fmt.Errorf("failed to update game: %w", err)
	}

	if commandTag.RowsAffected() == 0 {
		return models.ErrNotFound
	}

	return nil
}

// UpsertBoxScore inserts or refreshes one team's line for one game
func (r *PostgresGameRepository) UpsertBoxScore(ctx context.Context, stats *models.BoxScoreStats) error {
	query := `
		INSERT INTO box_scores (game_id, team_id, points, total_yards, passing_yards,
		                        rushing_yards, turnovers, takeaways, sacks,
		                        field_goals_made, field_goals_attempted,
		                        third_down_conversions, third_down_attempts,
		                        red_zone_scores, red_zone_attempts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (game_id, team_id) DO UPDATE SET
			points = EXCLUDED.points,
			total_yards = EXCLUDED.total_yards,
			passing_yards = EXCLUDED.passing_yards,
			rushing_yards = EXCLUDED.rushing_yards,
			turnovers = EXCLUDED.turnovers,
			takeaways = EXCLUDED.takeaways,
			sacks = EXCLUDED.sacks,
			field_goals_made = EXCLUDED.field_goals_made,
			field_goals_attempted = EXCLUDED.field_goals_attempted,
			third_down_conversions = EXCLUDED.third_down_conversions,
			third_down_attempts = EXCLUDED.third_down_attempts,
			red_zone_scores = EXCLUDED.red_zone_scores,
			red_zone_attempts = EXCLUDED.red_zone_attempts
	`

	_, err := r.db.GetPool().Exec(ctx, query,
		stats.GameID, stats.TeamID, stats.Points, stats.TotalYards, stats.PassingYards,
		stats.RushingYards, stats.Turnovers, stats.Takeaways, stats.Sacks,
		stats.FieldGoalsMade, stats.FieldGoalsAttempted,
		stats.ThirdDownConversions, stats.ThirdDownAttempts,
		stats.RedZoneScores, stats.RedZoneAttempts,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert box score: %w", err)
	}

	return nil
}

// GetBoxScores retrieves both teams' lines for one game
func (r *PostgresGameRepository) GetBoxScores(ctx context.Context, gameID uuid.UUID) ([]*models.BoxScoreStats, error) {
	query := `
		SELECT game_id, team_id, points, total_yards, passing_yards, rushing_yards,
		       turnovers, takeaways, sacks, field_goals_made, field_goals_attempted,
		       third_down_conversions, third_down_attempts, red_zone_scores,
		       red_zone_attempts, created_at
		FROM box_scores WHERE game_id = $1
	`

	rows, err := r.db.GetPool().Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to query box scores: %w", err)
	}
	defer rows.Close()

	return scanBoxScores(rows)
}

// LoadSeasonDataset assembles the full input bundle for one season's rating
// run in a single pass: games, box scores, and team classifications.
func (r *PostgresGameRepository) LoadSeasonDataset(ctx context.Context, season int, complete bool) (*models.SeasonDataset, error) {
	dataset := &models.SeasonDataset{
		Season:    season,
		Complete:  complete,
		BoxScores: make(map[uuid.UUID]map[uuid.UUID]*models.BoxScoreStats),
		Teams:     make(map[uuid.UUID]*models.Team),
	}

	games, err := r.GetBySeason(ctx, season)
	if err != nil {
		return nil, err
	}
	dataset.Games = games

	query := `
		SELECT b.game_id, b.team_id, b.points, b.total_yards, b.passing_yards,
		       b.rushing_yards, b.turnovers, b.takeaways, b.sacks,
		       b.field_goals_made, b.field_goals_attempted,
		       b.third_down_conversions, b.third_down_attempts,
		       b.red_zone_scores, b.red_zone_attempts, b.created_at
		FROM box_scores b
		JOIN games g ON g.id = b.game_id
		WHERE g.season = $1
	`
	rows, err := r.db.GetPool().Query(ctx, query, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query season box scores: %w", err)
	}
	defer rows.Close()

	scores, err := scanBoxScores(rows)
	if err != nil {
		return nil, err
	}
	for _, s := range scores {
		if dataset.BoxScores[s.GameID] == nil {
			dataset.BoxScores[s.GameID] = make(map[uuid.UUID]*models.BoxScoreStats, 2)
		}
		dataset.BoxScores[s.GameID][s.TeamID] = s
	}

	teamQuery := `
		SELECT DISTINCT t.id, t.name, t.abbreviation, t.conference, t.classification, t.created_at
		FROM teams t
		JOIN games g ON t.id IN (g.home_team_id, g.away_team_id)
		WHERE g.season = $1
	`
	teamRows, err := r.db.GetPool().Query(ctx, teamQuery, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query season teams: %w", err)
	}
	defer teamRows.Close()

	for teamRows.Next() {
		team := &models.Team{}
		err := teamRows.Scan(
			&team.ID, &team.Name, &team.Abbreviation, &team.Conference,
			&team.Classification, &team.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanTeam, err)
		}
		dataset.Teams[team.ID] = team
	}

	return dataset, teamRows.Err()
}

func scanBoxScores(rows pgx.Rows) ([]*models.BoxScoreStats, error) {
	var scores []*models.BoxScoreStats
	for rows.Next() {
		s := &models.BoxScoreStats{}
		err := rows.Scan(
			&s.GameID, &s.TeamID, &s.Points, &s.TotalYards, &s.PassingYards,
			&s.RushingYards, &s.Turnovers, &s.Takeaways, &s.Sacks,
			&s.FieldGoalsMade, &s.FieldGoalsAttempted,
			&s.ThirdDownConversions, &s.ThirdDownAttempts,
			&s.RedZoneScores, &s.RedZoneAttempts, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errScanBoxScore, err)
		}
		scores = append(scores, s)
	}
	return scores, rows.Err()
}
