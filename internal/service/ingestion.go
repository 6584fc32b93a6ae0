package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/yourusername/gridiron-edge/internal/datasource"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/repository"
)

const teamIndexCacheKey = "team_index"

// IngestionService handles the data ingestion workflow: fetch from sources,
// normalize, validate, persist.
type IngestionService struct {
	sources    []datasource.DataSource
	teamRepo   repository.TeamRepository
	gameRepo   repository.GameRepository
	validator  *DataValidator
	normalizer *DataNormalizer
	ingestion  *IngestionMetrics
	cache      *gocache.Cache
	logger     *log.Logger
	batchSize  int
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(
	sources []datasource.DataSource,
	teamRepo repository.TeamRepository,
	gameRepo repository.GameRepository,
	validator *DataValidator,
	normalizer *DataNormalizer,
	logger *log.Logger,
	batchSize int,
) *IngestionService {
	if batchSize <= 0 {
		batchSize = 100
	}

	return &IngestionService{
		sources:    sources,
		teamRepo:   teamRepo,
		gameRepo:   gameRepo,
		validator:  validator,
		normalizer: normalizer,
		ingestion:  NewIngestionMetrics(),
		cache:      gocache.New(10*time.Minute, 30*time.Minute),
		logger:     logger,
		batchSize:  batchSize,
	}
}

// SyncTeams fetches and upserts the team directory from a source
func (s *IngestionService) SyncTeams(ctx context.Context, sourceName string) error {
	source, err := s.findSource(sourceName)
	if err != nil {
		return err
	}

	teams, err := source.FetchTeams(ctx)
	if err != nil {
		metrics.RecordIngestionError(sourceName)
		return fmt.Errorf("failed to fetch teams: %w", err)
	}

	s.logger.Printf("Fetched %d teams from %s", len(teams), sourceName)

	index, err := s.teamIndex(ctx)
	if err != nil {
		return err
	}

	for i := range teams {
		team, err := s.normalizer.NormalizeTeam(&teams[i])
		if err != nil {
			s.ingestion.RecordError()
			continue
		}

		if validationErrors := s.validator.ValidateTeam(team); len(validationErrors) > 0 {
			s.ingestion.RecordValidationError()
			s.logger.Printf("Team validation failed for %q: %v", team.Name, validationErrors)
			continue
		}

		// Keep the stored ID stable across syncs.
		if existingID, ok := index[team.Name]; ok {
			team.ID = existingID
		}

		if err := s.teamRepo.Upsert(ctx, team); err != nil {
			s.ingestion.RecordError()
			s.logger.Printf("Failed to upsert team %q: %v", team.Name, err)
			continue
		}

		index[team.Name] = team.ID
		s.ingestion.RecordTeam()
	}

	s.cache.Set(teamIndexCacheKey, index, gocache.DefaultExpiration)
	return nil
}

// SyncSeason fetches and ingests one season's games and box scores from a
// source. A week of 0 syncs the full season.
func (s *IngestionService) SyncSeason(ctx context.Context, sourceName string, season, week int) (*IngestionMetrics, error) {
	s.ingestion.Reset()
	startTime := time.Now()

	source, err := s.findSource(sourceName)
	if err != nil {
		return nil, err
	}

	s.logger.Printf("Starting ingestion from %s for season %d week %d", sourceName, season, week)

	games, err := source.FetchGames(ctx, season, week)
	if err != nil {
		s.ingestion.RecordError()
		metrics.RecordIngestionError(sourceName)
		return s.ingestion, fmt.Errorf("failed to fetch games: %w", err)
	}

	s.logger.Printf("Fetched %d games from %s", len(games), sourceName)
	s.ingestion.TotalGames = len(games)

	existing, err := s.existingGameIndex(ctx, season)
	if err != nil {
		return s.ingestion, err
	}

	for i := 0; i < len(games); i += s.batchSize {
		end := i + s.batchSize
		if end > len(games) {
			end = len(games)
		}

		for j := i; j < end; j++ {
			if err := ctx.Err(); err != nil {
				return s.ingestion, err
			}
			if err := s.processGame(ctx, source, &games[j], existing); err != nil {
				s.ingestion.RecordError()
				s.logger.Printf("Error processing game %s: %v", games[j].SourceID, err)
			}
		}
	}

	s.ingestion.Duration = time.Since(startTime)
	metrics.RecordIngestionSync(s.ingestion.Duration.Seconds())
	s.logger.Printf("Ingestion complete: %s", s.ingestion.String())

	return s.ingestion, nil
}

// SyncCurrentWeek polls a source for the in-progress season's latest results
func (s *IngestionService) SyncCurrentWeek(ctx context.Context, sourceName string) error {
	season := currentSeason(time.Now())
	_, err := s.SyncSeason(ctx, sourceName, season, 0)
	return err
}

// processGame normalizes, validates, and persists a single game together with
// its box scores when completed
func (s *IngestionService) processGame(
	ctx context.Context,
	source datasource.DataSource,
	src *datasource.GameData,
	existing map[string]*models.GameRecord,
) error {
	homeID, err := s.resolveTeam(ctx, src.HomeTeam)
	if err != nil {
		return fmt.Errorf("failed to resolve home team: %w", err)
	}
	awayID, err := s.resolveTeam(ctx, src.AwayTeam)
	if err != nil {
		return fmt.Errorf("failed to resolve away team: %w", err)
	}

	game, err := s.normalizer.NormalizeGame(src, homeID, awayID)
	if err != nil {
		return fmt.Errorf("failed to normalize game: %w", err)
	}

	if validationErrors := s.validator.ValidateGame(game); len(validationErrors) > 0 {
		s.ingestion.RecordValidationError()
		return fmt.Errorf("game validation failed: %v", validationErrors)
	}

	key := gameKey(game.Season, game.Week, homeID, awayID)
	if prior, ok := existing[key]; ok {
		if prior.Completed {
			s.ingestion.RecordDuplicate()
			return nil
		}
		// Re-sync of a previously scheduled game carries its final score.
		game.ID = prior.ID
		game.CreatedAt = prior.CreatedAt
		if err := s.gameRepo.Update(ctx, game); err != nil {
			return fmt.Errorf("failed to update game: %w", err)
		}
	} else {
		if err := s.gameRepo.Create(ctx, game); err != nil {
			return fmt.Errorf("failed to create game: %w", err)
		}
		existing[key] = game
	}

	s.ingestion.RecordGame()
	metrics.RecordGameIngested()

	if game.Completed {
		if err := s.ingestBoxScores(ctx, source, src.SourceID, game); err != nil {
			s.logger.Printf("Failed to ingest box scores for game %s: %v", src.SourceID, err)
			s.ingestion.RecordError()
		}
	}

	return nil
}

// ingestBoxScores fetches and persists both teams' lines for a completed game
func (s *IngestionService) ingestBoxScores(
	ctx context.Context,
	source datasource.DataSource,
	sourceGameID string,
	game *models.GameRecord,
) error {
	lines, err := source.FetchBoxScores(ctx, sourceGameID)
	if err != nil {
		metrics.RecordIngestionError(source.Name())
		return err
	}

	for i := range lines {
		teamID, err := s.resolveTeam(ctx, lines[i].Team)
		if err != nil {
			s.ingestion.RecordError()
			continue
		}

		stats, err := s.normalizer.NormalizeBoxScore(&lines[i], game.ID, teamID)
		if err != nil {
			s.ingestion.RecordError()
			continue
		}

		if validationErrors := s.validator.ValidateBoxScore(stats); len(validationErrors) > 0 {
			s.ingestion.RecordValidationError()
			s.logger.Printf("Box score validation failed for team %q: %v", lines[i].Team, validationErrors)
			continue
		}

		if validationErrors := s.validator.ValidateBoxScoreInGame(stats, game); len(validationErrors) > 0 {
			s.ingestion.RecordValidationError()
			s.logger.Printf("Box score inconsistent with game: %v", validationErrors)
			continue
		}

		if err := s.gameRepo.UpsertBoxScore(ctx, stats); err != nil {
			s.ingestion.RecordError()
			continue
		}

		s.ingestion.RecordBoxScore()
		metrics.RecordBoxScoreIngested()
	}

	return nil
}

// resolveTeam maps a provider team name onto a stored team ID. Unknown names
// create a stub team so games never dangle; classification defaults to FCS
// until a directory sync corrects it.
func (s *IngestionService) resolveTeam(ctx context.Context, name string) (uuid.UUID, error) {
	canonical := s.normalizer.NormalizeTeamName(name)
	if canonical == "" {
		return uuid.Nil, fmt.Errorf("empty team name")
	}

	index, err := s.teamIndex(ctx)
	if err != nil {
		return uuid.Nil, err
	}

	if id, ok := index[canonical]; ok {
		return id, nil
	}

	team := &models.Team{
		ID:             uuid.New(),
		Name:           canonical,
		Classification: models.ClassificationFCS,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return uuid.Nil, fmt.Errorf("failed to create team %q: %w", canonical, err)
	}

	index[canonical] = team.ID
	s.cache.Set(teamIndexCacheKey, index, gocache.DefaultExpiration)
	s.logger.Printf("Created stub team %q", canonical)

	return team.ID, nil
}

// teamIndex returns the canonical-name -> ID lookup, cached between calls
func (s *IngestionService) teamIndex(ctx context.Context) (map[string]uuid.UUID, error) {
	if cached, ok := s.cache.Get(teamIndexCacheKey); ok {
		return cached.(map[string]uuid.UUID), nil
	}

	teams, err := s.teamRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load teams: %w", err)
	}

	index := make(map[string]uuid.UUID, len(teams))
	for _, t := range teams {
		index[t.Name] = t.ID
	}

	s.cache.Set(teamIndexCacheKey, index, gocache.DefaultExpiration)
	return index, nil
}

// existingGameIndex loads the season's stored games keyed by matchup
func (s *IngestionService) existingGameIndex(ctx context.Context, season int) (map[string]*models.GameRecord, error) {
	games, err := s.gameRepo.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load season games: %w", err)
	}

	index := make(map[string]*models.GameRecord, len(games))
	for _, g := range games {
		index[gameKey(g.Season, g.Week, g.HomeTeamID, g.AwayTeamID)] = g
	}
	return index, nil
}

func (s *IngestionService) findSource(name string) (datasource.DataSource, error) {
	for _, src := range s.sources {
		if src.Name() == name {
			return src, nil
		}
	}
	return nil, fmt.Errorf("data source not found: %s", name)
}

// GetMetrics returns current ingestion metrics
func (s *IngestionService) GetMetrics() *IngestionMetrics {
	return s.ingestion
}

func gameKey(season, week int, homeID, awayID uuid.UUID) string {
	return fmt.Sprintf("%d:%d:%s:%s", season, week, homeID, awayID)
}

// currentSeason maps a date onto the season it belongs to. Games through
// January's title game count toward the prior calendar year's season.
func currentSeason(now time.Time) int {
	if now.Month() < time.June {
		return now.Year() - 1
	}
	return now.Year()
}
