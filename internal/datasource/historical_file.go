package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

const historicalSourceName = "historical_file"

// HistoricalFileSource implements DataSource over local JSON season dumps,
// used to backfill past seasons without hammering the live API. Files live
// under root as <season>/games.json, <season>/teams.json, and
// <season>/boxscores/<game_id>.json.
type HistoricalFileSource struct {
	root    string
	enabled bool
	logger  *log.Logger
}

// NewHistoricalFileSource creates a file-backed data source
func NewHistoricalFileSource(root string, enabled bool, logger *log.Logger) *HistoricalFileSource {
	return &HistoricalFileSource{root: root, enabled: enabled, logger: logger}
}

// Name returns the data source name
func (s *HistoricalFileSource) Name() string {
	return historicalSourceName
}

// IsEnabled returns whether the source is enabled
func (s *HistoricalFileSource) IsEnabled() bool {
	return s.enabled
}

// FetchGames loads a season's games from disk. Week filtering happens after
// load; dumps are per-season files.
func (s *HistoricalFileSource) FetchGames(ctx context.Context, season, week int) ([]GameData, error) {
	if !s.enabled {
		return nil, NewDataSourceError(historicalSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var games []GameData
	if err := s.readJSON(filepath.Join(s.root, fmt.Sprintf("%d", season), "games.json"), &games); err != nil {
		return nil, err
	}

	if week <= 0 {
		return games, nil
	}
	filtered := games[:0]
	for _, g := range games {
		if g.Week == week {
			filtered = append(filtered, g)
		}
	}
	return filtered, nil
}

// FetchBoxScores loads one game's box score dump
func (s *HistoricalFileSource) FetchBoxScores(ctx context.Context, sourceGameID string) ([]BoxScoreData, error) {
	if !s.enabled {
		return nil, NewDataSourceError(historicalSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pattern := filepath.Join(s.root, "*", "boxscores", sourceGameID+".json")
	matches, err := filepath.Glob(pattern)
	if err != nil || len(matches) == 0 {
		return nil, NewDataSourceError(historicalSourceName, ErrCodeNotFound,
			fmt.Sprintf("no box score dump for game %s", sourceGameID), ErrNotFound)
	}

	var scores []BoxScoreData
	if err := s.readJSON(matches[0], &scores); err != nil {
		return nil, err
	}
	return scores, nil
}

// FetchTeams loads the most recent season's team directory
func (s *HistoricalFileSource) FetchTeams(ctx context.Context) ([]TeamData, error) {
	if !s.enabled {
		return nil, NewDataSourceError(historicalSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	matches, err := filepath.Glob(filepath.Join(s.root, "*", "teams.json"))
	if err != nil || len(matches) == 0 {
		return nil, NewDataSourceError(historicalSourceName, ErrCodeNotFound, "no team dumps found", ErrNotFound)
	}

	// Glob output is sorted; the last match is the latest season.
	var teams []TeamData
	if err := s.readJSON(matches[len(matches)-1], &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (s *HistoricalFileSource) readJSON(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewDataSourceError(historicalSourceName, ErrCodeNotFound, path, ErrNotFound)
		}
		return NewDataSourceError(historicalSourceName, ErrCodeUnknown, "failed to read dump", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return NewDataSourceError(historicalSourceName, ErrCodeInvalidData, "failed to parse dump", err)
	}
	return nil
}
