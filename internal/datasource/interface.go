// Package datasource fetches college football schedules, results, and box
// scores from external providers and normalizes them for ingestion.
package datasource

import (
	"context"
	"errors"
	"time"
)

// DataSource defines the interface for fetching game data from external providers
type DataSource interface {
	// FetchGames retrieves a season's games, optionally narrowed to one week
	// (week 0 means the full season)
	FetchGames(ctx context.Context, season, week int) ([]GameData, error)

	// FetchBoxScores retrieves both teams' statistical lines for a game
	FetchBoxScores(ctx context.Context, sourceGameID string) ([]BoxScoreData, error)

	// FetchTeams retrieves the provider's team directory
	FetchTeams(ctx context.Context) ([]TeamData, error)

	// Name returns the name of the data source
	Name() string

	// IsEnabled returns whether this data source is currently enabled
	IsEnabled() bool
}

// GameData represents a normalized game from any data source
type GameData struct {
	SourceID     string    `json:"source_id"`      // Provider's unique game ID
	Season       int       `json:"season"`         // Season year
	Week         int       `json:"week"`           // Week of season
	HomeTeam     string    `json:"home_team"`      // Home team name
	AwayTeam     string    `json:"away_team"`      // Away team name
	HomeScore    *int      `json:"home_score"`     // Final home score, nil until played
	AwayScore    *int      `json:"away_score"`     // Final away score, nil until played
	NeutralSite  bool      `json:"neutral_site"`   // Played on a neutral field
	Completed    bool      `json:"completed"`      // Game has finished
	KickoffTime  time.Time `json:"kickoff_time"`   // Kickoff UTC
	CreatedAt    time.Time `json:"created_at"`     // When data was fetched
}

// TeamData represents a normalized team from any data source
type TeamData struct {
	SourceID       string `json:"source_id"`       // Provider's unique team ID
	Name           string `json:"name"`            // Team name
	Abbreviation   string `json:"abbreviation"`    // Short code
	Conference     string `json:"conference"`      // Conference name
	Classification string `json:"classification"`  // fbs or fcs
}

// BoxScoreData represents one team's normalized statistical line in one game
type BoxScoreData struct {
	SourceGameID         string `json:"source_game_id"`
	Team                 string `json:"team"`
	Points               int    `json:"points"`
	TotalYards           int    `json:"total_yards"`
	PassingYards         int    `json:"passing_yards"`
	RushingYards         int    `json:"rushing_yards"`
	Turnovers            int    `json:"turnovers"`
	Takeaways            int    `json:"takeaways"`
	Sacks                int    `json:"sacks"`
	FieldGoalsMade       int    `json:"field_goals_made"`
	FieldGoalsAttempted  int    `json:"field_goals_attempted"`
	ThirdDownConversions int    `json:"third_down_conversions"`
	ThirdDownAttempts    int    `json:"third_down_attempts"`
	RedZoneScores        int    `json:"red_zone_scores"`
	RedZoneAttempts      int    `json:"red_zone_attempts"`
}

// DataSourceError represents errors from data source operations
type DataSourceError struct {
	Source  string // Data source name
	Code    string // Error code (e.g., "rate_limit_exceeded")
	Message string // Error message
	Err     error  // Underlying error
}

func (e DataSourceError) Error() string {
	if e.Err != nil {
		return e.Source + ": " + e.Code + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Source + ": " + e.Code + ": " + e.Message
}

func (e DataSourceError) Unwrap() error {
	return e.Err
}

// Common error codes
const (
	ErrCodeRateLimitExceeded    = "rate_limit_exceeded"
	ErrCodeAuthenticationFailed = "authentication_failed"
	ErrCodeNotFound             = "not_found"
	ErrCodeInvalidData          = "invalid_data"
	ErrCodeNetworkError         = "network_error"
	ErrCodeServerError          = "server_error"
	ErrCodeUnknown              = "unknown"
)

// Error constructors
var (
	ErrRateLimitExceeded    = errors.New("rate limit exceeded")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("data not found")
	ErrInvalidData          = errors.New("invalid data format")
	ErrNetworkError         = errors.New("network error")
	ErrServerError          = errors.New("server error")
)

const dataSourceDisabledMsg = "data source is disabled"

// NewDataSourceError creates a new data source error
func NewDataSourceError(source, code, message string, err error) DataSourceError {
	return DataSourceError{
		Source:  source,
		Code:    code,
		Message: message,
		Err:     err,
	}
}
