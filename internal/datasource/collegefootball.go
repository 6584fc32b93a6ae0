package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

const cfbSourceName = "college_football_api"

// CollegeFootballClient implements DataSource for a CFB stats API
type CollegeFootballClient struct {
	httpClient *RateLimitedHTTPClient
	baseURL    string
	apiKey     string
	enabled    bool
	logger     *log.Logger
}

// cfbGame is the provider's wire format for one game
type cfbGame struct {
	ID          int     `json:"id"`
	Season      int     `json:"season"`
	Week        int     `json:"week"`
	HomeTeam    string  `json:"home_team"`
	AwayTeam    string  `json:"away_team"`
	HomePoints  *int    `json:"home_points"`
	AwayPoints  *int    `json:"away_points"`
	NeutralSite bool    `json:"neutral_site"`
	Completed   bool    `json:"completed"`
	StartDate   string  `json:"start_date"`
}

// cfbTeam is the provider's wire format for one team
type cfbTeam struct {
	ID             int    `json:"id"`
	School         string `json:"school"`
	Abbreviation   string `json:"abbreviation"`
	Conference     string `json:"conference"`
	Classification string `json:"classification"`
}

// cfbTeamStats is the provider's wire format for one team's game line
type cfbTeamStats struct {
	GameID               int    `json:"game_id"`
	Team                 string `json:"team"`
	Points               int    `json:"points"`
	TotalYards           int    `json:"total_yards"`
	NetPassingYards      int    `json:"net_passing_yards"`
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

// NewCollegeFootballClient creates a new CFB stats API client
func NewCollegeFootballClient(httpClient *RateLimitedHTTPClient, baseURL, apiKey string, enabled bool, logger *log.Logger) *CollegeFootballClient {
	if baseURL == "" {
		baseURL = "https://api.collegefootballdata.com"
	}
	return &CollegeFootballClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		enabled:    enabled,
		logger:     logger,
	}
}

// Name returns the data source name
func (c *CollegeFootballClient) Name() string {
	return cfbSourceName
}

// IsEnabled returns whether the source is enabled
func (c *CollegeFootballClient) IsEnabled() bool {
	return c.enabled
}

// FetchGames retrieves a season's games, optionally narrowed to one week
func (c *CollegeFootballClient) FetchGames(ctx context.Context, season, week int) ([]GameData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(cfbSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/games?year=%d", c.baseURL, season)
	if week > 0 {
		url = fmt.Sprintf("%s&week=%d", url, week)
	}

	var wireGames []cfbGame
	if err := c.getJSON(ctx, url, &wireGames); err != nil {
		return nil, err
	}

	games := make([]GameData, 0, len(wireGames))
	for _, g := range wireGames {
		kickoff, err := time.Parse(time.RFC3339, g.StartDate)
		if err != nil {
			c.logger.Printf("Skipping game %d with unparseable start date %q", g.ID, g.StartDate)
			continue
		}
		games = append(games, GameData{
			SourceID:    fmt.Sprintf("%d", g.ID),
			Season:      g.Season,
			Week:        g.Week,
			HomeTeam:    g.HomeTeam,
			AwayTeam:    g.AwayTeam,
			HomeScore:   g.HomePoints,
			AwayScore:   g.AwayPoints,
			NeutralSite: g.NeutralSite,
			Completed:   g.Completed,
			KickoffTime: kickoff.UTC(),
			CreatedAt:   time.Now().UTC(),
		})
	}
	return games, nil
}

// FetchBoxScores retrieves both teams' lines for one game
func (c *CollegeFootballClient) FetchBoxScores(ctx context.Context, sourceGameID string) ([]BoxScoreData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(cfbSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	url := fmt.Sprintf("%s/games/teams?game_id=%s", c.baseURL, sourceGameID)

	var wireStats []cfbTeamStats
	if err := c.getJSON(ctx, url, &wireStats); err != nil {
		return nil, err
	}
	if len(wireStats) == 0 {
		return nil, NewDataSourceError(cfbSourceName, ErrCodeNotFound,
			fmt.Sprintf("no box scores for game %s", sourceGameID), ErrNotFound)
	}

	scores := make([]BoxScoreData, 0, len(wireStats))
	for _, s := range wireStats {
		scores = append(scores, BoxScoreData{
			SourceGameID:         fmt.Sprintf("%d", s.GameID),
			Team:                 s.Team,
			Points:               s.Points,
			TotalYards:           s.TotalYards,
			PassingYards:         s.NetPassingYards,
			RushingYards:         s.RushingYards,
			Turnovers:            s.Turnovers,
			Takeaways:            s.Takeaways,
			Sacks:                s.Sacks,
			FieldGoalsMade:       s.FieldGoalsMade,
			FieldGoalsAttempted:  s.FieldGoalsAttempted,
			ThirdDownConversions: s.ThirdDownConversions,
			ThirdDownAttempts:    s.ThirdDownAttempts,
			RedZoneScores:        s.RedZoneScores,
			RedZoneAttempts:      s.RedZoneAttempts,
		})
	}
	return scores, nil
}

// FetchTeams retrieves the provider's team directory
func (c *CollegeFootballClient) FetchTeams(ctx context.Context) ([]TeamData, error) {
	if !c.enabled {
		return nil, NewDataSourceError(cfbSourceName, ErrCodeNetworkError, dataSourceDisabledMsg, nil)
	}

	var wireTeams []cfbTeam
	if err := c.getJSON(ctx, c.baseURL+"/teams", &wireTeams); err != nil {
		return nil, err
	}

	teams := make([]TeamData, 0, len(wireTeams))
	for _, t := range wireTeams {
		teams = append(teams, TeamData{
			SourceID:       fmt.Sprintf("%d", t.ID),
			Name:           t.School,
			Abbreviation:   t.Abbreviation,
			Conference:     t.Conference,
			Classification: t.Classification,
		})
	}
	return teams, nil
}

// getJSON executes an authenticated GET and decodes the JSON body
func (c *CollegeFootballClient) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return NewDataSourceError(cfbSourceName, ErrCodeNetworkError, "failed to create request", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(ctx, req)
	if err != nil {
		return NewDataSourceError(cfbSourceName, ErrCodeNetworkError, "request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return NewDataSourceError(cfbSourceName, ErrCodeAuthenticationFailed, "invalid API key", ErrAuthenticationFailed)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewDataSourceError(cfbSourceName, ErrCodeRateLimitExceeded, "rate limit exceeded", ErrRateLimitExceeded)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(resp.Body)
		return NewDataSourceError(cfbSourceName, ErrCodeServerError,
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, string(body)), ErrServerError)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return NewDataSourceError(cfbSourceName, ErrCodeInvalidData, "failed to parse response", err)
	}
	return nil
}
