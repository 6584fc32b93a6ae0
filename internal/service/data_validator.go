package service

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/gridiron-edge/internal/models"
)

// DataValidator validates game, box score, and team data before persistence
type DataValidator struct {
	logger *log.Logger
}

// NewDataValidator creates a new data validator
func NewDataValidator(logger *log.Logger) *DataValidator {
	return &DataValidator{logger: logger}
}

// ValidateGame validates game data for required fields and constraints
func (v *DataValidator) ValidateGame(game *models.GameRecord) []string {
	var errors []string

	if game.Season < 1900 {
		errors = append(errors, fmt.Sprintf("season out of range, got %d", game.Season))
	}

	if game.Week < 0 || game.Week > 20 {
		errors = append(errors, fmt.Sprintf("week must be 0-20, got %d", game.Week))
	}

	if game.HomeTeamID == uuid.Nil || game.AwayTeamID == uuid.Nil {
		errors = append(errors, "both team ids are required")
	}

	if game.HomeTeamID == game.AwayTeamID {
		errors = append(errors, "a team cannot play itself")
	}

	if game.KickoffAt.IsZero() {
		errors = append(errors, "kickoff_at is required")
	}

	if game.HomeScore < 0 || game.AwayScore < 0 {
		errors = append(errors, fmt.Sprintf("scores cannot be negative, got %d-%d", game.HomeScore, game.AwayScore))
	}

	if game.HomeScore > 150 || game.AwayScore > 150 {
		errors = append(errors, fmt.Sprintf("scores out of range, got %d-%d", game.HomeScore, game.AwayScore))
	}

	if game.Completed && game.KickoffAt.After(time.Now().Add(24*time.Hour)) {
		errors = append(errors, "game marked completed but kicks off in the future")
	}

	return errors
}

// ValidateBoxScore validates a single team's statistical line
func (v *DataValidator) ValidateBoxScore(stats *models.BoxScoreStats) []string {
	var errors []string

	if stats.GameID == uuid.Nil || stats.TeamID == uuid.Nil {
		errors = append(errors, "game and team ids are required")
	}

	if stats.Points < 0 || stats.Points > 150 {
		errors = append(errors, fmt.Sprintf("points out of range, got %d", stats.Points))
	}

	if stats.TotalYards < -50 || stats.TotalYards > 1100 {
		errors = append(errors, fmt.Sprintf("total_yards out of range, got %d", stats.TotalYards))
	}

	if stats.PassingYards < -50 || stats.PassingYards > 800 {
		errors = append(errors, fmt.Sprintf("passing_yards out of range, got %d", stats.PassingYards))
	}

	if stats.RushingYards < -100 || stats.RushingYards > 700 {
		errors = append(errors, fmt.Sprintf("rushing_yards out of range, got %d", stats.RushingYards))
	}

	if stats.Turnovers < 0 || stats.Turnovers > 12 {
		errors = append(errors, fmt.Sprintf("turnovers out of range, got %d", stats.Turnovers))
	}

	if stats.Takeaways < 0 || stats.Takeaways > 12 {
		errors = append(errors, fmt.Sprintf("takeaways out of range, got %d", stats.Takeaways))
	}

	if stats.FieldGoalsMade > stats.FieldGoalsAttempted {
		errors = append(errors, fmt.Sprintf("field goals made %d exceeds attempts %d",
			stats.FieldGoalsMade, stats.FieldGoalsAttempted))
	}

	if stats.ThirdDownConversions > stats.ThirdDownAttempts {
		errors = append(errors, fmt.Sprintf("third down conversions %d exceed attempts %d",
			stats.ThirdDownConversions, stats.ThirdDownAttempts))
	}

	if stats.RedZoneScores > stats.RedZoneAttempts {
		errors = append(errors, fmt.Sprintf("red zone scores %d exceed attempts %d",
			stats.RedZoneScores, stats.RedZoneAttempts))
	}

	return errors
}

// ValidateTeam validates team data for required fields and constraints
func (v *DataValidator) ValidateTeam(team *models.Team) []string {
	var errors []string

	if team.Name == "" {
		errors = append(errors, "team name is required")
	}

	if len(team.Name) > 100 {
		errors = append(errors, "team name too long")
	}

	if team.Classification != models.ClassificationFBS && team.Classification != models.ClassificationFCS {
		errors = append(errors, fmt.Sprintf("classification must be fbs or fcs, got %s", team.Classification))
	}

	return errors
}

// ValidateBoxScoreInGame checks a box score line is consistent with its game's
// final score
func (v *DataValidator) ValidateBoxScoreInGame(stats *models.BoxScoreStats, game *models.GameRecord) []string {
	var errors []string

	if !game.Involves(stats.TeamID) {
		errors = append(errors, fmt.Sprintf("team %s did not play in game %s", stats.TeamID, game.ID))
		return errors
	}

	if !game.Completed {
		return errors
	}

	expected := game.AwayScore
	if stats.TeamID == game.HomeTeamID {
		expected = game.HomeScore
	}
	if stats.Points != expected {
		errors = append(errors, fmt.Sprintf("box score points %d disagree with final score %d", stats.Points, expected))
	}

	return errors
}
