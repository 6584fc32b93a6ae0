package models

import (
	"time"

	"github.com/google/uuid"
)

// BoxScoreStats represents one team's raw statistical line in one game
type BoxScoreStats struct {
	GameID               uuid.UUID `db:"game_id" json:"game_id" validate:"required,uuid4"`
	TeamID               uuid.UUID `db:"team_id" json:"team_id" validate:"required,uuid4"`
	Points               int       `db:"points" json:"points" validate:"gte=0"`
	TotalYards           int       `db:"total_yards" json:"total_yards"`
	PassingYards         int       `db:"passing_yards" json:"passing_yards"`
	RushingYards         int       `db:"rushing_yards" json:"rushing_yards"`
	Turnovers            int       `db:"turnovers" json:"turnovers" validate:"gte=0"`
	Takeaways            int       `db:"takeaways" json:"takeaways" validate:"gte=0"`
	Sacks                int       `db:"sacks" json:"sacks" validate:"gte=0"`
	FieldGoalsMade       int       `db:"field_goals_made" json:"field_goals_made" validate:"gte=0"`
	FieldGoalsAttempted  int       `db:"field_goals_attempted" json:"field_goals_attempted" validate:"gte=0"`
	ThirdDownConversions int       `db:"third_down_conversions" json:"third_down_conversions" validate:"gte=0"`
	ThirdDownAttempts    int       `db:"third_down_attempts" json:"third_down_attempts" validate:"gte=0"`
	RedZoneScores        int       `db:"red_zone_scores" json:"red_zone_scores" validate:"gte=0"`
	RedZoneAttempts      int       `db:"red_zone_attempts" json:"red_zone_attempts" validate:"gte=0"`
	CreatedAt            time.Time `db:"created_at" json:"created_at"`
}

// TurnoverMargin returns takeaways minus giveaways for this line
func (b *BoxScoreStats) TurnoverMargin() float64 {
	return float64(b.Takeaways - b.Turnovers)
}

// FieldGoalPoints returns points scored on field goals
func (b *BoxScoreStats) FieldGoalPoints() float64 {
	return float64(b.FieldGoalsMade * 3)
}

// ThirdDownRate returns the third-down conversion rate, or 0 with no attempts
func (b *BoxScoreStats) ThirdDownRate() float64 {
	if b.ThirdDownAttempts == 0 {
		return 0
	}
	return float64(b.ThirdDownConversions) / float64(b.ThirdDownAttempts)
}

// StatLine is the normalized per-category view of a single game performance.
// All statistical core math runs on these native floats; ORM/decimal
// round-tripping stays in the repository layer.
type StatLine struct {
	TotalYards      float64 `json:"total_yards"`
	PassingYards    float64 `json:"passing_yards"`
	RushingYards    float64 `json:"rushing_yards"`
	Points          float64 `json:"points"`
	TurnoverMargin  float64 `json:"turnover_margin"`
	FieldGoalPoints float64 `json:"field_goal_points"`
}

// LineFromBoxScore normalizes a raw box score into a StatLine
func LineFromBoxScore(b *BoxScoreStats) StatLine {
	return StatLine{
		TotalYards:      float64(b.TotalYards),
		PassingYards:    float64(b.PassingYards),
		RushingYards:    float64(b.RushingYards),
		Points:          float64(b.Points),
		TurnoverMargin:  b.TurnoverMargin(),
		FieldGoalPoints: b.FieldGoalPoints(),
	}
}

// Add returns the element-wise sum of two stat lines
func (s StatLine) Add(o StatLine) StatLine {
	return StatLine{
		TotalYards:      s.TotalYards + o.TotalYards,
		PassingYards:    s.PassingYards + o.PassingYards,
		RushingYards:    s.RushingYards + o.RushingYards,
		Points:          s.Points + o.Points,
		TurnoverMargin:  s.TurnoverMargin + o.TurnoverMargin,
		FieldGoalPoints: s.FieldGoalPoints + o.FieldGoalPoints,
	}
}

// Scale returns the stat line multiplied by a scalar
func (s StatLine) Scale(f float64) StatLine {
	return StatLine{
		TotalYards:      s.TotalYards * f,
		PassingYards:    s.PassingYards * f,
		RushingYards:    s.RushingYards * f,
		Points:          s.Points * f,
		TurnoverMargin:  s.TurnoverMargin * f,
		FieldGoalPoints: s.FieldGoalPoints * f,
	}
}

// Sub returns the element-wise difference s - o
func (s StatLine) Sub(o StatLine) StatLine {
	return s.Add(o.Scale(-1))
}

// GamePerformanceRecord captures one team's normalized performance in one game
// together with the matching opponent baselines for the current iteration.
// Records are rebuilt every engine iteration as the baselines move; they are
// never persisted.
type GamePerformanceRecord struct {
	GameID     uuid.UUID
	TeamID     uuid.UUID
	OpponentID uuid.UUID
	Week       int
	HomeGame   bool

	// Produced is what the team gained/scored; Allowed is what it gave up.
	Produced StatLine
	Allowed  StatLine

	// OpponentAllowed is the opponent's adjusted typical allowed line (what an
	// average offense would be expected to post against this opponent).
	// OpponentProduced is the adjusted typical produced line.
	OpponentAllowed  StatLine
	OpponentProduced StatLine
}
