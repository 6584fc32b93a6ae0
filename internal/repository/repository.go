// Package repository provides PostgreSQL persistence for teams, games,
// ratings, weights, and audit outcomes. Numeric columns round-trip through
// decimals here; the statistical core only ever sees native floats.
package repository

import (
	"fmt"

	"github.com/yourusername/gridiron-edge/internal/database"
)

// Repositories holds all repository implementations
type Repositories struct {
	Team    TeamRepository
	Game    GameRepository
	Rating  RatingRepository
	Weight  WeightRepository
	Outcome OutcomeRepository
}

// NewRepositories creates and returns all repository implementations
func NewRepositories(db *database.DB) (*Repositories, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}

	return &Repositories{
		Team:    NewPostgresTeamRepository(db),
		Game:    NewPostgresGameRepository(db),
		Rating:  NewPostgresRatingRepository(db),
		Weight:  NewPostgresWeightRepository(db),
		Outcome: NewPostgresOutcomeRepository(db),
	}, nil
}
