package efficiency

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// SeasonResult is the outcome of one season's fixed-point computation
type SeasonResult struct {
	Season     int
	Profiles   map[uuid.UUID]*models.TeamEfficiencyProfile
	Iterations int
	Converged  bool
	MaxChange  float64
}

// Engine computes opponent-adjusted efficiency profiles for a season.
// Iterations are strictly ordered; within an iteration the per-team
// computation fans out across workers behind a join barrier.
type Engine struct {
	cfg       config.RatingConfig
	extractor *PerformanceExtractor
	log       *logrus.Logger
	rating    *logger.RatingLogger
	audit     *logger.AuditLogger
}

// NewEngine creates a new efficiency engine
func NewEngine(cfg config.RatingConfig, log *logrus.Logger) *Engine {
	return &Engine{
		cfg:       cfg,
		extractor: NewPerformanceExtractor(),
		log:       log,
		rating:    logger.NewRatingLogger(log),
		audit:     logger.NewAuditLogger(log),
	}
}

// CalculateSeasonEfficiencies runs the iterative solver over an already
// fetched dataset. Non-convergence after the iteration budget is a logged
// warning, not an error: the last iteration's profiles are valid, just lower
// confidence. The context is only checked between iterations; every completed
// iteration's output is self-contained.
func (e *Engine) CalculateSeasonEfficiencies(ctx context.Context, dataset *models.SeasonDataset) (*SeasonResult, error) {
	start := time.Now()
	teamIDs := dataset.TeamIDs()
	raw := rawAverages(dataset)

	// Every team starts neutral; teams with zero eligible games stay there.
	profiles := make(map[uuid.UUID]*models.TeamEfficiencyProfile, len(teamIDs))
	for _, id := range teamIDs {
		profiles[id] = models.NewNeutralProfile(id, dataset.Season)
	}

	result := &SeasonResult{Season: dataset.Season, Profiles: profiles}

	for iteration := 1; iteration <= e.cfg.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		baselines := adjustBaselines(raw, profiles, e.cfg.OpponentQualityFactor)
		next := e.computeIteration(dataset, teamIDs, baselines)

		status := DetermineConvergence(profiles, next, e.cfg.ConvergenceThreshold, e.cfg.TeamConvergenceQuorum)
		for id, p := range next {
			p.ConvergenceScore = convergenceScore(teamMaxChange(profiles[id], p))
		}

		profiles = next
		result.Profiles = profiles
		result.Iterations = iteration
		result.MaxChange = status.MaxChange

		e.rating.LogIteration(dataset.Season, iteration, status.MaxChange, status.TeamsConverged, status.TotalTeams)

		if status.Converged {
			result.Converged = true
			break
		}

		if iteration == e.cfg.MaxIterations {
			e.audit.LogNonConvergence(dataset.Season, iteration, status.MaxChange, status.TeamsConverged, status.TotalTeams)
		}
	}

	e.logAnomalies(result.Profiles)
	e.rating.LogSeasonRun(dataset.Season, result.Iterations, len(result.Profiles), result.Converged,
		float64(time.Since(start).Milliseconds()))

	return result, nil
}

// computeIteration builds a fresh profile snapshot for every team. The input
// maps are read-only here; each iteration's output never aliases the last.
func (e *Engine) computeIteration(
	dataset *models.SeasonDataset,
	teamIDs []uuid.UUID,
	baselines map[uuid.UUID]OpponentBaseline,
) map[uuid.UUID]*models.TeamEfficiencyProfile {
	next := make(map[uuid.UUID]*models.TeamEfficiencyProfile, len(teamIDs))

	workers := e.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan uuid.UUID)
	var mu sync.Mutex
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for teamID := range jobs {
				profile := e.computeTeamProfile(dataset, teamID, baselines)
				mu.Lock()
				next[teamID] = profile
				mu.Unlock()
			}
		}()
	}

	for _, id := range teamIDs {
		jobs <- id
	}
	close(jobs)
	wg.Wait()

	return next
}

// computeTeamProfile derives one team's per-category efficiencies as the mean
// differential between actual performance and the opponent's adjusted
// baseline. The measure is additive by design; ratios blow up on outliers.
func (e *Engine) computeTeamProfile(
	dataset *models.SeasonDataset,
	teamID uuid.UUID,
	baselines map[uuid.UUID]OpponentBaseline,
) *models.TeamEfficiencyProfile {
	records := e.extractor.ExtractTeamRecords(dataset, teamID, baselines)

	profile := models.NewNeutralProfile(teamID, dataset.Season)
	profile.GamesPlayed = len(records)
	profile.ConfidenceLevel = models.ConfidenceFromGames(len(records))

	if len(records) == 0 {
		return profile
	}

	var offDiff, defDiff models.StatLine
	for _, r := range records {
		offDiff = offDiff.Add(r.Produced.Sub(r.OpponentAllowed))
		defDiff = defDiff.Add(r.OpponentProduced.Sub(r.Allowed))
	}
	inv := 1.0 / float64(len(records))
	offDiff = offDiff.Scale(inv)
	defDiff = defDiff.Scale(inv)

	profile.Efficiency = models.EfficiencyVector{
		OffenseTotal:   offDiff.TotalYards,
		OffensePassing: offDiff.PassingYards,
		OffenseRushing: offDiff.RushingYards,
		OffenseScoring: offDiff.Points,
		DefenseTotal:   defDiff.TotalYards,
		DefensePassing: defDiff.PassingYards,
		DefenseRushing: defDiff.RushingYards,
		DefenseScoring: defDiff.Points,
		TurnoverMargin: offDiff.TurnoverMargin,
		FieldGoal:      offDiff.FieldGoalPoints,
	}

	return profile
}

// logAnomalies flags scoring efficiencies outside the expected range.
// Clamping is deliberately left to the blender; the engine only reports.
func (e *Engine) logAnomalies(profiles map[uuid.UUID]*models.TeamEfficiencyProfile) {
	for id, p := range profiles {
		for _, m := range []models.Metric{models.MetricOffenseScoring, models.MetricDefenseScoring} {
			v := p.Efficiency.Get(m)
			if math.Abs(v) > e.cfg.AnomalyThreshold {
				e.audit.LogEfficiencyAnomaly(id.String(), p.Season, string(m), v, e.cfg.AnomalyThreshold)
			}
		}
	}
}
