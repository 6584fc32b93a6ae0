package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/audit"
	"github.com/yourusername/gridiron-edge/internal/blend"
	"github.com/yourusername/gridiron-edge/internal/calibration"
	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/efficiency"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/models"
	"github.com/yourusername/gridiron-edge/internal/prediction"
	"github.com/yourusername/gridiron-edge/internal/repository"
)

// ErrSeasonLocked is returned when another process holds a season's
// recompute lock.
var ErrSeasonLocked = errors.New("season recompute already in progress")

// SeasonRunReport summarizes one full pipeline run for a season
type SeasonRunReport struct {
	Season       int
	TeamsRated   int
	TeamsDropped int
	Iterations   int
	Converged    bool
	Calibrated   bool
	Summary      *models.RegressionModelSummary
	Shrinkage    *blend.ShrinkageReport
	Duration     time.Duration
}

// RatingPipeline orchestrates the full season computation: load the dataset,
// run the efficiency engine, blend against prior-season profiles, apply
// shrinkage, recalibrate weights, and persist everything.
type RatingPipeline struct {
	cfg        *config.Config
	db         *database.DB
	repos      *repository.Repositories
	engine     *efficiency.Engine
	blender    *blend.Blender
	calibrator *calibration.Calibrator
	composer   *prediction.Composer
	auditor    *audit.Auditor
	cache      *gocache.Cache
	log        *logrus.Logger
	rating     *logger.RatingLogger
}

// NewRatingPipeline wires the pipeline from its components
func NewRatingPipeline(
	cfg *config.Config,
	db *database.DB,
	repos *repository.Repositories,
	log *logrus.Logger,
) *RatingPipeline {
	return &RatingPipeline{
		cfg:        cfg,
		db:         db,
		repos:      repos,
		engine:     efficiency.NewEngine(cfg.Rating, log),
		blender:    blend.NewBlender(cfg.Blending, log),
		calibrator: calibration.NewCalibrator(cfg.Calibration, log),
		composer:   prediction.NewComposer(cfg.Prediction, log),
		auditor:    audit.NewAuditor(cfg.Audit, log),
		cache:      gocache.New(15*time.Minute, 30*time.Minute),
		log:        log,
		rating:     logger.NewRatingLogger(log),
	}
}

// RunSeason executes the full pipeline for one season under an advisory lock.
// Only one recompute per season runs at a time across all processes.
func (p *RatingPipeline) RunSeason(ctx context.Context, season int, complete bool) (*SeasonRunReport, error) {
	start := time.Now()

	locked, err := p.db.AcquireSeasonLock(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire season lock: %w", err)
	}
	if !locked {
		return nil, ErrSeasonLocked
	}
	defer func() {
		if err := p.db.ReleaseSeasonLock(context.WithoutCancel(ctx), season); err != nil {
			p.log.WithError(err).WithField("season", season).Warn("Failed to release season lock")
		}
	}()

	dataset, err := p.loadDataset(ctx, season, complete)
	if err != nil {
		metrics.RecordRatingRun("failed", time.Since(start).Seconds())
		return nil, err
	}

	result, err := p.engine.CalculateSeasonEfficiencies(ctx, dataset)
	if err != nil {
		metrics.RecordRatingRun("failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("efficiency computation failed: %w", err)
	}

	profiles := result.Profiles
	if priors, err := p.repos.Rating.GetSeason(ctx, season-1); err != nil {
		p.log.WithError(err).WithField("season", season-1).Warn("No prior-season profiles available for blending")
	} else {
		profiles = p.blender.BlendSeason(profiles, priors)
	}

	shrunk, shrinkReport := p.blender.ApplyShrinkage(profiles, dataset)
	for range shrinkReport.Dropped {
		metrics.RecordTeamDropped()
	}

	if err := p.repos.Rating.SaveSeason(ctx, season, shrunk); err != nil {
		metrics.RecordRatingRun("failed", time.Since(start).Seconds())
		return nil, fmt.Errorf("failed to save season profiles: %w", err)
	}

	report := &SeasonRunReport{
		Season:       season,
		TeamsRated:   len(shrunk),
		TeamsDropped: len(shrinkReport.Dropped),
		Iterations:   result.Iterations,
		Converged:    result.Converged,
		Shrinkage:    shrinkReport,
	}

	summary, err := p.Calibrate(ctx, season, dataset, shrunk)
	switch {
	case errors.Is(err, models.ErrInsufficientData):
		p.log.WithField("season", season).Warn("Too few completed games to recalibrate weights; keeping current set")
	case err != nil:
		metrics.RecordRatingRun("failed", time.Since(start).Seconds())
		return nil, err
	default:
		report.Calibrated = true
		report.Summary = summary
	}

	p.cache.Set(profilesCacheKey(season), shrunk, gocache.DefaultExpiration)
	p.cache.Set(datasetCacheKey(season), dataset, gocache.DefaultExpiration)

	report.Duration = time.Since(start)
	outcome := "completed"
	if !result.Converged {
		outcome = "not_converged"
	}
	metrics.RecordRatingRun(outcome, report.Duration.Seconds())
	metrics.UpdateEngineRun(strconv.Itoa(season), result.Iterations, len(shrunk), result.MaxChange)

	return report, nil
}

// Calibrate fits per-metric regressions over the season's completed games and
// applies the resulting weights.
func (p *RatingPipeline) Calibrate(
	ctx context.Context,
	season int,
	dataset *models.SeasonDataset,
	profiles map[uuid.UUID]*models.TeamEfficiencyProfile,
) (*models.RegressionModelSummary, error) {
	start := time.Now()

	samples := calibration.BuildSamples(dataset, profiles)
	summary, err := p.calibrator.PerformRegressionAnalysis(season, samples)
	if err != nil {
		return nil, err
	}

	ws, err := p.repos.Weight.GetBySeason(ctx, season)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load weight set: %w", err)
		}
		ws = models.NewWeightSet(season)
	}

	if err := p.calibrator.ApplyCalibratedWeights(ws, summary, "rating_pipeline"); err != nil {
		return nil, fmt.Errorf("failed to apply calibrated weights: %w", err)
	}

	if err := p.repos.Weight.Save(ctx, ws); err != nil {
		return nil, fmt.Errorf("failed to save weight set: %w", err)
	}

	significant := 0
	for _, r := range summary.Results {
		if r.IsStatisticallySignificant() {
			significant++
		}
	}
	p.rating.LogCalibration(season, len(summary.Results), significant, summary.TotalSamples, summary.ConfidenceLevel)

	metrics.RecordCalibration(strconv.Itoa(season), time.Since(start).Seconds(), summary.ConfidenceLevel)
	return summary, nil
}

// CalibrateSeason recalibrates weights from the season's stored profiles
// without rerunning the efficiency engine.
func (p *RatingPipeline) CalibrateSeason(ctx context.Context, season int) (*models.RegressionModelSummary, error) {
	dataset, profiles, err := p.seasonState(ctx, season)
	if err != nil {
		return nil, err
	}
	return p.Calibrate(ctx, season, dataset, profiles)
}

// PredictGame composes a prediction for one stored game from the season's
// current profiles and weights.
func (p *RatingPipeline) PredictGame(ctx context.Context, gameID uuid.UUID) (*models.PredictionResult, error) {
	start := time.Now()

	game, err := p.repos.Game.GetByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to load game: %w", err)
	}

	result, err := p.PredictMatchup(ctx, game.Season, game.HomeTeamID, game.AwayTeamID, game.NeutralSite)
	if err != nil {
		return nil, err
	}
	result.GameID = game.ID

	metrics.RecordPrediction(time.Since(start).Seconds(), result.HasAdjustments())
	return result, nil
}

// PredictMatchup composes a prediction for an arbitrary pairing within a season
func (p *RatingPipeline) PredictMatchup(
	ctx context.Context,
	season int,
	homeID, awayID uuid.UUID,
	neutralSite bool,
) (*models.PredictionResult, error) {
	dataset, profiles, err := p.seasonState(ctx, season)
	if err != nil {
		return nil, err
	}

	ws, err := p.repos.Weight.GetBySeason(ctx, season)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("failed to load weight set: %w", err)
		}
		ws = models.NewWeightSet(season)
	}

	baselines := efficiency.SeasonBaselines(dataset, profiles, p.cfg.Rating.OpponentQualityFactor)

	in := prediction.MatchupInput{
		Season:       season,
		NeutralSite:  neutralSite,
		HomeProfile:  profiles[homeID],
		AwayProfile:  profiles[awayID],
		HomeBaseline: baselines[homeID],
		AwayBaseline: baselines[awayID],
		Weights:      ws,
	}

	return p.composer.CalculateMatchupAnalysis(in)
}

// BacktestSeason replays a completed season's games through the composer and
// stores the realized outcomes for accuracy auditing. Predictions use the
// season's final profiles, so this measures calibration quality, not true
// out-of-sample skill.
func (p *RatingPipeline) BacktestSeason(ctx context.Context, season int) (int, error) {
	dataset, profiles, err := p.seasonState(ctx, season)
	if err != nil {
		return 0, err
	}

	ws, err := p.repos.Weight.GetBySeason(ctx, season)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return 0, fmt.Errorf("failed to load weight set: %w", err)
		}
		ws = models.NewWeightSet(season)
	}

	baselines := efficiency.SeasonBaselines(dataset, profiles, p.cfg.Rating.OpponentQualityFactor)

	stored := 0
	for _, g := range dataset.CompletedGames() {
		if err := ctx.Err(); err != nil {
			return stored, err
		}

		in := prediction.MatchupInput{
			GameID:       g.ID,
			Season:       season,
			NeutralSite:  g.NeutralSite,
			HomeProfile:  profiles[g.HomeTeamID],
			AwayProfile:  profiles[g.AwayTeamID],
			HomeBaseline: baselines[g.HomeTeamID],
			AwayBaseline: baselines[g.AwayTeamID],
			Weights:      ws,
		}

		result, err := p.composer.CalculateMatchupAnalysis(in)
		if err != nil {
			if errors.Is(err, models.ErrTeamNotRated) {
				continue
			}
			return stored, err
		}

		outcome := &audit.PredictionOutcome{
			GameID:             g.ID,
			Season:             season,
			HomeWinProbability: result.HomeWinProbability,
			PredictedMargin:    result.PredictedMargin,
			PredictedTotal:     result.Home.ExpectedScore + result.Away.ExpectedScore,
			ActualMargin:       g.PointDifferential(),
			ActualTotal:        float64(g.TotalPoints()),
			HomeWon:            g.Winner() == g.HomeTeamID,
			NeutralSite:        g.NeutralSite,
			ConfidenceLevel:    result.ConfidenceLevel,
		}

		if err := p.repos.Outcome.Save(ctx, outcome); err != nil {
			return stored, fmt.Errorf("failed to save outcome: %w", err)
		}
		stored++
	}

	p.log.WithFields(logrus.Fields{"season": season, "outcomes": stored}).Info("Season backtest stored")
	return stored, nil
}

// AuditSeason runs the full audit over a season's calibration and stored
// prediction outcomes.
func (p *RatingPipeline) AuditSeason(ctx context.Context, season int) (*audit.Run, error) {
	dataset, profiles, err := p.seasonState(ctx, season)
	if err != nil {
		return nil, err
	}

	samples := calibration.BuildSamples(dataset, profiles)

	var summary *models.RegressionModelSummary
	if s, err := p.calibrator.PerformRegressionAnalysis(season, samples); err != nil {
		p.log.WithError(err).WithField("season", season).Warn("Skipping regression audit")
	} else {
		summary = s
	}

	outcomes, err := p.repos.Outcome.GetBySeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load outcomes: %w", err)
	}

	run := audit.NewRun(season)
	if err := p.auditor.Execute(ctx, run, audit.AuditInput{
		Season:   season,
		Summary:  summary,
		Samples:  samples,
		Outcomes: outcomes,
	}); err != nil {
		return run, err
	}

	if run.Report != nil && run.Report.Accuracy != nil {
		metrics.UpdateAuditBrier(strconv.Itoa(season), run.Report.Accuracy.BrierScore)
	}

	return run, nil
}

// seasonState returns the dataset and saved profiles for a season, cached
// between calls
func (p *RatingPipeline) seasonState(ctx context.Context, season int) (*models.SeasonDataset, map[uuid.UUID]*models.TeamEfficiencyProfile, error) {
	var dataset *models.SeasonDataset
	if cached, ok := p.cache.Get(datasetCacheKey(season)); ok {
		dataset = cached.(*models.SeasonDataset)
	} else {
		var err error
		dataset, err = p.loadDataset(ctx, season, false)
		if err != nil {
			return nil, nil, err
		}
	}

	if cached, ok := p.cache.Get(profilesCacheKey(season)); ok {
		return dataset, cached.(map[uuid.UUID]*models.TeamEfficiencyProfile), nil
	}

	profiles, err := p.repos.Rating.GetSeason(ctx, season)
	if err != nil {
		return nil, nil, fmt.Errorf("no profiles for season %d: %w", season, err)
	}

	p.cache.Set(profilesCacheKey(season), profiles, gocache.DefaultExpiration)
	return dataset, profiles, nil
}

func (p *RatingPipeline) loadDataset(ctx context.Context, season int, complete bool) (*models.SeasonDataset, error) {
	dataset, err := p.repos.Game.LoadSeasonDataset(ctx, season, complete)
	if err != nil {
		return nil, fmt.Errorf("failed to load season dataset: %w", err)
	}
	p.cache.Set(datasetCacheKey(season), dataset, gocache.DefaultExpiration)
	return dataset, nil
}

func profilesCacheKey(season int) string {
	return fmt.Sprintf("profiles:%d", season)
}

func datasetCacheKey(season int) string {
	return fmt.Sprintf("dataset:%d", season)
}
