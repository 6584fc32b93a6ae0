// Package main provides the gridiron-edge command line interface.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/database"
	"github.com/yourusername/gridiron-edge/internal/datasource"
	"github.com/yourusername/gridiron-edge/internal/health"
	"github.com/yourusername/gridiron-edge/internal/logger"
	"github.com/yourusername/gridiron-edge/internal/metrics"
	"github.com/yourusername/gridiron-edge/internal/repository"
	"github.com/yourusername/gridiron-edge/internal/scheduler"
	"github.com/yourusername/gridiron-edge/internal/service"
)

var (
	version = "dev"
	commit  = "none"
)

var configPath string

// app bundles everything a subcommand needs after setup
type app struct {
	cfg   *config.Config
	log   *logrus.Logger
	db    *database.DB
	repos *repository.Repositories
}

func main() {
	root := &cobra.Command{
		Use:           "gridiron",
		Short:         "Opponent-adjusted efficiency ratings and prediction calibration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")

	root.AddCommand(
		newRateCmd(),
		newCalibrateCmd(),
		newPredictCmd(),
		newIngestCmd(),
		newBacktestCmd(),
		newAuditCmd(),
		newServeCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads configuration, connects the database, and wires repositories
func setup(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	lg := logger.NewLogger(cfg.App.LogLevel)

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	metrics.InitRegistry()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		cfg:   cfg,
		log:   lg,
		db:    db,
		repos: repos,
	}, nil
}

func (a *app) close() {
	a.db.Close()
}

func (a *app) newIngestionService() (*service.IngestionService, error) {
	stdLog := log.New(os.Stderr, "", log.LstdFlags)

	httpClient := datasource.NewRateLimitedHTTPClient(datasource.DefaultHTTPClientConfig(), stdLog)
	factory := datasource.NewFactory(a.cfg, stdLog)
	sources, err := factory.NewDataSources(a.cfg.DataIngestion, httpClient)
	if err != nil {
		return nil, err
	}

	batchSize := 0
	if len(a.cfg.DataIngestion.Sources) > 0 {
		batchSize = a.cfg.DataIngestion.Sources[0].BatchSize
	}

	return service.NewIngestionService(
		sources,
		a.repos.Team,
		a.repos.Game,
		service.NewDataValidator(stdLog),
		service.NewDataNormalizer(stdLog),
		stdLog,
		batchSize,
	), nil
}

func newRateCmd() *cobra.Command {
	var season int
	var complete bool

	cmd := &cobra.Command{
		Use:   "rate",
		Short: "Run the full rating pipeline for a season",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := service.NewRatingPipeline(a.cfg, a.db, a.repos, a.log)
			report, err := pipeline.RunSeason(ctx, season, complete)
			if err != nil {
				return err
			}

			a.log.WithFields(logrus.Fields{
				"season":        report.Season,
				"teams_rated":   report.TeamsRated,
				"teams_dropped": report.TeamsDropped,
				"iterations":    report.Iterations,
				"converged":     report.Converged,
				"calibrated":    report.Calibrated,
				"duration":      report.Duration.String(),
			}).Info("Season rating run finished")
			return nil
		},
	}

	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "season to rate")
	cmd.Flags().BoolVar(&complete, "complete", false, "treat the season as fully played out")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func newCalibrateCmd() *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Recalibrate weights from stored profiles without rerunning the engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := service.NewRatingPipeline(a.cfg, a.db, a.repos, a.log)
			summary, err := pipeline.CalibrateSeason(ctx, season)
			if err != nil {
				return err
			}
			return printJSON(summary)
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "season to recalibrate")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func newPredictCmd() *cobra.Command {
	var gameID string
	var homeID, awayID string
	var season int
	var neutral bool

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Compose a matchup prediction from current profiles and weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := service.NewRatingPipeline(a.cfg, a.db, a.repos, a.log)

			if gameID != "" {
				id, err := uuid.Parse(gameID)
				if err != nil {
					return fmt.Errorf("invalid game id: %w", err)
				}
				result, err := pipeline.PredictGame(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(result)
			}

			home, err := uuid.Parse(homeID)
			if err != nil {
				return fmt.Errorf("invalid home team id: %w", err)
			}
			away, err := uuid.Parse(awayID)
			if err != nil {
				return fmt.Errorf("invalid away team id: %w", err)
			}

			result, err := pipeline.PredictMatchup(ctx, season, home, away, neutral)
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	cmd.Flags().StringVar(&gameID, "game", "", "stored game id to predict")
	cmd.Flags().StringVar(&homeID, "home", "", "home team id")
	cmd.Flags().StringVar(&awayID, "away", "", "away team id")
	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "season for an ad hoc matchup")
	cmd.Flags().BoolVar(&neutral, "neutral", false, "neutral site matchup")
	return cmd
}

func newIngestCmd() *cobra.Command {
	var source string
	var season, week int
	var teams bool

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch and store games, box scores, and teams from a data source",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			svc, err := a.newIngestionService()
			if err != nil {
				return err
			}

			if teams {
				return svc.SyncTeams(ctx, source)
			}

			report, err := svc.SyncSeason(ctx, source, season, week)
			if err != nil {
				return err
			}
			fmt.Println(report.String())
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "college_football_api", "data source name")
	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "season to sync")
	cmd.Flags().IntVar(&week, "week", 0, "week to sync (0 syncs the full season)")
	cmd.Flags().BoolVar(&teams, "teams", false, "sync the team directory instead of games")
	return cmd
}

func newBacktestCmd() *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay a season's completed games and store outcomes for auditing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := service.NewRatingPipeline(a.cfg, a.db, a.repos, a.log)
			stored, err := pipeline.BacktestSeason(ctx, season)
			if err != nil {
				return err
			}
			fmt.Printf("Stored %d prediction outcomes for season %d\n", stored, season)
			return nil
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "season to backtest")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func newAuditCmd() *cobra.Command {
	var season int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Audit a season's calibration and prediction accuracy",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := service.NewRatingPipeline(a.cfg, a.db, a.repos, a.log)
			run, err := pipeline.AuditSeason(ctx, season)
			if err != nil {
				return err
			}
			return printJSON(run)
		},
	}

	cmd.Flags().IntVar(&season, "season", 0, "season to audit")
	_ = cmd.MarkFlagRequired("season")
	return cmd
}

func newServeCmd() *cobra.Command {
	var season int
	var source string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler with health and metrics endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := setup(ctx)
			if err != nil {
				return err
			}
			defer a.close()

			pipeline := service.NewRatingPipeline(a.cfg, a.db, a.repos, a.log)
			svc, err := a.newIngestionService()
			if err != nil {
				return err
			}

			stdLog := log.New(os.Stderr, "", log.LstdFlags)
			sched := scheduler.NewScheduler(svc, pipeline, stdLog)

			schedule := a.cfg.DataIngestion.Schedule
			if err := sched.ScheduleSeasonSync(schedule.IngestionSync, source, season); err != nil {
				return err
			}
			if err := sched.ScheduleRecompute(schedule.RecomputeCron, season); err != nil {
				return err
			}
			if err := sched.ScheduleResultPolling(schedule.PollingIntervalSeconds, source); err != nil {
				return err
			}

			var metricsHandler = metrics.Handler()
			if !a.cfg.Metrics.Enabled {
				metricsHandler = nil
			}

			srv := health.NewServer(health.Config{
				ServiceName: a.cfg.App.Name,
				Version:     version,
				Commit:      commit,
				Port:        strconv.Itoa(a.cfg.Metrics.Port),
				Logger:      a.log,
				DB:          a.db,
				Metrics:     metricsHandler,
			})
			srv.RegisterCheck("profiles", func(ctx context.Context) error {
				profiles, err := a.repos.Rating.GetSeason(ctx, season)
				if err != nil {
					return err
				}
				if len(profiles) == 0 {
					return fmt.Errorf("no profiles rated for season %d", season)
				}
				return nil
			})

			if err := srv.Start(ctx); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			srv.SetReady(true)

			a.log.WithField("season", season).Info("Scheduler running; press Ctrl+C to stop")
			<-ctx.Done()

			srv.SetReady(false)
			return sched.Stop()
		},
	}

	cmd.Flags().IntVar(&season, "season", time.Now().Year(), "season the scheduler operates on")
	cmd.Flags().StringVar(&source, "source", "college_football_api", "data source for scheduled syncs")
	return cmd
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
