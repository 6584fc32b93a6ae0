// Package config provides configuration management for the Gridiron Edge rating pipeline.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App           AppConfig           `mapstructure:"app" validate:"required"`
	Database      DatabaseConfig      `mapstructure:"database" validate:"required"`
	Rating        RatingConfig        `mapstructure:"rating" validate:"required"`
	Blending      BlendingConfig      `mapstructure:"blending" validate:"required"`
	Calibration   CalibrationConfig   `mapstructure:"calibration" validate:"required"`
	Prediction    PredictionConfig    `mapstructure:"prediction" validate:"required"`
	Audit         AuditConfig         `mapstructure:"audit" validate:"required"`
	DataIngestion DataIngestionConfig `mapstructure:"data_ingestion" validate:"required"`
	Metrics       MetricsConfig       `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// RatingConfig tunes the opponent-adjusted efficiency engine
type RatingConfig struct {
	MaxIterations         int     `mapstructure:"max_iterations" validate:"required,gt=0"`
	ConvergenceThreshold  float64 `mapstructure:"convergence_threshold" validate:"required,gt=0"`
	TeamConvergenceQuorum float64 `mapstructure:"team_convergence_quorum" validate:"required,gt=0,lte=1"`
	OpponentQualityFactor float64 `mapstructure:"opponent_quality_factor" validate:"gte=0,lte=1"`
	AnomalyThreshold      float64 `mapstructure:"anomaly_threshold" validate:"required,gt=0"`
	Workers               int     `mapstructure:"workers" validate:"required,gt=0"`
}

// BlendingConfig tunes prior-season blending and Bayesian shrinkage
type BlendingConfig struct {
	BlendGameThreshold   int     `mapstructure:"blend_game_threshold" validate:"required,gt=0"`
	CurrentSeasonWeight  float64 `mapstructure:"current_season_weight" validate:"required,gt=0,lte=1"`
	PriorSeasonWeight    float64 `mapstructure:"prior_season_weight" validate:"gte=0,lt=1"`
	MinGamesCompleted    int     `mapstructure:"min_games_completed" validate:"required,gt=0"`
	MinGamesInProgress   int     `mapstructure:"min_games_in_progress" validate:"required,gt=0"`
	AbsoluteMinimumGames int     `mapstructure:"absolute_minimum_games" validate:"required,gte=0"`
	NoShrinkageGames     int     `mapstructure:"no_shrinkage_games" validate:"required,gt=0"`
	LightShrinkageGames  int     `mapstructure:"light_shrinkage_games" validate:"required,gt=0"`
}

// CalibrationConfig tunes the regression-based weight calibrator
type CalibrationConfig struct {
	MinDataPoints     int     `mapstructure:"min_data_points" validate:"required,gt=0"`
	RSquaredThreshold float64 `mapstructure:"r_squared_threshold" validate:"required,gt=0,lt=1"`
	PValueThreshold   float64 `mapstructure:"p_value_threshold" validate:"required,gt=0,lt=1"`
	MaxWeight         float64 `mapstructure:"max_weight" validate:"required,gt=0,lte=1"`
	FloorWeight       float64 `mapstructure:"floor_weight" validate:"required,gte=0,lt=1"`
}

// PredictionConfig tunes the opponent-relative prediction composer.
// The score blend constants dampen the calibrated weights; they are
// configurable rather than a hard-coded law.
type PredictionConfig struct {
	ScoringBlend       float64 `mapstructure:"scoring_blend" validate:"required,gt=0,lte=1"`
	TurnoverBlend      float64 `mapstructure:"turnover_blend" validate:"gte=0,lt=1"`
	FieldGoalBlend     float64 `mapstructure:"field_goal_blend" validate:"gte=0,lt=1"`
	HomeFieldAdvantage float64 `mapstructure:"home_field_advantage" validate:"gte=0,lte=10"`
	MarginSigma        float64 `mapstructure:"margin_sigma" validate:"required,gt=0"`
	ScoringCap         float64 `mapstructure:"scoring_cap" validate:"required,gt=0"`
	YardageCap         float64 `mapstructure:"yardage_cap" validate:"required,gt=0"`
}

// AuditConfig tunes the validation and accuracy-audit framework
type AuditConfig struct {
	SampleSize             int `mapstructure:"sample_size" validate:"required,gt=0"`
	CalibrationBins        int `mapstructure:"calibration_bins" validate:"required,gt=1"`
	MinBiasSamples         int `mapstructure:"min_bias_samples" validate:"required,gt=0"`
	MinSamplesPerPredictor int `mapstructure:"min_samples_per_predictor" validate:"required,gt=0"`
}

// DataIngestionConfig represents data ingestion configuration
type DataIngestionConfig struct {
	Sources  []DataSourceConfig `mapstructure:"sources" validate:"required,min=1"`
	Schedule ScheduleConfig     `mapstructure:"schedule" validate:"required"`
}

// DataSourceConfig represents a single data source configuration.
// BaseURL doubles as the root directory for file-backed sources, so it is
// not validated as a URL.
type DataSourceConfig struct {
	Name      string `mapstructure:"name" validate:"required"`
	Enabled   bool   `mapstructure:"enabled"`
	BaseURL   string `mapstructure:"base_url"`
	BatchSize int    `mapstructure:"batch_size" validate:"omitempty,gt=0"`
	APIKey    string `mapstructure:"api_key"`
}

// ScheduleConfig represents ingestion and recompute scheduling
type ScheduleConfig struct {
	IngestionSync          string `mapstructure:"ingestion_sync" validate:"required"`
	RecomputeCron          string `mapstructure:"recompute_cron" validate:"required"`
	PollingIntervalSeconds int    `mapstructure:"polling_interval_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// MinimumGames returns the season-appropriate minimum game count for
// treating a team's own data as reliable.
func (b BlendingConfig) MinimumGames(seasonComplete bool) int {
	if seasonComplete {
		return b.MinGamesCompleted
	}
	return b.MinGamesInProgress
}
