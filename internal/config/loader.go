// Package config provides configuration management for the Gridiron Edge rating pipeline.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	// Read the configuration file
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Environment variables override file values (GRIDIRON_DATABASE_HOST etc.)
	v.SetEnvPrefix("GRIDIRON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
// and tolerates a missing file, falling back to defaults and environment.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("GRIDIRON")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "gridiron-edge")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	// Engine defaults; the opponent quality factor is the tunable knob behind
	// the recursive baseline adjustment.
	v.SetDefault("rating.max_iterations", 50)
	v.SetDefault("rating.convergence_threshold", 0.001)
	v.SetDefault("rating.team_convergence_quorum", 0.98)
	v.SetDefault("rating.opponent_quality_factor", 0.1)
	v.SetDefault("rating.anomaly_threshold", 35.0)
	v.SetDefault("rating.workers", 8)

	v.SetDefault("blending.blend_game_threshold", 4)
	v.SetDefault("blending.current_season_weight", 0.85)
	v.SetDefault("blending.prior_season_weight", 0.15)
	v.SetDefault("blending.min_games_completed", 5)
	v.SetDefault("blending.min_games_in_progress", 4)
	v.SetDefault("blending.absolute_minimum_games", 2)
	v.SetDefault("blending.no_shrinkage_games", 12)
	v.SetDefault("blending.light_shrinkage_games", 8)

	v.SetDefault("calibration.min_data_points", 30)
	v.SetDefault("calibration.r_squared_threshold", 0.10)
	v.SetDefault("calibration.p_value_threshold", 0.05)
	v.SetDefault("calibration.max_weight", 0.5)
	v.SetDefault("calibration.floor_weight", 0.05)

	v.SetDefault("prediction.scoring_blend", 0.95)
	v.SetDefault("prediction.turnover_blend", 0.03)
	v.SetDefault("prediction.field_goal_blend", 0.02)
	v.SetDefault("prediction.home_field_advantage", 2.5)
	v.SetDefault("prediction.margin_sigma", 13.5)
	v.SetDefault("prediction.scoring_cap", 35.0)
	v.SetDefault("prediction.yardage_cap", 200.0)

	v.SetDefault("audit.sample_size", 100)
	v.SetDefault("audit.calibration_bins", 10)
	v.SetDefault("audit.min_bias_samples", 10)
	v.SetDefault("audit.min_samples_per_predictor", 15)
}

// ReloadFromEnv reloads specific configuration values from environment variables
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv("GRIDIRON_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}

	return nil
}
