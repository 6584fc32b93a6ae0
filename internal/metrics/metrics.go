// Package metrics provides the centralized Prometheus metrics registry for
// the rating pipeline.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RatingRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "rating_runs_total",
		Help:      "Total number of season rating runs by outcome",
	}, []string{"outcome"})
	GamesIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "games_ingested_total",
		Help:      "Total number of games ingested from data sources",
	})
	BoxScoresIngestedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "box_scores_ingested_total",
		Help:      "Total number of box scores ingested",
	})
	PredictionsComposedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "predictions_composed_total",
		Help:      "Total number of matchup predictions composed",
	})
	PredictionAdjustmentsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "prediction_adjustments_total",
		Help:      "Total number of category predictions clamped by bounds validation",
	})
	TeamsDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "teams_dropped_total",
		Help:      "Total number of teams dropped for insufficient games",
	})
	IngestionErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gridiron_edge",
		Name:      "ingestion_errors_total",
		Help:      "Total number of ingestion errors by source",
	}, []string{"source"})
)

// Gauge metrics
var (
	EngineIterations = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "engine_iterations",
		Help:      "Iterations used by the last rating run per season",
	}, []string{"season"})
	EngineMaxChange = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "engine_max_change",
		Help:      "Final maximum metric change of the last rating run per season",
	}, []string{"season"})
	RatedTeams = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "rated_teams",
		Help:      "Number of teams rated in the last run per season",
	}, []string{"season"})
	CalibrationConfidence = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "calibration_confidence",
		Help:      "Overall confidence of the last calibration run per season",
	}, []string{"season"})
	AuditBrierScore = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gridiron_edge",
		Name:      "audit_brier_score",
		Help:      "Brier score from the last accuracy audit per season",
	}, []string{"season"})
)

// Histogram metrics
var (
	RatingRunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "rating_run_duration_seconds",
		Help:      "Duration of full season rating runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
	CalibrationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "calibration_duration_seconds",
		Help:      "Duration of regression calibration runs in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	PredictionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "prediction_latency_seconds",
		Help:      "Latency of single matchup prediction composition in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	IngestionSyncDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "gridiron_edge",
		Name:      "ingestion_sync_duration_seconds",
		Help:      "Duration of data source sync cycles in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(RatingRunsTotal)
		registry.MustRegister(GamesIngestedTotal)
		registry.MustRegister(BoxScoresIngestedTotal)
		registry.MustRegister(PredictionsComposedTotal)
		registry.MustRegister(PredictionAdjustmentsTotal)
		registry.MustRegister(TeamsDroppedTotal)
		registry.MustRegister(IngestionErrorsTotal)

		// Register gauge metrics
		registry.MustRegister(EngineIterations)
		registry.MustRegister(EngineMaxChange)
		registry.MustRegister(RatedTeams)
		registry.MustRegister(CalibrationConfidence)
		registry.MustRegister(AuditBrierScore)

		// Register histogram metrics
		registry.MustRegister(RatingRunDuration)
		registry.MustRegister(CalibrationDuration)
		registry.MustRegister(PredictionLatency)
		registry.MustRegister(IngestionSyncDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRatingRun records a completed rating run with its outcome and duration.
func RecordRatingRun(outcome string, durationSeconds float64) {
	RatingRunsTotal.WithLabelValues(outcome).Inc()
	RatingRunDuration.Observe(durationSeconds)
}

// RecordGameIngested records one ingested game.
func RecordGameIngested() {
	GamesIngestedTotal.Inc()
}

// RecordBoxScoreIngested records one ingested box score.
func RecordBoxScoreIngested() {
	BoxScoresIngestedTotal.Inc()
}

// RecordIngestionError records one failed ingestion operation per source.
func RecordIngestionError(source string) {
	IngestionErrorsTotal.WithLabelValues(source).Inc()
}

// RecordPrediction records one composed prediction and its latency.
func RecordPrediction(durationSeconds float64, adjusted bool) {
	PredictionsComposedTotal.Inc()
	PredictionLatency.Observe(durationSeconds)
	if adjusted {
		PredictionAdjustmentsTotal.Inc()
	}
}

// RecordTeamDropped records a team excluded for insufficient games.
func RecordTeamDropped() {
	TeamsDroppedTotal.Inc()
}

// RecordCalibration records a calibration run's duration and confidence.
func RecordCalibration(season string, durationSeconds, confidence float64) {
	CalibrationDuration.Observe(durationSeconds)
	CalibrationConfidence.WithLabelValues(season).Set(confidence)
}

// UpdateEngineRun publishes the last rating run's summary gauges.
func UpdateEngineRun(season string, iterations, teams int, maxChange float64) {
	EngineIterations.WithLabelValues(season).Set(float64(iterations))
	EngineMaxChange.WithLabelValues(season).Set(maxChange)
	RatedTeams.WithLabelValues(season).Set(float64(teams))
}

// UpdateAuditBrier publishes the last audit's Brier score.
func UpdateAuditBrier(season string, brier float64) {
	AuditBrierScore.WithLabelValues(season).Set(brier)
}

// RecordIngestionSync records one full sync cycle's duration.
func RecordIngestionSync(durationSeconds float64) {
	IngestionSyncDuration.Observe(durationSeconds)
}
