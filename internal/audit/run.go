// Package audit validates calibration output and measures prediction accuracy
// against realized results.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/gridiron-edge/internal/calibration"
	"github.com/yourusername/gridiron-edge/internal/config"
	"github.com/yourusername/gridiron-edge/internal/models"
)

// RunState tracks an audit run through its lifecycle
type RunState string

// Audit run states. Transitions only move forward: not_started -> in_progress
// -> completed or failed.
const (
	RunNotStarted RunState = "not_started"
	RunInProgress RunState = "in_progress"
	RunCompleted  RunState = "completed"
	RunFailed     RunState = "failed"
)

// Run is one audit execution with its lifecycle and final report
type Run struct {
	ID         uuid.UUID `json:"id"`
	Season     int       `json:"season"`
	State      RunState  `json:"state"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
	Error      string    `json:"error,omitempty"`
	Report     *Report   `json:"report,omitempty"`
}

// Report bundles every audit phase's findings
type Report struct {
	Season           int             `json:"season"`
	RegressionIssues []Issue         `json:"regression_issues"`
	Accuracy         *AccuracyReport `json:"accuracy,omitempty"`
	Bias             *BiasReport     `json:"bias,omitempty"`
	GeneratedAt      time.Time       `json:"generated_at"`
}

// NewRun creates an audit run in its initial state
func NewRun(season int) *Run {
	return &Run{
		ID:     uuid.New(),
		Season: season,
		State:  RunNotStarted,
	}
}

// Start moves the run into progress. Only a fresh run may start.
func (r *Run) Start() error {
	if r.State != RunNotStarted {
		return fmt.Errorf("cannot start audit run in state %s", r.State)
	}
	r.State = RunInProgress
	r.StartedAt = time.Now()
	return nil
}

// Complete finishes the run with its report
func (r *Run) Complete(report *Report) error {
	if r.State != RunInProgress {
		return fmt.Errorf("cannot complete audit run in state %s", r.State)
	}
	r.State = RunCompleted
	r.Report = report
	r.FinishedAt = time.Now()
	return nil
}

// Fail finishes the run with an error
func (r *Run) Fail(err error) error {
	if r.State != RunInProgress {
		return fmt.Errorf("cannot fail audit run in state %s", r.State)
	}
	r.State = RunFailed
	r.Error = err.Error()
	r.FinishedAt = time.Now()
	return nil
}

// Auditor executes validation and accuracy audits
type Auditor struct {
	cfg config.AuditConfig
	log *logrus.Logger
}

// NewAuditor creates an auditor
func NewAuditor(cfg config.AuditConfig, log *logrus.Logger) *Auditor {
	return &Auditor{cfg: cfg, log: log}
}

// AuditInput carries everything one audit run inspects
type AuditInput struct {
	Season   int
	Summary  *models.RegressionModelSummary
	Samples  []calibration.CalibrationSample
	Outcomes []PredictionOutcome
}

// Execute runs every audit phase and drives the run's state machine. Phase
// errors fail the run; individual findings do not.
func (a *Auditor) Execute(ctx context.Context, run *Run, in AuditInput) error {
	if err := run.Start(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		_ = run.Fail(err)
		return err
	}

	report := &Report{Season: in.Season, GeneratedAt: time.Now()}

	if in.Summary != nil {
		report.RegressionIssues = a.AuditRegression(in.Summary, in.Samples)
	}

	if len(in.Outcomes) > 0 {
		accuracy, err := a.EvaluateAccuracy(in.Outcomes)
		if err != nil {
			_ = run.Fail(err)
			return err
		}
		report.Accuracy = accuracy
		report.Bias = a.DetectBias(in.Outcomes)
	}

	a.log.WithFields(logrus.Fields{
		"season":            in.Season,
		"regression_issues": len(report.RegressionIssues),
		"outcomes":          len(in.Outcomes),
	}).Info("Audit run complete")

	return run.Complete(report)
}
