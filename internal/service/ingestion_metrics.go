package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about one data ingestion run
type IngestionMetrics struct {
	mu               sync.RWMutex
	StartTime        time.Time
	Duration         time.Duration
	TotalGames       int
	SuccessfulGames  int
	BoxScores        int
	Teams            int
	Duplicates       int
	ValidationErrors int
	Errors           int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalGames = 0
	m.SuccessfulGames = 0
	m.BoxScores = 0
	m.Teams = 0
	m.Duplicates = 0
	m.ValidationErrors = 0
	m.Errors = 0
}

// RecordGame increments successful game count
func (m *IngestionMetrics) RecordGame() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SuccessfulGames++
}

// RecordBoxScore increments box score count
func (m *IngestionMetrics) RecordBoxScore() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.BoxScores++
}

// RecordTeam increments team count
func (m *IngestionMetrics) RecordTeam() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Teams++
}

// RecordDuplicate increments duplicate count
func (m *IngestionMetrics) RecordDuplicate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duplicates++
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

// RecordValidationError increments validation error count
func (m *IngestionMetrics) RecordValidationError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ValidationErrors++
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalGames > 0 {
		successRate = float64(m.SuccessfulGames) / float64(m.TotalGames) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Games=%d, Successful=%d (%.1f%%), BoxScores=%d, Teams=%d, Duplicates=%d, ValidationErrors=%d, Errors=%d, Duration=%v}",
		m.TotalGames,
		m.SuccessfulGames,
		successRate,
		m.BoxScores,
		m.Teams,
		m.Duplicates,
		m.ValidationErrors,
		m.Errors,
		m.Duration,
	)
}
