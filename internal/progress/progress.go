// Package progress persists evaluation attempt history across sessions,
// keyed by (seed, difficulty). A Store holds one ScenarioProgress per
// scenario; recording an attempt reports how it compares to the history.
package progress

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"

	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// AttemptRecord is one recorded evaluation attempt.
type AttemptRecord struct {
	AttemptID      uuid.UUID      `json:"attempt_id"`
	Timestamp      time.Time      `json:"timestamp"`
	SchemaHash     string         `json:"schema_hash"`
	TotalScore     int            `json:"total_score"`
	MaxScore       int            `json:"max_score"`
	Percentage     float64        `json:"percentage"`
	AxisScores     map[string]int `json:"axis_scores"`
	DeductionCount int            `json:"deduction_count"`
}

// NewAttempt builds an AttemptRecord from an evaluation result and the
// hash of the submission that produced it.
func NewAttempt(result *evaluate.Result, schemaHash string) AttemptRecord {
	axes := make(map[string]int, len(result.AxisScores))
	deductions := 0
	for _, axis := range result.AxisScores {
		axes[axis.AxisName] = axis.Score
		deductions += len(axis.Deductions)
	}

	pct := 0.0
	if result.MaxPossibleScore > 0 {
		pct = float64(result.TotalScore) / float64(result.MaxPossibleScore) * 100
	}

	return AttemptRecord{
		AttemptID:      uuid.New(),
		Timestamp:      time.Now().UTC(),
		SchemaHash:     schemaHash,
		TotalScore:     result.TotalScore,
		MaxScore:       result.MaxPossibleScore,
		Percentage:     pct,
		AxisScores:     axes,
		DeductionCount: deductions,
	}
}

// ScenarioProgress aggregates the attempts against one scenario.
type ScenarioProgress struct {
	Seed           uint32          `json:"seed"`
	Difficulty     shop.Difficulty `json:"difficulty"`
	BestScore      int             `json:"best_score"`
	BestPercentage float64         `json:"best_percentage"`
	Attempts       []AttemptRecord `json:"attempts"`
	FirstAttempt   *time.Time      `json:"first_attempt,omitempty"`
	LastAttempt    *time.Time      `json:"last_attempt,omitempty"`
}

// AttemptCount is the number of recorded attempts.
func (p *ScenarioProgress) AttemptCount() int {
	return len(p.Attempts)
}

// RecordStatus describes how an attempt compares to the scenario's
// history. Improvement and regression compare percentages against the
// immediately preceding attempt; NewBest compares the score against the
// best so far.
type RecordStatus struct {
	FirstAttempt bool `json:"first_attempt"`
	NewBest      bool `json:"new_best"`
	Improvement  bool `json:"improvement"`
	Regression   bool `json:"regression"`
}

// Message is the one-line comparison note for display, empty when the
// attempt neither improved nor regressed.
func (s RecordStatus) Message() string {
	switch {
	case s.FirstAttempt:
		return "First attempt recorded"
	case s.NewBest:
		return "NEW PERSONAL BEST!"
	case s.Improvement:
		return "Improvement from last attempt!"
	case s.Regression:
		return "Regression from last attempt"
	default:
		return ""
	}
}

// Store persists scenario progress.
type Store interface {
	// RecordAttempt folds an attempt into the scenario's history and
	// reports how it compares.
	RecordAttempt(ctx context.Context, seed uint32, difficulty shop.Difficulty, attempt AttemptRecord) (RecordStatus, error)

	// Scenario returns the progress for one scenario, or nil when
	// nothing has been recorded for it.
	Scenario(ctx context.Context, seed uint32, difficulty shop.Difficulty) (*ScenarioProgress, error)

	// Scenarios returns every tracked scenario ordered by seed, then
	// difficulty.
	Scenarios(ctx context.Context) ([]ScenarioProgress, error)

	Close() error
}

// applyAttempt folds an attempt into the scenario in place and reports
// how it compares to the history. Both backends share this so their
// status semantics cannot drift.
func applyAttempt(p *ScenarioProgress, attempt AttemptRecord) RecordStatus {
	status := RecordStatus{FirstAttempt: len(p.Attempts) == 0}

	if p.FirstAttempt == nil {
		first := attempt.Timestamp
		p.FirstAttempt = &first
	}
	last := attempt.Timestamp
	p.LastAttempt = &last

	if n := len(p.Attempts); n > 0 {
		prev := p.Attempts[n-1].Percentage
		switch {
		case attempt.Percentage > prev:
			status.Improvement = true
		case attempt.Percentage < prev:
			status.Regression = true
		}
	}

	if attempt.TotalScore > p.BestScore {
		status.NewBest = true
		p.BestScore = attempt.TotalScore
		p.BestPercentage = attempt.Percentage
	}

	p.Attempts = append(p.Attempts, attempt)
	return status
}

// ComputeSchemaHash returns a short stable identifier for a submission,
// used to recognize resubmissions of the same schema. The document is
// canonicalized per RFC 8785 before hashing so formatting and key order
// do not change the hash.
func ComputeSchemaHash(sub *schema.Submission) (string, error) {
	raw, err := json.Marshal(sub)
	if err != nil {
		return "", fmt.Errorf("marshal submission: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("canonicalize submission: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:])[:16], nil
}
