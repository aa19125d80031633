package progress

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// Tracker records evaluation outcomes against a Store.
type Tracker struct {
	store Store
}

// NewTracker creates a tracker over the given store.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store}
}

// Record hashes the submission, folds the evaluation result into the
// scenario's history and reports how the attempt compares.
func (t *Tracker) Record(ctx context.Context, seed uint32, difficulty shop.Difficulty, result *evaluate.Result, sub *schema.Submission) (RecordStatus, error) {
	hash, err := ComputeSchemaHash(sub)
	if err != nil {
		return RecordStatus{}, fmt.Errorf("hash submission: %w", err)
	}
	return t.store.RecordAttempt(ctx, seed, difficulty, NewAttempt(result, hash))
}

// Scenario returns the progress for one scenario, or nil.
func (t *Tracker) Scenario(ctx context.Context, seed uint32, difficulty shop.Difficulty) (*ScenarioProgress, error) {
	return t.store.Scenario(ctx, seed, difficulty)
}

const historyBarWidth = 20

// RenderHistory formats a scenario's attempt history for the terminal:
// best score, attempt count and a bar per recent attempt with the delta
// against the attempt before it.
func RenderHistory(p *ScenarioProgress, now time.Time) string {
	if p == nil || len(p.Attempts) == 0 {
		return "No previous attempts for this scenario."
	}

	lines := []string{
		fmt.Sprintf("Progress: Seed %d, %s", p.Seed, titleCase(string(p.Difficulty))),
		fmt.Sprintf("Best Score: %d (%.1f%%)", p.BestScore, p.BestPercentage),
		fmt.Sprintf("Attempts: %d", len(p.Attempts)),
		"",
		"Recent History:",
	}

	recent := p.Attempts
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	offset := len(p.Attempts) - len(recent)

	for i, attempt := range recent {
		idx := offset + i + 1

		marker := ""
		if idx > 1 {
			prev := p.Attempts[idx-2]
			if attempt.Percentage > prev.Percentage {
				marker = fmt.Sprintf(" +%.0f%%", attempt.Percentage-prev.Percentage)
			} else if attempt.Percentage < prev.Percentage {
				marker = fmt.Sprintf(" %.0f%%", attempt.Percentage-prev.Percentage)
			}
		}
		if attempt.TotalScore == p.BestScore {
			marker += " BEST"
		}

		lines = append(lines, fmt.Sprintf("  #%d  %5.1f%%  %s%s",
			idx, attempt.Percentage, historyBar(attempt.Percentage), marker))
	}

	if p.LastAttempt != nil {
		lines = append(lines, "", "Last attempt: "+relativeAge(now, *p.LastAttempt))
	}

	return strings.Join(lines, "\n")
}

func historyBar(pct float64) string {
	filled := int(pct / 100 * historyBarWidth)
	if filled < 0 {
		filled = 0
	}
	if filled > historyBarWidth {
		filled = historyBarWidth
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", historyBarWidth-filled)
}

func relativeAge(now, then time.Time) string {
	d := now.Sub(then)
	switch {
	case d >= 24*time.Hour:
		return fmt.Sprintf("%d days ago", int(d.Hours()/24))
	case d >= time.Hour:
		return fmt.Sprintf("%d hours ago", int(d.Hours()))
	case d >= time.Minute:
		return fmt.Sprintf("%d minutes ago", int(d.Minutes()))
	default:
		return "just now"
	}
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
