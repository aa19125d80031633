package evaluate

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// Evaluator scores schema submissions against a single shop
// configuration. It is safe to reuse for multiple submissions.
type Evaluator struct {
	ctx  Context
	axes []axis
}

// NewEvaluator builds an evaluator for the given shop configuration.
func NewEvaluator(cfg shop.Configuration) *Evaluator {
	ctx := NewContext(cfg)
	return &Evaluator{
		ctx: ctx,
		axes: []axis{
			eventPreservationAxis{ctx: ctx},
			grainCorrectnessAxis{ctx: ctx},
			temporalCorrectnessAxis{ctx: ctx},
			semanticFaithfulnessAxis{ctx: ctx},
			structuralOptimalityAxis{ctx: ctx},
			queryabilityAxis{ctx: ctx},
		},
	}
}

// Evaluate runs every axis against the submission and assembles the
// scored result. The same submission always produces the same result.
func (e *Evaluator) Evaluate(sub schema.Submission) *Result {
	scores := make([]AxisScore, 0, len(e.axes))
	total, maxTotal := 0, 0
	for _, ax := range e.axes {
		score := ax.evaluate(sub)
		scores = append(scores, score)
		total += score.Score
		maxTotal += score.MaxScore
	}

	pct := percentage(total, maxTotal)
	return &Result{
		TotalScore:       total,
		MaxPossibleScore: maxTotal,
		Percentage:       pct,
		AxisScores:       scores,
		Critique:         e.buildCritique(scores, sub, pct),
		Recommendations:  e.buildRecommendations(scores),
	}
}

// Evaluate is a convenience wrapper for one-off evaluations.
func Evaluate(cfg shop.Configuration, sub schema.Submission) *Result {
	return NewEvaluator(cfg).Evaluate(sub)
}

func (e *Evaluator) buildCritique(scores []AxisScore, sub schema.Submission, pct float64) string {
	var lines []string

	switch {
	case pct >= 80:
		lines = append(lines, "This schema demonstrates strong modeling practices overall.")
	case pct >= 60:
		lines = append(lines, "This schema shows reasonable modeling but has areas for improvement.")
	case pct >= 40:
		lines = append(lines, "This schema has significant issues that may cause problems in production.")
	default:
		lines = append(lines, "This schema has critical deficiencies that need to be addressed.")
	}
	lines = append(lines, "")

	if critical := issueBullets(scores, SeverityCritical); len(critical) > 0 {
		lines = append(lines, "**Critical Issues:**")
		lines = append(lines, critical...)
		lines = append(lines, "")
	}
	if major := issueBullets(scores, SeverityMajor); len(major) > 0 {
		lines = append(lines, "**Major Issues:**")
		lines = append(lines, major...)
		lines = append(lines, "")
	}

	var strengths []string
	for _, score := range scores {
		if score.Percentage >= 80 {
			strengths = append(strengths, fmt.Sprintf("- %s: %.0f%%", axisTitle(score.AxisName), score.Percentage))
		}
	}
	if len(strengths) > 0 {
		lines = append(lines, "**Strengths:**")
		lines = append(lines, strengths...)
		lines = append(lines, "")
	}

	lines = append(lines, "**Schema Summary:**")
	lines = append(lines, fmt.Sprintf("- %d fact table(s)", len(sub.FactTables)))
	lines = append(lines, fmt.Sprintf("- %d dimension table(s)", len(sub.DimensionTables)))
	lines = append(lines, fmt.Sprintf("- %d relationship(s)", len(sub.Relationships)))
	if len(sub.BridgeTables) > 0 {
		lines = append(lines, fmt.Sprintf("- %d bridge table(s)", len(sub.BridgeTables)))
	}

	return strings.Join(lines, "\n")
}

// buildRecommendations surfaces the most impactful fixes, worst axis
// first, capped at five entries.
func (e *Evaluator) buildRecommendations(scores []AxisScore) []string {
	var recs []string

	ordered := slices.Clone(scores)
	slices.SortStableFunc(ordered, func(a, b AxisScore) int {
		return cmp.Compare(a.Percentage, b.Percentage)
	})

	for _, score := range ordered {
		if score.Percentage >= 70 {
			continue
		}
		if ded, ok := firstWithSeverity(score.Deductions, SeverityCritical); ok {
			recs = append(recs, fmt.Sprintf("[%s] Fix critical issue: %s", score.AxisName, ded.Reason))
		} else if ded, ok := firstWithSeverity(score.Deductions, SeverityMajor); ok {
			recs = append(recs, fmt.Sprintf("[%s] Address: %s", score.AxisName, ded.Reason))
		}
	}

	if e.ctx.Config.Time.BackdatedCorrections {
		recs = append(recs, "Ensure fact tables distinguish event_timestamp from business_effective_date")
	}
	if e.ctx.Config.Transactions.Grain == shop.GrainMixed {
		recs = append(recs, "Consider separate fact tables for line-item vs aggregated transactions")
	}

	if len(recs) > 5 {
		recs = recs[:5]
	}
	return recs
}

func issueBullets(scores []AxisScore, severity Severity) []string {
	var bullets []string
	for _, score := range scores {
		for _, ded := range score.Deductions {
			if ded.Severity == severity {
				bullets = append(bullets, fmt.Sprintf("- [%s] %s", score.AxisName, ded.Reason))
			}
		}
	}
	return bullets
}

func firstWithSeverity(deductions []Deduction, severity Severity) (Deduction, bool) {
	for _, ded := range deductions {
		if ded.Severity == severity {
			return ded, true
		}
	}
	return Deduction{}, false
}
