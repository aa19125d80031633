package evaluate

import (
	"fmt"
	"strings"
)

// Severity grades how damaging a deduction is.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityMajor    Severity = "major"
	SeverityCritical Severity = "critical"
)

// Rank orders severities from most damaging (0) to least.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityMajor:
		return 1
	case SeverityModerate:
		return 2
	default:
		return 3
	}
}

// ViolationCategory classifies a deduction for the feedback
// translator.
type ViolationCategory string

const (
	GrainViolation   ViolationCategory = "grain_violation"
	TemporalLie      ViolationCategory = "temporal_lie"
	SemanticMismatch ViolationCategory = "semantic_mismatch"
	OverModeling     ViolationCategory = "over_modeling"
	UnderModeling    ViolationCategory = "under_modeling"
	DataLoss         ViolationCategory = "data_loss"
	FanOutRisk       ViolationCategory = "fan_out_risk"
)

// Deduction is one scoring penalty (or, on the queryability axis, one
// bonus). The category, example, consequence and fix hint are optional;
// when absent the feedback translator synthesizes them from the reason
// text.
type Deduction struct {
	Points           int      `json:"points"`
	Reason           string   `json:"reason"`
	Severity         Severity `json:"severity"`
	AffectedElements []string `json:"affected_elements,omitempty"`

	Category    ViolationCategory `json:"category,omitempty"`
	Example     string            `json:"example,omitempty"`
	Consequence string            `json:"consequence,omitempty"`
	FixHint     string            `json:"fix_hint,omitempty"`
}

// AxisScore is one axis's verdict.
type AxisScore struct {
	AxisName   string      `json:"axis_name"`
	Score      int         `json:"score"`
	MaxScore   int         `json:"max_score"`
	Percentage float64     `json:"percentage"`
	Deductions []Deduction `json:"deductions"`
	Commentary string      `json:"commentary"`
}

// newAxisScore assembles an AxisScore with the standard commentary and
// percentage derived from the deductions.
func newAxisScore(name string, score, maxScore int, deductions []Deduction) AxisScore {
	return AxisScore{
		AxisName:   name,
		Score:      score,
		MaxScore:   maxScore,
		Percentage: percentage(score, maxScore),
		Deductions: deductions,
		Commentary: commentary(deductions),
	}
}

func percentage(score, maxScore int) float64 {
	if maxScore <= 0 {
		return 0
	}
	return float64(score) / float64(maxScore) * 100
}

// commentary summarizes an axis's deductions by the worst severity
// present.
func commentary(deductions []Deduction) string {
	if len(deductions) == 0 {
		return "No issues found."
	}
	var critical, major int
	for _, d := range deductions {
		switch d.Severity {
		case SeverityCritical:
			critical++
		case SeverityMajor:
			major++
		}
	}
	switch {
	case critical > 0:
		return fmt.Sprintf("Critical issues found: %d critical, %d major problems.", critical, major)
	case major > 0:
		return fmt.Sprintf("Significant issues found: %d major problems.", major)
	default:
		return fmt.Sprintf("Minor issues found: %d total.", len(deductions))
	}
}

// Result is a complete evaluation: every axis verdict in execution
// order plus the combined critique and recommendations.
type Result struct {
	TotalScore       int         `json:"total_score"`
	MaxPossibleScore int         `json:"max_possible_score"`
	Percentage       float64     `json:"percentage"`
	AxisScores       []AxisScore `json:"axis_scores"`
	Critique         string      `json:"critique"`
	Recommendations  []string    `json:"recommendations"`
}

// Axis returns the named axis verdict, or nil.
func (r *Result) Axis(name string) *AxisScore {
	for i := range r.AxisScores {
		if r.AxisScores[i].AxisName == name {
			return &r.AxisScores[i]
		}
	}
	return nil
}

// Report renders the result as a fixed-width text report.
func (r *Result) Report() string {
	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)
	lines := []string{
		rule,
		"SCHEMA EVALUATION REPORT",
		rule,
		"",
		fmt.Sprintf("Total Score: %d/%d (%.1f%%)", r.TotalScore, r.MaxPossibleScore, r.Percentage),
		"",
		thin,
		"SCORES BY AXIS",
		thin,
	}

	for _, axis := range r.AxisScores {
		lines = append(lines, fmt.Sprintf("\n%s: %d/%d", axisTitle(axis.AxisName), axis.Score, axis.MaxScore))
		for _, d := range axis.Deductions {
			lines = append(lines, fmt.Sprintf("  - [%s] %s (-%d)", strings.ToUpper(string(d.Severity)), d.Reason, d.Points))
		}
		if axis.Commentary != "" {
			lines = append(lines, "  Commentary: "+axis.Commentary)
		}
	}

	if r.Critique != "" {
		lines = append(lines, "", thin, "CRITIQUE", thin, r.Critique)
	}
	if len(r.Recommendations) > 0 {
		lines = append(lines, "", thin, "RECOMMENDATIONS", thin)
		for i, rec := range r.Recommendations {
			lines = append(lines, fmt.Sprintf("%d. %s", i+1, rec))
		}
	}

	lines = append(lines, "", rule)
	return strings.Join(lines, "\n")
}

// axisTitle renders "event_preservation" as "Event Preservation".
func axisTitle(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
