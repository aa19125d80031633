// Package feedback turns an evaluation result into concrete violations
// with examples, consequences and fix hints, plus a prioritized fix
// list and a one-line summary. Deductions that carry their own
// explanation fields keep them; for the rest the explanation is
// synthesized from the deduction reason.
package feedback

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/slateworks/dimsim/internal/evaluate"
)

// axisDefaults maps each axis to the violation category assumed when a
// deduction does not declare one.
var axisDefaults = map[string]evaluate.ViolationCategory{
	"grain_correctness":     evaluate.GrainViolation,
	"temporal_correctness":  evaluate.TemporalLie,
	"semantic_faithfulness": evaluate.SemanticMismatch,
	"structural_optimality": evaluate.OverModeling,
	"event_preservation":    evaluate.DataLoss,
	"queryability":          evaluate.UnderModeling,
}

// Violation is one fully explained deduction: what went wrong, a
// concrete example, the consequence, and how to fix it.
type Violation struct {
	Type            evaluate.ViolationCategory `json:"violation_type"`
	WhatWentWrong   string                     `json:"what_went_wrong"`
	ConcreteExample string                     `json:"concrete_example"`
	Consequence     string                     `json:"consequence"`
	FixHint         string                     `json:"fix_hint"`
	AffectedTables  []string                   `json:"affected_tables"`
	Severity        evaluate.Severity          `json:"severity"`
	PointsDeducted  int                        `json:"points_deducted"`
}

// Feedback is the complete actionable view of an evaluation result.
type Feedback struct {
	TotalScore  int                                        `json:"total_score"`
	MaxScore    int                                        `json:"max_score"`
	Percentage  float64                                    `json:"percentage"`
	Violations  []Violation                                `json:"violations"`
	ByCategory  map[evaluate.ViolationCategory][]Violation `json:"by_category"`
	FixPriority []string                                   `json:"fix_priority"`
	Summary     string                                     `json:"summary"`
}

// New translates an evaluation result into actionable feedback.
// Violations are ordered worst first: by severity, then by points.
func New(result *evaluate.Result) Feedback {
	var violations []Violation
	byCategory := make(map[evaluate.ViolationCategory][]Violation)
	var categoryOrder []evaluate.ViolationCategory

	for _, axisScore := range result.AxisScores {
		for _, d := range axisScore.Deductions {
			v := fromDeduction(d, axisScore.AxisName)
			violations = append(violations, v)
			if _, ok := byCategory[v.Type]; !ok {
				categoryOrder = append(categoryOrder, v.Type)
			}
			byCategory[v.Type] = append(byCategory[v.Type], v)
		}
	}

	slices.SortStableFunc(violations, func(a, b Violation) int {
		if c := cmp.Compare(a.Severity.Rank(), b.Severity.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(b.PointsDeducted, a.PointsDeducted)
	})

	return Feedback{
		TotalScore:  result.TotalScore,
		MaxScore:    result.MaxPossibleScore,
		Percentage:  result.Percentage,
		Violations:  violations,
		ByCategory:  byCategory,
		FixPriority: fixPriority(violations),
		Summary:     summarize(byCategory, categoryOrder),
	}
}

// fromDeduction fills a Violation, synthesizing any explanation fields
// the axis did not provide.
func fromDeduction(d evaluate.Deduction, axisName string) Violation {
	category := d.Category
	if category == "" {
		category = axisDefaults[axisName]
		if category == "" {
			category = evaluate.SemanticMismatch
		}
	}

	example := d.Example
	if example == "" {
		example = synthesizeExample(d.Reason, axisName)
	}
	consequence := d.Consequence
	if consequence == "" {
		consequence = synthesizeConsequence(d.Reason, axisName)
	}
	fixHint := d.FixHint
	if fixHint == "" {
		fixHint = synthesizeFixHint(d.Reason, axisName)
	}

	return Violation{
		Type:            category,
		WhatWentWrong:   d.Reason,
		ConcreteExample: example,
		Consequence:     consequence,
		FixHint:         fixHint,
		AffectedTables:  append([]string{}, d.AffectedElements...),
		Severity:        d.Severity,
		PointsDeducted:  d.Points,
	}
}

// fixPriority lists the highest-impact fixes, one per violation
// category, capped at five.
func fixPriority(violations []Violation) []string {
	var priority []string
	seen := make(map[evaluate.ViolationCategory]bool)

	for _, v := range violations {
		if seen[v.Type] {
			continue
		}
		seen[v.Type] = true

		var impact string
		switch v.Severity {
		case evaluate.SeverityCritical:
			impact = "(breaks queries)"
		case evaluate.SeverityMajor:
			impact = "(significant data issues)"
		}

		tables := "schema"
		if len(v.AffectedTables) > 0 {
			tables = strings.Join(v.AffectedTables[:min(2, len(v.AffectedTables))], ", ")
		}
		priority = append(priority, strings.TrimSpace(fmt.Sprintf("%s [%s] %s", v.FixHint, tables, impact)))

		if len(priority) >= 5 {
			break
		}
	}
	return priority
}

func summarize(byCategory map[evaluate.ViolationCategory][]Violation, order []evaluate.ViolationCategory) string {
	labels := map[evaluate.ViolationCategory]string{
		evaluate.GrainViolation:   "grain violations",
		evaluate.TemporalLie:      "temporal lies",
		evaluate.SemanticMismatch: "semantic mismatches",
		evaluate.OverModeling:     "over-modeling issues",
		evaluate.UnderModeling:    "under-modeling issues",
		evaluate.DataLoss:         "data loss risks",
		evaluate.FanOutRisk:       "fan-out risks",
	}

	var parts []string
	for _, category := range order {
		violations := byCategory[category]
		if len(violations) == 0 {
			continue
		}
		label, ok := labels[category]
		if !ok {
			label = string(category)
		}
		parts = append(parts, fmt.Sprintf("%d %s", len(violations), label))
	}
	if len(parts) == 0 {
		return "No violations found"
	}
	return strings.Join(parts, " | ")
}

func synthesizeExample(reason, axisName string) string {
	lower := strings.ToLower(reason)

	if strings.Contains(lower, "grain") || axisName == "grain_correctness" {
		if strings.Contains(lower, "mixed") {
			return "Transaction TXN-001 has line items; TXN-002 is receipt-level only"
		}
		if strings.Contains(lower, "many-to-many") {
			return "Customer C-100 applies 3 promotions; all 3 rows appear in query output"
		}
		return "The fact table grain is ambiguous for certain events"
	}
	if strings.Contains(lower, "scd") || strings.Contains(lower, "history") || axisName == "temporal_correctness" {
		return "SKU-123 was in 'Electronics' in January, moved to 'Clearance' in February"
	}
	if strings.Contains(lower, "return") {
		return "Return RET-500 has no original_transaction_id - cannot trace to sale"
	}
	if strings.Contains(lower, "payment") {
		return "Transaction TXN-200 split across cash and credit card"
	}
	if strings.Contains(lower, "customer") || strings.Contains(lower, "anonymous") {
		return "15% of transactions have null or unreliable customer identifiers"
	}
	return ""
}

func synthesizeConsequence(reason, axisName string) string {
	lower := strings.ToLower(reason)

	if strings.Contains(lower, "grain") || axisName == "grain_correctness" {
		if strings.Contains(lower, "mixed") {
			return "SUM(quantity) will double-count or lose items. Aggregate queries are unreliable."
		}
		if strings.Contains(lower, "many-to-many") {
			return "Joining without a bridge table causes fan-out, inflating all measures."
		}
		return "Queries may produce inconsistent or incorrect aggregations"
	}
	if strings.Contains(lower, "scd") || strings.Contains(lower, "history") || axisName == "temporal_correctness" {
		return "Historical reports show current values, not point-in-time truth"
	}
	if strings.Contains(lower, "return") {
		return "Cannot calculate true customer lifetime value or accurate refund rates"
	}
	if strings.Contains(lower, "payment") {
		return "Cannot analyze payment method trends or reconcile transactions accurately"
	}
	if strings.Contains(lower, "missing") || strings.Contains(lower, "no ") {
		return "Business requirement cannot be answered by this model"
	}
	return "Query results will be incorrect or incomplete for some business questions"
}

func synthesizeFixHint(reason, axisName string) string {
	lower := strings.ToLower(reason)

	if strings.Contains(lower, "grain") || axisName == "grain_correctness" {
		switch {
		case strings.Contains(lower, "mixed"):
			return "Split into separate fact tables per grain, or add is_aggregated indicator"
		case strings.Contains(lower, "many-to-many"):
			return "Add a bridge table to handle the many-to-many relationship"
		case strings.Contains(lower, "description"):
			return "Add a clear grain_description stating exactly what one row represents"
		}
		return "Clarify the grain and ensure all grain columns are properly defined"
	}
	if strings.Contains(lower, "scd") || strings.Contains(lower, "type_1") || axisName == "temporal_correctness" {
		return "Change to Type 2 SCD and mark changing attributes with scd_tracked: true"
	}
	if strings.Contains(lower, "return") {
		if strings.Contains(lower, "reference") {
			return "Add nullable original_transaction_id FK, or model orphan returns separately"
		}
		return "Add a returns fact table to capture return events"
	}
	if strings.Contains(lower, "payment") {
		return "Add a payments fact table or payment bridge table for multiple payments"
	}
	if strings.Contains(lower, "customer") {
		if strings.Contains(lower, "no customer") || strings.Contains(lower, "missing") {
			return "Add a customer dimension with proper handling of anonymous customers"
		}
		return "Review customer dimension design for this shop's ID reliability"
	}
	if strings.Contains(lower, "inventory") {
		return "Add an inventory fact table matching the shop's tracking method"
	}
	return "Review the schema against shop configuration requirements"
}
