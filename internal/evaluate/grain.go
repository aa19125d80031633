package evaluate

import (
	"fmt"
	"slices"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
)

// mixedGrainIndicators are grain-description fragments suggesting one
// fact table carries more than one grain. Matching is plain substring:
// "order" trips the "or" indicator, and that is the contract.
var mixedGrainIndicators = []string{"or", "sometimes", "depending", "either", "mixed"}

// grainConceptFragments are distinct grain concepts; a description
// mentioning more than one is suspect.
var grainConceptFragments = []string{"transaction", "line item", "order", "event", "snapshot"}

// grainCorrectnessAxis checks grain declarations and consistency.
type grainCorrectnessAxis struct {
	ctx Context
}

func (a grainCorrectnessAxis) name() string  { return "grain_correctness" }
func (a grainCorrectnessAxis) maxScore() int { return 100 }

func (a grainCorrectnessAxis) evaluate(sub schema.Submission) AxisScore {
	var deductions []Deduction
	for _, fact := range sub.FactTables {
		deductions = append(deductions, a.checkGrainDeclaration(fact)...)
		deductions = append(deductions, a.checkGrainColumns(fact)...)
		deductions = append(deductions, a.checkFanOutRisk(fact, sub)...)
		deductions = append(deductions, a.checkMixedGrain(fact)...)
	}

	score := max(0, a.maxScore()-deductionTotal(deductions))
	return newAxisScore(a.name(), score, a.maxScore(), deductions)
}

func (a grainCorrectnessAxis) checkGrainDeclaration(fact schema.FactTable) []Deduction {
	if len(strings.TrimSpace(fact.GrainDescription)) >= 10 {
		return nil
	}
	return []Deduction{{
		Points:           10,
		Reason:           fmt.Sprintf("Fact table '%s' has no or insufficient grain description", fact.Name),
		Severity:         SeverityModerate,
		AffectedElements: []string{fact.Name},
		Category:         GrainViolation,
		Example:          "Without a grain statement, it's unclear what one row represents",
		Consequence:      "Queries may aggregate incorrectly; team members will misuse the table",
		FixHint:          "Add a clear grain_description stating exactly what one row represents",
	}}
}

func (a grainCorrectnessAxis) checkGrainColumns(fact schema.FactTable) []Deduction {
	var deductions []Deduction
	for _, gc := range fact.GrainColumns {
		switch {
		case gc.ReferencesDimension != "":
			if !slices.Contains(fact.DimensionKeys, gc.ReferencesDimension) {
				deductions = append(deductions, Deduction{
					Points:           10,
					Reason:           fmt.Sprintf("Grain column '%s' references '%s' which is not in dimension_keys", gc.Name, gc.ReferencesDimension),
					Severity:         SeverityModerate,
					AffectedElements: []string{fact.Name, gc.Name},
				})
			}
		case !gc.IsDegenerate:
			deductions = append(deductions, Deduction{
				Points:           5,
				Reason:           fmt.Sprintf("Grain column '%s' should reference a dimension or be marked as degenerate", gc.Name),
				Severity:         SeverityMinor,
				AffectedElements: []string{fact.Name, gc.Name},
			})
		}
	}
	return deductions
}

func (a grainCorrectnessAxis) checkFanOutRisk(fact schema.FactTable, sub schema.Submission) []Deduction {
	var deductions []Deduction
	for _, rel := range sub.RelationshipsForFact(fact.Name) {
		if rel.Cardinality != schema.ManyToMany {
			continue
		}
		hasBridge := false
		for _, bt := range sub.BridgeTables {
			if bt.FactTable == fact.Name && bt.DimensionTable == rel.DimensionTable {
				hasBridge = true
				break
			}
		}
		if !hasBridge {
			deductions = append(deductions, Deduction{
				Points:           20,
				Reason:           fmt.Sprintf("Many-to-many relationship between '%s' and '%s' without bridge table", fact.Name, rel.DimensionTable),
				Severity:         SeverityMajor,
				AffectedElements: []string{fact.Name, rel.DimensionTable},
				Category:         FanOutRisk,
				Example:          fmt.Sprintf("One %s row joins to multiple %s rows, duplicating measures", fact.Name, rel.DimensionTable),
				Consequence:      "SUM/COUNT queries inflate by the fan-out factor; all aggregations are wrong",
				FixHint:          fmt.Sprintf("Add a bridge table between %s and %s", fact.Name, rel.DimensionTable),
			})
		}
	}
	return deductions
}

func (a grainCorrectnessAxis) checkMixedGrain(fact schema.FactTable) []Deduction {
	var deductions []Deduction
	grainDesc := strings.ToLower(fact.GrainDescription)

	for _, indicator := range mixedGrainIndicators {
		if strings.Contains(grainDesc, indicator) {
			deductions = append(deductions, Deduction{
				Points:           25,
				Reason:           fmt.Sprintf("Fact '%s' grain description suggests mixed grain (contains '%s')", fact.Name, indicator),
				Severity:         SeverityCritical,
				AffectedElements: []string{fact.Name},
				Category:         GrainViolation,
				Example:          "TXN-001 has 3 line items; TXN-002 is receipt-level only - both in same table",
				Consequence:      "SUM(quantity) double-counts or loses items; no reliable aggregation possible",
				FixHint:          "Split into separate fact tables per grain, or add is_aggregated indicator column",
			})
			break
		}
	}

	var found []string
	for _, fragment := range grainConceptFragments {
		if strings.Contains(grainDesc, fragment) {
			found = append(found, fragment)
		}
	}
	if len(found) > 1 {
		deductions = append(deductions, Deduction{
			Points:           15,
			Reason:           fmt.Sprintf("Fact '%s' grain mentions multiple concepts: %s", fact.Name, quotedList(found)),
			Severity:         SeverityMajor,
			AffectedElements: []string{fact.Name},
		})
	}
	return deductions
}
