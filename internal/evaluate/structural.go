package evaluate

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
)

// redundancyPairs are dimension-name fragments that usually describe
// the same thing twice.
var redundancyPairs = [][2]string{
	{"date", "time"},
	{"product", "item"},
	{"store", "location"},
}

// structuralOptimalityAxis checks for over-normalized, redundant or
// oversized designs.
type structuralOptimalityAxis struct {
	ctx Context
}

func (a structuralOptimalityAxis) name() string  { return "structural_optimality" }
func (a structuralOptimalityAxis) maxScore() int { return 100 }

func (a structuralOptimalityAxis) evaluate(sub schema.Submission) AxisScore {
	var deductions []Deduction
	deductions = append(deductions, a.checkSnowflaking(sub)...)
	deductions = append(deductions, a.checkRedundantDimensions(sub)...)
	deductions = append(deductions, a.checkUnnecessaryFacts(sub)...)
	deductions = append(deductions, a.checkOverEngineering(sub)...)

	score := max(0, a.maxScore()-deductionTotal(deductions))
	return newAxisScore(a.name(), score, a.maxScore(), deductions)
}

func (a structuralOptimalityAxis) checkSnowflaking(sub schema.Submission) []Deduction {
	var deductions []Deduction

	var snowflaked []schema.DimensionTable
	for _, dim := range sub.DimensionTables {
		if dim.ParentDimension != "" {
			snowflaked = append(snowflaked, dim)
		}
	}

	for _, dim := range snowflaked {
		parent := sub.Dimension(dim.ParentDimension)
		if parent != nil && len(parent.Attributes) <= 3 {
			deductions = append(deductions, Deduction{
				Points:           5,
				Reason:           fmt.Sprintf("Dimension '%s' snowflakes to '%s' which has few attributes", dim.Name, parent.Name),
				Severity:         SeverityMinor,
				AffectedElements: []string{dim.Name, parent.Name},
			})
		}
	}

	if len(snowflaked) > len(sub.DimensionTables)/2 {
		names := make([]string, len(snowflaked))
		for i, d := range snowflaked {
			names[i] = d.Name
		}
		deductions = append(deductions, Deduction{
			Points:           10,
			Reason:           "Excessive snowflaking may complicate queries unnecessarily",
			Severity:         SeverityModerate,
			AffectedElements: names,
		})
	}
	return deductions
}

func (a structuralOptimalityAxis) checkRedundantDimensions(sub schema.Submission) []Deduction {
	var deductions []Deduction

	dimNames := make([]string, len(sub.DimensionTables))
	for i, dt := range sub.DimensionTables {
		dimNames[i] = strings.ToLower(dt.Name)
	}

	for _, pair := range redundancyPairs {
		hasFirst, hasSecond := false, false
		for _, name := range dimNames {
			if strings.Contains(name, pair[0]) {
				hasFirst = true
			}
			if strings.Contains(name, pair[1]) {
				hasSecond = true
			}
		}
		if hasFirst && hasSecond {
			deductions = append(deductions, Deduction{
				Points:           5,
				Reason:           fmt.Sprintf("Dimensions with '%s' and '%s' might be redundant", pair[0], pair[1]),
				Severity:         SeverityMinor,
				AffectedElements: []string{pair[0], pair[1]},
			})
		}
	}
	return deductions
}

func (a structuralOptimalityAxis) checkUnnecessaryFacts(sub schema.Submission) []Deduction {
	var deductions []Deduction

	for _, fact := range sub.FactTables {
		if len(fact.Measures) == 0 {
			deductions = append(deductions, Deduction{
				Points:           10,
				Reason:           fmt.Sprintf("Fact table '%s' has no measures (factless fact should be intentional)", fact.Name),
				Severity:         SeverityModerate,
				AffectedElements: []string{fact.Name},
			})
		}

		// Identical grain fires from both orderings of the pair.
		for _, other := range sub.FactTables {
			if fact.Name != other.Name &&
				strings.EqualFold(fact.GrainDescription, other.GrainDescription) {
				deductions = append(deductions, Deduction{
					Points:           15,
					Reason:           fmt.Sprintf("Fact tables '%s' and '%s' have identical grain - consider consolidating", fact.Name, other.Name),
					Severity:         SeverityMajor,
					AffectedElements: []string{fact.Name, other.Name},
				})
				break
			}
		}
	}
	return deductions
}

func (a structuralOptimalityAxis) checkOverEngineering(sub schema.Submission) []Deduction {
	var deductions []Deduction

	numFacts := len(sub.FactTables)
	numDims := len(sub.DimensionTables)

	expectedFacts := 1
	if a.ctx.Config.HasReturns() {
		expectedFacts++
	}
	if a.ctx.Config.Inventory.Tracked {
		expectedFacts++
	}
	expectedDims := 4
	if a.ctx.Config.Promotions.BasketLevel {
		expectedDims++
	}

	if numFacts > expectedFacts*2 {
		deductions = append(deductions, Deduction{
			Points:           10,
			Reason:           fmt.Sprintf("Schema has %d fact tables; %d-%d may be sufficient", numFacts, expectedFacts, expectedFacts+2),
			Severity:         SeverityModerate,
			AffectedElements: []string{"fact_tables"},
			Category:         OverModeling,
			Example:          fmt.Sprintf("Created %d facts for a shop that needs %d-%d", numFacts, expectedFacts, expectedFacts+2),
			Consequence:      "Increased complexity, maintenance burden, and query confusion",
			FixHint:          "Review if some fact tables can be consolidated or removed",
		})
	}
	if numDims > expectedDims*2 {
		deductions = append(deductions, Deduction{
			Points:           5,
			Reason:           fmt.Sprintf("Schema has %d dimensions; %d-%d may be sufficient", numDims, expectedDims, expectedDims+3),
			Severity:         SeverityMinor,
			AffectedElements: []string{"dimension_tables"},
		})
	}
	return deductions
}
