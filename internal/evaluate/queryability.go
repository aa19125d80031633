package evaluate

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
)

var (
	richTimeFragments     = []string{"year", "quarter", "month", "week", "day", "fiscal"}
	aggregateNamePatterns = []string{"summary", "aggregate", "daily", "monthly", "snapshot"}
)

// queryabilityAxis awards bonus points for analytical conveniences
// instead of deducting for problems. The score is the capped sum of
// the bonuses.
type queryabilityAxis struct {
	ctx Context
}

func (a queryabilityAxis) name() string  { return "queryability" }
func (a queryabilityAxis) maxScore() int { return 100 }

func (a queryabilityAxis) evaluate(sub schema.Submission) AxisScore {
	var bonuses []Deduction
	bonuses = append(bonuses, a.checkDateDimension(sub)...)
	bonuses = append(bonuses, a.checkConformedDimensions(sub)...)
	bonuses = append(bonuses, a.checkAggregateSupport(sub)...)
	bonuses = append(bonuses, a.checkNamingConventions(sub)...)

	score := min(a.maxScore(), deductionTotal(bonuses))

	var commentary string
	switch {
	case score >= 40:
		commentary = "Good queryability with multiple best practices implemented."
	case score >= 20:
		commentary = "Decent queryability with some best practices."
	case score > 0:
		commentary = "Basic queryability; consider adding more analytical conveniences."
	default:
		commentary = "No specific queryability bonuses detected."
	}

	return AxisScore{
		AxisName:   a.name(),
		Score:      score,
		MaxScore:   a.maxScore(),
		Percentage: percentage(score, a.maxScore()),
		Deductions: bonuses,
		Commentary: commentary,
	}
}

func (a queryabilityAxis) checkDateDimension(sub schema.Submission) []Deduction {
	var bonuses []Deduction

	var dateDims []schema.DimensionTable
	for _, dim := range sub.DimensionTables {
		if containsAny(strings.ToLower(dim.Name), "date", "time") {
			dateDims = append(dateDims, dim)
		}
	}
	if len(dateDims) == 0 {
		return nil
	}

	names := make([]string, len(dateDims))
	for i, d := range dateDims {
		names[i] = d.Name
	}
	bonuses = append(bonuses, Deduction{
		Points:           15,
		Reason:           "Date/time dimension present for time-based analysis",
		Severity:         SeverityMinor,
		AffectedElements: names,
	})

	for _, dim := range dateDims {
		found := 0
		for _, frag := range richTimeFragments {
			for _, attr := range dim.Attributes {
				if strings.Contains(strings.ToLower(attr.Name), frag) {
					found++
					break
				}
			}
		}
		if found >= 3 {
			bonuses = append(bonuses, Deduction{
				Points:           10,
				Reason:           fmt.Sprintf("Date dimension '%s' has rich time hierarchy attributes", dim.Name),
				Severity:         SeverityMinor,
				AffectedElements: []string{dim.Name},
			})
		}
	}
	return bonuses
}

func (a queryabilityAxis) checkConformedDimensions(sub schema.Submission) []Deduction {
	counts := make(map[string]int)
	var order []string
	for _, rel := range sub.Relationships {
		if counts[rel.DimensionTable] == 0 {
			order = append(order, rel.DimensionTable)
		}
		counts[rel.DimensionTable]++
	}

	var conformed []string
	for _, name := range order {
		if counts[name] >= 2 {
			conformed = append(conformed, name)
		}
	}
	if len(conformed) == 0 {
		return nil
	}
	return []Deduction{{
		Points:           15,
		Reason:           fmt.Sprintf("Conformed dimensions used across multiple facts: %s", quotedList(conformed)),
		Severity:         SeverityMinor,
		AffectedElements: conformed,
	}}
}

func (a queryabilityAxis) checkAggregateSupport(sub schema.Submission) []Deduction {
	var aggFacts []string
	for _, fact := range sub.FactTables {
		if containsAny(strings.ToLower(fact.Name), aggregateNamePatterns...) {
			aggFacts = append(aggFacts, fact.Name)
		}
	}
	if len(aggFacts) == 0 {
		return nil
	}
	return []Deduction{{
		Points:           10,
		Reason:           fmt.Sprintf("Pre-aggregated tables may improve query performance: %s", quotedList(aggFacts)),
		Severity:         SeverityMinor,
		AffectedElements: aggFacts,
	}}
}

func (a queryabilityAxis) checkNamingConventions(sub schema.Submission) []Deduction {
	var bonuses []Deduction

	factsConsistent := true
	for _, fact := range sub.FactTables {
		prefix := strings.ToLower(strings.SplitN(fact.Name, "_", 2)[0])
		if prefix != "fact" && prefix != "fct" {
			factsConsistent = false
			break
		}
	}
	if factsConsistent {
		bonuses = append(bonuses, Deduction{
			Points:           5,
			Reason:           "Consistent fact table naming convention",
			Severity:         SeverityMinor,
			AffectedElements: []string{"naming"},
		})
	}

	dimsConsistent := true
	for _, dim := range sub.DimensionTables {
		prefix := strings.ToLower(strings.SplitN(dim.Name, "_", 2)[0])
		if prefix != "dim" && prefix != "dimension" {
			dimsConsistent = false
			break
		}
	}
	if dimsConsistent {
		bonuses = append(bonuses, Deduction{
			Points:           5,
			Reason:           "Consistent dimension table naming convention",
			Severity:         SeverityMinor,
			AffectedElements: []string{"naming"},
		})
	}

	keysConsistent := true
	for _, dim := range sub.DimensionTables {
		key := strings.ToLower(dim.SurrogateKey)
		if !strings.HasSuffix(key, "_key") && !strings.HasSuffix(key, "_sk") && !strings.HasSuffix(key, "_id") {
			keysConsistent = false
			break
		}
	}
	if keysConsistent {
		bonuses = append(bonuses, Deduction{
			Points:           5,
			Reason:           "Consistent surrogate key naming convention",
			Severity:         SeverityMinor,
			AffectedElements: []string{"naming"},
		})
	}
	return bonuses
}
