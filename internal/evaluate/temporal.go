package evaluate

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
)

// lacksHistory reports whether an SCD strategy keeps only current
// values.
func lacksHistory(scd schema.SCDType) bool {
	return scd == schema.SCDType1 || scd == schema.SCDNone || scd == schema.SCDType0
}

// temporalCorrectnessAxis checks SCD strategy choices and dual-date
// handling.
type temporalCorrectnessAxis struct {
	ctx Context
}

func (a temporalCorrectnessAxis) name() string  { return "temporal_correctness" }
func (a temporalCorrectnessAxis) maxScore() int { return 100 }

func (a temporalCorrectnessAxis) evaluate(sub schema.Submission) AxisScore {
	var deductions []Deduction
	for _, dim := range sub.DimensionTables {
		deductions = append(deductions, a.checkSCDChoice(dim)...)
	}
	deductions = append(deductions, a.checkHistoricalQuerySupport(sub)...)
	if a.ctx.Config.Time.LateArrivingEvents {
		deductions = append(deductions, a.checkLateArrivingSupport(sub)...)
	}
	if a.ctx.Config.Time.BackdatedCorrections {
		deductions = append(deductions, a.checkBackdatedSupport(sub)...)
	}

	score := max(0, a.maxScore()-deductionTotal(deductions))
	return newAxisScore(a.name(), score, a.maxScore(), deductions)
}

func (a temporalCorrectnessAxis) checkSCDChoice(dim schema.DimensionTable) []Deduction {
	var deductions []Deduction

	if a.ctx.RequiresSCD(dim.Name) {
		if lacksHistory(dim.SCDStrategy) {
			deductions = append(deductions, Deduction{
				Points:           20,
				Reason:           fmt.Sprintf("Dimension '%s' has changing attributes but uses %s (no history)", dim.Name, dim.SCDStrategy),
				Severity:         SeverityMajor,
				AffectedElements: []string{dim.Name},
			})
		}
	} else if dim.SCDStrategy == schema.SCDType2 {
		deductions = append(deductions, Deduction{
			Points:           5,
			Reason:           fmt.Sprintf("Dimension '%s' uses Type 2 SCD but may not require history tracking", dim.Name),
			Severity:         SeverityMinor,
			AffectedElements: []string{dim.Name},
		})
	}

	if dim.SCDStrategy == schema.SCDType2 || dim.SCDStrategy == schema.SCDType6 {
		tracked := false
		for _, attr := range dim.Attributes {
			if attr.SCDTracked {
				tracked = true
				break
			}
		}
		if !tracked {
			deductions = append(deductions, Deduction{
				Points:           10,
				Reason:           fmt.Sprintf("Dimension '%s' uses %s but no attributes are marked as SCD tracked", dim.Name, dim.SCDStrategy),
				Severity:         SeverityModerate,
				AffectedElements: []string{dim.Name},
			})
		}
	}
	return deductions
}

func (a temporalCorrectnessAxis) checkHistoricalQuerySupport(sub schema.Submission) []Deduction {
	var deductions []Deduction
	for _, fact := range sub.FactTables {
		for _, dim := range sub.DimensionsForFact(fact.Name) {
			if a.ctx.RequiresSCD(dim.Name) && lacksHistory(dim.SCDStrategy) {
				deductions = append(deductions, Deduction{
					Points:           15,
					Reason:           fmt.Sprintf("Historical queries on '%s' may be incorrect due to '%s' lacking history", fact.Name, dim.Name),
					Severity:         SeverityMajor,
					AffectedElements: []string{fact.Name, dim.Name},
				})
			}
		}
	}
	return deductions
}

// Late-arriving facts need stable dimension keys to attach to; natural
// keys alone are fragile when the dimension row arrives after the fact.
func (a temporalCorrectnessAxis) checkLateArrivingSupport(sub schema.Submission) []Deduction {
	var problemDims []string
	for _, dim := range sub.DimensionTables {
		if dim.SurrogateKey == "" {
			problemDims = append(problemDims, dim.Name)
		}
	}
	if len(problemDims) == 0 {
		return nil
	}
	return []Deduction{{
		Points:           10,
		Reason:           fmt.Sprintf("Late-arriving events may cause issues with dimensions lacking surrogate keys: %s", quotedList(problemDims)),
		Severity:         SeverityModerate,
		AffectedElements: problemDims,
	}}
}

func (a temporalCorrectnessAxis) checkBackdatedSupport(sub schema.Submission) []Deduction {
	var deductions []Deduction
	for _, fact := range sub.FactTables {
		hasEventTimestamp := false
		hasBusinessDate := false
		for _, col := range factColumns(fact) {
			if strings.Contains(col, "event") && containsAny(col, "time", "date", "ts") {
				hasEventTimestamp = true
			}
			if containsAny(col, "business", "effective") {
				hasBusinessDate = true
			}
		}
		if !hasEventTimestamp && !hasBusinessDate {
			deductions = append(deductions, Deduction{
				Points:           10,
				Reason:           fmt.Sprintf("Fact '%s' may not distinguish event time from business effective date", fact.Name),
				Severity:         SeverityModerate,
				AffectedElements: []string{fact.Name},
			})
		}
	}
	return deductions
}
