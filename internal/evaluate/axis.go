package evaluate

import (
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
)

// axis is one scorer in the evaluation pipeline.
type axis interface {
	name() string
	maxScore() int
	evaluate(sub schema.Submission) AxisScore
}

func deductionTotal(deductions []Deduction) int {
	total := 0
	for _, d := range deductions {
		total += d.Points
	}
	return total
}

// factColumns returns every column name on a fact table, lowercased:
// grain columns, then measures, then dimension keys.
func factColumns(fact schema.FactTable) []string {
	cols := make([]string, 0, len(fact.GrainColumns)+len(fact.Measures)+len(fact.DimensionKeys))
	for _, gc := range fact.GrainColumns {
		cols = append(cols, strings.ToLower(gc.Name))
	}
	for _, m := range fact.Measures {
		cols = append(cols, strings.ToLower(m.Name))
	}
	for _, dk := range fact.DimensionKeys {
		cols = append(cols, strings.ToLower(dk))
	}
	return cols
}

func containsAny(s string, fragments ...string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}

// quotedList renders names as a bracketed, quoted list, the way the
// report has always shown them: ['a', 'b'].
func quotedList(items []string) string {
	quoted := make([]string, len(items))
	for i, item := range items {
		quoted[i] = "'" + item + "'"
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
