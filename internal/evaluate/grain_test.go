package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slateworks/dimsim/internal/schema"
)

func TestGrainCleanSchema(t *testing.T) {
	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(starSchema())

	assert.Equal(t, 100, score.Score)
	assert.Empty(t, score.Deductions)
}

func TestGrainInsufficientDescription(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "rows"

	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	ded := findDeduction(t, score, "no or insufficient grain description")
	assert.Equal(t, 10, ded.Points)
	assert.Equal(t, GrainViolation, ded.Category)
	assert.NotEmpty(t, ded.FixHint)
}

func TestGrainDescriptionLengthBoundary(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "line items"

	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	assert.Empty(t, score.Deductions)
}

func TestGrainColumnChecks(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainColumns = []schema.GrainColumn{
		{Name: "transaction_id"},
		{Name: "date_key", ReferencesDimension: "date_key"},
		{Name: "slot_key", ReferencesDimension: "time_slot_key"},
	}

	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	loose := findDeduction(t, score, "should reference a dimension or be marked as degenerate")
	assert.Equal(t, 5, loose.Points)
	assert.Equal(t, SeverityMinor, loose.Severity)
	assert.Equal(t, []string{"fact_sales", "transaction_id"}, loose.AffectedElements)

	dangling := findDeduction(t, score, "'time_slot_key' which is not in dimension_keys")
	assert.Equal(t, 10, dangling.Points)
	assert.Len(t, score.Deductions, 2)
}

func TestGrainManyToManyNeedsBridge(t *testing.T) {
	sub := starSchema()
	sub.DimensionTables = append(sub.DimensionTables, schema.DimensionTable{
		Name:         "dim_promotion",
		NaturalKey:   []string{"promotion_code"},
		SurrogateKey: "promotion_key",
		SCDStrategy:  schema.SCDType1,
		Attributes:   []schema.DimensionAttribute{{Name: "promotion_name", DataType: "string"}},
	})
	sub.Relationships = append(sub.Relationships, schema.Relationship{
		FactTable:       "fact_sales",
		DimensionTable:  "dim_promotion",
		FactColumn:      "promotion_group_key",
		DimensionColumn: "promotion_key",
		Cardinality:     schema.ManyToMany,
	})
	ax := grainCorrectnessAxis{ctx: NewContext(baseConfig())}

	score := ax.evaluate(sub)
	ded := findDeduction(t, score, "without bridge table")
	assert.Equal(t, 20, ded.Points)
	assert.Equal(t, SeverityMajor, ded.Severity)
	assert.Equal(t, FanOutRisk, ded.Category)
	assert.Equal(t, []string{"fact_sales", "dim_promotion"}, ded.AffectedElements)

	sub.BridgeTables = []schema.BridgeTable{{
		Name:           "bridge_sales_promotion",
		FactTable:      "fact_sales",
		DimensionTable: "dim_promotion",
		GroupKey:       "promotion_group_key",
	}}
	score = ax.evaluate(sub)
	assert.Empty(t, score.Deductions)
}

func TestGrainMixedDescription(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "One row per transaction OR per line item"

	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	mixed := findDeduction(t, score, "suggests mixed grain (contains 'or')")
	assert.Equal(t, 25, mixed.Points)
	assert.Equal(t, SeverityCritical, mixed.Severity)
	assert.Equal(t, GrainViolation, mixed.Category)

	concepts := findDeduction(t, score, "mentions multiple concepts")
	assert.Contains(t, concepts.Reason, "['transaction', 'line item']")
	assert.Equal(t, 60, score.Score)
}

func TestGrainOrMatchesInsideWords(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "One row per order line in the register feed"

	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	ded := findDeduction(t, score, "contains 'or'")
	assert.Equal(t, SeverityCritical, ded.Severity)
	assert.Len(t, score.Deductions, 1)
}

func TestGrainSingleMixedDeductionPerFact(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "Either one row per receipt, sometimes one row per item, depending on the register"

	score := grainCorrectnessAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	criticals := 0
	for _, d := range score.Deductions {
		if d.Severity == SeverityCritical {
			criticals++
		}
	}
	assert.Equal(t, 1, criticals)
}
