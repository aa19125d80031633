package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

func TestEventPreservationCleanSchema(t *testing.T) {
	score := eventPreservationAxis{ctx: NewContext(baseConfig())}.evaluate(starSchema())

	assert.Equal(t, 100, score.Score)
	assert.Empty(t, score.Deductions)
	assert.Equal(t, "No issues found.", score.Commentary)
}

func TestEventPreservationMissingReturnFact(t *testing.T) {
	cfg := baseConfig()
	cfg.Returns.ReferencePolicy = shop.ReturnsReferenceAlways

	score := eventPreservationAxis{ctx: NewContext(cfg)}.evaluate(starSchema())

	ded := findDeduction(t, score, "No fact table appears to support return events")
	assert.Equal(t, 20, ded.Points)
	assert.Equal(t, SeverityCritical, ded.Severity)
	assert.Equal(t, DataLoss, ded.Category)
	assert.NotEmpty(t, ded.FixHint)
	assert.Equal(t, 80, score.Score)
}

func TestEventPreservationQuantityMissing(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].Measures = []schema.Measure{
		{Name: "net_amount_cents", DataType: "integer", Aggregation: schema.AggregationSum},
	}

	score := eventPreservationAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	ded := findDeduction(t, score, "lack quantity measure")
	assert.Equal(t, 10, ded.Points)
	assert.Equal(t, SeverityModerate, ded.Severity)
}

func TestEventPreservationReceiptGrainNeedsNoQuantity(t *testing.T) {
	cfg := baseConfig()
	cfg.Transactions.Grain = shop.GrainReceiptLevel
	sub := starSchema()
	sub.FactTables[0].Measures = []schema.Measure{
		{Name: "net_amount_cents", DataType: "integer", Aggregation: schema.AggregationSum},
	}

	score := eventPreservationAxis{ctx: NewContext(cfg)}.evaluate(sub)

	assert.Empty(t, score.Deductions)
	assert.Equal(t, 100, score.Score)
}

func TestEventPreservationMultiplePayments(t *testing.T) {
	cfg := baseConfig()
	cfg.Transactions.MultiplePayments = true
	ax := eventPreservationAxis{ctx: NewContext(cfg)}

	score := ax.evaluate(starSchema())
	ded := findDeduction(t, score, "no payment dimension or fact")
	assert.Equal(t, 15, ded.Points)
	assert.Equal(t, SeverityMajor, ded.Severity)

	sub := starSchema()
	sub.FactTables = append(sub.FactTables, schema.FactTable{
		Name:             "fact_payments",
		GrainDescription: "One row per payment applied to a line item sale",
		GrainColumns:     []schema.GrainColumn{{Name: "payment_id", IsDegenerate: true}},
		Measures: []schema.Measure{
			{Name: "amount_cents", DataType: "integer", Aggregation: schema.AggregationSum},
		},
		DimensionKeys: []string{"date_key"},
	})
	score = ax.evaluate(sub)
	assert.Empty(t, score.Deductions)
}

func TestEventPreservationLineItemGrainMissing(t *testing.T) {
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "One row per completed transaction"

	score := eventPreservationAxis{ctx: NewContext(baseConfig())}.evaluate(sub)

	ded := findDeduction(t, score, "no line-item level fact table")
	assert.Equal(t, 25, ded.Points)
	assert.Equal(t, SeverityCritical, ded.Severity)
	assert.Equal(t, []string{"grain"}, ded.AffectedElements)
	assert.Equal(t, DataLoss, ded.Category)
	assert.Equal(t, 75, score.Score)
}

func TestEventPreservationMixedGrainAdvisory(t *testing.T) {
	cfg := baseConfig()
	cfg.Transactions.Grain = shop.GrainMixed
	sub := starSchema()
	sub.FactTables[0].GrainDescription = "One row per completed transaction"

	score := eventPreservationAxis{ctx: NewContext(cfg)}.evaluate(sub)

	ded := findDeduction(t, score, "mixed grain")
	assert.Equal(t, 15, ded.Points)
	assert.Equal(t, SeverityModerate, ded.Severity)
}
