package schema_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateworks/dimsim/internal/schema"
)

// validSubmission returns a small star schema that passes validation.
func validSubmission() schema.Submission {
	return schema.Submission{
		FactTables: []schema.FactTable{{
			Name:             "fact_sales",
			GrainDescription: "One row per line item on a sales transaction",
			GrainColumns: []schema.GrainColumn{
				{Name: "transaction_id", IsDegenerate: true},
				{Name: "line_number", IsDegenerate: true},
			},
			Measures: []schema.Measure{
				{Name: "quantity", DataType: "integer", Aggregation: schema.AggregationSum},
				{Name: "net_amount_cents", DataType: "integer", Aggregation: schema.AggregationSum},
			},
			DimensionKeys: []string{"date_key", "product_key", "store_key"},
		}},
		DimensionTables: []schema.DimensionTable{
			{
				Name:         "dim_date",
				NaturalKey:   []string{"calendar_date"},
				SurrogateKey: "date_key",
				SCDStrategy:  schema.SCDType0,
				Attributes: []schema.DimensionAttribute{
					{Name: "year", DataType: "integer"},
					{Name: "month", DataType: "integer"},
				},
			},
			{
				Name:         "dim_product",
				NaturalKey:   []string{"sku"},
				SurrogateKey: "product_key",
				SCDStrategy:  schema.SCDType2,
				Attributes: []schema.DimensionAttribute{
					{Name: "product_name", DataType: "string"},
					{Name: "category", DataType: "string", SCDTracked: true},
				},
			},
		},
		Relationships: []schema.Relationship{
			{FactTable: "fact_sales", DimensionTable: "dim_date", FactColumn: "date_key", DimensionColumn: "date_key", Cardinality: schema.ManyToOne},
			{FactTable: "fact_sales", DimensionTable: "dim_product", FactColumn: "product_key", DimensionColumn: "product_key", Cardinality: schema.ManyToOne},
		},
	}
}

func TestValidSubmissionPasses(t *testing.T) {
	require.NoError(t, validSubmission().Validate())
}

func TestValidateRejectsInvariantViolations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*schema.Submission)
	}{
		{
			name:   "no fact tables",
			mutate: func(s *schema.Submission) { s.FactTables = nil },
		},
		{
			name:   "fact table with empty name",
			mutate: func(s *schema.Submission) { s.FactTables[0].Name = "" },
		},
		{
			name:   "fact table without grain columns",
			mutate: func(s *schema.Submission) { s.FactTables[0].GrainColumns = nil },
		},
		{
			name: "measure with unknown aggregation",
			mutate: func(s *schema.Submission) {
				s.FactTables[0].Measures[0].Aggregation = "median"
			},
		},
		{
			name:   "dimension with empty name",
			mutate: func(s *schema.Submission) { s.DimensionTables[0].Name = "" },
		},
		{
			name:   "dimension without natural key",
			mutate: func(s *schema.Submission) { s.DimensionTables[0].NaturalKey = nil },
		},
		{
			name: "dimension with unknown scd strategy",
			mutate: func(s *schema.Submission) {
				s.DimensionTables[0].SCDStrategy = "type_9"
			},
		},
		{
			name: "relationship with unknown cardinality",
			mutate: func(s *schema.Submission) {
				s.Relationships[0].Cardinality = "one-to-one"
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sub := validSubmission()
			tt.mutate(&sub)
			err := sub.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrInvalidSubmission)
		})
	}
}

func TestLookupHelpers(t *testing.T) {
	sub := validSubmission()
	sub.Relationships = append(sub.Relationships, schema.Relationship{
		FactTable:       "fact_sales",
		DimensionTable:  "dim_date",
		FactColumn:      "return_date_key",
		DimensionColumn: "date_key",
		Cardinality:     schema.ManyToOne,
		IsRolePlaying:   true,
		RoleName:        "return_date",
	})

	require.NotNil(t, sub.Fact("fact_sales"))
	assert.Nil(t, sub.Fact("fact_returns"))
	require.NotNil(t, sub.Dimension("dim_product"))
	assert.Nil(t, sub.Dimension("dim_store"))

	rels := sub.RelationshipsForFact("fact_sales")
	require.Len(t, rels, 3)
	assert.Equal(t, "date_key", rels[0].FactColumn)
	assert.Equal(t, "return_date_key", rels[2].FactColumn)

	// Role-playing joins to the same dimension collapse to one entry,
	// in dimension declaration order.
	dims := sub.DimensionsForFact("fact_sales")
	require.Len(t, dims, 2)
	assert.Equal(t, "dim_date", dims[0].Name)
	assert.Equal(t, "dim_product", dims[1].Name)

	assert.Empty(t, sub.RelationshipsForFact("fact_returns"))
	assert.Empty(t, sub.DimensionsForFact("fact_returns"))
}

func TestSubmissionJSONRoundTrip(t *testing.T) {
	original := validSubmission()
	data, err := json.Marshal(original)
	require.NoError(t, err)

	parsed, err := schema.Parse(data)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}
