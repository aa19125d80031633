package schema_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateworks/dimsim/internal/schema"
)

const submissionJSON = `{
  "fact_tables": [
    {
      "name": "fact_sales",
      "grain_description": "One row per line item on a sales transaction",
      "grain_columns": [
        {"name": "transaction_id", "is_degenerate": true},
        {"name": "line_number", "is_degenerate": true}
      ],
      "measures": [
        {"name": "quantity", "data_type": "integer", "aggregation": "sum"},
        {"name": "net_amount_cents", "data_type": "integer", "aggregation": "sum"}
      ],
      "dimension_keys": ["date_key", "product_key", "store_key"]
    }
  ],
  "dimension_tables": [
    {
      "name": "dim_date",
      "natural_key": ["calendar_date"],
      "surrogate_key": "date_key",
      "scd_strategy": "type_0",
      "attributes": [
        {"name": "year", "data_type": "integer"},
        {"name": "month", "data_type": "integer"}
      ]
    },
    {
      "name": "dim_product",
      "natural_key": ["sku"],
      "surrogate_key": "product_key",
      "scd_strategy": "type_2",
      "attributes": [
        {"name": "product_name", "data_type": "string"},
        {"name": "category", "data_type": "string", "scd_tracked": true}
      ]
    }
  ],
  "relationships": [
    {"fact_table": "fact_sales", "dimension_table": "dim_date", "fact_column": "date_key", "dimension_column": "date_key"},
    {"fact_table": "fact_sales", "dimension_table": "dim_product", "fact_column": "product_key", "dimension_column": "product_key", "cardinality": "many-to-one"}
  ]
}`

const submissionYAML = `fact_tables:
  - name: fact_sales
    grain_description: One row per line item on a sales transaction
    grain_columns:
      - name: transaction_id
        is_degenerate: true
      - name: line_number
        is_degenerate: true
    measures:
      - name: quantity
        data_type: integer
        aggregation: sum
      - name: net_amount_cents
        data_type: integer
        aggregation: sum
    dimension_keys: [date_key, product_key, store_key]
dimension_tables:
  - name: dim_date
    natural_key: [calendar_date]
    surrogate_key: date_key
    scd_strategy: type_0
    attributes:
      - name: year
        data_type: integer
      - name: month
        data_type: integer
  - name: dim_product
    natural_key: [sku]
    surrogate_key: product_key
    scd_strategy: type_2
    attributes:
      - name: product_name
        data_type: string
      - name: category
        data_type: string
        scd_tracked: true
relationships:
  - fact_table: fact_sales
    dimension_table: dim_date
    fact_column: date_key
    dimension_column: date_key
  - fact_table: fact_sales
    dimension_table: dim_product
    fact_column: product_key
    dimension_column: product_key
    cardinality: many-to-one
`

func TestParseAcceptsWellFormedSubmission(t *testing.T) {
	sub, err := schema.Parse([]byte(submissionJSON))
	require.NoError(t, err)

	require.Len(t, sub.FactTables, 1)
	assert.Equal(t, "fact_sales", sub.FactTables[0].Name)
	require.Len(t, sub.DimensionTables, 2)
	assert.Equal(t, schema.SCDType2, sub.DimensionTables[1].SCDStrategy)
	require.Len(t, sub.Relationships, 2)
}

func TestParseAppliesCardinalityDefault(t *testing.T) {
	sub, err := schema.Parse([]byte(submissionJSON))
	require.NoError(t, err)

	// The first relationship omits cardinality in the document.
	assert.Equal(t, schema.ManyToOne, sub.Relationships[0].Cardinality)
	assert.Equal(t, schema.ManyToOne, sub.Relationships[1].Cardinality)
}

func TestParseRejectsMalformedJSON(t *testing.T) {
	_, err := schema.Parse([]byte(`{"fact_tables": `))
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInvalidSubmission)
}

func TestParseRejectsEmptyFactTables(t *testing.T) {
	doc := `{"fact_tables": [], "dimension_tables": [], "relationships": []}`
	_, err := schema.Parse([]byte(doc))
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInvalidSubmission)
	assert.Contains(t, err.Error(), "fact_tables")
}

func TestParseReportsSchemaViolationsWithPaths(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		mention string
	}{
		{
			name: "missing grain description",
			doc: `{
				"fact_tables": [{"name": "f", "grain_columns": [{"name": "id"}], "measures": [], "dimension_keys": []}],
				"dimension_tables": [],
				"relationships": []
			}`,
			mention: "grain_description",
		},
		{
			name: "unknown scd strategy",
			doc: `{
				"fact_tables": [{"name": "f", "grain_description": "one row per event in the shop", "grain_columns": [{"name": "id"}], "measures": [], "dimension_keys": []}],
				"dimension_tables": [{"name": "d", "natural_key": ["code"], "surrogate_key": "d_key", "scd_strategy": "type_9", "attributes": []}],
				"relationships": []
			}`,
			mention: "scd_strategy",
		},
		{
			name: "unknown aggregation",
			doc: `{
				"fact_tables": [{"name": "f", "grain_description": "one row per event in the shop", "grain_columns": [{"name": "id"}], "measures": [{"name": "m", "data_type": "integer", "aggregation": "median"}], "dimension_keys": []}],
				"dimension_tables": [],
				"relationships": []
			}`,
			mention: "aggregation",
		},
		{
			name: "missing relationships section",
			doc: `{
				"fact_tables": [{"name": "f", "grain_description": "one row per event in the shop", "grain_columns": [{"name": "id"}], "measures": [], "dimension_keys": []}],
				"dimension_tables": []
			}`,
			mention: "relationships",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, schema.ErrInvalidSubmission)
			assert.Contains(t, err.Error(), tt.mention)
		})
	}
}

func TestParseYAMLMatchesJSON(t *testing.T) {
	fromJSON, err := schema.Parse([]byte(submissionJSON))
	require.NoError(t, err)

	fromYAML, err := schema.ParseYAML([]byte(submissionYAML))
	require.NoError(t, err)

	assert.Equal(t, fromJSON, fromYAML)
}

func TestParseYAMLRejectsInvalidDocument(t *testing.T) {
	_, err := schema.ParseYAML([]byte("fact_tables: []\ndimension_tables: []\nrelationships: []\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrInvalidSubmission)
}

func TestParseFileDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "submission.json")
	yamlPath := filepath.Join(dir, "submission.yaml")
	require.NoError(t, os.WriteFile(jsonPath, []byte(submissionJSON), 0o644))
	require.NoError(t, os.WriteFile(yamlPath, []byte(submissionYAML), 0o644))

	fromJSON, err := schema.ParseFile(jsonPath)
	require.NoError(t, err)
	fromYAML, err := schema.ParseFile(yamlPath)
	require.NoError(t, err)
	assert.Equal(t, fromJSON, fromYAML)

	_, err = schema.ParseFile(filepath.Join(dir, "missing.json"))
	require.Error(t, err)
}
