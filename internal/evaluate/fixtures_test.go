package evaluate

import (
	"strings"
	"testing"

	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// baseConfig is a deliberately quiet shop: line-item grain, no returns,
// no inventory, nothing that demands history tracking.
func baseConfig() shop.Configuration {
	return shop.Configuration{
		Seed:     42,
		ShopName: "Corner Grocery",
		Transactions: shop.TransactionConfig{
			Grain: shop.GrainLineItemLevel,
		},
		Time: shop.TimeConfig{
			TimestampBusinessDateRelation: shop.TimestampSameAsBusinessDate,
		},
		Products: shop.ProductConfig{
			HierarchyChangeFrequency: shop.HierarchyChangesNone,
		},
		Customers: shop.CustomerConfig{
			AnonymousAllowed: true,
			IDReliability:    shop.CustomerIDReliable,
		},
		Stores: shop.StoreConfig{
			PhysicalStores: true,
		},
		Promotions: shop.PromotionConfig{
			PerLineItem: shop.PromotionsOne,
		},
		Returns: shop.ReturnsConfig{
			ReferencePolicy: shop.ReturnsReferenceNever,
			PricingPolicy:   shop.ReturnsPricingOriginal,
		},
	}
}

// starSchema is a clean star model for baseConfig: one line-item sales
// fact and four dimensions, each joined exactly once.
func starSchema() schema.Submission {
	return schema.Submission{
		FactTables: []schema.FactTable{{
			Name:             "fact_sales",
			GrainDescription: "One row per line item sold at a register",
			GrainColumns: []schema.GrainColumn{
				{Name: "transaction_id", IsDegenerate: true},
				{Name: "line_number", IsDegenerate: true},
			},
			Measures: []schema.Measure{
				{Name: "quantity", DataType: "integer", Aggregation: schema.AggregationSum},
				{Name: "net_amount_cents", DataType: "integer", Aggregation: schema.AggregationSum},
			},
			DimensionKeys: []string{"date_key", "product_key", "store_key", "customer_key"},
		}},
		DimensionTables: []schema.DimensionTable{
			{
				Name:         "dim_date",
				NaturalKey:   []string{"calendar_date"},
				SurrogateKey: "date_key",
				SCDStrategy:  schema.SCDType0,
				Attributes: []schema.DimensionAttribute{
					{Name: "calendar_date", DataType: "date"},
					{Name: "year", DataType: "integer"},
					{Name: "quarter", DataType: "integer"},
					{Name: "month", DataType: "integer"},
					{Name: "day_of_week", DataType: "string"},
				},
			},
			{
				Name:         "dim_product",
				NaturalKey:   []string{"sku"},
				SurrogateKey: "product_key",
				SCDStrategy:  schema.SCDType1,
				Attributes: []schema.DimensionAttribute{
					{Name: "product_name", DataType: "string"},
					{Name: "category", DataType: "string"},
				},
			},
			{
				Name:         "dim_store",
				NaturalKey:   []string{"store_number"},
				SurrogateKey: "store_key",
				SCDStrategy:  schema.SCDType1,
				Attributes: []schema.DimensionAttribute{
					{Name: "store_name", DataType: "string"},
					{Name: "region", DataType: "string"},
				},
			},
			{
				Name:         "dim_customer",
				NaturalKey:   []string{"customer_id"},
				SurrogateKey: "customer_key",
				SCDStrategy:  schema.SCDType1,
				Attributes: []schema.DimensionAttribute{
					{Name: "customer_name", DataType: "string"},
					{Name: "loyalty_tier", DataType: "string"},
				},
			},
		},
		Relationships: []schema.Relationship{
			{FactTable: "fact_sales", DimensionTable: "dim_date", FactColumn: "date_key", DimensionColumn: "date_key", Cardinality: schema.ManyToOne},
			{FactTable: "fact_sales", DimensionTable: "dim_product", FactColumn: "product_key", DimensionColumn: "product_key", Cardinality: schema.ManyToOne},
			{FactTable: "fact_sales", DimensionTable: "dim_store", FactColumn: "store_key", DimensionColumn: "store_key", Cardinality: schema.ManyToOne},
			{FactTable: "fact_sales", DimensionTable: "dim_customer", FactColumn: "customer_key", DimensionColumn: "customer_key", Cardinality: schema.ManyToOne},
		},
	}
}

// withReturnsFact appends a returns fact to the submission, optionally
// carrying an original-transaction grain column.
func withReturnsFact(sub schema.Submission, withReference bool) schema.Submission {
	fact := schema.FactTable{
		Name:             "fact_returns",
		GrainDescription: "One row per returned line item",
		GrainColumns: []schema.GrainColumn{
			{Name: "return_id", IsDegenerate: true},
			{Name: "line_number", IsDegenerate: true},
		},
		Measures: []schema.Measure{
			{Name: "returned_quantity", DataType: "integer", Aggregation: schema.AggregationSum},
			{Name: "refund_amount_cents", DataType: "integer", Aggregation: schema.AggregationSum},
		},
		DimensionKeys: []string{"date_key", "product_key"},
	}
	if withReference {
		fact.GrainColumns = append(fact.GrainColumns, schema.GrainColumn{Name: "original_transaction_id", IsDegenerate: true})
	}
	sub.FactTables = append(sub.FactTables, fact)
	sub.Relationships = append(sub.Relationships,
		schema.Relationship{FactTable: "fact_returns", DimensionTable: "dim_date", FactColumn: "date_key", DimensionColumn: "date_key", Cardinality: schema.ManyToOne},
		schema.Relationship{FactTable: "fact_returns", DimensionTable: "dim_product", FactColumn: "product_key", DimensionColumn: "product_key", Cardinality: schema.ManyToOne},
	)
	return sub
}

// findDeduction returns the first deduction whose reason contains the
// fragment, failing the test if none does.
func findDeduction(t *testing.T, score AxisScore, fragment string) Deduction {
	t.Helper()
	for _, d := range score.Deductions {
		if strings.Contains(d.Reason, fragment) {
			return d
		}
	}
	t.Fatalf("no %s deduction mentioning %q; got %q", score.AxisName, fragment, reasons(score))
	return Deduction{}
}

func reasons(score AxisScore) []string {
	out := make([]string, len(score.Deductions))
	for i, d := range score.Deductions {
		out[i] = d.Reason
	}
	return out
}
