// Package scaffold emits starter schema skeletons for a shop
// configuration. The skeleton provides structure and TODOs, not
// correct modeling decisions: defaults are deliberately questionable
// (type_1 product dimensions under changing hierarchies, untracked
// category attributes) so the modeler has to confront each trap.
package scaffold

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// Todo flags a modeling decision the skeleton leaves open.
type Todo struct {
	Location     string   `json:"location" yaml:"location"`
	Question     string   `json:"question" yaml:"question"`
	Hints        []string `json:"hints" yaml:"hints"`
	DecisionType string   `json:"decision_type" yaml:"decision_type"`
}

// ColumnSketch is a grain-column stub. Annotation fields prefixed with
// an underscore survive into the serialized skeleton as editing notes.
type ColumnSketch struct {
	Name                string `json:"name" yaml:"name"`
	IsDegenerate        bool   `json:"is_degenerate,omitempty" yaml:"is_degenerate,omitempty"`
	ReferencesDimension string `json:"references_dimension,omitempty" yaml:"references_dimension,omitempty"`
	Todo                string `json:"_todo,omitempty" yaml:"_todo,omitempty"`
}

// MeasureSketch is a measure stub.
type MeasureSketch struct {
	Name        string `json:"name" yaml:"name"`
	DataType    string `json:"data_type" yaml:"data_type"`
	Aggregation string `json:"aggregation" yaml:"aggregation"`
}

// FactSketch is a fact-table stub.
type FactSketch struct {
	Name             string          `json:"name" yaml:"name"`
	GrainDescription string          `json:"grain_description" yaml:"grain_description"`
	GrainColumns     []ColumnSketch  `json:"grain_columns" yaml:"grain_columns"`
	Measures         []MeasureSketch `json:"measures" yaml:"measures"`
	DimensionKeys    []string        `json:"dimension_keys" yaml:"dimension_keys"`
	Warning          string          `json:"_warning,omitempty" yaml:"_warning,omitempty"`
	Note             string          `json:"_note,omitempty" yaml:"_note,omitempty"`
	TodoPayments     string          `json:"_todo_payments,omitempty" yaml:"_todo_payments,omitempty"`
	TodoOriginalRef  string          `json:"_todo_original_ref,omitempty" yaml:"_todo_original_ref,omitempty"`
}

// AttributeSketch is a dimension-attribute stub. SCDTracked is a
// pointer so a deliberate false survives serialization while unset
// stays absent.
type AttributeSketch struct {
	Name       string `json:"name" yaml:"name"`
	DataType   string `json:"data_type" yaml:"data_type"`
	SCDTracked *bool  `json:"scd_tracked,omitempty" yaml:"scd_tracked,omitempty"`
	Note       string `json:"_note,omitempty" yaml:"_note,omitempty"`
	Todo       string `json:"_todo,omitempty" yaml:"_todo,omitempty"`
}

// DimensionSketch is a dimension-table stub.
type DimensionSketch struct {
	Name          string            `json:"name" yaml:"name"`
	NaturalKey    []string          `json:"natural_key" yaml:"natural_key"`
	SurrogateKey  string            `json:"surrogate_key" yaml:"surrogate_key"`
	SCDStrategy   schema.SCDType    `json:"scd_strategy" yaml:"scd_strategy"`
	Attributes    []AttributeSketch `json:"attributes" yaml:"attributes"`
	Warning       string            `json:"_warning,omitempty" yaml:"_warning,omitempty"`
	WarningSKU    string            `json:"_warning_sku,omitempty" yaml:"_warning_sku,omitempty"`
	TodoSCD       string            `json:"_todo_scd,omitempty" yaml:"_todo_scd,omitempty"`
	NoteAnonymous string            `json:"_note_anonymous,omitempty" yaml:"_note_anonymous,omitempty"`
}

// Scaffold is a schema skeleton with intentional gaps, plus the TODO
// list and warnings that call them out.
type Scaffold struct {
	FactTables      []FactSketch          `json:"fact_tables" yaml:"fact_tables"`
	DimensionTables []DimensionSketch     `json:"dimension_tables" yaml:"dimension_tables"`
	Relationships   []schema.Relationship `json:"relationships" yaml:"relationships"`
	BridgeTables    []schema.BridgeTable  `json:"bridge_tables" yaml:"bridge_tables"`
	Todos           []Todo                `json:"_scaffold_todos,omitempty" yaml:"_scaffold_todos,omitempty"`
	Warnings        []string              `json:"_scaffold_warnings,omitempty" yaml:"_scaffold_warnings,omitempty"`
}

// Build generates a schema skeleton for the configuration. Output is
// deterministic: same configuration, same skeleton.
func Build(cfg shop.Configuration) *Scaffold {
	s := &Scaffold{
		FactTables:      []FactSketch{},
		DimensionTables: []DimensionSketch{},
		Relationships:   []schema.Relationship{},
		BridgeTables:    []schema.BridgeTable{},
	}

	addSalesFact(cfg, s)
	addReturnsFact(cfg, s)
	addInventoryFacts(cfg, s)

	addDateDimension(cfg, s)
	addProductDimension(cfg, s)
	addStoreDimension(cfg, s)
	addCustomerDimension(cfg, s)

	addRelationships(cfg, s)
	addGlobalWarnings(cfg, s)

	return s
}

func addSalesFact(cfg shop.Configuration, s *Scaffold) {
	grain := cfg.Transactions.Grain

	grainColumns := []ColumnSketch{
		{Name: "transaction_id", IsDegenerate: true},
	}
	if grain == shop.GrainLineItemLevel || grain == shop.GrainMixed {
		col := ColumnSketch{Name: "line_number", IsDegenerate: true}
		if grain == shop.GrainMixed {
			col.Todo = "Remove if receipt-level only"
		}
		grainColumns = append(grainColumns, col)
	}

	fact := FactSketch{
		Name:         "fact_sales",
		GrainColumns: grainColumns,
		Measures: []MeasureSketch{
			{Name: "quantity", DataType: "int", Aggregation: "sum"},
			{Name: "gross_amount_cents", DataType: "int", Aggregation: "sum"},
			{Name: "discount_cents", DataType: "int", Aggregation: "sum"},
			{Name: "net_amount_cents", DataType: "int", Aggregation: "sum"},
		},
		DimensionKeys: []string{"date_key", "product_key", "store_key", "customer_key"},
	}

	switch grain {
	case shop.GrainMixed:
		fact.GrainDescription = "TODO: Define grain - shop uses MIXED transaction levels!"
		fact.Warning = "Mixed grain is tricky - consider separate facts per grain"
		s.Todos = append(s.Todos, Todo{
			Location: "fact_sales.grain_description",
			Question: "How will you handle mixed line-item and receipt-level transactions?",
			Hints: []string{
				"Option 1: Separate fact tables (fact_sales_line, fact_sales_receipt)",
				"Option 2: Lowest common grain with is_aggregated flag",
				"Option 3: Always use line-item grain, synthesize lines for receipts",
			},
			DecisionType: "grain",
		})
	case shop.GrainLineItemLevel:
		fact.GrainDescription = "TODO: One row per line item sold"
	default:
		fact.GrainDescription = "TODO: One row per transaction/receipt"
	}

	if cfg.Transactions.MultiplePayments {
		fact.TodoPayments = "Multiple payments per transaction - consider separate payment fact"
		s.Todos = append(s.Todos, Todo{
			Location: "fact_sales",
			Question: "How will you model multiple payments per transaction?",
			Hints: []string{
				"Option 1: Separate fact_payments table",
				"Option 2: Bridge table between fact_sales and dim_payment_method",
				"Option 3: Denormalized payment columns (payment_1, payment_2...)",
			},
			DecisionType: "relationship",
		})
	}

	s.FactTables = append(s.FactTables, fact)
}

func addReturnsFact(cfg shop.Configuration, s *Scaffold) {
	if cfg.Returns.ReferencePolicy == shop.ReturnsReferenceNever {
		return
	}

	fact := FactSketch{
		Name:             "fact_returns",
		GrainDescription: "TODO: One row per return line item",
		GrainColumns: []ColumnSketch{
			{Name: "return_id", IsDegenerate: true},
			{Name: "line_number", IsDegenerate: true},
		},
		Measures: []MeasureSketch{
			{Name: "quantity_returned", DataType: "int", Aggregation: "sum"},
			{Name: "refund_amount_cents", DataType: "int", Aggregation: "sum"},
		},
		DimensionKeys: []string{"date_key", "product_key", "store_key", "customer_key"},
	}

	switch cfg.Returns.ReferencePolicy {
	case shop.ReturnsReferenceAlways:
		fact.GrainColumns = append(fact.GrainColumns, ColumnSketch{
			Name:         "original_transaction_id",
			IsDegenerate: true,
		})
		fact.TodoOriginalRef = "Always has original transaction - consider FK to fact_sales"
	case shop.ReturnsReferenceSometimes:
		fact.Warning = "Returns SOMETIMES reference original sales - handle NULLs!"
		s.Todos = append(s.Todos, Todo{
			Location: "fact_returns.original_transaction_id",
			Question: "How will you handle returns that don't reference original transactions?",
			Hints: []string{
				"Nullable FK to fact_sales",
				"Separate handling for orphan returns",
				"Special 'unknown_transaction' surrogate",
			},
			DecisionType: "relationship",
		})
	}

	s.FactTables = append(s.FactTables, fact)
}

func addInventoryFacts(cfg shop.Configuration, s *Scaffold) {
	if !cfg.Inventory.Tracked {
		return
	}
	invType := cfg.Inventory.Type

	if invType == shop.InventoryTransactional || invType == shop.InventoryBoth {
		s.FactTables = append(s.FactTables, FactSketch{
			Name:             "fact_inventory_transactions",
			GrainDescription: "TODO: One row per inventory movement",
			GrainColumns: []ColumnSketch{
				{Name: "movement_id", IsDegenerate: true},
			},
			Measures: []MeasureSketch{
				{Name: "quantity_change", DataType: "int", Aggregation: "sum"},
			},
			DimensionKeys: []string{"date_key", "product_key", "store_key"},
		})
	}

	if invType == shop.InventoryPeriodicSnapshot || invType == shop.InventoryBoth {
		s.FactTables = append(s.FactTables, FactSketch{
			Name:             "fact_inventory_snapshot",
			GrainDescription: "TODO: One row per product-store-date",
			GrainColumns: []ColumnSketch{
				{Name: "snapshot_date_key", ReferencesDimension: "date_key"},
				{Name: "product_key", ReferencesDimension: "product_key"},
				{Name: "store_key", ReferencesDimension: "store_key"},
			},
			Measures: []MeasureSketch{
				{Name: "quantity_on_hand", DataType: "int", Aggregation: "sum"},
			},
			DimensionKeys: []string{"date_key", "product_key", "store_key"},
			Note:          "Periodic snapshot - semi-additive across time",
		})
	}

	if invType == shop.InventoryBoth {
		s.Todos = append(s.Todos, Todo{
			Location: "inventory",
			Question: "How do transactional and snapshot inventory facts relate?",
			Hints: []string{
				"Transactional: individual movements",
				"Snapshot: point-in-time balances",
				"They serve different query patterns",
			},
			DecisionType: "grain",
		})
	}
}

func addDateDimension(cfg shop.Configuration, s *Scaffold) {
	dim := DimensionSketch{
		Name:         "dim_date",
		NaturalKey:   []string{"date_value"},
		SurrogateKey: "date_key",
		SCDStrategy:  schema.SCDType0,
		Attributes: []AttributeSketch{
			{Name: "date_value", DataType: "date"},
			{Name: "year", DataType: "int"},
			{Name: "quarter", DataType: "int"},
			{Name: "month", DataType: "int"},
			{Name: "month_name", DataType: "varchar"},
			{Name: "day_of_week", DataType: "int"},
			{Name: "day_name", DataType: "varchar"},
			{Name: "is_weekend", DataType: "boolean"},
		},
	}

	if cfg.Time.TimestampBusinessDateRelation == shop.TimestampDifferentFromBusinessDate {
		dim.Warning = "Timestamps differ from business dates - you may need TWO date FKs!"
		s.Todos = append(s.Todos, Todo{
			Location: "dim_date",
			Question: "How will you track both event timestamp and business effective date?",
			Hints: []string{
				"Option 1: Two date dimension FKs (event_date_key, business_date_key)",
				"Option 2: Store business_date in fact, join to dim_date for reporting",
				"Consider which date matters for which queries",
			},
			DecisionType: "temporal",
		})
	}

	s.DimensionTables = append(s.DimensionTables, dim)
}

func addProductDimension(cfg shop.Configuration, s *Scaffold) {
	hierarchyFreq := cfg.Products.HierarchyChangeFrequency

	// type_1 is the wrong answer whenever hierarchies change; that is
	// the point of the skeleton.
	dim := DimensionSketch{
		Name:         "dim_product",
		NaturalKey:   []string{"sku"},
		SurrogateKey: "product_key",
		SCDStrategy:  schema.SCDType1,
		Attributes: []AttributeSketch{
			{Name: "sku", DataType: "varchar"},
			{Name: "product_name", DataType: "varchar"},
			{Name: "category", DataType: "varchar", SCDTracked: boolPtr(false)},
			{Name: "subcategory", DataType: "varchar", SCDTracked: boolPtr(false)},
			{Name: "brand", DataType: "varchar"},
			{Name: "unit_price_cents", DataType: "int"},
		},
	}

	if hierarchyFreq != shop.HierarchyChangesNone {
		dim.Warning = fmt.Sprintf("Product hierarchy changes %s - Type 1 loses history!", hierarchyFreq)
		dim.TodoSCD = "Consider Type 2 SCD for category/subcategory tracking"
		s.Todos = append(s.Todos, Todo{
			Location: "dim_product.scd_strategy",
			Question: fmt.Sprintf("Product categories change %s. What SCD strategy?", hierarchyFreq),
			Hints: []string{
				"Type 1: Overwrite (loses history)",
				"Type 2: Add rows (preserves history, needs effective dates)",
				"Consider marking category attributes as scd_tracked: true",
			},
			DecisionType: "scd",
		})
	}

	if cfg.Products.SKUReuse {
		dim.WarningSKU = "SKU codes are REUSED for different products over time!"
		s.Todos = append(s.Todos, Todo{
			Location: "dim_product.natural_key",
			Question: "SKUs are reused. Is SKU alone sufficient as natural key?",
			Hints: []string{
				"May need composite key: sku + effective_from_date",
				"Or use surrogate key and track SKU history",
				"Current setup will conflate different products with same SKU",
			},
			DecisionType: "identity",
		})
	}

	s.DimensionTables = append(s.DimensionTables, dim)
}

func addStoreDimension(cfg shop.Configuration, s *Scaffold) {
	dim := DimensionSketch{
		Name:         "dim_store",
		NaturalKey:   []string{"store_id"},
		SurrogateKey: "store_key",
		SCDStrategy:  schema.SCDType1,
		Attributes: []AttributeSketch{
			{Name: "store_id", DataType: "varchar"},
			{Name: "store_name", DataType: "varchar"},
			{Name: "channel", DataType: "varchar"},
		},
	}

	if cfg.Stores.PhysicalStores {
		dim.Attributes = append(dim.Attributes,
			AttributeSketch{Name: "address", DataType: "varchar"},
			AttributeSketch{Name: "city", DataType: "varchar"},
			AttributeSketch{Name: "state", DataType: "varchar"},
		)
	}

	if cfg.Stores.LifecycleChanges {
		dim.Warning = "Stores open, close, and merge - Type 1 loses this history!"
		dim.Attributes = append(dim.Attributes,
			AttributeSketch{Name: "open_date", DataType: "date"},
			AttributeSketch{Name: "close_date", DataType: "date", Note: "nullable"},
		)
		s.Todos = append(s.Todos, Todo{
			Location: "dim_store.scd_strategy",
			Question: "Stores have lifecycle changes. How to track store history?",
			Hints: []string{
				"Type 2 SCD to track openings, closings, merges",
				"Store merges are particularly tricky",
				"Consider how to attribute historical sales after a merge",
			},
			DecisionType: "scd",
		})
	}

	s.DimensionTables = append(s.DimensionTables, dim)
}

func addCustomerDimension(cfg shop.Configuration, s *Scaffold) {
	reliability := cfg.Customers.IDReliability

	if reliability == shop.CustomerIDAbsent {
		s.Warnings = append(s.Warnings,
			"No customer IDs in this shop - customer dimension may not be needed")
		return
	}

	dim := DimensionSketch{
		Name:         "dim_customer",
		NaturalKey:   []string{"customer_id"},
		SurrogateKey: "customer_key",
		SCDStrategy:  schema.SCDType1,
		Attributes: []AttributeSketch{
			{Name: "customer_id", DataType: "varchar"},
			{Name: "customer_type", DataType: "varchar"},
		},
	}

	if reliability == shop.CustomerIDUnreliable {
		dim.Warning = "Customer IDs are UNRELIABLE - may merge, split, or be duplicated!"
		s.Todos = append(s.Todos, Todo{
			Location: "dim_customer",
			Question: "Customer IDs are unreliable. How to handle identity issues?",
			Hints: []string{
				"Consider fuzzy matching / identity resolution",
				"May need a customer_alias bridge table",
				"Accept some data quality issues or clean upstream",
			},
			DecisionType: "identity",
		})
	}

	if cfg.Customers.AnonymousAllowed {
		dim.NoteAnonymous = "Anonymous customers allowed - handle NULL/unknown customer"
		dim.Attributes = append(dim.Attributes,
			AttributeSketch{Name: "is_anonymous", DataType: "boolean"})
	}

	if cfg.Customers.HouseholdGrouping {
		dim.Attributes = append(dim.Attributes, AttributeSketch{
			Name:     "household_id",
			DataType: "varchar",
			Todo:     "Households can change - track history?",
		})
		s.Todos = append(s.Todos, Todo{
			Location: "dim_customer.household_id",
			Question: "Customers are grouped into households. How to model this?",
			Hints: []string{
				"Simple: household_id attribute in dim_customer",
				"Complex: separate dim_household with relationship",
				"Households can change over time - consider SCD",
			},
			DecisionType: "relationship",
		})
	}

	s.DimensionTables = append(s.DimensionTables, dim)
}

func addRelationships(cfg shop.Configuration, s *Scaffold) {
	dimNames := make(map[string]bool, len(s.DimensionTables))
	for _, dim := range s.DimensionTables {
		dimNames[dim.Name] = true
	}

	for _, fact := range s.FactTables {
		for _, dimKey := range fact.DimensionKeys {
			dimName := "dim_" + strings.TrimSuffix(dimKey, "_key")
			if !dimNames[dimName] {
				continue
			}
			s.Relationships = append(s.Relationships, schema.Relationship{
				FactTable:       fact.Name,
				DimensionTable:  dimName,
				FactColumn:      dimKey,
				DimensionColumn: dimKey,
				Cardinality:     schema.ManyToOne,
			})
		}
	}

	if cfg.Promotions.PerLineItem == shop.PromotionsMany {
		s.Todos = append(s.Todos, Todo{
			Location: "relationships",
			Question: "Multiple promotions per line item - how to model?",
			Hints: []string{
				"Bridge table: bridge_sales_promotion",
				"Separate promotion fact table",
				"Array/JSON column (limited queryability)",
			},
			DecisionType: "relationship",
		})
	}
}

func addGlobalWarnings(cfg shop.Configuration, s *Scaffold) {
	if cfg.Transactions.VoidsEnabled {
		s.Warnings = append(s.Warnings,
			"Voids are enabled - decide how to track or exclude voided transactions")
	}
	if cfg.Transactions.ManualOverrides {
		s.Warnings = append(s.Warnings,
			"Manual price overrides allowed - original vs override price tracking?")
	}
	if cfg.Promotions.PostTransaction {
		s.Warnings = append(s.Warnings,
			"Post-transaction promotions exist - adjustments after the fact!")
	}
}

func boolPtr(b bool) *bool { return &b }
