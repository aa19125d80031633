package shop

import "fmt"

// TrapCategory groups modeling traps by the kind of mistake they
// provoke.
type TrapCategory string

const (
	TrapGrain        TrapCategory = "grain"
	TrapTemporal     TrapCategory = "temporal"
	TrapIdentity     TrapCategory = "identity"
	TrapSemantic     TrapCategory = "semantic"
	TrapRelationship TrapCategory = "relationship"
)

// EnabledTrap is a specific modeling trap active in a scenario.
type EnabledTrap struct {
	Category TrapCategory `json:"category" yaml:"category"`
	Name     string       `json:"name" yaml:"name"`

	// ThreatDescription completes the sentence "this shop will try to
	// break you by ...".
	ThreatDescription string `json:"threat_description" yaml:"threat_description"`

	// ConfigSource names the configuration option that enables the trap.
	ConfigSource string `json:"config_source" yaml:"config_source"`
}

// ExtractEnabledTraps analyzes a configuration and identifies which
// traps are active that could trip up a naive dimensional modeler.
func ExtractEnabledTraps(config Configuration) []EnabledTrap {
	var traps []EnabledTrap

	if config.Transactions.Grain == GrainMixed {
		traps = append(traps, EnabledTrap{
			Category:          TrapGrain,
			Name:              "Mixed Transaction Grain",
			ThreatDescription: "mixing line-item and receipt-level transactions unpredictably",
			ConfigSource:      "transactions.grain=mixed",
		})
	}
	if config.Transactions.MultiplePayments {
		traps = append(traps, EnabledTrap{
			Category:          TrapGrain,
			Name:              "Multiple Payments",
			ThreatDescription: "splitting payments across multiple tender types per transaction",
			ConfigSource:      "transactions.multiple_payments=true",
		})
	}
	if config.Promotions.PerLineItem == PromotionsMany {
		traps = append(traps, EnabledTrap{
			Category:          TrapGrain,
			Name:              "Multiple Promotions Per Item",
			ThreatDescription: "stacking multiple promotions on single line items",
			ConfigSource:      "promotions.promotions_per_line_item=many",
		})
	}

	if config.Time.TimestampBusinessDateRelation == TimestampDifferentFromBusinessDate {
		traps = append(traps, EnabledTrap{
			Category:          TrapTemporal,
			Name:              "Timestamp/Business Date Divergence",
			ThreatDescription: "recording events at midnight that belong to yesterday's business",
			ConfigSource:      "time.timestamp_business_date_relation=different",
		})
	}
	if config.Time.BackdatedCorrections {
		traps = append(traps, EnabledTrap{
			Category:          TrapTemporal,
			Name:              "Backdated Corrections",
			ThreatDescription: "recording corrections today that apply to last week's transactions",
			ConfigSource:      "time.backdated_corrections=true",
		})
	}
	if config.Time.LateArrivingEvents {
		traps = append(traps, EnabledTrap{
			Category:          TrapTemporal,
			Name:              "Late-Arriving Events",
			ThreatDescription: "processing events days after they actually occurred",
			ConfigSource:      "time.late_arriving_events=true",
		})
	}
	if config.Products.HierarchyChangeFrequency != HierarchyChangesNone {
		freq := string(config.Products.HierarchyChangeFrequency)
		traps = append(traps, EnabledTrap{
			Category:          TrapTemporal,
			Name:              "Product Hierarchy Changes",
			ThreatDescription: fmt.Sprintf("reorganizing product categories %s", freq),
			ConfigSource:      fmt.Sprintf("products.hierarchy_change_frequency=%s", freq),
		})
	}

	if config.Customers.IDReliability == CustomerIDUnreliable {
		traps = append(traps, EnabledTrap{
			Category:          TrapIdentity,
			Name:              "Unreliable Customer IDs",
			ThreatDescription: "giving you customer IDs that merge and split randomly",
			ConfigSource:      "customers.customer_id_reliability=unreliable",
		})
	}
	if config.Customers.IDReliability == CustomerIDAbsent {
		traps = append(traps, EnabledTrap{
			Category:          TrapIdentity,
			Name:              "No Customer IDs",
			ThreatDescription: "having no customer identifiers at all",
			ConfigSource:      "customers.customer_id_reliability=absent",
		})
	}
	if config.Products.SKUReuse {
		traps = append(traps, EnabledTrap{
			Category:          TrapIdentity,
			Name:              "SKU Reuse",
			ThreatDescription: "reusing SKU codes for completely different products over time",
			ConfigSource:      "products.sku_reuse=true",
		})
	}

	if config.Returns.ReferencePolicy == ReturnsReferenceSometimes {
		traps = append(traps, EnabledTrap{
			Category:          TrapSemantic,
			Name:              "Optional Return References",
			ThreatDescription: "sometimes referencing original sales on returns, sometimes not",
			ConfigSource:      "returns.reference_policy=sometimes",
		})
	}
	if config.Returns.ReferencePolicy == ReturnsReferenceNever {
		traps = append(traps, EnabledTrap{
			Category:          TrapSemantic,
			Name:              "Orphan Returns",
			ThreatDescription: "accepting returns with no link to original transactions",
			ConfigSource:      "returns.reference_policy=never",
		})
	}
	if config.Returns.PricingPolicy == ReturnsPricingArbitrary {
		traps = append(traps, EnabledTrap{
			Category:          TrapSemantic,
			Name:              "Arbitrary Return Pricing",
			ThreatDescription: "overriding return prices with values matching nothing in the system",
			ConfigSource:      "returns.pricing_policy=arbitrary_override",
		})
	}
	if config.Transactions.VoidsEnabled {
		traps = append(traps, EnabledTrap{
			Category:          TrapSemantic,
			Name:              "Transaction Voids",
			ThreatDescription: "voiding transactions after the fact",
			ConfigSource:      "transactions.voids_enabled=true",
		})
	}
	if config.Transactions.ManualOverrides {
		traps = append(traps, EnabledTrap{
			Category:          TrapSemantic,
			Name:              "Manual Price Overrides",
			ThreatDescription: "letting cashiers override prices at the register",
			ConfigSource:      "transactions.manual_overrides=true",
		})
	}

	if config.Stores.CrossStoreReturns {
		traps = append(traps, EnabledTrap{
			Category:          TrapRelationship,
			Name:              "Cross-Store Returns",
			ThreatDescription: "allowing items bought at one store to be returned at another",
			ConfigSource:      "stores.cross_store_returns=true",
		})
	}
	if config.Stores.LifecycleChanges {
		traps = append(traps, EnabledTrap{
			Category:          TrapRelationship,
			Name:              "Store Lifecycle Changes",
			ThreatDescription: "opening, closing, and merging stores over time",
			ConfigSource:      "stores.store_lifecycle_changes=true",
		})
	}
	if config.Customers.HouseholdGrouping {
		traps = append(traps, EnabledTrap{
			Category:          TrapRelationship,
			Name:              "Household Grouping",
			ThreatDescription: "grouping customers into households that can change",
			ConfigSource:      "customers.household_grouping=true",
		})
	}
	if config.Products.BundledProducts {
		traps = append(traps, EnabledTrap{
			Category:          TrapRelationship,
			Name:              "Bundled Products",
			ThreatDescription: "selling products as bundles with complex component tracking",
			ConfigSource:      "products.bundled_products=true",
		})
	}

	return traps
}

// TrapsByCategory groups traps by category, preserving extraction order
// within each group.
func TrapsByCategory(traps []EnabledTrap) map[TrapCategory][]EnabledTrap {
	grouped := make(map[TrapCategory][]EnabledTrap)
	for _, trap := range traps {
		grouped[trap.Category] = append(grouped[trap.Category], trap)
	}
	return grouped
}
