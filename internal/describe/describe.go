// Package describe renders shop configurations as briefing prose: a
// profile of how the business behaves, written for the person about to
// model it, with unreliable corners called out but never mapped to
// their scoring rules.
package describe

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

type section struct {
	title string
	body  []string
	watch []string
}

// Generate renders the complete shop profile. Output is deterministic
// for a configuration: phrase variants come off a stream forked from
// the shop seed.
func Generate(cfg shop.Configuration) string {
	p := prose{r: rng.New(cfg.Seed).Fork("prose")}

	sections := []section{
		transactionsSection(cfg, p),
		timeSection(cfg, p),
		productsSection(cfg, p),
		customersSection(cfg, p),
		storesSection(cfg),
		promotionsSection(cfg),
		returnsSection(cfg, p),
		inventorySection(cfg, p),
	}

	rule := strings.Repeat("=", 60)
	thin := strings.Repeat("-", 60)

	lines := []string{rule, "SHOP PROFILE: " + cfg.ShopName, rule}
	for _, s := range sections {
		lines = append(lines, "", s.title, thin)
		lines = append(lines, s.body...)
		if len(s.watch) > 0 {
			lines = append(lines, "", "Things to watch:")
			for _, w := range s.watch {
				lines = append(lines, "  - "+w)
			}
		}
	}
	lines = append(lines, "", rule)
	return strings.Join(lines, "\n")
}

func transactionsSection(cfg shop.Configuration, p prose) section {
	t := cfg.Transactions
	body := []string{
		fmt.Sprintf("%s %s.", cfg.ShopName, p.phrase("transaction_grain", string(t.Grain))),
		p.phrase("multiple_payments", boolKey(t.MultiplePayments)) + ".",
		p.phrase("voids", boolKey(t.VoidsEnabled)) + ".",
	}
	if t.ManualOverrides {
		body = append(body, "Cashiers can manually override prices at the register.")
	}

	var watch []string
	if t.Grain == shop.GrainMixed {
		watch = append(watch, "There is no reliable indicator of whether a given transaction record contains aggregated or itemized data.")
	}
	if t.MultiplePayments && t.VoidsEnabled {
		watch = append(watch, "When a transaction with multiple payments is voided, the relationship between individual payment voids is not explicit.")
	}
	if t.ManualOverrides {
		watch = append(watch, "Manual overrides are not always distinguishable from legitimate promotions in the data.")
	}
	return section{title: "TRANSACTIONS", body: body, watch: watch}
}

func timeSection(cfg shop.Configuration, p prose) section {
	t := cfg.Time
	body := []string{
		p.phrase("timestamp_relation", string(t.TimestampBusinessDateRelation)) + ".",
		p.phrase("late_arriving", boolKey(t.LateArrivingEvents)) + ".",
		p.phrase("backdated_corrections", boolKey(t.BackdatedCorrections)) + ".",
	}

	var watch []string
	if t.TimestampBusinessDateRelation == shop.TimestampDifferentFromBusinessDate {
		watch = append(watch, "The mapping between transaction timestamps and business dates is not deterministic; two transactions with the same timestamp might have different business dates.")
	}
	if t.LateArrivingEvents && t.BackdatedCorrections {
		watch = append(watch, "It can be difficult to distinguish between a late-arriving event and a backdated correction without examining the full context.")
	}
	return section{title: "TIME SEMANTICS", body: body, watch: watch}
}

func productsSection(cfg shop.Configuration, p prose) section {
	pr := cfg.Products
	body := []string{
		p.phrase("sku_reuse", boolKey(pr.SKUReuse)) + ".",
		p.phrase("hierarchy_change", string(pr.HierarchyChangeFrequency)) + ".",
	}
	if pr.BundledProducts {
		body = append(body, "Some products are sold as bundles of other products.")
	}
	if pr.VirtualProducts {
		body = append(body, "The catalog includes virtual products with no physical inventory.")
	}

	var watch []string
	if pr.SKUReuse {
		watch = append(watch, "When joining transactions to product master data, you must consider point-in-time accuracy since SKUs may refer to different products over time.")
	}
	if pr.BundledProducts {
		watch = append(watch, "Bundle sales may be recorded at the bundle level, component level, or both. The recording method is not always consistent.")
	}
	return section{title: "PRODUCTS", body: body, watch: watch}
}

func customersSection(cfg shop.Configuration, p prose) section {
	c := cfg.Customers
	body := []string{
		p.phrase("customer_reliability", string(c.IDReliability)) + ".",
	}
	if c.AnonymousAllowed {
		body = append(body, "Purchases can be made anonymously, without any customer identifier.")
	}
	if c.HouseholdGrouping {
		body = append(body, "Customers are grouped into households for analytical purposes.")
	}

	var watch []string
	if c.IDReliability == shop.CustomerIDUnreliable {
		watch = append(watch, "Customer analytics should account for both split identities (one person with multiple IDs) and merged identities (multiple people sharing an ID).")
	}
	if c.AnonymousAllowed && c.IDReliability != shop.CustomerIDAbsent {
		watch = append(watch, "A NULL customer ID could mean an anonymous purchase or a failure to capture the ID; these cases are not distinguished.")
	}
	if c.HouseholdGrouping {
		watch = append(watch, "Household assignments may change over time. The current household structure may not reflect historical living arrangements.")
	}
	return section{title: "CUSTOMERS", body: body, watch: watch}
}

func storesSection(cfg shop.Configuration) section {
	st := cfg.Stores

	var body []string
	switch {
	case st.PhysicalStores && st.OnlineChannel:
		body = append(body, fmt.Sprintf("%s operates physical stores alongside an online channel.", cfg.ShopName))
	case st.PhysicalStores:
		body = append(body, fmt.Sprintf("%s operates physical stores only.", cfg.ShopName))
	case st.OnlineChannel:
		body = append(body, fmt.Sprintf("%s sells exclusively through its online channel.", cfg.ShopName))
	}
	if st.CrossStoreReturns {
		body = append(body, "Items bought at one store can be returned at any other store.")
	}
	if st.LifecycleChanges {
		body = append(body, "Stores open, close, and occasionally merge over time.")
	}

	var watch []string
	if st.LifecycleChanges {
		watch = append(watch, "When stores merge, historical transactions may reference the old store ID even though the store no longer exists.")
	}
	if st.PhysicalStores && st.OnlineChannel {
		watch = append(watch, "Some transactions may be ambiguous in terms of channel (e.g., buy-online-pickup-in-store).")
	}
	return section{title: "STORES", body: body, watch: watch}
}

func promotionsSection(cfg shop.Configuration) section {
	pm := cfg.Promotions

	var body []string
	if pm.PerLineItem == shop.PromotionsMany {
		body = append(body, "Several promotions can apply to a single line item.")
	} else {
		body = append(body, "At most one promotion applies to any given line item.")
	}
	if pm.Stackable {
		body = append(body, "Stacked promotions compound on the same item.")
	}
	if pm.BasketLevel {
		body = append(body, "Some discounts apply to the basket as a whole rather than to specific items.")
	}
	if pm.PostTransaction {
		body = append(body, "Promotions are sometimes granted after the transaction completes, as follow-up adjustments.")
	}

	var watch []string
	if pm.PerLineItem == shop.PromotionsMany {
		watch = append(watch, "When multiple promotions apply to a line item, the individual contribution of each promotion to the discount may not be clear.")
	}
	if pm.BasketLevel {
		watch = append(watch, "Basket-level discounts are not allocated to individual line items, making true unit economics difficult to calculate.")
	}
	if pm.PostTransaction {
		watch = append(watch, "Post-transaction promotions may create adjustment events that complicate revenue calculations.")
	}
	return section{title: "PROMOTIONS", body: body, watch: watch}
}

func returnsSection(cfg shop.Configuration, p prose) section {
	r := cfg.Returns
	body := []string{
		p.phrase("returns_reference", string(r.ReferencePolicy)) + ".",
		p.phrase("returns_pricing", string(r.PricingPolicy)) + ".",
	}

	var watch []string
	if r.ReferencePolicy == shop.ReturnsReferenceSometimes {
		watch = append(watch, "Returns without original transaction references cannot be reliably matched to their originating sales.")
	}
	if r.PricingPolicy == shop.ReturnsPricingArbitrary {
		watch = append(watch, "Return prices may not match any price in the system, making it impossible to validate return amounts programmatically.")
	}
	return section{title: "RETURNS", body: body, watch: watch}
}

func inventorySection(cfg shop.Configuration, p prose) section {
	inv := cfg.Inventory

	var body []string
	if inv.Tracked {
		body = append(body, p.phrase("inventory_type", string(inv.Type))+".")
	} else {
		body = append(body, "Inventory levels are not tracked in the event stream.")
	}

	var watch []string
	if inv.Tracked && inv.Type == shop.InventoryBoth {
		watch = append(watch, "Transactional inventory events and periodic snapshots may not always reconcile due to timing differences and untracked adjustments.")
	}
	return section{title: "INVENTORY", body: body, watch: watch}
}
