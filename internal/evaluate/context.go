// Package evaluate scores a dimensional-schema submission against the
// shop configuration it was designed for. Six axes each contribute a
// scored verdict; the engine combines them into a single result with a
// critique and prioritized recommendations. Evaluation is a pure
// function of configuration and submission.
package evaluate

import (
	"strings"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/shop"
)

// Context is the evaluation-relevant view of a shop configuration:
// which event types the schema must be able to store and which
// dimensions need history tracking.
type Context struct {
	Config shop.Configuration

	// RequiredEventTypes lists the event types the shop emits, in the
	// stable order of events.Types.
	RequiredEventTypes []events.EventType

	// scdDimensions holds lowercase name fragments of dimensions whose
	// source data changes over time.
	scdDimensions []string
}

// NewContext derives the evaluation context from a configuration.
func NewContext(cfg shop.Configuration) Context {
	ctx := Context{Config: cfg}

	required := map[events.EventType]bool{events.TypeSale: true}
	if cfg.HasReturns() {
		required[events.TypeReturn] = true
	}
	if cfg.HasVoids() {
		required[events.TypeVoid] = true
	}
	if cfg.HasCorrections() {
		required[events.TypeCorrection] = true
	}
	if cfg.HasInventory() {
		switch cfg.Inventory.Type {
		case shop.InventoryTransactional:
			required[events.TypeInventoryAdjustment] = true
		case shop.InventoryPeriodicSnapshot:
			required[events.TypeInventorySnapshot] = true
		case shop.InventoryBoth:
			required[events.TypeInventoryAdjustment] = true
			required[events.TypeInventorySnapshot] = true
		}
	}
	if cfg.Products.HierarchyChangeFrequency != shop.HierarchyChangesNone {
		required[events.TypeProductChange] = true
	}
	if cfg.Stores.LifecycleChanges {
		required[events.TypeStoreChange] = true
	}
	for _, t := range events.Types {
		if required[t] {
			ctx.RequiredEventTypes = append(ctx.RequiredEventTypes, t)
		}
	}

	if cfg.Products.HierarchyChangeFrequency != shop.HierarchyChangesNone {
		ctx.scdDimensions = append(ctx.scdDimensions, "product")
	}
	if cfg.Stores.LifecycleChanges {
		ctx.scdDimensions = append(ctx.scdDimensions, "store")
	}
	if cfg.Customers.HouseholdGrouping {
		ctx.scdDimensions = append(ctx.scdDimensions, "customer")
	}

	return ctx
}

// SCDDimensions returns the name fragments of dimensions that need
// history tracking under this configuration.
func (c Context) SCDDimensions() []string {
	return c.scdDimensions
}

// RequiresSCD reports whether a dimension with the given name needs
// history tracking. Matching is by case-insensitive substring, so
// "dim_product" and "product_dim" both match "product".
func (c Context) RequiresSCD(dimensionName string) bool {
	lower := strings.ToLower(dimensionName)
	for _, fragment := range c.scdDimensions {
		if strings.Contains(lower, fragment) {
			return true
		}
	}
	return false
}
