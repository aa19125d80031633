package sim

import (
	"fmt"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

var returnReasons = []string{
	"defective",
	"wrong_item",
	"changed_mind",
	"not_as_described",
	"duplicate",
	"too_small",
	"too_large",
	"better_price_elsewhere",
}

// returnEmitter produces return transactions referencing (or not
// referencing) earlier sales, per the shop's reference policy.
type returnEmitter struct {
	config shop.Configuration
	rng    *rng.Rand
}

func (e *returnEmitter) shouldEmit(w *World) bool {
	if w.TransactionCount() == 0 {
		return false
	}
	return e.rng.Boolean(0.15)
}

func (e *returnEmitter) emit(w *World) []events.Event {
	open := w.OpenStores()
	if len(open) == 0 {
		return nil
	}

	store := rng.Choice(e.rng, open)
	register := rng.Choice(e.rng, store.Registers)
	employee := rng.Choice(e.rng, store.Employees)

	returnable := w.ReturnableTransactions(store.StoreID)
	if len(returnable) == 0 {
		return nil
	}

	var originalSale *events.Sale
	switch e.config.Returns.ReferencePolicy {
	case shop.ReturnsReferenceAlways:
		originalSale = w.Transaction(rng.Choice(e.rng, returnable))
	case shop.ReturnsReferenceSometimes:
		if e.rng.Boolean(0.6) {
			originalSale = w.Transaction(rng.Choice(e.rng, returnable))
		}
	}

	lineItems := e.generateReturnItems(w, originalSale)
	if len(lineItems) == 0 {
		return nil
	}

	priceDetermination := "override"
	switch e.config.Returns.PricingPolicy {
	case shop.ReturnsPricingOriginal:
		priceDetermination = "original"
	case shop.ReturnsPricingCurrent:
		priceDetermination = "current"
	}

	originalTransactionID := ""
	customerID := ""
	if originalSale != nil {
		originalTransactionID = originalSale.TransactionID
		customerID = originalSale.CustomerID
	}
	if customerID == "" {
		customerID = w.GetOrCreateCustomer()
	}

	eventID, seq := w.NextEventID()
	ret := events.Return{
		EventHeader: events.EventHeader{
			EventID:      eventID,
			Type:         events.TypeReturn,
			Timestamp:    w.Clock,
			BusinessDate: w.BusinessDate,
		},
		ReturnID:              fmt.Sprintf("RET-%08d", seq),
		StoreID:               store.StoreID,
		RegisterID:            register,
		EmployeeID:            employee,
		CustomerID:            customerID,
		OriginalTransactionID: originalTransactionID,
		LineItems:             lineItems,
		ReturnReasonCode:      rng.Choice(e.rng, returnReasons),
		PriceDetermination:    priceDetermination,
	}

	for _, item := range lineItems {
		w.UpdateInventory(store.StoreID, item.SKU, item.Quantity)
	}

	return []events.Event{ret}
}

func (e *returnEmitter) generateReturnItems(w *World, originalSale *events.Sale) []events.LineItem {
	if originalSale != nil && !originalSale.IsAggregated {
		// Return a subset of the original basket.
		numItems := e.rng.Integer(1, len(originalSale.LineItems))
		toReturn := rng.Sample(e.rng, originalSale.LineItems, numItems)

		items := make([]events.LineItem, 0, len(toReturn))
		for i, original := range toReturn {
			quantity := e.rng.Integer(1, original.Quantity)

			unitPrice := original.UnitPriceCents
			switch e.config.Returns.PricingPolicy {
			case shop.ReturnsPricingCurrent:
				if product := w.Product(original.SKU); product != nil {
					unitPrice = product.CurrentPriceCents
				}
			case shop.ReturnsPricingArbitrary:
				unitPrice = e.rng.Integer(original.UnitPriceCents/2, original.UnitPriceCents)
			}

			items = append(items, events.LineItem{
				LineNumber:     i + 1,
				SKU:            original.SKU,
				Quantity:       quantity,
				UnitPriceCents: unitPrice,
				PromotionCodes: []string{},
			})
		}
		return items
	}

	// Blind return: no line-level link back to a sale.
	active := w.ActiveProducts()
	if len(active) == 0 {
		return nil
	}
	numItems := e.rng.Integer(1, 3)
	items := make([]events.LineItem, 0, numItems)
	for i := 0; i < numItems; i++ {
		product := rng.Choice(e.rng, active)
		quantity := e.rng.Integer(1, 3)

		unitPrice := product.CurrentPriceCents
		if e.config.Returns.PricingPolicy == shop.ReturnsPricingArbitrary {
			unitPrice = e.rng.Integer(product.CurrentPriceCents/2, product.CurrentPriceCents*2)
		}

		items = append(items, events.LineItem{
			LineNumber:     i + 1,
			SKU:            product.SKU,
			Quantity:       quantity,
			UnitPriceCents: unitPrice,
			PromotionCodes: []string{},
		})
	}
	return items
}
