package sim

import (
	"fmt"
	"slices"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

var paymentMethods = []string{"cash", "credit_card", "debit_card", "gift_card", "mobile_pay"}

// saleEmitter produces sale transactions during business hours.
type saleEmitter struct {
	config shop.Configuration
	rng    *rng.Rand
}

func (e *saleEmitter) shouldEmit(w *World) bool {
	hour := w.Clock.Hour()
	return hour >= 8 && hour <= 22
}

func (e *saleEmitter) emit(w *World) []events.Event {
	open := w.OpenStores()
	if len(open) == 0 {
		return nil
	}

	store := rng.Choice(e.rng, open)
	register := rng.Choice(e.rng, store.Registers)
	employee := rng.Choice(e.rng, store.Employees)
	customerID := w.GetOrCreateCustomer()

	lineItems := e.generateLineItems(w)
	if len(lineItems) == 0 {
		return nil
	}

	total := 0
	for _, item := range lineItems {
		total += item.UnitPriceCents*item.Quantity - item.DiscountCents
	}
	payments := e.generatePayments(total)

	isAggregated := false
	switch e.config.Transactions.Grain {
	case shop.GrainReceiptLevel:
		isAggregated = true
	case shop.GrainMixed:
		isAggregated = e.rng.Boolean(0.3)
	}
	if isAggregated {
		lineItems = aggregateLineItems(total)
	}

	timestamp := w.Clock
	businessDate := w.BusinessDate
	if e.config.Time.TimestampBusinessDateRelation == shop.TimestampDifferentFromBusinessDate && timestamp.Hour() < 4 {
		// Early-morning activity still books to the prior business day.
		businessDate = businessDate.AddDays(-1)
	}

	transactionID := w.NextTransactionID()
	eventID, _ := w.NextEventID()

	sale := events.Sale{
		EventHeader: events.EventHeader{
			EventID:      eventID,
			Type:         events.TypeSale,
			Timestamp:    timestamp,
			BusinessDate: businessDate,
		},
		TransactionID: transactionID,
		StoreID:       store.StoreID,
		RegisterID:    register,
		EmployeeID:    employee,
		CustomerID:    customerID,
		LineItems:     lineItems,
		Payments:      payments,
		IsAggregated:  isAggregated,
	}
	w.RecordTransaction(sale)

	if !isAggregated {
		for _, item := range lineItems {
			w.UpdateInventory(store.StoreID, item.SKU, -item.Quantity)
		}
	}

	return []events.Event{sale}
}

func (e *saleEmitter) generateLineItems(w *World) []events.LineItem {
	active := w.ActiveProducts()
	if len(active) == 0 {
		return nil
	}

	numItems := e.rng.Integer(1, 10)
	items := make([]events.LineItem, 0, numItems)
	for i := 0; i < numItems; i++ {
		product := rng.Choice(e.rng, active)

		var bundleParent *int
		if len(product.BundleComponents) > 0 && e.rng.Boolean(0.8) {
			// The bundle header line points at itself.
			line := i + 1
			bundleParent = &line
		}

		quantity := e.rng.Integer(1, 5)

		var applicable []*PromotionState
		for _, promo := range w.promotions {
			if promo.IsBasketLevel {
				continue
			}
			if promo.ApplicableSKUs != nil && !slices.Contains(promo.ApplicableSKUs, product.SKU) {
				continue
			}
			applicable = append(applicable, promo)
		}

		var selected []*PromotionState
		if len(applicable) > 0 {
			if e.config.Promotions.PerLineItem == shop.PromotionsMany {
				numPromos := e.rng.Integer(0, min(3, len(applicable)))
				if numPromos > 0 {
					selected = rng.Sample(e.rng, applicable, numPromos)
				}
			} else if e.rng.Boolean(0.3) {
				selected = []*PromotionState{rng.Choice(e.rng, applicable)}
			}
		}

		promotionCodes := []string{}
		discountCents := 0
		for _, promo := range selected {
			promotionCodes = append(promotionCodes, promo.PromotionCode)
			switch promo.DiscountType {
			case "percent":
				discountCents += product.CurrentPriceCents * promo.DiscountValue / 100
			case "fixed":
				discountCents += promo.DiscountValue
			}
		}

		if e.config.Transactions.ManualOverrides && e.rng.Boolean(0.05) {
			// A manual override replaces whatever the promotions gave.
			discountCents = e.rng.Integer(0, product.CurrentPriceCents/2)
		}

		items = append(items, events.LineItem{
			LineNumber:       i + 1,
			SKU:              product.SKU,
			Quantity:         quantity,
			UnitPriceCents:   product.CurrentPriceCents,
			DiscountCents:    discountCents,
			PromotionCodes:   promotionCodes,
			BundleParentLine: bundleParent,
		})
	}
	return items
}

// generatePayments splits the total across one or more tenders. A
// split leg needs at least 100 cents on each side, so small totals
// and small remainders fall back to a single tender.
func (e *saleEmitter) generatePayments(totalCents int) []events.Payment {
	if e.config.Transactions.MultiplePayments && e.rng.Boolean(0.2) && totalCents >= 200 {
		numPayments := e.rng.Integer(2, 3)
		payments := make([]events.Payment, 0, numPayments)
		remaining := totalCents
		for i := 0; i < numPayments-1 && remaining >= 200; i++ {
			amount := e.rng.Integer(100, remaining-100)
			payments = append(payments, events.Payment{
				PaymentMethod:   rng.Choice(e.rng, paymentMethods),
				AmountCents:     amount,
				ReferenceNumber: fmt.Sprintf("PAY-%d", e.rng.Integer(100000, 999999)),
			})
			remaining -= amount
		}
		payments = append(payments, events.Payment{
			PaymentMethod:   rng.Choice(e.rng, paymentMethods),
			AmountCents:     remaining,
			ReferenceNumber: fmt.Sprintf("PAY-%d", e.rng.Integer(100000, 999999)),
		})
		return payments
	}

	return []events.Payment{{
		PaymentMethod:   rng.Choice(e.rng, paymentMethods),
		AmountCents:     totalCents,
		ReferenceNumber: fmt.Sprintf("PAY-%d", e.rng.Integer(100000, 999999)),
	}}
}

// aggregateLineItems collapses a basket into the single synthetic line
// a receipt-level shop reports.
func aggregateLineItems(totalCents int) []events.LineItem {
	return []events.LineItem{{
		LineNumber:     1,
		SKU:            "AGGREGATE",
		Quantity:       1,
		UnitPriceCents: totalCents,
		DiscountCents:  0,
		PromotionCodes: []string{},
	}}
}
