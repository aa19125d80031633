package sim

import (
	"fmt"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

var voidReasons = []string{
	"customer_request",
	"duplicate_entry",
	"cashier_error",
	"fraud_suspected",
	"test_transaction",
	"system_error",
}

var correctionReasons = []string{
	"price_correction",
	"quantity_correction",
	"customer_id_correction",
	"promotion_applied_late",
	"tax_adjustment",
	"data_entry_error",
}

var correctableFields = []string{
	"customer_id",
	"employee_id",
	"line_item_quantity",
	"line_item_price",
	"promotion_code",
}

// voidEmitter cancels earlier sales outright.
type voidEmitter struct {
	config shop.Configuration
	rng    *rng.Rand
}

func (e *voidEmitter) shouldEmit(w *World) bool {
	if !e.config.Transactions.VoidsEnabled || w.TransactionCount() == 0 {
		return false
	}
	return e.rng.Boolean(0.03)
}

func (e *voidEmitter) emit(w *World) []events.Event {
	voidable := w.UnvoidedTransactions()
	if len(voidable) == 0 {
		return nil
	}

	original := w.Transaction(rng.Choice(e.rng, voidable))

	authorizedBy := "MGR-UNKNOWN"
	if store := w.Store(original.StoreID); store != nil && len(store.Employees) > 0 {
		authorizedBy = rng.Choice(e.rng, store.Employees)
	}

	eventID, seq := w.NextEventID()
	void := events.Void{
		EventHeader: events.EventHeader{
			EventID:      eventID,
			Type:         events.TypeVoid,
			Timestamp:    w.Clock,
			BusinessDate: w.BusinessDate,
		},
		VoidID:            fmt.Sprintf("VOID-%08d", seq),
		OriginalEventID:   original.EventID,
		OriginalEventType: events.TypeSale,
		VoidReason:        rng.Choice(e.rng, voidReasons),
		AuthorizedBy:      authorizedBy,
	}

	w.MarkVoided(original.TransactionID)
	if !original.IsAggregated {
		// Voiding a sale puts the stock back.
		for _, item := range original.LineItems {
			w.UpdateInventory(original.StoreID, item.SKU, item.Quantity)
		}
	}

	return []events.Event{void}
}

// correctionEmitter issues backdated field corrections against earlier
// sales.
type correctionEmitter struct {
	config shop.Configuration
	rng    *rng.Rand
}

func (e *correctionEmitter) shouldEmit(w *World) bool {
	if !e.config.Time.BackdatedCorrections || w.TransactionCount() == 0 {
		return false
	}
	return e.rng.Boolean(0.02)
}

func (e *correctionEmitter) emit(w *World) []events.Event {
	correctable := w.UnvoidedTransactions()
	if len(correctable) == 0 {
		return nil
	}

	original := w.Transaction(rng.Choice(e.rng, correctable))
	fieldCorrections := e.generateCorrections(w, original)

	// The correction lands on the original's business date, sometimes
	// pushed a few days later.
	businessDate := original.BusinessDate
	if e.rng.Boolean(0.3) {
		businessDate = businessDate.AddDays(e.rng.Integer(0, 3))
	}

	eventID, seq := w.NextEventID()
	correction := events.Correction{
		EventHeader: events.EventHeader{
			EventID:      eventID,
			Type:         events.TypeCorrection,
			Timestamp:    w.Clock,
			BusinessDate: businessDate,
		},
		CorrectionID:     fmt.Sprintf("CORR-%08d", seq),
		OriginalEventID:  original.EventID,
		FieldCorrections: fieldCorrections,
		CorrectionReason: rng.Choice(e.rng, correctionReasons),
	}

	return []events.Event{correction}
}

func (e *correctionEmitter) generateCorrections(w *World, original *events.Sale) map[string]any {
	corrections := make(map[string]any)
	numCorrections := e.rng.Integer(1, 2)
	for _, field := range rng.Sample(e.rng, correctableFields, numCorrections) {
		switch field {
		case "customer_id":
			if customerID := w.GetOrCreateCustomer(); customerID != "" {
				corrections["customer_id"] = customerID
			} else {
				corrections["customer_id"] = nil
			}
		case "employee_id":
			if store := w.Store(original.StoreID); store != nil && len(store.Employees) > 0 {
				corrections["employee_id"] = rng.Choice(e.rng, store.Employees)
			}
		case "line_item_quantity":
			if len(original.LineItems) > 0 && !original.IsAggregated {
				item := rng.Choice(e.rng, original.LineItems)
				key := fmt.Sprintf("line_items[%d].quantity", item.LineNumber)
				corrections[key] = e.rng.Integer(1, item.Quantity+2)
			}
		case "line_item_price":
			if len(original.LineItems) > 0 && !original.IsAggregated {
				item := rng.Choice(e.rng, original.LineItems)
				key := fmt.Sprintf("line_items[%d].unit_price_cents", item.LineNumber)
				adjustment := e.rng.Integer(-500, 500)
				corrections[key] = max(1, item.UnitPriceCents+adjustment)
			}
		case "promotion_code":
			if len(w.promotions) > 0 {
				promotion := rng.Choice(e.rng, w.promotions)
				corrections["promotion_code_added"] = promotion.PromotionCode
			}
		}
	}
	return corrections
}
