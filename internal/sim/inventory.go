package sim

import (
	"fmt"
	"slices"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

var adjustmentReasons = []string{
	"receiving",
	"damage",
	"theft",
	"count_correction",
	"transfer_in",
	"transfer_out",
	"expired",
	"return_to_vendor",
}

var positiveAdjustmentReasons = []string{"receiving", "transfer_in", "count_correction"}
var negativeAdjustmentReasons = []string{"damage", "theft", "expired", "return_to_vendor", "transfer_out"}

// inventoryEmitter produces stock movements and end-of-day snapshots,
// depending on the shop's inventory style.
type inventoryEmitter struct {
	config shop.Configuration
	rng    *rng.Rand

	lastSnapshotDate events.Date
}

func (e *inventoryEmitter) snapshotDue(w *World) bool {
	if t := e.config.Inventory.Type; t != shop.InventoryPeriodicSnapshot && t != shop.InventoryBoth {
		return false
	}
	return e.lastSnapshotDate != w.BusinessDate && w.Clock.Hour() >= 22
}

func (e *inventoryEmitter) shouldEmit(w *World) bool {
	if !e.config.Inventory.Tracked {
		return false
	}
	if t := e.config.Inventory.Type; t == shop.InventoryTransactional || t == shop.InventoryBoth {
		if e.rng.Boolean(0.05) {
			return true
		}
	}
	return e.snapshotDue(w)
}

func (e *inventoryEmitter) emit(w *World) []events.Event {
	if !e.config.Inventory.Tracked {
		return nil
	}
	if e.snapshotDue(w) {
		evs := e.emitSnapshots(w)
		e.lastSnapshotDate = w.BusinessDate
		return evs
	}
	if t := e.config.Inventory.Type; t == shop.InventoryTransactional || t == shop.InventoryBoth {
		return e.emitAdjustment(w)
	}
	return nil
}

// emitSnapshots records the on-hand level of every tracked store/SKU
// pair at once.
func (e *inventoryEmitter) emitSnapshots(w *World) []events.Event {
	evs := make([]events.Event, 0, len(w.inventoryOrder))
	for _, key := range w.inventoryOrder {
		eventID, seq := w.NextEventID()
		evs = append(evs, events.InventorySnapshot{
			EventHeader: events.EventHeader{
				EventID:      eventID,
				Type:         events.TypeInventorySnapshot,
				Timestamp:    w.Clock,
				BusinessDate: w.BusinessDate,
			},
			SnapshotID:     fmt.Sprintf("SNAP-%08d", seq),
			StoreID:        key.storeID,
			SKU:            key.sku,
			QuantityOnHand: w.inventory[key],
			SnapshotType:   "daily",
		})
	}
	return evs
}

func (e *inventoryEmitter) emitAdjustment(w *World) []events.Event {
	open := w.OpenStores()
	if len(open) == 0 {
		return nil
	}
	active := w.ActiveProducts()
	if len(active) == 0 {
		return nil
	}

	store := rng.Choice(e.rng, open)
	product := rng.Choice(e.rng, active)
	reason := rng.Choice(e.rng, adjustmentReasons)

	var quantityChange int
	switch {
	case slices.Contains(positiveAdjustmentReasons, reason):
		quantityChange = e.rng.Integer(1, 50)
	case slices.Contains(negativeAdjustmentReasons, reason):
		quantityChange = -e.rng.Integer(1, 10)
	default:
		quantityChange = e.rng.Integer(-10, 10)
	}

	w.UpdateInventory(store.StoreID, product.SKU, quantityChange)

	eventID, seq := w.NextEventID()
	return []events.Event{events.InventoryAdjustment{
		EventHeader: events.EventHeader{
			EventID:      eventID,
			Type:         events.TypeInventoryAdjustment,
			Timestamp:    w.Clock,
			BusinessDate: w.BusinessDate,
		},
		AdjustmentID:   fmt.Sprintf("ADJ-%08d", seq),
		StoreID:        store.StoreID,
		SKU:            product.SKU,
		QuantityChange: quantityChange,
		ReasonCode:     reason,
	}}
}
