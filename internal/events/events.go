// Package events defines the retail event stream: a closed tagged
// union of eight event variants plus the event log document that wraps
// them. Events are immutable once emitted; later voids and corrections
// reference earlier events by id rather than rewriting them.
package events

import "time"

// EventType tags each event variant on the wire.
type EventType string

const (
	TypeSale                EventType = "sale"
	TypeReturn              EventType = "return"
	TypeVoid                EventType = "void"
	TypeCorrection          EventType = "correction"
	TypeInventoryAdjustment EventType = "inventory_adjustment"
	TypeInventorySnapshot   EventType = "inventory_snapshot"
	TypeProductChange       EventType = "product_change"
	TypeStoreChange         EventType = "store_change"
)

// Types lists every event type in a stable order.
var Types = []EventType{
	TypeSale,
	TypeReturn,
	TypeVoid,
	TypeCorrection,
	TypeInventoryAdjustment,
	TypeInventorySnapshot,
	TypeProductChange,
	TypeStoreChange,
}

// LineItem is one line within a sale or return.
type LineItem struct {
	LineNumber     int      `json:"line_number"`
	SKU            string   `json:"sku"`
	Quantity       int      `json:"quantity"`
	UnitPriceCents int      `json:"unit_price_cents"`
	DiscountCents  int      `json:"discount_cents"`
	PromotionCodes []string `json:"promotion_codes"`

	// BundleParentLine is set when this line belongs to a product
	// bundle; it names the parent line number.
	BundleParentLine *int `json:"bundle_parent_line,omitempty"`
}

// Payment is one tender within a transaction.
type Payment struct {
	PaymentMethod   string `json:"payment_method"`
	AmountCents     int    `json:"amount_cents"`
	ReferenceNumber string `json:"reference_number,omitempty"`
}

// EventHeader carries the fields common to every event variant.
type EventHeader struct {
	EventID   string    `json:"event_id"`
	Type      EventType `json:"event_type"`
	Timestamp time.Time `json:"event_timestamp"`

	// BusinessDate is the business day the event belongs to, which may
	// differ from the calendar date of Timestamp.
	BusinessDate Date `json:"business_effective_date"`
}

// Header returns the event's common fields.
func (h EventHeader) Header() EventHeader { return h }

// Event is the closed union of all event variants. Only types in this
// package implement it.
type Event interface {
	Header() EventHeader
	isEvent()
}

// Sale is a sale transaction.
type Sale struct {
	EventHeader
	TransactionID string     `json:"transaction_id"`
	StoreID       string     `json:"store_id"`
	RegisterID    string     `json:"register_id"`
	EmployeeID    string     `json:"employee_id"`
	CustomerID    string     `json:"customer_id,omitempty"`
	LineItems     []LineItem `json:"line_items"`
	Payments      []Payment  `json:"payments"`

	// IsAggregated marks receipt-level grain: the line items have been
	// collapsed into a single aggregate line.
	IsAggregated bool `json:"is_aggregated"`
}

// Return is a return transaction. OriginalTransactionID is empty when
// the shop's reference policy did not attach one.
type Return struct {
	EventHeader
	ReturnID              string     `json:"return_id"`
	StoreID               string     `json:"store_id"`
	RegisterID            string     `json:"register_id"`
	EmployeeID            string     `json:"employee_id"`
	CustomerID            string     `json:"customer_id,omitempty"`
	OriginalTransactionID string     `json:"original_transaction_id,omitempty"`
	LineItems             []LineItem `json:"line_items"`
	ReturnReasonCode      string     `json:"return_reason_code"`

	// PriceDetermination records how refund prices were chosen:
	// "original", "current" or "override".
	PriceDetermination string `json:"price_determination"`
}

// Void cancels a prior event.
type Void struct {
	EventHeader
	VoidID            string    `json:"void_id"`
	OriginalEventID   string    `json:"original_event_id"`
	OriginalEventType EventType `json:"original_event_type"`
	VoidReason        string    `json:"void_reason"`
	AuthorizedBy      string    `json:"authorized_by"`
}

// Correction fixes fields of a prior event. Its business date is
// backdated to when the error occurred while its timestamp records
// when the fix was made.
type Correction struct {
	EventHeader
	CorrectionID     string         `json:"correction_id"`
	OriginalEventID  string         `json:"original_event_id"`
	FieldCorrections map[string]any `json:"field_corrections"`
	CorrectionReason string         `json:"correction_reason"`
}

// InventoryAdjustment is a transactional inventory change.
type InventoryAdjustment struct {
	EventHeader
	AdjustmentID     string `json:"adjustment_id"`
	StoreID          string `json:"store_id"`
	SKU              string `json:"sku"`
	QuantityChange   int    `json:"quantity_change"`
	ReasonCode       string `json:"reason_code"`
	ReferenceEventID string `json:"reference_event_id,omitempty"`
}

// InventorySnapshot is a periodic on-hand level for one store and SKU.
type InventorySnapshot struct {
	EventHeader
	SnapshotID     string `json:"snapshot_id"`
	StoreID        string `json:"store_id"`
	SKU            string `json:"sku"`
	QuantityOnHand int    `json:"quantity_on_hand"`
	SnapshotType   string `json:"snapshot_type"`
}

// ProductChange records a product hierarchy or price change.
type ProductChange struct {
	EventHeader
	ChangeID   string `json:"change_id"`
	SKU        string `json:"sku"`
	ChangeType string `json:"change_type"`
	OldValue   string `json:"old_value,omitempty"`
	NewValue   string `json:"new_value"`
}

// StoreChange records a store lifecycle change: an opening, a closure,
// or a merge into another store.
type StoreChange struct {
	EventHeader
	ChangeID       string `json:"change_id"`
	StoreID        string `json:"store_id"`
	ChangeType     string `json:"change_type"`
	RelatedStoreID string `json:"related_store_id,omitempty"`
}

func (Sale) isEvent()                {}
func (Return) isEvent()              {}
func (Void) isEvent()                {}
func (Correction) isEvent()          {}
func (InventoryAdjustment) isEvent() {}
func (InventorySnapshot) isEvent()   {}
func (ProductChange) isEvent()       {}
func (StoreChange) isEvent()         {}
