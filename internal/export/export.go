// Package export flattens an event log into a fixed-schema Arrow
// record batch for loading into notebook and duckdb tooling. Sales and
// returns emit one row per line item; every other event emits a single
// header-only row with the line columns null.
package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/slateworks/dimsim/internal/events"
)

// Column order in the exported schema.
const (
	colEventID = iota
	colEventType
	colEventTimestamp
	colBusinessDate
	colStoreID
	colTransactionID
	colOriginalTransactionID
	colCustomerID
	colIsAggregated
	colLineNumber
	colSKU
	colQuantity
	colUnitPriceCents
	colDiscountCents
)

func exportFields() []arrow.Field {
	return []arrow.Field{
		{Name: "event_id", Type: arrow.BinaryTypes.String},
		{Name: "event_type", Type: arrow.BinaryTypes.String},
		{Name: "event_timestamp", Type: arrow.FixedWidthTypes.Timestamp_us},
		{Name: "business_date", Type: arrow.FixedWidthTypes.Date32},
		{Name: "store_id", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "transaction_id", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "original_transaction_id", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "customer_id", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "is_aggregated", Type: arrow.FixedWidthTypes.Boolean, Nullable: true},
		{Name: "line_number", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "sku", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "quantity", Type: arrow.PrimitiveTypes.Int32, Nullable: true},
		{Name: "unit_price_cents", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
		{Name: "discount_cents", Type: arrow.PrimitiveTypes.Int64, Nullable: true},
	}
}

// Schema returns the column layout WriteArrow produces. The schema
// metadata carries the shop config seed so an exported file stays
// traceable to the scenario that produced it.
func Schema(shopConfigSeed uint32) *arrow.Schema {
	md := arrow.NewMetadata(
		[]string{"shop_config_seed"},
		[]string{strconv.FormatUint(uint64(shopConfigSeed), 10)},
	)
	return arrow.NewSchema(exportFields(), &md)
}

// WriteArrow writes the log to w as a single record batch in the Arrow
// IPC stream format and reports the number of rows written. A sale or
// return with no line items still emits one row so no event disappears
// from the extract.
func WriteArrow(l events.Log, w io.Writer) (int, error) {
	mem := memory.NewGoAllocator()
	schema := Schema(l.ShopConfigSeed)

	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	cols := bindColumns(builder)
	for _, event := range l.Events {
		switch e := event.(type) {
		case events.Sale:
			if len(e.LineItems) == 0 {
				cols.saleRow(e, nil)
				continue
			}
			for i := range e.LineItems {
				cols.saleRow(e, &e.LineItems[i])
			}
		case events.Return:
			if len(e.LineItems) == 0 {
				cols.returnRow(e, nil)
				continue
			}
			for i := range e.LineItems {
				cols.returnRow(e, &e.LineItems[i])
			}
		default:
			cols.headerRow(event)
		}
	}

	record := builder.NewRecord()
	defer record.Release()

	writer := ipc.NewWriter(w, ipc.WithSchema(schema), ipc.WithAllocator(mem))
	if err := writer.Write(record); err != nil {
		writer.Close()
		return 0, fmt.Errorf("failed to write record batch: %w", err)
	}
	if err := writer.Close(); err != nil {
		return 0, fmt.Errorf("failed to close arrow stream: %w", err)
	}
	return int(record.NumRows()), nil
}

// columns binds each field builder once so row appends stay readable.
type columns struct {
	eventID               *array.StringBuilder
	eventType             *array.StringBuilder
	eventTimestamp        *array.TimestampBuilder
	businessDate          *array.Date32Builder
	storeID               *array.StringBuilder
	transactionID         *array.StringBuilder
	originalTransactionID *array.StringBuilder
	customerID            *array.StringBuilder
	isAggregated          *array.BooleanBuilder
	lineNumber            *array.Int32Builder
	sku                   *array.StringBuilder
	quantity              *array.Int32Builder
	unitPriceCents        *array.Int64Builder
	discountCents         *array.Int64Builder
}

func bindColumns(b *array.RecordBuilder) *columns {
	return &columns{
		eventID:               b.Field(colEventID).(*array.StringBuilder),
		eventType:             b.Field(colEventType).(*array.StringBuilder),
		eventTimestamp:        b.Field(colEventTimestamp).(*array.TimestampBuilder),
		businessDate:          b.Field(colBusinessDate).(*array.Date32Builder),
		storeID:               b.Field(colStoreID).(*array.StringBuilder),
		transactionID:         b.Field(colTransactionID).(*array.StringBuilder),
		originalTransactionID: b.Field(colOriginalTransactionID).(*array.StringBuilder),
		customerID:            b.Field(colCustomerID).(*array.StringBuilder),
		isAggregated:          b.Field(colIsAggregated).(*array.BooleanBuilder),
		lineNumber:            b.Field(colLineNumber).(*array.Int32Builder),
		sku:                   b.Field(colSKU).(*array.StringBuilder),
		quantity:              b.Field(colQuantity).(*array.Int32Builder),
		unitPriceCents:        b.Field(colUnitPriceCents).(*array.Int64Builder),
		discountCents:         b.Field(colDiscountCents).(*array.Int64Builder),
	}
}

func (c *columns) saleRow(e events.Sale, line *events.LineItem) {
	c.header(e.EventHeader)
	optString(c.storeID, e.StoreID)
	optString(c.transactionID, e.TransactionID)
	c.originalTransactionID.AppendNull()
	optString(c.customerID, e.CustomerID)
	c.isAggregated.Append(e.IsAggregated)
	c.line(line)
}

// returnRow records the return's own id in transaction_id; the orphan
// reference trap surfaces as a null original_transaction_id.
func (c *columns) returnRow(e events.Return, line *events.LineItem) {
	c.header(e.EventHeader)
	optString(c.storeID, e.StoreID)
	optString(c.transactionID, e.ReturnID)
	optString(c.originalTransactionID, e.OriginalTransactionID)
	optString(c.customerID, e.CustomerID)
	c.isAggregated.AppendNull()
	c.line(line)
}

func (c *columns) headerRow(event events.Event) {
	c.header(event.Header())
	optString(c.storeID, storeIDOf(event))
	c.transactionID.AppendNull()
	c.originalTransactionID.AppendNull()
	c.customerID.AppendNull()
	c.isAggregated.AppendNull()
	c.line(nil)
}

func (c *columns) header(h events.EventHeader) {
	c.eventID.Append(h.EventID)
	c.eventType.Append(string(h.Type))
	c.eventTimestamp.Append(arrow.Timestamp(h.Timestamp.UTC().UnixMicro()))
	c.businessDate.Append(arrow.Date32FromTime(h.BusinessDate.Time()))
}

func (c *columns) line(line *events.LineItem) {
	if line == nil {
		c.lineNumber.AppendNull()
		c.sku.AppendNull()
		c.quantity.AppendNull()
		c.unitPriceCents.AppendNull()
		c.discountCents.AppendNull()
		return
	}
	c.lineNumber.Append(int32(line.LineNumber))
	c.sku.Append(line.SKU)
	c.quantity.Append(int32(line.Quantity))
	c.unitPriceCents.Append(int64(line.UnitPriceCents))
	c.discountCents.Append(int64(line.DiscountCents))
}

// storeIDOf extracts the store for event variants outside the sale and
// return paths. Voids, corrections and product changes carry none.
func storeIDOf(event events.Event) string {
	switch e := event.(type) {
	case events.InventoryAdjustment:
		return e.StoreID
	case events.InventorySnapshot:
		return e.StoreID
	case events.StoreChange:
		return e.StoreID
	default:
		return ""
	}
}

func optString(b *array.StringBuilder, s string) {
	if s == "" {
		b.AppendNull()
		return
	}
	b.Append(s)
}
