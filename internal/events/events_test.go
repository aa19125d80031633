package events_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateworks/dimsim/internal/events"
)

func header(id string, typ events.EventType) events.EventHeader {
	return events.EventHeader{
		EventID:      id,
		Type:         typ,
		Timestamp:    time.Date(2024, 1, 2, 14, 30, 0, 0, time.UTC),
		BusinessDate: events.NewDate(2024, 1, 2),
	}
}

func sampleLog() events.Log {
	bundleParent := 1
	return events.Log{
		ShopConfigSeed: 42,
		Events: []events.Event{
			events.Sale{
				EventHeader:   header("EVT-00000001", events.TypeSale),
				TransactionID: "TXN-00000001",
				StoreID:       "STORE-001",
				RegisterID:    "REG-STORE-001-1",
				EmployeeID:    "EMP-STORE-001-3",
				CustomerID:    "CUST-000001",
				LineItems: []events.LineItem{
					{
						LineNumber:     1,
						SKU:            "SKU-00007",
						Quantity:       2,
						UnitPriceCents: 499,
						PromotionCodes: []string{"PROMO-003"},
					},
					{
						LineNumber:       2,
						SKU:              "SKU-00012",
						Quantity:         1,
						UnitPriceCents:   1299,
						DiscountCents:    100,
						PromotionCodes:   []string{},
						BundleParentLine: &bundleParent,
					},
				},
				Payments: []events.Payment{
					{PaymentMethod: "credit_card", AmountCents: 2197, ReferenceNumber: "PAY-123456"},
				},
			},
			events.Return{
				EventHeader:           header("EVT-00000002", events.TypeReturn),
				ReturnID:              "RET-00000002",
				StoreID:               "STORE-001",
				RegisterID:            "REG-STORE-001-2",
				EmployeeID:            "EMP-STORE-001-1",
				OriginalTransactionID: "TXN-00000001",
				LineItems: []events.LineItem{
					{LineNumber: 1, SKU: "SKU-00007", Quantity: 1, UnitPriceCents: 499, PromotionCodes: []string{}},
				},
				ReturnReasonCode:   "defective",
				PriceDetermination: "original",
			},
			events.Void{
				EventHeader:       header("EVT-00000003", events.TypeVoid),
				VoidID:            "VOID-00000003",
				OriginalEventID:   "EVT-00000001",
				OriginalEventType: events.TypeSale,
				VoidReason:        "cashier_error",
				AuthorizedBy:      "EMP-STORE-001-2",
			},
			events.Correction{
				EventHeader:     header("EVT-00000004", events.TypeCorrection),
				CorrectionID:    "CORR-00000004",
				OriginalEventID: "EVT-00000001",
				FieldCorrections: map[string]any{
					"employee_id": "EMP-STORE-001-4",
				},
				CorrectionReason: "data_entry_error",
			},
			events.InventorySnapshot{
				EventHeader:    header("EVT-00000005", events.TypeInventorySnapshot),
				SnapshotID:     "SNAP-00000005",
				StoreID:        "STORE-001",
				SKU:            "SKU-00007",
				QuantityOnHand: 37,
				SnapshotType:   "daily",
			},
		},
	}
}

func TestLogRoundTripPreservesVariants(t *testing.T) {
	original := sampleLog()
	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded events.Log
	require.NoError(t, json.Unmarshal(data, &decoded))

	require.Len(t, decoded.Events, len(original.Events))
	assert.Equal(t, uint32(42), decoded.ShopConfigSeed)
	assert.Equal(t, len(original.Events), decoded.EventCount)

	sale, ok := decoded.Events[0].(events.Sale)
	require.True(t, ok, "first event should decode as a sale")
	assert.Equal(t, "TXN-00000001", sale.TransactionID)
	require.Len(t, sale.LineItems, 2)
	require.NotNil(t, sale.LineItems[1].BundleParentLine)
	assert.Equal(t, 1, *sale.LineItems[1].BundleParentLine)

	ret, ok := decoded.Events[1].(events.Return)
	require.True(t, ok, "second event should decode as a return")
	assert.Equal(t, "TXN-00000001", ret.OriginalTransactionID)
	assert.Equal(t, "original", ret.PriceDetermination)

	void, ok := decoded.Events[2].(events.Void)
	require.True(t, ok, "third event should decode as a void")
	assert.Equal(t, events.TypeSale, void.OriginalEventType)
}

func TestMarshalDerivesEventCount(t *testing.T) {
	log := sampleLog()
	log.EventCount = 999 // stale value must not survive marshaling

	data, err := json.Marshal(log)
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.EqualValues(t, len(log.Events), wire["event_count"])
}

func TestUnmarshalEventRejectsUnknownTag(t *testing.T) {
	_, err := events.UnmarshalEvent([]byte(`{"event_id":"EVT-00000001","event_type":"telepathy"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, events.ErrUnknownEventType)
}

func TestUnmarshalEventRejectsMissingTag(t *testing.T) {
	_, err := events.UnmarshalEvent([]byte(`{"event_id":"EVT-00000001"}`))
	require.Error(t, err)
	assert.ErrorIs(t, err, events.ErrUnknownEventType)
}

func TestHeaderAccessorSharedAcrossVariants(t *testing.T) {
	for _, event := range sampleLog().Events {
		h := event.Header()
		assert.NotEmpty(t, h.EventID)
		assert.NotEmpty(t, h.Type)
		assert.False(t, h.Timestamp.IsZero())
		assert.False(t, h.BusinessDate.IsZero())
	}
}

func TestWriteJSONLines(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, sampleLog().WriteJSONLines(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, len(sampleLog().Events))

	for i, line := range lines {
		event, err := events.UnmarshalEvent([]byte(line))
		require.NoError(t, err, "line %d", i)
		assert.Equal(t, sampleLog().Events[i].Header().EventID, event.Header().EventID)
	}
}

func TestBusinessDateSerializesAsDateOnly(t *testing.T) {
	data, err := json.Marshal(sampleLog().Events[0])
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "2024-01-02", wire["business_effective_date"])
}
