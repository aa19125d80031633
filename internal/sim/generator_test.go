package sim_test

import (
	"encoding/json"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/shop"
	"github.com/slateworks/dimsim/internal/sim"
)

// testConfig is a well-behaved shop that exercises sales, returns,
// voids, corrections and transactional inventory.
func testConfig(seed uint32) shop.Configuration {
	return shop.Configuration{
		Seed:     seed,
		ShopName: "Quick Mart",
		Transactions: shop.TransactionConfig{
			Grain:        shop.GrainLineItemLevel,
			VoidsEnabled: true,
		},
		Time: shop.TimeConfig{
			TimestampBusinessDateRelation: shop.TimestampSameAsBusinessDate,
			BackdatedCorrections:          true,
		},
		Products: shop.ProductConfig{
			HierarchyChangeFrequency: shop.HierarchyChangesNone,
		},
		Customers: shop.CustomerConfig{
			IDReliability: shop.CustomerIDReliable,
		},
		Stores: shop.StoreConfig{
			PhysicalStores: true,
			OnlineChannel:  true,
		},
		Promotions: shop.PromotionConfig{
			PerLineItem: shop.PromotionsOne,
		},
		Returns: shop.ReturnsConfig{
			ReferencePolicy: shop.ReturnsReferenceAlways,
			PricingPolicy:   shop.ReturnsPricingOriginal,
		},
		Inventory: shop.InventoryConfig{
			Tracked: true,
			Type:    shop.InventoryTransactional,
		},
	}
}

func generateLog(t *testing.T, config shop.Configuration, target, days int) events.Log {
	t.Helper()
	generator, err := sim.NewGenerator(config)
	require.NoError(t, err)
	return generator.Generate(target, days)
}

func salesByEventID(log events.Log) map[string]events.Sale {
	sales := make(map[string]events.Sale)
	for _, ev := range log.Events {
		if sale, ok := ev.(events.Sale); ok {
			sales[sale.EventID] = sale
		}
	}
	return sales
}

func TestGenerateIsDeterministic(t *testing.T) {
	config := testConfig(4242)

	first := generateLog(t, config, 300, 30)
	second := generateLog(t, config, 300, 30)
	require.Equal(t, first, second)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, firstJSON, secondJSON)
}

func TestGeneratedConfigFeedsGenerator(t *testing.T) {
	for _, difficulty := range shop.Difficulties {
		t.Run(string(difficulty), func(t *testing.T) {
			configGen, err := shop.NewGenerator(808, difficulty)
			require.NoError(t, err)
			config, err := configGen.Generate()
			require.NoError(t, err)

			first := generateLog(t, config, 200, 30)
			second := generateLog(t, config, 200, 30)
			require.Equal(t, first, second)
			assert.NotEmpty(t, first.Events)
		})
	}
}

func TestExplicitSeedDecouplesStreamFromConfig(t *testing.T) {
	config := testConfig(4242)

	fromConfig, err := sim.NewGenerator(config)
	require.NoError(t, err)
	reseeded, err := sim.NewSeededGenerator(config, 999)
	require.NoError(t, err)
	assert.EqualValues(t, 4242, fromConfig.Seed())
	assert.EqualValues(t, 999, reseeded.Seed())

	logA := fromConfig.Generate(150, 30)
	logB := reseeded.Generate(150, 30)
	assert.NotEqual(t, logA.Events, logB.Events)

	// The log always records the configuration seed, not the stream
	// seed, so an evaluator can rebuild the shop.
	assert.EqualValues(t, 4242, logA.ShopConfigSeed)
	assert.EqualValues(t, 4242, logB.ShopConfigSeed)
}

func TestNewGeneratorRejectsInvalidConfig(t *testing.T) {
	config := testConfig(1)
	config.Stores.PhysicalStores = false
	config.Stores.OnlineChannel = false

	_, err := sim.NewGenerator(config)
	require.ErrorIs(t, err, shop.ErrInvalidConfig)
}

func TestGenerateHonorsTargetCount(t *testing.T) {
	log := generateLog(t, testConfig(7), 120, 30)
	require.Len(t, log.Events, 120)
	assert.Equal(t, 120, log.EventCount)
}

func TestGenerateStopsAtSimulationDays(t *testing.T) {
	log := generateLog(t, testConfig(7), 1_000_000, 2)
	require.NotEmpty(t, log.Events)
	assert.Less(t, len(log.Events), 1_000_000)

	cutoff := time.Date(2024, 1, 4, 0, 0, 0, 0, time.UTC)
	for _, ev := range log.Events {
		assert.True(t, ev.Header().Timestamp.Before(cutoff))
	}
}

func TestEventStreamIsSortedByTimestamp(t *testing.T) {
	log := generateLog(t, testConfig(31), 400, 30)
	for i := 1; i < len(log.Events); i++ {
		prev := log.Events[i-1].Header().Timestamp
		curr := log.Events[i].Header().Timestamp
		require.False(t, curr.Before(prev), "event %d out of order", i)
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	log := generateLog(t, testConfig(55), 500, 30)
	seen := make(map[string]bool, len(log.Events))
	for _, ev := range log.Events {
		id := ev.Header().EventID
		require.False(t, seen[id], "duplicate event id %s", id)
		seen[id] = true
	}
}

func TestTruncationKeepsStreamPrefix(t *testing.T) {
	config := testConfig(913)
	small := generateLog(t, config, 80, 30)
	large := generateLog(t, config, 240, 30)

	require.Len(t, small.Events, 80)
	require.GreaterOrEqual(t, len(large.Events), 80)
	assert.Equal(t, small.Events, large.Events[:80])
}

func TestReceiptGrainAggregatesEverySale(t *testing.T) {
	config := testConfig(21)
	config.Transactions.Grain = shop.GrainReceiptLevel

	log := generateLog(t, config, 300, 30)
	sales := 0
	for _, ev := range log.Events {
		sale, ok := ev.(events.Sale)
		if !ok {
			continue
		}
		sales++
		require.True(t, sale.IsAggregated)
		require.Len(t, sale.LineItems, 1)
		assert.Equal(t, "AGGREGATE", sale.LineItems[0].SKU)
		assert.Equal(t, 1, sale.LineItems[0].Quantity)
	}
	require.NotZero(t, sales)
}

func TestLineItemGrainNeverAggregates(t *testing.T) {
	log := generateLog(t, testConfig(22), 300, 30)
	for _, ev := range log.Events {
		if sale, ok := ev.(events.Sale); ok {
			assert.False(t, sale.IsAggregated)
			for _, item := range sale.LineItems {
				assert.NotEqual(t, "AGGREGATE", item.SKU)
			}
		}
	}
}

func TestMixedGrainProducesBothShapes(t *testing.T) {
	config := testConfig(23)
	config.Transactions.Grain = shop.GrainMixed

	log := generateLog(t, config, 1_000_000, 30)
	var aggregated, itemized int
	for _, ev := range log.Events {
		if sale, ok := ev.(events.Sale); ok {
			if sale.IsAggregated {
				aggregated++
			} else {
				itemized++
			}
		}
	}
	assert.NotZero(t, aggregated)
	assert.NotZero(t, itemized)
}

func TestVoidsReferenceEarlierSales(t *testing.T) {
	log := generateLog(t, testConfig(61), 1_000_000, 30)
	sales := salesByEventID(log)

	voided := make(map[string]bool)
	voids := 0
	for _, ev := range log.Events {
		void, ok := ev.(events.Void)
		if !ok {
			continue
		}
		voids++
		assert.Equal(t, events.TypeSale, void.OriginalEventType)
		require.Contains(t, sales, void.OriginalEventID)
		require.False(t, voided[void.OriginalEventID], "sale %s voided twice", void.OriginalEventID)
		voided[void.OriginalEventID] = true
		assert.True(t, strings.HasPrefix(void.VoidID, "VOID-"))
		assert.NotEmpty(t, void.AuthorizedBy)
	}
	require.NotZero(t, voids)
}

func TestAlwaysReferencePolicyLinksEveryReturn(t *testing.T) {
	log := generateLog(t, testConfig(62), 1_000_000, 30)

	saleTransactions := make(map[string]events.Sale)
	for _, ev := range log.Events {
		if sale, ok := ev.(events.Sale); ok {
			saleTransactions[sale.TransactionID] = sale
		}
	}

	returns := 0
	for _, ev := range log.Events {
		ret, ok := ev.(events.Return)
		if !ok {
			continue
		}
		returns++
		require.NotEmpty(t, ret.OriginalTransactionID)
		require.Contains(t, saleTransactions, ret.OriginalTransactionID)
		assert.True(t, strings.HasPrefix(ret.ReturnID, "RET-"))
		assert.NotEmpty(t, ret.LineItems)
		assert.Equal(t, "original", ret.PriceDetermination)
	}
	require.NotZero(t, returns)
}

func TestNeverReferencePolicyEmitsNoReturns(t *testing.T) {
	config := testConfig(63)
	config.Returns.ReferencePolicy = shop.ReturnsReferenceNever

	log := generateLog(t, config, 400, 30)
	for _, ev := range log.Events {
		_, ok := ev.(events.Return)
		require.False(t, ok, "return emitted under a no-returns policy")
	}
}

func TestSometimesReferencePolicyMixesLinkage(t *testing.T) {
	config := testConfig(64)
	config.Returns.ReferencePolicy = shop.ReturnsReferenceSometimes

	log := generateLog(t, config, 1_000_000, 30)
	var linked, blind int
	for _, ev := range log.Events {
		if ret, ok := ev.(events.Return); ok {
			if ret.OriginalTransactionID != "" {
				linked++
			} else {
				blind++
			}
		}
	}
	assert.NotZero(t, linked)
	assert.NotZero(t, blind)
}

func TestCorrectionsReferenceSalesWithValidFields(t *testing.T) {
	correctionKey := regexp.MustCompile(`^(customer_id|employee_id|promotion_code_added|line_items\[\d+\]\.(quantity|unit_price_cents))$`)

	log := generateLog(t, testConfig(65), 1_000_000, 60)
	sales := salesByEventID(log)

	corrections := 0
	for _, ev := range log.Events {
		correction, ok := ev.(events.Correction)
		if !ok {
			continue
		}
		corrections++
		require.Contains(t, sales, correction.OriginalEventID)
		require.NotEmpty(t, correction.FieldCorrections)
		for key := range correction.FieldCorrections {
			assert.Regexp(t, correctionKey, key)
		}
		assert.True(t, strings.HasPrefix(correction.CorrectionID, "CORR-"))
	}
	require.NotZero(t, corrections)
}

func TestAbsentCustomerIDsLeaveSalesAnonymous(t *testing.T) {
	config := testConfig(66)
	config.Customers.IDReliability = shop.CustomerIDAbsent

	log := generateLog(t, config, 400, 30)
	for _, ev := range log.Events {
		if sale, ok := ev.(events.Sale); ok {
			assert.Empty(t, sale.CustomerID)
		}
	}
}

func TestSalesHappenDuringBusinessHours(t *testing.T) {
	log := generateLog(t, testConfig(67), 500, 30)
	for _, ev := range log.Events {
		if sale, ok := ev.(events.Sale); ok {
			hour := sale.Timestamp.Hour()
			assert.GreaterOrEqual(t, hour, 8)
			assert.LessOrEqual(t, hour, 22)
		}
	}
}

func TestPeriodicSnapshotsCoverEveryStoreAndSKU(t *testing.T) {
	config := testConfig(68)
	config.Transactions.VoidsEnabled = false
	config.Time.BackdatedCorrections = false
	config.Inventory.Type = shop.InventoryPeriodicSnapshot

	// Two full days, six stores, fifty SKUs: one snapshot per pair per
	// evening.
	log := generateLog(t, config, 1_000_000, 2)

	snapshots := 0
	for _, ev := range log.Events {
		snap, ok := ev.(events.InventorySnapshot)
		if !ok {
			continue
		}
		snapshots++
		assert.Equal(t, "daily", snap.SnapshotType)
		assert.True(t, strings.HasPrefix(snap.SnapshotID, "SNAP-"))
		assert.GreaterOrEqual(t, snap.Timestamp.Hour(), 22)
	}
	assert.Equal(t, 2*6*50, snapshots)
}

func TestUntrackedInventoryEmitsNoInventoryEvents(t *testing.T) {
	config := testConfig(69)
	config.Inventory = shop.InventoryConfig{}

	log := generateLog(t, config, 400, 30)
	for _, ev := range log.Events {
		switch ev.Header().Type {
		case events.TypeInventoryAdjustment, events.TypeInventorySnapshot:
			t.Fatalf("inventory event %s emitted for an untracked shop", ev.Header().EventID)
		}
	}
}

func TestInventoryAdjustmentsFollowReasonDirection(t *testing.T) {
	positive := map[string]bool{"receiving": true, "transfer_in": true, "count_correction": true}

	log := generateLog(t, testConfig(70), 1_000_000, 30)
	adjustments := 0
	for _, ev := range log.Events {
		adjustment, ok := ev.(events.InventoryAdjustment)
		if !ok {
			continue
		}
		adjustments++
		if positive[adjustment.ReasonCode] {
			assert.Positive(t, adjustment.QuantityChange)
		} else {
			assert.Negative(t, adjustment.QuantityChange)
		}
	}
	require.NotZero(t, adjustments)
}

func TestFrequentHierarchyChangesRecategorizeProducts(t *testing.T) {
	config := testConfig(71)
	config.Products.HierarchyChangeFrequency = shop.HierarchyChangesFrequent

	log := generateLog(t, config, 1_000_000, 60)
	changes := 0
	for _, ev := range log.Events {
		change, ok := ev.(events.ProductChange)
		if !ok {
			continue
		}
		changes++
		assert.Contains(t, []string{"hierarchy", "price"}, change.ChangeType)
		assert.True(t, strings.HasPrefix(change.SKU, "SKU-"))
		assert.NotEmpty(t, change.OldValue)
		assert.NotEmpty(t, change.NewValue)
		if change.ChangeType == "hierarchy" {
			assert.Contains(t, change.NewValue, " > ")
		}
	}
	require.NotZero(t, changes)
}

func TestStableHierarchyEmitsNoProductChanges(t *testing.T) {
	log := generateLog(t, testConfig(72), 400, 30)
	for _, ev := range log.Events {
		_, ok := ev.(events.ProductChange)
		require.False(t, ok, "product change emitted with a stable hierarchy")
	}
}

func TestLifecycleDisabledEmitsNoStoreChanges(t *testing.T) {
	log := generateLog(t, testConfig(73), 400, 30)
	for _, ev := range log.Events {
		_, ok := ev.(events.StoreChange)
		require.False(t, ok, "store change emitted with lifecycle changes disabled")
	}
}

func TestStoreChangesAreWellFormedWhenEnabled(t *testing.T) {
	config := testConfig(74)
	config.Stores.LifecycleChanges = true

	log := generateLog(t, config, 1_000_000, 60)
	for _, ev := range log.Events {
		change, ok := ev.(events.StoreChange)
		if !ok {
			continue
		}
		assert.True(t, strings.HasPrefix(change.ChangeID, "STCHG-"))
		switch change.ChangeType {
		case "open", "close":
			assert.Empty(t, change.RelatedStoreID)
		case "merge":
			assert.NotEmpty(t, change.RelatedStoreID)
			assert.NotEqual(t, change.StoreID, change.RelatedStoreID)
		default:
			t.Fatalf("unexpected store change type %q", change.ChangeType)
		}
	}
}

func TestLogSurvivesJSONRoundTrip(t *testing.T) {
	log := generateLog(t, testConfig(75), 250, 30)

	data, err := json.Marshal(log)
	require.NoError(t, err)

	var decoded events.Log
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, log.EventCount, decoded.EventCount)
	require.Len(t, decoded.Events, len(log.Events))
	for i, ev := range decoded.Events {
		assert.Equal(t, log.Events[i].Header().EventID, ev.Header().EventID)
		assert.Equal(t, log.Events[i].Header().Type, ev.Header().Type)
	}
}
