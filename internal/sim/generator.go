// Package sim turns a shop configuration into a deterministic retail
// event stream. A seeded world of products, stores, customers and
// promotions is advanced minute by minute while per-event-type
// emitters draw from their own forked random streams, so the same
// configuration and seed always yield byte-identical event logs.
package sim

import (
	"fmt"
	"slices"
	"strings"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

// Defaults for a generation run.
const (
	DefaultTargetEvents   = 1000
	DefaultSimulationDays = 30
)

// hierarchyChangeCategories are the destinations a product can be
// recategorized into mid-simulation.
var hierarchyChangeCategories = [][]string{
	{"Grocery", "Dairy"},
	{"Grocery", "Bakery"},
	{"Electronics", "Audio"},
	{"Clothing", "Men"},
	{"Home", "Kitchen"},
}

type emitter interface {
	shouldEmit(w *World) bool
	emit(w *World) []events.Event
}

// Generator drives the simulation: it owns the world, the per-type
// emitters and the root random stream that paces the clock.
type Generator struct {
	config shop.Configuration
	seed   uint32

	rng      *rng.Rand
	world    *World
	emitters []emitter

	storeRNG *rng.Rand
	storeSeq int
}

// NewGenerator builds a generator whose event stream is seeded from
// the configuration's own seed.
func NewGenerator(config shop.Configuration) (*Generator, error) {
	return NewSeededGenerator(config, config.Seed)
}

// NewSeededGenerator builds a generator with an explicit event-stream
// seed, decoupling the stream from the configuration seed.
func NewSeededGenerator(config shop.Configuration, seed uint32) (*Generator, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("failed to build event generator: %w", err)
	}

	g := &Generator{
		config:   config,
		seed:     seed,
		rng:      rng.New(seed),
		storeSeq: storeCount,
	}
	g.world = newWorld(config, g.rng.Fork("world"))
	g.storeRNG = g.rng.Fork("store_changes")

	g.emitters = append(g.emitters, &saleEmitter{config: config, rng: g.rng.Fork("sales")})
	if config.HasReturns() {
		g.emitters = append(g.emitters, &returnEmitter{config: config, rng: g.rng.Fork("returns")})
	}
	if config.HasVoids() {
		g.emitters = append(g.emitters, &voidEmitter{config: config, rng: g.rng.Fork("voids")})
	}
	if config.HasCorrections() {
		g.emitters = append(g.emitters, &correctionEmitter{config: config, rng: g.rng.Fork("corrections")})
	}
	if config.HasInventory() {
		g.emitters = append(g.emitters, &inventoryEmitter{config: config, rng: g.rng.Fork("inventory")})
	}

	return g, nil
}

// Seed reports the event-stream seed in use.
func (g *Generator) Seed() uint32 {
	return g.seed
}

// World exposes the simulated world, primarily for inspection after a
// run.
func (g *Generator) World() *World {
	return g.world
}

// Generate simulates day by day until targetEvents events exist or
// simulationDays days have elapsed, then returns the log sorted by
// timestamp and trimmed to the target.
func (g *Generator) Generate(targetEvents, simulationDays int) events.Log {
	var evs []events.Event
	days := 0
	for len(evs) < targetEvents && days < simulationDays {
		evs = append(evs, g.simulateDay()...)
		days++

		if g.config.Products.HierarchyChangeFrequency != shop.HierarchyChangesNone {
			evs = append(evs, g.maybeEmitProductChanges()...)
		}
		if g.config.Stores.LifecycleChanges {
			evs = append(evs, g.maybeEmitStoreChanges()...)
		}
	}

	slices.SortStableFunc(evs, func(a, b events.Event) int {
		return a.Header().Timestamp.Compare(b.Header().Timestamp)
	})
	if len(evs) > targetEvents {
		evs = evs[:targetEvents]
	}

	return events.Log{
		ShopConfigSeed: g.config.Seed,
		EventCount:     len(evs),
		Events:         evs,
	}
}

// simulateDay ticks the clock through one business day, giving every
// emitter a chance to fire on each tick.
func (g *Generator) simulateDay() []events.Event {
	var evs []events.Event
	businessDate := g.world.BusinessDate
	for g.world.BusinessDate == businessDate {
		tickMinutes := g.rng.Integer(5, 30)

		for _, em := range g.emitters {
			if em.shouldEmit(g.world) {
				evs = append(evs, em.emit(g.world)...)
			}
		}

		g.world.AdvanceTime(tickMinutes)
		if g.world.Clock.Hour() >= 23 {
			g.world.AdvanceBusinessDate()
		}
	}
	return evs
}

// maybeEmitProductChanges occasionally recategorizes or reprices one
// product. The change is stamped with the morning after the day it
// closes, which is when the catalog team would push it.
func (g *Generator) maybeEmitProductChanges() []events.Event {
	probability := 0.1
	if g.config.Products.HierarchyChangeFrequency == shop.HierarchyChangesFrequent {
		probability = 0.3
	}
	if !g.rng.Boolean(probability) {
		return nil
	}

	product := rng.Choice(g.rng, g.world.products)

	changeType := rng.Choice(g.rng, []string{"hierarchy", "price"})
	var oldValue, newValue string
	if changeType == "hierarchy" {
		newCategory := rng.Choice(g.rng, hierarchyChangeCategories)
		oldValue = strings.Join(product.CategoryHierarchy, " > ")
		newValue = strings.Join(newCategory, " > ")
		product.CategoryHierarchy = slices.Clone(newCategory)
	} else {
		adjustment := g.rng.Integer(-1000, 1000)
		newPrice := max(100, product.CurrentPriceCents+adjustment)
		oldValue = fmt.Sprintf("%d", product.CurrentPriceCents)
		newValue = fmt.Sprintf("%d", newPrice)
		product.CurrentPriceCents = newPrice
	}

	eventID, seq := g.world.NextEventID()
	return []events.Event{events.ProductChange{
		EventHeader: events.EventHeader{
			EventID:      eventID,
			Type:         events.TypeProductChange,
			Timestamp:    g.world.Clock,
			BusinessDate: g.world.BusinessDate,
		},
		ChangeID:   fmt.Sprintf("PCHG-%08d", seq),
		SKU:        product.SKU,
		ChangeType: changeType,
		OldValue:   oldValue,
		NewValue:   newValue,
	}}
}

// maybeEmitStoreChanges occasionally opens, closes or merges a
// physical store. These draws come from their own forked stream so
// enabling lifecycle changes never perturbs the other emitters.
func (g *Generator) maybeEmitStoreChanges() []events.Event {
	if !g.config.Stores.PhysicalStores {
		return nil
	}
	if !g.storeRNG.Boolean(0.1) {
		return nil
	}

	open := g.world.OpenPhysicalStores()
	operations := []string{"open"}
	if len(open) > 1 {
		// Keep at least one physical store trading.
		operations = append(operations, "close", "merge")
	}

	var change events.StoreChange
	switch rng.Choice(g.storeRNG, operations) {
	case "open":
		g.storeSeq++
		storeID := fmt.Sprintf("STORE-%03d", g.storeSeq)
		registers := make([]string, g.storeRNG.Integer(2, 5))
		for j := range registers {
			registers[j] = fmt.Sprintf("REG-%s-%d", storeID, j+1)
		}
		employees := make([]string, g.storeRNG.Integer(5, 15))
		for j := range employees {
			employees[j] = fmt.Sprintf("EMP-%s-%d", storeID, j+1)
		}
		g.world.addStore(&StoreState{
			StoreID:   storeID,
			StoreName: fmt.Sprintf("Store #%d", g.storeSeq),
			Channel:   "physical",
			IsOpen:    true,
			OpenDate:  g.world.BusinessDate,
			Registers: registers,
			Employees: employees,
		})
		change = events.StoreChange{StoreID: storeID, ChangeType: "open"}
	case "close":
		store := rng.Choice(g.storeRNG, open)
		store.IsOpen = false
		store.CloseDate = g.world.BusinessDate
		change = events.StoreChange{StoreID: store.StoreID, ChangeType: "close"}
	case "merge":
		pair := rng.Sample(g.storeRNG, open, 2)
		source, target := pair[0], pair[1]
		source.IsOpen = false
		source.CloseDate = g.world.BusinessDate
		change = events.StoreChange{
			StoreID:        source.StoreID,
			ChangeType:     "merge",
			RelatedStoreID: target.StoreID,
		}
	}

	eventID, seq := g.world.NextEventID()
	change.EventHeader = events.EventHeader{
		EventID:      eventID,
		Type:         events.TypeStoreChange,
		Timestamp:    g.world.Clock,
		BusinessDate: g.world.BusinessDate,
	}
	change.ChangeID = fmt.Sprintf("STCHG-%08d", seq)
	return []events.Event{change}
}
