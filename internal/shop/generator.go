package shop

import (
	"fmt"

	"github.com/slateworks/dimsim/internal/rng"
)

// Generator produces valid shop configurations deterministically from a
// seed and a difficulty level. Each configuration section draws from
// its own forked namespace, so adding draws to one section never shifts
// the values generated for another.
type Generator struct {
	seed       uint32
	difficulty Difficulty
	rng        *rng.Rand
	weights    difficultyWeights
}

// NewGenerator returns a generator for the given seed and difficulty.
func NewGenerator(seed uint32, difficulty Difficulty) (*Generator, error) {
	weights, ok := weightsByDifficulty[difficulty]
	if !ok {
		return nil, fmt.Errorf("unknown difficulty %q", difficulty)
	}
	return &Generator{
		seed:       seed,
		difficulty: difficulty,
		rng:        rng.New(seed),
		weights:    weights,
	}, nil
}

// Generate produces a shop configuration. Calling Generate on two
// generators built with the same seed and difficulty yields identical
// configurations.
func (g *Generator) Generate() (Configuration, error) {
	shopName := g.generateShopName()
	transactions, err := g.generateTransactions()
	if err != nil {
		return Configuration{}, err
	}
	time, err := g.generateTime()
	if err != nil {
		return Configuration{}, err
	}
	products, err := g.generateProducts()
	if err != nil {
		return Configuration{}, err
	}
	customers, err := g.generateCustomers()
	if err != nil {
		return Configuration{}, err
	}
	stores := g.generateStores()
	promotions, err := g.generatePromotions()
	if err != nil {
		return Configuration{}, err
	}
	returns, err := g.generateReturns()
	if err != nil {
		return Configuration{}, err
	}
	inventory, err := g.generateInventory()
	if err != nil {
		return Configuration{}, err
	}

	return Configuration{
		Seed:         g.seed,
		ShopName:     shopName,
		Transactions: transactions,
		Time:         time,
		Products:     products,
		Customers:    customers,
		Stores:       stores,
		Promotions:   promotions,
		Returns:      returns,
		Inventory:    inventory,
	}, nil
}

func (g *Generator) generateShopName() string {
	r := g.rng.Fork("shop_name")
	prefix := rng.Choice(r, shopNamePrefixes)
	suffix := rng.Choice(r, shopNameSuffixes)
	return prefix + " " + suffix
}

func (w weightedOptions) draw(r *rng.Rand) (string, error) {
	return rng.WeightedChoice(r, w.options, w.weights)
}

func (g *Generator) generateTransactions() (TransactionConfig, error) {
	r := g.rng.Fork("transactions")
	prob := g.weights.booleanTrueProb

	grain, err := g.weights.transactionGrain.draw(r)
	if err != nil {
		return TransactionConfig{}, err
	}

	return TransactionConfig{
		Grain:            TransactionGrain(grain),
		MultiplePayments: r.Boolean(prob),
		VoidsEnabled:     r.Boolean(prob),
		ManualOverrides:  r.Boolean(prob * 0.7), // less common
	}, nil
}

func (g *Generator) generateTime() (TimeConfig, error) {
	r := g.rng.Fork("time")
	prob := g.weights.booleanTrueProb

	relation, err := g.weights.timestampRelation.draw(r)
	if err != nil {
		return TimeConfig{}, err
	}

	return TimeConfig{
		TimestampBusinessDateRelation: TimestampBusinessDateRelation(relation),
		LateArrivingEvents:            r.Boolean(prob),
		BackdatedCorrections:          r.Boolean(prob * 0.6), // less common
	}, nil
}

func (g *Generator) generateProducts() (ProductConfig, error) {
	r := g.rng.Fork("products")
	prob := g.weights.booleanTrueProb

	frequency, err := g.weights.hierarchyChanges.draw(r)
	if err != nil {
		return ProductConfig{}, err
	}

	return ProductConfig{
		SKUReuse:                 r.Boolean(prob * 0.5), // modeling trap
		HierarchyChangeFrequency: ProductHierarchyChangeFrequency(frequency),
		BundledProducts:          r.Boolean(prob * 0.6),
		VirtualProducts:          r.Boolean(prob * 0.7),
	}, nil
}

func (g *Generator) generateCustomers() (CustomerConfig, error) {
	r := g.rng.Fork("customers")
	prob := g.weights.booleanTrueProb

	reliabilityValue, err := g.weights.customerReliability.draw(r)
	if err != nil {
		return CustomerConfig{}, err
	}
	reliability := CustomerIDReliability(reliabilityValue)

	// Household grouping only possible if a customer id exists. No draw
	// is consumed when ids are absent.
	household := false
	if reliability != CustomerIDAbsent {
		household = r.Boolean(prob * 0.5)
	}

	return CustomerConfig{
		AnonymousAllowed:  r.Boolean(prob),
		IDReliability:     reliability,
		HouseholdGrouping: household,
	}, nil
}

func (g *Generator) generateStores() StoreConfig {
	r := g.rng.Fork("stores")
	prob := g.weights.booleanTrueProb

	physical := r.Boolean(prob)
	online := r.Boolean(prob)
	if !physical && !online {
		// Force at least one channel on.
		if r.Boolean(0.5) {
			physical = true
		} else {
			online = true
		}
	}

	// Cross-store returns only if physical stores exist.
	crossStore := false
	if physical {
		crossStore = r.Boolean(prob * 0.6)
	}

	return StoreConfig{
		PhysicalStores:    physical,
		OnlineChannel:     online,
		CrossStoreReturns: crossStore,
		LifecycleChanges:  r.Boolean(prob * 0.4),
	}
}

func (g *Generator) generatePromotions() (PromotionConfig, error) {
	r := g.rng.Fork("promotions")
	prob := g.weights.booleanTrueProb

	perItemValue, err := g.weights.promotionsPerItem.draw(r)
	if err != nil {
		return PromotionConfig{}, err
	}
	perItem := PromotionsPerLineItem(perItemValue)

	// Stackable only if multiple promotions are allowed per item.
	stackable := false
	if perItem == PromotionsMany {
		stackable = r.Boolean(prob)
	}

	return PromotionConfig{
		PerLineItem:     perItem,
		Stackable:       stackable,
		BasketLevel:     r.Boolean(prob),
		PostTransaction: r.Boolean(prob * 0.4), // unusual
	}, nil
}

func (g *Generator) generateReturns() (ReturnsConfig, error) {
	r := g.rng.Fork("returns")

	reference, err := g.weights.returnsReference.draw(r)
	if err != nil {
		return ReturnsConfig{}, err
	}
	pricing, err := g.weights.returnsPricing.draw(r)
	if err != nil {
		return ReturnsConfig{}, err
	}

	return ReturnsConfig{
		ReferencePolicy: ReturnsReferencePolicy(reference),
		PricingPolicy:   ReturnsPricingPolicy(pricing),
	}, nil
}

func (g *Generator) generateInventory() (InventoryConfig, error) {
	r := g.rng.Fork("inventory")
	prob := g.weights.booleanTrueProb

	tracked := r.Boolean(prob)

	var invType InventoryType
	if tracked {
		value, err := g.weights.inventoryType.draw(r)
		if err != nil {
			return InventoryConfig{}, err
		}
		invType = InventoryType(value)
	}

	return InventoryConfig{
		Tracked: tracked,
		Type:    invType,
	}, nil
}
