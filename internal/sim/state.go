package sim

import (
	"fmt"
	"slices"
	"time"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/rng"
	"github.com/slateworks/dimsim/internal/shop"
)

// Master data sizes for a simulated shop.
const (
	productCount   = 50
	storeCount     = 5
	promotionCount = 10
)

// defaultInventoryLevel seeds a store/SKU pair the first time it is
// touched outside the initial baseline.
const defaultInventoryLevel = 100

var productCategories = [][]string{
	{"Grocery", "Dairy"},
	{"Grocery", "Bakery"},
	{"Grocery", "Produce"},
	{"Electronics", "Audio"},
	{"Electronics", "Computing"},
	{"Clothing", "Men"},
	{"Clothing", "Women"},
	{"Home", "Kitchen"},
	{"Home", "Garden"},
}

var promotionDiscountTypes = []string{"percent", "fixed", "bogo"}

// ProductState is one product in the simulated catalog.
type ProductState struct {
	SKU               string
	Name              string
	CategoryHierarchy []string
	CurrentPriceCents int
	IsActive          bool
	IsVirtual         bool

	// BundleComponents lists the SKUs bundled under this product, or
	// nil for a plain product.
	BundleComponents []string
}

// StoreState is one store in the simulated estate.
type StoreState struct {
	StoreID   string
	StoreName string
	Channel   string // "physical" or "online"
	IsOpen    bool
	OpenDate  events.Date
	CloseDate events.Date
	Registers []string
	Employees []string
}

// CustomerState is one identified customer.
type CustomerState struct {
	CustomerID  string
	HouseholdID string
}

// PromotionState is one promotion available during the simulation.
type PromotionState struct {
	PromotionCode string
	PromotionName string
	DiscountType  string // "percent", "fixed", "bogo"
	DiscountValue int    // percent (0-100) or cents

	// ApplicableSKUs restricts the promotion to specific products; nil
	// applies to all of them.
	ApplicableSKUs []string

	StartDate     events.Date
	EndDate       events.Date
	IsBasketLevel bool
	IsStackable   bool
}

type storeSKU struct {
	storeID string
	sku     string
}

// World tracks the simulated shop's state while events are generated.
// Master data is held in insertion order so that every iteration that
// feeds a random draw is reproducible.
type World struct {
	Config shop.Configuration

	// rng is the world namespace: customer identity draws and the
	// initial inventory baseline consume it.
	rng *rng.Rand

	Clock        time.Time
	BusinessDate events.Date

	products     []*ProductState
	productBySKU map[string]*ProductState
	skus         []string

	stores    []*StoreState
	storeByID map[string]*StoreState

	customers    []*CustomerState
	customerByID map[string]*CustomerState
	households   []string

	promotions []*PromotionState

	inventory      map[storeSKU]int
	inventoryOrder []storeSKU

	transactions    []string
	transactionByID map[string]*events.Sale
	voided          map[string]bool

	eventSeq       int
	transactionSeq int
}

// newWorld builds the initial world: master data, inventory baseline
// and the simulated clock at 09:00 on day one.
func newWorld(config shop.Configuration, r *rng.Rand) *World {
	w := &World{
		Config:          config,
		rng:             r,
		Clock:           time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		BusinessDate:    events.NewDate(2024, time.January, 1),
		productBySKU:    make(map[string]*ProductState),
		storeByID:       make(map[string]*StoreState),
		customerByID:    make(map[string]*CustomerState),
		inventory:       make(map[storeSKU]int),
		transactionByID: make(map[string]*events.Sale),
		voided:          make(map[string]bool),
	}

	productRNG := r.Fork("products")
	for i := 0; i < productCount; i++ {
		sku := fmt.Sprintf("SKU-%05d", i+1)
		category := rng.Choice(productRNG, productCategories)
		isVirtual := config.Products.VirtualProducts && productRNG.Boolean(0.1)
		isBundle := config.Products.BundledProducts && productRNG.Boolean(0.05)

		var components []string
		if isBundle && i > 2 {
			// Bundle 2-3 of the products created so far.
			count := productRNG.Integer(2, min(3, len(w.skus)))
			components = rng.Sample(productRNG, w.skus, count)
		}

		w.addProduct(&ProductState{
			SKU:               sku,
			Name:              fmt.Sprintf("Product %d", i+1),
			CategoryHierarchy: slices.Clone(category),
			CurrentPriceCents: productRNG.Integer(100, 10000),
			IsActive:          true,
			IsVirtual:         isVirtual,
			BundleComponents:  components,
		})
	}

	storeRNG := r.Fork("stores")
	if config.Stores.PhysicalStores {
		for i := 0; i < storeCount; i++ {
			storeID := fmt.Sprintf("STORE-%03d", i+1)
			registers := make([]string, storeRNG.Integer(2, 5))
			for j := range registers {
				registers[j] = fmt.Sprintf("REG-%s-%d", storeID, j+1)
			}
			employees := make([]string, storeRNG.Integer(5, 15))
			for j := range employees {
				employees[j] = fmt.Sprintf("EMP-%s-%d", storeID, j+1)
			}
			w.addStore(&StoreState{
				StoreID:   storeID,
				StoreName: fmt.Sprintf("Store #%d", i+1),
				Channel:   "physical",
				IsOpen:    true,
				OpenDate:  w.BusinessDate,
				Registers: registers,
				Employees: employees,
			})
		}
	}
	if config.Stores.OnlineChannel {
		employees := make([]string, 10)
		for j := range employees {
			employees[j] = fmt.Sprintf("EMP-ONLINE-%d", j+1)
		}
		w.addStore(&StoreState{
			StoreID:   "ONLINE",
			StoreName: "Online Store",
			Channel:   "online",
			IsOpen:    true,
			OpenDate:  w.BusinessDate,
			Registers: []string{"WEB-1", "WEB-2", "MOBILE-1"},
			Employees: employees,
		})
	}

	if config.Inventory.Tracked {
		for _, store := range w.stores {
			for _, sku := range w.skus {
				w.setInventory(store.StoreID, sku, r.Integer(50, 200))
			}
		}
	}

	promoRNG := r.Fork("promotions")
	for i := 0; i < promotionCount; i++ {
		isBasket := config.Promotions.BasketLevel && promoRNG.Boolean(0.3)
		isStackable := config.Promotions.Stackable && promoRNG.Boolean(0.4)

		var applicable []string
		if !isBasket && promoRNG.Boolean(0.7) {
			count := promoRNG.Integer(1, 10)
			applicable = rng.Sample(promoRNG, w.skus, count)
		}

		w.promotions = append(w.promotions, &PromotionState{
			PromotionCode:  fmt.Sprintf("PROMO-%03d", i+1),
			PromotionName:  fmt.Sprintf("Promotion %d", i+1),
			DiscountType:   rng.Choice(promoRNG, promotionDiscountTypes),
			DiscountValue:  promoRNG.Integer(5, 50),
			ApplicableSKUs: applicable,
			StartDate:      w.BusinessDate,
			EndDate:        w.BusinessDate.AddDays(promoRNG.Integer(7, 90)),
			IsBasketLevel:  isBasket,
			IsStackable:    isStackable,
		})
	}

	return w
}

func (w *World) addProduct(p *ProductState) {
	w.products = append(w.products, p)
	w.productBySKU[p.SKU] = p
	w.skus = append(w.skus, p.SKU)
}

func (w *World) addStore(s *StoreState) {
	w.stores = append(w.stores, s)
	w.storeByID[s.StoreID] = s
}

// NextEventID returns a fresh event id and its sequence number. The
// sequence number doubles as the numeric part of variant-specific ids
// (RET-, VOID-, ...) so an event and its alias share one number.
func (w *World) NextEventID() (string, int) {
	w.eventSeq++
	return fmt.Sprintf("EVT-%08d", w.eventSeq), w.eventSeq
}

// NextTransactionID returns a fresh transaction id.
func (w *World) NextTransactionID() string {
	w.transactionSeq++
	return fmt.Sprintf("TXN-%08d", w.transactionSeq)
}

// AdvanceTime moves the simulated clock forward.
func (w *World) AdvanceTime(minutes int) {
	w.Clock = w.Clock.Add(time.Duration(minutes) * time.Minute)
}

// AdvanceBusinessDate moves to the next business day and resets the
// clock to 09:00 that morning.
func (w *World) AdvanceBusinessDate() {
	w.BusinessDate = w.BusinessDate.AddDays(1)
	w.Clock = w.BusinessDate.Time().Add(9 * time.Hour)
}

// OpenStores returns all open stores in creation order.
func (w *World) OpenStores() []*StoreState {
	var open []*StoreState
	for _, s := range w.stores {
		if s.IsOpen {
			open = append(open, s)
		}
	}
	return open
}

// OpenPhysicalStores returns the open physical stores in creation order.
func (w *World) OpenPhysicalStores() []*StoreState {
	var open []*StoreState
	for _, s := range w.stores {
		if s.IsOpen && s.Channel == "physical" {
			open = append(open, s)
		}
	}
	return open
}

// ActiveProducts returns all active products in creation order.
func (w *World) ActiveProducts() []*ProductState {
	var active []*ProductState
	for _, p := range w.products {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active
}

// Product looks up a product by SKU.
func (w *World) Product(sku string) *ProductState {
	return w.productBySKU[sku]
}

// Store looks up a store by id.
func (w *World) Store(id string) *StoreState {
	return w.storeByID[id]
}

// Transaction looks up a recorded sale by transaction id.
func (w *World) Transaction(id string) *events.Sale {
	return w.transactionByID[id]
}

// RecordTransaction stores a sale so later returns, voids and
// corrections can reference it.
func (w *World) RecordTransaction(sale events.Sale) {
	stored := sale
	w.transactions = append(w.transactions, sale.TransactionID)
	w.transactionByID[sale.TransactionID] = &stored
}

// TransactionCount reports how many sales have been recorded.
func (w *World) TransactionCount() int {
	return len(w.transactions)
}

// MarkVoided records that a transaction has been voided. Voided
// transactions are excluded from returns, further voids and
// corrections.
func (w *World) MarkVoided(transactionID string) {
	w.voided[transactionID] = true
}

// UnvoidedTransactions returns recorded transaction ids that have not
// been voided, in recording order.
func (w *World) UnvoidedTransactions() []string {
	var ids []string
	for _, id := range w.transactions {
		if !w.voided[id] {
			ids = append(ids, id)
		}
	}
	return ids
}

// ReturnableTransactions returns transaction ids a return at the given
// store may reference. Without cross-store returns, only transactions
// from that store qualify.
func (w *World) ReturnableTransactions(storeID string) []string {
	var ids []string
	for _, id := range w.transactions {
		if w.voided[id] {
			continue
		}
		if storeID != "" && !w.Config.Stores.CrossStoreReturns {
			if w.transactionByID[id].StoreID != storeID {
				continue
			}
		}
		ids = append(ids, id)
	}
	return ids
}

// GetOrCreateCustomer resolves a customer id for a new transaction, or
// "" for an anonymous or id-less one. Unreliable shops occasionally
// mint a fresh id for what may well be the same person.
func (w *World) GetOrCreateCustomer() string {
	reliability := w.Config.Customers.IDReliability
	if reliability == shop.CustomerIDAbsent {
		return ""
	}

	if w.Config.Customers.AnonymousAllowed && w.rng.Boolean(0.3) {
		return ""
	}

	if reliability == shop.CustomerIDUnreliable {
		// The duplicate surfaces as a brand-new customer below.
		_ = w.rng.Boolean(0.2)
	}

	if len(w.customers) > 0 && w.rng.Boolean(0.7) {
		return rng.Choice(w.rng, w.customers).CustomerID
	}

	customerID := fmt.Sprintf("CUST-%06d", len(w.customers)+1)
	householdID := ""
	if w.Config.Customers.HouseholdGrouping && w.rng.Boolean(0.4) {
		if len(w.households) > 0 && w.rng.Boolean(0.5) {
			householdID = rng.Choice(w.rng, w.households)
		} else {
			householdID = fmt.Sprintf("HH-%04d", len(w.households)+1)
			w.households = append(w.households, householdID)
		}
	}

	customer := &CustomerState{CustomerID: customerID, HouseholdID: householdID}
	w.customers = append(w.customers, customer)
	w.customerByID[customerID] = customer
	return customerID
}

// CustomerCount reports how many identified customers exist.
func (w *World) CustomerCount() int {
	return len(w.customers)
}

func (w *World) setInventory(storeID, sku string, quantity int) {
	key := storeSKU{storeID: storeID, sku: sku}
	if _, ok := w.inventory[key]; !ok {
		w.inventoryOrder = append(w.inventoryOrder, key)
	}
	w.inventory[key] = quantity
}

// UpdateInventory applies a quantity change to a store/SKU pair. The
// pair is seeded with a default level on first touch. No-op when the
// shop does not track inventory.
func (w *World) UpdateInventory(storeID, sku string, change int) {
	if !w.Config.Inventory.Tracked {
		return
	}
	key := storeSKU{storeID: storeID, sku: sku}
	if _, ok := w.inventory[key]; !ok {
		w.inventoryOrder = append(w.inventoryOrder, key)
		w.inventory[key] = defaultInventoryLevel
	}
	w.inventory[key] += change
}

// InventoryLevel returns the current on-hand quantity for a store/SKU
// pair, or zero if it was never touched.
func (w *World) InventoryLevel(storeID, sku string) int {
	return w.inventory[storeSKU{storeID: storeID, sku: sku}]
}
