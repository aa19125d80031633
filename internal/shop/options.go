package shop

// Difficulty controls how hostile a generated shop is to naive
// dimensional models. Harder levels weight configuration draws toward
// options that create modeling traps.
type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyMedium      Difficulty = "medium"
	DifficultyHard        Difficulty = "hard"
	DifficultyAdversarial Difficulty = "adversarial"
)

// Difficulties lists all difficulty levels in ascending order of hostility.
var Difficulties = []Difficulty{
	DifficultyEasy,
	DifficultyMedium,
	DifficultyHard,
	DifficultyAdversarial,
}

func (d Difficulty) valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyAdversarial:
		return true
	}
	return false
}

// TransactionGrain describes the level of detail at which the shop
// records sales.
type TransactionGrain string

const (
	GrainReceiptLevel  TransactionGrain = "receipt_level"   // one record per receipt
	GrainLineItemLevel TransactionGrain = "line_item_level" // one record per item
	GrainMixed         TransactionGrain = "mixed"           // inconsistent per transaction
)

func (g TransactionGrain) valid() bool {
	switch g {
	case GrainReceiptLevel, GrainLineItemLevel, GrainMixed:
		return true
	}
	return false
}

// TimestampBusinessDateRelation describes whether an event's wall-clock
// timestamp always falls on its business date.
type TimestampBusinessDateRelation string

const (
	TimestampSameAsBusinessDate        TimestampBusinessDateRelation = "same"
	TimestampDifferentFromBusinessDate TimestampBusinessDateRelation = "different"
)

func (r TimestampBusinessDateRelation) valid() bool {
	return r == TimestampSameAsBusinessDate || r == TimestampDifferentFromBusinessDate
}

// ProductHierarchyChangeFrequency describes how often products are
// recategorized during a simulation.
type ProductHierarchyChangeFrequency string

const (
	HierarchyChangesNone       ProductHierarchyChangeFrequency = "none"
	HierarchyChangesOccasional ProductHierarchyChangeFrequency = "occasional"
	HierarchyChangesFrequent   ProductHierarchyChangeFrequency = "frequent"
)

func (f ProductHierarchyChangeFrequency) valid() bool {
	switch f {
	case HierarchyChangesNone, HierarchyChangesOccasional, HierarchyChangesFrequent:
		return true
	}
	return false
}

// CustomerIDReliability describes how trustworthy customer identifiers
// are on sale events.
type CustomerIDReliability string

const (
	CustomerIDReliable   CustomerIDReliability = "reliable"
	CustomerIDUnreliable CustomerIDReliability = "unreliable" // ids merge and split over time
	CustomerIDAbsent     CustomerIDReliability = "absent"
)

func (r CustomerIDReliability) valid() bool {
	switch r {
	case CustomerIDReliable, CustomerIDUnreliable, CustomerIDAbsent:
		return true
	}
	return false
}

// PromotionsPerLineItem describes how many promotions may apply to a
// single line item.
type PromotionsPerLineItem string

const (
	PromotionsOne  PromotionsPerLineItem = "one"
	PromotionsMany PromotionsPerLineItem = "many"
)

func (p PromotionsPerLineItem) valid() bool {
	return p == PromotionsOne || p == PromotionsMany
}

// ReturnsReferencePolicy describes whether return events carry a
// reference to the original sale.
type ReturnsReferencePolicy string

const (
	ReturnsReferenceAlways    ReturnsReferencePolicy = "always"
	ReturnsReferenceSometimes ReturnsReferencePolicy = "sometimes"
	ReturnsReferenceNever     ReturnsReferencePolicy = "never"
)

func (p ReturnsReferencePolicy) valid() bool {
	switch p {
	case ReturnsReferenceAlways, ReturnsReferenceSometimes, ReturnsReferenceNever:
		return true
	}
	return false
}

// ReturnsPricingPolicy describes which price a return refunds.
type ReturnsPricingPolicy string

const (
	ReturnsPricingOriginal  ReturnsPricingPolicy = "original_price"
	ReturnsPricingCurrent   ReturnsPricingPolicy = "current_price"
	ReturnsPricingArbitrary ReturnsPricingPolicy = "arbitrary_override"
)

func (p ReturnsPricingPolicy) valid() bool {
	switch p {
	case ReturnsPricingOriginal, ReturnsPricingCurrent, ReturnsPricingArbitrary:
		return true
	}
	return false
}

// InventoryType describes how the shop records stock movements.
type InventoryType string

const (
	InventoryTransactional    InventoryType = "transactional"     // per-movement events
	InventoryPeriodicSnapshot InventoryType = "periodic_snapshot" // end-of-day levels
	InventoryBoth             InventoryType = "both"
)

func (t InventoryType) valid() bool {
	switch t {
	case InventoryTransactional, InventoryPeriodicSnapshot, InventoryBoth:
		return true
	}
	return false
}
