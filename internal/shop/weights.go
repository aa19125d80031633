package shop

// weightedOptions pairs candidate option values with selection weights.
// Slice order matters: a weighted draw consumes randomness in this
// order, so reordering entries changes generated configurations.
type weightedOptions struct {
	options []string
	weights []float64
}

// difficultyWeights holds the draw tables for one difficulty level.
// Higher difficulties weight the options that create more modeling
// challenges.
type difficultyWeights struct {
	transactionGrain    weightedOptions
	timestampRelation   weightedOptions
	hierarchyChanges    weightedOptions
	customerReliability weightedOptions
	returnsReference    weightedOptions
	returnsPricing      weightedOptions
	promotionsPerItem   weightedOptions
	inventoryType       weightedOptions

	// booleanTrueProb is the base probability for every boolean feature
	// flag at this difficulty. Individual flags scale it down when the
	// feature is less common in real shops.
	booleanTrueProb float64
}

var weightsByDifficulty = map[Difficulty]difficultyWeights{
	DifficultyEasy: {
		transactionGrain: weightedOptions{
			options: []string{string(GrainLineItemLevel), string(GrainReceiptLevel), string(GrainMixed)},
			weights: []float64{0.9, 0.1, 0.0},
		},
		timestampRelation: weightedOptions{
			options: []string{string(TimestampSameAsBusinessDate), string(TimestampDifferentFromBusinessDate)},
			weights: []float64{0.9, 0.1},
		},
		hierarchyChanges: weightedOptions{
			options: []string{string(HierarchyChangesNone), string(HierarchyChangesOccasional), string(HierarchyChangesFrequent)},
			weights: []float64{0.8, 0.2, 0.0},
		},
		customerReliability: weightedOptions{
			options: []string{string(CustomerIDReliable), string(CustomerIDUnreliable), string(CustomerIDAbsent)},
			weights: []float64{0.8, 0.1, 0.1},
		},
		returnsReference: weightedOptions{
			options: []string{string(ReturnsReferenceAlways), string(ReturnsReferenceSometimes), string(ReturnsReferenceNever)},
			weights: []float64{0.8, 0.1, 0.1},
		},
		returnsPricing: weightedOptions{
			options: []string{string(ReturnsPricingOriginal), string(ReturnsPricingCurrent), string(ReturnsPricingArbitrary)},
			weights: []float64{0.9, 0.1, 0.0},
		},
		promotionsPerItem: weightedOptions{
			options: []string{string(PromotionsOne), string(PromotionsMany)},
			weights: []float64{0.9, 0.1},
		},
		inventoryType: weightedOptions{
			options: []string{string(InventoryTransactional), string(InventoryPeriodicSnapshot), string(InventoryBoth)},
			weights: []float64{0.8, 0.2, 0.0},
		},
		booleanTrueProb: 0.3,
	},
	DifficultyMedium: {
		transactionGrain: weightedOptions{
			options: []string{string(GrainLineItemLevel), string(GrainReceiptLevel), string(GrainMixed)},
			weights: []float64{0.6, 0.2, 0.2},
		},
		timestampRelation: weightedOptions{
			options: []string{string(TimestampSameAsBusinessDate), string(TimestampDifferentFromBusinessDate)},
			weights: []float64{0.5, 0.5},
		},
		hierarchyChanges: weightedOptions{
			options: []string{string(HierarchyChangesNone), string(HierarchyChangesOccasional), string(HierarchyChangesFrequent)},
			weights: []float64{0.4, 0.4, 0.2},
		},
		customerReliability: weightedOptions{
			options: []string{string(CustomerIDReliable), string(CustomerIDUnreliable), string(CustomerIDAbsent)},
			weights: []float64{0.5, 0.3, 0.2},
		},
		returnsReference: weightedOptions{
			options: []string{string(ReturnsReferenceAlways), string(ReturnsReferenceSometimes), string(ReturnsReferenceNever)},
			weights: []float64{0.4, 0.4, 0.2},
		},
		returnsPricing: weightedOptions{
			options: []string{string(ReturnsPricingOriginal), string(ReturnsPricingCurrent), string(ReturnsPricingArbitrary)},
			weights: []float64{0.5, 0.3, 0.2},
		},
		promotionsPerItem: weightedOptions{
			options: []string{string(PromotionsOne), string(PromotionsMany)},
			weights: []float64{0.5, 0.5},
		},
		inventoryType: weightedOptions{
			options: []string{string(InventoryTransactional), string(InventoryPeriodicSnapshot), string(InventoryBoth)},
			weights: []float64{0.4, 0.4, 0.2},
		},
		booleanTrueProb: 0.5,
	},
	DifficultyHard: {
		transactionGrain: weightedOptions{
			options: []string{string(GrainLineItemLevel), string(GrainReceiptLevel), string(GrainMixed)},
			weights: []float64{0.3, 0.3, 0.4},
		},
		timestampRelation: weightedOptions{
			options: []string{string(TimestampSameAsBusinessDate), string(TimestampDifferentFromBusinessDate)},
			weights: []float64{0.2, 0.8},
		},
		hierarchyChanges: weightedOptions{
			options: []string{string(HierarchyChangesNone), string(HierarchyChangesOccasional), string(HierarchyChangesFrequent)},
			weights: []float64{0.1, 0.3, 0.6},
		},
		customerReliability: weightedOptions{
			options: []string{string(CustomerIDReliable), string(CustomerIDUnreliable), string(CustomerIDAbsent)},
			weights: []float64{0.2, 0.5, 0.3},
		},
		returnsReference: weightedOptions{
			options: []string{string(ReturnsReferenceAlways), string(ReturnsReferenceSometimes), string(ReturnsReferenceNever)},
			weights: []float64{0.2, 0.5, 0.3},
		},
		returnsPricing: weightedOptions{
			options: []string{string(ReturnsPricingOriginal), string(ReturnsPricingCurrent), string(ReturnsPricingArbitrary)},
			weights: []float64{0.2, 0.3, 0.5},
		},
		promotionsPerItem: weightedOptions{
			options: []string{string(PromotionsOne), string(PromotionsMany)},
			weights: []float64{0.2, 0.8},
		},
		inventoryType: weightedOptions{
			options: []string{string(InventoryTransactional), string(InventoryPeriodicSnapshot), string(InventoryBoth)},
			weights: []float64{0.2, 0.2, 0.6},
		},
		booleanTrueProb: 0.7,
	},
	DifficultyAdversarial: {
		transactionGrain: weightedOptions{
			options: []string{string(GrainLineItemLevel), string(GrainReceiptLevel), string(GrainMixed)},
			weights: []float64{0.1, 0.2, 0.7},
		},
		timestampRelation: weightedOptions{
			options: []string{string(TimestampSameAsBusinessDate), string(TimestampDifferentFromBusinessDate)},
			weights: []float64{0.1, 0.9},
		},
		hierarchyChanges: weightedOptions{
			options: []string{string(HierarchyChangesNone), string(HierarchyChangesOccasional), string(HierarchyChangesFrequent)},
			weights: []float64{0.0, 0.2, 0.8},
		},
		customerReliability: weightedOptions{
			options: []string{string(CustomerIDReliable), string(CustomerIDUnreliable), string(CustomerIDAbsent)},
			weights: []float64{0.1, 0.6, 0.3},
		},
		returnsReference: weightedOptions{
			options: []string{string(ReturnsReferenceAlways), string(ReturnsReferenceSometimes), string(ReturnsReferenceNever)},
			weights: []float64{0.1, 0.6, 0.3},
		},
		returnsPricing: weightedOptions{
			options: []string{string(ReturnsPricingOriginal), string(ReturnsPricingCurrent), string(ReturnsPricingArbitrary)},
			weights: []float64{0.1, 0.2, 0.7},
		},
		promotionsPerItem: weightedOptions{
			options: []string{string(PromotionsOne), string(PromotionsMany)},
			weights: []float64{0.1, 0.9},
		},
		inventoryType: weightedOptions{
			options: []string{string(InventoryTransactional), string(InventoryPeriodicSnapshot), string(InventoryBoth)},
			weights: []float64{0.1, 0.1, 0.8},
		},
		booleanTrueProb: 0.85,
	},
}
