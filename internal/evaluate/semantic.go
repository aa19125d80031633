package evaluate

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// semanticFaithfulnessAxis checks that the model reflects the shop's
// business rules.
type semanticFaithfulnessAxis struct {
	ctx Context
}

func (a semanticFaithfulnessAxis) name() string  { return "semantic_faithfulness" }
func (a semanticFaithfulnessAxis) maxScore() int { return 100 }

func (a semanticFaithfulnessAxis) evaluate(sub schema.Submission) AxisScore {
	var deductions []Deduction
	deductions = append(deductions, a.checkTransactionModeling(sub)...)
	deductions = append(deductions, a.checkCustomerModeling(sub)...)
	deductions = append(deductions, a.checkPromotionModeling(sub)...)
	deductions = append(deductions, a.checkReturnsModeling(sub)...)
	deductions = append(deductions, a.checkInventoryModeling(sub)...)

	score := max(0, a.maxScore()-deductionTotal(deductions))
	return newAxisScore(a.name(), score, a.maxScore(), deductions)
}

func (a semanticFaithfulnessAxis) checkTransactionModeling(sub schema.Submission) []Deduction {
	var deductions []Deduction
	cfg := a.ctx.Config.Transactions

	if cfg.MultiplePayments {
		hasPaymentStructure := false
		for _, ft := range sub.FactTables {
			if strings.Contains(strings.ToLower(ft.Name), "payment") {
				hasPaymentStructure = true
				break
			}
		}
		if !hasPaymentStructure {
			for _, dt := range sub.DimensionTables {
				if strings.Contains(strings.ToLower(dt.Name), "payment") {
					hasPaymentStructure = true
					break
				}
			}
		}
		if !hasPaymentStructure {
			deductions = append(deductions, Deduction{
				Points:           15,
				Reason:           "Multiple payments are supported but no payment-specific modeling found",
				Severity:         SeverityMajor,
				AffectedElements: []string{"payment"},
				Category:         SemanticMismatch,
				Example:          "Transaction paid $50 cash + $75 credit card, but model only stores one payment",
				Consequence:      "Cannot analyze payment method mix, reconcile transactions, or track tender types",
				FixHint:          "Add a payment fact table or payment bridge table for many-to-one payments",
			})
		}
	}

	if cfg.VoidsEnabled {
		voidSupport := false
		for _, ft := range sub.FactTables {
			if strings.Contains(strings.ToLower(ft.Name), "void") ||
				strings.Contains(strings.ToLower(ft.GrainDescription), "status") {
				voidSupport = true
				break
			}
		}
		if !voidSupport {
			deductions = append(deductions, Deduction{
				Points:           10,
				Reason:           "Voids are supported but no void tracking mechanism found",
				Severity:         SeverityModerate,
				AffectedElements: []string{"void"},
			})
		}
	}
	return deductions
}

func (a semanticFaithfulnessAxis) checkCustomerModeling(sub schema.Submission) []Deduction {
	var deductions []Deduction
	cfg := a.ctx.Config.Customers

	var customerDims []schema.DimensionTable
	for _, dt := range sub.DimensionTables {
		if strings.Contains(strings.ToLower(dt.Name), "customer") {
			customerDims = append(customerDims, dt)
		}
	}

	if cfg.IDReliability == shop.CustomerIDAbsent {
		if len(customerDims) > 0 {
			names := make([]string, len(customerDims))
			for i, d := range customerDims {
				names[i] = d.Name
			}
			deductions = append(deductions, Deduction{
				Points:           5,
				Reason:           "Customer dimension exists but shop has no customer IDs",
				Severity:         SeverityMinor,
				AffectedElements: names,
			})
		}
		return deductions
	}

	if len(customerDims) == 0 {
		deductions = append(deductions, Deduction{
			Points:           15,
			Reason:           "Shop has customer IDs but no customer dimension found",
			Severity:         SeverityMajor,
			AffectedElements: []string{"customer"},
		})
	}

	if cfg.HouseholdGrouping && len(customerDims) > 0 {
		householdAttr := false
		for _, dim := range customerDims {
			for _, attr := range dim.Attributes {
				if strings.Contains(strings.ToLower(attr.Name), "household") {
					householdAttr = true
					break
				}
			}
		}
		householdDim := false
		for _, dt := range sub.DimensionTables {
			if strings.Contains(strings.ToLower(dt.Name), "household") {
				householdDim = true
				break
			}
		}
		if !householdAttr && !householdDim {
			deductions = append(deductions, Deduction{
				Points:           10,
				Reason:           "Household grouping is used but not modeled",
				Severity:         SeverityModerate,
				AffectedElements: []string{"household"},
			})
		}
	}
	return deductions
}

func (a semanticFaithfulnessAxis) checkPromotionModeling(sub schema.Submission) []Deduction {
	var deductions []Deduction
	cfg := a.ctx.Config.Promotions

	var promoDims []schema.DimensionTable
	for _, dt := range sub.DimensionTables {
		if containsAny(strings.ToLower(dt.Name), "promo", "discount") {
			promoDims = append(promoDims, dt)
		}
	}

	if cfg.PerLineItem == shop.PromotionsMany {
		promoBridge := false
		for _, bt := range sub.BridgeTables {
			if strings.Contains(strings.ToLower(bt.Name), "promo") {
				promoBridge = true
				break
			}
		}
		promoFact := false
		for _, ft := range sub.FactTables {
			if strings.Contains(strings.ToLower(ft.Name), "promo") {
				promoFact = true
				break
			}
		}
		if !promoBridge && !promoFact {
			deductions = append(deductions, Deduction{
				Points:           15,
				Reason:           "Multiple promotions per line item but no bridge/fact to support many-to-many",
				Severity:         SeverityMajor,
				AffectedElements: []string{"promotion"},
			})
		}
	}

	if cfg.BasketLevel {
		basketSupport := false
		for _, ft := range sub.FactTables {
			if containsAny(strings.ToLower(ft.Name), "basket", "order") {
				basketSupport = true
				break
			}
		}
		if !basketSupport && len(promoDims) == 0 {
			deductions = append(deductions, Deduction{
				Points:           10,
				Reason:           "Basket-level promotions exist but may not be properly modeled",
				Severity:         SeverityModerate,
				AffectedElements: []string{"basket_promotion"},
			})
		}
	}
	return deductions
}

func (a semanticFaithfulnessAxis) checkReturnsModeling(sub schema.Submission) []Deduction {
	var deductions []Deduction
	policy := a.ctx.Config.Returns.ReferencePolicy
	if policy == shop.ReturnsReferenceNever {
		return nil
	}

	var returnFacts []schema.FactTable
	for _, ft := range sub.FactTables {
		if containsAny(strings.ToLower(ft.Name), "return", "refund") {
			returnFacts = append(returnFacts, ft)
		}
	}

	if len(returnFacts) == 0 {
		deductions = append(deductions, Deduction{
			Points:           15,
			Reason:           "Returns are supported but no return fact table found",
			Severity:         SeverityMajor,
			AffectedElements: []string{"returns"},
			Category:         UnderModeling,
			Example:          "Customer returns item for $50 refund - nowhere to record this event",
			Consequence:      "Return rates, refund amounts, and customer satisfaction metrics unavailable",
			FixHint:          "Add a returns fact table to capture return events and reasons",
		})
	}

	switch policy {
	case shop.ReturnsReferenceAlways:
		for _, rf := range returnFacts {
			if !referencesOriginalTransaction(rf) {
				deductions = append(deductions, Deduction{
					Points:           10,
					Reason:           fmt.Sprintf("Return fact '%s' should reference original transaction", rf.Name),
					Severity:         SeverityModerate,
					AffectedElements: []string{rf.Name},
				})
			}
		}
	case shop.ReturnsReferenceSometimes:
		// Only some returns carry a reference; the column must still
		// exist, with NULL for orphan returns.
		for _, rf := range returnFacts {
			if !referencesOriginalTransaction(rf) {
				deductions = append(deductions, Deduction{
					Points:           15,
					Reason:           fmt.Sprintf("Return fact '%s' needs a nullable original transaction reference", rf.Name),
					Severity:         SeverityMajor,
					AffectedElements: []string{rf.Name},
				})
			}
		}
	}
	return deductions
}

func referencesOriginalTransaction(fact schema.FactTable) bool {
	for _, gc := range fact.GrainColumns {
		if containsAny(strings.ToLower(gc.Name), "original", "orig") {
			return true
		}
	}
	for _, dk := range fact.DimensionKeys {
		if containsAny(strings.ToLower(dk), "original", "orig") {
			return true
		}
	}
	return false
}

func (a semanticFaithfulnessAxis) checkInventoryModeling(sub schema.Submission) []Deduction {
	if !a.ctx.Config.Inventory.Tracked {
		return nil
	}
	for _, ft := range sub.FactTables {
		if containsAny(strings.ToLower(ft.Name), "inventory", "stock") {
			return nil
		}
	}
	return []Deduction{{
		Points:           15,
		Reason:           "Inventory is tracked but no inventory fact table found",
		Severity:         SeverityMajor,
		AffectedElements: []string{"inventory"},
	}}
}
