package evaluate

import (
	"fmt"
	"strings"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// eventTypePatterns maps each event type to fact-name fragments that
// suggest a home for it.
var eventTypePatterns = map[events.EventType][]string{
	events.TypeSale:                {"sale", "transaction", "order"},
	events.TypeReturn:              {"return", "refund"},
	events.TypeVoid:                {"void", "cancel", "transaction"},
	events.TypeCorrection:          {"correction", "adjustment", "transaction"},
	events.TypeInventoryAdjustment: {"inventory", "stock"},
	events.TypeInventorySnapshot:   {"inventory", "stock", "snapshot"},
	events.TypeProductChange:       {"product"},
	events.TypeStoreChange:         {"store", "location"},
}

// lineItemGrainFragments mark a grain description as line-item level.
var lineItemGrainFragments = []string{"line item", "line-item", "lineitem", "item"}

// eventPreservationAxis checks that every event type the shop emits
// has a fact table to land in and that essential fields survive.
type eventPreservationAxis struct {
	ctx Context
}

func (a eventPreservationAxis) name() string  { return "event_preservation" }
func (a eventPreservationAxis) maxScore() int { return 100 }

func (a eventPreservationAxis) evaluate(sub schema.Submission) AxisScore {
	var deductions []Deduction
	deductions = append(deductions, a.checkEventTypeCoverage(sub)...)
	deductions = append(deductions, a.checkFieldCoverage(sub)...)
	deductions = append(deductions, a.checkGrainSufficiency(sub)...)

	score := max(0, a.maxScore()-deductionTotal(deductions))
	return newAxisScore(a.name(), score, a.maxScore(), deductions)
}

func (a eventPreservationAxis) checkEventTypeCoverage(sub schema.Submission) []Deduction {
	var deductions []Deduction

	factNames := make([]string, len(sub.FactTables))
	for i, ft := range sub.FactTables {
		factNames[i] = strings.ToLower(ft.Name)
	}

	for _, eventType := range a.ctx.RequiredEventTypes {
		found := false
		for _, pattern := range eventTypePatterns[eventType] {
			if found {
				break
			}
			for _, name := range factNames {
				if strings.Contains(name, pattern) {
					found = true
					break
				}
			}
		}
		if !found {
			deductions = append(deductions, Deduction{
				Points:           20,
				Reason:           fmt.Sprintf("No fact table appears to support %s events", eventType),
				Severity:         SeverityCritical,
				AffectedElements: []string{string(eventType)},
				Category:         DataLoss,
				Example:          fmt.Sprintf("%s events from the shop cannot be stored anywhere", eventType),
				Consequence:      fmt.Sprintf("All %s data is lost; related business questions cannot be answered", eventType),
				FixHint:          fmt.Sprintf("Add a fact table to capture %s events", eventType),
			})
		}
	}
	return deductions
}

func (a eventPreservationAxis) checkFieldCoverage(sub schema.Submission) []Deduction {
	var deductions []Deduction

	var saleFact *schema.FactTable
	for i := range sub.FactTables {
		if containsAny(strings.ToLower(sub.FactTables[i].Name), "sale", "transaction", "order") {
			saleFact = &sub.FactTables[i]
			break
		}
	}
	if saleFact == nil {
		return nil
	}

	hasQuantity := containsAny(strings.Join(factColumns(*saleFact), " "), "quantity", "qty")
	if !hasQuantity && a.ctx.Config.Transactions.Grain != shop.GrainReceiptLevel {
		deductions = append(deductions, Deduction{
			Points:           10,
			Reason:           "Sales fact appears to lack quantity measure for line items",
			Severity:         SeverityModerate,
			AffectedElements: []string{saleFact.Name},
		})
	}

	if a.ctx.Config.Transactions.MultiplePayments {
		hasPaymentDim := false
		for _, rel := range sub.RelationshipsForFact(saleFact.Name) {
			if strings.Contains(strings.ToLower(rel.DimensionTable), "payment") {
				hasPaymentDim = true
				break
			}
		}
		hasPaymentFact := false
		for _, ft := range sub.FactTables {
			if strings.Contains(strings.ToLower(ft.Name), "payment") {
				hasPaymentFact = true
				break
			}
		}
		if !hasPaymentDim && !hasPaymentFact {
			deductions = append(deductions, Deduction{
				Points:           15,
				Reason:           "Multiple payments supported but no payment dimension or fact found",
				Severity:         SeverityMajor,
				AffectedElements: []string{saleFact.Name},
			})
		}
	}
	return deductions
}

func (a eventPreservationAxis) checkGrainSufficiency(sub schema.Submission) []Deduction {
	grain := a.ctx.Config.Transactions.Grain
	if grain != shop.GrainLineItemLevel && grain != shop.GrainMixed {
		return nil
	}

	for _, ft := range sub.FactTables {
		if containsAny(strings.ToLower(ft.GrainDescription), lineItemGrainFragments...) {
			return nil
		}
	}

	if grain == shop.GrainLineItemLevel {
		return []Deduction{{
			Points:           25,
			Reason:           "Shop uses line-item grain but no line-item level fact table found",
			Severity:         SeverityCritical,
			AffectedElements: []string{"grain"},
			Category:         DataLoss,
			Example:          "Transaction with 5 line items becomes 1 row; individual item data is lost",
			Consequence:      "Cannot analyze product-level sales, basket composition, or item-level returns",
			FixHint:          "Add a line-item grain fact table with line_number in the grain",
		}}
	}
	return []Deduction{{
		Points:           15,
		Reason:           "Shop uses mixed grain; consider supporting line-item detail when available",
		Severity:         SeverityModerate,
		AffectedElements: []string{"grain"},
	}}
}
