// Package explain generates concrete query scenarios that show where a
// submitted schema produces wrong answers. Where the evaluator says what
// rule was broken, explain walks through a named business question, the
// events involved, the correct answer and the answer the schema would
// actually give.
package explain

import (
	"fmt"
	"slices"
	"strings"

	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

// QueryScenario walks through one business question the schema answers
// incorrectly.
type QueryScenario struct {
	ScenarioName     string            `json:"scenario_name"`
	BusinessQuestion string            `json:"business_question"`
	SetupDescription string            `json:"setup_description"`
	ExpectedAnswer   string            `json:"expected_answer"`
	ActualWithSchema string            `json:"actual_with_schema"`
	WhyWrong         string            `json:"why_wrong"`
	RootCause        string            `json:"root_cause"`
	EventsInvolved   []string          `json:"events_involved"`
	Severity         evaluate.Severity `json:"severity"`
}

// Result is the full diagnostic output for one submission.
type Result struct {
	IssuesFound int             `json:"schema_issues_found"`
	Scenarios   []QueryScenario `json:"query_scenarios"`
	Summary     string          `json:"summary"`
}

// HasIssues reports whether any failure scenario applies.
func (r Result) HasIssues() bool {
	return r.IssuesFound > 0
}

// Analyze builds the failure scenarios for a submission and wraps them
// with a count and summary line.
func Analyze(cfg shop.Configuration, sub *schema.Submission) Result {
	scenarios := Scenarios(cfg, sub)

	var summary string
	switch n := len(scenarios); n {
	case 0:
		summary = "No specific failure scenarios identified for this schema."
	case 1:
		summary = "Found 1 scenario where your model produces incorrect answers."
	default:
		summary = fmt.Sprintf("Found %d scenarios where your model produces incorrect answers.", n)
	}

	return Result{
		IssuesFound: len(scenarios),
		Scenarios:   scenarios,
		Summary:     summary,
	}
}

// Scenarios returns every scenario whose trap is enabled in the
// configuration and not defused by the submission, worst first.
func Scenarios(cfg shop.Configuration, sub *schema.Submission) []QueryScenario {
	var scenarios []QueryScenario
	scenarios = append(scenarios, grainScenarios(cfg, sub)...)
	scenarios = append(scenarios, temporalScenarios(cfg, sub)...)
	scenarios = append(scenarios, semanticScenarios(cfg, sub)...)

	slices.SortStableFunc(scenarios, func(a, b QueryScenario) int {
		return a.Severity.Rank() - b.Severity.Rank()
	})
	return scenarios
}

func grainScenarios(cfg shop.Configuration, sub *schema.Submission) []QueryScenario {
	var scenarios []QueryScenario

	if cfg.Transactions.Grain == shop.GrainMixed {
		mixedFact := false
		for _, fact := range sub.FactTables {
			desc := strings.ToLower(fact.GrainDescription)
			if strings.Contains(desc, "mixed") || strings.Contains(desc, "or") {
				mixedFact = true
				break
			}
		}
		if mixedFact {
			scenarios = append(scenarios, QueryScenario{
				ScenarioName:     "The Mixed Grain Trap",
				BusinessQuestion: "How many items did we sell last Tuesday?",
				SetupDescription: "Transaction TXN-001 has 3 line items (items A, B, C).\n" +
					"Transaction TXN-002 is receipt-level only (total: 5 items, no breakdown).",
				ExpectedAnswer: "8 items (3 + 5)",
				ActualWithSchema: "Either 2 items (counting rows), or 8 items (if you sum quantity), " +
					"but the grain inconsistency makes this query unreliable.",
				WhyWrong: "The fact table mixes line-item rows with receipt-level rows. " +
					"COUNT(*) counts rows, not items. SUM(quantity) might work " +
					"if all rows have quantity, but the semantic meaning differs.",
				RootCause:      "Fact table has mixed grain without clear delineation",
				EventsInvolved: []string{"TXN-001 (3 lines)", "TXN-002 (receipt only)"},
				Severity:       evaluate.SeverityCritical,
			})
		}
	}

	if cfg.Transactions.MultiplePayments {
		paymentBridge := slices.ContainsFunc(sub.BridgeTables, func(bt schema.BridgeTable) bool {
			return strings.Contains(strings.ToLower(bt.Name), "payment")
		})
		paymentFact := slices.ContainsFunc(sub.FactTables, func(ft schema.FactTable) bool {
			return strings.Contains(strings.ToLower(ft.Name), "payment")
		})
		if !paymentBridge && !paymentFact {
			scenarios = append(scenarios, QueryScenario{
				ScenarioName:     "The Payment Fan-Out",
				BusinessQuestion: "What was total revenue last week?",
				SetupDescription: "Transaction TXN-100 is for $100, paid $60 cash + $40 credit.\n" +
					"Transaction TXN-101 is for $50, paid entirely by gift card.",
				ExpectedAnswer: "$150 total revenue",
				ActualWithSchema: "If payments are modeled as dimension rows joined to facts, " +
					"TXN-100 appears twice (once per payment method), " +
					"giving $200 ($100 + $100 + $50) or worse.",
				WhyWrong: "Without proper payment modeling, joining to payment data " +
					"causes fan-out, duplicating the transaction amounts.",
				RootCause:      "No bridge table or separate fact for multiple payments",
				EventsInvolved: []string{"TXN-100 ($60 + $40)", "TXN-101 ($50)"},
				Severity:       evaluate.SeverityMajor,
			})
		}
	}

	return scenarios
}

func temporalScenarios(cfg shop.Configuration, sub *schema.Submission) []QueryScenario {
	var scenarios []QueryScenario

	if cfg.Time.BackdatedCorrections && !hasDualDates(sub) {
		scenarios = append(scenarios, QueryScenario{
			ScenarioName:     "The Backdated Correction",
			BusinessQuestion: "What were total sales on January 15th?",
			SetupDescription: "TXN-500 was recorded on Jan 15 for $100.\n" +
				"On Jan 20, a manager corrected TXN-500's amount to $150.\n" +
				"The correction is backdated to be effective Jan 15.",
			ExpectedAnswer: "$150 (the corrected amount)",
			ActualWithSchema: "Either $100 (original), $150 (if overwritten), or $250 " +
				"(if both records exist without clear business date).",
			WhyWrong: "The schema doesn't distinguish between event timestamp " +
				"(when recorded) and business effective date (when it applies). " +
				"This makes it impossible to correctly report Jan 15 sales.",
			RootCause:      "No business_effective_date column separate from event_timestamp",
			EventsInvolved: []string{"TXN-500 original ($100)", "CORR-987 ($150, effective Jan 15)"},
			Severity:       evaluate.SeverityMajor,
		})
	}

	if cfg.Products.HierarchyChangeFrequency != shop.HierarchyChangesNone {
		if dim, ok := findDimension(sub.DimensionTables, "product"); ok {
			switch dim.SCDStrategy {
			case schema.SCDType1, schema.SCDNone, schema.SCDType0:
				scenarios = append(scenarios, QueryScenario{
					ScenarioName:     "The Rewritten History",
					BusinessQuestion: "What were sales by product category in Q1?",
					SetupDescription: "Product SKU-123 was in 'Electronics' for January and February.\n" +
						"In March, SKU-123 was moved to 'Clearance' category.\n" +
						"SKU-123 had $10,000 in Q1 sales.",
					ExpectedAnswer: "$10,000 in Electronics (where it was when sold)",
					ActualWithSchema: "$10,000 shows as 'Clearance' because Type 1 SCD overwrote " +
						"the category. Historical category assignment is lost.",
					WhyWrong: "Type 1 SCD overwrites attributes without preserving history. " +
						"All historical sales now show current category values, " +
						"making historical category analysis impossible.",
					RootCause:      fmt.Sprintf("dim_product uses %s instead of Type 2", dim.SCDStrategy),
					EventsInvolved: []string{"SKU-123 sales in Jan/Feb", "Category change in March"},
					Severity:       evaluate.SeverityMajor,
				})
			}
		}
	}

	if cfg.Time.TimestampBusinessDateRelation == shop.TimestampDifferentFromBusinessDate {
		scenarios = append(scenarios, QueryScenario{
			ScenarioName:     "The Midnight Sale",
			BusinessQuestion: "What were sales for Monday vs Tuesday?",
			SetupDescription: "Transaction at 11:55 PM Monday is recorded in the system.\n" +
				"Due to overnight processing, the event timestamp is 12:05 AM Tuesday.\n" +
				"The business considers this a Monday sale.",
			ExpectedAnswer: "Sale counts toward Monday",
			ActualWithSchema: "If using event timestamp for the date dimension, " +
				"this sale appears on Tuesday's report.",
			WhyWrong: "The business date (Monday) differs from the system timestamp (Tuesday). " +
				"Without explicit business date tracking, date-based reports are wrong " +
				"for all late-night transactions.",
			RootCause:      "Schema uses timestamp instead of business effective date",
			EventsInvolved: []string{"Late-night transaction crossing midnight"},
			Severity:       evaluate.SeverityModerate,
		})
	}

	return scenarios
}

func semanticScenarios(cfg shop.Configuration, sub *schema.Submission) []QueryScenario {
	var scenarios []QueryScenario

	if cfg.Returns.ReferencePolicy == shop.ReturnsReferenceSometimes {
		if fact, ok := findFact(sub.FactTables, "return"); ok {
			optionalRef := slices.ContainsFunc(fact.GrainColumns, func(gc schema.GrainColumn) bool {
				name := strings.ToLower(gc.Name)
				return strings.Contains(name, "original") || strings.Contains(name, "nullable")
			})
			if !optionalRef {
				scenarios = append(scenarios, QueryScenario{
					ScenarioName:     "The Orphan Return",
					BusinessQuestion: "What is customer C-100's lifetime value?",
					SetupDescription: "Customer C-100 made purchases totaling $500.\n" +
						"C-100 returned a $50 item without a receipt (allowed by policy).\n" +
						"The return has no original_transaction_id.",
					ExpectedAnswer: "$450 ($500 purchases - $50 return)",
					ActualWithSchema: "Either $500 (return not linked to customer) or error " +
						"(if original_transaction_id is required but NULL).",
					WhyWrong: "Returns without receipts can't be linked to original transactions. " +
						"If the schema requires this link, orphan returns are dropped. " +
						"If it's missing, returns can't be attributed to customers.",
					RootCause:      "Return fact doesn't handle NULL original_transaction_id",
					EventsInvolved: []string{"C-100 purchases ($500)", "Orphan return ($50)"},
					Severity:       evaluate.SeverityMajor,
				})
			}
		}
	}

	if cfg.Returns.PricingPolicy == shop.ReturnsPricingArbitrary {
		scenarios = append(scenarios, QueryScenario{
			ScenarioName:     "The Mystery Refund",
			BusinessQuestion: "What's our refund rate as a percentage of sales?",
			SetupDescription: "Product sold for $100.\n" +
				"Customer returns it, but manager overrides refund to $120 " +
				"(goodwill gesture due to inconvenience).",
			ExpectedAnswer: "Depends on business definition - $100 or $120?",
			ActualWithSchema: "If schema only stores refund amount, you get 120% refund rate. " +
				"If it only stores original price, you miss the actual cash out.",
			WhyWrong: "The shop allows arbitrary price overrides on returns. " +
				"Without tracking both original and refund amounts, " +
				"financial reconciliation is impossible.",
			RootCause:      "Schema doesn't capture both original_price and actual_refund",
			EventsInvolved: []string{"Sale ($100)", "Return ($120 override)"},
			Severity:       evaluate.SeverityModerate,
		})
	}

	return scenarios
}

// hasDualDates reports whether any fact carries both an event/record
// timestamp column and a business date column.
func hasDualDates(sub *schema.Submission) bool {
	for _, fact := range sub.FactTables {
		var names []string
		for _, gc := range fact.GrainColumns {
			names = append(names, strings.ToLower(gc.Name))
		}
		for _, dk := range fact.DimensionKeys {
			names = append(names, strings.ToLower(dk))
		}
		joined := strings.Join(names, " ")
		if (strings.Contains(joined, "event") || strings.Contains(joined, "record")) &&
			strings.Contains(joined, "business") {
			return true
		}
	}
	return false
}

func findFact(facts []schema.FactTable, fragment string) (schema.FactTable, bool) {
	for _, ft := range facts {
		if strings.Contains(strings.ToLower(ft.Name), fragment) {
			return ft, true
		}
	}
	return schema.FactTable{}, false
}

func findDimension(dims []schema.DimensionTable, fragment string) (schema.DimensionTable, bool) {
	for _, dt := range dims {
		if strings.Contains(strings.ToLower(dt.Name), fragment) {
			return dt, true
		}
	}
	return schema.DimensionTable{}, false
}
