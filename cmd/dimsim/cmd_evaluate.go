package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/evaluate"
	"github.com/slateworks/dimsim/internal/feedback"
	"github.com/slateworks/dimsim/internal/progress"
	"github.com/slateworks/dimsim/internal/schema"
	"github.com/slateworks/dimsim/internal/shop"
)

func newEvaluateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evaluate <shop_config> <events_file> <schema_file>",
		Short: "Evaluate a schema submission against a generated shop",
		Long: `Evaluate a submitted dimensional schema against the shop it models.

Scores the submission across six axes (grain, temporal handling,
relationships, SCD strategy, completeness, query readiness) and
reports concrete violations with fixes. The attempt is recorded in
the local progress history, keyed by scenario seed and difficulty.

Formats:
  actionable  - violations grouped by category with fixes (default)
  text        - fixed-width score report
  json        - full result document

Examples:
  dimsim evaluate output/shop_config.json output/events.json my_schema.yaml
  dimsim evaluate output/shop_config.json output/events.json my_schema.json --format json`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			difficultyFlag, _ := cmd.Flags().GetString("difficulty")
			noProgress, _ := cmd.Flags().GetBool("no-progress")

			if format == "" {
				format = appCfg.Evaluation.Format
			}
			if difficultyFlag == "" {
				difficultyFlag = appCfg.Generation.Difficulty
			}
			difficulty, err := parseDifficulty(difficultyFlag)
			if err != nil {
				return err
			}

			cfg, err := loadShopConfig(args[0])
			if err != nil {
				return err
			}
			seed, err := readEventsSeed(args[1])
			if err != nil {
				return err
			}
			sub, err := schema.ParseFile(args[2])
			if err != nil {
				return fmt.Errorf("%s: %w", args[2], err)
			}

			result := evaluate.Evaluate(cfg, sub)

			var statusMsg string
			if !noProgress {
				statusMsg = recordAttempt(cmd.Context(), appCfg.Progress.DBPath, seed, difficulty, result, &sub)
			}

			switch format {
			case "json":
				doc, err := json.MarshalIndent(result, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode result: %w", err)
				}
				return writeOrPrint(cmd, output, string(doc), "Results")
			case "text":
				if err := writeOrPrint(cmd, output, result.Report(), "Report"); err != nil {
					return err
				}
			default:
				rendered := renderActionable(feedback.New(result))
				if err := writeOrPrint(cmd, output, rendered, "Feedback"); err != nil {
					return err
				}
			}

			if statusMsg != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n", statusMsg)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "", "Output format: actionable, text, json")
	cmd.Flags().String("output", "", "Output path for evaluation report")
	cmd.Flags().String("difficulty", "", "Scenario difficulty, used to key the attempt history")
	cmd.Flags().Bool("no-progress", false, "Do not record this attempt in the progress history")

	return cmd
}

// recordAttempt folds the evaluation into the scenario's attempt
// history. Recording is best-effort: a broken progress database must
// not block the evaluation output, so failures degrade to a warning.
func recordAttempt(ctx context.Context, dbPath string, seed uint32, difficulty shop.Difficulty, result *evaluate.Result, sub *schema.Submission) string {
	store, err := progress.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: progress history unavailable: %v\n", err)
		return ""
	}
	defer store.Close()

	status, err := progress.NewTracker(store).Record(ctx, seed, difficulty, result, sub)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to record attempt: %v\n", err)
		return ""
	}
	return status.Message()
}

// categoryLabels maps violation categories onto the section headers of
// the actionable rendering.
var categoryLabels = map[evaluate.ViolationCategory]string{
	evaluate.GrainViolation:   "GRAIN VIOLATIONS",
	evaluate.TemporalLie:      "TEMPORAL LIES",
	evaluate.SemanticMismatch: "SEMANTIC MISMATCHES",
	evaluate.DataLoss:         "DATA LOSS RISKS",
	evaluate.FanOutRisk:       "FAN-OUT RISKS",
	evaluate.OverModeling:     "OVER-MODELING",
	evaluate.UnderModeling:    "UNDER-MODELING",
}

// categoryOrder fixes the section order of the actionable rendering,
// worst categories first.
var categoryOrder = []evaluate.ViolationCategory{
	evaluate.GrainViolation,
	evaluate.TemporalLie,
	evaluate.SemanticMismatch,
	evaluate.DataLoss,
	evaluate.FanOutRisk,
	evaluate.OverModeling,
	evaluate.UnderModeling,
}

// renderActionable formats feedback as violation panels grouped by
// category, followed by the fix priority list.
func renderActionable(fb feedback.Feedback) string {
	var b strings.Builder

	fmt.Fprintf(&b, "EVALUATION: %d/%d (%.1f%%)\n\n%s\n", fb.TotalScore, fb.MaxScore, fb.Percentage, fb.Summary)

	for _, category := range categoryOrder {
		violations := fb.ByCategory[category]
		if len(violations) == 0 {
			continue
		}
		label := categoryLabels[category]

		for _, v := range violations {
			fmt.Fprintf(&b, "\n--- %s ---\n", label)
			fmt.Fprintf(&b, "[%s] %s\n", strings.ToUpper(string(v.Severity)), v.WhatWentWrong)

			if v.ConcreteExample != "" {
				fmt.Fprintf(&b, "\nExample:\n%s\n", v.ConcreteExample)
			}
			if v.Consequence != "" {
				fmt.Fprintf(&b, "\nConsequence:\n%s\n", v.Consequence)
			}
			if v.FixHint != "" {
				fmt.Fprintf(&b, "\nFix: %s\n", v.FixHint)
			}
			if len(v.AffectedTables) > 0 {
				fmt.Fprintf(&b, "\nAffected: %s\n", strings.Join(v.AffectedTables, ", "))
			}
		}
	}

	if len(fb.FixPriority) > 0 {
		b.WriteString("\nFIX PRIORITY\n")
		for i, fix := range fb.FixPriority {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, fix)
		}
	}

	return strings.TrimRight(b.String(), "\n")
}
