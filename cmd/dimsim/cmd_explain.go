package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/explain"
	"github.com/slateworks/dimsim/internal/schema"
)

func newExplainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explain <shop_config> <events_file> <schema_file>",
		Short: "Show concrete examples where your schema produces wrong answers",
		Long: `Analyze a schema against the shop configuration and narrate the
specific queries it would answer incorrectly.

Where evaluate scores, explain demonstrates: each scenario walks
through a business question, what the shop actually did, and why the
submitted model returns the wrong number for it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := loadShopConfig(args[0])
			if err != nil {
				return err
			}
			if _, err := readEventsSeed(args[1]); err != nil {
				return err
			}
			sub, err := schema.ParseFile(args[2])
			if err != nil {
				return fmt.Errorf("%s: %w", args[2], err)
			}

			result := explain.Analyze(cfg, &sub)

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(result)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "SCHEMA EXPLANATION\n\n%s\n", result.Summary)

			if !result.HasIssues() {
				fmt.Fprintln(out, "\nNo specific failure scenarios identified.")
				fmt.Fprintln(out, "This doesn't mean the schema is perfect - just that")
				fmt.Fprintln(out, "no concrete failing cases were generated.")
				return nil
			}

			for i, scenario := range result.Scenarios {
				fmt.Fprintf(out, "\nScenario %d: %s [%s]\n", i+1, scenario.ScenarioName, strings.ToUpper(string(scenario.Severity)))
				fmt.Fprintf(out, "\nBusiness Question:\n%s\n", scenario.BusinessQuestion)
				fmt.Fprintf(out, "\nWhat Actually Happened:\n%s\n", scenario.SetupDescription)
				fmt.Fprintf(out, "\nExpected Answer: %s\n", scenario.ExpectedAnswer)
				fmt.Fprintf(out, "Your Model Returns: %s\n", scenario.ActualWithSchema)
				fmt.Fprintf(out, "\nWhy It's Wrong:\n%s\n", scenario.WhyWrong)
				fmt.Fprintf(out, "\nRoot Cause: %s\n", scenario.RootCause)
				if verbose && len(scenario.EventsInvolved) > 0 {
					fmt.Fprintf(out, "Events: %s\n", strings.Join(scenario.EventsInvolved, ", "))
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("verbose", false, "Show detailed event traces")

	return cmd
}
