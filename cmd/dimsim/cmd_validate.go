package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/schema"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <schema_file>",
		Short: "Validate schema structure without evaluation",
		Long: `Check that a schema document parses and satisfies the structural
rules: well-formed tables, resolvable relationships, sound SCD
declarations. No scoring is performed.

Accepts JSON or YAML submissions.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")

			sub, err := schema.ParseFile(args[0])
			if err != nil {
				if jsonOut {
					json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
						"valid": false,
						"error": err.Error(),
					})
					os.Exit(1)
				}
				return fmt.Errorf("schema validation failed: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"valid":            true,
					"fact_tables":      len(sub.FactTables),
					"dimension_tables": len(sub.DimensionTables),
					"relationships":    len(sub.Relationships),
					"bridge_tables":    len(sub.BridgeTables),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Schema is valid")
			fmt.Fprintf(cmd.OutOrStdout(), "  Fact tables: %d\n", len(sub.FactTables))
			fmt.Fprintf(cmd.OutOrStdout(), "  Dimension tables: %d\n", len(sub.DimensionTables))
			fmt.Fprintf(cmd.OutOrStdout(), "  Relationships: %d\n", len(sub.Relationships))
			fmt.Fprintf(cmd.OutOrStdout(), "  Bridge tables: %d\n", len(sub.BridgeTables))
			return nil
		},
	}
}
