package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/scaffold"
)

func newScaffoldCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scaffold <shop_config>",
		Short: "Generate a schema scaffold from shop configuration",
		Long: `Generate a skeleton schema with TODOs and warnings.

The scaffold is NOT a correct solution: grain declarations are left
open, trap-related decisions are marked as TODO questions, and known
hazards appear as warnings. Use it to skip blank-file paralysis, not
the thinking.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")

			cfg, err := loadShopConfig(args[0])
			if err != nil {
				return err
			}
			sk := scaffold.Build(cfg)

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(sk)
			}

			doc, err := json.MarshalIndent(sk, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode scaffold: %w", err)
			}
			if err := writeOrPrint(cmd, output, string(doc), "Scaffold"); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nFact tables: %d\n", len(sk.FactTables))
			fmt.Fprintf(out, "Dimension tables: %d\n", len(sk.DimensionTables))
			fmt.Fprintf(out, "Relationships: %d\n", len(sk.Relationships))
			fmt.Fprintf(out, "TODOs: %d\n", len(sk.Todos))
			fmt.Fprintf(out, "Warnings: %d\n", len(sk.Warnings))

			if len(sk.Todos) > 0 {
				fmt.Fprintln(out, "\nKey decisions needed:")
				todos := sk.Todos
				if len(todos) > 5 {
					todos = todos[:5]
				}
				for _, todo := range todos {
					fmt.Fprintf(out, "  - %s\n", todo.Question)
				}
			}

			if len(sk.Warnings) > 0 {
				fmt.Fprintln(out, "\nWarnings:")
				for _, warning := range sk.Warnings {
					fmt.Fprintf(out, "  ! %s\n", warning)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output path for scaffold JSON")

	return cmd
}
