package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/describe"
)

func newDescribeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "describe <shop_config>",
		Short: "Generate a shop description from configuration",
		Long: `Render the business narrative for a shop configuration.

The description is the modeler-facing view of the scenario: it tells
the story of how the shop operates without naming the traps directly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")

			cfg, err := loadShopConfig(args[0])
			if err != nil {
				return err
			}
			description := describe.Generate(cfg)

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"shop_name":   cfg.ShopName,
					"seed":        cfg.Seed,
					"description": description,
				})
			}
			return writeOrPrint(cmd, output, description, "Description")
		},
	}

	cmd.Flags().String("output", "", "Output path for description")

	return cmd
}
