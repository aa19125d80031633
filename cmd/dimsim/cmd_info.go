package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/describe"
	"github.com/slateworks/dimsim/internal/shop"
)

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <shop_config>",
		Short: "Display information about a shop configuration",
		Long: `Show every behavioral setting of a shop configuration.

This is the unvarnished view: where the description narrates, info
lists the raw switches. With --difficulty it also shows the trap
briefing for that level; at adversarial difficulty only the trap
count is revealed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			difficultyFlag, _ := cmd.Flags().GetString("difficulty")

			cfg, err := loadShopConfig(args[0])
			if err != nil {
				return err
			}

			var briefing describe.Briefing
			var difficulty shop.Difficulty
			if difficultyFlag != "" {
				difficulty, err = parseDifficulty(difficultyFlag)
				if err != nil {
					return err
				}
				briefing = describe.NewBriefing(cfg, difficulty)
			}

			if jsonOut {
				doc := map[string]interface{}{"config": cfg}
				if difficultyFlag != "" {
					doc["difficulty"] = string(difficulty)
					doc["traps_hidden"] = briefing.TrapsHidden
					if briefing.TrapsHidden {
						doc["trap_count"] = len(briefing.Traps)
					} else {
						doc["traps"] = briefing.Traps
					}
				}
				return json.NewEncoder(os.Stdout).Encode(doc)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s (seed %d)\n\n", cfg.ShopName, cfg.Seed)

			row := func(category, setting string, value interface{}) {
				fmt.Fprintf(out, "%-13s %-26s %v\n", category, setting, value)
			}

			row("Transactions", "Grain", cfg.Transactions.Grain)
			row("", "Multiple payments", cfg.Transactions.MultiplePayments)
			row("", "Voids enabled", cfg.Transactions.VoidsEnabled)
			row("", "Manual overrides", cfg.Transactions.ManualOverrides)

			row("Time", "Timestamp/business date", cfg.Time.TimestampBusinessDateRelation)
			row("", "Late-arriving events", cfg.Time.LateArrivingEvents)
			row("", "Backdated corrections", cfg.Time.BackdatedCorrections)

			row("Products", "SKU reuse", cfg.Products.SKUReuse)
			row("", "Hierarchy changes", cfg.Products.HierarchyChangeFrequency)
			row("", "Bundled products", cfg.Products.BundledProducts)
			row("", "Virtual products", cfg.Products.VirtualProducts)

			row("Customers", "Anonymous allowed", cfg.Customers.AnonymousAllowed)
			row("", "ID reliability", cfg.Customers.IDReliability)
			row("", "Household grouping", cfg.Customers.HouseholdGrouping)

			row("Stores", "Physical stores", cfg.Stores.PhysicalStores)
			row("", "Online channel", cfg.Stores.OnlineChannel)
			row("", "Cross-store returns", cfg.Stores.CrossStoreReturns)
			row("", "Store lifecycle", cfg.Stores.LifecycleChanges)

			row("Promotions", "Per line item", cfg.Promotions.PerLineItem)
			row("", "Stackable", cfg.Promotions.Stackable)
			row("", "Basket-level", cfg.Promotions.BasketLevel)
			row("", "Post-transaction", cfg.Promotions.PostTransaction)

			row("Returns", "Reference policy", cfg.Returns.ReferencePolicy)
			row("", "Pricing policy", cfg.Returns.PricingPolicy)

			row("Inventory", "Tracked", cfg.Inventory.Tracked)
			if cfg.Inventory.Type != "" {
				row("", "Type", cfg.Inventory.Type)
			}

			if difficultyFlag != "" {
				renderTrapBriefing(out, briefing)
			}
			return nil
		},
	}

	cmd.Flags().String("difficulty", "", "Show the trap briefing for this difficulty level")

	return cmd
}

// renderTrapBriefing prints the trap section of a briefing. Adversarial
// scenarios reveal only the count.
func renderTrapBriefing(out io.Writer, b describe.Briefing) {
	fmt.Fprintf(out, "\n%s briefing: %s\n", b.DifficultyName, b.Tagline)

	if len(b.Traps) == 0 {
		fmt.Fprintln(out, "No traps enabled.")
		return
	}
	if b.TrapsHidden {
		fmt.Fprintf(out, "%d traps are active. At this difficulty you find them yourself.\n", len(b.Traps))
		return
	}

	fmt.Fprintf(out, "Traps enabled (%d):\n", len(b.Traps))
	for _, trap := range b.Traps {
		fmt.Fprintf(out, "  [%s] %s\n", trap.Category, trap.Name)
	}
	if threats := b.ThreatSummary(); len(threats) > 0 {
		fmt.Fprintf(out, "\n%s will try to break your model by:\n", b.ShopName)
		for _, threat := range threats {
			fmt.Fprintf(out, "  - %s\n", threat)
		}
	}
}
