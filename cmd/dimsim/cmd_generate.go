package main

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/describe"
	"github.com/slateworks/dimsim/internal/shop"
	"github.com/slateworks/dimsim/internal/sim"
)

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a shop configuration, events, and description",
		Long: `Generate a complete modeling scenario into the output directory.

Produces three files: shop_config.json (the behavioral switches the
scenario was built from), events.json (the raw event stream to model),
and description.md (the business narrative). The same seed and
difficulty always produce the same scenario.

Examples:
  dimsim generate
  dimsim generate --seed 42 --difficulty hard
  dimsim generate --num-events 5000 --output-dir ./scenarios/s42`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			seed, _ := cmd.Flags().GetUint32("seed")
			difficultyFlag, _ := cmd.Flags().GetString("difficulty")
			outputDir, _ := cmd.Flags().GetString("output-dir")
			numEvents, _ := cmd.Flags().GetInt("num-events")
			simulationDays, _ := cmd.Flags().GetInt("simulation-days")
			dumpState, _ := cmd.Flags().GetBool("dump-state")

			// Draw a seed when none was given. The seed stays in the
			// int32 range so it survives tools that parse it as one.
			if !cmd.Flags().Changed("seed") {
				seed = rand.Uint32N(1 << 31)
			}

			if difficultyFlag == "" {
				difficultyFlag = appCfg.Generation.Difficulty
			}
			difficulty, err := parseDifficulty(difficultyFlag)
			if err != nil {
				return err
			}
			if outputDir == "" {
				outputDir = appCfg.Generation.OutputDir
			}
			if numEvents <= 0 {
				numEvents = appCfg.Generation.TargetEvents
			}
			if simulationDays <= 0 {
				simulationDays = appCfg.Generation.SimulationDays
			}

			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "Generating shop with seed %d, difficulty %s\n", seed, difficulty)
			}

			if err := os.MkdirAll(outputDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			shopGen, err := shop.NewGenerator(seed, difficulty)
			if err != nil {
				return err
			}
			cfg, err := shopGen.Generate()
			if err != nil {
				return fmt.Errorf("failed to generate shop configuration: %w", err)
			}

			if dumpState {
				fmt.Fprint(os.Stderr, spew.Sdump(cfg))
			}

			configPath := filepath.Join(outputDir, "shop_config.json")
			configJSON, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode shop configuration: %w", err)
			}
			if err := os.WriteFile(configPath, append(configJSON, '\n'), 0o644); err != nil {
				return fmt.Errorf("failed to write shop configuration: %w", err)
			}
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "Shop configuration saved to %s\n", configPath)
			}

			eventGen, err := sim.NewGenerator(cfg)
			if err != nil {
				return err
			}
			eventLog := eventGen.Generate(numEvents, simulationDays)

			eventsPath := filepath.Join(outputDir, "events.json")
			eventsJSON, err := json.MarshalIndent(eventLog, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to encode events: %w", err)
			}
			if err := os.WriteFile(eventsPath, append(eventsJSON, '\n'), 0o644); err != nil {
				return fmt.Errorf("failed to write events: %w", err)
			}
			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "Events saved to %s (%d events)\n", eventsPath, len(eventLog.Events))
			}

			descPath := filepath.Join(outputDir, "description.md")
			description := describe.Generate(cfg)
			if err := os.WriteFile(descPath, []byte(description), 0o644); err != nil {
				return fmt.Errorf("failed to write description: %w", err)
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"seed":       seed,
					"difficulty": string(difficulty),
					"shop_name":  cfg.ShopName,
					"events":     len(eventLog.Events),
					"output_dir": outputDir,
					"files": map[string]string{
						"shop_config": configPath,
						"events":      eventsPath,
						"description": descPath,
					},
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Description saved to %s\n", descPath)
			fmt.Fprintf(cmd.OutOrStdout(), "\n%s\n\nSeed: %d\nDifficulty: %s\nEvents: %d\nOutput: %s\n",
				cfg.ShopName, seed, difficulty, len(eventLog.Events), outputDir)
			return nil
		},
	}

	cmd.Flags().Uint32("seed", 0, "Random seed for deterministic generation (random if not set)")
	cmd.Flags().String("difficulty", "", "Difficulty: easy, medium, hard, adversarial")
	cmd.Flags().String("output-dir", "", "Output directory (default ./output)")
	cmd.Flags().Int("num-events", 0, "Number of events to generate (default 1000)")
	cmd.Flags().Int("simulation-days", 0, "Maximum simulation days (default 30)")
	cmd.Flags().Bool("dump-state", false, "Dump the generated configuration to stderr")

	return cmd
}
