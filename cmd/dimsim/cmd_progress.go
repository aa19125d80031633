package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/progress"
)

func newProgressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Show attempt history for scenarios",
		Long: `Show the recorded attempt history.

With --seed, shows the full history for one scenario: best score,
attempt count, and a bar per recent attempt. With --all, lists every
tracked scenario.

Examples:
  dimsim progress --seed 42
  dimsim progress --seed 42 --difficulty hard
  dimsim progress --all`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig(cmd)
			if err != nil {
				return err
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			seed, _ := cmd.Flags().GetUint32("seed")
			difficultyFlag, _ := cmd.Flags().GetString("difficulty")
			all, _ := cmd.Flags().GetBool("all")

			if !all && !cmd.Flags().Changed("seed") {
				return fmt.Errorf("either --seed or --all is required")
			}

			store, err := progress.NewSQLiteStore(appCfg.Progress.DBPath)
			if err != nil {
				return fmt.Errorf("failed to open progress database: %w", err)
			}
			defer store.Close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if all {
				scenarios, err := store.Scenarios(ctx)
				if err != nil {
					return err
				}
				if jsonOut {
					return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
						"count":     len(scenarios),
						"scenarios": scenarios,
					})
				}
				if len(scenarios) == 0 {
					fmt.Fprintln(out, "No attempts recorded yet.")
					return nil
				}
				fmt.Fprintf(out, "%-12s %-12s %-16s %-9s %s\n", "Seed", "Difficulty", "Best", "Attempts", "Last attempt")
				for _, p := range scenarios {
					last := ""
					if p.LastAttempt != nil {
						last = p.LastAttempt.Format("2006-01-02")
					}
					best := fmt.Sprintf("%d (%.1f%%)", p.BestScore, p.BestPercentage)
					fmt.Fprintf(out, "%-12d %-12s %-16s %-9d %s\n", p.Seed, p.Difficulty, best, p.AttemptCount(), last)
				}
				return nil
			}

			if difficultyFlag == "" {
				difficultyFlag = appCfg.Generation.Difficulty
			}
			difficulty, err := parseDifficulty(difficultyFlag)
			if err != nil {
				return err
			}

			p, err := store.Scenario(ctx, seed, difficulty)
			if err != nil {
				return err
			}
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"found":    p != nil,
					"progress": p,
				})
			}
			fmt.Fprintln(out, progress.RenderHistory(p, time.Now()))
			return nil
		},
	}

	cmd.Flags().Uint32("seed", 0, "Scenario seed")
	cmd.Flags().String("difficulty", "", "Scenario difficulty (default medium)")
	cmd.Flags().Bool("all", false, "List every tracked scenario")

	return cmd
}
