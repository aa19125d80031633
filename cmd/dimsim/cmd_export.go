package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/slateworks/dimsim/internal/events"
	"github.com/slateworks/dimsim/internal/export"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <events_file>",
		Short: "Export an event log as an Arrow record batch",
		Long: `Flatten an event log into a fixed-schema Arrow IPC file.

Sales and returns emit one row per line item; every other event emits
a single header-only row. The output loads directly into duckdb or
dataframe tooling for exploration while modeling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			output, _ := cmd.Flags().GetString("output")

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read events file: %w", err)
			}
			var eventLog events.Log
			if err := json.Unmarshal(data, &eventLog); err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".arrow"
			}

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create output file: %w", err)
			}
			rows, err := export.WriteArrow(eventLog, f)
			if err != nil {
				f.Close()
				return fmt.Errorf("failed to write arrow file: %w", err)
			}
			if err := f.Close(); err != nil {
				return err
			}

			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(map[string]interface{}{
					"events": len(eventLog.Events),
					"rows":   rows,
					"output": output,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d events as %d rows to %s\n", len(eventLog.Events), rows, output)
			return nil
		},
	}

	cmd.Flags().String("output", "", "Output path (default: events file with .arrow extension)")

	return cmd
}
